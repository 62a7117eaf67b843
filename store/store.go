package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gofrs/uuid"

	"github.com/aferrand/survey-sim/model"
)

var (
	ErrNotFound  = errors.New("survey not found")
	ErrDuplicate = errors.New("identical schema already uploaded")
)

// Store is the survey catalog, backed by SQLite. Surveys are append-only:
// once created they are never updated or deleted.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// CreateSurvey stores a compiled survey together with the original schema
// payload and returns its new identifier. Byte-identical payloads are
// detected by content hash and rejected with ErrDuplicate before anything
// is written.
func (s *Store) CreateSurvey(ctx context.Context, title string, payload []byte, questions []model.Question) (string, error) {
	sum := sha256.Sum256(payload)
	hash := hex.EncodeToString(sum[:])

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx, `
		SELECT 1 FROM survey
		WHERE content_hash = ?`,
		hash,
	).Scan(&exists)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}
	if exists {
		return "", ErrDuplicate
	}

	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	surveyId := id.String()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO survey (id, title, content_hash, payload, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		surveyId,
		title,
		hash,
		payload,
		time.Now(),
	)
	if err != nil {
		return "", err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO survey_question (survey_id, position, question, kind, max_length, min_value, max_value, options)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for i, q := range questions {
		var maxLength, minValue, maxValue *int
		if q.Validation != nil {
			maxLength = q.Validation.MaxLength
			minValue = q.Validation.Min
			maxValue = q.Validation.Max
		}

		var optionsJson []byte
		if q.Options != nil {
			optionsJson, err = json.Marshal(q.Options)
			if err != nil {
				return "", err
			}
		}

		_, err = stmt.ExecContext(ctx, surveyId, i, q.Text, string(q.Kind), maxLength, minValue, maxValue, string(optionsJson))
		if err != nil {
			return "", err
		}
	}

	err = tx.Commit()
	if err != nil {
		return "", err
	}
	return surveyId, nil
}

// Survey looks one survey up by id, with its questions in position order.
func (s *Store) Survey(ctx context.Context, id string) (model.Survey, error) {
	sv := model.Survey{}

	err := s.db.QueryRowContext(ctx, `
		SELECT s.id, s.title
		FROM survey s
		WHERE s.id = ?`,
		id,
	).Scan(&sv.ID, &sv.Title)
	if errors.Is(err, sql.ErrNoRows) {
		return sv, ErrNotFound
	}
	if err != nil {
		return sv, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT q.question, q.kind, q.max_length, q.min_value, q.max_value, q.options
		FROM survey_question q
		WHERE q.survey_id = ?
		ORDER BY q.position`,
		id,
	)
	if err != nil {
		return sv, err
	}
	defer rows.Close()

	sv.Questions = []model.Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return sv, err
		}
		sv.Questions = append(sv.Questions, q)
	}
	return sv, rows.Err()
}

// Surveys lists every stored survey in creation order.
func (s *Store) Surveys(ctx context.Context) ([]model.Survey, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id FROM survey s
		ORDER BY s.rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	surveys := []model.Survey{}
	for _, id := range ids {
		sv, err := s.Survey(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("survey %s: %w", id, err)
		}
		surveys = append(surveys, sv)
	}
	return surveys, nil
}

func scanQuestion(rows *sql.Rows) (q model.Question, err error) {
	var kind string
	var maxLength, minValue, maxValue sql.NullInt64
	var options sql.NullString

	err = rows.Scan(&q.Text, &kind, &maxLength, &minValue, &maxValue, &options)
	if err != nil {
		return
	}
	q.Kind = model.QuestionKind(kind)

	if maxLength.Valid || minValue.Valid || maxValue.Valid {
		q.Validation = &model.Validation{
			MaxLength: nullableInt(maxLength),
			Min:       nullableInt(minValue),
			Max:       nullableInt(maxValue),
		}
	}

	if options.Valid && options.String != "" {
		err = json.Unmarshal([]byte(options.String), &q.Options)
	}
	return
}

func nullableInt(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
