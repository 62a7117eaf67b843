package sim

import (
	"context"
	"sync"

	"github.com/aferrand/survey-sim/model"
)

// Catalog is the survey lookup the simulator reads from.
type Catalog interface {
	Survey(ctx context.Context, id string) (model.Survey, error)
}

// Step is the outcome of one simulation advance: either the next question
// (1-based Ordinal for display) or, with Completed set, the end of the survey.
type Step struct {
	Completed bool
	Title     string
	Ordinal   int
	Question  string
}

// Simulator tracks the current question position of each running
// simulation. Positions are keyed by (session id, survey id), so distinct
// sessions never interfere; callers that pass no session id share one
// default position per survey and get resume-by-survey-id behavior.
type Simulator struct {
	catalog Catalog

	mu      sync.Mutex
	cursors map[cursorKey]int
}

type cursorKey struct {
	session  string
	surveyID string
}

func New(catalog Catalog) *Simulator {
	return &Simulator{
		catalog: catalog,
		cursors: map[cursorKey]int{},
	}
}

// Advance serves the next question of a survey. With a requested index the
// position is reset there first (jump to question N); otherwise the stored
// position is used, starting at 0. Serving a question moves the position
// past it. Once the position reaches the end of the survey a completed
// step is returned and the position stays terminal.
//
// A requested index below 0 or beyond the question count is
// model.ErrInvalidIndex; an unknown survey id surfaces the catalog's error.
func (s *Simulator) Advance(ctx context.Context, sessionID, surveyID string, requested *int) (Step, error) {
	sv, err := s.catalog.Survey(ctx, surveyID)
	if err != nil {
		return Step{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := cursorKey{sessionID, surveyID}
	index := s.cursors[key]
	if requested != nil {
		if *requested < 0 || *requested > len(sv.Questions) {
			return Step{}, model.ErrInvalidIndex
		}
		index = *requested
	}

	if index >= len(sv.Questions) {
		s.cursors[key] = len(sv.Questions)
		return Step{Completed: true, Title: sv.Title}, nil
	}

	s.cursors[key] = index + 1
	return Step{
		Title:    sv.Title,
		Ordinal:  index + 1,
		Question: sv.Questions[index].Text,
	}, nil
}

// Position returns the stored question index for a session and survey,
// 0 when the simulation has not started.
func (s *Simulator) Position(sessionID, surveyID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursors[cursorKey{sessionID, surveyID}]
}

// Seek moves the stored position, e.g. after a validated answer.
// Negative indexes are clamped to 0.
func (s *Simulator) Seek(sessionID, surveyID string, index int) {
	if index < 0 {
		index = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursors[cursorKey{sessionID, surveyID}] = index
}
