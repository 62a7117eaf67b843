package routes

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	json "github.com/goccy/go-json"

	"github.com/aferrand/survey-sim/app"
	"github.com/aferrand/survey-sim/httpx"
	"github.com/aferrand/survey-sim/log"
	"github.com/aferrand/survey-sim/model"
	"github.com/aferrand/survey-sim/store"
	"github.com/aferrand/survey-sim/survey"
)

// IngestSurvey compiles an uploaded field schema into a survey and stores
// it. The duplicate check runs over the exact uploaded bytes, so the same
// schema re-uploaded with different whitespace counts as new content.
func IngestSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := io.ReadAll(r.Body)
		if err != nil {
			httpx.LogInternalError(w, "request.read_body", err)
			return
		}

		schema := model.Schema{}
		err = json.Unmarshal(payload, &schema)
		if err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.parse_schema",
				"invalid schema: %s", err)
			return
		}
		if schema.Title == "" {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.parse_schema",
				"invalid schema: missing title")
			return
		}
		if schema.Fields == nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.parse_schema",
				"invalid schema: missing fields")
			return
		}

		questions := survey.Compile(schema.Fields)

		surveyId, err := app.CreateSurvey(r.Context(), schema.Title, payload, questions)
		if errors.Is(err, store.ErrDuplicate) {
			httpx.LogStatusMsg(w, http.StatusConflict, log.DebugLevel, "db.insert_survey.duplicate",
				"identical schema already uploaded")
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.insert_survey", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id":    surveyId,
			"title": schema.Title,
		})
	}
}

func ListSurveys(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveys, err := app.Surveys(r.Context())
		if err != nil {
			httpx.LogInternalError(w, "db.get_surveys", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"surveys": surveys,
		})
	}
}

func GetSurveyById(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId := chi.URLParam(r, "id")

		sv, err := app.Survey(r.Context(), surveyId)
		if errors.Is(err, store.ErrNotFound) {
			httpx.LogNotFound(w, "get_survey", surveyId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_survey", err)
			return
		}

		render.JSON(w, r, sv)
	}
}
