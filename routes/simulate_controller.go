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

type simulateRequest struct {
	QuestionIndex *int   `json:"question_index"`
	SessionID     string `json:"session_id"`
}

type answerRequest struct {
	QuestionIndex *int   `json:"question_index"`
	SessionID     string `json:"session_id"`
	Answer        any    `json:"answer"`
}

// AdvanceSimulation serves the next question of a survey and moves the
// session's position past it. An empty body resumes from the stored
// position; an explicit question_index jumps there first.
func AdvanceSimulation(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId := chi.URLParam(r, "id")

		req := simulateRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil && !errors.Is(err, io.EOF) {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		step, err := app.Advance(r.Context(), req.SessionID, surveyId, req.QuestionIndex)
		switch {
		case errors.Is(err, store.ErrNotFound):
			httpx.LogNotFound(w, "simulate.get_survey", surveyId)
			return
		case errors.Is(err, model.ErrInvalidIndex):
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "simulate.question_index",
				"question index out of range")
			return
		case err != nil:
			httpx.LogInternalError(w, "simulate.advance", err)
			return
		}

		if step.Completed {
			render.JSON(w, r, map[string]any{
				"survey_title": step.Title,
				"message":      "Survey completed successfully.",
			})
			return
		}

		render.JSON(w, r, map[string]any{
			"survey_title": step.Title,
			"ordinal":      step.Ordinal,
			"question":     step.Question,
		})
	}
}

// SubmitAnswer validates one answer against its question. The question
// index defaults to the session's current position. A failed validation
// is a regular response with valid=false, not an error; a valid answer
// moves the session position to the next question.
func SubmitAnswer(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId := chi.URLParam(r, "id")

		// UseNumber keeps integer answers distinguishable from floats
		// and numeric strings for the validator's strict type check
		req := answerRequest{}
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		err := dec.Decode(&req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		sv, err := app.Survey(r.Context(), surveyId)
		if errors.Is(err, store.ErrNotFound) {
			httpx.LogNotFound(w, "answer.get_survey", surveyId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "answer.get_survey", err)
			return
		}

		index := app.Position(req.SessionID, surveyId)
		if req.QuestionIndex != nil {
			index = *req.QuestionIndex
		}

		verdict, err := survey.CheckAnswer(sv, index, req.Answer)
		if errors.Is(err, model.ErrInvalidIndex) {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "answer.question_index",
				"question index out of range")
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "answer.check", err)
			return
		}

		resp := map[string]any{
			"valid":    verdict.Valid,
			"question": sv.Questions[index],
			"answer":   req.Answer,
		}
		if verdict.Valid {
			app.Seek(req.SessionID, surveyId, index+1)
			if verdict.NextIndex != nil {
				resp["next_index"] = *verdict.NextIndex
				resp["next_question"] = sv.Questions[*verdict.NextIndex]
			}
		}
		render.JSON(w, r, resp)
	}
}
