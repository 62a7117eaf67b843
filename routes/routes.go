package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aferrand/survey-sim/app"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.Logger, middleware.Recoverer)

	root.Mount("/api", apiRouter(app))

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	api.Post("/surveys", IngestSurvey(app))
	api.Get("/surveys", ListSurveys(app))
	api.Get("/surveys/{id}", GetSurveyById(app))

	api.Post("/surveys/{id}/simulate", AdvanceSimulation(app))
	api.Post("/surveys/{id}/answers", SubmitAnswer(app))

	return api
}
