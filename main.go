package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/aferrand/survey-sim/app"
	"github.com/aferrand/survey-sim/config"
	"github.com/aferrand/survey-sim/database"
	"github.com/aferrand/survey-sim/log"
	"github.com/aferrand/survey-sim/routes"
	"github.com/aferrand/survey-sim/sim"
	"github.com/aferrand/survey-sim/store"
)

func main() {
	cfg, err := config.ParseFlags()
	if err != nil {
		log.Fatal("main.config:", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal("main.db.open:", err)
	}
	defer db.Close()

	catalog := store.New(db)

	app := app.App{
		Store:     catalog,
		Simulator: sim.New(catalog),
		Config:    cfg,
	}

	handler := routes.Wire(app)

	err = runServer(cfg, handler)
	if !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("main.server:", err)
	}
}

func runServer(cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Info("Listening on " + cfg.Url())
	return srv.ListenAndServe()
}
