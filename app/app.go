package app

import (
	"github.com/aferrand/survey-sim/config"
	"github.com/aferrand/survey-sim/sim"
	"github.com/aferrand/survey-sim/store"
)

type App struct {
	*store.Store
	*sim.Simulator
	config.Config
}
