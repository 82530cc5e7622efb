package cli

import (
	"github.com/dshills/alfred/internal/balance"
	"github.com/dshills/alfred/internal/config"
	"github.com/dshills/alfred/internal/costs"
	"github.com/dshills/alfred/internal/history"
	"github.com/dshills/alfred/internal/output"
)

// app holds the wired collaborators commands share. Everything hangs off the
// one Config built at startup; nothing reads ambient global state.
type app struct {
	cfg       config.Config
	styles    output.Styles
	tracker   *costs.Tracker
	estimator *balance.Estimator
	store     *history.Store
	prompt    prompter
}

func newApp() (*app, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, err
	}
	return newAppWith(cfg), nil
}

// newAppWith wires collaborators for an explicit config, used directly by
// tests to point state at a temp directory.
func newAppWith(cfg config.Config) *app {
	tracker := costs.NewTracker(cfg.Dir, costs.PricingFor(cfg.Model))
	return &app{
		cfg:       cfg,
		styles:    output.NewStyles(),
		tracker:   tracker,
		estimator: balance.NewEstimator(cfg.Dir, tracker),
		store:     history.NewStore(cfg.Dir),
		prompt:    terminalPrompter{},
	}
}
