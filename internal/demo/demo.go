// Package demo cycles the globe's selection through the catalog so the
// daemon, CLI and web dashboard can be exercised end-to-end without anyone
// clicking on the globe.
package demo

import (
	"context"
	"log/slog"
	"time"

	"github.com/large-farva/orbital-globe/internal/catalog"
)

// SelectFunc applies a selection. An empty id clears it.
type SelectFunc func(ctx context.Context, id string) error

// Runner selects each satellite in turn on a configurable interval.
type Runner struct {
	Registry *catalog.Registry
	Select   SelectFunc
	Interval time.Duration // time each satellite stays selected
	Logger   *slog.Logger

	// StartDelay lets the engine mount before the first selection.
	StartDelay time.Duration

	index int // cycles through the catalog
}

// New creates a demo runner with a sensible default interval.
func New(reg *catalog.Registry, sel SelectFunc) *Runner {
	return &Runner{
		Registry:   reg,
		Select:     sel,
		Interval:   8 * time.Second,
		StartDelay: 2 * time.Second,
	}
}

// Run selects one satellite after StartDelay, then the next one on every
// Interval tick until ctx is cancelled. The selection is cleared on exit.
func (r *Runner) Run(ctx context.Context) {
	log := r.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	log = log.With("component", "demo")
	if r.Registry == nil || r.Registry.Len() == 0 || r.Select == nil {
		log.Warn("demo disabled, empty catalog")
		return
	}
	log.Info("demo mode active, cycling selection", "satellites", r.Registry.Len(), "interval", r.Interval)

	if !sleepOrCancel(ctx, r.StartDelay) {
		return
	}
	r.step(ctx, log)

	t := time.NewTicker(r.Interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			clearCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			_ = r.Select(clearCtx, "")
			cancel()
			return
		case <-t.C:
			r.step(ctx, log)
		}
	}
}

func (r *Runner) step(ctx context.Context, log *slog.Logger) {
	sat := r.next()
	if err := r.Select(ctx, sat.ID); err != nil {
		log.Debug("demo selection failed", "id", sat.ID, "error", err)
		return
	}
	log.Debug("demo selected", "id", sat.ID, "name", sat.Name)
}

// next cycles through the catalog so each step features a different
// satellite.
func (r *Runner) next() catalog.Satellite {
	all := r.Registry.All()
	sat := all[r.index%len(all)]
	r.index++
	return sat
}

func sleepOrCancel(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
