package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/curbsidehq/curbside/internal/ports"
	"github.com/curbsidehq/curbside/internal/shared/logger"
)

// Scheduler runs the cooking countdown: every interval it decrements each
// in-progress order by one minute through the engine.
//
// Failure semantics: a persistence failure for one order never aborts the
// rest of the tick, and a panic inside a tick never de-schedules future
// ticks. One-minute granularity matches human-perceptible cook times; there
// is no per-order timer.
type Scheduler struct {
	engine   *Engine
	store    ports.OrderStore
	logger   *logger.Logger
	interval time.Duration
}

func NewScheduler(engine *Engine, store ports.OrderStore, log *logger.Logger, interval time.Duration) *Scheduler {
	return &Scheduler{engine: engine, store: store, logger: log, interval: interval}
}

// Run blocks until ctx is cancelled, firing Tick every interval.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info(ctx, "scheduler_started", "Cooking timer started", map[string]any{
		"interval": s.interval.String(),
	})

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "scheduler_stopped", "Cooking timer stopped", nil)
			return nil
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick processes one scheduler pass. Exported so tests can drive the clock.
func (s *Scheduler) Tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error(ctx, "tick_panic", "Cooking timer tick panicked", fmt.Errorf("%v", r))
		}
	}()

	cooking, err := s.store.ListCooking(ctx)
	if err != nil {
		s.logger.Error(ctx, "tick_query_failed", "Failed to list cooking orders", err)
		return
	}

	for i := range cooking {
		id := cooking[i].ID
		if _, _, err := s.engine.DecrementCooking(ctx, id); err != nil {
			// isolate this order; the rest of the tick proceeds
			s.logger.Error(ctx, "tick_order_failed", "Failed to update cooking order "+id, err)
		}
	}
}
