// Package sched runs the monitors on their configured intervals.
package sched

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/trigger-cli/internal/monitor"
)

// Runner executes one monitor cycle and persists the results.
type Runner func(ctx context.Context, m monitor.Monitor)

// Scheduler drives the enabled monitors with a cron runner, one entry
// per monitor at its configured interval.
type Scheduler struct {
	cron *cron.Cron
	deps *monitor.Deps
	run  Runner
}

// New creates a scheduler over the enabled monitors.
func New(deps *monitor.Deps, run Runner) *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		deps: deps,
		run:  run,
	}
}

// Start registers every enabled monitor and starts the cron loop. The
// context is passed through to each monitor run.
func (s *Scheduler) Start(ctx context.Context) error {
	for _, m := range monitor.All(s.deps) {
		cfg := s.deps.Cfg.Monitors.MonitorFor(string(m.SourceType()))
		interval := cfg.IntervalHours
		if interval <= 0 {
			interval = 24
		}

		if _, err := s.cron.AddFunc(fmt.Sprintf("@every %dh", interval), func() {
			s.run(ctx, m)
		}); err != nil {
			return eris.Wrapf(err, "sched: schedule %s", m.Name())
		}
		zap.L().Info("monitor scheduled",
			zap.String("monitor", m.Name()),
			zap.Int("interval_hours", interval),
		)
	}
	s.cron.Start()
	return nil
}

// Stop halts the cron loop and returns a context that is done when all
// in-flight runs have finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Entries reports how many monitors are scheduled.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
