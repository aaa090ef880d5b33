// Package scheduler wires up the cron job that periodically re-scans all
// configured search targets.
package scheduler

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler wraps robfig/cron and triggers scan cycles on a fixed interval.
type Scheduler struct {
	cron   *cron.Cron
	run    func()
	spec   string
	entry  cron.EntryID
	logger *zap.Logger
}

// New creates a Scheduler that fires every intervalHours hours. Overlapping
// cycles are skipped rather than stacked.
func New(run func(), intervalHours int, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		run:    run,
		spec:   fmt.Sprintf("@every %dh", intervalHours),
		logger: logger,
	}
}

// Start registers the job and starts the scheduler. Also runs one cycle
// immediately so a fresh deployment doesn't wait for the first tick. The
// immediate cycle goes through the registered entry's wrapped job, so the
// overlap-skip guard covers it the same as scheduled ticks.
func (s *Scheduler) Start() error {
	id, err := s.cron.AddFunc(s.spec, s.run)
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}
	s.entry = id
	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("spec", s.spec))

	go s.cron.Entry(s.entry).WrappedJob.Run()
	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("scheduler stopped")
}
