package service

import (
	"context"
	"sync/atomic"

	"github.com/robfig/cron/v3"

	"sitewatch/internal/utils"
)

// Scheduler runs check cycles on a cron schedule. A tick that arrives while
// the previous cycle is still running is skipped, so at most one cycle
// writes to the store at a time.
type Scheduler struct {
	Cron     *cron.Cron
	Monitor  *MonitorService
	Schedule string

	running atomic.Bool
}

func NewScheduler(m *MonitorService, schedule string) *Scheduler {
	if schedule == "" {
		schedule = "@every 3h"
	}
	return &Scheduler{
		Cron:     cron.New(),
		Monitor:  m,
		Schedule: schedule,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.Cron.AddFunc(s.Schedule, s.RunMonitorJob); err != nil {
		return err
	}
	s.Cron.Start()
	utils.Log.Info("scheduler started", utils.Field("schedule", s.Schedule))
	return nil
}

// Stop halts the schedule; the returned context is done once a running
// cycle has finished.
func (s *Scheduler) Stop() context.Context {
	return s.Cron.Stop()
}

// RunMonitorJob runs one cycle unless another is in flight.
func (s *Scheduler) RunMonitorJob() {
	s.runOnce(context.Background())
}

// runOnce reports whether a cycle ran.
func (s *Scheduler) runOnce(ctx context.Context) bool {
	if !s.running.CompareAndSwap(false, true) {
		utils.Log.Warn("previous check cycle still running, skipping tick")
		return false
	}
	defer s.running.Store(false)

	if _, err := s.Monitor.RunCycle(ctx); err != nil {
		utils.Log.Error("check cycle failed", utils.Field("error", err.Error()))
	}
	return true
}
