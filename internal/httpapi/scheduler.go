package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"stockdash/internal/query"
)

// Refresher re-runs the current query cycle.
type Refresher interface {
	Refresh() error
}

// Scheduler refreshes the current selection on a cron schedule. Standard
// five-field expressions and descriptors such as "@every 5m" are accepted.
type Scheduler struct {
	cron *cron.Cron
	log  *slog.Logger
}

// NewScheduler registers a refresh job on schedule.
func NewScheduler(schedule string, r Refresher, log *slog.Logger) (*Scheduler, error) {
	log = log.With("component", "scheduler")
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { refreshJob(r, log) }); err != nil {
		return nil, fmt.Errorf("register refresh schedule %q: %w", schedule, err)
	}
	return &Scheduler{cron: c, log: log}, nil
}

func refreshJob(r Refresher, log *slog.Logger) {
	switch err := r.Refresh(); {
	case err == nil:
		log.Debug("scheduled refresh")
	case errors.Is(err, query.ErrNoSelection):
		log.Debug("scheduled refresh skipped, nothing selected")
	default:
		log.Warn("scheduled refresh", "error", err)
	}
}

// Start starts the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started")
}

// Stop stops the scheduler. The returned context is done once a running
// job has finished.
func (s *Scheduler) Stop() context.Context {
	ctx := s.cron.Stop()
	s.log.Info("scheduler stopped")
	return ctx
}
