// Package scheduler drives periodic full refreshes so the dashboard stays
// warm without a browser polling it.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Refresher is the dashboard's refresh surface.
type Refresher interface {
	Refresh(ctx context.Context)
}

// refreshTimeout bounds one scheduled refresh cycle.
const refreshTimeout = 2 * time.Minute

// Scheduler runs the refresh task on a cron spec.
type Scheduler struct {
	cron *cron.Cron
	svc  Refresher
	ctx  context.Context
	log  *slog.Logger
}

// New creates a scheduler bound to ctx; scheduled refreshes stop firing work
// once ctx is cancelled.
func New(ctx context.Context, svc Refresher, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		cron: cron.New(),
		svc:  svc,
		ctx:  ctx,
		log:  log,
	}
}

// Register adds the refresh task under the given cron spec
// (standard 5-field syntax, e.g. "*/5 * * * *").
func (s *Scheduler) Register(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) refreshTask() {
	if s.ctx.Err() != nil {
		return
	}
	s.log.Info("running scheduled refresh")
	ctx, cancel := context.WithTimeout(s.ctx, refreshTimeout)
	defer cancel()
	s.svc.Refresh(ctx)
}
