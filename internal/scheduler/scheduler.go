package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is one refresh pass. It receives the time the run was triggered.
type Job func(ctx context.Context, asOf time.Time) error

// Scheduler triggers the refresh job on a cron expression with a seconds field.
// Overlapping runs are skipped.
type Scheduler struct {
	cron    *cron.Cron
	job     Job
	ctx     context.Context
	logger  *zap.Logger
	running sync.Mutex
	now     func() time.Time
}

// Validate parses expr the way New does.
func Validate(expr string) error {
	_, err := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor).Parse(expr)
	return err
}

// New creates a Scheduler and registers job under expr. An empty expr
// yields a scheduler that only runs through RunNow.
func New(ctx context.Context, expr string, job Job, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		job:    job,
		ctx:    ctx,
		logger: logger,
		now:    time.Now,
	}
	if expr == "" {
		return s, nil
	}
	if _, err := s.cron.AddFunc(expr, s.tick); err != nil {
		return nil, fmt.Errorf("register refresh job: %w", err)
	}
	return s, nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started")
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// RunNow executes the job immediately. It reports false when a run was
// already in progress.
func (s *Scheduler) RunNow() (bool, error) {
	if !s.running.TryLock() {
		return false, nil
	}
	defer s.running.Unlock()
	return true, s.job(s.ctx, s.now().UTC())
}

func (s *Scheduler) tick() {
	ran, err := s.RunNow()
	switch {
	case !ran:
		s.logger.Warn("previous refresh still running, skipping")
	case err != nil:
		s.logger.Error("scheduled refresh failed", zap.Error(err))
	default:
		s.logger.Info("scheduled refresh complete")
	}
}
