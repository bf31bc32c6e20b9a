// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package curator

import (
	"context"
	"sync"
	"time"

	"emperror.dev/errors"
	"github.com/robfig/cron/v3"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

const (
	ErrInvalidSchedule = errors.Sentinel("invalid cron schedule")
	ErrNilSweeper      = errors.Sentinel("sweeper cannot be nil")
)

// Sweeper performs one complete sweep.
type Sweeper interface {
	Sweep(ctx context.Context, deleteTimeout time.Duration, dryRun bool) (Report, error)
}

type SchedulerConfig struct {
	// Schedule is a standard five field cron expression, e.g. "0 3 * * *".
	Schedule      string
	DeleteTimeout time.Duration
	DryRun        bool
}

// Scheduler runs sweeps on a cron schedule. A tick is skipped while the
// previous sweep is still running.
type Scheduler struct {
	config  SchedulerConfig
	sweeper Sweeper
	logger  *zap.Logger
	cron    *cron.Cron

	mu      sync.Mutex
	running bool

	ctxLock sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewScheduler(config SchedulerConfig, sweeper Sweeper, logger *zap.Logger) (*Scheduler, error) {
	if sweeper == nil {
		return nil, ErrNilSweeper
	}
	if logger == nil {
		logger = sallust.Default()
	}
	if _, err := cron.ParseStandard(config.Schedule); err != nil {
		return nil, errors.WrapWithDetails(ErrInvalidSchedule, err.Error(), "schedule", config.Schedule)
	}

	cl := cronLogger{logger: logger}
	s := &Scheduler{
		config:  config,
		sweeper: sweeper,
		logger:  logger,
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
	}
	s.resetContext()

	if _, err := s.cron.AddFunc(config.Schedule, s.runSweep); err != nil {
		return nil, errors.WrapWithDetails(ErrInvalidSchedule, err.Error(), "schedule", config.Schedule)
	}
	return s, nil
}

// resetContext replaces the context handed to sweeps with a fresh one.
func (s *Scheduler) resetContext() {
	s.ctxLock.Lock()
	defer s.ctxLock.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.ctx, s.cancel = context.WithCancel(sallust.With(context.Background(), s.logger))
}

func (s *Scheduler) sweepContext() context.Context {
	s.ctxLock.Lock()
	defer s.ctxLock.Unlock()
	return s.ctx
}

func (s *Scheduler) cancelSweeps() {
	s.ctxLock.Lock()
	defer s.ctxLock.Unlock()
	s.cancel()
}

func (s *Scheduler) runSweep() {
	s.logger.Info("Starting scheduled sweep")
	if _, err := s.sweeper.Sweep(s.sweepContext(), s.config.DeleteTimeout, s.config.DryRun); err != nil {
		s.logger.Error("Scheduled sweep failed", zap.Error(err))
	}
}

// Start begins running sweeps. It does not block. A stopped Scheduler may be
// started again.
func (s *Scheduler) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	s.resetContext()
	s.cron.Start()
	s.running = true
	s.logger.Info("Scheduler started", zap.String("schedule", s.config.Schedule), zap.Bool("dryRun", s.config.DryRun))
	return nil
}

// Stop stops scheduling and waits for a running sweep to finish. If ctx ends
// first, the running sweep is canceled.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}
	s.running = false

	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.cancelSweeps()
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		s.cancelSweeps()
		s.logger.Warn("Scheduler stopped before the running sweep completed")
		return ctx.Err()
	}
}

func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled sweep, or nil when nothing is scheduled.
func (s *Scheduler) NextRun() *time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 || entries[0].Next.IsZero() {
		return nil
	}
	next := entries[0].Next
	return &next
}

type cronLogger struct {
	logger *zap.Logger
}

func (cl cronLogger) Info(msg string, keysAndValues ...interface{}) {
	cl.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (cl cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	cl.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
