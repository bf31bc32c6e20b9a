// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package curator

import (
	"context"
	"time"

	"emperror.dev/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/curator/cluster"
	"github.com/xmidt-org/curator/retention"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

const (
	ErrNilConnector = errors.Sentinel("connector cannot be nil")
	ErrNilMeasures  = errors.Sentinel("measures cannot be nil")
)

// Options are the per-sweep settings given to an Executor.
type Options struct {
	// DeleteTimeout bounds the deletion request of one cluster.
	DeleteTimeout time.Duration

	// DryRun reports the selection without deleting anything.
	DryRun bool

	// Reference is the moment retention windows are measured from.
	// Defaults to the current time.
	Reference time.Time
}

// Executor runs the retention policy of a single cluster.
type Executor interface {
	// Execute never panics. Failures are reported through the Outcome.
	Execute(ctx context.Context, policy retention.Policy, opts Options) Outcome
}

// DeletionExecutor connects to a cluster, lists its indices, selects the
// expired ones and deletes them.
type DeletionExecutor struct {
	connector cluster.Connector
	measures  *Measures
	now       func() time.Time
}

func NewDeletionExecutor(connector cluster.Connector, measures *Measures) (*DeletionExecutor, error) {
	if connector == nil {
		return nil, ErrNilConnector
	}
	if measures == nil {
		return nil, ErrNilMeasures
	}
	return &DeletionExecutor{
		connector: connector,
		measures:  measures,
		now:       time.Now,
	}, nil
}

func (e *DeletionExecutor) Execute(ctx context.Context, policy retention.Policy, opts Options) (outcome Outcome) {
	start := e.now()
	logger := sallust.Get(ctx).With(zap.String("cluster", policy.Address()))
	ctx = sallust.With(ctx, logger)

	outcome = Outcome{
		Address:  policy.Address(),
		DryRun:   opts.DryRun,
		Stage:    ConnectStage,
		Selected: []string{},
	}
	if opts.Reference.IsZero() {
		opts.Reference = start
	}

	defer func() {
		if r := recover(); r != nil {
			outcome.Err = &StageError{
				Stage: outcome.Stage,
				Err:   errors.WithDetails(ErrPanic, "panic", r),
			}
		}
		outcome.Duration = e.now().Sub(start)
		e.record(outcome)
		if outcome.Failed() {
			logger.Error("Unable to delete expired indices",
				zap.String("stage", string(outcome.Stage)),
				zap.Error(outcome.Err),
				zap.Any("details", errors.GetDetails(outcome.Err)))
		}
	}()

	logger.Info("Connecting to cluster")
	conn, err := e.connector.Connect(ctx, policy.Address())
	if err != nil {
		outcome.Err = &StageError{Stage: ConnectStage, Err: err}
		return
	}
	defer func() {
		if err := conn.Close(); err != nil {
			logger.Debug("failed to close cluster connection", zap.Error(err))
		}
	}()

	outcome.Stage = PingStage
	ok, err := conn.Ping(ctx)
	if err == nil && !ok {
		err = errors.WithDetails(cluster.ErrUnreachable, "address", policy.Address())
	}
	if err != nil {
		outcome.Err = &StageError{Stage: PingStage, Err: err}
		return
	}

	outcome.Stage = ListStage
	names, err := conn.ListIndices(ctx)
	if err != nil {
		outcome.Err = &StageError{Stage: ListStage, Err: err}
		return
	}
	if len(names) == 0 {
		logger.Warn("No indices found, skipping")
		outcome.Stage = DoneStage
		return
	}

	outcome.Stage = FilterStage
	selection := retention.Select(ctx, names, policy, opts.Reference)
	outcome.Selected = selection.Expired
	outcome.Malformed = selection.Malformed
	if len(selection.Expired) == 0 {
		logger.Info("No indices to delete", zap.Int("indices", len(names)))
		outcome.Stage = DoneStage
		return
	}

	if opts.DryRun {
		outcome.Stage = DryRunStage
		logger.Info("DRY-RUN MODE. No changes will be made.")
		for _, name := range selection.Expired {
			logger.Info("DRY-RUN: delete index", zap.String("index", name))
		}
		outcome.Stage = DoneStage
		return
	}

	outcome.Stage = DeleteStage
	logger.Info("Deleting expired indices", zap.Int("count", len(selection.Expired)))
	err = conn.DeleteIndices(ctx, selection.Expired, opts.DeleteTimeout)
	if err != nil {
		outcome.Err = &StageError{Stage: DeleteStage, Err: err}
		return
	}

	outcome.Stage = DoneStage
	logger.Info("Deleted expired indices", zap.Int("count", len(selection.Expired)))
	return outcome
}

func (e *DeletionExecutor) record(o Outcome) {
	mode := modeOf(o.DryRun)
	e.measures.Sweeps.With(prometheus.Labels{OutcomeLabel: o.result(), ModeLabel: mode}).Inc()
	e.measures.Selected.With(prometheus.Labels{ModeLabel: mode}).Add(float64(len(o.Selected)))
	e.measures.Malformed.Add(float64(len(o.Malformed)))
}
