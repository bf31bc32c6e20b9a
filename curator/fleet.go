// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package curator

import (
	"context"
	"runtime"
	"sort"
	"time"

	"emperror.dev/errors"
	"github.com/sourcegraph/conc/pool"
	"github.com/xmidt-org/curator/retention"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

const (
	ErrNilRegistry = errors.Sentinel("registry cannot be nil")
	ErrNilExecutor = errors.Sentinel("executor cannot be nil")
)

// Registry supplies the retention policy of every known cluster.
type Registry interface {
	Fetch(ctx context.Context) ([]retention.Policy, error)
}

// RegistryFunc is a function type that implements Registry.
type RegistryFunc func(context.Context) ([]retention.Policy, error)

func (rf RegistryFunc) Fetch(ctx context.Context) ([]retention.Policy, error) {
	return rf(ctx)
}

type FleetConfig struct {
	// Concurrency is the maximum number of clusters processed at once.
	// (Optional) Defaults to the number of CPUs.
	Concurrency int

	// Now is the clock used for the reference time of each sweep.
	// (Optional) Defaults to time.Now.
	Now func() time.Time
}

// Fleet runs an Executor against every cluster of the registry.
type Fleet struct {
	registry    Registry
	executor    Executor
	concurrency int
	now         func() time.Time
}

func NewFleet(config FleetConfig, registry Registry, executor Executor) (*Fleet, error) {
	if registry == nil {
		return nil, ErrNilRegistry
	}
	if executor == nil {
		return nil, ErrNilExecutor
	}
	if config.Concurrency <= 0 {
		config.Concurrency = runtime.NumCPU()
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Fleet{
		registry:    registry,
		executor:    executor,
		concurrency: config.Concurrency,
		now:         config.Now,
	}, nil
}

// Run executes every policy, at most Concurrency at a time, and waits for all
// of them. A failing cluster never stops the others. The outcomes of the
// report are sorted by address.
func (f *Fleet) Run(ctx context.Context, policies []retention.Policy, deleteTimeout time.Duration, dryRun bool) Report {
	reference := f.now()
	opts := Options{
		DeleteTimeout: deleteTimeout,
		DryRun:        dryRun,
		Reference:     reference,
	}

	p := pool.NewWithResults[Outcome]().WithMaxGoroutines(f.concurrency)
	for _, policy := range policies {
		policy := policy
		p.Go(func() Outcome {
			return f.executor.Execute(ctx, policy, opts)
		})
	}
	outcomes := p.Wait()
	if outcomes == nil {
		outcomes = []Outcome{}
	}

	sort.SliceStable(outcomes, func(i, j int) bool {
		return outcomes[i].Address < outcomes[j].Address
	})

	report := NewReport(outcomes, dryRun, f.now().Sub(reference))
	report.Log(sallust.Get(ctx))
	return report
}

// Sweep fetches the registry and runs every cluster in it. A registry failure
// aborts the sweep before any cluster is touched.
func (f *Fleet) Sweep(ctx context.Context, deleteTimeout time.Duration, dryRun bool) (Report, error) {
	logger := sallust.Get(ctx)

	policies, err := f.registry.Fetch(ctx)
	if err != nil {
		logger.Error("Unable to fetch clusters from the registry", zap.Error(err))
		return Report{}, errors.Wrap(err, "failed to fetch clusters")
	}

	logger.Info("Fetched clusters", zap.Int("clusters", len(policies)), zap.Bool("dryRun", dryRun))
	return f.Run(ctx, policies, deleteTimeout, dryRun), nil
}
