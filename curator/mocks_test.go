// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package curator

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
	"github.com/xmidt-org/curator/cluster"
	"github.com/xmidt-org/curator/retention"
)

type mockConnector struct {
	mock.Mock
}

func (m *mockConnector) Connect(ctx context.Context, address string) (cluster.Conn, error) {
	args := m.Called(ctx, address)
	conn, _ := args.Get(0).(cluster.Conn)
	return conn, args.Error(1)
}

type mockConn struct {
	mock.Mock
}

func (m *mockConn) Ping(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *mockConn) ListIndices(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	names, _ := args.Get(0).([]string)
	return names, args.Error(1)
}

func (m *mockConn) DeleteIndices(ctx context.Context, names []string, timeout time.Duration) error {
	return m.Called(ctx, names, timeout).Error(0)
}

func (m *mockConn) Close() error {
	return m.Called().Error(0)
}

type mockExecutor struct {
	mock.Mock
}

func (m *mockExecutor) Execute(ctx context.Context, policy retention.Policy, opts Options) Outcome {
	return m.Called(ctx, policy, opts).Get(0).(Outcome)
}

type mockSweeper struct {
	mock.Mock
}

func (m *mockSweeper) Sweep(ctx context.Context, deleteTimeout time.Duration, dryRun bool) (Report, error) {
	args := m.Called(ctx, deleteTimeout, dryRun)
	return args.Get(0).(Report), args.Error(1)
}

func newTestMeasures() *Measures {
	return &Measures{
		Sweeps: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "testSweepCounter", Help: "testSweepCounter"},
			[]string{OutcomeLabel, ModeLabel},
		),
		Selected: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "testSelectedCounter", Help: "testSelectedCounter"},
			[]string{ModeLabel},
		),
		Malformed: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "testMalformedCounter", Help: "testMalformedCounter"},
		),
	}
}
