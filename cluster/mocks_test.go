// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package cluster

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type mockConnector struct {
	mock.Mock
}

func (m *mockConnector) Connect(ctx context.Context, address string) (Conn, error) {
	args := m.Called(ctx, address)
	conn, _ := args.Get(0).(Conn)
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
	args := m.Called(ctx, names, timeout)
	return args.Error(0)
}

func (m *mockConn) Close() error {
	return m.Called().Error(0)
}
