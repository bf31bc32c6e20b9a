// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package cluster

import (
	"context"
	"time"

	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

type loggingConnector struct {
	next Connector
}

type loggingConn struct {
	next    Conn
	address string
}

// Log decorates next with debug logging of every operation. The logger is
// taken from the context of each call.
func Log(next Connector) Connector {
	return &loggingConnector{next: next}
}

func (lc *loggingConnector) Connect(ctx context.Context, address string) (conn Conn, err error) {
	defer func() {
		sallust.Get(ctx).Debug("connect", zap.String("address", address), zap.Error(err))
	}()

	conn, err = lc.next.Connect(ctx, address)
	if err != nil {
		return nil, err
	}
	return &loggingConn{next: conn, address: address}, nil
}

func (l *loggingConn) Ping(ctx context.Context) (ok bool, err error) {
	defer func() {
		sallust.Get(ctx).Debug("ping", zap.String("address", l.address), zap.Bool("ok", ok), zap.Error(err))
	}()
	return l.next.Ping(ctx)
}

func (l *loggingConn) ListIndices(ctx context.Context) (names []string, err error) {
	defer func() {
		sallust.Get(ctx).Debug("list indices", zap.String("address", l.address), zap.Int("indicesSize", len(names)), zap.Error(err))
	}()
	return l.next.ListIndices(ctx)
}

func (l *loggingConn) DeleteIndices(ctx context.Context, names []string, timeout time.Duration) (err error) {
	defer func() {
		sallust.Get(ctx).Debug("delete indices", zap.String("address", l.address), zap.Int("indicesSize", len(names)),
			zap.Duration("timeout", timeout), zap.Error(err))
	}()
	return l.next.DeleteIndices(ctx, names, timeout)
}

func (l *loggingConn) Close() error {
	return l.next.Close()
}
