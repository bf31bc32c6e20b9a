// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package cluster

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type instrumentingConnector struct {
	next     Connector
	measures Measures
	now      func() time.Time
}

type instrumentingConn struct {
	next Conn
	c    *instrumentingConnector
}

// Instrument decorates next so that every operation records its latency and
// outcome in measures.
func Instrument(next Connector, measures Measures) Connector {
	return &instrumentingConnector{
		next:     next,
		measures: measures,
		now:      time.Now,
	}
}

func (ic *instrumentingConnector) observe(operation string, start time.Time, err error) {
	outcome := SuccessOutcome
	if err != nil {
		outcome = FailureOutcome
	}
	ic.measures.Duration.With(prometheus.Labels{
		OperationLabel: operation,
		OutcomeLabel:   outcome,
	}).Observe(ic.now().Sub(start).Seconds())
}

func (ic *instrumentingConnector) Connect(ctx context.Context, address string) (conn Conn, err error) {
	defer func(start time.Time) {
		ic.observe(ConnectOperation, start, err)
	}(ic.now())

	conn, err = ic.next.Connect(ctx, address)
	if err != nil {
		return nil, err
	}
	return &instrumentingConn{next: conn, c: ic}, nil
}

func (i *instrumentingConn) Ping(ctx context.Context) (ok bool, err error) {
	defer func(start time.Time) {
		pingErr := err
		if pingErr == nil && !ok {
			pingErr = ErrUnreachable
		}
		i.c.observe(PingOperation, start, pingErr)
	}(i.c.now())

	return i.next.Ping(ctx)
}

func (i *instrumentingConn) ListIndices(ctx context.Context) (names []string, err error) {
	defer func(start time.Time) {
		i.c.observe(ListOperation, start, err)
	}(i.c.now())

	return i.next.ListIndices(ctx)
}

func (i *instrumentingConn) DeleteIndices(ctx context.Context, names []string, timeout time.Duration) (err error) {
	defer func(start time.Time) {
		i.c.observe(DeleteOperation, start, err)
	}(i.c.now())

	return i.next.DeleteIndices(ctx, names, timeout)
}

func (i *instrumentingConn) Close() (err error) {
	defer func(start time.Time) {
		i.c.observe(CloseOperation, start, err)
	}(i.c.now())

	return i.next.Close()
}
