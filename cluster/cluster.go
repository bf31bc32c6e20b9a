// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package cluster

import (
	"context"
	"time"

	"emperror.dev/errors"
)

// Operations performed against a cluster. These double as metric label values.
const (
	ConnectOperation = "connect"
	PingOperation    = "ping"
	ListOperation    = "list"
	DeleteOperation  = "delete"
	CloseOperation   = "close"
)

// Sentinel errors shared by the adapters.
const (
	ErrClosed        = errors.Sentinel("connection is closed")
	ErrUnreachable   = errors.Sentinel("cluster did not answer the ping")
	ErrUnknownTarget = errors.Sentinel("unknown cluster address")
	ErrIndexNotFound = errors.Sentinel("index not found")
)

// Conn is an open connection to one search cluster.
type Conn interface {
	// Ping reports whether the cluster answered. When the adapter knows why a
	// cluster is not usable it returns false along with that cause.
	Ping(ctx context.Context) (bool, error)

	// ListIndices returns the names of every index in the cluster.
	ListIndices(ctx context.Context) ([]string, error)

	// DeleteIndices removes the named indices. The timeout is passed to the
	// cluster as its own master timeout and also bounds the request.
	DeleteIndices(ctx context.Context, names []string, timeout time.Duration) error

	Close() error
}

// Connector opens connections to clusters by address.
type Connector interface {
	Connect(ctx context.Context, address string) (Conn, error)
}

// ConnectorFunc is a function type that implements Connector.
type ConnectorFunc func(context.Context, string) (Conn, error)

func (cf ConnectorFunc) Connect(ctx context.Context, address string) (Conn, error) {
	return cf(ctx, address)
}
