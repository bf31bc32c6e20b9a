// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package inmem

import (
	"context"
	"sort"
	"sync"
	"time"

	"emperror.dev/errors"
	"github.com/xmidt-org/curator/cluster"
)

// Config seeds an InMem connector.
type Config struct {
	// Clusters maps cluster addresses to the indices they hold. When read
	// through viper the addresses are lowercased and cannot contain dots.
	Clusters map[string][]string

	// Unreachable lists addresses which are known but never answer a ping.
	Unreachable []string
}

type InMem struct {
	data        map[string]map[string]struct{}
	unreachable map[string]bool
	lock        sync.Mutex
}

type conn struct {
	store   *InMem
	address string
	closed  bool
}

func NewInMem() *InMem {
	return &InMem{
		data:        map[string]map[string]struct{}{},
		unreachable: map[string]bool{},
	}
}

// FromConfig builds an InMem seeded with the clusters in c.
func FromConfig(c Config) *InMem {
	i := NewInMem()
	for address, indices := range c.Clusters {
		i.AddCluster(address, indices...)
	}
	for _, address := range c.Unreachable {
		i.AddCluster(address)
		i.SetUnreachable(address, true)
	}
	return i
}

// AddCluster registers address, if needed, and adds the given indices to it.
func (i *InMem) AddCluster(address string, indices ...string) {
	i.lock.Lock()
	defer i.lock.Unlock()
	if i.data[address] == nil {
		i.data[address] = map[string]struct{}{}
	}
	for _, name := range indices {
		i.data[address][name] = struct{}{}
	}
}

func (i *InMem) SetUnreachable(address string, unreachable bool) {
	i.lock.Lock()
	defer i.lock.Unlock()
	i.unreachable[address] = unreachable
}

// Indices returns the sorted index names of a cluster, or nil if the
// address is unknown.
func (i *InMem) Indices(address string) []string {
	i.lock.Lock()
	defer i.lock.Unlock()
	return i.indices(address)
}

func (i *InMem) indices(address string) []string {
	indices, ok := i.data[address]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(indices))
	for name := range indices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (i *InMem) Connect(ctx context.Context, address string) (cluster.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	i.lock.Lock()
	defer i.lock.Unlock()
	if _, ok := i.data[address]; !ok {
		return nil, errors.WithDetails(cluster.ErrUnknownTarget, "address", address)
	}
	return &conn{store: i, address: address}, nil
}

func (c *conn) Ping(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	c.store.lock.Lock()
	defer c.store.lock.Unlock()
	if c.closed {
		return false, cluster.ErrClosed
	}
	return !c.store.unreachable[c.address], nil
}

func (c *conn) ListIndices(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.store.lock.Lock()
	defer c.store.lock.Unlock()
	if c.closed {
		return nil, cluster.ErrClosed
	}
	if c.store.unreachable[c.address] {
		return nil, errors.WithDetails(cluster.ErrUnreachable, "address", c.address)
	}
	return c.store.indices(c.address), nil
}

// DeleteIndices removes every present index in names. Missing indices are
// reported together in one error once the present ones are removed.
func (c *conn) DeleteIndices(ctx context.Context, names []string, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.store.lock.Lock()
	defer c.store.lock.Unlock()
	if c.closed {
		return cluster.ErrClosed
	}
	if c.store.unreachable[c.address] {
		return errors.WithDetails(cluster.ErrUnreachable, "address", c.address)
	}

	indices := c.store.data[c.address]
	var errs []error
	for _, name := range names {
		if _, ok := indices[name]; !ok {
			errs = append(errs, errors.WithDetails(cluster.ErrIndexNotFound, "index", name))
			continue
		}
		delete(indices, name)
	}
	return errors.Combine(errs...)
}

func (c *conn) Close() error {
	c.store.lock.Lock()
	defer c.store.lock.Unlock()
	if c.closed {
		return cluster.ErrClosed
	}
	c.closed = true
	return nil
}
