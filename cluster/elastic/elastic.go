// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package elastic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/xmidt-org/curator/cluster"
)

const (
	// DefaultPort is used for addresses which do not name one.
	DefaultPort = "9200"

	defaultScheme              = "http"
	defaultRequestTimeout      = 300 * time.Second
	defaultMaxRequestURLLength = 3072

	errUnreachableFmt = "%w: %w"
)

const (
	ErrNonSuccessResponse = errors.Sentinel("elasticsearch responded with a non-success status code")
	ErrInvalidAddress     = errors.Sentinel("invalid cluster address")
)

// Config contains the options used for every cluster connection.
type Config struct {
	// Username and Password enable basic auth.
	// (Optional)
	Username string
	Password string

	// APIKey is a base64 encoded API key. It takes precedence over basic auth.
	// (Optional)
	APIKey string

	// RequestTimeout bounds every request that has no tighter deadline.
	// (Optional) Defaults to 300 seconds.
	RequestTimeout time.Duration

	// MaxRequestURLLength caps the length of the index list of one delete
	// request. Larger deletions are split into several requests.
	// (Optional) Defaults to 3072.
	MaxRequestURLLength int

	// Transport is the round tripper used by the clients.
	// (Optional) Defaults to http.DefaultTransport.
	Transport http.RoundTripper
}

// Connector opens go-elasticsearch clients.
type Connector struct {
	config Config
}

type conn struct {
	client  *elasticsearch.Client
	address string
	config  Config
	closed  bool
}

func NewConnector(config Config) *Connector {
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = defaultRequestTimeout
	}
	if config.MaxRequestURLLength <= 0 {
		config.MaxRequestURLLength = defaultMaxRequestURLLength
	}
	if config.Transport == nil {
		config.Transport = http.DefaultTransport
	}
	return &Connector{config: config}
}

// NormalizeAddress turns a registry address such as 10.0.0.1 into a URL the
// client accepts, adding the default scheme and port where missing.
func NormalizeAddress(address string) (string, error) {
	address = strings.TrimSpace(address)
	if len(address) == 0 {
		return "", ErrInvalidAddress
	}
	if !strings.Contains(address, "://") {
		address = defaultScheme + "://" + address
	}
	u, err := url.Parse(address)
	if err != nil {
		return "", errors.WrapWithDetails(ErrInvalidAddress, err.Error(), "address", address)
	}
	if len(u.Hostname()) == 0 {
		return "", errors.WithDetails(ErrInvalidAddress, "address", address)
	}
	if len(u.Port()) == 0 {
		u.Host = net.JoinHostPort(u.Hostname(), DefaultPort)
	}
	return u.String(), nil
}

func (c *Connector) Connect(_ context.Context, address string) (cluster.Conn, error) {
	normalized, err := NormalizeAddress(address)
	if err != nil {
		return nil, err
	}
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{normalized},
		Username:  c.config.Username,
		Password:  c.config.Password,
		APIKey:    c.config.APIKey,
		Transport: c.config.Transport,
	})
	if err != nil {
		return nil, errors.WrapWithDetails(err, "failed to create elasticsearch client", "address", address)
	}
	return &conn{
		client:  client,
		address: address,
		config:  c.config,
	}, nil
}

func (c *conn) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = c.config.RequestTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

func (c *conn) Ping(ctx context.Context) (bool, error) {
	if c.closed {
		return false, cluster.ErrClosed
	}
	ctx, cancel := c.withTimeout(ctx, 0)
	defer cancel()

	res, err := c.client.Ping(c.client.Ping.WithContext(ctx))
	if err != nil {
		// transport failures, timeouts and a failed product check all land here
		return false, errors.WithDetails(fmt.Errorf(errUnreachableFmt, cluster.ErrUnreachable, err), "address", c.address)
	}
	defer drain(res)
	if res.IsError() {
		return false, errors.WithDetails(ErrNonSuccessResponse, "address", c.address, "status", res.StatusCode)
	}
	return true, nil
}

type catIndex struct {
	Index string `json:"index"`
}

func (c *conn) ListIndices(ctx context.Context) ([]string, error) {
	if c.closed {
		return nil, cluster.ErrClosed
	}
	ctx, cancel := c.withTimeout(ctx, 0)
	defer cancel()

	res, err := c.client.Cat.Indices(
		c.client.Cat.Indices.WithContext(ctx),
		c.client.Cat.Indices.WithFormat("json"),
		c.client.Cat.Indices.WithH("index"),
		c.client.Cat.Indices.WithExpandWildcards("all"),
	)
	if err != nil {
		return nil, errors.WrapWithDetails(err, "failed to list indices", "address", c.address)
	}
	defer drain(res)
	if res.IsError() {
		return nil, errors.WithDetails(ErrNonSuccessResponse, "address", c.address, "status", res.StatusCode)
	}

	var entries []catIndex
	if err := json.NewDecoder(res.Body).Decode(&entries); err != nil {
		return nil, errors.WrapWithDetails(err, "failed to decode index listing", "address", c.address)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Index)
	}
	return names, nil
}

// DeleteIndices deletes names in as many requests as needed to keep each
// index list under the configured length. Every chunk is attempted; the
// failures are combined into the returned error.
func (c *conn) DeleteIndices(ctx context.Context, names []string, timeout time.Duration) error {
	if c.closed {
		return cluster.ErrClosed
	}
	var errs []error
	for _, chunk := range Chunk(names, c.config.MaxRequestURLLength) {
		errs = append(errs, c.deleteChunk(ctx, chunk, timeout))
	}
	return errors.Combine(errs...)
}

func (c *conn) deleteChunk(ctx context.Context, chunk []string, timeout time.Duration) error {
	ctx, cancel := c.withTimeout(ctx, timeout)
	defer cancel()

	options := []func(*esapi.IndicesDeleteRequest){
		c.client.Indices.Delete.WithContext(ctx),
	}
	if timeout > 0 {
		options = append(options,
			c.client.Indices.Delete.WithMasterTimeout(timeout),
			c.client.Indices.Delete.WithTimeout(timeout),
		)
	}

	res, err := c.client.Indices.Delete(chunk, options...)
	if err != nil {
		return errors.WrapWithDetails(err, "failed to delete indices", "address", c.address, "indices", len(chunk))
	}
	defer drain(res)
	if res.IsError() {
		return errors.WithDetails(ErrNonSuccessResponse, "address", c.address, "status", res.StatusCode, "indices", len(chunk))
	}
	return nil
}

// Close releases the connection. The underlying transport is shared and
// stays open.
func (c *conn) Close() error {
	if c.closed {
		return cluster.ErrClosed
	}
	c.closed = true
	return nil
}

// Chunk splits names into groups whose comma separated length does not
// exceed limit. A single name longer than limit gets a group of its own.
func Chunk(names []string, limit int) [][]string {
	var (
		chunks  [][]string
		current []string
		size    int
	)
	for _, name := range names {
		add := len(name)
		if len(current) > 0 {
			add++
		}
		if len(current) > 0 && size+add > limit {
			chunks = append(chunks, current)
			current, size, add = nil, 0, len(name)
		}
		current = append(current, name)
		size += add
	}
	if len(current) > 0 {
		chunks = append(chunks, current)
	}
	return chunks
}

func drain(res *esapi.Response) {
	if res == nil || res.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, res.Body)
	res.Body.Close()
}
