/**
 * Copyright 2021 Comcast Cable Communications Management, LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/bascule/acquire"
	"github.com/xmidt-org/curator/model"
	"github.com/xmidt-org/curator/retention"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

// Errors returned by Fetch are wrapped; use errors.Is() to check for them.
var (
	ErrNilMeasures         = errors.New("measures cannot be nil")
	ErrURLEmpty            = errors.New("registry URL is required")
	ErrClientKeyEmpty      = errors.New("registry client key is required")
	ErrAuthAcquirerFailure = errors.New("failed acquiring auth token")
	ErrNonSuccessResponse  = errors.New("registry responded with a non-success status code")
	ErrInvalidCluster      = errors.New("registry returned an invalid cluster entry")
)

var (
	errNewRequestFailure  = errors.New("failed creating an HTTP request")
	errDoRequestFailure   = errors.New("http client failed while sending request")
	errReadingBodyFailure = errors.New("failed while reading http response body")
	errJSONUnmarshal      = errors.New("failed unmarshaling JSON response payload")
)

const (
	// ClientKeyParam is the query parameter carrying the client key.
	ClientKeyParam = "client_key"

	defaultTimeout = 30 * time.Second

	errWrappedFmt    = "%w: %s"
	errStatusCodeFmt = "%w: received status %v"
)

// Config contains the data needed to reach the cluster registry.
type Config struct {
	// URL is the registry endpoint returning the cluster list.
	URL string

	// ClientKey identifies this client to the registry.
	ClientKey string

	// Timeout bounds a whole fetch.
	// (Optional) Defaults to 30 seconds.
	Timeout time.Duration

	// HTTPClient refers to the client that will be used to send requests.
	// (Optional) Defaults to http.DefaultClient.
	HTTPClient *http.Client

	// Auth provides the mechanism to add auth headers to outgoing requests.
	// (Optional) If not provided, no auth headers are added.
	Auth Auth
}

// Auth contains authorization data for requests to the registry.
type Auth struct {
	JWT   acquire.RemoteBearerTokenAcquirerOptions
	Basic string
}

// Client fetches cluster retention policies from the registry.
type Client struct {
	client   *http.Client
	auth     acquire.Acquirer
	fetchURL string
	timeout  time.Duration
	validate *validator.Validate
	measures *Measures
}

// NewClient creates a new Client from config.
func NewClient(config Config, measures *Measures) (*Client, error) {
	err := validateConfig(&config)
	if err != nil {
		return nil, err
	}
	if measures == nil {
		return nil, ErrNilMeasures
	}

	fetchURL, err := buildFetchURL(config.URL, config.ClientKey)
	if err != nil {
		return nil, err
	}

	tokenAcquirer, err := buildTokenAcquirer(config.Auth)
	if err != nil {
		return nil, err
	}

	return &Client{
		client:   config.HTTPClient,
		auth:     tokenAcquirer,
		fetchURL: fetchURL,
		timeout:  config.Timeout,
		validate: validator.New(),
		measures: measures,
	}, nil
}

// Fetch returns the retention policy of every cluster in the registry.
// Any failure, including a single invalid entry, fails the whole fetch.
func (c *Client) Fetch(ctx context.Context) (policies []retention.Policy, err error) {
	defer func() {
		outcome := SuccessOutcome
		if err != nil {
			outcome = FailureOutcome
		}
		c.measures.Fetches.With(prometheus.Labels{OutcomeLabel: outcome}).Inc()
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.sendRequest(ctx)
	if err != nil {
		return nil, err
	}

	if resp.Code < http.StatusOK || resp.Code >= http.StatusMultipleChoices {
		sallust.Get(ctx).Error("Registry responded with a non-success status code",
			zap.Int("code", resp.Code))
		return nil, fmt.Errorf(errStatusCodeFmt, ErrNonSuccessResponse, resp.Code)
	}

	var clusters []model.Cluster
	err = json.Unmarshal(resp.Body, &clusters)
	if err != nil {
		return nil, fmt.Errorf("Fetch: %w: %s", errJSONUnmarshal, err.Error())
	}

	policies = make([]retention.Policy, 0, len(clusters))
	for i, cluster := range clusters {
		err = c.validate.Struct(cluster)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %s", ErrInvalidCluster, i, err.Error())
		}
		policies = append(policies, retention.NewPolicy(
			cluster.Address, *cluster.LogRetentionDays, cluster.LogRetentionDaysPerTopic))
	}

	return policies, nil
}

type response struct {
	Body []byte
	Code int
}

func (c *Client) sendRequest(ctx context.Context) (response, error) {
	r, err := http.NewRequestWithContext(ctx, http.MethodGet, c.fetchURL, nil)
	if err != nil {
		return response{}, fmt.Errorf(errWrappedFmt, errNewRequestFailure, err.Error())
	}
	err = acquire.AddAuth(r, c.auth)
	if err != nil {
		return response{}, fmt.Errorf(errWrappedFmt, ErrAuthAcquirerFailure, err.Error())
	}
	r.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(r)
	if err != nil {
		return response{}, fmt.Errorf(errWrappedFmt, errDoRequestFailure, err.Error())
	}
	defer resp.Body.Close()

	var rResp = response{
		Code: resp.StatusCode,
	}
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return rResp, fmt.Errorf(errWrappedFmt, errReadingBodyFailure, err.Error())
	}
	rResp.Body = bodyBytes
	return rResp, nil
}

func buildFetchURL(rawURL, clientKey string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf(errWrappedFmt, ErrURLEmpty, err.Error())
	}
	q := u.Query()
	q.Set(ClientKeyParam, clientKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func isEmpty(options acquire.RemoteBearerTokenAcquirerOptions) bool {
	return len(options.AuthURL) < 1 || options.Buffer == 0 || options.Timeout == 0
}

func buildTokenAcquirer(auth Auth) (acquire.Acquirer, error) {
	if !isEmpty(auth.JWT) {
		return acquire.NewRemoteBearerTokenAcquirer(auth.JWT)
	} else if len(auth.Basic) > 0 {
		return acquire.NewFixedAuthAcquirer(auth.Basic)
	}
	return &acquire.DefaultAcquirer{}, nil
}

func validateConfig(config *Config) error {
	if config.URL == "" {
		return ErrURLEmpty
	}

	if config.ClientKey == "" {
		return ErrClientKeyEmpty
	}

	if config.HTTPClient == nil {
		config.HTTPClient = http.DefaultClient
	}

	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	return nil
}
