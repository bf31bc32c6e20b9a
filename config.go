// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"github.com/xmidt-org/curator/cluster/driver"
	"github.com/xmidt-org/curator/registry"
)

const (
	defaultDeleteTimeout = 3600 * time.Second
	defaultPushJob       = applicationName

	durationUnits = "nsuµmh"
)

const (
	ErrInvalidConfig        = errors.Sentinel("invalid configuration")
	ErrInvalidDeleteTimeout = errors.Sentinel("invalid delete timeout")
)

// Config is the complete application configuration.
type Config struct {
	Registry RegistryConfig

	// DeleteTimeout is read separately so that plain seconds are accepted.
	DeleteTimeout time.Duration `mapstructure:"-" validate:"gt=0"`

	DryRun bool

	// Concurrency bounds the clusters processed at once. Zero means one per CPU.
	Concurrency int `validate:"gte=0"`

	// Schedule is a cron expression. When empty a single sweep is run.
	Schedule string

	Cluster driver.Config

	Metrics MetricsConfig

	Servers ServersConfig
}

type RegistryConfig struct {
	URL       string        `validate:"required,url"`
	ClientKey string        `validate:"required"`
	Timeout   time.Duration `validate:"gte=0"`
	Auth      registry.Auth `validate:"-"`
}

type MetricsConfig struct {
	// PushGateway is the Pushgateway URL metrics are pushed to after a
	// single sweep. Empty disables pushing.
	PushGateway string `validate:"omitempty,url"`
	Job         string
}

type ServersConfig struct {
	Health  ServerConfig
	Metrics ServerConfig
}

// ServerConfig describes an optional HTTP server. An empty Address disables it.
type ServerConfig struct {
	Address string
	Path    string
}

func (rc RegistryConfig) clientConfig() registry.Config {
	return registry.Config{
		URL:       rc.URL,
		ClientKey: rc.ClientKey,
		Timeout:   rc.Timeout,
		Auth:      rc.Auth,
	}
}

// parseDeleteTimeout accepts a number of seconds, as in DELETE_TIMEOUT=3600,
// or a duration with units such as 1h. Digits are always read as decimal and
// numbers without a unit must be whole seconds.
func parseDeleteTimeout(raw interface{}) (time.Duration, error) {
	s, err := cast.ToStringE(raw)
	if err != nil {
		return 0, errors.WrapWithDetails(ErrInvalidDeleteTimeout, err.Error(), "value", raw)
	}
	s = strings.TrimSpace(s)
	if len(s) == 0 {
		return defaultDeleteTimeout, nil
	}

	if isDigits(s) {
		// cast parses with base 0, so leading zeros would mean octal.
		trimmed := strings.TrimLeft(s, "0")
		if len(trimmed) == 0 {
			trimmed = "0"
		}
		seconds, err := cast.ToIntE(trimmed)
		if err != nil {
			return 0, errors.WrapWithDetails(ErrInvalidDeleteTimeout, err.Error(), "value", raw)
		}
		return time.Duration(seconds) * time.Second, nil
	}

	// cast reads a bare number as nanoseconds.
	if !strings.ContainsAny(s, durationUnits) {
		return 0, errors.WithDetails(ErrInvalidDeleteTimeout, "value", raw)
	}
	d, err := cast.ToDurationE(s)
	if err != nil {
		return 0, errors.WrapWithDetails(ErrInvalidDeleteTimeout, err.Error(), "value", raw)
	}
	return d, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

func loadConfig(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "failed to unmarshal configuration")
	}

	timeout, err := parseDeleteTimeout(v.Get("deleteTimeout"))
	if err != nil {
		return Config{}, err
	}
	c.DeleteTimeout = timeout

	if len(c.Metrics.Job) == 0 {
		c.Metrics.Job = defaultPushJob
	}

	if err := validator.New().Struct(c); err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrInvalidConfig, err.Error())
	}
	return c, nil
}
