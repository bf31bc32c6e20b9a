// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"testing"
	"time"

	"emperror.dev/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xmidt-org/curator/cluster/driver"
)

func newTestViper(t *testing.T, args ...string) *viper.Viper {
	fs := pflag.NewFlagSet(applicationName, pflag.ContinueOnError)
	setupFlagSet(fs)
	require.NoError(t, fs.Parse(args))

	v := viper.New()
	require.NoError(t, setupViper(v, fs))
	return v
}

func setRegistryEnv(t *testing.T) {
	t.Setenv(RegistryURLEnv, "http://registry.example.io/api/clusters")
	t.Setenv(RegistryClientKeyEnv, "secret")
}

func TestLoadConfigDefaults(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
	)
	setRegistryEnv(t)

	c, err := loadConfig(newTestViper(t))
	require.NoError(err)
	assert.Equal("http://registry.example.io/api/clusters", c.Registry.URL)
	assert.Equal("secret", c.Registry.ClientKey)
	assert.Equal(time.Hour, c.DeleteTimeout)
	assert.False(c.DryRun)
	assert.Equal(driver.Elasticsearch, c.Cluster.Driver)
	assert.Equal(applicationName, c.Metrics.Job)
	assert.Equal("/health", c.Servers.Health.Path)
	assert.Equal("/metrics", c.Servers.Metrics.Path)
	assert.Empty(c.Schedule)

	rc := c.Registry.clientConfig()
	assert.Equal(c.Registry.URL, rc.URL)
	assert.Equal(c.Registry.ClientKey, rc.ClientKey)
}

func TestLoadConfigDryRunFlag(t *testing.T) {
	for _, args := range [][]string{{"-d"}, {"--dry-run"}} {
		setRegistryEnv(t)
		c, err := loadConfig(newTestViper(t, args...))
		require.NoError(t, err)
		assert.True(t, c.DryRun, "args: %v", args)
	}
}

func TestLoadConfigDeleteTimeout(t *testing.T) {
	tcs := []struct {
		Description string
		Value       string
		Expected    time.Duration
		ExpectedErr error
	}{
		{
			Description: "Seconds",
			Value:       "120",
			Expected:    2 * time.Minute,
		},
		{
			Description: "Duration",
			Value:       "1h30m",
			Expected:    90 * time.Minute,
		},
		{
			Description: "Empty uses the default",
			Value:       "",
			Expected:    time.Hour,
		},
		{
			Description: "Garbage",
			Value:       "soon",
			ExpectedErr: ErrInvalidDeleteTimeout,
		},
		{
			Description: "Zero",
			Value:       "0",
			ExpectedErr: ErrInvalidConfig,
		},
		{
			Description: "Negative",
			Value:       "-5",
			ExpectedErr: ErrInvalidDeleteTimeout,
		},
		{
			Description: "Negative duration",
			Value:       "-5s",
			ExpectedErr: ErrInvalidConfig,
		},
		{
			Description: "Leading zeros",
			Value:       "0900",
			Expected:    15 * time.Minute,
		},
		{
			Description: "Unit-less float",
			Value:       "1.5",
			ExpectedErr: ErrInvalidDeleteTimeout,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.Description, func(t *testing.T) {
			assert := assert.New(t)
			setRegistryEnv(t)
			t.Setenv(DeleteTimeoutEnv, tc.Value)

			c, err := loadConfig(newTestViper(t))
			if tc.ExpectedErr != nil {
				assert.True(errors.Is(err, tc.ExpectedErr), "unexpected error: %v", err)
				return
			}
			assert.NoError(err)
			assert.Equal(tc.Expected, c.DeleteTimeout)
		})
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	tcs := []struct {
		Description string
		Set         map[string]interface{}
		SkipEnv     bool
	}{
		{
			Description: "Missing registry",
			SkipEnv:     true,
		},
		{
			Description: "Registry URL is not a URL",
			Set:         map[string]interface{}{"registry.url": "not a url"},
		},
		{
			Description: "Unknown driver",
			Set:         map[string]interface{}{"cluster.driver": "cassandra"},
		},
		{
			Description: "Negative concurrency",
			Set:         map[string]interface{}{"concurrency": -1},
		},
		{
			Description: "Bad push gateway",
			Set:         map[string]interface{}{"metrics.pushGateway": "::"},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.Description, func(t *testing.T) {
			assert := assert.New(t)
			if !tc.SkipEnv {
				setRegistryEnv(t)
			}
			v := newTestViper(t)
			for key, value := range tc.Set {
				v.Set(key, value)
			}

			_, err := loadConfig(v)
			assert.True(errors.Is(err, ErrInvalidConfig), "unexpected error: %v", err)
		})
	}
}

func TestParseDeleteTimeout(t *testing.T) {
	tcs := []struct {
		Description string
		Raw         interface{}
		Expected    time.Duration
		ExpectedErr error
	}{
		{
			Description: "Unset",
			Raw:         nil,
			Expected:    defaultDeleteTimeout,
		},
		{
			Description: "Blank",
			Raw:         "  ",
			Expected:    defaultDeleteTimeout,
		},
		{
			Description: "Integer seconds",
			Raw:         3600,
			Expected:    time.Hour,
		},
		{
			Description: "String seconds",
			Raw:         "3600",
			Expected:    time.Hour,
		},
		{
			Description: "Leading zeros are decimal",
			Raw:         "0900",
			Expected:    900 * time.Second,
		},
		{
			Description: "Leading zeros with an octal-invalid digit",
			Raw:         "0090",
			Expected:    90 * time.Second,
		},
		{
			Description: "Zero",
			Raw:         "000",
			Expected:    0,
		},
		{
			Description: "Duration",
			Raw:         "45s",
			Expected:    45 * time.Second,
		},
		{
			Description: "Fractional duration",
			Raw:         "1.5h",
			Expected:    90 * time.Minute,
		},
		{
			Description: "Duration value",
			Raw:         2 * time.Minute,
			Expected:    2 * time.Minute,
		},
		{
			Description: "Unit-less float string",
			Raw:         "1.5",
			ExpectedErr: ErrInvalidDeleteTimeout,
		},
		{
			Description: "Unit-less float",
			Raw:         1.5,
			ExpectedErr: ErrInvalidDeleteTimeout,
		},
		{
			Description: "Garbage",
			Raw:         "soon",
			ExpectedErr: ErrInvalidDeleteTimeout,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.Description, func(t *testing.T) {
			assert := assert.New(t)
			d, err := parseDeleteTimeout(tc.Raw)
			if tc.ExpectedErr != nil {
				assert.True(errors.Is(err, tc.ExpectedErr), "unexpected error: %v", err)
				return
			}
			assert.NoError(err)
			assert.Equal(tc.Expected, d)
		})
	}
}

func TestLoadConfigMemoryClusterKeys(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
	)
	setRegistryEnv(t)

	v, _, err := setup([]string{"-f", writeConfigFile(t, `
cluster:
  driver: memory
  memory:
    clusters:
      ES-1: ["app-2020.01.01"]
`)})
	require.NoError(err)

	c, err := loadConfig(v)
	require.NoError(err)
	assert.Equal(map[string][]string{"es-1": {"app-2020.01.01"}}, c.Cluster.Memory.Clusters)
	assert.Equal(driver.Memory, c.Cluster.Driver)
}
