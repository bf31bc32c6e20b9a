// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package driver

import (
	"emperror.dev/errors"
	"github.com/xmidt-org/curator/cluster"
	"github.com/xmidt-org/curator/cluster/elastic"
	"github.com/xmidt-org/curator/cluster/inmem"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Supported drivers.
const (
	Elasticsearch = "elasticsearch"
	Memory        = "memory"
)

const ErrUnknownDriver = errors.Sentinel("unknown cluster driver")

type Config struct {
	// Driver selects the implementation. Empty means Elasticsearch.
	Driver string `validate:"omitempty,oneof=elasticsearch memory"`

	Elasticsearch elastic.Config
	Memory        inmem.Config
}

type SetupIn struct {
	fx.In
	Config   Config
	Measures cluster.Measures
	Logger   *zap.Logger
}

func Provide() fx.Option {
	return fx.Options(
		fx.Provide(
			SetupConnector,
		),
	)
}

// SetupConnector builds the configured connector, decorated with logging and
// instrumentation.
func SetupConnector(in SetupIn) (cluster.Connector, error) {
	var c cluster.Connector
	switch in.Config.Driver {
	case "", Elasticsearch:
		in.Logger.Info("using elasticsearch cluster implementation")
		c = elastic.NewConnector(in.Config.Elasticsearch)
	case Memory:
		in.Logger.Info("using in memory cluster implementation")
		c = inmem.FromConfig(in.Config.Memory)
	default:
		return nil, errors.WithDetails(ErrUnknownDriver, "driver", in.Config.Driver)
	}
	return cluster.Instrument(cluster.Log(c), in.Measures), nil
}
