/**
 * Copyright 2020 Comcast Cable Communications Management, LLC
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

package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/spf13/viper"
	"github.com/xmidt-org/touchstone"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const prometheusConfigKey = "prometheus"

func provideTouchstoneConfig(v *viper.Viper) (c touchstone.Config, err error) {
	err = v.UnmarshalKey(prometheusConfigKey, &c)
	return
}

// provideMetrics builds the metrics registry and makes it available to the container
func provideMetrics() fx.Option {
	return fx.Options(
		fx.Provide(provideTouchstoneConfig),
		touchstone.Provide(),
	)
}

// pushMetrics sends the gathered metrics to the configured Pushgateway. Short
// lived runs are otherwise never scraped.
func pushMetrics(c MetricsConfig, g prometheus.Gatherer, logger *zap.Logger) {
	if len(c.PushGateway) == 0 {
		return
	}
	err := push.New(c.PushGateway, c.Job).Gatherer(g).Push()
	if err != nil {
		logger.Error("Unable to push metrics", zap.String("url", c.PushGateway), zap.Error(err))
		return
	}
	logger.Debug("Pushed metrics", zap.String("url", c.PushGateway))
}
