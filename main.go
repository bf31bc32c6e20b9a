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
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/xmidt-org/curator/cluster"
	"github.com/xmidt-org/curator/cluster/driver"
	"github.com/xmidt-org/curator/curator"
	"github.com/xmidt-org/curator/registry"
	"github.com/xmidt-org/sallust"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	applicationName = "curator"

	stopTimeout = 5 * time.Minute
)

var (
	GitCommit = "undefined"
	Version   = "undefined"
	BuildTime = "undefined"
)

type Application struct {
	fx.In
	Config   Config
	Fleet    *curator.Fleet
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

type FleetIn struct {
	fx.In
	Config    Config
	Registry  curator.Registry
	Connector cluster.Connector
	Measures  curator.Measures
}

func provideRegistry(c Config, measures registry.Measures) (curator.Registry, error) {
	client, err := registry.NewClient(c.Registry.clientConfig(), &measures)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func provideDriverConfig(c Config) driver.Config {
	return c.Cluster
}

func provideFleet(in FleetIn) (*curator.Fleet, error) {
	executor, err := curator.NewDeletionExecutor(in.Connector, &in.Measures)
	if err != nil {
		return nil, err
	}
	return curator.NewFleet(curator.FleetConfig{Concurrency: in.Config.Concurrency}, in.Registry, executor)
}

func newApp(v *viper.Viper, logger *zap.Logger, config Config, target *Application) *fx.App {
	options := []fx.Option{
		fx.WithLogger(func() fxevent.Logger {
			l := &fxevent.ZapLogger{Logger: logger}
			l.UseLogLevel(zapcore.DebugLevel)
			return l
		}),
		fx.Supply(logger, v, config),
		provideMetrics(),
		registry.ProvideMetrics(),
		cluster.ProvideMetrics(),
		curator.ProvideMetrics(),
		driver.Provide(),
		fx.Provide(
			provideRegistry,
			provideDriverConfig,
			provideFleet,
		),
		fx.Populate(target),
	}
	if len(config.Schedule) > 0 {
		options = append(options, provideScheduledMode())
	}
	return fx.New(options...)
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	v, logger, err := setup(args)
	switch {
	case errors.Is(err, pflag.ErrHelp):
		return 0
	case err != nil:
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer logger.Sync() //nolint:errcheck

	config, err := loadConfig(v)
	if err != nil {
		logger.Error("Invalid configuration", zap.Error(err))
		return 1
	}

	var application Application
	app := newApp(v, logger, config, &application)
	if err := app.Err(); err != nil {
		logger.Error("Unable to assemble the application", zap.Error(err))
		return 1
	}

	if len(config.Schedule) > 0 {
		return runScheduled(app, logger)
	}
	return runOnce(application)
}

// runOnce performs a single sweep. Only failures before any cluster is
// processed make it return a non-zero code.
func runOnce(application Application) int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx = sallust.With(ctx, application.Logger)

	_, err := application.Fleet.Sweep(ctx, application.Config.DeleteTimeout, application.Config.DryRun)
	pushMetrics(application.Config.Metrics, application.Gatherer, application.Logger)
	if err != nil {
		return 1
	}
	return 0
}

func runScheduled(app *fx.App, logger *zap.Logger) int {
	startCtx, cancel := context.WithTimeout(context.Background(), app.StartTimeout())
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		logger.Error("Unable to start", zap.Error(err))
		return 1
	}

	sig := <-app.Done()
	logger.Info("Stopping", zap.String("signal", sig.String()))

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		logger.Error("Unable to stop cleanly", zap.Error(err))
		return 1
	}
	return 0
}
