// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/justinas/alice"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xmidt-org/curator/curator"
	"github.com/xmidt-org/httpaux"
	"github.com/xmidt-org/httpaux/recovery"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const readHeaderTimeout = 10 * time.Second

type SchedulerIn struct {
	fx.In
	Config Config
	Fleet  *curator.Fleet
	Logger *zap.Logger
}

type ServersIn struct {
	fx.In
	Config   Config
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
	LC       fx.Lifecycle
}

// provideScheduledMode adds the pieces of a long running process: the sweep
// scheduler plus the health and metrics servers.
func provideScheduledMode() fx.Option {
	return fx.Options(
		fx.Provide(provideScheduler),
		fx.Invoke(
			startScheduler,
			BuildHealthRoutes,
			BuildMetricsRoutes,
		),
	)
}

func provideScheduler(in SchedulerIn) (*curator.Scheduler, error) {
	return curator.NewScheduler(curator.SchedulerConfig{
		Schedule:      in.Config.Schedule,
		DeleteTimeout: in.Config.DeleteTimeout,
		DryRun:        in.Config.DryRun,
	}, in.Fleet, in.Logger)
}

func startScheduler(lc fx.Lifecycle, s *curator.Scheduler) {
	lc.Append(fx.Hook{
		OnStart: s.Start,
		OnStop:  s.Stop,
	})
}

func newHealthHandler(path string) http.Handler {
	router := mux.NewRouter()
	router.Handle(path, httpaux.ConstantHandler{
		StatusCode:  http.StatusOK,
		ContentType: "application/json",
		Body:        []byte(`{"status":"up"}`),
	}).Methods(http.MethodGet)
	return alice.New(recovery.Middleware(recovery.WithStatusCode(555))).Then(router)
}

func newMetricsHandler(path string, g prometheus.Gatherer) http.Handler {
	router := mux.NewRouter()
	router.Handle(path, promhttp.HandlerFor(g, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	return alice.New(recovery.Middleware(recovery.WithStatusCode(555))).Then(router)
}

func BuildHealthRoutes(in ServersIn) {
	appendServer(in.LC, in.Logger, "health", in.Config.Servers.Health.Address,
		newHealthHandler(in.Config.Servers.Health.Path))
}

func BuildMetricsRoutes(in ServersIn) {
	appendServer(in.LC, in.Logger, "metrics", in.Config.Servers.Metrics.Address,
		newMetricsHandler(in.Config.Servers.Metrics.Path, in.Gatherer))
}

// appendServer binds an HTTP server to the application lifecycle. An empty
// address disables the server.
func appendServer(lc fx.Lifecycle, logger *zap.Logger, name, address string, handler http.Handler) {
	if len(address) == 0 {
		logger.Info("Server disabled", zap.String("server", name))
		return
	}

	logger = logger.With(zap.String("server", name), zap.String("address", address))
	server := &http.Server{
		Addr:              address,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			l, err := net.Listen("tcp", address)
			if err != nil {
				return err
			}
			go func() {
				if err := server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("Server stopped", zap.Error(err))
				}
			}()
			logger.Info("Server started")
			return nil
		},
		OnStop: server.Shutdown,
	})
}
