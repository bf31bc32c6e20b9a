// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package cluster

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/touchstone"
	"go.uber.org/fx"
)

// Names
const (
	OperationDurationHistogram = "curator_cluster_operation_duration_seconds"
)

// Labels
const (
	OperationLabel = "operation"
	OutcomeLabel   = "outcome"
)

// Label Values
const (
	SuccessOutcome = "success"
	FailureOutcome = "failure"
)

// ProvideMetrics returns the Metrics relevant to this package
func ProvideMetrics() fx.Option {
	return fx.Options(
		touchstone.HistogramVec(
			prometheus.HistogramOpts{
				Name:    OperationDurationHistogram,
				Help:    "A histogram of latencies for operations against search clusters.",
				Buckets: []float64{0.0625, 0.125, .25, .5, 1, 5, 10, 20, 40, 80, 160, 320, 640, 1280, 3600},
			},
			OperationLabel,
			OutcomeLabel,
		),
	)
}

type Measures struct {
	fx.In
	Duration prometheus.ObserverVec `name:"curator_cluster_operation_duration_seconds"`
}
