// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package curator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/touchstone"
	"go.uber.org/fx"
)

// Names
const (
	ClusterSweepCounter    = "curator_cluster_sweeps_total"
	IndicesSelectedCounter = "curator_indices_selected_total"
	MalformedIndexCounter  = "curator_malformed_indices_total"
)

// Labels
const (
	OutcomeLabel = "outcome"
	ModeLabel    = "mode"
)

// Label Values
const (
	SuccessOutcome = "success"
	SkippedOutcome = "skipped"
	FailureOutcome = "failure"

	LiveMode   = "live"
	DryRunMode = "dry-run"
)

// ProvideMetrics returns the Metrics relevant to this package
func ProvideMetrics() fx.Option {
	return fx.Options(
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: ClusterSweepCounter,
				Help: "Counter for the number of cluster runs (and their outcomes).",
			},
			OutcomeLabel,
			ModeLabel,
		),
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: IndicesSelectedCounter,
				Help: "Counter for the number of expired indices selected for deletion.",
			},
			ModeLabel,
		),
		touchstone.Counter(
			prometheus.CounterOpts{
				Name: MalformedIndexCounter,
				Help: "Counter for the number of indices skipped because their name carries no date.",
			},
		),
	)
}

type Measures struct {
	fx.In
	Sweeps    *prometheus.CounterVec `name:"curator_cluster_sweeps_total"`
	Selected  *prometheus.CounterVec `name:"curator_indices_selected_total"`
	Malformed prometheus.Counter     `name:"curator_malformed_indices_total"`
}
