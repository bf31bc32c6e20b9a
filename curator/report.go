// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package curator

import (
	"time"

	"go.uber.org/zap"
)

// Report summarizes one sweep of the fleet.
type Report struct {
	DryRun   bool
	Outcomes []Outcome

	Succeeded int
	Skipped   int
	Failed    int

	// Selected is the number of expired indices across all clusters.
	Selected int

	Duration time.Duration
}

func NewReport(outcomes []Outcome, dryRun bool, duration time.Duration) Report {
	r := Report{
		DryRun:   dryRun,
		Outcomes: outcomes,
		Duration: duration,
	}
	for _, o := range outcomes {
		switch {
		case o.Failed():
			r.Failed++
		case o.Skipped():
			r.Skipped++
		default:
			r.Succeeded++
		}
		r.Selected += len(o.Selected)
	}
	return r
}

// FailedAddresses returns the addresses of the failed clusters, in report order.
func (r Report) FailedAddresses() []string {
	addresses := []string{}
	for _, o := range r.Outcomes {
		if o.Failed() {
			addresses = append(addresses, o.Address)
		}
	}
	return addresses
}

func (r Report) Log(logger *zap.Logger) {
	logger.Info("Sweep completed",
		zap.String("mode", modeOf(r.DryRun)),
		zap.Int("clusters", len(r.Outcomes)),
		zap.Int("succeeded", r.Succeeded),
		zap.Int("skipped", r.Skipped),
		zap.Int("failed", r.Failed),
		zap.Int("selected", r.Selected),
		zap.Duration("duration", r.Duration),
	)
	if r.Failed > 0 {
		logger.Warn("Some clusters failed", zap.Strings("clusters", r.FailedAddresses()))
	}
}
