// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package retention

import (
	"context"
	"time"

	"emperror.dev/errors"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

// Selection partitions an index listing.
type Selection struct {
	// Expired are the indices past their retention window, in listing order.
	Expired []string

	// Retained are well formed indices still inside their window.
	Retained []string

	// Malformed are indices whose name carries no date.
	Malformed []string
}

// Select evaluates every name of an index listing against policy. Names that
// carry no date are logged as a warning with the logger found in ctx and
// reported as Malformed. The input slice is never modified.
func Select(ctx context.Context, names []string, policy Policy, reference time.Time) Selection {
	logger := sallust.Get(ctx)
	s := Selection{
		Expired:   []string{},
		Retained:  []string{},
		Malformed: []string{},
	}

	for _, name := range names {
		expired, err := IsExpired(name, policy, reference)
		switch {
		case err != nil:
			logger.Warn("Unable to check index", zap.String("index", name), zap.Error(err),
				zap.Any("details", errors.GetDetails(err)))
			s.Malformed = append(s.Malformed, name)
		case expired:
			s.Expired = append(s.Expired, name)
		default:
			s.Retained = append(s.Retained, name)
		}
	}

	return s
}

// SelectExpired returns the subset of names that are expired under policy.
// It never returns nil.
func SelectExpired(ctx context.Context, names []string, policy Policy, reference time.Time) []string {
	return Select(ctx, names, policy, reference).Expired
}
