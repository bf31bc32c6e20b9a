// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package retention

import (
	"fmt"
	"strings"
	"time"

	"emperror.dev/errors"
)

const (
	// IndexSeparator splits the topic from the date suffix of an index name.
	IndexSeparator = "-"

	// IndexDateLayout is the only accepted date suffix format, e.g. 2020.01.02.
	IndexDateLayout = "2006.01.02"

	errWrappedFmt = "%w: %s"
)

// ErrMalformedIndexName is returned for index names that do not carry a
// date. Such indices are never deleted.
const ErrMalformedIndexName = errors.Sentinel("no date information in index name")

// IndexName is an index name split into its topic and date.
type IndexName struct {
	Raw   string
	Topic string

	// Date is midnight of the index day.
	Date time.Time
}

// ParseIndexName splits raw on its last separator and parses the suffix as
// an IndexDateLayout date in loc.
func ParseIndexName(raw string, loc *time.Location) (IndexName, error) {
	i := strings.LastIndex(raw, IndexSeparator)
	if i < 0 {
		return IndexName{}, errors.WithDetails(ErrMalformedIndexName, "index", raw)
	}

	topic, suffix := raw[:i], raw[i+len(IndexSeparator):]
	if len(suffix) != len(IndexDateLayout) {
		return IndexName{}, errors.WithDetails(
			fmt.Errorf(errWrappedFmt, ErrMalformedIndexName, fmt.Sprintf("date suffix %q does not match %s", suffix, IndexDateLayout)),
			"index", raw)
	}

	if loc == nil {
		loc = time.UTC
	}
	date, err := time.ParseInLocation(IndexDateLayout, suffix, loc)
	if err != nil {
		return IndexName{}, errors.WithDetails(
			fmt.Errorf(errWrappedFmt, ErrMalformedIndexName, err.Error()),
			"index", raw)
	}

	return IndexName{
		Raw:   raw,
		Topic: topic,
		Date:  date,
	}, nil
}

// DeletionDate returns the first day that is still retained for a window of
// retentionDays, counted back from the calendar day of reference.
func DeletionDate(reference time.Time, retentionDays int) time.Time {
	y, m, d := reference.Date()
	return time.Date(y, m, d-retentionDays, 0, 0, 0, 0, reference.Location())
}

// IsExpired reports whether the index named rawIndexName is dated strictly
// before the deletion date of its topic. Names without a date yield an error
// matching ErrMalformedIndexName.
func IsExpired(rawIndexName string, policy Policy, reference time.Time) (bool, error) {
	name, err := ParseIndexName(rawIndexName, reference.Location())
	if err != nil {
		return false, err
	}
	deletionDate := DeletionDate(reference, policy.RetentionDaysFor(name.Topic))
	return name.Date.Before(deletionDate), nil
}
