// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package retention

// Policy is the retention policy of a single cluster: a default number of
// days to keep every index plus optional per topic overrides.
// A Policy is immutable once built.
type Policy struct {
	address               string
	defaultRetentionDays  int
	perTopicRetentionDays map[string]int
}

// NewPolicy builds the retention policy of the cluster reachable at address.
// The overrides map is copied so later changes by the caller are not observed.
func NewPolicy(address string, defaultRetentionDays int, perTopicRetentionDays map[string]int) Policy {
	overrides := make(map[string]int, len(perTopicRetentionDays))
	for topic, days := range perTopicRetentionDays {
		overrides[topic] = days
	}
	return Policy{
		address:               address,
		defaultRetentionDays:  defaultRetentionDays,
		perTopicRetentionDays: overrides,
	}
}

// Address is the connection identifier of the cluster.
func (p Policy) Address() string {
	return p.address
}

// DefaultRetentionDays is the window used for topics without an override.
func (p Policy) DefaultRetentionDays() int {
	return p.defaultRetentionDays
}

// Overrides returns a copy of the per topic retention windows.
func (p Policy) Overrides() map[string]int {
	overrides := make(map[string]int, len(p.perTopicRetentionDays))
	for topic, days := range p.perTopicRetentionDays {
		overrides[topic] = days
	}
	return overrides
}

// RetentionDaysFor returns the override for topic if one exists and the
// default retention otherwise.
func (p Policy) RetentionDaysFor(topic string) int {
	if days, ok := p.perTopicRetentionDays[topic]; ok {
		return days
	}
	return p.defaultRetentionDays
}
