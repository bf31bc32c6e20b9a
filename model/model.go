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

package model

// Cluster is a single entry of the cluster registry.
type Cluster struct {
	// Address is how the search cluster is reached, usually an IP address.
	Address string `json:"ipaddress" validate:"required"`

	// LogRetentionDays is the default number of days indices are kept.
	// It is a pointer so that an absent or null value is rejected instead of
	// being read as a zero day window.
	LogRetentionDays *int `json:"log_retention_days" validate:"required,gte=0"`

	// LogRetentionDaysPerTopic overrides LogRetentionDays for some topics.
	// (Optional)
	LogRetentionDaysPerTopic map[string]int `json:"log_retention_days_per_topic,omitempty" validate:"omitempty,dive,gte=0"`
}
