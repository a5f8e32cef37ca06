/*
 * Copyright 2025 Carver Automation Corporation.
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
 */

package models

import "time"

// CheckOutcome records one settled update check, successful or not.
type CheckOutcome struct {
	Source    string        `json:"source"`
	Count     int           `json:"count"`
	Packages  []string      `json:"packages,omitempty"`
	Error     string        `json:"error,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// Succeeded reports whether the check produced a count.
func (o *CheckOutcome) Succeeded() bool {
	return o != nil && o.Error == ""
}

// NewCheckOutcome builds the outcome for a check that started at startedAt and
// settled at settledAt with result or err.
func NewCheckOutcome(source string, result *UpdateCheckResult, err error, startedAt, settledAt time.Time) *CheckOutcome {
	outcome := &CheckOutcome{
		Source:    source,
		StartedAt: startedAt,
		Duration:  settledAt.Sub(startedAt),
	}

	if err != nil {
		outcome.Error = err.Error()
		return outcome
	}

	if result != nil {
		outcome.Count = result.Count
		outcome.Packages = result.Names()
	}

	return outcome
}
