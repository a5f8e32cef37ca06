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

import (
	"sort"
	"time"
)

const (
	SourceRegistry = "ncu"
	SourceUIAPI    = "ui"
)

// PluginStatus is one installed component as reported by the management API.
type PluginStatus struct {
	Name             string `json:"name"`
	InstalledVersion string `json:"installedVersion"`
	LatestVersion    string `json:"latestVersion"`
	UpdateAvailable  bool   `json:"updateAvailable"`
}

// UpdateCheckResult is the outcome of a single update check.
// Count is always derived from Outdated or Upgrades; use the constructors.
type UpdateCheckResult struct {
	Source    string            `json:"source"`
	Count     int               `json:"count"`
	Outdated  []PluginStatus    `json:"outdated,omitempty"`
	Upgrades  map[string]string `json:"upgrades,omitempty"`
	CheckedAt time.Time         `json:"checked_at"`
}

// NewAPIResult keeps only records with UpdateAvailable set, preserving order.
func NewAPIResult(records []PluginStatus, checkedAt time.Time) *UpdateCheckResult {
	outdated := make([]PluginStatus, 0, len(records))

	for _, r := range records {
		if r.UpdateAvailable {
			outdated = append(outdated, r)
		}
	}

	return &UpdateCheckResult{
		Source:    SourceUIAPI,
		Count:     len(outdated),
		Outdated:  outdated,
		CheckedAt: checkedAt,
	}
}

// NewRegistryResult counts distinct package names in upgrades.
func NewRegistryResult(upgrades map[string]string, checkedAt time.Time) *UpdateCheckResult {
	if upgrades == nil {
		upgrades = map[string]string{}
	}

	return &UpdateCheckResult{
		Source:    SourceRegistry,
		Count:     len(upgrades),
		Upgrades:  upgrades,
		CheckedAt: checkedAt,
	}
}

// HasUpdates reports whether at least one component is outdated.
func (r *UpdateCheckResult) HasUpdates() bool {
	return r != nil && r.Count > 0
}

// Names returns the outdated package names in a stable order.
func (r *UpdateCheckResult) Names() []string {
	if r == nil {
		return nil
	}

	names := make([]string, 0, r.Count)

	for _, p := range r.Outdated {
		names = append(names, p.Name)
	}

	for name := range r.Upgrades {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
