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

//go:generate mockgen -destination=mock_checker.go -package=checker github.com/Sunoo/homebridge-plugin-update-check/pkg/checker Source,ConfigurableSource

// Package checker decides which update source drives the polling loop.
package checker

import (
	"context"

	"github.com/Sunoo/homebridge-plugin-update-check/pkg/models"
)

// Source performs one update check.
type Source interface {
	Name() string
	Check(ctx context.Context) (*models.UpdateCheckResult, error)
}

// ConfigurableSource is a Source that may be unusable on this host.
type ConfigurableSource interface {
	Source
	IsConfigured() bool
}

// Select picks the source for the whole process lifetime. The registry diff is
// used when forced or when the management API is not configured; it is never
// re-evaluated, so a later change in API availability needs a restart.
func Select(forceNcu bool, api ConfigurableSource, registry Source) Source {
	if forceNcu || api == nil || !api.IsConfigured() {
		return registry
	}

	return api
}
