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
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAPIResultCountsOnlyAvailableUpdates(t *testing.T) {
	now := time.Now()

	result := NewAPIResult([]PluginStatus{
		{Name: "homebridge", UpdateAvailable: false},
		{Name: "homebridge-hue", UpdateAvailable: true},
		{Name: "homebridge-ring", UpdateAvailable: true},
	}, now)

	assert.Equal(t, SourceUIAPI, result.Source)
	assert.Equal(t, 2, result.Count)
	assert.Len(t, result.Outdated, 2)
	assert.Equal(t, "homebridge-hue", result.Outdated[0].Name)
	assert.True(t, result.HasUpdates())
	assert.Equal(t, now, result.CheckedAt)
}

func TestNewAPIResultEmpty(t *testing.T) {
	result := NewAPIResult(nil, time.Now())

	assert.Equal(t, 0, result.Count)
	assert.False(t, result.HasUpdates())
}

func TestNewRegistryResult(t *testing.T) {
	result := NewRegistryResult(map[string]string{"homebridge": "1.8.0", "homebridge-nest": "4.6.9"}, time.Now())

	assert.Equal(t, SourceRegistry, result.Source)
	assert.Equal(t, 2, result.Count)
	assert.Equal(t, []string{"homebridge", "homebridge-nest"}, result.Names())

	empty := NewRegistryResult(nil, time.Now())
	assert.NotNil(t, empty.Upgrades)
	assert.Equal(t, 0, empty.Count)
}

func TestNilResultHasNoUpdates(t *testing.T) {
	var result *UpdateCheckResult

	assert.False(t, result.HasUpdates())
	assert.Nil(t, result.Names())
}

func TestPluginStatusDecodesManagementPayload(t *testing.T) {
	payload := `[{"name":"homebridge-hue","installedVersion":"0.13.0","latestVersion":"0.13.1","updateAvailable":true}]`

	var records []PluginStatus
	require.NoError(t, json.Unmarshal([]byte(payload), &records))

	require.Len(t, records, 1)
	assert.Equal(t, "0.13.1", records[0].LatestVersion)
	assert.True(t, records[0].UpdateAvailable)
}

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Duration
		wantErr  bool
	}{
		{name: "string duration", input: `"8h"`, expected: Duration(8 * time.Hour)},
		{name: "numeric nanoseconds", input: `5000000000`, expected: Duration(5 * time.Second)},
		{name: "invalid string", input: `"soon"`, wantErr: true},
		{name: "invalid type", input: `true`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration

			err := json.Unmarshal([]byte(tt.input), &d)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, d)
		})
	}
}

func TestNATSConfigValidate(t *testing.T) {
	cfg := &NATSConfig{URL: "nats://127.0.0.1:4222"}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "homebridge.plugin-update", cfg.Subject)

	assert.Error(t, (&NATSConfig{}).Validate())
}
