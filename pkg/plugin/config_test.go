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

package plugin

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/Sunoo/homebridge-plugin-update-check/pkg/models"
	"github.com/Sunoo/homebridge-plugin-update-check/pkg/poller"
	"github.com/Sunoo/homebridge-plugin-update-check/pkg/sensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := &PlatformConfig{}
	require.NoError(t, cfg.Validate())

	assert.Equal(t, PlatformName, cfg.Platform)
	assert.Equal(t, sensor.TypeMotion, cfg.SensorType)
	assert.Equal(t, filepath.Join(home, DefaultStorageDir), cfg.StoragePath)
	assert.Equal(t, poller.DefaultConfig(), cfg.SchedulerConfig())
	assert.NotNil(t, cfg.Logging)
	assert.Empty(t, cfg.HistoryPath)
	assert.Nil(t, cfg.NATS)
}

func TestValidateLegacyFields(t *testing.T) {
	tests := []struct {
		name         string
		cfg          PlatformConfig
		wantSensor   string
		wantInterval time.Duration
	}{
		{
			name:         "updateType used when sensorType empty",
			cfg:          PlatformConfig{UpdateType: "contact", StoragePath: "/var/lib/homebridge"},
			wantSensor:   sensor.TypeContact,
			wantInterval: poller.DefaultInterval,
		},
		{
			name:         "sensorType wins over updateType",
			cfg:          PlatformConfig{SensorType: "Leak", UpdateType: "contact", StoragePath: "/hb"},
			wantSensor:   sensor.TypeLeak,
			wantInterval: poller.DefaultInterval,
		},
		{
			name:         "alias normalised",
			cfg:          PlatformConfig{SensorType: "monoxide", StoragePath: "/hb"},
			wantSensor:   sensor.TypeCarbonMonoxide,
			wantInterval: poller.DefaultInterval,
		},
		{
			name:         "unknown falls back to motion",
			cfg:          PlatformConfig{SensorType: "doorbell", StoragePath: "/hb"},
			wantSensor:   sensor.TypeMotion,
			wantInterval: poller.DefaultInterval,
		},
		{
			name:         "checkFrequency in minutes overrides interval",
			cfg:          PlatformConfig{CheckFrequency: 30, Interval: models.Duration(time.Hour), StoragePath: "/hb"},
			wantSensor:   sensor.TypeMotion,
			wantInterval: 30 * time.Minute,
		},
		{
			name:         "interval kept without checkFrequency",
			cfg:          PlatformConfig{Interval: models.Duration(2 * time.Hour), StoragePath: "/hb"},
			wantSensor:   sensor.TypeMotion,
			wantInterval: 2 * time.Hour,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			require.NoError(t, cfg.Validate())

			assert.Equal(t, tt.wantSensor, cfg.SensorType)
			assert.Equal(t, tt.wantInterval, time.Duration(cfg.Interval))
		})
	}
}

func TestValidatePaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := &PlatformConfig{StoragePath: "~/hb", HistoryPath: "history/checks.db"}
	require.NoError(t, cfg.Validate())

	assert.Equal(t, filepath.Join(home, "hb"), cfg.StoragePath)
	assert.Equal(t, filepath.Join(home, "hb", "history", "checks.db"), cfg.HistoryPath)

	cfg = &PlatformConfig{StoragePath: "/srv/hb/", HistoryPath: "/tmp/checks.db"}
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "/srv/hb", cfg.StoragePath)
	assert.Equal(t, "/tmp/checks.db", cfg.HistoryPath)
}

func TestValidateErrors(t *testing.T) {
	cfg := &PlatformConfig{CheckFrequency: -5, StoragePath: "/hb"}
	require.ErrorIs(t, cfg.Validate(), errNegativeFrequency)

	cfg = &PlatformConfig{InitialDelay: models.Duration(-time.Second), StoragePath: "/hb"}
	require.ErrorIs(t, cfg.Validate(), poller.ErrInvalidDuration)

	cfg = &PlatformConfig{NATS: &models.NATSConfig{}, StoragePath: "/hb"}
	require.Error(t, cfg.Validate())
}

func TestPlatformConfigJSON(t *testing.T) {
	raw := `{
		"platform": "PluginUpdate",
		"forceNcu": true,
		"sensorType": "contact",
		"interval": "12h",
		"initialDelay": "5s",
		"storagePath": "/var/lib/homebridge",
		"ncuCommand": "npx --yes npm-check-updates",
		"nats": {"url": "nats://127.0.0.1:4222"},
		"logging": {"level": "debug"}
	}`

	var cfg PlatformConfig
	require.NoError(t, json.Unmarshal([]byte(raw), &cfg))
	require.NoError(t, cfg.Validate())

	assert.True(t, cfg.ForceNcu)
	assert.Equal(t, 12*time.Hour, time.Duration(cfg.Interval))
	assert.Equal(t, 5*time.Second, time.Duration(cfg.InitialDelay))
	assert.Equal(t, poller.DefaultCheckTimeout, time.Duration(cfg.CheckTimeout))
	assert.Equal(t, models.DefaultNATSSubject, cfg.NATS.Subject)
	assert.Equal(t, "debug", cfg.Logging.Level)
}
