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
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/Sunoo/homebridge-plugin-update-check/pkg/history"
	"github.com/Sunoo/homebridge-plugin-update-check/pkg/logger"
	"github.com/Sunoo/homebridge-plugin-update-check/pkg/models"
	"github.com/Sunoo/homebridge-plugin-update-check/pkg/poller"
	"github.com/Sunoo/homebridge-plugin-update-check/pkg/sensor"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const storage = "/var/lib/homebridge"

type stubRunner struct {
	stdout string
	calls  int
}

func (s *stubRunner) Run(context.Context, string, ...string) (stdout, stderr []byte, err error) {
	s.calls++
	return []byte(s.stdout), nil, nil
}

// manualClock hands out timers through gomock and lets the test fire them.
type manualClock struct {
	clock *poller.MockClock
	fired chan func()
}

func newManualClock(t *testing.T) *manualClock {
	t.Helper()

	ctrl := gomock.NewController(t)
	timer := poller.NewMockTimer(ctrl)
	timer.EXPECT().Stop().Return(true).AnyTimes()

	mc := &manualClock{
		clock: poller.NewMockClock(ctrl),
		fired: make(chan func(), 8),
	}

	mc.clock.EXPECT().Now().Return(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)).AnyTimes()
	mc.clock.EXPECT().AfterFunc(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ time.Duration, f func()) poller.Timer {
			mc.fired <- f
			return timer
		}).AnyTimes()

	return mc
}

// next returns the callback of the most recently armed timer.
func (m *manualClock) next(t *testing.T) func() {
	t.Helper()

	select {
	case f := <-m.fired:
		return f
	case <-time.After(5 * time.Second):
		t.Fatal("no timer armed")
		return nil
	}
}

func writeJSON(t *testing.T, fs afero.Fs, path string, v interface{}) {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, path, data, 0o600))
}

func startPlatform(t *testing.T, p *Platform) <-chan error {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)

	go func() {
		errCh <- p.Start(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		_ = p.Stop(context.Background())
	})

	return errCh
}

func TestNewPlatformFallsBackToRegistry(t *testing.T) {
	fs := afero.NewMemMapFs()

	p, err := NewPlatform(context.Background(), &PlatformConfig{StoragePath: storage}, logger.NewTestLogger(),
		WithFs(fs), WithRunner(&stubRunner{}))
	require.NoError(t, err)

	assert.Equal(t, models.SourceRegistry, p.Source().Name())
	assert.Equal(t, sensor.TypeMotion, p.Spec().Type)
	assert.Equal(t, sensor.NewAccessory(PlatformName).UUID, p.Accessory().UUID)
}

func TestNewPlatformPrefersManagementAPI(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeJSON(t, fs, filepath.Join(storage, "config.json"), map[string]interface{}{
		"platforms": []map[string]interface{}{{"platform": "config", "port": 8581}},
	})
	writeJSON(t, fs, filepath.Join(storage, ".uix-secrets"), map[string]string{"secretKey": "s3cret"})

	p, err := NewPlatform(context.Background(), &PlatformConfig{StoragePath: storage}, nil, WithFs(fs))
	require.NoError(t, err)
	assert.Equal(t, models.SourceUIAPI, p.Source().Name())

	forced, err := NewPlatform(context.Background(), &PlatformConfig{StoragePath: storage, ForceNcu: true}, nil, WithFs(fs))
	require.NoError(t, err)
	assert.Equal(t, models.SourceRegistry, forced.Source().Name())
}

func TestNewPlatformErrors(t *testing.T) {
	_, err := NewPlatform(context.Background(), nil, nil)
	require.ErrorIs(t, err, errNilConfig)

	_, err = NewPlatform(context.Background(), &PlatformConfig{CheckFrequency: -1, StoragePath: storage}, nil)
	require.ErrorIs(t, err, errNegativeFrequency)

	_, err = NewPlatform(context.Background(), &PlatformConfig{
		StoragePath: storage,
		NATS:        &models.NATSConfig{URL: "nats://127.0.0.1:1"},
	}, nil, WithFs(afero.NewMemMapFs()))
	require.Error(t, err)
}

func TestPlatformRegistryCheckTripsContactSensor(t *testing.T) {
	clock := newManualClock(t)
	runner := &stubRunner{stdout: `{"homebridge-hue":"0.13.70","left-pad":"2.0.0"}`}
	historyPath := filepath.Join(t.TempDir(), "history.db")

	cfg := &PlatformConfig{StoragePath: storage, SensorType: "contact", HistoryPath: historyPath}

	p, err := NewPlatform(context.Background(), cfg, logger.NewTestLogger(),
		WithFs(afero.NewMemMapFs()), WithRunner(runner), WithClock(clock.clock))
	require.NoError(t, err)

	errCh := startPlatform(t, p)

	fire := clock.next(t)

	initial, ok := p.LastState()
	require.True(t, ok, "accessory registered before the first check")
	assert.Equal(t, 0, initial.Value)

	fire()

	state, ok := p.LastState()
	require.True(t, ok)
	assert.Equal(t, 1, state.Value)
	assert.Equal(t, 1, state.Outdated)
	assert.Equal(t, []string{"homebridge-hue"}, state.Packages)
	assert.Equal(t, 1, runner.calls)

	// The next interval is armed after the check settles.
	clock.next(t)

	require.NoError(t, p.Stop(context.Background()))
	require.NoError(t, <-errCh)

	store, err := history.Open(context.Background(), historyPath)
	require.NoError(t, err)

	defer func() { _ = store.Close() }()

	last, err := store.Last(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, last.Count)
	assert.Equal(t, models.SourceRegistry, last.Source)
}

func TestPlatformManagementAPICheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/api/plugins":
			_ = json.NewEncoder(w).Encode([]models.PluginStatus{
				{Name: "homebridge-ring", InstalledVersion: "12.0.0", LatestVersion: "13.0.0", UpdateAvailable: true},
				{Name: "homebridge-hue", InstalledVersion: "0.13.70", LatestVersion: "0.13.70"},
			})
		case "/api/status/homebridge-version":
			_ = json.NewEncoder(w).Encode(models.PluginStatus{
				Name: "homebridge", InstalledVersion: "1.8.0", LatestVersion: "1.8.4", UpdateAvailable: true,
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)

	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	fs := afero.NewMemMapFs()
	writeJSON(t, fs, filepath.Join(storage, "config.json"), map[string]interface{}{
		"platforms": []map[string]interface{}{
			{"platform": "PluginUpdate"},
			{"platform": "homebridge-config-ui-x.config", "host": u.Hostname(), "port": port},
		},
	})
	writeJSON(t, fs, filepath.Join(storage, ".uix-secrets"), map[string]string{"secretKey": "s3cret"})

	clock := newManualClock(t)

	p, err := NewPlatform(context.Background(), &PlatformConfig{StoragePath: storage, SensorType: "light"}, nil,
		WithFs(fs), WithClock(clock.clock), WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	require.Equal(t, models.SourceUIAPI, p.Source().Name())

	startPlatform(t, p)

	clock.next(t)()

	state, ok := p.LastState()
	require.True(t, ok)
	assert.Equal(t, 100000.0, state.Value)
	assert.Equal(t, 2, state.Outdated)
	assert.Equal(t, []string{"homebridge", "homebridge-ring"}, state.Packages)
	assert.Equal(t, 2, p.Scheduler().LastResult().Count)
}

func TestPlatformCheckFailureKeepsInitialValue(t *testing.T) {
	clock := newManualClock(t)

	p, err := NewPlatform(context.Background(), &PlatformConfig{StoragePath: storage, SensorType: "occupancy"}, nil,
		WithFs(afero.NewMemMapFs()), WithRunner(&stubRunner{stdout: "not json"}), WithClock(clock.clock))
	require.NoError(t, err)

	startPlatform(t, p)

	clock.next(t)()

	state, ok := p.LastState()
	require.True(t, ok)
	assert.Equal(t, 0, state.Value)
	assert.Nil(t, p.Scheduler().LastResult())

	clock.next(t)
}

func TestPlatformExtraSink(t *testing.T) {
	ctrl := gomock.NewController(t)
	extra := sensor.NewMockSink(ctrl)
	clock := newManualClock(t)

	extra.EXPECT().Register(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	extra.EXPECT().Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, s sensor.State) error {
			assert.Equal(t, false, s.Value)
			return nil
		})

	p, err := NewPlatform(context.Background(), &PlatformConfig{StoragePath: storage}, nil,
		WithFs(afero.NewMemMapFs()), WithRunner(&stubRunner{}), WithClock(clock.clock), WithSink(extra))
	require.NoError(t, err)

	startPlatform(t, p)

	clock.next(t)()
}

func TestPlatformConfigChangeTriggersCheck(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "plugin-update-check.json")
	fs := afero.NewOsFs()

	writeJSON(t, fs, configPath, map[string]interface{}{"storagePath": dir, "watchConfig": true})

	var cfg PlatformConfig

	raw, err := afero.ReadFile(fs, configPath)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &cfg))

	clock := newManualClock(t)
	runner := &stubRunner{stdout: `{}`}

	p, err := NewPlatform(context.Background(), &cfg, nil,
		WithFs(fs), WithRunner(runner), WithClock(clock.clock), WithConfigPath(configPath))
	require.NoError(t, err)

	startPlatform(t, p)

	clock.next(t)

	// Let the watcher register the directory before editing.
	time.Sleep(200 * time.Millisecond)

	writeJSON(t, fs, configPath, map[string]interface{}{"storagePath": dir, "watchConfig": true, "sensorType": "leak"})

	clock.next(t)()

	assert.Equal(t, 1, runner.calls)
	assert.Equal(t, sensor.TypeMotion, p.Spec().Type, "sensor type only changes on restart")
}
