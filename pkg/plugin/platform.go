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

// Package plugin wires the update sources, the scheduler and the sensor sinks
// into one platform.
package plugin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/Sunoo/homebridge-plugin-update-check/pkg/checker"
	"github.com/Sunoo/homebridge-plugin-update-check/pkg/config"
	"github.com/Sunoo/homebridge-plugin-update-check/pkg/history"
	"github.com/Sunoo/homebridge-plugin-update-check/pkg/logger"
	"github.com/Sunoo/homebridge-plugin-update-check/pkg/models"
	"github.com/Sunoo/homebridge-plugin-update-check/pkg/ncu"
	"github.com/Sunoo/homebridge-plugin-update-check/pkg/poller"
	"github.com/Sunoo/homebridge-plugin-update-check/pkg/publisher"
	"github.com/Sunoo/homebridge-plugin-update-check/pkg/sensor"
	"github.com/Sunoo/homebridge-plugin-update-check/pkg/uiapi"
	"github.com/spf13/afero"
)

var (
	errNilConfig      = errors.New("platform config is required")
	errSourceMismatch = errors.New("management api source does not report configuration")
)

// Platform owns every component for the lifetime of the process.
type Platform struct {
	config     *PlatformConfig
	configPath string
	fs         afero.Fs
	logger     logger.Logger

	accessory sensor.Accessory
	spec      sensor.Spec
	source    checker.Source
	sink      sensor.Sink
	logSink   *sensor.LogSink
	scheduler *poller.Scheduler
	history   *history.Store
	publisher *publisher.Publisher
	watcher   *config.Watcher
	loader    *config.Config

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type options struct {
	fs         afero.Fs
	runner     ncu.Runner
	httpClient *http.Client
	clock      poller.Clock
	configPath string
	sinks      []sensor.Sink
}

// Option configures a Platform.
type Option func(*options)

// WithFs sets the filesystem used for the host config, secrets, the container
// marker and the watched config file.
func WithFs(fs afero.Fs) Option {
	return func(o *options) {
		o.fs = fs
	}
}

func WithRunner(r ncu.Runner) Option {
	return func(o *options) {
		o.runner = r
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

func WithClock(c poller.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithConfigPath records where cfg was loaded from. It is required for
// watchConfig.
func WithConfigPath(path string) Option {
	return func(o *options) {
		o.configPath = path
	}
}

// WithSink adds a sensor sink next to the built-in log sink.
func WithSink(s sensor.Sink) Option {
	return func(o *options) {
		o.sinks = append(o.sinks, s)
	}
}

// NewPlatform validates cfg and builds the components. The update source is
// chosen here, once.
func NewPlatform(ctx context.Context, cfg *PlatformConfig, log logger.Logger, opts ...Option) (*Platform, error) {
	if cfg == nil {
		return nil, errNilConfig
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid platform config: %w", err)
	}

	if log == nil {
		log = logger.NewTestLogger()
	}

	o := options{fs: afero.NewOsFs()}
	for _, opt := range opts {
		opt(&o)
	}

	p := &Platform{
		config:     cfg,
		configPath: o.configPath,
		fs:         o.fs,
		logger:     log,
		accessory:  sensor.NewAccessory(PlatformName),
		spec:       sensor.Resolve(cfg.SensorType),
	}

	source, err := p.selectSource(o)
	if err != nil {
		return nil, err
	}

	p.source = source

	if err := p.buildSinks(ctx, o); err != nil {
		p.closeResources()
		return nil, err
	}

	schedOpts := []poller.Option{poller.WithAccessory(p.accessory)}

	if cfg.HistoryPath != "" {
		store, err := history.Open(ctx, cfg.HistoryPath, history.WithLogger(log))
		if err != nil {
			p.closeResources()
			return nil, err
		}

		p.history = store
		schedOpts = append(schedOpts, poller.WithRecorder(store))
	}

	scheduler, err := poller.New(cfg.SchedulerConfig(), p.source, p.spec, p.sink, o.clock, log, schedOpts...)
	if err != nil {
		p.closeResources()
		return nil, err
	}

	p.scheduler = scheduler

	if cfg.WatchConfig && p.configPath != "" {
		p.loader = config.NewConfig(p.fs, log)
		p.watcher = config.NewWatcher(p.configPath, 0, log)
	}

	return p, nil
}

func (p *Platform) selectSource(o options) (checker.Source, error) {
	registry := checker.NewRegistry()

	registry.Register(models.SourceUIAPI, func() (checker.Source, error) {
		uiOpts := []uiapi.Option{uiapi.WithFs(o.fs), uiapi.WithLogger(p.logger)}
		if o.httpClient != nil {
			uiOpts = append(uiOpts, uiapi.WithHTTPClient(o.httpClient))
		}

		return uiapi.New(p.config.StoragePath, uiOpts...), nil
	})

	registry.Register(models.SourceRegistry, func() (checker.Source, error) {
		ncuOpts := []ncu.Option{ncu.WithFs(o.fs), ncu.WithCommand(p.config.NcuCommand), ncu.WithLogger(p.logger)}
		if o.runner != nil {
			ncuOpts = append(ncuOpts, ncu.WithRunner(o.runner))
		}

		return ncu.New(ncuOpts...), nil
	})

	registrySource, err := registry.Get(models.SourceRegistry)
	if err != nil {
		return nil, err
	}

	if p.config.ForceNcu {
		p.logger.Info().Msg("forceNcu is set, using node-check-updates")
		return registrySource, nil
	}

	apiSource, err := registry.Get(models.SourceUIAPI)
	if err != nil {
		return nil, err
	}

	api, ok := apiSource.(checker.ConfigurableSource)
	if !ok {
		return nil, errSourceMismatch
	}

	source := checker.Select(false, api, registrySource)

	if client, ok := source.(*uiapi.Client); ok {
		p.logger.Info().Str("url", client.BaseURL()).Msg("Using homebridge-config-ui-x API")
	} else {
		p.logger.Info().Msg("homebridge-config-ui-x API not configured, using node-check-updates")
	}

	return source, nil
}

func (p *Platform) buildSinks(ctx context.Context, o options) error {
	p.logSink = sensor.NewLogSink(p.logger)

	sinks := sensor.MultiSink{p.logSink}

	if p.config.NATS != nil {
		pub, err := publisher.Connect(ctx, p.config.NATS, p.logger)
		if err != nil {
			return err
		}

		p.publisher = pub
		sinks = append(sinks, pub)
	}

	sinks = append(sinks, o.sinks...)
	p.sink = sinks

	return nil
}

// Start implements the lifecycle.Service interface. It registers the
// accessory, starts the optional config watcher and blocks in the scheduler.
func (p *Platform) Start(ctx context.Context) error {
	if err := p.sink.Register(ctx, p.accessory, p.spec); err != nil {
		return fmt.Errorf("failed to register accessory: %w", err)
	}

	if p.watcher != nil {
		watchCtx, cancel := context.WithCancel(ctx)

		p.mu.Lock()
		p.cancel = cancel
		p.mu.Unlock()

		p.wg.Add(1)

		go func() {
			defer p.wg.Done()

			if err := p.watcher.Watch(watchCtx, func() { p.onConfigChange(watchCtx) }); err != nil {
				p.logger.Error().Err(err).Msg("Config watcher stopped")
			}
		}()
	}

	return p.scheduler.Start(ctx)
}

// Stop implements the lifecycle.Service interface.
func (p *Platform) Stop(ctx context.Context) error {
	err := p.scheduler.Stop(ctx)

	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.mu.Unlock()

	p.wg.Wait()

	return errors.Join(err, p.closeResources())
}

func (p *Platform) closeResources() error {
	var errs []error

	if p.publisher != nil {
		if err := p.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publisher: %w", err))
		}

		p.publisher = nil
	}

	if p.history != nil {
		if err := p.history.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close history: %w", err))
		}

		p.history = nil
	}

	return errors.Join(errs...)
}

// onConfigChange re-reads the config file. Settings are fixed at startup, so a
// change only triggers an immediate check and a warning for what needs a
// restart.
func (p *Platform) onConfigChange(ctx context.Context) {
	var next PlatformConfig

	if err := p.loader.LoadAndValidate(ctx, p.configPath, &next); err != nil {
		p.logger.Warn().Err(err).Str("path", p.configPath).Msg("Ignoring unreadable config change")
		return
	}

	changed := config.FieldsChangedByTag(p.config, &next, "hot", map[string]bool{"restart": true})
	if len(changed) > 0 {
		p.logger.Warn().Strs("fields", changed).Msg("Config changed; restart to apply")
	}

	p.logger.Info().Msg("Config file changed, checking for updates now")

	p.scheduler.TriggerNow()
}

func (p *Platform) Accessory() sensor.Accessory {
	return p.accessory
}

func (p *Platform) Spec() sensor.Spec {
	return p.spec
}

func (p *Platform) Source() checker.Source {
	return p.source
}

func (p *Platform) Scheduler() *poller.Scheduler {
	return p.scheduler
}

// LastState returns the value most recently shown by the sensor.
func (p *Platform) LastState() (sensor.State, bool) {
	return p.logSink.Last()
}
