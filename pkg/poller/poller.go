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

// Package poller runs update checks on a single rearming timer.
package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Sunoo/homebridge-plugin-update-check/pkg/checker"
	"github.com/Sunoo/homebridge-plugin-update-check/pkg/logger"
	"github.com/Sunoo/homebridge-plugin-update-check/pkg/models"
	"github.com/Sunoo/homebridge-plugin-update-check/pkg/sensor"
)

const stopTimeout = 10 * time.Second

// State is the scheduler phase.
type State int

const (
	StateIdle State = iota
	StateChecking
)

func (s State) String() string {
	if s == StateChecking {
		return "checking"
	}

	return "idle"
}

// Scheduler invokes the update source on a timer and pushes the mapped value
// to the sensor sink. At most one check is in flight and at most one timer is
// pending at any time.
type Scheduler struct {
	config    Config
	source    checker.Source
	spec      sensor.Spec
	sink      sensor.Sink
	accessory sensor.Accessory
	recorder  Recorder
	clock     Clock
	logger    logger.Logger

	mu         sync.Mutex
	state      State
	timer      Timer
	generation uint64
	nextDelay  *time.Duration
	lastResult *models.UpdateCheckResult
	lastValue  any
	runCtx     context.Context
	cancel     context.CancelFunc
	started    bool
	stopped    bool

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithRecorder attaches a history recorder. Recorder errors are only logged.
func WithRecorder(r Recorder) Option {
	return func(s *Scheduler) {
		s.recorder = r
	}
}

// WithAccessory sets the accessory the published states belong to.
func WithAccessory(acc sensor.Accessory) Option {
	return func(s *Scheduler) {
		s.accessory = acc
	}
}

// New creates a scheduler. A nil clock means wall-clock time.
func New(cfg Config, source checker.Source, spec sensor.Spec, sink sensor.Sink,
	clock Clock, log logger.Logger, opts ...Option) (*Scheduler, error) {
	if source == nil {
		return nil, errNoSource
	}

	if sink == nil {
		return nil, errNoSink
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if clock == nil {
		clock = realClock{}
	}

	if log == nil {
		log = logger.NewTestLogger()
	}

	s := &Scheduler{
		config: cfg,
		source: source,
		spec:   spec,
		sink:   sink,
		clock:  clock,
		logger: log,
		runCtx: context.Background(),
		done:   make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Start implements the lifecycle.Service interface. The first check fires
// after the initial delay; Start blocks until ctx is done or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		cancel()

		return errAlreadyStarted
	}

	s.started = true
	s.runCtx = runCtx
	s.cancel = cancel
	s.armLocked(s.config.InitialDelay)
	s.mu.Unlock()

	s.logger.Info().
		Str("source", s.source.Name()).
		Str("sensor", s.spec.Type).
		Dur("initial_delay", s.config.InitialDelay).
		Dur("interval", s.config.Interval).
		Msg("Starting update check scheduler")

	select {
	case <-ctx.Done():
		s.halt()

		return ctx.Err()
	case <-s.done:
		return nil
	}
}

// Stop implements the lifecycle.Service interface. It drops the pending timer,
// cancels an in-flight check and waits for it to settle.
func (s *Scheduler) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, stopTimeout)
	defer cancel()

	s.halt()

	s.closeOnce.Do(func() {
		close(s.done)
	})

	settled := make(chan struct{})

	go func() {
		s.wg.Wait()
		close(settled)
	}()

	select {
	case <-settled:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for in-flight check: %w", ctx.Err())
	}
}

func (s *Scheduler) halt() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	if s.cancel != nil {
		s.cancel()
	}
}

// Schedule replaces any pending timer with one firing after d. While a check
// is running no timer is armed; d is kept and used once the check settles.
func (s *Scheduler) Schedule(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}

	if s.state == StateChecking {
		s.nextDelay = &d

		return
	}

	s.armLocked(d)
}

// TriggerNow requests a check as soon as possible.
func (s *Scheduler) TriggerNow() {
	s.Schedule(0)
}

// State returns the current phase.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// LastResult returns the most recent successful result, or nil.
func (s *Scheduler) LastResult() *models.UpdateCheckResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastResult
}

// LastValue returns the value most recently pushed to the sink, or nil.
func (s *Scheduler) LastValue() any {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastValue
}

// armLocked must be called with mu held.
func (s *Scheduler) armLocked(d time.Duration) {
	if s.timer != nil {
		s.timer.Stop()
	}

	s.generation++
	generation := s.generation

	s.timer = s.clock.AfterFunc(d, func() {
		s.fire(generation)
	})
}

func (s *Scheduler) fire(generation uint64) {
	s.mu.Lock()

	// A replaced timer may still fire if Stop raced with expiry.
	if s.stopped || s.state == StateChecking || generation != s.generation {
		s.mu.Unlock()
		return
	}

	s.state = StateChecking
	s.timer = nil
	ctx := s.runCtx
	s.wg.Add(1)
	s.mu.Unlock()

	defer s.wg.Done()

	s.runCheck(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateIdle

	next := s.config.Interval
	if s.nextDelay != nil {
		next = *s.nextDelay
		s.nextDelay = nil
	}

	if s.stopped {
		return
	}

	s.armLocked(next)

	s.logger.Debug().Dur("next_in", next).Msg("Next update check scheduled")
}

func (s *Scheduler) runCheck(ctx context.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, s.config.CheckTimeout)
	defer cancel()

	startedAt := s.clock.Now()

	s.logger.Debug().Str("source", s.source.Name()).Msg("Checking for updates")

	result, err := s.source.Check(checkCtx)

	settledAt := s.clock.Now()

	s.record(ctx, models.NewCheckOutcome(s.source.Name(), result, err, startedAt, settledAt))

	if err != nil {
		s.logger.Error().Err(err).Str("source", s.source.Name()).Msg("Update check failed")
		return
	}

	if result == nil {
		result = &models.UpdateCheckResult{Source: s.source.Name(), CheckedAt: settledAt}
	}

	state := sensor.NewState(s.accessory, s.spec, result.Count, result.Names(), result.Source, settledAt)

	if err := s.sink.Publish(ctx, state); err != nil {
		s.logger.Error().Err(err).Msg("Failed to publish sensor state")
	}

	s.mu.Lock()
	s.lastResult = result
	s.lastValue = state.Value
	s.mu.Unlock()

	s.logger.Info().
		Int("outdated", result.Count).
		Interface("value", state.Value).
		Msgf("%d outdated package(s) found", result.Count)
}

func (s *Scheduler) record(ctx context.Context, outcome *models.CheckOutcome) {
	if s.recorder == nil {
		return
	}

	if err := s.recorder.Record(ctx, outcome); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to record check outcome")
	}
}

// Config returns the validated timing in use.
func (s *Scheduler) Config() Config {
	return s.config
}
