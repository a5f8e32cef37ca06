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

//go:generate mockgen -destination=mock_sensor.go -package=sensor github.com/Sunoo/homebridge-plugin-update-check/pkg/sensor Sink

package sensor

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/Sunoo/homebridge-plugin-update-check/pkg/logger"
	"github.com/google/uuid"
)

const (
	AccessoryName = "Plugin Update Check"
	Manufacturer  = "Homebridge"
	Model         = "Plugin Update Check"
)

// accessoryNamespace seeds the deterministic accessory UUID.
var accessoryNamespace = uuid.MustParse("0d8f2b8e-8a4c-5c0e-9a57-3c1f8e6d2b10")

// Accessory identifies the published sensor to the presentation layer.
type Accessory struct {
	UUID         string `json:"uuid"`
	Name         string `json:"name"`
	Manufacturer string `json:"manufacturer"`
	Model        string `json:"model"`
	SerialNumber string `json:"serial_number"`
}

// NewAccessory builds the accessory record for a platform. The UUID is stable
// for a given platform name so restarts reuse the cached accessory.
func NewAccessory(platformName string) Accessory {
	serial, err := os.Hostname()
	if err != nil || serial == "" {
		serial = "unknown"
	}

	return Accessory{
		UUID:         uuid.NewSHA1(accessoryNamespace, []byte(platformName)).String(),
		Name:         AccessoryName,
		Manufacturer: Manufacturer,
		Model:        Model,
		SerialNumber: serial,
	}
}

// State is one value pushed to the sensor.
type State struct {
	AccessoryUUID  string    `json:"accessory_uuid"`
	SensorType     string    `json:"sensor_type"`
	Service        string    `json:"service"`
	Characteristic string    `json:"characteristic"`
	Value          any       `json:"value"`
	Outdated       int       `json:"outdated"`
	Packages       []string  `json:"packages,omitempty"`
	Source         string    `json:"source,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewState builds the state for an outdated count under spec.
func NewState(acc Accessory, spec Spec, outdated int, packages []string, source string, at time.Time) State {
	return State{
		AccessoryUUID:  acc.UUID,
		SensorType:     spec.Type,
		Service:        spec.ServiceKind,
		Characteristic: spec.CharacteristicKind,
		Value:          spec.StateFor(outdated),
		Outdated:       outdated,
		Packages:       packages,
		Source:         source,
		UpdatedAt:      at,
	}
}

// Sink is the presentation side that owns the sensor. Register is called once
// when the accessory is set up; Publish for every successful check.
type Sink interface {
	Register(ctx context.Context, acc Accessory, spec Spec) error
	Publish(ctx context.Context, state State) error
}

// LogSink writes sensor changes to the log and remembers the last value.
type LogSink struct {
	logger logger.Logger

	mu   sync.RWMutex
	last *State
}

func NewLogSink(log logger.Logger) *LogSink {
	return &LogSink{logger: log}
}

func (s *LogSink) Register(_ context.Context, acc Accessory, spec Spec) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	initial := NewState(acc, spec, 0, nil, "", time.Now())
	s.last = &initial

	s.logger.Info().
		Str("accessory", acc.Name).
		Str("uuid", acc.UUID).
		Str("service", spec.ServiceKind).
		Interface("value", spec.UntrippedValue).
		Msg("Sensor accessory registered")

	return nil
}

func (s *LogSink) Publish(_ context.Context, state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := s.last == nil || s.last.Value != state.Value
	s.last = &state

	event := s.logger.Debug()
	if changed {
		event = s.logger.Info()
	}

	event.
		Str("characteristic", state.Characteristic).
		Interface("value", state.Value).
		Int("outdated", state.Outdated).
		Strs("packages", state.Packages).
		Msg("Sensor state updated")

	return nil
}

// Last returns the most recently published state.
func (s *LogSink) Last() (State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.last == nil {
		return State{}, false
	}

	return *s.last, true
}

// MultiSink fans out to several sinks; the first error wins but every sink is tried.
type MultiSink []Sink

func (m MultiSink) Register(ctx context.Context, acc Accessory, spec Spec) error {
	var firstErr error

	for _, s := range m {
		if err := s.Register(ctx, acc, spec); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

func (m MultiSink) Publish(ctx context.Context, state State) error {
	var firstErr error

	for _, s := range m {
		if err := s.Publish(ctx, state); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
