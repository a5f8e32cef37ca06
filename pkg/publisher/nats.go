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

// Package publisher mirrors sensor state onto NATS as CloudEvents.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Sunoo/homebridge-plugin-update-check/pkg/logger"
	"github.com/Sunoo/homebridge-plugin-update-check/pkg/models"
	"github.com/Sunoo/homebridge-plugin-update-check/pkg/sensor"
	"github.com/Sunoo/homebridge-plugin-update-check/pkg/version"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	EventSource        = "homebridge-plugin-update-check"
	TypeSensorState    = "io.homebridge.plugin-update-check.sensor.state"
	TypeAccessory      = "io.homebridge.plugin-update-check.accessory.registered"
	AccessorySubSuffix = ".accessory"

	flushTimeout = 5 * time.Second
)

// AccessoryData is the payload announced when the accessory is registered.
type AccessoryData struct {
	Accessory      sensor.Accessory `json:"accessory"`
	SensorType     string           `json:"sensor_type"`
	Service        string           `json:"service"`
	Characteristic string           `json:"characteristic"`
	Value          any              `json:"value"`
}

// Publisher implements sensor.Sink over NATS. States go to the configured
// subject and accessory announcements to subject + ".accessory". With a
// stream configured both are published through JetStream.
type Publisher struct {
	nc       *nats.Conn
	js       jetstream.JetStream
	subject  string
	stream   string
	ownsConn bool
	now      func() time.Time
	logger   logger.Logger
}

// Connect dials cfg.URL and returns a Publisher owning the connection.
func Connect(ctx context.Context, cfg *models.NATSConfig, log logger.Logger, opts ...nats.Option) (*Publisher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if log == nil {
		log = logger.NewTestLogger()
	}

	opts = append([]nats.Option{
		nats.Name(version.UserAgent()),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}, opts...)

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	p, err := New(ctx, nc, cfg, log)
	if err != nil {
		nc.Close()
		return nil, err
	}

	p.ownsConn = true

	log.Info().Str("url", nc.ConnectedUrl()).Str("subject", p.subject).Msg("Connected to NATS")

	return p, nil
}

// New wraps an existing connection. The caller keeps ownership of nc.
func New(ctx context.Context, nc *nats.Conn, cfg *models.NATSConfig, log logger.Logger) (*Publisher, error) {
	if cfg.Subject == "" {
		cfg.Subject = models.DefaultNATSSubject
	}

	if log == nil {
		log = logger.NewTestLogger()
	}

	p := &Publisher{
		nc:      nc,
		subject: cfg.Subject,
		stream:  cfg.Stream,
		now:     time.Now,
		logger:  log,
	}

	if cfg.Stream == "" {
		return p, nil
	}

	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     cfg.Stream,
		Subjects: []string{cfg.Subject, cfg.Subject + ".>"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create or get stream %s: %w", cfg.Stream, err)
	}

	p.js = js

	return p, nil
}

// Subject returns the sensor state subject.
func (p *Publisher) Subject() string {
	return p.subject
}

func (p *Publisher) Register(ctx context.Context, acc sensor.Accessory, spec sensor.Spec) error {
	data := AccessoryData{
		Accessory:      acc,
		SensorType:     spec.Type,
		Service:        spec.ServiceKind,
		Characteristic: spec.CharacteristicKind,
		Value:          spec.UntrippedValue,
	}

	return p.publishEvent(ctx, p.subject+AccessorySubSuffix, TypeAccessory, p.now(), data)
}

func (p *Publisher) Publish(ctx context.Context, state sensor.State) error {
	at := state.UpdatedAt
	if at.IsZero() {
		at = p.now()
	}

	return p.publishEvent(ctx, p.subject, TypeSensorState, at, state)
}

func (p *Publisher) publishEvent(ctx context.Context, subject, eventType string, at time.Time, data interface{}) error {
	event := models.CloudEvent{
		SpecVersion:     "1.0",
		ID:              uuid.New().String(),
		Source:          EventSource,
		Type:            eventType,
		DataContentType: "application/json",
		Subject:         subject,
		Time:            &at,
		Data:            data,
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}

	if p.js != nil {
		ack, err := p.js.Publish(ctx, subject, eventBytes)
		if err != nil {
			return fmt.Errorf("failed to publish %s event: %w", eventType, err)
		}

		p.logger.Debug().Str("id", event.ID).Str("subject", subject).Uint64("seq", ack.Sequence).Msg("Published event")

		return nil
	}

	if err := p.nc.Publish(subject, eventBytes); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}

	if err := p.nc.FlushTimeout(flushTimeout); err != nil {
		return fmt.Errorf("failed to flush %s event: %w", eventType, err)
	}

	p.logger.Debug().Str("id", event.ID).Str("subject", subject).Msg("Published event")

	return nil
}

// Close drains the connection if the Publisher opened it.
func (p *Publisher) Close() error {
	if !p.ownsConn || p.nc == nil {
		return nil
	}

	return p.nc.Drain()
}
