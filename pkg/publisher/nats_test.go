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

package publisher

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Sunoo/homebridge-plugin-update-check/pkg/logger"
	"github.com/Sunoo/homebridge-plugin-update-check/pkg/models"
	"github.com/Sunoo/homebridge-plugin-update-check/pkg/sensor"
	"github.com/google/uuid"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rawEvent struct {
	models.CloudEvent
	Data json.RawMessage `json:"data"`
}

func runServer(t *testing.T, jetStream bool) *server.Server {
	t.Helper()

	opts := &server.Options{
		Host:      "127.0.0.1",
		Port:      -1,
		JetStream: jetStream,
	}

	if jetStream {
		opts.StoreDir = t.TempDir()
	}

	srv, err := server.NewServer(opts)
	require.NoError(t, err)

	go srv.Start()

	if !srv.ReadyForConnections(10 * time.Second) {
		srv.Shutdown()
		t.Fatalf("embedded NATS server not ready for connections")
	}

	t.Cleanup(srv.Shutdown)

	if jetStream {
		require.Eventually(t, srv.JetStreamEnabled, 5*time.Second, 50*time.Millisecond)
	}

	return srv
}

func nextEvent(t *testing.T, sub *nats.Subscription) rawEvent {
	t.Helper()

	msg, err := sub.NextMsg(5 * time.Second)
	require.NoError(t, err)

	var event rawEvent
	require.NoError(t, json.Unmarshal(msg.Data, &event))

	return event
}

func TestPublisherCoreNATS(t *testing.T) {
	srv := runServer(t, false)
	ctx := context.Background()

	cfg := &models.NATSConfig{URL: srv.ClientURL()}

	pub, err := Connect(ctx, cfg, logger.NewTestLogger())
	require.NoError(t, err)

	defer func() { _ = pub.Close() }()

	assert.Equal(t, models.DefaultNATSSubject, pub.Subject())

	nc, err := nats.Connect(srv.ClientURL())
	require.NoError(t, err)

	defer nc.Close()

	sub, err := nc.SubscribeSync(models.DefaultNATSSubject + ".>")
	require.NoError(t, err)

	states, err := nc.SubscribeSync(models.DefaultNATSSubject)
	require.NoError(t, err)
	require.NoError(t, nc.Flush())

	acc := sensor.NewAccessory("PluginUpdate")
	spec := sensor.Resolve(sensor.TypeContact)

	require.NoError(t, pub.Register(ctx, acc, spec))

	event := nextEvent(t, sub)
	assert.Equal(t, TypeAccessory, event.Type)
	assert.Equal(t, models.DefaultNATSSubject+AccessorySubSuffix, event.Subject)
	assert.Equal(t, EventSource, event.Source)
	assert.Equal(t, "1.0", event.SpecVersion)

	_, err = uuid.Parse(event.ID)
	require.NoError(t, err)

	var announced AccessoryData
	require.NoError(t, json.Unmarshal(event.Data, &announced))
	assert.Equal(t, acc, announced.Accessory)
	assert.Equal(t, "ContactSensor", announced.Service)
	assert.EqualValues(t, 0, announced.Value)

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	state := sensor.NewState(acc, spec, 2, []string{"homebridge", "homebridge-hue"}, models.SourceUIAPI, at)

	require.NoError(t, pub.Publish(ctx, state))

	event = nextEvent(t, states)
	assert.Equal(t, TypeSensorState, event.Type)
	require.NotNil(t, event.Time)
	assert.True(t, at.Equal(*event.Time))

	var got sensor.State
	require.NoError(t, json.Unmarshal(event.Data, &got))
	assert.Equal(t, 2, got.Outdated)
	assert.EqualValues(t, 1, got.Value)
	assert.Equal(t, []string{"homebridge", "homebridge-hue"}, got.Packages)
	assert.Equal(t, acc.UUID, got.AccessoryUUID)
}

func TestPublisherJetStream(t *testing.T) {
	srv := runServer(t, true)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	nc, err := nats.Connect(srv.ClientURL())
	require.NoError(t, err)

	defer nc.Close()

	cfg := &models.NATSConfig{URL: srv.ClientURL(), Subject: "hb.updates", Stream: "HB_UPDATES"}

	pub, err := New(ctx, nc, cfg, nil)
	require.NoError(t, err)

	acc := sensor.NewAccessory("PluginUpdate")
	spec := sensor.Resolve(sensor.TypeMotion)

	require.NoError(t, pub.Register(ctx, acc, spec))
	require.NoError(t, pub.Publish(ctx, sensor.NewState(acc, spec, 0, nil, models.SourceRegistry, time.Time{})))

	// New does not own the connection.
	require.NoError(t, pub.Close())
	assert.True(t, nc.IsConnected())

	js, err := jetstream.New(nc)
	require.NoError(t, err)

	stream, err := js.Stream(ctx, "HB_UPDATES")
	require.NoError(t, err)

	info, err := stream.Info(ctx)
	require.NoError(t, err)

	assert.Equal(t, uint64(2), info.State.Msgs)
	assert.ElementsMatch(t, []string{"hb.updates", "hb.updates.>"}, info.Config.Subjects)
}

func TestConnectValidatesConfig(t *testing.T) {
	_, err := Connect(context.Background(), &models.NATSConfig{}, nil)
	require.Error(t, err)
}

func TestConnectUnreachable(t *testing.T) {
	_, err := Connect(context.Background(), &models.NATSConfig{URL: "nats://127.0.0.1:1"}, nil,
		nats.Timeout(200*time.Millisecond))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to NATS")
}
