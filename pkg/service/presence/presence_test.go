/*
Zaparoo Launcher
Copyright (c) 2026 The Zaparoo Project Contributors.
SPDX-License-Identifier: GPL-3.0-or-later

This file is part of Zaparoo Launcher.

Zaparoo Launcher is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Zaparoo Launcher is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Zaparoo Launcher.  If not, see <http://www.gnu.org/licenses/>.
*/

package presence

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/config"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/helpers/syncutil"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publishedMessage struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// mockMQTTClient implements mqtt.Client for testing.
type mockMQTTClient struct {
	connectError   error
	opts           *mqtt.ClientOptions
	published      []publishedMessage
	disconnectCall int
	connected      bool
	pending        bool
	mu             syncutil.Mutex
}

func (m *mockMQTTClient) messages() []publishedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]publishedMessage(nil), m.published...)
}

func (m *mockMQTTClient) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *mockMQTTClient) IsConnectionOpen() bool { return m.IsConnected() }

func (m *mockMQTTClient) Connect() mqtt.Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending {
		return &mockToken{}
	}
	if m.connectError != nil {
		return &mockToken{err: m.connectError, complete: true}
	}
	m.connected = true
	return &mockToken{complete: true}
}

func (m *mockMQTTClient) Disconnect(uint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
	m.disconnectCall++
}

func (m *mockMQTTClient) Publish(topic string, qos byte, retained bool, payload any) mqtt.Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, _ := payload.([]byte)
	m.published = append(m.published, publishedMessage{topic: topic, qos: qos, retained: retained, payload: b})
	return &mockToken{complete: true}
}

func (*mockMQTTClient) Subscribe(string, byte, mqtt.MessageHandler) mqtt.Token {
	return &mockToken{complete: true}
}

func (*mockMQTTClient) SubscribeMultiple(map[string]byte, mqtt.MessageHandler) mqtt.Token {
	return &mockToken{complete: true}
}

func (*mockMQTTClient) Unsubscribe(...string) mqtt.Token     { return &mockToken{complete: true} }
func (*mockMQTTClient) AddRoute(string, mqtt.MessageHandler) {}
func (*mockMQTTClient) OptionsReader() mqtt.ClientOptionsReader {
	return mqtt.ClientOptionsReader{}
}

type mockToken struct {
	err      error
	complete bool
}

func (t *mockToken) Wait() bool                     { return t.complete }
func (t *mockToken) WaitTimeout(time.Duration) bool { return t.complete }
func (t *mockToken) Error() error                   { return t.err }

func (t *mockToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	if t.complete {
		close(ch)
	}
	return ch
}

func newTestReporter(t *testing.T, broker string, client *mockMQTTClient) (*Reporter, *clockwork.FakeClock) {
	t.Helper()

	cfg, err := config.NewConfig(t.TempDir(), config.Values{
		ConfigSchema: config.SchemaVersion,
		Presence:     config.Presence{Broker: broker},
	})
	require.NoError(t, err)

	clock := clockwork.NewFakeClockAt(time.Unix(1_700_000_000, 0))
	r := NewReporter(cfg,
		WithClock(clock),
		WithClientFactory(func(opts *mqtt.ClientOptions) mqtt.Client {
			client.opts = opts
			return client
		}),
	)
	return r, clock
}

func decode(t *testing.T, b []byte) Activity {
	t.Helper()
	var a Activity
	require.NoError(t, json.Unmarshal(b, &a))
	return a
}

func TestReporter_Disabled(t *testing.T) {
	t.Parallel()

	client := &mockMQTTClient{}
	r, _ := newTestReporter(t, "", client)

	assert.False(t, r.Enabled())
	require.NoError(t, r.Start())
	r.UpdateActivity(KindGame, "steve", "Survival")
	r.ClearActivity()
	r.Stop()

	assert.Nil(t, client.opts, "no client is built without a broker")
	assert.Empty(t, client.messages())
}

func TestReporter_UpdateAndClear(t *testing.T) {
	t.Parallel()

	client := &mockMQTTClient{}
	r, clock := newTestReporter(t, "localhost:1883", client)
	require.NoError(t, r.Start())
	require.NotNil(t, client.opts)

	r.UpdateActivity(KindProfile, "steve", "Survival")
	clock.Advance(time.Minute)
	r.UpdateActivity(KindProfile, "steve", "Creative")
	clock.Advance(time.Minute)
	r.UpdateActivity(KindGame, "steve", "Creative")
	r.ClearActivity()

	msgs := client.messages()
	require.Len(t, msgs, 4)
	for _, m := range msgs {
		assert.Equal(t, config.DefaultPresenceTopic, m.topic)
		assert.True(t, m.retained)
		assert.Equal(t, byte(1), m.qos)
	}

	first := decode(t, msgs[0].payload)
	assert.Equal(t, KindProfile, first.Kind)
	assert.Equal(t, "Survival", first.Server)
	assert.Equal(t, int64(1_700_000_000), first.Since)
	assert.NotEmpty(t, first.DeviceID)

	second := decode(t, msgs[1].payload)
	assert.Equal(t, first.Since, second.Since, "same kind keeps its start time")

	third := decode(t, msgs[2].payload)
	assert.Equal(t, KindGame, third.Kind)
	assert.Equal(t, int64(1_700_000_120), third.Since)

	assert.Empty(t, msgs[3].payload)
}

func TestReporter_RepublishesOnConnect(t *testing.T) {
	t.Parallel()

	client := &mockMQTTClient{pending: true}
	r, _ := newTestReporter(t, "localhost:1883", client)
	require.NoError(t, r.Start(), "an unreachable broker does not fail startup")

	r.UpdateActivity(KindServers, "steve", "")
	assert.Empty(t, client.messages(), "nothing is sent while disconnected")

	client.mu.Lock()
	client.connected = true
	client.mu.Unlock()
	client.opts.OnConnect(client)

	msgs := client.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, KindServers, decode(t, msgs[0].payload).Kind)
}

func TestReporter_ConnectError(t *testing.T) {
	t.Parallel()

	client := &mockMQTTClient{connectError: errors.New("not authorized")}
	r, _ := newTestReporter(t, "localhost:1883", client)
	require.Error(t, r.Start())
}

func TestReporter_Stop(t *testing.T) {
	t.Parallel()

	client := &mockMQTTClient{}
	r, _ := newTestReporter(t, "localhost:1883", client)
	require.NoError(t, r.Start())
	r.UpdateActivity(KindGame, "steve", "Survival")
	r.Stop()

	msgs := client.messages()
	require.Len(t, msgs, 2)
	assert.Empty(t, msgs[1].payload)
	assert.Equal(t, 1, client.disconnectCall)
	assert.False(t, client.IsConnected())
}
