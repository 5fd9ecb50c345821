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

// Package presence reports what the player is doing to an MQTT broker,
// for status bots and home dashboards. Without a configured broker every
// call is a no-op.
package presence

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/config"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/helpers/syncutil"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Activity kinds, one per launcher screen.
const (
	KindDefault = "default"
	KindLogin   = "login"
	KindServers = "servers"
	KindProfile = "profile"
	KindGame    = "game"
)

const (
	connectTimeout = 5 * time.Second
	publishTimeout = 2 * time.Second
	disconnectMs   = 250
)

// Activity is the retained presence message.
type Activity struct {
	Kind     string `json:"kind"`
	Username string `json:"username,omitempty"`
	Server   string `json:"server,omitempty"`
	DeviceID string `json:"deviceId"`
	Since    int64  `json:"since"`
}

// ClientFactory builds the MQTT client. Tests replace it.
type ClientFactory func(opts *mqtt.ClientOptions) mqtt.Client

type Reporter struct {
	client    mqtt.Client
	clock     clockwork.Clock
	newClient ClientFactory
	current   *Activity
	broker    string
	topic     string
	deviceID  string
	mu        syncutil.Mutex
}

type Option func(*Reporter)

func WithClientFactory(f ClientFactory) Option {
	return func(r *Reporter) { r.newClient = f }
}

func WithClock(c clockwork.Clock) Option {
	return func(r *Reporter) { r.clock = c }
}

func NewReporter(cfg *config.Instance, opts ...Option) *Reporter {
	r := &Reporter{
		broker:    cfg.PresenceBroker(),
		topic:     cfg.PresenceTopic(),
		deviceID:  cfg.DeviceID(),
		clock:     clockwork.NewRealClock(),
		newClient: mqtt.NewClient,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Reporter) Enabled() bool {
	return r.broker != ""
}

// Start connects to the broker. The client keeps retrying in the
// background if the broker is not reachable yet.
func (r *Reporter) Start() error {
	if !r.Enabled() {
		log.Debug().Msg("presence: no broker configured")
		return nil
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker("tcp://" + r.broker)
	opts.SetClientID("zaparoo-launcher-" + uuid.New().String()[:8])
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(connectTimeout)
	opts.OnConnect = func(mqtt.Client) {
		log.Info().Str("broker", r.broker).Str("topic", r.topic).Msg("presence: connected")
		r.republish()
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Msg("presence: connection lost")
	}

	client := r.newClient(opts)
	r.mu.Lock()
	r.client = client
	r.mu.Unlock()

	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		log.Warn().Str("broker", r.broker).Msg("presence: broker not reachable yet, retrying in background")
		return nil
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to connect to presence broker: %w", err)
	}
	return nil
}

// UpdateActivity publishes a new activity. The Since timestamp only
// changes when the kind does.
func (r *Reporter) UpdateActivity(kind, username, server string) {
	r.mu.Lock()
	since := r.clock.Now().Unix()
	if r.current != nil && r.current.Kind == kind {
		since = r.current.Since
	}
	a := Activity{
		Kind:     kind,
		Username: username,
		Server:   server,
		DeviceID: r.deviceID,
		Since:    since,
	}
	r.current = &a
	client := r.client
	r.mu.Unlock()

	r.publish(client, &a)
}

// ClearActivity removes the retained activity from the broker.
func (r *Reporter) ClearActivity() {
	r.mu.Lock()
	r.current = nil
	client := r.client
	r.mu.Unlock()

	r.publish(client, nil)
}

func (r *Reporter) republish() {
	r.mu.Lock()
	client := r.client
	var a *Activity
	if r.current != nil {
		cur := *r.current
		a = &cur
	}
	r.mu.Unlock()

	if a != nil {
		r.publish(client, a)
	}
}

// publish sends a retained message. A nil activity sends an empty
// payload, which clears the retained message.
func (r *Reporter) publish(client mqtt.Client, a *Activity) {
	if client == nil || !client.IsConnected() {
		return
	}

	var payload []byte
	if a != nil {
		var err error
		payload, err = json.Marshal(a)
		if err != nil {
			log.Error().Err(err).Msg("presence: failed to marshal activity")
			return
		}
	}

	token := client.Publish(r.topic, 1, true, payload)
	if !token.WaitTimeout(publishTimeout) {
		log.Warn().Msg("presence: publish timed out")
		return
	}
	if err := token.Error(); err != nil {
		log.Error().Err(err).Msg("presence: failed to publish activity")
		return
	}
	kind := ""
	if a != nil {
		kind = a.Kind
	}
	log.Debug().Str("kind", kind).Msg("presence: published activity")
}

// Stop clears the activity and disconnects.
func (r *Reporter) Stop() {
	r.mu.Lock()
	client := r.client
	r.client = nil
	r.current = nil
	r.mu.Unlock()

	if client == nil {
		return
	}
	r.publish(client, nil)
	if client.IsConnected() {
		log.Debug().Msg("presence: disconnecting")
	}
	client.Disconnect(disconnectMs)
}
