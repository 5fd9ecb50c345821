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

// Package client is a Go client for the Bridge. The launcher uses it for
// its -call flag; tests use it as a stand-in UI.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/helpers/syncutil"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const eventBuffer = 1024

var (
	ErrRequestTimeout   = errors.New("request timed out")
	ErrRequestCancelled = errors.New("request cancelled")
	ErrClosed           = errors.New("bridge connection closed")
)

// RPCError is an error reply from the Bridge.
type RPCError struct {
	models.ErrorObject
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("bridge error %d: %s", e.Code, e.Message)
}

// Kind is the machine-readable failure kind, if the reply had one.
func (e *RPCError) Kind() string {
	if e.Data == nil {
		return ""
	}
	return e.Data.Kind
}

type Client struct {
	conn    *websocket.Conn
	pending map[string]chan models.RawResponseObject
	events  chan models.NotificationObject
	done    chan struct{}
	err     error
	timeout time.Duration
	mu      syncutil.Mutex
	writeMu syncutil.Mutex
}

// Dial connects to a Bridge websocket URL. timeout bounds the handshake
// and every later call.
func Dial(ctx context.Context, wsURL string, timeout time.Duration) (*Client, error) {
	dialer := websocket.Dialer{HandshakeTimeout: timeout}
	conn, resp, err := dialer.DialContext(ctx, wsURL, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to dial bridge: %w", err)
	}

	c := &Client{
		conn:    conn,
		pending: make(map[string]chan models.RawResponseObject),
		events:  make(chan models.NotificationObject, eventBuffer),
		done:    make(chan struct{}),
		timeout: timeout,
	}
	go c.readLoop()
	return c, nil
}

func (c *Client) readLoop() {
	defer close(c.done)
	defer close(c.events)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			c.err = err
			c.mu.Unlock()
			return
		}

		var head struct {
			ID     *json.RawMessage `json:"id"`
			Method string           `json:"method"`
		}
		if err := json.Unmarshal(data, &head); err != nil {
			log.Debug().Err(err).Msg("ignoring non-json bridge message")
			continue
		}

		if head.Method != "" {
			var n models.NotificationObject
			if err := json.Unmarshal(data, &n); err != nil {
				continue
			}
			select {
			case c.events <- n:
			default:
				log.Warn().Str("event", n.Method).Msg("bridge client event buffer full, dropping")
			}
			continue
		}

		var resp models.RawResponseObject
		if err := json.Unmarshal(data, &resp); err != nil {
			continue
		}
		c.mu.Lock()
		ch, ok := c.pending[resp.ID.Key()]
		delete(c.pending, resp.ID.Key())
		c.mu.Unlock()
		if ok {
			ch <- resp
		}
	}
}

func (c *Client) write(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.timeout))
	if err := c.conn.WriteJSON(v); err != nil {
		return fmt.Errorf("failed to write bridge message: %w", err)
	}
	return nil
}

func encodeParams(params any) (json.RawMessage, error) {
	if params == nil {
		return nil, nil
	}
	if raw, ok := params.(json.RawMessage); ok {
		return raw, nil
	}
	b, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode params: %w", err)
	}
	return b, nil
}

// Call sends a request and decodes the result into out, which may be nil.
// An error reply is returned as *RPCError.
func (c *Client) Call(ctx context.Context, ch models.Channel, params, out any) error {
	raw, err := encodeParams(params)
	if err != nil {
		return err
	}

	id := models.NewStringID(uuid.NewString())
	reply := make(chan models.RawResponseObject, 1)
	c.mu.Lock()
	c.pending[id.Key()] = reply
	c.mu.Unlock()
	unregister := func() {
		c.mu.Lock()
		delete(c.pending, id.Key())
		c.mu.Unlock()
	}

	err = c.write(models.RequestObject{
		JSONRPC: models.JSONRPCVersion,
		ID:      id,
		Method:  string(ch),
		Params:  raw,
	})
	if err != nil {
		unregister()
		return err
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case resp := <-reply:
		if resp.Error != nil {
			return &RPCError{ErrorObject: *resp.Error}
		}
		if out == nil || len(resp.Result) == 0 {
			return nil
		}
		if err := json.Unmarshal(resp.Result, out); err != nil {
			return fmt.Errorf("failed to decode %s result: %w", ch, err)
		}
		return nil
	case <-timer.C:
		unregister()
		return ErrRequestTimeout
	case <-ctx.Done():
		unregister()
		return ErrRequestCancelled
	case <-c.done:
		return ErrClosed
	}
}

// Send calls a fire-and-forget channel.
func (c *Client) Send(ch models.Channel, params any) error {
	raw, err := encodeParams(params)
	if err != nil {
		return err
	}
	return c.write(models.NotificationObject{
		JSONRPC: models.JSONRPCVersion,
		Method:  string(ch),
		Params:  raw,
	})
}

// WriteRaw sends data as is, for protocol tests.
func (c *Client) WriteRaw(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("failed to write bridge message: %w", err)
	}
	return nil
}

// Events yields every notification pushed by the Bridge. It is closed
// when the connection ends.
func (c *Client) Events() <-chan models.NotificationObject {
	return c.events
}

// WaitEvent returns the next event named method, discarding others.
func (c *Client) WaitEvent(ctx context.Context, method models.Event) (models.NotificationObject, error) {
	for {
		select {
		case n, ok := <-c.events:
			if !ok {
				return models.NotificationObject{}, ErrClosed
			}
			if n.Method == string(method) {
				return n, nil
			}
		case <-ctx.Done():
			return models.NotificationObject{}, ErrRequestCancelled
		}
	}
}

func (c *Client) Close() error {
	c.writeMu.Lock()
	_ = c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	c.writeMu.Unlock()
	err := c.conn.Close()
	<-c.done
	if err != nil {
		return fmt.Errorf("failed to close bridge connection: %w", err)
	}
	return nil
}
