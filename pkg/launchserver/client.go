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

package launchserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/config"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/helpers/syncutil"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/shared/httpclient"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type callResult struct {
	err  error
	resp Response
}

// Client keeps one websocket to the launch server and multiplexes calls
// over it by request id. A dropped connection is redialled on the next call.
type Client struct {
	dialer   *websocket.Dialer
	files    *httpclient.Client
	pending  map[uuid.UUID]chan callResult
	conn     *websocket.Conn
	url      string
	filesURL string
	token    string
	timeout  time.Duration
	mu       syncutil.Mutex
	writeMu  syncutil.Mutex
	closed   bool
}

func NewClient(cfg *config.Instance) *Client {
	return NewClientWithURL(cfg.APIURL(), cfg.APIFilesURL(), cfg.APIRequestTimeout())
}

func NewClientWithURL(wsURL, filesURL string, timeout time.Duration) *Client {
	if filesURL == "" {
		filesURL = deriveFilesURL(wsURL)
	}
	c := &Client{
		dialer:   &websocket.Dialer{HandshakeTimeout: timeout},
		pending:  make(map[uuid.UUID]chan callResult),
		url:      wsURL,
		filesURL: strings.TrimSuffix(filesURL, "/"),
		timeout:  timeout,
	}
	c.files = httpclient.NewClient(c.accessToken)
	return c
}

// deriveFilesURL maps ws://host/api to http://host/files.
func deriveFilesURL(wsURL string) string {
	u, err := url.Parse(wsURL)
	if err != nil {
		return ""
	}
	switch u.Scheme {
	case "wss":
		u.Scheme = "https"
	default:
		u.Scheme = "http"
	}
	u.Path = "/files"
	u.RawQuery = ""
	return u.String()
}

// SetAccessToken sets the token sent with file downloads.
func (c *Client) SetAccessToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) accessToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// Connect dials the launch server. It is safe to call when already
// connected.
func (c *Client) Connect(ctx context.Context) error {
	_, err := c.ensureConn(ctx)
	return err
}

func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	c.closed = true
	conn := c.conn
	c.conn = nil
	c.failPendingLocked(ErrClosed)
	c.mu.Unlock()

	if conn == nil {
		return nil
	}
	if err := conn.Close(); err != nil {
		return fmt.Errorf("failed to close launch server connection: %w", err)
	}
	return nil
}

func (c *Client) ensureConn(ctx context.Context) (*websocket.Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}
	if c.conn != nil {
		return c.conn, nil
	}

	dialCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	conn, resp, err := c.dialer.DialContext(dialCtx, c.url, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	log.Info().Str("url", c.url).Msg("connected to launch server")
	c.conn = conn
	go c.readLoop(conn)
	return conn, nil
}

func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.dropConn(conn, err)
			return
		}

		var resp Response
		if err := json.Unmarshal(data, &resp); err != nil {
			log.Warn().Err(err).Msg("invalid message from launch server")
			continue
		}

		c.mu.Lock()
		ch, ok := c.pending[resp.ID]
		delete(c.pending, resp.ID)
		c.mu.Unlock()

		if !ok {
			log.Debug().Str("id", resp.ID.String()).Msg("response for unknown request")
			continue
		}
		ch <- callResult{resp: resp}
	}
}

func (c *Client) dropConn(conn *websocket.Conn, cause error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != conn {
		return
	}
	if !c.closed {
		log.Warn().Err(cause).Msg("launch server connection lost")
	}
	c.conn = nil
	_ = conn.Close()
	c.failPendingLocked(fmt.Errorf("%w: %w", ErrNetwork, ErrDisconnected))
}

// failPendingLocked answers every in-flight call with err. Caller must
// hold mu.
func (c *Client) failPendingLocked(err error) {
	for id, ch := range c.pending {
		ch <- callResult{err: err}
		delete(c.pending, id)
	}
}

func (c *Client) call(ctx context.Context, method string, params, out any) error {
	conn, err := c.ensureConn(ctx)
	if err != nil {
		return err
	}

	id := uuid.New()
	ch := make(chan callResult, 1)

	c.mu.Lock()
	c.pending[id] = ch
	c.mu.Unlock()

	unregister := func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}

	data, err := json.Marshal(Request{
		JSONRPC: "2.0",
		ID:      id,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		unregister()
		return fmt.Errorf("failed to marshal %s request: %w", method, err)
	}

	c.writeMu.Lock()
	_ = conn.SetWriteDeadline(time.Now().Add(c.timeout))
	err = conn.WriteMessage(websocket.TextMessage, data)
	c.writeMu.Unlock()
	if err != nil {
		unregister()
		c.dropConn(conn, err)
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	select {
	case res := <-ch:
		if res.err != nil {
			return res.err
		}
		if res.resp.Error != nil {
			return res.resp.Error
		}
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(res.resp.Result, out); err != nil {
			return fmt.Errorf("failed to decode %s result: %w", method, err)
		}
		return nil
	case <-callCtx.Done():
		unregister()
		return fmt.Errorf("%w: %s: %w", ErrNetwork, method, callCtx.Err())
	}
}

func (c *Client) Auth(ctx context.Context, login, password string) (AuthResult, error) {
	var res AuthResult
	err := c.call(ctx, MethodAuth, AuthParams{Login: login, Password: password}, &res)
	return res, err
}

func (c *Client) AuthToken(ctx context.Context, token string) (AuthResult, error) {
	var res AuthResult
	err := c.call(ctx, MethodAuthToken, TokenParams{Token: token}, &res)
	return res, err
}

func (c *Client) Servers(ctx context.Context) ([]Server, error) {
	var res ServersResult
	if err := c.call(ctx, MethodServers, nil, &res); err != nil {
		return nil, err
	}
	return res.Servers, nil
}

func (c *Client) Profile(ctx context.Context, profileUUID string) (Profile, error) {
	var res ProfileResult
	if err := c.call(ctx, MethodProfile, ProfileParams{UUID: profileUUID}, &res); err != nil {
		return Profile{}, err
	}
	return res.Profile, nil
}

// Manifest returns the hashed file list of a client directory.
func (c *Client) Manifest(ctx context.Context, dir string) ([]HashedFile, error) {
	var res UpdatesResult
	if err := c.call(ctx, MethodUpdates, UpdatesParams{Dir: dir}, &res); err != nil {
		return nil, err
	}
	return res.Files, nil
}

// OpenFile streams one manifest file from the file host.
func (c *Client) OpenFile(ctx context.Context, dir, file string) (io.ReadCloser, int64, error) {
	if c.filesURL == "" {
		return nil, 0, errors.New("no file host configured")
	}
	u := c.filesURL + "/" + escapePath(path.Join(dir, file))
	body, size, err := c.files.Open(ctx, u)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	return body, size, nil
}

func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
