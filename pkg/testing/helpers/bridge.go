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

package helpers

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/api"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/api/client"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/config"
	"github.com/stretchr/testify/require"
)

const bridgeTimeout = 5 * time.Second

// NewTestConfig writes a fresh config to a temp dir. The game directory
// is set and the Bridge listens on a random loopback port.
func NewTestConfig(t *testing.T) *config.Instance {
	t.Helper()
	defaults := config.BaseDefaults
	defaults.Launcher.Dir = filepath.Join(t.TempDir(), config.GameDir)
	defaults.Bridge.Listen = "127.0.0.1:0"
	cfg, err := config.NewConfig(t.TempDir(), defaults)
	require.NoError(t, err)
	return cfg
}

// TestBridge is a started Bridge with one connected UI client.
type TestBridge struct {
	Server *api.Server
	Client *client.Client
	Config *config.Instance
}

// NewTestBridge starts a Bridge on cfg, or a fresh test config when cfg
// is nil, with svc registered. Everything is stopped when the test ends.
func NewTestBridge(t *testing.T, cfg *config.Instance, svc api.Services) *TestBridge {
	t.Helper()
	if cfg == nil {
		cfg = NewTestConfig(t)
	}

	srv := api.NewServer(cfg)
	require.NoError(t, srv.Register(svc))
	require.NoError(t, srv.Start())
	t.Cleanup(func() { _ = srv.Stop() })

	b := &TestBridge{Server: srv, Config: cfg}
	b.Client = b.Dial(t)
	return b
}

// Dial connects another UI client.
func (b *TestBridge) Dial(t *testing.T) *client.Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), bridgeTimeout)
	defer cancel()
	c, err := client.Dial(ctx, b.Server.WSURL(), bridgeTimeout)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// Context is a per-test context bounded by the Bridge timeout.
func Context(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), bridgeTimeout)
	t.Cleanup(cancel)
	return ctx
}
