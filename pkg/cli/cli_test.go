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

package cli

import (
	"bytes"
	"context"
	"flag"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/api"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/api/client"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/config"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/service/servers"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/testing/helpers"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/testing/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newFlags(t *testing.T) *Flags {
	t.Helper()
	fs := flag.NewFlagSet("launcher", flag.ContinueOnError)
	fs.SetOutput(&bytes.Buffer{})
	return SetupFlags(fs)
}

func newConfig(t *testing.T, listen string) *config.Instance {
	t.Helper()
	defaults := config.BaseDefaults
	defaults.Launcher.Dir = filepath.Join(t.TempDir(), config.GameDir)
	defaults.Bridge.Listen = listen
	cfg, err := config.NewConfig(t.TempDir(), defaults)
	require.NoError(t, err)
	return cfg
}

func TestPre(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		wantOut  string
		args     []string
		wantExit bool
		wantErr  bool
	}{
		{name: "no flags"},
		{name: "daemon", args: []string{"-daemon"}},
		{
			name:     "version",
			args:     []string{"-version"},
			wantExit: true,
			wantOut:  config.AppTitle + " v" + config.AppVersion + "\n",
		},
		{name: "unknown flag", args: []string{"-nope"}, wantExit: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer

			exit, err := newFlags(t).Pre(tt.args, &out)
			assert.Equal(t, tt.wantExit, exit)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantOut, out.String())
		})
	}
}

func TestPost_ConfigPath(t *testing.T) {
	t.Parallel()

	f := newFlags(t)
	_, err := f.Pre([]string{"-config"}, &bytes.Buffer{})
	require.NoError(t, err)
	cfg := newConfig(t, "127.0.0.1:0")

	var out bytes.Buffer
	exit, err := f.Post(context.Background(), cfg, &out)
	require.NoError(t, err)
	assert.True(t, exit)
	assert.Equal(t, cfg.Path(), strings.TrimSpace(out.String()))
}

func TestPost_NothingToDo(t *testing.T) {
	t.Parallel()

	f := newFlags(t)
	_, err := f.Pre(nil, &bytes.Buffer{})
	require.NoError(t, err)

	exit, err := f.Post(context.Background(), newConfig(t, "127.0.0.1:0"), &bytes.Buffer{})
	require.NoError(t, err)
	assert.False(t, exit)
}

func TestPost_EmptyCall(t *testing.T) {
	t.Parallel()

	f := newFlags(t)
	_, err := f.Pre([]string{"-call", ""}, &bytes.Buffer{})
	require.NoError(t, err)

	exit, err := f.Post(context.Background(), newConfig(t, "127.0.0.1:0"), &bytes.Buffer{})
	assert.True(t, exit)
	require.Error(t, err)
}

func TestSplitCall(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		arg        string
		wantCh     models.Channel
		wantParams string
		wantShape  models.Shape
		wantErr    bool
	}{
		{
			name:      "request without params",
			arg:       "servers.list",
			wantCh:    models.ChannelServersList,
			wantShape: models.ShapeRequest,
		},
		{
			name:       "request with params",
			arg:        `settings.getField:{"field":"dir"}`,
			wantCh:     models.ChannelSettingsGetField,
			wantShape:  models.ShapeRequest,
			wantParams: `{"field":"dir"}`,
		},
		{
			name:      "stream",
			arg:       "serverPanel.startGame",
			wantCh:    models.ChannelServerPanelStartGame,
			wantShape: models.ShapeStream,
		},
		{
			name:      "fire and forget",
			arg:       "window.hide",
			wantCh:    models.ChannelWindowHide,
			wantShape: models.ShapeFireAndForget,
		},
		{name: "unknown channel", arg: "servers.delete", wantErr: true},
		{name: "bad json", arg: "settings.getField:{field", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ch, shape, params, err := splitCall(tt.arg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCh, ch)
			assert.Equal(t, tt.wantShape, shape)
			assert.Equal(t, tt.wantParams, string(params))
		})
	}
}

func TestSuggestChannel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "missing letter", in: "servers.lst", want: "servers.list"},
		{name: "wrong case", in: "serverpanel.startgame", want: "serverPanel.startGame"},
		{name: "nothing close", in: "zzz", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, suggestChannel(tt.in))
		})
	}
}

func TestSplitCall_SuggestsChannel(t *testing.T) {
	t.Parallel()

	_, _, _, err := splitCall("window.hid")
	require.ErrorIs(t, err, ErrUnknownChannel)
	assert.Contains(t, err.Error(), "did you mean window.hide?")
}

func TestBridgeURL(t *testing.T) {
	t.Parallel()

	u, err := BridgeURL(newConfig(t, "127.0.0.1:7497"))
	require.NoError(t, err)
	assert.Equal(t, "ws://127.0.0.1:7497"+api.APIPath, u)

	_, err = BridgeURL(newConfig(t, "127.0.0.1:0"))
	require.ErrorIs(t, err, ErrRandomPort)
}

func TestCall_UnknownChannel(t *testing.T) {
	t.Parallel()

	err := Call(context.Background(), newConfig(t, "127.0.0.1:7497"), "nope.nope", &bytes.Buffer{})
	require.ErrorIs(t, err, ErrUnknownChannel)
}

func TestCallBridge(t *testing.T) {
	t.Parallel()

	srv := &mocks.MockServers{}
	srv.On("List", mock.Anything).Return([]servers.Descriptor{{Title: "Survival", Host: "mc.example.org", Port: 25565}}, nil)
	hidden := make(chan struct{})
	win := &mocks.MockWindow{}
	win.On("Hide").Run(func(mock.Arguments) { close(hidden) }).Once()
	b := helpers.NewTestBridge(t, nil, api.Services{Servers: srv, Window: win})
	ctx := helpers.Context(t)

	var out bytes.Buffer
	ch, shape, params, err := splitCall("servers.list")
	require.NoError(t, err)
	require.NoError(t, callBridge(ctx, b.Server.WSURL(), ch, shape, params, &out))
	assert.Contains(t, out.String(), `"title":"Survival"`)

	out.Reset()
	ch, shape, params, err = splitCall("window.hide")
	require.NoError(t, err)
	require.NoError(t, callBridge(ctx, b.Server.WSURL(), ch, shape, params, &out))
	select {
	case <-hidden:
	case <-ctx.Done():
		t.Fatal("window.hide never reached the window")
	}
	assert.Empty(t, out.String())

	ch, shape, params, err = splitCall(`settings.getField:{"field":"nope"}`)
	require.NoError(t, err)
	err = callBridge(ctx, b.Server.WSURL(), ch, shape, params, &out)
	var rpcErr *client.RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, -32602, rpcErr.Code)
}
