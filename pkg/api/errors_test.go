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

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/api/validation"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/config"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/service/auth"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/service/launch"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/service/servers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorObjectFor(t *testing.T) {
	t.Parallel()

	var params struct {
		Login string `json:"login" validate:"required"`
	}
	validationErr := validation.ValidateAndUnmarshal(json.RawMessage(`{}`), &params)
	require.Error(t, validationErr)

	tests := []struct {
		err      error
		name     string
		wantKind string
		wantCode int
	}{
		{
			name:     "validation",
			err:      validationErr,
			wantCode: -32602,
			wantKind: KindInvalidParams,
		},
		{
			name:     "missing params",
			err:      validation.ErrMissingParams,
			wantCode: -32602,
			wantKind: KindInvalidParams,
		},
		{
			name:     "auth kind",
			err:      auth.ErrNotAuthenticated,
			wantCode: -32000,
			wantKind: auth.KindNotAuthenticated,
		},
		{
			name:     "wrapped kind",
			err:      fmt.Errorf("starting: %w", launch.ErrLaunchInProgress),
			wantCode: -32000,
			wantKind: launch.KindLaunchInProgress,
		},
		{
			name:     "kind is invalid params",
			err:      servers.ErrNoneSelected,
			wantCode: -32602,
			wantKind: KindInvalidParams,
		},
		{
			name:     "configuration",
			err:      &config.ConfigurationError{Setting: "dir", Reason: "game directory is not set"},
			wantCode: -32000,
			wantKind: config.KindConfiguration,
		},
		{
			name:     "plain",
			err:      errors.New("boom"),
			wantCode: -32603,
			wantKind: KindDispatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			obj := ErrorObjectFor(tt.err)
			require.NotNil(t, obj.Data)
			assert.Equal(t, tt.wantCode, obj.Code)
			assert.Equal(t, tt.wantKind, obj.Data.Kind)
			assert.NotEmpty(t, obj.Message)
		})
	}
}

func TestErrorObjectFor_LaunchDetails(t *testing.T) {
	t.Parallel()

	lerr := &launch.Error{Item: "bin/game.jar", ExitCode: 3, Err: errors.New("bad")}
	obj := ErrorObjectFor(lerr)
	require.NotNil(t, obj.Data)
	assert.Equal(t, "bin/game.jar", obj.Data.Item)
	assert.Equal(t, 3, obj.Data.ExitCode)
}

func TestErrorObjectFor_DoesNotMutateTemplates(t *testing.T) {
	t.Parallel()

	_ = ErrorObjectFor(errors.New("boom"))
	_ = ErrorObjectFor(auth.ErrNotAuthenticated)

	assert.Nil(t, JSONRPCErrorInternalError.Data)
	assert.Equal(t, "Internal error", JSONRPCErrorInternalError.Message)
	assert.Nil(t, JSONRPCErrorServerError.Data)
	assert.Equal(t, "Server error", JSONRPCErrorServerError.Message)
}

func TestCheckOrigin(t *testing.T) {
	t.Parallel()

	check := checkOrigin([]string{"https://ui.example"})
	tests := []struct {
		origin string
		want   bool
	}{
		{origin: "", want: true},
		{origin: "http://localhost:5173", want: true},
		{origin: "http://127.0.0.1:9000", want: true},
		{origin: "http://[::1]:9000", want: true},
		{origin: "https://UI.example", want: true},
		{origin: "https://evil.example", want: false},
		{origin: "http://192.168.1.10", want: false},
		{origin: "::not a url", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodGet, "/api", http.NoBody)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, check(r))
		})
	}
}
