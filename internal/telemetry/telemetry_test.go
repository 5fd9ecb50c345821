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

package telemetry

import (
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty string", input: "", expected: ""},
		{
			name:     "no username in path",
			input:    "/usr/local/bin/zaparoo-launcher",
			expected: "/usr/local/bin/zaparoo-launcher",
		},
		{
			name:     "linux home path",
			input:    "/home/sam/.local/share/zaparoo-launcher/game/client.jar",
			expected: "/home/<user>/.local/share/zaparoo-launcher/game/client.jar",
		},
		{
			name:     "linux home path uppercase",
			input:    "/Home/Sam/game/client.jar",
			expected: "/home/<user>/game/client.jar",
		},
		{
			name:     "macos users path",
			input:    "/Users/sam/Library/Application Support/zaparoo-launcher/launcher.toml",
			expected: "/Users/<user>/Library/Application Support/zaparoo-launcher/launcher.toml",
		},
		{
			name:     "windows path",
			input:    "C:\\Users\\sam\\AppData\\Roaming\\zaparoo-launcher\\launcher.toml",
			expected: "C:\\Users\\<user>\\AppData\\Roaming\\zaparoo-launcher\\launcher.toml",
		},
		{
			name:     "windows path other drive",
			input:    "D:\\Users\\admin\\game\\logs",
			expected: "C:\\Users\\<user>\\game\\logs",
		},
		{
			name:     "several paths in a message",
			input:    "moving /home/alice/game to /home/bob/game",
			expected: "moving /home/<user>/game to /home/<user>/game",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, sanitizePath(tt.input))
		})
	}
}

func TestSanitizeEvent(t *testing.T) {
	t.Parallel()

	event := &sentry.Event{
		ServerName: "sams-desktop",
		Message:    "failed to verify /home/sam/game/client.jar",
		Extra: map[string]any{
			"dir":   "/Users/sam/game",
			"count": 3,
		},
		Exception: []sentry.Exception{
			{
				Stacktrace: &sentry.Stacktrace{Frames: []sentry.Frame{
					{AbsPath: "/home/sam/src/launcher/main.go", Filename: "main.go"},
				}},
			},
			{Value: "no stack"},
		},
	}

	got := sanitizeEvent(event)
	require.NotNil(t, got)
	assert.Empty(t, got.ServerName)
	assert.Equal(t, "failed to verify /home/<user>/game/client.jar", got.Message)
	assert.Equal(t, "/Users/<user>/game", got.Extra["dir"])
	assert.Equal(t, 3, got.Extra["count"])
	assert.Equal(t, "/home/<user>/src/launcher/main.go", got.Exception[0].Stacktrace.Frames[0].AbsPath)
	assert.Equal(t, "main.go", got.Exception[0].Stacktrace.Frames[0].Filename)
}

func TestInit_DisabledOrNoDSN(t *testing.T) {
	t.Parallel()

	w, err := Init(Options{Enabled: false, DSN: "https://key@example.org/1"})
	require.NoError(t, err)
	assert.Nil(t, w)

	w, err = Init(Options{Enabled: true})
	require.NoError(t, err)
	assert.Nil(t, w)

	assert.False(t, Enabled())
	Close()
	Flush()
}
