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

package launch

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCommand(t *testing.T) {
	t.Parallel()

	root := filepath.FromSlash("/games/survival")
	base := testRequest()
	base.Profile.Executable = "runtime/bin/java"
	base.Profile.Args = []string{"-Dgame.dir=${gameDir}", "--uuid", "${uuid}", "--token", "${accessToken}", "--version", "${version}"}
	base.Profile.MemoryArgs = []string{"-Xmx${memory}M"}
	base.Profile.FullScreenArgs = []string{"--fullscreen"}
	base.Profile.AutoConnectArgs = []string{"--server", "${serverHost}", "--port", "${serverPort}"}
	base.Profile.Env = map[string]string{"GAME_USER": "${username}", "A_FLAG": "1"}

	baseArgs := []string{"-Dgame.dir=" + root, "--uuid", "u-1", "--token", "tok", "--version", "1.20.1"}

	tests := []struct {
		mutate func(r *Request)
		name   string
		want   []string
	}{
		{
			name:   "memory only",
			mutate: func(*Request) {},
			want:   append(append([]string(nil), baseArgs...), "-Xmx2048M"),
		},
		{
			name: "all groups",
			mutate: func(r *Request) {
				r.Settings.FullScreen = true
				r.Settings.AutoConnect = true
			},
			want: append(append([]string(nil), baseArgs...),
				"-Xmx2048M", "--fullscreen", "--server", "mc.example.org", "--port", "25565"),
		},
		{
			name:   "no memory",
			mutate: func(r *Request) { r.Settings.Memory = 0 },
			want:   baseArgs,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := base
			tt.mutate(&req)
			cmd, err := BuildCommand(req, root)
			require.NoError(t, err)

			assert.Equal(t, tt.want, cmd.Args)
			assert.Equal(t, filepath.Join(root, "runtime", "bin", "java"), cmd.Path)
			assert.Equal(t, root, cmd.Dir)
			n := len(cmd.Env)
			require.GreaterOrEqual(t, n, 2)
			assert.Equal(t, []string{"A_FLAG=1", "GAME_USER=steve"}, cmd.Env[n-2:])
		})
	}
}

func TestBuildCommand_Executable(t *testing.T) {
	t.Parallel()

	root := filepath.FromSlash("/games/survival")
	tests := []struct {
		name string
		exe  string
		want string
		ok   bool
	}{
		{name: "on PATH", exe: "java", want: "java", ok: true},
		{name: "inside client dir", exe: "bin/start.sh", want: filepath.Join(root, "bin", "start.sh"), ok: true},
		{name: "escapes client dir", exe: "../../usr/bin/evil"},
		{name: "empty", exe: "  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := testRequest()
			req.Profile.Executable = tt.exe
			cmd, err := BuildCommand(req, root)
			if !tt.ok {
				var le *Error
				require.ErrorAs(t, err, &le)
				assert.Equal(t, KindProcessSpawn, le.Kind())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cmd.Path)
		})
	}
}

func TestNewRequest(t *testing.T) {
	t.Parallel()

	base := testRequest()

	req, err := NewRequest(base.Server, base.Profile, base.Settings, base.Session)
	require.NoError(t, err)
	assert.Equal(t, base, req)

	noDir := base.Settings
	noDir.Dir = ""
	_, err = NewRequest(base.Server, base.Profile, noDir, base.Session)
	var kinded interface{ Kind() string }
	require.ErrorAs(t, err, &kinded)
	assert.Equal(t, "configuration", kinded.Kind())

	loggedOut := base.Session
	loggedOut.Valid = false
	_, err = NewRequest(base.Server, base.Profile, base.Settings, loggedOut)
	require.ErrorAs(t, err, &kinded)
	assert.Equal(t, "not_authenticated", kinded.Kind())
}
