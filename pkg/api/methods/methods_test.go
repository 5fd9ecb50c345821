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

package methods_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/api/methods"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/api/models/requests"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/api/validation"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/launchserver"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/service/auth"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/service/launch"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/service/servers"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/testing/helpers"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/testing/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newEnv(t *testing.T, ch models.Channel, params any) requests.RequestEnv {
	t.Helper()
	var raw json.RawMessage
	if params != nil {
		var err error
		raw, err = json.Marshal(params)
		require.NoError(t, err)
	}
	return requests.RequestEnv{
		Context: context.Background(),
		Config:  helpers.NewTestConfig(t),
		Channel: ch,
		Params:  raw,
		ID:      models.NewNumberID(1),
	}
}

func TestDispatch_CoversCatalog(t *testing.T) {
	t.Parallel()

	for _, ch := range models.Channels() {
		if ch == models.ChannelWindowEditDir {
			// runs its handler in the background
			continue
		}
		env := newEnv(t, ch, nil)
		_, err := func() (res any, err error) {
			defer func() {
				// handlers without collaborators may panic; only routing
				// is checked here
				_ = recover()
			}()
			return methods.Dispatch(env)
		}()
		assert.NotErrorIs(t, err, methods.ErrUnknownChannel, ch)
	}

	_, err := methods.Dispatch(newEnv(t, "settings.delete", nil))
	require.ErrorIs(t, err, methods.ErrUnknownChannel)
}

func TestHandleUpdateActivity(t *testing.T) {
	t.Parallel()

	sel := servers.Descriptor{Title: "Survival"}
	tests := []struct {
		name       string
		loggedIn   bool
		selected   bool
		wantUser   string
		wantServer string
	}{
		{name: "logged in with server", loggedIn: true, selected: true, wantUser: "steve", wantServer: "Survival"},
		{name: "logged out", selected: true, wantServer: "Survival"},
		{name: "nothing selected", loggedIn: true, wantUser: "steve"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a := &mocks.MockAuth{}
			if tt.loggedIn {
				a.LoggedIn("steve")
			} else {
				a.On("Session").Return(auth.Session{}, false)
			}
			srv := &mocks.MockServers{}
			if tt.selected {
				srv.On("Selected").Return(sel, true)
			} else {
				srv.NoneSelected()
			}
			p := &mocks.MockPresence{}
			p.On("UpdateActivity", "game", tt.wantUser, tt.wantServer).Return()

			env := newEnv(t, models.ChannelRPCUpdateActivity, models.UpdateActivityParams{Kind: "game"})
			env.Auth, env.Servers, env.Presence = a, srv, p

			_, err := methods.HandleUpdateActivity(env)
			require.NoError(t, err)
			p.AssertExpectations(t)
		})
	}
}

func TestHandleUpdateActivity_InvalidKind(t *testing.T) {
	t.Parallel()

	p := &mocks.MockPresence{}
	env := newEnv(t, models.ChannelRPCUpdateActivity, models.UpdateActivityParams{Kind: "lobby"})
	env.Presence = p

	_, err := methods.HandleUpdateActivity(env)
	require.Error(t, err)
	assert.True(t, validation.IsValidationError(err))
	p.AssertNotCalled(t, "UpdateActivity", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleEditDir_DoesNotBlock(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	called := make(chan struct{})
	w := &mocks.MockWindow{}
	w.On("EditDir", mock.Anything).Run(func(mock.Arguments) {
		close(called)
		<-release
	}).Return(errors.New("cancelled"))

	ctx, cancel := context.WithCancel(context.Background())
	env := newEnv(t, models.ChannelWindowEditDir, nil)
	env.Context = ctx
	env.Window = w

	res, err := methods.HandleEditDir(env)
	require.NoError(t, err)
	assert.Equal(t, methods.NoContent{}, res)
	cancel()

	select {
	case <-called:
	case <-time.After(5 * time.Second):
		t.Fatal("dialog was not opened")
	}
	close(release)
}

func TestHandleEditDir_SurvivesPanic(t *testing.T) {
	t.Parallel()

	entered := make(chan struct{})
	done := make(chan struct{})
	w := &mocks.MockWindow{}
	w.On("EditDir", mock.Anything).Run(func(mock.Arguments) {
		close(entered)
		panic("dialog crashed")
	}).Return(nil).Once()
	w.On("EditDir", mock.Anything).Run(func(mock.Arguments) { close(done) }).Return(nil).Once()

	env := newEnv(t, models.ChannelWindowEditDir, nil)
	env.Window = w

	res, err := methods.HandleEditDir(env)
	require.NoError(t, err)
	assert.Equal(t, methods.NoContent{}, res)
	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatal("dialog was not opened")
	}

	// the process is still alive and the next edit runs
	_, err = methods.HandleEditDir(env)
	require.NoError(t, err)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("second edit did not run")
	}
}

func TestHandleStartGame_Preconditions(t *testing.T) {
	t.Parallel()

	sel := servers.Descriptor{Title: "Survival", ProfileUUID: "p1"}
	profileErr := errors.New("profile unavailable")

	tests := []struct {
		setup   func(a *mocks.MockAuth, s *mocks.MockServers)
		wantErr error
		name    string
	}{
		{
			name: "not logged in",
			setup: func(a *mocks.MockAuth, _ *mocks.MockServers) {
				a.On("Session").Return(auth.Session{}, false)
			},
			wantErr: auth.ErrNotAuthenticated,
		},
		{
			name: "no server",
			setup: func(a *mocks.MockAuth, s *mocks.MockServers) {
				a.LoggedIn("steve")
				s.NoneSelected()
			},
			wantErr: servers.ErrNoneSelected,
		},
		{
			name: "profile fails",
			setup: func(a *mocks.MockAuth, s *mocks.MockServers) {
				a.LoggedIn("steve")
				s.On("Selected").Return(sel, true)
				s.On("Profile", mock.Anything, sel).Return(launchserver.Profile{}, profileErr)
			},
			wantErr: profileErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a, s := &mocks.MockAuth{}, &mocks.MockServers{}
			tt.setup(a, s)
			l := &mocks.MockLauncher{}
			env := newEnv(t, models.ChannelServerPanelStartGame, nil)
			env.Auth, env.Servers, env.Launcher = a, s, l

			_, err := methods.HandleStartGame(env)
			require.ErrorIs(t, err, tt.wantErr)
			l.AssertNotCalled(t, "Start", mock.Anything)
		})
	}
}

func TestHandleStartGame_ForwardsAfterReply(t *testing.T) {
	t.Parallel()

	sel := servers.Descriptor{Title: "Survival", ProfileUUID: "p1"}
	profile := launchserver.Profile{UUID: "p1", ClientDir: "survival", Executable: "java"}

	src := helpers.NewTreeSource()
	src.SetTree("survival", helpers.GameTree{})
	spawner := helpers.NewFakeSpawner()
	orch := helpers.NewTestOrchestrator(t, src, spawner)

	a := (&mocks.MockAuth{}).LoggedIn("steve")
	s := &mocks.MockServers{}
	s.On("Selected").Return(sel, true)
	s.On("Profile", mock.Anything, sel).Return(profile, nil)

	forwarded := make(chan *launch.Stream, 1)
	w := &mocks.MockWindow{}
	w.On("Forward", mock.Anything).Run(func(args mock.Arguments) {
		forwarded <- args.Get(0).(*launch.Stream)
	}).Return()

	env := newEnv(t, models.ChannelServerPanelStartGame, nil)
	env.Auth, env.Servers, env.Launcher, env.Window = a, s, orch, w

	res, err := methods.HandleStartGame(env)
	require.NoError(t, err)
	d, ok := res.(methods.Deferred)
	require.True(t, ok)
	w.AssertNotCalled(t, "Forward", mock.Anything)

	ack := d.Result.(models.StartGameResponse)
	d.Then()
	stream := <-forwarded
	assert.Equal(t, ack.LaunchID, stream.ID)

	spawner.WaitSpawned(t).Exit(0)
	events := helpers.DrainStream(t, stream)
	require.NotEmpty(t, events)
	term, ok := events[len(events)-1].(launch.Terminal)
	require.True(t, ok)
	assert.Equal(t, launch.ResultSucceeded, term.Result)
}

func TestHandleStopGame(t *testing.T) {
	t.Parallel()

	tests := []struct {
		stopErr  error
		name     string
		wantErr  bool
		stopping bool
	}{
		{name: "running", stopping: true},
		{name: "idle", stopErr: launch.ErrNotRunning},
		{name: "closed", stopErr: launch.ErrClosed, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			l := &mocks.MockLauncher{}
			l.On("Stop").Return(tt.stopErr)
			env := newEnv(t, models.ChannelServerPanelStopGame, nil)
			env.Launcher = l

			res, err := methods.HandleStopGame(env)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.StopGameResponse{Stopping: tt.stopping}, res)
		})
	}
}

func TestHandleLogin_StripsToken(t *testing.T) {
	t.Parallel()

	a := &mocks.MockAuth{}
	a.On("Login", mock.Anything, auth.Credentials{Login: "steve", Password: "pw", Remember: true}).
		Return(auth.Session{Username: "steve", UserUUID: "u1", AccessToken: "secret", Valid: true}, nil)
	env := newEnv(t, models.ChannelAuthLogin, models.LoginParams{Login: "steve", Password: "pw", Remember: true})
	env.Auth = a

	res, err := methods.HandleLogin(env)
	require.NoError(t, err)
	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
	assert.JSONEq(t, `{"username":"steve","userUuid":"u1","valid":true}`, string(data))
}

func TestHandleOpenExternal(t *testing.T) {
	t.Parallel()

	w := &mocks.MockWindow{}
	w.On("OpenExternal", mock.Anything, "https://zaparoo.org").Return(nil)
	env := newEnv(t, models.ChannelWindowOpenExternal, models.OpenExternalParams{URL: "https://zaparoo.org"})
	env.Window = w

	_, err := methods.HandleOpenExternal(env)
	require.NoError(t, err)
	w.AssertExpectations(t)

	env = newEnv(t, models.ChannelWindowOpenExternal, models.OpenExternalParams{URL: "file:///etc/passwd"})
	env.Window = w
	_, err = methods.HandleOpenExternal(env)
	require.Error(t, err)
	w.AssertNumberOfCalls(t, "OpenExternal", 1)
}

func TestHandleTotalMemory_Error(t *testing.T) {
	t.Parallel()

	env := newEnv(t, models.ChannelSettingsGetTotalMemory, nil)
	env.TotalMemory = func() (uint64, error) { return 0, errors.New("no meminfo") }

	_, err := methods.HandleTotalMemory(env)
	require.Error(t, err)
}
