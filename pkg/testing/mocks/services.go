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

package mocks

import (
	"context"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/launchserver"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/service/auth"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/service/launch"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/service/servers"
	"github.com/stretchr/testify/mock"
)

type MockAuth struct {
	mock.Mock
}

func (m *MockAuth) Login(ctx context.Context, creds auth.Credentials) (auth.Session, error) {
	args := m.Called(ctx, creds)
	return args.Get(0).(auth.Session), args.Error(1) //nolint:wrapcheck // mock
}

func (m *MockAuth) LoginWithToken(ctx context.Context, token string) (auth.Session, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(auth.Session), args.Error(1) //nolint:wrapcheck // mock
}

func (m *MockAuth) Session() (auth.Session, bool) {
	args := m.Called()
	return args.Get(0).(auth.Session), args.Bool(1)
}

// LoggedIn stubs Session with a valid session for username.
func (m *MockAuth) LoggedIn(username string) *MockAuth {
	m.On("Session").Return(auth.Session{
		Username:    username,
		UserUUID:    "uuid-" + username,
		AccessToken: "token-" + username,
		Valid:       true,
	}, true).Maybe()
	return m
}

type MockServers struct {
	mock.Mock
}

func (m *MockServers) List(ctx context.Context) ([]servers.Descriptor, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]servers.Descriptor)
	return list, args.Error(1) //nolint:wrapcheck // mock
}

func (m *MockServers) Select(ctx context.Context, title string) (servers.Descriptor, error) {
	args := m.Called(ctx, title)
	return args.Get(0).(servers.Descriptor), args.Error(1) //nolint:wrapcheck // mock
}

func (m *MockServers) Selected() (servers.Descriptor, bool) {
	args := m.Called()
	return args.Get(0).(servers.Descriptor), args.Bool(1)
}

func (m *MockServers) Ping(ctx context.Context, title string) (servers.Status, error) {
	args := m.Called(ctx, title)
	return args.Get(0).(servers.Status), args.Error(1) //nolint:wrapcheck // mock
}

func (m *MockServers) Profile(ctx context.Context, d servers.Descriptor) (launchserver.Profile, error) {
	args := m.Called(ctx, d)
	return args.Get(0).(launchserver.Profile), args.Error(1) //nolint:wrapcheck // mock
}

// NoneSelected stubs Selected with no selection.
func (m *MockServers) NoneSelected() *MockServers {
	m.On("Selected").Return(servers.Descriptor{}, false).Maybe()
	return m
}

type MockLauncher struct {
	mock.Mock
}

//nolint:gocritic // matches launch.Orchestrator
func (m *MockLauncher) Start(req launch.Request) (*launch.Stream, error) {
	args := m.Called(req)
	stream, _ := args.Get(0).(*launch.Stream)
	return stream, args.Error(1) //nolint:wrapcheck // mock
}

func (m *MockLauncher) Stop() error {
	args := m.Called()
	return args.Error(0) //nolint:wrapcheck // mock
}

func (m *MockLauncher) Status() launch.Status {
	args := m.Called()
	return args.Get(0).(launch.Status)
}

type MockWindow struct {
	mock.Mock
}

func (m *MockWindow) SetTitle(title string) {
	m.Called(title)
}

func (m *MockWindow) Hide() {
	m.Called()
}

func (m *MockWindow) Close() {
	m.Called()
}

func (m *MockWindow) OpenExternal(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0) //nolint:wrapcheck // mock
}

func (m *MockWindow) EditDir(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0) //nolint:wrapcheck // mock
}

func (m *MockWindow) OpenDir(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0) //nolint:wrapcheck // mock
}

func (m *MockWindow) Forward(stream *launch.Stream) {
	m.Called(stream)
}

type MockPresence struct {
	mock.Mock
}

func (m *MockPresence) UpdateActivity(kind, username, server string) {
	m.Called(kind, username, server)
}

func (m *MockPresence) ClearActivity() {
	m.Called()
}
