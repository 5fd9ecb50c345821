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

// Package requests is the environment a Bridge handler runs in.
package requests

import (
	"context"
	"encoding/json"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/config"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/launchserver"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/service/auth"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/service/launch"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/service/servers"
)

type Auth interface {
	Login(ctx context.Context, creds auth.Credentials) (auth.Session, error)
	LoginWithToken(ctx context.Context, token string) (auth.Session, error)
	Session() (auth.Session, bool)
}

type Servers interface {
	List(ctx context.Context) ([]servers.Descriptor, error)
	Select(ctx context.Context, title string) (servers.Descriptor, error)
	Selected() (servers.Descriptor, bool)
	Ping(ctx context.Context, title string) (servers.Status, error)
	Profile(ctx context.Context, d servers.Descriptor) (launchserver.Profile, error)
}

type Launcher interface {
	Start(req launch.Request) (*launch.Stream, error)
	Stop() error
	Status() launch.Status
}

// Window is the part of the window host the UI may drive.
type Window interface {
	SetTitle(title string)
	Hide()
	Close()
	OpenExternal(ctx context.Context, url string) error
	EditDir(ctx context.Context) error
	OpenDir(ctx context.Context, path string) error
	// Forward pushes a launch stream to the UI until its terminal event.
	Forward(stream *launch.Stream)
}

type Presence interface {
	UpdateActivity(kind, username, server string)
	ClearActivity()
}

type RequestEnv struct {
	Context     context.Context
	Config      *config.Instance
	Auth        Auth
	Servers     Servers
	Launcher    Launcher
	Window      Window
	Presence    Presence
	TotalMemory func() (uint64, error)
	Channel     models.Channel
	Params      json.RawMessage
	ID          models.RPCID
}
