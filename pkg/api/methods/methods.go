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

// Package methods holds one handler per Bridge channel.
package methods

import (
	"errors"
	"fmt"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/api/models/requests"
)

var ErrUnknownChannel = errors.New("unknown channel")

// NoContent is the reply of handlers with nothing to return.
type NoContent struct{}

// Deferred is returned by streaming handlers. Result is the reply; Then
// runs once the reply has been written, so the ack always reaches the UI
// before the first stream event.
type Deferred struct {
	Result any
	Then   func()
}

// Dispatch routes a catalog channel to its handler.
//
//nolint:gocritic // env is passed by value to every handler
func Dispatch(env requests.RequestEnv) (any, error) {
	switch env.Channel {
	case models.ChannelWindowSetTitle:
		return HandleSetTitle(env)
	case models.ChannelWindowHide:
		return HandleHide(env)
	case models.ChannelWindowClose:
		return HandleClose(env)
	case models.ChannelWindowOpenExternal:
		return HandleOpenExternal(env)
	case models.ChannelWindowEditDir:
		return HandleEditDir(env)
	case models.ChannelWindowOpenDir:
		return HandleOpenDir(env)
	case models.ChannelRPCUpdateActivity:
		return HandleUpdateActivity(env)
	case models.ChannelRPCClearActivity:
		return HandleClearActivity(env)
	case models.ChannelAuthLogin:
		return HandleLogin(env)
	case models.ChannelAuthLoginWithToken:
		return HandleLoginWithToken(env)
	case models.ChannelServersList:
		return HandleServers(env)
	case models.ChannelServersSelect:
		return HandleSelectServer(env)
	case models.ChannelServersPing:
		return HandlePingServer(env)
	case models.ChannelServerPanelGetProfile:
		return HandleGetProfile(env)
	case models.ChannelServerPanelGetServer:
		return HandleGetServer(env)
	case models.ChannelServerPanelStartGame:
		return HandleStartGame(env)
	case models.ChannelServerPanelStopGame:
		return HandleStopGame(env)
	case models.ChannelServerPanelStatus:
		return HandleLaunchStatus(env)
	case models.ChannelSettingsSetField:
		return HandleSetField(env)
	case models.ChannelSettingsGetField:
		return HandleGetField(env)
	case models.ChannelSettingsGetAllFields:
		return HandleGetAllFields(env)
	case models.ChannelSettingsGetTotalMemory:
		return HandleTotalMemory(env)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownChannel, env.Channel)
	}
}
