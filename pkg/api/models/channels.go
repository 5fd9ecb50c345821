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

package models

import (
	"maps"
	"slices"
	"strings"
)

// Channel is a UI to main call, named namespace.verb.
type Channel string

const (
	ChannelWindowSetTitle     Channel = "window.setTitle"
	ChannelWindowHide         Channel = "window.hide"
	ChannelWindowClose        Channel = "window.close"
	ChannelWindowOpenExternal Channel = "window.openExternal"
	ChannelWindowEditDir      Channel = "window.editDir"
	ChannelWindowOpenDir      Channel = "window.openDir"

	ChannelRPCUpdateActivity Channel = "rpc.updateActivity"
	ChannelRPCClearActivity  Channel = "rpc.clearActivity"

	ChannelAuthLogin          Channel = "auth.login"
	ChannelAuthLoginWithToken Channel = "auth.loginWithToken"

	ChannelServersList   Channel = "servers.list"
	ChannelServersSelect Channel = "servers.select"
	ChannelServersPing   Channel = "servers.ping"

	ChannelServerPanelGetProfile Channel = "serverPanel.getProfile"
	ChannelServerPanelGetServer  Channel = "serverPanel.getServer"
	ChannelServerPanelStartGame  Channel = "serverPanel.startGame"
	ChannelServerPanelStopGame   Channel = "serverPanel.stopGame"
	ChannelServerPanelStatus     Channel = "serverPanel.status"

	ChannelSettingsSetField       Channel = "settings.setField"
	ChannelSettingsGetField       Channel = "settings.getField"
	ChannelSettingsGetAllFields   Channel = "settings.getAllFields"
	ChannelSettingsGetTotalMemory Channel = "settings.getTotalMemory"
)

// Event is a main to UI notification.
type Event string

const (
	EventProgress        Event = "serverPanel.progress"
	EventConsole         Event = "serverPanel.console"
	EventGameEnded       Event = "serverPanel.gameEnded"
	EventWindowControl   Event = "window.control"
	EventUpdateAvailable Event = "window.updateAvailable"
)

// Shape is how a channel is called.
type Shape int

const (
	// ShapeFireAndForget channels are sent as notifications and get no
	// reply.
	ShapeFireAndForget Shape = iota
	// ShapeRequest channels get exactly one reply.
	ShapeRequest
	// ShapeStream channels reply with an ack, then push events until one
	// terminal event.
	ShapeStream
)

func (s Shape) String() string {
	switch s {
	case ShapeFireAndForget:
		return "fire-and-forget"
	case ShapeRequest:
		return "request"
	case ShapeStream:
		return "stream"
	default:
		return "unknown"
	}
}

// catalog is every channel the Bridge accepts. It is fixed at compile
// time.
var catalog = map[Channel]Shape{
	ChannelWindowSetTitle:     ShapeFireAndForget,
	ChannelWindowHide:         ShapeFireAndForget,
	ChannelWindowClose:        ShapeFireAndForget,
	ChannelWindowOpenExternal: ShapeFireAndForget,
	ChannelWindowEditDir:      ShapeFireAndForget,
	ChannelWindowOpenDir:      ShapeFireAndForget,

	ChannelRPCUpdateActivity: ShapeFireAndForget,
	ChannelRPCClearActivity:  ShapeFireAndForget,

	ChannelAuthLogin:          ShapeRequest,
	ChannelAuthLoginWithToken: ShapeRequest,

	ChannelServersList:   ShapeRequest,
	ChannelServersSelect: ShapeRequest,
	ChannelServersPing:   ShapeRequest,

	ChannelServerPanelGetProfile: ShapeRequest,
	ChannelServerPanelGetServer:  ShapeRequest,
	ChannelServerPanelStartGame:  ShapeStream,
	ChannelServerPanelStopGame:   ShapeRequest,
	ChannelServerPanelStatus:     ShapeRequest,

	ChannelSettingsSetField:       ShapeRequest,
	ChannelSettingsGetField:       ShapeRequest,
	ChannelSettingsGetAllFields:   ShapeRequest,
	ChannelSettingsGetTotalMemory: ShapeRequest,
}

// LookupChannel resolves a method name against the catalog.
func LookupChannel(name string) (Channel, Shape, bool) {
	ch := Channel(name)
	shape, ok := catalog[ch]
	return ch, shape, ok
}

// Catalog returns a copy of every channel and its shape.
func Catalog() map[Channel]Shape {
	return maps.Clone(catalog)
}

// Channels lists the catalog sorted by name.
func Channels() []Channel {
	out := make([]Channel, 0, len(catalog))
	for ch := range catalog {
		out = append(out, ch)
	}
	slices.SortFunc(out, func(a, b Channel) int {
		return strings.Compare(string(a), string(b))
	})
	return out
}

// Namespace is the part before the first dot.
func (c Channel) Namespace() string {
	ns, _, _ := strings.Cut(string(c), ".")
	return ns
}
