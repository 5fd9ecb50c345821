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

// Package notifications builds the events the main process pushes to the
// UI.
package notifications

import (
	"encoding/json"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/service/launch"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/updater"
	"github.com/rs/zerolog/log"
)

// Sender delivers an event to the UI. *api.Server implements it.
type Sender interface {
	Notify(n models.Notification)
}

func send(s Sender, method models.Event, payload any) {
	var params json.RawMessage
	if payload != nil {
		var err error
		params, err = json.Marshal(payload)
		if err != nil {
			log.Error().Err(err).Str("event", string(method)).Msg("marshalling notification payload")
			return
		}
	}
	s.Notify(models.Notification{Method: method, Params: params})
}

//nolint:gocritic // progress is a small value
func Progress(s Sender, launchID string, p launch.Progress) {
	send(s, models.EventProgress, models.ProgressEvent{
		LaunchID: launchID,
		Progress: p,
		Percent:  p.Percent(),
	})
}

func Console(s Sender, launchID, text string) {
	send(s, models.EventConsole, models.ConsoleEvent{LaunchID: launchID, Text: text})
}

//nolint:gocritic // terminal is a small value
func GameEnded(s Sender, launchID string, t launch.Terminal) {
	send(s, models.EventGameEnded, models.GameEndedEvent{LaunchID: launchID, Terminal: t})
}

// LaunchEvent sends one item of a launch stream on its channel.
func LaunchEvent(s Sender, launchID string, ev launch.Event) {
	switch e := ev.(type) {
	case launch.Progress:
		Progress(s, launchID, e)
	case launch.Console:
		Console(s, launchID, e.Text)
	case launch.Terminal:
		GameEnded(s, launchID, e)
	default:
		log.Warn().Type("event", ev).Msg("unknown launch event")
	}
}

func WindowControl(s Sender, action, title string) {
	send(s, models.EventWindowControl, models.WindowControlEvent{Action: action, Title: title})
}

func UpdateAvailable(s Sender, r updater.Release) {
	send(s, models.EventUpdateAvailable, models.UpdateAvailableEvent{
		Version: r.Version,
		URL:     r.URL,
		Notes:   r.Notes,
	})
}
