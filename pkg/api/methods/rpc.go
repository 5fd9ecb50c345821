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

package methods

import (
	"github.com/ZaparooProject/zaparoo-launcher/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/api/models/requests"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/api/validation"
)

// HandleUpdateActivity reports the screen the player is on. The username
// and server come from the main process, not the UI.
//
//nolint:gocritic // single-use parameter in API handler
func HandleUpdateActivity(env requests.RequestEnv) (any, error) {
	var params models.UpdateActivityParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	var username, server string
	if sess, ok := env.Auth.Session(); ok {
		username = sess.Username
	}
	if sel, ok := env.Servers.Selected(); ok {
		server = sel.Title
	}

	env.Presence.UpdateActivity(params.Kind, username, server)
	return NoContent{}, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleClearActivity(env requests.RequestEnv) (any, error) {
	env.Presence.ClearActivity()
	return NoContent{}, nil
}
