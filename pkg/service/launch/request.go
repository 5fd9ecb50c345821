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
	"github.com/ZaparooProject/zaparoo-launcher/pkg/config"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/launchserver"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/service/auth"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/service/servers"
)

// Request is everything one launch attempt needs. It is not changed once
// the launch starts.
type Request struct {
	Server   servers.Descriptor
	Profile  launchserver.Profile
	Session  auth.Session
	Settings config.Launcher
}

//nolint:gocritic // snapshots are copied on purpose
func NewRequest(
	server servers.Descriptor,
	profile launchserver.Profile,
	settings config.Launcher,
	session auth.Session,
) (Request, error) {
	if !session.Valid {
		return Request{}, auth.ErrNotAuthenticated
	}
	if settings.Dir == "" {
		return Request{}, &config.ConfigurationError{
			Setting: "dir",
			Reason:  "game directory is not set",
			Err:     config.ErrInvalidSettingValue,
		}
	}
	return Request{
		Server:   server,
		Profile:  profile,
		Session:  session,
		Settings: settings,
	}, nil
}
