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
	"github.com/ZaparooProject/zaparoo-launcher/pkg/service/servers"
)

//nolint:gocritic // single-use parameter in API handler
func HandleServers(env requests.RequestEnv) (any, error) {
	list, err := env.Servers.List(env.Context)
	if err != nil {
		return nil, err //nolint:wrapcheck // directory errors carry their kind
	}
	if list == nil {
		list = []servers.Descriptor{}
	}
	return list, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleSelectServer(env requests.RequestEnv) (any, error) {
	var params models.ServerParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}
	d, err := env.Servers.Select(env.Context, params.Title)
	if err != nil {
		return nil, err //nolint:wrapcheck // directory errors carry their kind
	}
	return d, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandlePingServer(env requests.RequestEnv) (any, error) {
	var params models.ServerParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}
	st, err := env.Servers.Ping(env.Context, params.Title)
	if err != nil {
		return nil, err //nolint:wrapcheck // directory errors carry their kind
	}
	return st, nil
}
