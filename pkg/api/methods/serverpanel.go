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
	"errors"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/api/models/requests"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/service/auth"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/service/launch"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/service/servers"
	"github.com/rs/zerolog/log"
)

//nolint:gocritic // single-use parameter in API handler
func HandleGetServer(env requests.RequestEnv) (any, error) {
	sel, ok := env.Servers.Selected()
	if !ok {
		return nil, servers.ErrNoneSelected
	}
	return sel, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleGetProfile(env requests.RequestEnv) (any, error) {
	sel, ok := env.Servers.Selected()
	if !ok {
		return nil, servers.ErrNoneSelected
	}
	profile, err := env.Servers.Profile(env.Context, sel)
	if err != nil {
		return nil, err //nolint:wrapcheck // directory errors carry their kind
	}
	return profile, nil
}

// HandleStartGame starts a launch of the selected server. The reply is an
// ack with the launch id; progress, console output and the single
// gameEnded event follow as notifications.
//
//nolint:gocritic // single-use parameter in API handler
func HandleStartGame(env requests.RequestEnv) (any, error) {
	sess, ok := env.Auth.Session()
	if !ok {
		return nil, auth.ErrNotAuthenticated
	}
	sel, ok := env.Servers.Selected()
	if !ok {
		return nil, servers.ErrNoneSelected
	}

	profile, err := env.Servers.Profile(env.Context, sel)
	if err != nil {
		return nil, err //nolint:wrapcheck // directory errors carry their kind
	}

	req, err := launch.NewRequest(sel, profile, env.Config.Launcher(), sess)
	if err != nil {
		return nil, err //nolint:wrapcheck // request errors carry their kind
	}

	stream, err := env.Launcher.Start(req)
	if err != nil {
		return nil, err //nolint:wrapcheck // launch errors carry their kind
	}

	log.Info().Str("launch", stream.ID).Str("server", sel.Title).Msg("game start acknowledged")
	return Deferred{
		Result: models.StartGameResponse{LaunchID: stream.ID},
		Then:   func() { env.Window.Forward(stream) },
	}, nil
}

// HandleStopGame asks the current launch to stop. The outcome arrives as
// the launch's gameEnded event.
//
//nolint:gocritic // single-use parameter in API handler
func HandleStopGame(env requests.RequestEnv) (any, error) {
	err := env.Launcher.Stop()
	if errors.Is(err, launch.ErrNotRunning) {
		return models.StopGameResponse{Stopping: false}, nil
	} else if err != nil {
		return nil, err //nolint:wrapcheck // launch errors carry their kind
	}
	return models.StopGameResponse{Stopping: true}, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleLaunchStatus(env requests.RequestEnv) (any, error) {
	return env.Launcher.Status(), nil
}
