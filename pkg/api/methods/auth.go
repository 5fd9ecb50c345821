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
	"github.com/ZaparooProject/zaparoo-launcher/pkg/service/auth"
	"github.com/rs/zerolog/log"
)

// HandleLogin returns the session without its access token.
//
//nolint:gocritic // single-use parameter in API handler
func HandleLogin(env requests.RequestEnv) (any, error) {
	var params models.LoginParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	log.Info().Str("login", params.Login).Bool("remember", params.Remember).Msg("received login request")

	sess, err := env.Auth.Login(env.Context, auth.Credentials{
		Login:    params.Login,
		Password: params.Password,
		Remember: params.Remember,
	})
	if err != nil {
		return nil, err //nolint:wrapcheck // auth errors carry their kind
	}
	return sess, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleLoginWithToken(env requests.RequestEnv) (any, error) {
	var params models.LoginWithTokenParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	sess, err := env.Auth.LoginWithToken(env.Context, params.Token)
	if err != nil {
		return nil, err //nolint:wrapcheck // auth errors carry their kind
	}
	return sess, nil
}
