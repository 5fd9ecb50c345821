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
	"context"
	"runtime/debug"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/api/models/requests"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/api/validation"
	"github.com/rs/zerolog/log"
)

//nolint:gocritic // single-use parameter in API handler
func HandleSetTitle(env requests.RequestEnv) (any, error) {
	var params models.SetTitleParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}
	env.Window.SetTitle(params.Title)
	return NoContent{}, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleHide(env requests.RequestEnv) (any, error) {
	env.Window.Hide()
	return NoContent{}, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleClose(env requests.RequestEnv) (any, error) {
	env.Window.Close()
	return NoContent{}, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleOpenExternal(env requests.RequestEnv) (any, error) {
	var params models.OpenExternalParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}
	if err := env.Window.OpenExternal(env.Context, params.URL); err != nil {
		return nil, err //nolint:wrapcheck // already wrapped by the window host
	}
	return NoContent{}, nil
}

// HandleEditDir opens the directory picker in the background. The dialog
// is modal and may stay open for as long as the user likes, so the
// session's message loop is not held up waiting for it.
//
//nolint:gocritic // single-use parameter in API handler
func HandleEditDir(env requests.RequestEnv) (any, error) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Interface("panic", r).
					Bytes("stack", debug.Stack()).
					Msg("recovered from panic changing game directory")
			}
		}()
		if err := env.Window.EditDir(context.WithoutCancel(env.Context)); err != nil {
			log.Error().Err(err).Msg("failed to change game directory")
		}
	}()
	return NoContent{}, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleOpenDir(env requests.RequestEnv) (any, error) {
	var params models.OpenDirParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}
	if err := env.Window.OpenDir(env.Context, params.Path); err != nil {
		return nil, err //nolint:wrapcheck // already wrapped by the window host
	}
	return NoContent{}, nil
}
