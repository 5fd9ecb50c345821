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
	"github.com/ZaparooProject/zaparoo-launcher/pkg/config"
	"github.com/rs/zerolog/log"
)

// HandleSetField replies only after the setting is on disk. The game
// directory is refused here: moving it goes through window.editDir.
//
//nolint:gocritic // single-use parameter in API handler
func HandleSetField(env requests.RequestEnv) (any, error) {
	var params models.SetFieldParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	if params.Field == "dir" {
		return nil, &config.ConfigurationError{
			Setting: "dir",
			Reason:  "use window.editDir to move the game directory",
			Err:     config.ErrReadOnlySetting,
		}
	}

	log.Info().Str("field", params.Field).Interface("value", params.Value).Msg("received setting update")

	if err := env.Config.SetField(params.Field, params.Value); err != nil {
		return nil, err //nolint:wrapcheck // configuration errors carry their kind
	}
	return NoContent{}, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleGetField(env requests.RequestEnv) (any, error) {
	var params models.GetFieldParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}
	v, err := env.Config.GetField(params.Field)
	if err != nil {
		return nil, err //nolint:wrapcheck // configuration errors carry their kind
	}
	return models.FieldResponse{Field: params.Field, Value: v}, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleGetAllFields(env requests.RequestEnv) (any, error) {
	fields, err := env.Config.AllFields()
	if err != nil {
		return nil, err //nolint:wrapcheck // configuration errors carry their kind
	}
	return fields, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleTotalMemory(env requests.RequestEnv) (any, error) {
	total, err := env.TotalMemory()
	if err != nil {
		return nil, err
	}
	return models.TotalMemoryResponse{Total: total}, nil
}
