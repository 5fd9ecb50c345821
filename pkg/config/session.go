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

package config

import (
	"errors"
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
)

// sessionFile holds the remembered launch-server token. It lives next to
// the config file but is never part of Values so the token is not written
// into launcher.toml.
type sessionFile struct {
	Token    string `toml:"token"`
	Username string `toml:"username,omitempty"`
}

// SessionToken returns the persisted token, or an empty string.
func (c *Instance) SessionToken() string {
	data, err := os.ReadFile(c.sessionPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Msg("failed to read session file")
		}
		return ""
	}

	var sf sessionFile
	if err := toml.Unmarshal(data, &sf); err != nil {
		log.Warn().Err(err).Msg("failed to parse session file")
		return ""
	}
	return sf.Token
}

func (c *Instance) SaveSessionToken(username, token string) error {
	data, err := toml.Marshal(sessionFile{Token: token, Username: username})
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := os.WriteFile(c.sessionPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

func (c *Instance) ClearSessionToken() error {
	err := os.Remove(c.sessionPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
