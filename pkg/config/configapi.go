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
	"time"

	"github.com/rs/zerolog/log"
)

const DefaultAPIURL = "ws://127.0.0.1:9274/api"

// API configures the connection to the remote launch server.
type API struct {
	URL            string `toml:"url"`
	FilesURL       string `toml:"files_url,omitempty"`
	RequestTimeout string `toml:"request_timeout,omitempty"`
}

func (c *Instance) APIURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.API.URL
}

// APIFilesURL is the HTTP base for client file downloads. Empty means the
// launch server did not advertise a separate file host.
func (c *Instance) APIFilesURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.API.FilesURL
}

func (c *Instance) APIRequestTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return parseDuration("api.request_timeout", c.vals.API.RequestTimeout, DefaultRequestTimeout)
}

func parseDuration(key, s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		log.Warn().Str("key", key).Str("value", s).Msg("invalid duration, using default")
		return def
	}
	return d
}
