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

const DefaultBridgeListen = "127.0.0.1:0"

// Bridge configures the loopback listener the UI process connects to.
type Bridge struct {
	Listen         string   `toml:"listen,omitempty"`
	UIDir          string   `toml:"ui_dir,omitempty"`
	AllowedOrigins []string `toml:"allowed_origins,omitempty"`
}

func (c *Instance) BridgeListen() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Bridge.Listen == "" {
		return DefaultBridgeListen
	}
	return c.vals.Bridge.Listen
}

func (c *Instance) BridgeUIDir() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Bridge.UIDir
}

func (c *Instance) BridgeAllowedOrigins() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Bridge.AllowedOrigins
}
