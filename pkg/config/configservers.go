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

import "time"

const DefaultPingTimeout = 3 * time.Second

type Servers struct {
	Discovery   *bool         `toml:"discovery,omitempty"`
	PingTimeout string        `toml:"ping_timeout,omitempty"`
	Extra       []ExtraServer `toml:"extra,omitempty"`
}

// ExtraServer is a server entry added locally on top of the launch
// server's list.
type ExtraServer struct {
	Title       string `toml:"title"`
	Host        string `toml:"host"`
	ProfileUUID string `toml:"profile_uuid"`
	Port        int    `toml:"port"`
}

func (c *Instance) PingTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return parseDuration("servers.ping_timeout", c.vals.Servers.PingTimeout, DefaultPingTimeout)
}

func (c *Instance) ExtraServers() []ExtraServer {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]ExtraServer(nil), c.vals.Servers.Extra...)
}

func (c *Instance) DiscoveryEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Servers.Discovery == nil {
		return false
	}
	return *c.vals.Servers.Discovery
}
