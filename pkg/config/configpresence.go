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

const DefaultPresenceTopic = "zaparoo/launcher/presence"

// Presence configures the MQTT activity reporter. No broker disables it.
type Presence struct {
	Broker string `toml:"broker,omitempty"`
	Topic  string `toml:"topic,omitempty"`
}

func (c *Instance) PresenceBroker() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Presence.Broker
}

func (c *Instance) PresenceTopic() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Presence.Topic == "" {
		return DefaultPresenceTopic
	}
	return c.vals.Presence.Topic
}
