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
	"fmt"
	"path/filepath"
)

const DefaultMemory = 1024

// Launcher holds the user settings exposed to the UI. The mapstructure tags
// are the field names used on the settings channels.
type Launcher struct {
	Dir         string `toml:"dir" mapstructure:"dir"`
	Memory      int    `toml:"memory" mapstructure:"memory"`
	AutoConnect bool   `toml:"auto_connect" mapstructure:"autoConnect"`
	FullScreen  bool   `toml:"full_screen" mapstructure:"fullScreen"`
	StartDebug  bool   `toml:"start_debug" mapstructure:"startDebug"`
}

func (l *Launcher) validate() error {
	if l.Dir != "" && !filepath.IsAbs(l.Dir) {
		return &ConfigurationError{
			Setting: "dir",
			Reason:  fmt.Sprintf("path must be absolute: %s", l.Dir),
			Err:     ErrInvalidSettingValue,
		}
	}
	if l.Memory < 0 {
		return &ConfigurationError{
			Setting: "memory",
			Reason:  fmt.Sprintf("must not be negative: %d", l.Memory),
			Err:     ErrInvalidSettingValue,
		}
	}
	return nil
}

// Launcher returns a snapshot of the user settings.
func (c *Instance) Launcher() Launcher {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Launcher
}

func (c *Instance) GameDir() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Launcher.Dir
}
