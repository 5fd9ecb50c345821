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

const (
	DefaultDownloadConcurrency = 4
	DefaultStopTimeout         = 10 * time.Second
)

type Launch struct {
	StopTimeout         string `toml:"stop_timeout,omitempty"`
	DownloadConcurrency int    `toml:"download_concurrency,omitempty"`
}

func (c *Instance) DownloadConcurrency() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Launch.DownloadConcurrency < 1 {
		return DefaultDownloadConcurrency
	}
	return c.vals.Launch.DownloadConcurrency
}

// StopTimeout is how long a stopped game gets to exit before it is killed.
func (c *Instance) StopTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return parseDuration("launch.stop_timeout", c.vals.Launch.StopTimeout, DefaultStopTimeout)
}
