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

package launch

// State is the phase of the launch slot. Only one launch exists per
// process; it walks Verifying, Downloading, Starting, Running and ends in
// one of the terminal states before returning to Idle.
type State string

const (
	StateIdle        State = "idle"
	StateVerifying   State = "verifying"
	StateDownloading State = "downloading"
	StateStarting    State = "starting"
	StateRunning     State = "running"
	StateSucceeded   State = "succeeded"
	StateFailed      State = "failed"
	StateStopped     State = "stopped"
)

func (s State) Terminal() bool {
	switch s {
	case StateSucceeded, StateFailed, StateStopped:
		return true
	default:
		return false
	}
}

// Status is a snapshot of the launch slot for UI re-sync.
type Status struct {
	State    State  `json:"state"`
	LaunchID string `json:"launchId,omitempty"`
	Server   string `json:"server,omitempty"`
}

// Active reports whether a launch occupies the slot.
func (s Status) Active() bool {
	return s.State != StateIdle && !s.State.Terminal()
}
