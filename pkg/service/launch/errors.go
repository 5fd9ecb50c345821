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

import (
	"errors"
	"fmt"
)

const (
	KindNetwork          = "network"
	KindVerification     = "verification"
	KindDownload         = "download"
	KindProcessSpawn     = "process_spawn"
	KindProcessExit      = "process_exit"
	KindLaunchInProgress = "launch_in_progress"
	KindDirectoryBusy    = "directory_busy"
)

var (
	ErrLaunchInProgress = &Error{kind: KindLaunchInProgress, Err: errors.New("a launch is already in progress")}
	ErrDirectoryBusy    = &Error{kind: KindDirectoryBusy, Err: errors.New("the game directory is being moved")}
	ErrNotRunning       = errors.New("no launch in progress")
	ErrClosed           = errors.New("launch orchestrator closed")
	ErrUnsafePath       = errors.New("path escapes the game directory")
	ErrSizeMismatch     = errors.New("size mismatch")
	ErrHashMismatch     = errors.New("checksum mismatch")
	ErrMissingFile      = errors.New("file missing")
	ErrNoExecutable     = errors.New("profile has no executable")
)

// Error is a launch failure with a machine-readable kind. Item names the
// manifest path involved, if any.
type Error struct {
	Err      error
	kind     string
	Item     string
	ExitCode int
}

func (e *Error) Error() string {
	if e.Item != "" {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.Item, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Kind() string { return e.kind }
