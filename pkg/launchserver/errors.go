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

package launchserver

import (
	"errors"
	"fmt"
)

// Remote error codes with a meaning the launcher acts on.
const (
	CodeInvalidCredentials = 1001
	CodeTokenExpired       = 1002
	CodeNotFound           = 1004
)

var (
	// ErrNetwork wraps every failure to reach the server or get an answer
	// in time, as opposed to a RemoteError answer.
	ErrNetwork      = errors.New("launch server unreachable")
	ErrDisconnected = errors.New("connection lost")
	ErrClosed       = errors.New("client closed")
)

// RemoteError is an error object returned by the launch server.
type RemoteError struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("launch server error %d: %s", e.Code, e.Message)
}

// RemoteCode returns the remote error code in err, or 0.
func RemoteCode(err error) int {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Code
	}
	return 0
}
