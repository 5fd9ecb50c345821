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
)

// KindConfiguration is the machine-readable kind reported for
// configuration problems.
const KindConfiguration = "configuration"

var (
	ErrUnknownSetting      = errors.New("unknown setting")
	ErrInvalidSettingValue = errors.New("invalid setting value")
	ErrSchemaMismatch      = errors.New("schema version mismatch")
	ErrReadOnlySetting     = errors.New("setting cannot be changed directly")
)

// ConfigurationError is a fatal startup or settings problem: a bad value,
// a missing required setting or a broken component graph.
type ConfigurationError struct {
	Err     error
	Setting string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	msg := e.Reason
	if e.Setting != "" {
		msg = fmt.Sprintf("%s: %s", e.Setting, e.Reason)
	}
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", msg, e.Err)
	}
	return "configuration error: " + msg
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func (*ConfigurationError) Kind() string {
	return KindConfiguration
}
