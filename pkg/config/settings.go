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
	"slices"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog/log"
)

// SettingsFormat is the flat field map the UI reads and writes.
type SettingsFormat map[string]any

func launcherToMap(l Launcher) (SettingsFormat, error) {
	out := map[string]any{}
	if err := mapstructure.Decode(l, &out); err != nil {
		return nil, fmt.Errorf("failed to encode settings: %w", err)
	}
	return out, nil
}

func mapToLauncher(m SettingsFormat) (Launcher, error) {
	var l Launcher
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &l,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return Launcher{}, fmt.Errorf("failed to create settings decoder: %w", err)
	}
	if err := dec.Decode(map[string]any(m)); err != nil {
		return Launcher{}, err //nolint:wrapcheck // wrapped by caller with field name
	}
	return l, nil
}

// SettingFields lists the UI field names, sorted.
func SettingFields() []string {
	fields, err := launcherToMap(Launcher{})
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// AllFields returns every user setting.
func (c *Instance) AllFields() (SettingsFormat, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return launcherToMap(c.vals.Launcher)
}

// GetField returns a single user setting by its UI field name.
func (c *Instance) GetField(name string) (any, error) {
	fields, err := c.AllFields()
	if err != nil {
		return nil, err
	}
	v, ok := fields[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSetting, name)
	}
	return v, nil
}

// SetField updates one user setting and writes the config file before
// returning. A failed write leaves the previous value in place.
func (c *Instance) SetField(name string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	fields, err := launcherToMap(c.vals.Launcher)
	if err != nil {
		return err
	}
	if _, ok := fields[name]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSetting, name)
	}
	fields[name] = value

	next, err := mapToLauncher(fields)
	if err != nil {
		return &ConfigurationError{Setting: name, Reason: "wrong type", Err: fmt.Errorf("%w: %w", ErrInvalidSettingValue, err)}
	}
	if err := next.validate(); err != nil {
		return err
	}

	prev := c.vals.Launcher
	c.vals.Launcher = next
	if err := c.saveLocked(); err != nil {
		c.vals.Launcher = prev
		return err
	}

	log.Debug().Str("field", name).Interface("value", value).Msg("setting updated")
	return nil
}
