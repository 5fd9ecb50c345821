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
	"os"
	"path/filepath"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/helpers/syncutil"
	"github.com/google/uuid"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
)

const (
	SchemaVersion = 1
	CfgEnv        = "ZAPAROO_LAUNCHER_CFG"
)

type Values struct {
	Updates           Updates  `toml:"updates,omitempty"`
	Bridge            Bridge   `toml:"bridge,omitempty"`
	Window            Window   `toml:"window,omitempty"`
	Presence          Presence `toml:"presence,omitempty"`
	API               API      `toml:"api"`
	ErrorReportingDSN string   `toml:"error_reporting_dsn,omitempty"`
	DeviceID          string   `toml:"device_id"`
	Launcher          Launcher `toml:"launcher"`
	Servers           Servers  `toml:"servers,omitempty"`
	Launch            Launch   `toml:"launch,omitempty"`
	ConfigSchema      int      `toml:"config_schema"`
	DebugLogging      bool     `toml:"debug_logging"`
	ErrorReporting    bool     `toml:"error_reporting"`
}

var BaseDefaults = Values{
	ConfigSchema: SchemaVersion,
	Launcher: Launcher{
		AutoConnect: true,
		Memory:      DefaultMemory,
	},
	API: API{
		URL: DefaultAPIURL,
	},
	Bridge: Bridge{
		Listen: DefaultBridgeListen,
	},
	Window: Window{
		Title: AppTitle,
	},
	Launch: Launch{
		DownloadConcurrency: DefaultDownloadConcurrency,
	},
}

type Instance struct {
	cfgPath     string
	sessionPath string
	lastWritten []byte
	vals        Values
	defaults    Values
	mu          syncutil.RWMutex
}

// NewConfig loads the config file from configDir, writing the defaults to
// disk first if no file exists yet. CfgEnv overrides the file path.
//
//nolint:gocritic // config struct copied for immutability
func NewConfig(configDir string, defaults Values) (*Instance, error) {
	cfgPath := os.Getenv(CfgEnv)
	log.Debug().Msgf("env config path: %s", cfgPath)

	if cfgPath == "" {
		cfgPath = filepath.Join(configDir, CfgFile)
	}

	cfg := Instance{
		cfgPath:     cfgPath,
		sessionPath: filepath.Join(filepath.Dir(cfgPath), SessionFile),
		vals:        defaults,
		defaults:    defaults,
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		log.Info().Str("path", cfgPath).Msg("saving new default config to disk")

		err := os.MkdirAll(filepath.Dir(cfgPath), 0o750)
		if err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}

		err = cfg.Save()
		if err != nil {
			return nil, err
		}
	}

	err := cfg.Load()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Path returns the absolute path of the config file.
func (c *Instance) Path() string {
	return c.cfgPath
}

func (c *Instance) Load() error {
	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	data, err := os.ReadFile(c.cfgPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	return c.loadBytes(data)
}

func (c *Instance) loadBytes(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Unset keys keep their default value.
	newVals := c.defaults
	err := toml.Unmarshal(data, &newVals)
	if err != nil {
		return &ConfigurationError{
			Reason: "failed to parse " + filepath.Base(c.cfgPath),
			Err:    err,
		}
	}

	if newVals.ConfigSchema != SchemaVersion {
		log.Error().Msgf(
			"schema version mismatch: got %d, expecting %d",
			newVals.ConfigSchema,
			SchemaVersion,
		)
		return &ConfigurationError{
			Setting: "config_schema",
			Reason:  fmt.Sprintf("got %d, expecting %d", newVals.ConfigSchema, SchemaVersion),
			Err:     ErrSchemaMismatch,
		}
	}

	if err := newVals.Launcher.validate(); err != nil {
		return err
	}

	c.vals = newVals
	return nil
}

func (c *Instance) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saveLocked()
}

// saveLocked writes the current values to disk. Caller must hold mu.
func (c *Instance) saveLocked() error {
	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	c.vals.ConfigSchema = SchemaVersion

	if c.vals.DeviceID == "" {
		c.vals.DeviceID = uuid.New().String()
		log.Info().Msgf("generated new device id: %s", c.vals.DeviceID)
	}

	data, err := toml.Marshal(&c.vals)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.cfgPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	c.lastWritten = data

	return nil
}

func (c *Instance) DebugLogging() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.DebugLogging
}

func (c *Instance) SetDebugLogging(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.DebugLogging = enabled
}

func (c *Instance) ErrorReporting() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.ErrorReporting
}

func (c *Instance) ErrorReportingDSN() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.ErrorReportingDSN
}

func (c *Instance) DeviceID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.DeviceID
}
