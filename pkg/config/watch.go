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
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Watch reloads the config file when it is edited outside the launcher.
// Writes made by Save are recognised and skipped. onReload may be nil.
func (c *Instance) Watch(ctx context.Context, onReload func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}

	// Editors often replace the file, so the directory is watched instead.
	if err := watcher.Add(filepath.Dir(c.cfgPath)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch config directory: %w", err)
	}

	go func() {
		defer func() { _ = watcher.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(c.cfgPath) {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				c.reloadChanged(onReload)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn().Err(err).Msg("config watcher error")
			}
		}
	}()

	return nil
}

func (c *Instance) reloadChanged(onReload func()) {
	data, err := os.ReadFile(c.cfgPath)
	if err != nil {
		log.Warn().Err(err).Msg("failed to read changed config file")
		return
	}

	c.mu.RLock()
	own := bytes.Equal(data, c.lastWritten)
	c.mu.RUnlock()
	if own {
		return
	}

	if err := c.loadBytes(data); err != nil {
		log.Warn().Err(err).Msg("ignoring invalid config change")
		return
	}

	c.mu.Lock()
	c.lastWritten = data
	c.mu.Unlock()

	log.Info().Msg("reloaded config after external change")
	if onReload != nil {
		onReload()
	}
}
