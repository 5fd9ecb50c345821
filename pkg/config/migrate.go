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
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

var (
	ErrMigrateIntoSource = errors.New("destination is inside the current directory")
	ErrMigrateConflict   = errors.New("destination already contains entry")
)

// Migrate moves every entry of the game directory from into to. Conflicts
// are checked before anything is moved; a missing source only creates the
// destination.
func Migrate(fs afero.Fs, from, to string) error {
	if to == "" || !filepath.IsAbs(to) {
		return &ConfigurationError{
			Setting: "dir",
			Reason:  fmt.Sprintf("path must be absolute: %q", to),
			Err:     ErrInvalidSettingValue,
		}
	}
	from = filepath.Clean(from)
	to = filepath.Clean(to)

	if err := fs.MkdirAll(to, 0o750); err != nil {
		return fmt.Errorf("failed to create %s: %w", to, err)
	}

	if from == "." || from == to {
		return nil
	}
	if strings.HasPrefix(to, from+string(filepath.Separator)) {
		return fmt.Errorf("%w: %s", ErrMigrateIntoSource, to)
	}

	entries, err := afero.ReadDir(fs, from)
	if errors.Is(err, os.ErrNotExist) {
		log.Info().Str("from", from).Msg("nothing to migrate, source does not exist")
		return nil
	} else if err != nil {
		return fmt.Errorf("failed to read %s: %w", from, err)
	}

	for _, e := range entries {
		dst := filepath.Join(to, e.Name())
		if _, err := fs.Stat(dst); err == nil {
			return fmt.Errorf("%w: %s", ErrMigrateConflict, dst)
		}
	}

	for _, e := range entries {
		src := filepath.Join(from, e.Name())
		dst := filepath.Join(to, e.Name())
		if err := moveEntry(fs, src, dst); err != nil {
			return fmt.Errorf("failed to move %s: %w", e.Name(), err)
		}
	}

	if err := fs.Remove(from); err != nil {
		log.Debug().Err(err).Str("from", from).Msg("left old game directory in place")
	}

	log.Info().Str("from", from).Str("to", to).Int("entries", len(entries)).Msg("migrated game directory")
	return nil
}

// moveEntry renames src to dst, falling back to copy and delete when the
// rename crosses filesystems.
func moveEntry(fs afero.Fs, src, dst string) error {
	if err := fs.Rename(src, dst); err == nil {
		return nil
	}

	err := afero.Walk(fs, src, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", path, err)
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return fs.MkdirAll(target, 0o750) //nolint:wrapcheck // wrapped by caller
		}
		return copyFile(fs, path, target, info.Mode())
	})
	if err != nil {
		_ = fs.RemoveAll(dst)
		return err
	}

	return fs.RemoveAll(src) //nolint:wrapcheck // wrapped by caller
}

func copyFile(fs afero.Fs, src, dst string, mode os.FileMode) error {
	in, err := fs.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	out, err := fs.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm())
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", dst, err)
	}
	return nil
}

// MigrateDir moves the game directory to the new location and, only once
// the move succeeded, stores and saves it as the dir setting.
func (c *Instance) MigrateDir(fs afero.Fs, to string) error {
	from := c.GameDir()
	if err := Migrate(fs, from, to); err != nil {
		return err
	}
	return c.SetField("dir", filepath.Clean(to))
}
