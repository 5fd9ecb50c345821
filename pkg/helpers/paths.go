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

package helpers

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/config"
	"github.com/adrg/xdg"
)

// ConfigDir is the directory holding launcher.toml and session.toml.
func ConfigDir() string {
	if p := os.Getenv(config.CfgEnv); p != "" {
		return filepath.Dir(p)
	}
	return filepath.Join(xdg.ConfigHome, config.AppName)
}

// DataDir is the launcher's own data directory. The game directory
// defaults to a folder inside it.
func DataDir() string {
	return filepath.Join(xdg.DataHome, config.AppName)
}

func LogDir() string {
	return filepath.Join(DataDir(), config.LogsDir)
}

func DefaultGameDir() string {
	return filepath.Join(DataDir(), config.GameDir)
}

// NormalizePathForComparison cleans a path, converts it to forward slashes
// and, on case-insensitive platforms, lowercases it.
func NormalizePathForComparison(path string) string {
	p := filepath.ToSlash(filepath.Clean(path))
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		p = strings.ToLower(p)
	}
	return p
}

// SamePath reports whether two paths name the same directory after
// normalisation. Symlinks are not resolved.
func SamePath(a, b string) bool {
	if a == "" || b == "" {
		return a == b
	}
	return NormalizePathForComparison(a) == NormalizePathForComparison(b)
}

// PathHasPrefix checks if path is within root, respecting separator
// boundaries so "/games2" is not inside "/games".
func PathHasPrefix(path, root string) bool {
	normPath := NormalizePathForComparison(path)
	normRoot := NormalizePathForComparison(root)

	if normPath == normRoot {
		return true
	}
	if root == "" {
		return false
	}
	if !strings.HasSuffix(normRoot, "/") {
		normRoot += "/"
	}
	return strings.HasPrefix(normPath, normRoot)
}
