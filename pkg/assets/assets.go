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

// Package assets embeds the files shipped inside the launcher binary.
package assets

import (
	"embed"
	"io/fs"
	"runtime"
)

//go:embed _ui
var ui embed.FS

//go:embed trayicon.png
var trayIconPNG []byte

//go:embed trayicon.ico
var trayIconICO []byte

// UI is the placeholder page served when no UI directory is configured.
func UI() fs.FS {
	sub, err := fs.Sub(ui, "_ui")
	if err != nil {
		panic(err)
	}
	return sub
}

// TrayIcon returns the tray icon in the format the platform expects.
func TrayIcon() []byte {
	return trayIconFor(runtime.GOOS)
}

func trayIconFor(goos string) []byte {
	if goos == "windows" {
		return trayIconICO
	}
	return trayIconPNG
}
