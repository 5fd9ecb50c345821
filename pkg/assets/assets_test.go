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

package assets

import (
	"bytes"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrayIconFor(t *testing.T) {
	t.Parallel()

	pngMagic := []byte("\x89PNG\r\n\x1a\n")
	assert.True(t, bytes.HasPrefix(trayIconFor("linux"), pngMagic))
	assert.True(t, bytes.HasPrefix(trayIconFor("darwin"), pngMagic))
	assert.True(t, bytes.HasPrefix(trayIconFor("windows"), []byte{0, 0, 1, 0}))
}

func TestUI(t *testing.T) {
	t.Parallel()

	data, err := fs.ReadFile(UI(), "index.html")
	require.NoError(t, err)
	assert.Contains(t, string(data), "bridge.ui_dir")
}
