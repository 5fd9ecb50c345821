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
	"crypto/sha1" //nolint:gosec // manifest format uses sha1
	"encoding/hex"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/launchserver"
	"github.com/spf13/afero"
)

// GameTree is a set of client files keyed by slash-separated path.
type GameTree map[string][]byte

// Write creates every file of the tree under root.
func (g GameTree) Write(fs afero.Fs, root string) error {
	for name, content := range g {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := fs.MkdirAll(filepath.Dir(p), 0o750); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", name, err)
		}
		if err := afero.WriteFile(fs, p, content, 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	return nil
}

// Manifest returns the hashed file list for the tree, sorted by path.
func (g GameTree) Manifest() []launchserver.HashedFile {
	out := make([]launchserver.HashedFile, 0, len(g))
	for name, content := range g {
		out = append(out, launchserver.HashedFile{
			Path: name,
			Size: int64(len(content)),
			SHA1: SHA1Hex(content),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func SHA1Hex(b []byte) string {
	sum := sha1.Sum(b) //nolint:gosec // manifest format uses sha1
	return hex.EncodeToString(sum[:])
}
