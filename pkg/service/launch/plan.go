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

package launch

import (
	"context"
	"crypto/sha1" //nolint:gosec // manifest format uses sha1
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/launchserver"
	"github.com/spf13/afero"
)

type Action string

const (
	ActionPresent Action = "present"
	ActionFetch   Action = "fetch"
)

// Item is one manifest file and what has to happen to it.
type Item struct {
	Action Action
	File   launchserver.HashedFile
}

// Plan is a verified manifest rooted at the client directory.
type Plan struct {
	Root  string
	Items []Item
}

func (p Plan) Fetches() []Item {
	var out []Item
	for _, it := range p.Items {
		if it.Action == ActionFetch {
			out = append(out, it)
		}
	}
	return out
}

// Unit is UnitSize when every file to fetch has a known size.
func (p Plan) Unit() string {
	for _, it := range p.Fetches() {
		if !it.File.KnownSize() {
			return UnitCount
		}
	}
	return UnitSize
}

// FetchTotal is the amount of work in Unit.
func (p Plan) FetchTotal() int64 {
	fetches := p.Fetches()
	if p.Unit() == UnitCount {
		return int64(len(fetches))
	}
	var total int64
	for _, it := range fetches {
		total += it.File.Size
	}
	return total
}

// safeJoin joins a slash-separated manifest path onto root and refuses
// anything that would land outside it.
func safeJoin(root, rel string) (string, error) {
	if rel == "" || strings.HasPrefix(rel, "/") || filepath.IsAbs(filepath.FromSlash(rel)) ||
		filepath.VolumeName(filepath.FromSlash(rel)) != "" {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, rel)
	}
	p := filepath.Join(root, filepath.FromSlash(rel))
	r, err := filepath.Rel(root, p)
	if err != nil || r == "." || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, rel)
	}
	return p, nil
}

func hashFile(fsys afero.Fs, path string) (string, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	h := sha1.New() //nolint:gosec // manifest format uses sha1
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// checkFile compares one local file to its manifest entry. A nil error
// means the file matches.
func checkFile(fsys afero.Fs, path string, f launchserver.HashedFile) error {
	st, err := fsys.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return ErrMissingFile
	}
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if st.IsDir() {
		return ErrMissingFile
	}
	if f.KnownSize() && st.Size() != f.Size {
		return fmt.Errorf("%w: have %d bytes, want %d", ErrSizeMismatch, st.Size(), f.Size)
	}
	if f.SHA1 == "" {
		return nil
	}
	sum, err := hashFile(fsys, path)
	if err != nil {
		return err
	}
	if !strings.EqualFold(sum, f.SHA1) {
		return ErrHashMismatch
	}
	return nil
}

// Verify compares the manifest to the files under root. Files that are
// missing or differ are planned for fetching.
func Verify(ctx context.Context, fsys afero.Fs, root string, files []launchserver.HashedFile) (Plan, error) {
	plan := Plan{Root: root, Items: make([]Item, 0, len(files))}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return Plan{}, err //nolint:wrapcheck // cancellation is checked by the caller
		}

		path, err := safeJoin(root, f.Path)
		if err != nil {
			return Plan{}, &Error{kind: KindVerification, Item: f.Path, Err: err}
		}

		action := ActionPresent
		switch err := checkFile(fsys, path, f); {
		case err == nil:
		case errors.Is(err, ErrMissingFile), errors.Is(err, ErrSizeMismatch), errors.Is(err, ErrHashMismatch):
			action = ActionFetch
		default:
			return Plan{}, &Error{kind: KindVerification, Item: f.Path, Err: err}
		}
		plan.Items = append(plan.Items, Item{File: f, Action: action})
	}
	return plan, nil
}

// Recheck verifies every mandatory file of the plan on disk again, after
// downloads and right before the game starts.
func Recheck(fsys afero.Fs, plan Plan) error {
	for _, it := range plan.Items {
		if it.File.Optional {
			continue
		}
		path, err := safeJoin(plan.Root, it.File.Path)
		if err != nil {
			return &Error{kind: KindVerification, Item: it.File.Path, Err: err}
		}
		if err := checkFile(fsys, path, it.File); err != nil {
			return &Error{kind: KindVerification, Item: it.File.Path, Err: err}
		}
	}
	return nil
}
