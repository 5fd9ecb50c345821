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
	"path/filepath"
	"strings"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/launchserver"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// Source is where client manifests and files come from. It is
// implemented by *launchserver.Client.
type Source interface {
	Manifest(ctx context.Context, dir string) ([]launchserver.HashedFile, error)
	OpenFile(ctx context.Context, dir, file string) (io.ReadCloser, int64, error)
}

const partSuffix = ".part"

// fetch downloads one item next to its destination and renames it into
// place once size and hash match.
func fetch(ctx context.Context, fsys afero.Fs, src Source, clientDir, root string, it Item, ip *itemProgress) error {
	dst, err := safeJoin(root, it.File.Path)
	if err != nil {
		return err
	}

	body, _, err := src.OpenFile(ctx, clientDir, it.File.Path)
	if err != nil {
		return fmt.Errorf("failed to open remote file: %w", err)
	}
	defer func() { _ = body.Close() }()

	if err := fsys.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp := dst + partSuffix
	f, err := fsys.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	h := sha1.New() //nolint:gosec // manifest format uses sha1
	n, err := io.Copy(io.MultiWriter(f, h, ip), body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = ctx.Err()
	}
	if err == nil && it.File.KnownSize() && n != it.File.Size {
		err = fmt.Errorf("%w: got %d bytes, want %d", ErrSizeMismatch, n, it.File.Size)
	}
	if err == nil && it.File.SHA1 != "" && !strings.EqualFold(hex.EncodeToString(h.Sum(nil)), it.File.SHA1) {
		err = ErrHashMismatch
	}
	if err != nil {
		_ = fsys.Remove(tmp)
		return err
	}

	if err := fsys.Rename(tmp, dst); err != nil {
		_ = fsys.Remove(tmp)
		return fmt.Errorf("failed to move file into place: %w", err)
	}

	ip.t.done(ip)
	return nil
}

// download fetches every planned item with at most concurrency fetches in
// flight. The first mandatory failure cancels the rest. A failed optional
// file is skipped and counted as done so the totals still add up.
func download(
	ctx context.Context,
	fsys afero.Fs,
	src Source,
	clientDir string,
	plan Plan,
	concurrency int,
	emit func(Event),
) error {
	t := newTracker(plan, emit)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))

	for _, it := range plan.Fetches() {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			ip := t.start(it)
			err := fetch(gctx, fsys, src, clientDir, plan.Root, it, ip)
			if err == nil {
				return nil
			}
			if it.File.Optional && gctx.Err() == nil {
				log.Warn().Err(err).Str("item", it.File.Path).Msg("skipping optional file")
				t.done(ip)
				return nil
			}
			kind := KindDownload
			if errors.Is(err, ErrUnsafePath) {
				kind = KindVerification
			}
			return &Error{kind: kind, Item: it.File.Path, Err: err}
		})
	}

	if err := g.Wait(); err != nil {
		return err //nolint:wrapcheck // already a *Error
	}
	return ctx.Err() //nolint:wrapcheck // cancellation is checked by the caller
}
