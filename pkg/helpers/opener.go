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
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/helpers/command"
)

// MaxURLLength bounds URLs handed to the platform opener.
const MaxURLLength = 8192

var ErrInvalidURL = errors.New("invalid URL")

// ValidateExternalURL accepts only http and https URLs.
func ValidateExternalURL(url string) error {
	if len(url) > MaxURLLength {
		return fmt.Errorf("%w: too long: %d bytes (max %d)", ErrInvalidURL, len(url), MaxURLLength)
	}
	lower := strings.ToLower(url)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return fmt.Errorf("%w: scheme must be http:// or https://", ErrInvalidURL)
	}
	return nil
}

// OpenerCommand is the platform program that opens URLs and folders.
func OpenerCommand(goos string) string {
	switch goos {
	case "windows":
		return "explorer"
	case "darwin":
		return "open"
	default:
		return "xdg-open"
	}
}

// Opener hands URLs and directories to the desktop environment.
type Opener struct {
	Exec command.Executor
	GOOS string
}

func NewOpener() *Opener {
	return &Opener{Exec: &command.RealExecutor{}, GOOS: runtime.GOOS}
}

func (o *Opener) OpenURL(ctx context.Context, url string) error {
	if err := ValidateExternalURL(url); err != nil {
		return err
	}
	if err := o.start(ctx, url); err != nil {
		return fmt.Errorf("failed to open url: %w", err)
	}
	return nil
}

// OpenDir opens an existing directory in the file manager.
func (o *Opener) OpenDir(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to open directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("failed to open directory: not a directory: %s", path)
	}
	if err := o.start(ctx, path); err != nil {
		return fmt.Errorf("failed to open directory: %w", err)
	}
	return nil
}

func (o *Opener) start(ctx context.Context, target string) error {
	opts := command.StartOptions{HideWindow: o.GOOS == "windows"}
	return o.Exec.StartWithOptions(ctx, opts, OpenerCommand(o.GOOS), target) //nolint:wrapcheck // wrapped by callers
}
