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

// Package command wraps os/exec so helpers that shell out can be tested
// without running real programs.
package command

import (
	"context"
	"os/exec"
)

// StartOptions configures command startup behavior.
type StartOptions struct {
	// HideWindow suppresses the console window on Windows.
	HideWindow bool
}

// Executor starts external programs.
type Executor interface {
	// Run executes a command and waits for it to complete.
	Run(ctx context.Context, name string, args ...string) error

	// Start starts a command without waiting for it. The child is reaped in
	// the background.
	Start(ctx context.Context, name string, args ...string) error

	// StartWithOptions is Start with platform-specific options.
	StartWithOptions(ctx context.Context, opts StartOptions, name string, args ...string) error
}

// RealExecutor runs commands with os/exec.
type RealExecutor struct{}

//nolint:wrapcheck // exec errors already name the command
func (*RealExecutor) Run(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

func (e *RealExecutor) Start(ctx context.Context, name string, args ...string) error {
	return e.StartWithOptions(ctx, StartOptions{}, name, args...)
}

//nolint:wrapcheck // exec errors already name the command
func (*RealExecutor) StartWithOptions(
	ctx context.Context,
	opts StartOptions,
	name string,
	args ...string,
) error {
	cmd := exec.CommandContext(ctx, name, args...)
	applyStartOptions(cmd, opts)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// Detached builds a command that is not tied to any context and runs in
// its own process group, so closing the launcher window or cancelling a
// request never signals it. Stopping it is the caller's job.
func Detached(name string, args ...string) *exec.Cmd {
	//nolint:noctx // lifetime is owned by the caller, not a context
	cmd := exec.Command(name, args...)
	cmd.SysProcAttr = processGroupAttrs()
	return cmd
}
