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

// Package window is the window host: it owns the one UI window of the
// process, the tray, and what happens when the window goes away.
package window

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/api/notifications"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/config"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/helpers"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/helpers/syncutil"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/service/launch"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/ui/systray"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/updater"
	"github.com/jonboulle/clockwork"
	"github.com/nixinwang/dialog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// DefaultCloseGrace is how long a browser UI may be disconnected before
// its tab counts as closed.
const DefaultCloseGrace = 5 * time.Second

var (
	ErrPickCancelled  = errors.New("directory selection cancelled")
	ErrLaunchActive   = errors.New("cannot move the game directory while a game is running")
	ErrPathNotAllowed = errors.New("path is outside the launcher directories")
)

// Opener hands URLs and folders to the desktop. *helpers.Opener
// implements it.
type Opener interface {
	OpenURL(ctx context.Context, url string) error
	OpenDir(ctx context.Context, path string) error
}

type UpdateChecker interface {
	Check(ctx context.Context) (updater.Release, bool, error)
}

// LaunchSlot is the launch orchestrator as seen by the window: whether a
// game occupies the slot, and holding the slot while the game directory
// moves.
type LaunchSlot interface {
	Status() launch.Status
	Reserve() (release func(), err error)
}

type Tray interface {
	Setup(actions systray.Actions)
}

type Options struct {
	Config  *config.Instance
	Sender  notifications.Sender
	Launch  LaunchSlot
	Opener  Opener
	Updates UpdateChecker
	Tray    Tray
	Fs      afero.Fs
	Clock   clockwork.Clock
	// URL is the address the UI loads. It is read when a window is
	// created, after the Bridge has started.
	URL func() string
	// StartShell opens the UI. The default runs window.command when it
	// is set and opens the default browser otherwise.
	StartShell ShellStarter
	// PickDir shows a directory picker. The default is the native dialog.
	PickDir func(title, current string) (string, error)
	// Quit ends the process. It is called when the window goes away on
	// platforms without a persistent tray.
	Quit       func()
	GOOS       string
	CloseGrace time.Duration
}

// Host owns at most one window.
type Host struct {
	shell         Shell
	pendingUpdate *updater.Release
	opts          Options
	title         string
	trayOnce      sync.Once
	mu            syncutil.Mutex
	editMu        syncutil.Mutex
	quitPending   bool
	quitting      bool
}

func NewHost(opts Options) *Host {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.GOOS == "" {
		opts.GOOS = runtime.GOOS
	}
	if opts.CloseGrace <= 0 {
		opts.CloseGrace = DefaultCloseGrace
	}
	if opts.Opener == nil {
		opts.Opener = helpers.NewOpener()
	}
	if opts.PickDir == nil {
		opts.PickDir = nativePickDir
	}
	if opts.Quit == nil {
		opts.Quit = func() {}
	}

	h := &Host{opts: opts, title: opts.Config.WindowTitle()}
	if h.opts.StartShell == nil {
		h.opts.StartShell = h.defaultShell
	}
	return h
}

func nativePickDir(title, _ string) (string, error) {
	dir, err := dialog.Directory().Title(title).Browse()
	if errors.Is(err, dialog.ErrCancelled) {
		return "", ErrPickCancelled
	}
	if err != nil {
		return "", fmt.Errorf("failed to show directory picker: %w", err)
	}
	return dir, nil
}

func (h *Host) defaultShell(ctx context.Context, url string) (Shell, error) {
	if argv := h.opts.Config.WindowCommand(); len(argv) > 0 {
		return startProcessShell(argv, url)
	}
	if err := h.opts.Opener.OpenURL(ctx, url); err != nil {
		return nil, err //nolint:wrapcheck // opener errors are already wrapped
	}
	return newBrowserShell(h.opts.Clock, h.opts.CloseGrace), nil
}

// CreateWindow opens the UI. The tray is set up on the first call only.
// Creating while a window exists does nothing.
func (h *Host) CreateWindow(ctx context.Context) error {
	h.SetupTray()

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.shell != nil {
		log.Debug().Msg("window already open")
		return nil
	}

	url := h.opts.URL()
	shell, err := h.opts.StartShell(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}
	h.shell = shell
	h.quitPending = false
	go h.watch(shell)
	go h.checkUpdates(context.WithoutCancel(ctx))

	log.Info().Str("url", url).Msg("window created")
	return nil
}

// SetupTray installs the tray menu. Only the first call has an effect.
func (h *Host) SetupTray() {
	h.trayOnce.Do(h.setupTray)
}

func (h *Host) setupTray() {
	if h.opts.Tray == nil {
		return
	}
	h.opts.Tray.Setup(systray.Actions{
		Show: func() {
			h.Show()
		},
		OpenDataDir: func() {
			if err := h.opts.Opener.OpenDir(context.Background(), helpers.DataDir()); err != nil {
				log.Error().Err(err).Msg("failed to open data folder")
			}
		},
		Quit: h.quit,
	})
}

func (h *Host) checkUpdates(ctx context.Context) {
	if h.opts.Updates == nil {
		return
	}
	rel, ok, err := h.opts.Updates.Check(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("update check failed")
		return
	}
	if !ok {
		return
	}
	log.Info().Str("version", rel.Version).Msg("update available")

	h.mu.Lock()
	h.pendingUpdate = &rel
	h.mu.Unlock()
	h.flushUpdate()
}

// flushUpdate sends a found update once a UI is connected to see it.
func (h *Host) flushUpdate() {
	h.mu.Lock()
	rel := h.pendingUpdate
	ready := h.shell != nil && h.connected()
	if ready {
		h.pendingUpdate = nil
	}
	h.mu.Unlock()

	if ready && rel != nil {
		notifications.UpdateAvailable(h.opts.Sender, *rel)
	}
}

type sessionCounter interface {
	Sessions() int
}

func (h *Host) connected() bool {
	if sc, ok := h.opts.Sender.(sessionCounter); ok {
		return sc.Sessions() > 0
	}
	return true
}

// SessionsChanged is told the number of connected UI sessions.
func (h *Host) SessionsChanged(count int) {
	h.mu.Lock()
	shell := h.shell
	h.mu.Unlock()

	if st, ok := shell.(sessionTracker); ok {
		st.sessionsChanged(count)
	}
	if count > 0 {
		h.flushUpdate()
	}
}

// watch waits for the window to go away by any means and applies the
// window-all-closed rule.
func (h *Host) watch(shell Shell) {
	<-shell.Done()

	h.mu.Lock()
	if h.shell != shell {
		h.mu.Unlock()
		return
	}
	h.shell = nil
	h.mu.Unlock()

	log.Info().Msg("window closed")
	h.allClosed()
}

// allClosed quits the process unless the tray keeps it alive. A running
// game defers the quit until its launch ends.
func (h *Host) allClosed() {
	if h.opts.GOOS == "darwin" {
		log.Debug().Msg("window closed, tray keeps running")
		return
	}

	h.mu.Lock()
	if h.opts.Launch != nil && h.opts.Launch.Status().Active() {
		h.quitPending = true
		h.mu.Unlock()
		log.Info().Msg("game is running, quit deferred until it ends")
		return
	}
	h.mu.Unlock()
	h.quit()
}

func (h *Host) launchEnded() {
	h.mu.Lock()
	pending := h.quitPending && h.shell == nil
	h.quitPending = false
	h.mu.Unlock()
	if pending {
		log.Info().Msg("launch ended, running deferred quit")
		h.quit()
	}
}

func (h *Host) quit() {
	h.mu.Lock()
	if h.quitting {
		h.mu.Unlock()
		return
	}
	h.quitting = true
	shell := h.shell
	h.mu.Unlock()

	if shell != nil {
		if err := shell.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close window on quit")
		}
	}
	log.Info().Msg("quitting")
	h.opts.Quit()
}

// HasWindow reports whether a window is open.
func (h *Host) HasWindow() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.shell != nil
}

// SendEvent pushes an event to the UI. It is dropped when no window is
// open.
func (h *Host) SendEvent(n models.Notification) {
	if !h.HasWindow() {
		log.Debug().Str("event", string(n.Method)).Msg("no window, dropping event")
		return
	}
	h.opts.Sender.Notify(n)
}

// Notify makes the host a notifications.Sender that drops events while
// there is no window.
func (h *Host) Notify(n models.Notification) {
	h.SendEvent(n)
}

// Show raises the window, creating it if needed.
func (h *Host) Show() {
	if !h.HasWindow() {
		if err := h.CreateWindow(context.Background()); err != nil {
			log.Error().Err(err).Msg("failed to show window")
		}
		return
	}
	notifications.WindowControl(h, models.WindowActionShow, "")
}

func (h *Host) Hide() {
	notifications.WindowControl(h, models.WindowActionHide, "")
}

func (h *Host) SetTitle(title string) {
	h.mu.Lock()
	h.title = title
	h.mu.Unlock()
	notifications.WindowControl(h, models.WindowActionSetTitle, title)
}

func (h *Host) Title() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.title
}

// Close closes the window. A running game is left running.
func (h *Host) Close() {
	h.mu.Lock()
	shell := h.shell
	h.mu.Unlock()
	if shell == nil {
		return
	}

	notifications.WindowControl(h, models.WindowActionClose, "")
	if err := shell.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close window")
	}
}

// Forward pushes a launch stream to the UI until its terminal event. It
// returns at once; the stream is drained in the background.
func (h *Host) Forward(stream *launch.Stream) {
	go func() {
		for ev := range stream.Events() {
			h.forwardEvent(stream.ID, ev)
			if _, ok := ev.(launch.Terminal); ok {
				h.launchEnded()
			}
		}
	}()
}

// forwardEvent sends one launch event, keeping the stream draining if the
// sender panics.
func (h *Host) forwardEvent(launchID string, ev launch.Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("launchId", launchID).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("recovered from panic forwarding launch event")
		}
	}()
	notifications.LaunchEvent(h, launchID, ev)
}

// EditDir asks for a new game directory and moves the game files there.
// The setting changes only once the move succeeded. Choosing the current
// directory or cancelling does nothing. Calls run one at a time and no
// launch can start while the files move.
func (h *Host) EditDir(_ context.Context) error {
	h.editMu.Lock()
	defer h.editMu.Unlock()

	current := h.opts.Config.GameDir()
	picked, err := h.opts.PickDir("Select game directory", current)
	if errors.Is(err, ErrPickCancelled) {
		log.Debug().Msg("game directory selection cancelled")
		return nil
	} else if err != nil {
		return err
	}

	picked = filepath.Clean(picked)
	if helpers.SamePath(picked, current) {
		log.Debug().Str("dir", picked).Msg("game directory unchanged")
		return nil
	}
	if h.opts.Launch != nil {
		release, err := h.opts.Launch.Reserve()
		if errors.Is(err, launch.ErrLaunchInProgress) {
			return ErrLaunchActive
		} else if err != nil {
			return fmt.Errorf("failed to reserve game directory: %w", err)
		}
		defer release()
	}

	log.Info().Str("from", current).Str("to", picked).Msg("moving game directory")
	if err := h.opts.Config.MigrateDir(h.opts.Fs, picked); err != nil {
		return fmt.Errorf("failed to move game directory: %w", err)
	}
	return nil
}

func (h *Host) OpenExternal(ctx context.Context, url string) error {
	return h.opts.Opener.OpenURL(ctx, url) //nolint:wrapcheck // opener errors are already wrapped
}

// OpenDir opens a folder inside the game or data directory.
func (h *Host) OpenDir(ctx context.Context, path string) error {
	path = filepath.Clean(path)
	allowed := false
	for _, root := range []string{h.opts.Config.GameDir(), helpers.DataDir()} {
		if root != "" && helpers.PathHasPrefix(path, root) {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%w: %s", ErrPathNotAllowed, path)
	}
	return h.opts.Opener.OpenDir(ctx, path) //nolint:wrapcheck // opener errors are already wrapped
}
