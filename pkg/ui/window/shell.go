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

package window

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/helpers/command"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/helpers/proc"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Shell is a running UI: a dedicated shell process or a browser tab.
type Shell interface {
	// Done is closed once the UI is gone.
	Done() <-chan struct{}
	// Close ends the UI. The UI may already have been asked to close
	// itself over the Bridge.
	Close() error
}

// ShellStarter opens the UI on the launcher URL.
type ShellStarter func(ctx context.Context, url string) (Shell, error)

// sessionTracker is implemented by shells whose lifetime is only visible
// through their Bridge connection.
type sessionTracker interface {
	sessionsChanged(count int)
}

// processShell is a UI shell program started with the launcher URL as its
// last argument.
type processShell struct {
	cmd  *exec.Cmd
	done chan struct{}
}

func startProcessShell(argv []string, url string) (*processShell, error) {
	if len(argv) == 0 {
		return nil, errors.New("empty window command")
	}
	args := append(append([]string(nil), argv[1:]...), url)
	cmd := command.Detached(argv[0], args...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ui shell %s: %w", argv[0], err)
	}

	s := &processShell{cmd: cmd, done: make(chan struct{})}
	go func() {
		err := cmd.Wait()
		log.Info().Err(err).Int("pid", cmd.Process.Pid).Msg("ui shell exited")
		close(s.done)
	}()
	log.Info().Int("pid", cmd.Process.Pid).Str("shell", argv[0]).Msg("ui shell started")
	return s, nil
}

func (s *processShell) Done() <-chan struct{} {
	return s.done
}

func (s *processShell) Close() error {
	select {
	case <-s.done:
		return nil
	default:
	}
	if err := proc.TerminateTree(s.cmd.Process.Pid); err != nil {
		return fmt.Errorf("failed to stop ui shell: %w", err)
	}
	return nil
}

// browserShell is a browser tab. A browser can't be watched, so the tab
// counts as closed once every UI session has been gone for the grace
// period. A page reload reconnects well within it.
type browserShell struct {
	clock clockwork.Clock
	timer clockwork.Timer
	done  chan struct{}
	grace time.Duration
	mu    sync.Mutex
	once  sync.Once
	seen  bool
}

func newBrowserShell(clock clockwork.Clock, grace time.Duration) *browserShell {
	return &browserShell{clock: clock, grace: grace, done: make(chan struct{})}
}

func (s *browserShell) Done() <-chan struct{} {
	return s.done
}

func (s *browserShell) Close() error {
	s.end()
	return nil
}

func (s *browserShell) end() {
	s.once.Do(func() { close(s.done) })
}

func (s *browserShell) sessionsChanged(count int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if count > 0 {
		s.seen = true
		if s.timer != nil {
			s.timer.Stop()
			s.timer = nil
		}
		return
	}
	if !s.seen || s.timer != nil {
		return
	}
	s.timer = s.clock.AfterFunc(s.grace, func() {
		log.Info().Msg("ui tab closed")
		s.end()
	})
}
