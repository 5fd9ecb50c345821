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

// Package servers is the server directory: the servers a player can pick,
// which one is selected, and live player counts.
package servers

import (
	"context"
	"errors"
	"fmt"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/config"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/helpers/syncutil"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/launchserver"
	"github.com/rs/zerolog/log"
)

const (
	SourceLaunchServer = "launchServer"
	SourceConfig       = "config"
	SourceLAN          = "lan"

	KindNetwork       = "network"
	KindUnknownServer = "invalid_params"
)

var ErrUnknownServer = errors.New("unknown server")

// ErrNoneSelected is returned by callers that need a selected server.
var ErrNoneSelected = &Error{kind: KindUnknownServer, Err: errors.New("no server selected")}

// Error is a directory failure with a machine-readable kind.
type Error struct {
	Err  error
	kind string
}

func (e *Error) Error() string { return e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
func (e *Error) Kind() string  { return e.kind }

func unknownServer(title string) *Error {
	return &Error{kind: KindUnknownServer, Err: fmt.Errorf("%w: %q", ErrUnknownServer, title)}
}

// Descriptor is the static description of a server. Liveness is a
// separate Status.
type Descriptor struct {
	Title       string `json:"title"`
	Host        string `json:"host"`
	ProfileUUID string `json:"profileUuid"`
	Source      string `json:"source"`
	Port        int    `json:"port"`
}

// Status is a transient player count. The zero value means unknown or
// unreachable.
type Status struct {
	Online int `json:"online"`
	Max    int `json:"max"`
}

type API interface {
	Servers(ctx context.Context) ([]launchserver.Server, error)
	Profile(ctx context.Context, profileUUID string) (launchserver.Profile, error)
}

// PingFunc pings one server. The context carries the timeout.
type PingFunc func(ctx context.Context, host string, port int) (Status, error)

type Service struct {
	api        API
	cfg        *config.Instance
	ping       PingFunc
	discovered map[string]Descriptor
	selected   *Descriptor
	known      []Descriptor
	mu         syncutil.RWMutex
}

func NewService(cfg *config.Instance, api API) *Service {
	return &Service{
		api:        api,
		cfg:        cfg,
		ping:       Ping,
		discovered: make(map[string]Descriptor),
	}
}

// SetPingFunc replaces the ping, for tests.
func (s *Service) SetPingFunc(fn PingFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ping = fn
}

// List returns the launch server's servers, then configured extras, then
// LAN servers. A title already listed is not repeated.
func (s *Service) List(ctx context.Context) ([]Descriptor, error) {
	remote, err := s.api.Servers(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to fetch server list")
		return nil, &Error{kind: KindNetwork, Err: fmt.Errorf("failed to fetch server list: %w", err)}
	}

	seen := make(map[string]bool)
	out := make([]Descriptor, 0, len(remote))
	add := func(d Descriptor) {
		if d.Title == "" || seen[d.Title] {
			return
		}
		seen[d.Title] = true
		out = append(out, d)
	}

	for _, r := range remote {
		add(Descriptor{
			Title:       r.Title,
			Host:        r.Host,
			Port:        r.Port,
			ProfileUUID: r.ProfileUUID,
			Source:      SourceLaunchServer,
		})
	}
	for _, e := range s.cfg.ExtraServers() {
		add(Descriptor{
			Title:       e.Title,
			Host:        e.Host,
			Port:        e.Port,
			ProfileUUID: e.ProfileUUID,
			Source:      SourceConfig,
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range sortedDiscovered(s.discovered) {
		add(d)
	}
	s.known = out

	return append([]Descriptor(nil), out...), nil
}

func (s *Service) find(title string) (Descriptor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.known {
		if d.Title == title {
			return d, true
		}
	}
	return Descriptor{}, false
}

// lookup finds a server by title, fetching the list again when the title
// is not among the last one, as after a UI reload.
func (s *Service) lookup(ctx context.Context, title string) (Descriptor, error) {
	if d, ok := s.find(title); ok {
		return d, nil
	}
	if _, err := s.List(ctx); err != nil {
		return Descriptor{}, err
	}
	if d, ok := s.find(title); ok {
		return d, nil
	}
	return Descriptor{}, unknownServer(title)
}

// Select marks a listed server as the launch target.
func (s *Service) Select(ctx context.Context, title string) (Descriptor, error) {
	d, err := s.lookup(ctx, title)
	if err != nil {
		return Descriptor{}, err
	}

	s.mu.Lock()
	s.selected = &d
	s.mu.Unlock()

	log.Info().Str("server", title).Msg("selected server")
	return d, nil
}

func (s *Service) Selected() (Descriptor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == nil {
		return Descriptor{}, false
	}
	return *s.selected, true
}

// Ping returns the player count of a listed server. Ping failures and
// timeouts give the zero Status, never an error.
func (s *Service) Ping(ctx context.Context, title string) (Status, error) {
	d, err := s.lookup(ctx, title)
	if err != nil {
		return Status{}, err
	}

	s.mu.RLock()
	ping := s.ping
	s.mu.RUnlock()

	pingCtx, cancel := context.WithTimeout(ctx, s.cfg.PingTimeout())
	defer cancel()

	type result struct {
		err    error
		status Status
	}
	done := make(chan result, 1)
	go func() {
		st, err := ping(pingCtx, d.Host, d.Port)
		done <- result{status: st, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			log.Debug().Err(r.err).Str("server", title).Msg("ping failed")
			return Status{}, nil
		}
		return r.status, nil
	case <-pingCtx.Done():
		log.Debug().Str("server", title).Msg("ping timed out")
		return Status{}, nil
	}
}

// Profile fetches the launch profile of a server.
func (s *Service) Profile(ctx context.Context, d Descriptor) (launchserver.Profile, error) {
	p, err := s.api.Profile(ctx, d.ProfileUUID)
	if err != nil {
		if launchserver.RemoteCode(err) == launchserver.CodeNotFound {
			return launchserver.Profile{}, &Error{kind: KindUnknownServer, Err: fmt.Errorf("no profile for %q: %w", d.Title, err)}
		}
		return launchserver.Profile{}, &Error{kind: KindNetwork, Err: fmt.Errorf("failed to fetch profile: %w", err)}
	}
	return p, nil
}
