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

// Package service composes the launcher: it builds every component in
// dependency order, registers the Bridge handlers, starts the Bridge and
// then brings up the launch-server connection, the window and presence.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/api"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/config"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/helpers"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/launchserver"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/service/auth"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/service/launch"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/service/presence"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/service/servers"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/ui/window"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/updater"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const (
	ComponentBridge       = "bridge"
	ComponentLaunchServer = "launchserver"
	ComponentPresence     = "presence"
	ComponentAuth         = "auth"
	ComponentServers      = "servers"
	ComponentLaunch       = "launch"
	ComponentWindow       = "window"
)

// LaunchServer is the launch-server connection every remote-facing
// component shares. *launchserver.Client implements it.
type LaunchServer interface {
	launch.Source
	auth.API
	servers.API
	Connect(ctx context.Context) error
	Close() error
}

type Options struct {
	Config *config.Instance
	// LaunchServer defaults to a client for the configured api.url.
	LaunchServer LaunchServer
	Spawner      launch.Spawner
	Fs           afero.Fs
	Tray         window.Tray
	Opener       window.Opener
	Updates      window.UpdateChecker
	StartShell   window.ShellStarter
	PickDir      func(title, current string) (string, error)
	// Quit is called when the window host decides the process should end.
	Quit     func()
	Presence []presence.Option
	// Daemon starts without opening a window. The tray still works.
	Daemon bool
}

// Services are the built components of one launcher process.
type Services struct {
	ctx          context.Context
	Config       *config.Instance
	LaunchServer LaunchServer
	Bridge       *api.Server
	Auth         *auth.Service
	Servers      *servers.Service
	Launch       *launch.Orchestrator
	Window       *window.Host
	Presence     *presence.Reporter
	cancel       context.CancelFunc
	opts         Options
	stops        []stopFunc
}

type stopFunc struct {
	fn   func() error
	name string
}

func (s *Services) onStop(name string, fn func() error) {
	s.stops = append(s.stops, stopFunc{name: name, fn: fn})
}

// shutdown runs the stop hooks in reverse build order.
func (s *Services) shutdown() error {
	var errs []error
	for i := len(s.stops) - 1; i >= 0; i-- {
		st := s.stops[i]
		log.Debug().Str("component", st.name).Msg("stopping component")
		if err := st.fn(); err != nil {
			log.Warn().Err(err).Str("component", st.name).Msg("error stopping component")
			errs = append(errs, fmt.Errorf("%s: %w", st.name, err))
		}
	}
	s.stops = nil
	s.cancel()
	return errors.Join(errs...)
}

// Components is the launcher's service graph.
func Components() []Component {
	return []Component{
		{
			Name: ComponentBridge,
			Build: func(_ context.Context, s *Services) error {
				s.Bridge = api.NewServer(s.Config)
				s.onStop(ComponentBridge, func() error {
					if err := s.Bridge.Stop(); err != nil && !errors.Is(err, api.ErrNotStarted) {
						return err //nolint:wrapcheck // already wrapped by the Bridge
					}
					return nil
				})
				return nil
			},
			InitHandlers: func(s *Services) error {
				return s.Bridge.Register(api.Services{TotalMemory: helpers.TotalMemoryMB}) //nolint:wrapcheck // sentinel
			},
		},
		{
			Name: ComponentLaunchServer,
			Build: func(_ context.Context, s *Services) error {
				s.LaunchServer = s.opts.LaunchServer
				if s.LaunchServer == nil {
					s.LaunchServer = launchserver.NewClient(s.Config)
				}
				s.onStop(ComponentLaunchServer, s.LaunchServer.Close)
				return nil
			},
		},
		{
			Name: ComponentPresence,
			Deps: []string{ComponentBridge},
			Build: func(_ context.Context, s *Services) error {
				s.Presence = presence.NewReporter(s.Config, s.opts.Presence...)
				s.onStop(ComponentPresence, func() error {
					s.Presence.Stop()
					return nil
				})
				return nil
			},
			InitHandlers: func(s *Services) error {
				return s.Bridge.Register(api.Services{Presence: s.Presence}) //nolint:wrapcheck // sentinel
			},
		},
		{
			Name: ComponentAuth,
			Deps: []string{ComponentBridge, ComponentLaunchServer},
			Build: func(_ context.Context, s *Services) error {
				s.Auth = auth.NewService(s.LaunchServer, s.Config)
				return nil
			},
			InitHandlers: func(s *Services) error {
				return s.Bridge.Register(api.Services{Auth: s.Auth}) //nolint:wrapcheck // sentinel
			},
		},
		{
			Name: ComponentServers,
			Deps: []string{ComponentBridge, ComponentLaunchServer},
			Build: func(ctx context.Context, s *Services) error {
				s.Servers = servers.NewService(s.Config, s.LaunchServer)
				if err := s.Servers.StartDiscovery(ctx); err != nil {
					log.Warn().Err(err).Msg("LAN server discovery failed to start, continuing without it")
				}
				return nil
			},
			InitHandlers: func(s *Services) error {
				return s.Bridge.Register(api.Services{Servers: s.Servers}) //nolint:wrapcheck // sentinel
			},
		},
		{
			Name: ComponentLaunch,
			Deps: []string{ComponentBridge, ComponentLaunchServer},
			Build: func(_ context.Context, s *Services) error {
				s.Launch = launch.NewOrchestrator(launch.Options{
					Source:      s.LaunchServer,
					Spawner:     s.opts.Spawner,
					Fs:          s.opts.Fs,
					Concurrency: s.Config.DownloadConcurrency(),
					StopTimeout: s.Config.StopTimeout(),
				})
				s.onStop(ComponentLaunch, s.Launch.Close)
				return nil
			},
			InitHandlers: func(s *Services) error {
				return s.Bridge.Register(api.Services{Launcher: s.Launch}) //nolint:wrapcheck // sentinel
			},
		},
		{
			Name: ComponentWindow,
			Deps: []string{ComponentBridge, ComponentLaunch},
			Build: func(_ context.Context, s *Services) error {
				updates := s.opts.Updates
				if updates == nil {
					updates = updater.NewChecker(s.Config, nil)
				}
				s.Window = window.NewHost(window.Options{
					Config:     s.Config,
					Sender:     s.Bridge,
					Launch:     s.Launch,
					Opener:     s.opts.Opener,
					Updates:    updates,
					Tray:       s.opts.Tray,
					Fs:         s.opts.Fs,
					URL:        s.Bridge.URL,
					StartShell: s.opts.StartShell,
					PickDir:    s.opts.PickDir,
					Quit:       s.opts.Quit,
				})
				s.Bridge.OnSessionsChanged(s.Window.SessionsChanged)
				s.onStop(ComponentWindow, func() error {
					if s.Window.HasWindow() {
						s.Window.Close()
					}
					return nil
				})
				return nil
			},
			InitHandlers: func(s *Services) error {
				return s.Bridge.Register(api.Services{Window: s.Window}) //nolint:wrapcheck // sentinel
			},
		},
	}
}

// Start brings the launcher up. On success the returned stop function
// shuts every component down in reverse order. On failure whatever was
// already built is stopped before the error is returned.
func Start(ctx context.Context, opts Options) (svc *Services, stop func() error, err error) {
	log.Info().Msgf("version: %s", config.AppVersion)

	order, err := Order(Components())
	if err != nil {
		return nil, nil, err
	}

	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	svcCtx, cancel := context.WithCancel(ctx)
	s := &Services{
		ctx:    svcCtx,
		cancel: cancel,
		opts:   opts,
		Config: opts.Config,
	}
	defer func() {
		if err != nil {
			_ = s.shutdown()
		}
	}()

	for _, c := range order {
		log.Debug().Str("component", c.Name).Msg("building component")
		if err := c.Build(svcCtx, s); err != nil {
			return nil, nil, fmt.Errorf("failed to build %s: %w", c.Name, err)
		}
	}

	for _, c := range order {
		if c.InitHandlers == nil {
			continue
		}
		if err := c.InitHandlers(s); err != nil {
			return nil, nil, fmt.Errorf("failed to register %s handlers: %w", c.Name, err)
		}
	}

	log.Info().Msg("starting bridge")
	if err := s.Bridge.Start(); err != nil {
		return nil, nil, fmt.Errorf("failed to start bridge: %w", err)
	}

	log.Info().Str("url", s.Config.APIURL()).Msg("connecting to launch server")
	if err := s.LaunchServer.Connect(svcCtx); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to launch server: %w", err)
	}

	s.restoreSession(svcCtx)

	if err := s.Config.Watch(svcCtx, func() {
		helpers.SetLogLevel(s.Config.DebugLogging())
	}); err != nil {
		log.Warn().Err(err).Msg("config file changes will not be picked up")
	}

	if opts.Daemon {
		log.Info().Msg("daemon mode, not opening a window")
		s.Window.SetupTray()
	} else if err := s.Window.CreateWindow(svcCtx); err != nil {
		return nil, nil, err //nolint:wrapcheck // already wrapped by the host
	}

	log.Info().Msg("starting presence")
	if err := s.Presence.Start(); err != nil {
		log.Error().Err(err).Msg("presence failed to start, continuing without it")
	}

	log.Info().Msg("launcher started")
	return s, s.shutdown, nil
}

// restoreSession logs in with the remembered token. An expired token is
// forgotten by the auth service; any failure leaves the user logged out.
func (s *Services) restoreSession(ctx context.Context) {
	sess, attempted, err := s.Auth.Restore(ctx)
	switch {
	case !attempted:
		log.Debug().Msg("no remembered session")
	case err != nil:
		log.Warn().Err(err).Msg("failed to restore session")
	default:
		log.Info().Str("username", sess.Username).Msg("session restored")
	}
}

// Context is cancelled when the services stop.
func (s *Services) Context() context.Context {
	return s.ctx
}
