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

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/config"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/service"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/ui/systray"
	"github.com/rs/zerolog/log"
)

type RunOptions struct {
	// Icon is the tray icon. No icon means no tray.
	Icon   []byte
	Daemon bool
}

// RunApp starts the launcher and blocks until it quits: by signal, from
// the tray, or when the window closes. The tray, when there is one, runs
// on the calling goroutine, which must be the main one.
func RunApp(ctx context.Context, cfg *config.Instance, opts RunOptions) (returnErr error) {
	defer func() {
		if r := recover(); r != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Panic: %v\n", r)
			log.Error().Msgf("panic recovered: %v", r)
			returnErr = fmt.Errorf("panic: %v", r)
		}
	}()

	ctx, stopSignals := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	quit := make(chan struct{})
	var quitOnce sync.Once
	quitFn := func() { quitOnce.Do(func() { close(quit) }) }

	svcOpts := service.Options{
		Config: cfg,
		Daemon: opts.Daemon,
		Quit:   quitFn,
	}
	var tray *systray.Tray
	if len(opts.Icon) > 0 {
		tray = systray.New(config.AppTitle, opts.Icon)
		svcOpts.Tray = tray
	}

	_, stopSvc, err := service.Start(ctx, svcOpts)
	if err != nil {
		log.Error().Err(err).Msg("error starting launcher")
		return fmt.Errorf("error starting launcher: %w", err)
	}
	defer func() {
		if err := stopSvc(); err != nil {
			log.Error().Err(err).Msg("error stopping launcher")
		}
	}()

	wait := func() {
		select {
		case <-ctx.Done():
			log.Info().Msg("signal received, shutting down")
		case <-quit:
		}
	}

	if tray == nil {
		wait()
		return nil
	}

	go func() {
		wait()
		systray.Quit()
	}()
	tray.Run(quitFn)
	return nil
}
