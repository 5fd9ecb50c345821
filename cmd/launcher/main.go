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

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ZaparooProject/zaparoo-launcher/internal/telemetry"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/assets"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/cli"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/config"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		telemetry.Flush()
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()
	flags := cli.SetupFlags(flag.CommandLine)
	if exit, err := flags.Pre(os.Args[1:], os.Stdout); exit || err != nil {
		return err
	}

	var writers []io.Writer
	if *flags.Daemon {
		writers = append(writers, cli.ConsoleWriter())
	}
	cfg, err := cli.Setup(config.BaseDefaults, writers)
	if err != nil {
		return err //nolint:wrapcheck // setup errors are wrapped
	}
	defer telemetry.Close()

	if exit, err := flags.Post(ctx, cfg, os.Stdout); exit || err != nil {
		return err
	}

	err = cli.RunApp(ctx, cfg, cli.RunOptions{
		Icon:   assets.TrayIcon(),
		Daemon: *flags.Daemon,
	})
	log.Info().Msg("launcher exited")
	return err //nolint:wrapcheck // run errors are wrapped
}
