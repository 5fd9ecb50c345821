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

// Package cli holds the launcher's command line flags and the process
// setup shared by every build.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/ZaparooProject/zaparoo-launcher/internal/telemetry"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/api"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/api/client"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/config"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/helpers"
	"github.com/hbollon/go-edlib"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	callTimeout          = 30 * time.Second
	minSuggestSimilarity = 0.85
)

var (
	ErrUnknownChannel = errors.New("unknown channel")
	ErrRandomPort     = errors.New("bridge.listen has no fixed port, a running launcher can't be reached")
)

type Flags struct {
	Version *bool
	Daemon  *bool
	Config  *bool
	Call    *string
	set     *flag.FlagSet
}

// SetupFlags defines the launcher flags on fs.
func SetupFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		set: fs,
		Version: fs.Bool(
			"version",
			false,
			"print version and exit",
		),
		Daemon: fs.Bool(
			"daemon",
			false,
			"run without opening a window and log to stderr",
		),
		Config: fs.Bool(
			"config",
			false,
			"print the config file path and exit",
		),
		Call: fs.String(
			"call",
			"",
			"send channel:params to a running launcher and print the reply",
		),
	}
}

func (f *Flags) passed(name string) bool {
	found := false
	f.set.Visit(func(fl *flag.Flag) {
		if fl.Name == name {
			found = true
		}
	})
	return found
}

// Pre parses args and handles the flags that need no setup. It reports
// true when the process should exit.
func (f *Flags) Pre(args []string, out io.Writer) (exit bool, err error) {
	if err := f.set.Parse(args); err != nil {
		return true, fmt.Errorf("failed to parse flags: %w", err)
	}
	if *f.Version {
		_, _ = fmt.Fprintf(out, "%s v%s\n", config.AppTitle, config.AppVersion)
		return true, nil
	}
	return false, nil
}

// Post handles the flags that need the config. It reports true when the
// process should exit.
func (f *Flags) Post(ctx context.Context, cfg *config.Instance, out io.Writer) (exit bool, err error) {
	switch {
	case *f.Config:
		_, _ = fmt.Fprintln(out, cfg.Path())
		return true, nil
	case f.passed("call"):
		if *f.Call == "" {
			return true, errors.New("call flag requires a value")
		}
		return true, Call(ctx, cfg, *f.Call, out)
	}
	return false, nil
}

// splitCall splits "channel:params". Params are optional JSON.
func splitCall(arg string) (models.Channel, models.Shape, json.RawMessage, error) {
	name, raw, _ := strings.Cut(arg, ":")
	ch, shape, ok := models.LookupChannel(name)
	if !ok {
		if near := suggestChannel(name); near != "" {
			return "", 0, nil, fmt.Errorf("%w: %s (did you mean %s?)", ErrUnknownChannel, name, near)
		}
		return "", 0, nil, fmt.Errorf("%w: %s", ErrUnknownChannel, name)
	}
	if raw == "" {
		return ch, shape, nil, nil
	}
	if !json.Valid([]byte(raw)) {
		return "", 0, nil, fmt.Errorf("params for %s are not valid JSON", ch)
	}
	return ch, shape, json.RawMessage(raw), nil
}

// suggestChannel returns the catalog channel closest to a mistyped name,
// or an empty string when nothing is close.
func suggestChannel(name string) string {
	best := ""
	var bestSim float32
	for _, ch := range models.Channels() {
		sim := edlib.JaroWinklerSimilarity(strings.ToLower(name), strings.ToLower(string(ch)))
		if sim >= minSuggestSimilarity && sim > bestSim {
			best, bestSim = string(ch), sim
		}
	}
	return best
}

// BridgeURL is the websocket address of the launcher running with cfg.
func BridgeURL(cfg *config.Instance) (string, error) {
	addr := cfg.BridgeListen()
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "", fmt.Errorf("invalid bridge.listen %q: %w", addr, err)
	}
	if port == "0" {
		return "", ErrRandomPort
	}
	return "ws://" + addr + api.APIPath, nil
}

// Call sends one channel message to a running launcher. Stream replies
// are followed by every pushed event up to the launch's end.
func Call(ctx context.Context, cfg *config.Instance, arg string, out io.Writer) error {
	ch, shape, params, err := splitCall(arg)
	if err != nil {
		return err
	}
	wsURL, err := BridgeURL(cfg)
	if err != nil {
		return err
	}
	return callBridge(ctx, wsURL, ch, shape, params, out)
}

func callBridge(
	ctx context.Context,
	wsURL string,
	ch models.Channel,
	shape models.Shape,
	params json.RawMessage,
	out io.Writer,
) error {
	dialCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	c, err := client.Dial(dialCtx, wsURL, callTimeout)
	if err != nil {
		return fmt.Errorf("failed to reach launcher: %w", err)
	}
	defer func() { _ = c.Close() }()

	var p any
	if params != nil {
		p = params
	}
	if shape == models.ShapeFireAndForget {
		return c.Send(ch, p) //nolint:wrapcheck // client errors are wrapped
	}

	var result json.RawMessage
	if err := c.Call(ctx, ch, p, &result); err != nil {
		return err //nolint:wrapcheck // client errors are wrapped
	}
	_, _ = fmt.Fprintln(out, string(result))
	if shape != models.ShapeStream {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("stopped following launch: %w", ctx.Err())
		case n, ok := <-c.Events():
			if !ok {
				return errors.New("launcher closed the connection")
			}
			_, _ = fmt.Fprintf(out, "%s %s\n", n.Method, string(n.Params))
			if n.Method == string(models.EventGameEnded) {
				return nil
			}
		}
	}
}

// Setup loads the config and starts logging. Extra writers, such as
// stderr in daemon mode, receive every log line too.
//
//nolint:gocritic // config struct copied for immutability
func Setup(defaults config.Values, writers []io.Writer) (*config.Instance, error) {
	cfg, err := config.NewConfig(helpers.ConfigDir(), defaults)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	reporter, err := telemetry.Init(telemetry.Options{
		Enabled:     cfg.ErrorReporting(),
		DSN:         cfg.ErrorReportingDSN(),
		DeviceID:    cfg.DeviceID(),
		Version:     config.AppVersion,
		Environment: runtime.GOOS,
	})
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error initializing error reporting: %v\n", err)
	} else if reporter != nil {
		writers = append(writers, reporter)
	}

	if err := helpers.InitLogging(helpers.LogDir(), writers); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	helpers.SetLogLevel(cfg.DebugLogging())
	log.Info().Str("config", cfg.Path()).Msg("config loaded")

	return cfg, nil
}

// ConsoleWriter is the human-readable stderr log writer.
func ConsoleWriter() io.Writer {
	return zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
}
