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
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/helpers/command"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/helpers/proc"
)

// Spawner starts game processes.
type Spawner interface {
	Spawn(ctx context.Context, cmd Command) (Process, error)
}

// Process is a running game. Output carries stdout and stderr combined
// and reaches EOF after the game exits.
type Process interface {
	Pid() int
	Output() io.Reader
	// Wait blocks until exit and returns the exit code. Death by signal
	// is reported as 128 plus the signal number.
	Wait() (int, error)
	Terminate() error
	Kill() error
}

// outputDrainTimeout bounds how long output is read after the game exits,
// since children it left behind may hold the pipe open.
const outputDrainTimeout = 2 * time.Second

// ExecSpawner runs games as detached OS processes in their own process
// group, so only the orchestrator can stop them.
type ExecSpawner struct{}

func (ExecSpawner) Spawn(_ context.Context, c Command) (Process, error) {
	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create output pipe: %w", err)
	}

	cmd := command.Detached(c.Path, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = c.Env
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		_ = pr.Close()
		_ = pw.Close()
		return nil, fmt.Errorf("failed to start %s: %w", c.Path, err)
	}
	_ = pw.Close()

	p := &execProcess{cmd: cmd, out: pr, exited: make(chan struct{})}
	go p.reap()
	return p, nil
}

type execProcess struct {
	err    error
	cmd    *exec.Cmd
	out    *os.File
	exited chan struct{}
	code   int
}

func (p *execProcess) reap() {
	err := p.cmd.Wait()
	p.code, p.err = exitCode(err)
	close(p.exited)
	time.AfterFunc(outputDrainTimeout, func() { _ = p.out.Close() })
}

func exitCode(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var ee *exec.ExitError
	if !errors.As(err, &ee) {
		return -1, err
	}
	code := ee.ExitCode()
	if ws, ok := ee.Sys().(syscall.WaitStatus); ok && code == -1 && ws.Signaled() {
		code = 128 + int(ws.Signal())
	}
	return code, nil
}

func (p *execProcess) Pid() int {
	return p.cmd.Process.Pid
}

func (p *execProcess) Output() io.Reader {
	return p.out
}

func (p *execProcess) Wait() (int, error) {
	<-p.exited
	return p.code, p.err
}

func (p *execProcess) Terminate() error {
	return proc.TerminateTree(p.Pid()) //nolint:wrapcheck // proc errors name the pid
}

func (p *execProcess) Kill() error {
	return proc.KillTree(p.Pid()) //nolint:wrapcheck // proc errors name the pid
}
