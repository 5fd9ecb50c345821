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

// Package proc signals whole process trees. Games commonly start a
// wrapper that forks the real client, so signalling only the direct
// child leaves the game running.
package proc

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/process"
)

// Descendants returns every live descendant of pid, deepest first.
func Descendants(pid int) ([]*process.Process, error) {
	root, err := process.NewProcess(int32(pid)) //nolint:gosec // pids fit in int32
	if err != nil {
		return nil, fmt.Errorf("failed to find process %d: %w", pid, err)
	}
	var out []*process.Process
	collect(root, &out, 0)
	return out, nil
}

const maxDepth = 16

func collect(p *process.Process, out *[]*process.Process, depth int) {
	if depth >= maxDepth {
		return
	}
	children, err := p.Children()
	if err != nil {
		if !errors.Is(err, process.ErrorNoChildren) {
			log.Debug().Err(err).Int32("pid", p.Pid).Msg("failed to list child processes")
		}
		return
	}
	for _, c := range children {
		collect(c, out, depth+1)
		*out = append(*out, c)
	}
}

// TerminateTree asks pid and its descendants to exit (SIGTERM on unix).
func TerminateTree(pid int) error {
	return signalTree(pid, false)
}

// KillTree force-kills pid and its descendants.
func KillTree(pid int) error {
	return signalTree(pid, true)
}

func signalTree(pid int, kill bool) error {
	if err := signalGroup(pid, kill); err != nil {
		log.Debug().Err(err).Int("pid", pid).Msg("process group signal failed")
	}

	descendants, err := Descendants(pid)
	if err != nil {
		if exists, _ := process.PidExists(int32(pid)); !exists { //nolint:gosec // pids fit in int32
			return nil
		}
		return err
	}
	for _, d := range descendants {
		if err := signalOne(d, kill); err != nil {
			log.Debug().Err(err).Int32("pid", d.Pid).Msg("failed to signal child process")
		}
	}

	root, err := process.NewProcess(int32(pid)) //nolint:gosec // pids fit in int32
	if err != nil {
		// Already gone after the group signal.
		return nil //nolint:nilerr // exit is the goal
	}
	return signalOne(root, kill)
}

func signalOne(p *process.Process, kill bool) error {
	var err error
	if kill {
		err = p.Kill()
	} else {
		err = p.Terminate()
	}
	if err != nil {
		return fmt.Errorf("failed to signal process %d: %w", p.Pid, err)
	}
	return nil
}
