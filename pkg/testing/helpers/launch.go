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

package helpers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/launchserver"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/service/launch"
	"github.com/spf13/afero"
)

// TreeSource serves client manifests and files from memory.
type TreeSource struct {
	trees map[string]GameTree
	mu    sync.Mutex
}

var _ launch.Source = (*TreeSource)(nil)

func NewTreeSource() *TreeSource {
	return &TreeSource{trees: make(map[string]GameTree)}
}

func (s *TreeSource) SetTree(dir string, tree GameTree) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trees[dir] = tree
}

func (s *TreeSource) Manifest(_ context.Context, dir string) ([]launchserver.HashedFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tree, ok := s.trees[dir]
	if !ok {
		return nil, fmt.Errorf("no such client dir: %s", dir)
	}
	return tree.Manifest(), nil
}

func (s *TreeSource) OpenFile(_ context.Context, dir, file string) (io.ReadCloser, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, ok := s.trees[dir][file]
	if !ok {
		return nil, 0, fmt.Errorf("%s/%s: %w", dir, file, os.ErrNotExist)
	}
	return io.NopCloser(bytes.NewReader(content)), int64(len(content)), nil
}

// FakeProcess is a game that runs until the test ends it. Terminate and
// Kill end it with 143 and 137 like a real signalled process.
type FakeProcess struct {
	out     *io.PipeReader
	w       *io.PipeWriter
	done    chan struct{}
	Command launch.Command
	code    int
	once    sync.Once
}

var _ launch.Process = (*FakeProcess)(nil)

func NewFakeProcess(cmd launch.Command) *FakeProcess {
	r, w := io.Pipe()
	return &FakeProcess{out: r, w: w, done: make(chan struct{}), Command: cmd}
}

func (p *FakeProcess) Pid() int { return 4242 }

func (p *FakeProcess) Output() io.Reader { return p.out }

// Print writes game output. It blocks until the launcher reads it.
func (p *FakeProcess) Print(text string) {
	_, _ = io.WriteString(p.w, text)
}

// Exit ends the game with code. Only the first call counts.
func (p *FakeProcess) Exit(code int) {
	p.once.Do(func() {
		p.code = code
		_ = p.w.Close()
		close(p.done)
	})
}

func (p *FakeProcess) Exited() <-chan struct{} {
	return p.done
}

func (p *FakeProcess) Wait() (int, error) {
	<-p.done
	return p.code, nil
}

func (p *FakeProcess) Terminate() error {
	p.Exit(143)
	return nil
}

func (p *FakeProcess) Kill() error {
	p.Exit(137)
	return nil
}

// FakeSpawner hands out FakeProcesses. Every spawned process is also
// sent on Spawned.
type FakeSpawner struct {
	Err     error
	Spawned chan *FakeProcess
}

var _ launch.Spawner = (*FakeSpawner)(nil)

func NewFakeSpawner() *FakeSpawner {
	return &FakeSpawner{Spawned: make(chan *FakeProcess, 8)}
}

func (s *FakeSpawner) Spawn(_ context.Context, cmd launch.Command) (launch.Process, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	p := NewFakeProcess(cmd)
	s.Spawned <- p
	return p, nil
}

// WaitSpawned returns the next spawned process or fails the test.
func (s *FakeSpawner) WaitSpawned(t *testing.T) *FakeProcess {
	t.Helper()
	select {
	case p := <-s.Spawned:
		return p
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for game to spawn")
		return nil
	}
}

// NewTestOrchestrator runs launches against src and sp on an in-memory
// filesystem. It is closed when the test ends.
func NewTestOrchestrator(t *testing.T, src launch.Source, sp launch.Spawner) *launch.Orchestrator {
	t.Helper()
	o := launch.NewOrchestrator(launch.Options{
		Source:      src,
		Spawner:     sp,
		Fs:          afero.NewMemMapFs(),
		StopTimeout: time.Second,
	})
	t.Cleanup(func() { _ = o.Close() })
	return o
}

// DrainStream collects every event of a launch up to its terminal event.
func DrainStream(t *testing.T, stream *launch.Stream) []launch.Event {
	t.Helper()
	var events []launch.Event
	timeout := time.After(10 * time.Second)
	for {
		select {
		case ev, ok := <-stream.Events():
			if !ok {
				return events
			}
			events = append(events, ev)
		case <-timeout:
			t.Fatal("timed out draining launch stream")
			return events
		}
	}
}
