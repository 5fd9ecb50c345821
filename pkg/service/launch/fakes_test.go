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
	"bytes"
	"context"
	"crypto/sha1" //nolint:gosec // manifest format uses sha1
	"encoding/hex"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/config"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/launchserver"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/service/auth"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/service/servers"
	"github.com/spf13/afero"
)

func sha1Hex(b []byte) string {
	sum := sha1.Sum(b) //nolint:gosec // manifest format uses sha1
	return hex.EncodeToString(sum[:])
}

func manifestOf(tree map[string][]byte) []launchserver.HashedFile {
	out := make([]launchserver.HashedFile, 0, len(tree))
	for name, content := range tree {
		out = append(out, launchserver.HashedFile{
			Path: name,
			Size: int64(len(content)),
			SHA1: sha1Hex(content),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func writeTree(t *testing.T, fsys afero.Fs, root string, tree map[string][]byte) {
	t.Helper()
	for name, content := range tree {
		p, err := safeJoin(root, name)
		if err != nil {
			t.Fatal(err)
		}
		if err := afero.WriteFile(fsys, p, content, 0o600); err != nil {
			t.Fatal(err)
		}
	}
}

type fakeSource struct {
	manifestErr error
	tree        map[string][]byte
	served      map[string][]byte
	openErr     map[string]error
	manifest    []launchserver.HashedFile
	opened      []string
	mu          sync.Mutex
	block       bool
}

func newFakeSource(tree map[string][]byte) *fakeSource {
	return &fakeSource{
		tree:     tree,
		manifest: manifestOf(tree),
		served:   make(map[string][]byte),
		openErr:  make(map[string]error),
	}
}

func (f *fakeSource) Manifest(context.Context, string) ([]launchserver.HashedFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.manifestErr != nil {
		return nil, f.manifestErr
	}
	return append([]launchserver.HashedFile(nil), f.manifest...), nil
}

func (f *fakeSource) OpenFile(ctx context.Context, _, file string) (io.ReadCloser, int64, error) {
	f.mu.Lock()
	f.opened = append(f.opened, file)
	block := f.block
	err := f.openErr[file]
	content, ok := f.served[file]
	if !ok {
		content = f.tree[file]
	}
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, 0, ctx.Err()
	}
	if err != nil {
		return nil, 0, err
	}
	return io.NopCloser(bytes.NewReader(content)), int64(len(content)), nil
}

func (f *fakeSource) openedFiles() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]string(nil), f.opened...)
	sort.Strings(out)
	return out
}

// fakeProcess is a game whose output and exit are driven by the test.
type fakeProcess struct {
	onTerminate func(p *fakeProcess)
	r           *io.PipeReader
	w           *io.PipeWriter
	done        chan struct{}
	exitOnce    sync.Once
	code        int
	terminated  int
	killed      int
	mu          sync.Mutex
}

func newFakeProcess() *fakeProcess {
	r, w := io.Pipe()
	return &fakeProcess{r: r, w: w, done: make(chan struct{})}
}

func (p *fakeProcess) print(s string) {
	_, _ = io.WriteString(p.w, s)
}

func (p *fakeProcess) exit(code int) {
	p.exitOnce.Do(func() {
		p.code = code
		_ = p.w.Close()
		close(p.done)
	})
}

func (*fakeProcess) Pid() int            { return 4242 }
func (p *fakeProcess) Output() io.Reader { return p.r }

func (p *fakeProcess) Wait() (int, error) {
	<-p.done
	return p.code, nil
}

func (p *fakeProcess) Terminate() error {
	p.mu.Lock()
	p.terminated++
	fn := p.onTerminate
	p.mu.Unlock()
	if fn != nil {
		fn(p)
	}
	return nil
}

func (p *fakeProcess) Kill() error {
	p.mu.Lock()
	p.killed++
	p.mu.Unlock()
	p.exit(137)
	return nil
}

func (p *fakeProcess) counts() (terminated, killed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.terminated, p.killed
}

type fakeSpawner struct {
	err   error
	next  *fakeProcess
	procs chan *fakeProcess
	cmds  []Command
	mu    sync.Mutex
}

func newFakeSpawner() *fakeSpawner {
	return &fakeSpawner{procs: make(chan *fakeProcess, 1)}
}

func (s *fakeSpawner) Spawn(_ context.Context, cmd Command) (Process, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cmds = append(s.cmds, cmd)
	if s.err != nil {
		return nil, s.err
	}
	p := s.next
	if p == nil {
		p = newFakeProcess()
	}
	s.procs <- p
	return p, nil
}

func (s *fakeSpawner) spawned() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cmds)
}

func (s *fakeSpawner) wait(t *testing.T) *fakeProcess {
	t.Helper()
	select {
	case p := <-s.procs:
		return p
	case <-time.After(5 * time.Second):
		t.Fatal("game was never spawned")
		return nil
	}
}

type stateRecorder struct {
	states []State
	mu     sync.Mutex
}

func (r *stateRecorder) record(_ string, st State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, st)
}

func (r *stateRecorder) get() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.states...)
}

func (r *stateRecorder) saw(st State) bool {
	for _, s := range r.get() {
		if s == st {
			return true
		}
	}
	return false
}

const gameRoot = "/games"

func testRequest() Request {
	return Request{
		Server: servers.Descriptor{Title: "Survival", Host: "mc.example.org", Port: 25565, ProfileUUID: "p1"},
		Profile: launchserver.Profile{
			UUID:       "p1",
			Version:    "1.20.1",
			ClientDir:  "survival",
			Executable: "java",
			Args:       []string{"-jar", "client.jar", "--username", "${username}"},
		},
		Session: auth.Session{
			Username:    "steve",
			UserUUID:    "u-1",
			AccessToken: "tok",
			Valid:       true,
		},
		Settings: config.Launcher{Dir: gameRoot, Memory: 2048},
	}
}

// collect drains a stream in the background. The returned channel yields
// every event once the stream closes.
func collect(s *Stream) <-chan []Event {
	out := make(chan []Event, 1)
	go func() {
		var events []Event
		for ev := range s.Events() {
			events = append(events, ev)
		}
		out <- events
	}()
	return out
}

func waitEvents(t *testing.T, ch <-chan []Event) []Event {
	t.Helper()
	select {
	case evs := <-ch:
		return evs
	case <-time.After(5 * time.Second):
		t.Fatal("stream did not finish")
		return nil
	}
}

func terminalOf(t *testing.T, evs []Event) Terminal {
	t.Helper()
	if len(evs) == 0 {
		t.Fatal("no events")
	}
	term, ok := evs[len(evs)-1].(Terminal)
	if !ok {
		t.Fatalf("last event is %T, not Terminal", evs[len(evs)-1])
	}
	for _, ev := range evs[:len(evs)-1] {
		if _, ok := ev.(Terminal); ok {
			t.Fatal("more than one terminal event")
		}
	}
	return term
}
