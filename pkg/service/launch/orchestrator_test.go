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
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/launchserver"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var clientTree = map[string][]byte{
	"client.jar":             []byte("client-jar-bytes"),
	"libraries/a.jar":        []byte("library a"),
	"libraries/b.jar":        []byte("library b, a bit longer"),
	"assets/index/1.20.json": []byte(`{"objects":{}}`),
}

type harness struct {
	o       *Orchestrator
	fs      afero.Fs
	src     *fakeSource
	spawner *fakeSpawner
	clock   *clockwork.FakeClock
	states  *stateRecorder
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		fs:      afero.NewMemMapFs(),
		src:     newFakeSource(clientTree),
		spawner: newFakeSpawner(),
		clock:   clockwork.NewFakeClock(),
		states:  &stateRecorder{},
	}
	h.o = NewOrchestrator(Options{
		Source:      h.src,
		Spawner:     h.spawner,
		Fs:          h.fs,
		Clock:       h.clock,
		OnState:     h.states.record,
		Concurrency: 2,
		StopTimeout: 5 * time.Second,
	})
	t.Cleanup(func() { _ = h.o.Close() })
	return h
}

func (h *harness) clientRoot() string {
	return filepath.Join(gameRoot, "survival")
}

func (h *harness) waitState(t *testing.T, st State) {
	t.Helper()
	require.Eventually(t, func() bool { return h.o.Status().State == st }, 5*time.Second, 5*time.Millisecond,
		"never reached %s", st)
}

func TestLaunch_DownloadsMissingFilesThenRuns(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	writeTree(t, h.fs, h.clientRoot(), map[string][]byte{"client.jar": clientTree["client.jar"]})

	stream, err := h.o.Start(testRequest())
	require.NoError(t, err)
	events := collect(stream)

	p := h.spawner.wait(t)
	p.print("booting\n")
	p.print("ready\n")
	p.exit(0)

	evs := waitEvents(t, events)
	term := terminalOf(t, evs)
	assert.Equal(t, ResultSucceeded, term.Result)

	assert.Equal(t, []State{
		StateVerifying, StateDownloading, StateStarting, StateRunning, StateSucceeded, StateIdle,
	}, h.states.get())
	assert.Equal(t, []string{"assets/index/1.20.json", "libraries/a.jar", "libraries/b.jar"}, h.src.openedFiles())

	for name, content := range clientTree {
		got, err := afero.ReadFile(h.fs, filepath.Join(h.clientRoot(), filepath.FromSlash(name)))
		require.NoError(t, err, name)
		assert.Equal(t, content, got, name)
	}

	var console []string
	for _, ev := range evs {
		if c, ok := ev.(Console); ok {
			console = append(console, c.Text)
		}
	}
	assert.Equal(t, []string{"booting\n", "ready\n"}, console)
	assert.Equal(t, StateIdle, h.o.Status().State)
}

func TestLaunch_ProgressIsMonotonic(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	stream, err := h.o.Start(testRequest())
	require.NoError(t, err)
	events := collect(stream)
	h.spawner.wait(t).exit(0)

	evs := waitEvents(t, events)
	require.Equal(t, ResultSucceeded, terminalOf(t, evs).Result)

	var want int64
	for _, c := range clientTree {
		want += int64(len(c))
	}

	var (
		last       int64
		finals     = make(map[string]bool)
		itemLoaded = make(map[string]int64)
		progress   []Progress
	)
	for _, ev := range evs {
		p, ok := ev.(Progress)
		if !ok {
			continue
		}
		progress = append(progress, p)
		assert.Equal(t, UnitSize, p.Unit)
		assert.Equal(t, want, p.Total)
		assert.GreaterOrEqual(t, p.Loaded, last)
		assert.GreaterOrEqual(t, p.ItemLoaded, itemLoaded[p.Item], p.Item)
		assert.LessOrEqual(t, p.Loaded, p.Total)
		last = p.Loaded
		itemLoaded[p.Item] = p.ItemLoaded
		if p.ItemLoaded == p.ItemTotal {
			finals[p.Item] = true
		}
	}
	require.NotEmpty(t, progress)
	assert.Equal(t, want, progress[len(progress)-1].Loaded)
	assert.Len(t, finals, len(clientTree))
}

func TestLaunch_UnknownSizesUseCountUnit(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	for i := range h.src.manifest {
		h.src.manifest[i].Size = launchserver.SizeUnknown
	}

	stream, err := h.o.Start(testRequest())
	require.NoError(t, err)
	events := collect(stream)
	h.spawner.wait(t).exit(0)

	evs := waitEvents(t, events)
	require.Equal(t, ResultSucceeded, terminalOf(t, evs).Result)

	var last Progress
	for _, ev := range evs {
		if p, ok := ev.(Progress); ok {
			assert.Equal(t, UnitCount, p.Unit)
			assert.Equal(t, int64(len(clientTree)), p.Total)
			last = p
		}
	}
	assert.Equal(t, int64(len(clientTree)), last.Loaded)
}

func TestLaunch_AllPresentSkipsDownloading(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	writeTree(t, h.fs, h.clientRoot(), clientTree)

	stream, err := h.o.Start(testRequest())
	require.NoError(t, err)
	events := collect(stream)
	h.spawner.wait(t).exit(0)

	evs := waitEvents(t, events)
	assert.Equal(t, ResultSucceeded, terminalOf(t, evs).Result)
	assert.False(t, h.states.saw(StateDownloading))
	assert.Empty(t, h.src.openedFiles())
}

func TestLaunch_CorruptLocalFileIsRefetched(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	writeTree(t, h.fs, h.clientRoot(), clientTree)
	corrupt := []byte("client-jar-BYTES")
	require.Len(t, corrupt, len(clientTree["client.jar"]))
	writeTree(t, h.fs, h.clientRoot(), map[string][]byte{"client.jar": corrupt})

	stream, err := h.o.Start(testRequest())
	require.NoError(t, err)
	events := collect(stream)
	h.spawner.wait(t).exit(0)

	assert.Equal(t, ResultSucceeded, terminalOf(t, waitEvents(t, events)).Result)
	assert.Equal(t, []string{"client.jar"}, h.src.openedFiles())
}

func TestLaunch_SecondStartRejected(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	stream, err := h.o.Start(testRequest())
	require.NoError(t, err)
	events := collect(stream)
	p := h.spawner.wait(t)
	h.waitState(t, StateRunning)

	before := h.o.Status()
	_, err = h.o.Start(testRequest())
	require.ErrorIs(t, err, ErrLaunchInProgress)
	var le *Error
	require.ErrorAs(t, err, &le)
	assert.Equal(t, KindLaunchInProgress, le.Kind())
	assert.Equal(t, before, h.o.Status())

	p.exit(0)
	assert.Equal(t, ResultSucceeded, terminalOf(t, waitEvents(t, events)).Result)

	// The slot is free again.
	stream, err = h.o.Start(testRequest())
	require.NoError(t, err)
	events = collect(stream)
	h.spawner.wait(t).exit(0)
	waitEvents(t, events)
}

func TestReserve_ExcludesLaunches(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	release, err := h.o.Reserve()
	require.NoError(t, err)

	_, err = h.o.Start(testRequest())
	require.ErrorIs(t, err, ErrDirectoryBusy)
	var le *Error
	require.ErrorAs(t, err, &le)
	assert.Equal(t, KindDirectoryBusy, le.Kind())
	assert.Equal(t, StateIdle, h.o.Status().State)

	_, err = h.o.Reserve()
	require.ErrorIs(t, err, ErrDirectoryBusy)

	release()
	release()

	stream, err := h.o.Start(testRequest())
	require.NoError(t, err)
	events := collect(stream)
	p := h.spawner.wait(t)
	h.waitState(t, StateRunning)

	_, err = h.o.Reserve()
	require.ErrorIs(t, err, ErrLaunchInProgress)

	p.exit(0)
	waitEvents(t, events)
}

func TestLaunch_ExitCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		result string
		kind   string
		code   int
	}{
		{name: "clean exit", code: 0, result: ResultSucceeded},
		{name: "killed", code: 137, result: ResultFailed, kind: KindProcessExit},
		{name: "crash", code: 1, result: ResultFailed, kind: KindProcessExit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t)
			stream, err := h.o.Start(testRequest())
			require.NoError(t, err)
			events := collect(stream)
			h.spawner.wait(t).exit(tt.code)

			term := terminalOf(t, waitEvents(t, events))
			assert.Equal(t, tt.result, term.Result)
			assert.Equal(t, tt.kind, term.Kind)
			assert.Equal(t, tt.code, term.ExitCode)
		})
	}
}

func TestLaunch_StopWaitsForExit(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	stream, err := h.o.Start(testRequest())
	require.NoError(t, err)
	events := collect(stream)
	p := h.spawner.wait(t)
	h.waitState(t, StateRunning)

	require.NoError(t, h.o.Stop())
	require.Eventually(t, func() bool {
		terminated, _ := p.counts()
		return terminated == 1
	}, 5*time.Second, 5*time.Millisecond)

	// The game ignores the request: no terminal yet.
	select {
	case <-events:
		t.Fatal("stream ended before the game exited")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, StateRunning, h.o.Status().State)

	h.clock.Advance(5 * time.Second)

	term := terminalOf(t, waitEvents(t, events))
	assert.Equal(t, ResultStopped, term.Result)
	_, killed := p.counts()
	assert.Equal(t, 1, killed)
	assert.Equal(t, StateIdle, h.o.Status().State)
}

func TestLaunch_StopGracefulExit(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	proc := newFakeProcess()
	proc.onTerminate = func(p *fakeProcess) { p.exit(143) }
	h.spawner.next = proc

	stream, err := h.o.Start(testRequest())
	require.NoError(t, err)
	events := collect(stream)
	h.spawner.wait(t)
	h.waitState(t, StateRunning)

	require.NoError(t, h.o.Stop())
	term := terminalOf(t, waitEvents(t, events))
	assert.Equal(t, ResultStopped, term.Result)

	_, killed := proc.counts()
	assert.Zero(t, killed)
}

func TestLaunch_StopDuringDownload(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.src.block = true

	stream, err := h.o.Start(testRequest())
	require.NoError(t, err)
	events := collect(stream)
	h.waitState(t, StateDownloading)

	require.NoError(t, h.o.Stop())
	term := terminalOf(t, waitEvents(t, events))
	assert.Equal(t, ResultStopped, term.Result)
	assert.False(t, h.states.saw(StateStarting))
	assert.Zero(t, h.spawner.spawned())

	exists, err := afero.Exists(h.fs, filepath.Join(h.clientRoot(), "client.jar"+partSuffix))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLaunch_StopWhenIdle(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	require.ErrorIs(t, h.o.Stop(), ErrNotRunning)
}

func TestLaunch_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		setup func(h *harness)
		name  string
		kind  string
		item  string
	}{
		{
			name:  "manifest unavailable",
			setup: func(h *harness) { h.src.manifestErr = launchserver.ErrNetwork },
			kind:  KindNetwork,
		},
		{
			name:  "file fetch fails",
			setup: func(h *harness) { h.src.openErr["libraries/b.jar"] = launchserver.ErrNetwork },
			kind:  KindDownload,
			item:  "libraries/b.jar",
		},
		{
			name:  "checksum mismatch",
			setup: func(h *harness) { h.src.served["libraries/a.jar"] = []byte("library A") },
			kind:  KindDownload,
			item:  "libraries/a.jar",
		},
		{
			name: "path escapes client dir",
			setup: func(h *harness) {
				h.src.manifest = append(h.src.manifest, launchserver.HashedFile{Path: "../../etc/passwd", Size: 1})
			},
			kind: KindVerification,
			item: "../../etc/passwd",
		},
		{
			name:  "spawn fails",
			setup: func(h *harness) { h.spawner.err = errors.New("exec: no such file") },
			kind:  KindProcessSpawn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t)
			tt.setup(h)

			stream, err := h.o.Start(testRequest())
			require.NoError(t, err)

			term := terminalOf(t, waitEvents(t, collect(stream)))
			assert.Equal(t, ResultFailed, term.Result)
			assert.Equal(t, tt.kind, term.Kind)
			assert.Equal(t, tt.item, term.Item)
			assert.NotEmpty(t, term.Reason)
			assert.Equal(t, StateIdle, h.o.Status().State)
			assert.True(t, h.states.saw(StateFailed))
		})
	}
}

func TestLaunch_OptionalFileFailureIsSkipped(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	for i := range h.src.manifest {
		if h.src.manifest[i].Path == "libraries/b.jar" {
			h.src.manifest[i].Optional = true
		}
	}
	h.src.openErr["libraries/b.jar"] = launchserver.ErrNetwork

	stream, err := h.o.Start(testRequest())
	require.NoError(t, err)
	events := collect(stream)
	h.spawner.wait(t).exit(0)

	evs := waitEvents(t, events)
	assert.Equal(t, ResultSucceeded, terminalOf(t, evs).Result)

	var last Progress
	skippedFinal := false
	for _, ev := range evs {
		p, ok := ev.(Progress)
		if !ok {
			continue
		}
		last = p
		if p.Item == "libraries/b.jar" && p.ItemLoaded == p.ItemTotal {
			skippedFinal = true
		}
	}
	assert.True(t, skippedFinal, "skipped file still gets a final event")
	assert.Equal(t, UnitSize, last.Unit)
	assert.Equal(t, last.Total, last.Loaded, "progress completes before the terminal event")
	assert.InDelta(t, 100, last.Percent(), 0)
}

func TestLaunch_CommandLine(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	stream, err := h.o.Start(testRequest())
	require.NoError(t, err)
	events := collect(stream)
	h.spawner.wait(t).exit(0)
	waitEvents(t, events)

	require.Len(t, h.spawner.cmds, 1)
	cmd := h.spawner.cmds[0]
	assert.Equal(t, "java", cmd.Path)
	assert.Equal(t, h.clientRoot(), cmd.Dir)
	assert.Equal(t, []string{"-jar", "client.jar", "--username", "steve"}, cmd.Args)
}

func TestClose_StopsActiveLaunch(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	proc := newFakeProcess()
	proc.onTerminate = func(p *fakeProcess) { p.exit(143) }
	h.spawner.next = proc

	stream, err := h.o.Start(testRequest())
	require.NoError(t, err)
	events := collect(stream)
	h.spawner.wait(t)
	h.waitState(t, StateRunning)

	require.NoError(t, h.o.Close())
	assert.Equal(t, ResultStopped, terminalOf(t, waitEvents(t, events)).Result)

	_, err = h.o.Start(testRequest())
	require.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, StateIdle, h.o.Status().State)
}
