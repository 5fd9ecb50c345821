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

// Package launch runs one game launch at a time: verify the client files,
// download what is missing, start the game and report its output until it
// exits.
package launch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/config"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

type Options struct {
	Source  Source
	Spawner Spawner
	Fs      afero.Fs
	Clock   clockwork.Clock
	// OnState is called on every state change, from the orchestrator's
	// own goroutine. It must not call back into the orchestrator.
	OnState     func(launchID string, state State)
	Concurrency int
	StopTimeout time.Duration
}

// Orchestrator owns the launch slot. All slot changes happen on a single
// actor goroutine; callers and launch workers send it commands.
type Orchestrator struct {
	cmds      chan actorCmd
	quit      chan struct{}
	actorDone chan struct{}
	opts      Options
	slot      slot
	closeOnce sync.Once
	// reserved is set while the game directory is held outside a launch.
	// Only the actor goroutine touches it.
	reserved bool
}

type actorCmd struct {
	fn   func(*slot)
	done chan struct{}
}

// slot is the in-flight launch. Only the actor goroutine touches it.
type slot struct {
	proc     Process
	cancel   context.CancelFunc
	exited   chan struct{}
	finished chan struct{}
	state    State
	id       string
	server   string
	stopping bool
}

func NewOrchestrator(opts Options) *Orchestrator {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Spawner == nil {
		opts.Spawner = ExecSpawner{}
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = config.DefaultDownloadConcurrency
	}
	if opts.StopTimeout <= 0 {
		opts.StopTimeout = config.DefaultStopTimeout
	}

	o := &Orchestrator{
		opts:      opts,
		cmds:      make(chan actorCmd),
		quit:      make(chan struct{}),
		actorDone: make(chan struct{}),
		slot:      slot{state: StateIdle},
	}
	go o.loop()
	return o
}

func (o *Orchestrator) loop() {
	defer close(o.actorDone)
	for {
		select {
		case c := <-o.cmds:
			c.fn(&o.slot)
			close(c.done)
		case <-o.quit:
			return
		}
	}
}

// exec runs fn on the actor goroutine and waits for it.
func (o *Orchestrator) exec(fn func(*slot)) error {
	c := actorCmd{fn: fn, done: make(chan struct{})}
	select {
	case o.cmds <- c:
	case <-o.quit:
		return ErrClosed
	}
	<-c.done
	return nil
}

func (o *Orchestrator) setState(s *slot, st State) {
	log.Debug().Str("launch", s.id).Str("from", string(s.state)).Str("to", string(st)).
		Msg("launch state changed")
	s.state = st
	if o.opts.OnState != nil {
		o.opts.OnState(s.id, st)
	}
}

// Start begins a launch. It fails with ErrLaunchInProgress while another
// launch occupies the slot, leaving that launch untouched.
//
//nolint:gocritic // request is an immutable snapshot
func (o *Orchestrator) Start(req Request) (*Stream, error) {
	var stream *Stream
	busy := false
	err := o.exec(func(s *slot) {
		if o.reserved {
			busy = true
			return
		}
		if s.state != StateIdle {
			return
		}
		ctx, cancel := context.WithCancel(context.Background())
		*s = slot{
			id:       uuid.NewString(),
			server:   req.Server.Title,
			state:    StateIdle,
			cancel:   cancel,
			exited:   make(chan struct{}),
			finished: make(chan struct{}),
		}
		stream = newStream(s.id)
		o.setState(s, StateVerifying)
		go o.run(ctx, req, stream, s.exited, s.finished)
	})
	if err != nil {
		return nil, err
	}
	if busy {
		log.Warn().Str("server", req.Server.Title).Msg("launch rejected, game directory is being moved")
		return nil, ErrDirectoryBusy
	}
	if stream == nil {
		log.Warn().Str("server", req.Server.Title).Msg("launch rejected, another launch is in progress")
		return nil, ErrLaunchInProgress
	}

	log.Info().Str("launch", stream.ID).Str("server", req.Server.Title).Msg("launch started")
	return stream, nil
}

// Reserve holds the launch slot for work on the game directory. No launch
// can start until release is called. It fails with ErrLaunchInProgress
// while a launch runs and with ErrDirectoryBusy while already reserved.
func (o *Orchestrator) Reserve() (release func(), err error) {
	var rerr error
	err = o.exec(func(s *slot) {
		switch {
		case o.reserved:
			rerr = ErrDirectoryBusy
		case s.state != StateIdle:
			rerr = ErrLaunchInProgress
		default:
			o.reserved = true
		}
	})
	if err != nil {
		return nil, err
	}
	if rerr != nil {
		return nil, rerr
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			_ = o.exec(func(*slot) { o.reserved = false })
		})
	}, nil
}

// Stop cancels the current launch. Before the game runs, the remaining
// work is abandoned. A running game is asked to exit and killed after
// the stop timeout. The stream reports Stopped once the game has exited.
func (o *Orchestrator) Stop() error {
	active := false
	err := o.exec(func(s *slot) {
		if s.state == StateIdle || s.state.Terminal() {
			return
		}
		active = true
		if s.stopping {
			return
		}
		log.Info().Str("launch", s.id).Str("state", string(s.state)).Msg("stopping launch")
		s.stopping = true
		s.cancel()
		if s.state == StateRunning && s.proc != nil {
			o.terminate(s)
		}
	})
	if err != nil {
		return err
	}
	if !active {
		return ErrNotRunning
	}
	return nil
}

// terminate signals the game tree and escalates to a kill if it has not
// exited within the stop timeout. Runs on the actor.
func (o *Orchestrator) terminate(s *slot) {
	p, exited, id := s.proc, s.exited, s.id
	timeout, clock := o.opts.StopTimeout, o.opts.Clock
	timer := clock.After(timeout)

	go func() {
		if err := p.Terminate(); err != nil {
			log.Warn().Err(err).Str("launch", id).Msg("failed to terminate game")
		}
		select {
		case <-exited:
		case <-timer:
			log.Warn().Str("launch", id).Dur("timeout", timeout).Msg("game did not exit, killing")
			if err := p.Kill(); err != nil {
				log.Error().Err(err).Str("launch", id).Msg("failed to kill game")
			}
		}
	}()
}

func (o *Orchestrator) Status() Status {
	var st Status
	err := o.exec(func(s *slot) {
		st = Status{State: s.state, LaunchID: s.id, Server: s.server}
	})
	if err != nil {
		return Status{State: StateIdle}
	}
	return st
}

// Close stops any launch, waits for its stream to end and shuts the
// actor down.
func (o *Orchestrator) Close() error {
	o.closeOnce.Do(func() {
		var finished chan struct{}
		_ = o.exec(func(s *slot) {
			if s.state != StateIdle {
				finished = s.finished
			}
		})
		if finished != nil {
			if err := o.Stop(); err != nil && !errors.Is(err, ErrNotRunning) {
				log.Warn().Err(err).Msg("failed to stop launch on close")
			}
			<-finished
		}
		close(o.quit)
		<-o.actorDone
	})
	return nil
}

// advance moves the slot to st unless a stop was requested.
func (o *Orchestrator) advance(st State) bool {
	ok := false
	_ = o.exec(func(s *slot) {
		if s.stopping {
			return
		}
		o.setState(s, st)
		ok = true
	})
	return ok
}

func (o *Orchestrator) stopping() bool {
	stopping := false
	_ = o.exec(func(s *slot) { stopping = s.stopping })
	return stopping
}

//nolint:gocritic // request is an immutable snapshot
func (o *Orchestrator) run(
	ctx context.Context,
	req Request,
	stream *Stream,
	exited chan struct{},
	finished chan struct{},
) {
	defer close(finished)

	term := o.session(ctx, req, stream, exited)

	final := StateFailed
	switch term.Result {
	case ResultSucceeded:
		final = StateSucceeded
	case ResultStopped:
		final = StateStopped
	}

	_ = o.exec(func(s *slot) {
		o.setState(s, final)
		s.cancel()
		o.setState(s, StateIdle)
		*s = slot{state: StateIdle}
	})

	ev := log.Info()
	if term.Result == ResultFailed {
		ev = log.Warn()
	}
	ev.Str("launch", stream.ID).Str("result", term.Result).Str("kind", term.Kind).
		Str("item", term.Item).Int("exitCode", term.ExitCode).Msg("launch finished")

	stream.finish(term)
}

func stopped() Terminal {
	return Terminal{Result: ResultStopped}
}

// failed turns an error into a failed Terminal, keeping its kind.
func failed(kind string, err error) Terminal {
	t := Terminal{Result: ResultFailed, Kind: kind, Reason: err.Error()}
	var le *Error
	if errors.As(err, &le) {
		t.Kind = le.Kind()
		t.Item = le.Item
		t.ExitCode = le.ExitCode
	}
	return t
}

//nolint:gocritic // request is an immutable snapshot
func (o *Orchestrator) session(ctx context.Context, req Request, stream *Stream, exited chan struct{}) Terminal {
	defer func() {
		select {
		case <-exited:
		default:
			close(exited)
		}
	}()

	clientDir := req.Profile.ClientDir
	root, err := safeJoin(req.Settings.Dir, clientDir)
	if err != nil {
		return failed(KindVerification, err)
	}

	files, err := o.opts.Source.Manifest(ctx, clientDir)
	if err != nil {
		if ctx.Err() != nil {
			return stopped()
		}
		return failed(KindNetwork, fmt.Errorf("failed to fetch manifest: %w", err))
	}

	plan, err := Verify(ctx, o.opts.Fs, root, files)
	if err != nil {
		if ctx.Err() != nil {
			return stopped()
		}
		return failed(KindVerification, err)
	}

	if fetches := plan.Fetches(); len(fetches) > 0 {
		if !o.advance(StateDownloading) {
			return stopped()
		}
		log.Info().Str("launch", stream.ID).Int("files", len(fetches)).Str("unit", plan.Unit()).
			Int64("total", plan.FetchTotal()).Msg("downloading client files")
		err := download(ctx, o.opts.Fs, o.opts.Source, clientDir, plan, o.opts.Concurrency, stream.emit)
		if ctx.Err() != nil {
			return stopped()
		}
		if err != nil {
			return failed(KindDownload, err)
		}
	}

	if !o.advance(StateStarting) {
		return stopped()
	}
	if err := Recheck(o.opts.Fs, plan); err != nil {
		return failed(KindVerification, err)
	}
	cmd, err := BuildCommand(req, root)
	if err != nil {
		return failed(KindProcessSpawn, err)
	}

	p, err := o.opts.Spawner.Spawn(ctx, cmd)
	if err != nil {
		if ctx.Err() != nil {
			return stopped()
		}
		return failed(KindProcessSpawn, err)
	}

	_ = o.exec(func(s *slot) {
		s.proc = p
		o.setState(s, StateRunning)
		if s.stopping {
			o.terminate(s)
		}
	})
	log.Info().Str("launch", stream.ID).Int("pid", p.Pid()).Str("exe", cmd.Path).Msg("game started")

	forwardOutput(p.Output(), stream)
	code, waitErr := p.Wait()
	close(exited)

	switch {
	case o.stopping():
		return stopped()
	case waitErr != nil:
		return failed(KindProcessExit, &Error{kind: KindProcessExit, ExitCode: code, Err: waitErr})
	case code == 0:
		return Terminal{Result: ResultSucceeded}
	default:
		return failed(KindProcessExit, &Error{
			kind:     KindProcessExit,
			ExitCode: code,
			Err:      fmt.Errorf("game exited with code %d", code),
		})
	}
}

// forwardOutput sends every line of r to the stream in order, line
// endings included. A trailing partial line is sent as is.
func forwardOutput(r io.Reader, stream *Stream) {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			stream.emit(Console{Text: line})
		}
		if err != nil {
			return
		}
	}
}
