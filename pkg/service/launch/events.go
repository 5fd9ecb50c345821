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

import "math"

// Event is one item of a launch stream: Progress, Console or Terminal.
type Event interface {
	event()
}

const (
	// UnitSize means Loaded and Total count bytes.
	UnitSize = "size"
	// UnitCount means Loaded and Total count files. Used when any file
	// to fetch has no known size.
	UnitCount = "count"
)

// Progress reports download progress. ItemLoaded and ItemTotal are bytes
// of the current item; ItemTotal is 0 while the item size is unknown.
type Progress struct {
	Unit       string `json:"unit"`
	Item       string `json:"item,omitempty"`
	Loaded     int64  `json:"loaded"`
	Total      int64  `json:"total"`
	ItemLoaded int64  `json:"itemLoaded"`
	ItemTotal  int64  `json:"itemTotal"`
}

// Percent is loaded/total*100 clamped to [0, 100].
func (p Progress) Percent() float64 {
	if p.Total <= 0 {
		return 0
	}
	pct := float64(p.Loaded) / float64(p.Total) * 100
	return math.Max(0, math.Min(100, pct))
}

// Console is raw game output, one line with its line ending.
type Console struct {
	Text string `json:"text"`
}

const (
	ResultSucceeded = "succeeded"
	ResultFailed    = "failed"
	ResultStopped   = "stopped"
)

// Terminal ends a launch stream. Exactly one is sent per launch.
type Terminal struct {
	Result   string `json:"result"`
	Kind     string `json:"kind,omitempty"`
	Reason   string `json:"reason,omitempty"`
	Item     string `json:"item,omitempty"`
	ExitCode int    `json:"exitCode"`
}

func (Progress) event() {}
func (Console) event()  {}
func (Terminal) event() {}

const streamBuffer = 64

// Stream carries the events of one launch. The channel is closed right
// after the Terminal event. Consumers must drain it.
type Stream struct {
	events chan Event
	ID     string
}

func newStream(id string) *Stream {
	return &Stream{ID: id, events: make(chan Event, streamBuffer)}
}

func (s *Stream) Events() <-chan Event {
	return s.events
}

func (s *Stream) emit(e Event) {
	s.events <- e
}

func (s *Stream) finish(t Terminal) {
	s.events <- t
	close(s.events)
}
