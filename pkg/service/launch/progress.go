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
	"github.com/ZaparooProject/zaparoo-launcher/pkg/helpers/syncutil"
)

// tracker aggregates download progress across concurrent fetches. Events
// are emitted under the lock so the stream sees Loaded grow monotonically.
type tracker struct {
	emit   func(Event)
	unit   string
	total  int64
	loaded int64
	mu     syncutil.Mutex
}

func newTracker(plan Plan, emit func(Event)) *tracker {
	return &tracker{
		emit:  emit,
		unit:  plan.Unit(),
		total: plan.FetchTotal(),
	}
}

// itemProgress is an io.Writer counting the bytes of one fetch.
type itemProgress struct {
	t      *tracker
	path   string
	size   int64
	loaded int64
}

func (t *tracker) start(it Item) *itemProgress {
	return &itemProgress{t: t, path: it.File.Path, size: it.File.Size}
}

func (ip *itemProgress) Write(p []byte) (int, error) {
	ip.t.add(ip, int64(len(p)))
	return len(p), nil
}

func (t *tracker) add(ip *itemProgress, n int64) {
	if n <= 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	ip.loaded += n
	if t.unit == UnitSize {
		t.loaded += n
	}

	itemTotal := max(ip.size, 0)
	itemLoaded := ip.loaded
	if ip.size >= 0 {
		itemLoaded = min(itemLoaded, itemTotal)
	}
	t.emit(Progress{
		Unit:       t.unit,
		Item:       ip.path,
		Loaded:     min(t.loaded, t.total),
		Total:      t.total,
		ItemLoaded: itemLoaded,
		ItemTotal:  itemTotal,
	})
}

// done emits the final event of an item, with ItemLoaded equal to
// ItemTotal. Bytes the item did not deliver, as for a skipped file, are
// credited so Loaded still reaches Total.
func (t *tracker) done(ip *itemProgress) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch {
	case t.unit == UnitCount:
		t.loaded++
	case ip.size > ip.loaded:
		t.loaded += ip.size - ip.loaded
	}
	itemTotal := ip.loaded
	if ip.size >= 0 {
		itemTotal = ip.size
	}
	t.emit(Progress{
		Unit:       t.unit,
		Item:       ip.path,
		Loaded:     min(t.loaded, t.total),
		Total:      t.total,
		ItemLoaded: itemTotal,
		ItemTotal:  itemTotal,
	})
}
