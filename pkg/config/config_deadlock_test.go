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

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SetField saves while holding the write lock; with -tags=deadlock a
// recursive lock in that path panics here.
func TestSetField_NoRecursiveLock(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t)

	done := make(chan error, 1)
	go func() {
		done <- cfg.SetField("memory", 1536)
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("SetField deadlocked")
	}
}

func TestSettings_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t)

	done := make(chan struct{})
	for i := range 8 {
		go func() {
			for j := range 20 {
				if i%2 == 0 {
					_ = cfg.SetField("memory", 1024+j)
				} else {
					_, _ = cfg.AllFields()
					_ = cfg.Launcher()
				}
			}
			done <- struct{}{}
		}()
	}

	for range 8 {
		select {
		case <-done:
		case <-time.After(10 * time.Second):
			t.Fatal("concurrent settings access deadlocked")
		}
	}
	assert.GreaterOrEqual(t, cfg.Launcher().Memory, 1024)
}
