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

package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func names(cs []Component) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Name)
	}
	return out
}

func TestOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		components []Component
		want       []string
		wantErr    string
	}{
		{
			name: "no dependencies keeps declaration order",
			components: []Component{
				{Name: "c"}, {Name: "a"}, {Name: "b"},
			},
			want: []string{"c", "a", "b"},
		},
		{
			name: "dependency declared later moves first",
			components: []Component{
				{Name: "window", Deps: []string{"launch"}},
				{Name: "launch", Deps: []string{"client"}},
				{Name: "client"},
			},
			want: []string{"client", "launch", "window"},
		},
		{
			name: "ties broken by declaration order",
			components: []Component{
				{Name: "bridge"},
				{Name: "auth", Deps: []string{"bridge"}},
				{Name: "servers", Deps: []string{"bridge"}},
				{Name: "presence"},
			},
			want: []string{"bridge", "auth", "servers", "presence"},
		},
		{
			name:       "empty graph",
			components: nil,
			want:       []string{},
		},
		{
			name: "duplicate name",
			components: []Component{
				{Name: "a"}, {Name: "a"},
			},
			wantErr: "duplicate component a",
		},
		{
			name: "unknown dependency",
			components: []Component{
				{Name: "a", Deps: []string{"ghost"}},
			},
			wantErr: "a depends on unknown component ghost",
		},
		{
			name: "cycle",
			components: []Component{
				{Name: "root"},
				{Name: "a", Deps: []string{"b"}},
				{Name: "b", Deps: []string{"a"}},
			},
			wantErr: "dependency cycle between a, b",
		},
		{
			name: "self dependency",
			components: []Component{
				{Name: "a", Deps: []string{"a"}},
			},
			wantErr: "dependency cycle between a",
		},
		{
			name:       "missing name",
			components: []Component{{Name: "a"}, {}},
			wantErr:    "component 1 has no name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Order(tt.components)
			if tt.wantErr != "" {
				require.Error(t, err)
				var cfgErr *config.ConfigurationError
				require.ErrorAs(t, err, &cfgErr)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestComponents_Ordered(t *testing.T) {
	t.Parallel()

	order, err := Order(Components())
	require.NoError(t, err)
	got := names(order)

	pos := make(map[string]int, len(got))
	for i, n := range got {
		pos[n] = i
	}
	for _, c := range Components() {
		for _, dep := range c.Deps {
			assert.Less(t, pos[dep], pos[c.Name], "%s must come after %s", c.Name, dep)
		}
	}
	assert.Equal(t, ComponentBridge, got[0])
}

// genGraph draws an acyclic graph: component i may only depend on
// components with a lower index. The declaration order is shuffled.
func genGraph(t *rapid.T) []Component {
	n := rapid.IntRange(0, 12).Draw(t, "n")
	cs := make([]Component, n)
	for i := range cs {
		cs[i].Name = fmt.Sprintf("c%d", i)
		for j := range i {
			if rapid.Bool().Draw(t, fmt.Sprintf("edge%d_%d", i, j)) {
				cs[i].Deps = append(cs[i].Deps, cs[j].Name)
			}
		}
	}
	return rapid.Permutation(cs).Draw(t, "declared")
}

func TestOrder_Property(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		declared := genGraph(t)

		got, err := Order(declared)
		if err != nil {
			t.Fatalf("acyclic graph rejected: %v", err)
		}
		if len(got) != len(declared) {
			t.Fatalf("got %d components, want %d", len(got), len(declared))
		}

		pos := make(map[string]int, len(got))
		for i, c := range got {
			if _, dup := pos[c.Name]; dup {
				t.Fatalf("%s ordered twice", c.Name)
			}
			pos[c.Name] = i
		}
		for _, c := range declared {
			for _, dep := range c.Deps {
				if pos[dep] >= pos[c.Name] {
					t.Fatalf("%s ordered before its dependency %s", c.Name, dep)
				}
			}
		}
	})
}

func TestOrder_PropertyCycleRejected(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(2, 8).Draw(t, "n")
		cs := make([]Component, n)
		for i := range cs {
			cs[i].Name = fmt.Sprintf("c%d", i)
			if i > 0 {
				cs[i].Deps = []string{cs[i-1].Name}
			}
		}
		// Close the chain into a ring at a random point.
		from := rapid.IntRange(0, n-2).Draw(t, "from")
		cs[from].Deps = append(cs[from].Deps, cs[n-1].Name)

		_, err := Order(rapid.Permutation(cs).Draw(t, "declared"))
		var cfgErr *config.ConfigurationError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("cycle not reported as a configuration error: %v", err)
		}
	})
}
