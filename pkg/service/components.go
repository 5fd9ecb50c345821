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
	"context"
	"fmt"
	"strings"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/config"
)

// Component is one node of the service graph. Build runs exactly once,
// after every dependency has been built. InitHandlers registers the
// component's Bridge collaborators and runs before the Bridge starts.
type Component struct {
	Build        func(ctx context.Context, s *Services) error
	InitHandlers func(s *Services) error
	Name         string
	Deps         []string
}

// Order sorts components so every one comes after its dependencies.
// Independent components keep their declaration order. A duplicate name,
// an unknown dependency or a cycle is a configuration error and nothing
// is returned.
func Order(components []Component) ([]Component, error) {
	index := make(map[string]int, len(components))
	for i, c := range components {
		if c.Name == "" {
			return nil, &config.ConfigurationError{
				Setting: "components",
				Reason:  fmt.Sprintf("component %d has no name", i),
			}
		}
		if _, ok := index[c.Name]; ok {
			return nil, &config.ConfigurationError{
				Setting: "components",
				Reason:  "duplicate component " + c.Name,
			}
		}
		index[c.Name] = i
	}

	indegree := make([]int, len(components))
	dependents := make([][]int, len(components))
	for i, c := range components {
		for _, dep := range c.Deps {
			j, ok := index[dep]
			if !ok {
				return nil, &config.ConfigurationError{
					Setting: "components",
					Reason:  fmt.Sprintf("%s depends on unknown component %s", c.Name, dep),
				}
			}
			indegree[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	// Kahn's algorithm. The ready set is scanned in declaration order,
	// which keeps the result stable.
	ordered := make([]Component, 0, len(components))
	done := make([]bool, len(components))
	for len(ordered) < len(components) {
		next := -1
		for i := range components {
			if !done[i] && indegree[i] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			return nil, &config.ConfigurationError{
				Setting: "components",
				Reason:  "dependency cycle between " + strings.Join(pending(components, done), ", "),
			}
		}
		done[next] = true
		ordered = append(ordered, components[next])
		for _, d := range dependents[next] {
			indegree[d]--
		}
	}
	return ordered, nil
}

func pending(components []Component, done []bool) []string {
	var names []string
	for i, c := range components {
		if !done[i] {
			names = append(names, c.Name)
		}
	}
	return names
}
