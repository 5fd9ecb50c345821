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

// Package updater checks GitHub releases for a newer launcher build. It
// only reports; installing is left to the user.
package updater

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/config"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/rs/zerolog/log"
)

var ErrDevelopmentBuild = errors.New("development build, update check skipped")

type Release struct {
	Version string `json:"version"`
	URL     string `json:"url"`
	Notes   string `json:"notes,omitempty"`
}

// Source finds the newest release of a repository.
type Source interface {
	Latest(ctx context.Context, repo string) (Release, bool, error)
}

// GitHubSource reads releases through go-selfupdate's GitHub backend.
type GitHubSource struct{}

func (GitHubSource) Latest(ctx context.Context, repo string) (Release, bool, error) {
	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(repo))
	if err != nil {
		return Release{}, false, fmt.Errorf("failed to detect latest release: %w", err)
	}
	if !found {
		return Release{}, false, nil
	}
	return Release{
		Version: latest.Version(),
		URL:     latest.URL,
		Notes:   latest.ReleaseNotes,
	}, true, nil
}

type Checker struct {
	source  Source
	repo    string
	current string
	enabled bool
}

func NewChecker(cfg *config.Instance, source Source) *Checker {
	if source == nil {
		source = GitHubSource{}
	}
	return &Checker{
		source:  source,
		repo:    cfg.UpdateRepository(),
		current: config.AppVersion,
		enabled: cfg.UpdatesEnabled(),
	}
}

// SetCurrentVersion overrides the running version, for tests.
func (c *Checker) SetCurrentVersion(v string) {
	c.current = v
}

// Check returns the newest release when it is newer than the running
// build. Disabled checks and development builds report nothing.
func (c *Checker) Check(ctx context.Context) (Release, bool, error) {
	if !c.enabled {
		return Release{}, false, nil
	}

	current, err := semver.NewVersion(strings.TrimPrefix(c.current, "v"))
	if err != nil {
		return Release{}, false, ErrDevelopmentBuild
	}

	rel, found, err := c.source.Latest(ctx, c.repo)
	if err != nil || !found {
		return Release{}, false, err
	}

	latest, err := semver.NewVersion(strings.TrimPrefix(rel.Version, "v"))
	if err != nil {
		return Release{}, false, fmt.Errorf("invalid release version %q: %w", rel.Version, err)
	}
	if !latest.GreaterThan(current) {
		log.Debug().Str("current", current.String()).Str("latest", latest.String()).Msg("launcher is up to date")
		return Release{}, false, nil
	}

	log.Info().Str("current", current.String()).Str("latest", latest.String()).Msg("launcher update available")
	return rel, true, nil
}
