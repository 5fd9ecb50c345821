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

package models

import (
	"github.com/ZaparooProject/zaparoo-launcher/pkg/service/launch"
)

type StartGameResponse struct {
	LaunchID string `json:"launchId"`
}

type StopGameResponse struct {
	Stopping bool `json:"stopping"`
}

type FieldResponse struct {
	Value any    `json:"value"`
	Field string `json:"field"`
}

// TotalMemoryResponse is the installed memory in megabytes.
type TotalMemoryResponse struct {
	Total uint64 `json:"total"`
}

// ProgressEvent is sent on serverPanel.progress.
type ProgressEvent struct {
	LaunchID string `json:"launchId"`
	launch.Progress
	Percent float64 `json:"percent"`
}

// ConsoleEvent is sent on serverPanel.console.
type ConsoleEvent struct {
	LaunchID string `json:"launchId"`
	Text     string `json:"text"`
}

// GameEndedEvent is sent on serverPanel.gameEnded, once per launch.
type GameEndedEvent struct {
	LaunchID string `json:"launchId"`
	launch.Terminal
}

const (
	WindowActionShow     = "show"
	WindowActionHide     = "hide"
	WindowActionClose    = "close"
	WindowActionSetTitle = "setTitle"
)

// WindowControlEvent asks the UI shell to change its window.
type WindowControlEvent struct {
	Action string `json:"action"`
	Title  string `json:"title,omitempty"`
}

type UpdateAvailableEvent struct {
	Version string `json:"version"`
	URL     string `json:"url"`
	Notes   string `json:"notes,omitempty"`
}
