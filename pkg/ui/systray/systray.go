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

// Package systray is the launcher's tray icon and menu.
package systray

import (
	"runtime"
	"sync"
	"time"

	"fyne.io/systray"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/config"
	"github.com/nixinwang/dialog"
	"github.com/rs/zerolog/log"
)

// Actions are what the menu items do. Unset actions are ignored.
type Actions struct {
	Show        func()
	OpenDataDir func()
	Quit        func()
}

type Tray struct {
	actions Actions
	title   string
	icon    []byte
	mu      sync.Mutex
}

func New(title string, icon []byte) *Tray {
	return &Tray{title: title, icon: icon}
}

// Setup sets the menu actions. It may be called before or after Run.
func (t *Tray) Setup(actions Actions) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.actions = actions
}

func (t *Tray) do(pick func(Actions) func()) {
	t.mu.Lock()
	fn := pick(t.actions)
	t.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (t *Tray) onReady() {
	systray.SetIcon(t.icon)
	if runtime.GOOS != "darwin" {
		systray.SetTitle(t.title)
	}
	systray.SetTooltip(t.title + " v" + config.AppVersion)

	mShow := systray.AddMenuItem("Show window", "Open the launcher window")
	mData := systray.AddMenuItem("Open data folder", "Open the launcher data folder")

	systray.AddSeparator()
	mVersion := systray.AddMenuItem("Version "+config.AppVersion, "")
	mVersion.Disable()
	mAbout := systray.AddMenuItem("About "+t.title, "")

	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Quit the launcher")

	go func() {
		for {
			select {
			case <-mShow.ClickedCh:
				t.do(func(a Actions) func() { return a.Show })
			case <-mData.ClickedCh:
				t.do(func(a Actions) func() { return a.OpenDataDir })
			case <-mAbout.ClickedCh:
				msg := "%s\n" +
					"Version v%s\n\n" +
					"© %d Zaparoo Contributors\n" +
					"License: GPLv3\n\n" +
					"www.zaparoo.org"
				dialog.Message(msg, t.title, config.AppVersion, time.Now().Year()).Title("About " + t.title).Info()
			case <-mQuit.ClickedCh:
				log.Info().Msg("quit from tray")
				t.do(func(a Actions) func() { return a.Quit })
				return
			}
		}
	}()
}

// Run shows the tray and blocks until Quit. It must run on the main
// goroutine.
func (t *Tray) Run(onExit func()) {
	systray.Run(t.onReady, onExit)
}

func Quit() {
	systray.Quit()
}
