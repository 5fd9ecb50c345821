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
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Command is a fully expanded game command line.
type Command struct {
	Path string
	Dir  string
	Args []string
	Env  []string
}

// placeholders maps the ${name} tokens profiles may use to their values.
func placeholders(req Request, root string) *strings.Replacer {
	return strings.NewReplacer(
		"${username}", req.Session.Username,
		"${uuid}", req.Session.UserUUID,
		"${accessToken}", req.Session.AccessToken,
		"${gameDir}", root,
		"${version}", req.Profile.Version,
		"${serverHost}", req.Server.Host,
		"${serverPort}", strconv.Itoa(req.Server.Port),
		"${memory}", strconv.Itoa(req.Settings.Memory),
	)
}

// BuildCommand expands the profile's command line. The optional argument
// groups are added when the matching setting is on. An executable with a
// path separator is resolved inside the client directory.
//
//nolint:gocritic // request is an immutable snapshot
func BuildCommand(req Request, root string) (Command, error) {
	p := req.Profile
	if strings.TrimSpace(p.Executable) == "" {
		return Command{}, &Error{kind: KindProcessSpawn, Err: ErrNoExecutable}
	}

	r := placeholders(req, root)
	expand := func(args []string) []string {
		out := make([]string, 0, len(args))
		for _, a := range args {
			out = append(out, r.Replace(a))
		}
		return out
	}

	args := expand(p.Args)
	if req.Settings.Memory > 0 {
		args = append(args, expand(p.MemoryArgs)...)
	}
	if req.Settings.FullScreen {
		args = append(args, expand(p.FullScreenArgs)...)
	}
	if req.Settings.AutoConnect {
		args = append(args, expand(p.AutoConnectArgs)...)
	}

	exe := r.Replace(p.Executable)
	if !filepath.IsAbs(exe) && strings.ContainsAny(exe, `/\`) {
		resolved, err := safeJoin(root, filepath.ToSlash(exe))
		if err != nil {
			return Command{}, &Error{kind: KindProcessSpawn, Item: exe, Err: err}
		}
		exe = resolved
	}

	keys := make([]string, 0, len(p.Env))
	for k := range p.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	env := os.Environ()
	for _, k := range keys {
		env = append(env, k+"="+r.Replace(p.Env[k]))
	}

	return Command{
		Path: exe,
		Dir:  root,
		Args: args,
		Env:  env,
	}, nil
}
