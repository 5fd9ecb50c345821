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

// Package launchserver is the client for the remote launch server: it
// authenticates players, lists servers and profiles, and serves the client
// file manifests and files. Calls are JSON-RPC 2.0 over one websocket.
package launchserver

import (
	"encoding/json"

	"github.com/google/uuid"
)

const (
	MethodAuth      = "auth"
	MethodAuthToken = "auth.token"
	MethodServers   = "servers"
	MethodProfile   = "profile"
	MethodUpdates   = "updates"
)

type AuthParams struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type TokenParams struct {
	Token string `json:"token"`
}

type ProfileParams struct {
	UUID string `json:"uuid"`
}

type UpdatesParams struct {
	Dir string `json:"dir"`
}

type AuthResult struct {
	Username    string `json:"username"`
	UserUUID    string `json:"userUuid"`
	AccessToken string `json:"accessToken"`
}

type Server struct {
	Title       string `json:"title"`
	Host        string `json:"host"`
	ProfileUUID string `json:"profileUuid"`
	Port        int    `json:"port"`
}

type ServersResult struct {
	Servers []Server `json:"servers"`
}

// Profile describes how to run one game client. Args may contain
// ${placeholders}; the optional arg groups are appended only when the
// matching user setting is on.
type Profile struct {
	Env             map[string]string `json:"env,omitempty"`
	UUID            string            `json:"uuid"`
	Title           string            `json:"title"`
	Version         string            `json:"version"`
	ClientDir       string            `json:"clientDir"`
	Executable      string            `json:"executable"`
	Args            []string          `json:"args"`
	MemoryArgs      []string          `json:"memoryArgs,omitempty"`
	FullScreenArgs  []string          `json:"fullScreenArgs,omitempty"`
	AutoConnectArgs []string          `json:"autoConnectArgs,omitempty"`
}

type ProfileResult struct {
	Profile Profile `json:"profile"`
}

// SizeUnknown marks a manifest entry whose size the server did not send.
const SizeUnknown int64 = -1

// HashedFile is one manifest entry. Size is SizeUnknown when the server
// left it out; zero is a real, empty file. An empty SHA1 skips the hash
// check.
type HashedFile struct {
	Path     string `json:"path"`
	SHA1     string `json:"sha1,omitempty"`
	Size     int64  `json:"size"`
	Optional bool   `json:"optional,omitempty"`
}

func (f HashedFile) KnownSize() bool {
	return f.Size >= 0
}

type hashedFileWire struct {
	Size     *int64 `json:"size,omitempty"`
	Path     string `json:"path"`
	SHA1     string `json:"sha1,omitempty"`
	Optional bool   `json:"optional,omitempty"`
}

func (f *HashedFile) UnmarshalJSON(data []byte) error {
	var w hashedFileWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err //nolint:wrapcheck // decoder errors carry their position
	}
	*f = HashedFile{Path: w.Path, SHA1: w.SHA1, Size: SizeUnknown, Optional: w.Optional}
	if w.Size != nil && *w.Size >= 0 {
		f.Size = *w.Size
	}
	return nil
}

func (f HashedFile) MarshalJSON() ([]byte, error) {
	w := hashedFileWire{Path: f.Path, SHA1: f.SHA1, Optional: f.Optional}
	if f.KnownSize() {
		size := f.Size
		w.Size = &size
	}
	return json.Marshal(w) //nolint:wrapcheck // plain struct
}

type UpdatesResult struct {
	Files []HashedFile `json:"files"`
}

// Request and Response are the wire envelopes. They are exported so test
// servers can speak the protocol.
type Request struct {
	Params  any       `json:"params,omitempty"`
	JSONRPC string    `json:"jsonrpc"`
	Method  string    `json:"method"`
	ID      uuid.UUID `json:"id"`
}

type Response struct {
	Error   *RemoteError    `json:"error,omitempty"`
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	ID      uuid.UUID       `json:"id"`
}
