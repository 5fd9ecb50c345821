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

// Package helpers provides test servers and fixtures shared by the
// launcher's package tests.
package helpers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/launchserver"
	"github.com/google/uuid"
	"github.com/olahol/melody"
)

// FakeLaunchServer speaks the launch-server protocol from in-memory data:
// websocket JSON-RPC on /api and client files on /files/.
type FakeLaunchServer struct {
	Server *httptest.Server
	Melody *melody.Melody

	// Override, when set, answers a method before the built-in handlers.
	// Returning handled=false falls through.
	Override func(method string, params json.RawMessage) (result any, rerr *launchserver.RemoteError, handled bool)

	users     map[string]string
	tokens    map[string]string
	profiles  map[string]launchserver.Profile
	trees     map[string]GameTree
	served    map[string][]byte
	calls     map[string]int
	servers   []launchserver.Server
	omitSizes map[string]bool
	mu        sync.Mutex
}

func NewFakeLaunchServer(t *testing.T) *FakeLaunchServer {
	t.Helper()

	f := &FakeLaunchServer{
		Melody:    melody.New(),
		users:     make(map[string]string),
		tokens:    make(map[string]string),
		profiles:  make(map[string]launchserver.Profile),
		trees:     make(map[string]GameTree),
		served:    make(map[string][]byte),
		calls:     make(map[string]int),
		omitSizes: make(map[string]bool),
	}

	f.Melody.HandleMessage(func(s *melody.Session, msg []byte) {
		var req struct {
			Params json.RawMessage `json:"params"`
			Method string          `json:"method"`
			ID     uuid.UUID       `json:"id"`
		}
		if err := json.Unmarshal(msg, &req); err != nil {
			return
		}
		result, rerr := f.dispatch(req.Method, req.Params)
		resp := launchserver.Response{JSONRPC: "2.0", ID: req.ID, Error: rerr}
		if rerr == nil {
			resp.Result, _ = json.Marshal(result)
		}
		data, _ := json.Marshal(resp)
		_ = s.Write(data)
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/api", func(w http.ResponseWriter, r *http.Request) {
		_ = f.Melody.HandleRequest(w, r)
	})
	mux.HandleFunc("/files/", f.serveFile)

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func (f *FakeLaunchServer) Close() {
	_ = f.Melody.Close()
	f.Server.Close()
}

// WSURL is the websocket endpoint for launchserver.NewClientWithURL.
func (f *FakeLaunchServer) WSURL() string {
	return "ws" + strings.TrimPrefix(f.Server.URL, "http") + "/api"
}

func (f *FakeLaunchServer) FilesURL() string {
	return f.Server.URL + "/files"
}

func (f *FakeLaunchServer) AddUser(login, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[login] = password
}

// TokenFor returns the access token the fake issues for login.
func TokenFor(login string) string {
	return "token-" + login
}

func (f *FakeLaunchServer) AddServer(s launchserver.Server) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.servers = append(f.servers, s)
}

func (f *FakeLaunchServer) AddProfile(p launchserver.Profile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[p.UUID] = p
}

// SetTree sets the client files of dir.
func (f *FakeLaunchServer) SetTree(dir string, tree GameTree) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trees[dir] = tree
}

// OmitSizes makes the manifest of dir report unknown sizes.
func (f *FakeLaunchServer) OmitSizes(dir string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.omitSizes[dir] = true
}

// ServeInstead serves content for dir/path instead of the tree's bytes.
func (f *FakeLaunchServer) ServeInstead(dir, path string, content []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.served[dir+"/"+path] = content
}

func (f *FakeLaunchServer) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *FakeLaunchServer) dispatch(method string, params json.RawMessage) (any, *launchserver.RemoteError) {
	f.mu.Lock()
	f.calls[method]++
	override := f.Override
	f.mu.Unlock()

	if override != nil {
		if res, rerr, handled := override(method, params); handled {
			return res, rerr
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch method {
	case launchserver.MethodAuth:
		var p launchserver.AuthParams
		_ = json.Unmarshal(params, &p)
		pw, ok := f.users[p.Login]
		if !ok || pw != p.Password {
			return nil, &launchserver.RemoteError{Code: launchserver.CodeInvalidCredentials, Message: "wrong login or password"}
		}
		return f.issueLocked(p.Login), nil
	case launchserver.MethodAuthToken:
		var p launchserver.TokenParams
		_ = json.Unmarshal(params, &p)
		login, ok := f.tokens[p.Token]
		if !ok {
			return nil, &launchserver.RemoteError{Code: launchserver.CodeTokenExpired, Message: "token expired"}
		}
		return f.issueLocked(login), nil
	case launchserver.MethodServers:
		return launchserver.ServersResult{Servers: append([]launchserver.Server(nil), f.servers...)}, nil
	case launchserver.MethodProfile:
		var p launchserver.ProfileParams
		_ = json.Unmarshal(params, &p)
		prof, ok := f.profiles[p.UUID]
		if !ok {
			return nil, &launchserver.RemoteError{Code: launchserver.CodeNotFound, Message: "no such profile"}
		}
		return launchserver.ProfileResult{Profile: prof}, nil
	case launchserver.MethodUpdates:
		var p launchserver.UpdatesParams
		_ = json.Unmarshal(params, &p)
		tree, ok := f.trees[p.Dir]
		if !ok {
			return nil, &launchserver.RemoteError{Code: launchserver.CodeNotFound, Message: "no such dir"}
		}
		files := tree.Manifest()
		if f.omitSizes[p.Dir] {
			for i := range files {
				files[i].Size = launchserver.SizeUnknown
			}
		}
		return launchserver.UpdatesResult{Files: files}, nil
	default:
		return nil, &launchserver.RemoteError{Code: -32601, Message: "method not found"}
	}
}

func (f *FakeLaunchServer) issueLocked(login string) launchserver.AuthResult {
	token := TokenFor(login)
	f.tokens[token] = login
	return launchserver.AuthResult{
		Username:    login,
		UserUUID:    uuid.NewSHA1(uuid.NameSpaceOID, []byte(login)).String(),
		AccessToken: token,
	}
}

func (f *FakeLaunchServer) serveFile(w http.ResponseWriter, r *http.Request) {
	rel := strings.TrimPrefix(r.URL.Path, "/files/")
	dir, file, ok := strings.Cut(rel, "/")
	if !ok {
		http.NotFound(w, r)
		return
	}

	f.mu.Lock()
	content, override := f.served[rel]
	if !override {
		content, ok = f.trees[dir][file]
	}
	f.mu.Unlock()

	if !override && !ok {
		http.NotFound(w, r)
		return
	}
	_, _ = w.Write(content)
}
