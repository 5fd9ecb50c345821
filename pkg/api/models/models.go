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

// Package models holds the Bridge wire types: the JSON-RPC envelopes, the
// fixed channel catalog, and the params, results and events of each
// channel.
package models

import "encoding/json"

const JSONRPCVersion = "2.0"

// Notification is an event pushed to the UI. Params is already encoded.
type Notification struct {
	Method Event
	Params json.RawMessage
}

// RequestObject is a call from the UI. An absent ID makes it a
// notification.
type RequestObject struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      RPCID           `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// NotificationObject is the wire form of an event.
type NotificationObject struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// ErrorData carries the machine-readable failure kind. Item and ExitCode
// are set for launch failures.
type ErrorData struct {
	Kind     string `json:"kind"`
	Item     string `json:"item,omitempty"`
	ExitCode int    `json:"exitCode,omitempty"`
}

type ErrorObject struct {
	Data    *ErrorData `json:"data,omitempty"`
	Message string     `json:"message"`
	Code    int        `json:"code"`
}

type ResponseObject struct {
	Result  any          `json:"result"`
	Error   *ErrorObject `json:"error,omitempty"`
	JSONRPC string       `json:"jsonrpc"`
	ID      RPCID        `json:"id"`
}

// ResponseErrorObject is sent for failures so the result key is left out.
type ResponseErrorObject struct {
	Error   *ErrorObject `json:"error"`
	JSONRPC string       `json:"jsonrpc"`
	ID      RPCID        `json:"id"`
}

// RawResponseObject is a reply as seen by a client, result undecoded.
type RawResponseObject struct {
	Error   *ErrorObject    `json:"error,omitempty"`
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	ID      RPCID           `json:"id"`
}
