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

package api

import (
	"errors"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/api/validation"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/service/launch"
)

const (
	KindInvalidParams = "invalid_params"
	KindDispatch      = "dispatch"
)

var (
	JSONRPCErrorParseError = models.ErrorObject{
		Code:    -32700,
		Message: "Parse error",
	}
	JSONRPCErrorInvalidRequest = models.ErrorObject{
		Code:    -32600,
		Message: "Invalid Request",
	}
	JSONRPCErrorMethodNotFound = models.ErrorObject{
		Code:    -32601,
		Message: "Method not found",
	}
	JSONRPCErrorInvalidParams = models.ErrorObject{
		Code:    -32602,
		Message: "Invalid params",
	}
	JSONRPCErrorInternalError = models.ErrorObject{
		Code:    -32603,
		Message: "Internal error",
	}
	JSONRPCErrorServerError = models.ErrorObject{
		Code:    -32000,
		Message: "Server error",
	}
)

type kinded interface {
	Kind() string
}

// ErrorObjectFor converts a handler error into the reply sent to the UI.
// Validation failures are invalid params, errors with a Kind are server
// errors carrying that kind, anything else is an internal dispatch error.
func ErrorObjectFor(err error) *models.ErrorObject {
	if validation.IsValidationError(err) {
		obj := JSONRPCErrorInvalidParams
		obj.Message = err.Error()
		obj.Data = &models.ErrorData{Kind: KindInvalidParams}
		return &obj
	}

	var k kinded
	if errors.As(err, &k) {
		obj := JSONRPCErrorServerError
		if k.Kind() == KindInvalidParams {
			obj = JSONRPCErrorInvalidParams
		}
		obj.Message = err.Error()
		obj.Data = &models.ErrorData{Kind: k.Kind()}

		var le *launch.Error
		if errors.As(err, &le) {
			obj.Data.Item = le.Item
			obj.Data.ExitCode = le.ExitCode
		}
		return &obj
	}

	obj := JSONRPCErrorInternalError
	if err != nil {
		obj.Message = "Internal error: " + err.Error()
	}
	obj.Data = &models.ErrorData{Kind: KindDispatch}
	return &obj
}
