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

type SetTitleParams struct {
	Title string `json:"title" validate:"required,max=256"`
}

type OpenExternalParams struct {
	URL string `json:"url" validate:"required,external_url"`
}

type OpenDirParams struct {
	Path string `json:"path" validate:"required"`
}

type UpdateActivityParams struct {
	Kind string `json:"kind" validate:"required,oneof=default login servers profile game"`
}

type LoginParams struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
	Remember bool   `json:"remember"`
}

type LoginWithTokenParams struct {
	Token string `json:"token" validate:"required"`
}

// ServerParams names a server by its title.
type ServerParams struct {
	Title string `json:"title" validate:"required"`
}

type SetFieldParams struct {
	Value any    `json:"value"`
	Field string `json:"field" validate:"required,setting_field"`
}

type GetFieldParams struct {
	Field string `json:"field" validate:"required,setting_field"`
}
