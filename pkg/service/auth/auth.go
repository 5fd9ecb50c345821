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

// Package auth owns the player's launch-server session.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/helpers/syncutil"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/launchserver"
	"github.com/rs/zerolog/log"
)

const (
	KindInvalidCredentials = "invalid_credentials"
	KindExpiredToken       = "expired_token"
	KindNetwork            = "network"
	KindNotAuthenticated   = "not_authenticated"
)

var ErrNotAuthenticated = &Error{kind: KindNotAuthenticated, Err: errors.New("not logged in")}

// Error is an authentication failure with a machine-readable kind.
type Error struct {
	Err  error
	kind string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Kind() string {
	return e.kind
}

// classify maps launch-server failures onto auth kinds.
func classify(err error) *Error {
	switch launchserver.RemoteCode(err) {
	case launchserver.CodeInvalidCredentials:
		return &Error{kind: KindInvalidCredentials, Err: err}
	case launchserver.CodeTokenExpired:
		return &Error{kind: KindExpiredToken, Err: err}
	}
	if errors.Is(err, launchserver.ErrNetwork) || errors.Is(err, launchserver.ErrClosed) {
		return &Error{kind: KindNetwork, Err: err}
	}
	var re *launchserver.RemoteError
	if errors.As(err, &re) {
		return &Error{kind: KindInvalidCredentials, Err: err}
	}
	return &Error{kind: KindNetwork, Err: err}
}

type Credentials struct {
	Login    string
	Password string
	Remember bool
}

// Session is the logged-in identity. AccessToken never leaves the main
// process; it is excluded from JSON.
type Session struct {
	Username    string `json:"username"`
	UserUUID    string `json:"userUuid"`
	AccessToken string `json:"-"`
	Valid       bool   `json:"valid"`
}

// API is the part of the launch-server client auth needs.
type API interface {
	Auth(ctx context.Context, login, password string) (launchserver.AuthResult, error)
	AuthToken(ctx context.Context, token string) (launchserver.AuthResult, error)
	SetAccessToken(token string)
}

// TokenStore persists the remembered token. *config.Instance implements it.
type TokenStore interface {
	SessionToken() string
	SaveSessionToken(username, token string) error
	ClearSessionToken() error
}

type Service struct {
	api     API
	store   TokenStore
	session Session
	mu      syncutil.RWMutex
}

func NewService(api API, store TokenStore) *Service {
	return &Service{api: api, store: store}
}

func (s *Service) Login(ctx context.Context, creds Credentials) (Session, error) {
	if creds.Login == "" || creds.Password == "" {
		return Session{}, &Error{kind: KindInvalidCredentials, Err: errors.New("login and password are required")}
	}

	res, err := s.api.Auth(ctx, creds.Login, creds.Password)
	if err != nil {
		authErr := classify(err)
		log.Warn().Err(err).Str("kind", authErr.Kind()).Msg("login failed")
		return Session{}, authErr
	}

	sess := s.adopt(res)
	if creds.Remember {
		if err := s.store.SaveSessionToken(sess.Username, sess.AccessToken); err != nil {
			log.Error().Err(err).Msg("failed to remember session token")
		}
	}

	log.Info().Str("username", sess.Username).Msg("logged in")
	return sess, nil
}

// LoginWithToken resumes a session. If the token was the remembered one,
// the refreshed token replaces it on disk.
func (s *Service) LoginWithToken(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Session{}, &Error{kind: KindExpiredToken, Err: errors.New("empty token")}
	}

	res, err := s.api.AuthToken(ctx, token)
	if err != nil {
		authErr := classify(err)
		if authErr.Kind() == KindExpiredToken && s.store.SessionToken() == token {
			if err := s.store.ClearSessionToken(); err != nil {
				log.Error().Err(err).Msg("failed to clear expired session token")
			}
		}
		log.Warn().Err(err).Str("kind", authErr.Kind()).Msg("token login failed")
		return Session{}, authErr
	}

	sess := s.adopt(res)
	if s.store.SessionToken() == token && sess.AccessToken != token {
		if err := s.store.SaveSessionToken(sess.Username, sess.AccessToken); err != nil {
			log.Error().Err(err).Msg("failed to update session token")
		}
	}

	log.Info().Str("username", sess.Username).Msg("resumed session")
	return sess, nil
}

// Restore logs in silently with the remembered token. It reports false
// when there is nothing to restore.
func (s *Service) Restore(ctx context.Context) (Session, bool, error) {
	token := s.store.SessionToken()
	if token == "" {
		return Session{}, false, nil
	}
	sess, err := s.LoginWithToken(ctx, token)
	if err != nil {
		return Session{}, true, err
	}
	return sess, true, nil
}

// Session returns the current session, if any.
func (s *Service) Session() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session, s.session.Valid
}

// Logout drops the session and the remembered token.
func (s *Service) Logout() error {
	s.mu.Lock()
	s.session = Session{}
	s.mu.Unlock()
	s.api.SetAccessToken("")

	if err := s.store.ClearSessionToken(); err != nil {
		return fmt.Errorf("failed to log out: %w", err)
	}
	log.Info().Msg("logged out")
	return nil
}

func (s *Service) adopt(res launchserver.AuthResult) Session {
	sess := Session{
		Username:    res.Username,
		UserUUID:    res.UserUUID,
		AccessToken: res.AccessToken,
		Valid:       true,
	}
	s.mu.Lock()
	s.session = sess
	s.mu.Unlock()
	s.api.SetAccessToken(sess.AccessToken)
	return sess
}
