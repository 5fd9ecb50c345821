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

// Package api is the Bridge: the only way the UI process reaches the
// launcher's services. It serves a fixed catalog of JSON-RPC 2.0 channels
// over a loopback websocket and pushes events back as notifications.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/api/methods"
	apimiddleware "github.com/ZaparooProject/zaparoo-launcher/pkg/api/middleware"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/api/models/requests"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/assets"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/config"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/helpers/syncutil"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/olahol/melody"
	"github.com/rs/zerolog/log"
)

const (
	APIPath         = "/api"
	shutdownTimeout = 5 * time.Second
	maxMessageSize  = 1 << 20
	fireQueueSize   = 64
	fireQueueKey    = "fireQueue"
)

var (
	ErrAlreadyStarted = errors.New("bridge already started")
	ErrNotStarted     = errors.New("bridge not started")
)

// Services are the handlers' collaborators. Components fill in their part
// through Register before the Bridge starts.
type Services struct {
	Auth        requests.Auth
	Servers     requests.Servers
	Launcher    requests.Launcher
	Window      requests.Window
	Presence    requests.Presence
	TotalMemory func() (uint64, error)
}

// merge copies every set field of o into s.
func (s *Services) merge(o Services) {
	if o.Auth != nil {
		s.Auth = o.Auth
	}
	if o.Servers != nil {
		s.Servers = o.Servers
	}
	if o.Launcher != nil {
		s.Launcher = o.Launcher
	}
	if o.Window != nil {
		s.Window = o.Window
	}
	if o.Presence != nil {
		s.Presence = o.Presence
	}
	if o.TotalMemory != nil {
		s.TotalMemory = o.TotalMemory
	}
}

type Server struct {
	ctx       context.Context
	cfg       *config.Instance
	melody    *melody.Melody
	limiter   *apimiddleware.RateLimiter
	listener  net.Listener
	httpSrv   *http.Server
	dispatch  func(requests.RequestEnv) (any, error)
	cancel    context.CancelFunc
	onSession func(count int)
	services  Services
	inflight  sync.WaitGroup
	sessions  atomic.Int32
	mu        syncutil.RWMutex
	started   bool
}

func NewServer(cfg *config.Instance) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		ctx:      ctx,
		cancel:   cancel,
		cfg:      cfg,
		melody:   melody.New(),
		limiter:  apimiddleware.NewRateLimiter(nil),
		dispatch: methods.Dispatch,
	}
	s.melody.Config.MaxMessageSize = maxMessageSize
	s.melody.Upgrader.CheckOrigin = checkOrigin(cfg.BridgeAllowedOrigins())
	s.melody.HandleMessage(apimiddleware.WebSocketRateLimitHandler(s.limiter, s.handleWSMessage))
	s.melody.HandleConnect(func(session *melody.Session) {
		log.Debug().Str("addr", session.Request.RemoteAddr).Msg("ui connected")
		q := newFireQueue()
		session.Set(fireQueueKey, q)
		s.inflight.Add(1)
		go s.runFireQueue(q)
		s.sessionsChanged(s.sessions.Add(1))
	})
	s.melody.HandleDisconnect(func(session *melody.Session) {
		log.Debug().Str("addr", session.Request.RemoteAddr).Msg("ui disconnected")
		if q := fireQueueOf(session); q != nil {
			q.stop()
		}
		s.sessionsChanged(s.sessions.Add(-1))
	})
	return s
}

// Register adds handler collaborators. It must be called before Start so
// the catalog is complete when the first UI connects.
func (s *Server) Register(svc Services) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrAlreadyStarted
	}
	s.services.merge(svc)
	return nil
}

// OnSessionsChanged sets a callback receiving the number of connected UI
// sessions whenever one connects or disconnects.
func (s *Server) OnSessionsChanged(fn func(count int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSession = fn
}

func (s *Server) sessionsChanged(count int32) {
	s.mu.RLock()
	fn := s.onSession
	s.mu.RUnlock()
	if fn != nil {
		fn(int(count))
	}
}

// Sessions is the number of connected UI sessions.
func (s *Server) Sessions() int {
	return int(s.sessions.Load())
}

func (s *Server) env(ch models.Channel, id models.RPCID, params json.RawMessage) requests.RequestEnv {
	s.mu.RLock()
	svc := s.services
	s.mu.RUnlock()
	return requests.RequestEnv{
		Context:     s.ctx,
		Config:      s.cfg,
		Auth:        svc.Auth,
		Servers:     svc.Servers,
		Launcher:    svc.Launcher,
		Window:      svc.Window,
		Presence:    svc.Presence,
		TotalMemory: svc.TotalMemory,
		Channel:     ch,
		ID:          id,
		Params:      params,
	}
}

// call runs a handler, turning a panic into an error.
func (s *Server) call(env requests.RequestEnv) (result any, err error) { //nolint:gocritic // env is a value by convention
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("channel", string(env.Channel)).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("recovered from handler panic")
			result = nil
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return s.dispatch(env)
}

func sendResponse(session *melody.Session, id models.RPCID, result any) error {
	data, err := json.Marshal(models.ResponseObject{
		JSONRPC: models.JSONRPCVersion,
		ID:      id,
		Result:  result,
	})
	if err != nil {
		log.Error().Err(err).Msg("error marshalling response")
		return sendError(session, id, ErrorObjectFor(fmt.Errorf("unencodable result: %w", err)))
	}
	if err := session.Write(data); err != nil {
		return fmt.Errorf("error writing response: %w", err)
	}
	return nil
}

func sendError(session *melody.Session, id models.RPCID, obj *models.ErrorObject) error {
	log.Debug().Int("code", obj.Code).Str("message", obj.Message).Msg("sending error")
	data, err := json.Marshal(models.ResponseErrorObject{
		JSONRPC: models.JSONRPCVersion,
		ID:      id,
		Error:   obj,
	})
	if err != nil {
		return fmt.Errorf("error marshalling error response: %w", err)
	}
	if err := session.Write(data); err != nil {
		return fmt.Errorf("error writing error response: %w", err)
	}
	return nil
}

// handleRequest answers one request. Exactly one reply is written, even
// when the handler fails or panics.
func (s *Server) handleRequest(session *melody.Session, req *models.RequestObject, ch models.Channel) {
	env := s.env(ch, req.ID, req.Params)
	result, err := s.call(env)
	if err != nil {
		log.Warn().Err(err).Str("channel", string(ch)).Msg("request failed")
		if err := sendError(session, req.ID, ErrorObjectFor(err)); err != nil {
			log.Error().Err(err).Msg("error sending error response")
		}
		return
	}

	var then func()
	if d, ok := result.(methods.Deferred); ok {
		result, then = d.Result, d.Then
	}
	if err := sendResponse(session, req.ID, result); err != nil {
		log.Error().Err(err).Str("channel", string(ch)).Msg("error sending response")
	}
	if then != nil {
		then()
	}
}

// fireQueue runs one session's fire-and-forget messages in arrival order,
// off the session's read loop.
type fireQueue struct {
	ch   chan func()
	done chan struct{}
	once sync.Once
}

func newFireQueue() *fireQueue {
	return &fireQueue{
		ch:   make(chan func(), fireQueueSize),
		done: make(chan struct{}),
	}
}

func (q *fireQueue) stop() {
	q.once.Do(func() { close(q.done) })
}

func fireQueueOf(session *melody.Session) *fireQueue {
	v, ok := session.Get(fireQueueKey)
	if !ok {
		return nil
	}
	q, _ := v.(*fireQueue)
	return q
}

// runFireQueue works through a session's queue. Messages already queued
// when the session ends still run.
func (s *Server) runFireQueue(q *fireQueue) {
	defer s.inflight.Done()
	for {
		select {
		case fn := <-q.ch:
			fn()
		case <-q.done:
			for {
				select {
				case fn := <-q.ch:
					fn()
				default:
					return
				}
			}
		case <-s.ctx.Done():
			return
		}
	}
}

// enqueueNotification hands a fire-and-forget message to the session's
// queue so a slow handler never holds up the messages behind it.
func (s *Server) enqueueNotification(session *melody.Session, req *models.RequestObject, ch models.Channel) {
	run := func() { s.handleNotification(req, ch) }
	q := fireQueueOf(session)
	if q == nil {
		s.inflight.Add(1)
		go func() {
			defer s.inflight.Done()
			run()
		}()
		return
	}
	select {
	case q.ch <- run:
	case <-q.done:
		log.Debug().Str("channel", string(ch)).Msg("session closed, dropping message")
	case <-s.ctx.Done():
	}
}

// handleNotification runs a fire-and-forget channel. Failures are only
// logged since there is no one to reply to.
func (s *Server) handleNotification(req *models.RequestObject, ch models.Channel) {
	env := s.env(ch, req.ID, req.Params)
	if _, err := s.call(env); err != nil {
		log.Warn().Err(err).Str("channel", string(ch)).Msg("notification handler failed")
	}
}

func (s *Server) handleWSMessage(session *melody.Session, msg []byte) {
	// heartbeat
	if bytes.Equal(msg, []byte("ping")) {
		if err := session.Write([]byte("pong")); err != nil {
			log.Error().Err(err).Msg("sending pong")
		}
		return
	}

	if !json.Valid(msg) {
		log.Warn().Msg("bridge message is not valid json")
		obj := JSONRPCErrorParseError
		if err := sendError(session, models.NullRPCID, &obj); err != nil {
			log.Error().Err(err).Msg("error sending error response")
		}
		return
	}

	var req models.RequestObject
	if err := json.Unmarshal(msg, &req); err != nil || req.JSONRPC != models.JSONRPCVersion || req.Method == "" {
		if err == nil && req.Method == "" && req.JSONRPC == models.JSONRPCVersion {
			// a reply from the UI; the launcher never sends requests
			return
		}
		log.Warn().Err(err).Str("jsonrpc", req.JSONRPC).Msg("invalid bridge request")
		id := req.ID
		if id.IsAbsent() {
			id = models.NullRPCID
		}
		obj := JSONRPCErrorInvalidRequest
		if err := sendError(session, id, &obj); err != nil {
			log.Error().Err(err).Msg("error sending error response")
		}
		return
	}

	ch, shape, ok := models.LookupChannel(req.Method)
	if !ok {
		log.Warn().Str("method", req.Method).Msg("unknown bridge channel")
		if req.ID.IsAbsent() {
			return
		}
		obj := JSONRPCErrorMethodNotFound
		obj.Data = &models.ErrorData{Kind: KindDispatch}
		if err := sendError(session, req.ID, &obj); err != nil {
			log.Error().Err(err).Msg("error sending error response")
		}
		return
	}

	if req.ID.IsAbsent() {
		if shape != models.ShapeFireAndForget {
			log.Warn().Str("channel", string(ch)).Msg("request channel called without id, ignoring")
			return
		}
		s.enqueueNotification(session, &req, ch)
		return
	}

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		s.handleRequest(session, &req, ch)
	}()
}

// Notify pushes an event to every connected UI session.
func (s *Server) Notify(n models.Notification) {
	data, err := json.Marshal(models.NotificationObject{
		JSONRPC: models.JSONRPCVersion,
		Method:  string(n.Method),
		Params:  n.Params,
	})
	if err != nil {
		log.Error().Err(err).Msg("marshalling notification")
		return
	}
	if err := s.melody.Broadcast(data); err != nil && !errors.Is(err, melody.ErrClosed) {
		log.Error().Err(err).Str("event", string(n.Method)).Msg("broadcasting notification")
	}
}

// checkOrigin accepts shells that send no origin, pages served from a
// loopback host and any configured extra origin.
func checkOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if strings.EqualFold(a, origin) {
				return true
			}
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		host := u.Hostname()
		if strings.EqualFold(host, "localhost") {
			return true
		}
		ip := net.ParseIP(host)
		return ip != nil && ip.IsLoopback()
	}
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()

	r.Use(apimiddleware.LoopbackOnly)
	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: append([]string{"http://localhost:*", "http://127.0.0.1:*"}, s.cfg.BridgeAllowedOrigins()...),
		AllowedMethods: []string{"GET"},
		AllowedHeaders: []string{"Accept"},
	}))

	r.Get(APIPath, func(w http.ResponseWriter, r *http.Request) {
		if err := s.melody.HandleRequest(w, r); err != nil {
			log.Error().Err(err).Msg("handling websocket request")
		}
	})

	var ui http.FileSystem = http.FS(assets.UI())
	if dir := s.cfg.BridgeUIDir(); dir != "" {
		ui = http.Dir(dir)
	}
	r.Group(func(r chi.Router) {
		r.Use(apimiddleware.HTTPRateLimitMiddleware(s.limiter))
		r.Handle("/*", http.FileServer(ui))
	})

	return r
}

// Start listens on the configured loopback address and serves the Bridge
// in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrAlreadyStarted
	}

	addr := s.cfg.BridgeListen()
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return &config.ConfigurationError{Setting: "bridge.listen", Reason: "invalid address", Err: err}
	}
	if ip := net.ParseIP(host); host != "localhost" && (ip == nil || !ip.IsLoopback()) {
		return &config.ConfigurationError{
			Setting: "bridge.listen",
			Reason:  fmt.Sprintf("must be a loopback address: %s", addr),
		}
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = ln
	s.httpSrv = &http.Server{
		Handler:           s.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.started = true
	s.limiter.StartCleanup(s.ctx)

	go func() {
		if err := s.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("bridge server stopped")
		}
	}()

	log.Info().Str("url", s.URL()).Msg("bridge listening")
	return nil
}

// Addr is the bound listener address, empty before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// URL is the address the UI shell loads.
func (s *Server) URL() string {
	return "http://" + s.Addr() + "/"
}

func (s *Server) WSURL() string {
	return "ws://" + s.Addr() + APIPath
}

// Stop closes every session, waits for in-flight requests and shuts the
// listener down.
func (s *Server) Stop() error {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return ErrNotStarted
	}

	s.cancel()
	if err := s.melody.Close(); err != nil && !errors.Is(err, melody.ErrClosed) {
		log.Warn().Err(err).Msg("closing bridge sessions")
	}
	s.inflight.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpSrv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down bridge: %w", err)
	}
	log.Info().Msg("bridge stopped")
	return nil
}
