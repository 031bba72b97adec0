// Package server is the robot side of the link: it accepts websocket
// connections, turns command frames into motor motions and echoes every
// text frame back to the sender.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/tevino/abool"

	"github.com/0ya-sh0/GoWASD/internal/protocol"
)

// Executor performs one motion. *motor.Controller implements it.
type Executor interface {
	Execute(key protocol.Key) error
}

type Server struct {
	logger       *slog.Logger
	executor     Executor
	broker       *Broker
	upgrader     websocket.Upgrader
	shuttingDown *abool.AtomicBool
	httpServer   *http.Server
}

func New(executor Executor, logger *slog.Logger) *Server {
	s := &Server{
		logger:       logger,
		executor:     executor,
		broker:       NewBroker(logger),
		shuttingDown: abool.New(),
		upgrader: websocket.Upgrader{
			// Any page may drive the robot; there is no authentication.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	s.broker.Start()
	s.httpServer = &http.Server{Handler: s.Handler()}
	return s
}

// Handler routes the websocket endpoint at "/" and a health probe.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/", s.handleWebsocket)
	r.Get("/healthz", s.handleHealth)
	return r
}

func (s *Server) ListenAndServe(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", addr)
	}
	return s.Serve(lis)
}

// Serve blocks until Shutdown. It returns nil after a clean shutdown.
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("WebSocket server listening", "addr", "ws://"+lis.Addr().String())
	if err := s.httpServer.Serve(lis); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "serve")
	}
	return nil
}

// Shutdown stops accepting connections and closes every live session.
func (s *Server) Shutdown(ctx context.Context) error {
	if !s.shuttingDown.SetToIf(false, true) {
		return nil
	}
	err := s.httpServer.Shutdown(ctx)
	s.broker.Stop()
	return err
}

// Sessions returns the number of open websocket connections.
func (s *Server) Sessions() int {
	return s.broker.Count()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("content-type", "application/json")
	err := json.NewEncoder(w).Encode(map[string]interface{}{
		"status":   "ok",
		"sessions": s.Sessions(),
	})
	if err != nil {
		s.logger.Warn("write health response", "error", err)
	}
}
