package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/0ya-sh0/GoWASD/internal/protocol"
)

const writeTimeout = 10 * time.Second

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	if s.shuttingDown.IsSet() {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	id := uuid.New()
	logger := s.logger.With("session", id.String())
	if !s.broker.Join(id, conn) {
		return
	}
	defer s.broker.Leave(id)

	logger.Info("New WebSocket connection", "remote", r.RemoteAddr)
	s.serveSession(conn, logger)
	logger.Info("WebSocket connection closed")
}

func (s *Server) serveSession(conn *websocket.Conn, logger *slog.Logger) {
	for {
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			if _, ok := err.(*websocket.CloseError); !ok {
				logger.Warn("WebSocket error", "error", err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		logger.Info("Received", "data", string(message))
		s.execute(message, logger)

		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			logger.Warn("Error sending message", "error", err)
			return
		}
	}
}

// execute applies a command frame. Frames that are not commands are only
// echoed.
func (s *Server) execute(message []byte, logger *slog.Logger) {
	cmd, err := protocol.Decode(message)
	if err != nil {
		logger.Warn("Failed to deserialize as command", "error", err)
		return
	}
	if cmd.Type != protocol.MESSAGE_TYPE_CMD {
		return
	}
	if err := s.executor.Execute(cmd.Payload); err != nil {
		logger.Warn("Unknown command", "payload", string(cmd.Payload), "error", err)
	}
}
