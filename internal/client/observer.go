package client

import (
	"log/slog"
	"strings"

	"github.com/0ya-sh0/GoWASD/internal/protocol"
)

// Observer turns direction key presses into command frames.
type Observer struct {
	logger *slog.Logger
	emit   func(text string)
}

// NewObserver sends every accepted frame to emit. emit owns failure
// reporting; the observer never retries or buffers.
func NewObserver(logger *slog.Logger, emit func(text string)) *Observer {
	return &Observer{logger: logger, emit: emit}
}

// Accept normalizes the key name and reports whether it is W, A, S or D.
func Accept(event KeyEvent) (protocol.Key, bool) {
	key := protocol.Key(strings.ToUpper(event.Key))
	return key, protocol.IsDirection(key)
}

// Observe handles one key-down. Every accepted event produces exactly one
// emit, held keys included.
func (o *Observer) Observe(event KeyEvent) {
	key, ok := Accept(event)
	if !ok {
		return
	}
	text, err := protocol.Encode(protocol.NewCommand(key))
	if err != nil {
		o.logger.Error("encode command", "key", string(key), "error", err)
		return
	}
	o.logger.Info("WebSocket send", "data", text)
	o.emit(text)
}
