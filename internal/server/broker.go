package server

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type JoinRequest struct {
	id   uuid.UUID
	conn *websocket.Conn
}

// Broker tracks the live websocket sessions so shutdown can close them;
// http.Server.Shutdown does not touch hijacked connections.
type Broker struct {
	logger        *slog.Logger
	sessions      map[uuid.UUID]*websocket.Conn
	joinRequests  chan JoinRequest
	leaveRequests chan uuid.UUID
	countRequests chan chan int
	stop          chan struct{}
	stopped       chan struct{}
}

func NewBroker(logger *slog.Logger) *Broker {
	return &Broker{
		logger:        logger,
		sessions:      make(map[uuid.UUID]*websocket.Conn),
		joinRequests:  make(chan JoinRequest),
		leaveRequests: make(chan uuid.UUID),
		countRequests: make(chan chan int),
		stop:          make(chan struct{}),
		stopped:       make(chan struct{}),
	}
}

func (b *Broker) handleStop() {
	for id, conn := range b.sessions {
		conn.Close()
		delete(b.sessions, id)
	}
	close(b.stopped)
}

func (b *Broker) Start() {
	go func() {
		for {
			select {
			case request := <-b.joinRequests:
				b.sessions[request.id] = request.conn
				b.logger.Debug("session joined", "session", request.id, "sessions", len(b.sessions))
			case id := <-b.leaveRequests:
				if _, has := b.sessions[id]; has {
					delete(b.sessions, id)
					b.logger.Debug("session left", "session", id, "sessions", len(b.sessions))
				}
			case reply := <-b.countRequests:
				reply <- len(b.sessions)
			case <-b.stop:
				b.handleStop()
				return
			}
		}
	}()
}

// Stop closes every session and ends the broker loop. Stop must be called
// once, after Start.
func (b *Broker) Stop() {
	close(b.stop)
	<-b.stopped
}

// Join registers conn. It returns false once the broker has stopped, in
// which case the caller owns closing conn.
func (b *Broker) Join(id uuid.UUID, conn *websocket.Conn) bool {
	select {
	case b.joinRequests <- JoinRequest{id: id, conn: conn}:
		return true
	case <-b.stopped:
		return false
	}
}

func (b *Broker) Leave(id uuid.UUID) {
	select {
	case b.leaveRequests <- id:
	case <-b.stopped:
	}
}

// Count returns the number of live sessions, or 0 after Stop.
func (b *Broker) Count() int {
	reply := make(chan int, 1)
	select {
	case b.countRequests <- reply:
		return <-reply
	case <-b.stopped:
		return 0
	}
}
