package client

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is the part of *websocket.Conn the channel uses.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

type DialFunc func(ctx context.Context, endpoint string) (Conn, error)

// DialWebsocket dials with a gorilla dialer.
func DialWebsocket(dialer *websocket.Dialer) DialFunc {
	return func(ctx context.Context, endpoint string) (Conn, error) {
		conn, _, err := dialer.DialContext(ctx, endpoint, nil)
		if err != nil {
			return nil, err
		}
		return conn, nil
	}
}

// run dials and then pumps inbound frames until the connection ends. It
// only posts notifications; Dispatch owns the state.
func (c *Channel) run(ctx context.Context) {
	conn, err := c.dial(ctx, c.endpoint)
	if err != nil {
		c.post(Notification{Kind: EventError, Err: &ConnectionError{Op: "dial", Err: err}})
		c.post(Notification{Kind: EventClosed})
		return
	}
	if !c.post(Notification{Kind: EventOpened, conn: conn}) {
		conn.Close()
		return
	}
	c.listen(conn)
}

func (c *Channel) listen(conn Conn) {
	defer conn.Close()
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			// A close frame from the peer is an orderly close, anything
			// else is reported before the close.
			if _, ok := err.(*websocket.CloseError); !ok {
				if !c.post(Notification{Kind: EventError, Err: &ConnectionError{Op: "read", Err: err}}) {
					return
				}
			}
			c.post(Notification{Kind: EventClosed})
			return
		}
		if !c.post(Notification{Kind: EventMessage, Text: string(message)}) {
			return
		}
	}
}

func (c *Channel) post(n Notification) bool {
	if c.isDone() {
		return false
	}
	select {
	case c.notifications <- n:
		// Shutdown may have drained the queue just before this landed.
		return !c.isDone()
	case <-c.done:
		return false
	}
}
