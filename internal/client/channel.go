package client

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// State is the lifecycle position of a Channel. A channel that has not been
// connected yet reports StateClosed.
type State int

const (
	StateClosed State = iota
	StateConnecting
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

type EventKind int

const (
	EventOpened EventKind = iota
	EventMessage
	EventClosed
	EventError
)

// Notification is posted by the transport goroutines and applied by
// Dispatch on the event loop.
type Notification struct {
	Kind EventKind
	Text string
	Err  error

	conn Conn
}

const (
	notificationBuffer = 64
	writeTimeout       = 10 * time.Second
)

// Channel is one websocket connection to a fixed endpoint. Its state and
// handlers belong to the event loop: register handlers before Run and call
// Send, Close and Dispatch only from the loop goroutine.
type Channel struct {
	endpoint string
	dial     DialFunc

	state   State
	started bool
	conn    Conn

	notifications chan Notification
	done          chan struct{}
	closeOnce     sync.Once
	cancelDial    context.CancelFunc

	openHandlers    []func()
	messageHandlers []func(text string)
	closeHandlers   []func()
	errorHandlers   []func(err error)
}

func NewChannel(endpoint string, dial DialFunc) *Channel {
	if dial == nil {
		dial = DialWebsocket(websocket.DefaultDialer)
	}
	return &Channel{
		endpoint:      endpoint,
		dial:          dial,
		state:         StateClosed,
		notifications: make(chan Notification, notificationBuffer),
		done:          make(chan struct{}),
	}
}

func (c *Channel) Endpoint() string {
	return c.endpoint
}

func (c *Channel) State() State {
	return c.state
}

func (c *Channel) OnOpen(h func()) {
	c.openHandlers = append(c.openHandlers, h)
}

func (c *Channel) OnMessage(h func(text string)) {
	c.messageHandlers = append(c.messageHandlers, h)
}

func (c *Channel) OnClose(h func()) {
	c.closeHandlers = append(c.closeHandlers, h)
}

func (c *Channel) OnError(h func(err error)) {
	c.errorHandlers = append(c.errorHandlers, h)
}

// Notifications is drained by the event loop, which passes each value to
// Dispatch.
func (c *Channel) Notifications() <-chan Notification {
	return c.notifications
}

// Connect starts dialing in the background and returns at once. A channel
// connects at most once.
func (c *Channel) Connect(ctx context.Context) error {
	if c.started {
		return ErrAlreadyConnected
	}
	c.started = true
	c.state = StateConnecting

	dialCtx, cancel := context.WithCancel(ctx)
	c.cancelDial = cancel
	go c.run(dialCtx)
	return nil
}

// Send writes text as one frame. Outside StateOpen nothing is written and
// a *NotOpenError goes to the error handlers as well as the caller.
func (c *Channel) Send(text string) error {
	if c.state != StateOpen {
		err := &NotOpenError{State: c.state}
		c.emitError(err)
		return err
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.conn.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
		werr := &ConnectionError{Op: "write", Err: err}
		c.emitError(werr)
		return werr
	}
	return nil
}

// Dispatch applies one notification: it moves the state and runs the
// handlers for that event in registration order.
func (c *Channel) Dispatch(n Notification) {
	if c.isDone() {
		// Stale: the channel was torn down after this was queued.
		if n.conn != nil {
			n.conn.Close()
		}
		return
	}

	switch n.Kind {
	case EventOpened:
		c.conn = n.conn
		c.state = StateOpen
		for _, h := range c.openHandlers {
			h()
		}
	case EventMessage:
		for _, h := range c.messageHandlers {
			h(n.Text)
		}
	case EventError:
		c.emitError(n.Err)
	case EventClosed:
		c.finish()
	}
}

// Close tears the channel down. Close handlers run if the channel was
// connecting or open. Calling Close again does nothing.
func (c *Channel) Close() error {
	if c.isDone() {
		return nil
	}
	c.started = true
	if c.state == StateClosed {
		c.shutdown()
		return nil
	}
	if c.state == StateOpen {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	}
	c.finish()
	return nil
}

func (c *Channel) emitError(err error) {
	for _, h := range c.errorHandlers {
		h(err)
	}
}

func (c *Channel) finish() {
	c.state = StateClosed
	c.shutdown()
	for _, h := range c.closeHandlers {
		h()
	}
}

func (c *Channel) shutdown() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.cancelDial != nil {
			c.cancelDial()
		}
		if c.conn != nil {
			c.conn.Close()
		}
		c.drain()
	})
}

// drain closes connections still queued for the event loop.
func (c *Channel) drain() {
	for {
		select {
		case n := <-c.notifications:
			if n.conn != nil {
				n.conn.Close()
			}
		default:
			return
		}
	}
}

func (c *Channel) isDone() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}
