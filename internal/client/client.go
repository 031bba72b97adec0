package client

import (
	"context"
	"log/slog"

	"github.com/tevino/abool"
)

// Adapter binds a key stream to one Channel. It is the only owner of the
// channel and runs every handler on the goroutine that calls Run.
type Adapter struct {
	logger   *slog.Logger
	channel  *Channel
	observer *Observer
	closed   *abool.AtomicBool
	stop     chan struct{}
}

type Option func(*options)

type options struct {
	dial DialFunc
}

// WithDialer replaces the default gorilla dialer.
func WithDialer(dial DialFunc) Option {
	return func(o *options) {
		o.dial = dial
	}
}

func NewAdapter(endpoint string, logger *slog.Logger, opts ...Option) *Adapter {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &Adapter{
		logger:  logger,
		channel: NewChannel(endpoint, o.dial),
		closed:  abool.New(),
		stop:    make(chan struct{}),
	}
	a.observer = NewObserver(logger, a.send)

	a.channel.OnOpen(func() { logger.Info("WebSocket connected") })
	a.channel.OnMessage(func(text string) { logger.Info("WebSocket received", "data", text) })
	a.channel.OnClose(func() { logger.Info("WebSocket closed") })
	a.channel.OnError(func(err error) { logger.Error("WebSocket error", "error", err) })
	return a
}

// Channel exposes the channel so callers can add their own handlers before
// Run.
func (a *Adapter) Channel() *Channel {
	return a.channel
}

func (a *Adapter) send(text string) {
	// Failures already reached the channel's error handlers.
	_ = a.channel.Send(text)
}

// Run connects and then serves key events and socket notifications one at a
// time until keys is closed, Ctrl+C arrives, Close is called or ctx ends.
// The channel is closed on return.
func (a *Adapter) Run(ctx context.Context, keys <-chan KeyEvent) error {
	defer a.channel.Close()

	if err := a.channel.Connect(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-a.stop:
			return nil
		case event, ok := <-keys:
			if !ok {
				return nil
			}
			if event.IsInterrupt() {
				return nil
			}
			a.observer.Observe(event)
		case n := <-a.channel.Notifications():
			a.channel.Dispatch(n)
		}
	}
}

// Close stops Run. It is safe to call from any goroutine and more than once.
func (a *Adapter) Close() {
	if a.closed.SetToIf(false, true) {
		close(a.stop)
	}
}
