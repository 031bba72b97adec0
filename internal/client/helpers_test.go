package client

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

const waitTimeout = 5 * time.Second

func waitFor[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for event")
	}
	var zero T
	return zero
}

func expectNone[T any](t *testing.T, ch <-chan T, d time.Duration) {
	t.Helper()
	select {
	case v := <-ch:
		t.Fatalf("unexpected event: %v", v)
	case <-time.After(d):
	}
}

type logRecord struct {
	Level slog.Level
	Msg   string
	Attrs map[string]string
}

// recorder is a slog.Handler that keeps every record for assertions.
type recorder struct {
	mu      sync.Mutex
	records []logRecord
}

func newRecordingLogger() (*slog.Logger, *recorder) {
	r := &recorder{}
	return slog.New(r), r
}

func (r *recorder) Enabled(context.Context, slog.Level) bool { return true }

func (r *recorder) Handle(_ context.Context, rec slog.Record) error {
	attrs := make(map[string]string)
	rec.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.String()
		return true
	})
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, logRecord{Level: rec.Level, Msg: rec.Message, Attrs: attrs})
	return nil
}

func (r *recorder) WithAttrs([]slog.Attr) slog.Handler { return r }

func (r *recorder) WithGroup(string) slog.Handler { return r }

func (r *recorder) find(msg string) []logRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []logRecord
	for _, rec := range r.records {
		if rec.Msg == msg {
			out = append(out, rec)
		}
	}
	return out
}

func (r *recorder) count(msg string) int {
	return len(r.find(msg))
}

type readResult struct {
	typ  int
	data []byte
	err  error
}

// fakeConn is an in-memory Conn. Reads block until the test pushes a result
// or the conn is closed.
type fakeConn struct {
	mu       sync.Mutex
	writes   []string
	controls []int
	closed   bool
	writeErr error
	reads    chan readResult
}

func newFakeConn() *fakeConn {
	return &fakeConn{reads: make(chan readResult, 8)}
}

func (f *fakeConn) push(typ int, data string, err error) {
	f.reads <- readResult{typ: typ, data: []byte(data), err: err}
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	r, ok := <-f.reads
	if !ok {
		return 0, nil, io.EOF
	}
	return r.typ, r.data, r.err
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writes = append(f.writes, string(data))
	return nil
}

func (f *fakeConn) WriteControl(messageType int, data []byte, deadline time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.controls = append(f.controls, messageType)
	return nil
}

func (f *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.reads)
	}
	return nil
}

func (f *fakeConn) written() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.writes...)
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func dialFake(conn *fakeConn) DialFunc {
	return func(ctx context.Context, endpoint string) (Conn, error) {
		return conn, nil
	}
}

func normalClose() error {
	return &websocket.CloseError{Code: websocket.CloseNormalClosure}
}
