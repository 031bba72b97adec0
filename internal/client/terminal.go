package client

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/term"
)

const (
	ESC = "\x1b"

	Reset = ESC + "[0m"
	Bold  = ESC + "[1m"
)

// Terminal puts a tty into raw mode so single key presses reach the reader
// without line buffering or echo.
type Terminal struct {
	fd       int
	out      io.Writer
	oldState *term.State
}

func NewTerminal(in *os.File, out io.Writer) *Terminal {
	return &Terminal{fd: int(in.Fd()), out: out}
}

func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func (t *Terminal) Setup() error {
	state, err := term.MakeRaw(t.fd)
	if err != nil {
		return errors.Wrap(err, "enter raw mode")
	}
	t.oldState = state
	fmt.Fprint(t.out, Bold, "W A S D: drive     Ctrl+C: quit", Reset, "\r\n")
	return nil
}

func (t *Terminal) Restore() {
	if t.oldState == nil {
		return
	}
	term.Restore(t.fd, t.oldState)
	t.oldState = nil
}

// CRLFWriter turns "\n" into "\r\n". Raw mode disables output
// post-processing, so bare newlines would leave the cursor mid-line.
type CRLFWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func NewCRLFWriter(w io.Writer) *CRLFWriter {
	return &CRLFWriter{w: w}
}

func (c *CRLFWriter) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}
