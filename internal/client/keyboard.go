package client

import (
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	KEY_NULL byte = 0x00

	KEY_CTRL_A byte = 0x01
	KEY_CTRL_C byte = 0x03 // interrupt
	KEY_CTRL_Z byte = 0x1A

	KEY_BACKSPACE byte = 0x7F // DEL (most terminals)

	KEY_TAB   byte = 0x09
	KEY_ENTER byte = 0x0D // carriage return
	KEY_ESC   byte = 0x1B
)

// Key names follow the DOM KeyboardEvent.key values so the observer sees
// the same identifiers a browser would hand it.
const (
	KeyArrowUp      = "ArrowUp"
	KeyArrowDown    = "ArrowDown"
	KeyArrowRight   = "ArrowRight"
	KeyArrowLeft    = "ArrowLeft"
	KeyHome         = "Home"
	KeyEnd          = "End"
	KeyInsert       = "Insert"
	KeyDelete       = "Delete"
	KeyPageUp       = "PageUp"
	KeyPageDown     = "PageDown"
	KeyF1           = "F1"
	KeyF2           = "F2"
	KeyF3           = "F3"
	KeyF4           = "F4"
	KeyEnter        = "Enter"
	KeyTab          = "Tab"
	KeyBackspace    = "Backspace"
	KeyEscape       = "Escape"
	KeyUnidentified = "Unidentified"
)

// Printable ASCII range
// 0x20 (space) → 0x7E (~)

func isPrintable(b byte) bool {
	return b >= 0x20 && b <= 0x7E
}

// csiFinal maps the final byte of "ESC [ ... X" and "ESC O X".
var csiFinal = map[byte]string{
	'A': KeyArrowUp,
	'B': KeyArrowDown,
	'C': KeyArrowRight,
	'D': KeyArrowLeft,
	'H': KeyHome,
	'F': KeyEnd,
	'P': KeyF1,
	'Q': KeyF2,
	'R': KeyF3,
	'S': KeyF4,
}

// csiTilde maps the first parameter of "ESC [ N ~".
var csiTilde = map[string]string{
	"1": KeyHome,
	"2": KeyInsert,
	"3": KeyDelete,
	"4": KeyEnd,
	"5": KeyPageUp,
	"6": KeyPageDown,
	"7": KeyHome,
	"8": KeyEnd,
}

// xterm modifier parameter, minus one.
const (
	modShift = 1 << iota
	modAlt
	modCtrl
)

const readBufferSize = 64

// KeyEvent is one key-down as reported by the terminal. Terminals have no
// key-up, and auto-repeat arrives as repeated events.
type KeyEvent struct {
	Key   string
	Ctrl  bool
	Alt   bool
	Shift bool
}

// IsInterrupt reports whether the event is Ctrl+C.
func (e KeyEvent) IsInterrupt() bool {
	return e.Ctrl && e.Key == "c"
}

// KeyReader decodes raw-mode terminal bytes into key events.
//
// A terminal writes each escape sequence with a single write, so sequences
// are decoded from the bytes one Read returns. An ESC that ends its chunk is
// the Escape key.
type KeyReader struct {
	in      io.Reader
	buf     []byte
	pending []byte
}

func NewKeyReader(in io.Reader) *KeyReader {
	return &KeyReader{in: in, buf: make([]byte, readBufferSize)}
}

// Listen reads until the input fails, then closes events.
func (r *KeyReader) Listen(events chan<- KeyEvent) {
	for {
		event, err := r.ReadKey()
		if err != nil {
			close(events)
			break
		}
		events <- event
	}
}

func (r *KeyReader) fill() error {
	for len(r.pending) == 0 {
		n, err := r.in.Read(r.buf)
		if n > 0 {
			r.pending = append(r.pending[:0], r.buf[:n]...)
			return nil
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *KeyReader) ReadKey() (KeyEvent, error) {
	if err := r.fill(); err != nil {
		return KeyEvent{}, err
	}
	event, n := decodeKey(r.pending)
	r.pending = r.pending[n:]
	return event, nil
}

// decodeKey returns the first event in p and how many bytes it used.
func decodeKey(p []byte) (KeyEvent, int) {
	b := p[0]
	switch {
	case isPrintable(b):
		return KeyEvent{Key: string(rune(b))}, 1
	case b == KEY_ENTER:
		return KeyEvent{Key: KeyEnter}, 1
	case b == KEY_TAB:
		return KeyEvent{Key: KeyTab}, 1
	case b == KEY_BACKSPACE:
		return KeyEvent{Key: KeyBackspace}, 1
	case b >= KEY_CTRL_A && b <= KEY_CTRL_Z:
		return KeyEvent{Key: string(rune('a' + b - KEY_CTRL_A)), Ctrl: true}, 1
	case b == KEY_ESC:
		return decodeEscape(p)
	case b >= utf8.RuneSelf:
		if r, size := utf8.DecodeRune(p); r != utf8.RuneError {
			return KeyEvent{Key: string(r)}, size
		}
	}
	return KeyEvent{Key: KeyUnidentified}, 1
}

func decodeEscape(p []byte) (KeyEvent, int) {
	if len(p) == 1 {
		return KeyEvent{Key: KeyEscape}, 1
	}
	switch p[1] {
	case '[':
		// Parameter and intermediate bytes run up to a final byte in
		// 0x40-0x7E.
		for i := 2; i < len(p); i++ {
			if p[i] >= 0x40 && p[i] <= 0x7E {
				return decodeCSI(string(p[2:i]), p[i]), i + 1
			}
		}
		return KeyEvent{Key: KeyUnidentified}, len(p)
	case 'O':
		if len(p) < 3 {
			return KeyEvent{Key: KeyUnidentified}, len(p)
		}
		if name, ok := csiFinal[p[2]]; ok {
			return KeyEvent{Key: name}, 3
		}
		return KeyEvent{Key: KeyUnidentified}, 3
	}
	// ESC before anything else is Escape; the next byte is its own key.
	return KeyEvent{Key: KeyEscape}, 1
}

func decodeCSI(params string, final byte) KeyEvent {
	fields := strings.Split(params, ";")

	var name string
	var ok bool
	if final == '~' {
		name, ok = csiTilde[fields[0]]
	} else {
		name, ok = csiFinal[final]
	}
	if !ok {
		return KeyEvent{Key: KeyUnidentified}
	}

	event := KeyEvent{Key: name}
	if len(fields) == 2 {
		mod, err := strconv.Atoi(fields[1])
		if err != nil || mod < 1 {
			return KeyEvent{Key: KeyUnidentified}
		}
		mod--
		event.Shift = mod&modShift != 0
		event.Alt = mod&modAlt != 0
		event.Ctrl = mod&modCtrl != 0
	} else if len(fields) > 2 {
		return KeyEvent{Key: KeyUnidentified}
	}
	return event
}

// ScriptedKeys emits one key event per rune of keys and then closes.
func ScriptedKeys(keys string) <-chan KeyEvent {
	events := make(chan KeyEvent, len(keys))
	for _, k := range keys {
		events <- KeyEvent{Key: string(k)}
	}
	close(events)
	return events
}
