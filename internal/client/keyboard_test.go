package client

import (
	"bytes"
	"io"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, in io.Reader) []KeyEvent {
	t.Helper()
	events := make(chan KeyEvent, 64)
	NewKeyReader(in).Listen(events)

	var out []KeyEvent
	for e := range events {
		out = append(out, e)
	}
	return out
}

func TestReadKey(t *testing.T) {
	cases := []struct {
		name  string
		input []byte
		want  KeyEvent
	}{
		{"lower", []byte("w"), KeyEvent{Key: "w"}},
		{"upper", []byte("D"), KeyEvent{Key: "D"}},
		{"space", []byte(" "), KeyEvent{Key: " "}},
		{"enter", []byte{KEY_ENTER}, KeyEvent{Key: KeyEnter}},
		{"tab", []byte{KEY_TAB}, KeyEvent{Key: KeyTab}},
		{"backspace", []byte{KEY_BACKSPACE}, KeyEvent{Key: KeyBackspace}},
		{"ctrl-c", []byte{KEY_CTRL_C}, KeyEvent{Key: "c", Ctrl: true}},
		{"ctrl-a", []byte{KEY_CTRL_A}, KeyEvent{Key: "a", Ctrl: true}},
		{"ctrl-z", []byte{KEY_CTRL_Z}, KeyEvent{Key: "z", Ctrl: true}},
		{"up", []byte{KEY_ESC, '[', 'A'}, KeyEvent{Key: KeyArrowUp}},
		{"down", []byte{KEY_ESC, '[', 'B'}, KeyEvent{Key: KeyArrowDown}},
		{"right", []byte{KEY_ESC, '[', 'C'}, KeyEvent{Key: KeyArrowRight}},
		{"left", []byte{KEY_ESC, '[', 'D'}, KeyEvent{Key: KeyArrowLeft}},
		{"home", []byte{KEY_ESC, '[', 'H'}, KeyEvent{Key: KeyHome}},
		{"end", []byte{KEY_ESC, '[', 'F'}, KeyEvent{Key: KeyEnd}},
		{"bare escape", []byte{KEY_ESC}, KeyEvent{Key: KeyEscape}},
		{"unknown csi", []byte{KEY_ESC, '[', 'Z'}, KeyEvent{Key: KeyUnidentified}},
		{"null", []byte{KEY_NULL}, KeyEvent{Key: KeyUnidentified}},
		{"ss3 up", []byte{KEY_ESC, 'O', 'A'}, KeyEvent{Key: KeyArrowUp}},
		{"ss3 f1", []byte{KEY_ESC, 'O', 'P'}, KeyEvent{Key: KeyF1}},
		{"ctrl left", []byte("\x1b[1;5D"), KeyEvent{Key: KeyArrowLeft, Ctrl: true}},
		{"shift up", []byte("\x1b[1;2A"), KeyEvent{Key: KeyArrowUp, Shift: true}},
		{"alt right", []byte("\x1b[1;3C"), KeyEvent{Key: KeyArrowRight, Alt: true}},
		{"ctrl shift down", []byte("\x1b[1;6B"), KeyEvent{Key: KeyArrowDown, Ctrl: true, Shift: true}},
		{"delete", []byte("\x1b[3~"), KeyEvent{Key: KeyDelete}},
		{"ctrl page down", []byte("\x1b[6;5~"), KeyEvent{Key: KeyPageDown, Ctrl: true}},
		{"unknown tilde", []byte("\x1b[99~"), KeyEvent{Key: KeyUnidentified}},
		{"utf8", []byte("é"), KeyEvent{Key: "é"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := NewKeyReader(bytes.NewReader(c.input)).ReadKey()
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestListenClosesOnEOF(t *testing.T) {
	input := append([]byte("wq"), KEY_ESC, '[', 'A', 'S')
	got := readAll(t, bytes.NewReader(input))
	assert.Equal(t, []KeyEvent{{Key: "w"}, {Key: "q"}, {Key: KeyArrowUp}, {Key: "S"}}, got)
}

func TestLongSequencesLeakNoKeys(t *testing.T) {
	input := []byte("\x1b[1;5D\x1b[1;2A\x1b[5;3~\x1bOSw")
	got := readAll(t, bytes.NewReader(input))
	assert.Equal(t, []KeyEvent{
		{Key: KeyArrowLeft, Ctrl: true},
		{Key: KeyArrowUp, Shift: true},
		{Key: KeyPageUp, Alt: true},
		{Key: KeyF4},
		{Key: "w"},
	}, got)

	logger, _ := newRecordingLogger()
	var sent []string
	o := NewObserver(logger, func(text string) { sent = append(sent, text) })
	for _, e := range got {
		o.Observe(e)
	}
	assert.Equal(t, []string{`{"type":"cmd","payload":"W"}`}, sent)
}

func TestTruncatedSequenceIsDropped(t *testing.T) {
	assert.Equal(t, []KeyEvent{{Key: KeyUnidentified}}, readAll(t, bytes.NewReader([]byte("\x1b[1;5"))))
}

func TestEscapeDoesNotSwallowKeys(t *testing.T) {
	input := []byte{KEY_ESC, 'w', 'w'}
	want := []KeyEvent{{Key: KeyEscape}, {Key: "w"}, {Key: "w"}}

	// typed: every key arrives in its own read
	assert.Equal(t, want, readAll(t, iotest.OneByteReader(bytes.NewReader(input))))
	// pasted: one chunk
	assert.Equal(t, want, readAll(t, bytes.NewReader(input)))
}

func TestSequenceSplitFromFollowingKeys(t *testing.T) {
	r := NewKeyReader(bytes.NewReader([]byte("\x1b[Ad")))
	first, err := r.ReadKey()
	require.NoError(t, err)
	second, err := r.ReadKey()
	require.NoError(t, err)
	assert.Equal(t, KeyEvent{Key: KeyArrowUp}, first)
	assert.Equal(t, KeyEvent{Key: "d"}, second)
}

func TestIsInterrupt(t *testing.T) {
	assert.True(t, KeyEvent{Key: "c", Ctrl: true}.IsInterrupt())
	assert.False(t, KeyEvent{Key: "c"}.IsInterrupt())
	assert.False(t, KeyEvent{Key: "d", Ctrl: true}.IsInterrupt())
}

func TestScriptedKeys(t *testing.T) {
	var got []string
	for e := range ScriptedKeys("wasdq") {
		got = append(got, e.Key)
	}
	assert.Equal(t, []string{"w", "a", "s", "d", "q"}, got)
}

func TestCRLFWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewCRLFWriter(&buf)
	n, err := w.Write([]byte("one\ntwo\n"))
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, "one\r\ntwo\r\n", buf.String())
}
