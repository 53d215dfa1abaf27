package serial

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type flakyWriter struct {
	bytes.Buffer
	fail bool
}

func (w *flakyWriter) Write(p []byte) (int, error) {
	if w.fail {
		return 0, errors.New("tx fault")
	}
	return w.Buffer.Write(p)
}

func (w *flakyWriter) Close() error { return nil }

func TestPortWritesCRLF(t *testing.T) {
	w := &flakyWriter{}
	p := NewPort(w, 4)

	p.Line("flood guard")
	p.Line("valve open")

	assert.Equal(t, "flood guard\r\nvalve open\r\n", w.String())
	assert.Equal(t, 0, p.Pending())
}

func TestPortBuffersAndReplays(t *testing.T) {
	w := &flakyWriter{fail: true}
	p := NewPort(w, 4)

	p.Line("flood")
	p.Line("valve closed")
	assert.Equal(t, 2, p.Pending())
	assert.Empty(t, w.String())

	w.fail = false
	p.Line("entering sleep")

	assert.Equal(t, "flood\r\nvalve closed\r\nentering sleep\r\n", w.String())
	assert.Equal(t, 0, p.Pending())
}

func TestPortBacklogBounded(t *testing.T) {
	w := &flakyWriter{fail: true}
	p := NewPort(w, 2)

	p.Line("a")
	p.Line("b")
	p.Line("c")
	assert.Equal(t, 2, p.Pending())

	w.fail = false
	p.Line("d")
	assert.Equal(t, "b\r\nc\r\nd\r\n", w.String())
}

func TestFakeConsoleCount(t *testing.T) {
	f := NewFakeConsole()
	f.Line("flood")
	f.Line("valve closed")
	f.Line("flood")

	assert.Equal(t, 2, f.Count("flood"))
	assert.Equal(t, []string{"flood", "valve closed", "flood"}, f.Lines())

	f.Reset()
	assert.Empty(t, f.Lines())
}
