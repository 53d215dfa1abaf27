// Package serial writes the appliance's line-oriented status console.
package serial

import (
	"fmt"
	"io"
	"sync"

	goserial "github.com/jacobsa/go-serial/serial"
	"github.com/rs/zerolog/log"
)

// Console receives one status line per state transition.
type Console interface {
	Line(text string)
}

// DefaultBacklog is the number of unsent lines kept while the port fails.
const DefaultBacklog = 64

// Port is a Console on a byte stream. Lines that fail to transmit are kept
// in a bounded backlog and replayed, oldest first, before the next line.
type Port struct {
	mu      sync.Mutex
	w       io.WriteCloser
	backlog *ringBuffer
}

// NewPort wraps w. backlog <= 0 selects DefaultBacklog.
func NewPort(w io.WriteCloser, backlog int) *Port {
	if backlog <= 0 {
		backlog = DefaultBacklog
	}
	return &Port{w: w, backlog: newRingBuffer(backlog)}
}

// Open opens a tty at baud, 8N1, keeping up to backlog unsent lines.
func Open(name string, baud uint, backlog int) (*Port, error) {
	rwc, err := goserial.Open(goserial.OpenOptions{
		PortName:        name,
		BaudRate:        baud,
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", name, err)
	}
	return NewPort(rwc, backlog), nil
}

// Line writes text terminated by CRLF.
func (p *Port) Line(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pending := append(p.backlog.drainAll(), text)
	for i, l := range pending {
		if _, err := io.WriteString(p.w, l+"\r\n"); err != nil {
			log.Warn().Err(err).Int("buffered", len(pending)-i).Msg("serial: write failed, buffering")
			for _, rest := range pending[i:] {
				p.backlog.push(rest)
			}
			return
		}
	}
}

// Pending returns the number of buffered lines.
func (p *Port) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.backlog.len()
}

// Close closes the underlying port.
func (p *Port) Close() error {
	return p.w.Close()
}
