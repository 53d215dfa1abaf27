package serial

import "github.com/rs/zerolog/log"

// ringBuffer is a fixed-capacity FIFO of console lines that could not be sent.
// Not safe for concurrent use; Port holds its mutex around every call.
type ringBuffer struct {
	buf      []string
	capacity int
	head     int // next write position
	count    int
	overflow bool // true if any line was dropped since last drain
}

func newRingBuffer(capacity int) *ringBuffer {
	return &ringBuffer{
		buf:      make([]string, capacity),
		capacity: capacity,
	}
}

func (r *ringBuffer) push(line string) {
	if r.count == r.capacity {
		if !r.overflow {
			log.Warn().Int("capacity", r.capacity).Msg("serial: backlog full, dropping oldest")
			r.overflow = true
		}
		// head already points at the oldest entry
		r.buf[r.head] = line
		r.head = (r.head + 1) % r.capacity
		return
	}
	r.buf[r.head] = line
	r.head = (r.head + 1) % r.capacity
	r.count++
}

func (r *ringBuffer) drainAll() []string {
	if r.count == 0 {
		return nil
	}

	out := make([]string, r.count)
	start := (r.head - r.count + r.capacity) % r.capacity
	for i := range out {
		out[i] = r.buf[(start+i)%r.capacity]
	}

	r.count = 0
	r.head = 0
	r.overflow = false
	return out
}

func (r *ringBuffer) len() int {
	return r.count
}
