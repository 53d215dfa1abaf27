package event

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func TestDrainEmpty(t *testing.T) {
	m := NewMailbox()
	b := m.Drain()
	assert.True(t, b.Empty())
}

func TestFloodEdgeOverwrites(t *testing.T) {
	m := NewMailbox()
	m.PostFloodEdge(t0, true)
	m.PostFloodEdge(t0.Add(time.Second), false)

	b := m.Drain()
	require.NotNil(t, b.Flood)
	assert.False(t, b.Flood.Level)
	assert.Equal(t, t0.Add(time.Second), b.Flood.At)

	assert.True(t, m.Drain().Empty(), "drain must clear the slots")
}

func TestPressAndReleaseKeptSeparately(t *testing.T) {
	m := NewMailbox()
	m.PostButtonEdge(t0, true)
	m.PostButtonEdge(t0.Add(80*time.Millisecond), false)

	b := m.Drain()
	require.NotNil(t, b.Press)
	require.NotNil(t, b.Release)
	assert.Equal(t, 80*time.Millisecond, b.Release.Sub(*b.Press))
}

func TestPeriodicCounts(t *testing.T) {
	m := NewMailbox()
	m.PostPeriodicWake(t0)
	m.PostPeriodicWake(t0.Add(time.Minute))

	b := m.Drain()
	assert.Equal(t, 2, b.Periodic)
	assert.Equal(t, t0.Add(time.Minute), b.LastPeriodic)
	assert.Nil(t, b.Flood)
	assert.False(t, b.Empty())
}

func TestWakeCoalesces(t *testing.T) {
	m := NewMailbox()
	m.PostFloodEdge(t0, true)
	m.PostButtonEdge(t0, true)

	select {
	case <-m.Wake():
	default:
		t.Fatal("expected a wake signal")
	}
	select {
	case <-m.Wake():
		t.Fatal("expected a single coalesced wake signal")
	default:
	}
}

func TestConcurrentPosts(t *testing.T) {
	m := NewMailbox()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.PostPeriodicWake(t0)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, m.Drain().Periodic)
}
