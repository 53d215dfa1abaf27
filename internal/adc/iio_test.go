package adc

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIIOSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in_voltage3_raw")
	require.NoError(t, os.WriteFile(path, []byte("3012\n"), 0o644))

	v, err := NewIIO(path, time.Millisecond).Sample(time.Second)
	require.NoError(t, err)
	assert.Equal(t, uint16(3012), v)
}

func TestIIOTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing_raw")

	_, err := NewIIO(path, time.Millisecond).Sample(5 * time.Millisecond)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout))
}

func TestIIORejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in_voltage0_raw")
	require.NoError(t, os.WriteFile(path, []byte("busy"), 0o644))

	_, err := NewIIO(path, time.Millisecond).Sample(2 * time.Millisecond)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestFakeScript(t *testing.T) {
	f := NewFake(3000)
	f.Push(2900, 2800)
	f.TimeoutNext = 1

	_, err := f.Sample(time.Second)
	assert.ErrorIs(t, err, ErrTimeout)

	for _, want := range []uint16{2900, 2800, 2800} {
		v, err := f.Sample(time.Second)
		require.NoError(t, err)
		assert.Equal(t, want, v)
	}
	assert.Equal(t, 4, f.Samples)
}
