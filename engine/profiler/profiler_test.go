package profiler_test

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/pristine-go/engine/profiler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickReportsOncePerInterval(t *testing.T) {
	start := time.Unix(0, 0)
	p := profiler.NewProfiler(start, 0)

	for i := 1; i < 60; i++ {
		_, ok := p.Tick(start.Add(time.Duration(i) * time.Second / 60))
		require.False(t, ok)
	}
	s, ok := p.Tick(start.Add(time.Second))
	require.True(t, ok)
	assert.InDelta(t, 60, s.FPS, 1e-9)
	assert.Positive(t, s.SysMB)

	_, ok = p.Tick(start.Add(time.Second + time.Millisecond))
	assert.False(t, ok)
}

func TestTickCustomInterval(t *testing.T) {
	start := time.Unix(0, 0)
	p := profiler.NewProfiler(start, 100*time.Millisecond)

	s, ok := p.Tick(start.Add(200 * time.Millisecond))
	require.True(t, ok)
	assert.InDelta(t, 5, s.FPS, 1e-9)
}
