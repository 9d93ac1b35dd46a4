package main

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBounce(t *testing.T) {
	tests := []struct {
		name             string
		pos, vel, limit  float32
		wantPos, wantVel float32
	}{
		{"inside", 5, 1, 10, 5, 1},
		{"below zero", -2, -3, 10, 2, 3},
		{"past limit", 12, 4, 10, 8, -4},
		{"no room", 3, 1, 0, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, vel := bounce(tt.pos, tt.vel, tt.limit)
			assert.Equal(t, tt.wantPos, pos)
			assert.Equal(t, tt.wantVel, vel)
		})
	}
}

func TestSwarmSpawnDespawn(t *testing.T) {
	s := newSwarm(8, 1, worker.NewDynamicWorkerPool(1, 16, time.Second), 1)
	records := s.spawn(10, 100, 100)
	require.Len(t, records, 10)
	assert.Len(t, s.particles, 10)
	for i, r := range records {
		assert.Same(t, s.particles[i].record, r)
	}

	removed := s.despawn(3)
	require.Len(t, removed, 3)
	assert.Same(t, records[7], removed[0])
	assert.Len(t, s.particles, 7)

	assert.Len(t, s.despawn(100), 7)
	assert.Empty(t, s.particles)
}

func TestSwarmStepStaysInBounds(t *testing.T) {
	pool := worker.NewDynamicWorkerPool(4, 256, time.Second)
	s := newSwarm(8, 7, pool, 4)
	s.spawn(200, 320, 240)

	for range 120 {
		s.step(1.0/30, 320, 240)
	}
	for _, p := range s.particles {
		assert.GreaterOrEqual(t, p.x, float32(0))
		assert.LessOrEqual(t, p.x, float32(320-8))
		assert.GreaterOrEqual(t, p.y, float32(0))
		assert.LessOrEqual(t, p.y, float32(240-8))
		// translation lives in the last column of the row-major transform
		assert.Equal(t, p.x, p.record.Transform[3])
		assert.Equal(t, p.y, p.record.Transform[7])
		assert.Equal(t, float32(8), p.record.Transform[0])
	}
}
