package main

import (
	"math/rand/v2"
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/pristine-go/common"
	"github.com/Carmen-Shannon/pristine-go/engine/renderer/instance"
)

// maxSpeed is the fastest a quad moves, in pixels per second.
const maxSpeed = 240

type particle struct {
	x, y   float32
	vx, vy float32
	record *instance.Record
}

// advance moves the particle by dt seconds, bouncing off the edges of a width x height area, and rewrites its
// record transform.
func (p *particle) advance(dt, width, height, size float32) {
	p.x, p.vx = bounce(p.x+p.vx*dt, p.vx, width-size)
	p.y, p.vy = bounce(p.y+p.vy*dt, p.vy, height-size)
	p.record.Transform = common.Translation(p.x, p.y, 0).Mul(common.Scaling(size, size, 1))
}

func bounce(pos, vel, limit float32) (float32, float32) {
	switch {
	case limit <= 0:
		return 0, vel
	case pos < 0:
		return min(-pos, limit), -vel
	case pos > limit:
		return max(2*limit-pos, 0), -vel
	}
	return pos, vel
}

// swarm is a set of bouncing quads. Each particle owns the instance record it is drawn with.
type swarm struct {
	particles []*particle
	size      float32
	rng       *rand.Rand
	pool      worker.DynamicWorkerPool
	workers   int
}

// newSwarm creates an empty swarm. With a single worker particles advance on the calling goroutine.
func newSwarm(size float32, seed uint64, pool worker.DynamicWorkerPool, workers int) *swarm {
	return &swarm{
		size:    size,
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		pool:    pool,
		workers: max(workers, 1),
	}
}

// spawn adds n particles at random positions and returns their records in order.
func (s *swarm) spawn(n int, width, height float32) []*instance.Record {
	records := make([]*instance.Record, n)
	for i := range records {
		p := &particle{
			x:      s.rng.Float32() * max(width-s.size, 0),
			y:      s.rng.Float32() * max(height-s.size, 0),
			vx:     (s.rng.Float32()*2 - 1) * maxSpeed,
			vy:     (s.rng.Float32()*2 - 1) * maxSpeed,
			record: instance.NewRecord(common.Identity4()),
		}
		p.advance(0, width, height, s.size)
		s.particles = append(s.particles, p)
		records[i] = p.record
	}
	return records
}

// despawn removes up to n of the newest particles and returns their records.
func (s *swarm) despawn(n int) []*instance.Record {
	n = min(n, len(s.particles))
	removed := s.particles[len(s.particles)-n:]
	s.particles = s.particles[:len(s.particles)-n]
	records := make([]*instance.Record, len(removed))
	for i, p := range removed {
		records[i] = p.record
	}
	return records
}

// step advances every particle. Chunks run on the worker pool and step returns once all of them are done, so the
// records can be packed right after on the render thread.
func (s *swarm) step(dt, width, height float32) {
	if s.workers == 1 || len(s.particles) < 2*s.workers {
		for _, p := range s.particles {
			p.advance(dt, width, height, s.size)
		}
		return
	}

	// Per-step barrier; the pool's Wait blocks until workers idle out.
	var wg sync.WaitGroup
	chunk := (len(s.particles) + s.workers - 1) / s.workers
	for id, lo := 0, 0; lo < len(s.particles); id, lo = id+1, lo+chunk {
		part := s.particles[lo:min(lo+chunk, len(s.particles))]
		wg.Add(1)
		s.pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				for _, p := range part {
					p.advance(dt, width, height, s.size)
				}
				return nil, nil
			},
		})
	}
	wg.Wait()
}
