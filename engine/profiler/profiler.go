// Package profiler reports frame rate and memory statistics at a fixed interval.
package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/pristine-go/common"
)

// Stats is one profiling report.
type Stats struct {
	FPS         float64
	HeapMB      float64
	AllocRateMB float64
	GCCount     uint32
	MaxPauseUs  uint64
	SysMB       float64
}

// Profiler tracks frame rate and memory statistics for performance monitoring.
// Reports are logged at Info level through common.Logger.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// NewProfiler creates a new Profiler starting at the given time.
//
// Parameters:
//   - start: the time of the first frame
//   - interval: how often a report is produced; zero means one second
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(start time.Time, interval time.Duration) *Profiler {
	return &Profiler{
		lastTime:       start,
		updateInterval: common.Coalesce(interval, time.Second),
	}
}

// Tick should be called once per frame. When the update interval has elapsed it produces and logs a report.
//
// Parameters:
//   - now: the time of this frame
//
// Returns:
//   - Stats: the report, or the zero value
//   - bool: true if a report was produced this tick
func (p *Profiler) Tick(now time.Time) (Stats, bool) {
	p.frameCount++
	elapsed := now.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return Stats{}, false
	}

	runtime.ReadMemStats(&p.memStats)
	s := Stats{
		FPS:         float64(p.frameCount) / elapsed.Seconds(),
		HeapMB:      float64(p.memStats.Alloc) / 1024 / 1024,
		AllocRateMB: float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:     p.memStats.NumGC,
		SysMB:       float64(p.memStats.Sys) / 1024 / 1024,
	}

	// PauseNs is a circular buffer of the last 256 GC pauses.
	startIdx := p.lastGCCount
	if s.GCCount-startIdx > 256 {
		startIdx = s.GCCount - 256
	}
	for i := startIdx; i < s.GCCount; i++ {
		s.MaxPauseUs = max(s.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
	}

	common.Logger().Info("frame stats",
		"fps", s.FPS,
		"heapMB", s.HeapMB,
		"allocRateMB", s.AllocRateMB,
		"gc", s.GCCount,
		"maxPauseUs", s.MaxPauseUs,
		"sysMB", s.SysMB)

	p.frameCount = 0
	p.lastTime = now
	p.lastGCCount = s.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return s, true
}
