package metrics

import (
	"sync"
	"time"
)

// graphStats accumulates the per-graph counters: start time,
// total/successful/error frames, and a rolling window of recent
// inter-frame intervals used to derive FPS.
type graphStats struct {
	mu sync.Mutex

	startTime      time.Time
	totalFrames    uint64
	successFrames  uint64
	errorFrames    uint64
	lastFrameAt    time.Time
	haveLastFrame  bool
	intervals      *ring
}

func newGraphStats(windowSize int) *graphStats {
	return &graphStats{startTime: time.Now(), intervals: newRing(windowSize)}
}

func (g *graphStats) recordFrame(at time.Time, success bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.totalFrames++
	if success {
		g.successFrames++
	} else {
		g.errorFrames++
	}
	if g.haveLastFrame {
		g.intervals.add(at.Sub(g.lastFrameAt))
	}
	g.lastFrameAt = at
	g.haveLastFrame = true
}

// GraphThroughput is the computed snapshot republished as graph.throughput.
type GraphThroughput struct {
	Graph       string  `json:"graph"`
	TotalFrames uint64  `json:"total_frames"`
	FPS         float64 `json:"fps"`
	SuccessRate float64 `json:"success_rate"`
	UptimeSec   float64 `json:"uptime_seconds"`
}

func (g *graphStats) snapshot(name string) GraphThroughput {
	g.mu.Lock()
	defer g.mu.Unlock()

	t := GraphThroughput{
		Graph:       name,
		TotalFrames: g.totalFrames,
		UptimeSec:   time.Since(g.startTime).Seconds(),
	}
	if g.totalFrames > 0 {
		t.SuccessRate = float64(g.successFrames) / float64(g.totalFrames)
	}
	if mean := g.intervals.mean(); mean > 0 {
		t.FPS = 1.0 / mean.Seconds()
	}
	return t
}
