package metrics

import (
	"sync"
	"time"
)

const defaultWindowSize = 100

// nodeStats accumulates the per-node counters: execution count, error
// count, accumulated runtime, running min/max, and a rolling window of
// the last N runtimes.
type nodeStats struct {
	mu sync.Mutex

	executionCount  uint64
	errorCount      uint64
	accumulatedTime time.Duration
	minTime         time.Duration
	maxTime         time.Duration
	window          *ring
}

func newNodeStats(windowSize int) *nodeStats {
	return &nodeStats{window: newRing(windowSize)}
}

func (s *nodeStats) record(d time.Duration, failed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.executionCount++
	if failed {
		s.errorCount++
	}
	s.accumulatedTime += d
	if s.executionCount == 1 || d < s.minTime {
		s.minTime = d
	}
	if d > s.maxTime {
		s.maxTime = d
	}
	s.window.add(d)
}

// NodePerformance is the computed snapshot republished as node.performance.
type NodePerformance struct {
	NodeID           string  `json:"node_id"`
	ExecutionCount   uint64  `json:"execution_count"`
	ErrorCount       uint64  `json:"error_count"`
	AverageRuntimeMs float64 `json:"average_runtime_ms"`
	RecentAverageMs  float64 `json:"recent_average_ms"`
	MinRuntimeMs     float64 `json:"min_runtime_ms"`
	MaxRuntimeMs     float64 `json:"max_runtime_ms"`
	ErrorRate        float64 `json:"error_rate"`
}

func (s *nodeStats) snapshot(nodeID string) NodePerformance {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := NodePerformance{
		NodeID:         nodeID,
		ExecutionCount: s.executionCount,
		ErrorCount:     s.errorCount,
		MinRuntimeMs:   s.minTime.Seconds() * 1000,
		MaxRuntimeMs:   s.maxTime.Seconds() * 1000,
	}
	if s.executionCount > 0 {
		p.AverageRuntimeMs = (s.accumulatedTime / time.Duration(s.executionCount)).Seconds() * 1000
		p.ErrorRate = float64(s.errorCount) / float64(s.executionCount)
	}
	p.RecentAverageMs = s.window.mean().Seconds() * 1000
	return p
}
