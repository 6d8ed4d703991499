// Package metrics implements the Metrics Collector: it
// subscribes to the executor's node and graph lifecycle events, maintains
// per-node and per-graph counters and rolling windows, and republishes
// computed aggregates on a periodic tick.
package metrics

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/smallnest/streamdag/bus"
	"github.com/smallnest/streamdag/log"
)

// Config configures a Collector.
type Config struct {
	// WindowSize is the rolling-window sample count (default 100).
	WindowSize int
	// RepublishInterval is how often node.performance/graph.throughput/
	// graph.metrics are recomputed and republished (default 1 Hz).
	RepublishInterval time.Duration
	// DiskGuard, if non-nil, is polled once per tick and folded into
	// graph.metrics.
	DiskGuard *DiskGuard
	// Sink, if non-nil, receives every computed snapshot for durable
	// history (e.g. metrics/sqlitesink.Sink). History only: the executor
	// itself never reads it back.
	Sink HistorySink
}

// HistorySink receives every computed snapshot a Collector republishes,
// for durable storage. metrics/sqlitesink.Sink implements this.
type HistorySink interface {
	RecordNodePerformance(ctx context.Context, p NodePerformance) error
	RecordGraphThroughput(ctx context.Context, g GraphThroughput) error
}

// DefaultConfig returns the stock collector defaults.
func DefaultConfig() Config {
	return Config{WindowSize: defaultWindowSize, RepublishInterval: time.Second}
}

// Collector is the Metrics Collector. It owns no goroutine until Start is
// called, and unsubscribes cleanly on Stop.
type Collector struct {
	bus  *bus.Bus
	cfg  Config
	name string

	mu    sync.RWMutex
	nodes map[string]*nodeStats
	graph *graphStats

	// sem bounds the periodic republish task to a single in-flight worker:
	// a tick that finds it taken skips its round. Start calls tick from its
	// one ticker goroutine, so rounds never overlap; an overrunning round
	// delays the next one, and time.Ticker drops the ticks a slow receiver
	// misses, so republish ticks do not pile up.
	sem *semaphore.Weighted

	unsubs []func()
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a Collector for the named graph, subscribed to b but not
// yet running its periodic task; call Start to begin republishing.
func New(b *bus.Bus, graphName string, cfg Config) *Collector {
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = defaultWindowSize
	}
	if cfg.RepublishInterval <= 0 {
		cfg.RepublishInterval = time.Second
	}
	c := &Collector{
		bus:   b,
		cfg:   cfg,
		name:  graphName,
		nodes: make(map[string]*nodeStats),
		graph: newGraphStats(cfg.WindowSize),
		sem:   semaphore.NewWeighted(1),
	}
	c.subscribe()
	return c
}

func (c *Collector) subscribe() {
	c.unsubs = append(c.unsubs,
		c.bus.Subscribe("node.complete", c.onNodeComplete, bus.Async),
		c.bus.Subscribe("node.error", c.onNodeError, bus.Async),
		c.bus.Subscribe("graph.frame_complete", c.onFrameComplete, bus.Async),
	)
}

func (c *Collector) statsFor(nodeID string) *nodeStats {
	c.mu.RLock()
	s, ok := c.nodes[nodeID]
	c.mu.RUnlock()
	if ok {
		return s
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.nodes[nodeID]; ok {
		return s
	}
	s = newNodeStats(c.cfg.WindowSize)
	c.nodes[nodeID] = s
	return s
}

func (c *Collector) onNodeComplete(ev bus.Event) {
	c.recordNode(ev, false)
}

func (c *Collector) onNodeError(ev bus.Event) {
	c.recordNode(ev, true)
}

func (c *Collector) recordNode(ev bus.Event, failed bool) {
	nodeID, _ := ev.Data["node"].(string)
	if nodeID == "" {
		return
	}
	var elapsed time.Duration
	if secs, ok := ev.Data["execution_time"].(float64); ok {
		elapsed = time.Duration(secs * float64(time.Second))
	}
	c.statsFor(nodeID).record(elapsed, failed)
}

func (c *Collector) onFrameComplete(ev bus.Event) {
	success, _ := ev.Data["success"].(bool)
	c.graph.recordFrame(time.Now(), success)
}

// Start launches the periodic republish task. It is safe to call once;
// call Stop to tear it down.
func (c *Collector) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})

	go func() {
		defer close(c.done)
		ticker := time.NewTicker(c.cfg.RepublishInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.tick(ctx)
			}
		}
	}()
}

// tick computes and republishes one round of aggregates, guarded by sem:
// it skips its round if another tick still holds sem.
func (c *Collector) tick(ctx context.Context) {
	if !c.sem.TryAcquire(1) {
		return
	}
	defer c.sem.Release(1)

	c.mu.RLock()
	nodeIDs := make([]string, 0, len(c.nodes))
	for id := range c.nodes {
		nodeIDs = append(nodeIDs, id)
	}
	c.mu.RUnlock()

	for _, id := range nodeIDs {
		perf := c.statsFor(id).snapshot(id)
		c.bus.Publish("node.performance", map[string]any{
			"node_id":            perf.NodeID,
			"execution_count":    perf.ExecutionCount,
			"error_count":        perf.ErrorCount,
			"average_runtime_ms": perf.AverageRuntimeMs,
			"recent_average_ms":  perf.RecentAverageMs,
			"min_runtime_ms":     perf.MinRuntimeMs,
			"max_runtime_ms":     perf.MaxRuntimeMs,
			"error_rate":         perf.ErrorRate,
		}, "metrics", bus.PriorityLow)
		if c.cfg.Sink != nil {
			if err := c.cfg.Sink.RecordNodePerformance(ctx, perf); err != nil {
				log.Warn("metrics: failed to persist node performance for %s: %v", id, err)
			}
		}
	}

	throughput := c.graph.snapshot(c.name)
	c.bus.Publish("graph.throughput", map[string]any{
		"graph":        throughput.Graph,
		"total_frames": throughput.TotalFrames,
		"fps":          throughput.FPS,
		"success_rate": throughput.SuccessRate,
		"uptime_seconds": throughput.UptimeSec,
	}, "metrics", bus.PriorityLow)
	if c.cfg.Sink != nil {
		if err := c.cfg.Sink.RecordGraphThroughput(ctx, throughput); err != nil {
			log.Warn("metrics: failed to persist graph throughput for %s: %v", c.name, err)
		}
	}

	metricsData := map[string]any{
		"graph":       c.name,
		"node_count":  len(nodeIDs),
		"fps":         throughput.FPS,
		"error_rate":  1 - throughput.SuccessRate,
	}
	if c.cfg.DiskGuard != nil {
		status := c.cfg.DiskGuard.checkAndPublish(c.bus, "metrics")
		metricsData["disk_used_fraction"] = status.UsedFraction
		metricsData["disk_free_bytes"] = status.FreeBytes
	}
	c.bus.Publish("graph.metrics", metricsData, "metrics", bus.PriorityLow)
}

// Stop cancels the periodic task and unsubscribes from the bus. It blocks
// until the periodic task goroutine has exited.
func (c *Collector) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	if c.done != nil {
		<-c.done
	}
	for _, unsub := range c.unsubs {
		unsub()
	}
}

// NodePerformanceSnapshot exposes one node's current aggregates without
// waiting for a node.performance republish.
func (c *Collector) NodePerformanceSnapshot(nodeID string) NodePerformance {
	return c.statsFor(nodeID).snapshot(nodeID)
}

// GraphThroughputSnapshot exposes the current graph-level aggregates.
func (c *Collector) GraphThroughputSnapshot() GraphThroughput {
	return c.graph.snapshot(c.name)
}
