package exec

import (
	"context"
	"time"

	"github.com/smallnest/streamdag/bus"
)

// Heartbeat periodically publishes graph.heartbeat so an external
// supervisor can detect a wedged executor even when no node is producing
// packets. A watchdog subscribes to the bus rather than polling a
// timestamp file.
type Heartbeat struct {
	bus      *bus.Bus
	graph    string
	interval time.Duration

	cancel context.CancelFunc
	done   chan struct{}
}

// NewHeartbeat returns a Heartbeat for graphName, ticking at interval
// (default 10s).
func NewHeartbeat(b *bus.Bus, graphName string, interval time.Duration) *Heartbeat {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Heartbeat{bus: b, graph: graphName, interval: interval}
}

// Start begins publishing on its own goroutine.
func (h *Heartbeat) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	h.cancel = cancel
	h.done = make(chan struct{})

	go func() {
		defer close(h.done)
		ticker := time.NewTicker(h.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case t := <-ticker.C:
				h.bus.Publish("graph.heartbeat", map[string]any{
					"graph": h.graph, "timestamp": t.Unix(),
				}, "heartbeat", bus.PriorityLow)
			}
		}
	}()
}

// Stop cancels the publish loop and blocks until it has exited.
func (h *Heartbeat) Stop() {
	if h.cancel != nil {
		h.cancel()
	}
	if h.done != nil {
		<-h.done
	}
}
