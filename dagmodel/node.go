package dagmodel

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/smallnest/streamdag/plugin"
)

// State is a node's lifecycle state.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateError
	StateStopped
	StateRestarting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateError:
		return "error"
	case StateStopped:
		return "stopped"
	case StateRestarting:
		return "restarting"
	default:
		return "unknown"
	}
}

// Stats holds a node's running execution statistics, updated only by the
// node's own executor task and the metrics collector, hence the
// mutex-guarded fields rather than plain ints.
type Stats struct {
	mu              sync.Mutex
	ExecutionCount  uint64
	ErrorCount      uint64
	AccumulatedTime time.Duration
}

// RecordExecution updates the stats after one run() invocation.
func (s *Stats) RecordExecution(d time.Duration, failed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ExecutionCount++
	if failed {
		s.ErrorCount++
	}
	s.AccumulatedTime += d
}

// Snapshot returns a copy of the current counters.
func (s *Stats) Snapshot() (execCount, errCount uint64, accTime time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ExecutionCount, s.ErrorCount, s.AccumulatedTime
}

// Node is a plugin instance wired into the graph.
type Node struct {
	ID         string
	PluginType string
	Config     map[string]any
	Enabled    bool
	Position   [2]float64

	Instance plugin.INode
	Inputs   []Port
	Outputs  []Port

	Stats Stats
	state atomic.Int32

	// OnStateChange, if set, is invoked on every lifecycle transition and
	// is how the executor publishes node.state_changed without
	// this package depending on the event bus.
	OnStateChange func(node *Node, from, to State)
}

// State returns the node's current lifecycle state.
func (n *Node) State() State {
	return State(n.state.Load())
}

// SetState transitions the node to next, invoking OnStateChange if set.
// It is a no-op (does not fire the callback) when next equals the current
// state, to keep repeated "still running" updates from flooding listeners.
func (n *Node) SetState(next State) {
	prev := State(n.state.Swap(int32(next)))
	if prev == next {
		return
	}
	if n.OnStateChange != nil {
		n.OnStateChange(n, prev, next)
	}
}

// InputPort returns the input port named name, if any.
func (n *Node) InputPort(name string) (Port, bool) {
	for _, p := range n.Inputs {
		if p.Name == name {
			return p, true
		}
	}
	return Port{}, false
}

// OutputPort returns the output port named name, if any.
func (n *Node) OutputPort(name string) (Port, bool) {
	for _, p := range n.Outputs {
		if p.Name == name {
			return p, true
		}
	}
	return Port{}, false
}

// IsSource reports whether n has zero input ports. The edge-level source
// set (zero enabled incoming edges) is a Graph query; this is the
// port-level prerequisite.
func (n *Node) IsSource() bool {
	return len(n.Inputs) == 0
}
