package exec

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/smallnest/streamdag/bus"
	"github.com/smallnest/streamdag/dagmodel"
	"github.com/smallnest/streamdag/log"
	"github.com/smallnest/streamdag/packet"
	"github.com/smallnest/streamdag/plugin"
)

// Executor is the Streaming Executor: it runs one task per
// enabled node, connected by bounded input queues, and owns the process-
// wide retry/error strategy and shutdown sequencing. Node tasks are
// supervised by an errgroup.Group: a circuit-break failure returns a
// non-nil error from its task, which cancels the group's derived context
// and wakes every other task's next select.
type Executor struct {
	graph  *dagmodel.Graph
	bus    *bus.Bus
	global *plugin.GlobalContext
	cfg    Config
	router *router

	queues map[string]chan delivery

	// done holds one channel per node whose task actually started,
	// populated by Run and closed by runNode on exit. Run consults it
	// after the shutdown grace period to report which nodes' cleanup
	// never completed in time (node.cleanup_timeout).
	done map[string]chan struct{}

	stop     chan struct{}
	stopOnce sync.Once
}

// New builds an Executor over an already-validated graph. It does not
// start any node task; call Run for that. Every node's OnStateChange
// hook is wired here so lifecycle transitions during Run publish
// node.state_changed without dagmodel depending on bus.
func New(graph *dagmodel.Graph, eventBus *bus.Bus, global *plugin.GlobalContext, cfg Config) *Executor {
	queues := make(map[string]chan delivery, len(graph.Nodes()))
	for _, n := range graph.Nodes() {
		queues[n.ID] = newQueue(cfg.QueueCapacity)
		n.OnStateChange = func(node *dagmodel.Node, from, to dagmodel.State) {
			eventBus.Publish("node.state_changed", map[string]any{
				"node": node.ID, "from": from.String(), "to": to.String(),
			}, node.ID, bus.PriorityLow)
		}
	}
	return &Executor{
		graph:  graph,
		bus:    eventBus,
		global: global,
		cfg:    cfg,
		router: newRouter(graph, eventBus, packet.DefaultCopyPolicy()),
		queues: queues,
		stop:   make(chan struct{}),
	}
}

// Run initializes and starts every enabled node's task, then blocks until
// ctx is cancelled, Stop is called, or a node's task reports a fatal
// (circuit-break) error, at which point it drives the cooperative
// shutdown sequence and returns once every task has
// exited or the shutdown grace period has elapsed.
func (e *Executor) Run(ctx context.Context) error {
	e.bus.Publish("graph.start", map[string]any{"name": e.graph.Name}, "executor", bus.PriorityNormal)

	e.done = make(map[string]chan struct{})
	g, gctx := errgroup.WithContext(ctx)
	for _, n := range e.graph.Nodes() {
		if !n.Enabled {
			continue
		}
		if err := e.initializeNode(n); err != nil {
			continue
		}
		node := n
		doneCh := make(chan struct{})
		e.done[node.ID] = doneCh
		g.Go(func() error {
			defer close(doneCh)
			return e.runNode(gctx, node)
		})
	}

	select {
	case <-gctx.Done():
	case <-e.stop:
	}
	e.Stop()

	waitErr := make(chan error, 1)
	go func() { waitErr <- g.Wait() }()

	var runErr error
	select {
	case runErr = <-waitErr:
	case <-time.After(e.cfg.ShutdownGrace):
		log.Warn("executor shutdown grace period elapsed with node tasks still running")
		for nodeID, doneCh := range e.done {
			select {
			case <-doneCh:
			default:
				e.bus.Publish("node.cleanup_timeout", map[string]any{"node": nodeID}, nodeID, bus.PriorityHigh)
			}
		}
	}

	e.bus.Publish("graph.stop", map[string]any{"name": e.graph.Name}, "executor", bus.PriorityNormal)
	return runErr
}

// Stop signals every node task to exit at its next loop boundary. It is
// safe to call concurrently and more than once.
func (e *Executor) Stop() {
	e.stopOnce.Do(func() {
		close(e.stop)
		for _, q := range e.queues {
			select {
			case q <- stopDelivery:
			default:
			}
		}
	})
}

func (e *Executor) initializeNode(n *dagmodel.Node) error {
	nodeLog := log.Scope(n.ID)
	if err := n.Instance.Initialize(); err != nil {
		nodeLog.Error("initialize failed: %v", err)
		e.bus.Publish("node.init_error", map[string]any{"node": n.ID, "error": err.Error()}, n.ID, bus.PriorityHigh)
		n.SetState(dagmodel.StateError)
		return &ResourceError{NodeID: n.ID, Phase: "initialize", Cause: err}
	}
	nodeLog.Debug("initialized")
	e.bus.Publish("node.created", map[string]any{"node": n.ID}, n.ID, bus.PriorityLow)
	return nil
}

func (e *Executor) runNode(ctx context.Context, n *dagmodel.Node) error {
	n.SetState(dagmodel.StateIdle)

	var loopErr error
	if n.IsSource() {
		loopErr = e.sourceLoop(ctx, n)
	} else {
		loopErr = e.interiorLoop(ctx, n)
	}

	if err := n.Instance.Cleanup(); err != nil {
		e.bus.Publish("node.cleanup_error", map[string]any{"node": n.ID, "error": err.Error()}, n.ID, bus.PriorityHigh)
	} else {
		e.bus.Publish("node.cleanup_ok", map[string]any{"node": n.ID}, n.ID, bus.PriorityLow)
	}
	nodeLog := log.Scope(n.ID)
	var runErr *NodeRunError
	switch {
	case errors.As(loopErr, &runErr):
		// circuit-break strategy tripped: the node ends up stopped, same
		// as a cooperative shutdown, not error.
		nodeLog.Warn("task loop exiting on circuit-break: %v", loopErr)
		n.SetState(dagmodel.StateStopped)
	case loopErr != nil:
		nodeLog.Error("task loop exiting on fatal error: %v", loopErr)
		n.SetState(dagmodel.StateError)
	case n.State() != dagmodel.StateError:
		nodeLog.Debug("task loop exiting cleanly")
		n.SetState(dagmodel.StateStopped)
	}
	return loopErr
}

// sourceLoop implements the source variant of the per-node task
// loop: synthesize an empty-input packet every iteration, run, route, and
// sleep briefly between iterations. A non-nil return is a fatal invoke
// failure (a circuit break, or a restart whose re-Initialize failed)
// propagated to the supervising errgroup.
func (e *Executor) sourceLoop(ctx context.Context, n *dagmodel.Node) error {
	gen := e.router.idGens[n.ID]
	for {
		select {
		case <-e.stop:
			return nil
		case <-ctx.Done():
			return nil
		default:
		}

		id := gen.Next()
		outputs, err := e.invoke(ctx, n, map[string]any{}, id)
		if err != nil {
			return err
		}
		e.bus.Publish("graph.frame_complete", map[string]any{
			"graph": e.graph.Name, "node": n.ID, "packet_id": id, "success": outputs != nil,
		}, n.ID, bus.PriorityLow)
		if outputs != nil {
			e.routeOutputs(n, outputs)
		}

		if e.cfg.SourceIdleSleep > 0 {
			select {
			case <-time.After(e.cfg.SourceIdleSleep):
			case <-e.stop:
				return nil
			case <-ctx.Done():
				return nil
			}
		}
	}
}

// interiorLoop implements the non-source variant: await a packet with a
// poll timeout so the stop signal is observed promptly, merge its ports
// into the node's last-known-input cache, run, route, and release.
func (e *Executor) interiorLoop(ctx context.Context, n *dagmodel.Node) error {
	q := e.queues[n.ID]

	// Seed the last-known-input cache with declared port defaults, so a
	// port that validation exempted from needing an edge (required but
	// defaulted) still has a value present on every Run.
	inputs := make(map[string]any)
	for _, p := range n.Inputs {
		if p.HasDefault {
			inputs[p.Name] = p.Default
		}
	}

	for {
		select {
		case <-e.stop:
			return nil
		case <-ctx.Done():
			return nil
		case d := <-q:
			if d.stop {
				return nil
			}
			for port, v := range d.pkt.Ports {
				inputs[port] = v
			}

			outputs, err := e.invoke(ctx, n, inputs, d.pkt.ID)
			if outputs != nil {
				e.routeOutputs(n, outputs)
			}

			if d.parent.Release() {
				for port, v := range d.pkt.Ports {
					n.Instance.InputDataProcessedHook(port, v)
				}
			}
			if err != nil {
				return err
			}
		case <-time.After(e.cfg.InputPollTimeout):
			// idle poll: nothing arrived within the timeout window
			e.bus.Publish("queue.empty", map[string]any{"node": n.ID, "size": len(q)}, n.ID, bus.PriorityLow)
		}
	}
}

func (e *Executor) routeOutputs(n *dagmodel.Node, outputs map[string]any) {
	e.router.route(n, outputs, e.enqueue)
}

// enqueue implements the blocking-put-with-timeout backpressure policy:
// on timeout it publishes queue.full and keeps retrying until
// the queue drains or the executor is shutting down.
func (e *Executor) enqueue(destNodeID string, d delivery) bool {
	q, ok := e.queues[destNodeID]
	if !ok {
		return false
	}
	for {
		select {
		case q <- d:
			return true
		case <-e.stop:
			return false
		case <-time.After(e.cfg.EnqueueTimeout):
			e.bus.Publish("queue.full", map[string]any{"node": destNodeID, "size": len(q)}, destNodeID, bus.PriorityNormal)
		}
	}
}
