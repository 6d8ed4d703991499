package exec

import (
	"context"
	"time"

	"github.com/smallnest/streamdag/bus"
	"github.com/smallnest/streamdag/dagmodel"
	"github.com/smallnest/streamdag/plugin"
)

// invoke runs a node once for the given input mapping, applying the
// per-invocation accounting and the process-wide retry/error strategy. It
// returns the node's output mapping (nil if nothing should be routed) and
// an error only when the failure is fatal to the whole graph: circuit-break,
// or a restart's failed re-Initialize. A fatal error propagates out of the
// caller's loop and into the supervising errgroup, which cancels every
// other node's context. Skip, retry-exhaustion, and a successful restart
// all return (nil, nil): the packet is dropped but the graph keeps running.
func (e *Executor) invoke(ctx context.Context, n *dagmodel.Node, inputs map[string]any, packetID uint64) (map[string]any, error) {
	e.bus.Publish("node.start", map[string]any{"node": n.ID, "packet_id": packetID}, n.ID, bus.PriorityLow)
	n.SetState(dagmodel.StateRunning)

	delay := e.cfg.BaseDelay
	for attempt := 0; ; attempt++ {
		start := time.Now()
		rc := plugin.RunContext{
			Ctx:      ctx,
			NodeID:   n.ID,
			Inputs:   inputs,
			PacketID: packetID,
			Global:   e.global,
			EventBus: e.bus,
		}
		result, err := safeRun(n.Instance, rc)
		elapsed := time.Since(start)

		if err == nil {
			n.Stats.RecordExecution(elapsed, false)
			e.bus.Publish("node.complete", map[string]any{
				"node": n.ID, "packet_id": packetID, "execution_time": elapsed.Seconds(),
			}, n.ID, bus.PriorityNormal)
			n.SetState(dagmodel.StateCompleted)
			n.SetState(dagmodel.StateIdle)
			return result.Outputs, nil
		}

		n.Stats.RecordExecution(elapsed, true)

		// retries remaining: back off and re-run without the terminal
		// node.error, which fires once per invocation, not per attempt
		if e.cfg.Strategy == StrategyRetry && attempt < e.cfg.MaxRetries {
			select {
			case <-time.After(delay):
			case <-e.stop:
				return nil, nil
			case <-ctx.Done():
				return nil, nil
			}
			delay *= 2
			continue
		}

		e.bus.Publish("node.error", map[string]any{
			"node": n.ID, "packet_id": packetID, "error": err.Error(),
		}, n.ID, bus.PriorityHigh)
		n.SetState(dagmodel.StateError)

		switch e.cfg.Strategy {
		case StrategyCircuitBreak:
			return nil, &NodeRunError{NodeID: n.ID, Message: "circuit-break strategy tripped", Cause: err}

		case StrategyRetry:
			// retries exhausted, drop the packet and continue
			n.SetState(dagmodel.StateIdle)
			return nil, nil

		case StrategyRestart:
			n.SetState(dagmodel.StateRestarting)
			e.bus.Publish("node.restarting", map[string]any{"node": n.ID}, n.ID, bus.PriorityNormal)
			if cerr := n.Instance.Cleanup(); cerr != nil {
				e.bus.Publish("node.cleanup_error", map[string]any{"node": n.ID, "error": cerr.Error()}, n.ID, bus.PriorityHigh)
			}
			if ierr := n.Instance.Initialize(); ierr != nil {
				e.bus.Publish("node.init_error", map[string]any{"node": n.ID, "error": ierr.Error()}, n.ID, bus.PriorityHigh)
				n.SetState(dagmodel.StateError)
				return nil, &ResourceError{NodeID: n.ID, Phase: "restart-initialize", Cause: ierr}
			}
			n.SetState(dagmodel.StateIdle)
			return nil, nil

		default: // StrategySkip
			n.SetState(dagmodel.StateIdle)
			return nil, nil
		}
	}
}
