package exec

import (
	"github.com/smallnest/streamdag/bus"
	"github.com/smallnest/streamdag/dagmodel"
	"github.com/smallnest/streamdag/packet"
)

// router implements the fan-out / copy-on-branch output routing: zero
// edges discards, one edge is a zero-copy move, two or more
// edges ("branch") give one destination the original value and clone the
// rest per the copy policy.
type router struct {
	graph  *dagmodel.Graph
	bus    *bus.Bus
	policy packet.CopyPolicy
	idGens map[string]*packet.IDGenerator
}

func newRouter(graph *dagmodel.Graph, eventBus *bus.Bus, policy packet.CopyPolicy) *router {
	gens := make(map[string]*packet.IDGenerator, len(graph.Nodes()))
	for _, n := range graph.Nodes() {
		gens[n.ID] = &packet.IDGenerator{}
	}
	return &router{graph: graph, bus: eventBus, policy: policy, idGens: gens}
}

// route delivers every output port value of node's last Run to the
// enabled downstream queues. It returns nothing; per destination it
// blocks per Config.EnqueueTimeout-bounded backpressure managed by the
// caller via enqueue.
func (r *router) route(node *dagmodel.Node, outputs map[string]any, enqueue func(destNodeID string, d delivery) bool) {
	gen := r.idGens[node.ID]

	for port, value := range outputs {
		edges := r.graph.OutgoingEdges(node.ID, port)
		switch len(edges) {
		case 0:
			continue
		case 1:
			e := edges[0]
			pkt := packet.New(gen.Next(), map[string]any{e.ToPort: value})
			enqueue(e.ToNode, delivery{pkt: pkt, parent: pkt})
		default:
			branchCount := len(edges)
			parent := packet.New(gen.Next(), nil)
			parent.SetRefCount(branchCount)

			r.bus.Publish("data.branch", map[string]any{
				"node":         node.ID,
				"port":         port,
				"branch_count": branchCount,
			}, node.ID, bus.PriorityNormal)

			for i, e := range edges {
				v := value
				if i > 0 && r.policy.ShouldDeepCopy(portTypeName(node, port), value, branchCount) {
					v = packet.Clone(value)
				}
				pkt := packet.New(gen.Next(), map[string]any{e.ToPort: v})
				enqueue(e.ToNode, delivery{pkt: pkt, parent: parent})
			}
		}
	}
}

func portTypeName(node *dagmodel.Node, port string) string {
	if p, ok := node.OutputPort(port); ok {
		return p.TypeName
	}
	return ""
}
