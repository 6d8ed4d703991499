package dagmodel

import (
	"sort"

	"github.com/smallnest/streamdag/plugin"
	"github.com/smallnest/streamdag/types"
)

// NodeSpec is the declarative description of one node, decoupled
// from any particular on-disk encoding.
type NodeSpec struct {
	ID       string
	Type     string
	Config   map[string]any
	Position [2]float64
	Enabled  bool
}

// EdgeSpec is the declarative description of one connection.
type EdgeSpec struct {
	FromNode, FromPort string
	ToNode, ToPort     string
	Enabled            bool
}

// Graph holds the fully built and validated set of nodes and edges, with
// derived forward/reverse adjacency.
type Graph struct {
	Name    string
	Version string

	nodes map[string]*Node
	edges []*Edge

	// forward[nodeID] lists enabled edges leaving nodeID.
	forward map[string][]*Edge
	// reverse[nodeID] lists enabled edges arriving at nodeID.
	reverse map[string][]*Edge
}

// Build runs the structural build phase: instantiate each enabled node
// via registry, call ValidateConfig, and construct forward and reverse
// adjacency over enabled edges. It does not validate the result (see
// Validate) or order it (see TopologicalOrder).
func Build(name, version string, nodeSpecs []NodeSpec, edgeSpecs []EdgeSpec, registry *plugin.Registry, typeReg *types.Registry) (*Graph, error) {
	g := &Graph{
		Name:    name,
		Version: version,
		nodes:   make(map[string]*Node, len(nodeSpecs)),
		forward: make(map[string][]*Edge),
		reverse: make(map[string][]*Edge),
	}

	for _, spec := range nodeSpecs {
		if !spec.Enabled {
			continue
		}
		instance, err := registry.CreateInstance(spec.Type, spec.ID, spec.Config)
		if err != nil {
			return nil, &PluginInstantiationError{NodeID: spec.ID, Cause: err}
		}
		inputs, outputs := instance.GetPorts()
		in, out := portsFromSpecs(inputs, outputs)

		g.nodes[spec.ID] = &Node{
			ID:         spec.ID,
			PluginType: spec.Type,
			Config:     spec.Config,
			Enabled:    true,
			Position:   spec.Position,
			Instance:   instance,
			Inputs:     in,
			Outputs:    out,
		}
	}

	for _, es := range edgeSpecs {
		g.edges = append(g.edges, &Edge{
			FromNode: es.FromNode, FromPort: es.FromPort,
			ToNode: es.ToNode, ToPort: es.ToPort,
			Enabled: es.Enabled,
		})
	}

	for _, e := range g.edges {
		if !e.Enabled {
			continue
		}
		g.forward[e.FromNode] = append(g.forward[e.FromNode], e)
		g.reverse[e.ToNode] = append(g.reverse[e.ToNode], e)
	}

	_ = typeReg // used by Validate, kept on Build's signature for a single construction call site
	return g, nil
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns every node, ordered by id for determinism.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Edges returns every edge (including disabled ones) in insertion order.
func (g *Graph) Edges() []*Edge {
	return g.edges
}

// OutgoingEdges returns the enabled edges leaving a port.
func (g *Graph) OutgoingEdges(nodeID, port string) []*Edge {
	var out []*Edge
	for _, e := range g.forward[nodeID] {
		if e.FromPort == port {
			out = append(out, e)
		}
	}
	return out
}

// IncomingEdge returns the single enabled edge feeding an input port, if
// any (validation guarantees there is at most one).
func (g *Graph) IncomingEdge(nodeID, port string) (*Edge, bool) {
	for _, e := range g.reverse[nodeID] {
		if e.ToPort == port {
			return e, true
		}
	}
	return nil, false
}

// Sources returns the nodes with zero enabled incoming edges.
func (g *Graph) Sources() []*Node {
	var out []*Node
	for _, n := range g.Nodes() {
		if len(g.reverse[n.ID]) == 0 {
			out = append(out, n)
		}
	}
	return out
}

// Sinks returns the nodes with zero enabled outgoing edges.
func (g *Graph) Sinks() []*Node {
	var out []*Node
	for _, n := range g.Nodes() {
		if len(g.forward[n.ID]) == 0 {
			out = append(out, n)
		}
	}
	return out
}

// Downstream returns the set of node ids reachable from nodeID following
// enabled edges.
func (g *Graph) Downstream(nodeID string) []string {
	seen := map[string]bool{}
	var walk func(string)
	walk = func(id string) {
		for _, e := range g.forward[id] {
			if !seen[e.ToNode] {
				seen[e.ToNode] = true
				walk(e.ToNode)
			}
		}
	}
	walk(nodeID)
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Upstream returns the set of node ids that can reach nodeID following
// enabled edges.
func (g *Graph) Upstream(nodeID string) []string {
	seen := map[string]bool{}
	var walk func(string)
	walk = func(id string) {
		for _, e := range g.reverse[id] {
			if !seen[e.FromNode] {
				seen[e.FromNode] = true
				walk(e.FromNode)
			}
		}
	}
	walk(nodeID)
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
