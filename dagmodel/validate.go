package dagmodel

import (
	"github.com/smallnest/streamdag/types"
)

// Validate runs the six structural checks in order, returning the first
// failure. Validate must run after Build and before TopologicalOrder.
func (g *Graph) Validate(typeReg *types.Registry) error {
	if err := g.checkEndpointsExist(); err != nil {
		return err
	}
	if err := g.checkDirections(); err != nil {
		return err
	}
	if err := g.checkTypeCompatibility(typeReg); err != nil {
		return err
	}
	if err := g.checkSingleInputEdge(); err != nil {
		return err
	}
	if err := g.checkRequiredInputs(); err != nil {
		return err
	}
	if err := g.checkAcyclic(); err != nil {
		return err
	}
	return nil
}

// checkEndpointsExist verifies every enabled edge references a node and
// port that actually exist.
func (g *Graph) checkEndpointsExist() error {
	for _, e := range g.edges {
		if !e.Enabled {
			continue
		}
		from, ok := g.nodes[e.FromNode]
		if !ok {
			return &GraphStructureError{Reason: "edge references unknown node", Node: e.FromNode}
		}
		to, ok := g.nodes[e.ToNode]
		if !ok {
			return &GraphStructureError{Reason: "edge references unknown node", Node: e.ToNode}
		}
		if _, ok := from.OutputPort(e.FromPort); !ok {
			return &GraphStructureError{Reason: "edge references unknown output port", Node: e.FromNode, Port: e.FromPort}
		}
		if _, ok := to.InputPort(e.ToPort); !ok {
			return &GraphStructureError{Reason: "edge references unknown input port", Node: e.ToNode, Port: e.ToPort}
		}
	}
	return nil
}

// checkDirections verifies every enabled edge runs from an output port to
// an input port (never input-to-input or output-to-output; an endpoint
// existing in the wrong port list is already reported by
// checkEndpointsExist, but we re-derive direction here in case a plugin
// exposes a port under the same name on both sides).
func (g *Graph) checkDirections() error {
	for _, e := range g.edges {
		if !e.Enabled {
			continue
		}
		from := g.nodes[e.FromNode]
		to := g.nodes[e.ToNode]
		if _, ok := from.OutputPort(e.FromPort); !ok {
			return &GraphStructureError{Reason: "edge source is not an output port", Node: e.FromNode, Port: e.FromPort}
		}
		if _, ok := to.InputPort(e.ToPort); !ok {
			return &GraphStructureError{Reason: "edge destination is not an input port", Node: e.ToNode, Port: e.ToPort}
		}
	}
	return nil
}

// checkTypeCompatibility verifies the Type Registry considers each edge's
// source and destination port types compatible.
func (g *Graph) checkTypeCompatibility(typeReg *types.Registry) error {
	for _, e := range g.edges {
		if !e.Enabled {
			continue
		}
		from := g.nodes[e.FromNode]
		to := g.nodes[e.ToNode]
		fromPort, _ := from.OutputPort(e.FromPort)
		toPort, _ := to.InputPort(e.ToPort)

		if !typeReg.CheckCompatibility(fromPort.TypeName, toPort.TypeName) {
			return &TypeMismatchError{
				FromNode: e.FromNode, FromPort: e.FromPort, FromType: fromPort.TypeName,
				ToNode: e.ToNode, ToPort: e.ToPort, ToType: toPort.TypeName,
			}
		}
	}
	return nil
}

// checkSingleInputEdge verifies every input port has at most one enabled
// incoming edge.
func (g *Graph) checkSingleInputEdge() error {
	seen := make(map[string]bool)
	for _, e := range g.edges {
		if !e.Enabled {
			continue
		}
		key := e.ToNode + "." + e.ToPort
		if seen[key] {
			return &GraphStructureError{Reason: "input port has more than one enabled edge", Node: e.ToNode, Port: e.ToPort}
		}
		seen[key] = true
	}
	return nil
}

// checkRequiredInputs verifies every required input port on every enabled
// node has exactly one enabled incoming edge. Ports with a declared
// default value are exempt: the executor seeds each node's input map
// with port defaults before its first Run, so an edge-less defaulted
// port is still populated at invocation time.
func (g *Graph) checkRequiredInputs() error {
	for _, n := range g.Nodes() {
		for _, p := range n.Inputs {
			if !p.Required || p.HasDefault {
				continue
			}
			if _, ok := g.IncomingEdge(n.ID, p.Name); !ok {
				return &GraphStructureError{Reason: "required input has no enabled edge", Node: n.ID, Port: p.Name}
			}
		}
	}
	return nil
}

// cycleColor is the three-color DFS marker: white (unvisited),
// gray (on the current recursion stack), black (fully explored).
type cycleColor int

const (
	white cycleColor = iota
	gray
	black
)

// checkAcyclic runs three-color DFS cycle detection over enabled edges,
// reporting the offending cycle as an ordered list of node ids.
func (g *Graph) checkAcyclic() error {
	color := make(map[string]cycleColor, len(g.nodes))
	var stack []string

	var visit func(id string) error
	visit = func(id string) error {
		color[id] = gray
		stack = append(stack, id)

		for _, e := range g.forward[id] {
			switch color[e.ToNode] {
			case white:
				if err := visit(e.ToNode); err != nil {
					return err
				}
			case gray:
				cycleStart := 0
				for i, n := range stack {
					if n == e.ToNode {
						cycleStart = i
						break
					}
				}
				cycle := append(append([]string{}, stack[cycleStart:]...), e.ToNode)
				return &GraphStructureError{Reason: "cycle detected", Cycle: cycle}
			case black:
				// already fully explored, no cycle through here
			}
		}

		stack = stack[:len(stack)-1]
		color[id] = black
		return nil
	}

	for _, n := range g.Nodes() {
		if color[n.ID] == white {
			if err := visit(n.ID); err != nil {
				return err
			}
		}
	}
	return nil
}
