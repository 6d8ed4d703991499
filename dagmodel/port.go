// Package dagmodel implements the Graph Model: nodes with
// typed ports, directed edges, and the three-phase build/validate/topo-sort
// pipeline that turns a declarative description into a ready-to-run graph.
package dagmodel

import "github.com/smallnest/streamdag/plugin"

// Direction is a port's data flow direction.
type Direction int

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	if d == Input {
		return "input"
	}
	return "output"
}

// Port is a named, typed endpoint on a node. An output port may
// be connected to any number of input ports; an input port accepts at most
// one incoming enabled edge (enforced during validation, see validate.go).
type Port struct {
	Name        string
	Direction   Direction
	TypeName    string
	Required    bool
	HasDefault  bool
	Default     any
	Description string
}

// portsFromSpecs adapts plugin.PortSpec lists (what an INode's GetPorts
// returns) into Port values tagged with their direction.
func portsFromSpecs(inputs, outputs []plugin.PortSpec) (in, out []Port) {
	in = make([]Port, 0, len(inputs))
	for _, p := range inputs {
		in = append(in, Port{
			Name: p.Name, Direction: Input, TypeName: p.TypeName,
			Required: p.Required, HasDefault: p.HasDefault, Default: p.Default,
			Description: p.Description,
		})
	}
	out = make([]Port, 0, len(outputs))
	for _, p := range outputs {
		out = append(out, Port{
			Name: p.Name, Direction: Output, TypeName: p.TypeName,
			Required: p.Required, HasDefault: p.HasDefault, Default: p.Default,
			Description: p.Description,
		})
	}
	return in, out
}
