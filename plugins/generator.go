// Package plugins provides a handful of minimal example INode
// implementations: a generator source, a passthrough transform, and a
// counting sink, used by cmd/streamdag's smoke example and by tests.
package plugins

import (
	"fmt"

	"github.com/smallnest/streamdag/plugin"
)

// Generator is a source node that emits a monotonically increasing
// Number on its "out" port every invocation. It has no input ports.
type Generator struct {
	plugin.BaseNode
	nodeID string
	next   float64
	step   float64
}

// NewGenerator constructs a Generator. config["step"] (a number) defaults
// to 1.
func NewGenerator(nodeID string, config map[string]any) (plugin.INode, error) {
	step := 1.0
	if v, ok := config["step"].(float64); ok {
		step = v
	}
	return &Generator{nodeID: nodeID, step: step}, nil
}

func (g *Generator) GetMetadata() plugin.Metadata {
	return plugin.Metadata{
		Type: "generator", Name: "Generator", Version: "1.0",
		Category: plugin.CategoryBasic, Description: "emits an incrementing number",
	}
}

func (g *Generator) GetPorts() (inputs, outputs []plugin.PortSpec) {
	return nil, []plugin.PortSpec{{Name: "out", TypeName: "Number", Required: true}}
}

func (g *Generator) ValidateConfig(config map[string]any) error {
	if v, ok := config["step"]; ok {
		if _, ok := v.(float64); !ok {
			return fmt.Errorf("generator: config.step must be a number, got %T", v)
		}
	}
	return nil
}

func (g *Generator) Initialize() error { g.next = 0; return nil }

func (g *Generator) Run(rc plugin.RunContext) (plugin.NodeResult, error) {
	value := g.next
	g.next += g.step
	return plugin.NodeResult{Success: true, Outputs: map[string]any{"out": value}}, nil
}
