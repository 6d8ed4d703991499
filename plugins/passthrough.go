package plugins

import (
	"fmt"

	"github.com/smallnest/streamdag/plugin"
)

// Passthrough forwards its single "in" input to its single "out" output
// unchanged. config["type_name"] selects the declared port type (default
// "Number"), so the same plugin type can be wired into graphs carrying
// different payload types without a recompile.
type Passthrough struct {
	plugin.BaseNode
	nodeID   string
	typeName string
}

// NewPassthrough constructs a Passthrough node.
func NewPassthrough(nodeID string, config map[string]any) (plugin.INode, error) {
	typeName := "Number"
	if v, ok := config["type_name"].(string); ok && v != "" {
		typeName = v
	}
	return &Passthrough{nodeID: nodeID, typeName: typeName}, nil
}

func (p *Passthrough) GetMetadata() plugin.Metadata {
	return plugin.Metadata{
		Type: "passthrough", Name: "Passthrough", Version: "1.0",
		Category: plugin.CategoryBasic, Description: "forwards input to output unchanged",
	}
}

func (p *Passthrough) GetPorts() (inputs, outputs []plugin.PortSpec) {
	port := plugin.PortSpec{Name: "in", TypeName: p.typeName, Required: true}
	return []plugin.PortSpec{port}, []plugin.PortSpec{{Name: "out", TypeName: p.typeName, Required: true}}
}

func (p *Passthrough) ValidateConfig(config map[string]any) error {
	if v, ok := config["type_name"]; ok {
		if _, ok := v.(string); !ok {
			return fmt.Errorf("passthrough: config.type_name must be a string, got %T", v)
		}
	}
	return nil
}

func (p *Passthrough) Initialize() error { return nil }

func (p *Passthrough) Run(rc plugin.RunContext) (plugin.NodeResult, error) {
	v, ok := rc.Inputs["in"]
	if !ok {
		return plugin.NodeResult{Success: true, Outputs: map[string]any{}}, nil
	}
	return plugin.NodeResult{Success: true, Outputs: map[string]any{"out": v}}, nil
}
