package plugins

import (
	"sync/atomic"

	"github.com/smallnest/streamdag/plugin"
)

// CountingSink has a single "in" input and no outputs; it counts how many
// packets it has received, for use in smoke tests and example graphs.
type CountingSink struct {
	plugin.BaseNode
	nodeID  string
	typeName string
	count   atomic.Int64
}

// NewCountingSink constructs a CountingSink node.
func NewCountingSink(nodeID string, config map[string]any) (plugin.INode, error) {
	typeName := "Number"
	if v, ok := config["type_name"].(string); ok && v != "" {
		typeName = v
	}
	return &CountingSink{nodeID: nodeID, typeName: typeName}, nil
}

func (s *CountingSink) GetMetadata() plugin.Metadata {
	return plugin.Metadata{
		Type: "counting_sink", Name: "CountingSink", Version: "1.0",
		Category: plugin.CategoryBasic, Description: "counts received packets",
	}
}

func (s *CountingSink) GetPorts() (inputs, outputs []plugin.PortSpec) {
	return []plugin.PortSpec{{Name: "in", TypeName: s.typeName, Required: true}}, nil
}

func (s *CountingSink) ValidateConfig(config map[string]any) error { return nil }

func (s *CountingSink) Initialize() error { s.count.Store(0); return nil }

func (s *CountingSink) Run(rc plugin.RunContext) (plugin.NodeResult, error) {
	s.count.Add(1)
	return plugin.NodeResult{Success: true, Outputs: map[string]any{}}, nil
}

// Count returns the number of packets received so far.
func (s *CountingSink) Count() int64 { return s.count.Load() }
