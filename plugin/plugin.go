// Package plugin implements the Plugin Registry and the INode
// contract that third-party processing nodes implement.
//
// Discovery is compile-time: plugin packages call Register (or
// MustRegister) from an init function or from main. Dependency
// declarations are probed at registration time, and a plugin with an
// unsatisfied dependency stays listed but cannot be instantiated.
package plugin

import (
	"context"
	"fmt"
)

// Category groups plugins for UI/listing purposes.
type Category string

const (
	CategoryBasic Category = "basic"
	CategoryAlgo  Category = "algo"
	CategoryIO    Category = "io"
	CategoryUI    Category = "ui"
)

// PortSpec describes one named, typed endpoint on a node.
type PortSpec struct {
	Name        string
	TypeName    string
	Required    bool
	HasDefault  bool
	Default     any
	Description string
}

// Metadata is the class-level metadata block every plugin declares.
type Metadata struct {
	Type         string
	Name         string
	Version      string
	Author       string
	Description  string
	Category     Category
	Dependencies []string
}

// NodeResult is what INode.Run returns.
type NodeResult struct {
	Success       bool
	Outputs       map[string]any
	Error         string
	Metadata      map[string]any
	ExecutionTime float64 // seconds; 0 if the caller should measure it itself
}

// RunContext is passed to INode.Run: the node's id, the input
// mapping for this invocation, a handle to shared global resources, and
// the packet id being processed. The event bus handle is deliberately
// generic (an any) so this package does not import bus, keeping the
// plugin contract free of a dependency on the executor's observability
// stack; a plugin that wants to publish from within Run casts it back.
type RunContext struct {
	Ctx        context.Context
	NodeID     string
	Inputs     map[string]any
	PacketID   uint64
	Global     *GlobalContext
	EventBus   any
}

// GlobalContext holds shared resources. The resource map is snapshotted
// at construction; mutations after the executor starts are disallowed.
type GlobalContext struct {
	resources map[string]any
}

// NewGlobalContext creates a GlobalContext over an immutable snapshot of
// resources. The caller must not mutate the map argument afterwards.
func NewGlobalContext(resources map[string]any) *GlobalContext {
	snapshot := make(map[string]any, len(resources))
	for k, v := range resources {
		snapshot[k] = v
	}
	return &GlobalContext{resources: snapshot}
}

// Resource looks up a shared resource by name.
func (g *GlobalContext) Resource(name string) (any, bool) {
	if g == nil {
		return nil, false
	}
	v, ok := g.resources[name]
	return v, ok
}

// INode is the plugin contract. Constructors accept (nodeID,
// config) and are registered via a Factory (see registry.go).
type INode interface {
	GetMetadata() Metadata
	GetPorts() (inputs, outputs []PortSpec)
	ValidateConfig(config map[string]any) error
	Initialize() error
	Run(rc RunContext) (NodeResult, error)
	Cleanup() error

	// InputDataProcessedHook is called by the executor when a packet's
	// reference count for the named input port reaches zero.
	InputDataProcessedHook(port string, data any)
}

// Factory constructs a new INode instance for a given node id and config.
type Factory func(nodeID string, config map[string]any) (INode, error)

// BaseNode is an embeddable helper that implements the hook and Cleanup
// as no-ops, so simple plugins only need to override what they use.
type BaseNode struct{}

func (BaseNode) Cleanup() error                             { return nil }
func (BaseNode) InputDataProcessedHook(_ string, _ any) {}

// ErrMissingDependency is wrapped into errors returned when a plugin
// declares a dependency that is not available in this build.
type ErrMissingDependency struct {
	PluginType string
	Dependency string
}

func (e *ErrMissingDependency) Error() string {
	return fmt.Sprintf("plugin %q requires unavailable dependency %q", e.PluginType, e.Dependency)
}
