package dagmodel

import (
	"fmt"
	"strings"
)

// GraphStructureError reports a structural problem: a dangling edge
// endpoint, a wrong-direction endpoint, more than one enabled edge into an
// input port, a missing required input, or a cycle.
type GraphStructureError struct {
	Reason string
	Node   string
	Port   string
	Cycle  []string
}

func (e *GraphStructureError) Error() string {
	if len(e.Cycle) > 0 {
		return fmt.Sprintf("graph structure error: cycle detected: %s", strings.Join(e.Cycle, " -> "))
	}
	if e.Port != "" {
		return fmt.Sprintf("graph structure error: %s (%s.%s)", e.Reason, e.Node, e.Port)
	}
	if e.Node != "" {
		return fmt.Sprintf("graph structure error: %s (node %s)", e.Reason, e.Node)
	}
	return fmt.Sprintf("graph structure error: %s", e.Reason)
}

// TypeMismatchError reports an edge whose endpoint types are not
// compatible in the Type Registry.
type TypeMismatchError struct {
	FromNode, FromPort, FromType string
	ToNode, ToPort, ToType       string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: %s.%s (%s) -> %s.%s (%s) are not compatible",
		e.FromNode, e.FromPort, e.FromType, e.ToNode, e.ToPort, e.ToType)
}

// PluginInstantiationError wraps a plugin registry failure encountered
// while building a node.
type PluginInstantiationError struct {
	NodeID string
	Cause  error
}

func (e *PluginInstantiationError) Error() string {
	return fmt.Sprintf("failed to instantiate node %q: %v", e.NodeID, e.Cause)
}
func (e *PluginInstantiationError) Unwrap() error { return e.Cause }
