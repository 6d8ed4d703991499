package exec

import (
	"fmt"

	"github.com/smallnest/streamdag/plugin"
)

// safeRun invokes a node's Run with panic isolation, converting a panic
// into a NodeRunError so a misbehaving plugin cannot crash the executor.
func safeRun(node plugin.INode, rc plugin.RunContext) (result plugin.NodeResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &NodeRunError{NodeID: rc.NodeID, Message: fmt.Sprintf("panic: %v", r)}
		}
	}()
	result, err = node.Run(rc)
	if err != nil {
		err = &NodeRunError{NodeID: rc.NodeID, Cause: err}
	} else if !result.Success {
		err = &NodeRunError{NodeID: rc.NodeID, Message: result.Error}
	}
	return result, err
}
