// Package wasm implements the guest side of the websg host imports. The
// adapters build for wasip1; native builds get stubs that panic.
package wasm

import (
	"fmt"

	"github.com/websg-dev/websg-go/domain/entities"
	sdkerrors "github.com/websg-dev/websg-go/domain/errors"
	"github.com/websg-dev/websg-go/nodelayout"
)

const (
	opGetNode     = "get_node"
	opUpdateNode  = "update_node"
	opAddChild    = "add_child"
	opRemoveChild = "remove_child"
)

// statusError maps a non-OK host status to the error the guest sees.
// Single-node calls pass child as NoNode. For pair calls the host does not
// say which id it could not find; exists resolves it, and a nil exists
// blames the child.
func statusError(op string, status nodelayout.Status, parent, child entities.NodeID, exists func(entities.NodeID) bool) error {
	switch status {
	case nodelayout.StatusNotFound:
		missing := parent
		if child != entities.NoNode && (exists == nil || exists(parent)) {
			missing = child
		}
		return fmt.Errorf("websg %s: %w", op, &sdkerrors.NodeNotFoundError{ID: missing})
	case nodelayout.StatusInvalid:
		return &sdkerrors.HierarchyError{
			Parent: parent,
			Child:  child,
			Reason: "rejected by host",
			Unlink: op == opRemoveChild,
		}
	default:
		return &nodelayout.StatusError{Op: op, Status: status}
	}
}
