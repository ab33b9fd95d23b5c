package ports

import (
	"github.com/websg-dev/websg-go/domain/entities"
)

// SceneHost is the guest's view of the host scene-graph API.
// The WASM adapter implements it with host imports from the "websg" module.
type SceneHost interface {
	// CreateNode asks the host for a new node. The host registers the node
	// and returns a copy with default values. It has no error path: a host
	// failure traps the guest instead.
	CreateNode() entities.Node

	// GetNode returns the host's current copy of a node.
	GetNode(id entities.NodeID) (entities.Node, error)

	// UpdateNode writes the name and transform of n back to the host.
	// Tree links in n are ignored.
	UpdateNode(n entities.Node) error

	// AddChild moves child under parent as its last child.
	AddChild(parent, child entities.NodeID) error

	// RemoveChild detaches child from parent, leaving it a root.
	RemoveChild(parent, child entities.NodeID) error
}
