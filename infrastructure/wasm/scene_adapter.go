//go:build wasip1

package wasm

import (
	"fmt"
	"runtime"

	"github.com/websg-dev/websg-go/domain/entities"
	"github.com/websg-dev/websg-go/domain/ports"
	"github.com/websg-dev/websg-go/internal/abi"
	_ "github.com/websg-dev/websg-go/log" // Initialize WASM logging handler
	"github.com/websg-dev/websg-go/nodelayout"
)

// Compile-time interface compliance check
var _ ports.SceneHost = (*SceneAdapter)(nil)

// SceneAdapter implements ports.SceneHost for the WASM environment.
type SceneAdapter struct{}

// NewSceneAdapter creates a new scene adapter.
func NewSceneAdapter() *SceneAdapter {
	return &SceneAdapter{}
}

// websg_layout_version reports the node layout this guest was built against.
//
//go:wasmexport websg_layout_version
func layoutVersion() int32 {
	return nodelayout.Version
}

// CreateNode calls the host's create_node import. The host writes the record
// into a guest buffer and, for a non-empty name, hands over an allocation
// that is copied out and released here.
func (a *SceneAdapter) CreateNode() entities.Node {
	buf := make([]byte, nodelayout.Size)
	host_create_node(abi.PtrOf(buf))
	runtime.KeepAlive(buf)

	node, err := readNode(buf)
	if err != nil {
		// The buffer is always Size bytes; a decode failure is a broken SDK.
		panic(fmt.Sprintf("websg: create_node: %v", err))
	}
	return node
}

// GetNode returns the host's current copy of a node.
func (a *SceneAdapter) GetNode(id entities.NodeID) (entities.Node, error) {
	buf := make([]byte, nodelayout.Size)
	status := nodelayout.Status(host_get_node(uint32(id), abi.PtrOf(buf)))
	runtime.KeepAlive(buf)

	if status != nodelayout.StatusOK {
		return entities.Node{}, statusError(opGetNode, status, id, entities.NoNode, nil)
	}
	return readNode(buf)
}

// UpdateNode writes the name and transform of n back to the host.
func (a *SceneAdapter) UpdateNode(n entities.Node) error {
	rec := nodelayout.FromNode(n)

	var name []byte
	if n.Name != "" {
		name = []byte(n.Name)
		rec.NamePtr = abi.PtrOf(name)
		rec.NameLen = uint32(len(name))
	}

	buf := nodelayout.Encode(rec)
	status := nodelayout.Status(host_update_node(abi.PtrOf(buf)))
	runtime.KeepAlive(buf)
	runtime.KeepAlive(name)

	if status != nodelayout.StatusOK {
		return statusError(opUpdateNode, status, n.ID, entities.NoNode, nil)
	}
	return nil
}

// AddChild moves child under parent as its last child.
func (a *SceneAdapter) AddChild(parent, child entities.NodeID) error {
	status := nodelayout.Status(host_add_child(uint32(parent), uint32(child)))
	if status != nodelayout.StatusOK {
		return statusError(opAddChild, status, parent, child, a.exists)
	}
	return nil
}

// RemoveChild detaches child from parent.
func (a *SceneAdapter) RemoveChild(parent, child entities.NodeID) error {
	status := nodelayout.Status(host_remove_child(uint32(parent), uint32(child)))
	if status != nodelayout.StatusOK {
		return statusError(opRemoveChild, status, parent, child, a.exists)
	}
	return nil
}

// exists reports whether the host knows id. It is only used to name the
// missing node after a failed pair operation.
func (a *SceneAdapter) exists(id entities.NodeID) bool {
	_, err := a.GetNode(id)
	return err == nil
}

func readNode(buf []byte) (entities.Node, error) {
	rec, err := nodelayout.Decode(buf)
	if err != nil {
		return entities.Node{}, err
	}
	return rec.Node(abi.TakeString(rec.NamePtr, rec.NameLen)), nil
}
