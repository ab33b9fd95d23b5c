//go:build !wasip1

package wasm

import (
	"github.com/websg-dev/websg-go/domain/entities"
)

// SceneAdapter stub for native builds.
type SceneAdapter struct{}

func NewSceneAdapter() *SceneAdapter {
	return &SceneAdapter{}
}

func (a *SceneAdapter) CreateNode() entities.Node {
	panic("WASM scene adapter not available in native build")
}

func (a *SceneAdapter) GetNode(id entities.NodeID) (entities.Node, error) {
	panic("WASM scene adapter not available in native build")
}

func (a *SceneAdapter) UpdateNode(n entities.Node) error {
	panic("WASM scene adapter not available in native build")
}

func (a *SceneAdapter) AddChild(parent, child entities.NodeID) error {
	panic("WASM scene adapter not available in native build")
}

func (a *SceneAdapter) RemoveChild(parent, child entities.NodeID) error {
	panic("WASM scene adapter not available in native build")
}
