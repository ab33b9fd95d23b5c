//go:build wasip1

// Command scenecheck drives every SceneAdapter operation against a real host.
// Each check export returns 0 on success or the number of the first failed
// assertion.
package main

import (
	"errors"

	"github.com/websg-dev/websg-go/domain/entities"
	sdkerrors "github.com/websg-dev/websg-go/domain/errors"
	"github.com/websg-dev/websg-go/infrastructure/wasm"
)

const (
	rigName   = "camera-rig"
	missingID = entities.NodeID(99)
	eyeHeight = float32(1.6)
)

var (
	host        = wasm.NewSceneAdapter()
	rig, camera entities.Node
)

//go:wasmexport initialize
func initialize() {
	rig = host.CreateNode()
	camera = host.CreateNode()
}

//go:wasmexport update
func update() {}

//go:wasmexport check_round_trip
func checkRoundTrip() int32 {
	rig.Name = rigName
	rig.Position[1] = eyeHeight
	if err := host.UpdateNode(rig); err != nil {
		return 1
	}
	if err := host.AddChild(rig.ID, camera.ID); err != nil {
		return 2
	}
	got, err := host.GetNode(rig.ID)
	if err != nil {
		return 3
	}
	if got.Name != rigName {
		return 4
	}
	if got.Position[1] != eyeHeight {
		return 5
	}
	if got.FirstChild != camera.ID {
		return 6
	}
	if buffers, _ := wasm.PinnedMemory(); buffers != 0 {
		return 7
	}
	return 0
}

//go:wasmexport check_missing
func checkMissing() int32 {
	var nf *sdkerrors.NodeNotFoundError
	if _, err := host.GetNode(missingID); !errors.As(err, &nf) || nf.ID != missingID {
		return 1
	}
	if err := host.AddChild(rig.ID, missingID); !errors.As(err, &nf) || nf.ID != missingID {
		return 2
	}
	if err := host.RemoveChild(missingID, camera.ID); !errors.As(err, &nf) || nf.ID != missingID {
		return 3
	}
	return 0
}

//go:wasmexport check_hierarchy
func checkHierarchy() int32 {
	var he *sdkerrors.HierarchyError
	if err := host.AddChild(rig.ID, rig.ID); !errors.As(err, &he) || he.Unlink {
		return 1
	}
	if err := host.RemoveChild(camera.ID, rig.ID); !errors.As(err, &he) || !he.Unlink {
		return 2
	}
	return 0
}

func main() {}
