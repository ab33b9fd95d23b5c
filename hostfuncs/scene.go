package hostfuncs

import (
	"context"
	"fmt"

	"github.com/websg-dev/websg-go/domain/entities"
	sdkerrors "github.com/websg-dev/websg-go/domain/errors"
	"github.com/websg-dev/websg-go/nodelayout"
	"github.com/websg-dev/websg-go/scene"
)

// Scene function names, imported by guests from the host module.
const (
	FuncCreateNode  = "create_node"
	FuncGetNode     = "get_node"
	FuncUpdateNode  = "update_node"
	FuncAddChild    = "add_child"
	FuncRemoveChild = "remove_child"
)

// DefaultMaxNameLength bounds node names accepted from guests.
const DefaultMaxNameLength = 1024

// SceneOption configures SceneBundle.
type SceneOption func(*sceneConfig)

type sceneConfig struct {
	maxNameLength uint32
}

// WithMaxNameLength sets the longest node name update_node accepts.
func WithMaxNameLength(n uint32) SceneOption {
	return func(c *sceneConfig) {
		c.maxNameLength = n
	}
}

// SceneBundle returns the scene graph functions backed by graph.
//
//	create_node(out i32)                      traps on failure
//	get_node(id i32, out i32) -> status i32
//	update_node(in i32) -> status i32         name and transform only
//	add_child(parent i32, child i32) -> status i32
//	remove_child(parent i32, child i32) -> status i32
func SceneBundle(graph *scene.Graph, opts ...SceneOption) Bundle {
	cfg := sceneConfig{maxNameLength: DefaultMaxNameLength}
	for _, opt := range opts {
		opt(&cfg)
	}
	s := &sceneFuncs{graph: graph, cfg: cfg}

	i32 := KindI32
	return NewBundle(
		Function{Name: FuncCreateNode, Handler: s.createNode,
			Signature: Signature{Params: []ValueKind{i32}}},
		Function{Name: FuncGetNode, Handler: s.getNode,
			Signature: Signature{Params: []ValueKind{i32, i32}, Results: []ValueKind{i32}}},
		Function{Name: FuncUpdateNode, Handler: s.updateNode,
			Signature: Signature{Params: []ValueKind{i32}, Results: []ValueKind{i32}}},
		Function{Name: FuncAddChild, Handler: s.addChild,
			Signature: Signature{Params: []ValueKind{i32, i32}, Results: []ValueKind{i32}}},
		Function{Name: FuncRemoveChild, Handler: s.removeChild,
			Signature: Signature{Params: []ValueKind{i32, i32}, Results: []ValueKind{i32}}},
	)
}

type sceneFuncs struct {
	graph *scene.Graph
	cfg   sceneConfig
}

func (s *sceneFuncs) createNode(ctx context.Context, call Call) ([]uint64, error) {
	n, err := s.graph.Create()
	if err != nil {
		return nil, err
	}
	if err := writeNode(ctx, call.Memory, call.Uint32(0), n); err != nil {
		// The guest traps and never learns the id.
		_ = s.graph.Discard(n.ID)
		return nil, fmt.Errorf("write node %d: %w", n.ID, err)
	}
	return nil, nil
}

func (s *sceneFuncs) getNode(ctx context.Context, call Call) ([]uint64, error) {
	n, err := s.graph.Get(entities.NodeID(call.Uint32(0)))
	if err != nil {
		return nil, err
	}
	if err := writeNode(ctx, call.Memory, call.Uint32(1), n); err != nil {
		return nil, err
	}
	return statusResult(nodelayout.StatusOK), nil
}

func (s *sceneFuncs) updateNode(_ context.Context, call Call) ([]uint64, error) {
	raw, err := call.Memory.Read(call.Uint32(0), nodelayout.Size)
	if err != nil {
		return nil, err
	}
	rec, err := nodelayout.Decode(raw)
	if err != nil {
		return nil, err
	}

	var name string
	if rec.NameLen > 0 {
		if rec.NameLen > s.cfg.maxNameLength {
			return nil, &sdkerrors.LayoutError{
				Record: "node name",
				Size:   int(rec.NameLen),
				Want:   int(s.cfg.maxNameLength),
			}
		}
		b, err := call.Memory.Read(rec.NamePtr, rec.NameLen)
		if err != nil {
			return nil, err
		}
		name = string(b)
	}

	if err := s.graph.Update(rec.Node(name)); err != nil {
		return nil, err
	}
	return statusResult(nodelayout.StatusOK), nil
}

func (s *sceneFuncs) addChild(_ context.Context, call Call) ([]uint64, error) {
	if err := s.graph.AddChild(entities.NodeID(call.Uint32(0)), entities.NodeID(call.Uint32(1))); err != nil {
		return nil, err
	}
	return statusResult(nodelayout.StatusOK), nil
}

func (s *sceneFuncs) removeChild(_ context.Context, call Call) ([]uint64, error) {
	if err := s.graph.RemoveChild(entities.NodeID(call.Uint32(0)), entities.NodeID(call.Uint32(1))); err != nil {
		return nil, err
	}
	return statusResult(nodelayout.StatusOK), nil
}

// writeNode encodes n at out. A non-empty name is copied into a fresh guest
// allocation that the guest takes ownership of.
func writeNode(ctx context.Context, mem GuestMemory, out uint32, n entities.Node) error {
	rec := nodelayout.FromNode(n)
	if n.Name != "" {
		ptr, err := mem.Allocate(ctx, uint32(len(n.Name)))
		if err != nil {
			return fmt.Errorf("allocate node name: %w", err)
		}
		if err := mem.Write(ptr, []byte(n.Name)); err != nil {
			return err
		}
		rec.NamePtr = ptr
		rec.NameLen = uint32(len(n.Name))
	}
	return mem.Write(out, nodelayout.Encode(rec))
}
