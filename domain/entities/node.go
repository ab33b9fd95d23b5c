package entities

import (
	"github.com/go-gl/mathgl/mgl32"
)

// NodeID identifies a node in the host scene graph.
// Ids are assigned by the host and never reused.
type NodeID uint32

// NoNode is the reserved id meaning "no node". It fills empty links.
const NoNode NodeID = 0

// Quaternion is a rotation stored as x, y, z, w.
type Quaternion [4]float32

// IdentityQuaternion is the rotation a freshly created node starts with.
var IdentityQuaternion = Quaternion{0, 0, 0, 1}

// QuaternionFrom converts a mathgl quaternion to the x, y, z, w storage order.
func QuaternionFrom(q mgl32.Quat) Quaternion {
	return Quaternion{q.V[0], q.V[1], q.V[2], q.W}
}

// Quat returns the mathgl form of q.
func (q Quaternion) Quat() mgl32.Quat {
	return mgl32.Quat{W: q[3], V: mgl32.Vec3{q[0], q[1], q[2]}}
}

// Node is a scene entity. Tree links are non-owning ids into the host arena;
// NoNode marks an absent link.
type Node struct {
	Name        string     `json:"name"`
	Position    mgl32.Vec3 `json:"position"`
	Scale       mgl32.Vec3 `json:"scale"`
	Quaternion  Quaternion `json:"quaternion"`
	ID          NodeID     `json:"id"`
	Parent      NodeID     `json:"parent,omitempty"`
	FirstChild  NodeID     `json:"first_child,omitempty"`
	NextSibling NodeID     `json:"next_sibling,omitempty"`
	PrevSibling NodeID     `json:"prev_sibling,omitempty"`
}

// NewNode returns a node with the given id, an empty name, an identity
// transform and no links.
func NewNode(id NodeID) Node {
	return Node{
		ID:         id,
		Scale:      mgl32.Vec3{1, 1, 1},
		Quaternion: IdentityQuaternion,
	}
}

// LocalMatrix returns the node's translation * rotation * scale matrix.
func (n Node) LocalMatrix() mgl32.Mat4 {
	t := mgl32.Translate3D(n.Position[0], n.Position[1], n.Position[2])
	r := n.Quaternion.Quat().Normalize().Mat4()
	s := mgl32.Scale3D(n.Scale[0], n.Scale[1], n.Scale[2])
	return t.Mul4(r).Mul4(s)
}

// IsRoot reports whether the node has no parent.
func (n Node) IsRoot() bool {
	return n.Parent == NoNode
}

// Transform is the mutable part of a node the guest may write back.
type Transform struct {
	Position   mgl32.Vec3
	Scale      mgl32.Vec3
	Quaternion Quaternion
}

// Transform returns the node's local transform.
func (n Node) Transform() Transform {
	return Transform{Position: n.Position, Scale: n.Scale, Quaternion: n.Quaternion}
}

// SetTransform replaces the node's local transform. Name and links are
// untouched.
func (n *Node) SetTransform(t Transform) {
	n.Position = t.Position
	n.Scale = t.Scale
	n.Quaternion = t.Quaternion
}
