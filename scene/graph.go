// Package scene implements the host-side scene graph: an id-keyed arena of
// nodes linked into a forest through parent and sibling ids.
package scene

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/websg-dev/websg-go/domain/entities"
	sdkerrors "github.com/websg-dev/websg-go/domain/errors"
)

// ErrGraphFull is returned by Create once the node limit is reached.
var ErrGraphFull = errors.New("scene graph node limit reached")

// Option configures a Graph.
type Option func(*graphConfig)

type graphConfig struct {
	maxNodes int
}

// WithMaxNodes caps the number of nodes the graph will create.
// Zero means no limit.
func WithMaxNodes(n int) Option {
	return func(c *graphConfig) {
		c.maxNodes = n
	}
}

// Graph is a goroutine-safe scene graph.
//
// Every child appears exactly once in its parent's sibling list, the list is
// doubly linked through NextSibling/PrevSibling and starts at the parent's
// FirstChild. A node has at most one parent and the parent chain never loops.
// Ids start at 1 and are never reused.
type Graph struct {
	nodes  map[entities.NodeID]*entities.Node
	cfg    graphConfig
	mu     sync.RWMutex
	nextID entities.NodeID
}

// NewGraph returns an empty graph.
func NewGraph(opts ...Option) *Graph {
	var cfg graphConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Graph{
		nodes:  make(map[entities.NodeID]*entities.Node),
		cfg:    cfg,
		nextID: 1,
	}
}

// Create registers a new root node with default values and returns a copy.
func (g *Graph) Create() (entities.Node, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cfg.maxNodes > 0 && len(g.nodes) >= g.cfg.maxNodes {
		return entities.Node{}, fmt.Errorf("create node (limit %d): %w", g.cfg.maxNodes, ErrGraphFull)
	}
	if g.nextID == entities.NoNode {
		return entities.Node{}, fmt.Errorf("create node: id space exhausted: %w", ErrGraphFull)
	}

	n := entities.NewNode(g.nextID)
	g.nextID++
	g.nodes[n.ID] = &n
	return n, nil
}

// Discard deletes a node that has neither a parent nor children. The id is
// not handed out again.
func (g *Graph) Discard(id entities.NodeID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	n, err := g.lookup(id)
	if err != nil {
		return err
	}
	if n.Parent != entities.NoNode || n.FirstChild != entities.NoNode {
		return &sdkerrors.HierarchyError{Reason: "node is still linked", Parent: n.Parent, Child: id, Unlink: true}
	}
	delete(g.nodes, id)
	return nil
}

// Get returns a copy of the node with the given id.
func (g *Graph) Get(id entities.NodeID) (entities.Node, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n, err := g.lookup(id)
	if err != nil {
		return entities.Node{}, err
	}
	return *n, nil
}

// Update copies the name and local transform of n onto the stored node with
// the same id. Link fields of n are ignored.
func (g *Graph) Update(n entities.Node) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	stored, err := g.lookup(n.ID)
	if err != nil {
		return err
	}
	stored.Name = n.Name
	stored.SetTransform(n.Transform())
	return nil
}

// AddChild makes child the last child of parent, detaching it from any
// previous parent first.
func (g *Graph) AddChild(parent, child entities.NodeID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, err := g.lookup(parent)
	if err != nil {
		return err
	}
	c, err := g.lookup(child)
	if err != nil {
		return err
	}
	if parent == child {
		return &sdkerrors.HierarchyError{Reason: "node cannot be its own parent", Parent: parent, Child: child}
	}
	for id := p.Parent; id != entities.NoNode; id = g.nodes[id].Parent {
		if id == child {
			return &sdkerrors.HierarchyError{Reason: "would create a cycle", Parent: parent, Child: child}
		}
	}

	if c.Parent != entities.NoNode {
		g.unlink(c)
	}

	c.Parent = parent
	if p.FirstChild == entities.NoNode {
		p.FirstChild = child
		return nil
	}
	last := g.nodes[p.FirstChild]
	for last.NextSibling != entities.NoNode {
		last = g.nodes[last.NextSibling]
	}
	last.NextSibling = child
	c.PrevSibling = last.ID
	return nil
}

// RemoveChild detaches child from parent. The child becomes a root and keeps
// its own subtree.
func (g *Graph) RemoveChild(parent, child entities.NodeID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, err := g.lookup(parent); err != nil {
		return err
	}
	c, err := g.lookup(child)
	if err != nil {
		return err
	}
	if c.Parent != parent {
		return &sdkerrors.HierarchyError{Reason: "not a child of this parent", Parent: parent, Child: child, Unlink: true}
	}
	g.unlink(c)
	return nil
}

// Children returns copies of the children of id in sibling order.
func (g *Graph) Children(id entities.NodeID) ([]entities.Node, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n, err := g.lookup(id)
	if err != nil {
		return nil, err
	}
	var out []entities.Node
	for cid := n.FirstChild; cid != entities.NoNode; cid = g.nodes[cid].NextSibling {
		out = append(out, *g.nodes[cid])
	}
	return out, nil
}

// Roots returns copies of all parentless nodes ordered by id.
func (g *Graph) Roots() []entities.Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []entities.Node
	for _, id := range g.sortedIDs() {
		if n := g.nodes[id]; n.IsRoot() {
			out = append(out, *n)
		}
	}
	return out
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// Snapshot returns copies of every node ordered by id.
func (g *Graph) Snapshot() []entities.Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	ids := g.sortedIDs()
	out := make([]entities.Node, 0, len(ids))
	for _, id := range ids {
		out = append(out, *g.nodes[id])
	}
	return out
}

// Walk visits every node depth-first, roots in id order and children in
// sibling order. Returning false from fn skips the node's subtree.
// fn must not call back into the graph.
func (g *Graph) Walk(fn func(n entities.Node, depth int) bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var visit func(id entities.NodeID, depth int)
	visit = func(id entities.NodeID, depth int) {
		n := g.nodes[id]
		if !fn(*n, depth) {
			return
		}
		for cid := n.FirstChild; cid != entities.NoNode; cid = g.nodes[cid].NextSibling {
			visit(cid, depth+1)
		}
	}
	for _, id := range g.sortedIDs() {
		if g.nodes[id].IsRoot() {
			visit(id, 0)
		}
	}
}

// WorldMatrix returns the node's local matrix premultiplied by every
// ancestor's local matrix.
func (g *Graph) WorldMatrix(id entities.NodeID) (mgl32.Mat4, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n, err := g.lookup(id)
	if err != nil {
		return mgl32.Mat4{}, err
	}
	m := n.LocalMatrix()
	for pid := n.Parent; pid != entities.NoNode; pid = g.nodes[pid].Parent {
		m = g.nodes[pid].LocalMatrix().Mul4(m)
	}
	return m, nil
}

// WorldPosition returns the node's origin in world space.
func (g *Graph) WorldPosition(id entities.NodeID) (mgl32.Vec3, error) {
	m, err := g.WorldMatrix(id)
	if err != nil {
		return mgl32.Vec3{}, err
	}
	return m.Col(3).Vec3(), nil
}

func (g *Graph) lookup(id entities.NodeID) (*entities.Node, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, &sdkerrors.NodeNotFoundError{ID: id}
	}
	return n, nil
}

// unlink removes c from its parent's sibling list. Caller holds the write lock.
func (g *Graph) unlink(c *entities.Node) {
	p := g.nodes[c.Parent]
	if c.PrevSibling != entities.NoNode {
		g.nodes[c.PrevSibling].NextSibling = c.NextSibling
	} else {
		p.FirstChild = c.NextSibling
	}
	if c.NextSibling != entities.NoNode {
		g.nodes[c.NextSibling].PrevSibling = c.PrevSibling
	}
	c.Parent = entities.NoNode
	c.NextSibling = entities.NoNode
	c.PrevSibling = entities.NoNode
}

func (g *Graph) sortedIDs() []entities.NodeID {
	ids := make([]entities.NodeID, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
