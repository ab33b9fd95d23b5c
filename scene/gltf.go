package scene

import (
	"io"

	"github.com/qmuntal/gltf"

	"github.com/websg-dev/websg-go/domain/entities"
)

// ExportGLTF converts the graph into a glTF document with one scene whose
// root nodes are the graph roots. Node order follows ascending ids.
func ExportGLTF(g *Graph) *gltf.Document {
	doc := gltf.NewDocument()
	doc.Asset.Generator = "websg"

	nodes := g.Snapshot()
	index := make(map[entities.NodeID]uint32, len(nodes))
	for i, n := range nodes {
		index[n.ID] = uint32(i)
	}

	byID := make(map[entities.NodeID]entities.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	for _, n := range nodes {
		node := &gltf.Node{
			Name:        n.Name,
			Translation: n.Position,
			Rotation:    n.Quaternion,
			Scale:       n.Scale,
		}
		for cid := n.FirstChild; cid != entities.NoNode; cid = byID[cid].NextSibling {
			node.Children = append(node.Children, index[cid])
		}
		doc.Nodes = append(doc.Nodes, node)
		if n.IsRoot() {
			doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, index[n.ID])
		}
	}
	return doc
}

// WriteGLTF encodes doc to w, as GLB when binary is set and as JSON glTF
// otherwise.
func WriteGLTF(w io.Writer, doc *gltf.Document, binary bool) error {
	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = binary
	return encoder.Encode(doc)
}
