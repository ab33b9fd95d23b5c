package scene

import (
	"bytes"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportGLTF(t *testing.T) {
	g := newTree(t)
	n, err := g.Get(3)
	require.NoError(t, err)
	n.Name = "eye"
	n.Position = mgl32.Vec3{0, 1.6, 0}
	require.NoError(t, g.Update(n))
	_, err = g.Create()
	require.NoError(t, err)

	doc := ExportGLTF(g)

	require.Len(t, doc.Nodes, 5)
	require.Len(t, doc.Scenes, 1)
	assert.Equal(t, []uint32{0, 4}, doc.Scenes[0].Nodes)
	assert.Equal(t, []uint32{1, 2, 3}, doc.Nodes[0].Children)
	assert.Equal(t, "eye", doc.Nodes[2].Name)
	assert.Equal(t, [3]float32{0, 1.6, 0}, doc.Nodes[2].Translation)
	assert.Equal(t, [4]float32{0, 0, 0, 1}, doc.Nodes[2].Rotation)
	assert.Equal(t, [3]float32{1, 1, 1}, doc.Nodes[2].Scale)
}

func TestWriteGLTF(t *testing.T) {
	for _, binary := range []bool{false, true} {
		g := newTree(t)
		var buf bytes.Buffer
		require.NoError(t, WriteGLTF(&buf, ExportGLTF(g), binary))

		if binary {
			assert.Equal(t, []byte("glTF"), buf.Bytes()[:4])
		} else {
			assert.Contains(t, buf.String(), `"asset"`)
		}

		var decoded gltf.Document
		require.NoError(t, gltf.NewDecoder(bytes.NewReader(buf.Bytes())).Decode(&decoded))
		assert.Len(t, decoded.Nodes, 4)
		assert.Equal(t, []uint32{1, 2, 3}, decoded.Nodes[0].Children)
	}
}
