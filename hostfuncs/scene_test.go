package hostfuncs

import (
	"context"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/websg-dev/websg-go/domain/entities"
	sdkerrors "github.com/websg-dev/websg-go/domain/errors"
	"github.com/websg-dev/websg-go/nodelayout"
	"github.com/websg-dev/websg-go/scene"
)

func newSceneRegistry(t *testing.T, graph *scene.Graph, opts ...SceneOption) *Registry {
	t.Helper()
	reg, err := NewRegistry(WithBundle(SceneBundle(graph, opts...)))
	require.NoError(t, err)
	return reg
}

func readRecord(t *testing.T, mem *fakeMemory, at uint32) nodelayout.Record {
	t.Helper()
	raw, err := mem.Read(at, nodelayout.Size)
	require.NoError(t, err)
	rec, err := nodelayout.Decode(raw)
	require.NoError(t, err)
	return rec
}

func TestCreateNode(t *testing.T) {
	graph := scene.NewGraph()
	reg := newSceneRegistry(t, graph)
	mem := newFakeMemory(4096)

	res, err := reg.Invoke(context.Background(), FuncCreateNode, Call{Memory: mem, Params: []uint64{128}})
	require.NoError(t, err)
	assert.Nil(t, res)

	rec := readRecord(t, mem, 128)
	assert.Equal(t, entities.NewNode(1), rec.Node(""))
	assert.Zero(t, rec.NamePtr)
	assert.Equal(t, 1, graph.Len())
}

func TestCreateNode_Failures(t *testing.T) {
	t.Run("graph full", func(t *testing.T) {
		graph := scene.NewGraph(scene.WithMaxNodes(1))
		_, err := graph.Create()
		require.NoError(t, err)
		reg := newSceneRegistry(t, graph)

		_, err = reg.Invoke(context.Background(), FuncCreateNode, Call{Memory: newFakeMemory(256), Params: []uint64{0}})
		assert.ErrorIs(t, err, scene.ErrGraphFull)
	})

	t.Run("out of range", func(t *testing.T) {
		graph := scene.NewGraph()
		reg := newSceneRegistry(t, graph)

		_, err := reg.Invoke(context.Background(), FuncCreateNode, Call{Memory: newFakeMemory(256), Params: []uint64{250}})
		var mae *sdkerrors.MemoryAccessError
		assert.ErrorAs(t, err, &mae)
		assert.Zero(t, graph.Len(), "the unreported node is discarded")

		// Ids are not reused after a discard.
		_, err = reg.Invoke(context.Background(), FuncCreateNode, Call{Memory: newFakeMemory(256), Params: []uint64{0}})
		require.NoError(t, err)
		assert.Equal(t, []entities.NodeID{2}, nodeIDs(graph.Snapshot()))
	})
}

func TestGetNode_ExposesEveryField(t *testing.T) {
	graph := scene.NewGraph()
	for i := 0; i < 4; i++ {
		_, err := graph.Create()
		require.NoError(t, err)
	}
	require.NoError(t, graph.AddChild(1, 2))
	require.NoError(t, graph.AddChild(1, 3))
	require.NoError(t, graph.AddChild(1, 4))
	require.NoError(t, graph.AddChild(3, 4))
	require.NoError(t, graph.AddChild(1, 4))

	n, err := graph.Get(3)
	require.NoError(t, err)
	n.Name = "hand"
	n.Position = mgl32.Vec3{0.5, -1, 2}
	n.Scale = mgl32.Vec3{1, 2, 3}
	n.Quaternion = entities.Quaternion{0, 0.7071068, 0, 0.7071068}
	require.NoError(t, graph.Update(n))
	want, err := graph.Get(3)
	require.NoError(t, err)

	reg := newSceneRegistry(t, graph)
	mem := newFakeMemory(4096)

	res, err := reg.Invoke(context.Background(), FuncGetNode, Call{Memory: mem, Params: []uint64{3, 64}})
	require.NoError(t, err)
	assert.Equal(t, []uint64{0}, res)

	rec := readRecord(t, mem, 64)
	require.Equal(t, uint32(4), rec.NameLen)
	name, err := mem.Read(rec.NamePtr, rec.NameLen)
	require.NoError(t, err)

	got := rec.Node(string(name))
	assert.Equal(t, want, got)
	assert.Equal(t, entities.NodeID(1), got.Parent)
	assert.Equal(t, entities.NodeID(2), got.PrevSibling)
	assert.Equal(t, entities.NodeID(4), got.NextSibling)
}

func TestGetNode_Errors(t *testing.T) {
	graph := scene.NewGraph()
	n, err := graph.Create()
	require.NoError(t, err)
	n.Name = "named"
	require.NoError(t, graph.Update(n))
	reg := newSceneRegistry(t, graph)

	t.Run("not found", func(t *testing.T) {
		_, err := reg.Invoke(context.Background(), FuncGetNode, Call{Memory: newFakeMemory(256), Params: []uint64{9, 0}})
		assert.Equal(t, nodelayout.StatusNotFound, StatusOf(err))
	})

	t.Run("allocation failure", func(t *testing.T) {
		mem := newFakeMemory(256)
		mem.allocErr = assert.AnError
		_, err := reg.Invoke(context.Background(), FuncGetNode, Call{Memory: mem, Params: []uint64{1, 0}})
		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestUpdateNode(t *testing.T) {
	graph := scene.NewGraph()
	_, err := graph.Create()
	require.NoError(t, err)
	reg := newSceneRegistry(t, graph, WithMaxNameLength(8))

	mem := newFakeMemory(4096)
	require.NoError(t, mem.Write(512, []byte("eye")))

	n := entities.NewNode(1)
	n.Position[1] = 1.6
	n.Parent = 77
	rec := nodelayout.FromNode(n)
	rec.NamePtr, rec.NameLen = 512, 3
	require.NoError(t, mem.Write(0, nodelayout.Encode(rec)))

	res, err := reg.Invoke(context.Background(), FuncUpdateNode, Call{Memory: mem, Params: []uint64{0}})
	require.NoError(t, err)
	assert.Equal(t, []uint64{0}, res)

	got, err := graph.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "eye", got.Name)
	assert.Equal(t, mgl32.Vec3{0, 1.6, 0}, got.Position)
	assert.Equal(t, entities.NoNode, got.Parent)
}

func TestUpdateNode_Errors(t *testing.T) {
	graph := scene.NewGraph()
	_, err := graph.Create()
	require.NoError(t, err)
	reg := newSceneRegistry(t, graph, WithMaxNameLength(8))

	tests := []struct {
		name   string
		rec    nodelayout.Record
		want   nodelayout.Status
		record uint32
	}{
		{name: "unknown node", rec: nodelayout.Record{ID: 5}, want: nodelayout.StatusNotFound},
		{name: "name too long", rec: nodelayout.Record{ID: 1, NamePtr: 512, NameLen: 9}, want: nodelayout.StatusFault},
		{name: "name out of range", rec: nodelayout.Record{ID: 1, NamePtr: 4090, NameLen: 8}, want: nodelayout.StatusFault},
		{name: "record out of range", record: 4090, want: nodelayout.StatusFault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := newFakeMemory(4096)
			require.NoError(t, mem.Write(0, nodelayout.Encode(tt.rec)))

			_, err := reg.Invoke(context.Background(), FuncUpdateNode, Call{Memory: mem, Params: []uint64{uint64(tt.record)}})
			assert.Equal(t, tt.want, StatusOf(err))
		})
	}
}

func TestAddRemoveChild(t *testing.T) {
	graph := scene.NewGraph()
	for i := 0; i < 2; i++ {
		_, err := graph.Create()
		require.NoError(t, err)
	}
	reg := newSceneRegistry(t, graph)
	ctx := context.Background()

	res, err := reg.Invoke(ctx, FuncAddChild, Call{Params: []uint64{1, 2}})
	require.NoError(t, err)
	assert.Equal(t, []uint64{0}, res)

	_, err = reg.Invoke(ctx, FuncAddChild, Call{Params: []uint64{2, 1}})
	assert.Equal(t, nodelayout.StatusInvalid, StatusOf(err))

	_, err = reg.Invoke(ctx, FuncRemoveChild, Call{Params: []uint64{2, 1}})
	assert.Equal(t, nodelayout.StatusInvalid, StatusOf(err))

	res, err = reg.Invoke(ctx, FuncRemoveChild, Call{Params: []uint64{1, 2}})
	require.NoError(t, err)
	assert.Equal(t, []uint64{0}, res)

	_, err = reg.Invoke(ctx, FuncRemoveChild, Call{Params: []uint64{1, 3}})
	assert.Equal(t, nodelayout.StatusNotFound, StatusOf(err))
}

func nodeIDs(nodes []entities.Node) []entities.NodeID {
	ids := make([]entities.NodeID, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	return ids
}
