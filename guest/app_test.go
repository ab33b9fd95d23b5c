package guest

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/websg-dev/websg-go/domain/entities"
)

type mockSceneHost struct {
	mock.Mock
}

func (m *mockSceneHost) CreateNode() entities.Node {
	args := m.Called()
	return args.Get(0).(entities.Node)
}

func (m *mockSceneHost) GetNode(id entities.NodeID) (entities.Node, error) {
	args := m.Called(id)
	return args.Get(0).(entities.Node), args.Error(1)
}

func (m *mockSceneHost) UpdateNode(n entities.Node) error {
	args := m.Called(n)
	return args.Error(0)
}

func (m *mockSceneHost) AddChild(parent, child entities.NodeID) error {
	args := m.Called(parent, child)
	return args.Error(0)
}

func (m *mockSceneHost) RemoveChild(parent, child entities.NodeID) error {
	args := m.Called(parent, child)
	return args.Error(0)
}

func TestInitialize_SetsEyeHeight(t *testing.T) {
	host := new(mockSceneHost)
	host.On("CreateNode").Return(entities.NewNode(1)).Once()

	app := New(host)
	app.Initialize()

	n, ok := app.Node()
	require.True(t, ok)
	assert.Equal(t, entities.NodeID(1), n.ID)
	assert.Equal(t, mgl32.Vec3{0, 1.6, 0}, n.Position)
	host.AssertNumberOfCalls(t, "CreateNode", 1)
	host.AssertExpectations(t)
}

func TestInitialize_PreservesOtherFields(t *testing.T) {
	created := entities.Node{
		ID:          7,
		Name:        "camera",
		Position:    mgl32.Vec3{2, -3, 4},
		Scale:       mgl32.Vec3{1, 2, 3},
		Quaternion:  entities.Quaternion{0, 0.7071068, 0, 0.7071068},
		Parent:      2,
		FirstChild:  8,
		NextSibling: 9,
		PrevSibling: 5,
	}
	host := new(mockSceneHost)
	host.On("CreateNode").Return(created).Once()

	app := New(host)
	app.Initialize()

	want := created
	want.Position[1] = EyeHeight
	got, _ := app.Node()
	assert.Equal(t, want, got)
}

func TestInitialize_OnlyOnce(t *testing.T) {
	host := new(mockSceneHost)
	host.On("CreateNode").Return(entities.NewNode(1)).Once()

	app := New(host)
	app.Initialize()
	app.Initialize()

	host.AssertNumberOfCalls(t, "CreateNode", 1)
}

func TestUpdate_NoHostCalls(t *testing.T) {
	host := new(mockSceneHost)
	host.On("CreateNode").Return(entities.NewNode(1)).Once()

	app := New(host)
	app.Initialize()
	before, _ := app.Node()

	for i := 0; i < 10; i++ {
		app.Update()
	}

	after, _ := app.Node()
	assert.Equal(t, before, after)
	assert.Len(t, host.Calls, 1)
}

func TestUpdate_BeforeInitialize(t *testing.T) {
	host := new(mockSceneHost)

	app := New(host)
	app.Update()

	_, ok := app.Node()
	assert.False(t, ok)
	assert.Empty(t, host.Calls)
}

func TestCommit(t *testing.T) {
	t.Run("writes local view", func(t *testing.T) {
		host := new(mockSceneHost)
		host.On("CreateNode").Return(entities.NewNode(3)).Once()
		host.On("UpdateNode", mock.MatchedBy(func(n entities.Node) bool {
			return n.ID == 3 && n.Position[1] == EyeHeight
		})).Return(nil).Once()

		app := New(host)
		app.Initialize()
		require.NoError(t, app.Commit())
		host.AssertExpectations(t)
	})

	t.Run("noop before initialize", func(t *testing.T) {
		host := new(mockSceneHost)
		require.NoError(t, New(host).Commit())
		assert.Empty(t, host.Calls)
	})
}
