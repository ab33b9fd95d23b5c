//go:build wasip1

package abi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reset(t *testing.T) {
	t.Helper()
	pinned.Lock()
	pinned.bufs = make(map[uint32][]byte)
	pinned.total = 0
	pinned.limit = DefaultLimit
	pinned.Unlock()
}

func TestPackPtrLen(t *testing.T) {
	assert.Equal(t, uint64(0x10)<<32|5, PackPtrLen(0x10, 5))
	assert.Zero(t, PackPtrLen(0, 0))
	assert.Panics(t, func() { PackPtrLen(0, 1) })
}

func TestTakeString(t *testing.T) {
	reset(t)

	ptr := allocate(6)
	copy(view(ptr, 6), "camera")
	count, total := Stats()
	require.Equal(t, 1, count)
	require.Equal(t, 6, total)

	assert.Equal(t, "camera", TakeString(ptr, 6))

	count, total = Stats()
	assert.Zero(t, count, "TakeString releases the buffer")
	assert.Zero(t, total)
	assert.Empty(t, TakeString(0, 0))
}

func TestPtrFromBytes(t *testing.T) {
	reset(t)

	data := []byte(`{"message":"hi"}`)
	packed := PtrFromBytes(data)
	ptr, length := uint32(packed>>PtrHighBits), uint32(packed)
	require.NotZero(t, ptr)
	assert.Equal(t, data, view(ptr, length))

	DeallocatePacked(packed)
	count, _ := Stats()
	assert.Zero(t, count)

	assert.Zero(t, PtrFromBytes(nil))
	DeallocatePacked(0)
}

func TestDeallocate_UnknownAndRepeated(t *testing.T) {
	reset(t)

	ptr := allocate(8)
	deallocate(ptr, 8)
	deallocate(ptr, 8)
	deallocate(12345, 1)

	count, total := Stats()
	assert.Zero(t, count)
	assert.Zero(t, total)
}

func TestSetLimit(t *testing.T) {
	reset(t)
	defer reset(t)

	SetLimit(0)
	SetLimit(-1)
	require.NotZero(t, allocate(1024), "non-positive limits are ignored")

	SetLimit(2048)
	require.NotZero(t, allocate(512))
	assert.Panics(t, func() { allocate(1024) })
}
