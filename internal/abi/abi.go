//go:build wasip1

// Package abi manages guest linear memory shared with the host. The host
// writes owned data (node names) into buffers it obtains through the
// allocate export; the guest pins those buffers until it frees them.
package abi

import (
	"fmt"
	"sync"
	"unsafe"
)

// PtrHighBits is the shift applied to the pointer half of a packed value.
const PtrHighBits = 32

// DefaultLimit is the default ceiling on memory pinned for the host.
const DefaultLimit = 16 * 1024 * 1024

var pinned = struct {
	bufs  map[uint32][]byte
	total int
	limit int
	sync.Mutex
}{
	bufs:  make(map[uint32][]byte),
	limit: DefaultLimit,
}

// SetLimit sets the pinned-memory ceiling. Non-positive values are ignored.
func SetLimit(limit int) {
	if limit <= 0 {
		return
	}
	pinned.Lock()
	defer pinned.Unlock()
	pinned.limit = limit
}

// Stats returns the number of pinned buffers and their total size.
func Stats() (count, totalBytes int) {
	pinned.Lock()
	defer pinned.Unlock()
	return len(pinned.bufs), pinned.total
}

// allocate pins a zeroed buffer and returns its address. It panics past the
// limit, which traps the calling host function.
//
//go:wasmexport allocate
func allocate(size uint32) uint32 {
	if size == 0 {
		return 0
	}

	pinned.Lock()
	defer pinned.Unlock()

	if pinned.total+int(size) > pinned.limit {
		panic(fmt.Sprintf("abi: allocation of %d bytes exceeds limit (%d of %d in use)",
			size, pinned.total, pinned.limit))
	}

	buf := make([]byte, size)
	ptr := PtrOf(buf)
	pinned.bufs[ptr] = buf
	pinned.total += int(size)
	return ptr
}

// deallocate unpins the buffer at ptr. Unknown pointers are ignored and the
// stored length, not size, is what gets accounted.
//
//go:wasmexport deallocate
func deallocate(ptr uint32, _ uint32) {
	pinned.Lock()
	defer pinned.Unlock()

	buf, ok := pinned.bufs[ptr]
	if !ok {
		return
	}
	delete(pinned.bufs, ptr)
	pinned.total -= len(buf)
}

// PtrOf returns the linear-memory address of buf's first byte.
// buf must stay reachable for as long as the host may touch it.
func PtrOf(buf []byte) uint32 {
	if len(buf) == 0 {
		return 0
	}
	//nolint:gosec // G103: linear memory address
	return uint32(uintptr(unsafe.Pointer(&buf[0])))
}

// PtrFromBytes copies data into a pinned buffer and returns it packed as
// ptr<<32 | len. Release it with DeallocatePacked.
func PtrFromBytes(data []byte) uint64 {
	if len(data) == 0 {
		return 0
	}
	ptr := allocate(uint32(len(data)))
	copy(view(ptr, uint32(len(data))), data)
	return PackPtrLen(ptr, uint32(len(data)))
}

// DeallocatePacked releases a buffer returned by PtrFromBytes.
func DeallocatePacked(packed uint64) {
	if ptr := uint32(packed >> PtrHighBits); ptr != 0 {
		deallocate(ptr, uint32(packed))
	}
}

// TakeString copies a host-allocated string out of linear memory and
// releases the allocation.
func TakeString(ptr, length uint32) string {
	if ptr == 0 || length == 0 {
		return ""
	}
	s := string(view(ptr, length))
	deallocate(ptr, length)
	return s
}

// PackPtrLen packs a pointer and length into a single uint64.
// It panics on a null pointer with a non-zero length.
func PackPtrLen(ptr, length uint32) uint64 {
	if ptr == 0 && length > 0 {
		panic(fmt.Sprintf("abi: null pointer with length %d", length))
	}
	return uint64(ptr)<<PtrHighBits | uint64(length)
}

func view(ptr, length uint32) []byte {
	//nolint:gosec // G103: linear memory address
	return unsafe.Slice((*byte)(unsafe.Pointer(uintptr(ptr))), length)
}
