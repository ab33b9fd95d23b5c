//go:build wasip1

package wasm

import "github.com/websg-dev/websg-go/internal/abi"

// DefaultMemoryLimit is the ceiling on guest memory pinned for the host.
const DefaultMemoryLimit = abi.DefaultLimit

// SetMemoryLimit caps the memory the host may pin through the allocate
// export. Allocations past the cap trap the host call that requested them.
// Non-positive values are ignored.
func SetMemoryLimit(bytes int) {
	abi.SetLimit(bytes)
}

// PinnedMemory returns the number of buffers held for the host and their
// total size. Names handed over by the host are released once copied, so
// both are zero between host calls.
func PinnedMemory() (buffers, bytes int) {
	return abi.Stats()
}
