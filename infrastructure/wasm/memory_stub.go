//go:build !wasip1

package wasm

// DefaultMemoryLimit is the ceiling on guest memory pinned for the host.
const DefaultMemoryLimit = 16 * 1024 * 1024

// SetMemoryLimit is a no-op on native builds.
func SetMemoryLimit(int) {}

// PinnedMemory always reports zero on native builds.
func PinnedMemory() (buffers, bytes int) {
	return 0, 0
}
