package wazero

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero/api"

	sdkerrors "github.com/websg-dev/websg-go/domain/errors"
)

// moduleMemory implements hostfuncs.GuestMemory over a guest module.
type moduleMemory struct {
	mod     api.Module
	maxRead uint32
}

func (m *moduleMemory) Read(offset, length uint32) ([]byte, error) {
	if length > m.maxRead {
		return nil, &sdkerrors.MemoryAccessError{Op: "read", Offset: offset, Length: length}
	}
	mem := m.mod.Memory()
	if mem == nil {
		return nil, &sdkerrors.MissingExportError{Name: "memory"}
	}
	view, ok := mem.Read(offset, length)
	if !ok {
		return nil, &sdkerrors.MemoryAccessError{Op: "read", Offset: offset, Length: length}
	}
	// The view aliases guest memory, which the guest may grow or reuse.
	out := make([]byte, len(view))
	copy(out, view)
	return out, nil
}

func (m *moduleMemory) Write(offset uint32, data []byte) error {
	mem := m.mod.Memory()
	if mem == nil {
		return &sdkerrors.MissingExportError{Name: "memory"}
	}
	if !mem.Write(offset, data) {
		return &sdkerrors.MemoryAccessError{Op: "write", Offset: offset, Length: uint32(len(data))} //nolint:gosec // G115: bounded by guest memory size
	}
	return nil
}

func (m *moduleMemory) Allocate(ctx context.Context, size uint32) (uint32, error) {
	allocate := m.mod.ExportedFunction("allocate")
	if allocate == nil {
		return 0, &sdkerrors.MissingExportError{Name: "allocate"}
	}
	results, err := allocate.Call(ctx, uint64(size))
	if err != nil {
		return 0, fmt.Errorf("guest allocate(%d): %w", size, err)
	}
	ptr := api.DecodeU32(results[0])
	if ptr == 0 && size > 0 {
		return 0, fmt.Errorf("guest allocate(%d) returned null", size)
	}
	return ptr, nil
}
