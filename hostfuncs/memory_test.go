package hostfuncs

import (
	"context"
	"errors"

	sdkerrors "github.com/websg-dev/websg-go/domain/errors"
)

// fakeMemory is a GuestMemory over a byte slice with a bump allocator.
type fakeMemory struct {
	buf      []byte
	next     uint32
	allocErr error
}

func newFakeMemory(size int) *fakeMemory {
	return &fakeMemory{buf: make([]byte, size), next: uint32(size / 2)}
}

func (m *fakeMemory) Read(offset, length uint32) ([]byte, error) {
	if uint64(offset)+uint64(length) > uint64(len(m.buf)) {
		return nil, &sdkerrors.MemoryAccessError{Op: "read", Offset: offset, Length: length}
	}
	out := make([]byte, length)
	copy(out, m.buf[offset:])
	return out, nil
}

func (m *fakeMemory) Write(offset uint32, data []byte) error {
	if uint64(offset)+uint64(len(data)) > uint64(len(m.buf)) {
		return &sdkerrors.MemoryAccessError{Op: "write", Offset: offset, Length: uint32(len(data))}
	}
	copy(m.buf[offset:], data)
	return nil
}

func (m *fakeMemory) Allocate(_ context.Context, size uint32) (uint32, error) {
	if m.allocErr != nil {
		return 0, m.allocErr
	}
	if uint64(m.next)+uint64(size) > uint64(len(m.buf)) {
		return 0, errors.New("out of memory")
	}
	ptr := m.next
	m.next += size
	return ptr, nil
}
