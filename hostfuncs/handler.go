package hostfuncs

import (
	"context"
	"encoding/json"
	"fmt"
)

// ValueKind is a WebAssembly value type in a host function signature.
type ValueKind uint8

// Value kinds.
const (
	KindI32 ValueKind = iota + 1
	KindI64
	KindF32
	KindF64
)

func (k ValueKind) String() string {
	switch k {
	case KindI32:
		return "i32"
	case KindI64:
		return "i64"
	case KindF32:
		return "f32"
	case KindF64:
		return "f64"
	default:
		return fmt.Sprintf("ValueKind(%d)", uint8(k))
	}
}

// Signature is the WASM-level signature of a host function.
type Signature struct {
	Params  []ValueKind
	Results []ValueKind
}

// ReturnsStatus reports whether the function returns a single i32, which
// runtimes use to report handler errors as a status code instead of trapping.
func (s Signature) ReturnsStatus() bool {
	return len(s.Results) == 1 && s.Results[0] == KindI32
}

// GuestMemory is the calling guest's linear memory and allocator.
// Offsets and lengths are guest addresses.
type GuestMemory interface {
	Read(offset, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
	// Allocate reserves size bytes through the guest's allocate export.
	// Ownership passes to the guest.
	Allocate(ctx context.Context, size uint32) (uint32, error)
}

// Call is a single host function invocation.
type Call struct {
	Memory GuestMemory
	Params []uint64
}

// Uint32 returns parameter i as an i32 bit pattern.
func (c Call) Uint32(i int) uint32 {
	return uint32(c.Params[i])
}

// Uint64 returns parameter i as an i64 bit pattern.
func (c Call) Uint64(i int) uint64 {
	return c.Params[i]
}

// Handler implements a host function. The returned values must match the
// function's declared results.
type Handler func(ctx context.Context, call Call) ([]uint64, error)

// Function is a named host function.
type Function struct {
	Handler   Handler
	Name      string
	Signature Signature
}

// UnpackPtrLen splits a packed i64 into the guest pointer (high 32 bits) and
// length (low 32 bits).
func UnpackPtrLen(packed uint64) (ptr, length uint32) {
	return uint32(packed >> 32), uint32(packed)
}

// NewJSONHandler wraps fn as a handler for a function taking one packed
// ptr/len parameter that addresses a JSON document in guest memory.
// The function has no results.
func NewJSONHandler[Req any](fn func(context.Context, Req) error) Handler {
	return func(ctx context.Context, call Call) ([]uint64, error) {
		ptr, length := UnpackPtrLen(call.Uint64(0))
		payload, err := call.Memory.Read(ptr, length)
		if err != nil {
			return nil, err
		}

		var req Req
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, fmt.Errorf("failed to unmarshal request: %w", err)
		}
		return nil, fn(ctx, req)
	}
}

// JSONSignature is the signature of handlers built by NewJSONHandler.
var JSONSignature = Signature{Params: []ValueKind{KindI64}}
