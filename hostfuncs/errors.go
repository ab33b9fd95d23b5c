package hostfuncs

import (
	"errors"
	"fmt"

	sdkerrors "github.com/websg-dev/websg-go/domain/errors"
	"github.com/websg-dev/websg-go/nodelayout"
)

// PanicError is returned by PanicRecoveryMiddleware when a handler panics.
type PanicError struct {
	Value    any
	Function string
}

func (e *PanicError) Error() string {
	var msg string
	switch v := e.Value.(type) {
	case error:
		msg = v.Error()
	case string:
		msg = v
	default:
		msg = "panic recovered"
	}
	return fmt.Sprintf("host function %s: panic: %s", e.Function, msg)
}

// StatusOf maps a handler error to the status code returned to the guest.
func StatusOf(err error) nodelayout.Status {
	if err == nil {
		return nodelayout.StatusOK
	}

	var (
		notFound  *sdkerrors.NodeNotFoundError
		hierarchy *sdkerrors.HierarchyError
		memory    *sdkerrors.MemoryAccessError
		layout    *sdkerrors.LayoutError
	)
	switch {
	case errors.As(err, &notFound):
		return nodelayout.StatusNotFound
	case errors.As(err, &hierarchy):
		return nodelayout.StatusInvalid
	case errors.As(err, &memory), errors.As(err, &layout):
		return nodelayout.StatusFault
	default:
		return nodelayout.StatusInternal
	}
}

// statusResult encodes a status as the single i32 result of a host function.
func statusResult(s nodelayout.Status) []uint64 {
	return []uint64{uint64(uint32(s))}
}
