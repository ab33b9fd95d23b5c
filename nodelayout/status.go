package nodelayout

import "fmt"

// Status is the i32 result of a websg host import. Zero means success;
// failures are negative.
type Status int32

const (
	StatusOK       Status = 0
	StatusNotFound Status = -1
	StatusInvalid  Status = -2
	StatusFault    Status = -3
	StatusInternal Status = -4
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNotFound:
		return "not found"
	case StatusInvalid:
		return "invalid hierarchy operation"
	case StatusFault:
		return "memory or layout fault"
	case StatusInternal:
		return "internal host error"
	default:
		return fmt.Sprintf("status(%d)", int32(s))
	}
}

// StatusError is a failed host call as seen from the guest.
type StatusError struct {
	Op     string
	Status Status
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("websg %s: %s", e.Op, e.Status)
}
