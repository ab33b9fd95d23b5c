// Package errors provides domain-specific error types for the scene SDK.
// All error types support error unwrapping via errors.As() and errors.Is().
package errors

import (
	stdErrors "errors"
	"fmt"

	"github.com/websg-dev/websg-go/domain/entities"
)

// ErrorDetail is an alias to entities.ErrorDetail for convenience.
type ErrorDetail = entities.ErrorDetail

// DetailedError is implemented by error types that can convert themselves
// to a structured ErrorDetail.
type DetailedError interface {
	error
	ToErrorDetail() *entities.ErrorDetail
}

// ToErrorDetail converts a Go error to our structured ErrorDetail.
func ToErrorDetail(err error) *entities.ErrorDetail {
	if err == nil {
		return nil
	}

	var e *entities.ErrorDetail
	if stdErrors.As(err, &e) {
		return e
	}

	var de DetailedError
	if stdErrors.As(err, &de) {
		return de.ToErrorDetail()
	}

	return &entities.ErrorDetail{
		Message: err.Error(),
		Type:    "internal",
	}
}

// NodeNotFoundError is returned when an id does not name a live node.
type NodeNotFoundError struct {
	ID entities.NodeID
}

func (e *NodeNotFoundError) Error() string {
	return fmt.Sprintf("node %d not found", e.ID)
}

// ToErrorDetail implements DetailedError.
func (e *NodeNotFoundError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "scene", Code: "node_not_found", IsNotFound: true}
}

// HierarchyError reports a parent/child operation that would break the tree.
// Unlink is set when the failed operation was a removal.
type HierarchyError struct {
	Reason string
	Parent entities.NodeID
	Child  entities.NodeID
	Unlink bool
}

func (e *HierarchyError) Error() string {
	if e.Unlink {
		return fmt.Sprintf("cannot unlink node %d from %d: %s", e.Child, e.Parent, e.Reason)
	}
	return fmt.Sprintf("cannot link node %d under %d: %s", e.Child, e.Parent, e.Reason)
}

// ToErrorDetail implements DetailedError.
func (e *HierarchyError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "scene", Code: "hierarchy"}
}

// LayoutError represents a malformed fixed-layout record.
type LayoutError struct {
	Err    error
	Record string
	Size   int
	Want   int
}

func (e *LayoutError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s record: %v", e.Record, e.Err)
	}
	return fmt.Sprintf("%s record is %d bytes, want %d", e.Record, e.Size, e.Want)
}

func (e *LayoutError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *LayoutError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "abi", Code: "layout"}
}

// LayoutVersionError is returned when a guest was built against another
// record layout than the host implements.
type LayoutVersionError struct {
	Got  uint32
	Want uint32
}

func (e *LayoutVersionError) Error() string {
	return fmt.Sprintf("guest uses node layout version %d, host implements %d", e.Got, e.Want)
}

// ToErrorDetail implements DetailedError.
func (e *LayoutVersionError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "abi", Code: "layout_version"}
}

// MemoryAccessError represents an out-of-range guest memory access.
type MemoryAccessError struct {
	Op     string
	Offset uint32
	Length uint32
}

func (e *MemoryAccessError) Error() string {
	return fmt.Sprintf("guest memory %s out of range (offset: %d, length: %d)", e.Op, e.Offset, e.Length)
}

// ToErrorDetail implements DetailedError.
func (e *MemoryAccessError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "abi", Code: "memory_" + e.Op}
}

// MissingExportError is returned when a guest module lacks a required export.
type MissingExportError struct {
	Name string
}

func (e *MissingExportError) Error() string {
	return fmt.Sprintf("guest module does not export %q", e.Name)
}

// ToErrorDetail implements DetailedError.
func (e *MissingExportError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "abi", Code: "missing_export"}
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Err   error
	Field string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config validation failed for field '%s': %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config validation failed: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ConfigError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "config", Code: e.Field}
}
