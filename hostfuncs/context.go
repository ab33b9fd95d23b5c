package hostfuncs

import (
	"context"
)

// HostContext is the context passed to host function handlers. It exposes
// the invoked function name and the guest instance making the call, and lets
// middleware share request-scoped values.
type HostContext interface {
	context.Context

	// FunctionName returns the name of the host function being invoked.
	FunctionName() string

	// InstanceID returns the id of the calling guest instance, or "" when the
	// caller did not attach one with WithInstanceID.
	InstanceID() string

	// SetValue stores a request-scoped value. Unlike context.WithValue,
	// this mutates the existing HostContext.
	SetValue(key, value any)

	// GetValue retrieves a request-scoped value set by SetValue.
	GetValue(key any) (value any, ok bool)
}

type instanceIDKey struct{}

// WithInstanceID returns a context tagged with the calling guest instance.
func WithInstanceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, instanceIDKey{}, id)
}

// InstanceIDFrom returns the instance id attached with WithInstanceID.
func InstanceIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(instanceIDKey{}).(string)
	return id, ok && id != ""
}

type hostContext struct {
	context.Context
	values     map[any]any
	funcName   string
	instanceID string
}

// NewHostContext creates a new HostContext wrapping the given context.
func NewHostContext(ctx context.Context, funcName string) HostContext {
	id, _ := InstanceIDFrom(ctx)
	return &hostContext{
		Context:    ctx,
		funcName:   funcName,
		instanceID: id,
	}
}

func (c *hostContext) FunctionName() string {
	return c.funcName
}

func (c *hostContext) InstanceID() string {
	return c.instanceID
}

func (c *hostContext) SetValue(key, value any) {
	if c.values == nil {
		c.values = make(map[any]any)
	}
	c.values[key] = value
}

func (c *hostContext) GetValue(key any) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// HostContextFrom returns ctx if it is already a HostContext for funcName,
// otherwise a new HostContext wrapping ctx.
func HostContextFrom(ctx context.Context, funcName string) HostContext {
	if hc, ok := ctx.(HostContext); ok && hc.FunctionName() == funcName {
		return hc
	}
	return NewHostContext(ctx, funcName)
}
