package wazero

import (
	"context"

	"github.com/tetratelabs/wazero/api"

	"github.com/websg-dev/websg-go/hostfuncs"
)

// withInstance tags ctx with the calling module's name unless the caller
// already attached an instance id.
func withInstance(ctx context.Context, mod api.Module) context.Context {
	if _, ok := hostfuncs.InstanceIDFrom(ctx); ok {
		return ctx
	}
	return hostfuncs.WithInstanceID(ctx, mod.Name())
}
