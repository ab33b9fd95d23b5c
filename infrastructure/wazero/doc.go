// Package wazero binds the pure Go host functions in hostfuncs to the wazero
// runtime.
//
// Each registry function becomes an export of a host module (default
// "websg") with the function's declared WASM signature. Handlers reach guest
// memory through a GuestMemory backed by the calling module's exported memory
// and allocate function.
//
// # Basic Usage
//
//	registry, err := hostfuncs.NewRegistry(
//	    hostfuncs.WithBundle(hostfuncs.SceneBundle(graph)),
//	    hostfuncs.WithBundle(hostfuncs.LogBundle(logger)),
//	)
//	if err != nil {
//	    return err
//	}
//
//	runtime := wazero.NewRuntime(ctx)
//	_, err = wazero.RegisterWithRuntime(ctx, runtime, registry)
//
// # Errors
//
// Functions returning a single i32 report handler errors as negative status
// codes (see hostfuncs.StatusOf). Functions without a status result, such as
// create_node and log_message, trap the calling guest instead.
package wazero
