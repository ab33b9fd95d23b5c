package wazero

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/websg-dev/websg-go/hostfuncs"
)

// DefaultModuleName is the import module guests use for host functions.
const DefaultModuleName = "websg"

// DefaultMaxReadSize limits a single read of guest memory by a host function.
const DefaultMaxReadSize uint32 = 1 << 20

// AdapterConfig holds configuration for the wazero adapter.
type AdapterConfig struct {
	// ModuleName is the host module name (default: "websg").
	ModuleName string

	// MaxReadSize limits the bytes a host function may read from guest
	// memory in one call. Default is 1MB.
	MaxReadSize uint32
}

// AdapterOption configures the adapter.
type AdapterOption func(*AdapterConfig)

// WithModuleName sets the host module name.
func WithModuleName(name string) AdapterOption {
	return func(c *AdapterConfig) {
		c.ModuleName = name
	}
}

// WithMaxReadSize sets the maximum size of a single guest memory read.
func WithMaxReadSize(size uint32) AdapterOption {
	return func(c *AdapterConfig) {
		c.MaxReadSize = size
	}
}

func defaultAdapterConfig() AdapterConfig {
	return AdapterConfig{
		ModuleName:  DefaultModuleName,
		MaxReadSize: DefaultMaxReadSize,
	}
}

// RegisterWithRuntime instantiates a host module exporting every function
// in registry with its declared signature.
//
// A handler error is returned to the guest as a status code when the
// function's only result is an i32. Otherwise the error traps the guest and
// surfaces from the host's call into the guest export.
//
// Example:
//
//	registry, _ := hostfuncs.NewRegistry(
//	    hostfuncs.WithBundle(hostfuncs.SceneBundle(graph)),
//	)
//	err := wazero.RegisterWithRuntime(ctx, runtime, registry)
func RegisterWithRuntime(ctx context.Context, runtime wazero.Runtime, registry *hostfuncs.Registry, opts ...AdapterOption) (api.Module, error) {
	cfg := defaultAdapterConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	builder := runtime.NewHostModuleBuilder(cfg.ModuleName)
	for _, fn := range registry.Functions() {
		params, err := valueTypes(fn.Signature.Params)
		if err != nil {
			return nil, fmt.Errorf("host function %s: %w", fn.Name, err)
		}
		results, err := valueTypes(fn.Signature.Results)
		if err != nil {
			return nil, fmt.Errorf("host function %s: %w", fn.Name, err)
		}

		builder.NewFunctionBuilder().
			WithGoModuleFunction(goModuleFunc(fn, cfg.MaxReadSize), params, results).
			WithParameterNames(paramNames(len(params))...).
			Export(fn.Name)
	}

	mod, err := builder.Instantiate(ctx)
	if err != nil {
		return nil, fmt.Errorf("instantiate host module %q: %w", cfg.ModuleName, err)
	}
	return mod, nil
}

func goModuleFunc(fn hostfuncs.Function, maxRead uint32) api.GoModuleFunc {
	nParams := len(fn.Signature.Params)
	nResults := len(fn.Signature.Results)
	returnsStatus := fn.Signature.ReturnsStatus()

	return func(ctx context.Context, mod api.Module, stack []uint64) {
		call := hostfuncs.Call{
			Memory: &moduleMemory{mod: mod, maxRead: maxRead},
			Params: append([]uint64(nil), stack[:nParams]...),
		}

		results, err := fn.Handler(withInstance(ctx, mod), call)
		if err != nil {
			if returnsStatus {
				stack[0] = api.EncodeI32(int32(hostfuncs.StatusOf(err)))
				return
			}
			panic(fmt.Errorf("%s: %w", fn.Name, err))
		}
		if len(results) != nResults {
			panic(fmt.Errorf("%s: handler returned %d results, signature declares %d", fn.Name, len(results), nResults))
		}
		copy(stack, results)
	}
}

func valueTypes(kinds []hostfuncs.ValueKind) ([]api.ValueType, error) {
	out := make([]api.ValueType, len(kinds))
	for i, k := range kinds {
		switch k {
		case hostfuncs.KindI32:
			out[i] = api.ValueTypeI32
		case hostfuncs.KindI64:
			out[i] = api.ValueTypeI64
		case hostfuncs.KindF32:
			out[i] = api.ValueTypeF32
		case hostfuncs.KindF64:
			out[i] = api.ValueTypeF64
		default:
			return nil, fmt.Errorf("unsupported value kind %s", k)
		}
	}
	return out, nil
}

func paramNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("p%d", i)
	}
	return names
}
