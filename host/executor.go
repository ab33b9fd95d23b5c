package host

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/zap"

	sdkerrors "github.com/websg-dev/websg-go/domain/errors"
	"github.com/websg-dev/websg-go/hostfuncs"
	wazeroadapter "github.com/websg-dev/websg-go/infrastructure/wazero"
	"github.com/websg-dev/websg-go/nodelayout"
	"github.com/websg-dev/websg-go/scene"
)

// Guest exports.
const (
	ExportMemory        = "memory"
	ExportInitialize    = "initialize"
	ExportUpdate        = "update"
	ExportAllocate      = "allocate"
	ExportDeallocate    = "deallocate"
	ExportStart         = "_initialize"
	ExportLayoutVersion = "websg_layout_version"
)

var requiredFunctions = []string{ExportInitialize, ExportUpdate, ExportAllocate, ExportDeallocate}

// Executor owns a wazero runtime with the websg host module registered.
type Executor struct {
	runtime  wazero.Runtime
	registry *hostfuncs.Registry
	graph    *scene.Graph
	stats    *hostfuncs.CallStats
	logger   *zap.Logger
}

// NewExecutor creates a new executor with the given options.
func NewExecutor(ctx context.Context, opts ...Option) (*Executor, error) {
	cfg := defaultExecutorConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.graph == nil {
		cfg.graph = scene.NewGraph()
	}

	stats := hostfuncs.NewCallStats()
	registry, err := hostfuncs.NewRegistry(
		hostfuncs.WithMiddleware(
			hostfuncs.PanicRecoveryMiddleware(),
			stats.Middleware(),
			hostfuncs.LoggingMiddleware(cfg.logger),
		),
		hostfuncs.WithBundle(hostfuncs.SceneBundle(cfg.graph, hostfuncs.WithMaxNameLength(cfg.maxNameLength))),
		hostfuncs.WithBundle(hostfuncs.LogBundle(cfg.logger)),
		hostfuncs.WithBundle(hostfuncs.NewBundle(cfg.extra...)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create host function registry: %w", err)
	}

	rtConfig := wazero.NewRuntimeConfig().
		WithMemoryLimitPages(cfg.memoryLimitPages).
		WithCloseOnContextDone(true)
	rt := wazero.NewRuntimeWithConfig(ctx, rtConfig)
	wasi_snapshot_preview1.MustInstantiate(ctx, rt)

	if _, err := wazeroadapter.RegisterWithRuntime(ctx, rt, registry, wazeroadapter.WithModuleName(cfg.moduleName)); err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("failed to register host functions: %w", err)
	}

	return &Executor{
		runtime:  rt,
		registry: registry,
		graph:    cfg.graph,
		stats:    stats,
		logger:   cfg.logger,
	}, nil
}

// Graph returns the scene graph guests operate on.
func (e *Executor) Graph() *scene.Graph {
	return e.graph
}

// Stats returns host function call counters.
func (e *Executor) Stats() *hostfuncs.CallStats {
	return e.stats
}

// Functions returns the names of the exported host functions.
func (e *Executor) Functions() []string {
	return e.registry.Names()
}

// Close releases the runtime and every module loaded into it.
func (e *Executor) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// LoadModule compiles and instantiates a guest module. It checks the
// required exports, runs the _initialize start hook when present, and
// verifies websg_layout_version when exported. The guest's initialize entry
// point is not called.
func (e *Executor) LoadModule(ctx context.Context, wasm []byte) (*Instance, error) {
	compiled, err := e.runtime.CompileModule(ctx, wasm)
	if err != nil {
		return nil, fmt.Errorf("failed to compile module: %w", err)
	}

	if _, ok := compiled.ExportedMemories()[ExportMemory]; !ok {
		_ = compiled.Close(ctx)
		return nil, &sdkerrors.MissingExportError{Name: ExportMemory}
	}
	exports := compiled.ExportedFunctions()
	for _, name := range requiredFunctions {
		if _, ok := exports[name]; !ok {
			_ = compiled.Close(ctx)
			return nil, &sdkerrors.MissingExportError{Name: name}
		}
	}

	id := "websg-guest-" + uuid.NewString()
	modConfig := wazero.NewModuleConfig().
		WithName(id).
		WithStartFunctions().
		WithSysWalltime().
		WithSysNanotime()

	callCtx := hostfuncs.WithInstanceID(ctx, id)
	mod, err := e.runtime.InstantiateModule(callCtx, compiled, modConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate module: %w", err)
	}

	if start := mod.ExportedFunction(ExportStart); start != nil {
		if _, err := start.Call(callCtx); err != nil {
			_ = mod.Close(ctx)
			return nil, fmt.Errorf("failed to call %s: %w", ExportStart, err)
		}
	}

	if fn := mod.ExportedFunction(ExportLayoutVersion); fn != nil {
		res, err := fn.Call(callCtx)
		if err != nil {
			_ = mod.Close(ctx)
			return nil, fmt.Errorf("failed to call %s: %w", ExportLayoutVersion, err)
		}
		if got := uint32(res[0]); got != nodelayout.Version {
			_ = mod.Close(ctx)
			return nil, &sdkerrors.LayoutVersionError{Got: got, Want: nodelayout.Version}
		}
	}

	e.logger.Debug("guest module loaded", zap.String("instance", id))
	return &Instance{module: mod, id: id, logger: e.logger.With(zap.String("instance", id))}, nil
}
