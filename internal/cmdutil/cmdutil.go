// Package cmdutil holds helpers shared by the websg subcommands.
package cmdutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/websg-dev/websg-go/application/config"
	"github.com/websg-dev/websg-go/domain/entities"
	"github.com/websg-dev/websg-go/host"
	"github.com/websg-dev/websg-go/scene"
)

// Config loads the file named by --config and applies flag overrides.
// Global flags are consulted through the context lineage.
func Config(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load(c.Path("config"))
	if err != nil {
		return config.Config{}, err
	}

	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	if c.IsSet("log-format") {
		cfg.Log.Format = c.String("log-format")
	}
	if c.IsSet("ticks") {
		cfg.Loop.MaxTicks = c.Uint64("ticks")
	}
	if c.IsSet("tick-interval") {
		cfg.Loop.TickInterval = c.Duration("tick-interval")
	}
	if c.IsSet("inspect") {
		cfg.Inspect.Addr = c.String("inspect")
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// Session is a loaded guest module and the executor that owns it.
type Session struct {
	Executor *host.Executor
	Instance *host.Instance
	Logger   *zap.Logger
}

// Graph returns the scene the guest operates on.
func (s *Session) Graph() *scene.Graph {
	return s.Executor.Graph()
}

// Close releases the instance and the runtime, then flushes the logger.
func (s *Session) Close(ctx context.Context) error {
	defer func() { _ = s.Logger.Sync() }()
	if err := s.Instance.Close(ctx); err != nil {
		return err
	}
	return s.Executor.Close(ctx)
}

// Open builds the logger and executor described by cfg and loads the module
// at path. The guest's initialize entry point is not called.
func Open(ctx context.Context, cfg config.Config, path string) (*Session, error) {
	if path == "" {
		return nil, cli.Exit("missing MODULE argument", 2)
	}
	wasm, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read module: %w", err)
	}

	logger, err := cfg.Log.NewLogger()
	if err != nil {
		return nil, err
	}

	exec, err := host.NewExecutor(ctx,
		host.WithLogger(logger),
		host.WithGraph(scene.NewGraph(scene.WithMaxNodes(cfg.Runtime.MaxNodes))),
		host.WithModuleName(cfg.Runtime.ModuleName),
		host.WithMemoryLimitPages(cfg.Runtime.MemoryLimitPages),
		host.WithMaxNameLength(cfg.Runtime.MaxNameLength),
	)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}

	inst, err := exec.LoadModule(ctx, wasm)
	if err != nil {
		_ = exec.Close(ctx)
		_ = logger.Sync()
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	logger.Info("module loaded", zap.String("path", path), zap.String("instance", inst.ID()))
	return &Session{Executor: exec, Instance: inst, Logger: logger}, nil
}

// PrintScene writes one line per node, indented by depth.
func PrintScene(w io.Writer, g *scene.Graph) {
	fmt.Fprintf(w, "scene: %d node(s)\n", g.Len())
	g.Walk(func(n entities.Node, depth int) bool {
		name := n.Name
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(w, "%*s#%d %s position=(%g, %g, %g)\n",
			depth*2, "", n.ID, name, n.Position[0], n.Position[1], n.Position[2])
		return true
	})
}

// ErrStopTimeout is returned by WaitStopped when services outlive the timeout.
var ErrStopTimeout = errors.New("services did not stop in time")

// WaitStopped waits for the result of a cancelled supervisor. Cancellation
// itself is not reported as an error.
func WaitStopped(errCh <-chan error, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case err := <-errCh:
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	case <-timer.C:
		return ErrStopTimeout
	}
}
