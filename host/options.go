package host

import (
	"go.uber.org/zap"

	"github.com/websg-dev/websg-go/hostfuncs"
	"github.com/websg-dev/websg-go/scene"
)

// DefaultMemoryLimitPages caps guest memory at 16 MiB.
const DefaultMemoryLimitPages uint32 = 256

type executorConfig struct {
	graph            *scene.Graph
	logger           *zap.Logger
	moduleName       string
	extra            []hostfuncs.Function
	memoryLimitPages uint32
	maxNameLength    uint32
}

func defaultExecutorConfig() executorConfig {
	return executorConfig{
		logger:           zap.NewNop(),
		moduleName:       "websg",
		memoryLimitPages: DefaultMemoryLimitPages,
		maxNameLength:    hostfuncs.DefaultMaxNameLength,
	}
}

// Option defines a functional option for configuring the Executor.
type Option func(*executorConfig)

// WithGraph makes guests operate on graph instead of a fresh one.
func WithGraph(graph *scene.Graph) Option {
	return func(c *executorConfig) {
		c.graph = graph
	}
}

// WithLogger sets the host logger. Guest log records are emitted through a
// child logger named "guest".
func WithLogger(logger *zap.Logger) Option {
	return func(c *executorConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithModuleName sets the import module name host functions are exported
// under.
func WithModuleName(name string) Option {
	return func(c *executorConfig) {
		c.moduleName = name
	}
}

// WithMemoryLimitPages caps guest linear memory in 64 KiB pages.
func WithMemoryLimitPages(pages uint32) Option {
	return func(c *executorConfig) {
		c.memoryLimitPages = pages
	}
}

// WithFunctions registers additional host functions next to the built-in
// scene and log functions.
func WithFunctions(fns ...hostfuncs.Function) Option {
	return func(c *executorConfig) {
		c.extra = append(c.extra, fns...)
	}
}

// WithMaxNameLength bounds node names accepted through update_node.
func WithMaxNameLength(n uint32) Option {
	return func(c *executorConfig) {
		c.maxNameLength = n
	}
}
