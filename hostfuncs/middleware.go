package hostfuncs

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Middleware wraps a Handler to add cross-cutting behavior.
// Middleware executes in FIFO order (first registered wraps first, onion model).
type Middleware func(next Handler) Handler

// RegistryOption is a functional option for configuring a Registry.
type RegistryOption func(*registryBuilder)

// PanicRecoveryMiddleware converts handler panics into *PanicError values.
// The runtime adapter then reports them as an internal status or a trap,
// depending on the function's signature.
func PanicRecoveryMiddleware() Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, call Call) (results []uint64, err error) {
			defer func() {
				if r := recover(); r != nil {
					results = nil
					err = &PanicError{Function: functionName(ctx), Value: r}
				}
			}()
			return next(ctx, call)
		}
	}
}

// LoggingMiddleware logs every invocation at debug level and failures at warn.
func LoggingMiddleware(logger *zap.Logger) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, call Call) ([]uint64, error) {
			start := time.Now()
			results, err := next(ctx, call)

			fields := []zap.Field{
				zap.String("function", functionName(ctx)),
				zap.Duration("elapsed", time.Since(start)),
			}
			if hc, ok := ctx.(HostContext); ok && hc.InstanceID() != "" {
				fields = append(fields, zap.String("instance", hc.InstanceID()))
			}
			if err != nil {
				logger.Warn("host function failed", append(fields, zap.Error(err))...)
			} else {
				logger.Debug("host function completed", fields...)
			}
			return results, err
		}
	}
}

func functionName(ctx context.Context) string {
	if hc, ok := ctx.(HostContext); ok {
		return hc.FunctionName()
	}
	return "unknown"
}

// CallCount is the number of invocations and failures of one function.
type CallCount struct {
	Calls  uint64 `json:"calls"`
	Errors uint64 `json:"errors"`
}

// CallStats counts host function invocations per function name.
// It is safe for concurrent use.
type CallStats struct {
	counts map[string]CallCount
	mu     sync.Mutex
}

// NewCallStats returns empty stats.
func NewCallStats() *CallStats {
	return &CallStats{counts: make(map[string]CallCount)}
}

// Middleware returns a middleware that records every invocation.
func (s *CallStats) Middleware() Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, call Call) ([]uint64, error) {
			results, err := next(ctx, call)
			s.record(functionName(ctx), err)
			return results, err
		}
	}
}

func (s *CallStats) record(name string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.counts[name]
	c.Calls++
	if err != nil {
		c.Errors++
	}
	s.counts[name] = c
}

// Count returns the number of times name was invoked.
func (s *CallStats) Count(name string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[name].Calls
}

// Snapshot returns a copy of all counters.
func (s *CallStats) Snapshot() map[string]CallCount {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]CallCount, len(s.counts))
	for k, v := range s.counts {
		out[k] = v
	}
	return out
}

// Names returns the invoked function names in sorted order.
func (s *CallStats) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.counts))
	for k := range s.counts {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
