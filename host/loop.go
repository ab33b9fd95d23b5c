package host

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/thejerf/suture/v4"
	"go.uber.org/zap"
)

// DefaultTickInterval is roughly 60 updates per second.
const DefaultTickInterval = time.Second / 60

// Updater is the part of an Instance the loop drives.
type Updater interface {
	Update(ctx context.Context) error
	Ticks() uint64
}

// Loop calls Update on a fixed interval. It implements suture.Service.
type Loop struct {
	updater  Updater
	onTick   func(ctx context.Context, tick uint64)
	logger   *zap.Logger
	done     chan struct{}
	err      error
	interval time.Duration
	maxTicks uint64
	once     sync.Once
	mu       sync.Mutex
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithInterval sets the time between updates.
func WithInterval(d time.Duration) LoopOption {
	return func(l *Loop) {
		if d > 0 {
			l.interval = d
		}
	}
}

// WithMaxTicks stops the loop after n updates. Zero runs until cancelled.
func WithMaxTicks(n uint64) LoopOption {
	return func(l *Loop) {
		l.maxTicks = n
	}
}

// WithOnTick registers a hook called after every successful update.
func WithOnTick(fn func(ctx context.Context, tick uint64)) LoopOption {
	return func(l *Loop) {
		l.onTick = fn
	}
}

// WithLoopLogger sets the loop's logger.
func WithLoopLogger(logger *zap.Logger) LoopOption {
	return func(l *Loop) {
		l.logger = logger
	}
}

// NewLoop returns a loop driving updater.
func NewLoop(updater Updater, opts ...LoopOption) *Loop {
	l := &Loop{
		updater:  updater,
		interval: DefaultTickInterval,
		logger:   zap.NewNop(),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Serve runs the loop until ctx is done, the tick limit is reached or an
// update fails. A finished loop is not restarted by a supervisor.
func (l *Loop) Serve(ctx context.Context) error {
	select {
	case <-l.done:
		return suture.ErrDoNotRestart
	default:
	}

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		if l.maxTicks > 0 && l.updater.Ticks() >= l.maxTicks {
			l.finish(nil)
			return suture.ErrDoNotRestart
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if err := l.updater.Update(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.logger.Error("guest update failed", zap.Error(err))
			l.finish(fmt.Errorf("tick %d: %w", l.updater.Ticks()+1, err))
			return suture.ErrDoNotRestart
		}
		if l.onTick != nil {
			l.onTick(ctx, l.updater.Ticks())
		}
	}
}

func (l *Loop) finish(err error) {
	l.once.Do(func() {
		l.mu.Lock()
		l.err = err
		l.mu.Unlock()
		close(l.done)
	})
}

// Done is closed when the loop reaches its tick limit or fails.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Err returns the update failure that ended the loop, if any.
func (l *Loop) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

func (l *Loop) String() string {
	return "websg-loop"
}
