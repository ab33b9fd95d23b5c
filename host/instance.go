package host

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/websg-dev/websg-go/hostfuncs"
)

var (
	// ErrAlreadyInitialized is returned by a second Initialize call.
	ErrAlreadyInitialized = errors.New("guest already initialized")
	// ErrNotInitialized is returned by Update before Initialize succeeded.
	ErrNotInitialized = errors.New("guest not initialized")
	// ErrClosed is returned by calls on a closed instance.
	ErrClosed = errors.New("guest instance closed")
)

// Instance is a loaded guest module. Calls into the guest are serialized;
// wazero modules do not support concurrent calls.
type Instance struct {
	module      api.Module
	logger      *zap.Logger
	id          string
	ticks       atomic.Uint64
	mu          sync.Mutex
	initialized bool
	closed      bool
}

// ID returns the unique instance name.
func (i *Instance) ID() string {
	return i.id
}

// Ticks returns the number of completed Update calls.
func (i *Instance) Ticks() uint64 {
	return i.ticks.Load()
}

// Initialize calls the guest's initialize export. It may succeed only once.
func (i *Instance) Initialize(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return ErrClosed
	}
	if i.initialized {
		return ErrAlreadyInitialized
	}
	if err := i.call(ctx, ExportInitialize); err != nil {
		return err
	}
	i.initialized = true
	i.logger.Debug("guest initialized")
	return nil
}

// Update calls the guest's update export once.
func (i *Instance) Update(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return ErrClosed
	}
	if !i.initialized {
		return ErrNotInitialized
	}
	if err := i.call(ctx, ExportUpdate); err != nil {
		return err
	}
	i.ticks.Add(1)
	return nil
}

// Close releases the guest module. It is safe to call more than once.
func (i *Instance) Close(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return nil
	}
	i.closed = true
	return i.module.Close(ctx)
}

func (i *Instance) call(ctx context.Context, export string) error {
	fn := i.module.ExportedFunction(export)
	if fn == nil {
		return fmt.Errorf("export %q not found", export)
	}
	if _, err := fn.Call(hostfuncs.WithInstanceID(ctx, i.id)); err != nil {
		return fmt.Errorf("guest %s: %w", export, err)
	}
	return nil
}
