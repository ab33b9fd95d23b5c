// Package guest holds the guest-side application logic. It depends only on
// the ports.SceneHost interface so it can be driven by the wasm adapter in a
// real module and by mocks in native tests.
package guest

import (
	"log/slog"

	"github.com/websg-dev/websg-go/domain/entities"
	"github.com/websg-dev/websg-go/domain/ports"
)

// EyeHeight is the vertical offset applied to the node created at startup,
// roughly the eye level of a standing adult in meters.
const EyeHeight float32 = 1.6

// App is the guest entry point. It is not safe for concurrent use; the host
// drives it from a single thread.
type App struct {
	host        ports.SceneHost
	node        entities.Node
	initialized bool
}

// New returns an App bound to host.
func New(host ports.SceneHost) *App {
	return &App{host: host}
}

// Initialize creates one node through the host and raises it to EyeHeight.
// The adjusted node is kept as the app's local view; it is not written back.
// Calling Initialize again is a no-op.
func (a *App) Initialize() {
	if a.initialized {
		return
	}
	n := a.host.CreateNode()
	n.Position[1] = EyeHeight
	a.node = n
	a.initialized = true

	slog.Debug("node created", slog.Uint64("id", uint64(n.ID)), slog.Float64("y", float64(n.Position[1])))
}

// Update runs once per host tick. It does nothing.
func (a *App) Update() {}

// Node returns the local view of the node created by Initialize and whether
// Initialize has run.
func (a *App) Node() (entities.Node, bool) {
	return a.node, a.initialized
}

// Commit writes the local node view back to the host.
func (a *App) Commit() error {
	if !a.initialized {
		return nil
	}
	return a.host.UpdateNode(a.node)
}
