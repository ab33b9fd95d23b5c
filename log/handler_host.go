//go:build !wasip1

package log

import (
	"context"
	"fmt"
	"log/slog"
)

// Handle for non-WASM builds (e.g., host tests).
// Records are printed to stdout since there is no host to forward to.
func (h *WasmLogHandler) Handle(_ context.Context, record slog.Record) error {
	msg := h.toWire(record)
	fmt.Printf("[websg-guest] level=%s msg=%q attrs=%d\n", msg.Level, msg.Message, len(msg.Attrs))
	return nil
}
