// Package entities provides core domain entities shared by the guest SDK and
// the host runtime. They carry no WASM runtime dependencies and compile for
// both native and wasip1 targets.
package entities
