// Package ports defines interfaces for infrastructure operations.
// Guest logic depends on these abstractions; the WASM adapters and test
// doubles implement them.
package ports
