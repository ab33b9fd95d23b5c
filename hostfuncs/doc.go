// Package hostfuncs implements the websg host functions in pure Go.
// Handlers see guest memory through the GuestMemory interface and have no
// WASM runtime dependency; infrastructure/wazero binds them to wazero.
package hostfuncs
