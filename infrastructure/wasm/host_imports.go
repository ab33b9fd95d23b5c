//go:build wasip1

package wasm

// Host function signatures of the "websg" module. Pointers are offsets into
// this module's linear memory; node records use the nodelayout v1 format.

//go:wasmimport websg create_node
//nolint:revive // intentional snake_case to match WASM import convention
func host_create_node(outPtr uint32)

//go:wasmimport websg get_node
//nolint:revive
func host_get_node(id uint32, outPtr uint32) int32

//go:wasmimport websg update_node
//nolint:revive
func host_update_node(inPtr uint32) int32

//go:wasmimport websg add_child
//nolint:revive
func host_add_child(parent uint32, child uint32) int32

//go:wasmimport websg remove_child
//nolint:revive
func host_remove_child(parent uint32, child uint32) int32
