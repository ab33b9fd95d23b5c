// Package wasmtest assembles small WebAssembly binaries in memory so host
// code can be tested against real guest modules without a wasm toolchain.
package wasmtest

import (
	"math"
)

// ValType is a WebAssembly value type.
type ValType byte

// Value types.
const (
	I32 ValType = 0x7f
	I64 ValType = 0x7e
	F32 ValType = 0x7d
	F64 ValType = 0x7c
)

// FuncType is a function signature.
type FuncType struct {
	Params  []ValType
	Results []ValType
}

// Import is an imported host function.
type Import struct {
	Module string
	Name   string
	Type   FuncType
}

// Func is a function defined by the module. A non-empty Export name exports it.
type Func struct {
	Export string
	Type   FuncType
	Locals []ValType
	Body   *Code
}

// Global is a module global initialized from an i32 constant.
type Global struct {
	Type    ValType
	Mutable bool
	Init    int32
}

// Data is an active data segment in memory 0.
type Data struct {
	Offset uint32
	Bytes  []byte
}

// Module describes a module with at most one memory.
type Module struct {
	Imports      []Import
	Funcs        []Func
	Globals      []Global
	Data         []Data
	MemoryPages  uint32
	ExportMemory bool
}

// FuncIndex returns the function index of an import or exported function
// with the given name. Imports come first in the index space.
func (m *Module) FuncIndex(name string) uint32 {
	for i, imp := range m.Imports {
		if imp.Name == name {
			return uint32(i)
		}
	}
	for i, f := range m.Funcs {
		if f.Export == name {
			return uint32(len(m.Imports) + i)
		}
	}
	panic("wasmtest: unknown function " + name)
}

// Encode returns the binary form of the module.
func (m *Module) Encode() []byte {
	out := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

	var types []byte
	types = appendU32(types, uint32(len(m.Imports)+len(m.Funcs)))
	for _, imp := range m.Imports {
		types = appendFuncType(types, imp.Type)
	}
	for _, f := range m.Funcs {
		types = appendFuncType(types, f.Type)
	}
	out = appendSection(out, 1, types)

	if len(m.Imports) > 0 {
		var imports []byte
		imports = appendU32(imports, uint32(len(m.Imports)))
		for i, imp := range m.Imports {
			imports = appendName(imports, imp.Module)
			imports = appendName(imports, imp.Name)
			imports = append(imports, 0x00)
			imports = appendU32(imports, uint32(i))
		}
		out = appendSection(out, 2, imports)
	}

	if len(m.Funcs) > 0 {
		var funcs []byte
		funcs = appendU32(funcs, uint32(len(m.Funcs)))
		for i := range m.Funcs {
			funcs = appendU32(funcs, uint32(len(m.Imports)+i))
		}
		out = appendSection(out, 3, funcs)
	}

	if m.MemoryPages > 0 {
		mem := []byte{0x01, 0x00}
		mem = appendU32(mem, m.MemoryPages)
		out = appendSection(out, 5, mem)
	}

	if len(m.Globals) > 0 {
		var globals []byte
		globals = appendU32(globals, uint32(len(m.Globals)))
		for _, g := range m.Globals {
			mut := byte(0)
			if g.Mutable {
				mut = 1
			}
			globals = append(globals, byte(g.Type), mut, 0x41)
			globals = appendS64(globals, int64(g.Init))
			globals = append(globals, 0x0b)
		}
		out = appendSection(out, 6, globals)
	}

	var exports []byte
	count := uint32(0)
	if m.ExportMemory && m.MemoryPages > 0 {
		exports = appendName(exports, "memory")
		exports = append(exports, 0x02, 0x00)
		count++
	}
	for i, f := range m.Funcs {
		if f.Export == "" {
			continue
		}
		exports = appendName(exports, f.Export)
		exports = append(exports, 0x00)
		exports = appendU32(exports, uint32(len(m.Imports)+i))
		count++
	}
	out = appendSection(out, 7, append(appendU32(nil, count), exports...))

	if len(m.Funcs) > 0 {
		var code []byte
		code = appendU32(code, uint32(len(m.Funcs)))
		for _, f := range m.Funcs {
			var body []byte
			body = appendU32(body, uint32(len(f.Locals)))
			for _, l := range f.Locals {
				body = append(body, 0x01, byte(l))
			}
			if f.Body != nil {
				body = append(body, f.Body.buf...)
			}
			body = append(body, 0x0b)
			code = appendU32(code, uint32(len(body)))
			code = append(code, body...)
		}
		out = appendSection(out, 10, code)
	}

	if len(m.Data) > 0 {
		var data []byte
		data = appendU32(data, uint32(len(m.Data)))
		for _, d := range m.Data {
			data = append(data, 0x00, 0x41)
			data = appendS64(data, int64(int32(d.Offset)))
			data = append(data, 0x0b)
			data = appendU32(data, uint32(len(d.Bytes)))
			data = append(data, d.Bytes...)
		}
		out = appendSection(out, 11, data)
	}
	return out
}

// Code is a function body under construction. The trailing end opcode is
// added by Encode.
type Code struct {
	buf []byte
}

// NewCode returns an empty function body.
func NewCode() *Code {
	return &Code{}
}

func (c *Code) op(b ...byte) *Code {
	c.buf = append(c.buf, b...)
	return c
}

// Unreachable traps.
func (c *Code) Unreachable() *Code { return c.op(0x00) }

// If opens a block without results that runs when the i32 on the stack is
// non-zero. Close it with End.
func (c *Code) If() *Code { return c.op(0x04, 0x40) }

// End closes the innermost block.
func (c *Code) End() *Code { return c.op(0x0b) }

// Drop discards the top of the stack.
func (c *Code) Drop() *Code { return c.op(0x1a) }

// Call calls function idx.
func (c *Code) Call(idx uint32) *Code {
	c.op(0x10)
	c.buf = appendU32(c.buf, idx)
	return c
}

// LocalGet pushes local idx.
func (c *Code) LocalGet(idx uint32) *Code {
	c.op(0x20)
	c.buf = appendU32(c.buf, idx)
	return c
}

// GlobalGet pushes global idx.
func (c *Code) GlobalGet(idx uint32) *Code {
	c.op(0x23)
	c.buf = appendU32(c.buf, idx)
	return c
}

// GlobalSet pops into global idx.
func (c *Code) GlobalSet(idx uint32) *Code {
	c.op(0x24)
	c.buf = appendU32(c.buf, idx)
	return c
}

// I32Load loads an i32 from address+offset.
func (c *Code) I32Load(offset uint32) *Code { return c.mem(0x28, offset) }

// F32Load loads an f32 from address+offset.
func (c *Code) F32Load(offset uint32) *Code { return c.mem(0x2a, offset) }

// I32Store stores an i32 at address+offset.
func (c *Code) I32Store(offset uint32) *Code { return c.mem(0x36, offset) }

// F32Store stores an f32 at address+offset.
func (c *Code) F32Store(offset uint32) *Code { return c.mem(0x38, offset) }

func (c *Code) mem(opcode byte, offset uint32) *Code {
	c.op(opcode, 0x02)
	c.buf = appendU32(c.buf, offset)
	return c
}

// I32Const pushes v.
func (c *Code) I32Const(v int32) *Code {
	c.op(0x41)
	c.buf = appendS64(c.buf, int64(v))
	return c
}

// I64Const pushes v.
func (c *Code) I64Const(v int64) *Code {
	c.op(0x42)
	c.buf = appendS64(c.buf, v)
	return c
}

// F32Const pushes v.
func (c *Code) F32Const(v float32) *Code {
	bits := math.Float32bits(v)
	return c.op(0x43, byte(bits), byte(bits>>8), byte(bits>>16), byte(bits>>24))
}

// I32Eqz replaces the top i32 with 1 if it is zero and 0 otherwise.
func (c *Code) I32Eqz() *Code { return c.op(0x45) }

// I32Add adds the two i32 values on top of the stack.
func (c *Code) I32Add() *Code { return c.op(0x6a) }

func appendSection(out []byte, id byte, payload []byte) []byte {
	out = append(out, id)
	out = appendU32(out, uint32(len(payload)))
	return append(out, payload...)
}

func appendFuncType(out []byte, t FuncType) []byte {
	out = append(out, 0x60)
	out = appendU32(out, uint32(len(t.Params)))
	for _, p := range t.Params {
		out = append(out, byte(p))
	}
	out = appendU32(out, uint32(len(t.Results)))
	for _, r := range t.Results {
		out = append(out, byte(r))
	}
	return out
}

func appendName(out []byte, name string) []byte {
	out = appendU32(out, uint32(len(name)))
	return append(out, name...)
}

// appendU32 appends v as unsigned LEB128.
func appendU32(out []byte, v uint32) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}

// appendS64 appends v as signed LEB128.
func appendS64(out []byte, v int64) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}
