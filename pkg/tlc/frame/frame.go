// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package frame abstracts the target ABI behind a per-function storage
// allocator.  The translator is parameterised over a frame constructor and
// never mentions registers or stack layout itself; everything
// target-specific (calling convention, argument and local placement,
// prologue and epilogue) is owned by the concrete frame.
package frame

import (
	"github.com/tlang-dev/tlc/pkg/tlc/ir"
	"github.com/tlang-dev/tlc/pkg/tlc/types"
)

// Access is an abstract storage location for a single value: a register
// temporary, a stack slot, or a named global.  Loads and stores append the
// entries they need onto the given code sequence.
type Access interface {
	// Load appends entries which bring the value into an operand, and
	// returns that operand.
	Load(code *[]ir.Entry, tmps *ir.TempAllocator) ir.Operand
	// Store appends entries which write a given operand into this location.
	Store(code *[]ir.Entry, src ir.Operand, tmps *ir.TempAllocator)
	// Addr appends entries which compute the address of this location,
	// returning false when the location is not addressable (i.e. lives in a
	// register temporary).
	Addr(code *[]ir.Entry, tmps *ir.TempAllocator) (ir.Operand, bool)
	// Label returns the link label of this location.  It panics unless the
	// location is a named global.
	Label() string
}

// Frame is a per-function allocator of storage locations, abstracting the
// target ABI.  A fresh frame is constructed per function definition.
type Frame interface {
	// Name of the function this frame belongs to.
	Name() string
	// AllocArg allocates storage for the next incoming parameter, in
	// declaration order.
	AllocArg(t types.Type, escapes bool) Access
	// AllocRetVal allocates storage for the return value slot, or returns
	// nil for a void return.
	AllocRetVal(t types.Type) Access
	// AllocLocal allocates storage for a local binding.
	AllocLocal(t types.Type, escapes bool) Access
	// ScopeStart opens a nested scope.
	ScopeStart()
	// ScopeEnd closes the innermost scope, wrapping the given body with any
	// stack setup/teardown the scope requires.
	ScopeEnd(body []ir.Entry) []ir.Entry
	// Call appends the entries of a call to a given target (a label for a
	// direct call, or a value for a call through a function pointer):
	// arguments are moved into place per the calling convention, the CALL
	// is emitted, and the result (if any) is captured into a fresh
	// temporary which is returned.  A void call returns nil.
	Call(code *[]ir.Entry, target ir.Operand, args []ir.Operand, argTypes []types.Type, ret types.Type) ir.Operand
	// EntryExit wraps a completed body with the function prologue and
	// epilogue (callee saves, argument capture, return-value placement).
	EntryExit(body []ir.Entry) []ir.Entry
}

// Ctor constructs a frame for a function of a given (mangled) name, drawing
// temporaries from the given allocator.
type Ctor func(name string, tmps *ir.TempAllocator) Frame

// ============================================================================
// Shared access implementations
// ============================================================================

// tempAccess is a value living in a virtual register.
type tempAccess struct {
	temp *ir.Temp
}

func (p *tempAccess) Load(code *[]ir.Entry, tmps *ir.TempAllocator) ir.Operand {
	return p.temp
}

func (p *tempAccess) Store(code *[]ir.Entry, src ir.Operand, tmps *ir.TempAllocator) {
	*code = append(*code, ir.NewMove(p.temp.Size, p.temp, src))
}

func (p *tempAccess) Addr(code *[]ir.Entry, tmps *ir.TempAllocator) (ir.Operand, bool) {
	return nil, false
}

func (p *tempAccess) Label() string {
	panic("temporary has no label")
}

// stackAccess is a value living at a constant offset in the current frame.
type stackAccess struct {
	offset int
	size   uint
	kind   types.OperandKind
	align  uint
}

func (p *stackAccess) Load(code *[]ir.Entry, tmps *ir.TempAllocator) ir.Operand {
	t := tmps.Alloc(p.size, p.align, p.kind)
	*code = append(*code, ir.NewEntry(ir.STK_LOAD, p.size, t, &ir.StackOffset{Offset: p.offset}, nil))
	//
	return t
}

func (p *stackAccess) Store(code *[]ir.Entry, src ir.Operand, tmps *ir.TempAllocator) {
	*code = append(*code, ir.NewEntry(ir.STK_STORE, p.size, &ir.StackOffset{Offset: p.offset}, src, nil))
}

// Addr computes the address of this slot.  A move whose source is a stack
// offset denotes the address computation itself.
func (p *stackAccess) Addr(code *[]ir.Entry, tmps *ir.TempAllocator) (ir.Operand, bool) {
	t := tmps.Alloc(types.PTR_WIDTH, types.PTR_WIDTH, types.GP)
	*code = append(*code, ir.NewMove(types.PTR_WIDTH, t, &ir.StackOffset{Offset: p.offset}))
	//
	return t, true
}

func (p *stackAccess) Label() string {
	panic("stack slot has no label")
}

// globalAccess is a value living at a named location in static storage.
type globalAccess struct {
	label string
	size  uint
	kind  types.OperandKind
	align uint
}

// NewGlobalAccess constructs an access for a global of a given label and
// type.
func NewGlobalAccess(label string, t types.Type) Access {
	return &globalAccess{label, types.SizeOf(t), types.KindOf(t), types.AlignOf(t)}
}

func (p *globalAccess) Load(code *[]ir.Entry, tmps *ir.TempAllocator) ir.Operand {
	t := tmps.Alloc(p.size, p.align, p.kind)
	*code = append(*code, ir.NewEntry(ir.MEM_LOAD, p.size, t, ir.NewName(p.label), nil))
	//
	return t
}

func (p *globalAccess) Store(code *[]ir.Entry, src ir.Operand, tmps *ir.TempAllocator) {
	*code = append(*code, ir.NewEntry(ir.MEM_STORE, p.size, ir.NewName(p.label), src, nil))
}

func (p *globalAccess) Addr(code *[]ir.Entry, tmps *ir.TempAllocator) (ir.Operand, bool) {
	t := tmps.Alloc(types.PTR_WIDTH, types.PTR_WIDTH, types.GP)
	*code = append(*code, ir.NewMove(types.PTR_WIDTH, t, ir.NewName(p.label)))
	//
	return t, true
}

func (p *globalAccess) Label() string {
	return p.label
}
