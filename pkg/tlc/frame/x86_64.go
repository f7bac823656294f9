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
package frame

import (
	"github.com/tlang-dev/tlc/pkg/tlc/ir"
	"github.com/tlang-dev/tlc/pkg/tlc/types"
)

// X86_64 register identifiers.
const (
	RAX uint = iota
	RBX
	RCX
	RDX
	RSI
	RDI
	RBP
	RSP
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15
	// XMM0 is the first SSE register; XMM0+n identifies XMMn.
	XMM0
)

// integerArgRegisters are the System-V integer argument registers, in order.
var integerArgRegisters = []uint{RDI, RSI, RDX, RCX, R8, R9}

// sseArgRegisterCount is the number of SSE registers used for argument
// passing (XMM0 through XMM7).
const sseArgRegisterCount = 8

// CalleeSaved are the registers a function must preserve under the System-V
// ABI (besides RBP/RSP, which the frame itself manages).
var CalleeSaved = []uint{RBX, R12, R13, R14, R15}

// incoming records where one formal parameter arrives, and the access it
// must be captured into.
type incoming struct {
	access Access
	// Register the argument arrives in, or none if it arrives on the stack.
	reg *ir.Reg
	// Stack offset (above the frame) the argument arrives at, when reg is
	// nil.
	stack int
	size  uint
	kind  types.OperandKind
}

// x86Frame implements the System-V AMD64 calling convention.
type x86Frame struct {
	name string
	tmps *ir.TempAllocator
	// Incoming parameter bindings, in declaration order.
	incomings []incoming
	// Access holding the return value, or nil for void.
	retval Access
	// Return value type, or nil for void.
	retType types.Type
	// Next integer argument register to hand out.
	nextInt int
	// Next SSE argument register to hand out.
	nextSse int
	// Offset (above the frame) of the next stack-passed argument.
	argOffset int
	// Offset (below the frame) of the next local slot.
	localOffset int
	// High water mark of local stack usage across all scopes.
	maxLocal int
	// Stack of scope marks, for releasing slots at scope end.
	scopes []int
}

// NewX86_64 constructs a System-V AMD64 frame for a function of a given
// name.  It has the shape of a Ctor.
func NewX86_64(name string, tmps *ir.TempAllocator) Frame {
	return &x86Frame{name: name, tmps: tmps, argOffset: 16}
}

// Name of the function this frame belongs to.
func (p *x86Frame) Name() string {
	return p.name
}

// AllocArg allocates storage for the next incoming parameter.
func (p *x86Frame) AllocArg(t types.Type, escapes bool) Access {
	var (
		kind   = types.KindOf(t)
		size   = types.SizeOf(t)
		access = p.allocate(t, escapes)
		in     = incoming{access, nil, 0, size, kind}
	)
	// Determine where the argument arrives.
	switch {
	case kind == types.GP && p.nextInt < len(integerArgRegisters):
		in.reg = &ir.Reg{N: integerArgRegisters[p.nextInt]}
		p.nextInt++
	case kind == types.SSE && p.nextSse < sseArgRegisterCount:
		in.reg = &ir.Reg{N: XMM0 + uint(p.nextSse)}
		p.nextSse++
	default:
		// Passed on the stack, above the return address.
		in.stack = p.argOffset
		p.argOffset += int(alignUp(size, 8))
	}
	//
	p.incomings = append(p.incomings, in)
	//
	return access
}

// AllocRetVal allocates the return value slot, or nil for void.
func (p *x86Frame) AllocRetVal(t types.Type) Access {
	if types.IsVoid(t) {
		return nil
	}
	//
	p.retval = p.allocate(t, false)
	p.retType = t
	//
	return p.retval
}

// AllocLocal allocates storage for a local binding.
func (p *x86Frame) AllocLocal(t types.Type, escapes bool) Access {
	return p.allocate(t, escapes)
}

// ScopeStart opens a nested scope.
func (p *x86Frame) ScopeStart() {
	p.scopes = append(p.scopes, p.localOffset)
}

// ScopeEnd closes the innermost scope.  Stack slots of the closed scope are
// released for reuse by sibling scopes; the body itself needs no rewriting
// since the total frame size is folded into the prologue.
func (p *x86Frame) ScopeEnd(body []ir.Entry) []ir.Entry {
	n := len(p.scopes) - 1
	p.localOffset = p.scopes[n]
	p.scopes = p.scopes[:n]
	//
	return body
}

// Call appends a complete call sequence: GP arguments go into the integer
// registers, SSE arguments into XMM registers, and any overflow is pushed
// via stack stores below the frame.
func (p *x86Frame) Call(code *[]ir.Entry, target ir.Operand, args []ir.Operand,
	argTypes []types.Type, ret types.Type) ir.Operand {
	//
	var (
		nextInt  = 0
		nextSse  = 0
		overflow = 0
	)
	//
	for i, arg := range args {
		var (
			kind = types.KindOf(argTypes[i])
			size = types.SizeOf(argTypes[i])
		)
		//
		switch {
		case kind == types.GP && nextInt < len(integerArgRegisters):
			reg := &ir.Reg{N: integerArgRegisters[nextInt]}
			*code = append(*code, ir.NewMove(size, reg, arg))
			//
			nextInt++
		case kind == types.SSE && nextSse < sseArgRegisterCount:
			reg := &ir.Reg{N: XMM0 + uint(nextSse)}
			*code = append(*code, ir.NewMove(size, reg, arg))
			//
			nextSse++
		default:
			offset := -(p.maxLocal + 8 + overflow)
			*code = append(*code, ir.NewEntry(ir.STK_STORE, size,
				&ir.StackOffset{Offset: offset}, arg, nil))
			//
			overflow += int(alignUp(size, 8))
		}
	}
	//
	*code = append(*code, ir.NewEntry(ir.CALL, 0, nil, target, nil))
	// Capture result (if any)
	if ret == nil || types.IsVoid(ret) {
		return nil
	}
	//
	var (
		size   = types.SizeOf(ret)
		kind   = types.KindOf(ret)
		result = p.tmps.Alloc(size, types.AlignOf(ret), kind)
	)
	//
	if kind == types.SSE {
		*code = append(*code, ir.NewMove(size, result, &ir.Reg{N: XMM0}))
	} else {
		*code = append(*code, ir.NewMove(size, result, &ir.Reg{N: RAX}))
	}
	//
	return result
}

// EntryExit wraps a completed body with the prologue and epilogue.  The body
// is expected to end with the function's exit label; every return jumps
// there.
func (p *x86Frame) EntryExit(body []ir.Entry) []ir.Entry {
	var (
		prologue []ir.Entry
		epilogue []ir.Entry
		saves    = make([]*ir.Temp, len(CalleeSaved))
	)
	// Save callee-save registers into fresh temporaries; the register
	// allocator later turns unneeded saves into nothing.
	for i, r := range CalleeSaved {
		saves[i] = p.tmps.Alloc(8, 8, types.GP)
		prologue = append(prologue, ir.NewMove(8, saves[i], &ir.Reg{N: r}))
	}
	// Capture incoming arguments into their accesses.
	for _, in := range p.incomings {
		if in.reg != nil {
			in.access.Store(&prologue, in.reg, p.tmps)
		} else {
			t := p.tmps.Alloc(in.size, 8, in.kind)
			prologue = append(prologue, ir.NewEntry(ir.STK_LOAD, in.size, t,
				&ir.StackOffset{Offset: in.stack}, nil))
			in.access.Store(&prologue, t, p.tmps)
		}
	}
	// Place the return value per the ABI.
	if p.retval != nil {
		var (
			size  = types.SizeOf(p.retType)
			value = p.retval.Load(&epilogue, p.tmps)
		)
		//
		if types.KindOf(p.retType) == types.SSE {
			epilogue = append(epilogue, ir.NewMove(size, &ir.Reg{N: XMM0}, value))
		} else {
			epilogue = append(epilogue, ir.NewMove(size, &ir.Reg{N: RAX}, value))
		}
	}
	// Restore callee-save registers.
	for i, r := range CalleeSaved {
		epilogue = append(epilogue, ir.NewMove(8, &ir.Reg{N: r}, saves[i]))
	}
	//
	epilogue = append(epilogue, ir.NewEntry(ir.RETURN, 0, nil, nil, nil))
	//
	result := append(prologue, body...)
	//
	return append(result, epilogue...)
}

// FrameSize returns the total number of bytes of stack this frame requires
// for its locals.
func (p *x86Frame) FrameSize() uint {
	return alignUp(uint(p.maxLocal), 16)
}

// allocate places a value either in a fresh temporary or, when it escapes or
// cannot live in a register, in a stack slot.
func (p *x86Frame) allocate(t types.Type, escapes bool) Access {
	var (
		kind  = types.KindOf(t)
		size  = types.SizeOf(t)
		align = types.AlignOf(t)
	)
	//
	if !escapes && kind != types.MEM {
		return &tempAccess{p.tmps.Alloc(size, align, kind)}
	}
	// Allocate a slot below the frame pointer.
	p.localOffset = int(alignUp(uint(p.localOffset)+size, align))
	p.maxLocal = max(p.maxLocal, p.localOffset)
	//
	return &stackAccess{-p.localOffset, size, kind, align}
}

func alignUp(offset uint, align uint) uint {
	if align == 0 {
		return offset
	}
	//
	return ((offset + align - 1) / align) * align
}
