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
package ir

import (
	"fmt"
	"strings"
)

// Entry is a single three-address instruction.  Size is the byte width of
// the operation; it is zero for unconditional jumps, calls, returns, labels
// and asm entries.  Conditional jumps carry the width of the operands they
// compare, and CONST entries the width of the datum they place.
type Entry struct {
	Op   Op
	Size uint
	// Dest is the destination operand, or nil.  Conditional jumps hold their
	// target label here.
	Dest Operand
	// Arg1 is the first source operand, or nil.
	Arg1 Operand
	// Arg2 is the second source operand, or nil.
	Arg2 Operand
}

// String renders this entry in a readable, roughly assembly-like form.
func (p *Entry) String() string {
	var (
		builder strings.Builder
		args    []string
	)
	//
	switch p.Op {
	case LABEL:
		return fmt.Sprintf("%s:", p.Dest)
	case ASM:
		return fmt.Sprintf("\tasm %q", p.Arg1.String())
	}
	//
	fmt.Fprintf(&builder, "\t%s", p.Op)
	//
	if p.Size != 0 {
		fmt.Fprintf(&builder, ".%d", p.Size)
	}
	//
	if p.Dest != nil {
		args = append(args, p.Dest.String())
	}
	//
	if p.Arg1 != nil {
		args = append(args, p.Arg1.String())
	}
	//
	if p.Arg2 != nil {
		args = append(args, p.Arg2.String())
	}
	//
	if len(args) > 0 {
		fmt.Fprintf(&builder, " %s", strings.Join(args, ", "))
	}
	//
	return builder.String()
}

// NewEntry constructs an arbitrary entry.
func NewEntry(op Op, size uint, dest Operand, arg1 Operand, arg2 Operand) Entry {
	return Entry{op, size, dest, arg1, arg2}
}

// NewLabel constructs a label entry.
func NewLabel(name string) Entry {
	return Entry{LABEL, 0, &Name{name}, nil, nil}
}

// NewJump constructs an unconditional jump to a given label.
func NewJump(target string) Entry {
	return Entry{JUMP, 0, &Name{target}, nil, nil}
}

// NewCondJump constructs a conditional jump comparing two operands.
func NewCondJump(op Op, size uint, target string, arg1 Operand, arg2 Operand) Entry {
	return Entry{op, size, &Name{target}, arg1, arg2}
}

// NewMove constructs a move of a given width.
func NewMove(size uint, dest Operand, src Operand) Entry {
	return Entry{MOVE, size, dest, src, nil}
}

// NewConst constructs a raw-data placement entry.
func NewConst(size uint, value Operand) Entry {
	return Entry{CONST, size, nil, value, nil}
}

// NewAsm constructs a verbatim assembly entry.
func NewAsm(text string) Entry {
	return Entry{ASM, 0, nil, &Asm{text}, nil}
}
