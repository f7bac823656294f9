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

	"github.com/tlang-dev/tlc/pkg/tlc/types"
)

// Operand is implemented by every operand variant of a three-address entry.
type Operand interface {
	fmt.Stringer
	// operandMark distinguishes operands from other interfaces.
	operandMark()
}

// Temp is a virtual operand which becomes a register or spill slot after
// allocation (which happens in the external backend).
type Temp struct {
	// Id of this temporary, dense and monotonic within a function.
	Id uint
	// Size of this temporary in bytes.
	Size uint
	// Align of this temporary in bytes.
	Align uint
	// Kind classifies which register file (or memory) carries this value.
	Kind types.OperandKind
}

// Reg is a physical register, identified by a target-specific id.
type Reg struct {
	N uint
}

// Constant is an immediate value of a given byte width.
type Constant struct {
	// Bits holds the value, sign extended where relevant.
	Bits int64
	// Size of the constant in bytes.
	Size uint
}

// Name is a reference to a label.
type Name struct {
	Label string
}

// Asm is verbatim assembly text.
type Asm struct {
	Text string
}

// String is a narrow string payload (for data fragments).
type String struct {
	Bytes []byte
}

// WString is a wide string payload (for data fragments).
type WString struct {
	Codepoints []rune
}

// StackOffset is a constant offset into the current stack frame.
type StackOffset struct {
	Offset int
}

func (p *Temp) operandMark()        {}
func (p *Reg) operandMark()         {}
func (p *Constant) operandMark()    {}
func (p *Name) operandMark()        {}
func (p *Asm) operandMark()         {}
func (p *String) operandMark()      {}
func (p *WString) operandMark()     {}
func (p *StackOffset) operandMark() {}

func (p *Temp) String() string {
	switch p.Kind {
	case types.SSE:
		return fmt.Sprintf("f%d", p.Id)
	case types.MEM:
		return fmt.Sprintf("m%d", p.Id)
	}
	//
	return fmt.Sprintf("t%d", p.Id)
}

func (p *Reg) String() string {
	return fmt.Sprintf("r%d", p.N)
}

func (p *Constant) String() string {
	return fmt.Sprintf("#%d", p.Bits)
}

func (p *Name) String() string {
	return p.Label
}

func (p *Asm) String() string {
	return p.Text
}

func (p *String) String() string {
	return fmt.Sprintf("%q", string(p.Bytes))
}

func (p *WString) String() string {
	return fmt.Sprintf("L%q", string(p.Codepoints))
}

func (p *StackOffset) String() string {
	return fmt.Sprintf("sp[%d]", p.Offset)
}

// NewConstant constructs an immediate of a given width.
func NewConstant(bits int64, size uint) *Constant {
	return &Constant{bits, size}
}

// NewName constructs a label reference.
func NewName(label string) *Name {
	return &Name{label}
}
