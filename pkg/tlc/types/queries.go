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
package types

// Target width constants (in bytes).  These are fixed properties of the
// x86_64 target.
const (
	// BYTE_WIDTH is the width of byte, ubyte, char and bool.
	BYTE_WIDTH uint = 1
	// SHORT_WIDTH is the width of short and ushort.
	SHORT_WIDTH uint = 2
	// INT_WIDTH is the width of int, uint, wchar and float.
	INT_WIDTH uint = 4
	// LONG_WIDTH is the width of long, ulong and double.
	LONG_WIDTH uint = 8
	// PTR_WIDTH is the width of any pointer (or function pointer).
	PTR_WIDTH uint = 8
)

// OperandKind classifies how a value of some type is carried at the IR
// level: in a general-purpose register, an SSE register, or in memory.
type OperandKind uint

const (
	// GP values are carried in general-purpose registers.
	GP OperandKind = iota
	// SSE values are carried in SSE registers.
	SSE
	// MEM values live in memory.
	MEM
)

var kindWidths = [...]uint{
	0, // void
	BYTE_WIDTH, BYTE_WIDTH, BYTE_WIDTH, BYTE_WIDTH, // bool ubyte byte char
	SHORT_WIDTH, SHORT_WIDTH, // ushort short
	INT_WIDTH, INT_WIDTH, INT_WIDTH, // uint int wchar
	LONG_WIDTH, LONG_WIDTH, // ulong long
	INT_WIDTH, LONG_WIDTH, // float double
}

// Strip removes any qualifiers from a type, and resolves typedef and enum
// references down to their canonical underlying type.  Struct and union
// references are retained (the entry is their canonical form).
func Strip(t Type) Type {
	for {
		switch tt := t.(type) {
		case *Qualified:
			t = tt.Base
		case *Reference:
			if u := tt.Entry.Resolve(); u != nil {
				t = u
			} else {
				return t
			}
		default:
			return t
		}
	}
}

// SizeOf returns the size (in bytes) of a value of a given type.  Qualifiers
// and type references are traversed.
func SizeOf(t Type) uint {
	switch tt := Strip(t).(type) {
	case *Primitive:
		return kindWidths[tt.Kind]
	case *Pointer:
		return PTR_WIDTH
	case *FunPtr:
		return PTR_WIDTH
	case *Array:
		return tt.Length * SizeOf(tt.Elem)
	case *Aggregate:
		size := uint(0)
		//
		for _, f := range tt.Fields {
			size = alignUp(size, AlignOf(f)) + SizeOf(f)
		}
		//
		return size
	case *Reference:
		return sizeOfNamed(tt.Entry)
	}
	//
	panic("unknown type")
}

// AlignOf returns the alignment (in bytes) of a value of a given type.
func AlignOf(t Type) uint {
	switch tt := Strip(t).(type) {
	case *Primitive:
		return kindWidths[tt.Kind]
	case *Pointer:
		return PTR_WIDTH
	case *FunPtr:
		return PTR_WIDTH
	case *Array:
		return AlignOf(tt.Elem)
	case *Aggregate:
		align := uint(1)
		//
		for _, f := range tt.Fields {
			align = max(align, AlignOf(f))
		}
		//
		return align
	case *Reference:
		return alignOfNamed(tt.Entry)
	}
	//
	panic("unknown type")
}

func sizeOfNamed(entry *Named) uint {
	size := uint(0)
	//
	switch entry.Kind {
	case STRUCT:
		for _, f := range entry.Fields {
			size = alignUp(size, AlignOf(f.Type)) + SizeOf(f.Type)
		}
		// Pad to overall alignment
		return alignUp(size, alignOfNamed(entry))
	case UNION:
		for _, f := range entry.Fields {
			size = max(size, SizeOf(f.Type))
		}
		//
		return alignUp(size, alignOfNamed(entry))
	}
	//
	panic("size of unresolved reference")
}

func alignOfNamed(entry *Named) uint {
	align := uint(1)
	//
	for _, f := range entry.Fields {
		align = max(align, AlignOf(f.Type))
	}
	//
	return align
}

// KindOf classifies how a value of a given type is carried at the IR level.
// Qualifiers and typedefs are stripped first.
func KindOf(t Type) OperandKind {
	switch tt := Strip(t).(type) {
	case *Primitive:
		if tt.Kind == FLOAT || tt.Kind == DOUBLE {
			return SSE
		}
		//
		return GP
	case *Pointer, *FunPtr:
		return GP
	}
	// Structs, unions, arrays and aggregates all live in memory.
	return MEM
}

// ============================================================================
// Predicates
// ============================================================================

// IsVoid checks whether a given type is (an alias of) void.
func IsVoid(t Type) bool {
	p, ok := Strip(t).(*Primitive)
	return ok && p.Kind == VOID
}

// IsBool checks whether a given type is (an alias of) bool.
func IsBool(t Type) bool {
	p, ok := Strip(t).(*Primitive)
	return ok && p.Kind == BOOL
}

// IsInteger checks whether a given type is an integral type (including char,
// wchar and bool, which participate in integer arithmetic).
func IsInteger(t Type) bool {
	p, ok := Strip(t).(*Primitive)
	//
	return ok && p.Kind >= BOOL && p.Kind <= SLONG
}

// IsSigned checks whether a given integral type is signed.
func IsSigned(t Type) bool {
	p, ok := Strip(t).(*Primitive)
	//
	if !ok {
		return false
	}
	//
	switch p.Kind {
	case SBYTE, SSHORT, SINT, SLONG:
		return true
	}
	//
	return false
}

// IsFloat checks whether a given type is a floating-point type.
func IsFloat(t Type) bool {
	p, ok := Strip(t).(*Primitive)
	return ok && (p.Kind == FLOAT || p.Kind == DOUBLE)
}

// IsArithmetic checks whether a given type participates in arithmetic.
func IsArithmetic(t Type) bool {
	return IsInteger(t) || IsFloat(t)
}

// IsPointer checks whether a given type is a pointer type.
func IsPointer(t Type) bool {
	_, ok := Strip(t).(*Pointer)
	return ok
}

// IsConst checks whether the outermost type is const qualified.
func IsConst(t Type) bool {
	q, ok := t.(*Qualified)
	return ok && q.Const
}

// IsIncomplete checks whether a given type is (a reference to) an incomplete
// named type.
func IsIncomplete(t Type) bool {
	r, ok := Strip(t).(*Reference)
	return ok && r.Entry.Incomplete
}
