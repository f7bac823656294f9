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

import (
	"fmt"
	"strings"
)

// Kind identifies one of the primitive types of the language.
type Kind uint

// The primitive type kinds.  The order here matters: integer kinds are
// arranged such that signedness and width can be recovered via simple
// predicates (see queries.go).
const (
	// VOID is the empty type.
	VOID Kind = iota
	// BOOL is the boolean type.
	BOOL
	// UBYTE is an unsigned 8bit integer.
	UBYTE
	// SBYTE is a signed 8bit integer.
	SBYTE
	// CHAR is a narrow (8bit) character.
	CHAR
	// USHORT is an unsigned 16bit integer.
	USHORT
	// SSHORT is a signed 16bit integer.
	SSHORT
	// UINT is an unsigned 32bit integer.
	UINT
	// SINT is a signed 32bit integer.
	SINT
	// WCHAR is a wide (32bit) character.
	WCHAR
	// ULONG is an unsigned 64bit integer.
	ULONG
	// SLONG is a signed 64bit integer.
	SLONG
	// FLOAT is a 32bit floating point number.
	FLOAT
	// DOUBLE is a 64bit floating point number.
	DOUBLE
)

// Type is the canonical representation of a source-level type.  Types are
// structural for primitives, pointers, arrays and function pointers, and
// nominal (by entry identity) for references to named types.
type Type interface {
	fmt.Stringer
	// typeMark distinguishes types from other interfaces.
	typeMark()
}

// Primitive represents one of the builtin primitive types.
type Primitive struct {
	Kind Kind
}

// Qualified represents a const and/or volatile qualified type.
type Qualified struct {
	Const    bool
	Volatile bool
	Base     Type
}

// Pointer represents a pointer to some base type.
type Pointer struct {
	Base Type
}

// Array represents a fixed-size array of some element type.
type Array struct {
	Length uint
	Elem   Type
}

// FunPtr represents a pointer to a function of a given signature.
type FunPtr struct {
	Ret  Type
	Args []Type
}

// Aggregate represents the (anonymous) type of an aggregate initialiser,
// being simply the sequence of its element types.
type Aggregate struct {
	Fields []Type
}

// Reference represents a use of a named type (typedef, struct, union or
// enum).  Two references are equal iff they refer to the same entry.
type Reference struct {
	Entry *Named
}

func (p *Primitive) typeMark() {}
func (p *Qualified) typeMark() {}
func (p *Pointer) typeMark()   {}
func (p *Array) typeMark()     {}
func (p *FunPtr) typeMark()    {}
func (p *Aggregate) typeMark() {}
func (p *Reference) typeMark() {}

// NewPrimitive constructs the primitive type of a given kind.
func NewPrimitive(kind Kind) *Primitive {
	return &Primitive{kind}
}

// NewConst wraps a given type with a const qualifier.  Wrapping an already
// qualified type simply sets the flag on the existing qualifier.
func NewConst(base Type) Type {
	if q, ok := base.(*Qualified); ok {
		return &Qualified{true, q.Volatile, q.Base}
	}
	//
	return &Qualified{true, false, base}
}

// NewVolatile wraps a given type with a volatile qualifier.
func NewVolatile(base Type) Type {
	if q, ok := base.(*Qualified); ok {
		return &Qualified{q.Const, true, q.Base}
	}
	//
	return &Qualified{false, true, base}
}

// NewPointer constructs a pointer to a given base type.
func NewPointer(base Type) *Pointer {
	return &Pointer{base}
}

// NewArray constructs an array of a given length and element type.
func NewArray(length uint, elem Type) *Array {
	return &Array{length, elem}
}

// NewFunPtr constructs a function pointer of a given signature.
func NewFunPtr(ret Type, args ...Type) *FunPtr {
	return &FunPtr{ret, args}
}

// NewAggregate constructs an aggregate type from a sequence of field types.
func NewAggregate(fields ...Type) *Aggregate {
	return &Aggregate{fields}
}

// NewReference constructs a reference to a given named entry.
func NewReference(entry *Named) *Reference {
	return &Reference{entry}
}

// ============================================================================
// Stringers
// ============================================================================

var kindNames = [...]string{
	"void", "bool", "ubyte", "byte", "char", "ushort", "short",
	"uint", "int", "wchar", "ulong", "long", "float", "double",
}

func (p *Primitive) String() string {
	return kindNames[p.Kind]
}

func (p *Qualified) String() string {
	var builder strings.Builder
	//
	builder.WriteString(p.Base.String())
	//
	if p.Const {
		builder.WriteString(" const")
	}
	//
	if p.Volatile {
		builder.WriteString(" volatile")
	}
	//
	return builder.String()
}

func (p *Pointer) String() string {
	return fmt.Sprintf("%s*", p.Base)
}

func (p *Array) String() string {
	return fmt.Sprintf("%s[%d]", p.Elem, p.Length)
}

func (p *FunPtr) String() string {
	args := make([]string, len(p.Args))
	//
	for i, a := range p.Args {
		args[i] = a.String()
	}
	//
	return fmt.Sprintf("%s(%s)", p.Ret, strings.Join(args, ", "))
}

func (p *Aggregate) String() string {
	fields := make([]string, len(p.Fields))
	//
	for i, f := range p.Fields {
		fields[i] = f.String()
	}
	//
	return fmt.Sprintf("<%s>", strings.Join(fields, ", "))
}

func (p *Reference) String() string {
	return p.Entry.Name
}
