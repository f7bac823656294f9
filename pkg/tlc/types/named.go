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

// NamedKind distinguishes the different kinds of named type entry.
type NamedKind uint

const (
	// TYPEDEF is an alias for another type.
	TYPEDEF NamedKind = iota
	// STRUCT is a record of named fields laid out sequentially.
	STRUCT
	// UNION is a record of named fields sharing storage.
	UNION
	// ENUM is an integer type with named constants.
	ENUM
)

// Field is a single named field of a struct or union.
type Field struct {
	Name string
	Type Type
}

// EnumConstant is a single named constant of an enumeration.
type EnumConstant struct {
	Name  string
	Value int64
}

// Named is the entry for a named type (typedef, struct, union or enum) held
// in the symbol table.  References hold a pointer to their entry, hence
// nominal type equality is simply entry identity.  Entries are created
// incomplete when a type is forward declared (or declared opaque), and
// completed when the definition is seen.
type Named struct {
	// Module in which this entry was declared.
	Module string
	// Source-level name of this entry.
	Name string
	// What kind of named type this is.
	Kind NamedKind
	// Underlying type.  For a typedef this is the aliased type; for an enum
	// it is the underlying integer type.  Nil for structs/unions, whose
	// layout is given by their fields.
	Underlying Type
	// Fields of a struct or union (in declaration order).
	Fields []Field
	// Constants of an enum (in declaration order).
	Constants []EnumConstant
	// Incomplete is true until the definition has been seen.  Opaque types
	// remain incomplete forever.
	Incomplete bool
}

// NewNamed constructs a new (incomplete) entry of a given kind.
func NewNamed(module string, name string, kind NamedKind) *Named {
	return &Named{module, name, kind, nil, nil, nil, true}
}

// Resolve returns the canonical type underlying this entry, traversing
// typedef chains.  For structs and unions the entry itself is the canonical
// type, hence resolve returns nil for those.
func (p *Named) Resolve() Type {
	switch p.Kind {
	case TYPEDEF:
		return Strip(p.Underlying)
	case ENUM:
		return p.Underlying
	}
	//
	return nil
}

// FieldOf returns the named field of this struct or union, or false if no
// such field exists.
func (p *Named) FieldOf(name string) (Field, bool) {
	for _, f := range p.Fields {
		if f.Name == name {
			return f, true
		}
	}
	//
	return Field{}, false
}

// OffsetOf returns the byte offset of the named field within this struct.
// Union fields are all at offset zero.
func (p *Named) OffsetOf(name string) uint {
	if p.Kind == UNION {
		return 0
	}
	//
	offset := uint(0)
	//
	for _, f := range p.Fields {
		align := AlignOf(f.Type)
		offset = alignUp(offset, align)
		//
		if f.Name == name {
			return offset
		}
		//
		offset += SizeOf(f.Type)
	}
	// Unreachable provided the field exists.
	panic("unknown field: " + name)
}

// ConstantOf returns the named constant of this enum, or false if no such
// constant exists.
func (p *Named) ConstantOf(name string) (EnumConstant, bool) {
	for _, c := range p.Constants {
		if c.Name == name {
			return c, true
		}
	}
	//
	return EnumConstant{}, false
}

func alignUp(offset uint, align uint) uint {
	if align == 0 {
		return offset
	}
	//
	return ((offset + align - 1) / align) * align
}
