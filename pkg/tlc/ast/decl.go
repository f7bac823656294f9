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
package ast

import (
	"github.com/tlang-dev/tlc/pkg/util/source"
)

// Decl is implemented by all top-level declaration variants.
type Decl interface {
	Node
	// declMark distinguishes declarations from other nodes.
	declMark()
}

type declNode struct {
	node
}

func (p *declNode) declMark() {}

// FunDecl is a function declaration or (when Body is non-nil) definition.
type FunDecl struct {
	declNode
	Name   string
	Ret    TypeExpr
	Params []*Param
	// Body of this function, or nil for a pure declaration.
	Body *Block
	// Symbol this declaration resolved to (set by the checker).  Its
	// dynamic type belongs to the compiler package.
	Symbol any
	// Overload index of this declaration within the symbol's overload set,
	// or -1 before resolution.
	Overload int
}

// NewFunDecl constructs a function declaration/definition node.
func NewFunDecl(span source.Span, name string, ret TypeExpr, params []*Param, body *Block) *FunDecl {
	return &FunDecl{declNode{node{span}}, name, ret, params, body, nil, -1}
}

// Param is a single formal parameter of a function.
type Param struct {
	node
	Name string
	Type TypeExpr
	// Symbol this parameter resolved to (set by the checker).
	Symbol any
}

// NewParam constructs a formal parameter node.
func NewParam(span source.Span, name string, typ TypeExpr) *Param {
	return &Param{node{span}, name, typ, nil}
}

// VarDecl is a variable declaration, with an optional initialiser.  A source
// declaration naming several variables is represented as one VarDecl per
// name.
type VarDecl struct {
	declNode
	Name string
	Type TypeExpr
	// Initialiser, or nil.
	Init Expr
	// Symbol this declaration resolved to (set by the checker).  Its
	// dynamic type belongs to the compiler package.
	Symbol any
}

// NewVarDecl constructs a variable declaration node.
func NewVarDecl(span source.Span, name string, typ TypeExpr, init Expr) *VarDecl {
	return &VarDecl{declNode{node{span}}, name, typ, init, nil}
}

// StructDecl is a struct definition.
type StructDecl struct {
	declNode
	Name   string
	Fields []*FieldDecl
}

// NewStructDecl constructs a struct definition node.
func NewStructDecl(span source.Span, name string, fields []*FieldDecl) *StructDecl {
	return &StructDecl{declNode{node{span}}, name, fields}
}

// UnionDecl is a union definition.
type UnionDecl struct {
	declNode
	Name   string
	Fields []*FieldDecl
}

// NewUnionDecl constructs a union definition node.
func NewUnionDecl(span source.Span, name string, fields []*FieldDecl) *UnionDecl {
	return &UnionDecl{declNode{node{span}}, name, fields}
}

// FieldDecl is a single field of a struct or union.
type FieldDecl struct {
	node
	Name string
	Type TypeExpr
}

// NewFieldDecl constructs a field declaration node.
func NewFieldDecl(span source.Span, name string, typ TypeExpr) *FieldDecl {
	return &FieldDecl{node{span}, name, typ}
}

// EnumDecl is an enum definition.
type EnumDecl struct {
	declNode
	Name  string
	Items []*EnumItem
}

// NewEnumDecl constructs an enum definition node.
func NewEnumDecl(span source.Span, name string, items []*EnumItem) *EnumDecl {
	return &EnumDecl{declNode{node{span}}, name, items}
}

// EnumItem is a single named constant of an enum, with an optional explicit
// value.
type EnumItem struct {
	node
	Name string
	// Explicit value, or nil for the successor of the previous item.
	Value Expr
}

// NewEnumItem constructs an enum constant node.
func NewEnumItem(span source.Span, name string, value Expr) *EnumItem {
	return &EnumItem{node{span}, name, value}
}

// TypedefDecl is a typedef, aliasing a name to a type.
type TypedefDecl struct {
	declNode
	Name string
	Type TypeExpr
}

// NewTypedefDecl constructs a typedef node.
func NewTypedefDecl(span source.Span, name string, typ TypeExpr) *TypedefDecl {
	return &TypedefDecl{declNode{node{span}}, name, typ}
}

// OpaqueKind distinguishes the aggregate kinds which may be declared opaque
// or forward declared.
type OpaqueKind uint

const (
	// OPAQUE_STRUCT is a struct forward/opaque declaration.
	OPAQUE_STRUCT OpaqueKind = iota
	// OPAQUE_UNION is a union forward/opaque declaration.
	OPAQUE_UNION
)

// OpaqueDecl is a forward (or permanently opaque) declaration of a struct or
// union.
type OpaqueDecl struct {
	declNode
	Kind OpaqueKind
	Name string
}

// NewOpaqueDecl constructs a forward/opaque declaration node.
func NewOpaqueDecl(span source.Span, kind OpaqueKind, name string) *OpaqueDecl {
	return &OpaqueDecl{declNode{node{span}}, kind, name}
}
