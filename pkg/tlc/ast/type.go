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
	"github.com/tlang-dev/tlc/pkg/tlc/types"
	"github.com/tlang-dev/tlc/pkg/util/source"
)

// TypeExpr is the syntactic form of a type, as written in source.  The type
// checker maps these onto canonical types.Type values.
type TypeExpr interface {
	Node
	// typeExprMark distinguishes type expressions from other nodes.
	typeExprMark()
}

type typeExprNode struct {
	node
}

func (p *typeExprNode) typeExprMark() {}

// KeywordType is a primitive type keyword, e.g. "int".
type KeywordType struct {
	typeExprNode
	Kind types.Kind
}

// NewKeywordType constructs a primitive type keyword node.
func NewKeywordType(span source.Span, kind types.Kind) *KeywordType {
	return &KeywordType{typeExprNode{node{span}}, kind}
}

// NamedType is a (possibly scoped) reference to a named type, e.g.
// "vec::point".
type NamedType struct {
	typeExprNode
	// Leading module segments (empty for an unscoped name).
	Qualifiers []string
	// Final name segment.
	Name string
}

// NewNamedType constructs a named type reference node.
func NewNamedType(span source.Span, qualifiers []string, name string) *NamedType {
	return &NamedType{typeExprNode{node{span}}, qualifiers, name}
}

// ConstType is a const-qualified type, e.g. "int const".
type ConstType struct {
	typeExprNode
	Base TypeExpr
}

// NewConstType constructs a const qualified type node.
func NewConstType(span source.Span, base TypeExpr) *ConstType {
	return &ConstType{typeExprNode{node{span}}, base}
}

// VolatileType is a volatile-qualified type, e.g. "int volatile".
type VolatileType struct {
	typeExprNode
	Base TypeExpr
}

// NewVolatileType constructs a volatile qualified type node.
func NewVolatileType(span source.Span, base TypeExpr) *VolatileType {
	return &VolatileType{typeExprNode{node{span}}, base}
}

// PointerType is a pointer type, e.g. "int*".
type PointerType struct {
	typeExprNode
	Base TypeExpr
}

// NewPointerType constructs a pointer type node.
func NewPointerType(span source.Span, base TypeExpr) *PointerType {
	return &PointerType{typeExprNode{node{span}}, base}
}

// ArrayType is a fixed-size array type, e.g. "int[4]".  The length is an
// expression which must evaluate to a compile-time integer constant.
type ArrayType struct {
	typeExprNode
	Length Expr
	Base   TypeExpr
}

// NewArrayType constructs an array type node.
func NewArrayType(span source.Span, length Expr, base TypeExpr) *ArrayType {
	return &ArrayType{typeExprNode{node{span}}, length, base}
}

// FnPtrType is a function pointer type, e.g. "int(long, bool)".
type FnPtrType struct {
	typeExprNode
	Ret  TypeExpr
	Args []TypeExpr
}

// NewFnPtrType constructs a function pointer type node.
func NewFnPtrType(span source.Span, ret TypeExpr, args []TypeExpr) *FnPtrType {
	return &FnPtrType{typeExprNode{node{span}}, ret, args}
}
