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
	"github.com/tlang-dev/tlc/pkg/util"
	"github.com/tlang-dev/tlc/pkg/util/source"
)

// Expr is implemented by all expression variants.  Every expression carries
// a nullable result type which the checker fills in; after a successful
// check, every expression has a non-nil result type.
type Expr interface {
	Node
	// Type returns the result type of this expression, or nil before the
	// expression has been checked.
	Type() types.Type
	// SetType records the result type of this expression.
	SetType(types.Type)
	// exprMark distinguishes expressions from other nodes.
	exprMark()
}

type exprNode struct {
	node
	resultType types.Type
}

func (p *exprNode) exprMark() {}

// Type returns the result type of this expression (nil before checking).
func (p *exprNode) Type() types.Type {
	return p.resultType
}

// SetType records the result type of this expression.
func (p *exprNode) SetType(t types.Type) {
	p.resultType = t
}

// ============================================================================
// Operators
// ============================================================================

// BinKind identifies a (non-comparison) binary operator.
type BinKind uint

// Binary operators.
const (
	ADD BinKind = iota
	SUB
	MUL
	DIV
	REM
	BAND
	BOR
	BXOR
	SHL
	// SHR is the logical right shift (">>").
	SHR
	// SAR is the arithmetic right shift (">>>").
	SAR
)

var binNames = [...]string{"+", "-", "*", "/", "%", "&", "|", "^", "<<", ">>", ">>>"}

// String returns the source form of this operator.
func (k BinKind) String() string {
	return binNames[k]
}

// CmpKind identifies a comparison operator.
type CmpKind uint

// Comparison operators.
const (
	EQ CmpKind = iota
	NEQ
	LT
	LTEQ
	GT
	GTEQ
	// CMP is the three-way comparison ("<=>").
	CMP
)

var cmpNames = [...]string{"==", "!=", "<", "<=", ">", ">=", "<=>"}

// String returns the source form of this operator.
func (k CmpKind) String() string {
	return cmpNames[k]
}

// UnKind identifies a unary operator.
type UnKind uint

// Unary operators.
const (
	// DEREF is pointer dereference ("*e").
	DEREF UnKind = iota
	// ADDROF is address-of ("&e").
	ADDROF
	// NEG is arithmetic negation.
	NEG
	// POS is the identity ("+e").
	POS
	// LNOT is logical negation ("!e").
	LNOT
	// BNOT is bitwise complement ("~e").
	BNOT
	// PREINC is pre-increment ("++e").
	PREINC
	// PREDEC is pre-decrement ("--e").
	PREDEC
	// POSTINC is post-increment ("e++").
	POSTINC
	// POSTDEC is post-decrement ("e--").
	POSTDEC
)

var unNames = [...]string{"*", "&", "-", "+", "!", "~", "++", "--", "++", "--"}

// String returns the source form of this operator.
func (k UnKind) String() string {
	return unNames[k]
}

// ============================================================================
// Expressions
// ============================================================================

// Seq is the comma operator: evaluate the left operand for its side effects,
// discard its value, then yield the right operand.
type Seq struct {
	exprNode
	L Expr
	R Expr
}

// NewSeq constructs a sequence expression node.
func NewSeq(span source.Span, l Expr, r Expr) *Seq {
	return &Seq{exprNode{node{span}, nil}, l, r}
}

// BinOp is an arithmetic, bitwise or shift binary operation.
type BinOp struct {
	exprNode
	Op BinKind
	L  Expr
	R  Expr
}

// NewBinOp constructs a binary operation node.
func NewBinOp(span source.Span, op BinKind, l Expr, r Expr) *BinOp {
	return &BinOp{exprNode{node{span}, nil}, op, l, r}
}

// CompOp is a comparison operation.
type CompOp struct {
	exprNode
	Op CmpKind
	L  Expr
	R  Expr
}

// NewCompOp constructs a comparison operation node.
func NewCompOp(span source.Span, op CmpKind, l Expr, r Expr) *CompOp {
	return &CompOp{exprNode{node{span}, nil}, op, l, r}
}

// UnOp is a unary operation (including the increment/decrement forms).
type UnOp struct {
	exprNode
	Op UnKind
	E  Expr
}

// NewUnOp constructs a unary operation node.
func NewUnOp(span source.Span, op UnKind, e Expr) *UnOp {
	return &UnOp{exprNode{node{span}, nil}, op, e}
}

// Assign is a (possibly compound) assignment.  For a plain assignment Op is
// empty; for a compound assignment such as "+=" it holds the underlying
// binary operator.
type Assign struct {
	exprNode
	// Op holds the compound operator, when present.
	Op util.Option[BinKind]
	// Target of this assignment (must be an lvalue).
	Target Expr
	Source Expr
}

// NewAssign constructs a plain assignment node.
func NewAssign(span source.Span, target Expr, src Expr) *Assign {
	return &Assign{exprNode{node{span}, nil}, util.None[BinKind](), target, src}
}

// NewCompoundAssign constructs a compound assignment node.
func NewCompoundAssign(span source.Span, op BinKind, target Expr, src Expr) *Assign {
	return &Assign{exprNode{node{span}, nil}, util.Some(op), target, src}
}

// LAnd is the short-circuit logical conjunction.
type LAnd struct {
	exprNode
	L Expr
	R Expr
}

// NewLAnd constructs a logical-and node.
func NewLAnd(span source.Span, l Expr, r Expr) *LAnd {
	return &LAnd{exprNode{node{span}, nil}, l, r}
}

// LOr is the short-circuit logical disjunction.
type LOr struct {
	exprNode
	L Expr
	R Expr
}

// NewLOr constructs a logical-or node.
func NewLOr(span source.Span, l Expr, r Expr) *LOr {
	return &LOr{exprNode{node{span}, nil}, l, r}
}

// LAndAssign is the short-circuit conjunction assignment ("&&=").
type LAndAssign struct {
	exprNode
	Target Expr
	Source Expr
}

// NewLAndAssign constructs a logical-and assignment node.
func NewLAndAssign(span source.Span, target Expr, src Expr) *LAndAssign {
	return &LAndAssign{exprNode{node{span}, nil}, target, src}
}

// LOrAssign is the short-circuit disjunction assignment ("||=").
type LOrAssign struct {
	exprNode
	Target Expr
	Source Expr
}

// NewLOrAssign constructs a logical-or assignment node.
func NewLOrAssign(span source.Span, target Expr, src Expr) *LOrAssign {
	return &LOrAssign{exprNode{node{span}, nil}, target, src}
}

// Ternary is the conditional operator "cond ? then : else".
type Ternary struct {
	exprNode
	Cond Expr
	Then Expr
	Else Expr
}

// NewTernary constructs a ternary node.
func NewTernary(span source.Span, cond Expr, then Expr, els Expr) *Ternary {
	return &Ternary{exprNode{node{span}, nil}, cond, then, els}
}

// Index is an array (or pointer) subscript "e[i]".
type Index struct {
	exprNode
	Arr Expr
	Idx Expr
}

// NewIndex constructs an array access node.
func NewIndex(span source.Span, arr Expr, idx Expr) *Index {
	return &Index{exprNode{node{span}, nil}, arr, idx}
}

// StructAccess is a field access "e.f".
type StructAccess struct {
	exprNode
	E     Expr
	Field string
}

// NewStructAccess constructs a field access node.
func NewStructAccess(span source.Span, e Expr, field string) *StructAccess {
	return &StructAccess{exprNode{node{span}, nil}, e, field}
}

// StructPtrAccess is a field access through a pointer "e->f".
type StructPtrAccess struct {
	exprNode
	E     Expr
	Field string
}

// NewStructPtrAccess constructs a pointer field access node.
func NewStructPtrAccess(span source.Span, e Expr, field string) *StructPtrAccess {
	return &StructPtrAccess{exprNode{node{span}, nil}, e, field}
}

// FnCall is a function call.
type FnCall struct {
	exprNode
	Fn   Expr
	Args []Expr
}

// NewFnCall constructs a function call node.
func NewFnCall(span source.Span, fn Expr, args []Expr) *FnCall {
	return &FnCall{exprNode{node{span}, nil}, fn, args}
}

// Cast is an explicit conversion "cast[T](e)".
type Cast struct {
	exprNode
	Target TypeExpr
	E      Expr
}

// NewCast constructs a cast node.
func NewCast(span source.Span, target TypeExpr, e Expr) *Cast {
	return &Cast{exprNode{node{span}, nil}, target, e}
}

// SizeofType is "sizeof(T)" for a type T.
type SizeofType struct {
	exprNode
	Target TypeExpr
	// Size of the target type in bytes (set by the checker).
	Size uint
}

// NewSizeofType constructs a sizeof-type node.
func NewSizeofType(span source.Span, target TypeExpr) *SizeofType {
	return &SizeofType{exprNode{node{span}, nil}, target, 0}
}

// SizeofExp is "sizeof(e)" for an expression e; the operand is type checked
// but never evaluated.
type SizeofExp struct {
	exprNode
	E Expr
}

// NewSizeofExp constructs a sizeof-expression node.
func NewSizeofExp(span source.Span, e Expr) *SizeofExp {
	return &SizeofExp{exprNode{node{span}, nil}, e}
}

// AggregateInit is an aggregate initialiser "<a, b, c>".
type AggregateInit struct {
	exprNode
	Elems []Expr
}

// NewAggregateInit constructs an aggregate initialiser node.
func NewAggregateInit(span source.Span, elems []Expr) *AggregateInit {
	return &AggregateInit{exprNode{node{span}, nil}, elems}
}

// Id is a (possibly scoped) identifier reference.  The symbol and overload
// decorations are filled in during resolution; after a successful check the
// symbol is never nil, and for a reference to an overloaded function the
// overload selection is never nil.
type Id struct {
	exprNode
	// Leading scope segments (empty for an unscoped name).
	Qualifiers []string
	// Final name segment.
	Name string
	// Symbol this identifier resolved to (set by the checker).  Its dynamic
	// type belongs to the compiler package.
	Symbol any
	// Overload selection for function references: an index into the symbol's
	// overload set, or -1 when not applicable.
	Overload int
}

// NewId constructs an identifier node.
func NewId(span source.Span, qualifiers []string, name string) *Id {
	return &Id{exprNode{node{span}, nil}, qualifiers, name, nil, -1}
}

// ============================================================================
// Constants
// ============================================================================

// ConstKind identifies the different literal constant forms.
type ConstKind uint

const (
	// INT_CONST is an integer literal.
	INT_CONST ConstKind = iota
	// FLOAT_CONST is a floating point literal.
	FLOAT_CONST
	// BOOL_CONST is true or false.
	BOOL_CONST
	// NULL_CONST is the null pointer literal.
	NULL_CONST
	// CHAR_CONST is a narrow character literal.
	CHAR_CONST
	// WCHAR_CONST is a wide character literal.
	WCHAR_CONST
	// STRING_CONST is a narrow string literal.
	STRING_CONST
	// WSTRING_CONST is a wide string literal.
	WSTRING_CONST
)

// Const is a literal constant.  Exactly one of the payload fields is
// meaningful, selected by the kind.
type Const struct {
	exprNode
	Kind ConstKind
	// Integer payload (also carries bool and character values).
	Int int64
	// Floating point payload.
	Float float64
	// Narrow string payload.
	Text string
	// Wide string payload.
	Runes []rune
}

// NewIntConst constructs an integer literal node.
func NewIntConst(span source.Span, value int64) *Const {
	return &Const{exprNode{node{span}, nil}, INT_CONST, value, 0, "", nil}
}

// NewFloatConst constructs a floating point literal node.
func NewFloatConst(span source.Span, value float64) *Const {
	return &Const{exprNode{node{span}, nil}, FLOAT_CONST, 0, value, "", nil}
}

// NewBoolConst constructs a boolean literal node.
func NewBoolConst(span source.Span, value bool) *Const {
	var bits int64
	if value {
		bits = 1
	}
	//
	return &Const{exprNode{node{span}, nil}, BOOL_CONST, bits, 0, "", nil}
}

// NewNullConst constructs a null pointer literal node.
func NewNullConst(span source.Span) *Const {
	return &Const{exprNode{node{span}, nil}, NULL_CONST, 0, 0, "", nil}
}

// NewCharConst constructs a narrow character literal node.
func NewCharConst(span source.Span, value byte) *Const {
	return &Const{exprNode{node{span}, nil}, CHAR_CONST, int64(value), 0, "", nil}
}

// NewWCharConst constructs a wide character literal node.
func NewWCharConst(span source.Span, value rune) *Const {
	return &Const{exprNode{node{span}, nil}, WCHAR_CONST, int64(value), 0, "", nil}
}

// NewStringConst constructs a narrow string literal node.
func NewStringConst(span source.Span, text string) *Const {
	return &Const{exprNode{node{span}, nil}, STRING_CONST, 0, 0, text, nil}
}

// NewWStringConst constructs a wide string literal node.
func NewWStringConst(span source.Span, runes []rune) *Const {
	return &Const{exprNode{node{span}, nil}, WSTRING_CONST, 0, 0, "", runes}
}
