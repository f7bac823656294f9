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
package compiler

import (
	"fmt"
	"math"

	"github.com/tlang-dev/tlc/pkg/tlc/ast"
	"github.com/tlang-dev/tlc/pkg/tlc/types"
	"github.com/tlang-dev/tlc/pkg/util/source"
)

// checkExpr computes (and records) the result type of an expression,
// returning nil when the expression is erroneous.  After a successful check
// every expression node carries a non-nil result type.
func (p *Checker) checkExpr(expr ast.Expr) types.Type {
	var result types.Type
	//
	switch e := expr.(type) {
	case *ast.Const:
		result = p.checkConst(e)
	case *ast.Id:
		result = p.checkId(e, false)
	case *ast.Seq:
		if p.checkExpr(e.L) != nil {
			result = p.checkExpr(e.R)
		}
	case *ast.BinOp:
		result = p.checkBinOp(e)
	case *ast.CompOp:
		result = p.checkCompOp(e)
	case *ast.UnOp:
		result = p.checkUnOp(e)
	case *ast.Assign:
		result = p.checkAssign(e)
	case *ast.LAnd:
		result = p.checkLogical(e.L, e.R)
	case *ast.LOr:
		result = p.checkLogical(e.L, e.R)
	case *ast.LAndAssign:
		result = p.checkLogicalAssign(e.Target, e.Source)
	case *ast.LOrAssign:
		result = p.checkLogicalAssign(e.Target, e.Source)
	case *ast.Ternary:
		result = p.checkTernary(e)
	case *ast.Index:
		result = p.checkIndex(e)
	case *ast.StructAccess:
		result = p.checkStructAccess(e.E, e.Field, false, e.Span())
	case *ast.StructPtrAccess:
		result = p.checkStructAccess(e.E, e.Field, true, e.Span())
	case *ast.FnCall:
		result = p.checkCall(e)
	case *ast.Cast:
		result = p.checkCast(e)
	case *ast.SizeofType:
		if target := p.resolveType(e.Target); target != nil {
			if types.IsIncomplete(target) {
				p.syntaxError(e.Span(), "sizeof incomplete type")
			} else {
				e.Size = types.SizeOf(target)
				result = types.NewPrimitive(types.ULONG)
			}
		}
	case *ast.SizeofExp:
		// The operand is checked but never evaluated.
		if p.checkExpr(e.E) != nil {
			result = types.NewPrimitive(types.ULONG)
		}
	case *ast.AggregateInit:
		result = p.checkAggregateInit(e)
	}
	//
	if result != nil {
		expr.SetType(result)
	}
	//
	return result
}

func (p *Checker) checkConst(e *ast.Const) types.Type {
	switch e.Kind {
	case ast.INT_CONST:
		// Literals fitting an int carry int, wider ones carry long.
		if e.Int >= math.MinInt32 && e.Int <= math.MaxInt32 {
			return types.NewPrimitive(types.SINT)
		}
		//
		return types.NewPrimitive(types.SLONG)
	case ast.FLOAT_CONST:
		return types.NewPrimitive(types.DOUBLE)
	case ast.BOOL_CONST:
		return types.NewPrimitive(types.BOOL)
	case ast.NULL_CONST:
		return types.NewPointer(types.NewPrimitive(types.VOID))
	case ast.CHAR_CONST:
		return types.NewPrimitive(types.CHAR)
	case ast.WCHAR_CONST:
		return types.NewPrimitive(types.WCHAR)
	case ast.STRING_CONST:
		// Strings are byte arrays including their terminator.
		return types.NewArray(uint(len(e.Text))+1, types.NewPrimitive(types.UBYTE))
	case ast.WSTRING_CONST:
		return types.NewArray(uint(len(e.Runes))+1, types.NewPrimitive(types.WCHAR))
	}
	//
	panic("unknown constant kind")
}

// checkId resolves an identifier.  In call position a bare function name is
// legal without a unique overload, since the call's arguments disambiguate.
func (p *Checker) checkId(e *ast.Id, callee bool) types.Type {
	var (
		symbol Symbol
		errs   []source.SyntaxError
	)
	//
	if len(e.Qualifiers) == 0 {
		symbol, errs = p.unit.Env.Lookup(e.Name, e.Span(), p.unit.File)
	} else {
		symbol, errs = p.unit.Env.LookupScoped(e.Qualifiers, e.Name, e.Span(), p.unit.File)
	}
	//
	if len(errs) > 0 {
		p.errors(errs)
		return nil
	}
	//
	e.Symbol = symbol
	//
	switch s := symbol.(type) {
	case *VarSymbol:
		return s.Type
	case *ConstSymbol:
		return s.Type
	case *FunSymbol:
		if callee {
			// Resolved against the arguments by checkCall.
			return nil
		}
		// A bare reference requires a unique overload, and denotes a
		// function pointer.
		if len(s.Overloads) != 1 {
			p.syntaxError(e.Span(), fmt.Sprintf("ambiguous reference to overloaded function '%s'", e.Name))
			return nil
		}
		//
		e.Overload = 0
		//
		return types.NewFunPtr(s.Overloads[0].Ret, s.Overloads[0].Args...)
	case *TypeSymbol:
		p.syntaxError(e.Span(), fmt.Sprintf("'%s' is a type, not a value", e.Name))
	}
	//
	return nil
}

func (p *Checker) checkBinOp(e *ast.BinOp) types.Type {
	var (
		left  = p.checkExpr(e.L)
		right = p.checkExpr(e.R)
	)
	//
	if left == nil || right == nil {
		return nil
	}
	//
	switch e.Op {
	case ast.ADD, ast.SUB:
		// Pointer arithmetic
		if types.IsPointer(left) && types.IsInteger(right) {
			return types.Strip(left)
		}
		//
		if e.Op == ast.SUB && types.IsPointer(left) && types.IsPointer(right) {
			return types.NewPrimitive(types.SLONG)
		}
		//
		fallthrough
	case ast.MUL, ast.DIV:
		if types.IsArithmetic(left) && types.IsArithmetic(right) {
			return types.Promote(left, right)
		}
	case ast.REM, ast.BAND, ast.BOR, ast.BXOR:
		if types.IsInteger(left) && types.IsInteger(right) {
			return types.Promote(left, right)
		}
	case ast.SHL, ast.SHR, ast.SAR:
		// Shifts take the (stripped) type of their left operand.
		if types.IsInteger(left) && types.IsInteger(right) {
			return types.Strip(left)
		}
	}
	//
	p.syntaxError(e.Span(),
		fmt.Sprintf("invalid operands to '%s': %s and %s", e.Op, left, right))
	//
	return nil
}

func (p *Checker) checkCompOp(e *ast.CompOp) types.Type {
	var (
		left  = p.checkExpr(e.L)
		right = p.checkExpr(e.R)
	)
	//
	if left == nil || right == nil {
		return nil
	}
	//
	comparable := (types.IsArithmetic(left) && types.IsArithmetic(right)) ||
		(types.IsPointer(left) && types.IsPointer(right)) ||
		(types.IsBool(left) && types.IsBool(right))
	// Pointers compare against null either way around.
	comparable = comparable ||
		(types.IsPointer(left) && types.Convertible(right, types.Strip(left))) ||
		(types.IsPointer(right) && types.Convertible(left, types.Strip(right)))
	//
	if !comparable {
		p.syntaxError(e.Span(),
			fmt.Sprintf("invalid operands to '%s': %s and %s", e.Op, left, right))
		//
		return nil
	}
	//
	if e.Op == ast.CMP {
		return types.NewPrimitive(types.SINT)
	}
	//
	return types.NewPrimitive(types.BOOL)
}

func (p *Checker) checkUnOp(e *ast.UnOp) types.Type {
	operand := p.checkExpr(e.E)
	//
	if operand == nil {
		return nil
	}
	//
	switch e.Op {
	case ast.NEG, ast.POS:
		if types.IsArithmetic(operand) {
			return types.Strip(operand)
		}
	case ast.BNOT:
		if types.IsInteger(operand) {
			return types.Strip(operand)
		}
	case ast.LNOT:
		if types.Convertible(operand, types.NewPrimitive(types.BOOL)) {
			return types.NewPrimitive(types.BOOL)
		}
	case ast.DEREF:
		if ptr, ok := types.Strip(operand).(*types.Pointer); ok {
			if types.IsVoid(ptr.Base) {
				p.syntaxError(e.Span(), "cannot dereference void pointer")
				return nil
			}
			//
			return ptr.Base
		}
	case ast.ADDROF:
		return p.checkAddrOf(e)
	case ast.PREINC, ast.PREDEC, ast.POSTINC, ast.POSTDEC:
		if !p.requireLvalue(e.E) {
			return nil
		}
		//
		if types.IsArithmetic(operand) || types.IsPointer(operand) {
			return operand
		}
	}
	//
	p.syntaxError(e.Span(), fmt.Sprintf("invalid operand to '%s': %s", e.Op, operand))
	//
	return nil
}

func (p *Checker) checkAddrOf(e *ast.UnOp) types.Type {
	if !p.requireLvalue(e.E) {
		return nil
	}
	// Taking the address forces the variable into addressable storage.
	if id, ok := e.E.(*ast.Id); ok {
		if symbol, ok := id.Symbol.(*VarSymbol); ok {
			symbol.Escapes = true
		}
	}
	//
	return types.NewPointer(e.E.Type())
}

func (p *Checker) checkAssign(e *ast.Assign) types.Type {
	var (
		target = p.checkExpr(e.Target)
		src    = p.checkExpr(e.Source)
	)
	//
	if target == nil || src == nil || !p.requireLvalue(e.Target) {
		return nil
	}
	//
	if types.IsConst(target) {
		p.syntaxError(e.Span(), "assignment to const")
		return nil
	}
	//
	if !types.Convertible(src, target) {
		p.typeMismatch(e.Source.Span(), src, target)
		return nil
	}
	// Compound assignments additionally carry their operator's constraints.
	if e.Op.HasValue() {
		switch e.Op.Unwrap() {
		case ast.ADD, ast.SUB, ast.MUL, ast.DIV:
			if !types.IsArithmetic(target) {
				p.syntaxError(e.Span(), fmt.Sprintf("invalid operand to '%s': %s", e.Op.Unwrap(), target))
				return nil
			}
		default:
			if !types.IsInteger(target) {
				p.syntaxError(e.Span(), fmt.Sprintf("invalid operand to '%s': %s", e.Op.Unwrap(), target))
				return nil
			}
		}
	}
	//
	return target
}

func (p *Checker) checkLogical(l ast.Expr, r ast.Expr) types.Type {
	var (
		boolean = types.NewPrimitive(types.BOOL)
		left    = p.checkExpr(l)
		right   = p.checkExpr(r)
	)
	//
	if left == nil || right == nil {
		return nil
	}
	//
	if !types.Convertible(left, boolean) {
		p.typeMismatch(l.Span(), left, boolean)
		return nil
	}
	//
	if !types.Convertible(right, boolean) {
		p.typeMismatch(r.Span(), right, boolean)
		return nil
	}
	//
	return boolean
}

func (p *Checker) checkLogicalAssign(target ast.Expr, src ast.Expr) types.Type {
	result := p.checkLogical(target, src)
	//
	if result == nil || !p.requireLvalue(target) {
		return nil
	}
	//
	if !types.IsBool(target.Type()) {
		p.typeMismatch(target.Span(), target.Type(), result)
		return nil
	}
	//
	if types.IsConst(target.Type()) {
		p.syntaxError(target.Span(), "assignment to const")
		return nil
	}
	//
	return result
}

func (p *Checker) checkTernary(e *ast.Ternary) types.Type {
	p.checkCondition(e.Cond)
	//
	var (
		then = p.checkExpr(e.Then)
		els  = p.checkExpr(e.Else)
	)
	//
	if then == nil || els == nil {
		return nil
	}
	// The arms must share a common type under the implicit conversions.
	switch {
	case types.Equal(then, els):
		return then
	case types.Convertible(then, els):
		return els
	case types.Convertible(els, then):
		return then
	}
	//
	p.syntaxError(e.Span(), fmt.Sprintf("mismatched ternary arms: %s and %s", then, els))
	//
	return nil
}

func (p *Checker) checkIndex(e *ast.Index) types.Type {
	var (
		arr = p.checkExpr(e.Arr)
		idx = p.checkExpr(e.Idx)
	)
	//
	if arr == nil || idx == nil {
		return nil
	}
	//
	if !types.IsInteger(idx) {
		p.syntaxError(e.Idx.Span(), fmt.Sprintf("array index must be integral, found %s", idx))
		return nil
	}
	//
	switch t := types.Strip(arr).(type) {
	case *types.Array:
		return t.Elem
	case *types.Pointer:
		return t.Base
	}
	//
	p.syntaxError(e.Span(), fmt.Sprintf("cannot index %s", arr))
	//
	return nil
}

func (p *Checker) checkStructAccess(base ast.Expr, field string, ptr bool, span source.Span) types.Type {
	typ := p.checkExpr(base)
	//
	if typ == nil {
		return nil
	}
	//
	stripped := types.Strip(typ)
	//
	if ptr {
		pointer, ok := stripped.(*types.Pointer)
		//
		if !ok {
			p.syntaxError(span, fmt.Sprintf("'->' requires a pointer, found %s", typ))
			return nil
		}
		//
		stripped = types.Strip(pointer.Base)
	}
	//
	ref, ok := stripped.(*types.Reference)
	//
	if !ok || (ref.Entry.Kind != types.STRUCT && ref.Entry.Kind != types.UNION) {
		p.syntaxError(span, fmt.Sprintf("'%s' is not a struct or union", typ))
		return nil
	}
	//
	if ref.Entry.Incomplete {
		p.syntaxError(span, fmt.Sprintf("'%s' is incomplete", ref.Entry.Name))
		return nil
	}
	//
	if f, ok := ref.Entry.FieldOf(field); ok {
		return f.Type
	}
	//
	p.syntaxError(span, fmt.Sprintf("'%s' has no field '%s'", ref.Entry.Name, field))
	//
	return nil
}

func (p *Checker) checkAggregateInit(e *ast.AggregateInit) types.Type {
	fields := make([]types.Type, len(e.Elems))
	//
	for i, elem := range e.Elems {
		if fields[i] = p.checkExpr(elem); fields[i] == nil {
			return nil
		}
	}
	//
	return types.NewAggregate(fields...)
}

func (p *Checker) checkCast(e *ast.Cast) types.Type {
	var (
		target  = p.resolveType(e.Target)
		operand = p.checkExpr(e.E)
	)
	//
	if target == nil || operand == nil {
		return nil
	}
	// Explicit casts permit anything the implicit lattice does, plus
	// narrowing between arithmetic types and arbitrary pointer
	// reinterpretation.  Nothing converts between pointers and arithmetic
	// values.
	var (
		arithmetic = types.IsArithmetic(operand) && types.IsArithmetic(target)
		pointers   = isPointerLike(operand) && isPointerLike(target)
	)
	//
	if arithmetic || pointers || types.Convertible(operand, target) {
		return target
	}
	//
	p.syntaxError(e.Span(), fmt.Sprintf("cannot cast %s to %s", operand, target))
	//
	return nil
}

func isPointerLike(t types.Type) bool {
	switch types.Strip(t).(type) {
	case *types.Pointer, *types.FunPtr, *types.Array:
		return true
	}
	//
	return false
}

// ============================================================================
// Calls & overload resolution
// ============================================================================

func (p *Checker) checkCall(e *ast.FnCall) types.Type {
	args := make([]types.Type, len(e.Args))
	//
	for i, arg := range e.Args {
		if args[i] = p.checkExpr(arg); args[i] == nil {
			return nil
		}
	}
	// A direct call through a function name resolves its overload from the
	// argument types; anything else must be a function pointer value.
	if id, ok := e.Fn.(*ast.Id); ok {
		p.checkId(id, true)
		//
		if id.Symbol == nil {
			// Resolution already reported the failure.
			return nil
		}
		//
		if fsym, ok := id.Symbol.(*FunSymbol); ok {
			return p.resolveOverload(id, fsym, args)
		}
	}
	//
	fn := e.Fn.Type()
	//
	if fn == nil {
		if fn = p.checkExpr(e.Fn); fn == nil {
			return nil
		}
	}
	//
	funptr, ok := types.Strip(fn).(*types.FunPtr)
	//
	if !ok {
		p.syntaxError(e.Fn.Span(), fmt.Sprintf("cannot call %s", fn))
		return nil
	}
	//
	if len(args) != len(funptr.Args) {
		p.syntaxError(e.Span(),
			fmt.Sprintf("wrong number of arguments: found %d, expected %d", len(args), len(funptr.Args)))
		//
		return nil
	}
	//
	for i, arg := range args {
		if !types.Convertible(arg, funptr.Args[i]) {
			p.typeMismatch(e.Args[i].Span(), arg, funptr.Args[i])
			return nil
		}
	}
	//
	return funptr.Ret
}

// resolveOverload selects the overload of a function matching a set of
// argument types: candidates must match the arity and accept every argument
// via implicit conversion; among those, the candidate with the most exact
// matches wins, and a tie is ambiguous.
func (p *Checker) resolveOverload(id *ast.Id, fsym *FunSymbol, args []types.Type) types.Type {
	var (
		bestScore = -1
		bestIndex = -1
		tied      bool
	)
	//
	for i, overload := range fsym.Overloads {
		if len(overload.Args) != len(args) {
			continue
		}
		//
		viable := true
		score := 0
		//
		for j, arg := range args {
			if types.Equal(types.Strip(arg), types.Strip(overload.Args[j])) {
				score++
			} else if !types.Convertible(arg, overload.Args[j]) {
				viable = false
				break
			}
		}
		//
		if !viable {
			continue
		}
		//
		switch {
		case score > bestScore:
			bestScore, bestIndex, tied = score, i, false
		case score == bestScore:
			tied = true
		}
	}
	//
	if bestIndex < 0 {
		p.syntaxError(id.Span(), fmt.Sprintf("no matching overload for '%s'", id.Name))
		return nil
	}
	//
	if tied {
		p.syntaxError(id.Span(), fmt.Sprintf("ambiguous call to '%s'", id.Name))
		return nil
	}
	//
	id.Overload = bestIndex
	//
	return fsym.Overloads[bestIndex].Ret
}

// ============================================================================
// Lvalues
// ============================================================================

// requireLvalue checks that an expression denotes an assignable location.
func (p *Checker) requireLvalue(e ast.Expr) bool {
	switch lhs := e.(type) {
	case *ast.Id:
		switch lhs.Symbol.(type) {
		case *VarSymbol:
			return true
		}
	case *ast.UnOp:
		if lhs.Op == ast.DEREF {
			return true
		}
	case *ast.Index, *ast.StructAccess, *ast.StructPtrAccess:
		return true
	}
	//
	p.syntaxError(e.Span(), "not an lvalue")
	//
	return false
}
