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
	"math"

	"github.com/tlang-dev/tlc/pkg/tlc/ast"
	"github.com/tlang-dev/tlc/pkg/tlc/frame"
	"github.com/tlang-dev/tlc/pkg/tlc/ir"
	"github.com/tlang-dev/tlc/pkg/tlc/types"
)

// translateExpr lowers an expression, appending whatever entries it needs
// and returning the operand holding its value.
func (p *Translator) translateExpr(expr ast.Expr, code *[]ir.Entry) ir.Operand {
	switch e := expr.(type) {
	case *ast.Const:
		return p.translateConst(e, code)
	case *ast.Id:
		return p.translateId(e, code)
	case *ast.Seq:
		// The left value is discarded.
		p.translateExpr(e.L, code)
		return p.translateExpr(e.R, code)
	case *ast.BinOp:
		return p.translateBinOp(e, code)
	case *ast.CompOp:
		return p.translateCompOp(e, code)
	case *ast.UnOp:
		return p.translateUnOp(e, code)
	case *ast.Assign:
		return p.translateAssign(e, code)
	case *ast.LAnd, *ast.LOr:
		return p.translateLogical(expr, code)
	case *ast.LAndAssign:
		return p.translateLAndAssign(e, code)
	case *ast.LOrAssign:
		return p.translateLOrAssign(e, code)
	case *ast.Ternary:
		return p.translateTernary(e, code)
	case *ast.Index, *ast.StructAccess, *ast.StructPtrAccess:
		return p.resolveLocation(expr, code).load(p, code)
	case *ast.FnCall:
		return p.translateCall(e, code)
	case *ast.Cast:
		value := p.translateExpr(e.E, code)
		return p.translateConvert(value, e.E.Type(), e.Type(), code)
	case *ast.SizeofType, *ast.SizeofExp:
		// The operand of sizeof(expr) is never evaluated.
		return ir.NewConstant(int64(p.sizeofTarget(expr)), types.LONG_WIDTH)
	case *ast.AggregateInit:
		return p.translateAggregateInit(e, code)
	}
	//
	panic("unknown expression")
}

func (p *Translator) sizeofTarget(expr ast.Expr) uint {
	switch e := expr.(type) {
	case *ast.SizeofExp:
		return types.SizeOf(e.E.Type())
	case *ast.SizeofType:
		// Size of the named type, recorded by the checker.
		return e.Size
	}
	//
	panic("unreachable")
}

func (p *Translator) translateConst(e *ast.Const, code *[]ir.Entry) ir.Operand {
	size := types.SizeOf(e.Type())
	//
	switch e.Kind {
	case ast.INT_CONST, ast.BOOL_CONST, ast.CHAR_CONST, ast.WCHAR_CONST:
		return ir.NewConstant(e.Int, size)
	case ast.NULL_CONST:
		return ir.NewConstant(0, types.PTR_WIDTH)
	case ast.FLOAT_CONST:
		return ir.NewConstant(int64(math.Float64bits(e.Float)), size)
	case ast.STRING_CONST:
		return ir.NewName(p.internString(e.Text))
	case ast.WSTRING_CONST:
		return ir.NewName(p.internWString(e.Runes))
	}
	//
	panic("unknown constant kind")
}

func (p *Translator) translateId(e *ast.Id, code *[]ir.Entry) ir.Operand {
	switch symbol := e.Symbol.(type) {
	case *VarSymbol:
		// An array lvalue decays to its address in value position.
		if _, ok := types.Strip(symbol.Type).(*types.Array); ok {
			addr, _ := symbol.Access.Addr(code, p.tmps)
			return addr
		}
		//
		return symbol.Access.Load(code, p.tmps)
	case *ConstSymbol:
		return ir.NewConstant(symbol.Value, types.SizeOf(symbol.Type))
	case *FunSymbol:
		return ir.NewName(symbol.Overloads[e.Overload].Label)
	}
	//
	panic("unresolved identifier")
}

// ============================================================================
// Operators
// ============================================================================

func (p *Translator) translateBinOp(e *ast.BinOp, code *[]ir.Entry) ir.Operand {
	// Pointer arithmetic scales the integer operand by the element size.
	if types.IsPointer(e.L.Type()) {
		return p.translatePointerArith(e, code)
	}
	//
	var (
		result = e.Type()
		size   = types.SizeOf(result)
		left   = p.translateExpr(e.L, code)
		right  = p.translateExpr(e.R, code)
		dest   = p.tmps.AllocFor(result)
	)
	//
	left = p.translateConvert(left, e.L.Type(), result, code)
	right = p.translateConvert(right, e.R.Type(), result, code)
	//
	op := binaryOp(e.Op, result)
	//
	*code = append(*code, ir.NewEntry(op, size, dest, left, right))
	//
	return dest
}

// binaryOp selects the IR operator implementing a binary operation on a
// given result type.
func binaryOp(op ast.BinKind, t types.Type) ir.Op {
	var (
		float  = types.IsFloat(t)
		signed = types.IsSigned(t)
	)
	//
	switch op {
	case ast.ADD:
		return pick(float, ir.FP_ADD, ir.ADD)
	case ast.SUB:
		return pick(float, ir.FP_SUB, ir.SUB)
	case ast.MUL:
		if float {
			return ir.FP_MUL
		}
		//
		return pick(signed, ir.SMUL, ir.UMUL)
	case ast.DIV:
		if float {
			return ir.FP_DIV
		}
		//
		return pick(signed, ir.SDIV, ir.UDIV)
	case ast.REM:
		return pick(signed, ir.SMOD, ir.UMOD)
	case ast.BAND:
		return ir.AND
	case ast.BOR:
		return ir.OR
	case ast.BXOR:
		return ir.XOR
	case ast.SHL:
		return ir.SLL
	case ast.SHR:
		return ir.SLR
	case ast.SAR:
		return ir.SAR
	}
	//
	panic("unknown binary operator")
}

func (p *Translator) translatePointerArith(e *ast.BinOp, code *[]ir.Entry) ir.Operand {
	var (
		width = types.PTR_WIDTH
		left  = p.translateExpr(e.L, code)
		right = p.translateExpr(e.R, code)
		dest  = p.tmps.Alloc(width, width, types.GP)
	)
	// Pointer difference yields the byte distance divided by element size.
	if types.IsPointer(e.R.Type()) {
		elem := types.SizeOf(types.Strip(e.L.Type()).(*types.Pointer).Base)
		//
		*code = append(*code, ir.NewEntry(ir.SUB, width, dest, left, right))
		//
		quotient := p.tmps.Alloc(width, width, types.GP)
		*code = append(*code, ir.NewEntry(ir.SDIV, width, quotient, dest,
			ir.NewConstant(int64(elem), width)))
		//
		return quotient
	}
	//
	scaled := p.scaleIndex(right, e.R.Type(), types.Strip(e.L.Type()).(*types.Pointer).Base, code)
	//
	op := pick(e.Op == ast.SUB, ir.SUB, ir.ADD)
	*code = append(*code, ir.NewEntry(op, width, dest, left, scaled))
	//
	return dest
}

// scaleIndex widens an index to pointer width and multiplies it by the
// element size.
func (p *Translator) scaleIndex(index ir.Operand, indexType types.Type, elem types.Type,
	code *[]ir.Entry) ir.Operand {
	//
	var (
		width = types.PTR_WIDTH
		size  = types.SizeOf(elem)
	)
	//
	index = p.translateConvert(index, indexType, types.NewPrimitive(types.SLONG), code)
	//
	if size == 1 {
		return index
	}
	//
	scaled := p.tmps.Alloc(width, width, types.GP)
	*code = append(*code, ir.NewEntry(ir.UMUL, width, scaled, index,
		ir.NewConstant(int64(size), width)))
	//
	return scaled
}

func (p *Translator) translateCompOp(e *ast.CompOp, code *[]ir.Entry) ir.Operand {
	var (
		common = promoteOperands(e.L.Type(), e.R.Type())
		size   = types.SizeOf(common)
		left   = p.translateExpr(e.L, code)
		right  = p.translateExpr(e.R, code)
	)
	//
	left = p.translateConvert(left, e.L.Type(), common, code)
	right = p.translateConvert(right, e.R.Type(), common, code)
	// The three-way comparison materialises (a > b) - (a < b).
	if e.Op == ast.CMP {
		var (
			gt   = p.tmps.Alloc(types.INT_WIDTH, types.INT_WIDTH, types.GP)
			lt   = p.tmps.Alloc(types.INT_WIDTH, types.INT_WIDTH, types.GP)
			dest = p.tmps.Alloc(types.INT_WIDTH, types.INT_WIDTH, types.GP)
		)
		//
		*code = append(*code, ir.NewEntry(compareOp(ast.GT, common), size, gt, left, right))
		*code = append(*code, ir.NewEntry(compareOp(ast.LT, common), size, lt, left, right))
		*code = append(*code, ir.NewEntry(ir.SUB, types.INT_WIDTH, dest, gt, lt))
		//
		return dest
	}
	//
	dest := p.tmps.Alloc(types.BYTE_WIDTH, types.BYTE_WIDTH, types.GP)
	*code = append(*code, ir.NewEntry(compareOp(e.Op, common), size, dest, left, right))
	//
	return dest
}

// compareOp selects the 0/1-producing IR comparison for a given operator and
// operand type.
func compareOp(op ast.CmpKind, t types.Type) ir.Op {
	var (
		float    = types.IsFloat(t)
		unsigned = !types.IsSigned(t) && !float
	)
	//
	switch op {
	case ast.EQ:
		return pick(float, ir.FP_E, ir.E)
	case ast.NEQ:
		return pick(float, ir.FP_NE, ir.NE)
	case ast.LT:
		if float {
			return ir.FP_L
		}
		//
		return pick(unsigned, ir.B, ir.L)
	case ast.LTEQ:
		if float {
			return ir.FP_LE
		}
		//
		return pick(unsigned, ir.BE, ir.LE)
	case ast.GT:
		if float {
			return ir.FP_G
		}
		//
		return pick(unsigned, ir.A, ir.G)
	case ast.GTEQ:
		if float {
			return ir.FP_GE
		}
		//
		return pick(unsigned, ir.AE, ir.GE)
	}
	//
	panic("unknown comparison operator")
}

// promoteOperands computes the common comparison type of two operands,
// treating pointer comparisons as unsigned long.
func promoteOperands(a types.Type, b types.Type) types.Type {
	if types.IsPointer(a) || types.IsPointer(b) {
		return types.NewPrimitive(types.ULONG)
	}
	//
	return types.Promote(a, b)
}

func (p *Translator) translateUnOp(e *ast.UnOp, code *[]ir.Entry) ir.Operand {
	switch e.Op {
	case ast.POS:
		return p.translateExpr(e.E, code)
	case ast.NEG:
		return p.translateNeg(e, code)
	case ast.BNOT:
		var (
			size    = types.SizeOf(e.Type())
			operand = p.translateExpr(e.E, code)
			dest    = p.tmps.AllocFor(e.Type())
		)
		//
		*code = append(*code, ir.NewEntry(ir.NOT, size, dest, operand, nil))
		//
		return dest
	case ast.LNOT:
		var (
			operand = p.translateExpr(e.E, code)
			dest    = p.tmps.Alloc(types.BYTE_WIDTH, types.BYTE_WIDTH, types.GP)
		)
		//
		operand = p.translateConvert(operand, e.E.Type(), types.NewPrimitive(types.BOOL), code)
		*code = append(*code, ir.NewEntry(ir.LNOT, types.BYTE_WIDTH, dest, operand, nil))
		//
		return dest
	case ast.DEREF:
		var (
			size = types.SizeOf(e.Type())
			addr = p.translateExpr(e.E, code)
			dest = p.tmps.AllocFor(e.Type())
		)
		//
		*code = append(*code, ir.NewEntry(ir.MEM_LOAD, size, dest, addr, nil))
		//
		return dest
	case ast.ADDROF:
		return p.translateAddr(e.E, code)
	case ast.PREINC, ast.PREDEC, ast.POSTINC, ast.POSTDEC:
		return p.translateIncDec(e, code)
	}
	//
	panic("unknown unary operator")
}

func (p *Translator) translateNeg(e *ast.UnOp, code *[]ir.Entry) ir.Operand {
	var (
		result  = e.Type()
		size    = types.SizeOf(result)
		operand = p.translateExpr(e.E, code)
		dest    = p.tmps.AllocFor(result)
	)
	// Negation is subtraction from zero.
	op := pick(types.IsFloat(result), ir.FP_SUB, ir.SUB)
	*code = append(*code, ir.NewEntry(op, size, dest, ir.NewConstant(0, size), operand))
	//
	return dest
}

// translateIncDec lowers the increment/decrement forms.  The operand is
// evaluated once; the prefix forms yield the updated value, the postfix
// forms the original.
func (p *Translator) translateIncDec(e *ast.UnOp, code *[]ir.Entry) ir.Operand {
	var (
		result = e.Type()
		size   = types.SizeOf(result)
		loc    = p.resolveLocation(e.E, code)
		old    = loc.load(p, code)
		step   = int64(1)
	)
	// Pointers step by their element size.
	if ptr, ok := types.Strip(result).(*types.Pointer); ok {
		step = int64(types.SizeOf(ptr.Base))
	}
	//
	var (
		decrement = e.Op == ast.PREDEC || e.Op == ast.POSTDEC
		postfix   = e.Op == ast.POSTINC || e.Op == ast.POSTDEC
		op        = pick(decrement, ir.SUB, ir.ADD)
		one       = ir.NewConstant(step, size)
		updated   = p.tmps.AllocFor(result)
	)
	//
	if types.IsFloat(result) {
		op = pick(decrement, ir.FP_SUB, ir.FP_ADD)
		//
		if size == types.INT_WIDTH {
			one = ir.NewConstant(int64(math.Float32bits(1)), size)
		} else {
			one = ir.NewConstant(int64(math.Float64bits(1)), size)
		}
	}
	// Postfix keeps a copy of the original value.
	var saved ir.Operand
	//
	if postfix {
		t := p.tmps.AllocFor(result)
		*code = append(*code, ir.NewMove(size, t, old))
		saved = t
	}
	//
	*code = append(*code, ir.NewEntry(op, size, updated, old, one))
	loc.store(p, code, updated)
	//
	if postfix {
		return saved
	}
	//
	return updated
}

// ============================================================================
// Assignment
// ============================================================================

func (p *Translator) translateAssign(e *ast.Assign, code *[]ir.Entry) ir.Operand {
	var (
		target = e.Target.Type()
		size   = types.SizeOf(target)
		loc    = p.resolveLocation(e.Target, code)
		value  = p.translateExpr(e.Source, code)
	)
	//
	value = p.translateConvert(value, e.Source.Type(), target, code)
	// Compound forms read, combine, then write back.
	if e.Op.HasValue() {
		var (
			old  = loc.load(p, code)
			dest = p.tmps.AllocFor(target)
			op   = binaryOp(e.Op.Unwrap(), target)
		)
		//
		*code = append(*code, ir.NewEntry(op, size, dest, old, value))
		value = dest
	}
	//
	loc.store(p, code, value)
	//
	return value
}

func (p *Translator) translateLAndAssign(e *ast.LAndAssign, code *[]ir.Entry) ir.Operand {
	var (
		loc  = p.resolveLocation(e.Target, code)
		end  = p.labels.NewLabel()
		dest = p.tmps.Alloc(types.BYTE_WIDTH, types.BYTE_WIDTH, types.GP)
	)
	// An already-false target short-circuits the source entirely.
	current := loc.load(p, code)
	*code = append(*code, ir.NewMove(types.BYTE_WIDTH, dest, current))
	*code = append(*code, ir.NewCondJump(ir.JE, types.BYTE_WIDTH, end,
		current, ir.NewConstant(0, types.BYTE_WIDTH)))
	//
	value := p.translateBool(e.Source, code)
	*code = append(*code, ir.NewMove(types.BYTE_WIDTH, dest, value))
	loc.store(p, code, dest)
	//
	*code = append(*code, ir.NewLabel(end))
	//
	return dest
}

func (p *Translator) translateLOrAssign(e *ast.LOrAssign, code *[]ir.Entry) ir.Operand {
	var (
		loc  = p.resolveLocation(e.Target, code)
		end  = p.labels.NewLabel()
		dest = p.tmps.Alloc(types.BYTE_WIDTH, types.BYTE_WIDTH, types.GP)
	)
	// An already-true target short-circuits the source entirely.
	current := loc.load(p, code)
	*code = append(*code, ir.NewMove(types.BYTE_WIDTH, dest, current))
	*code = append(*code, ir.NewCondJump(ir.JNE, types.BYTE_WIDTH, end,
		current, ir.NewConstant(0, types.BYTE_WIDTH)))
	//
	value := p.translateBool(e.Source, code)
	*code = append(*code, ir.NewMove(types.BYTE_WIDTH, dest, value))
	loc.store(p, code, dest)
	//
	*code = append(*code, ir.NewLabel(end))
	//
	return dest
}

// translateBool materialises an expression as a 0/1 byte via the branch
// translator.
func (p *Translator) translateBool(e ast.Expr, code *[]ir.Entry) ir.Operand {
	var (
		dest    = p.tmps.Alloc(types.BYTE_WIDTH, types.BYTE_WIDTH, types.GP)
		fallout = p.labels.NewLabel()
		end     = p.labels.NewLabel()
	)
	//
	p.jumpIfNot(e, fallout, code)
	//
	*code = append(*code,
		ir.NewMove(types.BYTE_WIDTH, dest, ir.NewConstant(1, types.BYTE_WIDTH)),
		ir.NewJump(end),
		ir.NewLabel(fallout),
		ir.NewMove(types.BYTE_WIDTH, dest, ir.NewConstant(0, types.BYTE_WIDTH)),
		ir.NewLabel(end))
	//
	return dest
}

func (p *Translator) translateLogical(e ast.Expr, code *[]ir.Entry) ir.Operand {
	return p.translateBool(e, code)
}

func (p *Translator) translateTernary(e *ast.Ternary, code *[]ir.Entry) ir.Operand {
	var (
		result = e.Type()
		size   = types.SizeOf(result)
		dest   = p.tmps.AllocFor(result)
		els    = p.labels.NewLabel()
		end    = p.labels.NewLabel()
	)
	//
	p.jumpIfNot(e.Cond, els, code)
	//
	then := p.translateExpr(e.Then, code)
	then = p.translateConvert(then, e.Then.Type(), result, code)
	*code = append(*code, ir.NewMove(size, dest, then), ir.NewJump(end), ir.NewLabel(els))
	//
	alt := p.translateExpr(e.Else, code)
	alt = p.translateConvert(alt, e.Else.Type(), result, code)
	*code = append(*code, ir.NewMove(size, dest, alt), ir.NewLabel(end))
	//
	return dest
}

// ============================================================================
// Calls
// ============================================================================

func (p *Translator) translateCall(e *ast.FnCall, code *[]ir.Entry) ir.Operand {
	var (
		target   ir.Operand
		argTypes []types.Type
		ret      types.Type
	)
	// Direct calls go through the resolved overload; anything else is a
	// call through a function pointer value.
	if id, ok := e.Fn.(*ast.Id); ok {
		if fsym, ok := id.Symbol.(*FunSymbol); ok {
			overload := fsym.Overloads[id.Overload]
			target = ir.NewName(overload.Label)
			argTypes = overload.Args
			ret = overload.Ret
		}
	}
	//
	if target == nil {
		funptr := types.Strip(e.Fn.Type()).(*types.FunPtr)
		target = p.translateExpr(e.Fn, code)
		argTypes = funptr.Args
		ret = funptr.Ret
	}
	//
	args := make([]ir.Operand, len(e.Args))
	//
	for i, arg := range e.Args {
		args[i] = p.translateExpr(arg, code)
		args[i] = p.translateConvert(args[i], arg.Type(), argTypes[i], code)
	}
	//
	return p.frame.Call(code, target, args, argTypes, ret)
}

// ============================================================================
// Aggregates
// ============================================================================

func (p *Translator) translateAggregateInit(e *ast.AggregateInit, code *[]ir.Entry) ir.Operand {
	var (
		result = e.Type()
		dest   = p.tmps.AllocFor(result)
		offset = uint(0)
	)
	//
	for _, elem := range e.Elems {
		var (
			size  = types.SizeOf(elem.Type())
			align = types.AlignOf(elem.Type())
			value = p.translateExpr(elem, code)
		)
		//
		offset = alignUp(offset, align)
		//
		*code = append(*code, ir.NewEntry(ir.OFFSET_STORE, size, dest, value,
			ir.NewConstant(int64(offset), types.PTR_WIDTH)))
		//
		offset += size
	}
	//
	return dest
}

// ============================================================================
// Locations (lvalues)
// ============================================================================

// location is an lvalue as seen by the translator: something which can be
// loaded from and stored to.
type location interface {
	load(p *Translator, code *[]ir.Entry) ir.Operand
	store(p *Translator, code *[]ir.Entry, src ir.Operand)
}

// accessLocation is a variable behind a frame access.
type accessLocation struct {
	access frame.Access
}

func (l *accessLocation) load(p *Translator, code *[]ir.Entry) ir.Operand {
	return l.access.Load(code, p.tmps)
}

func (l *accessLocation) store(p *Translator, code *[]ir.Entry, src ir.Operand) {
	l.access.Store(code, src, p.tmps)
}

// memoryLocation is a value at a computed address.
type memoryLocation struct {
	addr  ir.Operand
	size  uint
	kind  types.OperandKind
	align uint
}

func (l *memoryLocation) load(p *Translator, code *[]ir.Entry) ir.Operand {
	dest := p.tmps.Alloc(l.size, l.align, l.kind)
	*code = append(*code, ir.NewEntry(ir.MEM_LOAD, l.size, dest, l.addr, nil))
	//
	return dest
}

func (l *memoryLocation) store(p *Translator, code *[]ir.Entry, src ir.Operand) {
	*code = append(*code, ir.NewEntry(ir.MEM_STORE, l.size, l.addr, src, nil))
}

// offsetLocation is a field of an aggregate temporary.
type offsetLocation struct {
	temp   *ir.Temp
	offset uint
	size   uint
	kind   types.OperandKind
}

func (l *offsetLocation) load(p *Translator, code *[]ir.Entry) ir.Operand {
	dest := p.tmps.Alloc(l.size, l.size, l.kind)
	*code = append(*code, ir.NewEntry(ir.OFFSET_LOAD, l.size, dest, l.temp,
		ir.NewConstant(int64(l.offset), types.PTR_WIDTH)))
	//
	return dest
}

func (l *offsetLocation) store(p *Translator, code *[]ir.Entry, src ir.Operand) {
	*code = append(*code, ir.NewEntry(ir.OFFSET_STORE, l.size, l.temp, src,
		ir.NewConstant(int64(l.offset), types.PTR_WIDTH)))
}

// resolveLocation maps an lvalue expression onto a location.
func (p *Translator) resolveLocation(e ast.Expr, code *[]ir.Entry) location {
	switch lhs := e.(type) {
	case *ast.Id:
		symbol := lhs.Symbol.(*VarSymbol)
		return &accessLocation{symbol.Access}
	case *ast.UnOp:
		if lhs.Op == ast.DEREF {
			addr := p.translateExpr(lhs.E, code)
			//
			return &memoryLocation{addr, types.SizeOf(e.Type()),
				types.KindOf(e.Type()), types.AlignOf(e.Type())}
		}
	case *ast.Index:
		addr := p.indexAddr(lhs, code)
		//
		return &memoryLocation{addr, types.SizeOf(e.Type()),
			types.KindOf(e.Type()), types.AlignOf(e.Type())}
	case *ast.StructAccess:
		return p.fieldLocation(lhs.E, lhs.Field, false, e.Type(), code)
	case *ast.StructPtrAccess:
		return p.fieldLocation(lhs.E, lhs.Field, true, e.Type(), code)
	}
	//
	panic("not an lvalue")
}

func (p *Translator) fieldLocation(base ast.Expr, field string, ptr bool,
	fieldType types.Type, code *[]ir.Entry) location {
	//
	var (
		baseType = types.Strip(base.Type())
		size     = types.SizeOf(fieldType)
		kind     = types.KindOf(fieldType)
		align    = types.AlignOf(fieldType)
	)
	//
	if ptr {
		baseType = types.Strip(baseType.(*types.Pointer).Base)
	}
	//
	var (
		entry  = baseType.(*types.Reference).Entry
		offset = entry.OffsetOf(field)
	)
	// Through a pointer the address is just the value plus the offset.
	if ptr {
		addr := p.offsetAddr(p.translateExpr(base, code), offset, code)
		return &memoryLocation{addr, size, kind, align}
	}
	// Direct access: address the base when possible, otherwise the value is
	// an aggregate temporary and field access goes through offset entries.
	if addr, ok := p.tryAddr(base, code); ok {
		return &memoryLocation{p.offsetAddr(addr, offset, code), size, kind, align}
	}
	//
	temp := p.translateExpr(base, code).(*ir.Temp)
	//
	return &offsetLocation{temp, offset, size, kind}
}

func (p *Translator) indexAddr(e *ast.Index, code *[]ir.Entry) ir.Operand {
	var (
		arrType = types.Strip(e.Arr.Type())
		base    ir.Operand
		elem    types.Type
	)
	//
	switch t := arrType.(type) {
	case *types.Array:
		// The array's own address.
		base = p.translateAddr(e.Arr, code)
		elem = t.Elem
	case *types.Pointer:
		base = p.translateExpr(e.Arr, code)
		elem = t.Base
	default:
		panic("cannot index type")
	}
	//
	var (
		index  = p.translateExpr(e.Idx, code)
		scaled = p.scaleIndex(index, e.Idx.Type(), elem, code)
		dest   = p.tmps.Alloc(types.PTR_WIDTH, types.PTR_WIDTH, types.GP)
	)
	//
	*code = append(*code, ir.NewEntry(ir.ADD, types.PTR_WIDTH, dest, base, scaled))
	//
	return dest
}

func (p *Translator) offsetAddr(base ir.Operand, offset uint, code *[]ir.Entry) ir.Operand {
	if offset == 0 {
		return base
	}
	//
	dest := p.tmps.Alloc(types.PTR_WIDTH, types.PTR_WIDTH, types.GP)
	*code = append(*code, ir.NewEntry(ir.ADD, types.PTR_WIDTH, dest, base,
		ir.NewConstant(int64(offset), types.PTR_WIDTH)))
	//
	return dest
}

// translateAddr computes the address of an lvalue.
func (p *Translator) translateAddr(e ast.Expr, code *[]ir.Entry) ir.Operand {
	if addr, ok := p.tryAddr(e, code); ok {
		return addr
	}
	//
	panic("expression is not addressable")
}

func (p *Translator) tryAddr(e ast.Expr, code *[]ir.Entry) (ir.Operand, bool) {
	switch lhs := e.(type) {
	case *ast.Id:
		if symbol, ok := lhs.Symbol.(*VarSymbol); ok {
			return symbol.Access.Addr(code, p.tmps)
		}
	case *ast.UnOp:
		if lhs.Op == ast.DEREF {
			return p.translateExpr(lhs.E, code), true
		}
	case *ast.Index:
		return p.indexAddr(lhs, code), true
	case *ast.StructAccess:
		if addr, ok := p.tryAddr(lhs.E, code); ok {
			entry := types.Strip(lhs.E.Type()).(*types.Reference).Entry
			return p.offsetAddr(addr, entry.OffsetOf(lhs.Field), code), true
		}
	case *ast.StructPtrAccess:
		var (
			base  = p.translateExpr(lhs.E, code)
			entry = types.Strip(types.Strip(lhs.E.Type()).(*types.Pointer).Base).(*types.Reference).Entry
		)
		//
		return p.offsetAddr(base, entry.OffsetOf(lhs.Field), code), true
	case *ast.Const:
		// String literals are addressable via their interned fragment.
		switch lhs.Kind {
		case ast.STRING_CONST:
			return ir.NewName(p.internString(lhs.Text)), true
		case ast.WSTRING_CONST:
			return ir.NewName(p.internWString(lhs.Runes)), true
		}
	}
	//
	return nil, false
}

// ============================================================================
// Conversions
// ============================================================================

// translateConvert emits whatever conversion entries are required to carry a
// value from one type into another, returning the converted operand.
func (p *Translator) translateConvert(value ir.Operand, from types.Type, to types.Type,
	code *[]ir.Entry) ir.Operand {
	//
	sfrom, sto := types.Strip(from), types.Strip(to)
	//
	if types.Equal(sfrom, sto) {
		return value
	}
	//
	var (
		fromFloat = types.IsFloat(sfrom)
		toFloat   = types.IsFloat(sto)
	)
	//
	switch {
	case !fromFloat && !toFloat:
		return p.convertInteger(value, sfrom, sto, code)
	case !fromFloat && toFloat:
		op := pick(types.IsSigned(sfrom),
			pick(types.SizeOf(sto) == types.INT_WIDTH, ir.S_TO_FLOAT, ir.S_TO_DOUBLE),
			pick(types.SizeOf(sto) == types.INT_WIDTH, ir.U_TO_FLOAT, ir.U_TO_DOUBLE))
		//
		return p.emitConvert(op, types.SizeOf(sto), sto, value, code)
	case fromFloat && !toFloat:
		var op ir.Op
		//
		switch types.SizeOf(sto) {
		case types.BYTE_WIDTH:
			op = ir.F_TO_BYTE
		case types.SHORT_WIDTH:
			op = ir.F_TO_SHORT
		case types.INT_WIDTH:
			op = ir.F_TO_INT
		default:
			op = ir.F_TO_LONG
		}
		//
		return p.emitConvert(op, types.SizeOf(sto), sto, value, code)
	default:
		op := pick(types.SizeOf(sto) == types.INT_WIDTH, ir.F_TO_FLOAT, ir.F_TO_DOUBLE)
		return p.emitConvert(op, types.SizeOf(sto), sto, value, code)
	}
}

func (p *Translator) convertInteger(value ir.Operand, from types.Type, to types.Type,
	code *[]ir.Entry) ir.Operand {
	// Pointers, arrays and function pointers move untouched.
	if !types.IsInteger(from) || !types.IsInteger(to) {
		return value
	}
	//
	var (
		wfrom = types.SizeOf(from)
		wto   = types.SizeOf(to)
	)
	// Conversion to bool produces an explicit 0/1.
	if types.IsBool(to) && !types.IsBool(from) {
		dest := p.tmps.Alloc(types.BYTE_WIDTH, types.BYTE_WIDTH, types.GP)
		*code = append(*code, ir.NewEntry(ir.NE, wfrom, dest, value, ir.NewConstant(0, wfrom)))
		//
		return dest
	}
	//
	switch {
	case wfrom == wto:
		return value
	case wfrom > wto:
		var op ir.Op
		//
		switch wto {
		case types.BYTE_WIDTH:
			op = ir.TRUNC_BYTE
		case types.SHORT_WIDTH:
			op = ir.TRUNC_SHORT
		default:
			op = ir.TRUNC_INT
		}
		//
		return p.emitConvert(op, wto, to, value, code)
	default:
		// Widening extends per the signedness of the source.
		var op ir.Op
		//
		signed := types.IsSigned(from)
		//
		switch wto {
		case types.SHORT_WIDTH:
			op = pick(signed, ir.SX_SHORT, ir.ZX_SHORT)
		case types.INT_WIDTH:
			op = pick(signed, ir.SX_INT, ir.ZX_INT)
		default:
			op = pick(signed, ir.SX_LONG, ir.ZX_LONG)
		}
		//
		return p.emitConvert(op, wto, to, value, code)
	}
}

func (p *Translator) emitConvert(op ir.Op, size uint, to types.Type, value ir.Operand,
	code *[]ir.Entry) ir.Operand {
	//
	dest := p.tmps.Alloc(size, size, types.KindOf(to))
	*code = append(*code, ir.NewEntry(op, size, dest, value, nil))
	//
	return dest
}

func alignUp(offset uint, align uint) uint {
	if align == 0 {
		return offset
	}
	//
	return ((offset + align - 1) / align) * align
}
