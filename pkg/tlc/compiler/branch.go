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
	"github.com/tlang-dev/tlc/pkg/tlc/ast"
	"github.com/tlang-dev/tlc/pkg/tlc/ir"
	"github.com/tlang-dev/tlc/pkg/tlc/types"
)

// The branch translator lowers conditions directly into conditional jumps,
// so intermediate booleans are only materialised when a surrounding context
// actually demands a value.  Comparisons map straight onto the conditional
// jump operators, logical negation swaps the jump's polarity, and the
// short-circuit combinators chain jumps by construction.

// jumpIf appends entries which jump to a given target exactly when the
// condition holds.
func (p *Translator) jumpIf(cond ast.Expr, target string, code *[]ir.Entry) {
	switch e := cond.(type) {
	case *ast.Const:
		// A constant condition folds to either an unconditional jump or
		// nothing at all.
		if e.Int != 0 {
			*code = append(*code, ir.NewJump(target))
		}
		//
		return
	case *ast.UnOp:
		if e.Op == ast.LNOT {
			p.jumpIfNot(e.E, target, code)
			return
		}
	case *ast.LAnd:
		// a && b: a failing falls out; otherwise b decides.
		fallout := p.labels.NewLabel()
		//
		p.jumpIfNot(e.L, fallout, code)
		p.jumpIf(e.R, target, code)
		//
		*code = append(*code, ir.NewLabel(fallout))
		//
		return
	case *ast.LOr:
		// a || b: either operand suffices.
		p.jumpIf(e.L, target, code)
		p.jumpIf(e.R, target, code)
		//
		return
	case *ast.CompOp:
		if e.Op != ast.CMP {
			p.jumpCompare(e, target, false, code)
			return
		}
	}
	// Anything else materialises its value and jumps on non-zero.
	var (
		size  = types.SizeOf(cond.Type())
		value = p.translateExpr(cond, code)
	)
	//
	*code = append(*code, ir.NewCondJump(ir.JNE, size, target, value, ir.NewConstant(0, size)))
}

// jumpIfNot appends entries which jump to a given target exactly when the
// condition fails.
func (p *Translator) jumpIfNot(cond ast.Expr, target string, code *[]ir.Entry) {
	switch e := cond.(type) {
	case *ast.Const:
		if e.Int == 0 {
			*code = append(*code, ir.NewJump(target))
		}
		//
		return
	case *ast.UnOp:
		if e.Op == ast.LNOT {
			p.jumpIf(e.E, target, code)
			return
		}
	case *ast.LAnd:
		// !(a && b): either operand failing suffices.
		p.jumpIfNot(e.L, target, code)
		p.jumpIfNot(e.R, target, code)
		//
		return
	case *ast.LOr:
		// !(a || b): a holding falls out; otherwise b decides.
		fallout := p.labels.NewLabel()
		//
		p.jumpIf(e.L, fallout, code)
		p.jumpIfNot(e.R, target, code)
		//
		*code = append(*code, ir.NewLabel(fallout))
		//
		return
	case *ast.CompOp:
		if e.Op != ast.CMP {
			p.jumpCompare(e, target, true, code)
			return
		}
	}
	//
	var (
		size  = types.SizeOf(cond.Type())
		value = p.translateExpr(cond, code)
	)
	//
	*code = append(*code, ir.NewCondJump(ir.JE, size, target, value, ir.NewConstant(0, size)))
}

// jumpCompare lowers a primitive comparison into a single conditional jump,
// negating the condition when required.
func (p *Translator) jumpCompare(e *ast.CompOp, target string, negate bool, code *[]ir.Entry) {
	var (
		common = promoteOperands(e.L.Type(), e.R.Type())
		size   = types.SizeOf(common)
		left   = p.translateExpr(e.L, code)
		right  = p.translateExpr(e.R, code)
	)
	//
	left = p.translateConvert(left, e.L.Type(), common, code)
	right = p.translateConvert(right, e.R.Type(), common, code)
	//
	op := condJumpOp(e.Op, common)
	//
	if negate {
		op = op.Negate()
	}
	//
	*code = append(*code, ir.NewCondJump(op, size, target, left, right))
}

// condJumpOp selects the conditional jump implementing a comparison on a
// given operand type, picking the signed, unsigned or floating variant.
func condJumpOp(op ast.CmpKind, t types.Type) ir.Op {
	var (
		float    = types.IsFloat(t)
		unsigned = !types.IsSigned(t) && !float
	)
	//
	switch op {
	case ast.EQ:
		return pick(float, ir.FP_JE, ir.JE)
	case ast.NEQ:
		return pick(float, ir.FP_JNE, ir.JNE)
	case ast.LT:
		if float {
			return ir.FP_JL
		}
		//
		return pick(unsigned, ir.JB, ir.JL)
	case ast.LTEQ:
		if float {
			return ir.FP_JLE
		}
		//
		return pick(unsigned, ir.JBE, ir.JLE)
	case ast.GT:
		if float {
			return ir.FP_JG
		}
		//
		return pick(unsigned, ir.JA, ir.JG)
	case ast.GTEQ:
		if float {
			return ir.FP_JGE
		}
		//
		return pick(unsigned, ir.JAE, ir.JGE)
	}
	//
	panic("unknown comparison operator")
}
