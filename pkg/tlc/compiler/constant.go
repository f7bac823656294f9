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
	"github.com/tlang-dev/tlc/pkg/util"
)

// EvalConstInt evaluates an expression as a compile-time integer constant,
// returning nothing if the expression is not one.  This is used for array
// lengths, enum item values, case labels and global initialisers.
func EvalConstInt(expr ast.Expr) util.Option[int64] {
	switch e := expr.(type) {
	case *ast.Const:
		switch e.Kind {
		case ast.INT_CONST, ast.BOOL_CONST, ast.CHAR_CONST, ast.WCHAR_CONST:
			return util.Some(e.Int)
		}
	case *ast.Id:
		// Enum constants fold to their value once resolved.
		if c, ok := e.Symbol.(*ConstSymbol); ok {
			return util.Some(c.Value)
		}
	case *ast.UnOp:
		return evalConstUnary(e)
	case *ast.BinOp:
		return evalConstBinary(e)
	case *ast.Cast:
		// Casting between integer types preserves constness; the value is
		// truncated to the target width during data layout.
		return EvalConstInt(e.E)
	case *ast.SizeofType, *ast.SizeofExp:
		// Folded by the checker, which knows the sizes; by this point the
		// result type is set and handled by the translator.
		return util.None[int64]()
	}
	//
	return util.None[int64]()
}

func evalConstUnary(e *ast.UnOp) util.Option[int64] {
	operand := EvalConstInt(e.E)
	//
	if operand.IsEmpty() {
		return operand
	}
	//
	value := operand.Unwrap()
	//
	switch e.Op {
	case ast.NEG:
		return util.Some(-value)
	case ast.POS:
		return util.Some(value)
	case ast.BNOT:
		return util.Some(^value)
	case ast.LNOT:
		return util.Some(boolBits(value == 0))
	}
	//
	return util.None[int64]()
}

func evalConstBinary(e *ast.BinOp) util.Option[int64] {
	var (
		left  = EvalConstInt(e.L)
		right = EvalConstInt(e.R)
	)
	//
	if left.IsEmpty() || right.IsEmpty() {
		return util.None[int64]()
	}
	//
	l, r := left.Unwrap(), right.Unwrap()
	//
	switch e.Op {
	case ast.ADD:
		return util.Some(l + r)
	case ast.SUB:
		return util.Some(l - r)
	case ast.MUL:
		return util.Some(l * r)
	case ast.DIV:
		if r == 0 {
			return util.None[int64]()
		}
		//
		return util.Some(l / r)
	case ast.REM:
		if r == 0 {
			return util.None[int64]()
		}
		//
		return util.Some(l % r)
	case ast.BAND:
		return util.Some(l & r)
	case ast.BOR:
		return util.Some(l | r)
	case ast.BXOR:
		return util.Some(l ^ r)
	case ast.SHL:
		return util.Some(l << uint64(r))
	case ast.SHR:
		return util.Some(int64(uint64(l) >> uint64(r)))
	case ast.SAR:
		return util.Some(l >> uint64(r))
	}
	//
	return util.None[int64]()
}

// EvalConstFloat evaluates an expression as a compile-time floating point
// constant.  Integer constants participate via implicit conversion.
func EvalConstFloat(expr ast.Expr) util.Option[float64] {
	switch e := expr.(type) {
	case *ast.Const:
		if e.Kind == ast.FLOAT_CONST {
			return util.Some(e.Float)
		}
	case *ast.UnOp:
		operand := EvalConstFloat(e.E)
		//
		if operand.HasValue() {
			switch e.Op {
			case ast.NEG:
				return util.Some(-operand.Unwrap())
			case ast.POS:
				return operand
			}
		}
		//
		return util.None[float64]()
	case *ast.Cast:
		return EvalConstFloat(e.E)
	}
	// Fall back on an integer constant.
	if value := EvalConstInt(expr); value.HasValue() {
		return util.Some(float64(value.Unwrap()))
	}
	//
	return util.None[float64]()
}

// IsZeroInit determines whether an initialiser is statically all zero, in
// which case its variable can live in BSS.
func IsZeroInit(expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.Const:
		switch e.Kind {
		case ast.INT_CONST, ast.BOOL_CONST, ast.CHAR_CONST, ast.WCHAR_CONST:
			return e.Int == 0
		case ast.FLOAT_CONST:
			return e.Float == 0
		case ast.NULL_CONST:
			return true
		}
		//
		return false
	case *ast.AggregateInit:
		for _, elem := range e.Elems {
			if !IsZeroInit(elem) {
				return false
			}
		}
		//
		return true
	case *ast.Cast:
		return IsZeroInit(e.E)
	}
	//
	if value := EvalConstInt(expr); value.HasValue() {
		return value.Unwrap() == 0
	}
	//
	return false
}

func boolBits(b bool) int64 {
	if b {
		return 1
	}
	//
	return 0
}
