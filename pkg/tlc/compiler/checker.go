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

	"github.com/tlang-dev/tlc/pkg/tlc/ast"
	"github.com/tlang-dev/tlc/pkg/tlc/types"
	"github.com/tlang-dev/tlc/pkg/util/source"
)

// Checker performs name resolution and type checking across all units of a
// program.  It runs in two passes: a declaration pass which completes the
// named-type entries and binds every module-level symbol, followed by a body
// pass which checks initialisers and function bodies, annotating every
// expression with its result type.  Errors accumulate; checking continues on
// a best-effort basis so one run reports as many independent errors as
// possible.
type Checker struct {
	program *Program
	errs    []source.SyntaxError
	// Unit currently being checked.
	unit *Unit
	// Return type of the function currently being checked.
	retType types.Type
	// Number of enclosing loops.
	loopDepth int
	// Number of enclosing switches.
	switchDepth int
}

// NewChecker constructs a checker for a given program.
func NewChecker(program *Program) *Checker {
	return &Checker{program: program}
}

// Check runs both passes over every unit, returning all errors arising.
func (p *Checker) Check() []source.SyntaxError {
	// Declaration pass
	for _, unit := range p.program.Units() {
		if unit.Ast != nil {
			p.unit = unit
			p.declareUnit(unit.Ast)
		}
	}
	// Body pass
	for _, unit := range p.program.Units() {
		if unit.Ast != nil {
			p.unit = unit
			p.checkUnit(unit.Ast)
		}
	}
	//
	return p.errs
}

// ============================================================================
// Declaration pass
// ============================================================================

func (p *Checker) declareUnit(file *ast.File) {
	for _, decl := range file.Decls {
		p.declare(decl)
	}
}

func (p *Checker) declare(decl ast.Decl) {
	switch d := decl.(type) {
	case *ast.StructDecl:
		p.declareFields(d.Name, d.Fields, d.Span())
	case *ast.UnionDecl:
		p.declareFields(d.Name, d.Fields, d.Span())
	case *ast.EnumDecl:
		p.declareEnum(d)
	case *ast.TypedefDecl:
		p.declareTypedef(d)
	case *ast.OpaqueDecl:
		// The parser already created the (incomplete) entry.
	case *ast.VarDecl:
		p.declareVar(d)
	case *ast.FunDecl:
		p.declareFun(d)
	}
}

// entryOf fetches the named-type entry which the parser registered.
func (p *Checker) entryOf(name string) *types.Named {
	symbol, ok := p.unit.Env.Module().Lookup(name)
	//
	if !ok {
		return nil
	}
	//
	tsym, ok := symbol.(*TypeSymbol)
	//
	if !ok {
		return nil
	}
	//
	return tsym.Entry
}

func (p *Checker) declareFields(name string, fields []*ast.FieldDecl, span source.Span) {
	entry := p.entryOf(name)
	//
	if entry == nil {
		return
	}
	//
	if !entry.Incomplete {
		p.syntaxError(span, fmt.Sprintf("'%s' already defined", name))
		return
	}
	//
	for _, field := range fields {
		typ := p.resolveType(field.Type)
		//
		if typ == nil {
			continue
		}
		//
		if _, ok := entry.FieldOf(field.Name); ok {
			p.syntaxError(field.Span(), fmt.Sprintf("duplicate field '%s'", field.Name))
			continue
		}
		// Fields must have known size.
		if types.IsIncomplete(typ) || types.IsVoid(typ) {
			p.syntaxError(field.Span(), fmt.Sprintf("field '%s' has incomplete type", field.Name))
			continue
		}
		//
		entry.Fields = append(entry.Fields, types.Field{Name: field.Name, Type: typ})
	}
	//
	entry.Incomplete = false
}

func (p *Checker) declareEnum(d *ast.EnumDecl) {
	entry := p.entryOf(d.Name)
	//
	if entry == nil {
		return
	}
	//
	entry.Underlying = types.NewPrimitive(types.SINT)
	entry.Incomplete = false
	//
	next := int64(0)
	//
	for _, item := range d.Items {
		if item.Value != nil {
			p.checkExpr(item.Value)
			//
			value := EvalConstInt(item.Value)
			//
			if value.IsEmpty() {
				p.syntaxError(item.Span(),
					fmt.Sprintf("enum value for '%s' is not a compile-time constant", item.Name))
			} else {
				next = value.Unwrap()
			}
		}
		//
		constant := types.EnumConstant{Name: item.Name, Value: next}
		entry.Constants = append(entry.Constants, constant)
		// Enum constants are also reachable unscoped within the module.
		symbol := &ConstSymbol{item.Name, types.NewReference(entry), next}
		//
		if !p.unit.Env.Module().Declare(item.Name, symbol) {
			p.syntaxError(item.Span(), fmt.Sprintf("'%s' already declared", item.Name))
		}
		//
		next++
	}
}

func (p *Checker) declareTypedef(d *ast.TypedefDecl) {
	entry := p.entryOf(d.Name)
	//
	if entry == nil {
		return
	}
	//
	if typ := p.resolveType(d.Type); typ != nil {
		entry.Underlying = typ
		entry.Incomplete = false
	}
}

func (p *Checker) declareVar(d *ast.VarDecl) {
	typ := p.resolveType(d.Type)
	//
	if typ == nil {
		return
	}
	//
	if types.IsVoid(typ) {
		p.syntaxError(d.Span(), fmt.Sprintf("variable '%s' has void type", d.Name))
		return
	}
	//
	if types.IsIncomplete(typ) {
		p.syntaxError(d.Span(), fmt.Sprintf("variable '%s' has incomplete type", d.Name))
		return
	}
	//
	symbol := &VarSymbol{
		Name:   d.Name,
		Module: p.unit.Module,
		Type:   typ,
		Global: true,
	}
	//
	if !p.unit.Env.Module().Declare(d.Name, symbol) {
		p.syntaxError(d.Span(), fmt.Sprintf("'%s' already declared", d.Name))
		return
	}
	//
	d.Symbol = symbol
}

func (p *Checker) declareFun(d *ast.FunDecl) {
	var (
		table = p.unit.Env.Module()
		ret   = p.resolveType(d.Ret)
		args  = make([]types.Type, len(d.Params))
	)
	//
	if ret == nil {
		return
	}
	//
	for i, param := range d.Params {
		if args[i] = p.resolveType(param.Type); args[i] == nil {
			return
		}
	}
	// Find or create the overload set.
	var fsym *FunSymbol
	//
	if symbol, ok := table.Lookup(d.Name); ok {
		if fsym, ok = symbol.(*FunSymbol); !ok {
			p.syntaxError(d.Span(), fmt.Sprintf("'%s' already declared", d.Name))
			return
		}
	} else {
		fsym = &FunSymbol{Name: d.Name, Module: p.unit.Module}
		table.Declare(d.Name, fsym)
	}
	//
	d.Symbol = fsym
	//
	if overload := fsym.FindOverload(args); overload != nil {
		// Redeclaration is fine; redefinition is not.
		if d.Body != nil {
			if overload.Defined {
				p.syntaxError(d.Span(), fmt.Sprintf("'%s' already defined", d.Name))
				return
			}
			//
			overload.Defined = true
		}
		// All declarations of one overload must agree on the return type.
		if !types.Equal(overload.Ret, ret) {
			p.syntaxError(d.Span(),
				fmt.Sprintf("conflicting return type for '%s': have %s, expected %s", d.Name, ret, overload.Ret))
		}
		//
		for i, o := range fsym.Overloads {
			if o == overload {
				d.Overload = i
			}
		}
		//
		return
	}
	//
	d.Overload = len(fsym.Overloads)
	//
	fsym.Overloads = append(fsym.Overloads, &Overload{
		Args:    args,
		Ret:     ret,
		Defined: d.Body != nil,
	})
}

// ============================================================================
// Body pass
// ============================================================================

func (p *Checker) checkUnit(file *ast.File) {
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.VarDecl:
			p.checkGlobalInit(d)
		case *ast.FunDecl:
			if d.Body != nil {
				p.checkFunction(d)
			}
		}
	}
}

func (p *Checker) checkGlobalInit(d *ast.VarDecl) {
	symbol, ok := d.Symbol.(*VarSymbol)
	//
	if !ok || d.Init == nil {
		return
	}
	//
	typ := p.checkExpr(d.Init)
	//
	if typ == nil {
		return
	}
	//
	if !types.Convertible(typ, symbol.Type) {
		p.typeMismatch(d.Init.Span(), typ, symbol.Type)
		return
	}
	//
	if !p.isConstInit(d.Init) {
		p.syntaxError(d.Init.Span(),
			fmt.Sprintf("initialiser of '%s' is not a compile-time constant", d.Name))
	}
}

// isConstInit determines whether an initialiser can be laid out statically.
func (p *Checker) isConstInit(e ast.Expr) bool {
	switch init := e.(type) {
	case *ast.Const:
		return true
	case *ast.AggregateInit:
		for _, elem := range init.Elems {
			if !p.isConstInit(elem) {
				return false
			}
		}
		//
		return true
	case *ast.Cast:
		return p.isConstInit(init.E)
	}
	//
	return EvalConstInt(e).HasValue() || EvalConstFloat(e).HasValue()
}

func (p *Checker) checkFunction(d *ast.FunDecl) {
	var (
		env  = p.unit.Env
		args = make([]types.Type, len(d.Params))
	)
	//
	for i, param := range d.Params {
		args[i] = p.resolveType(param.Type)
		//
		if args[i] == nil {
			return
		}
	}
	//
	p.retType = p.resolveType(d.Ret)
	//
	if p.retType == nil {
		return
	}
	//
	env.EnterScope()
	defer env.ExitScope()
	//
	for i, param := range d.Params {
		if param.Name == "" {
			p.syntaxError(param.Span(), "parameter requires a name")
			continue
		}
		//
		symbol := &VarSymbol{Name: param.Name, Module: p.unit.Module, Type: args[i]}
		//
		if !env.DeclareLocal(param.Name, symbol) {
			p.syntaxError(param.Span(), fmt.Sprintf("'%s' already declared", param.Name))
		}
		//
		param.Symbol = symbol
	}
	//
	for _, stmt := range d.Body.Stmts {
		p.checkStmt(stmt)
	}
	//
	if !types.IsVoid(p.retType) && !returns(d.Body) {
		p.syntaxError(d.Span(), fmt.Sprintf("function '%s' reaches end without return", d.Name))
	}
}

// ============================================================================
// Statements
// ============================================================================

func (p *Checker) checkStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.Block:
		p.unit.Env.EnterScope()
		//
		for _, inner := range s.Stmts {
			p.checkStmt(inner)
		}
		//
		p.unit.Env.ExitScope()
	case *ast.VarDefnStmt:
		for _, decl := range s.Decls {
			p.checkVarDefn(decl)
		}
	case *ast.DeclStmt:
		p.declare(s.Decl)
	case *ast.If:
		p.checkCondition(s.Cond)
		p.checkStmt(s.Then)
		//
		if s.Else != nil {
			p.checkStmt(s.Else)
		}
	case *ast.While:
		p.checkCondition(s.Cond)
		//
		p.loopDepth++
		p.checkStmt(s.Body)
		p.loopDepth--
	case *ast.DoWhile:
		p.loopDepth++
		p.checkStmt(s.Body)
		p.loopDepth--
		//
		p.checkCondition(s.Cond)
	case *ast.For:
		p.unit.Env.EnterScope()
		//
		if s.Init != nil {
			p.checkStmt(s.Init)
		}
		//
		if s.Cond != nil {
			p.checkCondition(s.Cond)
		}
		//
		if s.Upd != nil {
			p.checkExpr(s.Upd)
		}
		//
		p.loopDepth++
		p.checkStmt(s.Body)
		p.loopDepth--
		//
		p.unit.Env.ExitScope()
	case *ast.Switch:
		p.checkSwitch(s)
	case *ast.Break:
		if p.loopDepth == 0 && p.switchDepth == 0 {
			p.syntaxError(s.Span(), "break outside loop or switch")
		}
	case *ast.Continue:
		if p.loopDepth == 0 {
			p.syntaxError(s.Span(), "continue outside loop")
		}
	case *ast.Return:
		p.checkReturn(s)
	case *ast.ExprStmt:
		p.checkExpr(s.E)
	case *ast.Asm, *ast.NullStmt:
		// Nothing to check.
	}
}

func (p *Checker) checkVarDefn(d *ast.VarDecl) {
	typ := p.resolveType(d.Type)
	//
	if typ == nil {
		return
	}
	//
	if types.IsVoid(typ) || types.IsIncomplete(typ) {
		p.syntaxError(d.Span(), fmt.Sprintf("variable '%s' has incomplete type", d.Name))
		return
	}
	//
	if d.Init != nil {
		if init := p.checkExpr(d.Init); init != nil && !types.Convertible(init, typ) {
			p.typeMismatch(d.Init.Span(), init, typ)
		}
	}
	//
	symbol := &VarSymbol{Name: d.Name, Module: p.unit.Module, Type: typ}
	//
	if !p.unit.Env.DeclareLocal(d.Name, symbol) {
		p.syntaxError(d.Span(), fmt.Sprintf("'%s' already declared", d.Name))
		return
	}
	//
	d.Symbol = symbol
}

func (p *Checker) checkCondition(cond ast.Expr) {
	typ := p.checkExpr(cond)
	//
	if typ != nil && !types.Convertible(typ, types.NewPrimitive(types.BOOL)) {
		p.typeMismatch(cond.Span(), typ, types.NewPrimitive(types.BOOL))
	}
}

func (p *Checker) checkSwitch(s *ast.Switch) {
	if typ := p.checkExpr(s.Value); typ != nil && !types.IsInteger(typ) {
		p.syntaxError(s.Value.Span(), fmt.Sprintf("switch requires an integral value, found %s", typ))
	}
	//
	var (
		seen       = make(map[int64]bool)
		hasDefault = false
	)
	//
	p.switchDepth++
	//
	for _, clause := range s.Clauses {
		if clause.Default {
			if hasDefault {
				p.syntaxError(clause.Span(), "duplicate default clause")
			}
			//
			hasDefault = true
		} else {
			p.checkExpr(clause.Value)
			//
			value := EvalConstInt(clause.Value)
			//
			if value.IsEmpty() {
				p.syntaxError(clause.Value.Span(), "case value is not a compile-time integer constant")
			} else if seen[value.Unwrap()] {
				p.syntaxError(clause.Value.Span(), fmt.Sprintf("duplicate case value %d", value.Unwrap()))
			} else {
				seen[value.Unwrap()] = true
			}
		}
		//
		p.unit.Env.EnterScope()
		//
		for _, stmt := range clause.Body {
			p.checkStmt(stmt)
		}
		//
		p.unit.Env.ExitScope()
	}
	//
	p.switchDepth--
}

func (p *Checker) checkReturn(s *ast.Return) {
	if types.IsVoid(p.retType) {
		if s.Value != nil {
			p.syntaxError(s.Span(), "void function returns a value")
		}
		//
		return
	}
	//
	if s.Value == nil {
		p.syntaxError(s.Span(), "non-void function returns no value")
		return
	}
	//
	if typ := p.checkExpr(s.Value); typ != nil && !types.Convertible(typ, p.retType) {
		p.typeMismatch(s.Value.Span(), typ, p.retType)
	}
}

// returns determines whether a statement definitely returns (or otherwise
// leaves the function) on every path.
func returns(stmt ast.Stmt) bool {
	switch s := stmt.(type) {
	case *ast.Return:
		return true
	case *ast.Block:
		for _, inner := range s.Stmts {
			if returns(inner) {
				return true
			}
		}
		//
		return false
	case *ast.If:
		return s.Else != nil && returns(s.Then) && returns(s.Else)
	case *ast.Switch:
		hasDefault := false
		//
		for _, clause := range s.Clauses {
			hasDefault = hasDefault || clause.Default
			//
			returned := false
			//
			for _, inner := range clause.Body {
				if returns(inner) {
					returned = true
					break
				}
			}
			//
			if !returned {
				return false
			}
		}
		//
		return hasDefault
	case *ast.DoWhile:
		return returns(s.Body)
	}
	//
	return false
}

// ============================================================================
// Types
// ============================================================================

// resolveType maps a syntactic type expression onto its canonical type,
// reporting (and returning nil on) any errors.
func (p *Checker) resolveType(te ast.TypeExpr) types.Type {
	switch t := te.(type) {
	case *ast.KeywordType:
		return types.NewPrimitive(t.Kind)
	case *ast.ConstType:
		if base := p.resolveType(t.Base); base != nil {
			return types.NewConst(base)
		}
	case *ast.VolatileType:
		if base := p.resolveType(t.Base); base != nil {
			return types.NewVolatile(base)
		}
	case *ast.PointerType:
		if base := p.resolveType(t.Base); base != nil {
			return types.NewPointer(base)
		}
	case *ast.ArrayType:
		return p.resolveArrayType(t)
	case *ast.FnPtrType:
		var (
			ret  = p.resolveType(t.Ret)
			args = make([]types.Type, len(t.Args))
		)
		//
		if ret == nil {
			return nil
		}
		//
		for i, arg := range t.Args {
			if args[i] = p.resolveType(arg); args[i] == nil {
				return nil
			}
		}
		//
		return types.NewFunPtr(ret, args...)
	case *ast.NamedType:
		return p.resolveNamedType(t)
	}
	//
	return nil
}

func (p *Checker) resolveArrayType(t *ast.ArrayType) types.Type {
	elem := p.resolveType(t.Base)
	//
	if elem == nil {
		return nil
	}
	//
	p.checkExpr(t.Length)
	//
	length := EvalConstInt(t.Length)
	//
	if length.IsEmpty() || length.Unwrap() <= 0 {
		p.syntaxError(t.Length.Span(), "array size is not a positive compile-time constant")
		return nil
	}
	//
	if types.IsIncomplete(elem) || types.IsVoid(elem) {
		p.syntaxError(t.Span(), "array of incomplete type")
		return nil
	}
	//
	return types.NewArray(uint(length.Unwrap()), elem)
}

func (p *Checker) resolveNamedType(t *ast.NamedType) types.Type {
	var (
		symbol Symbol
		errs   []source.SyntaxError
	)
	//
	if len(t.Qualifiers) == 0 {
		symbol, errs = p.unit.Env.Lookup(t.Name, t.Span(), p.unit.File)
	} else {
		symbol, errs = p.unit.Env.LookupScoped(t.Qualifiers, t.Name, t.Span(), p.unit.File)
	}
	//
	if len(errs) > 0 {
		p.errors(errs)
		return nil
	}
	//
	tsym, ok := symbol.(*TypeSymbol)
	//
	if !ok {
		p.syntaxError(t.Span(), fmt.Sprintf("'%s' is not a type", t.Name))
		return nil
	}
	//
	return types.NewReference(tsym.Entry)
}

// ============================================================================
// Error helpers
// ============================================================================

func (p *Checker) syntaxError(span source.Span, msg string) {
	p.errs = append(p.errs, *p.unit.File.SyntaxError(span, msg))
	p.unit.Errored = true
}

func (p *Checker) errors(errs []source.SyntaxError) {
	p.errs = append(p.errs, errs...)
	p.unit.Errored = true
}

func (p *Checker) typeMismatch(span source.Span, found types.Type, expected types.Type) {
	p.syntaxError(span, fmt.Sprintf("incompatible types: found %s, expected %s", found, expected))
}
