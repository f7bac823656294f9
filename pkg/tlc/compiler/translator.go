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
	"strings"

	"github.com/tlang-dev/tlc/pkg/tlc/ast"
	"github.com/tlang-dev/tlc/pkg/tlc/frame"
	"github.com/tlang-dev/tlc/pkg/tlc/ir"
	"github.com/tlang-dev/tlc/pkg/tlc/types"
)

// Translator lowers the typed syntax tree of one code unit into a bag of
// linkable fragments.  It is parameterised over a frame constructor (which
// owns everything target specific) and a label generator.
type Translator struct {
	program   *Program
	frameCtor frame.Ctor
	labels    *ir.LabelGenerator
	// Fragments produced so far for the current unit.
	fragments []ir.Fragment
	// Temporary allocator of the function currently being translated.
	tmps *ir.TempAllocator
	// Frame of the function currently being translated.
	frame frame.Frame
	// Exit label of the current function; every return jumps here.
	exitLabel string
	// Return slot of the current function, or nil for void.
	retval frame.Access
	// Return type of the current function.
	retType types.Type
	// Break and continue targets of the enclosing loops/switches.
	breakLabels    []string
	continueLabels []string
}

// NewTranslator constructs a translator over a given program.
func NewTranslator(program *Program, ctor frame.Ctor, labels *ir.LabelGenerator) *Translator {
	return &Translator{program: program, frameCtor: ctor, labels: labels}
}

// AllocateAccesses assigns a storage access to every module-level variable
// and a link label to every function overload, across all units:
// declaration modules first, then code modules, in declaration order within
// each.  Translation never reads a symbol whose access is unassigned.
func AllocateAccesses(program *Program) {
	visited := make(map[string]bool)
	//
	for _, unit := range program.Units() {
		if unit.Module == "" || visited[unit.Module] {
			continue
		}
		//
		visited[unit.Module] = true
		//
		var (
			table = program.TableOf(unit.Module)
			path  = strings.Split(unit.Module, "::")
		)
		//
		table.Symbols(func(name string, symbol Symbol) {
			switch s := symbol.(type) {
			case *VarSymbol:
				s.Access = frame.NewGlobalAccess(MangleVar(path, name), s.Type)
			case *FunSymbol:
				for _, overload := range s.Overloads {
					overload.Label = MangleFun(path, name, overload.Args)
				}
			}
		})
	}
}

// TranslateUnit lowers one code unit into its fragments.
func (p *Translator) TranslateUnit(unit *Unit) []ir.Fragment {
	p.fragments = nil
	//
	if unit.Ast == nil {
		return nil
	}
	//
	for _, decl := range unit.Ast.Decls {
		switch d := decl.(type) {
		case *ast.VarDecl:
			p.translateGlobal(d)
		case *ast.FunDecl:
			if d.Body != nil {
				p.translateFunction(d)
			}
		}
	}
	//
	return p.fragments
}

// ============================================================================
// Globals
// ============================================================================

func (p *Translator) translateGlobal(d *ast.VarDecl) {
	symbol, ok := d.Symbol.(*VarSymbol)
	//
	if !ok || symbol.Access == nil {
		// A declaration which failed to check.
		return
	}
	//
	var (
		label = symbol.Access.Label()
		size  = types.SizeOf(symbol.Type)
		align = types.AlignOf(symbol.Type)
	)
	// Uninitialised (or all-zero) variables land in BSS.
	if d.Init == nil || IsZeroInit(d.Init) {
		p.fragments = append(p.fragments, &ir.Bss{Name: label, Size: size, Align: align})
		return
	}
	//
	var code []ir.Entry
	//
	p.constantToData(d.Init, symbol.Type, &code)
	// Const-qualified globals are read-only.
	if types.IsConst(symbol.Type) {
		p.fragments = append(p.fragments, &ir.RoData{Name: label, Align: align, Code: code})
	} else {
		p.fragments = append(p.fragments, &ir.Data{Name: label, Align: align, Code: code})
	}
}

// constantToData lays out a constant initialiser as a sequence of CONST
// entries, one per primitive leaf, with padding as required by the target
// type's layout.
func (p *Translator) constantToData(e ast.Expr, t types.Type, code *[]ir.Entry) {
	switch tt := types.Strip(t).(type) {
	case *types.Primitive:
		p.primitiveToData(e, tt, code)
	case *types.Pointer, *types.FunPtr:
		p.pointerToData(e, code)
	case *types.Array:
		p.arrayToData(e, tt, code)
	case *types.Reference:
		p.structToData(e, tt.Entry, code)
	default:
		panic("unexpected constant type")
	}
}

func (p *Translator) primitiveToData(e ast.Expr, t *types.Primitive, code *[]ir.Entry) {
	size := types.SizeOf(t)
	//
	if types.IsFloat(t) {
		value := EvalConstFloat(e).Unwrap()
		//
		var bits int64
		//
		if t.Kind == types.FLOAT {
			bits = int64(math.Float32bits(float32(value)))
		} else {
			bits = int64(math.Float64bits(value))
		}
		//
		*code = append(*code, ir.NewConst(size, ir.NewConstant(bits, size)))
		//
		return
	}
	//
	value := EvalConstInt(e).Unwrap()
	*code = append(*code, ir.NewConst(size, ir.NewConstant(value, size)))
}

func (p *Translator) pointerToData(e ast.Expr, code *[]ir.Entry) {
	width := types.PTR_WIDTH
	//
	switch init := e.(type) {
	case *ast.Const:
		switch init.Kind {
		case ast.NULL_CONST:
			*code = append(*code, ir.NewConst(width, ir.NewConstant(0, width)))
			return
		case ast.STRING_CONST:
			// A string leaf behind a pointer interns its own fragment.
			label := p.internString(init.Text)
			*code = append(*code, ir.NewConst(width, ir.NewName(label)))
			//
			return
		case ast.WSTRING_CONST:
			label := p.internWString(init.Runes)
			*code = append(*code, ir.NewConst(width, ir.NewName(label)))
			//
			return
		}
	case *ast.Id:
		// A function reference lays out as its label.
		if fsym, ok := init.Symbol.(*FunSymbol); ok {
			label := fsym.Overloads[init.Overload].Label
			*code = append(*code, ir.NewConst(width, ir.NewName(label)))
			//
			return
		}
	case *ast.Cast:
		p.pointerToData(init.E, code)
		return
	}
	//
	panic("unexpected pointer initialiser")
}

func (p *Translator) arrayToData(e ast.Expr, t *types.Array, code *[]ir.Entry) {
	var (
		elemSize = types.SizeOf(t.Elem)
		laid     = uint(0)
	)
	//
	switch init := e.(type) {
	case *ast.Const:
		switch init.Kind {
		case ast.STRING_CONST:
			// Inline bytes, including the terminator.
			bytes := append([]byte(init.Text), 0)
			*code = append(*code, ir.NewConst(1, &ir.String{Bytes: bytes}))
			laid = uint(len(bytes))
			//
		case ast.WSTRING_CONST:
			codepoints := append(init.Runes, 0)
			*code = append(*code, ir.NewConst(types.INT_WIDTH, &ir.WString{Codepoints: codepoints}))
			laid = uint(len(codepoints))
		default:
			panic("unexpected array initialiser")
		}
	case *ast.AggregateInit:
		for _, elem := range init.Elems {
			p.constantToData(elem, t.Elem, code)
		}
		//
		laid = uint(len(init.Elems))
	default:
		panic("unexpected array initialiser")
	}
	// Zero-fill the remainder.
	for ; laid < t.Length; laid++ {
		*code = append(*code, ir.NewConst(elemSize, ir.NewConstant(0, elemSize)))
	}
}

func (p *Translator) structToData(e ast.Expr, entry *types.Named, code *[]ir.Entry) {
	init, ok := e.(*ast.AggregateInit)
	//
	if !ok {
		panic("unexpected aggregate initialiser")
	}
	//
	offset := uint(0)
	//
	for i, field := range entry.Fields {
		// Pad to the field's alignment.
		for offset%types.AlignOf(field.Type) != 0 {
			*code = append(*code, ir.NewConst(1, ir.NewConstant(0, 1)))
			offset++
		}
		//
		if i < len(init.Elems) {
			p.constantToData(init.Elems[i], field.Type, code)
		} else {
			p.zeroFill(types.SizeOf(field.Type), code)
		}
		//
		offset += types.SizeOf(field.Type)
		// A union lays out its first field only.
		if entry.Kind == types.UNION {
			break
		}
	}
	// Trailing padding up to the aggregate's full size.
	p.zeroFill(types.SizeOf(types.NewReference(entry))-offset, code)
}

func (p *Translator) zeroFill(count uint, code *[]ir.Entry) {
	for i := uint(0); i < count; i++ {
		*code = append(*code, ir.NewConst(1, ir.NewConstant(0, 1)))
	}
}

// internString allocates a private read-only fragment holding a
// NUL-terminated string, returning its label.
func (p *Translator) internString(text string) string {
	var (
		label = p.labels.NewDataLabel()
		bytes = append([]byte(text), 0)
		code  = []ir.Entry{ir.NewConst(1, &ir.String{Bytes: bytes})}
	)
	//
	p.fragments = append(p.fragments, &ir.RoData{Name: label, Align: 1, Code: code})
	//
	return label
}

// internWString is the wide-string counterpart of internString.
func (p *Translator) internWString(runes []rune) string {
	var (
		label      = p.labels.NewDataLabel()
		codepoints = append(append([]rune{}, runes...), 0)
		code       = []ir.Entry{ir.NewConst(types.INT_WIDTH, &ir.WString{Codepoints: codepoints})}
	)
	//
	p.fragments = append(p.fragments, &ir.RoData{Name: label, Align: types.INT_WIDTH, Code: code})
	//
	return label
}

// ============================================================================
// Functions
// ============================================================================

func (p *Translator) translateFunction(d *ast.FunDecl) {
	fsym, ok := d.Symbol.(*FunSymbol)
	//
	if !ok || d.Overload < 0 {
		// A definition which failed to check.
		return
	}
	//
	overload := fsym.Overloads[d.Overload]
	//
	p.tmps = ir.NewTempAllocator()
	p.frame = p.frameCtor(overload.Label, p.tmps)
	p.exitLabel = p.labels.NewLabel()
	p.retType = overload.Ret
	// Formals are allocated in declaration order.
	for _, param := range d.Params {
		symbol, ok := param.Symbol.(*VarSymbol)
		//
		if !ok {
			return
		}
		//
		symbol.Access = p.frame.AllocArg(symbol.Type, symbol.Escapes)
	}
	//
	p.retval = p.frame.AllocRetVal(overload.Ret)
	//
	var body []ir.Entry
	//
	for _, stmt := range d.Body.Stmts {
		p.translateStmt(stmt, &body)
	}
	// The single exit label, targeted by every return.
	body = append(body, ir.NewLabel(p.exitLabel))
	body = p.frame.EntryExit(body)
	//
	p.fragments = append(p.fragments, &ir.Text{
		Name:  overload.Label,
		Frame: p.frame,
		Code:  body,
	})
}

// ============================================================================
// Statements
// ============================================================================

func (p *Translator) translateStmt(stmt ast.Stmt, code *[]ir.Entry) {
	switch s := stmt.(type) {
	case *ast.Block:
		p.translateBlock(s, code)
	case *ast.VarDefnStmt:
		for _, decl := range s.Decls {
			p.translateVarDefn(decl, code)
		}
	case *ast.If:
		p.translateIf(s, code)
	case *ast.While:
		p.translateWhile(s, code)
	case *ast.DoWhile:
		p.translateDoWhile(s, code)
	case *ast.For:
		p.translateFor(s, code)
	case *ast.Switch:
		p.translateSwitch(s, code)
	case *ast.Break:
		target := p.breakLabels[len(p.breakLabels)-1]
		*code = append(*code, ir.NewJump(target))
	case *ast.Continue:
		target := p.continueLabels[len(p.continueLabels)-1]
		*code = append(*code, ir.NewJump(target))
	case *ast.Return:
		p.translateReturn(s, code)
	case *ast.Asm:
		*code = append(*code, ir.NewAsm(s.Text))
	case *ast.ExprStmt:
		p.translateExpr(s.E, code)
	case *ast.NullStmt, *ast.DeclStmt:
		// No code.
	}
}

func (p *Translator) translateBlock(s *ast.Block, code *[]ir.Entry) {
	var inner []ir.Entry
	//
	p.frame.ScopeStart()
	//
	for _, stmt := range s.Stmts {
		p.translateStmt(stmt, &inner)
	}
	//
	inner = p.frame.ScopeEnd(inner)
	//
	*code = append(*code, inner...)
}

func (p *Translator) translateVarDefn(d *ast.VarDecl, code *[]ir.Entry) {
	symbol, ok := d.Symbol.(*VarSymbol)
	//
	if !ok {
		return
	}
	//
	symbol.Access = p.frame.AllocLocal(symbol.Type, symbol.Escapes)
	//
	if d.Init != nil {
		value := p.translateExpr(d.Init, code)
		value = p.translateConvert(value, d.Init.Type(), symbol.Type, code)
		//
		symbol.Access.Store(code, value, p.tmps)
	}
}

func (p *Translator) translateIf(s *ast.If, code *[]ir.Entry) {
	if s.Else == nil {
		skip := p.labels.NewLabel()
		//
		p.jumpIfNot(s.Cond, skip, code)
		p.translateStmt(s.Then, code)
		//
		*code = append(*code, ir.NewLabel(skip))
		//
		return
	}
	//
	var (
		elseLabel = p.labels.NewLabel()
		endLabel  = p.labels.NewLabel()
	)
	//
	p.jumpIfNot(s.Cond, elseLabel, code)
	p.translateStmt(s.Then, code)
	//
	*code = append(*code, ir.NewJump(endLabel), ir.NewLabel(elseLabel))
	//
	p.translateStmt(s.Else, code)
	//
	*code = append(*code, ir.NewLabel(endLabel))
}

func (p *Translator) translateWhile(s *ast.While, code *[]ir.Entry) {
	var (
		start = p.labels.NewLabel()
		end   = p.labels.NewLabel()
	)
	//
	*code = append(*code, ir.NewLabel(start))
	//
	p.jumpIfNot(s.Cond, end, code)
	//
	p.pushLoop(end, start)
	p.translateStmt(s.Body, code)
	p.popLoop()
	//
	*code = append(*code, ir.NewJump(start), ir.NewLabel(end))
}

func (p *Translator) translateDoWhile(s *ast.DoWhile, code *[]ir.Entry) {
	var (
		start = p.labels.NewLabel()
		cont  = p.labels.NewLabel()
		end   = p.labels.NewLabel()
	)
	//
	*code = append(*code, ir.NewLabel(start))
	//
	p.pushLoop(end, cont)
	p.translateStmt(s.Body, code)
	p.popLoop()
	//
	*code = append(*code, ir.NewLabel(cont))
	//
	p.jumpIf(s.Cond, start, code)
	//
	*code = append(*code, ir.NewLabel(end))
}

func (p *Translator) translateFor(s *ast.For, code *[]ir.Entry) {
	var (
		inner []ir.Entry
		start = p.labels.NewLabel()
		cont  = p.labels.NewLabel()
		end   = p.labels.NewLabel()
	)
	// The for header opens its own scope.
	p.frame.ScopeStart()
	//
	if s.Init != nil {
		p.translateStmt(s.Init, &inner)
	}
	//
	inner = append(inner, ir.NewLabel(start))
	//
	if s.Cond != nil {
		p.jumpIfNot(s.Cond, end, &inner)
	}
	//
	p.pushLoop(end, cont)
	p.translateStmt(s.Body, &inner)
	p.popLoop()
	// Continue lands just before the update.
	inner = append(inner, ir.NewLabel(cont))
	//
	if s.Upd != nil {
		p.translateExpr(s.Upd, &inner)
	}
	//
	inner = append(inner, ir.NewJump(start), ir.NewLabel(end))
	inner = p.frame.ScopeEnd(inner)
	//
	*code = append(*code, inner...)
}

func (p *Translator) translateSwitch(s *ast.Switch, code *[]ir.Entry) {
	var (
		size     = types.SizeOf(s.Value.Type())
		value    = p.translateExpr(s.Value, code)
		end      = p.labels.NewLabel()
		dflt     = ""
		caseLbls = make([]string, len(s.Clauses))
	)
	// Chained comparisons select the clause.
	for i, clause := range s.Clauses {
		caseLbls[i] = p.labels.NewLabel()
		//
		if clause.Default {
			dflt = caseLbls[i]
			continue
		}
		//
		caseValue := EvalConstInt(clause.Value).UnwrapOr(0)
		//
		*code = append(*code, ir.NewCondJump(ir.JE, size, caseLbls[i],
			value, ir.NewConstant(caseValue, size)))
	}
	// No match: default clause, or straight past.
	if dflt != "" {
		*code = append(*code, ir.NewJump(dflt))
	} else {
		*code = append(*code, ir.NewJump(end))
	}
	// Case bodies do not fall through.
	p.breakLabels = append(p.breakLabels, end)
	//
	for i, clause := range s.Clauses {
		*code = append(*code, ir.NewLabel(caseLbls[i]))
		//
		for _, stmt := range clause.Body {
			p.translateStmt(stmt, code)
		}
		//
		*code = append(*code, ir.NewJump(end))
	}
	//
	p.breakLabels = p.breakLabels[:len(p.breakLabels)-1]
	//
	*code = append(*code, ir.NewLabel(end))
}

func (p *Translator) translateReturn(s *ast.Return, code *[]ir.Entry) {
	if s.Value != nil && p.retval != nil {
		value := p.translateExpr(s.Value, code)
		value = p.translateConvert(value, s.Value.Type(), p.retType, code)
		//
		p.retval.Store(code, value, p.tmps)
	}
	//
	*code = append(*code, ir.NewJump(p.exitLabel))
}

func (p *Translator) pushLoop(breakLabel string, continueLabel string) {
	p.breakLabels = append(p.breakLabels, breakLabel)
	p.continueLabels = append(p.continueLabels, continueLabel)
}

func (p *Translator) popLoop() {
	p.breakLabels = p.breakLabels[:len(p.breakLabels)-1]
	p.continueLabels = p.continueLabels[:len(p.continueLabels)-1]
}
