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
	"strings"
	"testing"

	"github.com/tlang-dev/tlc/pkg/tlc/ast"
	"github.com/tlang-dev/tlc/pkg/util/source"
)

func TestChecker_01(t *testing.T) {
	// Every expression of a checked function carries a result type.
	unit := checkOne(t, `module a;
int f(int x) {
	return x + 1;
}
`)
	//
	fn := unit.Ast.Decls[0].(*ast.FunDecl)
	ret := fn.Body.Stmts[0].(*ast.Return)
	//
	if ret.Value.Type() == nil {
		t.Errorf("missing result type")
	}
	//
	if ret.Value.Type().String() != "int" {
		t.Errorf("got %s", ret.Value.Type())
	}
}

func TestChecker_02(t *testing.T) {
	// Undefined identifiers carry the canonical diagnostic.
	errs := checkErrors(t, "test.src", `module a;
int f() {
    zzz = 1;
    return 0;
}
`)
	//
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}
	//
	expected := "test.src:3:5: error: undefined identifier 'zzz'"
	//
	if errs[0].Error() != expected {
		t.Errorf("got %q, expected %q", errs[0].Error(), expected)
	}
}

func TestChecker_03(t *testing.T) {
	// Overload selection prefers the exact match.
	unit := checkOne(t, `module a;
int f(int x) { return 1; }
int f(long x) { return 2; }
int g() { return f(cast[long](1)); }
int h() { return f(1); }
`)
	//
	if got := calledOverload(t, unit, 2); got != 1 {
		t.Errorf("g: selected overload %d, expected 1", got)
	}
	//
	if got := calledOverload(t, unit, 3); got != 0 {
		t.Errorf("h: selected overload %d, expected 0", got)
	}
}

func TestChecker_04(t *testing.T) {
	// No overload accepts a double argument.
	errs := checkErrors(t, "test.tc", `module a;
int f(int x) { return 1; }
int f(long x) { return 2; }
int g() { return f(1.0); }
`)
	//
	if len(errs) != 1 || !strings.Contains(errs[0].Message(), "no matching overload") {
		t.Errorf("got %v", errs)
	}
}

func TestChecker_05(t *testing.T) {
	// Assignment requires an lvalue of non-const type.
	errs := checkErrors(t, "test.tc", `module a;
int f() {
	int const x = 1;
	x = 2;
	return x;
}
`)
	//
	if len(errs) != 1 || !strings.Contains(errs[0].Message(), "const") {
		t.Errorf("got %v", errs)
	}
	//
	errs = checkErrors(t, "test.tc", `module a;
int f() {
	1 = 2;
	return 0;
}
`)
	//
	if len(errs) != 1 || !strings.Contains(errs[0].Message(), "lvalue") {
		t.Errorf("got %v", errs)
	}
}

func TestChecker_06(t *testing.T) {
	// Break and continue placement.
	errs := checkErrors(t, "test.tc", `module a;
void f() {
	break;
}
`)
	//
	if len(errs) != 1 || !strings.Contains(errs[0].Message(), "break outside") {
		t.Errorf("got %v", errs)
	}
}

func TestChecker_07(t *testing.T) {
	// Duplicate case values are rejected.
	errs := checkErrors(t, "test.tc", `module a;
int f(int x) {
	switch (x) {
	case 1:
		return 1;
	case 1:
		return 2;
	}
	return 0;
}
`)
	//
	if len(errs) != 1 || !strings.Contains(errs[0].Message(), "duplicate case") {
		t.Errorf("got %v", errs)
	}
}

func TestChecker_08(t *testing.T) {
	// A non-void function must return on every path.
	errs := checkErrors(t, "test.tc", `module a;
int f(bool c) {
	if (c) {
		return 1;
	}
}
`)
	//
	if len(errs) != 1 || !strings.Contains(errs[0].Message(), "without return") {
		t.Errorf("got %v", errs)
	}
}

func TestChecker_09(t *testing.T) {
	// Ambiguous unqualified imports are diagnosed with candidates.
	var (
		lib1 = NewUnit(source.NewSourceFile("one.td", []byte("module one;\nint shared;\n")), false)
		lib2 = NewUnit(source.NewSourceFile("two.td", []byte("module two;\nint shared;\n")), false)
		code = NewUnit(source.NewSourceFile("test.tc", []byte(
			"module a;\nusing one;\nusing two;\nint f() { return shared; }\n")), true)
	)
	//
	_, errs := NewCompiler().Compile([]*Unit{lib1, lib2, code})
	//
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}
	//
	if !strings.Contains(errs[0].Message(), "ambiguous identifier") {
		t.Errorf("got %s", errs[0].Message())
	}
	//
	notes := errs[0].Notes()
	//
	if len(notes) != 2 || !strings.HasPrefix(notes[0], "candidate module:") {
		t.Errorf("got notes %v", notes)
	}
}

func TestChecker_10(t *testing.T) {
	// Enum constants fold and interconvert with integers.
	unit := checkOne(t, `module a;
enum color { RED, GREEN = 5, BLUE, };
int f() { return BLUE; }
`)
	//
	fn := unit.Ast.Decls[1].(*ast.FunDecl)
	ret := fn.Body.Stmts[0].(*ast.Return)
	//
	value := EvalConstInt(ret.Value)
	//
	if value.IsEmpty() || value.Unwrap() != 6 {
		t.Errorf("BLUE folded to %v", value)
	}
}

func TestChecker_11(t *testing.T) {
	// sizeof types as ulong and tolerates unevaluated operands.
	unit := checkOne(t, `module a;
ulong f(int* p) {
	return sizeof(*p) + sizeof(long);
}
`)
	//
	fn := unit.Ast.Decls[0].(*ast.FunDecl)
	ret := fn.Body.Stmts[0].(*ast.Return)
	//
	if ret.Value.Type().String() != "ulong" {
		t.Errorf("got %s", ret.Value.Type())
	}
}

func TestChecker_12(t *testing.T) {
	// Mutually recursive structs through pointers resolve via forward
	// declarations.
	checkOne(t, `module a;
struct node;
struct list { node* head; };
struct node { node* next; int value; };
int f(list l) {
	return l.head->value;
}
`)
}

// ==================================================================
// Framework
// ==================================================================

// checkOne parses and checks a single code unit, failing on any error.
func checkOne(t *testing.T, text string) *Unit {
	var (
		unit    = NewUnit(source.NewSourceFile("test.tc", []byte(text)), true)
		program = NewProgram()
	)
	//
	program.AddUnit(unit)
	//
	if _, errs := NewParser(unit, program).Parse(); len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	//
	if errs := NewChecker(program).Check(); len(errs) != 0 {
		t.Fatalf("unexpected check errors: %v", errs)
	}
	//
	return unit
}

// checkErrors parses and checks a single code unit expected to fail.
func checkErrors(t *testing.T, filename string, text string) []source.SyntaxError {
	var (
		unit    = NewUnit(source.NewSourceFile(filename, []byte(text)), true)
		program = NewProgram()
	)
	//
	program.AddUnit(unit)
	//
	if _, errs := NewParser(unit, program).Parse(); len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	//
	return NewChecker(program).Check()
}

// calledOverload digs out the overload selected by the call returned from
// the nth declaration.
func calledOverload(t *testing.T, unit *Unit, decl int) int {
	var (
		fn   = unit.Ast.Decls[decl].(*ast.FunDecl)
		ret  = fn.Body.Stmts[0].(*ast.Return)
		call = ret.Value.(*ast.FnCall)
	)
	//
	return call.Fn.(*ast.Id).Overload
}
