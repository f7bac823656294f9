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

func TestParser_01(t *testing.T) {
	file := parseOne(t, "module a;\nint x;\n")
	//
	if file.Module.Name() != "a" {
		t.Errorf("got module %s", file.Module.Name())
	}
	//
	if len(file.Decls) != 1 {
		t.Fatalf("got %d declarations", len(file.Decls))
	}
	//
	if _, ok := file.Decls[0].(*ast.VarDecl); !ok {
		t.Errorf("expected variable declaration")
	}
}

func TestParser_02(t *testing.T) {
	// Declaration vs definition is decided after the identifier.
	file := parseOne(t, "module a;\nint f(int x);\nint y = 1;\n")
	//
	if len(file.Decls) != 2 {
		t.Fatalf("got %d declarations", len(file.Decls))
	}
	//
	if _, ok := file.Decls[0].(*ast.FunDecl); !ok {
		t.Errorf("expected function declaration")
	}
	//
	if _, ok := file.Decls[1].(*ast.VarDecl); !ok {
		t.Errorf("expected variable declaration")
	}
}

func TestParser_03(t *testing.T) {
	// Multi-name declarations flatten into one node per name.
	file := parseOne(t, "module a;\nint x, y, z;\n")
	//
	if len(file.Decls) != 3 {
		t.Fatalf("got %d declarations", len(file.Decls))
	}
}

func TestParser_04(t *testing.T) {
	// Postfix type modifiers: array, const, pointer, function pointer.
	file := parseOne(t, "module a;\nubyte[6] const greeting;\nint* p;\nint(long) fp;\n")
	//
	if len(file.Decls) != 3 {
		t.Fatalf("got %d declarations", len(file.Decls))
	}
	//
	first := file.Decls[0].(*ast.VarDecl)
	//
	outer, ok := first.Type.(*ast.ConstType)
	//
	if !ok {
		t.Fatalf("expected const type, got %T", first.Type)
	}
	//
	if _, ok := outer.Base.(*ast.ArrayType); !ok {
		t.Errorf("expected array under const, got %T", outer.Base)
	}
}

func TestParser_05(t *testing.T) {
	// Struct declarations register their name as a type for later lexing.
	file := parseOne(t, "module a;\nstruct point { int x; int y; };\npoint origin;\n")
	//
	if len(file.Decls) != 2 {
		t.Fatalf("got %d declarations", len(file.Decls))
	}
	//
	decl := file.Decls[1].(*ast.VarDecl)
	//
	if named, ok := decl.Type.(*ast.NamedType); !ok || named.Name != "point" {
		t.Errorf("expected named type point, got %T", decl.Type)
	}
}

func TestParser_06(t *testing.T) {
	// A syntax error recovers to the next top-level boundary; the following
	// declaration still parses.
	var (
		unit, errs = parseErrored(t, "module a;\nint = 3;\nint y;\n")
		file       = unit.Ast
	)
	//
	if len(errs) == 0 {
		t.Fatalf("expected errors")
	}
	//
	if !unit.Errored {
		t.Errorf("errored flag not set")
	}
	//
	if len(file.Decls) != 1 {
		t.Fatalf("got %d declarations after recovery", len(file.Decls))
	}
}

func TestParser_07(t *testing.T) {
	// Diagnostics carry the expected-but-found shape.
	_, errs := parseErrored(t, "module a;\nint f(;\n")
	//
	if len(errs) == 0 {
		t.Fatalf("expected errors")
	}
	//
	if msg := errs[0].Message(); !strings.Contains(msg, "expected") ||
		!strings.Contains(msg, "but found") {
		t.Errorf("unexpected message: %s", msg)
	}
}

func TestParser_08(t *testing.T) {
	// Function definitions are rejected in declaration modules.
	unit := NewUnit(source.NewSourceFile("test.td", []byte(
		"module a;\nint f() { return 1; }\n")), false)
	//
	program := NewProgram()
	program.AddUnit(unit)
	//
	_, errs := NewParser(unit, program).Parse()
	//
	if len(errs) == 0 {
		t.Fatalf("expected errors")
	}
	//
	if !strings.Contains(errs[0].Message(), "declaration module") {
		t.Errorf("unexpected message: %s", errs[0].Message())
	}
}

func TestParser_09(t *testing.T) {
	// Control flow statements parse into their respective nodes.
	file := parseOne(t, `module a;
int f(int n) {
	int total = 0;
	for (int i = 0; i < n; ++i) {
		if (i % 2 == 0) { total += i; } else { continue; }
	}
	while (total > 100) { total /= 2; }
	do { ++total; } while (total < 10);
	switch (total) {
	case 0:
		return 0;
	default:
		break;
	}
	return total;
}
`)
	//
	fn := file.Decls[0].(*ast.FunDecl)
	//
	if fn.Body == nil || len(fn.Body.Stmts) != 6 {
		t.Fatalf("unexpected body shape")
	}
}

func TestParser_10(t *testing.T) {
	// Scoped identifiers appear in expressions and types.
	declUnit := NewUnit(source.NewSourceFile("lib.td", []byte(
		"module lib;\ntypedef int handle;\nint get();\n")), false)
	//
	codeUnit := NewUnit(source.NewSourceFile("test.tc", []byte(
		"module a;\nusing lib;\nlib::handle h = lib::get();\n")), true)
	//
	program := NewProgram()
	program.AddUnit(declUnit)
	program.AddUnit(codeUnit)
	//
	if _, errs := NewParser(declUnit, program).Parse(); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	//
	if _, errs := NewParser(codeUnit, program).Parse(); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	//
	decl := codeUnit.Ast.Decls[0].(*ast.VarDecl)
	//
	named, ok := decl.Type.(*ast.NamedType)
	//
	if !ok || named.Name != "handle" || len(named.Qualifiers) != 1 {
		t.Errorf("scoped type did not parse: %T", decl.Type)
	}
}

func TestParser_11(t *testing.T) {
	// Aggregate initialisers and casts.
	file := parseOne(t, "module a;\nint f() {\n\tint[3] v = <1, 2, 3>;\n\treturn cast[int](v[0]);\n}\n")
	//
	fn := file.Decls[0].(*ast.FunDecl)
	//
	defn := fn.Body.Stmts[0].(*ast.VarDefnStmt)
	//
	if _, ok := defn.Decls[0].Init.(*ast.AggregateInit); !ok {
		t.Errorf("expected aggregate initialiser, got %T", defn.Decls[0].Init)
	}
	//
	ret := fn.Body.Stmts[1].(*ast.Return)
	//
	if _, ok := ret.Value.(*ast.Cast); !ok {
		t.Errorf("expected cast, got %T", ret.Value)
	}
}

func TestParser_12(t *testing.T) {
	// Malformed literals surface as diagnostics, never crashes: the parser
	// drops tokens whose lex pass already reported an error.
	inputs := []string{
		"module a;\nint f() {\n\tchar c = '';\n\treturn 0;\n}\n",
		"module a;\nint f() {\n\tchar c = '\\x1';\n\treturn 0;\n}\n",
		"module a;\nvoid f() {\n\tasm(\"\\q\");\n}\n",
	}
	//
	for _, text := range inputs {
		unit, errs := parseErrored(t, text)
		//
		if len(errs) == 0 || !unit.Errored {
			t.Errorf("malformed literal not diagnosed in %q", text)
		}
	}
}

// ==================================================================
// Framework
// ==================================================================

// parseOne parses a single code unit, failing the test on any error.
func parseOne(t *testing.T, text string) *ast.File {
	unit, errs := parseErrored(t, text)
	//
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	//
	return unit.Ast
}

func parseErrored(t *testing.T, text string) (*Unit, []source.SyntaxError) {
	var (
		unit    = NewUnit(source.NewSourceFile("test.tc", []byte(text)), true)
		program = NewProgram()
	)
	//
	program.AddUnit(unit)
	//
	_, errs := NewParser(unit, program).Parse()
	//
	return unit, errs
}
