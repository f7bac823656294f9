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
	"strings"

	"github.com/tlang-dev/tlc/pkg/tlc/ast"
	"github.com/tlang-dev/tlc/pkg/tlc/ir"
	"github.com/tlang-dev/tlc/pkg/tlc/types"
)

// DumpDecl renders a top-level declaration in a readable one-per-line form,
// for the --ast dump.
func DumpDecl(decl ast.Decl) string {
	switch d := decl.(type) {
	case *ast.FunDecl:
		params := make([]string, len(d.Params))
		//
		for i, param := range d.Params {
			params[i] = strings.TrimSpace(fmt.Sprintf("%s %s", dumpType(param.Type), param.Name))
		}
		//
		suffix := ";"
		//
		if d.Body != nil {
			suffix = fmt.Sprintf(" { %d statements }", len(d.Body.Stmts))
		}
		//
		return fmt.Sprintf("%s %s(%s)%s", dumpType(d.Ret), d.Name, strings.Join(params, ", "), suffix)
	case *ast.VarDecl:
		if d.Init != nil {
			return fmt.Sprintf("%s %s = ...;", dumpType(d.Type), d.Name)
		}
		//
		return fmt.Sprintf("%s %s;", dumpType(d.Type), d.Name)
	case *ast.StructDecl:
		return fmt.Sprintf("struct %s { %d fields };", d.Name, len(d.Fields))
	case *ast.UnionDecl:
		return fmt.Sprintf("union %s { %d fields };", d.Name, len(d.Fields))
	case *ast.EnumDecl:
		return fmt.Sprintf("enum %s { %d constants };", d.Name, len(d.Items))
	case *ast.TypedefDecl:
		return fmt.Sprintf("typedef %s %s;", dumpType(d.Type), d.Name)
	case *ast.OpaqueDecl:
		kind := "struct"
		//
		if d.Kind == ast.OPAQUE_UNION {
			kind = "union"
		}
		//
		return fmt.Sprintf("opaque %s %s;", kind, d.Name)
	}
	//
	return "?"
}

func dumpType(te ast.TypeExpr) string {
	switch t := te.(type) {
	case *ast.KeywordType:
		return types.NewPrimitive(t.Kind).String()
	case *ast.NamedType:
		if len(t.Qualifiers) > 0 {
			return strings.Join(t.Qualifiers, "::") + "::" + t.Name
		}
		//
		return t.Name
	case *ast.ConstType:
		return dumpType(t.Base) + " const"
	case *ast.VolatileType:
		return dumpType(t.Base) + " volatile"
	case *ast.PointerType:
		return dumpType(t.Base) + "*"
	case *ast.ArrayType:
		return dumpType(t.Base) + "[...]"
	case *ast.FnPtrType:
		args := make([]string, len(t.Args))
		//
		for i, arg := range t.Args {
			args[i] = dumpType(arg)
		}
		//
		return fmt.Sprintf("%s(%s)", dumpType(t.Ret), strings.Join(args, ", "))
	}
	//
	return "?"
}

// DumpFragment renders a fragment (header plus entries) for the --ir dump.
func DumpFragment(fragment ir.Fragment) string {
	var builder strings.Builder
	//
	switch f := fragment.(type) {
	case *ir.Bss:
		fmt.Fprintf(&builder, "bss %s (size %d, align %d)", f.Name, f.Size, f.Align)
	case *ir.RoData:
		fmt.Fprintf(&builder, "rodata %s (align %d)\n", f.Name, f.Align)
		dumpEntries(&builder, f.Code)
	case *ir.Data:
		fmt.Fprintf(&builder, "data %s (align %d)\n", f.Name, f.Align)
		dumpEntries(&builder, f.Code)
	case *ir.Text:
		fmt.Fprintf(&builder, "text %s\n", f.Name)
		dumpEntries(&builder, f.Code)
	}
	//
	return builder.String()
}

func dumpEntries(builder *strings.Builder, code []ir.Entry) {
	for i := range code {
		fmt.Fprintf(builder, "%s\n", code[i].String())
	}
}
