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
	"github.com/tlang-dev/tlc/pkg/util/source"
)

// Unit is the compilation state of a single input file as it moves through
// the pipeline.
type Unit struct {
	// File holds the source text.
	File *source.File
	// IsCode is true for code modules, which may contain definitions and
	// produce an assembly file; declaration modules may only declare.
	IsCode bool
	// Module declared by this file (set by the parser).
	Module string
	// Errored is set as soon as any phase reports an error against this
	// unit; later phases continue on a best-effort basis.
	Errored bool
	// Ast is the (possibly partial) syntax tree of this unit.
	Ast *ast.File
	// Env resolves names from within this unit.
	Env *Environment
}

// NewUnit constructs a fresh compilation unit over a given source file.
func NewUnit(srcfile *source.File, isCode bool) *Unit {
	return &Unit{File: srcfile, IsCode: isCode}
}

// Program holds the cross-module state of one compiler invocation: the
// symbol table of every module seen so far, and the units being compiled.
// A module's declaration and code files share one table.
type Program struct {
	tables map[string]*SymbolTable
	units  []*Unit
}

// NewProgram constructs an empty program.
func NewProgram() *Program {
	return &Program{make(map[string]*SymbolTable), nil}
}

// TableOf returns the symbol table of a given module, creating it on first
// use.
func (p *Program) TableOf(module string) *SymbolTable {
	if table, ok := p.tables[module]; ok {
		return table
	}
	//
	table := NewSymbolTable(module)
	p.tables[module] = table
	//
	return table
}

// HasModule checks whether a given module has been seen.
func (p *Program) HasModule(module string) bool {
	_, ok := p.tables[module]
	return ok
}

// Units returns the units of this program, in compilation order.
func (p *Program) Units() []*Unit {
	return p.units
}

// AddUnit appends a unit to this program.
func (p *Program) AddUnit(unit *Unit) {
	p.units = append(p.units, unit)
}
