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

	"github.com/tlang-dev/tlc/pkg/tlc/types"
	"github.com/tlang-dev/tlc/pkg/util/source"
)

// Environment bundles everything needed to resolve a name from within a
// given file: the current module's table, the tables of any imported
// modules, and the stack of nested local scopes.
type Environment struct {
	// Table of the current module.
	module *SymbolTable
	// Tables of imported modules, in import order.
	imports []*SymbolTable
	// Stack of nested local scopes, innermost last.
	scopes []map[string]Symbol
}

// NewEnvironment constructs an environment for a given module.
func NewEnvironment(module *SymbolTable) *Environment {
	return &Environment{module, nil, nil}
}

// Module returns the table of the current module.
func (p *Environment) Module() *SymbolTable {
	return p.module
}

// Import adds the table of an imported module to this environment.
func (p *Environment) Import(table *SymbolTable) {
	p.imports = append(p.imports, table)
}

// EnterScope pushes a fresh local scope.
func (p *Environment) EnterScope() {
	p.scopes = append(p.scopes, make(map[string]Symbol))
}

// ExitScope pops the innermost local scope.
func (p *Environment) ExitScope() {
	p.scopes = p.scopes[:len(p.scopes)-1]
}

// DeclareLocal binds a name in the innermost scope, returning false if the
// name is already bound in that scope (shadowing outer scopes is fine).
func (p *Environment) DeclareLocal(name string, symbol Symbol) bool {
	scope := p.scopes[len(p.scopes)-1]
	//
	if _, ok := scope[name]; ok {
		return false
	}
	//
	scope[name] = symbol
	//
	return true
}

// Lookup resolves an unscoped name: innermost scope outwards, then the
// current module, then the imports.  When two imports bind the same name the
// lookup fails with an ambiguity error listing the candidate modules.
func (p *Environment) Lookup(name string, span source.Span, srcfile *source.File) (Symbol, []source.SyntaxError) {
	// Local scopes, inner to outer.
	for i := len(p.scopes) - 1; i >= 0; i-- {
		if symbol, ok := p.scopes[i][name]; ok {
			return symbol, nil
		}
	}
	// Current module
	if symbol, ok := p.module.Lookup(name); ok {
		return symbol, nil
	}
	// Imports, with ambiguity detection.
	var (
		found   Symbol
		sources []string
	)
	//
	for _, imp := range p.imports {
		if symbol, ok := imp.Lookup(name); ok {
			found = symbol
			sources = append(sources, imp.Module())
		}
	}
	//
	switch {
	case len(sources) == 1:
		return found, nil
	case len(sources) > 1:
		err := srcfile.SyntaxError(span, fmt.Sprintf("ambiguous identifier '%s'", name))
		//
		for _, module := range sources {
			err.WithNote(fmt.Sprintf("candidate module: %s", module))
		}
		//
		return nil, []source.SyntaxError{*err}
	}
	//
	return nil, []source.SyntaxError{
		*srcfile.SyntaxError(span, fmt.Sprintf("undefined identifier '%s'", name))}
}

// LookupScoped resolves a scoped name.  A single qualifier "m::x" looks x up
// in module m; a double qualifier "m::e::c" first resolves m::e as an enum
// and then c as one of its constants.
func (p *Environment) LookupScoped(qualifiers []string, name string, span source.Span,
	srcfile *source.File) (Symbol, []source.SyntaxError) {
	//
	if len(qualifiers) > 1 {
		return p.lookupEnumConstant(qualifiers, name, span, srcfile)
	}
	//
	table, errs := p.tableOf(qualifiers[0], span, srcfile)
	//
	if len(errs) > 0 {
		return nil, errs
	}
	//
	if symbol, ok := table.Lookup(name); ok {
		return symbol, nil
	}
	//
	return nil, []source.SyntaxError{*srcfile.SyntaxError(span,
		fmt.Sprintf("undefined identifier '%s::%s'", qualifiers[0], name))}
}

// lookupEnumConstant resolves "m::e::c" style names.
func (p *Environment) lookupEnumConstant(qualifiers []string, name string, span source.Span,
	srcfile *source.File) (Symbol, []source.SyntaxError) {
	//
	var (
		module   = strings.Join(qualifiers[:len(qualifiers)-1], "::")
		typeName = qualifiers[len(qualifiers)-1]
	)
	//
	table, errs := p.tableOf(module, span, srcfile)
	//
	if len(errs) > 0 {
		return nil, errs
	}
	//
	symbol, ok := table.Lookup(typeName)
	//
	if !ok {
		return nil, []source.SyntaxError{*srcfile.SyntaxError(span,
			fmt.Sprintf("undefined identifier '%s::%s'", module, typeName))}
	}
	//
	tsym, ok := symbol.(*TypeSymbol)
	//
	if !ok || tsym.Entry.Kind != types.ENUM {
		return nil, []source.SyntaxError{*srcfile.SyntaxError(span,
			fmt.Sprintf("'%s::%s' is not an enum", module, typeName))}
	}
	//
	if constant, ok := tsym.Entry.ConstantOf(name); ok {
		return &ConstSymbol{name, types.NewReference(tsym.Entry), constant.Value}, nil
	}
	//
	return nil, []source.SyntaxError{*srcfile.SyntaxError(span,
		fmt.Sprintf("'%s' has no constant '%s'", typeName, name))}
}

// tableOf resolves a module name against the current module and the imports.
func (p *Environment) tableOf(module string, span source.Span,
	srcfile *source.File) (*SymbolTable, []source.SyntaxError) {
	//
	if module == p.module.Module() {
		return p.module, nil
	}
	//
	for _, imp := range p.imports {
		if imp.Module() == module {
			return imp, nil
		}
	}
	//
	return nil, []source.SyntaxError{
		*srcfile.SyntaxError(span, fmt.Sprintf("unknown module '%s'", module))}
}

// IsType is the classifier handed to the lexer: it decides whether a given
// (possibly scoped) name currently denotes a type.  It only ever consults
// module tables, hence is monotone across a file.
func (p *Environment) IsType(name string) bool {
	segments := strings.Split(name, "::")
	//
	if len(segments) == 1 {
		if p.module.IsType(name) {
			return true
		}
		//
		for _, imp := range p.imports {
			if imp.IsType(name) {
				return true
			}
		}
		//
		return false
	}
	//
	var (
		module   = strings.Join(segments[:len(segments)-1], "::")
		typeName = segments[len(segments)-1]
	)
	//
	if module == p.module.Module() {
		return p.module.IsType(typeName)
	}
	//
	for _, imp := range p.imports {
		if imp.Module() == module {
			return imp.IsType(typeName)
		}
	}
	//
	return false
}
