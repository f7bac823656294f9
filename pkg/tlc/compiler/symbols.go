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
	"github.com/tlang-dev/tlc/pkg/tlc/frame"
	"github.com/tlang-dev/tlc/pkg/tlc/types"
)

// Symbol is implemented by all symbol table entry variants.
type Symbol interface {
	// symbolMark distinguishes symbols from other interfaces.
	symbolMark()
}

// VarSymbol is a variable binding (global or local).
type VarSymbol struct {
	Name   string
	Module string
	Type   types.Type
	// Global is true for module-level variables.
	Global bool
	// Escapes is true when the variable's address is taken, forcing it into
	// addressable storage.
	Escapes bool
	// Access is the storage location, assigned before translation touches
	// any code referring to this variable.
	Access frame.Access
}

// Overload is a single element of a function's overload set.
type Overload struct {
	Args []types.Type
	Ret  types.Type
	// Label is the mangled link name, assigned before translation.
	Label string
	// Defined is true once a body has been seen.
	Defined bool
}

// FunSymbol is a function binding, holding one overload per distinct
// argument-type signature.
type FunSymbol struct {
	Name      string
	Module    string
	Overloads []*Overload
}

// TypeSymbol is a named type binding (typedef, struct, union or enum).
type TypeSymbol struct {
	Entry *types.Named
}

// ConstSymbol is a compile-time integer constant binding (an enum constant).
type ConstSymbol struct {
	Name  string
	Type  types.Type
	Value int64
}

func (p *VarSymbol) symbolMark()   {}
func (p *FunSymbol) symbolMark()   {}
func (p *TypeSymbol) symbolMark()  {}
func (p *ConstSymbol) symbolMark() {}

// FindOverload returns the overload with exactly the given argument types,
// or nil.
func (p *FunSymbol) FindOverload(args []types.Type) *Overload {
	for _, o := range p.Overloads {
		if len(o.Args) != len(args) {
			continue
		}
		//
		matched := true
		//
		for i := range args {
			if !types.Equal(o.Args[i], args[i]) {
				matched = false
				break
			}
		}
		//
		if matched {
			return o
		}
	}
	//
	return nil
}

// SymbolTable is the per-module mapping from names to symbols.  A module's
// table is shared between its declaration and code files.
type SymbolTable struct {
	// Module this table belongs to.
	module string
	// Mapping from names to symbols.
	symbols map[string]Symbol
	// Names in declaration order, for deterministic iteration.
	order []string
}

// NewSymbolTable constructs an empty symbol table for a given module.
func NewSymbolTable(module string) *SymbolTable {
	return &SymbolTable{module, make(map[string]Symbol), nil}
}

// Module returns the name of the module this table belongs to.
func (p *SymbolTable) Module() string {
	return p.module
}

// Declare binds a name to a symbol, returning false if the name is already
// bound (to anything other than the same symbol).
func (p *SymbolTable) Declare(name string, symbol Symbol) bool {
	if existing, ok := p.symbols[name]; ok {
		return existing == symbol
	}
	//
	p.symbols[name] = symbol
	p.order = append(p.order, name)
	//
	return true
}

// Lookup returns the symbol bound to a given name in this module.
func (p *SymbolTable) Lookup(name string) (Symbol, bool) {
	symbol, ok := p.symbols[name]
	return symbol, ok
}

// IsType checks whether a given name denotes a type in this module.
func (p *SymbolTable) IsType(name string) bool {
	symbol, ok := p.symbols[name]
	//
	if !ok {
		return false
	}
	//
	_, isType := symbol.(*TypeSymbol)
	//
	return isType
}

// Symbols iterates the symbols of this table in declaration order.
func (p *SymbolTable) Symbols(fn func(string, Symbol)) {
	for _, name := range p.order {
		fn(name, p.symbols[name])
	}
}
