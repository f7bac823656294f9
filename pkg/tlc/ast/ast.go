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

// Package ast provides the abstract syntax tree of the language.  Nodes are
// pure data: tagged variants carrying only syntactic information, their
// source span, and the (initially empty) decorations filled in by the type
// checker.  Nodes never own symbol tables; scoping is a side construct of the
// compiler.
package ast

import (
	"strings"

	"github.com/tlang-dev/tlc/pkg/util/source"
)

// Node is implemented by every syntax tree node, exposing the span of the
// original source text from which the node was parsed.
type Node interface {
	Span() source.Span
}

// node is the common embedded base of all syntax tree nodes.
type node struct {
	span source.Span
}

// Span returns the source span of this node.
func (p *node) Span() source.Span {
	return p.span
}

// File is the root node for a single source file: a module declaration,
// zero or more imports, and the top-level declarations.
type File struct {
	node
	// Module declared by this file.
	Module *Module
	// Modules imported (via using) by this file.
	Imports []*Import
	// Top-level declarations, in source order.
	Decls []Decl
}

// NewFile constructs a new file node.
func NewFile(span source.Span, module *Module, imports []*Import, decls []Decl) *File {
	return &File{node{span}, module, imports, decls}
}

// Module is the module declaration heading a file, e.g. "module a::b;".
type Module struct {
	node
	// Path of this module, e.g. ["a", "b"].
	Path []string
}

// NewModule constructs a new module declaration.
func NewModule(span source.Span, path []string) *Module {
	return &Module{node{span}, path}
}

// Name returns the full scoped name of this module.
func (p *Module) Name() string {
	return strings.Join(p.Path, "::")
}

// Import is a single "using m;" declaration.
type Import struct {
	node
	// Path of the imported module.
	Path []string
}

// NewImport constructs a new import declaration.
func NewImport(span source.Span, path []string) *Import {
	return &Import{node{span}, path}
}

// Name returns the full scoped name of the imported module.
func (p *Import) Name() string {
	return strings.Join(p.Path, "::")
}
