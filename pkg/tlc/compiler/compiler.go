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

// Package compiler implements the compilation pipeline from source text to
// target-independent IR fragments: lexing, parsing, name and overload
// resolution, type checking, and translation.  Everything target specific
// sits behind the frame abstraction.
package compiler

import (
	log "github.com/sirupsen/logrus"

	"github.com/tlang-dev/tlc/pkg/tlc/frame"
	"github.com/tlang-dev/tlc/pkg/tlc/ir"
	"github.com/tlang-dev/tlc/pkg/util/source"
)

// Result pairs a code unit with the fragments its translation produced.
type Result struct {
	Unit *Unit
	// Fragments of this unit, in emission order.
	Fragments []ir.Fragment
}

// Compiler drives the pipeline over a set of units.  The frame constructor
// parameterises the target; it defaults to the x86_64 System-V frame.
type Compiler struct {
	frameCtor frame.Ctor
}

// NewCompiler constructs a compiler targeting x86_64 System-V.
func NewCompiler() *Compiler {
	return &Compiler{frame.NewX86_64}
}

// WithFrame overrides the target frame constructor.
func (p *Compiler) WithFrame(ctor frame.Ctor) *Compiler {
	p.frameCtor = ctor
	return p
}

// Compile runs the whole pipeline over a set of units, producing one result
// per code unit plus every diagnostic arising.  Declaration modules are
// processed before code modules so that imports (and their type names,
// needed during lexing) resolve.  All user-visible errors accumulate; a
// unit's errored flag is set rather than aborting, so one run reports as
// many independent errors as possible.
func (p *Compiler) Compile(units []*Unit) ([]Result, []source.SyntaxError) {
	var (
		program = NewProgram()
		errs    []source.SyntaxError
		results []Result
	)
	// Declaration modules parse (and register their symbols) first.
	for _, unit := range units {
		if !unit.IsCode {
			program.AddUnit(unit)
		}
	}
	//
	for _, unit := range units {
		if unit.IsCode {
			program.AddUnit(unit)
		}
	}
	// Parse
	for _, unit := range program.Units() {
		log.Debugf("parsing %s", unit.File.Filename())
		//
		_, perrs := NewParser(unit, program).Parse()
		errs = append(errs, perrs...)
	}
	// Resolve & type check
	log.Debug("type checking")
	//
	errs = append(errs, NewChecker(program).Check()...)
	// Assign accesses: declaration modules first, then code modules, in
	// declaration order within each.
	AllocateAccesses(program)
	// Translate each code unit.
	for _, unit := range program.Units() {
		if !unit.IsCode {
			continue
		}
		//
		if unit.Errored {
			// Partial units still get a (possibly empty) result so the
			// driver can account for them.
			results = append(results, Result{unit, nil})
			continue
		}
		//
		log.Debugf("translating %s", unit.File.Filename())
		//
		var (
			labels     = ir.NewLabelGenerator()
			translator = NewTranslator(program, p.frameCtor, labels)
			fragments  = translator.TranslateUnit(unit)
		)
		//
		results = append(results, Result{unit, fragments})
	}
	//
	return results, errs
}

// CompileSourceFiles is a convenience entry point: it wraps the given
// source files into units (classified by the given predicate) and compiles
// them.
func CompileSourceFiles(files []source.File, isCode func(string) bool) ([]Result, []source.SyntaxError) {
	units := make([]*Unit, len(files))
	//
	for i := range files {
		units[i] = NewUnit(&files[i], isCode(files[i].Filename()))
	}
	//
	return NewCompiler().Compile(units)
}
