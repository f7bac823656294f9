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
package ir

// Framer abstracts the per-function storage allocator attached to a text
// fragment.  The concrete type lives in the frame package; holding it behind
// a minimal interface here keeps this package free of a dependency on any
// particular target.
type Framer interface {
	// Name of the function this frame belongs to.
	Name() string
}

// Fragment is a single linkable unit of output.
type Fragment interface {
	// Label under which this fragment is linked.
	Label() string
	// fragmentMark distinguishes fragments from other interfaces.
	fragmentMark()
}

// Bss is a zero-initialised data fragment.
type Bss struct {
	Name  string
	Size  uint
	Align uint
}

// RoData is a read-only data fragment, laid out by a sequence of CONST
// entries.
type RoData struct {
	Name  string
	Align uint
	Code  []Entry
}

// Data is a writable data fragment, laid out by a sequence of CONST entries.
type Data struct {
	Name  string
	Align uint
	Code  []Entry
}

// Text is an executable fragment holding the body of one function together
// with the frame that laid it out.
type Text struct {
	Name  string
	Frame Framer
	Code  []Entry
}

func (p *Bss) fragmentMark()    {}
func (p *RoData) fragmentMark() {}
func (p *Data) fragmentMark()   {}
func (p *Text) fragmentMark()   {}

// Label returns the link label of this fragment.
func (p *Bss) Label() string { return p.Name }

// Label returns the link label of this fragment.
func (p *RoData) Label() string { return p.Name }

// Label returns the link label of this fragment.
func (p *Data) Label() string { return p.Name }

// Label returns the link label of this fragment.
func (p *Text) Label() string { return p.Name }
