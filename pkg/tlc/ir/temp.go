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

import (
	"fmt"

	"github.com/tlang-dev/tlc/pkg/tlc/types"
)

// TempAllocator hands out fresh temporaries for a single function body.  Ids
// are dense, strictly monotonic and never reused within that function; a
// fresh allocator is created per function.
type TempAllocator struct {
	next uint
}

// NewTempAllocator constructs a fresh temporary allocator.
func NewTempAllocator() *TempAllocator {
	return &TempAllocator{0}
}

// Alloc returns a fresh temporary of a given size, alignment and kind.
func (p *TempAllocator) Alloc(size uint, align uint, kind types.OperandKind) *Temp {
	id := p.next
	p.next++
	//
	return &Temp{id, size, align, kind}
}

// AllocFor returns a fresh temporary suitable for carrying a value of a
// given type.
func (p *TempAllocator) AllocFor(t types.Type) *Temp {
	return p.Alloc(types.SizeOf(t), types.AlignOf(t), types.KindOf(t))
}

// Count returns the number of temporaries allocated so far.
func (p *TempAllocator) Count() uint {
	return p.next
}

// LabelGenerator hands out fresh labels for branch targets and private data
// fragments.  A single generator is shared across one output file, keeping
// all its labels distinct.
type LabelGenerator struct {
	nextLabel uint
	nextData  uint
}

// NewLabelGenerator constructs a fresh label generator.
func NewLabelGenerator() *LabelGenerator {
	return &LabelGenerator{0, 0}
}

// NewLabel returns a fresh code label.
func (p *LabelGenerator) NewLabel() string {
	id := p.nextLabel
	p.nextLabel++
	//
	return fmt.Sprintf(".L%d", id)
}

// NewDataLabel returns a fresh private data label.
func (p *LabelGenerator) NewDataLabel() string {
	id := p.nextData
	p.nextData++
	//
	return fmt.Sprintf(".LC%d", id)
}
