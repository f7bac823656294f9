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
package frame

import (
	"testing"

	"github.com/tlang-dev/tlc/pkg/tlc/ir"
	"github.com/tlang-dev/tlc/pkg/tlc/types"
)

func TestFrame_01(t *testing.T) {
	// Integer arguments arrive in RDI, RSI, ... in declaration order.
	var (
		tmps = ir.NewTempAllocator()
		f    = NewX86_64("f", tmps)
		i32  = types.NewPrimitive(types.SINT)
	)
	//
	a := f.AllocArg(i32, false)
	b := f.AllocArg(i32, false)
	//
	body := f.EntryExit([]ir.Entry{})
	//
	var regs []uint
	//
	for _, entry := range body {
		if entry.Op == ir.MOVE && entry.Size == types.INT_WIDTH {
			if reg, ok := entry.Arg1.(*ir.Reg); ok {
				regs = append(regs, reg.N)
			}
		}
	}
	//
	if len(regs) != 2 || regs[0] != RDI || regs[1] != RSI {
		t.Errorf("got argument registers %v", regs)
	}
	//
	if a == nil || b == nil {
		t.Errorf("missing accesses")
	}
}

func TestFrame_02(t *testing.T) {
	// The prologue saves every callee-save register, and the epilogue ends
	// with a RETURN.
	var (
		tmps = ir.NewTempAllocator()
		f    = NewX86_64("f", tmps)
		body = f.EntryExit([]ir.Entry{})
	)
	//
	saves := 0
	//
	for _, entry := range body {
		if entry.Op == ir.MOVE {
			if _, ok := entry.Arg1.(*ir.Reg); ok {
				saves++
			}
		}
	}
	//
	if saves != len(CalleeSaved) {
		t.Errorf("got %d saves, expected %d", saves, len(CalleeSaved))
	}
	//
	if last := body[len(body)-1]; last.Op != ir.RETURN {
		t.Errorf("epilogue ends with %s", last.Op)
	}
}

func TestFrame_03(t *testing.T) {
	// Escaping locals land in stack slots with addressable accesses.
	var (
		tmps = ir.NewTempAllocator()
		f    = NewX86_64("f", tmps)
		i64  = types.NewPrimitive(types.SLONG)
	)
	//
	var (
		local     = f.AllocLocal(i64, true)
		code      []ir.Entry
		_, addrOk = local.Addr(&code, tmps)
	)
	//
	if !addrOk {
		t.Errorf("escaping local not addressable")
	}
	// A non-escaping scalar lives in a temporary, which has no address.
	var (
		reg      = f.AllocLocal(i64, false)
		_, regOk = reg.Addr(&code, tmps)
	)
	//
	if regOk {
		t.Errorf("register temporary is addressable")
	}
}

func TestFrame_04(t *testing.T) {
	// SSE results return in XMM0, integer results in RAX.
	var (
		tmps = ir.NewTempAllocator()
		f    = NewX86_64("f", tmps)
		code []ir.Entry
	)
	//
	result := f.Call(&code, ir.NewName("g"), nil, nil, types.NewPrimitive(types.DOUBLE))
	//
	if result == nil {
		t.Fatalf("missing result")
	}
	//
	last := code[len(code)-1]
	//
	if reg, ok := last.Arg1.(*ir.Reg); !ok || reg.N != XMM0 {
		t.Errorf("double result not captured from XMM0")
	}
}
