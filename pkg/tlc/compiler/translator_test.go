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
	"testing"

	"github.com/tlang-dev/tlc/pkg/tlc/frame"
	"github.com/tlang-dev/tlc/pkg/tlc/ir"
	"github.com/tlang-dev/tlc/pkg/tlc/types"
	"github.com/tlang-dev/tlc/pkg/util/source"
)

func TestTranslate_01(t *testing.T) {
	// A bare global lands in BSS under its mangled label.
	fragments := translateOne(t, "test.td", false, "module a;\nint x;\n")
	//
	if len(fragments) != 1 {
		t.Fatalf("got %d fragments", len(fragments))
	}
	//
	bss, ok := fragments[0].(*ir.Bss)
	//
	if !ok {
		t.Fatalf("expected bss, got %T", fragments[0])
	}
	//
	if bss.Name != "__Z1a1x" || bss.Size != types.INT_WIDTH || bss.Align != types.INT_WIDTH {
		t.Errorf("got %s (size %d, align %d)", bss.Name, bss.Size, bss.Align)
	}
}

func TestTranslate_02(t *testing.T) {
	// A const string global lands in RODATA with its terminator inline.
	fragments := translateOne(t, "test.td", false,
		"module m;\nubyte[6] const greeting = \"hello\";\n")
	//
	if len(fragments) != 1 {
		t.Fatalf("got %d fragments", len(fragments))
	}
	//
	rodata, ok := fragments[0].(*ir.RoData)
	//
	if !ok {
		t.Fatalf("expected rodata, got %T", fragments[0])
	}
	//
	if rodata.Name != "__Z1m8greeting" || rodata.Align != 1 {
		t.Errorf("got %s (align %d)", rodata.Name, rodata.Align)
	}
	//
	if len(rodata.Code) != 1 {
		t.Fatalf("got %d entries", len(rodata.Code))
	}
	//
	entry := rodata.Code[0]
	//
	if entry.Op != ir.CONST || entry.Size != 1 {
		t.Errorf("got %s.%d", entry.Op, entry.Size)
	}
	//
	str, ok := entry.Arg1.(*ir.String)
	//
	if !ok || string(str.Bytes) != "hello\x00" {
		t.Errorf("got %v", entry.Arg1)
	}
}

func TestTranslate_03(t *testing.T) {
	// Ternary lowering: fresh temp, jump-if-not to the else arm, a move per
	// arm, and a join label.
	fragments := translateOne(t, "test.tc", true, `module a;
int pickValue(bool c, int a, int b) {
	return c ? a : b;
}
`)
	//
	text := textFragment(t, fragments)
	//
	var (
		jumpAt, move1At, jumpEndAt, elseAt, move2At, endAt = -1, -1, -1, -1, -1, -1
		dest                                               *ir.Temp
	)
	//
	for i, entry := range text.Code {
		switch {
		case entry.Op == ir.JE && jumpAt < 0:
			jumpAt = i
		case entry.Op == ir.MOVE && entry.Size == 4 && jumpAt >= 0 && move1At < 0:
			move1At = i
			dest = entry.Dest.(*ir.Temp)
		case entry.Op == ir.JUMP && move1At >= 0 && jumpEndAt < 0:
			jumpEndAt = i
		case entry.Op == ir.LABEL && jumpEndAt >= 0 && elseAt < 0:
			elseAt = i
		case entry.Op == ir.MOVE && entry.Size == 4 && elseAt >= 0 && move2At < 0:
			move2At = i
			//
			if entry.Dest.(*ir.Temp).Id != dest.Id {
				t.Errorf("arms write different temps")
			}
		case entry.Op == ir.LABEL && move2At >= 0 && endAt < 0:
			endAt = i
		}
	}
	//
	if endAt < 0 {
		t.Fatalf("ternary shape not found:\n%s", DumpFragment(text))
	}
}

func TestTranslate_04(t *testing.T) {
	// For-header variables are shadowed by body locals without conflict.
	fragments := translateOne(t, "test.tc", true, `module a;
void loop(int n) {
	for (int i = 0; i < n; ++i) {
		int i = 42;
	}
}
`)
	//
	textFragment(t, fragments)
}

func TestTranslate_05(t *testing.T) {
	// Temporaries are dense and strictly monotonic within a function.
	fragments := translateOne(t, "test.tc", true, `module a;
int sum(int a, int b, int c) {
	return a + b * c - a / b;
}
`)
	//
	var (
		text = textFragment(t, fragments)
		seen = make(map[uint]bool)
		high = uint(0)
	)
	//
	for _, entry := range text.Code {
		for _, op := range []ir.Operand{entry.Dest, entry.Arg1, entry.Arg2} {
			if temp, ok := op.(*ir.Temp); ok {
				seen[temp.Id] = true
				high = max(high, temp.Id)
			}
		}
	}
	//
	for id := uint(0); id <= high; id++ {
		if !seen[id] {
			t.Errorf("temp ids not dense: %d unused", id)
		}
	}
}

func TestTranslate_06(t *testing.T) {
	// Every return jumps to the single exit label.
	fragments := translateOne(t, "test.tc", true, `module a;
int signum(int x) {
	if (x > 0) {
		return 1;
	}
	if (x < 0) {
		return -1;
	}
	return 0;
}
`)
	//
	var (
		text   = textFragment(t, fragments)
		jumps  = make(map[string]int)
		labels = make(map[string]int)
	)
	//
	for _, entry := range text.Code {
		switch entry.Op {
		case ir.JUMP:
			jumps[entry.Dest.(*ir.Name).Label]++
		case ir.LABEL:
			labels[entry.Dest.(*ir.Name).Label]++
		}
	}
	// One label must collect all three return jumps.
	found := false
	//
	for label, count := range jumps {
		if count == 3 {
			found = true
			//
			if labels[label] != 1 {
				t.Errorf("exit label %s defined %d times", label, labels[label])
			}
		}
	}
	//
	if !found {
		t.Errorf("no common exit label:\n%s", DumpFragment(text))
	}
}

func TestTranslate_07(t *testing.T) {
	// String literals in expressions intern a private rodata fragment and
	// yield a reference to it.
	fragments := translateOne(t, "test.tc", true, `module a;
ubyte* message() {
	return "hi";
}
`)
	//
	var rodata *ir.RoData
	//
	for _, fragment := range fragments {
		if f, ok := fragment.(*ir.RoData); ok {
			rodata = f
		}
	}
	//
	if rodata == nil {
		t.Fatalf("string was not interned")
	}
	//
	str := rodata.Code[0].Arg1.(*ir.String)
	//
	if string(str.Bytes) != "hi\x00" {
		t.Errorf("got %q", str.Bytes)
	}
}

func TestTranslate_08(t *testing.T) {
	// Short-circuit conditions chain jumps without materialising booleans.
	fragments := translateOne(t, "test.tc", true, `module a;
int f(int x, int y) {
	if (x < 10 && y > 0) {
		return 1;
	}
	return 0;
}
`)
	//
	var (
		text  = textFragment(t, fragments)
		jumps = 0
	)
	//
	for _, entry := range text.Code {
		if entry.Op == ir.JGE || entry.Op == ir.JLE {
			jumps++
		}
	}
	// Both comparisons lower to (negated) conditional jumps.
	if jumps != 2 {
		t.Errorf("got %d conditional jumps:\n%s", jumps, DumpFragment(text))
	}
}

func TestTranslate_09(t *testing.T) {
	// Inline assembly passes through verbatim.
	fragments := translateOne(t, "test.tc", true, `module a;
void nop() {
	asm("nop");
}
`)
	//
	var (
		text  = textFragment(t, fragments)
		found = false
	)
	//
	for _, entry := range text.Code {
		if entry.Op == ir.ASM && entry.Arg1.(*ir.Asm).Text == "nop" {
			found = true
		}
	}
	//
	if !found {
		t.Errorf("asm entry missing")
	}
}

func TestTranslate_10(t *testing.T) {
	// Switch cases chain equality jumps and never fall through.
	fragments := translateOne(t, "test.tc", true, `module a;
int f(int x) {
	switch (x) {
	case 1:
		return 10;
	case 2:
		return 20;
	default:
		return 0;
	}
}
`)
	//
	var (
		text = textFragment(t, fragments)
		jes  = 0
	)
	//
	for _, entry := range text.Code {
		if entry.Op == ir.JE {
			jes++
		}
	}
	//
	if jes != 2 {
		t.Errorf("got %d case compares:\n%s", jes, DumpFragment(text))
	}
}

func TestTranslate_11(t *testing.T) {
	// Aggregate initialisers build an in-memory temporary field by field;
	// array indexing loads through a computed address.
	fragments := translateOne(t, "test.tc", true, `module a;
int f(int i) {
	int[3] v = <1, 2, 3>;
	return v[i];
}
`)
	//
	var (
		text   = textFragment(t, fragments)
		stores = 0
		loads  = 0
	)
	//
	for _, entry := range text.Code {
		switch entry.Op {
		case ir.OFFSET_STORE:
			stores++
		case ir.MEM_LOAD:
			loads++
		}
	}
	//
	if stores != 3 || loads != 1 {
		t.Errorf("got %d stores, %d loads:\n%s", stores, loads, DumpFragment(text))
	}
}

func TestTranslate_12(t *testing.T) {
	// Direct calls target the callee's mangled label, with arguments staged
	// into the integer argument registers.
	fragments := translateOne(t, "test.tc", true, `module a;
int add(int x, int y) { return x + y; }
int run() { return add(1, 2); }
`)
	//
	var run *ir.Text
	// A zero-argument function mangles without argument codes.
	for _, fragment := range fragments {
		if f, ok := fragment.(*ir.Text); ok && f.Name == "__Z1a3run" {
			run = f
		}
	}
	//
	if run == nil {
		t.Fatalf("run fragment missing")
	}
	//
	found := false
	//
	for _, entry := range run.Code {
		if entry.Op == ir.CALL {
			if name, ok := entry.Arg1.(*ir.Name); ok && name.Label == "__Z1a3addsisi" {
				found = true
			}
		}
	}
	//
	if !found {
		t.Errorf("call to mangled label missing:\n%s", DumpFragment(run))
	}
}

// ==================================================================
// Framework
// ==================================================================

// translateOne runs the full pipeline over a single unit and returns its
// fragments.
func translateOne(t *testing.T, filename string, isCode bool, text string) []ir.Fragment {
	var (
		unit    = NewUnit(source.NewSourceFile(filename, []byte(text)), isCode)
		program = NewProgram()
	)
	//
	program.AddUnit(unit)
	//
	if _, errs := NewParser(unit, program).Parse(); len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	//
	if errs := NewChecker(program).Check(); len(errs) != 0 {
		t.Fatalf("unexpected check errors: %v", errs)
	}
	//
	AllocateAccesses(program)
	//
	translator := NewTranslator(program, frame.NewX86_64, ir.NewLabelGenerator())
	//
	return translator.TranslateUnit(unit)
}

// textFragment returns the sole text fragment among a set of fragments.
func textFragment(t *testing.T, fragments []ir.Fragment) *ir.Text {
	var text *ir.Text
	//
	for _, fragment := range fragments {
		if f, ok := fragment.(*ir.Text); ok {
			if text != nil {
				t.Fatalf("multiple text fragments")
			}
			//
			text = f
		}
	}
	//
	if text == nil {
		t.Fatalf("no text fragment")
	}
	//
	return text
}
