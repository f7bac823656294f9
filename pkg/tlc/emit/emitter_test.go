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
package emit

import (
	"bytes"
	"strings"
	"testing"

	"github.com/tlang-dev/tlc/pkg/tlc/ir"
)

func TestEmit_01(t *testing.T) {
	fragments := []ir.Fragment{
		&ir.Bss{Name: "__Z1a1x", Size: 4, Align: 4},
	}
	//
	out := write(t, fragments)
	//
	for _, want := range []string{"\t.bss", "__Z1a1x:", "\t.zero 4", "\t.align 4"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestEmit_02(t *testing.T) {
	// Data directives are sized to the entry's width.
	fragments := []ir.Fragment{
		&ir.Data{Name: "d", Align: 8, Code: []ir.Entry{
			ir.NewConst(1, ir.NewConstant(7, 1)),
			ir.NewConst(2, ir.NewConstant(8, 2)),
			ir.NewConst(4, ir.NewConstant(9, 4)),
			ir.NewConst(8, ir.NewConstant(10, 8)),
		}},
	}
	//
	out := write(t, fragments)
	//
	for _, want := range []string{"\t.byte 7", "\t.value 8", "\t.long 9", "\t.quad 10"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestEmit_03(t *testing.T) {
	// Strings escape non-printable bytes; label references use .quad.
	fragments := []ir.Fragment{
		&ir.RoData{Name: ".LC0", Align: 1, Code: []ir.Entry{
			ir.NewConst(1, &ir.String{Bytes: []byte("hi\x00")}),
		}},
		&ir.Data{Name: "p", Align: 8, Code: []ir.Entry{
			ir.NewConst(8, ir.NewName(".LC0")),
		}},
	}
	//
	out := write(t, fragments)
	//
	if !strings.Contains(out, `.ascii "hi\000"`) {
		t.Errorf("missing string in:\n%s", out)
	}
	//
	if !strings.Contains(out, "\t.quad .LC0") {
		t.Errorf("missing reference in:\n%s", out)
	}
}

func TestEmit_04(t *testing.T) {
	// Text fragments delegate to the backend.
	fragments := []ir.Fragment{
		&ir.Text{Name: "__Z1a1f", Code: []ir.Entry{
			ir.NewLabel(".L0"),
			ir.NewJump(".L0"),
		}},
	}
	//
	out := write(t, fragments)
	//
	for _, want := range []string{"\t.globl __Z1a1f", "__Z1a1f:", ".L0:", "JUMP .L0"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

// ==================================================================
// Framework
// ==================================================================

func write(t *testing.T, fragments []ir.Fragment) string {
	var buffer bytes.Buffer
	//
	if err := WriteAssembly(&buffer, fragments, NewListingBackend()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	//
	return buffer.String()
}
