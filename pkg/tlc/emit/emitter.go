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

// Package emit owns the textual assembly file skeleton: section directives,
// labels, data layout and alignment.  Instruction selection for text
// fragments is the backend's concern, which sits behind the Backend
// interface; the built-in listing backend renders the linearised IR so the
// toolchain is usable without the external code generator.
package emit

import (
	"fmt"
	"io"
	"strings"

	"github.com/tlang-dev/tlc/pkg/tlc/ir"
)

// Backend lowers the body of one text fragment into target instructions.
type Backend interface {
	// LowerText writes the instructions of a text fragment.
	LowerText(w io.Writer, fragment *ir.Text) error
}

// WriteAssembly writes a complete assembly file for a set of fragments,
// delegating text bodies to the given backend.  Data fragments emit one
// directive per CONST entry, sized to the entry's width.
func WriteAssembly(w io.Writer, fragments []ir.Fragment, backend Backend) error {
	var (
		bss    []*ir.Bss
		rodata []*ir.RoData
		data   []*ir.Data
		text   []*ir.Text
	)
	//
	for _, fragment := range fragments {
		switch f := fragment.(type) {
		case *ir.Bss:
			bss = append(bss, f)
		case *ir.RoData:
			rodata = append(rodata, f)
		case *ir.Data:
			data = append(data, f)
		case *ir.Text:
			text = append(text, f)
		}
	}
	//
	if len(bss) > 0 {
		fmt.Fprintln(w, "\t.bss")
		//
		for _, f := range bss {
			fmt.Fprintf(w, "\t.align %d\n%s:\n\t.zero %d\n", f.Align, f.Name, f.Size)
		}
	}
	//
	if len(rodata) > 0 {
		fmt.Fprintln(w, "\t.section .rodata")
		//
		for _, f := range rodata {
			writeDataFragment(w, f.Name, f.Align, f.Code)
		}
	}
	//
	if len(data) > 0 {
		fmt.Fprintln(w, "\t.data")
		//
		for _, f := range data {
			writeDataFragment(w, f.Name, f.Align, f.Code)
		}
	}
	//
	if len(text) > 0 {
		fmt.Fprintln(w, "\t.text")
		//
		for _, f := range text {
			fmt.Fprintf(w, "\t.globl %s\n%s:\n", f.Name, f.Name)
			//
			if err := backend.LowerText(w, f); err != nil {
				return err
			}
		}
	}
	//
	return nil
}

func writeDataFragment(w io.Writer, name string, align uint, code []ir.Entry) {
	fmt.Fprintf(w, "\t.align %d\n%s:\n", align, name)
	//
	for _, entry := range code {
		writeDatum(w, entry)
	}
}

// writeDatum emits the directive for a single CONST entry.
func writeDatum(w io.Writer, entry ir.Entry) {
	switch value := entry.Arg1.(type) {
	case *ir.Constant:
		fmt.Fprintf(w, "\t%s %d\n", sizeDirective(entry.Size), value.Bits)
	case *ir.Name:
		fmt.Fprintf(w, "\t.quad %s\n", value.Label)
	case *ir.String:
		fmt.Fprintf(w, "\t.ascii \"%s\"\n", escapeAscii(value.Bytes))
	case *ir.WString:
		for _, r := range value.Codepoints {
			fmt.Fprintf(w, "\t.long %d\n", r)
		}
	default:
		panic("unexpected data operand")
	}
}

func sizeDirective(size uint) string {
	switch size {
	case 1:
		return ".byte"
	case 2:
		return ".value"
	case 4:
		return ".long"
	case 8:
		return ".quad"
	}
	//
	panic(fmt.Sprintf("unexpected datum size %d", size))
}

func escapeAscii(bytes []byte) string {
	var builder strings.Builder
	//
	for _, b := range bytes {
		switch {
		case b == '"' || b == '\\':
			fmt.Fprintf(&builder, "\\%c", b)
		case b >= 32 && b < 127:
			builder.WriteByte(b)
		default:
			fmt.Fprintf(&builder, "\\%03o", b)
		}
	}
	//
	return builder.String()
}

// ============================================================================
// Listing backend
// ============================================================================

// ListingBackend renders text fragments as the linearised IR, one entry per
// line.  It stands in for the external instruction selector.
type ListingBackend struct{}

// NewListingBackend constructs a listing backend.
func NewListingBackend() *ListingBackend {
	return &ListingBackend{}
}

// LowerText writes the linearised IR of a text fragment.
func (p *ListingBackend) LowerText(w io.Writer, fragment *ir.Text) error {
	for i := range fragment.Code {
		if _, err := fmt.Fprintln(w, fragment.Code[i].String()); err != nil {
			return err
		}
	}
	//
	return nil
}
