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
	"strings"
	"testing"

	"github.com/tlang-dev/tlc/pkg/util/source"
)

func TestLexer_00(t *testing.T) {
	checkLexer(t, "", END_OF)
}

func TestLexer_01(t *testing.T) {
	checkLexer(t, "module a;", KEYWORD_MODULE, IDENTIFIER, SEMICOLON, END_OF)
}

func TestLexer_02(t *testing.T) {
	checkLexer(t, "int x;", KEYWORD_INT, IDENTIFIER, SEMICOLON, END_OF)
}

func TestLexer_03(t *testing.T) {
	// Scoped identifiers lex as a single token.
	checkLexer(t, "a::b::c", SCOPED_IDENTIFIER, END_OF)
}

func TestLexer_04(t *testing.T) {
	// Comments and whitespace are skipped.
	checkLexer(t, "x // comment\n/* block */ y", IDENTIFIER, IDENTIFIER, END_OF)
}

func TestLexer_05(t *testing.T) {
	// Compound operators take the longest match.
	checkLexer(t, ">>>= >>> >> > >= <=>",
		SHIFT_ARIGHT_EQUALS, SHIFT_ARIGHT, SHIFT_RIGHT, GREATER_THAN,
		GREATER_THAN_EQUALS, SPACESHIP, END_OF)
}

func TestLexer_06(t *testing.T) {
	checkLexer(t, "&&= && & &= || | ||=",
		AMPERSAND_AMPERSAND_EQUALS, AMPERSAND_AMPERSAND, AMPERSAND,
		AMPERSAND_EQUALS, BAR_BAR, BAR, BAR_BAR_EQUALS, END_OF)
}

func TestLexer_07(t *testing.T) {
	// Numeric literal forms.
	checkLexer(t, "123 0x1f 0b101 017 1.5",
		NUMBER, NUMBER, NUMBER, NUMBER, FLOAT_NUMBER, END_OF)
}

func TestLexer_08(t *testing.T) {
	// Strings and characters, narrow and wide.
	checkLexer(t, `"hi" L"wide" 'c' L'w'`,
		STRING, WSTRING, CHARACTER, WCHARACTER, END_OF)
}

func TestLexer_09(t *testing.T) {
	// Escape sequences pass through the literal scanner.
	checkLexer(t, `"a\n\t\x41\u00000041\\"`, STRING, END_OF)
}

func TestLexer_10(t *testing.T) {
	// Classifier turns known names into type identifiers.
	var (
		srcfile = source.NewSourceFile("test.tc", []byte("point p;"))
		lexer   = NewLexer(srcfile, func(name string) bool { return name == "point" })
	)
	//
	tok, errs := lexer.Lex()
	//
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	//
	if tok.Kind != TYPE_IDENTIFIER {
		t.Errorf("got kind %d, expected type identifier", tok.Kind)
	}
}

func TestLexer_11(t *testing.T) {
	// Unlexing a token makes the next lex return it unchanged.
	var (
		srcfile = source.NewSourceFile("test.tc", []byte("foo bar"))
		lexer   = NewLexer(srcfile, never)
	)
	//
	first, _ := lexer.Lex()
	lexer.Unlex(first)
	again, _ := lexer.Lex()
	//
	if first != again {
		t.Errorf("unlexed token differs: %v vs %v", first, again)
	}
	//
	second, _ := lexer.Lex()
	//
	if lexer.Text(second) != "bar" {
		t.Errorf("lost position after unlex: %s", lexer.Text(second))
	}
}

func TestLexer_12(t *testing.T) {
	// Invalid characters are reported and skipped.
	var (
		srcfile = source.NewSourceFile("test.tc", []byte("a @ b"))
		lexer   = NewLexer(srcfile, never)
	)
	//
	lexer.Lex() // a
	tok, errs := lexer.Lex()
	//
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}
	//
	if lexer.Text(tok) != "b" {
		t.Errorf("expected to resume at 'b', got %q", lexer.Text(tok))
	}
}

func TestLexer_13(t *testing.T) {
	// Token spans index the original text.
	var (
		srcfile = source.NewSourceFile("test.tc", []byte("int x;"))
		lexer   = NewLexer(srcfile, never)
	)
	//
	tok, _ := lexer.Lex()
	//
	if span := tok.Span; span.Start() != 0 || span.End() != 3 {
		t.Errorf("bad span: %d..%d", span.Start(), span.End())
	}
}

func TestLexer_14(t *testing.T) {
	// Empty character literals are rejected, narrow and wide alike.
	for _, input := range []string{"''", "L''"} {
		var (
			srcfile = source.NewSourceFile("test.tc", []byte(input))
			lexer   = NewLexer(srcfile, never)
		)
		//
		if _, errs := lexer.Lex(); len(errs) != 1 ||
			!strings.Contains(errs[0].Message(), "empty character literal") {
			t.Errorf("%s: got %v", input, errs)
		}
	}
}

func TestDecode_01(t *testing.T) {
	got, err := DecodeString(`"a\nb"`)
	//
	if err != nil || string(got) != "a\nb" {
		t.Errorf("got %q (%v)", string(got), err)
	}
}

func TestDecode_02(t *testing.T) {
	got, err := DecodeString(`L"\x41"`)
	//
	if err != nil || string(got) != "A" {
		t.Errorf("got %q (%v)", string(got), err)
	}
}

func TestDecode_03(t *testing.T) {
	got, err := DecodeCharacter(`'\0'`)
	//
	if err != nil || got != 0 {
		t.Errorf("got %d (%v)", got, err)
	}
}

func TestDecode_04(t *testing.T) {
	// Malformed literals decode to errors, never out-of-bounds panics.
	inputs := []string{`"\x1"`, `"\x"`, `"\xgg"`, `"\u041"`, `"\q"`, `"\"`, `"`}
	//
	for _, input := range inputs {
		if _, err := DecodeString(input); err == nil {
			t.Errorf("%q decoded without error", input)
		}
	}
	//
	if _, err := DecodeCharacter(`''`); err == nil {
		t.Errorf("empty character literal decoded without error")
	}
	//
	if _, err := DecodeCharacter(`'ab'`); err == nil {
		t.Errorf("multi-character literal decoded without error")
	}
}

// ==================================================================
// Framework
// ==================================================================

func never(string) bool {
	return false
}

func checkLexer(t *testing.T, input string, expected ...uint) {
	var (
		srcfile = source.NewSourceFile("test.tc", []byte(input))
		lexer   = NewLexer(srcfile, never)
	)
	//
	for i, kind := range expected {
		tok, errs := lexer.Lex()
		//
		if len(errs) != 0 {
			t.Fatalf("unexpected errors at token %d: %v", i, errs)
		}
		//
		if tok.Kind != kind {
			t.Errorf("token %d: got kind %d (%s), expected %d (%s)",
				i, tok.Kind, NameOf(tok.Kind), kind, NameOf(kind))
		}
	}
}
