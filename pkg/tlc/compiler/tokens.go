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
	"github.com/tlang-dev/tlc/pkg/tlc/types"
	"github.com/tlang-dev/tlc/pkg/util/source"
)

// Token associates a kind with a given range of characters in the source
// file being lexed.  The token's text (for identifiers and literals) is
// recovered from the span.
type Token struct {
	Kind uint
	Span source.Span
}

// END_OF signals "end of file"
const END_OF uint = 0

// IDENTIFIER signals an unscoped identifier which does not currently denote
// a type.
const IDENTIFIER uint = 1

// TYPE_IDENTIFIER signals an unscoped identifier which currently denotes a
// type.
const TYPE_IDENTIFIER uint = 2

// SCOPED_IDENTIFIER signals a scoped identifier (e.g. "a::b::c") which does
// not currently denote a type.
const SCOPED_IDENTIFIER uint = 3

// SCOPED_TYPE_IDENTIFIER signals a scoped identifier which currently
// denotes a type.
const SCOPED_TYPE_IDENTIFIER uint = 4

// NUMBER signals an integer literal (decimal, hex, octal or binary).
const NUMBER uint = 5

// FLOAT_NUMBER signals a floating point literal.
const FLOAT_NUMBER uint = 6

// STRING signals a narrow string literal.
const STRING uint = 7

// WSTRING signals a wide string literal.
const WSTRING uint = 8

// CHARACTER signals a narrow character literal.
const CHARACTER uint = 9

// WCHARACTER signals a wide character literal.
const WCHARACTER uint = 10

// Punctuation.
const (
	// LBRACE signals "("
	LBRACE uint = iota + 11
	// RBRACE signals ")"
	RBRACE
	// LCURLY signals "{"
	LCURLY
	// RCURLY signals "}"
	RCURLY
	// LSQUARE signals "["
	LSQUARE
	// RSQUARE signals "]"
	RSQUARE
	// SEMICOLON signals ";"
	SEMICOLON
	// COLON signals ":"
	COLON
	// COMMA signals ","
	COMMA
	// QUESTION signals "?"
	QUESTION
	// DOT signals "."
	DOT
	// RIGHTARROW signals "->"
	RIGHTARROW
	// PLUS signals "+"
	PLUS
	// MINUS signals "-"
	MINUS
	// STAR signals "*"
	STAR
	// SLASH signals "/"
	SLASH
	// PERCENT signals "%"
	PERCENT
	// AMPERSAND signals "&"
	AMPERSAND
	// BAR signals "|"
	BAR
	// CARET signals "^"
	CARET
	// TILDE signals "~"
	TILDE
	// SHRIEK signals "!"
	SHRIEK
	// LESS_THAN signals "<"
	LESS_THAN
	// GREATER_THAN signals ">"
	GREATER_THAN
	// LESS_THAN_EQUALS signals "<="
	LESS_THAN_EQUALS
	// GREATER_THAN_EQUALS signals ">="
	GREATER_THAN_EQUALS
	// EQUALS_EQUALS signals "=="
	EQUALS_EQUALS
	// SHRIEK_EQUALS signals "!="
	SHRIEK_EQUALS
	// SPACESHIP signals "<=>"
	SPACESHIP
	// SHIFT_LEFT signals "<<"
	SHIFT_LEFT
	// SHIFT_RIGHT signals ">>" (the logical right shift)
	SHIFT_RIGHT
	// SHIFT_ARIGHT signals ">>>" (the arithmetic right shift)
	SHIFT_ARIGHT
	// EQUALS signals "="
	EQUALS
	// PLUS_EQUALS signals "+="
	PLUS_EQUALS
	// MINUS_EQUALS signals "-="
	MINUS_EQUALS
	// STAR_EQUALS signals "*="
	STAR_EQUALS
	// SLASH_EQUALS signals "/="
	SLASH_EQUALS
	// PERCENT_EQUALS signals "%="
	PERCENT_EQUALS
	// AMPERSAND_EQUALS signals "&="
	AMPERSAND_EQUALS
	// BAR_EQUALS signals "|="
	BAR_EQUALS
	// CARET_EQUALS signals "^="
	CARET_EQUALS
	// SHIFT_LEFT_EQUALS signals "<<="
	SHIFT_LEFT_EQUALS
	// SHIFT_RIGHT_EQUALS signals ">>="
	SHIFT_RIGHT_EQUALS
	// SHIFT_ARIGHT_EQUALS signals ">>>="
	SHIFT_ARIGHT_EQUALS
	// AMPERSAND_AMPERSAND signals "&&"
	AMPERSAND_AMPERSAND
	// BAR_BAR signals "||"
	BAR_BAR
	// AMPERSAND_AMPERSAND_EQUALS signals "&&="
	AMPERSAND_AMPERSAND_EQUALS
	// BAR_BAR_EQUALS signals "||="
	BAR_BAR_EQUALS
	// PLUS_PLUS signals "++"
	PLUS_PLUS
	// MINUS_MINUS signals "--"
	MINUS_MINUS
)

// Keywords.
const (
	// KEYWORD_MODULE signals "module"
	KEYWORD_MODULE uint = iota + 128
	// KEYWORD_USING signals "using"
	KEYWORD_USING
	// KEYWORD_STRUCT signals "struct"
	KEYWORD_STRUCT
	// KEYWORD_UNION signals "union"
	KEYWORD_UNION
	// KEYWORD_ENUM signals "enum"
	KEYWORD_ENUM
	// KEYWORD_TYPEDEF signals "typedef"
	KEYWORD_TYPEDEF
	// KEYWORD_OPAQUE signals "opaque"
	KEYWORD_OPAQUE
	// KEYWORD_IF signals "if"
	KEYWORD_IF
	// KEYWORD_ELSE signals "else"
	KEYWORD_ELSE
	// KEYWORD_WHILE signals "while"
	KEYWORD_WHILE
	// KEYWORD_DO signals "do"
	KEYWORD_DO
	// KEYWORD_FOR signals "for"
	KEYWORD_FOR
	// KEYWORD_SWITCH signals "switch"
	KEYWORD_SWITCH
	// KEYWORD_CASE signals "case"
	KEYWORD_CASE
	// KEYWORD_DEFAULT signals "default"
	KEYWORD_DEFAULT
	// KEYWORD_BREAK signals "break"
	KEYWORD_BREAK
	// KEYWORD_CONTINUE signals "continue"
	KEYWORD_CONTINUE
	// KEYWORD_RETURN signals "return"
	KEYWORD_RETURN
	// KEYWORD_ASM signals "asm"
	KEYWORD_ASM
	// KEYWORD_CAST signals "cast"
	KEYWORD_CAST
	// KEYWORD_SIZEOF signals "sizeof"
	KEYWORD_SIZEOF
	// KEYWORD_TRUE signals "true"
	KEYWORD_TRUE
	// KEYWORD_FALSE signals "false"
	KEYWORD_FALSE
	// KEYWORD_NULL signals "null"
	KEYWORD_NULL
	// KEYWORD_CONST signals "const"
	KEYWORD_CONST
	// KEYWORD_VOLATILE signals "volatile"
	KEYWORD_VOLATILE
	// KEYWORD_VOID signals "void"
	KEYWORD_VOID
	// KEYWORD_BOOL signals "bool"
	KEYWORD_BOOL
	// KEYWORD_BYTE signals "byte"
	KEYWORD_BYTE
	// KEYWORD_UBYTE signals "ubyte"
	KEYWORD_UBYTE
	// KEYWORD_CHAR signals "char"
	KEYWORD_CHAR
	// KEYWORD_SHORT signals "short"
	KEYWORD_SHORT
	// KEYWORD_USHORT signals "ushort"
	KEYWORD_USHORT
	// KEYWORD_INT signals "int"
	KEYWORD_INT
	// KEYWORD_UINT signals "uint"
	KEYWORD_UINT
	// KEYWORD_WCHAR signals "wchar"
	KEYWORD_WCHAR
	// KEYWORD_LONG signals "long"
	KEYWORD_LONG
	// KEYWORD_ULONG signals "ulong"
	KEYWORD_ULONG
	// KEYWORD_FLOAT signals "float"
	KEYWORD_FLOAT
	// KEYWORD_DOUBLE signals "double"
	KEYWORD_DOUBLE
)

// keywords maps keyword text to its token kind.  The table is initialised
// once, before any file is lexed, and spans the whole run.
var keywords = map[string]uint{
	"module": KEYWORD_MODULE, "using": KEYWORD_USING,
	"struct": KEYWORD_STRUCT, "union": KEYWORD_UNION, "enum": KEYWORD_ENUM,
	"typedef": KEYWORD_TYPEDEF, "opaque": KEYWORD_OPAQUE,
	"if": KEYWORD_IF, "else": KEYWORD_ELSE, "while": KEYWORD_WHILE,
	"do": KEYWORD_DO, "for": KEYWORD_FOR, "switch": KEYWORD_SWITCH,
	"case": KEYWORD_CASE, "default": KEYWORD_DEFAULT, "break": KEYWORD_BREAK,
	"continue": KEYWORD_CONTINUE, "return": KEYWORD_RETURN, "asm": KEYWORD_ASM,
	"cast": KEYWORD_CAST, "sizeof": KEYWORD_SIZEOF,
	"true": KEYWORD_TRUE, "false": KEYWORD_FALSE, "null": KEYWORD_NULL,
	"const": KEYWORD_CONST, "volatile": KEYWORD_VOLATILE,
	"void": KEYWORD_VOID, "bool": KEYWORD_BOOL, "byte": KEYWORD_BYTE,
	"ubyte": KEYWORD_UBYTE, "char": KEYWORD_CHAR, "short": KEYWORD_SHORT,
	"ushort": KEYWORD_USHORT, "int": KEYWORD_INT, "uint": KEYWORD_UINT,
	"wchar": KEYWORD_WCHAR, "long": KEYWORD_LONG, "ulong": KEYWORD_ULONG,
	"float": KEYWORD_FLOAT, "double": KEYWORD_DOUBLE,
}

// typeKeywords maps the primitive type keywords onto their type kind.
var typeKeywords = map[uint]types.Kind{
	KEYWORD_VOID: types.VOID, KEYWORD_BOOL: types.BOOL,
	KEYWORD_BYTE: types.SBYTE, KEYWORD_UBYTE: types.UBYTE,
	KEYWORD_CHAR: types.CHAR, KEYWORD_SHORT: types.SSHORT,
	KEYWORD_USHORT: types.USHORT, KEYWORD_INT: types.SINT,
	KEYWORD_UINT: types.UINT, KEYWORD_WCHAR: types.WCHAR,
	KEYWORD_LONG: types.SLONG, KEYWORD_ULONG: types.ULONG,
	KEYWORD_FLOAT: types.FLOAT, KEYWORD_DOUBLE: types.DOUBLE,
}

// tokenNames renders token kinds for diagnostics.
var tokenNames = map[uint]string{
	END_OF: "end of file", IDENTIFIER: "identifier",
	TYPE_IDENTIFIER: "type identifier", SCOPED_IDENTIFIER: "scoped identifier",
	SCOPED_TYPE_IDENTIFIER: "scoped type identifier",
	NUMBER:                 "number", FLOAT_NUMBER: "number", STRING: "string",
	WSTRING: "string", CHARACTER: "character", WCHARACTER: "character",
	LBRACE: "'('", RBRACE: "')'", LCURLY: "'{'", RCURLY: "'}'",
	LSQUARE: "'['", RSQUARE: "']'", SEMICOLON: "';'", COLON: "':'",
	COMMA: "','", QUESTION: "'?'", DOT: "'.'", RIGHTARROW: "'->'",
	PLUS: "'+'", MINUS: "'-'", STAR: "'*'", SLASH: "'/'", PERCENT: "'%'",
	AMPERSAND: "'&'", BAR: "'|'", CARET: "'^'", TILDE: "'~'", SHRIEK: "'!'",
	LESS_THAN: "'<'", GREATER_THAN: "'>'", LESS_THAN_EQUALS: "'<='",
	GREATER_THAN_EQUALS: "'>='", EQUALS_EQUALS: "'=='", SHRIEK_EQUALS: "'!='",
	SPACESHIP: "'<=>'", SHIFT_LEFT: "'<<'", SHIFT_RIGHT: "'>>'",
	SHIFT_ARIGHT: "'>>>'", EQUALS: "'='", PLUS_EQUALS: "'+='",
	MINUS_EQUALS: "'-='", STAR_EQUALS: "'*='", SLASH_EQUALS: "'/='",
	PERCENT_EQUALS: "'%='", AMPERSAND_EQUALS: "'&='", BAR_EQUALS: "'|='",
	CARET_EQUALS: "'^='", SHIFT_LEFT_EQUALS: "'<<='",
	SHIFT_RIGHT_EQUALS: "'>>='", SHIFT_ARIGHT_EQUALS: "'>>>='",
	AMPERSAND_AMPERSAND: "'&&'", BAR_BAR: "'||'",
	AMPERSAND_AMPERSAND_EQUALS: "'&&='", BAR_BAR_EQUALS: "'||='",
	PLUS_PLUS: "'++'", MINUS_MINUS: "'--'",
}

func init() {
	// Keywords render as themselves.
	for text, kind := range keywords {
		tokenNames[kind] = "'" + text + "'"
	}
}

// NameOf renders a token kind for use in diagnostics.
func NameOf(kind uint) string {
	if name, ok := tokenNames[kind]; ok {
		return name
	}
	//
	return "token"
}
