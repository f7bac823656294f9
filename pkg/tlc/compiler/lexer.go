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
	"errors"
	"strings"

	"github.com/tlang-dev/tlc/pkg/util"
	"github.com/tlang-dev/tlc/pkg/util/source"
)

// Lexer is a pull-based token producer over a single source file.  It
// supports a single token of pushback, which is all the parser requires.
//
// Identifier classification is context sensitive: an identifier which
// currently denotes a type is returned as a type identifier.  That decision
// is delegated to a classifier callback so the lexer itself never touches
// the symbol table.  The classifier must be monotone across a single file:
// once a name denotes a type, it continues to do so until a new file begins.
type Lexer struct {
	srcfile *source.File
	items   []rune
	index   int
	// Single token pushback buffer.
	pushback util.Option[Token]
	// Classifier deciding whether a name currently denotes a type.
	isType func(string) bool
}

// NewLexer constructs a new lexer over a given source file, with a given
// type-name classifier.
func NewLexer(srcfile *source.File, isType func(string) bool) *Lexer {
	return &Lexer{srcfile, srcfile.Contents(), 0, util.None[Token](), isType}
}

// SourceFile returns the file this lexer is lexing.
func (p *Lexer) SourceFile() *source.File {
	return p.srcfile
}

// Text returns the source text of a given token.
func (p *Lexer) Text(token Token) string {
	return p.srcfile.Text(token.Span)
}

// Unlex pushes a single token back onto this lexer, such that the next call
// to Lex returns it again.
func (p *Lexer) Unlex(token Token) {
	if p.pushback.HasValue() {
		// Should be unreachable, as the parser never needs more.
		panic("multiple tokens of pushback required")
	}
	//
	p.pushback = util.Some(token)
}

// Lex returns the next token, along with any syntax errors arising.  At the
// end of the file it forever returns the END_OF token.
func (p *Lexer) Lex() (Token, []source.SyntaxError) {
	// Check pushback buffer first.
	if p.pushback.HasValue() {
		token := p.pushback.Unwrap()
		p.pushback = util.None[Token]()
		//
		return token, nil
	}
	// Skip whitespace and comments.
	if errs := p.skipWhitespace(); len(errs) > 0 {
		return p.eof(), errs
	}
	//
	if p.index >= len(p.items) {
		return p.eof(), nil
	}
	//
	ch := p.items[p.index]
	//
	switch {
	case ch == 'L' && p.peekIs(1, '"'):
		return p.scanString(WSTRING)
	case ch == 'L' && p.peekIs(1, '\''):
		return p.scanCharacter(WCHARACTER)
	case isIdentifierStart(ch):
		return p.scanIdentifier(), nil
	case isDigit(ch):
		return p.scanNumber()
	case ch == '"':
		return p.scanString(STRING)
	case ch == '\'':
		return p.scanCharacter(CHARACTER)
	}
	//
	return p.scanOperator()
}

func (p *Lexer) eof() Token {
	n := len(p.items)
	return Token{END_OF, source.NewSpan(n, n)}
}

// ============================================================================
// Whitespace & comments
// ============================================================================

func (p *Lexer) skipWhitespace() []source.SyntaxError {
	for p.index < len(p.items) {
		ch := p.items[p.index]
		//
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			p.index++
		case ch == '/' && p.peekIs(1, '/'):
			// Line comment
			for p.index < len(p.items) && p.items[p.index] != '\n' {
				p.index++
			}
		case ch == '/' && p.peekIs(1, '*'):
			if errs := p.skipBlockComment(); len(errs) > 0 {
				return errs
			}
		default:
			return nil
		}
	}
	//
	return nil
}

func (p *Lexer) skipBlockComment() []source.SyntaxError {
	start := p.index
	p.index += 2
	// Block comments do not nest.
	for p.index < len(p.items) {
		if p.items[p.index] == '*' && p.peekIs(1, '/') {
			p.index += 2
			return nil
		}
		//
		p.index++
	}
	//
	return p.syntaxErrors(source.NewSpan(start, p.index), "unterminated comment")
}

// ============================================================================
// Identifiers
// ============================================================================

func (p *Lexer) scanIdentifier() Token {
	var (
		start  = p.index
		scoped = false
	)
	//
	p.scanWord()
	// Scoped identifiers ("a::b::c") are lexed as a single token.
	for p.peekIs(0, ':') && p.peekIs(1, ':') && p.index+2 < len(p.items) &&
		isIdentifierStart(p.items[p.index+2]) {
		p.index += 2
		p.scanWord()
		//
		scoped = true
	}
	//
	var (
		span = source.NewSpan(start, p.index)
		text = p.srcfile.Text(span)
	)
	//
	if scoped {
		if p.isType(text) {
			return Token{SCOPED_TYPE_IDENTIFIER, span}
		}
		//
		return Token{SCOPED_IDENTIFIER, span}
	}
	//
	if kind, ok := keywords[text]; ok {
		return Token{kind, span}
	}
	//
	if p.isType(text) {
		return Token{TYPE_IDENTIFIER, span}
	}
	//
	return Token{IDENTIFIER, span}
}

func (p *Lexer) scanWord() {
	for p.index < len(p.items) && isIdentifierRest(p.items[p.index]) {
		p.index++
	}
}

// ============================================================================
// Numbers
// ============================================================================

func (p *Lexer) scanNumber() (Token, []source.SyntaxError) {
	start := p.index
	//
	if p.items[p.index] == '0' && (p.peekIs(1, 'x') || p.peekIs(1, 'b')) {
		// Hexadecimal or binary
		p.index += 2
		//
		digits := 0
		for p.index < len(p.items) && isHexDigit(p.items[p.index]) {
			p.index++
			digits++
		}
		//
		span := source.NewSpan(start, p.index)
		//
		if digits == 0 {
			return Token{NUMBER, span}, p.syntaxErrors(span, "malformed numeric literal")
		}
		//
		return Token{NUMBER, span}, nil
	}
	// Decimal (or octal, signalled by a leading zero).
	for p.index < len(p.items) && isDigit(p.items[p.index]) {
		p.index++
	}
	// Check for a float ("d.d" requires digits on both sides).
	if p.peekIs(0, '.') && p.index+1 < len(p.items) && isDigit(p.items[p.index+1]) {
		p.index++
		//
		for p.index < len(p.items) && isDigit(p.items[p.index]) {
			p.index++
		}
		//
		return Token{FLOAT_NUMBER, source.NewSpan(start, p.index)}, nil
	}
	//
	return Token{NUMBER, source.NewSpan(start, p.index)}, nil
}

// ============================================================================
// Strings & characters
// ============================================================================

func (p *Lexer) scanString(kind uint) (Token, []source.SyntaxError) {
	start := p.index
	// Skip wide prefix
	if kind == WSTRING {
		p.index++
	}
	// Skip opening quote
	p.index++
	//
	for p.index < len(p.items) {
		switch p.items[p.index] {
		case '"':
			p.index++
			return Token{kind, source.NewSpan(start, p.index)}, nil
		case '\n':
			// Strings may not cross lines.
			span := source.NewSpan(start, p.index)
			return Token{kind, span}, p.syntaxErrors(span, "unterminated string literal")
		case '\\':
			if errs := p.scanEscape(); len(errs) > 0 {
				return Token{kind, source.NewSpan(start, p.index)}, errs
			}
		default:
			p.index++
		}
	}
	//
	span := source.NewSpan(start, p.index)
	//
	return Token{kind, span}, p.syntaxErrors(span, "unterminated string literal")
}

func (p *Lexer) scanCharacter(kind uint) (Token, []source.SyntaxError) {
	var (
		start = p.index
		empty = false
	)
	// Skip wide prefix
	if kind == WCHARACTER {
		p.index++
	}
	// Skip opening quote
	p.index++
	//
	if p.peekIs(0, '\\') {
		if errs := p.scanEscape(); len(errs) > 0 {
			return Token{kind, source.NewSpan(start, p.index)}, errs
		}
	} else if p.index < len(p.items) && p.items[p.index] != '\'' {
		p.index++
	} else {
		empty = true
	}
	//
	if !p.peekIs(0, '\'') {
		span := source.NewSpan(start, p.index)
		return Token{kind, span}, p.syntaxErrors(span, "unterminated character literal")
	}
	//
	p.index++
	//
	span := source.NewSpan(start, p.index)
	//
	if empty {
		return Token{kind, span}, p.syntaxErrors(span, "empty character literal")
	}
	//
	return Token{kind, span}, nil
}

// scanEscape consumes a single escape sequence, starting at the backslash.
func (p *Lexer) scanEscape() []source.SyntaxError {
	start := p.index
	p.index++
	//
	if p.index >= len(p.items) {
		return p.syntaxErrors(source.NewSpan(start, p.index), "unterminated escape sequence")
	}
	//
	ch := p.items[p.index]
	p.index++
	//
	switch ch {
	case 'n', 'r', 't', '0', '"', '\'', '\\':
		return nil
	case 'x':
		return p.scanHexEscape(start, 2)
	case 'u':
		return p.scanHexEscape(start, 8)
	}
	//
	return p.syntaxErrors(source.NewSpan(start, p.index), "unknown escape sequence")
}

func (p *Lexer) scanHexEscape(start int, digits int) []source.SyntaxError {
	for i := 0; i < digits; i++ {
		if p.index >= len(p.items) || !isHexDigit(p.items[p.index]) {
			return p.syntaxErrors(source.NewSpan(start, p.index), "malformed escape sequence")
		}
		//
		p.index++
	}
	//
	return nil
}

// ============================================================================
// Operators
// ============================================================================

// operators maps punctuation text onto token kinds.  Longest matches are
// attempted first.
var operators = []struct {
	text string
	kind uint
}{
	{">>>=", SHIFT_ARIGHT_EQUALS},
	{"<<=", SHIFT_LEFT_EQUALS}, {">>=", SHIFT_RIGHT_EQUALS},
	{">>>", SHIFT_ARIGHT}, {"<=>", SPACESHIP},
	{"&&=", AMPERSAND_AMPERSAND_EQUALS}, {"||=", BAR_BAR_EQUALS},
	{"<<", SHIFT_LEFT}, {">>", SHIFT_RIGHT},
	{"<=", LESS_THAN_EQUALS}, {">=", GREATER_THAN_EQUALS},
	{"==", EQUALS_EQUALS}, {"!=", SHRIEK_EQUALS},
	{"&&", AMPERSAND_AMPERSAND}, {"||", BAR_BAR},
	{"++", PLUS_PLUS}, {"--", MINUS_MINUS}, {"->", RIGHTARROW},
	{"+=", PLUS_EQUALS}, {"-=", MINUS_EQUALS}, {"*=", STAR_EQUALS},
	{"/=", SLASH_EQUALS}, {"%=", PERCENT_EQUALS},
	{"&=", AMPERSAND_EQUALS}, {"|=", BAR_EQUALS}, {"^=", CARET_EQUALS},
	{"(", LBRACE}, {")", RBRACE}, {"{", LCURLY}, {"}", RCURLY},
	{"[", LSQUARE}, {"]", RSQUARE}, {";", SEMICOLON}, {":", COLON},
	{",", COMMA}, {"?", QUESTION}, {".", DOT},
	{"+", PLUS}, {"-", MINUS}, {"*", STAR}, {"/", SLASH}, {"%", PERCENT},
	{"&", AMPERSAND}, {"|", BAR}, {"^", CARET}, {"~", TILDE}, {"!", SHRIEK},
	{"<", LESS_THAN}, {">", GREATER_THAN}, {"=", EQUALS},
}

func (p *Lexer) scanOperator() (Token, []source.SyntaxError) {
	for _, op := range operators {
		if p.matches(op.text) {
			span := source.NewSpan(p.index, p.index+len(op.text))
			p.index += len(op.text)
			//
			return Token{op.kind, span}, nil
		}
	}
	// Invalid character: report it, skip it, and continue with whatever
	// follows.
	span := source.NewSpan(p.index, p.index+1)
	p.index++
	//
	errs := p.syntaxErrors(span, "invalid character '"+string(p.items[span.Start()])+"'")
	token, more := p.Lex()
	//
	return token, append(errs, more...)
}

// ============================================================================
// Helpers
// ============================================================================

func (p *Lexer) matches(text string) bool {
	if p.index+len(text) > len(p.items) {
		return false
	}
	//
	for i, ch := range text {
		if p.items[p.index+i] != ch {
			return false
		}
	}
	//
	return true
}

func (p *Lexer) peekIs(n int, ch rune) bool {
	return p.index+n < len(p.items) && p.items[p.index+n] == ch
}

func (p *Lexer) syntaxErrors(span source.Span, msg string) []source.SyntaxError {
	return []source.SyntaxError{*p.srcfile.SyntaxError(span, msg)}
}

func isIdentifierStart(ch rune) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentifierRest(ch rune) bool {
	return isIdentifierStart(ch) || isDigit(ch)
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch rune) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

// ============================================================================
// Literal decoding
// ============================================================================

// DecodeString decodes the body of a (narrow or wide) string literal,
// processing escape sequences.  The text includes the surrounding quotes and
// any wide prefix.  A malformed literal (already reported by the scanner)
// decodes to an error rather than a value.
func DecodeString(text string) ([]rune, error) {
	// Strip wide prefix
	text = strings.TrimPrefix(text, "L")
	//
	if len(text) < 2 {
		return nil, errors.New("malformed string literal")
	}
	// Strip quotes
	text = text[1 : len(text)-1]
	//
	var (
		runes  = []rune(text)
		result []rune
	)
	//
	for i := 0; i < len(runes); i++ {
		if runes[i] == '\\' {
			decoded, n, err := decodeEscape(runes[i+1:])
			//
			if err != nil {
				return nil, err
			}
			//
			result = append(result, decoded)
			i += n
		} else {
			result = append(result, runes[i])
		}
	}
	//
	return result, nil
}

// DecodeCharacter decodes a (narrow or wide) character literal, processing
// escape sequences.
func DecodeCharacter(text string) (rune, error) {
	runes, err := DecodeString(text)
	//
	if err != nil {
		return 0, err
	}
	//
	if len(runes) != 1 {
		return 0, errors.New("malformed character literal")
	}
	//
	return runes[0], nil
}

// decodeEscape decodes a single escape sequence (sans backslash), returning
// the decoded rune and the number of runes consumed.
func decodeEscape(runes []rune) (rune, int, error) {
	if len(runes) == 0 {
		return 0, 0, errors.New("unterminated escape sequence")
	}
	//
	switch runes[0] {
	case 'n':
		return '\n', 1, nil
	case 'r':
		return '\r', 1, nil
	case 't':
		return '\t', 1, nil
	case '0':
		return 0, 1, nil
	case '"':
		return '"', 1, nil
	case '\'':
		return '\'', 1, nil
	case '\\':
		return '\\', 1, nil
	case 'x':
		if value, ok := decodeHex(runes, 3); ok {
			return value, 3, nil
		}
	case 'u':
		if value, ok := decodeHex(runes, 9); ok {
			return value, 9, nil
		}
	default:
		return 0, 0, errors.New("unknown escape sequence")
	}
	//
	return 0, 0, errors.New("malformed escape sequence")
}

// decodeHex decodes the digits of a hex escape of a given total length
// (letter included), or fails when the text is short or not hexadecimal.
func decodeHex(runes []rune, length int) (rune, bool) {
	if len(runes) < length {
		return 0, false
	}
	//
	value := rune(0)
	//
	for _, ch := range runes[1:length] {
		switch {
		case isDigit(ch):
			value = (value << 4) | (ch - '0')
		case ch >= 'a' && ch <= 'f':
			value = (value << 4) | (ch - 'a' + 10)
		case ch >= 'A' && ch <= 'F':
			value = (value << 4) | (ch - 'A' + 10)
		default:
			return 0, false
		}
	}
	//
	return value, true
}
