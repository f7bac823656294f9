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
	"strconv"
	"strings"

	"github.com/tlang-dev/tlc/pkg/tlc/ast"
)

// Expression parsing uses precedence climbing.  The levels, from loosest to
// tightest: sequence (comma); ternary; assignment (right associative);
// logical or/and; bitwise or/xor/and; equality; relational; three-way
// comparison; shifts; additive; multiplicative; prefix; postfix; primary.

// binLevels describes one precedence level of left-associative binary
// operators: which tokens participate, and which AST operator each maps to.
var binLevels = [][]struct {
	token uint
	op    ast.BinKind
}{
	{{BAR, ast.BOR}},
	{{CARET, ast.BXOR}},
	{{AMPERSAND, ast.BAND}},
	{{SHIFT_LEFT, ast.SHL}, {SHIFT_RIGHT, ast.SHR}, {SHIFT_ARIGHT, ast.SAR}},
	{{PLUS, ast.ADD}, {MINUS, ast.SUB}},
	{{STAR, ast.MUL}, {SLASH, ast.DIV}, {PERCENT, ast.REM}},
}

// Indices into binLevels where the comparison levels interleave.
const (
	levelBitOr = iota
	levelBitXor
	levelBitAnd
	levelShift
	levelAdditive
	levelMultiplicative
)

// compoundAssignments maps compound assignment tokens onto the underlying
// binary operator.
var compoundAssignments = map[uint]ast.BinKind{
	PLUS_EQUALS: ast.ADD, MINUS_EQUALS: ast.SUB, STAR_EQUALS: ast.MUL,
	SLASH_EQUALS: ast.DIV, PERCENT_EQUALS: ast.REM,
	AMPERSAND_EQUALS: ast.BAND, BAR_EQUALS: ast.BOR, CARET_EQUALS: ast.BXOR,
	SHIFT_LEFT_EQUALS: ast.SHL, SHIFT_RIGHT_EQUALS: ast.SHR,
	SHIFT_ARIGHT_EQUALS: ast.SAR,
}

// parseExpression parses a full expression, including the sequence operator.
func (p *Parser) parseExpression() ast.Expr {
	lhs := p.parseTernary()
	//
	for lhs != nil {
		if _, ok := p.match(COMMA); !ok {
			break
		}
		//
		rhs := p.parseTernary()
		//
		if rhs == nil {
			return nil
		}
		//
		lhs = ast.NewSeq(lhs.Span().Join(rhs.Span()), lhs, rhs)
	}
	//
	return lhs
}

func (p *Parser) parseTernary() ast.Expr {
	cond := p.parseAssignExpr()
	//
	if cond == nil {
		return nil
	}
	//
	if _, ok := p.match(QUESTION); !ok {
		return cond
	}
	//
	then := p.parseTernary()
	//
	if then == nil {
		return nil
	}
	//
	if _, ok := p.expect(COLON); !ok {
		return nil
	}
	//
	els := p.parseTernary()
	//
	if els == nil {
		return nil
	}
	//
	return ast.NewTernary(cond.Span().Join(els.Span()), cond, then, els)
}

func (p *Parser) parseAssignExpr() ast.Expr {
	lhs := p.parseLogicalOr()
	//
	if lhs == nil {
		return nil
	}
	//
	token := p.lookahead()
	//
	switch {
	case token.Kind == EQUALS:
		p.advance()
		//
		if rhs := p.parseAssignExpr(); rhs != nil {
			return ast.NewAssign(lhs.Span().Join(rhs.Span()), lhs, rhs)
		}
	case token.Kind == AMPERSAND_AMPERSAND_EQUALS:
		p.advance()
		//
		if rhs := p.parseAssignExpr(); rhs != nil {
			return ast.NewLAndAssign(lhs.Span().Join(rhs.Span()), lhs, rhs)
		}
	case token.Kind == BAR_BAR_EQUALS:
		p.advance()
		//
		if rhs := p.parseAssignExpr(); rhs != nil {
			return ast.NewLOrAssign(lhs.Span().Join(rhs.Span()), lhs, rhs)
		}
	default:
		if op, ok := compoundAssignments[token.Kind]; ok {
			p.advance()
			//
			if rhs := p.parseAssignExpr(); rhs != nil {
				return ast.NewCompoundAssign(lhs.Span().Join(rhs.Span()), op, lhs, rhs)
			}
		} else {
			return lhs
		}
	}
	//
	return nil
}

func (p *Parser) parseLogicalOr() ast.Expr {
	lhs := p.parseLogicalAnd()
	//
	for lhs != nil {
		if _, ok := p.match(BAR_BAR); !ok {
			break
		}
		//
		rhs := p.parseLogicalAnd()
		//
		if rhs == nil {
			return nil
		}
		//
		lhs = ast.NewLOr(lhs.Span().Join(rhs.Span()), lhs, rhs)
	}
	//
	return lhs
}

func (p *Parser) parseLogicalAnd() ast.Expr {
	lhs := p.parseBinary(levelBitOr)
	//
	for lhs != nil {
		if _, ok := p.match(AMPERSAND_AMPERSAND); !ok {
			break
		}
		//
		rhs := p.parseBinary(levelBitOr)
		//
		if rhs == nil {
			return nil
		}
		//
		lhs = ast.NewLAnd(lhs.Span().Join(rhs.Span()), lhs, rhs)
	}
	//
	return lhs
}

func (p *Parser) parseEquality() ast.Expr {
	lhs := p.parseRelational()
	//
	for lhs != nil {
		var op ast.CmpKind
		//
		switch p.lookahead().Kind {
		case EQUALS_EQUALS:
			op = ast.EQ
		case SHRIEK_EQUALS:
			op = ast.NEQ
		default:
			return lhs
		}
		//
		p.advance()
		//
		rhs := p.parseRelational()
		//
		if rhs == nil {
			return nil
		}
		//
		lhs = ast.NewCompOp(lhs.Span().Join(rhs.Span()), op, lhs, rhs)
	}
	//
	return lhs
}

// parseBinary handles the left-associative operator levels, with the
// relational and three-way comparisons interleaved between the bitwise and
// shift levels per the language's precedence table.
func (p *Parser) parseBinary(level int) ast.Expr {
	if level > levelMultiplicative {
		return p.parsePrefix()
	}
	// The comparison levels (equality, relational, three-way) interleave
	// between bitwise-and and the shifts.
	next := func() ast.Expr {
		if level == levelBitAnd {
			return p.parseEquality()
		}
		//
		return p.parseBinary(level + 1)
	}
	//
	lhs := next()
	//
	for lhs != nil {
		matched := false
		//
		for _, entry := range binLevels[level] {
			if _, ok := p.match(entry.token); ok {
				rhs := next()
				//
				if rhs == nil {
					return nil
				}
				//
				lhs = ast.NewBinOp(lhs.Span().Join(rhs.Span()), entry.op, lhs, rhs)
				matched = true
				//
				break
			}
		}
		//
		if !matched {
			break
		}
	}
	//
	return lhs
}

func (p *Parser) parseRelational() ast.Expr {
	lhs := p.parseSpaceship()
	//
	for lhs != nil {
		var op ast.CmpKind
		//
		switch p.lookahead().Kind {
		case LESS_THAN:
			op = ast.LT
		case LESS_THAN_EQUALS:
			op = ast.LTEQ
		case GREATER_THAN:
			op = ast.GT
		case GREATER_THAN_EQUALS:
			op = ast.GTEQ
		default:
			return lhs
		}
		//
		p.advance()
		//
		rhs := p.parseSpaceship()
		//
		if rhs == nil {
			return nil
		}
		//
		lhs = ast.NewCompOp(lhs.Span().Join(rhs.Span()), op, lhs, rhs)
	}
	//
	return lhs
}

func (p *Parser) parseSpaceship() ast.Expr {
	lhs := p.parseBinary(levelShift)
	//
	for lhs != nil {
		if _, ok := p.match(SPACESHIP); !ok {
			break
		}
		//
		rhs := p.parseBinary(levelShift)
		//
		if rhs == nil {
			return nil
		}
		//
		lhs = ast.NewCompOp(lhs.Span().Join(rhs.Span()), ast.CMP, lhs, rhs)
	}
	//
	return lhs
}

// ============================================================================
// Prefix & postfix
// ============================================================================

var prefixOperators = map[uint]ast.UnKind{
	STAR: ast.DEREF, AMPERSAND: ast.ADDROF, PLUS: ast.POS, MINUS: ast.NEG,
	SHRIEK: ast.LNOT, TILDE: ast.BNOT, PLUS_PLUS: ast.PREINC,
	MINUS_MINUS: ast.PREDEC,
}

func (p *Parser) parsePrefix() ast.Expr {
	token := p.lookahead()
	//
	switch token.Kind {
	case KEYWORD_CAST:
		return p.parseCast()
	case KEYWORD_SIZEOF:
		return p.parseSizeof()
	}
	//
	if op, ok := prefixOperators[token.Kind]; ok {
		p.advance()
		//
		operand := p.parsePrefix()
		//
		if operand == nil {
			return nil
		}
		//
		return ast.NewUnOp(token.Span.Join(operand.Span()), op, operand)
	}
	//
	return p.parsePostfix()
}

func (p *Parser) parseCast() ast.Expr {
	start := p.lookahead()
	p.advance() // cast
	//
	if _, ok := p.expect(LSQUARE); !ok {
		return nil
	}
	//
	target := p.parseType()
	//
	if target == nil {
		return nil
	}
	//
	if _, ok := p.expect(RSQUARE); !ok {
		return nil
	}
	//
	if _, ok := p.expect(LBRACE); !ok {
		return nil
	}
	//
	operand := p.parseExpression()
	//
	if operand == nil {
		return nil
	}
	//
	end, ok := p.expect(RBRACE)
	//
	if !ok {
		return nil
	}
	//
	return ast.NewCast(start.Span.Join(end.Span), target, operand)
}

func (p *Parser) parseSizeof() ast.Expr {
	start := p.lookahead()
	p.advance() // sizeof
	//
	if _, ok := p.expect(LBRACE); !ok {
		return nil
	}
	// A type keyword or type identifier opens the type form; anything else
	// is an expression.
	if p.startsType(p.lookahead()) {
		target := p.parseType()
		//
		if target == nil {
			return nil
		}
		//
		end, ok := p.expect(RBRACE)
		//
		if !ok {
			return nil
		}
		//
		return ast.NewSizeofType(start.Span.Join(end.Span), target)
	}
	//
	operand := p.parseExpression()
	//
	if operand == nil {
		return nil
	}
	//
	end, ok := p.expect(RBRACE)
	//
	if !ok {
		return nil
	}
	//
	return ast.NewSizeofExp(start.Span.Join(end.Span), operand)
}

func (p *Parser) parsePostfix() ast.Expr {
	expr := p.parsePrimary()
	//
	for expr != nil {
		token := p.lookahead()
		//
		switch token.Kind {
		case DOT:
			p.advance()
			//
			field, ok := p.expectIdentifier()
			//
			if !ok {
				return nil
			}
			//
			expr = ast.NewStructAccess(expr.Span().Join(field.Span), expr, p.lexer.Text(field))
		case RIGHTARROW:
			p.advance()
			//
			field, ok := p.expectIdentifier()
			//
			if !ok {
				return nil
			}
			//
			expr = ast.NewStructPtrAccess(expr.Span().Join(field.Span), expr, p.lexer.Text(field))
		case LBRACE:
			expr = p.parseCallArgs(expr)
		case LSQUARE:
			p.advance()
			//
			index := p.parseExpression()
			//
			if index == nil {
				return nil
			}
			//
			end, ok := p.expect(RSQUARE)
			//
			if !ok {
				return nil
			}
			//
			expr = ast.NewIndex(expr.Span().Join(end.Span), expr, index)
		case PLUS_PLUS:
			p.advance()
			expr = ast.NewUnOp(expr.Span().Join(token.Span), ast.POSTINC, expr)
		case MINUS_MINUS:
			p.advance()
			expr = ast.NewUnOp(expr.Span().Join(token.Span), ast.POSTDEC, expr)
		default:
			return expr
		}
	}
	//
	return expr
}

func (p *Parser) parseCallArgs(fn ast.Expr) ast.Expr {
	var args []ast.Expr
	//
	p.advance() // (
	//
	for p.lookahead().Kind != RBRACE {
		if len(args) > 0 {
			if _, ok := p.expect(COMMA); !ok {
				return nil
			}
		}
		// Sequence expressions require parentheses in argument position.
		arg := p.parseTernary()
		//
		if arg == nil {
			return nil
		}
		//
		args = append(args, arg)
	}
	//
	end := p.advance() // )
	//
	return ast.NewFnCall(fn.Span().Join(end.Span), fn, args)
}

// ============================================================================
// Primary expressions
// ============================================================================

func (p *Parser) parsePrimary() ast.Expr {
	token := p.lookahead()
	//
	switch token.Kind {
	case IDENTIFIER:
		p.advance()
		return ast.NewId(token.Span, nil, p.lexer.Text(token))
	case SCOPED_IDENTIFIER:
		p.advance()
		//
		segments := strings.Split(p.lexer.Text(token), "::")
		//
		return ast.NewId(token.Span, segments[:len(segments)-1], segments[len(segments)-1])
	case NUMBER:
		return p.parseIntLiteral()
	case FLOAT_NUMBER:
		p.advance()
		//
		value, err := strconv.ParseFloat(p.lexer.Text(token), 64)
		//
		if err != nil {
			p.syntaxError(token.Span, "malformed numeric literal")
			return nil
		}
		//
		return ast.NewFloatConst(token.Span, value)
	case STRING:
		p.advance()
		// A malformed literal was already reported when it was lexed.
		if text, err := DecodeString(p.lexer.Text(token)); err == nil {
			return ast.NewStringConst(token.Span, string(text))
		}
		//
		return nil
	case WSTRING:
		p.advance()
		//
		if runes, err := DecodeString(p.lexer.Text(token)); err == nil {
			return ast.NewWStringConst(token.Span, runes)
		}
		//
		return nil
	case CHARACTER:
		p.advance()
		//
		if value, err := DecodeCharacter(p.lexer.Text(token)); err == nil {
			return ast.NewCharConst(token.Span, byte(value))
		}
		//
		return nil
	case WCHARACTER:
		p.advance()
		//
		if value, err := DecodeCharacter(p.lexer.Text(token)); err == nil {
			return ast.NewWCharConst(token.Span, value)
		}
		//
		return nil
	case KEYWORD_TRUE:
		p.advance()
		return ast.NewBoolConst(token.Span, true)
	case KEYWORD_FALSE:
		p.advance()
		return ast.NewBoolConst(token.Span, false)
	case KEYWORD_NULL:
		p.advance()
		return ast.NewNullConst(token.Span)
	case LESS_THAN:
		return p.parseAggregateInit()
	case LBRACE:
		p.advance()
		//
		expr := p.parseExpression()
		//
		if expr == nil {
			return nil
		}
		//
		if _, ok := p.expect(RBRACE); !ok {
			return nil
		}
		//
		return expr
	}
	//
	p.expectedError(token, "expression")
	//
	return nil
}

func (p *Parser) parseIntLiteral() ast.Expr {
	token := p.advance()
	// Base 0 handles the 0x, 0b and leading-zero octal forms.
	value, err := strconv.ParseInt(p.lexer.Text(token), 0, 64)
	//
	if err != nil {
		// Large unsigned values still fit in the operand's 64 bits.
		uvalue, uerr := strconv.ParseUint(p.lexer.Text(token), 0, 64)
		//
		if uerr != nil {
			p.syntaxError(token.Span, "malformed numeric literal")
			return nil
		}
		//
		value = int64(uvalue)
	}
	//
	return ast.NewIntConst(token.Span, value)
}

func (p *Parser) parseAggregateInit() ast.Expr {
	var (
		start = p.advance() // <
		elems []ast.Expr
	)
	//
	for p.lookahead().Kind != GREATER_THAN {
		if len(elems) > 0 {
			if _, ok := p.expect(COMMA); !ok {
				return nil
			}
		}
		//
		// Elements are parsed below the relational level, so the closing ">"
		// is never taken as a comparison; relational, equality, bitwise,
		// logical and ternary operators need parentheses inside "<...>".
		elem := p.parseSpaceship()
		//
		if elem == nil {
			return nil
		}
		//
		elems = append(elems, elem)
	}
	//
	end := p.advance() // >
	//
	return ast.NewAggregateInit(start.Span.Join(end.Span), elems)
}

// ============================================================================
// Types
// ============================================================================

// parseType parses a type: a base (primitive keyword or type identifier)
// followed by any number of postfix modifiers (const, volatile, array,
// pointer, function pointer).
func (p *Parser) parseType() ast.TypeExpr {
	base := p.parseBaseType()
	//
	for base != nil {
		token := p.lookahead()
		//
		switch token.Kind {
		case KEYWORD_CONST:
			p.advance()
			base = ast.NewConstType(base.Span().Join(token.Span), base)
		case KEYWORD_VOLATILE:
			p.advance()
			base = ast.NewVolatileType(base.Span().Join(token.Span), base)
		case STAR:
			p.advance()
			base = ast.NewPointerType(base.Span().Join(token.Span), base)
		case LSQUARE:
			p.advance()
			//
			length := p.parseTernary()
			//
			if length == nil {
				return nil
			}
			//
			end, ok := p.expect(RSQUARE)
			//
			if !ok {
				return nil
			}
			//
			base = ast.NewArrayType(base.Span().Join(end.Span), length, base)
		case LBRACE:
			base = p.parseFnPtrType(base)
		default:
			return base
		}
	}
	//
	return base
}

func (p *Parser) parseBaseType() ast.TypeExpr {
	token := p.lookahead()
	//
	if kind, ok := typeKeywords[token.Kind]; ok {
		p.advance()
		return ast.NewKeywordType(token.Span, kind)
	}
	//
	switch token.Kind {
	case TYPE_IDENTIFIER:
		p.advance()
		return ast.NewNamedType(token.Span, nil, p.lexer.Text(token))
	case SCOPED_TYPE_IDENTIFIER:
		p.advance()
		//
		segments := strings.Split(p.lexer.Text(token), "::")
		//
		return ast.NewNamedType(token.Span, segments[:len(segments)-1], segments[len(segments)-1])
	}
	//
	p.expectedError(token, "type")
	//
	return nil
}

func (p *Parser) parseFnPtrType(ret ast.TypeExpr) ast.TypeExpr {
	var args []ast.TypeExpr
	//
	p.advance() // (
	//
	for p.lookahead().Kind != RBRACE {
		if len(args) > 0 {
			if _, ok := p.expect(COMMA); !ok {
				return nil
			}
		}
		//
		arg := p.parseType()
		//
		if arg == nil {
			return nil
		}
		//
		args = append(args, arg)
	}
	//
	end := p.advance() // )
	//
	return ast.NewFnPtrType(ret.Span().Join(end.Span), ret, args)
}
