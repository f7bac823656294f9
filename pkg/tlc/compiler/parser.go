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
	"fmt"
	"strings"

	"github.com/tlang-dev/tlc/pkg/tlc/ast"
	"github.com/tlang-dev/tlc/pkg/tlc/types"
	"github.com/tlang-dev/tlc/pkg/util/source"
)

// Parser is a hand-written recursive descent parser producing the syntax
// tree of one unit.  Syntax errors are recovered by panicking to a top-level
// boundary, so a parse yielding errors still returns a best-effort tree for
// later phases to report secondary errors against.
type Parser struct {
	unit    *Unit
	program *Program
	lexer   *Lexer
	errs    []source.SyntaxError
	// Extra declarations produced by multi-name variable statements.
	pending []ast.Decl
}

// NewParser constructs a parser for a given unit.
func NewParser(unit *Unit, program *Program) *Parser {
	parser := &Parser{unit, program, nil, nil, nil}
	// The lexer classifies identifiers via the unit's environment, which
	// only exists once the module declaration has been parsed.
	parser.lexer = NewLexer(unit.File, func(name string) bool {
		return unit.Env != nil && unit.Env.IsType(name)
	})
	//
	return parser
}

// Parse the unit, leaving the syntax tree (and environment) on the unit and
// returning any errors arising.
func (p *Parser) Parse() (*ast.File, []source.SyntaxError) {
	var (
		start   = p.lookahead().Span
		module  = p.parseModuleDecl()
		imports []*ast.Import
		decls   []ast.Decl
	)
	//
	if module == nil {
		// Without a module declaration nothing else can be resolved.
		p.unit.Errored = true
		return nil, p.errs
	}
	//
	p.unit.Module = module.Name()
	p.unit.Env = NewEnvironment(p.program.TableOf(module.Name()))
	// Imports
	for {
		if tok, ok := p.match(KEYWORD_USING); ok {
			if imp := p.parseImport(tok); imp != nil {
				imports = append(imports, imp)
			}
		} else {
			break
		}
	}
	// Body
	for p.lookahead().Kind != END_OF {
		decl := p.parseTopDecl()
		//
		if decl != nil {
			decls = append(decls, decl)
		}
		// Drain declarations produced by multi-name variable statements.
		decls = append(decls, p.pending...)
		p.pending = nil
	}
	//
	span := start.Join(p.lookahead().Span)
	file := ast.NewFile(span, module, imports, decls)
	p.unit.Ast = file
	//
	if len(p.errs) > 0 {
		p.unit.Errored = true
	}
	//
	return file, p.errs
}

// ============================================================================
// Module & imports
// ============================================================================

func (p *Parser) parseModuleDecl() *ast.Module {
	var (
		start, ok = p.expect(KEYWORD_MODULE)
		path      []string
	)
	//
	if !ok {
		return nil
	}
	//
	if path, ok = p.parsePath(); !ok {
		return nil
	}
	//
	semi, ok := p.expect(SEMICOLON)
	//
	if !ok {
		p.synchronize()
		return nil
	}
	//
	return ast.NewModule(start.Span.Join(semi.Span), path)
}

func (p *Parser) parseImport(start Token) *ast.Import {
	path, ok := p.parsePath()
	//
	if !ok {
		p.synchronize()
		return nil
	}
	//
	semi, ok := p.expect(SEMICOLON)
	//
	if !ok {
		p.synchronize()
		return nil
	}
	//
	imp := ast.NewImport(start.Span.Join(semi.Span), path)
	// Resolve the import now, so subsequent lexing classifies the imported
	// module's type names correctly.
	if !p.program.HasModule(imp.Name()) {
		p.syntaxError(imp.Span(), fmt.Sprintf("unknown module '%s'", imp.Name()))
	} else {
		p.unit.Env.Import(p.program.TableOf(imp.Name()))
	}
	//
	return imp
}

// parsePath parses a (possibly scoped) module path.  Since the lexer folds
// scope operators into single tokens, this is a single identifier token of
// either flavour.
func (p *Parser) parsePath() ([]string, bool) {
	token := p.lookahead()
	//
	switch token.Kind {
	case IDENTIFIER, SCOPED_IDENTIFIER, TYPE_IDENTIFIER, SCOPED_TYPE_IDENTIFIER:
		p.advance()
		return strings.Split(p.lexer.Text(token), "::"), true
	}
	//
	p.expectedError(token, "module name")
	//
	return nil, false
}

// ============================================================================
// Top-level declarations
// ============================================================================

func (p *Parser) parseTopDecl() ast.Decl {
	token := p.lookahead()
	//
	switch token.Kind {
	case SEMICOLON:
		p.advance()
		return nil
	case KEYWORD_STRUCT:
		return p.parseStructDecl(false)
	case KEYWORD_UNION:
		return p.parseStructDecl(true)
	case KEYWORD_ENUM:
		return p.parseEnumDecl()
	case KEYWORD_TYPEDEF:
		return p.parseTypedefDecl()
	case KEYWORD_OPAQUE:
		return p.parseOpaqueDecl()
	}
	// Anything else must open with a type.
	typ := p.parseType()
	//
	if typ == nil {
		p.synchronize()
		return nil
	}
	//
	name, ok := p.expectIdentifier()
	//
	if !ok {
		p.synchronize()
		return nil
	}
	// Declaration vs definition is decided by the next token: "(" means a
	// function, anything else a variable.
	if p.lookahead().Kind == LBRACE {
		return p.parseFunDecl(typ, name)
	}
	//
	return p.parseVarDecl(typ, name)
}

func (p *Parser) parseFunDecl(ret ast.TypeExpr, name Token) ast.Decl {
	var (
		params []*ast.Param
		body   *ast.Block
	)
	//
	p.advance() // (
	//
	for p.lookahead().Kind != RBRACE {
		if len(params) > 0 {
			if _, ok := p.expect(COMMA); !ok {
				p.synchronize()
				return nil
			}
		}
		//
		param := p.parseParam()
		//
		if param == nil {
			p.synchronize()
			return nil
		}
		//
		params = append(params, param)
	}
	//
	p.advance() // )
	//
	end := p.lookahead()
	//
	switch end.Kind {
	case SEMICOLON:
		p.advance()
	case LCURLY:
		if !p.unit.IsCode {
			p.syntaxError(end.Span, "function definition in declaration module")
			p.advance() // {
			p.skipBlock()
			//
			return nil
		}
		//
		body = p.parseBlock()
		//
		if body == nil {
			return nil
		}
	default:
		p.expectedError(end, "';' or function body")
		p.synchronize()
		//
		return nil
	}
	//
	span := ret.Span().Join(end.Span)
	//
	return ast.NewFunDecl(span, p.lexer.Text(name), ret, params, body)
}

func (p *Parser) parseParam() *ast.Param {
	typ := p.parseType()
	//
	if typ == nil {
		return nil
	}
	// Parameter names are optional in pure declarations.
	name := ""
	//
	if tok, ok := p.match(IDENTIFIER); ok {
		name = p.lexer.Text(tok)
	}
	//
	return ast.NewParam(typ.Span(), name, typ)
}

// parseVarDecl parses the remainder of a variable declaration, the type and
// first name having been consumed.  Each name yields its own declaration
// node; names after the first are queued as sibling declarations.
func (p *Parser) parseVarDecl(typ ast.TypeExpr, first Token) ast.Decl {
	decls := p.parseVarNames(typ, first)
	//
	if decls == nil {
		return nil
	}
	// Additional names become sibling declarations of the first.
	p.pending = append(p.pending, decls[1:]...)
	//
	return decls[0]
}

// parseVarNames parses "name (= init)? (, name (= init)?)* ;" producing one
// declaration per name.
func (p *Parser) parseVarNames(typ ast.TypeExpr, first Token) []ast.Decl {
	var (
		decls []ast.Decl
		name  = first
	)
	//
	for {
		var init ast.Expr
		//
		if _, ok := p.match(EQUALS); ok {
			if init = p.parseAssignExpr(); init == nil {
				p.synchronize()
				return nil
			}
		}
		//
		span := typ.Span().Join(p.lookahead().Span)
		decls = append(decls, ast.NewVarDecl(span, p.lexer.Text(name), typ, init))
		//
		if _, ok := p.match(COMMA); !ok {
			break
		}
		//
		var ok bool
		//
		if name, ok = p.expectIdentifier(); !ok {
			p.synchronize()
			return nil
		}
	}
	//
	if _, ok := p.expect(SEMICOLON); !ok {
		p.synchronize()
		return nil
	}
	//
	return decls
}

func (p *Parser) parseStructDecl(union bool) ast.Decl {
	var (
		start  = p.lookahead()
		fields []*ast.FieldDecl
	)
	//
	p.advance() // struct / union
	//
	name, ok := p.expectIdentifierOrType()
	//
	if !ok {
		p.synchronize()
		return nil
	}
	// Register the name so subsequent lexing classifies it as a type.
	p.declareTypeName(name, pick(union, types.UNION, types.STRUCT))
	// A bare ";" is a forward declaration.
	if semi, ok := p.match(SEMICOLON); ok {
		span := start.Span.Join(semi.Span)
		return ast.NewOpaqueDecl(span, pick(union, ast.OPAQUE_UNION, ast.OPAQUE_STRUCT), p.lexer.Text(name))
	}
	//
	if _, ok := p.expect(LCURLY); !ok {
		p.synchronize()
		return nil
	}
	//
	for p.lookahead().Kind != RCURLY {
		field := p.parseFieldDecl()
		//
		if field == nil {
			p.skipBlock()
			return nil
		}
		//
		fields = append(fields, field)
	}
	//
	p.advance() // }
	//
	end, ok := p.expect(SEMICOLON)
	//
	if !ok {
		p.synchronize()
		return nil
	}
	//
	span := start.Span.Join(end.Span)
	//
	if union {
		return ast.NewUnionDecl(span, p.lexer.Text(name), fields)
	}
	//
	return ast.NewStructDecl(span, p.lexer.Text(name), fields)
}

func (p *Parser) parseFieldDecl() *ast.FieldDecl {
	typ := p.parseType()
	//
	if typ == nil {
		return nil
	}
	//
	name, ok := p.expectIdentifier()
	//
	if !ok {
		return nil
	}
	//
	if _, ok := p.expect(SEMICOLON); !ok {
		return nil
	}
	//
	return ast.NewFieldDecl(typ.Span(), p.lexer.Text(name), typ)
}

func (p *Parser) parseEnumDecl() ast.Decl {
	var (
		start = p.lookahead()
		items []*ast.EnumItem
	)
	//
	p.advance() // enum
	//
	name, ok := p.expectIdentifierOrType()
	//
	if !ok {
		p.synchronize()
		return nil
	}
	//
	p.declareTypeName(name, types.ENUM)
	//
	if _, ok := p.expect(LCURLY); !ok {
		p.synchronize()
		return nil
	}
	//
	for p.lookahead().Kind != RCURLY {
		if len(items) > 0 {
			if _, ok := p.expect(COMMA); !ok {
				p.skipBlock()
				return nil
			}
			// Permit a trailing comma.
			if p.lookahead().Kind == RCURLY {
				break
			}
		}
		//
		itemName, ok := p.expectIdentifier()
		//
		if !ok {
			p.skipBlock()
			return nil
		}
		//
		var value ast.Expr
		//
		if _, ok := p.match(EQUALS); ok {
			if value = p.parseAssignExpr(); value == nil {
				p.skipBlock()
				return nil
			}
		}
		//
		items = append(items, ast.NewEnumItem(itemName.Span, p.lexer.Text(itemName), value))
	}
	//
	p.advance() // }
	//
	end, ok := p.expect(SEMICOLON)
	//
	if !ok {
		p.synchronize()
		return nil
	}
	//
	return ast.NewEnumDecl(start.Span.Join(end.Span), p.lexer.Text(name), items)
}

func (p *Parser) parseTypedefDecl() ast.Decl {
	start := p.lookahead()
	p.advance() // typedef
	//
	typ := p.parseType()
	//
	if typ == nil {
		p.synchronize()
		return nil
	}
	//
	name, ok := p.expectIdentifierOrType()
	//
	if !ok {
		p.synchronize()
		return nil
	}
	//
	p.declareTypeName(name, types.TYPEDEF)
	//
	end, ok := p.expect(SEMICOLON)
	//
	if !ok {
		p.synchronize()
		return nil
	}
	//
	return ast.NewTypedefDecl(start.Span.Join(end.Span), p.lexer.Text(name), typ)
}

func (p *Parser) parseOpaqueDecl() ast.Decl {
	start := p.lookahead()
	p.advance() // opaque
	//
	var kind ast.OpaqueKind
	//
	token := p.lookahead()
	//
	switch token.Kind {
	case KEYWORD_STRUCT:
		kind = ast.OPAQUE_STRUCT
	case KEYWORD_UNION:
		kind = ast.OPAQUE_UNION
	default:
		p.expectedError(token, "'struct' or 'union'")
		p.synchronize()
		//
		return nil
	}
	//
	p.advance()
	//
	name, ok := p.expectIdentifierOrType()
	//
	if !ok {
		p.synchronize()
		return nil
	}
	//
	p.declareTypeName(name, pick(kind == ast.OPAQUE_UNION, types.UNION, types.STRUCT))
	//
	end, ok := p.expect(SEMICOLON)
	//
	if !ok {
		p.synchronize()
		return nil
	}
	//
	return ast.NewOpaqueDecl(start.Span.Join(end.Span), kind, p.lexer.Text(name))
}

// declareTypeName registers a named type in the module table as soon as its
// name is parsed, so that the lexer classifies subsequent occurrences as
// type identifiers.  The entry is completed by the checker.
func (p *Parser) declareTypeName(name Token, kind types.NamedKind) {
	var (
		text  = p.lexer.Text(name)
		table = p.unit.Env.Module()
	)
	//
	if symbol, ok := table.Lookup(text); ok {
		// Redeclaring a forward declared entry of the same kind is fine.
		if tsym, ok := symbol.(*TypeSymbol); ok && tsym.Entry.Kind == kind {
			return
		}
		//
		p.syntaxError(name.Span, fmt.Sprintf("'%s' already declared", text))
		//
		return
	}
	//
	table.Declare(text, &TypeSymbol{types.NewNamed(table.Module(), text, kind)})
}

// ============================================================================
// Statements
// ============================================================================

func (p *Parser) parseBlock() *ast.Block {
	var (
		start, ok = p.expect(LCURLY)
		stmts     []ast.Stmt
	)
	//
	if !ok {
		p.synchronize()
		return nil
	}
	//
	for p.lookahead().Kind != RCURLY && p.lookahead().Kind != END_OF {
		stmt := p.parseStatement()
		//
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	//
	end, ok := p.expect(RCURLY)
	//
	if !ok {
		return nil
	}
	//
	return ast.NewBlock(start.Span.Join(end.Span), stmts)
}

func (p *Parser) parseStatement() ast.Stmt {
	token := p.lookahead()
	//
	switch token.Kind {
	case LCURLY:
		if block := p.parseBlock(); block != nil {
			return block
		}
		//
		return nil
	case SEMICOLON:
		p.advance()
		return ast.NewNullStmt(token.Span)
	case KEYWORD_IF:
		return p.parseIf()
	case KEYWORD_WHILE:
		return p.parseWhile()
	case KEYWORD_DO:
		return p.parseDoWhile()
	case KEYWORD_FOR:
		return p.parseFor()
	case KEYWORD_SWITCH:
		return p.parseSwitch()
	case KEYWORD_BREAK:
		p.advance()
		//
		if _, ok := p.expect(SEMICOLON); !ok {
			p.recoverStatement()
			return nil
		}
		//
		return ast.NewBreak(token.Span)
	case KEYWORD_CONTINUE:
		p.advance()
		//
		if _, ok := p.expect(SEMICOLON); !ok {
			p.recoverStatement()
			return nil
		}
		//
		return ast.NewContinue(token.Span)
	case KEYWORD_RETURN:
		return p.parseReturn()
	case KEYWORD_ASM:
		return p.parseAsm()
	case KEYWORD_STRUCT, KEYWORD_UNION:
		if decl := p.parseStructDecl(token.Kind == KEYWORD_UNION); decl != nil {
			return ast.NewDeclStmt(decl.Span(), decl)
		}
		//
		return nil
	case KEYWORD_ENUM:
		if decl := p.parseEnumDecl(); decl != nil {
			return ast.NewDeclStmt(decl.Span(), decl)
		}
		//
		return nil
	case KEYWORD_TYPEDEF:
		if decl := p.parseTypedefDecl(); decl != nil {
			return ast.NewDeclStmt(decl.Span(), decl)
		}
		//
		return nil
	case KEYWORD_OPAQUE:
		if decl := p.parseOpaqueDecl(); decl != nil {
			return ast.NewDeclStmt(decl.Span(), decl)
		}
		//
		return nil
	}
	//
	if p.startsType(token) {
		return p.parseVarDefn()
	}
	//
	return p.parseExprStmt()
}

// startsType checks whether a token can open a type.
func (p *Parser) startsType(token Token) bool {
	_, isTypeKeyword := typeKeywords[token.Kind]
	//
	return isTypeKeyword || token.Kind == TYPE_IDENTIFIER || token.Kind == SCOPED_TYPE_IDENTIFIER
}

func (p *Parser) parseVarDefn() ast.Stmt {
	typ := p.parseType()
	//
	if typ == nil {
		p.recoverStatement()
		return nil
	}
	//
	name, ok := p.expectIdentifier()
	//
	if !ok {
		p.recoverStatement()
		return nil
	}
	//
	decls := p.parseVarNames(typ, name)
	//
	if decls == nil {
		return nil
	}
	//
	vds := make([]*ast.VarDecl, len(decls))
	//
	for i, d := range decls {
		vds[i] = d.(*ast.VarDecl)
	}
	//
	return ast.NewVarDefnStmt(typ.Span().Join(vds[len(vds)-1].Span()), vds)
}

func (p *Parser) parseIf() ast.Stmt {
	var (
		start = p.lookahead()
		els   ast.Stmt
	)
	//
	p.advance() // if
	//
	cond := p.parseParenExpr()
	//
	if cond == nil {
		p.recoverStatement()
		return nil
	}
	//
	then := p.parseStatement()
	//
	if then == nil {
		return nil
	}
	//
	if _, ok := p.match(KEYWORD_ELSE); ok {
		if els = p.parseStatement(); els == nil {
			return nil
		}
	}
	//
	return ast.NewIf(start.Span.Join(then.Span()), cond, then, els)
}

func (p *Parser) parseWhile() ast.Stmt {
	start := p.lookahead()
	p.advance() // while
	//
	cond := p.parseParenExpr()
	//
	if cond == nil {
		p.recoverStatement()
		return nil
	}
	//
	body := p.parseStatement()
	//
	if body == nil {
		return nil
	}
	//
	return ast.NewWhile(start.Span.Join(body.Span()), cond, body)
}

func (p *Parser) parseDoWhile() ast.Stmt {
	start := p.lookahead()
	p.advance() // do
	//
	body := p.parseStatement()
	//
	if body == nil {
		return nil
	}
	//
	if _, ok := p.expect(KEYWORD_WHILE); !ok {
		p.recoverStatement()
		return nil
	}
	//
	cond := p.parseParenExpr()
	//
	if cond == nil {
		p.recoverStatement()
		return nil
	}
	//
	end, ok := p.expect(SEMICOLON)
	//
	if !ok {
		p.recoverStatement()
		return nil
	}
	//
	return ast.NewDoWhile(start.Span.Join(end.Span), body, cond)
}

func (p *Parser) parseFor() ast.Stmt {
	var (
		start = p.lookahead()
		init  ast.Stmt
		cond  ast.Expr
		upd   ast.Expr
	)
	//
	p.advance() // for
	//
	if _, ok := p.expect(LBRACE); !ok {
		p.recoverStatement()
		return nil
	}
	// Initialiser: empty, a variable definition, or an expression.
	if _, ok := p.match(SEMICOLON); !ok {
		if p.startsType(p.lookahead()) {
			init = p.parseVarDefn()
		} else {
			init = p.parseExprStmt()
		}
		//
		if init == nil {
			return nil
		}
	}
	// Condition
	if p.lookahead().Kind != SEMICOLON {
		if cond = p.parseExpression(); cond == nil {
			p.recoverStatement()
			return nil
		}
	}
	//
	if _, ok := p.expect(SEMICOLON); !ok {
		p.recoverStatement()
		return nil
	}
	// Update
	if p.lookahead().Kind != RBRACE {
		if upd = p.parseExpression(); upd == nil {
			p.recoverStatement()
			return nil
		}
	}
	//
	if _, ok := p.expect(RBRACE); !ok {
		p.recoverStatement()
		return nil
	}
	//
	body := p.parseStatement()
	//
	if body == nil {
		return nil
	}
	//
	return ast.NewFor(start.Span.Join(body.Span()), init, cond, upd, body)
}

func (p *Parser) parseSwitch() ast.Stmt {
	var (
		start   = p.lookahead()
		clauses []*ast.CaseClause
	)
	//
	p.advance() // switch
	//
	value := p.parseParenExpr()
	//
	if value == nil {
		p.recoverStatement()
		return nil
	}
	//
	if _, ok := p.expect(LCURLY); !ok {
		p.recoverStatement()
		return nil
	}
	//
	for p.lookahead().Kind != RCURLY && p.lookahead().Kind != END_OF {
		clause := p.parseCaseClause()
		//
		if clause == nil {
			p.skipBlock()
			return nil
		}
		//
		clauses = append(clauses, clause)
	}
	//
	end, ok := p.expect(RCURLY)
	//
	if !ok {
		return nil
	}
	//
	return ast.NewSwitch(start.Span.Join(end.Span), value, clauses)
}

func (p *Parser) parseCaseClause() *ast.CaseClause {
	var (
		start = p.lookahead()
		value ast.Expr
		body  []ast.Stmt
	)
	//
	switch start.Kind {
	case KEYWORD_CASE:
		p.advance()
		//
		if value = p.parseExpression(); value == nil {
			return nil
		}
	case KEYWORD_DEFAULT:
		p.advance()
	default:
		p.expectedError(start, "'case' or 'default'")
		return nil
	}
	//
	if _, ok := p.expect(COLON); !ok {
		return nil
	}
	// Body runs until the next clause (or the end of the switch).
	for {
		next := p.lookahead().Kind
		//
		if next == KEYWORD_CASE || next == KEYWORD_DEFAULT || next == RCURLY || next == END_OF {
			break
		}
		//
		stmt := p.parseStatement()
		//
		if stmt != nil {
			body = append(body, stmt)
		}
	}
	//
	if start.Kind == KEYWORD_DEFAULT {
		return ast.NewDefaultClause(start.Span, body)
	}
	//
	return ast.NewCaseClause(start.Span, value, body)
}

func (p *Parser) parseReturn() ast.Stmt {
	var (
		start = p.lookahead()
		value ast.Expr
	)
	//
	p.advance() // return
	//
	if p.lookahead().Kind != SEMICOLON {
		if value = p.parseExpression(); value == nil {
			p.recoverStatement()
			return nil
		}
	}
	//
	end, ok := p.expect(SEMICOLON)
	//
	if !ok {
		p.recoverStatement()
		return nil
	}
	//
	return ast.NewReturn(start.Span.Join(end.Span), value)
}

func (p *Parser) parseAsm() ast.Stmt {
	start := p.lookahead()
	p.advance() // asm
	//
	if _, ok := p.expect(LBRACE); !ok {
		p.recoverStatement()
		return nil
	}
	//
	text, ok := p.expect(STRING)
	//
	if !ok {
		p.recoverStatement()
		return nil
	}
	// A malformed literal was already reported when it was lexed.
	decoded, err := DecodeString(p.lexer.Text(text))
	//
	if err != nil {
		p.recoverStatement()
		return nil
	}
	//
	if _, ok := p.expect(RBRACE); !ok {
		p.recoverStatement()
		return nil
	}
	//
	end, ok := p.expect(SEMICOLON)
	//
	if !ok {
		p.recoverStatement()
		return nil
	}
	//
	return ast.NewAsm(start.Span.Join(end.Span), string(decoded))
}

func (p *Parser) parseExprStmt() ast.Stmt {
	expr := p.parseExpression()
	//
	if expr == nil {
		p.recoverStatement()
		return nil
	}
	//
	end, ok := p.expect(SEMICOLON)
	//
	if !ok {
		p.recoverStatement()
		return nil
	}
	//
	return ast.NewExprStmt(expr.Span().Join(end.Span), expr)
}

func (p *Parser) parseParenExpr() ast.Expr {
	if _, ok := p.expect(LBRACE); !ok {
		return nil
	}
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

// ============================================================================
// Driving the lexer
// ============================================================================

// lookahead returns the next token without consuming it.
func (p *Parser) lookahead() Token {
	token := p.lex()
	p.lexer.Unlex(token)
	//
	return token
}

// advance consumes the next token.
func (p *Parser) advance() Token {
	return p.lex()
}

func (p *Parser) lex() Token {
	token, errs := p.lexer.Lex()
	//
	if len(errs) > 0 {
		p.errs = append(p.errs, errs...)
		p.unit.Errored = true
	}
	//
	return token
}

// match consumes the next token if it has the given kind.
func (p *Parser) match(kind uint) (Token, bool) {
	token := p.lex()
	//
	if token.Kind == kind {
		return token, true
	}
	//
	p.lexer.Unlex(token)
	//
	return token, false
}

// expect consumes the next token, reporting an error (and pushing the token
// back) if it does not have the given kind.
func (p *Parser) expect(kind uint) (Token, bool) {
	token := p.lex()
	//
	if token.Kind == kind {
		return token, true
	}
	//
	p.expectedError(token, NameOf(kind))
	p.lexer.Unlex(token)
	//
	return token, false
}

func (p *Parser) expectIdentifier() (Token, bool) {
	token := p.lex()
	//
	if token.Kind == IDENTIFIER {
		return token, true
	}
	//
	p.expectedError(token, "identifier")
	p.lexer.Unlex(token)
	//
	return token, false
}

// expectIdentifierOrType accepts a plain identifier or one already
// classified as a type (e.g. when completing a forward declaration).
func (p *Parser) expectIdentifierOrType() (Token, bool) {
	token := p.lex()
	//
	if token.Kind == IDENTIFIER || token.Kind == TYPE_IDENTIFIER {
		return token, true
	}
	//
	p.expectedError(token, "identifier")
	p.lexer.Unlex(token)
	//
	return token, false
}

// ============================================================================
// Error recovery
// ============================================================================

func (p *Parser) expectedError(found Token, expected string) {
	var foundText string
	//
	if found.Kind == END_OF {
		foundText = "end of file"
	} else {
		foundText = "'" + p.lexer.Text(found) + "'"
	}
	//
	p.syntaxError(found.Span, fmt.Sprintf("expected %s, but found %s", expected, foundText))
}

func (p *Parser) syntaxError(span source.Span, msg string) {
	p.errs = append(p.errs, *p.unit.File.SyntaxError(span, msg))
	p.unit.Errored = true
}

// synchronize recovers from a syntax error at file scope: tokens are
// consumed until a semicolon (which is consumed) or the start of a new
// declaration or end of file (which are not).  Brace balance is respected,
// so panicking never stops inside a nested block.
func (p *Parser) synchronize() {
	depth := 0
	//
	for {
		token := p.lex()
		//
		switch token.Kind {
		case END_OF:
			p.lexer.Unlex(token)
			return
		case LCURLY:
			depth++
		case RCURLY:
			if depth > 0 {
				depth--
			}
		case SEMICOLON:
			if depth == 0 {
				return
			}
		case KEYWORD_MODULE, KEYWORD_USING, KEYWORD_STRUCT, KEYWORD_UNION,
			KEYWORD_ENUM, KEYWORD_TYPEDEF, KEYWORD_OPAQUE:
			if depth == 0 {
				p.lexer.Unlex(token)
				return
			}
		default:
			if depth == 0 && p.startsType(token) {
				p.lexer.Unlex(token)
				return
			}
		}
	}
}

// recoverStatement recovers from a syntax error inside a block: tokens are
// consumed up to the next semicolon or the enclosing closer.
func (p *Parser) recoverStatement() {
	depth := 0
	//
	for {
		token := p.lex()
		//
		switch token.Kind {
		case END_OF:
			p.lexer.Unlex(token)
			return
		case LCURLY:
			depth++
		case RCURLY:
			if depth == 0 {
				p.lexer.Unlex(token)
				return
			}
			//
			depth--
		case SEMICOLON:
			if depth == 0 {
				return
			}
		}
	}
}

// skipBlock consumes tokens up to and including the closer of the block
// whose opener has already been consumed.
func (p *Parser) skipBlock() {
	depth := 1
	//
	for depth > 0 {
		token := p.lex()
		//
		switch token.Kind {
		case END_OF:
			return
		case LCURLY:
			depth++
		case RCURLY:
			depth--
		}
	}
}

func pick[T any](cond bool, then T, els T) T {
	if cond {
		return then
	}
	//
	return els
}
