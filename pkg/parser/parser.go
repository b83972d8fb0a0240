// Copyright the pxc contributors.
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

// Package parser implements a recursive-descent parser over the pkg/lexer
// token stream, producing the generic pkg/ast.Node tree the Semantic
// Analyzer consumes (spec.md §6, "Parser → Semantic contract"). It is an
// external collaborator to the CORE (SPEC_FULL.md §1) and is not held to the
// CORE's invariants: on a syntax error it records a message and attempts to
// recover at the next statement boundary rather than aborting outright.
package parser

import (
	"fmt"

	"github.com/pxlang/pxc/pkg/ast"
	"github.com/pxlang/pxc/pkg/token"
)

// Parser consumes a fixed token slice (as produced by lexer.Tokens) and
// builds an AST.
type Parser struct {
	toks   []token.Token
	pos    int
	Errors []string
}

// New constructs a Parser over a complete token stream (EOF-terminated).
func New(toks []token.Token) *Parser {
	return &Parser{toks: toks}
}

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}

	return p.toks[p.pos]
}

func (p *Parser) peekKind(n int) token.Kind {
	idx := p.pos + n
	if idx >= len(p.toks) {
		return token.EOF
	}

	return p.toks[idx].Kind
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}

	return t
}

func (p *Parser) at(k token.Kind) bool {
	return p.cur().Kind == k
}

func (p *Parser) expect(k token.Kind) token.Token {
	if !p.at(k) {
		p.errorf("expected %s, got %s %q", k, p.cur().Kind, p.cur().Value)
		return p.cur()
	}

	return p.advance()
}

func (p *Parser) errorf(format string, args ...any) {
	tok := p.cur()
	msg := fmt.Sprintf("%d:%d: %s", tok.Line, tok.Column, fmt.Sprintf(format, args...))
	p.Errors = append(p.Errors, msg)
}

// synchronize skips tokens until a likely statement boundary, used for
// simple syntax-error recovery so one malformed declaration doesn't prevent
// analysis of the rest of the file.
func (p *Parser) synchronize() {
	for !p.at(token.EOF) {
		if p.cur().Kind == token.Semicolon {
			p.advance()
			return
		}

		if p.cur().Kind == token.RBrace {
			return
		}

		p.advance()
	}
}

// ParseProgram parses the full token stream into a Program node whose Extra
// list holds the top-level declarations.
func (p *Parser) ParseProgram() *ast.Node {
	prog := &ast.Node{Kind: ast.Program}

	for !p.at(token.EOF) {
		before := p.pos

		decl := p.parseTopLevel()
		if decl != nil {
			prog.Extra = append(prog.Extra, decl)
		}

		if p.pos == before {
			// Guarantee forward progress on unrecoverable input.
			p.advance()
		}
	}

	return prog
}

func (p *Parser) parseTopLevel() *ast.Node {
	switch p.cur().Kind {
	case token.KwVar, token.KwLet, token.KwConst:
		n := p.parseVarDecl()
		p.expect(token.Semicolon)

		return n
	case token.KwFunc:
		return p.parseFuncDecl()
	case token.KwStruct:
		return p.parseStructDecl()
	case token.KwClass:
		return p.parseClassDecl()
	case token.KwObj:
		n := p.parseObjDecl()
		p.expect(token.Semicolon)

		return n
	default:
		p.errorf("unexpected token %s %q at top level", p.cur().Kind, p.cur().Value)
		p.synchronize()

		return nil
	}
}

// parseType parses a type descriptor: `Name`, optional `[dim]` array
// suffix(es), and an optional pointer `*`/reference `&` prefix.
func (p *Parser) parseType() *ast.TypeDescriptor {
	td := &ast.TypeDescriptor{}

	for p.at(token.Star) {
		p.advance()
		td.PointerLevel++
	}

	if p.at(token.Amp) {
		p.advance()
		td.IsReference = true
	}

	// Built-in type names (Int, Real, String, Char, Bool, Void) and
	// user-defined struct/class/obj names all lex as plain identifiers.
	name := p.expect(token.Ident)
	td.Name = name.Value

	for p.at(token.LBracket) {
		p.advance()
		td.IsArray = true

		if !p.at(token.RBracket) {
			td.ArrayDims = append(td.ArrayDims, p.parseExpr())
		}

		p.expect(token.RBracket)
	}

	return td
}

func (p *Parser) parseVarDecl() *ast.Node {
	kw := p.advance()

	n := &ast.Node{Kind: ast.VarDecl, Line: kw.Line, Column: kw.Column}

	switch kw.Kind {
	case token.KwVar:
		n.StateModifier = "var"
	case token.KwLet:
		n.StateModifier = "let"
	case token.KwConst:
		n.StateModifier = "const"
	}

	nameTok := p.expect(token.Ident)
	n.Value = nameTok.Value

	if p.at(token.Colon) {
		p.advance()

		n.VariableType = p.parseType()
		if n.VariableType.IsArray {
			n.Kind = ast.ArrayDecl
		}
	}

	if p.at(token.Assign) {
		p.advance()

		n.DefaultValue = p.parseExpr()
	}

	return n
}

func (p *Parser) parseObjDecl() *ast.Node {
	kw := p.advance()
	n := &ast.Node{Kind: ast.ObjDecl, StateModifier: "obj", Line: kw.Line, Column: kw.Column}

	nameTok := p.expect(token.Ident)
	n.Value = nameTok.Value

	p.expect(token.Colon)

	n.VariableType = p.parseType()

	if p.at(token.Assign) {
		p.advance()

		n.DefaultValue = p.parseExpr()
	}

	return n
}

func (p *Parser) parseParamList() []ast.Param {
	var params []ast.Param

	p.expect(token.LParen)

	for !p.at(token.RParen) && !p.at(token.EOF) {
		name := p.expect(token.Ident)

		p.expect(token.Colon)

		typ := p.parseType()
		params = append(params, ast.Param{Name: name.Value, Type: typ})

		if p.at(token.Comma) {
			p.advance()
		} else {
			break
		}
	}

	p.expect(token.RParen)

	return params
}

func (p *Parser) parseFuncDecl() *ast.Node {
	kw := p.advance()
	n := &ast.Node{Kind: ast.FuncDecl, StateModifier: "func", Line: kw.Line, Column: kw.Column}

	nameTok := p.expect(token.Ident)
	n.Value = nameTok.Value

	n.Params = p.parseParamList()

	p.expect(token.Colon)

	n.VariableType = p.parseType()
	n.Extra = []*ast.Node{p.parseBlock()}

	return n
}

func (p *Parser) parseMemberList() []*ast.Node {
	var members []*ast.Node

	p.expect(token.LBrace)

	for !p.at(token.RBrace) && !p.at(token.EOF) {
		switch p.cur().Kind {
		case token.KwVar:
			members = append(members, p.parseVarDecl())
			p.expect(token.Semicolon)
		case token.KwObj:
			members = append(members, p.parseObjDecl())
			p.expect(token.Semicolon)
		default:
			p.errorf("only var/obj members allowed here, got %s", p.cur().Kind)
			p.synchronize()
		}
	}

	p.expect(token.RBrace)

	return members
}

func (p *Parser) parseStructDecl() *ast.Node {
	kw := p.advance()
	n := &ast.Node{Kind: ast.StructDecl, StateModifier: "struct", Line: kw.Line, Column: kw.Column}

	nameTok := p.expect(token.Ident)
	n.Value = nameTok.Value
	n.Extra = p.parseMemberList()

	return n
}

func (p *Parser) parseClassDecl() *ast.Node {
	kw := p.advance()
	n := &ast.Node{Kind: ast.ClassDecl, StateModifier: "class", Line: kw.Line, Column: kw.Column}

	nameTok := p.expect(token.Ident)
	n.Value = nameTok.Value
	n.Extra = p.parseMemberList()

	return n
}

func (p *Parser) parseBlock() *ast.Node {
	lb := p.expect(token.LBrace)
	n := &ast.Node{Kind: ast.Block, Line: lb.Line, Column: lb.Column}

	for !p.at(token.RBrace) && !p.at(token.EOF) {
		before := p.pos

		stmt := p.parseStatement()
		if stmt != nil {
			n.Extra = append(n.Extra, stmt)
		}

		if p.pos == before {
			p.advance()
		}
	}

	p.expect(token.RBrace)

	return n
}

func (p *Parser) parseStatement() *ast.Node {
	switch p.cur().Kind {
	case token.KwVar, token.KwLet, token.KwConst:
		n := p.parseVarDecl()
		p.expect(token.Semicolon)

		return n
	case token.KwObj:
		n := p.parseObjDecl()
		p.expect(token.Semicolon)

		return n
	case token.LBrace:
		return p.parseBlock()
	case token.KwIf:
		return p.parseIf()
	case token.KwWhile:
		return p.parseWhile()
	case token.KwFor:
		return p.parseFor()
	case token.KwBreak:
		tok := p.advance()
		p.expect(token.Semicolon)

		return &ast.Node{Kind: ast.BreakStmt, Line: tok.Line, Column: tok.Column}
	case token.KwContinue:
		tok := p.advance()
		p.expect(token.Semicolon)

		return &ast.Node{Kind: ast.ContinueStmt, Line: tok.Line, Column: tok.Column}
	case token.KwReturn:
		tok := p.advance()
		n := &ast.Node{Kind: ast.ReturnStmt, Line: tok.Line, Column: tok.Column}

		if !p.at(token.Semicolon) {
			n.Left = p.parseExpr()
		}

		p.expect(token.Semicolon)

		return n
	case token.Semicolon:
		p.advance()
		return nil
	default:
		n := p.parseExprStatement()
		p.expect(token.Semicolon)

		return n
	}
}

func (p *Parser) parseIf() *ast.Node {
	kw := p.advance()
	n := &ast.Node{Kind: ast.IfStmt, Line: kw.Line, Column: kw.Column}

	p.expect(token.LParen)

	n.Left = p.parseExpr()

	p.expect(token.RParen)

	n.Extra = append(n.Extra, p.parseStatement())

	if p.at(token.KwElse) {
		p.advance()
		n.Extra = append(n.Extra, p.parseStatement())
	}

	return n
}

func (p *Parser) parseWhile() *ast.Node {
	kw := p.advance()
	n := &ast.Node{Kind: ast.WhileStmt, Line: kw.Line, Column: kw.Column}

	p.expect(token.LParen)

	n.Left = p.parseExpr()

	p.expect(token.RParen)

	n.Right = p.parseStatement()

	return n
}

func (p *Parser) parseFor() *ast.Node {
	kw := p.advance()
	n := &ast.Node{Kind: ast.ForStmt, Line: kw.Line, Column: kw.Column}

	p.expect(token.LParen)

	if !p.at(token.Semicolon) {
		if p.cur().Kind == token.KwVar || p.cur().Kind == token.KwLet || p.cur().Kind == token.KwConst {
			n.Extra = append(n.Extra, p.parseVarDecl())
		} else {
			n.Extra = append(n.Extra, p.parseExprStatement())
		}
	} else {
		n.Extra = append(n.Extra, nil)
	}

	p.expect(token.Semicolon)

	if !p.at(token.Semicolon) {
		n.Left = p.parseExpr()
	}

	p.expect(token.Semicolon)

	if !p.at(token.RParen) {
		n.Extra = append(n.Extra, p.parseExprStatement())
	} else {
		n.Extra = append(n.Extra, nil)
	}

	p.expect(token.RParen)

	n.Right = p.parseStatement()

	return n
}

func (p *Parser) parseExprStatement() *ast.Node {
	expr := p.parseExpr()

	if p.at(token.Assign) {
		eq := p.advance()
		rhs := p.parseExpr()

		return &ast.Node{Kind: ast.Assign, Line: eq.Line, Column: eq.Column, Left: expr, Right: rhs}
	}

	return &ast.Node{Kind: ast.ExprStmt, Line: expr.Line, Column: expr.Column, Left: expr}
}

// Expression grammar, lowest to highest precedence:
//
//	expr        := logicalOr
//	logicalOr   := logicalAnd ( "||" logicalAnd )*
//	logicalAnd  := equality ( "&&" equality )*
//	equality    := comparison ( ("==" | "!=") comparison )*
//	comparison  := bitwise ( ("<" | ">" | "<=" | ">=") bitwise )*
//	bitwise     := additive ( ("|" | "&" | "^" | "<<" | ">>") additive )*
//	additive    := multiplicative ( ("+" | "-") multiplicative )*
//	multiplicative := unary ( ("*" | "/" | "%") unary )*
//	unary       := ("+" | "-" | "!" | "~") unary | postfix
//	postfix     := primary ( "->" IDENT | "::" IDENT | "(" args ")" )*
//	primary     := literal | IDENT | "(" expr ")"
func (p *Parser) parseExpr() *ast.Node {
	return p.parseLogicalOr()
}

func (p *Parser) binaryLevel(next func() *ast.Node, kinds ...token.Kind) *ast.Node {
	left := next()

	for {
		matched := false

		for _, k := range kinds {
			if p.at(k) {
				op := p.advance()
				right := next()
				left = &ast.Node{
					Kind: ast.Binary, OpKind: op.Kind, Value: op.Value,
					Line: op.Line, Column: op.Column, Left: left, Right: right,
				}
				matched = true

				break
			}
		}

		if !matched {
			return left
		}
	}
}

func (p *Parser) parseLogicalOr() *ast.Node {
	return p.binaryLevel(p.parseLogicalAnd, token.OrOr)
}

func (p *Parser) parseLogicalAnd() *ast.Node {
	return p.binaryLevel(p.parseEquality, token.AndAnd)
}

func (p *Parser) parseEquality() *ast.Node {
	return p.binaryLevel(p.parseComparison, token.Eq, token.Ne)
}

func (p *Parser) parseComparison() *ast.Node {
	return p.binaryLevel(p.parseBitwise, token.Lt, token.Gt, token.Le, token.Ge)
}

func (p *Parser) parseBitwise() *ast.Node {
	return p.binaryLevel(p.parseAdditive, token.Pipe, token.Amp, token.Caret, token.Shl, token.Shr)
}

func (p *Parser) parseAdditive() *ast.Node {
	return p.binaryLevel(p.parseMultiplicative, token.Plus, token.Minus)
}

func (p *Parser) parseMultiplicative() *ast.Node {
	return p.binaryLevel(p.parseUnary, token.Star, token.Slash, token.Percent)
}

func (p *Parser) parseUnary() *ast.Node {
	switch p.cur().Kind {
	case token.Plus, token.Minus, token.Not, token.Tilde:
		op := p.advance()
		operand := p.parseUnary()

		return &ast.Node{Kind: ast.Unary, OpKind: op.Kind, Value: op.Value, Line: op.Line, Column: op.Column, Left: operand}
	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parsePostfix() *ast.Node {
	n := p.parsePrimary()

	for {
		switch p.cur().Kind {
		case token.Arrow:
			op := p.advance()
			member := p.expect(token.Ident)
			n = &ast.Node{
				Kind: ast.FieldAccess, Line: op.Line, Column: op.Column,
				Left: n, Right: &ast.Node{Kind: ast.Ident, Value: member.Value, Line: member.Line, Column: member.Column},
			}
		case token.ScopeOp:
			op := p.advance()
			member := p.expect(token.Ident)
			n = &ast.Node{
				Kind: ast.ScopeAccess, Line: op.Line, Column: op.Column,
				Left: n, Right: &ast.Node{Kind: ast.Ident, Value: member.Value, Line: member.Line, Column: member.Column},
			}
		case token.LParen:
			lp := p.advance()

			var args []*ast.Node

			for !p.at(token.RParen) && !p.at(token.EOF) {
				args = append(args, p.parseExpr())

				if p.at(token.Comma) {
					p.advance()
				} else {
					break
				}
			}

			p.expect(token.RParen)

			n = &ast.Node{Kind: ast.Call, Line: lp.Line, Column: lp.Column, Left: n, Extra: args}
		default:
			return n
		}
	}
}

func (p *Parser) parsePrimary() *ast.Node {
	tok := p.cur()

	switch tok.Kind {
	case token.IntLit:
		p.advance()
		return &ast.Node{Kind: ast.IntLit, OpKind: tok.Kind, Value: tok.Value, Line: tok.Line, Column: tok.Column}
	case token.RealLit:
		p.advance()
		return &ast.Node{Kind: ast.RealLit, OpKind: tok.Kind, Value: tok.Value, Line: tok.Line, Column: tok.Column}
	case token.StringLit:
		p.advance()
		return &ast.Node{Kind: ast.StringLit, OpKind: tok.Kind, Value: tok.Value, Line: tok.Line, Column: tok.Column}
	case token.CharLit:
		p.advance()
		return &ast.Node{Kind: ast.CharLit, OpKind: tok.Kind, Value: tok.Value, Line: tok.Line, Column: tok.Column}
	case token.KwTrue, token.KwFalse:
		p.advance()
		return &ast.Node{Kind: ast.BoolLit, OpKind: tok.Kind, Value: tok.Value, Line: tok.Line, Column: tok.Column}
	case token.Ident:
		p.advance()
		return &ast.Node{Kind: ast.Ident, Value: tok.Value, Line: tok.Line, Column: tok.Column}
	case token.LParen:
		p.advance()

		inner := p.parseExpr()

		p.expect(token.RParen)

		return inner
	default:
		p.errorf("unexpected token %s %q in expression", tok.Kind, tok.Value)
		p.advance()

		return &ast.Node{Kind: ast.IntLit, Value: "0", Line: tok.Line, Column: tok.Column}
	}
}
