// Copyright (c) 2024 The Falcon Contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

// Package parser is a hand-written recursive-descent front end: token
// stream plus source text in, ordered top-level declarations plus a list of
// recoverable diagnostics out. It uses one-token lookahead (consume/peek)
// and synchronizes on a syntax error instead of aborting on the first one.
package parser

import (
	"fmt"
	"strings"

	"github.com/falcon-lang/falcon/internal/ast"
	"github.com/falcon-lang/falcon/internal/lexer"
	"github.com/falcon-lang/falcon/internal/token"
)

// Diagnostic is one recoverable parse error.
type Diagnostic struct {
	Pos     token.Pos
	Message string
	Line    string
	TokLen  int
}

// String renders a diagnostic as "line:column: error: message", the
// left-trimmed source line, and a caret underline sized to the offending
// token's length.
func (d Diagnostic) String() string {
	caretPad := d.Pos.Column - 1
	if caretPad < 0 {
		caretPad = 0
	}
	underline := strings.Repeat("^", max(d.TokLen, 1))
	return fmt.Sprintf("%d:%d: error: %s\n  %s\n  %s%s",
		d.Pos.Line, d.Pos.Column, d.Message, d.Line, strings.Repeat(" ", caretPad), underline)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// arrayKind is the small parse-context flag tracking whether a bare `{...}`
// literal is currently legal.
type arrayKind int

const (
	ctxNone arrayKind = iota
	ctxArrayParse
	ctxArrayLiteral
)

type arrayCtx struct {
	kind arrayKind
	size int // 0 means unspecified, matching ArrayParse(Option<N>)
}

// Parser turns a token stream into an AST plus diagnostics.
type Parser struct {
	lx  *lexer.Lexer
	src string

	cur     token.Token
	next    token.Token
	hasNext bool

	diags []Diagnostic
	ctxs  []arrayCtx
}

// New builds a Parser over source, wiring a fresh lexer.Lexer internally —
// parser and lexer always travel together in this pipeline.
func New(source string) *Parser {
	p := &Parser{lx: lexer.New(source), src: source}
	p.advance()
	return p
}

// Diagnostics returns every recoverable diagnostic collected during Parse.
func (p *Parser) Diagnostics() []Diagnostic { return p.diags }

func (p *Parser) pushCtx(c arrayCtx) { p.ctxs = append(p.ctxs, c) }
func (p *Parser) popCtx() {
	if len(p.ctxs) > 0 {
		p.ctxs = p.ctxs[:len(p.ctxs)-1]
	}
}
func (p *Parser) topCtx() arrayCtx {
	if len(p.ctxs) == 0 {
		return arrayCtx{kind: ctxNone}
	}
	return p.ctxs[len(p.ctxs)-1]
}

// advance consumes the current token, pulling from the one-token lookahead
// buffer if PeekAhead already primed it.
func (p *Parser) advance() token.Token {
	prev := p.cur
	if p.hasNext {
		p.cur = p.next
		p.hasNext = false
	} else {
		p.cur = p.lx.Next()
	}
	return prev
}

func (p *Parser) peekNext() token.Token {
	if !p.hasNext {
		p.next = p.lx.Next()
		p.hasNext = true
	}
	return p.next
}

func (p *Parser) check(k token.Kind) bool { return p.cur.Kind == k }

func (p *Parser) match(k token.Kind) bool {
	if p.check(k) {
		p.advance()
		return true
	}
	return false
}

// expect consumes the current token if it has kind k, otherwise records a
// diagnostic and returns the zero Token so callers can keep descending.
func (p *Parser) expect(k token.Kind, what string) token.Token {
	if p.check(k) {
		return p.advance()
	}
	p.errorf("expected %s, found %s", what, p.cur.Kind)
	return token.Token{Kind: token.INVALID, Pos: p.cur.Pos}
}

func (p *Parser) errorf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	p.diags = append(p.diags, Diagnostic{
		Pos:     p.cur.Pos,
		Message: msg,
		Line:    p.lx.SourceLine(p.cur.Pos.Line),
		TokLen:  max(p.cur.Len, 1),
	})
}

// isDelim reports whether tok is an expression delimiter: an explicit `;` or
// a newline-derived EOS.
func isDelim(k token.Kind) bool { return k == token.SEMI || k == token.EOS }

// synchronize consumes tokens until the last-consumed token was a
// delimiter, or the current token starts a new statement.
func (p *Parser) synchronize() {
	for !p.check(token.EOF) {
		if isDelim(p.cur.Kind) {
			p.advance()
			return
		}
		if p.cur.Kind.IsStmtStart() {
			return
		}
		p.advance()
	}
}

// skipDelims consumes zero or more expression-delimiter tokens, so that a run
// of blank lines or stray semicolons between statements produces no nodes.
func (p *Parser) skipDelims() {
	for isDelim(p.cur.Kind) {
		p.advance()
	}
}

// Parse runs the parser to completion, returning every top-level declaration
// it could recover plus the diagnostics collected along the way. A source
// file with syntax errors still produces a non-empty declaration list.
func Parse(source string) ([]ast.Node, []Diagnostic) {
	p := New(source)
	var decls []ast.Node
	p.skipDelims()
	for !p.check(token.EOF) {
		if d := p.parseTopLevel(); d != nil {
			decls = append(decls, d)
		}
		p.skipDelims()
	}
	return decls, p.diags
}

func (p *Parser) parseTopLevel() ast.Node {
	switch {
	case p.check(token.KW_FUNC):
		return p.parseFunction()
	case p.check(token.KW_USE), p.check(token.KW_MOD):
		// Accepted syntactically but never lowered: no multi-file modules
		// despite the use/mod syntax.
		p.advance()
		for !isDelim(p.cur.Kind) && !p.check(token.EOF) {
			p.advance()
		}
		return nil
	default:
		n := p.parseDeclOrStmt()
		return n
	}
}

func (p *Parser) parseFunction() *ast.Function {
	at := p.cur.Pos
	p.advance() // 'func'
	name := p.cur.Text
	p.expect(token.IDENT, "function name")

	fn := &ast.Function{}
	fn.At = at

	if p.match(token.LPAREN) {
		fn.Params = p.parseParams()
	}

	if p.match(token.ARROW) {
		fn.RetTypeStr = p.parseTypeName()
	}

	fn.Name = name
	fn.Body = p.parseBlock()
	return fn
}

func (p *Parser) parseParams() []ast.FuncParam {
	var params []ast.FuncParam
	if p.match(token.RPAREN) {
		return params
	}
	for {
		if !p.check(token.IDENT) {
			p.errorf("expected parameter name")
			break
		}
		name := p.cur.Text
		loc := p.cur.Pos
		p.advance()
		p.expect(token.COLON, "':' after parameter name")
		dtype := p.parseTypeName()
		params = append(params, ast.FuncParam{Name: name, Loc: loc, DTypeStr: dtype})
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.RPAREN, "')'")
	return params
}

// parseTypeName reads a bare type identifier, e.g. "i32" or "ptr".
func (p *Parser) parseTypeName() string {
	if !p.check(token.IDENT) {
		p.errorf("expected type name, found %s", p.cur.Kind)
		return ""
	}
	name := p.cur.Text
	p.advance()
	return name
}

func (p *Parser) parseBlock() *ast.Block {
	at := p.cur.Pos
	p.expect(token.LBRACE, "'{'")
	b := &ast.Block{}
	b.At = at
	p.skipDelims()
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		if s := p.parseDeclOrStmt(); s != nil {
			b.Stmts = append(b.Stmts, s)
		}
		p.skipDelims()
	}
	p.expect(token.RBRACE, "'}'")
	return b
}

// parseDeclOrStmt parses one statement, recovering via synchronize on error.
// A declaration (var, implicit :=, func) is itself a kind of statement
// inside a block; any other token begins an ordinary statement.
func (p *Parser) parseDeclOrStmt() ast.Node {
	before := len(p.diags)
	n := p.parseStmt()
	if len(p.diags) > before {
		p.synchronize()
	}
	return n
}

func (p *Parser) parseStmt() ast.Node {
	switch {
	case p.check(token.LBRACE):
		return p.parseBlock()
	case p.check(token.KW_RET):
		return p.parseRet()
	case p.check(token.KW_FOR):
		return p.parseFor()
	case p.check(token.KW_IF):
		return p.parseIf()
	case p.check(token.KW_VAR):
		return p.parseExplicitVarDecl()
	case p.check(token.KW_FUNC):
		return p.parseFunction()
	case p.check(token.IDENT) && p.peekNext().Kind == token.COLONEQ:
		return p.parseImplicitVarDecl()
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseRet() *ast.Ret {
	at := p.cur.Pos
	p.advance()
	r := &ast.Ret{}
	r.At = at
	if !isDelim(p.cur.Kind) && !p.check(token.RBRACE) && !p.check(token.EOF) {
		r.Value = p.parseExpr()
	}
	p.expectDelim()
	return r
}

func (p *Parser) parseFor() *ast.For {
	at := p.cur.Pos
	p.advance() // 'for'
	f := &ast.For{}
	f.At = at
	f.VarLoc = p.cur.Pos
	f.VarName = p.cur.Text
	p.expect(token.IDENT, "loop variable")
	p.expect(token.KW_IN, "'in'")
	f.Iter = p.parseExpr()
	f.Body = p.parseBlock()
	return f
}

func (p *Parser) parseIf() *ast.If {
	at := p.cur.Pos
	p.advance() // 'if'
	n := &ast.If{}
	n.At = at
	n.Cond = p.parseExpr()
	n.Then = p.parseBlock()
	if p.match(token.KW_ELSE) {
		if p.check(token.KW_IF) {
			n.Else = p.parseIf()
		} else {
			n.Else = p.parseBlock()
		}
	}
	return n
}

// parseExplicitVarDecl parses `var name: T [ [N] ] = expr`.
func (p *Parser) parseExplicitVarDecl() *ast.VarDecl {
	at := p.cur.Pos
	p.advance() // 'var'
	v := &ast.VarDecl{}
	v.At = at
	v.NameLoc = p.cur.Pos
	v.Name = p.cur.Text
	p.expect(token.IDENT, "variable name")
	p.expect(token.COLON, "':' after variable name")
	v.DTypeStr = p.parseTypeName()

	arraySize := 0
	isArray := false
	if p.match(token.LBRACKET) {
		isArray = true
		if p.check(token.INT) {
			arraySize = parseIntLiteralLen(p.cur.Text)
			p.advance()
		}
		p.expect(token.RBRACKET, "']'")
	}
	v.ArraySize = arraySize
	v.IsArray = isArray

	p.expect(token.ASSIGN, "'='")
	if isArray {
		size := arraySize
		p.pushCtx(arrayCtx{kind: ctxArrayParse, size: size})
		v.Value = p.parsePrimary()
		p.popCtx()
	} else {
		v.Value = p.parseExpr()
	}
	p.expectDelim()
	return v
}

// parseImplicitVarDecl parses `name := expr`, recognized by the one-token
// lookahead for COLONEQ after an identifier.
func (p *Parser) parseImplicitVarDecl() *ast.VarDecl {
	at := p.cur.Pos
	v := &ast.VarDecl{}
	v.At = at
	v.NameLoc = p.cur.Pos
	v.Name = p.cur.Text
	p.advance() // identifier
	p.advance() // ':='
	v.Value = p.parseExpr()
	p.expectDelim()
	return v
}

func (p *Parser) parseExprStmt() ast.Node {
	at := p.cur.Pos
	e := p.parseExpr()
	s := &ast.ExprStmt{Expr: e}
	s.At = at
	p.expectDelim()
	return s
}

// expectDelim consumes a single expression delimiter, tolerating a following
// '}' or EOF (the last statement in a block need not be delimited).
func (p *Parser) expectDelim() {
	if isDelim(p.cur.Kind) {
		p.advance()
		return
	}
	if p.check(token.RBRACE) || p.check(token.EOF) {
		return
	}
	p.errorf("expected ';' or newline, found %s", p.cur.Kind)
}

// ---------------------------------------------------------------------------
// Expression precedence ladder, lowest to highest.

func (p *Parser) parseExpr() ast.Node { return p.parseAssignment() }

// parseAssignment is right-associative and accepts only a VarGet on its left.
func (p *Parser) parseAssignment() ast.Node {
	left := p.parseOr()
	if p.match(token.ASSIGN) {
		at := left.Pos()
		value := p.parseAssignment()
		vg, ok := left.(*ast.VarGet)
		if !ok {
			p.errorf("Invalid target for assignment")
			return left
		}
		a := &ast.Assign{Name: vg.Name, NameLoc: vg.At, Value: value}
		a.At = at
		return a
	}
	return left
}

func (p *Parser) parseOr() ast.Node {
	left := p.parseAnd()
	for p.check(token.PIPEPIPE) {
		at := p.cur.Pos
		p.advance()
		right := p.parseAnd()
		n := &ast.Logical{Left: left, Right: right, Op: ast.Or}
		n.At = at
		left = n
	}
	return left
}

func (p *Parser) parseAnd() ast.Node {
	left := p.parseEquality()
	for p.check(token.AMPAMP) {
		at := p.cur.Pos
		p.advance()
		right := p.parseEquality()
		n := &ast.Logical{Left: left, Right: right, Op: ast.And}
		n.At = at
		left = n
	}
	return left
}

func (p *Parser) parseEquality() ast.Node {
	left := p.parseComparison()
	for p.check(token.EQ) || p.check(token.NEQ) {
		op := ast.Equal
		if p.cur.Kind == token.NEQ {
			op = ast.NotEqual
		}
		at := p.cur.Pos
		p.advance()
		right := p.parseComparison()
		n := &ast.Binary{Left: left, Right: right, Op: op}
		n.At = at
		left = n
	}
	return left
}

func (p *Parser) parseComparison() ast.Node {
	left := p.parseTerm()
	for p.check(token.GT) || p.check(token.GE) || p.check(token.LT) || p.check(token.LE) {
		var op ast.BinaryOp
		switch p.cur.Kind {
		case token.GT:
			op = ast.Greater
		case token.GE:
			op = ast.GreaterEq
		case token.LT:
			op = ast.Less
		case token.LE:
			op = ast.LessEq
		}
		at := p.cur.Pos
		p.advance()
		right := p.parseTerm()
		n := &ast.Binary{Left: left, Right: right, Op: op}
		n.At = at
		left = n
	}
	return left
}

func (p *Parser) parseTerm() ast.Node {
	left := p.parseFactor()
	for p.check(token.PLUS) || p.check(token.MINUS) {
		op := ast.Add
		if p.cur.Kind == token.MINUS {
			op = ast.Sub
		}
		at := p.cur.Pos
		p.advance()
		right := p.parseFactor()
		n := &ast.Binary{Left: left, Right: right, Op: op}
		n.At = at
		left = n
	}
	return left
}

func (p *Parser) parseFactor() ast.Node {
	left := p.parseGetPtr()
	for p.check(token.STAR) || p.check(token.SLASH) {
		op := ast.Mul
		if p.cur.Kind == token.SLASH {
			op = ast.Div
		}
		at := p.cur.Pos
		p.advance()
		right := p.parseGetPtr()
		n := &ast.Binary{Left: left, Right: right, Op: op}
		n.At = at
		left = n
	}
	return left
}

// parseGetPtr is right-recursive unary `&` (address-of).
func (p *Parser) parseGetPtr() ast.Node {
	if p.check(token.AMP) {
		at := p.cur.Pos
		p.advance()
		operand := p.parseGetPtr()
		n := &ast.GetPtr{Operand: operand}
		n.At = at
		return n
	}
	return p.parseUnary()
}

// parseUnary is right-recursive unary `!`/`-`.
func (p *Parser) parseUnary() ast.Node {
	if p.check(token.BANG) || p.check(token.MINUS) {
		op := ast.Not
		if p.cur.Kind == token.MINUS {
			op = ast.Negate
		}
		opLoc := p.cur.Pos
		p.advance()
		operand := p.parseUnary()
		n := &ast.Unary{Op: op, OpLoc: opLoc, Operand: operand}
		n.At = opLoc
		return n
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() ast.Node {
	at := p.cur.Pos
	switch p.cur.Kind {
	case token.INT:
		n := &ast.NumberLit{Text: p.cur.Text}
		n.At = at
		p.advance()
		return n
	case token.FLOAT:
		n := &ast.FloatLit{Text: p.cur.Text}
		n.At = at
		p.advance()
		return n
	case token.STRING:
		n := &ast.StringLit{Value: p.cur.Text}
		n.At = at
		p.advance()
		return n
	case token.KW_TRUE, token.KW_FALSE:
		n := &ast.BoolLit{Value: p.cur.Kind == token.KW_TRUE}
		n.At = at
		p.advance()
		return n
	case token.IDENT:
		name := p.cur.Text
		p.advance()
		n := &ast.VarGet{Name: name}
		n.At = at
		return n
	case token.LPAREN:
		p.advance()
		inner := p.parseExpr()
		p.expect(token.RPAREN, "')'")
		n := &ast.Grouping{Inner: inner}
		n.At = at
		return n
	case token.LBRACE:
		return p.parseArrayLiteral(at)
	default:
		p.errorf("unexpected token %s", p.cur.Kind)
		tok := p.advance()
		n := &ast.NumberLit{Text: "0"}
		n.At = tok.Pos
		return n
	}
}

// parseArrayLiteral handles `{e1, e2, ...}`, gated by the array-parse context
// flag: only legal directly where ArrayParse was pushed by an explicit
// `var x: T[N] = ` declaration; a bare `{` elsewhere is rejected.
func (p *Parser) parseArrayLiteral(at token.Pos) ast.Node {
	ctx := p.topCtx()
	if ctx.kind != ctxArrayParse {
		p.errorf("unexpected '{' (array literal not allowed here)")
		p.advance()
		n := &ast.NumberLit{Text: "0"}
		n.At = at
		return n
	}
	p.advance() // '{'
	p.pushCtx(arrayCtx{kind: ctxArrayLiteral})
	lit := &ast.ArrayLit{}
	lit.At = at
	if !p.check(token.RBRACE) {
		for {
			if p.check(token.LBRACE) {
				p.errorf("Nested arrays are not supported")
				p.advance()
				continue
			}
			lit.Elems = append(lit.Elems, p.parseAssignment())
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.popCtx()
	p.expect(token.RBRACE, "'}'")
	return lit
}

// parseIntLiteralLen decodes a decimal integer-literal token's text into an
// int, stopping at the first non-digit and returning the value of the digits
// read so far (0 if the text does not start with a digit).
func parseIntLiteralLen(text string) int {
	n := 0
	for _, c := range text {
		if c < '0' || c > '9' {
			return n
		}
		n = n*10 + int(c-'0')
	}
	return n
}
