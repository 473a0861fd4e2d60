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

// Package lexer turns a source string into a restartable sequence of
// internal/token.Token values with source locations, and supports a single
// token of lookahead whose cursor state can be saved and restored exactly.
package lexer

import (
	"strings"

	"github.com/falcon-lang/falcon/internal/token"
)

// cursor is the mutable scan position; saving and restoring a cursor value
// gives PeekAhead its exact, non-mutating semantics.
type cursor struct {
	start  int
	pos    int
	line   int
	column int
}

// Lexer scans a source string into tokens on demand.
type Lexer struct {
	src string
	cur cursor
}

// New creates a Lexer over source.
func New(source string) *Lexer {
	return &Lexer{
		src: source,
		cur: cursor{line: 1, column: 1},
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}
func isAlnum(c byte) bool { return isAlpha(c) || isDigit(c) }

func (l *Lexer) atEnd() bool { return l.cur.pos >= len(l.src) }

func (l *Lexer) peek() byte {
	if l.atEnd() {
		return 0
	}
	return l.src[l.cur.pos]
}

func (l *Lexer) peekNext() byte {
	if l.cur.pos+1 >= len(l.src) {
		return 0
	}
	return l.src[l.cur.pos+1]
}

func (l *Lexer) advance() byte {
	c := l.src[l.cur.pos]
	l.cur.pos++
	if c == '\n' {
		l.cur.line++
		l.cur.column = 1
	} else {
		l.cur.column++
	}
	return c
}

func (l *Lexer) match(expected byte) bool {
	if l.atEnd() || l.peek() != expected {
		return false
	}
	l.advance()
	return true
}

// makeTok builds a token positioned at its last character; a token that
// consumed nothing (EOF) takes the current cursor position.
func (l *Lexer) makeTok(kind token.Kind, text string) token.Token {
	pos := token.Pos{Line: l.cur.line, Column: l.cur.column}
	if l.cur.pos > l.cur.start {
		last := l.cur.pos - 1
		lineStart := strings.LastIndexByte(l.src[:last], '\n') + 1
		pos.Column = last - lineStart + 1
		if l.src[last] == '\n' {
			pos.Line--
		}
	}
	return token.Token{
		Kind: kind,
		Text: text,
		Pos:  pos,
		Len:  l.cur.pos - l.cur.start,
	}
}

// Next scans and returns the next token, or a token.EOF token at end of
// source. Whitespace and `//` line comments are skipped; a bare newline
// outside of whitespace-skipping becomes an explicit token.EOS.
func (l *Lexer) Next() token.Token {
	for {
		l.skipIntraLineSpace()
		if l.atEnd() {
			l.cur.start = l.cur.pos
			return l.makeTok(token.EOF, "")
		}
		if l.peek() == '\n' {
			l.cur.start = l.cur.pos
			l.advance()
			return l.makeTok(token.EOS, "")
		}
		if l.peek() == '/' && l.peekNext() == '/' {
			for !l.atEnd() && l.peek() != '\n' {
				l.advance()
			}
			continue
		}
		break
	}

	l.cur.start = l.cur.pos
	c := l.advance()

	switch {
	case isAlpha(c):
		return l.identifier()
	case isDigit(c):
		return l.number()
	}

	switch c {
	case '{':
		return l.makeTok(token.LBRACE, "")
	case '}':
		return l.makeTok(token.RBRACE, "")
	case '(':
		return l.makeTok(token.LPAREN, "")
	case ')':
		return l.makeTok(token.RPAREN, "")
	case '[':
		return l.makeTok(token.LBRACKET, "")
	case ']':
		return l.makeTok(token.RBRACKET, "")
	case ',':
		return l.makeTok(token.COMMA, "")
	case '.':
		return l.makeTok(token.DOT, "")
	case ';':
		return l.makeTok(token.SEMI, "")
	case ':':
		if l.match('=') {
			return l.makeTok(token.COLONEQ, "")
		}
		return l.makeTok(token.COLON, "")
	case '+':
		return l.makeTok(token.PLUS, "")
	case '-':
		if l.match('>') {
			return l.makeTok(token.ARROW, "")
		}
		return l.makeTok(token.MINUS, "")
	case '*':
		return l.makeTok(token.STAR, "")
	case '/':
		return l.makeTok(token.SLASH, "")
	case '=':
		if l.match('=') {
			return l.makeTok(token.EQ, "")
		}
		return l.makeTok(token.ASSIGN, "")
	case '!':
		if l.match('=') {
			return l.makeTok(token.NEQ, "")
		}
		return l.makeTok(token.BANG, "")
	case '<':
		if l.match('=') {
			return l.makeTok(token.LE, "")
		}
		return l.makeTok(token.LT, "")
	case '>':
		if l.match('=') {
			return l.makeTok(token.GE, "")
		}
		return l.makeTok(token.GT, "")
	case '&':
		if l.match('&') {
			return l.makeTok(token.AMPAMP, "")
		}
		return l.makeTok(token.AMP, "")
	case '|':
		if l.match('|') {
			return l.makeTok(token.PIPEPIPE, "")
		}
		return l.makeTok(token.INVALID, "|")
	case '"':
		return l.string()
	default:
		return l.makeTok(token.INVALID, string(c))
	}
}

// skipIntraLineSpace skips spaces, tabs and carriage returns but leaves
// newlines in place, since a bare newline is itself a significant EOS token.
func (l *Lexer) skipIntraLineSpace() {
	for !l.atEnd() {
		switch l.peek() {
		case ' ', '\t', '\r':
			l.advance()
		default:
			return
		}
	}
}

func (l *Lexer) identifier() token.Token {
	for !l.atEnd() && isAlnum(l.peek()) {
		l.advance()
	}
	text := l.src[l.cur.start:l.cur.pos]
	if kw, ok := token.Lookup(text); ok {
		return l.makeTok(kw, text)
	}
	return l.makeTok(token.IDENT, text)
}

func (l *Lexer) number() token.Token {
	for !l.atEnd() && isDigit(l.peek()) {
		l.advance()
	}
	isFloat := false
	if l.peek() == '.' && isDigit(l.peekNext()) {
		isFloat = true
		l.advance()
		for !l.atEnd() && isDigit(l.peek()) {
			l.advance()
		}
	}
	text := l.src[l.cur.start:l.cur.pos]
	if isFloat {
		return l.makeTok(token.FLOAT, text)
	}
	return l.makeTok(token.INT, text)
}

func (l *Lexer) string() token.Token {
	var sb strings.Builder
	for !l.atEnd() && l.peek() != '"' {
		sb.WriteByte(l.advance())
	}
	if !l.atEnd() {
		l.advance() // closing quote
	}
	return l.makeTok(token.STRING, sb.String())
}

// PeekAhead returns the token that would be produced by the next call to
// Next, without consuming it: cursor state is saved and restored exactly.
func (l *Lexer) PeekAhead() token.Token {
	saved := l.cur
	t := l.Next()
	l.cur = saved
	return t
}

// SourceLine returns the left-trimmed text of the 1-based line number, for
// diagnostic rendering.
func (l *Lexer) SourceLine(line int) string {
	lines := strings.Split(l.src, "\n")
	if line < 1 || line > len(lines) {
		return ""
	}
	return strings.TrimLeft(lines[line-1], " \t")
}
