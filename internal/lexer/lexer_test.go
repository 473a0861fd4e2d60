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
package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/falcon-lang/falcon/internal/token"
)

func collectKinds(src string) []token.Kind {
	lx := New(src)
	var kinds []token.Kind
	for {
		tok := lx.Next()
		kinds = append(kinds, tok.Kind)
		if tok.Kind == token.EOF {
			break
		}
	}
	return kinds
}

func TestNextPunctuationAndOperators(t *testing.T) {
	kinds := collectKinds(":= -> == != <= >= && || &")
	want := []token.Kind{
		token.COLONEQ, token.ARROW, token.EQ, token.NEQ, token.LE, token.GE,
		token.AMPAMP, token.PIPEPIPE, token.AMP, token.EOF,
	}
	require.Equal(t, want, kinds)
}

func TestAmpersandNotFollowedByAmpersandIsGetPtr(t *testing.T) {
	lx := New("&y")
	tok := lx.Next()
	require.Equal(t, token.AMP, tok.Kind)
}

func TestKeywordsAreNotIdentifiers(t *testing.T) {
	for word, kind := range map[string]token.Kind{
		"func": token.KW_FUNC, "var": token.KW_VAR, "ret": token.KW_RET,
		"if": token.KW_IF, "else": token.KW_ELSE, "for": token.KW_FOR,
		"in": token.KW_IN, "true": token.KW_TRUE, "false": token.KW_FALSE,
	} {
		lx := New(word)
		tok := lx.Next()
		require.Equalf(t, kind, tok.Kind, "keyword %q", word)
	}
	lx := New("forbidden")
	tok := lx.Next()
	require.Equal(t, token.IDENT, tok.Kind, "expected IDENT for prefix-matching identifier")
}

func TestNewlineIsExplicitEOS(t *testing.T) {
	lx := New("a\nb")
	first := lx.Next()
	require.Equal(t, token.IDENT, first.Kind)
	eos := lx.Next()
	require.Equal(t, token.EOS, eos.Kind, "expected EOS for newline")
}

func TestLineCommentSkipped(t *testing.T) {
	kinds := collectKinds("a // trailing comment\nb")
	want := []token.Kind{token.IDENT, token.EOS, token.IDENT, token.EOF}
	require.Equal(t, want, kinds)
}

func TestNumberAndFloatLiterals(t *testing.T) {
	lx := New("123 4.5")
	intTok := lx.Next()
	require.Equal(t, token.INT, intTok.Kind)
	require.Equal(t, "123", intTok.Text)
	floatTok := lx.Next()
	require.Equal(t, token.FLOAT, floatTok.Kind)
	require.Equal(t, "4.5", floatTok.Text)
}

func TestStringLiteralDecodesWithoutQuotes(t *testing.T) {
	lx := New(`"hello world"`)
	tok := lx.Next()
	require.Equal(t, token.STRING, tok.Kind)
	require.Equal(t, "hello world", tok.Text)
}

func TestPeekAheadRestoresCursorExactly(t *testing.T) {
	lx := New("a b c")
	before := lx.cur
	peeked := lx.PeekAhead()
	after := lx.cur
	require.Equal(t, before, after, "PeekAhead must not mutate the cursor")
	require.Equal(t, token.IDENT, peeked.Kind)
	require.Equal(t, "a", peeked.Text)

	// The next real Next() call must reproduce the exact same token.
	next := lx.Next()
	require.Equal(t, peeked.Kind, next.Kind)
	require.Equal(t, peeked.Text, next.Text)
}

func TestTokenPosAndLen(t *testing.T) {
	lx := New("abc")
	tok := lx.Next()
	require.Equal(t, 1, tok.Pos.Line)
	require.Equal(t, 3, tok.Pos.Column, "expected pos of the last character of 'abc' to be 1:3")
	require.Equal(t, 3, token.GetTokLen(tok))
}
