// Tests the lexer by feeding small inline source snippets and checking the resulting
// token kind/text sequence.
package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cplusc/src/util"
)

func scanAll(t *testing.T, src string) ([]Token, *util.Engine) {
	t.Helper()
	diag := util.NewEngine()
	l := New("test.cp", src, diag)
	var toks []Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Kind == KindEOF {
			break
		}
	}
	return toks, diag
}

func TestLexerKeywordsAndIdentifiers(t *testing.T) {
	toks, diag := scanAll(t, "int main ( ) { return 0 ; }")
	assert.False(t, diag.HasErrors())

	want := []Kind{
		KindInt, KindIdentifier, KindLParen, KindRParen, KindLBrace,
		KindReturn, KindIntegerLiteral, KindSemicolon, KindRBrace, KindEOF,
	}
	assert.Equal(t, len(want), len(toks))
	for i, k := range want {
		assert.Equalf(t, k, toks[i].Kind, "token %d (%q)", i, toks[i].Text)
	}
	assert.Equal(t, "main", toks[1].Text)
}

func TestLexerNumbers(t *testing.T) {
	toks, diag := scanAll(t, "42 3.14")
	assert.False(t, diag.HasErrors())
	assert.Equal(t, KindIntegerLiteral, toks[0].Kind)
	assert.Equal(t, "42", toks[0].Text)
	assert.Equal(t, KindDecimalLiteral, toks[1].Kind)
	assert.Equal(t, "3.14", toks[1].Text)
}

func TestLexerMalformedNumberReportsError(t *testing.T) {
	_, diag := scanAll(t, "1.2.3;")
	assert.True(t, diag.HasErrors())
}

func TestLexerStringEscapes(t *testing.T) {
	toks, diag := scanAll(t, `"hello\nworld"`)
	assert.False(t, diag.HasErrors())
	assert.Equal(t, KindStringLiteral, toks[0].Kind)
	assert.Equal(t, "hello\nworld", toks[0].Text)
}

func TestLexerUnterminatedString(t *testing.T) {
	_, diag := scanAll(t, `"oops`)
	assert.True(t, diag.HasErrors())
}

func TestLexerOperators(t *testing.T) {
	toks, diag := scanAll(t, "a == b != c <= d >= e && f || !g += h -= 1 ++i --j")
	assert.False(t, diag.HasErrors())

	var kinds []Kind
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	assert.Contains(t, kinds, KindEq)
	assert.Contains(t, kinds, KindNe)
	assert.Contains(t, kinds, KindLe)
	assert.Contains(t, kinds, KindGe)
	assert.Contains(t, kinds, KindAnd)
	assert.Contains(t, kinds, KindOr)
	assert.Contains(t, kinds, KindNot)
	assert.Contains(t, kinds, KindPlusAssign)
	assert.Contains(t, kinds, KindMinusAssign)
	assert.Contains(t, kinds, KindPlusPlus)
	assert.Contains(t, kinds, KindMinusMinus)
}

func TestLexerSkipsLineComments(t *testing.T) {
	toks, diag := scanAll(t, "int x; // this is a comment\nreturn x;")
	assert.False(t, diag.HasErrors())
	assert.Equal(t, KindInt, toks[0].Kind)
	assert.Equal(t, KindReturn, toks[3].Kind)
}

func TestLexerLineColumnTracking(t *testing.T) {
	toks, _ := scanAll(t, "int\nmain")
	assert.Equal(t, 1, toks[0].Location.Line)
	assert.Equal(t, 2, toks[1].Location.Line)
}
