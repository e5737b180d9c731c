package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jesperkha/koi/internal/lexer"
	"github.com/jesperkha/koi/internal/source"
	"github.com/jesperkha/koi/internal/token"
)

func scan(t *testing.T, text string) []token.Token {
	t.Helper()
	sm := source.NewMap()
	src := sm.Add("test.koi", []byte(text))
	toks, bag := lexer.Scan(src, nil)
	require.True(t, bag.Empty(), "unexpected scan errors: %v", bag.All())
	return toks
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestScanKeywordsAndPunctuation(t *testing.T) {
	toks := scan(t, "func f() int { return 0 }")
	require.Equal(t, []token.Kind{
		token.Func, token.IdentLit, token.LParen, token.RParen, token.KwInt,
		token.LBrace, token.Return, token.IntLit, token.RBrace,
	}, kinds(toks))
}

func TestScanIntLiteralParsesValue(t *testing.T) {
	toks := scan(t, "42")
	require.Len(t, toks, 1)
	require.Equal(t, token.IntLit, toks[0].Kind)
	require.Equal(t, int64(42), toks[0].Int)
}

func TestScanStringLiteral(t *testing.T) {
	toks := scan(t, `"hello"`)
	require.Len(t, toks, 1)
	require.Equal(t, token.StringLit, toks[0].Kind)
	require.Equal(t, "hello", toks[0].Lit)
}

func TestScanOperators(t *testing.T) {
	toks := scan(t, "a == b != c <= d >= e := f")
	require.Equal(t, []token.Kind{
		token.IdentLit, token.EqEq, token.IdentLit, token.NotEq, token.IdentLit,
		token.LessEq, token.IdentLit, token.GreaterEq, token.IdentLit, token.ColonEq,
		token.IdentLit,
	}, kinds(toks))
}

func TestScanInvalidCharacterAccumulatesDiagnostic(t *testing.T) {
	sm := source.NewMap()
	src := sm.Add("test.koi", []byte("1 @ 2"))
	_, bag := lexer.Scan(src, nil)
	require.False(t, bag.Empty())
}
