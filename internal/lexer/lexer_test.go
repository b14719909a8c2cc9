package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func tokenTypes(src string) []TokenType {
	l := New(src, "test.tl")
	var out []TokenType
	for {
		tok := l.NextToken()
		out = append(out, tok.Type)
		if tok.Type == EOF {
			break
		}
	}
	return out
}

func TestLexerKeywordsAndIdents(t *testing.T) {
	types := tokenTypes("const x: string | nil = getValue()")
	require.Equal(t, []TokenType{CONST, IDENT, COLON, STRING_TYPE, PIPE, NIL, ASSIGN, IDENT, LPAREN, RPAREN, EOF}, types)
}

func TestLexerNumericLiterals(t *testing.T) {
	l := New("0x1F 0b101 3.14 2.5e10 42", "t.tl")
	var lits []string
	for {
		tok := l.NextToken()
		if tok.Type == EOF {
			break
		}
		lits = append(lits, tok.Literal)
	}
	require.Equal(t, []string{"0x1F", "0b101", "3.14", "2.5e10", "42"}, lits)
}

func TestLexerLineComment(t *testing.T) {
	types := tokenTypes("const x = 1 -- trailing comment\nconst y = 2")
	require.Equal(t, []TokenType{CONST, IDENT, ASSIGN, INT, CONST, IDENT, ASSIGN, INT, EOF}, types)
}

func TestLexerBlockComment(t *testing.T) {
	types := tokenTypes("const x = --[[ block\ncomment ]] 1")
	require.Equal(t, []TokenType{CONST, IDENT, ASSIGN, INT, EOF}, types)
}

func TestLexerBracketString(t *testing.T) {
	l := New("local s = [[hello\nworld]]", "t.tl")
	var tok Token
	for {
		tok = l.NextToken()
		if tok.Type == STRING || tok.Type == EOF {
			break
		}
	}
	require.Equal(t, STRING, tok.Type)
	require.Equal(t, "hello\nworld", tok.Literal)
}

func TestLexerTemplateLiteral(t *testing.T) {
	l := New("`hello ${name}!`", "t.tl")
	tok := l.NextToken()
	require.Equal(t, TEMPLATE_STRING, tok.Type)
	require.Contains(t, tok.Literal, "${name}")
}

func TestLexerUnterminatedStringReportsError(t *testing.T) {
	l := New(`"unterminated`, "t.tl")
	l.NextToken()
	require.Len(t, l.Errors, 1)
}

func TestLexerOptionalChainOperators(t *testing.T) {
	types := tokenTypes("a?.b a?.(c)")
	require.Contains(t, types, QDOT)
}

func TestLexerDeepNestingDoesNotPanic(t *testing.T) {
	src := ""
	for i := 0; i < 600; i++ {
		src += "("
	}
	src += "1"
	for i := 0; i < 600; i++ {
		src += ")"
	}
	types := tokenTypes(src)
	require.Equal(t, LPAREN, types[0])
}
