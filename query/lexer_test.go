package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexer_Tokens(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Token
	}{
		{
			name:  "case insensitive keywords",
			input: "select FROM where",
			expected: []Token{
				{Type: TokenSelect, Value: "select"},
				{Type: TokenFrom, Value: "FROM"},
				{Type: TokenWhere, Value: "where"},
				{Type: TokenEOF},
			},
		},
		{
			name:  "logic and null keywords",
			input: "AND or Not IS null",
			expected: []Token{
				{Type: TokenAnd, Value: "AND"},
				{Type: TokenOr, Value: "or"},
				{Type: TokenNot, Value: "Not"},
				{Type: TokenIs, Value: "IS"},
				{Type: TokenNull, Value: "null"},
				{Type: TokenEOF},
			},
		},
		{
			name:  "operators",
			input: "= != <> < > <= >=",
			expected: []Token{
				{Type: TokenEqual, Value: "="},
				{Type: TokenNotEqual, Value: "!="},
				{Type: TokenNotEqual, Value: "<>"},
				{Type: TokenLess, Value: "<"},
				{Type: TokenGreater, Value: ">"},
				{Type: TokenLessEqual, Value: "<="},
				{Type: TokenGreaterEqual, Value: ">="},
				{Type: TokenEOF},
			},
		},
		{
			name:  "delimiters",
			input: "count(*), x;",
			expected: []Token{
				{Type: TokenIdent, Value: "count"},
				{Type: TokenLeftParen, Value: "("},
				{Type: TokenIdent, Value: "*"},
				{Type: TokenRightParen, Value: ")"},
				{Type: TokenComma, Value: ","},
				{Type: TokenIdent, Value: "x"},
				{Type: TokenSemicolon, Value: ";"},
				{Type: TokenEOF},
			},
		},
		{
			name:  "numbers",
			input: "42 -7 3.14 1e3 .5",
			expected: []Token{
				{Type: TokenNumber, Value: "42"},
				{Type: TokenNumber, Value: "-7"},
				{Type: TokenNumber, Value: "3.14"},
				{Type: TokenNumber, Value: "1e3"},
				{Type: TokenNumber, Value: ".5"},
				{Type: TokenEOF},
			},
		},
		{
			name:  "strings and escapes",
			input: `'it''s' 'a\'b' 'tab\there'`,
			expected: []Token{
				{Type: TokenString, Value: "it's"},
				{Type: TokenString, Value: "a'b"},
				{Type: TokenString, Value: "tab\there"},
				{Type: TokenEOF},
			},
		},
		{
			name:  "quoted identifiers",
			input: "\"my col\" `data/file.parquet`",
			expected: []Token{
				{Type: TokenIdent, Value: "my col"},
				{Type: TokenIdent, Value: "data/file.parquet"},
				{Type: TokenEOF},
			},
		},
		{
			name:  "booleans",
			input: "TRUE false",
			expected: []Token{
				{Type: TokenBool, Value: "TRUE"},
				{Type: TokenBool, Value: "false"},
				{Type: TokenEOF},
			},
		},
		{
			name:  "file path identifier",
			input: "testdata/simple-1.parquet",
			expected: []Token{
				{Type: TokenIdent, Value: "testdata/simple-1.parquet"},
				{Type: TokenEOF},
			},
		},
		{
			name:  "line comment",
			input: "a -- the rest is ignored\nb",
			expected: []Token{
				{Type: TokenIdent, Value: "a"},
				{Type: TokenIdent, Value: "b"},
				{Type: TokenEOF},
			},
		},
		{
			name:  "unicode identifier",
			input: "städte",
			expected: []Token{
				{Type: TokenIdent, Value: "städte"},
				{Type: TokenEOF},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Tokenize(tt.input))
		})
	}
}

func TestLexer_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		value string
	}{
		{"unterminated string", "name = 'alice", "unterminated string"},
		{"unterminated identifier", `"col`, "unterminated quoted identifier"},
		{"lone bang", "a ! b", "!"},
		{"unknown character", "a # b", "#"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := Tokenize(tt.input)
			last := tokens[len(tokens)-1]
			assert.Equal(t, TokenError, last.Type)
			assert.Equal(t, tt.value, last.Value)
		})
	}
}

func TestTokenize_StopsAfterMaxTokens(t *testing.T) {
	tokens := Tokenize(strings.Repeat("a ", MaxTokens*2))
	require.Len(t, tokens, MaxTokens+1)
	assert.Equal(t, TokenIdent, tokens[MaxTokens].Type)
}

func TestTokenType_String(t *testing.T) {
	assert.Equal(t, "SELECT", TokenSelect.String())
	assert.Equal(t, "end of query", TokenEOF.String())
	assert.Equal(t, "token(999)", TokenType(999).String())
}
