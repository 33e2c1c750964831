package query

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lexer tokenizes SQL query strings
type Lexer struct {
	input string
	pos   int // offset of the rune after ch
	ch    rune
}

// NewLexer creates a new lexer
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// readChar reads the next character
func (l *Lexer) readChar() {
	if l.pos >= len(l.input) {
		l.ch = 0
		l.pos = len(l.input) + 1
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.pos:])
	l.ch = r
	l.pos += size
}

// peekChar looks at the next character without advancing
func (l *Lexer) peekChar() rune {
	if l.pos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	return r
}

// skipWhitespace skips whitespace characters and "--" line comments
func (l *Lexer) skipWhitespace() {
	for {
		switch {
		case unicode.IsSpace(l.ch):
			l.readChar()
		case l.ch == '-' && l.peekChar() == '-':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		default:
			return
		}
	}
}

// readQuoted reads text up to the closing quote. A doubled quote stands for
// itself; inside single quotes backslash escapes are also honored.
func (l *Lexer) readQuoted(quote rune) (string, bool) {
	var result strings.Builder
	l.readChar() // skip opening quote

	for {
		switch {
		case l.ch == 0:
			return result.String(), false
		case l.ch == quote && l.peekChar() == quote:
			result.WriteRune(quote)
			l.readChar()
		case l.ch == quote:
			l.readChar() // skip closing quote
			return result.String(), true
		case l.ch == '\\' && quote == '\'':
			l.readChar()
			switch l.ch {
			case 'n':
				result.WriteRune('\n')
			case 't':
				result.WriteRune('\t')
			case 0:
				return result.String(), false
			default:
				result.WriteRune(l.ch)
			}
		default:
			result.WriteRune(l.ch)
		}
		l.readChar()
	}
}

// readNumber reads an optionally signed decimal number with an optional
// exponent.
func (l *Lexer) readNumber() string {
	var result strings.Builder

	if l.ch == '-' {
		result.WriteRune(l.ch)
		l.readChar()
	}
	for unicode.IsDigit(l.ch) || l.ch == '.' {
		result.WriteRune(l.ch)
		l.readChar()
	}
	if l.ch == 'e' || l.ch == 'E' {
		result.WriteRune(l.ch)
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			result.WriteRune(l.ch)
			l.readChar()
		}
		for unicode.IsDigit(l.ch) {
			result.WriteRune(l.ch)
			l.readChar()
		}
	}
	return result.String()
}

// readIdentifier reads an identifier or keyword (including file paths)
func (l *Lexer) readIdentifier() string {
	var result strings.Builder
	for unicode.IsLetter(l.ch) || unicode.IsDigit(l.ch) || l.ch == '_' || l.ch == '.' || l.ch == '/' || l.ch == '-' {
		result.WriteRune(l.ch)
		l.readChar()
	}
	return result.String()
}

func (l *Lexer) single(t TokenType, value string) Token {
	l.readChar()
	return Token{Type: t, Value: value}
}

func (l *Lexer) pair(t TokenType, value string) Token {
	l.readChar()
	l.readChar()
	return Token{Type: t, Value: value}
}

// NextToken returns the next token
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	switch l.ch {
	case 0:
		return Token{Type: TokenEOF, Value: ""}
	case '=':
		return l.single(TokenEqual, "=")
	case '!':
		if l.peekChar() == '=' {
			return l.pair(TokenNotEqual, "!=")
		}
		return l.single(TokenError, "!")
	case '<':
		switch l.peekChar() {
		case '=':
			return l.pair(TokenLessEqual, "<=")
		case '>':
			return l.pair(TokenNotEqual, "<>")
		}
		return l.single(TokenLess, "<")
	case '>':
		if l.peekChar() == '=' {
			return l.pair(TokenGreaterEqual, ">=")
		}
		return l.single(TokenGreater, ">")
	case ',':
		return l.single(TokenComma, ",")
	case '(':
		return l.single(TokenLeftParen, "(")
	case ')':
		return l.single(TokenRightParen, ")")
	case ';':
		return l.single(TokenSemicolon, ";")
	case '*':
		return l.single(TokenIdent, "*")
	case '\'':
		value, ok := l.readQuoted('\'')
		if !ok {
			return Token{Type: TokenError, Value: "unterminated string"}
		}
		return Token{Type: TokenString, Value: value}
	case '"', '`':
		value, ok := l.readQuoted(l.ch)
		if !ok {
			return Token{Type: TokenError, Value: "unterminated quoted identifier"}
		}
		return Token{Type: TokenIdent, Value: value}
	}

	switch {
	case unicode.IsDigit(l.ch), l.ch == '-' && unicode.IsDigit(l.peekChar()), l.ch == '.' && unicode.IsDigit(l.peekChar()):
		return Token{Type: TokenNumber, Value: l.readNumber()}
	case unicode.IsLetter(l.ch) || l.ch == '_':
		value := l.readIdentifier()
		return Token{Type: identifierType(value), Value: value}
	default:
		return l.single(TokenError, string(l.ch))
	}
}

var keywords = map[string]TokenType{
	"SELECT": TokenSelect,
	"FROM":   TokenFrom,
	"WHERE":  TokenWhere,
	"AND":    TokenAnd,
	"OR":     TokenOr,
	"NOT":    TokenNot,
	"AS":     TokenAs,
	"IS":     TokenIs,
	"NULL":   TokenNull,
	"LIMIT":  TokenLimit,
	"TRUE":   TokenBool,
	"FALSE":  TokenBool,
}

// identifierType determines if an identifier is a keyword. Keywords are
// case-insensitive.
func identifierType(ident string) TokenType {
	if tokType, ok := keywords[strings.ToUpper(ident)]; ok {
		return tokType
	}
	return TokenIdent
}

// Tokenize returns all tokens from the input
func Tokenize(input string) []Token {
	lexer := NewLexer(input)
	var tokens []Token

	for {
		tok := lexer.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF || tok.Type == TokenError || len(tokens) > MaxTokens {
			break
		}
	}

	return tokens
}
