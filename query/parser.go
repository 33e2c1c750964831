package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Parser parses SQL queries into AST
type Parser struct {
	tokens []Token
	pos    int
	depth  int
}

// NewParser creates a new parser
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// current returns the current token
func (p *Parser) current() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF, Value: ""}
	}
	return p.tokens[p.pos]
}

// peek returns the next token without advancing
func (p *Parser) peek() Token {
	if p.pos+1 >= len(p.tokens) {
		return Token{Type: TokenEOF, Value: ""}
	}
	return p.tokens[p.pos+1]
}

// advance moves to the next token
func (p *Parser) advance() {
	p.pos++
}

// expect checks if current token matches expected type and advances
func (p *Parser) expect(tokType TokenType) error {
	if p.current().Type != tokType {
		return fmt.Errorf("expected %v, got %s", tokType, describe(p.current()))
	}
	p.advance()
	return nil
}

func describe(tok Token) string {
	switch tok.Type {
	case TokenEOF:
		return "end of query"
	case TokenError:
		return fmt.Sprintf("invalid input %q", tok.Value)
	default:
		return fmt.Sprintf("%q", tok.Value)
	}
}

// Parse parses a SQL query. Errors are *Error values.
func Parse(query string) (*Query, error) {
	q, err := parse(query)
	if err != nil {
		return nil, syntaxError(err)
	}
	return q, nil
}

func parse(query string) (*Query, error) {
	tokens, err := tokenize(query)
	if err != nil {
		return nil, err
	}
	return NewParser(tokens).parseQuery()
}

// tokenize validates and lexes input, rejecting the first invalid token.
func tokenize(input string) ([]Token, error) {
	if err := checkLimit("query length", len(input), MaxQueryLength); err != nil {
		return nil, err
	}
	tokens := Tokenize(input)
	if err := checkLimit("token count", len(tokens), MaxTokens); err != nil {
		return nil, err
	}
	if last := tokens[len(tokens)-1]; last.Type == TokenError {
		return nil, fmt.Errorf("invalid input %q at token %d", last.Value, len(tokens))
	}
	return tokens, nil
}

// ParseExpression parses a standalone WHERE expression such as
// "age > 30 AND name IS NOT NULL". Errors are *Error values.
func ParseExpression(expr string) (Expression, error) {
	e, err := parseExpression(expr)
	if err != nil {
		return nil, syntaxError(err)
	}
	return e, nil
}

func parseExpression(expr string) (Expression, error) {
	tokens, err := tokenize(expr)
	if err != nil {
		return nil, err
	}

	p := NewParser(tokens)
	e, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.current().Type != TokenEOF {
		return nil, fmt.Errorf("unexpected %s after expression", describe(p.current()))
	}
	return e, nil
}

// parseQuery parses:
// SELECT select_list FROM table [WHERE expr] [LIMIT n] [;]
func (p *Parser) parseQuery() (*Query, error) {
	if err := p.expect(TokenSelect); err != nil {
		return nil, fmt.Errorf("query must start with SELECT: %w", err)
	}

	q := &Query{Limit: -1}
	if err := p.parseSelectList(q); err != nil {
		return nil, err
	}

	if err := p.expect(TokenFrom); err != nil {
		return nil, fmt.Errorf("expected FROM after select list: %w", err)
	}

	// Table name (binding name or file path)
	tableName := p.current().Value
	if p.current().Type != TokenIdent && p.current().Type != TokenString {
		return nil, fmt.Errorf("expected table name after FROM, got %s", describe(p.current()))
	}
	p.advance()
	if tableName == "" {
		return nil, errors.New("table name cannot be empty")
	}
	if err := checkLimit("table name length", len(tableName), MaxTableNameLength); err != nil {
		return nil, err
	}
	q.TableName = tableName

	if p.current().Type == TokenWhere {
		p.advance()
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		q.Filter = expr
	}

	if p.current().Type == TokenLimit {
		p.advance()
		tok := p.current()
		n, err := strconv.ParseInt(tok.Value, 10, 64)
		if tok.Type != TokenNumber || err != nil || n < 0 {
			return nil, fmt.Errorf("LIMIT expects a non-negative integer, got %s", describe(tok))
		}
		p.advance()
		q.Limit = n
	}

	if p.current().Type == TokenSemicolon {
		p.advance()
	}
	if p.current().Type != TokenEOF {
		return nil, fmt.Errorf("unexpected %s after query", describe(p.current()))
	}
	return q, nil
}

// parseSelectList parses '*', COUNT(*) [AS alias] or col [AS alias], ...
func (p *Parser) parseSelectList(q *Query) error {
	tok := p.current()
	if tok.Type == TokenIdent && tok.Value == "*" {
		p.advance()
		return nil
	}

	if tok.Type == TokenIdent && strings.EqualFold(tok.Value, "count") && p.peek().Type == TokenLeftParen {
		p.advance()
		p.advance()
		if star := p.current(); star.Type != TokenIdent || star.Value != "*" {
			return fmt.Errorf("only COUNT(*) is supported, got COUNT(%s", describe(star))
		}
		p.advance()
		if err := p.expect(TokenRightParen); err != nil {
			return err
		}
		item := SelectItem{Column: "count(*)"}
		alias, err := p.parseAlias()
		if err != nil {
			return err
		}
		item.Alias = alias
		q.Count = &item
		if p.current().Type == TokenComma {
			return fmt.Errorf("COUNT(*) cannot be combined with other columns")
		}
		return nil
	}

	for {
		tok := p.current()
		if tok.Type != TokenIdent || tok.Value == "*" {
			return fmt.Errorf("expected column name in select list, got %s", describe(tok))
		}
		column, err := p.identifier()
		if err != nil {
			return err
		}

		item := SelectItem{Column: column}
		alias, err := p.parseAlias()
		if err != nil {
			return err
		}
		item.Alias = alias
		q.SelectList = append(q.SelectList, item)

		if p.current().Type != TokenComma {
			return nil
		}
		p.advance()
	}
}

func (p *Parser) parseAlias() (string, error) {
	if p.current().Type != TokenAs {
		return "", nil
	}
	p.advance()
	tok := p.current()
	if tok.Type != TokenIdent || tok.Value == "*" {
		return "", fmt.Errorf("expected alias after AS, got %s", describe(tok))
	}
	return p.identifier()
}

// parseOr parses OR expressions (lowest precedence)
func (p *Parser) parseOr() (Expression, error) {
	if err := p.nest(); err != nil {
		return nil, err
	}
	defer p.unnest()

	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.current().Type == TokenOr {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Operator: TokenOr, Right: right}
	}

	return left, nil
}

// parseAnd parses AND expressions (higher precedence than OR)
func (p *Parser) parseAnd() (Expression, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}

	for p.current().Type == TokenAnd {
		p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Operator: TokenAnd, Right: right}
	}

	return left, nil
}

// parseNot parses NOT prefixes (higher precedence than AND)
func (p *Parser) parseNot() (Expression, error) {
	if p.current().Type != TokenNot {
		return p.parsePrimary()
	}
	if err := p.nest(); err != nil {
		return nil, err
	}
	defer p.unnest()

	p.advance()
	expr, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	return &NotExpr{Expr: expr}, nil
}

// parsePrimary parses a parenthesized expression or a predicate
func (p *Parser) parsePrimary() (Expression, error) {
	if p.current().Type == TokenLeftParen {
		p.advance()
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokenRightParen); err != nil {
			return nil, err
		}
		return expr, nil
	}
	return p.parseComparison()
}

// parseComparison parses col op value, value op col and col IS [NOT] NULL
func (p *Parser) parseComparison() (Expression, error) {
	// A literal on the left is mirrored onto the right.
	if isLiteral(p.current().Type) && p.peek().Type != TokenEOF {
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		operator := p.current().Type
		if !isComparison(operator) {
			return nil, fmt.Errorf("expected comparison operator, got %s", describe(p.current()))
		}
		p.advance()
		column, err := p.parseColumn()
		if err != nil {
			return nil, err
		}
		return &ComparisonExpr{Column: column, Operator: mirror(operator), Value: value}, nil
	}

	column, err := p.parseColumn()
	if err != nil {
		return nil, err
	}

	if p.current().Type == TokenIs {
		p.advance()
		negate := false
		if p.current().Type == TokenNot {
			negate = true
			p.advance()
		}
		if err := p.expect(TokenNull); err != nil {
			return nil, err
		}
		return &NullCheckExpr{Column: column, Negate: negate}, nil
	}

	operator := p.current().Type
	if !isComparison(operator) {
		return nil, fmt.Errorf("expected comparison operator, got %s", describe(p.current()))
	}
	p.advance()

	value, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	return &ComparisonExpr{Column: column, Operator: operator, Value: value}, nil
}

func (p *Parser) parseColumn() (string, error) {
	tok := p.current()
	if tok.Type != TokenIdent || tok.Value == "*" {
		return "", fmt.Errorf("expected column name, got %s", describe(tok))
	}
	return p.identifier()
}

// parseValue parses a string, number, boolean or NULL literal
func (p *Parser) parseValue() (interface{}, error) {
	tok := p.current()
	var value interface{}
	switch tok.Type {
	case TokenString:
		value = tok.Value
	case TokenNumber:
		// Try to parse as int first, then float
		if intVal, err := strconv.ParseInt(tok.Value, 10, 64); err == nil {
			value = intVal
		} else if floatVal, err := strconv.ParseFloat(tok.Value, 64); err == nil {
			value = floatVal
		} else {
			return nil, fmt.Errorf("invalid number: %s", tok.Value)
		}
	case TokenBool:
		value = strings.EqualFold(tok.Value, "true")
	case TokenNull:
		value = nil
	default:
		return nil, fmt.Errorf("expected value (string, number, bool or NULL), got %s", describe(tok))
	}
	p.advance()
	return value, nil
}

func isLiteral(t TokenType) bool {
	switch t {
	case TokenString, TokenNumber, TokenBool, TokenNull:
		return true
	}
	return false
}

func isComparison(t TokenType) bool {
	switch t {
	case TokenEqual, TokenNotEqual, TokenLess, TokenGreater, TokenLessEqual, TokenGreaterEqual:
		return true
	}
	return false
}

// mirror returns the operator with its operands swapped.
func mirror(t TokenType) TokenType {
	switch t {
	case TokenLess:
		return TokenGreater
	case TokenGreater:
		return TokenLess
	case TokenLessEqual:
		return TokenGreaterEqual
	case TokenGreaterEqual:
		return TokenLessEqual
	default:
		return t
	}
}
