// Package query provides a small streaming SQL engine over row batches.
//
// It implements a SQL-like language with projection, COUNT(*), WHERE
// clauses with comparison operators, IS [NOT] NULL and boolean logic
// (AND/OR/NOT), and LIMIT. The package includes a lexer for tokenization, a
// parser for building ASTs, and an executor that filters and projects a
// reader.BatchReader one batch at a time.
//
// Example usage:
//
//	q, err := query.Parse("SELECT name FROM tbl WHERE age > 30 LIMIT 5")
//	if err != nil {
//	    return err
//	}
//	result, err := query.Execute(ctx, q, stream)
package query

import "fmt"

// TokenType represents the type of a token
type TokenType int

const (
	// Keywords
	TokenSelect TokenType = iota
	TokenFrom
	TokenWhere
	TokenAnd
	TokenOr
	TokenNot
	TokenAs
	TokenIs
	TokenNull
	TokenLimit

	// Operators
	TokenEqual        // =
	TokenNotEqual     // != or <>
	TokenLess         // <
	TokenGreater      // >
	TokenLessEqual    // <=
	TokenGreaterEqual // >=

	// Literals
	TokenString
	TokenNumber
	TokenIdent
	TokenBool

	// Delimiters
	TokenComma      // ,
	TokenLeftParen  // (
	TokenRightParen // )
	TokenSemicolon  // ;

	// Special
	TokenEOF
	TokenError
)

var tokenNames = map[TokenType]string{
	TokenSelect:       "SELECT",
	TokenFrom:         "FROM",
	TokenWhere:        "WHERE",
	TokenAnd:          "AND",
	TokenOr:           "OR",
	TokenNot:          "NOT",
	TokenAs:           "AS",
	TokenIs:           "IS",
	TokenNull:         "NULL",
	TokenLimit:        "LIMIT",
	TokenEqual:        "'='",
	TokenNotEqual:     "'!='",
	TokenLess:         "'<'",
	TokenGreater:      "'>'",
	TokenLessEqual:    "'<='",
	TokenGreaterEqual: "'>='",
	TokenString:       "string",
	TokenNumber:       "number",
	TokenIdent:        "identifier",
	TokenBool:         "boolean",
	TokenComma:        "','",
	TokenLeftParen:    "'('",
	TokenRightParen:   "')'",
	TokenSemicolon:    "';'",
	TokenEOF:          "end of query",
	TokenError:        "invalid character",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// Token represents a lexical token
type Token struct {
	Type  TokenType
	Value string
}

// Query represents a parsed SQL query
type Query struct {
	TableName string
	// SelectList is empty for SELECT *.
	SelectList []SelectItem
	// Count is set for SELECT COUNT(*).
	Count *SelectItem
	Filter Expression
	// Limit is -1 when absent.
	Limit int64
}

// SelectItem is one projected column.
type SelectItem struct {
	Column string
	Alias  string
}

// OutputName returns the alias if set, otherwise the column name.
func (s SelectItem) OutputName() string {
	if s.Alias != "" {
		return s.Alias
	}
	return s.Column
}

// Expression represents a boolean expression in the WHERE clause
type Expression interface {
	// Columns appends the column names the expression reads.
	Columns(dst []string) []string
}

// BinaryExpr represents a binary expression (AND/OR)
type BinaryExpr struct {
	Left     Expression
	Operator TokenType // TokenAnd or TokenOr
	Right    Expression
}

// NotExpr negates an expression.
type NotExpr struct {
	Expr Expression
}

// ComparisonExpr represents a comparison expression
type ComparisonExpr struct {
	Column   string
	Operator TokenType
	Value    interface{} // int64, float64, string, bool or nil for NULL
}

// NullCheckExpr represents IS NULL and IS NOT NULL.
type NullCheckExpr struct {
	Column string
	Negate bool
}

func (b *BinaryExpr) Columns(dst []string) []string {
	return b.Right.Columns(b.Left.Columns(dst))
}

func (n *NotExpr) Columns(dst []string) []string { return n.Expr.Columns(dst) }

func (c *ComparisonExpr) Columns(dst []string) []string { return append(dst, c.Column) }

func (c *NullCheckExpr) Columns(dst []string) []string { return append(dst, c.Column) }
