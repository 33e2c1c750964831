package query

import (
	"errors"
	"fmt"
)

// Bounds on what Parse accepts. Table names are file paths, hence the
// longer allowance.
const (
	MaxQueryLength      = 1 << 20
	MaxTokens           = 1000
	MaxExpressionDepth  = 100
	MaxColumnNameLength = 256
	MaxTableNameLength  = 4096
)

// ErrLimitExceeded matches every *LimitError.
var ErrLimitExceeded = errors.New("query limit exceeded")

// LimitError reports input beyond one of the bounds above. Parse and
// ParseExpression return it wrapped in an *Error of PhaseParse.
type LimitError struct {
	What string
	Got  int
	Max  int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s %d exceeds limit of %d", e.What, e.Got, e.Max)
}

func (e *LimitError) Is(target error) bool { return target == ErrLimitExceeded }

func checkLimit(what string, got, limit int) error {
	if got <= limit {
		return nil
	}
	return &LimitError{What: what, Got: got, Max: limit}
}

// identifier accepts the current token as a column name or alias.
func (p *Parser) identifier() (string, error) {
	tok := p.current()
	if err := checkLimit("column name length", len(tok.Value), MaxColumnNameLength); err != nil {
		return "", err
	}
	p.advance()
	return tok.Value, nil
}

// nest enters one more level of parenthesised or negated expression.
// Callers undo it with unnest once the level is parsed.
func (p *Parser) nest() error {
	if err := checkLimit("expression depth", p.depth+1, MaxExpressionDepth); err != nil {
		return err
	}
	p.depth++
	return nil
}

func (p *Parser) unnest() { p.depth-- }
