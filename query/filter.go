package query

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/vegasq/pq/reader"
)

// truth is a SQL three-valued logic result.
type truth int8

const (
	isUnknown truth = iota
	isFalse
	isTrue
)

func truthOf(b bool) truth {
	if b {
		return isTrue
	}
	return isFalse
}

// Predicate is a WHERE clause bound to a schema.
type Predicate func(row reader.Row) (bool, error)

type evaluator func(row reader.Row) (truth, error)

// Bind resolves the columns of expr against schema. A nil expr matches
// every row. Rows match only when the expression is true; NULL comparisons
// are unknown and never match.
func Bind(expr Expression, schema reader.Schema) (Predicate, error) {
	if expr == nil {
		return func(reader.Row) (bool, error) { return true, nil }, nil
	}
	eval, err := compile(expr, schema)
	if err != nil {
		return nil, bindError(err)
	}
	return func(row reader.Row) (bool, error) {
		t, err := eval(row)
		if err != nil {
			return false, executionError(err)
		}
		return t == isTrue, nil
	}, nil
}

func compile(expr Expression, schema reader.Schema) (evaluator, error) {
	switch e := expr.(type) {
	case *BinaryExpr:
		left, err := compile(e.Left, schema)
		if err != nil {
			return nil, err
		}
		right, err := compile(e.Right, schema)
		if err != nil {
			return nil, err
		}
		if e.Operator == TokenAnd {
			return func(row reader.Row) (truth, error) {
				l, err := left(row)
				if err != nil || l == isFalse {
					return l, err
				}
				r, err := right(row)
				if err != nil {
					return isUnknown, err
				}
				if r == isFalse {
					return isFalse, nil
				}
				if l == isTrue && r == isTrue {
					return isTrue, nil
				}
				return isUnknown, nil
			}, nil
		}
		return func(row reader.Row) (truth, error) {
			l, err := left(row)
			if err != nil || l == isTrue {
				return l, err
			}
			r, err := right(row)
			if err != nil {
				return isUnknown, err
			}
			if r == isTrue {
				return isTrue, nil
			}
			if l == isFalse && r == isFalse {
				return isFalse, nil
			}
			return isUnknown, nil
		}, nil

	case *NotExpr:
		inner, err := compile(e.Expr, schema)
		if err != nil {
			return nil, err
		}
		return func(row reader.Row) (truth, error) {
			t, err := inner(row)
			switch {
			case err != nil:
				return isUnknown, err
			case t == isTrue:
				return isFalse, nil
			case t == isFalse:
				return isTrue, nil
			default:
				return isUnknown, nil
			}
		}, nil

	case *NullCheckExpr:
		idx, err := columnIndex(schema, e.Column)
		if err != nil {
			return nil, err
		}
		return func(row reader.Row) (truth, error) {
			isNull := idx >= len(row) || row[idx].IsNull()
			return truthOf(isNull != e.Negate), nil
		}, nil

	case *ComparisonExpr:
		idx, err := columnIndex(schema, e.Column)
		if err != nil {
			return nil, err
		}
		column, op, value := e.Column, e.Operator, e.Value
		return func(row reader.Row) (truth, error) {
			var cell reader.Cell
			if idx < len(row) {
				cell = row[idx]
			}
			return compare(column, cell, op, value)
		}, nil

	default:
		return nil, fmt.Errorf("unsupported expression %T", expr)
	}
}

func columnIndex(schema reader.Schema, name string) (int, error) {
	if i := schema.Index(name); i >= 0 {
		return i, nil
	}
	// Fall back to a case-insensitive match when it is unambiguous.
	found := -1
	for i, col := range schema {
		if strings.EqualFold(col.Name, name) {
			if found >= 0 {
				return -1, fmt.Errorf("column reference %q is ambiguous", name)
			}
			found = i
		}
	}
	if found >= 0 {
		return found, nil
	}
	return -1, fmt.Errorf("column %q not found (available: %s)", name, strings.Join(schema.Names(), ", "))
}

// compare compares a cell against a literal using the given operator
func compare(column string, cell reader.Cell, operator TokenType, literal interface{}) (truth, error) {
	if cell.IsNull() || literal == nil {
		return isUnknown, nil
	}

	var c int
	switch lit := literal.(type) {
	case int64:
		if _, ok := cell.Number(); !ok {
			return isUnknown, mismatch(column, cell, "number")
		}
		c = reader.CompareNumbers(cell, reader.IntCell(lit))
	case float64:
		if _, ok := cell.Number(); !ok {
			return isUnknown, mismatch(column, cell, "number")
		}
		c = reader.CompareNumbers(cell, reader.FloatCell(lit))
	case string:
		switch cell.Kind() {
		case reader.KindString:
			c = strings.Compare(cell.Text(), lit)
		case reader.KindBytes:
			c = bytes.Compare(cell.Bytes(), []byte(lit))
		default:
			return isUnknown, mismatch(column, cell, "string")
		}
	case bool:
		if cell.Kind() != reader.KindBool {
			return isUnknown, mismatch(column, cell, "boolean")
		}
		if operator != TokenEqual && operator != TokenNotEqual {
			return isUnknown, fmt.Errorf("operator %v is not defined for boolean column %q", operator, column)
		}
		c = cmpOrdered(boolInt(cell.Bool()), boolInt(lit))
	default:
		return isUnknown, fmt.Errorf("unsupported literal %T", literal)
	}

	switch operator {
	case TokenEqual:
		return truthOf(c == 0), nil
	case TokenNotEqual:
		return truthOf(c != 0), nil
	case TokenLess:
		return truthOf(c < 0), nil
	case TokenGreater:
		return truthOf(c > 0), nil
	case TokenLessEqual:
		return truthOf(c <= 0), nil
	case TokenGreaterEqual:
		return truthOf(c >= 0), nil
	default:
		return isUnknown, fmt.Errorf("unsupported operator %v", operator)
	}
}

func mismatch(column string, cell reader.Cell, literal string) error {
	return fmt.Errorf("cannot compare %s column %q with %s", cell.Kind(), column, literal)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func cmpOrdered[T int | int64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
