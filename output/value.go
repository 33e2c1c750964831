package output

import (
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/vegasq/pq/reader"
)

// ErrUnsupportedCellType is returned when a format cannot represent a cell.
var ErrUnsupportedCellType = errors.New("unsupported cell type")

// UnsupportedCellError names the column holding a cell a format cannot encode.
type UnsupportedCellError struct {
	Format Format
	Column string
	Kind   reader.Kind
}

func (e *UnsupportedCellError) Error() string {
	return fmt.Sprintf("%s output does not support %s values (column %q)", e.Format, e.Kind, e.Column)
}

func (e *UnsupportedCellError) Is(target error) bool {
	return target == ErrUnsupportedCellType
}

// appendJSON appends the JSON encoding of c to dst.
func appendJSON(dst []byte, c reader.Cell) ([]byte, error) {
	switch c.Kind() {
	case reader.KindNull:
		return append(dst, "null"...), nil
	case reader.KindBool:
		return strconv.AppendBool(dst, c.Bool()), nil
	case reader.KindInt:
		return strconv.AppendInt(dst, c.Int(), 10), nil
	case reader.KindUint:
		return strconv.AppendUint(dst, c.Uint(), 10), nil
	case reader.KindFloat:
		f := c.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return strconv.AppendQuote(dst, reader.FormatFloat(f)), nil
		}
		return append(dst, reader.FormatFloat(f)...), nil
	case reader.KindString:
		b, err := json.MarshalWithOption(c.Text(), json.DisableHTMLEscape())
		if err != nil {
			return nil, fmt.Errorf("failed to encode string: %w", err)
		}
		return append(dst, b...), nil
	case reader.KindBytes:
		dst = append(dst, '"')
		dst = base64.StdEncoding.AppendEncode(dst, c.Bytes())
		return append(dst, '"'), nil
	case reader.KindList:
		dst = append(dst, '[')
		for i, v := range c.List() {
			if i > 0 {
				dst = append(dst, ',')
			}
			var err error
			if dst, err = appendJSON(dst, v); err != nil {
				return nil, err
			}
		}
		return append(dst, ']'), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCellType, c.Kind())
	}
}

// appendObject appends the compact JSON object for row, keys in schema order.
func appendObject(dst []byte, schema reader.Schema, row reader.Row) ([]byte, error) {
	dst = append(dst, '{')
	for i, col := range schema {
		if i > 0 {
			dst = append(dst, ',')
		}
		key, err := json.MarshalWithOption(col.Name, json.DisableHTMLEscape())
		if err != nil {
			return nil, fmt.Errorf("failed to encode column name: %w", err)
		}
		dst = append(dst, key...)
		dst = append(dst, ':')

		var cell reader.Cell
		if i < len(row) {
			cell = row[i]
		}
		if dst, err = appendJSON(dst, cell); err != nil {
			return nil, err
		}
	}
	return append(dst, '}'), nil
}
