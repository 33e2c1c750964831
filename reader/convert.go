package reader

import (
	"encoding/binary"
	"math"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"
)

// cell converts a non-null parquet value of this column into a Cell.
// Byte slices are copied because parquet-go reuses its page buffers.
func (c *Column) cell(v parquet.Value) Cell {
	switch v.Kind() {
	case parquet.Boolean:
		return BoolCell(v.Boolean())
	case parquet.Int32:
		if c.unsigned {
			return IntCell(int64(uint32(v.Int32())))
		}
		return IntCell(int64(v.Int32()))
	case parquet.Int64:
		if c.unsigned {
			return UintCell(uint64(v.Int64()))
		}
		return IntCell(v.Int64())
	case parquet.Int96:
		return StringCell(v.Int96().String())
	case parquet.Float:
		return FloatCell(float64(v.Float()))
	case parquet.Double:
		return FloatCell(v.Double())
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return c.bytesCell(v.ByteArray())
	default:
		return NullCell()
	}
}

func (c *Column) bytesCell(b []byte) Cell {
	switch {
	case c.text:
		return StringCell(string(b))
	case c.uuid && len(b) == 16:
		id, err := uuid.FromBytes(b)
		if err == nil {
			return StringCell(id.String())
		}
	}
	return BytesCell(append([]byte(nil), b...))
}

// decodePlain decodes a PLAIN-encoded footer statistic for this column.
func (c *Column) decodePlain(b []byte) (Cell, bool) {
	switch c.kind {
	case parquet.Boolean:
		if len(b) < 1 {
			return Cell{}, false
		}
		return BoolCell(b[0]&1 == 1), true
	case parquet.Int32:
		if len(b) != 4 {
			return Cell{}, false
		}
		u := binary.LittleEndian.Uint32(b)
		if c.unsigned {
			return IntCell(int64(u)), true
		}
		return IntCell(int64(int32(u))), true
	case parquet.Int64:
		if len(b) != 8 {
			return Cell{}, false
		}
		u := binary.LittleEndian.Uint64(b)
		if c.unsigned {
			return UintCell(u), true
		}
		return IntCell(int64(u)), true
	case parquet.Float:
		if len(b) != 4 {
			return Cell{}, false
		}
		return FloatCell(float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))), true
	case parquet.Double:
		if len(b) != 8 {
			return Cell{}, false
		}
		return FloatCell(math.Float64frombits(binary.LittleEndian.Uint64(b))), true
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return c.bytesCell(b), true
	default:
		// INT96 has no defined sort order.
		return Cell{}, false
	}
}

// convertRow turns one parquet row into a Row aligned to s. Values of
// repeated leaves are gathered into list cells.
func (s Schema) convertRow(row parquet.Row) Row {
	out := make(Row, len(s))
	for i := range s {
		if s[i].Repeated {
			out[i] = ListCell([]Cell{})
		}
	}
	for _, v := range row {
		i := v.Column()
		if i < 0 || i >= len(s) {
			continue
		}
		col := &s[i]
		if col.Repeated {
			if !v.IsNull() {
				out[i].list = append(out[i].list, col.cell(v))
			}
			continue
		}
		if v.IsNull() {
			out[i] = NullCell()
			continue
		}
		out[i] = col.cell(v)
	}
	return out
}
