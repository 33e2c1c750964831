package reader

import (
	"bytes"
	"encoding/base64"
	"math"
	"strconv"
	"strings"
)

// Kind identifies the dynamic type held by a Cell.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindUint
	KindFloat
	KindString
	KindBytes
	KindList
)

var kindNames = [...]string{
	KindNull:   "null",
	KindBool:   "bool",
	KindInt:    "int",
	KindUint:   "uint",
	KindFloat:  "float",
	KindString: "string",
	KindBytes:  "bytes",
	KindList:   "list",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Cell is one typed value of a row. The zero Cell is null.
type Cell struct {
	kind Kind
	i    int64 // int, bool, or the bits of a uint
	f    float64
	s    string
	b    []byte
	list []Cell
}

// Row is an ordered sequence of cells aligned to a Schema.
type Row []Cell

func NullCell() Cell { return Cell{} }
func IntCell(v int64) Cell { return Cell{kind: KindInt, i: v} }
func UintCell(v uint64) Cell { return Cell{kind: KindUint, i: int64(v)} }
func FloatCell(v float64) Cell { return Cell{kind: KindFloat, f: v} }
func StringCell(v string) Cell { return Cell{kind: KindString, s: v} }
func BytesCell(v []byte) Cell { return Cell{kind: KindBytes, b: v} }
func ListCell(v []Cell) Cell { return Cell{kind: KindList, list: v} }
func BoolCell(v bool) Cell {
	c := Cell{kind: KindBool}
	if v {
		c.i = 1
	}
	return c
}

func (c Cell) Kind() Kind { return c.kind }
func (c Cell) IsNull() bool { return c.kind == KindNull }
func (c Cell) Int() int64 { return c.i }
func (c Cell) Uint() uint64 { return uint64(c.i) }
func (c Cell) Float() float64 { return c.f }
func (c Cell) Bool() bool { return c.i != 0 }
func (c Cell) Text() string { return c.s }
func (c Cell) Bytes() []byte { return c.b }
func (c Cell) List() []Cell { return c.list }

// Number returns the cell as a float64 when it holds a numeric value.
func (c Cell) Number() (float64, bool) {
	switch c.kind {
	case KindInt:
		return float64(c.i), true
	case KindUint:
		return float64(c.Uint()), true
	case KindFloat:
		return c.f, true
	default:
		return 0, false
	}
}

// Any returns the cell as a plain Go value: nil, bool, int64, uint64,
// float64, string, []byte or []any.
func (c Cell) Any() any {
	switch c.kind {
	case KindBool:
		return c.Bool()
	case KindInt:
		return c.i
	case KindUint:
		return c.Uint()
	case KindFloat:
		return c.f
	case KindString:
		return c.s
	case KindBytes:
		return c.b
	case KindList:
		out := make([]any, len(c.list))
		for i, v := range c.list {
			out[i] = v.Any()
		}
		return out
	default:
		return nil
	}
}

// String renders the cell for human display. Null renders as the empty string.
func (c Cell) String() string {
	switch c.kind {
	case KindBool:
		return strconv.FormatBool(c.Bool())
	case KindInt:
		return strconv.FormatInt(c.i, 10)
	case KindUint:
		return strconv.FormatUint(c.Uint(), 10)
	case KindFloat:
		return FormatFloat(c.f)
	case KindString:
		return c.s
	case KindBytes:
		return base64.StdEncoding.EncodeToString(c.b)
	case KindList:
		parts := make([]string, len(c.list))
		for i, v := range c.list {
			if v.IsNull() {
				parts[i] = "null"
				continue
			}
			parts[i] = v.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return ""
	}
}

// FormatFloat renders f with the shortest representation that parses back to
// the same value, using fixed notation for magnitudes in [1e-6, 1e21).
func FormatFloat(f float64) string {
	abs := math.Abs(f)
	if abs == 0 || (abs >= 1e-6 && abs < 1e21) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// rank orders kinds for cross-kind comparison. All numbers share a rank.
func (k Kind) rank() int {
	switch k {
	case KindNull:
		return 0
	case KindBool:
		return 1
	case KindInt, KindUint, KindFloat:
		return 2
	case KindString:
		return 3
	case KindBytes:
		return 4
	default:
		return 5
	}
}

// Compare returns -1, 0 or +1. It is a total order: numbers compare by exact
// value (NaN above +Inf), strings and bytes byte-lexicographically,
// false < true. Equal numbers of different kinds order int, uint, float.
func Compare(a, b Cell) int {
	ra, rb := a.kind.rank(), b.kind.rank()
	if ra != rb {
		return cmpInt(ra, rb)
	}

	switch a.kind {
	case KindNull:
		return 0
	case KindBool:
		return cmpInt64(a.i, b.i)
	case KindInt, KindUint, KindFloat:
		if c := CompareNumbers(a, b); c != 0 {
			return c
		}
		return cmpInt(numberOrder(a.kind), numberOrder(b.kind))
	case KindString:
		return strings.Compare(a.s, b.s)
	case KindBytes:
		return bytes.Compare(a.b, b.b)
	default:
		for i := 0; i < len(a.list) && i < len(b.list); i++ {
			if c := Compare(a.list[i], b.list[i]); c != 0 {
				return c
			}
		}
		return cmpInt(len(a.list), len(b.list))
	}
}

// CompareNumbers orders two numeric cells by exact value, NaN above +Inf.
// Large int64 and uint64 values are not rounded through float64.
func CompareNumbers(a, b Cell) int {
	switch {
	case a.kind == KindInt && b.kind == KindInt:
		return cmpInt64(a.i, b.i)
	case a.kind == KindUint && b.kind == KindUint:
		return cmpUint64(a.Uint(), b.Uint())
	case a.kind == KindInt && b.kind == KindUint:
		if a.i < 0 {
			return -1
		}
		return cmpUint64(uint64(a.i), b.Uint())
	case a.kind == KindUint && b.kind == KindInt:
		return -CompareNumbers(b, a)
	}

	if c := cmpFloat(numberOf(a), numberOf(b)); c != 0 {
		return c
	}
	// Equal as float64: an integer side may still differ from the float.
	switch {
	case a.kind == KindFloat && b.kind != KindFloat:
		return -compareIntFloat(b, a.f)
	case b.kind == KindFloat && a.kind != KindFloat:
		return compareIntFloat(a, b.f)
	}
	return 0
}

// compareIntFloat compares an int or uint cell with an integral f that
// equals its float64 conversion.
func compareIntFloat(c Cell, f float64) int {
	if c.kind == KindUint {
		if f >= 1<<64 {
			return -1
		}
		return cmpUint64(c.Uint(), uint64(f))
	}
	if f >= 1<<63 {
		return -1
	}
	return cmpInt64(c.i, int64(f))
}

func numberOrder(k Kind) int {
	switch k {
	case KindInt:
		return 0
	case KindUint:
		return 1
	default:
		return 2
	}
}

func numberOf(c Cell) float64 {
	switch c.kind {
	case KindInt:
		return float64(c.i)
	case KindUint:
		return float64(c.Uint())
	default:
		return c.f
	}
}

func cmpFloat(a, b float64) int {
	an, bn := math.IsNaN(a), math.IsNaN(b)
	switch {
	case an && bn:
		return 0
	case an:
		return 1
	case bn:
		return -1
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpInt(a, b int) int { return cmpInt64(int64(a), int64(b)) }
