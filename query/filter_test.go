package query

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/pq/reader"
)

func TestCompare_Numbers(t *testing.T) {
	tests := []struct {
		name     string
		cell     reader.Cell
		operator TokenType
		literal  interface{}
		want     truth
	}{
		{"int equal", reader.IntCell(30), TokenEqual, int64(30), isTrue},
		{"int not equal", reader.IntCell(30), TokenNotEqual, int64(25), isTrue},
		{"int less", reader.IntCell(25), TokenLess, int64(30), isTrue},
		{"int greater wrong", reader.IntCell(25), TokenGreater, int64(30), isFalse},
		{"int less equal same", reader.IntCell(30), TokenLessEqual, int64(30), isTrue},
		{"int greater equal", reader.IntCell(35), TokenGreaterEqual, int64(30), isTrue},
		{"float less", reader.FloatCell(2.5), TokenLess, 3.0, isTrue},
		{"int vs float equal", reader.IntCell(30), TokenEqual, 30.0, isTrue},
		{"float vs int equal", reader.FloatCell(30), TokenEqual, int64(30), isTrue},
		{"int vs float less", reader.IntCell(25), TokenLess, 30.5, isTrue},
		{"large ints stay exact", reader.IntCell(math.MaxInt64), TokenGreater, int64(math.MaxInt64 - 1), isTrue},
		{"nan is not equal", reader.FloatCell(math.NaN()), TokenEqual, 1.0, isFalse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := compare("col", tt.cell, tt.operator, tt.literal)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompare_Strings(t *testing.T) {
	tests := []struct {
		name     string
		cell     reader.Cell
		operator TokenType
		literal  string
		want     truth
	}{
		{"equal", reader.StringCell("alice"), TokenEqual, "alice", isTrue},
		{"less", reader.StringCell("alice"), TokenLess, "bob", isTrue},
		{"greater equal", reader.StringCell("bob"), TokenGreaterEqual, "alice", isTrue},
		{"case sensitive", reader.StringCell("Alice"), TokenEqual, "alice", isFalse},
		{"bytes equal", reader.BytesCell([]byte("raw")), TokenEqual, "raw", isTrue},
		{"bytes less", reader.BytesCell([]byte("a")), TokenLess, "b", isTrue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := compare("col", tt.cell, tt.operator, tt.literal)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompare_NullIsUnknown(t *testing.T) {
	for _, op := range []TokenType{TokenEqual, TokenNotEqual, TokenLess, TokenGreaterEqual} {
		got, err := compare("col", reader.NullCell(), op, int64(1))
		require.NoError(t, err)
		assert.Equal(t, isUnknown, got)

		got, err = compare("col", reader.IntCell(1), op, nil)
		require.NoError(t, err)
		assert.Equal(t, isUnknown, got)
	}
}

func TestCompare_Errors(t *testing.T) {
	tests := []struct {
		name     string
		cell     reader.Cell
		operator TokenType
		literal  interface{}
		wantMsg  string
	}{
		{"string vs number", reader.StringCell("x"), TokenEqual, int64(1), `cannot compare string column "col" with number`},
		{"int vs string", reader.IntCell(1), TokenEqual, "1", `cannot compare int column "col" with string`},
		{"int vs bool", reader.IntCell(1), TokenEqual, true, `cannot compare int column "col" with boolean`},
		{"ordered bool", reader.BoolCell(true), TokenLess, true, "not defined for boolean"},
		{"list vs number", reader.ListCell(nil), TokenEqual, int64(1), "cannot compare list column"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compare("col", tt.cell, tt.operator, tt.literal)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

var filterSchema = reader.Schema{
	{Name: "id", Type: "INT64", PhysicalType: "INT64"},
	{Name: "Name", Type: "STRING", PhysicalType: "BYTE_ARRAY"},
	{Name: "score", Type: "FLOAT64", PhysicalType: "DOUBLE", Nullable: true},
	{Name: "active", Type: "BOOLEAN", PhysicalType: "BOOLEAN"},
}

func filterRow(id int64, name string, score reader.Cell, active bool) reader.Row {
	return reader.Row{reader.IntCell(id), reader.StringCell(name), score, reader.BoolCell(active)}
}

func TestBind_ThreeValuedLogic(t *testing.T) {
	withScore := filterRow(1, "alice", reader.FloatCell(9.5), true)
	noScore := filterRow(2, "bob", reader.NullCell(), false)

	tests := []struct {
		where string
		want  []bool // withScore, noScore
	}{
		{"score > 5", []bool{true, false}},
		{"NOT score > 5", []bool{false, false}},
		{"score > 5 OR active = false", []bool{true, true}},
		{"score > 5 AND active = false", []bool{false, false}},
		{"NOT (score > 5 AND active = false)", []bool{true, false}},
		{"NOT (score > 5 AND active = true)", []bool{false, true}},
		{"score IS NULL", []bool{false, true}},
		{"score IS NOT NULL", []bool{true, false}},
		{"score = NULL", []bool{false, false}},
		{"score != NULL", []bool{false, false}},
		{"id >= 1 AND name = 'bob'", []bool{false, true}},
	}

	for _, tt := range tests {
		t.Run(tt.where, func(t *testing.T) {
			q, err := Parse("SELECT * FROM tbl WHERE " + tt.where)
			require.NoError(t, err)
			pred, err := Bind(q.Filter, filterSchema)
			require.NoError(t, err)

			for i, row := range []reader.Row{withScore, noScore} {
				got, err := pred(row)
				require.NoError(t, err)
				assert.Equal(t, tt.want[i], got, "row %d", i)
			}
		})
	}
}

func TestBind_NilMatchesEverything(t *testing.T) {
	pred, err := Bind(nil, filterSchema)
	require.NoError(t, err)
	ok, err := pred(filterRow(1, "x", reader.NullCell(), false))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestBind_UnknownColumn(t *testing.T) {
	q, err := Parse("SELECT * FROM tbl WHERE missing = 1")
	require.NoError(t, err)

	_, err = Bind(q.Filter, filterSchema)
	require.Error(t, err)
	var qe *Error
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, PhaseBind, qe.Phase)
	assert.Equal(t, `invalid SQL query: column "missing" not found (available: id, Name, score, active)`, err.Error())
}

func TestBind_ColumnResolution(t *testing.T) {
	schema := reader.Schema{{Name: "a"}, {Name: "A"}, {Name: "Value"}, {Name: "VALUE"}, {Name: "Other"}}

	tests := []struct {
		where   string
		wantErr string
	}{
		{where: "A = 1"},
		{where: "a = 1"},
		{where: "other = 1"},
		{where: "value = 1", wantErr: `column reference "value" is ambiguous`},
	}

	for _, tt := range tests {
		t.Run(tt.where, func(t *testing.T) {
			q, err := Parse("SELECT * FROM tbl WHERE " + tt.where)
			require.NoError(t, err)
			_, err = Bind(q.Filter, schema)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBind_ExecutionError(t *testing.T) {
	q, err := Parse("SELECT * FROM tbl WHERE Name > 3")
	require.NoError(t, err)
	pred, err := Bind(q.Filter, filterSchema)
	require.NoError(t, err)

	_, err = pred(filterRow(1, "alice", reader.NullCell(), true))
	require.Error(t, err)
	var qe *Error
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, PhaseExecute, qe.Phase)
	assert.Equal(t, `query execution failed: cannot compare string column "Name" with number`, err.Error())
}
