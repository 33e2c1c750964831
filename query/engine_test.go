package query

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/pq/internal/testutil"
	"github.com/vegasq/pq/reader"
)

var peopleSchema = reader.Schema{
	{Name: "id", Type: "INT64", PhysicalType: "INT64"},
	{Name: "name", Type: "STRING", PhysicalType: "BYTE_ARRAY", LogicalType: "STRING"},
	{Name: "age", Type: "INT32", PhysicalType: "INT32"},
}

func person(id int64, name string, age int64) reader.Row {
	return reader.Row{reader.IntCell(id), reader.StringCell(name), reader.IntCell(age)}
}

// batchSource serves fixed batches and records how many were pulled.
type batchSource struct {
	schema  reader.Schema
	batches [][]reader.Row
	pulled  int
	closed  bool
}

func (b *batchSource) Schema() reader.Schema { return b.schema }

func (b *batchSource) Next(ctx context.Context) (*reader.Batch, error) {
	if b.pulled >= len(b.batches) {
		return nil, io.EOF
	}
	batch := &reader.Batch{Schema: b.schema, Rows: b.batches[b.pulled], RowGroup: b.pulled}
	b.pulled++
	return batch, nil
}

func (b *batchSource) Close() error {
	b.closed = true
	return nil
}

func people() *batchSource {
	return &batchSource{
		schema: peopleSchema,
		batches: [][]reader.Row{
			{person(1, "Alice", 30), person(2, "Bob", 25)},
			{person(3, "Charlie", 35)},
		},
	}
}

type tables map[string]reader.BatchReader

func (t tables) Open(_ context.Context, name string) (reader.BatchReader, error) {
	src, ok := t[name]
	if !ok {
		return nil, errors.New("no such table " + name)
	}
	return src, nil
}

func run(t *testing.T, sql string, src reader.BatchReader) (reader.Schema, []reader.Row) {
	t.Helper()
	res, err := Run(context.Background(), sql, tables{"tbl": src}, -1)
	require.NoError(t, err)
	defer func() { require.NoError(t, res.Close()) }()

	rows, err := reader.ReadAll(context.Background(), res)
	require.NoError(t, err)
	return res.Schema(), rows
}

func TestExecute_SelectStar(t *testing.T) {
	schema, rows := run(t, "SELECT * FROM tbl", people())
	assert.Equal(t, peopleSchema, schema)
	require.Len(t, rows, 3)
	assert.Equal(t, "Charlie", rows[2][1].Text())
}

func TestExecute_ProjectionAndFilter(t *testing.T) {
	schema, rows := run(t, "SELECT name, age AS years FROM tbl WHERE age > 28", people())

	assert.Equal(t, []string{"name", "years"}, schema.Names())
	assert.Equal(t, "INT32", schema[1].PhysicalType)
	assert.Equal(t, []reader.Row{
		{reader.StringCell("Alice"), reader.IntCell(30)},
		{reader.StringCell("Charlie"), reader.IntCell(35)},
	}, rows)
}

func TestExecute_CaseInsensitiveProjection(t *testing.T) {
	schema, rows := run(t, "SELECT NAME FROM tbl LIMIT 1", people())
	assert.Equal(t, []string{"NAME"}, schema.Names())
	assert.Equal(t, []reader.Row{{reader.StringCell("Alice")}}, rows)
}

func TestExecute_LimitStopsPulling(t *testing.T) {
	src := people()
	_, rows := run(t, "SELECT id FROM tbl LIMIT 2", src)
	assert.Equal(t, []reader.Row{{reader.IntCell(1)}, {reader.IntCell(2)}}, rows)
	assert.Equal(t, 1, src.pulled, "second batch must not be read")

	src = people()
	_, rows = run(t, "SELECT id FROM tbl LIMIT 0", src)
	assert.Empty(t, rows)
	assert.Equal(t, 0, src.pulled)
}

func TestExecute_Count(t *testing.T) {
	tests := []struct {
		sql      string
		wantName string
		want     int64
	}{
		{"SELECT COUNT(*) FROM tbl", "count(*)", 3},
		{"SELECT COUNT(*) AS n FROM tbl WHERE age < 31", "n", 2},
		{"SELECT COUNT(*) FROM tbl WHERE name = 'nobody'", "count(*)", 0},
	}

	for _, tt := range tests {
		t.Run(tt.sql, func(t *testing.T) {
			schema, rows := run(t, tt.sql, people())
			assert.Equal(t, []string{tt.wantName}, schema.Names())
			assert.Equal(t, []reader.Row{{reader.IntCell(tt.want)}}, rows)
		})
	}
}

func TestExecute_EmptyResultKeepsSchema(t *testing.T) {
	schema, rows := run(t, "SELECT name FROM tbl WHERE age > 100", people())
	assert.Equal(t, []string{"name"}, schema.Names())
	assert.Empty(t, rows)
}

func TestRun_LimitOverride(t *testing.T) {
	tests := []struct {
		sql   string
		limit int64
		want  int
	}{
		{"SELECT * FROM tbl", 1, 1},
		{"SELECT * FROM tbl LIMIT 1", 2, 1},
		{"SELECT * FROM tbl LIMIT 3", 2, 2},
		{"SELECT * FROM tbl", -1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.sql, func(t *testing.T) {
			res, err := Run(context.Background(), tt.sql, tables{"tbl": people()}, tt.limit)
			require.NoError(t, err)
			rows, err := reader.ReadAll(context.Background(), res)
			require.NoError(t, err)
			assert.Len(t, rows, tt.want)
		})
	}
}

func TestExecute_Errors(t *testing.T) {
	tests := []struct {
		name    string
		sql     string
		phase   Phase
		wantMsg string
	}{
		{"unknown projection", "SELECT missing FROM tbl", PhaseBind, `invalid SQL query: column "missing" not found (available: id, name, age)`},
		{"unknown filter column", "SELECT * FROM tbl WHERE missing > 1", PhaseBind, `column "missing" not found`},
		{"type mismatch", "SELECT * FROM tbl WHERE name > 1", PhaseExecute, `query execution failed: cannot compare string column "name" with number`},
		{"syntax", "SELECT FROM tbl", PhaseParse, "invalid SQL query: "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := people()
			res, err := Run(context.Background(), tt.sql, tables{"tbl": src}, -1)
			if err == nil {
				_, err = reader.ReadAll(context.Background(), res)
			}
			require.Error(t, err)

			var qe *Error
			require.True(t, errors.As(err, &qe), "expected *query.Error, got %T", err)
			assert.Equal(t, tt.phase, qe.Phase)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestRun_ClosesSourceOnBindError(t *testing.T) {
	src := people()
	_, err := Run(context.Background(), "SELECT nope FROM tbl", tables{"tbl": src}, -1)
	require.Error(t, err)
	assert.True(t, src.closed)
}

func TestRun_UnknownTable(t *testing.T) {
	_, err := Run(context.Background(), "SELECT * FROM other", tables{"tbl": people()}, -1)
	assert.EqualError(t, err, "no such table other")
}

func TestExecute_ParquetStream(t *testing.T) {
	path := testutil.TempParquet(t, "people.parquet", testutil.People())
	lf, err := reader.Probe(context.Background(), path)
	require.NoError(t, err)
	src, err := reader.OpenStream(lf, reader.StreamOptions{Range: lf.All()})
	require.NoError(t, err)

	_, rows := run(t, "SELECT name FROM tbl WHERE age >= 30 AND name != 'Charlie'", src)
	assert.Equal(t, []reader.Row{{reader.StringCell("Alice")}}, rows)
}
