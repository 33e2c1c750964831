package reader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/pq/internal/testutil"
)

func TestProbe(t *testing.T) {
	path := testutil.TempParquet(t, "seq.parquet",
		testutil.Sequence(0, 100),
		testutil.Sequence(100, 50),
		testutil.Sequence(150, 7),
	)

	lf, err := Probe(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, path, lf.Path)
	assert.Equal(t, int64(157), lf.NumRows)
	assert.Equal(t, []int64{100, 50, 7}, lf.RowGroups)
	assert.True(t, lf.RowGroupsReliable())
	assert.Equal(t, 1, lf.NumColumns())
	assert.NotEmpty(t, lf.Compression)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, info.Size(), lf.Size)

	require.Len(t, lf.Summaries, 3)
	first := lf.Summaries[0][0]
	assert.Equal(t, uint64(100), first.ValueCount)
	assert.Equal(t, uint64(0), first.NullCount)
	if !first.Min.IsNull() {
		assert.Equal(t, int64(0), first.Min.Int())
		assert.Equal(t, int64(99), first.Max.Int())
	}
}

func TestProbe_EmptyParquetFile(t *testing.T) {
	path := testutil.TempParquet[testutil.Seq](t, "empty.parquet")

	lf, err := Probe(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, int64(0), lf.NumRows)
	assert.Empty(t, lf.RowGroups)
	assert.Equal(t, []string{"n"}, lf.Schema.Names())
}

func TestProbe_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		path string
		want error
	}{
		{"missing", filepath.Join(dir, "missing.parquet"), ErrNotFound},
		{"empty file", testutil.WriteFile(t, dir, "empty.parquet", nil), ErrNotParquet},
		{"text file", testutil.WriteFile(t, dir, "notes.parquet", []byte("this is not a parquet file at all")), ErrNotParquet},
		{"directory", dir, ErrNotParquet},
		{"bad footer", testutil.WriteFile(t, dir, "corrupt.parquet", []byte("PAR1\x00\x01\x02\x03\x04\x05\x06\x07\xff\x00\x00\x00PAR1")), ErrCorruptFooter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Probe(context.Background(), tt.path)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var fe *FileError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.path, fe.Path)
		})
	}
}

func TestProbe_Truncated(t *testing.T) {
	path := testutil.TempParquet(t, "full.parquet", testutil.People())
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	truncated := testutil.WriteFile(t, t.TempDir(), "truncated.parquet", data[:len(data)/2])
	_, err = Probe(context.Background(), truncated)
	assert.ErrorIs(t, err, ErrNotParquet)
}
