package reader

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/pq/internal/testutil"
)

func TestMultiStream(t *testing.T) {
	dir := t.TempDir()
	a := probe(t, testutil.WriteParquet(t, filepath.Join(dir, "a.parquet"), testutil.Sequence(0, 3), testutil.Sequence(3, 2)))
	b := probe(t, testutil.WriteParquet(t, filepath.Join(dir, "b.parquet"), testutil.Sequence(100, 2)))

	t.Run("untagged", func(t *testing.T) {
		m, err := NewMultiStream([]*LogicalFile{a, b}, MultiOptions{})
		require.NoError(t, err)
		defer func() { _ = m.Close() }()

		assert.Equal(t, []string{"n"}, m.Schema().Names())
		assert.Equal(t, []int64{0, 1, 2, 3, 4, 100, 101}, collectInts(t, m))
	})

	t.Run("tagged", func(t *testing.T) {
		m, err := NewMultiStream([]*LogicalFile{a, b}, MultiOptions{TagFile: true, BatchSize: 2})
		require.NoError(t, err)
		defer func() { _ = m.Close() }()

		assert.Equal(t, []string{"n", FileColumn}, m.Schema().Names())
		rows, err := ReadAll(context.Background(), m)
		require.NoError(t, err)
		require.Len(t, rows, 7)
		assert.Equal(t, a.Path, rows[0][1].Text())
		assert.Equal(t, b.Path, rows[6][1].Text())
	})

	_, err := NewMultiStream(nil, MultiOptions{})
	assert.Error(t, err)
}

func TestMemoryReader(t *testing.T) {
	schema := Schema{{Name: "n"}}
	m := NewMemoryReader(schema, []Row{{IntCell(1)}, {IntCell(2)}})
	assert.Equal(t, []int64{1, 2}, collectInts(t, m))

	empty := NewMemoryReader(schema, nil)
	rows, err := ReadAll(context.Background(), empty)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
