// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/require"
)

// WriteParquet writes a parquet file at path with one row group per element
// of groups. Empty groups are skipped.
func WriteParquet[T any](t testing.TB, path string, groups ...[]T) string {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err, "failed to create test file")

	w := parquet.NewGenericWriter[T](f)
	for _, rows := range groups {
		if len(rows) == 0 {
			continue
		}
		_, err := w.Write(rows)
		require.NoError(t, err, "failed to write test data")
		require.NoError(t, w.Flush(), "failed to flush row group")
	}
	require.NoError(t, w.Close(), "failed to close writer")
	require.NoError(t, f.Close(), "failed to close file")
	return path
}

// TempParquet writes groups to name inside a fresh temporary directory.
func TempParquet[T any](t testing.TB, name string, groups ...[]T) string {
	t.Helper()
	return WriteParquet(t, filepath.Join(t.TempDir(), name), groups...)
}

// Chunk splits rows into groups of at most size rows.
func Chunk[T any](rows []T, size int) [][]T {
	var groups [][]T
	for len(rows) > size {
		groups = append(groups, rows[:size])
		rows = rows[size:]
	}
	if len(rows) > 0 {
		groups = append(groups, rows)
	}
	return groups
}

// WriteFile writes raw bytes to name inside dir.
func WriteFile(t testing.TB, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// Person is the row type of the Alice/Bob/Charlie fixture.
type Person struct {
	ID   int64  `parquet:"id"`
	Name string `parquet:"name"`
	Age  int32  `parquet:"age"`
}

// People returns the three-row fixture used across tests.
func People() []Person {
	return []Person{
		{ID: 1, Name: "Alice", Age: 30},
		{ID: 2, Name: "Bob", Age: 25},
		{ID: 3, Name: "Charlie", Age: 35},
	}
}

// Seq is a single-column row type for row-count tests.
type Seq struct {
	N int64 `parquet:"n"`
}

// Sequence returns rows numbered from start to start+count-1.
func Sequence(start, count int64) []Seq {
	rows := make([]Seq, count)
	for i := range rows {
		rows[i] = Seq{N: start + int64(i)}
	}
	return rows
}
