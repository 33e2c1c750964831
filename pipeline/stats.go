package pipeline

import (
	"context"
	"errors"
	"io"

	"github.com/vegasq/pq/reader"
)

// ColumnStat summarizes one column. Min and Max are null when the column
// holds no comparable value.
type ColumnStat struct {
	Min        reader.Cell
	Max        reader.Cell
	NullCount  uint64
	ValueCount uint64
}

// Observe folds one cell into the statistic.
func (s *ColumnStat) Observe(c reader.Cell) {
	switch c.Kind() {
	case reader.KindNull:
		s.NullCount++
		return
	case reader.KindList:
		s.ValueCount++
		return
	}
	s.ValueCount++
	if s.Min.IsNull() || reader.Compare(c, s.Min) < 0 {
		s.Min = c
	}
	if s.Max.IsNull() || reader.Compare(c, s.Max) > 0 {
		s.Max = c
	}
}

// Combine merges two partial statistics. It is commutative and associative.
func (s ColumnStat) Combine(o ColumnStat) ColumnStat {
	out := ColumnStat{
		Min:        s.Min,
		Max:        s.Max,
		NullCount:  s.NullCount + o.NullCount,
		ValueCount: s.ValueCount + o.ValueCount,
	}
	if !o.Min.IsNull() && (out.Min.IsNull() || reader.Compare(o.Min, out.Min) < 0) {
		out.Min = o.Min
	}
	if !o.Max.IsNull() && (out.Max.IsNull() || reader.Compare(o.Max, out.Max) > 0) {
		out.Max = o.Max
	}
	return out
}

// CombineAll merges two column-aligned partials. A nil side is the identity.
func CombineAll(a, b []ColumnStat) []ColumnStat {
	switch {
	case a == nil:
		return append([]ColumnStat(nil), b...)
	case b == nil:
		return append([]ColumnStat(nil), a...)
	}
	out := make([]ColumnStat, max(len(a), len(b)))
	for i := range out {
		var x, y ColumnStat
		if i < len(a) {
			x = a[i]
		}
		if i < len(b) {
			y = b[i]
		}
		out[i] = x.Combine(y)
	}
	return out
}

// BatchStats computes the partial statistics of one batch.
func BatchStats(batch *reader.Batch) []ColumnStat {
	stats := make([]ColumnStat, len(batch.Schema))
	for _, row := range batch.Rows {
		for i := range stats {
			if i < len(row) {
				stats[i].Observe(row[i])
			} else {
				stats[i].NullCount++
			}
		}
	}
	return stats
}

// Aggregate folds every batch of src into one statistic per column.
func Aggregate(ctx context.Context, src reader.BatchReader) ([]ColumnStat, error) {
	stats := make([]ColumnStat, len(src.Schema()))
	for {
		batch, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return stats, nil
		}
		if err != nil {
			return nil, err
		}
		stats = CombineAll(stats, BatchStats(batch))
	}
}

// MetadataStats builds statistics from the footer summaries of lf without
// reading row data. Columns whose footer carries no bounds report null
// Min and Max.
func MetadataStats(lf *reader.LogicalFile) []ColumnStat {
	stats := make([]ColumnStat, len(lf.Schema))
	for _, group := range lf.Summaries {
		partial := make([]ColumnStat, len(lf.Schema))
		for i := range partial {
			if i >= len(group) {
				continue
			}
			partial[i] = ColumnStat{
				Min:        group[i].Min,
				Max:        group[i].Max,
				NullCount:  group[i].NullCount,
				ValueCount: group[i].ValueCount,
			}
		}
		stats = CombineAll(stats, partial)
	}
	return stats
}
