package reader

// RowGroupRef identifies one row group of a file.
type RowGroupRef struct {
	Path    string
	Index   int
	NumRows int64
}

// Range selects the row groups [First, Last) of a file.
type Range struct {
	First, Last int
}

// Len returns the number of row groups in the range.
func (r Range) Len() int { return r.Last - r.First }

// All returns the range covering every row group of the file.
func (lf *LogicalFile) All() Range { return Range{First: 0, Last: len(lf.RowGroups)} }

// Refs returns the row groups selected by r.
func (lf *LogicalFile) Refs(r Range) []RowGroupRef {
	refs := make([]RowGroupRef, 0, r.Len())
	for i := r.First; i < r.Last; i++ {
		refs = append(refs, RowGroupRef{Path: lf.Path, Index: i, NumRows: lf.RowGroups[i]})
	}
	return refs
}

// RowGroupsReliable reports whether the row group counts sum to the footer's
// row count.
func (lf *LogicalFile) RowGroupsReliable() bool {
	var sum int64
	for _, n := range lf.RowGroups {
		sum += n
		if sum < 0 {
			return false
		}
	}
	return sum == lf.NumRows
}

// PlanTail returns the shortest suffix of row groups holding at least n rows.
//
// When n exceeds the file's row count the suffix is every row group. When
// the row group counts are inconsistent with the footer the plan also covers
// every row group and reliable is false.
func PlanTail(lf *LogicalFile, n int64) (r Range, refs []RowGroupRef, reliable bool) {
	if !lf.RowGroupsReliable() {
		r = lf.All()
		return r, lf.Refs(r), false
	}

	last := len(lf.RowGroups)
	first := last
	var covered int64
	for first > 0 && covered < n {
		first--
		covered += lf.RowGroups[first]
	}
	r = Range{First: first, Last: last}
	return r, lf.Refs(r), true
}

// SumRows returns the total row count of refs.
func SumRows(refs []RowGroupRef) int64 {
	var total int64
	for _, ref := range refs {
		total += ref.NumRows
	}
	return total
}
