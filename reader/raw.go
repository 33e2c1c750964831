package reader

import (
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"
)

// RawFile is an open Parquet file whose row groups are accessed directly
// through parquet-go, for copying without decoding into cells.
type RawFile struct {
	*parquet.File
	lf   *LogicalFile
	file *os.File
}

// OpenRaw reopens the file behind lf and checks that its row groups still
// match the probed footer.
func OpenRaw(lf *LogicalFile) (*RawFile, error) {
	f, size, err := openChecked(lf.Path)
	if err != nil {
		return nil, err
	}
	pf, err := parquet.OpenFile(f, size, parquet.SkipBloomFilters(true))
	if err != nil {
		_ = f.Close()
		return nil, fileError(ErrCorruptFooter, lf.Path, err)
	}

	if n := len(pf.RowGroups()); n != len(lf.RowGroups) {
		_ = f.Close()
		return nil, fileError(ErrCorruptFooter, lf.Path,
			fmt.Errorf("file has %d row groups, expected %d", n, len(lf.RowGroups)))
	}
	return &RawFile{File: pf, lf: lf, file: f}, nil
}

// Logical returns the footer view the file was opened from.
func (r *RawFile) Logical() *LogicalFile { return r.lf }

// Close releases the file handle.
func (r *RawFile) Close() error { return r.file.Close() }
