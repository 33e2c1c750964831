package reader

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a path does not exist or a glob pattern
	// matched no files.
	ErrNotFound = errors.New("file not found")

	// ErrNotParquet is returned when a file exists but is not a Parquet file.
	ErrNotParquet = errors.New("not a valid parquet file")

	// ErrCorruptFooter is returned when the footer metadata cannot be decoded
	// or disagrees with the row data.
	ErrCorruptFooter = errors.New("file appears corrupted")

	// ErrSchemaMismatch is returned when files that must share a schema do not.
	ErrSchemaMismatch = errors.New("schema mismatch")
)

// FileError attaches a path to one of the sentinel errors above.
//
// Both the sentinel and the underlying cause are reachable through
// errors.Is and errors.As.
type FileError struct {
	Path string
	Kind error
	Err  error
}

func (e *FileError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%v: %s", e.Kind, e.Path)
	}
	return fmt.Sprintf("%v: %s: %v", e.Kind, e.Path, e.Err)
}

// Unwrap exposes the sentinel kind and the cause.
func (e *FileError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func fileError(kind error, path string, err error) error {
	return &FileError{Path: path, Kind: kind, Err: err}
}

// SchemaMismatchError names the first column at which a file diverges from
// the reference schema.
type SchemaMismatchError struct {
	Path      string // offending file
	Reference string // file whose schema is the target
	Column    string
	Reason    string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch: %s differs from %s at column %q: %s", e.Path, e.Reference, e.Column, e.Reason)
}

// Is reports ErrSchemaMismatch as a match.
func (e *SchemaMismatchError) Is(target error) bool {
	return target == ErrSchemaMismatch
}
