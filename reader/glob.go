package reader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// hasMeta reports whether path contains glob metacharacters.
func hasMeta(path string) bool {
	for i := 0; i < len(path); i++ {
		switch path[i] {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}

// ResolvePaths expands glob patterns and returns the deduplicated input
// paths sorted lexicographically.
//
// Patterns support doublestar syntax:
//   - * matches any sequence of non-separator characters
//   - ** matches any number of directories
//   - ? matches any single non-separator character
//   - [range] matches any character in range
//   - {a,b} matches either a or b
//
// A pattern matching no regular file, or a literal path that does not exist,
// is ErrNotFound.
func ResolvePaths(args []string) ([]string, error) {
	if len(args) == 0 {
		return nil, errors.New("no input files specified")
	}

	seen := make(map[string]struct{})
	var paths []string
	add := func(p string) {
		p = filepath.Clean(p)
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		paths = append(paths, p)
	}

	for _, arg := range args {
		if !hasMeta(arg) {
			if _, err := os.Stat(arg); err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return nil, fileError(ErrNotFound, arg, nil)
				}
				return nil, fmt.Errorf("failed to stat %s: %w", arg, err)
			}
			add(arg)
			continue
		}

		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern: %w", err)
		}
		found := 0
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			add(m)
			found++
		}
		if found == 0 {
			return nil, fileError(ErrNotFound, arg, errors.New("no files match pattern"))
		}
	}

	sort.Strings(paths)
	return paths, nil
}
