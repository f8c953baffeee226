package docfile

import (
	"fmt"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
)

// Glob expands file arguments. Arguments with glob metacharacters are
// matched with doublestar, so "docs/**/*.yaml" walks subdirectories; other
// arguments are kept as literal paths even if they do not exist, so that
// loading reports them. The result is sorted and free of duplicates.
func Glob(patterns []string) ([]string, error) {
	var paths []string
	for _, p := range patterns {
		if !hasMeta(p) {
			paths = append(paths, p)
			continue
		}
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("docfile: invalid glob %q", p)
		}
		matches, err := doublestar.FilepathGlob(p, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("docfile: glob %q: %w", p, err)
		}
		paths = append(paths, matches...)
	}
	slices.Sort(paths)
	return slices.Compact(paths), nil
}

func hasMeta(p string) bool {
	for i := 0; i < len(p); i++ {
		switch p[i] {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}
