package scan

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/idelchi/foldersize/internal/sigcache"
)

// Item is a sized file or directory.
type Item struct {
	// Name is the base name of the entry.
	Name string `json:"name"`
	// Path is the full path of the entry.
	Path string `json:"path"`
	// IsDir indicates whether the entry is a directory.
	IsDir bool `json:"is_dir"`
	// Size is the size in bytes; the recursive total for directories.
	Size int64 `json:"size"`
	// FromCache indicates the size was not recomputed by this call.
	FromCache bool `json:"from_cache"`
}

// sortBySize orders items largest first, keeping the order of equal sizes.
func sortBySize(items []Item) {
	slices.SortStableFunc(items, func(a, b Item) int {
		switch {
		case a.Size > b.Size:
			return -1
		case a.Size < b.Size:
			return 1
		default:
			return 0
		}
	})
}

// IsAncestor reports whether b lies strictly below a.
// Both paths are made absolute and cleaned before comparing components.
func IsAncestor(a, b string) bool {
	a, b = sigcache.Canonical(a), sigcache.Canonical(b)
	if a == b {
		return false
	}

	prefix := a
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}

	return strings.HasPrefix(b, prefix)
}

// within reports whether path is root or lies below it.
func within(root, path string) bool {
	return root == path || IsAncestor(root, path)
}
