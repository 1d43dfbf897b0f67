package scan

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/duke-git/lancet/v2/slice"

	"github.com/idelchi/foldersize/internal/log"
	"github.com/idelchi/foldersize/internal/sigcache"
)

// frame is one open directory of the walk: its path, the running total of
// everything seen below it so far, and the children still to visit.
type frame struct {
	path    string
	size    int64
	entries []fs.DirEntry
	next    int
}

// FindTopK returns up to k of the largest subfolders of root, largest first.
// No returned folder contains another and root itself is never returned.
//
// The tree is walked once, post-order, on an explicit stack, so depth is not
// bounded by the goroutine stack. Symbolic links are skipped. If ctx ends
// the walk stops and the partial result gathered so far is returned.
// An error is returned only when root cannot be read as a directory.
func FindTopK(ctx context.Context, root string, k int, hook ProgressFunc) ([]Item, error) {
	root = sigcache.Canonical(root)

	info, err := os.Lstat(root)
	if err != nil {
		return nil, fmt.Errorf("accessing path %q: %w", root, err)
	}

	if info.Mode()&fs.ModeSymlink != 0 {
		return []Item{}, nil
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("path %q is not a directory", root)
	}

	if k <= 0 {
		return []Item{}, nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("listing %q: %w", root, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var progress counters

	startProgressReporter(ctx, &progress, hook, DefaultProgressInterval)

	top := make([]Item, 0, k+1)
	stack := []*frame{{path: root, entries: entries}}

	for len(stack) > 0 {
		if ctx.Err() != nil {
			break
		}

		current := stack[len(stack)-1]

		if current.next < len(current.entries) {
			d := current.entries[current.next]
			current.next++

			if child := visit(current, d, root, &progress); child != nil {
				stack = append(stack, child)
			}

			continue
		}

		// Leaving current: propagate its total to the parent.
		stack = stack[:len(stack)-1]
		if len(stack) > 0 {
			stack[len(stack)-1].size += current.size
		}

		if current.path == root {
			break
		}

		top = admit(top, Item{
			Name:  filepath.Base(current.path),
			Path:  current.path,
			IsDir: true,
			Size:  current.size,
		}, k)
	}

	return top, nil
}

// visit handles one child of parent. Regular files are added to the parent's
// total; a readable directory under root is returned as a new frame.
func visit(parent *frame, d fs.DirEntry, root string, progress *counters) *frame {
	path := filepath.Join(parent.path, d.Name())

	switch {
	case d.Type()&fs.ModeSymlink != 0:
		return nil
	case d.IsDir():
		if !within(root, path) {
			return nil
		}

		entries, err := os.ReadDir(path)
		if err != nil && len(entries) == 0 {
			log.Debug().Err(err).Str("path", path).Msg("skipping unreadable directory")

			return nil
		}

		return &frame{path: path, entries: entries}
	case d.Type().IsRegular():
		info, err := d.Info()
		if err != nil {
			log.Debug().Err(err).Str("path", path).Msg("error reading file info")

			return nil
		}

		parent.size += info.Size()
		progress.add(info.Size())
	}

	return nil
}

// admit adds candidate to top unless a member already encloses it. Members
// enclosed by the candidate are replaced by it. The result is sorted largest
// first and holds at most k items.
func admit(top []Item, candidate Item, k int) []Item {
	enclosed := slice.Some(top, func(_ int, it Item) bool {
		return IsAncestor(it.Path, candidate.Path)
	})
	if enclosed {
		return top
	}

	top = slice.Filter(top, func(_ int, it Item) bool {
		return !IsAncestor(candidate.Path, it.Path)
	})

	top = append(top, candidate)
	sortBySize(top)

	if len(top) > k {
		top = top[:k]
	}

	return top
}

// FindTopK runs the package level FindTopK without progress reporting.
// The cache is neither read nor written.
func (s *Scanner) FindTopK(ctx context.Context, root string, k int) ([]Item, error) {
	return FindTopK(ctx, root, k, nil)
}
