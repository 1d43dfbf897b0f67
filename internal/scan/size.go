package scan

import (
	"context"
	"io/fs"
	"os"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"

	"github.com/idelchi/foldersize/internal/log"
)

// folderSize returns the total size of the regular files below root.
//
// Symbolic links are never followed: a symlinked root or subdirectory
// contributes zero. Entries that cannot be read are skipped. The context is
// checked before every directory and file; if it ends, the partial total is
// dropped and the context error returned.
func folderSize(ctx context.Context, root string) (int64, error) {
	info, err := os.Lstat(root)
	if err != nil {
		log.Debug().Err(err).Str("path", root).Msg("skipping unreadable directory")

		return 0, nil
	}

	if info.Mode()&fs.ModeSymlink != 0 || !info.IsDir() {
		return 0, nil
	}

	var total atomic.Int64

	conf := &fastwalk.Config{
		Follow: false, // Don't follow symlinks
	}

	// fastwalk calls the callback from multiple goroutines concurrently.
	//nolint:varnamelen // d is standard for DirEntry
	walkErr := fastwalk.Walk(conf, root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			log.Debug().Err(err).Str("path", path).Msg("error accessing path")

			return nil // Skip and continue
		}

		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		fileInfo, err := d.Info()
		if err != nil {
			log.Debug().Err(err).Str("path", path).Msg("error reading file info")

			return nil //nolint:nilerr // Intentionally skip errors during walk
		}

		total.Add(fileInfo.Size())

		return nil
	})

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if walkErr != nil {
		log.Debug().Err(walkErr).Str("path", root).Msg("walk ended early")
	}

	return total.Load(), nil
}
