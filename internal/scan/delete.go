package scan

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/idelchi/foldersize/internal/log"
	"github.com/idelchi/foldersize/internal/metrics"
)

// Outcome describes what Remove did with a path.
type Outcome string

// Remove outcomes; they double as the delete metric labels.
const (
	Trashed Outcome = metrics.DeleteTrashed
	Removed Outcome = metrics.DeleteRemoved
	Refused Outcome = metrics.DeleteRefused
	Failed  Outcome = metrics.DeleteFailed
)

// OK reports whether the path is gone.
func (o Outcome) OK() bool {
	return o == Trashed || o == Removed
}

// Delete removes path, preferring the trash. When the trash is unavailable or
// fails, path is removed permanently only if allowPermanent is set.
// Symbolic links are removed as links, never followed.
//
// The cached sizes of path and its parent are dropped whatever the outcome.
// Delete reports success; it never returns an error.
func (s *Scanner) Delete(path string, allowPermanent bool) bool {
	return s.Remove(path, allowPermanent).OK()
}

// Remove is Delete reporting how the path was disposed of.
func (s *Scanner) Remove(path string, allowPermanent bool) (result Outcome) {
	result = Failed

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("path", path).Msg("delete aborted")

			result = Failed
		}

		s.metrics.Deletes.WithLabelValues(string(result)).Inc()

		clean := filepath.Clean(path)
		s.cache.Invalidate(clean)

		if parent := filepath.Dir(clean); parent != clean {
			s.cache.Invalidate(parent)
		}
	}()

	if s.trash.Supported() {
		err := s.trash.Trash(path)
		if err == nil {
			log.Debug().Str("path", path).Msg("moved to trash")

			return Trashed
		}

		log.Debug().Err(err).Str("path", path).Msg("trash failed")
	}

	if !allowPermanent {
		return Refused
	}

	if err := removeAll(path); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("permanent delete failed")

		return Failed
	}

	return Removed
}

// removeAll deletes path and everything below it, children before parents.
// A missing path is not an error.
func removeAll(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("removing %q: %w", path, err)
	}

	return nil
}
