package scan

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/idelchi/foldersize/internal/log"
	"github.com/idelchi/foldersize/internal/metrics"
	"github.com/idelchi/foldersize/internal/sigcache"
	"github.com/idelchi/foldersize/internal/trash"
	"github.com/idelchi/foldersize/internal/workers"
)

const (
	// DefaultCacheMaxEntries bounds the number of cached directory sizes.
	DefaultCacheMaxEntries = 2000
	// DefaultCacheTTL is how long a cached size may be reused.
	DefaultCacheTTL = 30 * time.Second
)

// Options configures a Scanner. Zero values select defaults.
type Options struct {
	// CacheMaxEntries bounds the signature cache.
	CacheMaxEntries int
	// CacheTTL is the freshness window of cached sizes.
	CacheTTL time.Duration
	// Workers is the worker pool size (default max(2, NumCPU)).
	Workers int
	// DirPermits bounds concurrent recursive walks (default max(2, NumCPU/2)).
	DirPermits int
	// Trash is used by Delete (default trash.New()).
	Trash trash.Trasher
	// Metrics receives cache and delete counters (default unregistered).
	Metrics *metrics.Metrics
}

// Scanner computes directory sizes on a shared worker pool backed by a
// signature-validated cache. It must be released with Close.
type Scanner struct {
	cache   *sigcache.Cache
	pool    *workers.Pool
	permits *semaphore.Weighted
	trash   trash.Trasher
	metrics *metrics.Metrics

	// walk computes the recursive size of a directory.
	walk func(ctx context.Context, dir string) (int64, error)
}

// New creates a Scanner and starts its worker pool.
func New(opt Options) *Scanner {
	if opt.CacheMaxEntries <= 0 {
		opt.CacheMaxEntries = DefaultCacheMaxEntries
	}

	if opt.CacheTTL <= 0 {
		opt.CacheTTL = DefaultCacheTTL
	}

	if opt.DirPermits <= 0 {
		opt.DirPermits = max(2, runtime.NumCPU()/2)
	}

	if opt.Trash == nil {
		opt.Trash = trash.New()
	}

	if opt.Metrics == nil {
		opt.Metrics = metrics.New(nil)
	}

	m := opt.Metrics

	return &Scanner{
		cache: sigcache.New(opt.CacheMaxEntries, opt.CacheTTL, sigcache.WithEvictHook(func(string) {
			m.CacheEvictions.Inc()
		})),
		pool:    workers.New(opt.Workers),
		permits: semaphore.NewWeighted(int64(opt.DirPermits)),
		trash:   opt.Trash,
		metrics: m,
		walk:    folderSize,
	}
}

// Close stops the worker pool, abandoning queued work.
func (s *Scanner) Close() {
	s.pool.Close()
}

// Invalidate drops the cached size of path.
func (s *Scanner) Invalidate(path string) {
	s.cache.Invalidate(path)
}

// ClearCache drops every cached size.
func (s *Scanner) ClearCache() {
	s.cache.Clear()
}

// Cache exposes the underlying signature cache.
func (s *Scanner) Cache() *sigcache.Cache {
	return s.cache
}

// entry is a direct child waiting to be sized.
type entry struct {
	name  string
	path  string
	isDir bool
}

// ListFolderContents sizes every direct child of dir and returns them largest first.
//
// Files are sized from their metadata and reported with FromCache set.
// Directories, including symlinks resolving to directories, are sized
// recursively through the cache. An error is returned only when dir itself
// cannot be listed. If ctx ends before all children are sized the result is
// empty.
func (s *Scanner) ListFolderContents(ctx context.Context, dir string) ([]Item, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing %q: %w", dir, err)
	}

	entries := make([]entry, 0, len(dirEntries))

	for _, d := range dirEntries {
		path := filepath.Join(dir, d.Name())
		isDir := d.IsDir()

		if d.Type()&fs.ModeSymlink != 0 {
			if info, err := os.Stat(path); err == nil {
				isDir = info.IsDir()
			}
		}

		entries = append(entries, entry{name: d.Name(), path: path, isDir: isDir})
	}

	return s.sizeAll(ctx, entries), nil
}

// ListFoldersAndSizes sizes the immediate subdirectories of parent and returns
// them largest first. Symbolic links are not listed.
func (s *Scanner) ListFoldersAndSizes(ctx context.Context, parent string) ([]Item, error) {
	dirEntries, err := os.ReadDir(parent)
	if err != nil {
		return nil, fmt.Errorf("listing %q: %w", parent, err)
	}

	entries := make([]entry, 0, len(dirEntries))

	for _, d := range dirEntries {
		if !d.IsDir() {
			continue
		}

		entries = append(entries, entry{name: d.Name(), path: filepath.Join(parent, d.Name()), isDir: true})
	}

	return s.sizeAll(ctx, entries), nil
}

// sizeAll runs one pool task per entry and collects the results.
func (s *Scanner) sizeAll(ctx context.Context, entries []entry) []Item {
	results := make([]Item, len(entries))
	submitted := make([]bool, len(entries))

	var wg sync.WaitGroup

	for i, e := range entries {
		i, e := i, e // per-iteration copy (Go < 1.22 loop semantics)

		wg.Add(1)

		err := s.pool.Submit(ctx, func() {
			defer wg.Done()

			if e.isDir {
				results[i] = s.sizeDir(ctx, e)
			} else {
				results[i] = sizeFile(e)
			}
		})
		if err != nil {
			wg.Done()

			if ctx.Err() != nil {
				return []Item{}
			}

			log.Debug().Err(err).Str("path", e.path).Msg("entry not scheduled")

			continue
		}

		submitted[i] = true
	}

	finished := make(chan struct{})

	go func() {
		wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
	case <-ctx.Done():
		return []Item{}
	}

	if ctx.Err() != nil {
		return []Item{}
	}

	items := make([]Item, 0, len(entries))

	for i, ok := range submitted {
		if ok {
			items = append(items, results[i])
		}
	}

	sortBySize(items)

	return items
}

func sizeFile(e entry) Item {
	item := Item{Name: e.name, Path: e.path, FromCache: true}

	info, err := os.Stat(e.path)
	if err != nil {
		log.Debug().Err(err).Str("path", e.path).Msg("error reading file info")

		return item
	}

	item.Size = info.Size()

	return item
}

// sizeDir sizes a directory once a walk permit is available. Cancellation
// yields a zero-size placeholder.
func (s *Scanner) sizeDir(ctx context.Context, e entry) Item {
	item := Item{Name: e.name, Path: e.path, IsDir: true}

	if err := s.permits.Acquire(ctx, 1); err != nil {
		return item
	}
	defer s.permits.Release(1)

	if ctx.Err() != nil {
		return item
	}

	size, fromCache, err := s.dirSize(ctx, e.path)
	if err != nil {
		return item
	}

	item.Size = size
	item.FromCache = fromCache

	return item
}

// dirSize returns the cached size of dir if its signature still matches,
// otherwise walks it and caches the result. Concurrent calls for the same
// directory may both walk; the last Put wins.
func (s *Scanner) dirSize(ctx context.Context, dir string) (int64, bool, error) {
	abs := sigcache.Canonical(dir)
	sig := sigcache.ShallowSignature(abs)

	if cached := s.cache.Get(abs); s.cache.Valid(cached, sig) {
		s.metrics.CacheHits.Inc()

		return cached.Size, true, nil
	}

	s.metrics.CacheMisses.Inc()

	size, err := s.walk(ctx, abs)
	if err != nil {
		return 0, false, err
	}

	s.metrics.Walks.Inc()
	s.cache.Put(abs, size, sig)

	return size, false, nil
}
