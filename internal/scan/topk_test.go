package scan

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAncestor(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{name: "child", a: "/data/users", b: "/data/users/me", want: true},
		{name: "deep descendant", a: "/data/users", b: "/data/users/me/app/cache", want: true},
		{name: "reverse", a: "/data/users/me", b: "/data/users", want: false},
		{name: "same", a: "/data/users", b: "/data/users", want: false},
		{name: "same after cleaning", a: "/data/users/", b: "/data/./users", want: false},
		{name: "sibling with shared prefix", a: "/data/user", b: "/data/users", want: false},
		{name: "filesystem root", a: "/", b: "/data", want: true},
		{name: "unclean descendant", a: "/data", b: "/data/x/../y", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAncestor(filepath.FromSlash(tt.a), filepath.FromSlash(tt.b)))
		})
	}
}

func TestFindTopKExcludesNestedFolders(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "A", "a.bin"), 50)
	writeFile(t, filepath.Join(root, "A", "B", "b.bin"), 150)
	writeFile(t, filepath.Join(root, "C", "c.bin"), 100)
	writeFile(t, filepath.Join(root, "root.bin"), 1000)

	top, err := FindTopK(context.Background(), root, 2, nil)
	require.NoError(t, err)
	require.Len(t, top, 2)

	assert.Equal(t, "A", top[0].Name)
	assert.Equal(t, int64(200), top[0].Size)
	assert.True(t, top[0].IsDir)
	assert.Equal(t, "C", top[1].Name)
	assert.Equal(t, int64(100), top[1].Size)
}

func TestFindTopKLargestOnly(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "big", "x"), 500)
	writeFile(t, filepath.Join(root, "mid", "y"), 300)
	writeFile(t, filepath.Join(root, "mid", "inner", "z"), 10)

	top, err := FindTopK(context.Background(), root, 1, nil)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, filepath.Join(root, "big"), top[0].Path)
}

func TestFindTopKNonPositiveK(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "A", "a"), 5)

	top, err := FindTopK(context.Background(), root, 0, nil)
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestFindTopKErrors(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "file"), 5)

	_, err := FindTopK(context.Background(), filepath.Join(root, "missing"), 3, nil)
	require.Error(t, err)

	_, err = FindTopK(context.Background(), filepath.Join(root, "file"), 3, nil)
	require.Error(t, err)
}

func TestFindTopKSkipsSymlinks(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	writeFile(t, filepath.Join(outside, "huge"), 10_000)
	writeFile(t, filepath.Join(root, "A", "a"), 5)
	require.NoError(t, os.Symlink(outside, filepath.Join(root, "A", "link")))
	require.NoError(t, os.Symlink(outside, filepath.Join(root, "link")))

	top, err := FindTopK(context.Background(), root, 5, nil)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, int64(5), top[0].Size)
}

func TestFindTopKCancelledReturnsPartial(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "A", "a"), 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	top, err := FindTopK(ctx, root, 3, nil)
	require.NoError(t, err)
	assert.Empty(t, top)
}

// TestFindTopKProperties checks size bound, ordering, non-nesting and root
// exclusion on a random tree.
func TestFindTopKProperties(t *testing.T) {
	root := t.TempDir()
	rng := rand.New(rand.NewSource(1)) //nolint:gosec // Deterministic test data

	dirs := []string{root}

	for i := 0; i < 40; i++ {
		parent := dirs[rng.Intn(len(dirs))]
		dir := filepath.Join(parent, fmt.Sprintf("d%d", i))
		require.NoError(t, os.Mkdir(dir, 0o755))

		dirs = append(dirs, dir)
		writeFile(t, filepath.Join(dir, "f"), rng.Intn(1000))
	}

	for _, k := range []int{1, 3, 7, 50} {
		top, err := FindTopK(context.Background(), root, k, nil)
		require.NoError(t, err)

		assert.LessOrEqual(t, len(top), k)

		for i := range top {
			assert.NotEqual(t, root, top[i].Path)

			if i > 0 {
				assert.GreaterOrEqual(t, top[i-1].Size, top[i].Size)
			}

			for j := range top {
				if i != j {
					assert.False(t, IsAncestor(top[i].Path, top[j].Path), "%s encloses %s", top[i].Path, top[j].Path)
				}
			}
		}
	}
}

func TestFindTopKTotalsMatchScanner(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "A", "x"), 11)
	writeFile(t, filepath.Join(root, "A", "B", "C", "y"), 22)
	writeFile(t, filepath.Join(root, "D", "z"), 3)

	sc := New(Options{})
	defer sc.Close()

	listed, err := sc.ListFoldersAndSizes(context.Background(), root)
	require.NoError(t, err)

	top, err := sc.FindTopK(context.Background(), root, 10)
	require.NoError(t, err)

	assert.Equal(t, sizes(listed), sizes(top))
}

func TestProgressReporter(t *testing.T) {
	var (
		c     counters
		calls atomic.Int64
	)

	c.add(10)
	c.add(5)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan [2]int64, 1)

	startProgressReporter(ctx, &c, func(files, bytes int64) {
		if calls.Add(1) == 1 {
			got <- [2]int64{files, bytes}
		}
	}, 5*time.Millisecond)

	select {
	case v := <-got:
		assert.Equal(t, [2]int64{2, 15}, v)
	case <-time.After(2 * time.Second):
		t.Fatal("progress hook not called")
	}
}
