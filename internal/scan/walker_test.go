package scan

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, root string, opts WalkOptions) []string {
	t.Helper()
	var got []string
	err := Walk(context.Background(), root, opts, func(path string, _ fs.FileInfo) error {
		rel, err := filepath.Rel(root, path)
		require.NoError(t, err)
		got = append(got, filepath.ToSlash(rel))
		return nil
	}, noErrors(t))
	require.NoError(t, err)
	sort.Strings(got)
	return got
}

// TestDirQueueNeverLosesItems pushes 5 000 items, pops all, and verifies the
// exact sequence is returned (compaction must not drop entries).
func TestDirQueueNeverLosesItems(t *testing.T) {
	const n = 5000
	q := &dirQueue{}
	for i := 0; i < n; i++ {
		q.Push(fmt.Sprintf("dir%04d", i))
	}

	for i := 0; i < n; i++ {
		item, ok := q.Pop()
		require.True(t, ok)
		require.Equal(t, fmt.Sprintf("dir%04d", i), item)
	}
	_, ok := q.Pop()
	assert.False(t, ok)
}

func TestDirQueueCompactionBoundsMemory(t *testing.T) {
	const batchSize = 2000
	const batches = 5
	q := &dirQueue{}

	for b := 0; b < batches; b++ {
		for i := 0; i < batchSize; i++ {
			q.Push(fmt.Sprintf("d%d_%04d", b, i))
		}
		for i := 0; i < batchSize; i++ {
			_, ok := q.Pop()
			require.True(t, ok)
		}
	}
	assert.Less(t, cap(q.items), batchSize*batches)
}

func TestWalkMatchesPatternOnly(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.txt", "b.TXT", "c.log", "sub/d.txt")

	assert.Equal(t, []string{"a.txt"}, collect(t, root, WalkOptions{Pattern: "*.txt"}))
}

func TestWalkRecurses(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.txt", "sub/b.txt", "sub/deeper/c.txt", "sub/deeper/c.log")

	got := collect(t, root, WalkOptions{Pattern: "*.txt", Recurse: true})
	assert.Equal(t, []string{"a.txt", "sub/b.txt", "sub/deeper/c.txt"}, got)
}

func TestWalkExcludesFilesAndDirectories(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "keep.txt", "skip.txt", "cache/x.txt", "data/y.txt")

	got := collect(t, root, WalkOptions{
		Pattern: "*.txt",
		Recurse: true,
		Exclude: regexp.MustCompile(`skip\.txt$|/cache$`),
	})
	assert.Equal(t, []string{"data/y.txt", "keep.txt"}, got)
}

func TestWalkSkipsExactPaths(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "keep.db", "out.db")

	got := collect(t, root, WalkOptions{
		Pattern: "*.db",
		Skip:    map[string]struct{}{filepath.Join(root, "out.db"): {}},
	})
	assert.Equal(t, []string{"keep.db"}, got)
}

func TestWalkIgnoresSymlinks(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "real.txt")
	if err := os.Symlink(filepath.Join(root, "real.txt"), filepath.Join(root, "link.txt")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	assert.Equal(t, []string{"real.txt"}, collect(t, root, WalkOptions{Pattern: "*.txt"}))
}

func TestWalkStopsOnCallbackError(t *testing.T) {
	root := t.TempDir()
	createFlatTree(t, root, 5)
	boom := fmt.Errorf("boom")

	calls := 0
	err := Walk(context.Background(), root, WalkOptions{Pattern: "*.txt"}, func(string, fs.FileInfo) error {
		calls++
		return boom
	}, noErrors(t))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestWalkCancellation(t *testing.T) {
	root := t.TempDir()
	createFlatTree(t, root, 20)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Walk(ctx, root, WalkOptions{Pattern: "*.txt"}, func(string, fs.FileInfo) error {
		calls++
		if calls == 3 {
			cancel()
		}
		return nil
	}, noErrors(t))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, calls)
}
