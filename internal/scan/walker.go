package scan

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
)

// WalkOptions select the files Walk reports.
type WalkOptions struct {
	// Pattern is a filepath.Match glob applied to base names.
	Pattern string
	Recurse bool
	// Exclude, when set, drops files and whole directories whose full path
	// matches.
	Exclude *regexp.Regexp
	// Skip lists exact paths that are never reported.
	Skip map[string]struct{}
}

// WalkFunc is called for every matching regular file. A non-nil error stops
// the walk and is returned by Walk.
type WalkFunc func(path string, info fs.FileInfo) error

// dirQueue is a FIFO of directories still to read. Consumed slots are
// released and the backing array compacted so long walks do not pin every
// path ever seen.
type dirQueue struct {
	items []string
	head  int
}

func (q *dirQueue) Push(dir string) { q.items = append(q.items, dir) }

func (q *dirQueue) Pop() (string, bool) {
	if q.head >= len(q.items) {
		return "", false
	}
	item := q.items[q.head]
	q.items[q.head] = ""
	q.head++
	if q.head >= 1000 && q.head >= len(q.items)/2 {
		q.items = append(q.items[:0], q.items[q.head:]...)
		q.head = 0
	}
	return item, true
}

// Walk visits root breadth-first on the calling goroutine and calls fn for
// every regular file whose name matches opts.Pattern. Symlinks and special
// files are ignored. Unreadable directories are passed to report and
// skipped. Walk returns ctx.Err() if ctx is cancelled between entries.
func Walk(ctx context.Context, root string, opts WalkOptions, fn WalkFunc, report ErrorReporter) error {
	q := &dirQueue{}
	q.Push(root)

	for {
		dir, ok := q.Pop()
		if !ok {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			report(dir, "walk", err.Error())
			continue
		}

		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())

			if _, skip := opts.Skip[path]; skip {
				continue
			}
			if opts.Exclude != nil && opts.Exclude.MatchString(path) {
				continue
			}

			if entry.IsDir() {
				if opts.Recurse {
					q.Push(path)
				}
				continue
			}
			if !entry.Type().IsRegular() {
				continue
			}

			matched, err := filepath.Match(opts.Pattern, entry.Name())
			if err != nil {
				return err
			}
			if !matched {
				continue
			}

			info, err := entry.Info()
			if err != nil {
				report(path, "stat", err.Error())
				continue
			}

			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(path, info); err != nil {
				return err
			}
		}
	}
}
