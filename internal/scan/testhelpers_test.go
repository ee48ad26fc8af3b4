package scan

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	internaldb "github.com/eargollo/filelist/internal/db"
	"github.com/eargollo/filelist/internal/inventory"
)

// noErrors is an ErrorReporter that fails the test if invoked.
func noErrors(tb testing.TB) ErrorReporter {
	return func(path, stage, errMsg string) {
		tb.Errorf("unexpected scan error: path=%q stage=%q err=%q", path, stage, errMsg)
	}
}

// writeFiles creates each relative path under root with small content.
func writeFiles(tb testing.TB, root string, rel ...string) {
	tb.Helper()
	for _, r := range rel {
		p := filepath.Join(root, filepath.FromSlash(r))
		require.NoError(tb, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(tb, os.WriteFile(p, []byte(r), 0o644))
	}
}

// createFlatTree writes n .txt files directly under root.
func createFlatTree(tb testing.TB, root string, n int) {
	tb.Helper()
	for i := 0; i < n; i++ {
		writeFiles(tb, root, fmt.Sprintf("f%03d.txt", i))
	}
}

// mustRun builds a scanner for opts and runs it once.
func mustRun(tb testing.TB, opts Options) (Result, string) {
	tb.Helper()
	var out bytes.Buffer
	s, err := New(opts, &out, func(string) bool { return true })
	require.NoError(tb, err)
	res, err := s.Run(context.Background())
	require.NoError(tb, err)
	return res, out.String()
}

// statuses opens the store at path and maps relative file paths to status.
func statuses(tb testing.TB, dbPath, root string) map[string]inventory.Status {
	tb.Helper()
	db := openStore(tb, dbPath)
	files, _, err := inventory.ListFiles(context.Background(), db, inventory.FileFilter{})
	require.NoError(tb, err)

	out := map[string]inventory.Status{}
	for _, f := range files {
		rel, err := filepath.Rel(root, filepath.Join(f.Dir, f.Filename))
		require.NoError(tb, err)
		out[filepath.ToSlash(rel)] = f.Status
	}
	return out
}

func openStore(tb testing.TB, dbPath string) *sql.DB {
	tb.Helper()
	db, err := internaldb.Open(dbPath)
	require.NoError(tb, err)
	tb.Cleanup(func() { db.Close() })
	return db
}
