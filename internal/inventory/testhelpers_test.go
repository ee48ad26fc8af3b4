package inventory

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	internaldb "github.com/eargollo/filelist/internal/db"
	"github.com/eargollo/filelist/internal/record"
)

var testColumns = []record.Column{
	{Name: "path", Type: record.TypeText},
	{Name: "filename", Type: record.TypeText},
	{Name: "size", Type: record.TypeInteger},
}

// mustOpenDB opens a temp file SQLite database bootstrapped for testColumns.
func mustOpenDB(tb testing.TB) *sql.DB {
	tb.Helper()
	dbPath := filepath.Join(tb.TempDir(), "test.db")
	db, err := internaldb.Open(dbPath)
	require.NoError(tb, err, "open test DB")
	tb.Cleanup(func() { db.Close() })
	require.NoError(tb, Bootstrap(context.Background(), db, testColumns, false), "bootstrap")
	return db
}

// runOnce performs a full sweep-reconcile-drain cycle over recs.
func runOnce(tb testing.TB, db *sql.DB, batchSize int, recs []record.Record) SessionStats {
	tb.Helper()
	ctx := context.Background()
	s := NewSession(db, testColumns, batchSize)
	_, err := s.Sweep(ctx)
	require.NoError(tb, err)
	for _, r := range recs {
		require.NoError(tb, s.Reconcile(ctx, r))
	}
	s.Flush(ctx)
	return s.Stats()
}

// fileStatuses maps "dir/filename" to status for every filelist row.
func fileStatuses(tb testing.TB, db *sql.DB) map[string]Status {
	tb.Helper()
	rows, err := db.Query(`
		SELECT d.path, f.filename, f.status
		FROM filelist f JOIN dirlist d ON d.id = f.path_id`)
	require.NoError(tb, err)
	defer rows.Close()

	out := map[string]Status{}
	for rows.Next() {
		var (
			dir, name string
			st        Status
		)
		require.NoError(tb, rows.Scan(&dir, &name, &st))
		out[dir+"/"+name] = st
	}
	require.NoError(tb, rows.Err())
	return out
}

func countRows(tb testing.TB, db *sql.DB, table string) int {
	tb.Helper()
	var n int
	require.NoError(tb, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

// syntheticRecords returns n records spread over directories of 10 files.
func syntheticRecords(n int) []record.Record {
	recs := make([]record.Record, n)
	for i := range recs {
		recs[i] = record.Record{
			fmt.Sprintf("/vol/dir%03d", i/10),
			fmt.Sprintf("file%04d.bin", i),
			int64(i),
		}
	}
	return recs
}
