// Package inventory keeps a SQLite file inventory in sync with a directory
// tree across runs.
//
// Each run sweeps every filelist row to StatusMissing, then reconciles the
// scanned records: unseen files are inserted with StatusNew, known files are
// updated to StatusExisting. Rows the run never touches keep StatusMissing,
// which is how deleted files show up without diffing two snapshots.
// Directories are interned into dirlist so filelist rows reference them by id.
package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	internaldb "github.com/eargollo/filelist/internal/db"
	"github.com/eargollo/filelist/internal/record"
)

// Status is the tri-state reconciliation marker of a filelist row.
type Status int

const (
	StatusMissing  Status = -1 // not seen by the latest run
	StatusExisting Status = 0  // seen before and again by the latest run
	StatusNew      Status = 1  // first seen by the latest run
)

func (s Status) String() string {
	switch s {
	case StatusMissing:
		return "missing"
	case StatusExisting:
		return "existing"
	case StatusNew:
		return "new"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// ParseStatus accepts the names returned by Status.String.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(s) {
	case "missing":
		return StatusMissing, nil
	case "existing":
		return StatusExisting, nil
	case "new":
		return StatusNew, nil
	}
	return 0, fmt.Errorf("unknown status %q", s)
}

// ErrSchemaMismatch is returned when an existing filelist was created with a
// different column set than the one requested.
var ErrSchemaMismatch = errors.New("filelist columns do not match the requested profile")

// Bootstrap prepares the store for a run with the given record columns
// (path and filename first). With reset set, filelist, stats and dirlist are
// dropped and recreated empty; otherwise existing tables are reused.
func Bootstrap(ctx context.Context, db *sql.DB, columns []record.Column, reset bool) error {
	if len(columns) < 2 {
		return fmt.Errorf("bootstrap: need at least path and filename columns, got %d", len(columns))
	}
	payload := columns[2:]

	if reset {
		// filelist references dirlist, so it goes first.
		for _, table := range []string{"filelist", "stats"} {
			if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
				return fmt.Errorf("drop %s: %w", table, err)
			}
		}
		if err := internaldb.ResetMigrations(db); err != nil {
			return err
		}
	}
	if err := internaldb.RunMigrations(db); err != nil {
		return err
	}

	exists, err := tableExists(ctx, db, "filelist")
	if err != nil {
		return err
	}
	if exists {
		got, err := tableColumns(ctx, db, "filelist")
		if err != nil {
			return err
		}
		if want := filelistColumnNames(payload); !slices.Equal(got, want) {
			return fmt.Errorf("%w: have %v, want %v", ErrSchemaMismatch, got, want)
		}
		return nil
	}

	if _, err := db.ExecContext(ctx, createFilelistSQL(payload)); err != nil {
		return fmt.Errorf("create filelist: %w", err)
	}
	if _, err := db.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS idx_filelist_status ON filelist(status)`); err != nil {
		return fmt.Errorf("create filelist index: %w", err)
	}
	return nil
}

func createFilelistSQL(payload []record.Column) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE filelist (\n")
	b.WriteString("\tid INTEGER PRIMARY KEY,\n")
	b.WriteString("\tpath_id INTEGER NOT NULL REFERENCES dirlist(id),\n")
	b.WriteString("\tfilename TEXT NOT NULL,\n")
	for _, c := range payload {
		fmt.Fprintf(&b, "\t%s %s,\n", quoteIdent(c.Name), c.Type)
	}
	b.WriteString("\tstatus INTEGER NOT NULL DEFAULT 1,\n")
	b.WriteString("\tUNIQUE (path_id, filename)\n)")
	return b.String()
}

func filelistColumnNames(payload []record.Column) []string {
	names := []string{"id", "path_id", "filename"}
	for _, c := range payload {
		names = append(names, c.Name)
	}
	return append(names, "status")
}

func tableExists(ctx context.Context, db *sql.DB, name string) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check table %s: %w", name, err)
	}
	return n > 0, nil
}

func tableColumns(ctx context.Context, db *sql.DB, name string) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM pragma_table_info(?) ORDER BY cid`, name)
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", name, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
