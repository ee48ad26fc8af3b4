package inventory

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// RunStats is one row of the stats table.
type RunStats struct {
	ID        int64    `json:"id"`
	Timestamp string   `json:"timestamp"`
	ScanPath  string   `json:"scan_path"`
	Pattern   string   `json:"pattern"`
	Recurse   bool     `json:"recurse"`
	FileCount *int64   `json:"file_count"`
	Duration  *float64 `json:"duration_seconds"`
	UUID      string   `json:"uuid"`
}

// FileRow is a filelist row joined with its directory.
type FileRow struct {
	ID       int64  `json:"id"`
	Dir      string `json:"dir"`
	Filename string `json:"filename"`
	Status   Status `json:"status"`
}

// FileFilter narrows ListFiles. Zero values mean "any".
type FileFilter struct {
	Status *Status
	Dir    string
	Limit  int
	Offset int
}

// ListRuns returns stats rows newest first. A store without a stats table
// has no runs.
func ListRuns(ctx context.Context, db *sql.DB, limit, offset int) ([]RunStats, error) {
	ok, err := tableExists(ctx, db, "stats")
	if err != nil || !ok {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, timestamp, scanpath, pattern, recurse, filecount, duration, uuid
		FROM stats
		ORDER BY id DESC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunStats
	for rows.Next() {
		var (
			r        RunStats
			count    sql.NullInt64
			duration sql.NullFloat64
		)
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.ScanPath, &r.Pattern, &r.Recurse,
			&count, &duration, &r.UUID); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if count.Valid {
			r.FileCount = &count.Int64
		}
		if duration.Valid {
			r.Duration = &duration.Float64
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// CountRuns returns the number of stats rows.
func CountRuns(ctx context.Context, db *sql.DB) (int, error) {
	ok, err := tableExists(ctx, db, "stats")
	if err != nil || !ok {
		return 0, err
	}
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM stats`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count runs: %w", err)
	}
	return n, nil
}

// ListFiles returns matching filelist rows ordered by directory and name,
// plus the total number of matches ignoring limit and offset.
func ListFiles(ctx context.Context, db *sql.DB, f FileFilter) ([]FileRow, int, error) {
	if ok, err := tableExists(ctx, db, "filelist"); err != nil || !ok {
		return nil, 0, err
	}

	var (
		where []string
		args  []any
	)
	if f.Status != nil {
		where = append(where, "f.status = ?")
		args = append(args, int(*f.Status))
	}
	if f.Dir != "" {
		where = append(where, "d.path = ?")
		args = append(args, f.Dir)
	}
	clause := ""
	if len(where) > 0 {
		clause = "WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM filelist f JOIN dirlist d ON d.id = f.path_id `+clause, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count files: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.QueryContext(ctx, `
		SELECT f.id, d.path, f.filename, f.status
		FROM filelist f JOIN dirlist d ON d.id = f.path_id
		`+clause+`
		ORDER BY d.path, f.filename
		LIMIT ? OFFSET ?`, append(args, limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	var files []FileRow
	for rows.Next() {
		var fr FileRow
		if err := rows.Scan(&fr.ID, &fr.Dir, &fr.Filename, &fr.Status); err != nil {
			return nil, 0, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, fr)
	}
	return files, total, rows.Err()
}

// CountByStatus returns the number of filelist rows per status.
func CountByStatus(ctx context.Context, db *sql.DB) (map[Status]int64, error) {
	counts := map[Status]int64{StatusNew: 0, StatusExisting: 0, StatusMissing: 0}
	ok, err := tableExists(ctx, db, "filelist")
	if err != nil || !ok {
		return counts, err
	}

	rows, err := db.QueryContext(ctx, `SELECT status, COUNT(*) FROM filelist GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			s Status
			n int64
		)
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		counts[s] = n
	}
	return counts, rows.Err()
}
