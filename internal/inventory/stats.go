package inventory

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/eargollo/filelist/internal/record"
)

const createStatsSQL = `
CREATE TABLE IF NOT EXISTS stats (
    id        INTEGER PRIMARY KEY,
    timestamp TEXT NOT NULL,
    scanpath  TEXT NOT NULL,
    pattern   TEXT NOT NULL,
    recurse   INTEGER NOT NULL,
    filecount INTEGER,
    duration  REAL,
    uuid      TEXT NOT NULL
)`

// Run identifies a stats row opened by Recorder.Begin.
type Run struct {
	ID        int64
	UUID      string
	StartedAt time.Time
}

// Recorder appends one stats row per run. The stats table is created on
// first use.
type Recorder struct {
	db *sql.DB
}

// NewRecorder returns a Recorder writing to db.
func NewRecorder(db *sql.DB) *Recorder {
	return &Recorder{db: db}
}

// Begin inserts the row for a starting run with filecount and duration null.
func (r *Recorder) Begin(ctx context.Context, scanRoot, pattern string, recurse bool) (Run, error) {
	if _, err := r.db.ExecContext(ctx, createStatsSQL); err != nil {
		return Run{}, fmt.Errorf("create stats: %w", err)
	}

	run := Run{UUID: uuid.NewString(), StartedAt: time.Now()}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO stats (timestamp, scanpath, pattern, recurse, uuid)
		VALUES (?, ?, ?, ?, ?)`,
		run.StartedAt.Format(record.TimeLayout), scanRoot, pattern, recurse, run.UUID)
	if err != nil {
		return Run{}, fmt.Errorf("insert stats: %w", err)
	}
	if run.ID, err = res.LastInsertId(); err != nil {
		return Run{}, fmt.Errorf("stats id: %w", err)
	}
	return run, nil
}

// End stores the final file count and duration of run.
func (r *Recorder) End(ctx context.Context, runID int64, fileCount int64, duration time.Duration) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE stats SET filecount = ?, duration = ? WHERE id = ?`,
		fileCount, duration.Seconds(), runID)
	if err != nil {
		return fmt.Errorf("finalise stats %d: %w", runID, err)
	}
	return nil
}
