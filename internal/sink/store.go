package sink

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	internaldb "github.com/eargollo/filelist/internal/db"
	"github.com/eargollo/filelist/internal/inventory"
	"github.com/eargollo/filelist/internal/record"
)

// Store reconciles records into a SQLite inventory and records run
// statistics.
type Store struct {
	path      string
	columns   []record.Column
	batchSize int

	db       *sql.DB
	session  *inventory.Session
	recorder *inventory.Recorder
	run      inventory.Run
	swept    bool
}

// NewStore returns a sink for the database file at path.
func NewStore(path string, columns []record.Column, batchSize int) *Store {
	return &Store{path: path, columns: columns, batchSize: batchSize}
}

// Open bootstraps the schema, dropping everything in ModeOverwrite. Rows are
// swept to missing by BeginRun, or before the first write when no run is
// recorded.
func (s *Store) Open(ctx context.Context, mode Mode) error {
	db, err := internaldb.Open(s.path)
	if err != nil {
		return err
	}
	if err := inventory.Bootstrap(ctx, db, s.columns, mode == ModeOverwrite); err != nil {
		db.Close()
		return fmt.Errorf("bootstrap %q: %w", s.path, err)
	}

	s.db = db
	s.session = inventory.NewSession(db, s.columns, s.batchSize)
	s.recorder = inventory.NewRecorder(db)
	return nil
}

func (s *Store) WriteRecord(ctx context.Context, rec record.Record) error {
	if err := s.sweep(ctx); err != nil {
		return err
	}
	return s.session.Reconcile(ctx, rec)
}

// sweep runs the tombstone sweep once per run.
func (s *Store) sweep(ctx context.Context) error {
	if s.swept {
		return nil
	}
	if _, err := s.session.Sweep(ctx); err != nil {
		return err
	}
	s.swept = true
	return nil
}

// Flush drains the pending batch. Batch write errors are logged by the
// session, never returned.
func (s *Store) Flush(ctx context.Context) error {
	if err := s.sweep(ctx); err != nil {
		return err
	}
	s.session.Flush(ctx)
	return nil
}

// Close releases the database without flushing. Records still pending after
// an interrupted run are discarded.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	if n := s.session.Pending(); n > 0 {
		slog.Warn("closing store with unflushed records", "pending", n)
	}
	return s.db.Close()
}

// BeginRun writes the stats row of the run, then sweeps. A failed Begin
// leaves the inventory untouched.
func (s *Store) BeginRun(ctx context.Context, scanRoot, pattern string, recurse bool) error {
	run, err := s.recorder.Begin(ctx, scanRoot, pattern, recurse)
	if err != nil {
		return err
	}
	s.run = run
	slog.Info("run started", "run", run.ID, "uuid", run.UUID)
	return s.sweep(ctx)
}

func (s *Store) EndRun(ctx context.Context, fileCount int64, duration time.Duration) error {
	return s.recorder.End(ctx, s.run.ID, fileCount, duration)
}

// SessionStats exposes the reconciliation counters of the current run.
func (s *Store) SessionStats() inventory.SessionStats {
	if s.session == nil {
		return inventory.SessionStats{}
	}
	return s.session.Stats()
}
