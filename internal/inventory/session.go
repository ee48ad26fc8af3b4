package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/eargollo/filelist/internal/record"
)

// DefaultBatchSize is the number of pending writes that triggers a flush.
const DefaultBatchSize = 50

// SessionStats counts what a Session has written so far.
type SessionStats struct {
	Inserted      int64
	Updated       int64
	DroppedRows   int64
	Flushes       int64
	FailedFlushes int64
}

type fileKey struct {
	pathID   int64
	filename string
}

// Session reconciles the records of one run against the filelist table.
// It is not safe for concurrent use; create one per run.
type Session struct {
	db        *sql.DB
	paths     *PathInterner
	batchSize int
	insertSQL string
	updateSQL string

	pending     []pendingWrite
	pendingKeys map[fileKey]int
	stats       SessionStats
}

// NewSession prepares a session for records with the given columns (path
// and filename first). The store must already be bootstrapped with the same
// columns. batchSize <= 0 selects DefaultBatchSize.
func NewSession(db *sql.DB, columns []record.Column, batchSize int) *Session {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	payload := columns[2:]
	return &Session{
		db:          db,
		paths:       NewPathInterner(db),
		batchSize:   batchSize,
		insertSQL:   buildInsertSQL(payload),
		updateSQL:   buildUpdateSQL(payload),
		pending:     make([]pendingWrite, 0, batchSize),
		pendingKeys: make(map[fileKey]int, batchSize),
	}
}

// Sweep marks every filelist row as missing. Call it once, before the first
// Reconcile of a run; rows the run revisits are flipped back.
func (s *Session) Sweep(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE filelist SET status = ?`, int(StatusMissing))
	if err != nil {
		return 0, fmt.Errorf("sweep filelist: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sweep filelist rows: %w", err)
	}
	slog.Debug("tombstone sweep", "rows", n)
	return n, nil
}

// Reconcile queues rec as an insert when (directory, filename) is unknown and
// as an update otherwise, flushing once the batch is full. Store errors
// while resolving the directory or looking up the row are returned; write
// errors surface only at flush time, where they are logged.
func (s *Session) Reconcile(ctx context.Context, rec record.Record) error {
	if len(rec) < 2 {
		return fmt.Errorf("reconcile: record has %d fields, need path and filename", len(rec))
	}
	pathID, err := s.paths.Resolve(ctx, rec.Path())
	if err != nil {
		return err
	}
	name := rec.Filename()
	key := fileKey{pathID: pathID, filename: name}

	if i, ok := s.pendingKeys[key]; ok {
		s.pending[i].payload = rec.Payload()
		return nil
	}

	var id int64
	err = s.db.QueryRowContext(ctx,
		`SELECT id FROM filelist WHERE path_id = ? AND filename = ?`, pathID, name,
	).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		s.enqueue(key, insertWrite(pathID, name, rec.Payload()))
	case err != nil:
		return fmt.Errorf("lookup %q in %q: %w", name, rec.Path(), err)
	default:
		s.enqueue(key, updateWrite(id, name, rec.Payload()))
	}

	if len(s.pending) >= s.batchSize {
		s.Flush(ctx)
	}
	return nil
}

func (s *Session) enqueue(key fileKey, w pendingWrite) {
	s.pendingKeys[key] = len(s.pending)
	s.pending = append(s.pending, w)
}

// Pending returns the number of queued writes.
func (s *Session) Pending() int { return len(s.pending) }

// Flush writes the pending batch in one transaction. A failed batch is
// logged and discarded as a whole; it is never retried or partially kept.
// A flush that has started completes even if ctx is cancelled meanwhile.
func (s *Session) Flush(ctx context.Context) {
	if len(s.pending) == 0 {
		return
	}

	var inserts, updates []pendingWrite
	for _, w := range s.pending {
		if w.kind == writeInsert {
			inserts = append(inserts, w)
		} else {
			updates = append(updates, w)
		}
	}

	s.stats.Flushes++
	err := writeBatch(context.WithoutCancel(ctx), s.db, s.insertSQL, s.updateSQL, inserts, updates)
	if err != nil {
		s.stats.FailedFlushes++
		s.stats.DroppedRows += int64(len(s.pending))
		slog.Warn("batch write failed, batch dropped",
			"batch", s.stats.Flushes,
			"inserts", len(inserts),
			"updates", len(updates),
			"error", err)
	} else {
		s.stats.Inserted += int64(len(inserts))
		s.stats.Updated += int64(len(updates))
		slog.Debug("batch written", "batch", s.stats.Flushes,
			"inserts", len(inserts), "updates", len(updates))
	}

	s.pending = s.pending[:0]
	clear(s.pendingKeys)
}

// Stats returns a snapshot of the session counters.
func (s *Session) Stats() SessionStats { return s.stats }
