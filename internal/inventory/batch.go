package inventory

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/eargollo/filelist/internal/record"
)

// writeKind tags a pending write as an insert of a new row or an update of
// an existing one.
type writeKind int

const (
	writeInsert writeKind = iota
	writeUpdate
)

// pendingWrite is one queued filelist write. id is only meaningful for
// updates and pathID only for inserts.
type pendingWrite struct {
	kind     writeKind
	id       int64
	pathID   int64
	filename string
	payload  []any
}

func insertWrite(pathID int64, filename string, payload []any) pendingWrite {
	return pendingWrite{kind: writeInsert, pathID: pathID, filename: filename, payload: payload}
}

func updateWrite(id int64, filename string, payload []any) pendingWrite {
	return pendingWrite{kind: writeUpdate, id: id, filename: filename, payload: payload}
}

func (w pendingWrite) args() []any {
	args := make([]any, 0, len(w.payload)+4)
	if w.kind == writeInsert {
		args = append(args, w.pathID, w.filename)
	}
	for _, v := range w.payload {
		args = append(args, record.FormatStore(v))
	}
	if w.kind == writeInsert {
		return append(args, int(StatusNew))
	}
	return append(args, int(StatusExisting), w.id)
}

func buildInsertSQL(payload []record.Column) string {
	cols := []string{"path_id", "filename"}
	for _, c := range payload {
		cols = append(cols, quoteIdent(c.Name))
	}
	cols = append(cols, "status")
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	return fmt.Sprintf("INSERT INTO filelist (%s) VALUES (%s)", strings.Join(cols, ", "), marks)
}

func buildUpdateSQL(payload []record.Column) string {
	sets := make([]string, 0, len(payload)+1)
	for _, c := range payload {
		sets = append(sets, quoteIdent(c.Name)+" = ?")
	}
	sets = append(sets, "status = ?")
	return fmt.Sprintf("UPDATE filelist SET %s WHERE id = ?", strings.Join(sets, ", "))
}

// writeBatch applies inserts then updates inside one transaction, reusing a
// prepared statement per group. Nothing is committed on error.
func writeBatch(ctx context.Context, db *sql.DB, insertSQL, updateSQL string, inserts, updates []pendingWrite) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	groups := []struct {
		name   string
		query  string
		writes []pendingWrite
	}{
		{"insert", insertSQL, inserts},
		{"update", updateSQL, updates},
	}
	for _, g := range groups {
		if len(g.writes) == 0 {
			continue
		}
		stmt, err := tx.PrepareContext(ctx, g.query)
		if err != nil {
			return fmt.Errorf("prepare %s: %w", g.name, err)
		}
		for _, w := range g.writes {
			if _, err := stmt.ExecContext(ctx, w.args()...); err != nil {
				stmt.Close()
				return fmt.Errorf("%s %q: %w", g.name, w.filename, err)
			}
		}
		stmt.Close()
	}
	return tx.Commit()
}
