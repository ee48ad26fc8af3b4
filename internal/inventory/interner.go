package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PathInterner maps directory paths to stable dirlist ids, inserting a row
// the first time a path is seen by this or any earlier run.
type PathInterner struct {
	db    *sql.DB
	cache map[string]int64
}

// NewPathInterner returns an interner backed by the dirlist table.
func NewPathInterner(db *sql.DB) *PathInterner {
	return &PathInterner{db: db, cache: make(map[string]int64)}
}

// Resolve returns the id of path, creating the dirlist row if needed.
// Repeated calls with the same path return the same id.
func (p *PathInterner) Resolve(ctx context.Context, path string) (int64, error) {
	if id, ok := p.cache[path]; ok {
		return id, nil
	}

	var id int64
	err := p.db.QueryRowContext(ctx, `SELECT id FROM dirlist WHERE path = ?`, path).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		res, err := p.db.ExecContext(ctx, `INSERT INTO dirlist (path) VALUES (?)`, path)
		if err != nil {
			return 0, fmt.Errorf("insert dirlist %q: %w", path, err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return 0, fmt.Errorf("dirlist id %q: %w", path, err)
		}
	} else if err != nil {
		return 0, fmt.Errorf("lookup dirlist %q: %w", path, err)
	}

	p.cache[path] = id
	return id, nil
}
