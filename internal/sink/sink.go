// Package sink writes scan records to the console, a delimited text file or
// the SQLite inventory.
package sink

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/eargollo/filelist/internal/record"
)

// Mode says what to do with an existing output file.
type Mode int

const (
	// ModeOverwrite discards existing content.
	ModeOverwrite Mode = iota
	// ModeUpdate appends to a text file or reconciles a store.
	ModeUpdate
)

func (m Mode) String() string {
	if m == ModeUpdate {
		return "update"
	}
	return "overwrite"
}

// Sink receives the records of one run.
type Sink interface {
	Open(ctx context.Context, mode Mode) error
	WriteRecord(ctx context.Context, rec record.Record) error
	Flush(ctx context.Context) error
	Close() error
}

// RunRecorder is implemented by sinks that keep per-run statistics.
type RunRecorder interface {
	BeginRun(ctx context.Context, scanRoot, pattern string, recurse bool) error
	EndRun(ctx context.Context, fileCount int64, duration time.Duration) error
}

// Kind names the sink variants.
type Kind string

const (
	KindConsole   Kind = "console"
	KindDelimited Kind = "delimited"
	KindStore     Kind = "store"
)

// KindFor picks the sink for an output target: no target prints to the
// console, a .csv file gets delimited text, anything else is a store.
func KindFor(outfile string) Kind {
	switch {
	case outfile == "":
		return KindConsole
	case strings.EqualFold(filepath.Ext(outfile), ".csv"):
		return KindDelimited
	default:
		return KindStore
	}
}

// Options configure Select.
type Options struct {
	Outfile   string
	Columns   []record.Column
	BatchSize int
	Stdout    io.Writer
}

// Select builds the sink for opts.Outfile.
func Select(opts Options) Sink {
	switch KindFor(opts.Outfile) {
	case KindConsole:
		return NewConsole(opts.Stdout)
	case KindDelimited:
		return NewDelimited(opts.Outfile, opts.Columns)
	default:
		return NewStore(opts.Outfile, opts.Columns, opts.BatchSize)
	}
}
