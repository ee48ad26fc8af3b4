package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/eargollo/filelist/internal/record"
)

// Delimiter separates fields in delimited output.
const Delimiter = ';'

// encodingErrorRow replaces records that cannot be written as valid text.
const encodingErrorRow = "Error in output encoding!"

// Delimited writes records as ';'-separated text with a header row.
type Delimited struct {
	path    string
	columns []record.Column
	f       *os.File
	w       *csv.Writer
}

// NewDelimited returns a sink writing to path.
func NewDelimited(path string, columns []record.Column) *Delimited {
	return &Delimited{path: path, columns: columns}
}

// Open truncates the file in ModeOverwrite and appends in ModeUpdate. The
// header is written whenever the file starts out empty.
func (d *Delimited) Open(_ context.Context, mode Mode) error {
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if mode == ModeUpdate {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	f, err := os.OpenFile(d.path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("open %q: %w", d.path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat %q: %w", d.path, err)
	}

	d.f = f
	d.w = csv.NewWriter(f)
	d.w.Comma = Delimiter

	if info.Size() == 0 {
		header := make([]string, len(d.columns))
		for i, c := range d.columns {
			header[i] = c.Name
		}
		if err := d.w.Write(header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	return nil
}

func (d *Delimited) WriteRecord(_ context.Context, rec record.Record) error {
	fields := rec.Text()
	for _, f := range fields {
		if !utf8.ValidString(f) {
			fields = []string{encodingErrorRow}
			break
		}
	}
	return d.w.Write(fields)
}

func (d *Delimited) Flush(context.Context) error {
	d.w.Flush()
	return d.w.Error()
}

// Close flushes buffered rows and closes the file.
func (d *Delimited) Close() error {
	if d.f == nil {
		return nil
	}
	d.w.Flush()
	werr := d.w.Error()
	if err := d.f.Close(); err != nil {
		return err
	}
	return werr
}
