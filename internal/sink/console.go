package sink

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/eargollo/filelist/internal/record"
)

// Console prints one bracketed line per record.
type Console struct {
	w io.Writer
}

// NewConsole writes to w, or stdout when w is nil.
func NewConsole(w io.Writer) *Console {
	if w == nil {
		w = os.Stdout
	}
	return &Console{w: w}
}

func (c *Console) Open(context.Context, Mode) error { return nil }

func (c *Console) WriteRecord(_ context.Context, rec record.Record) error {
	_, err := fmt.Fprintf(c.w, "[%s]\n", strings.Join(rec.Text(), ", "))
	return err
}

func (c *Console) Flush(context.Context) error { return nil }

func (c *Console) Close() error { return nil }
