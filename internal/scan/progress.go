package scan

import (
	"fmt"
	"io"
	"log/slog"
)

// Progress counts matches and errors of one run and prints a dot every
// dotEvery matches when dots are enabled.
type Progress struct {
	Matched int64
	Errors  int64

	w        io.Writer
	dotEvery int64
	dots     int64
}

// newProgress disables dots when dotEvery <= 0 or w is nil.
func newProgress(w io.Writer, dotEvery int64) *Progress {
	return &Progress{w: w, dotEvery: dotEvery}
}

// Match records one matched file.
func (p *Progress) Match() {
	p.Matched++
	if p.w != nil && p.dotEvery > 0 && p.Matched%p.dotEvery == 0 {
		fmt.Fprint(p.w, ".")
		p.dots++
	}
}

// Finish ends the dot line, if any was started.
func (p *Progress) Finish() {
	if p.dots > 0 {
		fmt.Fprintln(p.w)
	}
}

// ErrorReporter records a per-file scan error.
type ErrorReporter func(path, stage, errMsg string)

// Reporter returns an ErrorReporter that counts errors on p and logs them.
func (p *Progress) Reporter() ErrorReporter {
	return func(path, stage, errMsg string) {
		p.Errors++
		slog.Warn("scan error", "path", path, "stage", stage, "error", errMsg)
	}
}

// filesPerDot converts the logarithmic dots setting (0 = every file,
// 1 = every 10 files, ...) into a file count.
func filesPerDot(dots int) int64 {
	n := int64(1)
	for i := 0; i < dots && n < 1e15; i++ {
		n *= 10
	}
	return n
}
