// Package scan runs one file listing: it validates the run parameters, walks
// the scan directory, turns matches into records and hands them to a sink.
package scan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/eargollo/filelist/internal/extract"
	"github.com/eargollo/filelist/internal/inventory"
	"github.com/eargollo/filelist/internal/sink"
)

var (
	ErrPatternNoWildcard = errors.New("pattern without wildcards")
	ErrScanDirWildcard   = errors.New("invalid wildcards in directory")
	ErrNotDirectory      = errors.New("not a directory")
	ErrInvalidExclude    = errors.New("invalid exclude expression")
	ErrConflictingModes  = errors.New("overwrite and update are mutually exclusive")
	// ErrDeclined means the user refused to overwrite an existing output
	// file. Nothing has been written.
	ErrDeclined = errors.New("overwrite declined")
)

// Options are the user-facing parameters of a run.
type Options struct {
	Pattern   string
	ScanDir   string
	Recurse   bool
	Exclude   string
	Outfile   string
	Overwrite bool
	Update    bool
	NoDots    bool
	Dots      int
	Profile   string
	BatchSize int
}

// Confirmer asks the user a yes/no question.
type Confirmer func(prompt string) bool

// Result summarises a finished run.
type Result struct {
	Files    int64
	Errors   int64
	Duration time.Duration
	Sink     sink.Kind
	// Store is only filled for store sinks.
	Store inventory.SessionStats
}

// Scanner holds validated run parameters. Run may be called repeatedly.
type Scanner struct {
	opts     Options
	scanPath string
	outPath  string
	exclude  *regexp.Regexp
	profile  extract.Profile

	stdout  io.Writer
	confirm Confirmer
}

// New validates opts and resolves the scan and output paths. All errors are
// setup errors: nothing has been opened or written yet.
func New(opts Options, stdout io.Writer, confirm Confirmer) (*Scanner, error) {
	if stdout == nil {
		stdout = os.Stdout
	}
	if opts.Profile == "" {
		opts.Profile = extract.DefaultProfile
	}
	profile, err := extract.Lookup(opts.Profile)
	if err != nil {
		return nil, err
	}
	if opts.Pattern == "" {
		opts.Pattern = profile.DefaultPattern
	}
	if !strings.ContainsAny(opts.Pattern, "*?") {
		return nil, fmt.Errorf("%w: %q", ErrPatternNoWildcard, opts.Pattern)
	}
	if _, err := filepath.Match(opts.Pattern, ""); err != nil {
		return nil, fmt.Errorf("pattern %q: %w", opts.Pattern, err)
	}
	if opts.Overwrite && opts.Update {
		return nil, ErrConflictingModes
	}

	if opts.ScanDir == "" {
		opts.ScanDir = "."
	}
	if strings.ContainsAny(opts.ScanDir, "*?") {
		return nil, fmt.Errorf("%w: %q", ErrScanDirWildcard, opts.ScanDir)
	}
	scanPath, err := filepath.Abs(opts.ScanDir)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", opts.ScanDir, err)
	}
	info, err := os.Stat(scanPath)
	if err != nil {
		return nil, fmt.Errorf("directory %q: %w", scanPath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %q", ErrNotDirectory, scanPath)
	}

	s := &Scanner{
		opts:     opts,
		scanPath: scanPath,
		profile:  profile,
		stdout:   stdout,
		confirm:  confirm,
	}
	if opts.Exclude != "" {
		if s.exclude, err = regexp.Compile(opts.Exclude); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidExclude, err)
		}
	}
	if opts.Outfile != "" {
		if s.outPath, err = filepath.Abs(opts.Outfile); err != nil {
			return nil, fmt.Errorf("resolve %q: %w", opts.Outfile, err)
		}
	}
	return s, nil
}

// ScanPath returns the absolute directory being scanned.
func (s *Scanner) ScanPath() string { return s.scanPath }

// Pattern returns the effective match pattern.
func (s *Scanner) Pattern() string { return s.opts.Pattern }

// UseUpdateMode makes later runs reuse the existing output without asking.
func (s *Scanner) UseUpdateMode() {
	s.opts.Overwrite = false
	s.opts.Update = true
}

// Run performs one listing. When ctx is cancelled the walk stops, no final
// flush is attempted and the error is ctx.Err().
func (s *Scanner) Run(ctx context.Context) (Result, error) {
	out := sink.Select(sink.Options{
		Outfile:   s.outPath,
		Columns:   s.profile.Columns(),
		BatchSize: s.opts.BatchSize,
		Stdout:    s.stdout,
	})
	res := Result{Sink: sink.KindFor(s.outPath)}

	mode, err := s.existsMode()
	if err != nil {
		return res, err
	}

	fmt.Fprintf(s.stdout, "Search for files matching '%s' in directory '%s'...\n", s.opts.Pattern, s.scanPath)
	if s.outPath != "" {
		fmt.Fprintf(s.stdout, "Write results to %s\n", s.outPath)
	}

	if err := out.Open(ctx, mode); err != nil {
		return res, err
	}
	defer func() {
		if err := out.Close(); err != nil {
			slog.Error("close output", "path", s.outPath, "error", err)
		}
	}()

	recorder, _ := out.(sink.RunRecorder)
	if recorder != nil {
		if err := recorder.BeginRun(ctx, s.scanPath, s.opts.Pattern, s.opts.Recurse); err != nil {
			return res, err
		}
	}

	var dotEvery int64
	if s.outPath != "" && !s.opts.NoDots {
		dotEvery = filesPerDot(s.opts.Dots)
	}
	progress := newProgress(s.stdout, dotEvery)

	started := time.Now()
	walkErr := Walk(ctx, s.scanPath, s.walkOptions(), func(path string, info os.FileInfo) error {
		if err := out.WriteRecord(ctx, s.profile.Record(path, info)); err != nil {
			return fmt.Errorf("write %q: %w", path, err)
		}
		progress.Match()
		return nil
	}, progress.Reporter())
	progress.Finish()

	res.Files = progress.Matched
	res.Errors = progress.Errors
	res.Duration = time.Since(started)
	store, _ := out.(*sink.Store)
	storeStats := func() {
		if store != nil {
			res.Store = store.SessionStats()
		}
	}

	if walkErr != nil {
		storeStats()
		if ctx.Err() != nil {
			fmt.Fprintln(s.stdout, "Cancelled by user!")
			slog.Warn("run interrupted, pending records not flushed", "files", res.Files)
		}
		return res, walkErr
	}

	if err := out.Flush(ctx); err != nil {
		return res, fmt.Errorf("flush output: %w", err)
	}
	res.Duration = time.Since(started)
	storeStats()

	if recorder != nil {
		if err := recorder.EndRun(ctx, res.Files, res.Duration); err != nil {
			return res, err
		}
	}

	if res.Files == 0 {
		fmt.Fprintln(s.stdout, "Found no matching files.")
	} else {
		fmt.Fprintf(s.stdout, "Found %s matching file(s).\n", humanize.Comma(res.Files))
	}
	return res, nil
}

// existsMode decides how an existing output file is treated, asking the
// user when neither overwrite nor update was requested.
func (s *Scanner) existsMode() (sink.Mode, error) {
	switch {
	case s.outPath == "":
		return sink.ModeOverwrite, nil
	case s.opts.Update:
		return sink.ModeUpdate, nil
	case s.opts.Overwrite:
		return sink.ModeOverwrite, nil
	}
	if _, err := os.Stat(s.outPath); err == nil {
		if s.confirm == nil || !s.confirm("Output file already exists. Overwrite (Y/n)?") {
			return 0, ErrDeclined
		}
	}
	return sink.ModeOverwrite, nil
}

func (s *Scanner) walkOptions() WalkOptions {
	opts := WalkOptions{
		Pattern: s.opts.Pattern,
		Recurse: s.opts.Recurse,
		Exclude: s.exclude,
	}
	if s.outPath != "" {
		opts.Skip = map[string]struct{}{}
		for _, suffix := range []string{"", "-wal", "-shm", "-journal"} {
			opts.Skip[s.outPath+suffix] = struct{}{}
		}
	}
	return opts
}
