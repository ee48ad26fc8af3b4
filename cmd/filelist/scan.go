package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/eargollo/filelist/internal/extract"
	"github.com/eargollo/filelist/internal/scan"
	"github.com/eargollo/filelist/internal/scheduler"
)

var scanFlags struct {
	recurse   bool
	exclude   string
	overwrite bool
	update    bool
	nodots    bool
	dots      int
	profile   string
	batchSize int
	schedule  string
}

var scanCmd = &cobra.Command{
	Use:   "scan [pattern] [scandir] [outfile]",
	Short: "List files matching pattern in scandir",
	Long: `List files matching pattern in scandir.

Without outfile the records are printed to the console. An outfile ending in
.csv gets ';'-separated text; any other outfile is a SQLite inventory.

Examples:
  # All text files below the current directory, on the console
  filelist scan -r '*.txt'

  # Inventory of photos, updated on every run
  filelist scan -r -u -p image '*.jpg' ~/Pictures photos.db

  # Nightly inventory refresh until interrupted
  filelist scan -r --schedule '0 2 * * *' '*.*' /data inventory.db`,
	Args: cobra.MaximumNArgs(3),
	RunE: runScan,
}

func init() {
	f := scanCmd.Flags()
	f.BoolVarP(&scanFlags.recurse, "recurse", "r", false, "recurse sub-folders")
	f.StringVarP(&scanFlags.exclude, "exclude", "x", "", "exclude files and/or folders matching this regular expression")
	f.BoolVarP(&scanFlags.overwrite, "overwrite", "o", false, "overwrite the outfile if existent")
	f.BoolVarP(&scanFlags.update, "update", "u", false, "update SQLite database or append to the CSV outfile if existent")
	f.BoolVarP(&scanFlags.nodots, "nodots", "n", false, "do not display dots for matches")
	f.IntVarP(&scanFlags.dots, "dots", "d", 0, "logarithmic number of matching files to display one dot for (0=every file, 1=each 10 files, ...)")
	f.StringVarP(&scanFlags.profile, "profile", "p", "", "metadata profile: "+strings.Join(extract.Names(), ", "))
	f.IntVar(&scanFlags.batchSize, "batch-size", 0, "records per database transaction")
	f.StringVar(&scanFlags.schedule, "schedule", "", "cron expression; repeat the run in update mode until interrupted")
	scanCmd.MarkFlagsMutuallyExclusive("overwrite", "update")
	scanCmd.MarkFlagsMutuallyExclusive("nodots", "dots")

	rootCmd.AddCommand(scanCmd)
}

// scanOptions merges positional arguments, flags and config. Flags win over
// config values.
func scanOptions(cmd *cobra.Command, args []string) scan.Options {
	opts := scan.Options{
		Recurse:   scanFlags.recurse,
		Exclude:   scanFlags.exclude,
		Overwrite: scanFlags.overwrite,
		Update:    scanFlags.update,
		NoDots:    cfg.NoDots,
		Dots:      cfg.Dots,
		Profile:   cfg.Profile,
		BatchSize: cfg.BatchSize,
	}
	if len(args) > 0 {
		opts.Pattern = args[0]
	}
	if len(args) > 1 {
		opts.ScanDir = args[1]
	}
	if len(args) > 2 {
		opts.Outfile = args[2]
	}

	flags := cmd.Flags()
	if flags.Changed("nodots") {
		opts.NoDots = scanFlags.nodots
	}
	if flags.Changed("dots") {
		opts.Dots = scanFlags.dots
		opts.NoDots = false
	}
	if flags.Changed("profile") {
		opts.Profile = scanFlags.profile
	}
	if flags.Changed("batch-size") {
		opts.BatchSize = scanFlags.batchSize
	}
	return opts
}

func runScan(cmd *cobra.Command, args []string) error {
	scanner, err := scan.New(scanOptions(cmd, args), cmd.OutOrStdout(), stdinConfirmer(cmd.InOrStdin(), cmd.OutOrStdout()))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	schedule := cfg.Schedule
	if cmd.Flags().Changed("schedule") {
		schedule = scanFlags.schedule
	}
	if schedule == "" {
		_, err := scanner.Run(ctx)
		return interrupted(ctx, err)
	}
	return runScheduled(ctx, scanner, schedule)
}

// runScheduled performs the first run as requested, then repeats it in
// update mode on every cron firing until ctx is cancelled.
func runScheduled(ctx context.Context, scanner *scan.Scanner, expr string) error {
	sched := scheduler.New()
	if err := sched.SetJob(expr, func() {
		slog.Info("scheduled run triggered", "scan_path", scanner.ScanPath(), "pattern", scanner.Pattern())
		res, err := scanner.Run(ctx)
		if err != nil {
			slog.Error("scheduled run failed", "error", err)
			return
		}
		slog.Info("scheduled run finished", "files", res.Files, "duration", res.Duration)
	}); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", expr, err)
	}

	if _, err := scanner.Run(ctx); err != nil {
		return interrupted(ctx, err)
	}
	scanner.UseUpdateMode()

	sched.RunUntil(ctx)
	return nil
}

// interrupted reports a cancelled run as success: the user asked for it
// and the run loop already said so on stdout.
func interrupted(ctx context.Context, err error) error {
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

// stdinConfirmer reads a Y/n answer; an empty answer means yes.
func stdinConfirmer(in io.Reader, out io.Writer) scan.Confirmer {
	reader := bufio.NewReader(in)
	return func(prompt string) bool {
		fmt.Fprint(out, prompt+" ")
		response, err := reader.ReadString('\n')
		if err != nil && response == "" {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(response)) {
		case "", "y", "yes":
			return true
		}
		return false
	}
}
