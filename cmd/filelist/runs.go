package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	internaldb "github.com/eargollo/filelist/internal/db"
	"github.com/eargollo/filelist/internal/inventory"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs <db>",
	Short: "Show the run log of a SQLite inventory, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(args[0]); err != nil {
			return err
		}
		db, err := internaldb.Open(args[0])
		if err != nil {
			return err
		}
		defer db.Close()

		runs, err := inventory.ListRuns(cmd.Context(), db, runsLimit, 0)
		if err != nil {
			return err
		}
		counts, err := inventory.CountByStatus(cmd.Context(), db)
		if err != nil {
			return err
		}
		return printRuns(cmd.OutOrStdout(), runs, counts)
	},
}

func init() {
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "l", 20, "number of runs to show (0 = all)")
	rootCmd.AddCommand(runsCmd)
}

func printRuns(w io.Writer, runs []inventory.RunStats, counts map[inventory.Status]int64) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tFILES\tDURATION\tRECURSE\tPATTERN\tSCAN PATH")
	for _, r := range runs {
		files, duration := "-", "interrupted"
		if r.FileCount != nil {
			files = humanize.Comma(*r.FileCount)
		}
		if r.Duration != nil {
			duration = (time.Duration(*r.Duration * float64(time.Second))).Round(time.Millisecond).String()
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%t\t%s\t%s\n",
			r.ID, r.Timestamp, files, duration, r.Recurse, r.Pattern, r.ScanPath)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\nInventory: %s new, %s existing, %s missing\n",
		humanize.Comma(counts[inventory.StatusNew]),
		humanize.Comma(counts[inventory.StatusExisting]),
		humanize.Comma(counts[inventory.StatusMissing]))
	return err
}
