package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eargollo/filelist/internal/inventory"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("verbose"))
}

func TestStdinConfirmer(t *testing.T) {
	var out bytes.Buffer
	confirm := stdinConfirmer(strings.NewReader("\nY\nno\nyes\n"), &out)
	assert.True(t, confirm("Overwrite (Y/n)?"))
	assert.True(t, confirm("Overwrite (Y/n)?"))
	assert.False(t, confirm("Overwrite (Y/n)?"))
	assert.True(t, confirm("Overwrite (Y/n)?"))
	assert.False(t, confirm("Overwrite (Y/n)?"), "EOF declines")
	assert.Contains(t, out.String(), "Overwrite (Y/n)? ")
}

func TestPrintRunsMarksInterruptedRuns(t *testing.T) {
	count, dur := int64(12345), 1.5
	runs := []inventory.RunStats{
		{ID: 2, Timestamp: "2024-01-02 10:00:00", Pattern: "*.txt", ScanPath: "/vol"},
		{ID: 1, Timestamp: "2024-01-01 10:00:00", Pattern: "*.txt", ScanPath: "/vol", FileCount: &count, Duration: &dur},
	}
	var out bytes.Buffer
	require.NoError(t, printRuns(&out, runs, map[inventory.Status]int64{inventory.StatusNew: 3}))

	lines := strings.Split(out.String(), "\n")
	assert.Contains(t, lines[1], "interrupted")
	assert.Contains(t, lines[2], "12,345")
	assert.Contains(t, lines[2], "1.5s")
	assert.Contains(t, out.String(), "Inventory: 3 new, 0 existing, 0 missing")
}

func TestPrintRunsEmpty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printRuns(&out, nil, nil))
	assert.Equal(t, "No runs recorded.\n", out.String())
}

func TestScanThenRunsCommand(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a"), 0o755))
	for _, name := range []string{"a/1.txt", "a/2.txt", "3.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(name), 0o644))
	}
	dbPath := filepath.Join(t.TempDir(), "inventory.db")
	cfgPath := filepath.Join(t.TempDir(), "absent.yaml")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(""))
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	rootCmd.SetArgs([]string{"--config", cfgPath, "scan", "-r", "-o", "-n", "-p", "list", "*.txt", root, dbPath})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "Found 3 matching file(s).")

	out.Reset()
	rootCmd.SetArgs([]string{"--config", cfgPath, "runs", dbPath})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "*.txt")
	assert.Contains(t, out.String(), "Inventory: 3 new, 0 existing, 0 missing")
}
