package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/eargollo/filelist/internal/api"
	internaldb "github.com/eargollo/filelist/internal/db"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve <db>",
	Short: "Serve a read-only JSON API over a SQLite inventory",
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

		addr := cfg.HTTPAddr
		if cmd.Flags().Changed("addr") {
			addr = serveAddr
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := api.New(addr, db).Run(ctx); err != nil {
			return err
		}
		slog.Info("filelist server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config http_addr)")
	rootCmd.AddCommand(serveCmd)
}
