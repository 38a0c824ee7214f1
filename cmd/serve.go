package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KaramelBytes/vgmarket-cli/internal/server"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve metrics and pages over a read-only JSON API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}
		// Load up front so a bad dataset fails before listening.
		ds, err := eng.Dataset()
		if err != nil {
			return err
		}
		addr := cfg.HTTPAddr
		if cmd.Flags().Changed("addr") {
			addr = serveAddr
		}

		logger := log.New(os.Stderr, "[vgmarket] ", log.LstdFlags)
		srv := server.New(server.Options{
			Addr:         addr,
			ReadTimeout:  time.Duration(cfg.HTTPReadTimeoutSec) * time.Second,
			WriteTimeout: time.Duration(cfg.HTTPWriteTimeoutSec) * time.Second,
			IdleTimeout:  time.Duration(cfg.HTTPIdleTimeoutSec) * time.Second,
		}, eng, logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Serving %d records from %s on http://%s\n", ds.Len(), ds.Source(), addr)
		if err := srv.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config http_addr)")
}
