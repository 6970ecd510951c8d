package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cwbudde/isdestimator/internal/server"
	"github.com/cwbudde/isdestimator/internal/store"
	"github.com/spf13/cobra"
)

var (
	serveAddr  string
	serveStore storeFlags
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP estimation service",
	Long: `Starts an HTTP server accepting estimation jobs on /api/v1/estimates.
Finished reports are cached in the store, so repeated requests are answered
without recomputation.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	serveStore.bind(serveCmd.Flags(), "fs")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := serveStore.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.CloseIfSupported(st); err != nil {
			slog.Warn("Failed to close store", "error", err)
		}
	}()

	srv := server.NewServer(serveAddr, st)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
