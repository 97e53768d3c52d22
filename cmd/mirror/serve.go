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

	"github.com/aretw0/lifecycle"
	"github.com/spf13/cobra"

	"github.com/aretw0/mirror/internal/httpapi"
	poll "github.com/aretw0/mirror/pkg/adapters/lifecycle"
	"github.com/aretw0/mirror/pkg/core"
)

var (
	serveAddr     string
	pollInterval  time.Duration
	shutdownGrace = 5 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the document store over HTTP",
	Long: `Load the directory and serve it over HTTP. Clients trigger a sync with
GET /filesystem/load-changes-from-disk. With --poll-interval the directory is
also synced in the background.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		svc := open()
		logger := slog.Default()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if pollInterval > 0 {
			poller := poll.NewPoller(svc, pollInterval,
				poll.WithLogger(logger),
				poll.WithReportHandler(func(r *core.SyncReport) {
					for _, f := range r.Failed() {
						logger.Warn("sync failed for file", "path", f.Path, "error", f.Err)
					}
				}),
			)
			if err := poller.Start(ctx); err != nil {
				fatal("Failed to start poller", err)
			}
			lifecycle.Go(ctx, func(ctx context.Context) error {
				for ev := range poller.Events() {
					logger.Info("change", "event", ev.String())
				}
				return nil
			})
		}

		server := &http.Server{
			Addr:              serveAddr,
			Handler:           httpapi.NewServer(svc, logger),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errs := make(chan error, 1)
		lifecycle.Go(ctx, func(ctx context.Context) error {
			logger.Info("listening", "addr", serveAddr)
			err := server.ListenAndServe()
			if errors.Is(err, http.ErrServerClosed) {
				err = nil
			}
			errs <- err
			return err
		}, lifecycle.WithErrorHandler(func(err error) {
			logger.Error("http server", "error", err)
		}))

		select {
		case err := <-errs:
			if err != nil {
				fatal("Server failed", err)
			}
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				fatal("Shutdown failed", err)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	serveCmd.Flags().DurationVar(&pollInterval, "poll-interval", 0, "Background sync interval (0 disables)")
}
