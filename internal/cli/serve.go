package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MinhaKim02/protest-crawling-database/internal/api"
	"github.com/MinhaKim02/protest-crawling-database/internal/logger"
	"github.com/MinhaKim02/protest-crawling-database/internal/storage"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(defaultAddr string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chatbot API over the stored snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.New(flagDataDir, storage.MainPrefix)
			if err != nil {
				return fmt.Errorf("initializing storage: %w", err)
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           api.NewRouter(api.NewServer(store)),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Info("API listening", logger.Fields{"addr": addr, "data_dir": store.DataDir()})
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("serving API: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutting down API: %w", err)
			}
			logger.Info("API stopped", logger.MetricsSummary())
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "Listen address (env: PROTEST_LISTEN_ADDR)")
	return cmd
}
