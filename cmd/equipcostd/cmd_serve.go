package main

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

	"github.com/joelpate/equipcost/internal/httpapi"
	"github.com/joelpate/equipcost/internal/platformlog"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long:  `Serves the equipment, forecast, TCO, and fleet HTTP routes over the configured storage backend until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := system.Config
		router := httpapi.NewRouter(system.Store, httpapi.Config{
			DiscountRate:       cfg.DiscountRate,
			DowntimeHourlyRate: cfg.DowntimeHourlyRate,
			MinHistoryMonths:   cfg.MinForecastHistoryMonths,
		})

		addr := fmt.Sprintf("%s:%d", serveHost, servePort)
		srv := &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       cfg.API.RequestTimeout,
			WriteTimeout:      cfg.API.RequestTimeout,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			platformlog.Info("listening on %s", addr)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve: %w", err)
			}
		case <-ctx.Done():
			platformlog.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("serve: shutdown: %w", err)
			}
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "0.0.0.0", "listen host")
	serveCmd.Flags().IntVar(&servePort, "port", 8000, "listen port")
}
