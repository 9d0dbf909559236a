package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/inkwell/internal/app"
	"github.com/inkwell/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server until SIGINT or SIGTERM",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			defer logging.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := app.New(cfg, logger)
			if err != nil {
				return err
			}
			logger = logging.Component("server")
			if err := a.Start(ctx); err != nil {
				_ = a.Close(context.Background())
				return err
			}

			srv := &http.Server{
				Addr:              cfg.ListenAddr,
				Handler:           a.Handler,
				ReadHeaderTimeout: 10 * time.Second,
			}
			serveErr := make(chan error, 1)
			go func() {
				logger.Info("server starting", zap.String("address", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serveErr <- err
				}
				close(serveErr)
			}()

			select {
			case err := <-serveErr:
				if err != nil {
					_ = a.Close(context.Background())
					return err
				}
			case <-ctx.Done():
			}

			logger.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("server forced to shutdown", zap.Error(err))
			}
			if err := a.Close(shutdownCtx); err != nil {
				logger.Warn("release resources", zap.Error(err))
			}
			logger.Info("server exited")
			return nil
		},
	}
}
