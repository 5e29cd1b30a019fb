package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bingokit/drawsync/internal/api"
	"github.com/bingokit/drawsync/internal/clock/system"
	"github.com/bingokit/drawsync/internal/engine"
)

// engineRunner adapts the engine to the API's string-dated contract.
type engineRunner struct {
	eng *engine.Engine
	loc *time.Location
}

func (r engineRunner) Run(ctx context.Context, date string) (engine.Report, error) {
	t, err := time.ParseInLocation("2006-01-02", date, r.loc)
	if err != nil {
		return engine.Report{}, fmt.Errorf("parse date: %w", err)
	}
	return r.eng.Run(ctx, t)
}

// newServeCmd creates the 'serve' subcommand: the long-running HTTP service.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serves the store and run triggers over HTTP",

		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := resolveServices(cmd.Context())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			loc, err := svc.cfg.Location()
			if err != nil {
				return err
			}
			eng, gateway, cleanup, err := buildEngine(ctx, svc.cfg, svc.logger)
			if err != nil {
				return err
			}
			defer cleanup()

			server := api.NewServer(gateway, engineRunner{eng: eng, loc: loc}, system.New(), svc.logger)
			httpServer := &http.Server{
				Addr:              fmt.Sprintf(":%d", svc.cfg.Server.Port),
				Handler:           server.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				svc.logger.Info("HTTP server listening", zap.Int("port", svc.cfg.Server.Port))
				errCh <- httpServer.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("serve: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			svc.logger.Info("Shutting down HTTP server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			return nil
		},
	}
}
