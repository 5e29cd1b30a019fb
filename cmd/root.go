package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bingokit/drawsync/internal/config"
	"github.com/bingokit/drawsync/internal/logging"
)

var cfgFile string

// services holds everything a subcommand needs after startup.
type services struct {
	cfg    config.Config
	logger *zap.Logger
}

type servicesKeyType struct{}

var servicesKey servicesKeyType

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drawsync",
		Short: "Acquires and reconciles daily lottery draw results.",
		Long: `drawsync talks to an unstable draw-result provider: it searches the
provider's request-parameter space, falls back to scraping known HTML
pages when the API path yields nothing, and merges whatever it finds
into a local store without ever losing a complete record.`,

		// Runs after flags are parsed, before any subcommand's RunE.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			logger, err := logging.New(cfg.Logging.Development)
			if err != nil {
				return fmt.Errorf("build logger: %w", err)
			}
			ctx := context.WithValue(cmd.Context(), servicesKey, &services{cfg: cfg, logger: logger})
			cmd.SetContext(ctx)
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if svc, ok := cmd.Context().Value(servicesKey).(*services); ok && svc != nil {
				_ = svc.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default relies on DRAWSYNC_* environment variables)")

	cmd.AddCommand(newFetchCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newExportCmd())

	return cmd
}

func resolveServices(ctx context.Context) (*services, error) {
	svc, ok := ctx.Value(servicesKey).(*services)
	if !ok || svc == nil {
		return nil, errors.New("services not initialized")
	}
	return svc, nil
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
