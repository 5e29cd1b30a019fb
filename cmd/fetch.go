// Package cmd defines and implements the CLI commands for the drawsync executable.
package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bingokit/drawsync/internal/clock/system"
)

// newFetchCmd creates the 'fetch' subcommand: one acquisition run for a
// single target date.
func newFetchCmd() *cobra.Command {
	var dateFlag string
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Runs one draw acquisition for a target date",
		Long: `Searches the provider's request-parameter space for the target date,
falls back to the configured HTML pages if the API path yields nothing,
and merges the results into the store. The run report is printed as JSON.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := resolveServices(cmd.Context())
			if err != nil {
				return err
			}

			loc, err := svc.cfg.Location()
			if err != nil {
				return err
			}
			date := system.New().Now().In(loc)
			if dateFlag != "" {
				date, err = time.ParseInLocation("2006-01-02", dateFlag, loc)
				if err != nil {
					return fmt.Errorf("parse --date: %w", err)
				}
			}

			eng, _, cleanup, err := buildEngine(cmd.Context(), svc.cfg, svc.logger)
			if err != nil {
				return err
			}
			defer cleanup()

			report, err := eng.Run(cmd.Context(), date)
			if err != nil {
				return fmt.Errorf("run acquisition: %w", err)
			}

			out, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("encode report: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			svc.logger.Info("Fetch command finished", zap.String("state", string(report.State)))
			return nil
		},
	}
	cmd.Flags().StringVar(&dateFlag, "date", "", "target date as YYYY-MM-DD (default: today in the provider timezone)")
	return cmd
}
