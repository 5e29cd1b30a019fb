package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bingokit/drawsync/internal/draw"
)

// newExportCmd creates the 'export' subcommand: dump the store as JSON.
func newExportCmd() *cobra.Command {
	var fromPeriod, toPeriod string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Prints stored draw records as JSON, oldest period first",

		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := resolveServices(cmd.Context())
			if err != nil {
				return err
			}

			gateway, closeGateway, err := buildGateway(cmd.Context(), svc.cfg, svc.logger)
			if err != nil {
				return err
			}
			defer closeGateway()

			records := gateway.Load(cmd.Context()).Export()
			records = filterPeriodRange(records, fromPeriod, toPeriod)
			out, err := json.MarshalIndent(records, "", "  ")
			if err != nil {
				return fmt.Errorf("encode records: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&fromPeriod, "from", "", "lowest period to include")
	cmd.Flags().StringVar(&toPeriod, "to", "", "highest period to include")
	return cmd
}

// filterPeriodRange keeps records whose period falls inside [from, to].
// Bounds compare numerically, matching export order.
func filterPeriodRange(records []draw.Record, from, to string) []draw.Record {
	if from == "" && to == "" {
		return records
	}
	lower := draw.Record{Period: from}.PeriodValue()
	upper := draw.Record{Period: to}.PeriodValue()
	out := make([]draw.Record, 0, len(records))
	for _, r := range records {
		v := r.PeriodValue()
		if from != "" && v < lower {
			continue
		}
		if to != "" && v > upper {
			continue
		}
		out = append(out, r)
	}
	return out
}
