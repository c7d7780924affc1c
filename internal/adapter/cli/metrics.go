package cli

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"
	"github.com/wekeepgrowing/salon-billing/internal/analytics"
	"github.com/wekeepgrowing/salon-billing/internal/usecase"
)

func newMetricsCommand() *cobra.Command {
	var (
		period string
		at     string
	)

	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Print the financial metrics report as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := envFrom(cmd)
			if env.Reporter == nil {
				return errors.New("metrics require a database connection")
			}

			p, err := analytics.ParsePeriod(period)
			if err != nil {
				return err
			}
			now := env.Now()
			if at != "" {
				day, err := usecase.ParseExportDate(at, env.Location)
				if err != nil {
					return err
				}
				now = day
			}

			report, err := env.Reporter.Report(cmd.Context(), p, now)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report.DTO())
		},
	}

	cmd.Flags().StringVarP(&period, "period", "p", "month", "month, quarter or year")
	cmd.Flags().StringVar(&at, "at", "", "report the period containing this day, YYYY-MM-DD")
	return cmd
}
