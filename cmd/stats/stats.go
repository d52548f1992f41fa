// Package stats implements the stats command.
package stats

import (
	"time"

	"github.com/spf13/cobra"

	"fjacquet/sms-ledger/cmd/root"
	"fjacquet/sms-ledger/internal/report"
	"fjacquet/sms-ledger/internal/validation"
)

// NewCommand returns the stats command.
func NewCommand() *cobra.Command {
	var (
		userID int64
		format string
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarise a user's transactions",
		Long: `Summarise the most recent transactions of a user: count, total, average,
distribution by source and activity over the last seven days.`,
		Args: cobra.NoArgs,
		RunE: root.RunE(func(cmd *cobra.Command, args []string, app *root.App) error {
			if err := validation.IsValidFormat(format, "text", "json", "xml"); err != nil {
				return err
			}
			c, err := app.Container()
			if err != nil {
				return err
			}
			entries, err := c.GetStore().GetUserTransactions(cmd.Context(), userID, report.StatsLimit)
			if err != nil {
				return err
			}
			stats := report.ComputeStats(entries, time.Now())
			out, err := report.NewReportGenerator(app.Logger()).GenerateReport(stats, format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		}),
	}
	cmd.Flags().Int64VarP(&userID, "user", "u", 1, "User to summarise")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format (text, json or xml)")
	return cmd
}
