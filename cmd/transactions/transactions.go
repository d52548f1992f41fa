// Package transactions implements the transactions command.
package transactions

import (
	"github.com/spf13/cobra"

	"fjacquet/sms-ledger/cmd/common"
	"fjacquet/sms-ledger/cmd/root"
	"fjacquet/sms-ledger/internal/models"
	"fjacquet/sms-ledger/internal/store"
)

// NewCommand returns the transactions command.
func NewCommand() *cobra.Command {
	flags := &common.ListFlags{}
	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "List a user's ledger transactions",
		Long:  `List a user's ledger transactions, newest first, as JSON or CSV.`,
		Args:  cobra.NoArgs,
		RunE: root.RunE(func(cmd *cobra.Command, args []string, app *root.App) error {
			if err := flags.Validate(); err != nil {
				return err
			}
			c, err := app.Container()
			if err != nil {
				return err
			}
			entries, err := c.GetStore().GetUserTransactions(cmd.Context(), flags.UserID, flags.Limit)
			if err != nil {
				return err
			}
			if entries == nil {
				entries = []models.LedgerEntry{}
			}

			if flags.Format == common.FormatJSON {
				return common.WriteJSON(cmd.OutOrStdout(), entries)
			}
			exporter := common.NewExporter(app)
			if flags.Output != "" {
				return exporter.WriteLedgerFile(flags.Output, entries)
			}
			return exporter.WriteLedgerCSV(cmd.OutOrStdout(), entries)
		}),
	}
	common.AddListFlags(cmd, flags, store.DefaultTransactionsLimit)
	return cmd
}
