// Package history implements the history command.
package history

import (
	"github.com/spf13/cobra"

	"fjacquet/sms-ledger/cmd/common"
	"fjacquet/sms-ledger/cmd/root"
	"fjacquet/sms-ledger/internal/models"
	"fjacquet/sms-ledger/internal/store"
)

// NewCommand returns the history command.
func NewCommand() *cobra.Command {
	flags := &common.ListFlags{}
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List a user's stored messages",
		Long: `List a user's stored messages, newest first, with the transaction each
produced, as JSON or CSV.`,
		Args: cobra.NoArgs,
		RunE: root.RunE(func(cmd *cobra.Command, args []string, app *root.App) error {
			if err := flags.Validate(); err != nil {
				return err
			}
			c, err := app.Container()
			if err != nil {
				return err
			}
			entries, err := c.GetStore().GetMessageHistory(cmd.Context(), flags.UserID, flags.Limit)
			if err != nil {
				return err
			}
			if entries == nil {
				entries = []models.HistoryEntry{}
			}

			if flags.Format == common.FormatJSON {
				return common.WriteJSON(cmd.OutOrStdout(), entries)
			}
			exporter := common.NewExporter(app)
			if flags.Output != "" {
				return exporter.WriteHistoryFile(flags.Output, entries)
			}
			return exporter.WriteHistoryCSV(cmd.OutOrStdout(), entries)
		}),
	}
	common.AddListFlags(cmd, flags, store.DefaultHistoryLimit)
	return cmd
}
