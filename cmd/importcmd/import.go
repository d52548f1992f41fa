// Package importcmd implements the import command.
package importcmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fjacquet/sms-ledger/cmd/common"
	"fjacquet/sms-ledger/cmd/root"
	"fjacquet/sms-ledger/internal/dateutils"
	"fjacquet/sms-ledger/internal/smsbackup"
	"fjacquet/sms-ledger/internal/validation"
)

type options struct {
	userID      int64
	sender      string
	from        string
	includeSent bool
}

// NewCommand returns the import command.
func NewCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "import <backup.xml>",
		Short: "Import an SMS Backup & Restore XML file",
		Long: `Import every received message of an SMS Backup & Restore XML file.
Each message goes through the same extraction and persistence as the parse
command. Repeated messages within the file are imported once.`,
		Args: cobra.ExactArgs(1),
		RunE: root.RunE(func(cmd *cobra.Command, args []string, app *root.App) error {
			filter, err := opts.filter()
			if err != nil {
				return err
			}
			if err := validation.IsReadableFile(args[0]); err != nil {
				return err
			}
			entries, err := smsbackup.LoadFile(args[0])
			if err != nil {
				return err
			}
			c, err := app.Container()
			if err != nil {
				return err
			}
			summary, err := smsbackup.NewImporter(c.GetService(), app.Logger()).
				Import(cmd.Context(), opts.userID, entries, filter)
			if err != nil {
				return err
			}
			return common.WriteJSON(cmd.OutOrStdout(), summary)
		}),
	}
	cmd.Flags().Int64VarP(&opts.userID, "user", "u", 1, "User the messages belong to")
	cmd.Flags().StringVarP(&opts.sender, "sender", "s", "", "Only import messages from this sender")
	cmd.Flags().StringVar(&opts.from, "from", "", "Only import messages received on or after this date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&opts.includeSent, "include-sent", false, "Also import sent messages")
	return cmd
}

func (o *options) filter() (smsbackup.Filter, error) {
	filter := smsbackup.Filter{Sender: o.sender, IncludeSent: o.includeSent}
	if o.from != "" {
		since, err := time.Parse(dateutils.DateLayoutISO, o.from)
		if err != nil {
			return filter, fmt.Errorf("invalid --from date (use YYYY-MM-DD): %w", err)
		}
		filter.Since = since
	}
	return filter, nil
}
