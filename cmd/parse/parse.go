// Package parse implements the parse command.
package parse

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"fjacquet/sms-ledger/cmd/root"
	"fjacquet/sms-ledger/internal/models"
)

type options struct {
	userID     int64
	sender     string
	senderName string
	dryRun     bool
}

// NewCommand returns the parse command.
func NewCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "parse [message]",
		Short: "Parse one SMS message",
		Long: `Parse one SMS message and print the extracted fields as JSON.
The message is read from standard input when no argument is given.
Unless --dry-run is set the message is stored, and the transaction with it
when the confidence clears the persistence threshold.`,
		Args: cobra.MaximumNArgs(1),
		RunE: root.RunE(func(cmd *cobra.Command, args []string, app *root.App) error {
			return run(cmd, args, app, opts)
		}),
	}
	cmd.Flags().Int64VarP(&opts.userID, "user", "u", 1, "User the message belongs to")
	cmd.Flags().StringVarP(&opts.sender, "sender", "s", "", "Sender number or short code")
	cmd.Flags().StringVar(&opts.senderName, "sender-name", "", "Sender display name")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Extract only, store nothing")
	return cmd
}

func run(cmd *cobra.Command, args []string, app *root.App, opts *options) error {
	text, err := messageText(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	c, err := app.Container()
	if err != nil {
		return err
	}

	var outcome models.ParseOutcome
	if opts.dryRun {
		outcome = models.ParseOutcome{ExtractionResult: c.GetParser().Parse(text, opts.sender)}
	} else {
		outcome = c.GetService().ParseMessage(cmd.Context(), opts.userID, text, opts.sender, opts.senderName)
		if outcome.StorageError != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: message not stored: %v\n", outcome.StorageError)
		}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(outcome)
}

func messageText(stdin io.Reader, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read message: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("no message given")
	}
	return text, nil
}
