// Package common contains shared functionality for command handlers
package common

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"fjacquet/sms-ledger/cmd/root"
	"fjacquet/sms-ledger/internal/export"
	"fjacquet/sms-ledger/internal/validation"
)

// Output formats accepted by the listing commands.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// ListFlags are the flags of the commands that list a user's rows.
type ListFlags struct {
	UserID int64
	Limit  int
	Format string
	Output string
}

// AddListFlags registers ListFlags on cmd with defaultLimit as the page size.
func AddListFlags(cmd *cobra.Command, flags *ListFlags, defaultLimit int) {
	cmd.Flags().Int64VarP(&flags.UserID, "user", "u", 1, "User whose rows are listed")
	cmd.Flags().IntVarP(&flags.Limit, "limit", "n", defaultLimit, "Maximum number of rows (0 for all)")
	cmd.Flags().StringVarP(&flags.Format, "format", "f", FormatJSON, "Output format (json or csv)")
	cmd.Flags().StringVarP(&flags.Output, "output", "o", "", "Write CSV to this file instead of standard output")
}

// Validate checks the format and output combination.
func (f ListFlags) Validate() error {
	if err := validation.IsValidFormat(f.Format, FormatJSON, FormatCSV); err != nil {
		return err
	}
	if f.Format == FormatJSON && f.Output != "" {
		return fmt.Errorf("--output requires --format %s", FormatCSV)
	}
	if f.Limit < 0 {
		return fmt.Errorf("--limit must not be negative")
	}
	return nil
}

// NewExporter returns an exporter using the configured CSV delimiter.
func NewExporter(app *root.App) *export.Exporter {
	return export.NewExporter([]rune(app.Config().CSV.Delimiter)[0], app.Logger())
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
