// Package templates implements the templates command and its subcommands.
package templates

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fjacquet/sms-ledger/cmd/root"
	"fjacquet/sms-ledger/internal/templates"
)

// NewCommand returns the templates command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Inspect and validate bank templates",
		Long: `Inspect the bank templates that drive bank detection and per-bank
patterns. The registry comes from extraction.templates_file when set and
from the built-in defaults otherwise.`,
	}
	cmd.AddCommand(newListCommand(), newDumpCommand(), newValidateCommand())
	return cmd
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the templates",
		Args:  cobra.NoArgs,
		RunE: root.RunE(func(cmd *cobra.Command, args []string, app *root.App) error {
			registry, err := loadRegistry(app)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "BANK\tACTIVE\tCONFIDENCE\tKEYWORDS\tPATTERNS")
			for _, t := range registry.Templates() {
				fmt.Fprintf(w, "%s\t%t\t%.2f\t%s\t%s\n", t.Bank, t.Active, t.Confidence,
					strings.Join(t.Keywords, ", "), patternSummary(registry, t))
			}
			return w.Flush()
		}),
	}
}

func newDumpCommand() *cobra.Command {
	var (
		output   string
		defaults bool
	)
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Write the templates as YAML",
		Long: `Write the templates as YAML in the layout extraction.templates_file
reads. Use --defaults to start a custom file from the built-in table.`,
		Args: cobra.NoArgs,
		RunE: root.RunE(func(cmd *cobra.Command, args []string, app *root.App) error {
			list := templates.Defaults()
			if !defaults {
				registry, err := loadRegistry(app)
				if err != nil {
					return err
				}
				list = registry.Templates()
			}
			if output == "" {
				return templates.Dump(cmd.OutOrStdout(), list)
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("error creating templates file: %w", err)
			}
			if err := templates.Dump(f, list); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		}),
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of standard output")
	cmd.Flags().BoolVar(&defaults, "defaults", false, "Dump the built-in templates")
	return cmd
}

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a templates file",
		Args:  cobra.ExactArgs(1),
		RunE: root.RunE(func(cmd *cobra.Command, args []string, app *root.App) error {
			registry, err := templates.LoadFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d templates OK\n", args[0], len(registry.Templates()))
			return nil
		}),
	}
}

// loadRegistry reads the configured registry without opening the store.
func loadRegistry(app *root.App) (*templates.Registry, error) {
	if file := app.Config().Extraction.TemplatesFile; file != "" {
		return templates.LoadFile(file)
	}
	return templates.Default(), nil
}

// patternSummary lists the pattern fields a template overrides. Inactive
// templates override nothing.
func patternSummary(registry *templates.Registry, t templates.Template) string {
	if !t.Active || !registry.HasPatterns(t.Bank) {
		return "-"
	}
	var fields []string
	if t.AmountPattern != "" {
		fields = append(fields, "amount")
	}
	if t.DatePattern != "" {
		fields = append(fields, "date")
	}
	if t.MerchantPattern != "" {
		fields = append(fields, "merchant")
	}
	return strings.Join(fields, ", ")
}
