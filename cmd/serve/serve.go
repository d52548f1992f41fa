// Package serve implements the serve command.
package serve

import (
	"github.com/spf13/cobra"

	"fjacquet/sms-ledger/cmd/root"
	"fjacquet/sms-ledger/internal/api"
)

// NewCommand returns the serve command.
func NewCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve the HTTP API until interrupted. The listen address comes from
server.addr unless --addr is given.`,
		Args: cobra.NoArgs,
		RunE: root.RunE(func(cmd *cobra.Command, args []string, app *root.App) error {
			c, err := app.Container()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") {
				addr = app.Config().Server.Addr
			}
			server := api.NewServer(c.GetService(), c.GetParser(), c.GetStore(), app.Logger())
			return server.ListenAndServe(cmd.Context(), addr)
		}),
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address, e.g. :8080")
	return cmd
}
