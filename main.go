package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fjacquet/sms-ledger/cmd/history"
	"fjacquet/sms-ledger/cmd/importcmd"
	"fjacquet/sms-ledger/cmd/parse"
	"fjacquet/sms-ledger/cmd/root"
	"fjacquet/sms-ledger/cmd/serve"
	"fjacquet/sms-ledger/cmd/stats"
	"fjacquet/sms-ledger/cmd/templates"
	"fjacquet/sms-ledger/cmd/transactions"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cmd := root.NewCommand()
	cmd.AddCommand(
		parse.NewCommand(),
		serve.NewCommand(),
		transactions.NewCommand(),
		history.NewCommand(),
		stats.NewCommand(),
		importcmd.NewCommand(),
		templates.NewCommand(),
	)

	if err := root.Execute(ctx, cmd); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
	stop()
}
