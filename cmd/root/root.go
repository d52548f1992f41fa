// Package root contains the root command for the application
package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"fjacquet/sms-ledger/internal/config"
	"fjacquet/sms-ledger/internal/container"
	"fjacquet/sms-ledger/internal/logging"
)

// Flags are the persistent flags shared by every command. Set flags override
// the configuration file and environment.
type Flags struct {
	ConfigFile    string
	LogLevel      string
	LogFormat     string
	StorageDriver string
	StoragePath   string
}

type appKey struct{}

// App carries the configuration of one invocation and builds the container
// on first use.
type App struct {
	cfg       *config.Config
	logger    logging.Logger
	container *container.Container
}

// NewCommand returns the root command. Subcommands are added by the caller.
func NewCommand() *cobra.Command {
	flags := &Flags{}
	cmd := &cobra.Command{
		Use:   "sms-ledger",
		Short: "A CLI tool to extract transactions from bank SMS notifications.",
		Long: `sms-ledger parses bank SMS notifications into structured transactions
(amount, date, merchant, bank and direction) and records them in a ledger.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, app))
			return nil
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.ConfigFile, "config", "c", "", "Config file (default searches $HOME/.sms-ledger, .sms-ledger and .)")
	pf.StringVar(&flags.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&flags.LogFormat, "log-format", "", "Log format (text or json)")
	pf.StringVar(&flags.StorageDriver, "storage-driver", "", "Storage driver (sqlite or memory)")
	pf.StringVar(&flags.StoragePath, "db", "", "SQLite database path")
	return cmd
}

func newApp(cmd *cobra.Command, flags *Flags) (*App, error) {
	if _, err := config.LoadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	cfg, err := config.InitializeConfigFromFile(flags.ConfigFile)
	if err != nil {
		return nil, err
	}

	pf := cmd.Flags()
	if pf.Changed("log-level") {
		cfg.Log.Level = flags.LogLevel
	}
	if pf.Changed("log-format") {
		cfg.Log.Format = flags.LogFormat
	}
	if pf.Changed("storage-driver") {
		cfg.Storage.Driver = flags.StorageDriver
	}
	if pf.Changed("db") {
		cfg.Storage.Path = flags.StoragePath
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &App{cfg: cfg, logger: config.NewLoggerFromConfigWithWriter(cfg, cmd.ErrOrStderr())}, nil
}

// Config returns the effective configuration.
func (a *App) Config() *config.Config {
	return a.cfg
}

// Logger returns the application logger.
func (a *App) Logger() logging.Logger {
	return a.logger
}

// Container builds the container on first call.
func (a *App) Container() (*container.Container, error) {
	if a.container != nil {
		return a.container, nil
	}
	c, err := container.NewContainer(a.cfg, container.WithLogger(a.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}
	a.container = c
	return c, nil
}

// Close releases the container if one was built.
func (a *App) Close() error {
	if a.container == nil {
		return nil
	}
	err := a.container.Close()
	a.container = nil
	return err
}

// FromContext returns the App set up by the root command.
func FromContext(ctx context.Context) (*App, error) {
	app, ok := ctx.Value(appKey{}).(*App)
	if !ok {
		return nil, errors.New("command not run through the root command")
	}
	return app, nil
}

// RunE adapts fn to a cobra RunE. The App is closed when fn returns.
func RunE(fn func(cmd *cobra.Command, args []string, app *App) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		app, err := FromContext(cmd.Context())
		if err != nil {
			return err
		}
		defer func() {
			if cerr := app.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		return fn(cmd, args, app)
	}
}

// Execute runs cmd with ctx.
func Execute(ctx context.Context, cmd *cobra.Command) error {
	return cmd.ExecuteContext(ctx)
}
