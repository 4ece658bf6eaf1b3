// Package cli implements the rowmapctl commands.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/syssam/rowmap/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
	Dialect    string
	Driver     string
	DSN        string

	// Config and Logger are set before any subcommand runs.
	Config config.Config
	Logger *slog.Logger
}

// NewRootCommand creates the root command of rowmapctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "rowmapctl",
		Short: "rowmapctl - inspect and exercise rowmap descriptors",
		Long: `rowmapctl renders the DDL of entity descriptors, generates typed
property constants and runs a demo against a live database.

Connection settings come from --config, then ROWMAP_* variables, then flags.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to a YAML config file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")
	cmd.PersistentFlags().StringVar(&opts.Dialect, "dialect", "", "statement dialect")
	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", "", "database/sql driver name")
	cmd.PersistentFlags().StringVar(&opts.DSN, "dsn", "", "data source name")

	cmd.AddCommand(NewDDLCommand(opts))
	cmd.AddCommand(NewDemoCommand(opts))
	cmd.AddCommand(NewGenCommand(opts))
	return cmd
}

func (o *RootOptions) load(cmd *cobra.Command) error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("dialect") {
		cfg.Dialect = o.Dialect
	}
	if flags.Changed("driver") {
		cfg.Driver = o.Driver
	}
	if flags.Changed("dsn") {
		cfg.DSN = o.DSN
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	o.Config = cfg

	level := slog.LevelInfo
	if o.Verbose {
		level = slog.LevelDebug
	}
	o.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	o.Logger.Debug("config loaded", "dialect", cfg.Dialect, "driver", cfg.Driver, "debug", cfg.Debug)
	return nil
}
