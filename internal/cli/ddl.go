package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syssam/rowmap/dialect/sql"
	"github.com/syssam/rowmap/internal/sample"
	"github.com/syssam/rowmap/session"
)

// NewDDLCommand creates the ddl command.
func NewDDLCommand(rootOpts *RootOptions) *cobra.Command {
	var apply bool
	cmd := &cobra.Command{
		Use:   "ddl",
		Short: "Print the CREATE TABLE statements of the sample model",
		Long: `Print the CREATE TABLE statements of the sample model in the configured
dialect. With --apply the tables are created in the configured database.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if apply {
				return runApply(cmd, rootOpts)
			}
			return runDDL(cmd, rootOpts)
		},
	}
	cmd.Flags().BoolVar(&apply, "apply", false, "create the tables instead of printing them")
	return cmd
}

func runDDL(cmd *cobra.Command, opts *RootOptions) error {
	// database/sql connects lazily: nothing is dialed here.
	drv, err := sql.OpenDriver(opts.Config.Dialect, opts.Config.Driver, opts.Config.DSN)
	if err != nil {
		return err
	}
	defer drv.Close()

	reg := sample.Registry()
	s := session.New(drv, reg)
	out := cmd.OutOrStdout()
	for _, d := range reg.Descriptors() {
		stmts, err := s.Statements(d)
		if err != nil {
			return err
		}
		for _, stmt := range stmts {
			if _, err := fmt.Fprintf(out, "%s;\n", stmt); err != nil {
				return err
			}
		}
	}
	return nil
}

func runApply(cmd *cobra.Command, opts *RootOptions) error {
	ctx := cmd.Context()
	c, err := opts.open(ctx)
	if err != nil {
		return err
	}
	defer c.Close()
	if err := c.sess.CreateTables(ctx); err != nil {
		return err
	}
	opts.Logger.Info("tables created", "stats", c.stats.Counters().Snapshot().String())
	_, err = fmt.Fprintln(cmd.OutOrStdout(), "ok")
	return err
}
