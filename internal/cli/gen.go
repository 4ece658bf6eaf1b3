package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syssam/rowmap/compiler/gen"
	"github.com/syssam/rowmap/internal/sample"
)

// NewGenCommand creates the gen command.
func NewGenCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		output  string
		pkg     string
		workers int
	)
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate typed property constants for the sample model",
		Long: `Generate one Go file per descriptor of the sample model holding its
table, property path and column constants.

Projects generate constants for their own registry with the compiler/gen
package from a go:generate program.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := []gen.Option{gen.WithTarget(output), gen.WithWorkers(workers)}
			if pkg != "" {
				opts = append(opts, gen.WithPackage(pkg))
			}
			g, err := gen.New(sample.Registry(), opts...)
			if err != nil {
				return err
			}
			paths, err := g.Generate(cmd.Context())
			if err != nil {
				return err
			}
			for _, p := range paths {
				rootOpts.Logger.Debug("generated", "file", p)
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "model", "output directory")
	cmd.Flags().StringVar(&pkg, "package", "", "package name (default: base name of the output directory)")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel writers (default: GOMAXPROCS)")
	return cmd
}
