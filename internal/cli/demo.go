package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/syssam/rowmap/internal/sample"
	"github.com/syssam/rowmap/query"
	"github.com/syssam/rowmap/session"
)

// NewDemoCommand creates the demo command.
func NewDemoCommand(rootOpts *RootOptions) *cobra.Command {
	var minViews int
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Create, seed and query the sample model",
		Long: `Create the sample tables, insert users and posts, publish a post through
a tracked update and print the results of a few statements.

The default configuration runs against an in-memory SQLite database.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDemo(cmd, rootOpts, minViews)
		},
	}
	cmd.Flags().IntVar(&minViews, "min-views", 100, "views threshold of popular posts")
	return cmd
}

func runDemo(cmd *cobra.Command, opts *RootOptions, minViews int) error {
	ctx := cmd.Context()
	c, err := opts.open(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.sess.CreateTables(ctx); err != nil {
		return err
	}
	if _, err := sample.Seed(ctx, c.sess); err != nil {
		return err
	}
	post, err := session.Unique(ctx, c.sess, &sample.Post{Title: "Notes"})
	if err != nil {
		return err
	}
	if post != nil {
		if err := sample.Publish(ctx, c.sess, post, time.Now()); err != nil {
			return err
		}
	}

	qb := query.New(c.sess)
	out := cmd.OutOrStdout()
	posts, err := sample.PopularPosts(ctx, qb, minViews)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "posts with at least %d views:\n", minViews)
	for _, p := range posts {
		fmt.Fprintf(out, "  %-10s %6d  by %s\n", p.Title, p.Views, authorName(p))
	}

	authors, err := sample.AuthorsByPosts(ctx, qb)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "authors:")
	for _, u := range authors {
		fmt.Fprintf(out, "  %-10s %d post(s)\n", u.Name, u.Posts)
	}

	views, err := sample.TotalViews(ctx, qb)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "total views: %d\n", views)
	return printStats(out, c)
}

func authorName(p *sample.Post) string {
	if p.Author == nil {
		return "nobody"
	}
	return p.Author.Name
}

func printStats(w io.Writer, c *conn) error {
	_, err := fmt.Fprintf(w, "statements: %s\n", strings.TrimSpace(c.stats.Counters().Snapshot().String()))
	return err
}
