package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sankeyflow/pkg/graph"
)

// checkCommand creates the check command for verifying stored layouts.
func (c *CLI) checkCommand() *cobra.Command {
	var (
		tolerance float64
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "check [layout.json...]",
		Short: "Verify the geometry of layout files",
		Long: `Verify the geometry of layout files.

The check command reads layout.json files (produced by 'layout' or by any
other tool using the same format) and verifies that node values match their
flows, node and link geometry is non-negative, nodes in a column do not
overlap, and every link endpoint lies within its node.

The command fails if any file has a violation.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCheck(cmd.Context(), args, tolerance, noCache)
		},
	}

	cmd.Flags().Float64Var(&tolerance, "tolerance", 0, "floating-point slack (default 1e-6)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runCheck checks every layout file and reports violations.
func (c *CLI) runCheck(ctx context.Context, paths []string, tolerance float64, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	bad := 0
	for _, path := range paths {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		l, err := graph.ReadLayoutFile(path)
		if err != nil {
			return err
		}
		report, err := runner.CheckLayout(ctx, l, tolerance)
		if err != nil {
			return err
		}
		if report.OK() {
			printSuccess("%s", path)
			printDetail("%d nodes, %d links, tolerance %g", len(l.Nodes), len(l.Links), report.Tolerance)
			continue
		}
		bad++
		printError("%s", path)
		for _, v := range report.Violations {
			printDetail("%s", v)
		}
	}

	if bad > 0 {
		printNewline()
		printWarning("%d of %d layouts violate their invariants", bad, len(paths))
		return fmt.Errorf("%d layout(s) failed the check", bad)
	}
	return nil
}
