package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/sankeyflow/pkg/errors"
	"github.com/matzehuels/sankeyflow/pkg/graph"
	"github.com/matzehuels/sankeyflow/pkg/pipeline"
)

// layoutFlags holds the command-line inputs of the layout command.
// Unset flags keep their zero value so config file values survive the merge.
type layoutFlags struct {
	output  string
	config  string
	noCache bool
	jobs    int
	fixed   map[string]string
	opts    pipeline.Options
}

// layoutCommand creates the layout command for computing flow layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	f := &layoutFlags{}

	cmd := &cobra.Command{
		Use:   "layout [graph.json...]",
		Short: "Compute Sankey layouts from flow graphs",
		Long: `Compute Sankey layouts from flow graphs.

The layout command takes one or more graph.json files with "nodes" and
"links" and computes the diagram geometry for each. Each result is written
next to its input as <input>.layout.json, or to --output for a single input.

Options may be read from a TOML file with --config; flags override it.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args, f)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (default: <input>.layout.json; single input only)")
	cmd.Flags().StringVarP(&f.config, "config", "c", "", "TOML file with layout options")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.opts.Refresh, "refresh", false, "recompute even if a cached layout exists")
	cmd.Flags().IntVarP(&f.jobs, "jobs", "j", 4, "number of files laid out concurrently")
	cmd.Flags().BoolVar(&f.opts.Strict, "strict", false, "fail when the layout violates its invariants")
	cmd.Flags().Float64Var(&f.opts.Tolerance, "tolerance", 0, "invariant check tolerance (default 1e-6)")

	// Layout flags
	addLayoutFlags(cmd, &f.opts)
	cmd.Flags().StringToStringVar(&f.fixed, "fixed", nil, "pin node values, e.g. --fixed start=100")
	registerLayoutCompletions(cmd)

	return cmd
}

// addLayoutFlags registers the flags shared by layout and serve.
func addLayoutFlags(cmd *cobra.Command, opts *pipeline.Options) {
	fs := cmd.Flags()
	fs.Float64Var(&opts.Width, "width", 0, fmt.Sprintf("diagram width (default %g)", pipeline.DefaultWidth))
	fs.Float64Var(&opts.Height, "height", 0, fmt.Sprintf("diagram height (default %g)", pipeline.DefaultHeight))
	fs.Float64Var(&opts.NodeWidth, "node-width", 0, "node width (default 24)")
	fs.Float64Var(&opts.NodePadding, "node-padding", 0, "vertical gap between nodes (default 8)")
	fs.IntVar(&opts.Iterations, "iterations", 0, "relaxation iterations, negative to disable (default 6)")
	fs.Float64Var(&opts.Decay, "decay", 0, "per-iteration decay of the relaxation step (default 0.99)")
	fs.Float64Var(&opts.MinValue, "min-value", 0, "minimum value used to size nodes")
	fs.StringVar(&opts.Align, "align", "", "column alignment: "+strings.Join(pipeline.AlignNames(), ", ")+" (default justify)")
	fs.StringVar(&opts.NodeOrder, "node-order", "", `node order within columns: relaxed (default) or "input"`)
	fs.StringVar(&opts.LinkOrder, "link-order", "", `link order at nodes: relaxed (default) or "input"`)
	fs.StringVar(&opts.Start, "start", "", "id of the start terminal node")
	fs.StringVar(&opts.End, "end", "", "id of the end terminal node")
	fs.Float64Var(&opts.TerminalColumnFraction, "terminal-fraction", 0, "share of the width reserved for each terminal column")
	fs.Float64Var(&opts.TerminalOffset, "terminal-offset", 0, "terminal pin position while relaxing, as a fraction of height (default 1/6)")
	fs.StringSliceVar(&opts.SpacingTargets, "spacing-target", nil, "node ids whose incoming links get extra spacing")
}

// buildOptions merges the config file, flags and fixed values.
func (c *CLI) buildOptions(configPath string, flags pipeline.Options, fixed map[string]string) (pipeline.Options, error) {
	var opts pipeline.Options
	if configPath != "" {
		fileOpts, err := pipeline.LoadOptionsFile(configPath)
		if err != nil {
			return pipeline.Options{}, err
		}
		opts = fileOpts
	}
	if len(fixed) > 0 {
		flags.FixedValues = make(map[string]float64, len(fixed))
		for id, s := range fixed {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return pipeline.Options{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "--fixed %s=%s", id, s)
			}
			flags.FixedValues[id] = v
		}
	}
	opts = opts.Merge(flags)
	opts.Logger = c.Logger
	if err := opts.ValidateForLayout(); err != nil {
		return pipeline.Options{}, err
	}
	return opts, nil
}

// layoutOutcome is the result of laying out one input file.
type layoutOutcome struct {
	input  string
	output string
	result *pipeline.Result
}

// runLayout lays out every input, writing one layout file per graph.
func (c *CLI) runLayout(ctx context.Context, inputs []string, f *layoutFlags) error {
	if f.output != "" && len(inputs) > 1 {
		return errors.New(errors.ErrCodeInvalidInput, "--output needs a single input, got %d", len(inputs))
	}
	opts, err := c.buildOptions(f.config, f.opts, f.fixed)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(f.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Computing %d layout(s)...", len(inputs)))
	spinner.Start()
	p := newProgress(c.Logger)

	outcomes := make([]layoutOutcome, len(inputs))
	var mu sync.Mutex
	var failed []string

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(f.jobs, 1))
	for i, input := range inputs {
		g.Go(func() error {
			out, err := c.layoutFile(gctx, runner, input, f.output, opts)
			if err != nil {
				mu.Lock()
				failed = append(failed, fmt.Sprintf("%s: %s", input, errors.UserMessage(err)))
				mu.Unlock()
				if len(inputs) == 1 {
					return err
				}
				c.Logger.Error("layout failed", "input", input, "error", err)
				return nil
			}
			outcomes[i] = out
			return nil
		})
	}
	err = g.Wait()
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	p.done("laid out graphs", "count", len(inputs)-len(failed), "failed", len(failed))

	for _, o := range outcomes {
		if o.result == nil {
			continue
		}
		printSuccess("Layout complete: %s", o.input)
		printFile(o.output)
		printStats(o.result.Stats, o.result.CacheHit)
	}
	if len(failed) > 0 {
		for _, msg := range failed {
			printError("%s", msg)
		}
		return fmt.Errorf("%d of %d layouts failed", len(failed), len(inputs))
	}

	printNewline()
	if len(inputs) == 1 {
		printNextStep("Check", appName+" check "+outcomes[0].output)
	}
	return nil
}

// layoutFile reads one graph, lays it out and writes the layout.
func (c *CLI) layoutFile(ctx context.Context, runner *pipeline.Runner, input, output string, opts pipeline.Options) (layoutOutcome, error) {
	g, err := graph.ReadGraphFile(input)
	if err != nil {
		return layoutOutcome{}, err
	}

	opts.Logger = c.Logger.With("input", filepath.Base(input))
	res, err := runner.ComputeLayout(ctx, g, opts)
	if err != nil {
		return layoutOutcome{}, err
	}

	if output == "" {
		output = defaultLayoutPath(input)
	}
	if err := graph.WriteLayoutFile(res.Layout, output); err != nil {
		return layoutOutcome{}, err
	}
	return layoutOutcome{input: input, output: output, result: res}, nil
}

// defaultLayoutPath derives the output path for an input graph file.
func defaultLayoutPath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".layout.json"
}
