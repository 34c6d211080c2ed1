package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pathcover/pkg/extstack"
	"github.com/matzehuels/pathcover/pkg/pathcover"
	"github.com/matzehuels/pathcover/pkg/pipeline"
)

// coverOpts holds the flags shared by every command that computes a cover.
type coverOpts struct {
	solver        string // maxflow solver or auto
	optimizer     string // optimizer or auto
	maxIterations int    // heuristic optimizer round cap
	depth         int    // exploration depth override
	workers       int    // producer goroutines feeding the builder
	spillDir      string // parent of the Euler stack's spill directory
	batchSize     int    // ints per spilled batch
	compress      bool   // snappy-compress spilled batches
}

// addCoverFlags registers the cover flags on cmd.
func addCoverFlags(cmd *cobra.Command, o *coverOpts) {
	cmd.Flags().StringVar(&o.solver, "solver", pathcover.Auto, "maxflow solver: auto, naive, dinic, push-relabel")
	cmd.Flags().StringVar(&o.optimizer, "optimizer", pathcover.Auto, "optimizer: auto, heuristic, bfs, none")
	cmd.Flags().IntVar(&o.maxIterations, "max-iterations", 0, "cap on heuristic optimizer rounds, 0 means the default of 8 (use --optimizer none to skip)")
	cmd.Flags().IntVar(&o.depth, "depth", 0, "exploration depth, overrides the graph file")
	cmd.Flags().IntVar(&o.workers, "workers", 0, "goroutines feeding states and actions (default 4)")
	cmd.Flags().StringVar(&o.spillDir, "spill-dir", "", "directory for stack spill files (default system temp)")
	cmd.Flags().IntVar(&o.batchSize, "batch-size", 0, "values per spilled stack batch (default 16384)")
	cmd.Flags().BoolVar(&o.compress, "compress", false, "compress spilled stack batches")
}

// applyConfig fills every cover flag the user did not set from the config
// file.
func (c *CLI) applyConfig(cmd *cobra.Command, o *coverOpts) {
	set := func(name string) bool { return cmd.Flags().Changed(name) }
	cv, st := c.cfg.Cover, c.cfg.Stack

	if !set("solver") && cv.Solver != "" {
		o.solver = cv.Solver
	}
	if !set("optimizer") && cv.Optimizer != "" {
		o.optimizer = cv.Optimizer
	}
	if !set("max-iterations") && cv.MaxIterations != 0 {
		o.maxIterations = cv.MaxIterations
	}
	if !set("depth") && cv.Depth != 0 {
		o.depth = cv.Depth
	}
	if !set("workers") && cv.Workers != 0 {
		o.workers = cv.Workers
	}
	if !set("spill-dir") && st.Dir != "" {
		o.spillDir = st.Dir
	}
	if !set("batch-size") && st.BatchSize != 0 {
		o.batchSize = st.BatchSize
	}
	if !set("compress") && st.Compress {
		o.compress = true
	}
}

// pipelineOptions converts the cover flags into pipeline options.
func (o *coverOpts) pipelineOptions(graph string) pipeline.Options {
	return pipeline.Options{
		GraphPath:     graph,
		Solver:        o.solver,
		Optimizer:     o.optimizer,
		MaxIterations: o.maxIterations,
		Depth:         o.depth,
		Workers:       o.workers,
		Stack: extstack.Options{
			Dir:       o.spillDir,
			BatchSize: o.batchSize,
			Compress:  o.compress,
		},
	}
}

// coverCommand creates the cover command.
func (c *CLI) coverCommand() *cobra.Command {
	var (
		opts        coverOpts
		output      string
		format      string
		noCache     bool
		refresh     bool
		metricsFile string
	)

	cmd := &cobra.Command{
		Use:   "cover <graph.json>",
		Short: "Compute a path cover and export its trails",
		Long: `Compute a path cover of a state graph and export its trails.

Trails are written as JSON Lines (one trail per line, streamed as they are
extracted) or as a single JSON document that also carries the cover
statistics. Results are cached by graph content and options.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.applyConfig(cmd, &opts)
			if !cmd.Flags().Changed("metrics-file") {
				metricsFile = c.cfg.Metrics.Textfile
			}
			popts := opts.pipelineOptions(args[0])
			popts.Format = format
			popts.Refresh = refresh
			return c.runCover(cmd.Context(), popts, output, noCache, metricsFile)
		},
	}

	addCoverFlags(cmd, &opts)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", pipeline.DefaultFormat, "output format: jsonl, json")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even if a cached cover exists")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")

	return cmd
}

// runCover executes the pipeline and reports the outcome.
func (c *CLI) runCover(ctx context.Context, opts pipeline.Options, output string, noCache bool, metricsFile string) (err error) {
	logger := loggerFromContext(ctx)
	flush := c.startMetrics(metricsFile)
	defer func() {
		if ferr := flush(); ferr != nil && err == nil {
			err = fmt.Errorf("write metrics: %w", ferr)
		}
	}()

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	var (
		w = c.Out
		f *os.File
	)
	if output != "" {
		if f, err = os.Create(output); err != nil {
			return fmt.Errorf("create %s: %w", output, err)
		}
		w = f
	}

	prog := newProgress(logger)
	result, err := runner.Execute(ctx, opts, w)
	if f != nil {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", output, cerr)
		}
		// never leave a partial cover behind
		if err != nil {
			_ = os.Remove(output)
		}
	}
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Computed %d trails", result.Trails))

	if output != "" {
		printSuccess("Path cover written")
		printFile(output)
		printCoverStats(result.Stats, result.CacheHit)
	}
	return nil
}
