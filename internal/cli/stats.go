package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// statsCommand creates the stats command.
func (c *CLI) statsCommand() *cobra.Command {
	var (
		opts        coverOpts
		metricsFile string
	)

	cmd := &cobra.Command{
		Use:   "stats <graph.json>",
		Short: "Print the counters of a path cover",
		Long: `Compute a path cover and print its counters without exporting trails:
state and action counts, the size of the initial and final cover, the total
and average trail length, and how long each stage took.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			c.applyConfig(cmd, &opts)
			if !cmd.Flags().Changed("metrics-file") {
				metricsFile = c.cfg.Metrics.Textfile
			}
			flush := c.startMetrics(metricsFile)
			defer func() {
				if ferr := flush(); ferr != nil && err == nil {
					err = fmt.Errorf("write metrics: %w", ferr)
				}
			}()

			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, true)
			if err != nil {
				return err
			}
			defer runner.Close()

			g, err := runner.LoadGraph(ctx, args[0])
			if err != nil {
				return err
			}

			spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Covering %d states...", len(g.States)))
			spinner.Start()
			cov, _, err := runner.Cover(ctx, g, opts.pipelineOptions(args[0]))
			spinner.Stop()
			if err != nil {
				return err
			}
			defer cov.Close()

			fmt.Fprintln(c.Out, statsTable(cov.Stats))
			if cov.Stats.Cyclic {
				printWarning("state graph is cyclic, the cover may not be minimal")
			}
			return nil
		},
	}

	addCoverFlags(cmd, &opts)
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
	return cmd
}
