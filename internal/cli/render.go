package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pathcover/pkg/render"
)

const (
	renderFormatSVG = "svg"
	renderFormatDOT = "dot"
	renderFormatPDF = "pdf"
	renderFormatPNG = "png"
)

// convertSVG turns rendered SVG into format.
func convertSVG(svg []byte, format string, scale float64) ([]byte, error) {
	switch format {
	case renderFormatPDF:
		return render.ToPDF(svg)
	case renderFormatPNG:
		return render.ToPNG(svg, scale)
	}
	return svg, nil
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		opts     coverOpts
		output   string
		format   string
		trails   bool
		detailed bool
		scale    float64
	)

	cmd := &cobra.Command{
		Use:   "render <graph.json>",
		Short: "Draw a state graph, optionally with its path cover",
		Long: `Draw a state graph as a node-link diagram. The initial state has a double
border. With --trails the path cover is computed first and every trail is
drawn in its own color, one arrow per step.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case renderFormatSVG, renderFormatDOT, renderFormatPDF, renderFormatPNG:
			default:
				return fmt.Errorf("invalid format: %q (must be one of: svg, dot, pdf, png)", format)
			}
			c.applyConfig(cmd, &opts)

			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			runner, err := c.newRunner(ctx, true)
			if err != nil {
				return err
			}
			defer runner.Close()

			g, err := runner.LoadGraph(ctx, args[0])
			if err != nil {
				return err
			}

			ropts := render.Options{Detailed: detailed}
			if trails {
				prog := newProgress(logger)
				ropts.Trails, _, err = runner.Trails(ctx, g, opts.pipelineOptions(args[0]))
				if err != nil {
					return err
				}
				prog.done(fmt.Sprintf("Computed %d trails", len(ropts.Trails)))
			}

			out := []byte(render.ToDOT(g, ropts))
			if format != renderFormatDOT {
				if out, err = render.RenderSVG(ctx, string(out)); err != nil {
					return err
				}
				if out, err = convertSVG(out, format, scale); err != nil {
					return err
				}
			}

			if output == "" {
				_, err := c.Out.Write(out)
				return err
			}
			if err := os.WriteFile(output, out, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printSuccess("Rendered %s", format)
			printFile(output)
			return nil
		},
	}

	addCoverFlags(cmd, &opts)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", renderFormatSVG, "output format: svg, dot, pdf, png")
	cmd.Flags().Float64Var(&scale, "scale", 2, "png scale factor")
	cmd.Flags().BoolVar(&trails, "trails", false, "compute the path cover and color each trail")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "show state ids next to labels")

	return cmd
}
