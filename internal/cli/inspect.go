package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/promopress/promopress/pkg/render/overview"
)

// inspectCommand creates the inspect command that renders a campaign
// structure diagram.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		output   string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "inspect <campaign-id>",
		Short: "Render a campaign structure diagram",
		Long: `Render a campaign structure diagram.

The diagram shows the campaign, its pages, and which products sit on
each page. With --detailed each product node carries its placement
(position, scale, rotation) and discount. Output format follows the
file extension: .svg, .png, or .dot for the raw Graphviz source.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			runner, err := c.newRunner(cmd, false)
			if err != nil {
				return err
			}
			defer runner.Close()

			opts := c.pipelineOptions(args[0])
			campaign, products, err := runner.Fetch(ctx, opts)
			if err != nil {
				return err
			}
			snap, err := runner.Arrange(campaign, opts)
			if err != nil {
				return err
			}

			dot := overview.ToDOT(campaign, products, snap, overview.Options{Detailed: detailed})

			if output == "" {
				output = args[0] + "-overview.svg"
			}
			var data []byte
			switch {
			case strings.HasSuffix(output, ".dot"):
				data = []byte(dot)
			case strings.HasSuffix(output, ".png"):
				data, err = overview.RenderPNG(ctx, dot)
			case strings.HasSuffix(output, ".svg"):
				data, err = overview.RenderSVG(ctx, dot)
			default:
				return fmt.Errorf("unsupported output extension in %q (want .svg, .png, or .dot)", output)
			}
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}

			printSuccess("Inspected %s", campaign.Name)
			printFile(output)
			printStats(len(snap.Pages), len(campaign.Products), false)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.svg, .png, or .dot)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include placement and discount details per product")

	return cmd
}
