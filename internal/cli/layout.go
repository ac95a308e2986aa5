package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/promopress/promopress/pkg/board"
	"github.com/promopress/promopress/pkg/layout"
	"github.com/promopress/promopress/pkg/pipeline"
)

// layoutCommand creates the layout command that arranges campaign products
// on a grid.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		distribute int
		save       bool
	)

	cmd := &cobra.Command{
		Use:   "layout <campaign-id>",
		Short: "Arrange campaign products on an even grid",
		Long: `Arrange campaign products on an even grid.

Each page's products are placed on a grid of up to three columns below
the header area. Scale is reset to neutral; rotation and page
assignment are kept. Running the layout twice yields the same result.

Without --save the computed placements are only printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			prog := newProgress(loggerFromContext(ctx))

			st, err := c.newStore(cmd)
			if err != nil {
				return err
			}
			defer st.Close()

			campaign, err := st.Campaign(ctx, args[0])
			if err != nil {
				return err
			}

			opts := c.pipelineOptions(args[0])
			b, err := pipeline.BuildBoard(campaign, opts)
			if err != nil {
				return err
			}
			if distribute > 0 {
				if err := b.Distribute(distribute); err != nil {
					return err
				}
			}
			if err := layout.Apply(b); err != nil {
				return err
			}
			snap := b.Snapshot()

			for i := range campaign.Products {
				cp := &campaign.Products[i]
				p, ok := snap.Placements[cp.ID]
				if !ok {
					continue
				}
				cp.PositionX, cp.PositionY = p.X, p.Y
				cp.ScaleX, cp.ScaleY = p.ScaleX, p.ScaleY
				cp.Rotation = p.Rotation
				cp.PageNumber = p.Page
			}

			if save {
				if err := st.PutCampaign(ctx, campaign); err != nil {
					return err
				}
				printSuccess("Arranged and saved %s", campaign.Name)
			} else {
				printSuccess("Arranged %s (dry run, use --save to persist)", campaign.Name)
			}
			prog.done(fmt.Sprintf("Arranged %d products", len(campaign.Products)))
			printStats(b.PageCount(), len(campaign.Products), false)
			printPlacements(snap)
			printNextStep("Export the brochure", appName+" export "+args[0])
			return nil
		},
	}

	cmd.Flags().IntVar(&distribute, "distribute", 0, "spread products evenly over this many pages first")
	cmd.Flags().BoolVar(&save, "save", false, "write the computed placements back to the store")

	return cmd
}

// printPlacements prints one detail line per product, grouped by page.
func printPlacements(snap board.Snapshot) {
	for _, page := range snap.Pages {
		printDetail("page %d", page.Number)
		for _, id := range snap.Order {
			p := snap.Placements[id]
			if p.Page != page.Number {
				continue
			}
			printDetail("  %s  pos (%.0f, %.0f)  scale %.2f  rot %.0f",
				id, p.X, p.Y, p.ScaleX, p.Rotation)
		}
	}
}
