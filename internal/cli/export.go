package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/promopress/promopress/pkg/export"
)

// exportCommand creates the export command that renders a campaign to files.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		output     string
		format     string
		scale      float64
		autoLayout bool
		distribute int
		refresh    bool
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "export <campaign-id>",
		Short: "Export a campaign as a brochure image or ZIP archive",
		Long: `Export a campaign as a brochure.

Single-page campaigns produce one image file; multi-page campaigns
produce a ZIP archive with one image per page. Pages render without
editing affordances, at double resolution by default.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			opts := c.pipelineOptions(args[0])
			opts.AutoLayout = autoLayout
			opts.Distribute = distribute
			opts.Refresh = refresh
			if format != "" {
				opts.Format = format
			}
			if scale > 0 {
				opts.Scale = scale
			}
			if _, err := export.ParseFormat(opts.Format); err != nil {
				return err
			}

			runner, err := c.newRunner(cmd, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			sp := newSpinnerWithContext(ctx, "Exporting "+args[0]+"...")
			sp.Start()
			res, err := runner.Execute(ctx, opts)
			sp.Stop()
			if err != nil {
				return err
			}

			path := output
			if path == "" {
				path = res.Artifact.Name
			}
			if dir := filepath.Dir(path); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return err
				}
			}
			if err := os.WriteFile(path, res.Artifact.Data, 0o644); err != nil {
				return fmt.Errorf("write artifact: %w", err)
			}

			logger.Debug("export finished",
				"fetch", res.Stats.FetchTime,
				"layout", res.Stats.LayoutTime,
				"export", res.Stats.ExportTime,
			)

			printSuccess("Exported %s", res.Campaign.Name)
			printFile(path)
			printStats(len(res.Views), len(res.Campaign.Products), res.CacheInfo.ExportHit)
			printNextStep("Inspect the layout", appName+" inspect "+args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file path")
	cmd.Flags().StringVarP(&format, "format", "f", "", "image format: png or jpeg")
	cmd.Flags().Float64Var(&scale, "scale", 0, "resolution multiplier (default 2)")
	cmd.Flags().BoolVar(&autoLayout, "auto-layout", false, "arrange products on a grid before exporting")
	cmd.Flags().IntVar(&distribute, "distribute", 0, "spread products evenly over this many pages")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass cached catalog data and artifacts")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching entirely")

	return cmd
}
