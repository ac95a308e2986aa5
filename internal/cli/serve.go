package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/promopress/promopress/internal/server"
	"github.com/promopress/promopress/pkg/cache"
	"github.com/promopress/promopress/pkg/observability/prom"
	"github.com/promopress/promopress/pkg/pipeline"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		uploadDir string
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the brochure HTTP API",
		Long: `Run the promopress HTTP API.

The API exposes catalog CRUD (products, templates, logos), campaign
management including placement updates, page previews, and brochure
export. It serves uploaded logo files under /uploads/ and Prometheus
metrics under /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			if addr == "" {
				addr = c.Config.Server.Addr
			}
			if uploadDir == "" {
				uploadDir = filepath.Join(c.Config.Store.Dir, "uploads")
			}

			prom.New().Register()

			st, err := c.newStore(cmd)
			if err != nil {
				return err
			}
			backend, err := c.newCache(cmd, noCache)
			if err != nil {
				return err
			}
			keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "srv:")
			runner := pipeline.NewRunner(st, backend, keyer, logger)
			defer runner.Close()

			srv := server.New(st, runner, logger,
				server.WithUploadDir(uploadDir),
				server.WithCompanyName(c.Config.Server.CompanyName),
			)
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, \":8080\")")
	cmd.Flags().StringVar(&uploadDir, "upload-dir", "", "directory for uploaded logo files")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the page and artifact cache")

	return cmd
}
