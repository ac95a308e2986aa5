// Package cli implements the promopress command-line interface.
//
// This package provides commands for serving the brochure API, exporting
// campaigns to images, running the grid auto-layout, inspecting campaign
// structure, editing placements in the terminal, and managing the artifact
// cache. The CLI is built using cobra and supports verbose logging via the
// charmbracelet/log library.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/promopress/promopress/pkg/buildinfo"
	"github.com/promopress/promopress/pkg/cache"
	"github.com/promopress/promopress/pkg/catalog/store"
	"github.com/promopress/promopress/pkg/config"
	"github.com/promopress/promopress/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "promopress"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	configPath string
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Promopress assembles and exports promotional brochures",
		Long:         `Promopress is a tool for assembling promotional product brochures: campaign products with discount pricing are laid out on canvas pages, arranged manually or by grid auto-layout, and exported as raster images.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to a promopress.toml config file")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Factories
// =============================================================================

// newStore opens the configured catalog store backend.
func (c *CLI) newStore(cmd *cobra.Command) (store.Store, error) {
	switch c.Config.Store.Backend {
	case "mongo":
		return store.NewMongoStore(cmd.Context(), store.MongoConfig{
			URI:      c.Config.Store.MongoURI,
			Database: c.Config.Store.MongoDB,
		})
	default:
		return store.NewFileStore(c.Config.Store.Dir)
	}
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(cmd *cobra.Command, noCache bool) (*pipeline.Runner, error) {
	st, err := c.newStore(cmd)
	if err != nil {
		return nil, err
	}
	backend, err := c.newCache(cmd, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(st, backend, nil, c.Logger), nil
}

func (c *CLI) newCache(cmd *cobra.Command, noCache bool) (cache.Cache, error) {
	if noCache || c.Config.Cache.Backend == "none" {
		return cache.NewNullCache(), nil
	}
	if c.Config.Cache.Backend == "redis" {
		return cache.NewRedisCache(cmd.Context(), cache.RedisConfig{
			Addr:     c.Config.Cache.RedisAddr,
			Password: c.Config.Cache.RedisPassword,
			DB:       c.Config.Cache.RedisDB,
		})
	}
	dir := c.Config.Cache.Dir
	if dir == "" {
		var err error
		dir, err = cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/promopress/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// pipelineOptions builds pipeline options from config defaults.
func (c *CLI) pipelineOptions(campaignID string) pipeline.Options {
	return pipeline.Options{
		CampaignID:  campaignID,
		Width:       c.Config.Canvas.Width,
		Height:      c.Config.Canvas.Height,
		Format:      c.Config.Export.Format,
		Scale:       c.Config.Export.Scale,
		CompanyName: c.Config.Server.CompanyName,
		Logger:      c.Logger,
	}
}
