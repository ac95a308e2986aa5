// Package cache provides pluggable byte caching for the promopress pipeline.
//
// Three backends are available:
//   - FileCache: directory-backed cache for CLI usage
//   - RedisCache: shared cache for multi-instance server deployments
//   - NullCache: no-op cache for tests or when caching is disabled
//
// Cache keys are built through the [Keyer] interface so that the pipeline,
// the catalog client, and the render stage agree on key layout. Keys are
// hashed (SHA-256) before use, so arbitrary inputs are safe.
package cache

import (
	"context"
	"time"
)

// TTLs for the different artifact classes.
const (
	// TTLCatalog is how long fetched catalog data (products, templates,
	// logos) stays fresh.
	TTLCatalog = 1 * time.Hour

	// TTLPage is how long a rendered page raster stays cached. Page rasters
	// are content-addressed, so a long TTL is safe.
	TTLPage = 24 * time.Hour

	// TTLArtifact is how long packaged export artifacts stay cached.
	TTLArtifact = 24 * time.Hour
)

// Cache is the interface for cache backends.
type Cache interface {
	// Get retrieves a value. The second return value reports whether the
	// key was present and fresh.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A TTL of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// CatalogKeyOpts parameterizes catalog fetch cache keys.
type CatalogKeyOpts struct {
	Search   string `json:"search,omitempty"`
	Category string `json:"category,omitempty"`
	UserID   string `json:"user_id,omitempty"`
}

// PageKeyOpts parameterizes rendered-page cache keys.
type PageKeyOpts struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Scale  float64 `json:"scale"`
	Draft  bool    `json:"draft"`
}

// ArtifactKeyOpts parameterizes export artifact cache keys.
type ArtifactKeyOpts struct {
	Format  string  `json:"format"`
	Quality int     `json:"quality"`
	Scale   float64 `json:"scale"`
}

// Keyer builds cache keys for the different artifact classes.
type Keyer interface {
	// CatalogKey builds a key for a catalog collection fetch.
	CatalogKey(collection string, opts CatalogKeyOpts) string

	// PageKey builds a key for a rendered page, derived from the content
	// hash of the page view.
	PageKey(viewHash string, opts PageKeyOpts) string

	// ArtifactKey builds a key for a packaged export artifact.
	ArtifactKey(pagesHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard key layout.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// CatalogKey builds a key for a catalog collection fetch.
func (DefaultKeyer) CatalogKey(collection string, opts CatalogKeyOpts) string {
	return hashKey("catalog", collection, opts)
}

// PageKey builds a key for a rendered page.
func (DefaultKeyer) PageKey(viewHash string, opts PageKeyOpts) string {
	return hashKey("page", viewHash, opts)
}

// ArtifactKey builds a key for a packaged export artifact.
func (DefaultKeyer) ArtifactKey(pagesHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", pagesHash, opts)
}
