package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/promopress/promopress/pkg/board"
	"github.com/promopress/promopress/pkg/cache"
	"github.com/promopress/promopress/pkg/catalog"
	"github.com/promopress/promopress/pkg/errors"
	"github.com/promopress/promopress/pkg/export"
	"github.com/promopress/promopress/pkg/layout"
	"github.com/promopress/promopress/pkg/observability"
	"github.com/promopress/promopress/pkg/render"
)

// Runner executes the brochure pipeline with caching. Both CLI and API use
// it so caching and stage behavior stay identical across entry points.
//
// The Runner holds no per-run state besides the export mutex: exports are
// serialized because a brochure export is memory-heavy and the original
// editor's rapid-repeat-click race is closed here by construction.
type Runner struct {
	Source   Source
	Cache    cache.Cache
	Keyer    cache.Keyer
	Logger   *log.Logger
	Exporter *export.Exporter

	exportMu sync.Mutex
}

// NewRunner creates a runner. If keyer is nil a DefaultKeyer is used; if c
// is nil caching is disabled.
func NewRunner(src Source, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Source:   src,
		Cache:    c,
		Keyer:    keyer,
		Logger:   logger,
		Exporter: export.NewExporter(),
	}
}

// Execute runs the complete fetch → board → layout → export pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{}

	// Stage 1: Fetch
	fetchStart := time.Now()
	campaign, products, fetchHit, err := r.FetchWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	result.Campaign = campaign
	result.Products = products
	result.Stats.FetchTime = time.Since(fetchStart)
	result.CacheInfo.FetchHit = fetchHit

	r.Logger.Info("fetched campaign",
		"campaign", campaign.ID,
		"products", len(campaign.Products),
		"duration", result.Stats.FetchTime)

	// Stage 2+3: Board and layout
	layoutStart := time.Now()
	snap, err := r.Arrange(campaign, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Snapshot = snap
	result.Stats.LayoutTime = time.Since(layoutStart)

	result.Views = BuildViews(campaign, products, snap, opts)
	result.ViewsHash = ViewsHash(result.Views, opts)

	r.Logger.Info("arranged board",
		"pages", len(snap.Pages),
		"duration", result.Stats.LayoutTime)

	// Stage 4: Export
	exportStart := time.Now()
	artifact, exportHit, err := r.ExportWithCacheInfo(ctx, result.Views, opts)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	result.Artifact = artifact
	result.Stats.ExportTime = time.Since(exportStart)
	result.CacheInfo.ExportHit = exportHit

	r.Logger.Info("exported brochure",
		"format", opts.Format,
		"bytes", len(artifact.Data),
		"duration", result.Stats.ExportTime)

	return result, nil
}

// campaignData is the cached form of a fetch stage result.
type campaignData struct {
	Campaign catalog.Campaign           `json:"campaign"`
	Products map[string]catalog.Product `json:"products"`
}

// FetchWithCacheInfo loads the campaign and its referenced products,
// reporting whether the cache served the result.
func (r *Runner) FetchWithCacheInfo(ctx context.Context, opts Options) (catalog.Campaign, map[string]catalog.Product, bool, error) {
	if r.Source == nil {
		return catalog.Campaign{}, nil, false, errors.New(errors.ErrCodeInternal, "runner has no campaign source")
	}
	r.applyLogger(&opts)
	observability.Pipeline().OnFetchStart(ctx, "campaign")

	start := time.Now()
	cacheKey := r.Keyer.CatalogKey("campaign:"+opts.CampaignID, cache.CatalogKeyOpts{})

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached campaignData
			if json.Unmarshal(data, &cached) == nil {
				observability.Pipeline().OnFetchComplete(ctx, "campaign", len(cached.Products), time.Since(start), nil)
				return cached.Campaign, cached.Products, true, nil
			}
		}
	}

	campaign, err := r.Source.Campaign(ctx, opts.CampaignID)
	if err != nil {
		observability.Pipeline().OnFetchComplete(ctx, "campaign", 0, time.Since(start), err)
		return catalog.Campaign{}, nil, false, errors.Wrap(errors.ErrCodeCampaignNotFound, err, "load campaign %s", opts.CampaignID)
	}

	products := make(map[string]catalog.Product, len(campaign.Products))
	for _, cp := range campaign.Products {
		if _, ok := products[cp.ProductID]; ok {
			continue
		}
		p, err := r.Source.Product(ctx, cp.ProductID)
		if err != nil {
			// A missing product record degrades to a card with just the
			// campaign-side data instead of failing the whole run.
			r.Logger.Warn("product lookup failed", "product", cp.ProductID, "err", err)
			continue
		}
		products[p.ID] = p
	}

	if data, err := json.Marshal(campaignData{Campaign: campaign, Products: products}); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLCatalog)
	}

	observability.Pipeline().OnFetchComplete(ctx, "campaign", len(products), time.Since(start), nil)
	return campaign, products, false, nil
}

// Fetch is a convenience wrapper that discards the cache hit info.
func (r *Runner) Fetch(ctx context.Context, opts Options) (catalog.Campaign, map[string]catalog.Product, error) {
	c, p, _, err := r.FetchWithCacheInfo(ctx, opts)
	return c, p, err
}

// Arrange builds the board from the campaign and applies the requested
// distribution and auto-layout passes.
func (r *Runner) Arrange(campaign catalog.Campaign, opts Options) (board.Snapshot, error) {
	opts.SetDefaults()
	start := time.Now()
	observability.Pipeline().OnLayoutStart(context.Background(), campaign.PageCount, len(campaign.Products))

	b, err := BuildBoard(campaign, opts)
	if err != nil {
		observability.Pipeline().OnLayoutComplete(context.Background(), campaign.PageCount, time.Since(start), err)
		return board.Snapshot{}, err
	}
	if opts.Distribute > 0 {
		if err := b.Distribute(opts.Distribute); err != nil {
			return board.Snapshot{}, err
		}
	}
	if opts.AutoLayout {
		if err := layout.Apply(b); err != nil {
			return board.Snapshot{}, err
		}
	}

	snap := b.Snapshot()
	observability.Pipeline().OnLayoutComplete(context.Background(), len(snap.Pages), time.Since(start), nil)
	return snap, nil
}

// PreviewWithCacheInfo renders one page in draft mode at native scale for
// editor previews, cached by the page view's content hash.
func (r *Runner) PreviewWithCacheInfo(ctx context.Context, view render.PageView) ([]byte, bool, error) {
	viewData, _ := json.Marshal(view)
	cacheKey := r.Keyer.PageKey(cache.Hash(viewData), cache.PageKeyOpts{
		Width:  view.Width,
		Height: view.Height,
		Scale:  1,
		Draft:  true,
	})

	if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		return data, true, nil
	}

	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, view.Number)
	img, err := render.Page(view, render.Options{Mode: render.ModeDraft, Scale: 1})
	if err != nil {
		observability.Pipeline().OnRenderComplete(ctx, view.Number, time.Since(start), err)
		return nil, false, err
	}
	data, err := encodePNG(img)
	if err != nil {
		return nil, false, err
	}
	observability.Pipeline().OnRenderComplete(ctx, view.Number, time.Since(start), nil)

	_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLPage)
	return data, false, nil
}

// Preview is a convenience wrapper that discards the cache hit info.
func (r *Runner) Preview(ctx context.Context, view render.PageView) ([]byte, error) {
	data, _, err := r.PreviewWithCacheInfo(ctx, view)
	return data, err
}

// ExportWithCacheInfo packages the pages into the final artifact, cached by
// the views' content hash. Export runs are serialized: concurrent callers
// queue instead of rendering the same brochure twice.
func (r *Runner) ExportWithCacheInfo(ctx context.Context, views []render.PageView, opts Options) (export.Artifact, bool, error) {
	opts.SetDefaults()
	format, err := export.ParseFormat(opts.Format)
	if err != nil {
		return export.Artifact{}, false, err
	}

	pagesHash := ViewsHash(views, opts)
	cacheKey := r.Keyer.ArtifactKey(pagesHash, cache.ArtifactKeyOpts{
		Format:  string(format),
		Quality: export.JPEGQuality,
		Scale:   opts.Scale,
	})

	r.exportMu.Lock()
	defer r.exportMu.Unlock()

	baseName := exportBaseName(opts.CampaignID)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			art := export.Artifact{Name: artifactName(baseName, format, len(views)), MIME: artifactMIME(format, len(views)), Data: data}
			return art, true, nil
		}
	}

	start := time.Now()
	observability.Pipeline().OnExportStart(ctx, string(format), len(views))
	artifact, err := r.Exporter.Export(views, export.Options{
		Format:   format,
		Scale:    opts.Scale,
		BaseName: baseName,
	})
	if err != nil {
		observability.Pipeline().OnExportComplete(ctx, string(format), 0, time.Since(start), err)
		return export.Artifact{}, false, err
	}
	observability.Pipeline().OnExportComplete(ctx, string(format), len(artifact.Data), time.Since(start), nil)

	_ = r.Cache.Set(ctx, cacheKey, artifact.Data, cache.TTLArtifact)
	return artifact, false, nil
}

// Export is a convenience wrapper that discards the cache hit info.
func (r *Runner) Export(ctx context.Context, views []render.PageView, opts Options) (export.Artifact, error) {
	artifact, _, err := r.ExportWithCacheInfo(ctx, views, opts)
	return artifact, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func exportBaseName(campaignID string) string {
	if campaignID == "" {
		return "brochure"
	}
	return "brochure-" + campaignID
}

func artifactName(base string, format export.Format, pages int) string {
	if pages > 1 {
		return base + ".zip"
	}
	if format == export.FormatJPEG {
		return base + ".jpg"
	}
	return base + "." + string(format)
}

func artifactMIME(format export.Format, pages int) string {
	if pages > 1 {
		return "application/zip"
	}
	if format == export.FormatJPEG {
		return "image/jpeg"
	}
	return "image/png"
}

func hashBytes(data []byte) string {
	return cache.Hash(data)
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
