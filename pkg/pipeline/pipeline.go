// Package pipeline orchestrates the brochure production flow: fetch the
// campaign and its products, build the placement board, optionally run the
// grid auto-layout, and render or export the pages. Each stage caches its
// result so repeated runs over an unchanged campaign are cheap.
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(store, cache, nil, logger)
//	opts := pipeline.Options{
//	    CampaignID: "c1",
//	    Format:     "png",
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile(result.Artifact.Name, result.Artifact.Data, 0o644)
//
// Individual stages (fetch, layout, preview, export) can also be run on
// their own; the HTTP API and the CLI share this package so both entry
// points behave identically.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/promopress/promopress/pkg/board"
	"github.com/promopress/promopress/pkg/catalog"
	"github.com/promopress/promopress/pkg/errors"
	"github.com/promopress/promopress/pkg/export"
	"github.com/promopress/promopress/pkg/render"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultFormat is the default export format.
	DefaultFormat = string(export.FormatPNG)

	// DefaultScale is the default export supersampling factor.
	DefaultScale = render.DefaultExportScale

	// DefaultWidth is the default page canvas width in pixels.
	DefaultWidth = board.DefaultCanvasWidth

	// DefaultHeight is the default page canvas height in pixels.
	DefaultHeight = board.DefaultCanvasHeight
)

// Source supplies campaign and product data to the pipeline. Both store
// backends satisfy it.
type Source interface {
	Campaign(ctx context.Context, id string) (catalog.Campaign, error)
	Product(ctx context.Context, id string) (catalog.Product, error)
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Fetch options
	CampaignID string `json:"campaign_id"`
	Refresh    bool   `json:"refresh,omitempty"`

	// Board / layout options
	Width      float64 `json:"width,omitempty"`
	Height     float64 `json:"height,omitempty"`
	AutoLayout bool    `json:"auto_layout,omitempty"`
	Distribute int     `json:"distribute,omitempty"` // spread products over this many pages; 0 keeps the saved assignment

	// Render / export options
	Format      string  `json:"format,omitempty"`
	Scale       float64 `json:"scale,omitempty"`
	CompanyName string  `json:"company_name,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// SetDefaults fills unset fields with pipeline defaults.
func (o *Options) SetDefaults() {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Format == "" {
		o.Format = DefaultFormat
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
}

// ValidateAndSetDefaults checks required fields and applies defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if o.CampaignID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "campaign id is required")
	}
	o.SetDefaults()
	if _, err := export.ParseFormat(o.Format); err != nil {
		return err
	}
	if o.Distribute < 0 {
		return errors.New(errors.ErrCodeInvalidPage, "distribute page count must be positive")
	}
	return nil
}

// =============================================================================
// Result
// =============================================================================

// Stats captures per-stage timings.
type Stats struct {
	FetchTime  time.Duration `json:"fetch_time"`
	LayoutTime time.Duration `json:"layout_time"`
	ExportTime time.Duration `json:"export_time"`
}

// CacheInfo reports which stages were served from cache.
type CacheInfo struct {
	FetchHit  bool `json:"fetch_hit"`
	ExportHit bool `json:"export_hit"`
}

// Result is the output of a full pipeline run.
type Result struct {
	Campaign  catalog.Campaign           `json:"campaign"`
	Products  map[string]catalog.Product `json:"products"`
	Snapshot  board.Snapshot             `json:"snapshot"`
	Views     []render.PageView          `json:"views"`
	Artifact  export.Artifact            `json:"-"`
	ViewsHash string                     `json:"views_hash"`
	Stats     Stats                      `json:"stats"`
	CacheInfo CacheInfo                  `json:"cache_info"`
}

// =============================================================================
// Board and view construction
// =============================================================================

// BuildBoard reconstructs the placement board from a saved campaign: one
// page per campaign page with its template, and every campaign product at
// its persisted transform.
func BuildBoard(c catalog.Campaign, opts Options) (*board.Board, error) {
	opts.SetDefaults()
	pages := c.PageCount
	if pages < 1 {
		pages = 1
	}
	b := board.New(
		board.WithCanvasSize(opts.Width, opts.Height),
		board.WithPages(pages),
	)
	for page, templateID := range c.Templates {
		if err := b.SetTemplate(page, templateID); err != nil {
			return nil, err
		}
	}
	for _, cp := range c.Products {
		b.AddProduct(cp.ID)
		page := cp.PageNumber
		if page < 1 || page > pages {
			page = 1
		}
		patch := board.Patch{
			X: &cp.PositionX, Y: &cp.PositionY,
			ScaleX: &cp.ScaleX, ScaleY: &cp.ScaleY,
			Rotation: &cp.Rotation,
			Page:     &page,
		}
		if err := b.Update(cp.ID, patch); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// BuildViews flattens a campaign and board snapshot into render-ready page
// views, in page order.
func BuildViews(c catalog.Campaign, products map[string]catalog.Product, snap board.Snapshot, opts Options) []render.PageView {
	opts.SetDefaults()

	byID := make(map[string]catalog.CampaignProduct, len(c.Products))
	for _, cp := range c.Products {
		byID[cp.ID] = cp
	}

	dateRange := formatDateRange(c.StartDate, c.EndDate)
	showLogo := false
	if _, ok := c.Logo.SelectedID(); ok {
		showLogo = true
	}

	views := make([]render.PageView, 0, len(snap.Pages))
	for _, page := range snap.Pages {
		view := render.PageView{
			Number:      page.Number,
			Width:       snap.CanvasW,
			Height:      snap.CanvasH,
			TemplateID:  page.TemplateID,
			LogoPos:     snap.LogoPos,
			NamePos:     snap.NamePos,
			DatePos:     page.DatePos,
			ShowLogo:    showLogo,
			CompanyName: opts.CompanyName,
			DateRange:   dateRange,
		}
		for _, id := range snap.Order {
			p, ok := snap.Placements[id]
			if !ok || p.Page != page.Number {
				continue
			}
			cp := byID[id]
			name := cp.ProductID
			var original float64
			if prod, ok := products[cp.ProductID]; ok {
				name = prod.Name
				original = prod.OriginalPrice
			}
			view.Products = append(view.Products, render.ProductView{
				ID:              id,
				Name:            name,
				OriginalPrice:   original,
				NewPrice:        cp.NewPrice,
				DiscountPercent: cp.DiscountPercent,
				Placement:       p,
			})
		}
		views = append(views, view)
	}
	return views
}

// ViewsHash content-addresses a set of page views plus the render settings
// that shape their output.
func ViewsHash(views []render.PageView, opts Options) string {
	opts.SetDefaults()
	data, _ := json.Marshal(struct {
		Views  []render.PageView `json:"views"`
		Format string            `json:"format"`
		Scale  float64           `json:"scale"`
	}{views, opts.Format, opts.Scale})
	return hashBytes(data)
}

func formatDateRange(start, end time.Time) string {
	if start.IsZero() && end.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s - %s", start.Format("02.01.2006"), end.Format("02.01.2006"))
}
