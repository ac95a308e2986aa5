package pipeline

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/promopress/promopress/pkg/cache"
	"github.com/promopress/promopress/pkg/catalog"
	"github.com/promopress/promopress/pkg/errors"
)

// fakeSource serves campaigns and products from memory.
type fakeSource struct {
	campaigns map[string]catalog.Campaign
	products  map[string]catalog.Product
	loads     int
}

func (f *fakeSource) Campaign(_ context.Context, id string) (catalog.Campaign, error) {
	f.loads++
	c, ok := f.campaigns[id]
	if !ok {
		return catalog.Campaign{}, fmt.Errorf("campaign %s not found", id)
	}
	return c, nil
}

func (f *fakeSource) Product(_ context.Context, id string) (catalog.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return catalog.Product{}, fmt.Errorf("product %s not found", id)
	}
	return p, nil
}

func testSource() *fakeSource {
	return &fakeSource{
		campaigns: map[string]catalog.Campaign{
			"c1": {
				ID:        "c1",
				Name:      "Summer Sale",
				PageCount: 2,
				StartDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
				EndDate:   time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
				Templates: map[int]string{1: "t1"},
				Products: []catalog.CampaignProduct{
					{ID: "cp1", ProductID: "p1", Quantity: 1, DiscountPercent: 25, NewPrice: 7.5,
						PositionX: 50, PositionY: 200, ScaleX: 1, ScaleY: 1, PageNumber: 1},
					{ID: "cp2", ProductID: "p2", Quantity: 1, NewPrice: 4,
						PositionX: 300, PositionY: 200, ScaleX: 1, ScaleY: 1, Rotation: 30, PageNumber: 2},
				},
			},
		},
		products: map[string]catalog.Product{
			"p1": {ID: "p1", Name: "Dark Roast", OriginalPrice: 10},
			"p2": {ID: "p2", Name: "Green Tea", OriginalPrice: 4},
		},
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		wantCode errors.Code
	}{
		{"missing campaign", Options{}, errors.ErrCodeInvalidInput},
		{"bad format", Options{CampaignID: "c1", Format: "gif"}, errors.ErrCodeInvalidFormat},
		{"negative distribute", Options{CampaignID: "c1", Distribute: -1}, errors.ErrCodeInvalidPage},
		{"ok", Options{CampaignID: "c1"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("ValidateAndSetDefaults: %v", err)
				}
				if tt.opts.Format != DefaultFormat || tt.opts.Scale != DefaultScale {
					t.Errorf("defaults not applied: %+v", tt.opts)
				}
				return
			}
			if errors.GetCode(err) != tt.wantCode {
				t.Errorf("err = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestBuildBoardFromCampaign(t *testing.T) {
	src := testSource()
	b, err := BuildBoard(src.campaigns["c1"], Options{})
	if err != nil {
		t.Fatalf("BuildBoard: %v", err)
	}
	if b.PageCount() != 2 {
		t.Fatalf("PageCount = %d", b.PageCount())
	}
	p, err := b.Get("cp2")
	if err != nil {
		t.Fatal(err)
	}
	if p.X != 300 || p.Rotation != 30 || p.Page != 2 {
		t.Errorf("cp2 placement = %+v", p)
	}
	ps, _ := b.Page(1)
	if ps.TemplateID != "t1" {
		t.Errorf("page 1 template = %q", ps.TemplateID)
	}
}

func TestBuildViews(t *testing.T) {
	src := testSource()
	c := src.campaigns["c1"]
	b, err := BuildBoard(c, Options{})
	if err != nil {
		t.Fatal(err)
	}
	views := BuildViews(c, src.products, b.Snapshot(), Options{CompanyName: "Fresh Goods"})

	if len(views) != 2 {
		t.Fatalf("views = %d, want 2", len(views))
	}
	if len(views[0].Products) != 1 || len(views[1].Products) != 1 {
		t.Fatalf("page product counts = %d/%d", len(views[0].Products), len(views[1].Products))
	}

	pv := views[0].Products[0]
	if pv.Name != "Dark Roast" || pv.OriginalPrice != 10 || pv.NewPrice != 7.5 || pv.DiscountPercent != 25 {
		t.Errorf("product view = %+v", pv)
	}
	if views[0].DateRange != "01.06.2025 - 30.06.2025" {
		t.Errorf("date range = %q", views[0].DateRange)
	}
	if views[0].CompanyName != "Fresh Goods" {
		t.Errorf("company name = %q", views[0].CompanyName)
	}
	if views[0].TemplateID != "t1" || views[1].TemplateID != "" {
		t.Errorf("templates = %q / %q", views[0].TemplateID, views[1].TemplateID)
	}
}

func TestArrangeAutoLayoutAndDistribute(t *testing.T) {
	src := testSource()
	r := NewRunner(src, nil, nil, nil)

	snap, err := r.Arrange(src.campaigns["c1"], Options{CampaignID: "c1", Distribute: 1, AutoLayout: true})
	if err != nil {
		t.Fatalf("Arrange: %v", err)
	}
	if len(snap.Pages) != 1 {
		t.Fatalf("pages after distribute = %d", len(snap.Pages))
	}
	for id, p := range snap.Placements {
		if p.Page != 1 {
			t.Errorf("%s on page %d", id, p.Page)
		}
		if p.ScaleX != 1 || p.ScaleY != 1 {
			t.Errorf("%s scale not reset: %+v", id, p)
		}
	}
	// Auto-layout keeps manual rotation.
	if snap.Placements["cp2"].Rotation != 30 {
		t.Errorf("rotation = %v", snap.Placements["cp2"].Rotation)
	}
}

func TestExecuteEndToEnd(t *testing.T) {
	src := testSource()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(src, fc, nil, nil)
	defer r.Close()

	opts := Options{CampaignID: "c1", Width: 300, Height: 400}
	result, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Artifact.Name != "brochure-c1.zip" || result.Artifact.MIME != "application/zip" {
		t.Errorf("artifact = %s (%s)", result.Artifact.Name, result.Artifact.MIME)
	}
	if result.CacheInfo.FetchHit || result.CacheInfo.ExportHit {
		t.Errorf("first run should miss: %+v", result.CacheInfo)
	}
	if result.ViewsHash == "" {
		t.Error("views hash empty")
	}

	// Second run is served from cache end to end.
	again, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute again: %v", err)
	}
	if !again.CacheInfo.FetchHit || !again.CacheInfo.ExportHit {
		t.Errorf("second run should hit: %+v", again.CacheInfo)
	}
	if src.loads != 1 {
		t.Errorf("source loads = %d, want 1", src.loads)
	}
	if string(again.Artifact.Data) != string(result.Artifact.Data) {
		t.Error("cached artifact differs from fresh artifact")
	}

	// Refresh bypasses the cache.
	opts.Refresh = true
	fresh, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute refresh: %v", err)
	}
	if fresh.CacheInfo.FetchHit || fresh.CacheInfo.ExportHit {
		t.Errorf("refresh run should miss: %+v", fresh.CacheInfo)
	}
}

func TestExecuteUnknownCampaign(t *testing.T) {
	r := NewRunner(testSource(), nil, nil, nil)
	_, err := r.Execute(context.Background(), Options{CampaignID: "ghost"})
	if !errors.Is(err, errors.ErrCodeCampaignNotFound) {
		t.Errorf("err = %v, want CAMPAIGN_NOT_FOUND", err)
	}
}

func TestPreviewCaches(t *testing.T) {
	src := testSource()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(src, fc, nil, nil)
	defer r.Close()

	c := src.campaigns["c1"]
	snap, err := r.Arrange(c, Options{CampaignID: "c1", Width: 300, Height: 400})
	if err != nil {
		t.Fatal(err)
	}
	views := BuildViews(c, src.products, snap, Options{})

	data, hit, err := r.PreviewWithCacheInfo(context.Background(), views[0])
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if hit {
		t.Error("first preview should miss")
	}
	cached, hit, err := r.PreviewWithCacheInfo(context.Background(), views[0])
	if err != nil {
		t.Fatal(err)
	}
	if !hit {
		t.Error("second preview should hit")
	}
	if string(cached) != string(data) {
		t.Error("cached preview differs")
	}
}
