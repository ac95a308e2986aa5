package export

import (
	"archive/zip"
	"bytes"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/promopress/promopress/pkg/board"
	"github.com/promopress/promopress/pkg/errors"
	"github.com/promopress/promopress/pkg/render"
)

func testViews(n int) []render.PageView {
	views := make([]render.PageView, n)
	for i := range views {
		views[i] = render.PageView{
			Number: i + 1,
			Width:  200,
			Height: 250,
			Products: []render.ProductView{
				{ID: "p1", Name: "Dark Roast", OriginalPrice: 10, NewPrice: 7.5, DiscountPercent: 25,
					Placement: board.Placement{X: 30, Y: 60, ScaleX: 0.5, ScaleY: 0.5, Page: i + 1}},
			},
		}
	}
	return views
}

func TestExportSinglePagePNG(t *testing.T) {
	e := NewExporter()
	art, err := e.Export(testViews(1), Options{BaseName: "summer"})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if art.Name != "summer.png" || art.MIME != "image/png" {
		t.Errorf("artifact = %s (%s)", art.Name, art.MIME)
	}
	img, err := png.Decode(bytes.NewReader(art.Data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	// Export renders at 2x by default.
	if img.Bounds().Dx() != 400 || img.Bounds().Dy() != 500 {
		t.Errorf("bounds = %v", img.Bounds())
	}
}

func TestExportSinglePageJPEG(t *testing.T) {
	e := NewExporter()
	art, err := e.Export(testViews(1), Options{Format: FormatJPEG})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if art.Name != "brochure.jpg" || art.MIME != "image/jpeg" {
		t.Errorf("artifact = %s (%s)", art.Name, art.MIME)
	}
	if _, err := jpeg.Decode(bytes.NewReader(art.Data)); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestExportMultiPageZip(t *testing.T) {
	e := NewExporter()
	art, err := e.Export(testViews(3), Options{BaseName: "summer"})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if art.Name != "summer.zip" || art.MIME != "application/zip" {
		t.Errorf("artifact = %s (%s)", art.Name, art.MIME)
	}

	zr, err := zip.NewReader(bytes.NewReader(art.Data), int64(len(art.Data)))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	want := map[string]bool{"page-1.png": false, "page-2.png": false, "page-3.png": false}
	for _, f := range zr.File {
		seen, ok := want[f.Name]
		if !ok {
			t.Errorf("unexpected entry %s", f.Name)
			continue
		}
		if seen {
			t.Errorf("duplicate entry %s", f.Name)
		}
		want[f.Name] = true

		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		if _, err := png.Decode(rc); err != nil {
			t.Errorf("entry %s is not a PNG: %v", f.Name, err)
		}
		rc.Close()
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("missing entry %s", name)
		}
	}
}

func TestExportPDFUnsupported(t *testing.T) {
	e := NewExporter()
	_, err := e.Export(testViews(1), Options{Format: FormatPDF})
	if errors.GetCode(err) != errors.ErrCodeUnsupported {
		t.Errorf("err = %v, want UNSUPPORTED", err)
	}
}

func TestExportRestoresModeOnFailure(t *testing.T) {
	e := NewExporter()
	if e.Mode() != render.ModeDraft {
		t.Fatalf("initial mode = %s", e.Mode())
	}

	broken := testViews(1)
	broken[0].Width = 0
	if _, err := e.Export(broken, Options{}); err == nil {
		t.Fatal("want render failure")
	}
	if e.Mode() != render.ModeDraft {
		t.Errorf("mode after failed export = %s, want draft restored", e.Mode())
	}

	if _, err := e.Export(testViews(1), Options{}); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if e.Mode() != render.ModeDraft {
		t.Errorf("mode after export = %s, want draft restored", e.Mode())
	}
}

func TestExportNoPages(t *testing.T) {
	e := NewExporter()
	if _, err := e.Export(nil, Options{}); errors.GetCode(err) != errors.ErrCodeExportFailed {
		t.Errorf("err for empty export should be EXPORT_FAILED")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"png", FormatPNG, false},
		{"jpeg", FormatJPEG, false},
		{"jpg", FormatJPEG, false},
		{"pdf", FormatPDF, false},
		{"gif", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) err = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
