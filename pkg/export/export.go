// Package export turns a brochure's pages into downloadable artifacts:
// every page is rendered in clean mode at export scale, a single page
// yields one image file, and multi-page brochures are packaged into a ZIP
// with one entry per page.
package export

import (
	"archive/zip"
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/promopress/promopress/pkg/errors"
	"github.com/promopress/promopress/pkg/render"
)

// Format is an export output format.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatPDF  Format = "pdf"
)

// JPEGQuality is the fixed quality used for JPEG export.
const JPEGQuality = 95

// Options configures an export run.
type Options struct {
	Format   Format
	Scale    float64 // supersampling factor; 0 means render.DefaultExportScale
	BaseName string  // artifact name stem; 0 pages use it verbatim
}

// SetDefaults fills unset fields.
func (o *Options) SetDefaults() {
	if o.Format == "" {
		o.Format = FormatPNG
	}
	if o.Scale <= 0 {
		o.Scale = render.DefaultExportScale
	}
	if o.BaseName == "" {
		o.BaseName = "brochure"
	}
}

// Artifact is a finished export output.
type Artifact struct {
	Name string
	MIME string
	Data []byte
}

// Exporter renders page views into artifacts. It also owns the editor's
// current render mode: exporting switches to clean mode for the duration of
// the run and always restores the previous mode, even when rendering fails,
// so the editor never comes back with its affordances still hidden.
type Exporter struct {
	mode render.Mode
}

// NewExporter creates an exporter with the editor in draft mode.
func NewExporter() *Exporter {
	return &Exporter{mode: render.ModeDraft}
}

// Mode returns the editor's current render mode.
func (e *Exporter) Mode() render.Mode { return e.mode }

// Export renders all pages and packages them. Page entries in a multi-page
// ZIP are named page-{n}.{ext} by 1-indexed page number.
func (e *Exporter) Export(views []render.PageView, opts Options) (Artifact, error) {
	opts.SetDefaults()

	if opts.Format == FormatPDF {
		return Artifact{}, errors.New(errors.ErrCodeUnsupported, "PDF export is not yet available")
	}
	if opts.Format != FormatPNG && opts.Format != FormatJPEG {
		return Artifact{}, errors.New(errors.ErrCodeInvalidFormat, "unknown export format %q", opts.Format)
	}
	if len(views) == 0 {
		return Artifact{}, errors.New(errors.ErrCodeExportFailed, "nothing to export: the brochure has no pages")
	}

	prev := e.mode
	e.mode = render.ModeClean
	defer func() { e.mode = prev }()

	pages := make([][]byte, 0, len(views))
	for _, view := range views {
		img, err := render.Page(view, render.Options{Mode: e.mode, Scale: opts.Scale})
		if err != nil {
			return Artifact{}, errors.Wrap(errors.ErrCodeRenderFailed, err, "render page %d", view.Number)
		}
		data, err := encode(img, opts.Format)
		if err != nil {
			return Artifact{}, errors.Wrap(errors.ErrCodeExportFailed, err, "encode page %d", view.Number)
		}
		pages = append(pages, data)
	}

	if len(views) == 1 {
		return Artifact{
			Name: fmt.Sprintf("%s.%s", opts.BaseName, ext(opts.Format)),
			MIME: mimeType(opts.Format),
			Data: pages[0],
		}, nil
	}
	return e.archive(views, pages, opts)
}

// archive zips the rendered pages, one entry per page in page order.
func (e *Exporter) archive(views []render.PageView, pages [][]byte, opts Options) (Artifact, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for i, data := range pages {
		w, err := zw.Create(fmt.Sprintf("page-%d.%s", views[i].Number, ext(opts.Format)))
		if err != nil {
			return Artifact{}, errors.Wrap(errors.ErrCodeExportFailed, err, "create archive entry")
		}
		if _, err := w.Write(data); err != nil {
			return Artifact{}, errors.Wrap(errors.ErrCodeExportFailed, err, "write archive entry")
		}
	}
	if err := zw.Close(); err != nil {
		return Artifact{}, errors.Wrap(errors.ErrCodeExportFailed, err, "close archive")
	}
	return Artifact{
		Name: opts.BaseName + ".zip",
		MIME: "application/zip",
		Data: buf.Bytes(),
	}, nil
}

func encode(img image.Image, f Format) ([]byte, error) {
	var buf bytes.Buffer
	switch f {
	case FormatJPEG:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
			return nil, err
		}
	default:
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func ext(f Format) string {
	if f == FormatJPEG {
		return "jpg"
	}
	return string(f)
}

func mimeType(f Format) string {
	if f == FormatJPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// ParseFormat validates a user-supplied format string.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatPNG, FormatJPEG, FormatPDF:
		return Format(s), nil
	case "jpg":
		return FormatJPEG, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "unknown export format %q", s)
	}
}
