// Package render rasterizes brochure pages. Each page is drawn in-process
// onto an RGBA canvas: the template wash, circular product cards with name
// and discount pricing, and the decorative logo, company name, and date
// badge.
//
// Two modes exist. Draft mode draws the editor affordances (selection
// outline, rotate and resize handles); clean mode omits them so exported
// images never contain editor chrome.
package render

import (
	"fmt"
	"image"
	"math"

	"github.com/fogleman/gg"

	"github.com/promopress/promopress/pkg/board"
	"github.com/promopress/promopress/pkg/errors"
)

// Mode selects draft (editor affordances visible) or clean output.
type Mode string

const (
	ModeDraft Mode = "draft"
	ModeClean Mode = "clean"
)

// DefaultExportScale is the supersampling factor for exported pages.
const DefaultExportScale = 2.0

// ProductView is everything the renderer needs to draw one product card.
type ProductView struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	OriginalPrice   float64         `json:"original_price"`
	NewPrice        float64         `json:"new_price"`
	DiscountPercent float64         `json:"discount_percent"`
	Placement       board.Placement `json:"placement"`
	Selected        bool            `json:"selected,omitempty"`
}

// PageView is the flattened, render-ready state of one page. It is a pure
// value: hashing its serialized form identifies the rendered output.
type PageView struct {
	Number      int           `json:"number"`
	Width       float64       `json:"width"`
	Height      float64       `json:"height"`
	TemplateID  string        `json:"template_id,omitempty"`
	Products    []ProductView `json:"products"`
	LogoPos     board.Point   `json:"logo_pos"`
	NamePos     board.Point   `json:"name_pos"`
	DatePos     board.Point   `json:"date_pos"`
	ShowLogo    bool          `json:"show_logo"`
	CompanyName string        `json:"company_name,omitempty"`
	DateRange   string        `json:"date_range,omitempty"`
}

// Options configures page rasterization.
type Options struct {
	Mode  Mode
	Scale float64 // supersampling factor; 0 means 1.0
}

// SetDefaults fills unset fields.
func (o *Options) SetDefaults() {
	if o.Mode == "" {
		o.Mode = ModeDraft
	}
	if o.Scale <= 0 {
		o.Scale = 1.0
	}
}

// Page rasterizes one page view to an image.
func Page(view PageView, opts Options) (image.Image, error) {
	opts.SetDefaults()
	if view.Width <= 0 || view.Height <= 0 {
		return nil, errors.New(errors.ErrCodeRenderFailed, "page %d has no canvas area", view.Number)
	}

	fontMu.Lock()
	defer fontMu.Unlock()

	w := int(math.Ceil(view.Width * opts.Scale))
	h := int(math.Ceil(view.Height * opts.Scale))
	gc := gg.NewContext(w, h)
	gc.Scale(opts.Scale, opts.Scale)

	drawBackground(gc, view)
	for _, pv := range view.Products {
		drawProduct(gc, pv, opts.Mode)
	}
	drawDecorations(gc, view, opts.Mode)

	return gc.Image(), nil
}

func drawBackground(gc *gg.Context, view PageView) {
	gc.SetColor(templateTint(view.TemplateID))
	gc.DrawRectangle(0, 0, view.Width, view.Height)
	gc.Fill()
}

func drawProduct(gc *gg.Context, pv ProductView, mode Mode) {
	p := pv.Placement
	w, h := p.Size()
	cx, cy := p.X+w/2, p.Y+h/2

	gc.Push()
	gc.RotateAbout(gg.Radians(p.Rotation), cx, cy)

	// Card disc.
	rx, ry := w/2, h/2
	gc.SetColor(colorCardFill)
	gc.DrawEllipse(cx, cy, rx, ry)
	gc.Fill()
	gc.SetColor(colorCardBorder)
	gc.SetLineWidth(2)
	gc.DrawEllipse(cx, cy, rx, ry)
	gc.Stroke()

	scale := math.Min(p.ScaleX, p.ScaleY)
	nameSize := math.Max(9, 14*scale)
	priceSize := math.Max(8, 12*scale)

	gc.SetFontFace(face(true, nameSize))
	gc.SetColor(colorText)
	gc.DrawStringWrapped(pv.Name, cx, cy-ry*0.35, 0.5, 0.5, w*0.8, 1.2, gg.AlignCenter)

	if pv.DiscountPercent > 0 {
		gc.SetFontFace(face(false, priceSize))
		old := fmt.Sprintf("%.2f", pv.OriginalPrice)
		gc.SetColor(colorOldPrice)
		gc.DrawStringAnchored(old, cx, cy+ry*0.1, 0.5, 0.5)
		// Strike through the original price.
		ow, _ := gc.MeasureString(old)
		gc.SetLineWidth(1)
		gc.DrawLine(cx-ow/2, cy+ry*0.1, cx+ow/2, cy+ry*0.1)
		gc.Stroke()

		gc.SetFontFace(face(true, priceSize+2))
		gc.SetColor(colorNewPrice)
		gc.DrawStringAnchored(fmt.Sprintf("%.2f", pv.NewPrice), cx, cy+ry*0.4, 0.5, 0.5)
	} else {
		gc.SetFontFace(face(true, priceSize+2))
		gc.SetColor(colorText)
		gc.DrawStringAnchored(fmt.Sprintf("%.2f", pv.OriginalPrice), cx, cy+ry*0.3, 0.5, 0.5)
	}

	if mode == ModeDraft {
		drawHandles(gc, cx, cy, rx, ry, pv.Selected)
	}
	gc.Pop()
}

// drawHandles draws the editor affordances: a selection ring plus the
// rotate handle above the card and the resize handle at its lower right.
func drawHandles(gc *gg.Context, cx, cy, rx, ry float64, selected bool) {
	if selected {
		gc.SetColor(colorSelection)
		gc.SetLineWidth(2)
		gc.SetDash(6, 4)
		gc.DrawEllipse(cx, cy, rx+6, ry+6)
		gc.Stroke()
		gc.SetDash()
	}

	gc.SetColor(colorHandle)
	gc.DrawCircle(cx, cy-ry-14, 5)
	gc.Fill()
	gc.DrawRectangle(cx+rx*0.6, cy+ry*0.6, 10, 10)
	gc.Fill()
}

func drawDecorations(gc *gg.Context, view PageView, mode Mode) {
	if view.ShowLogo {
		// Placeholder mark: the uploaded image itself lives with the
		// catalog service; the renderer draws its frame and label.
		gc.SetColor(colorCardBorder)
		gc.SetLineWidth(2)
		gc.DrawRoundedRectangle(view.LogoPos.X, view.LogoPos.Y, 120, 70, 8)
		gc.Stroke()
		gc.SetFontFace(face(true, 12))
		gc.DrawStringAnchored("LOGO", view.LogoPos.X+60, view.LogoPos.Y+35, 0.5, 0.5)
	}

	if view.CompanyName != "" {
		gc.SetColor(colorText)
		gc.SetFontFace(face(true, 22))
		gc.DrawStringAnchored(view.CompanyName, view.NamePos.X+120, view.NamePos.Y+20, 0.5, 0.5)
	}

	if view.DateRange != "" {
		gc.SetColor(colorBadgeFill)
		gc.DrawRoundedRectangle(view.DatePos.X, view.DatePos.Y, 170, 46, 23)
		gc.Fill()
		gc.SetColor(colorBadgeText)
		gc.SetFontFace(face(false, 13))
		gc.DrawStringAnchored(view.DateRange, view.DatePos.X+85, view.DatePos.Y+23, 0.5, 0.5)
	}

	if mode == ModeDraft {
		// Page number tab helps orientation while editing; exports drop it.
		gc.SetColor(colorOldPrice)
		gc.SetFontFace(face(false, 11))
		gc.DrawStringAnchored(fmt.Sprintf("page %d", view.Number), view.Width-40, view.Height-16, 0.5, 0.5)
	}
}
