// Package board holds the placement state of a brochure being edited: where
// every campaign product sits on which page, each page's template and date
// badge position, and the shared logo and company-name positions.
//
// A Board is the single mutable aggregate of an editing session. It is
// mutated synchronously by the interaction controller and the auto-layout
// engine and is not safe for concurrent use; persistence happens only at
// explicit save points.
package board

import (
	"github.com/promopress/promopress/pkg/errors"
)

// Canvas and card geometry. Element sizes scale off CardBaseSize; the seed
// grid keeps newly added products from overlapping before the first
// auto-layout pass.
const (
	DefaultCanvasWidth  = 800.0
	DefaultCanvasHeight = 1000.0

	// CardBaseSize is the unscaled diameter of a circular product card.
	CardBaseSize = 150.0

	seedColumns  = 3
	seedSpacingX = 180.0
	seedSpacingY = 200.0
	seedOriginX  = 40.0
	seedOriginY  = 120.0
)

// Point is a 2D position on a page canvas.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Placement is the full visual transform of one product.
type Placement struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	ScaleX   float64 `json:"scale_x"`
	ScaleY   float64 `json:"scale_y"`
	Rotation float64 `json:"rotation"`
	Page     int     `json:"page"`
}

// Size returns the rendered extent of the product card under this placement.
// Scaling is uniform in practice, but width and height are derived
// independently so non-uniform placements loaded from older campaigns still
// render.
func (p Placement) Size() (w, h float64) {
	return CardBaseSize * p.ScaleX, CardBaseSize * p.ScaleY
}

// Patch is a partial placement update. Nil fields are left unchanged.
type Patch struct {
	X        *float64
	Y        *float64
	ScaleX   *float64
	ScaleY   *float64
	Rotation *float64
	Page     *int
}

// PageState is the per-page decoration state: the page's template (empty
// means default background) and its date badge position.
type PageState struct {
	Number     int    `json:"number"`
	TemplateID string `json:"template_id,omitempty"`
	DatePos    Point  `json:"date_pos"`
}

// Board is the placement state of one brochure under edit.
type Board struct {
	canvasW float64
	canvasH float64

	order      []string             // product ids in insertion order
	placements map[string]Placement // product id -> transform
	pages      []PageState

	// Logo and company name share one position across all pages; the date
	// badge is positioned per page.
	logoPos Point
	namePos Point
}

// Option configures a new Board.
type Option func(*Board)

// WithCanvasSize overrides the page canvas dimensions.
func WithCanvasSize(w, h float64) Option {
	return func(b *Board) {
		b.canvasW = w
		b.canvasH = h
	}
}

// WithPages sets the initial page count (minimum 1).
func WithPages(n int) Option {
	return func(b *Board) {
		for len(b.pages) < n {
			b.pages = append(b.pages, PageState{
				Number:  len(b.pages) + 1,
				DatePos: defaultDatePos(b.canvasW),
			})
		}
	}
}

// New creates an empty single-page board.
func New(opts ...Option) *Board {
	b := &Board{
		canvasW:    DefaultCanvasWidth,
		canvasH:    DefaultCanvasHeight,
		placements: make(map[string]Placement),
		logoPos:    Point{X: 30, Y: 20},
		namePos:    Point{X: 220, Y: 30},
	}
	for _, opt := range opts {
		opt(b)
	}
	if len(b.pages) == 0 {
		b.pages = []PageState{{Number: 1, DatePos: defaultDatePos(b.canvasW)}}
	}
	return b
}

func defaultDatePos(canvasW float64) Point {
	return Point{X: canvasW - 190, Y: 20}
}

// CanvasSize returns the page canvas dimensions.
func (b *Board) CanvasSize() (w, h float64) {
	return b.canvasW, b.canvasH
}

// =============================================================================
// Products
// =============================================================================

// AddProduct registers a product and seeds its placement on a fixed
// three-column grid ordered by insertion sequence, on page 1. Adding an id
// that is already present is a no-op.
func (b *Board) AddProduct(id string) {
	if _, ok := b.placements[id]; ok {
		return
	}
	i := len(b.order)
	col := i % seedColumns
	row := i / seedColumns
	b.order = append(b.order, id)
	b.placements[id] = Placement{
		X:      seedOriginX + float64(col)*seedSpacingX,
		Y:      seedOriginY + float64(row)*seedSpacingY,
		ScaleX: 1,
		ScaleY: 1,
		Page:   1,
	}
}

// Get returns a product's placement.
func (b *Board) Get(id string) (Placement, error) {
	p, ok := b.placements[id]
	if !ok {
		return Placement{}, errors.New(errors.ErrCodeProductNotFound, "product %s is not on the board", id)
	}
	return p, nil
}

// Update applies a partial placement patch.
func (b *Board) Update(id string, patch Patch) error {
	p, ok := b.placements[id]
	if !ok {
		return errors.New(errors.ErrCodeProductNotFound, "product %s is not on the board", id)
	}
	if patch.X != nil {
		p.X = *patch.X
	}
	if patch.Y != nil {
		p.Y = *patch.Y
	}
	if patch.ScaleX != nil {
		p.ScaleX = *patch.ScaleX
	}
	if patch.ScaleY != nil {
		p.ScaleY = *patch.ScaleY
	}
	if patch.Rotation != nil {
		p.Rotation = *patch.Rotation
	}
	if patch.Page != nil {
		if *patch.Page < 1 || *patch.Page > len(b.pages) {
			return errors.New(errors.ErrCodeInvalidPage, "page %d out of range 1..%d", *patch.Page, len(b.pages))
		}
		p.Page = *patch.Page
	}
	b.placements[id] = p
	return nil
}

// SetPosition moves a product.
func (b *Board) SetPosition(id string, x, y float64) error {
	return b.Update(id, Patch{X: &x, Y: &y})
}

// SetRotation sets a product's accumulated rotation in degrees.
func (b *Board) SetRotation(id string, deg float64) error {
	return b.Update(id, Patch{Rotation: &deg})
}

// SetScale sets a product's scale on both axes.
func (b *Board) SetScale(id string, sx, sy float64) error {
	return b.Update(id, Patch{ScaleX: &sx, ScaleY: &sy})
}

// RemoveProduct takes a product off the board.
func (b *Board) RemoveProduct(id string) {
	if _, ok := b.placements[id]; !ok {
		return
	}
	delete(b.placements, id)
	for i, pid := range b.order {
		if pid == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

// AssignPage moves a product to another page, leaving its transform
// untouched. This backs the explicit cross-page drop gesture.
func (b *Board) AssignPage(id string, page int) error {
	return b.Update(id, Patch{Page: &page})
}

// Products returns all product ids in stable insertion order.
func (b *Board) Products() []string {
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}

// ProductsOnPage returns the ids placed on a page, in insertion order.
func (b *Board) ProductsOnPage(page int) []string {
	var out []string
	for _, id := range b.order {
		if b.placements[id].Page == page {
			out = append(out, id)
		}
	}
	return out
}

// =============================================================================
// Pages
// =============================================================================

// PageCount returns the number of pages.
func (b *Board) PageCount() int {
	return len(b.pages)
}

// Pages returns a copy of the page states in page order.
func (b *Board) Pages() []PageState {
	out := make([]PageState, len(b.pages))
	copy(out, b.pages)
	return out
}

// Page returns one page's state.
func (b *Board) Page(n int) (PageState, error) {
	if n < 1 || n > len(b.pages) {
		return PageState{}, errors.New(errors.ErrCodeInvalidPage, "page %d out of range 1..%d", n, len(b.pages))
	}
	return b.pages[n-1], nil
}

// AddPage appends a new page and returns its number.
func (b *Board) AddPage() int {
	n := len(b.pages) + 1
	b.pages = append(b.pages, PageState{Number: n, DatePos: defaultDatePos(b.canvasW)})
	return n
}

// RemovePage drops the last page. Placements on it move to the new last
// page; a board always keeps at least one page.
func (b *Board) RemovePage() error {
	if len(b.pages) <= 1 {
		return errors.New(errors.ErrCodeInvalidPage, "a brochure needs at least one page")
	}
	return b.ResizePageSet(len(b.pages) - 1)
}

// ResizePageSet grows or shrinks the page set to n pages. When shrinking,
// every product on a removed page is reassigned to page n so nothing is
// dropped.
func (b *Board) ResizePageSet(n int) error {
	if n < 1 {
		return errors.New(errors.ErrCodeInvalidPage, "a brochure needs at least one page")
	}
	for len(b.pages) < n {
		b.AddPage()
	}
	if n < len(b.pages) {
		b.pages = b.pages[:n]
		for id, p := range b.placements {
			if p.Page > n {
				p.Page = n
				b.placements[id] = p
			}
		}
	}
	return nil
}

// SetTemplate assigns a template to a page. An empty id reverts the page to
// the default background.
func (b *Board) SetTemplate(page int, templateID string) error {
	if page < 1 || page > len(b.pages) {
		return errors.New(errors.ErrCodeInvalidPage, "page %d out of range 1..%d", page, len(b.pages))
	}
	b.pages[page-1].TemplateID = templateID
	return nil
}

// Distribute spreads all products round-robin over pageCount pages by
// insertion index, resizing the page set to match.
func (b *Board) Distribute(pageCount int) error {
	if err := b.ResizePageSet(pageCount); err != nil {
		return err
	}
	for i, id := range b.order {
		p := b.placements[id]
		p.Page = i%pageCount + 1
		b.placements[id] = p
	}
	return nil
}

// =============================================================================
// Decorative elements
// =============================================================================

// LogoPos returns the shared logo position.
func (b *Board) LogoPos() Point { return b.logoPos }

// SetLogoPos moves the logo on every page.
func (b *Board) SetLogoPos(p Point) { b.logoPos = p }

// NamePos returns the shared company-name position.
func (b *Board) NamePos() Point { return b.namePos }

// SetNamePos moves the company name on every page.
func (b *Board) SetNamePos(p Point) { b.namePos = p }

// DatePos returns a page's date badge position.
func (b *Board) DatePos(page int) (Point, error) {
	ps, err := b.Page(page)
	if err != nil {
		return Point{}, err
	}
	return ps.DatePos, nil
}

// SetDatePos moves a page's date badge.
func (b *Board) SetDatePos(page int, p Point) error {
	if page < 1 || page > len(b.pages) {
		return errors.New(errors.ErrCodeInvalidPage, "page %d out of range 1..%d", page, len(b.pages))
	}
	b.pages[page-1].DatePos = p
	return nil
}

// =============================================================================
// Snapshot
// =============================================================================

// Snapshot is an immutable copy of a board, consumed by the layout engine
// and the renderer.
type Snapshot struct {
	CanvasW    float64              `json:"canvas_w"`
	CanvasH    float64              `json:"canvas_h"`
	Order      []string             `json:"order"`
	Placements map[string]Placement `json:"placements"`
	Pages      []PageState          `json:"pages"`
	LogoPos    Point                `json:"logo_pos"`
	NamePos    Point                `json:"name_pos"`
}

// Snapshot copies the board's full state.
func (b *Board) Snapshot() Snapshot {
	s := Snapshot{
		CanvasW:    b.canvasW,
		CanvasH:    b.canvasH,
		Order:      make([]string, len(b.order)),
		Placements: make(map[string]Placement, len(b.placements)),
		Pages:      make([]PageState, len(b.pages)),
		LogoPos:    b.logoPos,
		NamePos:    b.namePos,
	}
	copy(s.Order, b.order)
	copy(s.Pages, b.pages)
	for id, p := range b.placements {
		s.Placements[id] = p
	}
	return s
}

// Restore overwrites the board's state from a snapshot, used when loading a
// saved campaign back into the editor.
func (b *Board) Restore(s Snapshot) {
	b.canvasW = s.CanvasW
	b.canvasH = s.CanvasH
	b.order = make([]string, len(s.Order))
	copy(b.order, s.Order)
	b.placements = make(map[string]Placement, len(s.Placements))
	for id, p := range s.Placements {
		b.placements[id] = p
	}
	b.pages = make([]PageState, len(s.Pages))
	copy(b.pages, s.Pages)
	b.logoPos = s.LogoPos
	b.namePos = s.NamePos
	if len(b.pages) == 0 {
		b.pages = []PageState{{Number: 1, DatePos: defaultDatePos(b.canvasW)}}
	}
}
