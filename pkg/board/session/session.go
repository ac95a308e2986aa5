// Package session implements the pointer-interaction state machine of the
// brochure editor: dragging, rotating, and resizing product cards, and
// dragging decorative elements, expressed as a tagged union over the active
// manipulation.
//
// At most one session is active at a time. Pointer-down starts a session
// (cancelling any prior one), pointer-move updates it, and pointer-up or
// leaving the canvas ends it. All transitions are synchronous; the
// controller mutates its board directly as the pointer moves.
package session

import (
	"math"

	"github.com/promopress/promopress/pkg/board"
)

// Kind identifies the active manipulation.
type Kind int

const (
	Idle Kind = iota
	DragElement
	DragProduct
	RotateProduct
	ResizeProduct
	DragDateBadge
)

// String returns a short name for logging.
func (k Kind) String() string {
	switch k {
	case Idle:
		return "idle"
	case DragElement:
		return "drag-element"
	case DragProduct:
		return "drag-product"
	case RotateProduct:
		return "rotate-product"
	case ResizeProduct:
		return "resize-product"
	case DragDateBadge:
		return "drag-date-badge"
	}
	return "unknown"
}

// ElementKind names a shared decorative element.
type ElementKind int

const (
	ElementLogo ElementKind = iota
	ElementCompanyName
)

// Decorative element extents, matching the rendered sizes.
const (
	logoWidth   = 120.0
	logoHeight  = 70.0
	nameWidth   = 240.0
	nameHeight  = 40.0
	badgeWidth  = 170.0
	badgeHeight = 46.0
)

// resizeDivisor converts accumulated pointer travel into scale delta, and
// minScale stops a card from collapsing to nothing.
const (
	resizeDivisor = 150.0
	minScale      = 0.1
)

// TargetKind identifies what the pointer went down on.
type TargetKind int

const (
	TargetProduct TargetKind = iota
	TargetRotateHandle
	TargetResizeHandle
	TargetElement
	TargetDateBadge
)

// Target describes a pointer-down: what was hit, on which page, and where.
type Target struct {
	Kind      TargetKind
	ProductID string      // product card or its handles
	Element   ElementKind // logo / company name
	Page      int
	X, Y      float64
}

// Controller drives a board from pointer events.
type Controller struct {
	board *board.Board

	kind Kind
	page int // page the session started on; moves from other pages are ignored

	productID string
	element   ElementKind

	lastAngle  float64     // rotate: previous pointer angle in degrees
	startX     float64     // resize: pointer-down position
	startY     float64     //
	startScale float64     // resize: scale at pointer-down
	dragOffset board.Point // date badge: pointer offset inside the badge

	// onCommit fires when a product drag ends, with the final position.
	onCommit func(productID string, x, y float64)
}

// Option configures a Controller.
type Option func(*Controller)

// OnCommit registers the position-update callback invoked when a product
// drag session ends.
func OnCommit(fn func(productID string, x, y float64)) Option {
	return func(c *Controller) { c.onCommit = fn }
}

// NewController creates an idle controller over a board.
func NewController(b *board.Board, opts ...Option) *Controller {
	c := &Controller{board: b, kind: Idle}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Active returns the current session kind.
func (c *Controller) Active() Kind { return c.kind }

// ActiveProduct returns the product id of the current session, if it
// manipulates a product.
func (c *Controller) ActiveProduct() (string, bool) {
	switch c.kind {
	case DragProduct, RotateProduct, ResizeProduct:
		return c.productID, true
	}
	return "", false
}

// PointerDown starts a new session. Any prior session is ended first, so a
// stray down event can never leave two manipulations active.
func (c *Controller) PointerDown(t Target) {
	c.end()

	switch t.Kind {
	case TargetProduct:
		if _, err := c.board.Get(t.ProductID); err != nil {
			return
		}
		c.kind = DragProduct
		c.productID = t.ProductID

	case TargetRotateHandle:
		p, err := c.board.Get(t.ProductID)
		if err != nil {
			return
		}
		c.kind = RotateProduct
		c.productID = t.ProductID
		cx, cy := placementCenter(p)
		c.lastAngle = pointerAngle(t.X, t.Y, cx, cy)

	case TargetResizeHandle:
		p, err := c.board.Get(t.ProductID)
		if err != nil {
			return
		}
		c.kind = ResizeProduct
		c.productID = t.ProductID
		c.startX, c.startY = t.X, t.Y
		c.startScale = p.ScaleX

	case TargetElement:
		c.kind = DragElement
		c.element = t.Element

	case TargetDateBadge:
		pos, err := c.board.DatePos(t.Page)
		if err != nil {
			return
		}
		c.kind = DragDateBadge
		c.dragOffset = board.Point{X: t.X - pos.X, Y: t.Y - pos.Y}

	default:
		return
	}
	c.page = t.Page
}

// PointerMove advances the active session. Moves on a page other than the
// one the session started on are ignored: position sessions never cross
// pages (cross-page moves go through DropOnPage instead).
func (c *Controller) PointerMove(page int, x, y float64) {
	if c.kind == Idle || page != c.page {
		return
	}

	switch c.kind {
	case DragProduct:
		p, err := c.board.Get(c.productID)
		if err != nil {
			c.kind = Idle
			return
		}
		w, h := p.Size()
		nx, ny := c.clampToCanvas(x-w/2, y-h/2, w, h)
		_ = c.board.SetPosition(c.productID, nx, ny)

	case RotateProduct:
		p, err := c.board.Get(c.productID)
		if err != nil {
			c.kind = Idle
			return
		}
		cx, cy := placementCenter(p)
		angle := pointerAngle(x, y, cx, cy)
		// Relative accumulation: partial drags compose instead of the
		// rotation snapping to the absolute pointer angle.
		_ = c.board.SetRotation(c.productID, p.Rotation+(angle-c.lastAngle))
		c.lastAngle = angle

	case ResizeProduct:
		delta := ((x - c.startX) + (y - c.startY)) / 2
		scale := math.Max(minScale, c.startScale+delta/resizeDivisor)
		_ = c.board.SetScale(c.productID, scale, scale)

	case DragElement:
		var w, h float64
		switch c.element {
		case ElementLogo:
			w, h = logoWidth, logoHeight
		case ElementCompanyName:
			w, h = nameWidth, nameHeight
		}
		nx, ny := c.clampToCanvas(x-w/2, y-h/2, w, h)
		pos := board.Point{X: nx, Y: ny}
		if c.element == ElementLogo {
			c.board.SetLogoPos(pos)
		} else {
			c.board.SetNamePos(pos)
		}

	case DragDateBadge:
		nx, ny := c.clampToCanvas(x-c.dragOffset.X, y-c.dragOffset.Y, badgeWidth, badgeHeight)
		_ = c.board.SetDatePos(c.page, board.Point{X: nx, Y: ny})
	}
}

// PointerUp ends the active session.
func (c *Controller) PointerUp() {
	c.end()
}

// PointerLeave ends the active session when the pointer exits the canvas.
func (c *Controller) PointerLeave() {
	c.end()
}

// DropOnPage handles the explicit cross-page drop gesture: the product moves
// to the target page with its transform untouched. It is independent of any
// position session.
func (c *Controller) DropOnPage(productID string, page int) error {
	return c.board.AssignPage(productID, page)
}

// end returns to Idle, committing a product drag's final position.
func (c *Controller) end() {
	if c.kind == DragProduct && c.onCommit != nil {
		if p, err := c.board.Get(c.productID); err == nil {
			c.onCommit(c.productID, p.X, p.Y)
		}
	}
	c.kind = Idle
	c.productID = ""
}

// clampToCanvas keeps an element of the given size fully on the page.
func (c *Controller) clampToCanvas(x, y, w, h float64) (float64, float64) {
	cw, ch := c.board.CanvasSize()
	return clamp(x, 0, cw-w), clamp(y, 0, ch-h)
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	return math.Min(math.Max(v, lo), hi)
}

func placementCenter(p board.Placement) (cx, cy float64) {
	w, h := p.Size()
	return p.X + w/2, p.Y + h/2
}

// pointerAngle is the pointer's angle about a center, in degrees.
func pointerAngle(px, py, cx, cy float64) float64 {
	return math.Atan2(py-cy, px-cx) * 180 / math.Pi
}
