package session

import (
	"math"
	"testing"

	"github.com/promopress/promopress/pkg/board"
)

func newBoard(t *testing.T, ids ...string) *board.Board {
	t.Helper()
	b := board.New(board.WithPages(2))
	for _, id := range ids {
		b.AddProduct(id)
	}
	return b
}

func TestDragClampsToCanvas(t *testing.T) {
	b := newBoard(t, "a")
	c := NewController(b)
	cw, ch := b.CanvasSize()
	size := board.CardBaseSize

	tests := []struct {
		name         string
		px, py       float64
		wantX, wantY float64
	}{
		{"center", 400, 500, 400 - size/2, 500 - size/2},
		{"top-left overshoot", -50, -50, 0, 0},
		{"bottom-right overshoot", cw + 100, ch + 100, cw - size, ch - size},
		{"right edge exact", cw, ch / 2, cw - size, ch/2 - size/2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c.PointerDown(Target{Kind: TargetProduct, ProductID: "a", Page: 1, X: 0, Y: 0})
			c.PointerMove(1, tt.px, tt.py)
			p, _ := b.Get("a")
			if p.X != tt.wantX || p.Y != tt.wantY {
				t.Errorf("pos = (%v,%v), want (%v,%v)", p.X, p.Y, tt.wantX, tt.wantY)
			}
			if p.X+size > cw || p.Y+size > ch || p.X < 0 || p.Y < 0 {
				t.Errorf("card left the canvas: %+v", p)
			}
			c.PointerUp()
		})
	}
}

func TestDragCommitCallback(t *testing.T) {
	b := newBoard(t, "a")
	var commits []struct {
		id   string
		x, y float64
	}
	c := NewController(b, OnCommit(func(id string, x, y float64) {
		commits = append(commits, struct {
			id   string
			x, y float64
		}{id, x, y})
	}))

	c.PointerDown(Target{Kind: TargetProduct, ProductID: "a", Page: 1})
	c.PointerMove(1, 300, 400)
	c.PointerUp()

	if len(commits) != 1 {
		t.Fatalf("commits = %d, want 1", len(commits))
	}
	if commits[0].id != "a" {
		t.Errorf("committed id = %s", commits[0].id)
	}
	p, _ := b.Get("a")
	if commits[0].x != p.X || commits[0].y != p.Y {
		t.Errorf("committed (%v,%v), board has (%v,%v)", commits[0].x, commits[0].y, p.X, p.Y)
	}

	// Rotation sessions never fire the position callback.
	c.PointerDown(Target{Kind: TargetRotateHandle, ProductID: "a", Page: 1, X: 500, Y: 500})
	c.PointerUp()
	if len(commits) != 1 {
		t.Errorf("rotate end fired a commit")
	}
}

func TestRotateAccumulatesRelative(t *testing.T) {
	b := newBoard(t, "a")
	c := NewController(b)

	p, _ := b.Get("a")
	w, h := p.Size()
	cx, cy := p.X+w/2, p.Y+h/2

	at := func(deg float64) (float64, float64) {
		rad := deg * math.Pi / 180
		return cx + 100*math.Cos(rad), cy + 100*math.Sin(rad)
	}

	// Start at 0 degrees, sweep to +15.
	x0, y0 := at(0)
	c.PointerDown(Target{Kind: TargetRotateHandle, ProductID: "a", Page: 1, X: x0, Y: y0})
	x1, y1 := at(15)
	c.PointerMove(1, x1, y1)
	c.PointerUp()

	p, _ = b.Get("a")
	if math.Abs(p.Rotation-15) > 1e-9 {
		t.Fatalf("rotation after first drag = %v, want 15", p.Rotation)
	}

	// Second independent drag of +20 composes to +35, regardless of where
	// the pointer starts.
	x2, y2 := at(90)
	c.PointerDown(Target{Kind: TargetRotateHandle, ProductID: "a", Page: 1, X: x2, Y: y2})
	x3, y3 := at(110)
	c.PointerMove(1, x3, y3)
	c.PointerUp()

	p, _ = b.Get("a")
	if math.Abs(p.Rotation-35) > 1e-9 {
		t.Errorf("rotation after second drag = %v, want 35", p.Rotation)
	}
}

func TestResizeScale(t *testing.T) {
	tests := []struct {
		name       string
		startScale float64
		dx, dy     float64
		want       float64
	}{
		{"diagonal +75 from 1.0", 1.0, 75, 75, 1.5},
		{"horizontal only", 1.0, 150, 0, 1.5},
		{"shrink", 1.0, -60, -60, 0.6},
		{"floor at 0.1", 1.0, -300, -300, 0.1},
		{"from enlarged", 2.0, 30, 30, 2.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBoard(t, "a")
			if err := b.SetScale("a", tt.startScale, tt.startScale); err != nil {
				t.Fatal(err)
			}
			c := NewController(b)
			c.PointerDown(Target{Kind: TargetResizeHandle, ProductID: "a", Page: 1, X: 200, Y: 200})
			c.PointerMove(1, 200+tt.dx, 200+tt.dy)
			c.PointerUp()

			p, _ := b.Get("a")
			if math.Abs(p.ScaleX-tt.want) > 1e-9 {
				t.Errorf("scale = %v, want %v", p.ScaleX, tt.want)
			}
			if p.ScaleX != p.ScaleY {
				t.Errorf("scale not uniform: %v vs %v", p.ScaleX, p.ScaleY)
			}
		})
	}
}

func TestMovesIgnoredAcrossPages(t *testing.T) {
	b := newBoard(t, "a")
	c := NewController(b)
	before, _ := b.Get("a")

	c.PointerDown(Target{Kind: TargetProduct, ProductID: "a", Page: 1})
	c.PointerMove(2, 500, 500) // wrong page
	p, _ := b.Get("a")
	if p != before {
		t.Errorf("move on another page mutated the placement: %+v", p)
	}
	c.PointerMove(1, 500, 500)
	p, _ = b.Get("a")
	if p == before {
		t.Error("move on the session page had no effect")
	}
}

func TestPointerDownCancelsPriorSession(t *testing.T) {
	b := newBoard(t, "a", "b")
	var commits int
	c := NewController(b, OnCommit(func(string, float64, float64) { commits++ }))

	c.PointerDown(Target{Kind: TargetProduct, ProductID: "a", Page: 1})
	if c.Active() != DragProduct {
		t.Fatalf("Active = %v", c.Active())
	}
	// Starting a resize on b must end (and commit) the drag of a.
	c.PointerDown(Target{Kind: TargetResizeHandle, ProductID: "b", Page: 1, X: 0, Y: 0})
	if c.Active() != ResizeProduct {
		t.Errorf("Active = %v", c.Active())
	}
	if commits != 1 {
		t.Errorf("commits = %d, want 1", commits)
	}
	if id, ok := c.ActiveProduct(); !ok || id != "b" {
		t.Errorf("ActiveProduct = %q, %v", id, ok)
	}
}

func TestPointerLeaveEndsSession(t *testing.T) {
	b := newBoard(t, "a")
	c := NewController(b)
	c.PointerDown(Target{Kind: TargetProduct, ProductID: "a", Page: 1})
	c.PointerLeave()
	if c.Active() != Idle {
		t.Errorf("Active = %v after leave", c.Active())
	}
	// Moves after the session ended are ignored.
	before, _ := b.Get("a")
	c.PointerMove(1, 999, 999)
	after, _ := b.Get("a")
	if before != after {
		t.Error("move after session end mutated the placement")
	}
}

func TestDropOnPageKeepsTransform(t *testing.T) {
	b := newBoard(t, "a")
	c := NewController(b)
	if err := b.SetRotation("a", 25); err != nil {
		t.Fatal(err)
	}
	if err := c.DropOnPage("a", 2); err != nil {
		t.Fatal(err)
	}
	p, _ := b.Get("a")
	if p.Page != 2 || p.Rotation != 25 {
		t.Errorf("placement after drop = %+v", p)
	}
	if err := c.DropOnPage("a", 9); err == nil {
		t.Error("drop on missing page should fail")
	}
}

func TestDragDateBadgeKeepsGrabOffset(t *testing.T) {
	b := newBoard(t, "a")
	c := NewController(b)
	start, _ := b.DatePos(1)

	// Grab 10px inside the badge and move the pointer by (30, 40).
	c.PointerDown(Target{Kind: TargetDateBadge, Page: 1, X: start.X + 10, Y: start.Y + 10})
	c.PointerMove(1, start.X+40, start.Y+50)
	c.PointerUp()

	got, _ := b.DatePos(1)
	if got.X != start.X+30 || got.Y != start.Y+40 {
		t.Errorf("badge at %+v, want (%v,%v)", got, start.X+30, start.Y+40)
	}
}

func TestDragElementShared(t *testing.T) {
	b := newBoard(t, "a")
	c := NewController(b)

	c.PointerDown(Target{Kind: TargetElement, Element: ElementLogo, Page: 1, X: 0, Y: 0})
	c.PointerMove(1, 400, 300)
	c.PointerUp()

	got := b.LogoPos()
	if got.X != 400-logoWidth/2 || got.Y != 300-logoHeight/2 {
		t.Errorf("logo pos = %+v", got)
	}
}
