package board

import (
	"testing"

	"github.com/promopress/promopress/pkg/errors"
)

func TestAddProductSeedsThreeColumnGrid(t *testing.T) {
	b := New()
	ids := []string{"a", "b", "c", "d", "e"}
	for _, id := range ids {
		b.AddProduct(id)
	}

	tests := []struct {
		id       string
		col, row int
	}{
		{"a", 0, 0},
		{"b", 1, 0},
		{"c", 2, 0},
		{"d", 0, 1},
		{"e", 1, 1},
	}
	for _, tt := range tests {
		p, err := b.Get(tt.id)
		if err != nil {
			t.Fatalf("Get(%s): %v", tt.id, err)
		}
		wantX := seedOriginX + float64(tt.col)*seedSpacingX
		wantY := seedOriginY + float64(tt.row)*seedSpacingY
		if p.X != wantX || p.Y != wantY {
			t.Errorf("%s at (%v,%v), want (%v,%v)", tt.id, p.X, p.Y, wantX, wantY)
		}
		if p.ScaleX != 1 || p.ScaleY != 1 || p.Rotation != 0 || p.Page != 1 {
			t.Errorf("%s transform = %+v", tt.id, p)
		}
	}
}

func TestAddProductIdempotent(t *testing.T) {
	b := New()
	b.AddProduct("a")
	if err := b.SetPosition("a", 5, 7); err != nil {
		t.Fatal(err)
	}
	b.AddProduct("a")
	p, _ := b.Get("a")
	if p.X != 5 || p.Y != 7 {
		t.Errorf("re-adding moved the product: %+v", p)
	}
	if len(b.Products()) != 1 {
		t.Errorf("order = %v", b.Products())
	}
}

func TestUpdatePatch(t *testing.T) {
	b := New()
	b.AddProduct("a")

	rot := 45.0
	if err := b.Update("a", Patch{Rotation: &rot}); err != nil {
		t.Fatal(err)
	}
	p, _ := b.Get("a")
	if p.Rotation != 45 {
		t.Errorf("Rotation = %v", p.Rotation)
	}
	if p.ScaleX != 1 {
		t.Errorf("patch touched ScaleX: %v", p.ScaleX)
	}

	badPage := 9
	err := b.Update("a", Patch{Page: &badPage})
	if errors.GetCode(err) != errors.ErrCodeInvalidPage {
		t.Errorf("page out of range: err = %v", err)
	}

	err = b.Update("ghost", Patch{Rotation: &rot})
	if errors.GetCode(err) != errors.ErrCodeProductNotFound {
		t.Errorf("unknown product: err = %v", err)
	}
}

func TestRemoveProductKeepsOrder(t *testing.T) {
	b := New()
	for _, id := range []string{"a", "b", "c"} {
		b.AddProduct(id)
	}
	b.RemoveProduct("b")
	got := b.Products()
	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Errorf("order after remove = %v", got)
	}
	b.RemoveProduct("b") // no-op
}

func TestDistributeRoundRobin(t *testing.T) {
	b := New()
	ids := []string{"p0", "p1", "p2", "p3", "p4", "p5", "p6"}
	for _, id := range ids {
		b.AddProduct(id)
	}
	if err := b.Distribute(3); err != nil {
		t.Fatal(err)
	}
	if b.PageCount() != 3 {
		t.Fatalf("PageCount = %d", b.PageCount())
	}
	wantPages := []int{1, 2, 3, 1, 2, 3, 1}
	for i, id := range ids {
		p, _ := b.Get(id)
		if p.Page != wantPages[i] {
			t.Errorf("%s on page %d, want %d", id, p.Page, wantPages[i])
		}
	}
	if got := b.ProductsOnPage(1); len(got) != 3 {
		t.Errorf("page 1 holds %v", got)
	}
}

func TestResizePageSetShrinkReassigns(t *testing.T) {
	b := New(WithPages(4))
	for _, id := range []string{"a", "b", "c", "d"} {
		b.AddProduct(id)
	}
	must(t, b.AssignPage("a", 1))
	must(t, b.AssignPage("b", 3))
	must(t, b.AssignPage("c", 4))
	must(t, b.AssignPage("d", 4))

	if err := b.ResizePageSet(2); err != nil {
		t.Fatal(err)
	}
	if b.PageCount() != 2 {
		t.Fatalf("PageCount = %d", b.PageCount())
	}
	wantPages := map[string]int{"a": 1, "b": 2, "c": 2, "d": 2}
	for id, want := range wantPages {
		p, _ := b.Get(id)
		if p.Page != want {
			t.Errorf("%s on page %d, want %d", id, p.Page, want)
		}
	}
}

func TestResizePageSetShrinkKeepsSurvivingDecorations(t *testing.T) {
	b := New(WithPages(3))
	must(t, b.SetDatePos(2, Point{X: 50, Y: 60}))
	must(t, b.SetDatePos(3, Point{X: 500, Y: 700}))
	must(t, b.SetTemplate(2, "t2"))
	must(t, b.SetTemplate(3, "t3"))

	if err := b.ResizePageSet(2); err != nil {
		t.Fatal(err)
	}

	// The surviving last page keeps its own badge and template; the removed
	// page's decorations go with it.
	pos, err := b.DatePos(2)
	if err != nil {
		t.Fatal(err)
	}
	if pos != (Point{X: 50, Y: 60}) {
		t.Errorf("page 2 badge = %+v, want its own (50, 60)", pos)
	}
	page, err := b.Page(2)
	if err != nil {
		t.Fatal(err)
	}
	if page.TemplateID != "t2" {
		t.Errorf("page 2 template = %q, want t2", page.TemplateID)
	}
	if _, err := b.DatePos(3); errors.GetCode(err) != errors.ErrCodeInvalidPage {
		t.Errorf("page 3 badge after shrink: err = %v, want invalid page", err)
	}
}

func TestRemovePageFloor(t *testing.T) {
	b := New()
	if err := b.RemovePage(); errors.GetCode(err) != errors.ErrCodeInvalidPage {
		t.Errorf("removing the only page: err = %v", err)
	}
	b.AddPage()
	if err := b.RemovePage(); err != nil {
		t.Fatal(err)
	}
	if b.PageCount() != 1 {
		t.Errorf("PageCount = %d", b.PageCount())
	}
}

func TestAssignPageKeepsTransform(t *testing.T) {
	b := New(WithPages(2))
	b.AddProduct("a")
	must(t, b.SetRotation("a", 30))
	must(t, b.SetScale("a", 1.4, 1.4))
	must(t, b.AssignPage("a", 2))

	p, _ := b.Get("a")
	if p.Page != 2 || p.Rotation != 30 || p.ScaleX != 1.4 {
		t.Errorf("transform after page move = %+v", p)
	}
}

func TestDatePosPerPage(t *testing.T) {
	b := New(WithPages(2))
	must(t, b.SetDatePos(2, Point{X: 10, Y: 12}))
	p1, _ := b.DatePos(1)
	p2, _ := b.DatePos(2)
	if p2 != (Point{X: 10, Y: 12}) {
		t.Errorf("page 2 date pos = %+v", p2)
	}
	if p1 == p2 {
		t.Error("date positions should be independent per page")
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	b := New(WithPages(2), WithCanvasSize(640, 480))
	b.AddProduct("a")
	b.AddProduct("b")
	must(t, b.AssignPage("b", 2))
	must(t, b.SetTemplate(2, "t9"))
	b.SetLogoPos(Point{X: 1, Y: 2})

	s := b.Snapshot()

	// Mutating the original must not leak into the snapshot.
	b.RemoveProduct("a")
	if len(s.Order) != 2 {
		t.Fatalf("snapshot order = %v", s.Order)
	}

	restored := New()
	restored.Restore(s)
	if restored.PageCount() != 2 {
		t.Errorf("PageCount = %d", restored.PageCount())
	}
	if w, h := restored.CanvasSize(); w != 640 || h != 480 {
		t.Errorf("canvas = %vx%v", w, h)
	}
	ps, _ := restored.Page(2)
	if ps.TemplateID != "t9" {
		t.Errorf("template = %q", ps.TemplateID)
	}
	if restored.LogoPos() != (Point{X: 1, Y: 2}) {
		t.Errorf("logo pos = %+v", restored.LogoPos())
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}
