// Package layout implements the deterministic grid auto-layout: it repacks
// every page's products into a centered grid derived purely from page
// membership, ignoring manual placements.
package layout

import (
	"math"

	"github.com/promopress/promopress/pkg/board"
)

// Margins carving the usable area out of the page canvas. The header margin
// leaves room for the logo, company name, and date badge decorations.
const (
	HeaderMargin = 110.0
	SideMargin   = 30.0
	BottomMargin = 30.0

	maxColumns = 3
)

// Grid computes fresh placements for every product in the snapshot. Per
// page with k products: cols = min(3, ceil(sqrt(k))), rows = ceil(k/cols),
// the usable area is split into a cols x rows grid, and products are placed
// at cell centers in the snapshot's stable order. Scale resets to 1.0;
// rotation and page assignment are untouched.
//
// The result depends only on page membership and order, so running it twice
// on unchanged membership yields identical placements.
func Grid(s board.Snapshot) map[string]board.Placement {
	out := make(map[string]board.Placement, len(s.Placements))

	usableW := s.CanvasW - 2*SideMargin
	usableH := s.CanvasH - HeaderMargin - BottomMargin

	byPage := make(map[int][]string)
	for _, id := range s.Order {
		p, ok := s.Placements[id]
		if !ok {
			continue
		}
		byPage[p.Page] = append(byPage[p.Page], id)
	}

	for page, ids := range byPage {
		k := len(ids)
		cols := columnsFor(k)
		rows := (k + cols - 1) / cols

		cellW := usableW / float64(cols)
		cellH := usableH / float64(rows)

		for i, id := range ids {
			col := i % cols
			row := i / cols
			cx := SideMargin + float64(col)*cellW + cellW/2
			cy := HeaderMargin + float64(row)*cellH + cellH/2

			prev := s.Placements[id]
			out[id] = board.Placement{
				X:        cx - board.CardBaseSize/2,
				Y:        cy - board.CardBaseSize/2,
				ScaleX:   1,
				ScaleY:   1,
				Rotation: prev.Rotation,
				Page:     page,
			}
		}
	}
	return out
}

// Apply runs Grid over the board's current state and writes the result back.
func Apply(b *board.Board) error {
	for id, p := range Grid(b.Snapshot()) {
		if err := b.Update(id, board.Patch{
			X: &p.X, Y: &p.Y,
			ScaleX: &p.ScaleX, ScaleY: &p.ScaleY,
		}); err != nil {
			return err
		}
	}
	return nil
}

func columnsFor(k int) int {
	if k <= 1 {
		return 1
	}
	cols := int(math.Ceil(math.Sqrt(float64(k))))
	if cols > maxColumns {
		cols = maxColumns
	}
	return cols
}
