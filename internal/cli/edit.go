package cli

import (
	"context"
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/promopress/promopress/pkg/board"
	"github.com/promopress/promopress/pkg/board/session"
	"github.com/promopress/promopress/pkg/catalog"
	"github.com/promopress/promopress/pkg/catalog/store"
	"github.com/promopress/promopress/pkg/layout"
	"github.com/promopress/promopress/pkg/pipeline"
)

// Keyboard gestures translate into pointer sequences on the interaction
// controller, so the terminal editor exercises the same session logic as a
// pointing device would.
const (
	nudgeStep    = 10.0 // canvas units per arrow press
	rotateStep   = 15.0 // degrees per rotate press
	resizeStroke = 15.0 // diagonal pointer travel per resize press
)

// editCommand creates the edit command, a terminal board editor.
func (c *CLI) editCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <campaign-id>",
		Short: "Edit campaign placements in the terminal",
		Long: `Edit campaign placements in the terminal.

Products are moved, rotated, and resized through the same interaction
sessions the API uses. Changes are kept in memory until saved.

Keys:
  tab / shift+tab   select next / previous product
  arrows            move the selected product
  r / R             rotate +/- 15 degrees
  + / -             grow / shrink
  n / p             view next / previous page
  m                 move the selected product to the viewed page
  a                 grid auto-layout
  s                 save to the store
  q                 quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			st, err := c.newStore(cmd)
			if err != nil {
				return err
			}
			defer st.Close()

			campaign, err := st.Campaign(ctx, args[0])
			if err != nil {
				return err
			}
			products := make(map[string]catalog.Product, len(campaign.Products))
			for _, cp := range campaign.Products {
				p, err := st.Product(ctx, cp.ProductID)
				if err != nil {
					continue
				}
				products[cp.ProductID] = p
			}

			b, err := pipeline.BuildBoard(campaign, c.pipelineOptions(args[0]))
			if err != nil {
				return err
			}

			m := newEditModel(ctx, st, campaign, products, b)
			prog := tea.NewProgram(m, tea.WithContext(ctx))
			final, err := prog.Run()
			if err != nil {
				return err
			}
			if fm, ok := final.(editModel); ok && fm.dirty {
				printWarning("Unsaved changes were discarded")
			}
			return nil
		},
	}

	return cmd
}

// =============================================================================
// Model
// =============================================================================

type editModel struct {
	ctx      context.Context
	store    store.Store
	campaign catalog.Campaign
	products map[string]catalog.Product
	board    *board.Board
	ctrl     *session.Controller

	order    []string // campaign product ids, board order
	selected int
	page     int
	dirty    bool
	status   string
}

func newEditModel(ctx context.Context, st store.Store, campaign catalog.Campaign, products map[string]catalog.Product, b *board.Board) editModel {
	return editModel{
		ctx:      ctx,
		store:    st,
		campaign: campaign,
		products: products,
		board:    b,
		ctrl:     session.NewController(b),
		order:    b.Products(),
		page:     1,
		status:   "ready",
	}
}

func (m editModel) Init() tea.Cmd { return nil }

func (m editModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit

	case "tab":
		m.cycleSelection(1)
	case "shift+tab":
		m.cycleSelection(-1)

	case "up":
		m.nudge(0, -nudgeStep)
	case "down":
		m.nudge(0, nudgeStep)
	case "left":
		m.nudge(-nudgeStep, 0)
	case "right":
		m.nudge(nudgeStep, 0)

	case "r":
		m.rotate(rotateStep)
	case "R":
		m.rotate(-rotateStep)

	case "+", "=":
		m.resize(resizeStroke)
	case "-", "_":
		m.resize(-resizeStroke)

	case "n":
		if m.page < m.board.PageCount() {
			m.page++
		}
	case "p":
		if m.page > 1 {
			m.page--
		}

	case "m":
		if id, ok := m.selectedID(); ok {
			if err := m.ctrl.DropOnPage(id, m.page); err != nil {
				m.status = err.Error()
			} else {
				m.dirty = true
				m.status = fmt.Sprintf("moved to page %d", m.page)
			}
		}

	case "a":
		if err := layout.Apply(m.board); err != nil {
			m.status = err.Error()
		} else {
			m.dirty = true
			m.status = "auto-layout applied"
		}

	case "s":
		if err := m.save(); err != nil {
			m.status = "save failed: " + err.Error()
		} else {
			m.dirty = false
			m.status = "saved"
		}
	}

	return m, nil
}

func (m *editModel) selectedID() (string, bool) {
	if len(m.order) == 0 {
		return "", false
	}
	return m.order[m.selected], true
}

func (m *editModel) cycleSelection(dir int) {
	if len(m.order) == 0 {
		return
	}
	m.selected = (m.selected + dir + len(m.order)) % len(m.order)
	if p, err := m.board.Get(m.order[m.selected]); err == nil {
		m.page = p.Page
	}
	m.status = "selected " + m.productName(m.order[m.selected])
}

// nudge drags the selected product by (dx, dy) through a full pointer
// gesture: down at the card center, move, up.
func (m *editModel) nudge(dx, dy float64) {
	id, ok := m.selectedID()
	if !ok {
		return
	}
	p, err := m.board.Get(id)
	if err != nil {
		return
	}
	w, h := p.Size()
	cx, cy := p.X+w/2, p.Y+h/2

	m.ctrl.PointerDown(session.Target{Kind: session.TargetProduct, ProductID: id, Page: p.Page, X: cx, Y: cy})
	m.ctrl.PointerMove(p.Page, cx+dx, cy+dy)
	m.ctrl.PointerUp()
	m.dirty = true
	m.status = fmt.Sprintf("moved %s", m.productName(id))
}

// rotate turns the selected product by deg through the rotate handle.
func (m *editModel) rotate(deg float64) {
	id, ok := m.selectedID()
	if !ok {
		return
	}
	p, err := m.board.Get(id)
	if err != nil {
		return
	}
	w, h := p.Size()
	cx, cy := p.X+w/2, p.Y+h/2

	// Grab the handle straight above the center, then sweep along the
	// circle. The controller accumulates the relative angle.
	m.ctrl.PointerDown(session.Target{Kind: session.TargetRotateHandle, ProductID: id, Page: p.Page, X: cx, Y: cy - 100})
	tx, ty := pointOnCircle(cx, cy, -90+deg)
	m.ctrl.PointerMove(p.Page, tx, ty)
	m.ctrl.PointerUp()
	m.dirty = true
	m.status = fmt.Sprintf("rotated %s", m.productName(id))
}

// resize scales the selected product by dragging the resize handle
// diagonally by stroke in both axes.
func (m *editModel) resize(stroke float64) {
	id, ok := m.selectedID()
	if !ok {
		return
	}
	p, err := m.board.Get(id)
	if err != nil {
		return
	}
	w, h := p.Size()
	hx, hy := p.X+w, p.Y+h

	m.ctrl.PointerDown(session.Target{Kind: session.TargetResizeHandle, ProductID: id, Page: p.Page, X: hx, Y: hy})
	m.ctrl.PointerMove(p.Page, hx+stroke, hy+stroke)
	m.ctrl.PointerUp()
	m.dirty = true
	m.status = fmt.Sprintf("resized %s", m.productName(id))
}

// save copies the board placements back into the campaign and persists it.
func (m *editModel) save() error {
	snap := m.board.Snapshot()
	for i := range m.campaign.Products {
		cp := &m.campaign.Products[i]
		p, ok := snap.Placements[cp.ID]
		if !ok {
			continue
		}
		cp.PositionX, cp.PositionY = p.X, p.Y
		cp.ScaleX, cp.ScaleY = p.ScaleX, p.ScaleY
		cp.Rotation = p.Rotation
		cp.PageNumber = p.Page
	}
	return m.store.PutCampaign(m.ctx, m.campaign)
}

func (m *editModel) productName(campaignProductID string) string {
	for _, cp := range m.campaign.Products {
		if cp.ID == campaignProductID {
			if p, ok := m.products[cp.ProductID]; ok {
				return p.Name
			}
			return cp.ProductID
		}
	}
	return campaignProductID
}

// pointOnCircle returns the point at deg (0 = east, -90 = north) on a
// 100-unit circle around (cx, cy).
func pointOnCircle(cx, cy, deg float64) (float64, float64) {
	rad := deg * math.Pi / 180
	return cx + 100*math.Cos(rad), cy + 100*math.Sin(rad)
}

// =============================================================================
// View
// =============================================================================

func (m editModel) View() string {
	var sb strings.Builder

	sb.WriteString(StyleTitle.Render(m.campaign.Name))
	sb.WriteString(StyleDim.Render(fmt.Sprintf("  page %d/%d", m.page, m.board.PageCount())))
	if m.dirty {
		sb.WriteString("  " + StyleWarning.Render("modified"))
	}
	sb.WriteString("\n\n")

	for i, id := range m.order {
		p, err := m.board.Get(id)
		if err != nil || p.Page != m.page {
			continue
		}
		line := fmt.Sprintf("%-24s pos (%4.0f, %4.0f)  scale %.2f  rot %4.0f",
			m.productName(id), p.X, p.Y, p.ScaleX, catalog.DisplayRotation(p.Rotation))
		if i == m.selected {
			sb.WriteString(StyleHighlight.Render("> " + line))
		} else {
			sb.WriteString("  " + line)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n" + StyleDim.Render(m.status) + "\n")
	sb.WriteString(StyleDim.Render("tab select · arrows move · r/R rotate · +/- resize · n/p page · m move here · a layout · s save · q quit"))
	sb.WriteString("\n")
	return sb.String()
}
