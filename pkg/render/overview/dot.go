// Package overview renders a campaign's structure (campaign, pages,
// products) as a node-link diagram via Graphviz, for quick inspection of
// how products are distributed before exporting.
package overview

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/promopress/promopress/pkg/board"
	"github.com/promopress/promopress/pkg/catalog"
)

// Options configures overview rendering.
type Options struct {
	// Detailed includes placement coordinates and discount info in product
	// labels. When false, only names are shown.
	Detailed bool
}

// ToDOT converts a campaign and its board snapshot to Graphviz DOT. The
// resulting string can be rendered with [RenderSVG] or [RenderPNG].
func ToDOT(c catalog.Campaign, products map[string]catalog.Product, snap board.Snapshot, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph campaign {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	root := "campaign"
	fmt.Fprintf(&buf, "  %q [label=%q, fillcolor=lightyellow];\n", root, campaignLabel(c))

	for _, page := range snap.Pages {
		pageID := fmt.Sprintf("page-%d", page.Number)
		fmt.Fprintf(&buf, "  %q [label=%q, fillcolor=lightblue];\n", pageID, pageLabel(page))
		fmt.Fprintf(&buf, "  %q -> %q;\n", root, pageID)
	}

	buf.WriteString("\n")
	for _, id := range snap.Order {
		p, ok := snap.Placements[id]
		if !ok {
			continue
		}
		label := productLabel(id, c, products, p, opts.Detailed)
		fmt.Fprintf(&buf, "  %q [label=%q];\n", "product-"+id, label)
		fmt.Fprintf(&buf, "  %q -> %q;\n", fmt.Sprintf("page-%d", p.Page), "product-"+id)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func campaignLabel(c catalog.Campaign) string {
	name := c.Name
	if name == "" {
		name = "campaign"
	}
	return fmt.Sprintf("%s\n%d pages", name, c.PageCount)
}

func pageLabel(page board.PageState) string {
	if page.TemplateID == "" {
		return fmt.Sprintf("page %d", page.Number)
	}
	return fmt.Sprintf("page %d\ntemplate %s", page.Number, page.TemplateID)
}

func productLabel(id string, c catalog.Campaign, products map[string]catalog.Product, p board.Placement, detailed bool) string {
	name := id
	var discount float64
	for _, cp := range c.Products {
		if cp.ID == id || cp.ProductID == id {
			discount = cp.DiscountPercent
			if prod, ok := products[cp.ProductID]; ok {
				name = prod.Name
			}
			break
		}
	}
	if !detailed {
		return name
	}

	parts := []string{fmt.Sprintf("pos: %.0f,%.0f", p.X, p.Y)}
	if p.Rotation != 0 {
		parts = append(parts, fmt.Sprintf("rot: %.0f°", p.Rotation))
	}
	if p.ScaleX != 1 {
		parts = append(parts, fmt.Sprintf("scale: %.2f", p.ScaleX))
	}
	if discount > 0 {
		parts = append(parts, fmt.Sprintf("-%.0f%%", discount))
	}
	return name + "\n" + strings.Join(parts, "\n")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	return renderFormat(ctx, dot, graphviz.SVG)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderFormat(ctx, dot, graphviz.PNG)
}

func renderFormat(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
