package render

import (
	"hash/fnv"
	"image/color"
)

// Page palette.
var (
	colorPageBackground = color.RGBA{R: 0xFA, G: 0xFA, B: 0xF7, A: 0xFF}
	colorCardFill       = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	colorCardBorder     = color.RGBA{R: 0xD9, G: 0x3B, B: 0x3B, A: 0xFF}
	colorText           = color.RGBA{R: 0x22, G: 0x22, B: 0x26, A: 0xFF}
	colorOldPrice       = color.RGBA{R: 0x8A, G: 0x8A, B: 0x8E, A: 0xFF}
	colorNewPrice       = color.RGBA{R: 0xD9, G: 0x3B, B: 0x3B, A: 0xFF}
	colorBadgeFill      = color.RGBA{R: 0xD9, G: 0x3B, B: 0x3B, A: 0xFF}
	colorBadgeText      = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	colorHandle         = color.RGBA{R: 0x3B, G: 0x82, B: 0xD9, A: 0xFF}
	colorSelection      = color.RGBA{R: 0x3B, G: 0x82, B: 0xD9, A: 0xB0}
)

// templateTint derives a stable pastel wash for a template reference. Pages
// with no template keep the plain background.
func templateTint(templateID string) color.RGBA {
	if templateID == "" {
		return colorPageBackground
	}
	h := fnv.New32a()
	h.Write([]byte(templateID))
	v := h.Sum32()
	// Keep channels high so card text stays readable on the wash.
	r := uint8(200 + v%40)
	g := uint8(200 + (v>>8)%40)
	b := uint8(200 + (v>>16)%40)
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}
}
