package render

import (
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Font faces are built from the embedded Go fonts so rendering needs no
// system font lookup. Faces are cached per size; truetype faces are not
// safe for concurrent glyph rasterization, so the renderer holds the lock
// for the duration of a page.
var (
	fontMu   sync.Mutex
	regular  *truetype.Font
	bold     *truetype.Font
	faceInit sync.Once
	faces    map[faceKey]font.Face
)

type faceKey struct {
	bold bool
	size float64
}

func loadFonts() {
	faceInit.Do(func() {
		faces = make(map[faceKey]font.Face)
		regular, _ = truetype.Parse(goregular.TTF)
		bold, _ = truetype.Parse(gobold.TTF)
	})
}

// face returns a cached font face at the given point size.
func face(useBold bool, size float64) font.Face {
	loadFonts()
	key := faceKey{bold: useBold, size: size}
	if f, ok := faces[key]; ok {
		return f
	}
	src := regular
	if useBold {
		src = bold
	}
	f := truetype.NewFace(src, &truetype.Options{Size: size, DPI: 72})
	faces[key] = f
	return f
}
