package qr

import (
	"image"
	"image/color"
	"image/draw"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"
)

// solidLogo returns a w x h logo filled with c.
func solidLogo(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

// darkCount returns the number of dark cells in m.
func darkCount(m *Matrix) int {
	n := 0
	for _, b := range m.bits {
		if b {
			n++
		}
	}
	return n
}

// newTestGenerator builds a Generator that logs nowhere.
func newTestGenerator(t *testing.T, opts ...Option) *Generator {
	t.Helper()
	opts = append([]Option{WithLogger(log.New(io.Discard))}, opts...)
	g, err := New(opts...)
	require.NoError(t, err)
	return g
}

// newTestRenderer builds a Renderer with default settings.
func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer()
	require.NoError(t, err)
	return r
}

// isPaperOrInk reports whether c is pure white or pure black.
func isPaperOrInk(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return (r == 0xffff && g == 0xffff && b == 0xffff) || (r == 0 && g == 0 && b == 0)
}
