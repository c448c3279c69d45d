package qr

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	// MaxCanvasSize bounds the canvas side length so a single request cannot
	// exhaust memory.
	MaxCanvasSize = 8192

	// DefaultFontSize is the caption size in points at 72 DPI.
	DefaultFontSize = 18

	// captionInset is the caption's distance from the left edge on canvases
	// at least 300 pixels wide; smaller canvases use a tenth of their width.
	captionInset = 30
)

// Default colours: black modules on white paper, caption in steel blue.
var (
	DefaultForeground = color.RGBA{0, 0, 0, 255}
	DefaultBackground = color.RGBA{255, 255, 255, 255}
	DefaultAccent     = color.RGBA{51, 102, 153, 255}
)

// Renderer rasterizes a module matrix onto a square canvas and writes an
// optional caption below the symbol.
//
// A Renderer may be shared between goroutines.
type Renderer struct {
	foreground color.RGBA
	background color.RGBA
	accent     color.RGBA
	fontSize   float64

	mu   sync.Mutex // guards face; opentype faces are not goroutine safe
	face font.Face

	lineHeight int
	ascent     int
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithColors sets the module, paper and caption colours.
func WithColors(foreground, background, accent color.Color) RendererOption {
	return func(r *Renderer) {
		r.foreground = color.RGBAModel.Convert(foreground).(color.RGBA)
		r.background = color.RGBAModel.Convert(background).(color.RGBA)
		r.accent = color.RGBAModel.Convert(accent).(color.RGBA)
	}
}

// WithFontSize sets the caption size in points.
func WithFontSize(size float64) RendererOption {
	return func(r *Renderer) {
		r.fontSize = size
	}
}

// NewRenderer builds a Renderer using the Go Regular font for captions.
func NewRenderer(opts ...RendererOption) (*Renderer, error) {
	r := &Renderer{
		foreground: DefaultForeground,
		background: DefaultBackground,
		accent:     DefaultAccent,
		fontSize:   DefaultFontSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.fontSize <= 0 {
		return nil, fmt.Errorf("font size must be positive, got %v", r.fontSize)
	}

	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse caption font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    r.fontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create caption face (size=%.1f): %w", r.fontSize, err)
	}
	r.face = face

	m := face.Metrics()
	r.lineHeight = m.Height.Ceil()
	r.ascent = m.Ascent.Ceil()
	return r, nil
}

// Background returns the paper colour.
func (r *Renderer) Background() color.RGBA {
	return r.background
}

// CaptionMargin returns the height of the band, measured up from the canvas
// bottom, that a caption occupies. The baseline sits one font height above
// the bottom edge and glyphs rise one ascent above the baseline.
func (r *Renderer) CaptionMargin() int {
	return r.lineHeight + r.ascent
}

// CaptionFits reports whether a caption can be drawn on a canvas of
// canvasSize pixels without touching a centred symbol of side pixels.
func (r *Renderer) CaptionFits(side, canvasSize int) bool {
	bottom := (canvasSize-side)/2 + side
	return canvasSize-r.CaptionMargin() >= bottom
}

// Render paints m onto a new canvasSize x canvasSize canvas, one pixel per
// module, centred on both axes. The module grid is never rescaled. A
// non-empty caption is drawn near the bottom-left corner in the accent
// colour, but only when it fits below the symbol; otherwise it is skipped.
//
// Render fails with ErrAllocationFailed for canvases outside
// 1..MaxCanvasSize and with ErrCanvasTooSmall when m is larger than the canvas.
func (r *Renderer) Render(m *Matrix, canvasSize int, caption string) (*image.RGBA, error) {
	if canvasSize <= 0 || canvasSize > MaxCanvasSize {
		return nil, fmt.Errorf("%w: canvas size %d outside 1..%d", ErrAllocationFailed, canvasSize, MaxCanvasSize)
	}
	side := m.Size()
	if side > canvasSize {
		return nil, &canvasTooSmall{side: side, canvas: canvasSize}
	}

	canvas := image.NewRGBA(image.Rect(0, 0, canvasSize, canvasSize))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(r.background), image.Point{}, draw.Src)

	off := (canvasSize - side) / 2
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			if m.Dark(x, y) {
				canvas.SetRGBA(off+x, off+y, r.foreground)
			}
		}
	}

	if caption != "" && r.CaptionFits(side, canvasSize) {
		r.drawCaption(canvas, caption)
	}
	return canvas, nil
}

func (r *Renderer) drawCaption(canvas *image.RGBA, caption string) {
	size := canvas.Bounds().Dx()
	x := captionInset
	if size/10 < x {
		x = size / 10
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	d := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(r.accent),
		Face: r.face,
		Dot:  fixed.P(x, size-r.lineHeight),
	}
	d.DrawString(caption)
}
