package qr

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/ironsheep/qr-logo/internal/imaging"
)

// DefaultMaxLogoRatio caps the logo width at 30% of the canvas width, which
// error-correction level H can still recover from.
const DefaultMaxLogoRatio = 0.3

// Compositor scales a logo under a width cap and pastes it over the centre
// of a canvas.
type Compositor struct {
	// MaxRatio is the largest allowed logo width as a fraction of the canvas
	// width. Zero means DefaultMaxLogoRatio.
	MaxRatio float64

	// Background fills transparent logo pixels before the paste, so the
	// pasted rectangle is always opaque. Nil means white.
	Background color.Color
}

// Placement describes where a logo landed on the canvas.
type Placement struct {
	Rect     image.Rectangle `json:"-"`
	X        int             `json:"x"`
	Y        int             `json:"y"`
	Width    int             `json:"width"`
	Height   int             `json:"height"`
	Scaled   bool            `json:"scaled"`
	Original image.Point     `json:"-"`
}

func (c Compositor) maxRatio() float64 {
	if c.MaxRatio <= 0 {
		return DefaultMaxLogoRatio
	}
	return c.MaxRatio
}

// LogoSize returns the size a logoW x logoH logo is placed at on a canvas
// canvasW pixels wide, and whether it had to be scaled down.
//
// The width ratio is computed in floating point. A logo wider than the cap
// is scaled so its width is exactly floor(canvasW*MaxRatio), keeping its
// aspect ratio; anything narrower keeps its native size.
func (c Compositor) LogoSize(canvasW, logoW, logoH int) (w, h int, scaled bool) {
	if canvasW <= 0 || logoW <= 0 || logoH <= 0 {
		return logoW, logoH, false
	}
	limit := c.maxRatio()
	if float64(logoW)/float64(canvasW) <= limit {
		return logoW, logoH, false
	}

	// The epsilon absorbs products like 300*0.3 landing a hair under 90.
	w = int(math.Floor(float64(canvasW)*limit + 1e-9))
	h = int(math.Round(float64(logoH) * float64(w) / float64(logoW)))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h, true
}

// Composite pastes logo over the centre of canvas, scaling it first when it
// exceeds the width cap. Pixels are replaced, not blended. canvas is
// modified in place and no new canvas is allocated.
func (c Compositor) Composite(canvas *image.RGBA, logo image.Image) Placement {
	cb := canvas.Bounds()
	lb := logo.Bounds()

	w, h, scaled := c.LogoSize(cb.Dx(), lb.Dx(), lb.Dy())

	bg := c.Background
	if bg == nil {
		bg = color.White
	}
	var patch image.Image
	if scaled {
		patch = imaging.Flatten(imaging.ScaleBilinear(logo, w, h), bg)
	} else {
		patch = imaging.Flatten(logo, bg)
	}

	x0 := cb.Min.X + cb.Dx()/2 - w/2
	y0 := cb.Min.Y + cb.Dy()/2 - h/2
	rect := image.Rect(x0, y0, x0+w, y0+h)
	draw.Draw(canvas, rect, patch, patch.Bounds().Min, draw.Src)

	return Placement{
		Rect:     rect,
		X:        x0,
		Y:        y0,
		Width:    w,
		Height:   h,
		Scaled:   scaled,
		Original: image.Pt(lb.Dx(), lb.Dy()),
	}
}
