package qr

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogoSize(t *testing.T) {
	tests := []struct {
		name       string
		ratio      float64
		canvas     int
		logoW      int
		logoH      int
		wantW      int
		wantH      int
		wantScaled bool
	}{
		{name: "small logo keeps native size", canvas: 300, logoW: 40, logoH: 40, wantW: 40, wantH: 40},
		{name: "exactly at cap", canvas: 300, logoW: 90, logoH: 30, wantW: 90, wantH: 30},
		{name: "one pixel over cap", canvas: 300, logoW: 91, logoH: 91, wantW: 90, wantH: 90, wantScaled: true},
		{name: "almost canvas wide", canvas: 300, logoW: 299, logoH: 100, wantW: 90, wantH: 30, wantScaled: true},
		{name: "wider than canvas", canvas: 300, logoW: 600, logoH: 300, wantW: 90, wantH: 45, wantScaled: true},
		{name: "thin strip keeps one row", canvas: 300, logoW: 1000, logoH: 1, wantW: 90, wantH: 1, wantScaled: true},
		{name: "custom ratio", ratio: 0.5, canvas: 200, logoW: 150, logoH: 150, wantW: 100, wantH: 100, wantScaled: true},
		{name: "custom ratio under cap", ratio: 0.5, canvas: 200, logoW: 100, logoH: 50, wantW: 100, wantH: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Compositor{MaxRatio: tt.ratio}
			w, h, scaled := c.LogoSize(tt.canvas, tt.logoW, tt.logoH)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
			assert.Equal(t, tt.wantScaled, scaled)
		})
	}
}

func TestLogoSize_NeverExceedsCap(t *testing.T) {
	c := Compositor{}
	for _, canvas := range []int{30, 50, 99, 100, 300, 301, 1000} {
		for logoW := 1; logoW <= 3*canvas; logoW += 7 {
			w, _, _ := c.LogoSize(canvas, logoW, 50)
			limit := math.Max(1, DefaultMaxLogoRatio*float64(canvas))
			assert.LessOrEqual(t, float64(w), limit+1e-9, "canvas=%d logoW=%d", canvas, logoW)
		}
	}
}

func TestComposite_Centred(t *testing.T) {
	red := color.RGBA{200, 30, 30, 255}
	tests := []struct {
		name string
		w, h int
	}{
		{name: "square even", w: 40, h: 40},
		{name: "odd sizes", w: 41, h: 17},
		{name: "scaled down", w: 500, h: 250},
		{name: "tall", w: 20, h: 61},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			canvas := solidLogo(300, 300, color.White)
			p := Compositor{}.Composite(canvas, solidLogo(tt.w, tt.h, red))

			left, right := p.Rect.Min.X, 300-p.Rect.Max.X
			top, bottom := p.Rect.Min.Y, 300-p.Rect.Max.Y
			assert.LessOrEqual(t, abs(left-right), 1, "horizontal offset %d vs %d", left, right)
			assert.LessOrEqual(t, abs(top-bottom), 1, "vertical offset %d vs %d", top, bottom)
			assert.Equal(t, image.Pt(tt.w, tt.h), p.Original)
			assert.Equal(t, p.Rect.Dx(), p.Width)
			assert.Equal(t, p.Rect.Dy(), p.Height)

			mid := image.Pt((p.Rect.Min.X+p.Rect.Max.X)/2, (p.Rect.Min.Y+p.Rect.Max.Y)/2)
			assert.Equal(t, red, canvas.RGBAAt(mid.X, mid.Y))
			assert.Equal(t, color.RGBA{255, 255, 255, 255}, canvas.RGBAAt(p.Rect.Min.X-1, mid.Y))
		})
	}
}

func TestComposite_ReplacesPixels(t *testing.T) {
	canvas := solidLogo(100, 100, color.Black)
	half := color.NRGBA{0, 0, 255, 128}
	logo := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			logo.SetNRGBA(x, y, half)
		}
	}

	p := Compositor{Background: color.White}.Composite(canvas, logo)
	got := canvas.RGBAAt(p.X+5, p.Y+5)

	// Flattened over white, never blended with the black canvas.
	assert.Equal(t, uint8(255), got.A)
	assert.Greater(t, got.R, uint8(100))
	assert.Equal(t, uint8(255), got.B)
}

func TestComposite_TransparentLogoFillsBackground(t *testing.T) {
	canvas := solidLogo(100, 100, color.Black)
	logo := image.NewNRGBA(image.Rect(0, 0, 20, 20))

	bg := color.RGBA{250, 240, 230, 255}
	p := Compositor{Background: bg}.Composite(canvas, logo)
	require.False(t, p.Scaled)
	assert.Equal(t, bg, canvas.RGBAAt(p.X, p.Y))
	assert.Equal(t, bg, canvas.RGBAAt(p.X+19, p.Y+19))
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, canvas.RGBAAt(p.X+20, p.Y+20))
}

func TestComposite_InPlace(t *testing.T) {
	canvas := solidLogo(50, 50, color.White)
	pix := &canvas.Pix[0]

	Compositor{}.Composite(canvas, solidLogo(5, 5, color.Black))
	assert.Same(t, pix, &canvas.Pix[0])
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, canvas.RGBAAt(25, 25))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
