package imaging

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// ScaleBilinear resamples img to exactly width x height pixels with a
// bilinear filter. Horizontal and vertical factors are independent, so the
// caller decides whether the aspect ratio is preserved.
//
// imaging.Linear is a triangle filter whose support widens with the
// reduction factor, so a downscale averages every covered source pixel
// instead of sampling the nearest four.
func ScaleBilinear(img image.Image, width, height int) *image.NRGBA {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return imaging.Resize(img, width, height, imaging.Linear)
}

// Flatten composites img over an opaque background and returns an opaque
// copy whose bounds start at (0,0).
func Flatten(img image.Image, bg color.Color) *image.NRGBA {
	b := img.Bounds()
	dst := imaging.New(b.Dx(), b.Dy(), bg)
	return imaging.Overlay(dst, img, image.Pt(0, 0), 1.0)
}
