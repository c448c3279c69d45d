package imaging

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// MinContrast is the smallest CIE L* difference (0-1 scale) between the dark
// and light colours of a code that the decoder binarizes reliably.
const MinContrast = 0.4

// ParseHexColor parses a colour string like "#336699" or "336699" into an
// opaque color.RGBA. Three-digit shorthand ("#369") is accepted as well.
func ParseHexColor(hex string) (color.RGBA, error) {
	s := strings.TrimSpace(hex)
	if s == "" {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// HexString formats c as "#rrggbb", ignoring alpha.
func HexString(c color.Color) string {
	cf, _ := colorful.MakeColor(c)
	return cf.Clamped().Hex()
}

// Lightness returns the CIE L* lightness of c on a 0-1 scale.
func Lightness(c color.Color) float64 {
	cf, ok := colorful.MakeColor(c)
	if !ok {
		// Fully transparent: treat as the white paper underneath.
		return 1
	}
	l, _, _ := cf.Lab()
	return l
}

// CheckContrast reports an error unless light is at least MinContrast
// lighter than dark.
func CheckContrast(dark, light color.Color) error {
	ld, ll := Lightness(dark), Lightness(light)
	if ll-ld < MinContrast {
		return fmt.Errorf("insufficient contrast between %s and %s (L* %.2f vs %.2f)",
			HexString(dark), HexString(light), ld, ll)
	}
	return nil
}
