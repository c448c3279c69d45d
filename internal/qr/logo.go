package qr

import (
	"image"

	"github.com/ironsheep/qr-logo/internal/imaging"
)

// LogoSource supplies the logo for a single generation. Load is called once,
// during the compositing stage.
type LogoSource interface {
	Load() (image.Image, error)
}

// LogoFile loads the logo from a file path.
type LogoFile string

// Load implements LogoSource.
func (p LogoFile) Load() (image.Image, error) {
	return imaging.Open(string(p))
}

// LogoBytes decodes the logo from an in-memory encoded image.
type LogoBytes []byte

// Load implements LogoSource.
func (b LogoBytes) Load() (image.Image, error) {
	return imaging.DecodeBytes(b)
}

// LogoFunc adapts a function to LogoSource.
type LogoFunc func() (image.Image, error)

// Load implements LogoSource.
func (f LogoFunc) Load() (image.Image, error) {
	return f()
}

// LogoImage wraps an already decoded image.
func LogoImage(img image.Image) LogoSource {
	return LogoFunc(func() (image.Image, error) { return img, nil })
}

// LogoFromCache loads path through cache, so repeated requests with the
// same logo decode it once.
func LogoFromCache(cache *imaging.ImageCache, path string) LogoSource {
	return LogoFunc(func() (image.Image, error) { return cache.Load(path) })
}
