package imaging

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/disintegration/imaging"
)

// jpegQuality is used for every JPEG written by this package. QR modules are
// hard edges, so keep it high.
const jpegQuality = 95

// ParseFormat resolves a format name such as "png", "jpg" or ".tiff".
func ParseFormat(name string) (imaging.Format, error) {
	f, err := imaging.FormatFromExtension(strings.TrimPrefix(strings.ToLower(name), "."))
	if err != nil {
		return -1, fmt.Errorf("unsupported image format %q: %w", name, err)
	}
	return f, nil
}

// SupportedFormats lists the format names accepted by ParseFormat.
func SupportedFormats() []string {
	return []string{"png", "jpg", "jpeg", "gif", "bmp", "tif", "tiff"}
}

// MimeType returns the MIME type for a format name, or
// "application/octet-stream" when the format is unknown.
func MimeType(name string) string {
	f, err := ParseFormat(name)
	if err != nil {
		return "application/octet-stream"
	}
	switch f {
	case imaging.JPEG:
		return "image/jpeg"
	case imaging.PNG:
		return "image/png"
	case imaging.GIF:
		return "image/gif"
	case imaging.TIFF:
		return "image/tiff"
	case imaging.BMP:
		return "image/bmp"
	}
	return "application/octet-stream"
}

// Lossy reports whether writing in the named format can change pixel
// values. JPEG compresses lossily and GIF reduces to a 256-colour palette.
func Lossy(name string) bool {
	f, err := ParseFormat(name)
	return err == nil && (f == imaging.JPEG || f == imaging.GIF)
}

// Encode writes img to w in the named format.
func Encode(w io.Writer, img image.Image, format string) error {
	f, err := ParseFormat(format)
	if err != nil {
		return err
	}
	if err := imaging.Encode(w, img, f, imaging.JPEGQuality(jpegQuality)); err != nil {
		return fmt.Errorf("failed to encode %s image: %w", format, err)
	}
	return nil
}

// EncodeBytes encodes img into memory in the named format.
func EncodeBytes(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
