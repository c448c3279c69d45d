// Package imaging provides the raster plumbing around QR generation: logo
// loading and caching, bilinear scaling, alpha flattening, output encoding
// and colour parsing.
//
// It wraps github.com/disintegration/imaging for decoding, resampling and
// encoding, and github.com/lucasb-eyer/go-colorful for colour handling, so
// the qr package never touches a codec directly.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, Min is inclusive (top-left), Max is exclusive (bottom-right)
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. All other functions are
// stateless and return freshly allocated images, so they can be called
// concurrently as long as their inputs are not being mutated.
//
// # Formats
//
// Decoding accepts PNG, JPEG, GIF, BMP and TIFF. Encoding accepts the same set
// by name ("png", "jpg", "jpeg", "gif", "bmp", "tif", "tiff"); JPEG is always
// written at quality 95.
//
// # Error Handling
//
// Functions return errors for:
//   - File I/O errors during image loading
//   - Corrupt or unsupported image data
//   - Unknown output formats and encoding failures
//   - Malformed colour strings
package imaging
