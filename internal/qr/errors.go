package qr

import (
	"errors"
	"fmt"
)

// Sentinel errors for aborted generations. Stage errors wrap one of these,
// so callers should test with errors.Is.
var (
	// ErrInvalidRequest is returned when a Request fails validation.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrEncodingFailed is returned when the text cannot be encoded at
	// error-correction level H (too long, unsupported characters).
	ErrEncodingFailed = errors.New("encoding failed")

	// ErrCanvasTooSmall is returned when the encoded matrix does not fit the
	// requested canvas. It is a kind of ErrEncodingFailed.
	ErrCanvasTooSmall = errors.New("canvas too small for symbol")

	// ErrLogoLoadFailed is returned when the logo is missing or corrupt.
	ErrLogoLoadFailed = errors.New("logo load failed")

	// ErrAllocationFailed is returned when an image buffer cannot be built.
	ErrAllocationFailed = errors.New("allocation failed")

	// ErrWriteFailed is returned when the accepted image cannot be encoded
	// or delivered to the sink.
	ErrWriteFailed = errors.New("write failed")
)

// canvasTooSmall wraps ErrCanvasTooSmall so that it also matches ErrEncodingFailed.
type canvasTooSmall struct {
	side, canvas int
}

func (e *canvasTooSmall) Error() string {
	return fmt.Sprintf("%s: symbol needs %dpx, canvas is %dpx", ErrCanvasTooSmall, e.side, e.canvas)
}

func (e *canvasTooSmall) Is(target error) bool {
	return target == ErrCanvasTooSmall || target == ErrEncodingFailed
}
