package qr

import (
	"errors"
	"fmt"
	"image"

	"github.com/makiuchi-d/gozxing"
	zxqr "github.com/makiuchi-d/gozxing/qrcode"
)

// ErrNotFound is returned by a Decoder when no symbol can be located or parsed.
var ErrNotFound = errors.New("no QR code found")

// Outcome is the verdict of a verification.
type Outcome int

// Verification outcomes. The zero value means no verification ran.
const (
	Match Outcome = iota + 1
	Mismatch
	DecodeFailed
)

func (o Outcome) String() string {
	switch o {
	case Match:
		return "match"
	case Mismatch:
		return "mismatch"
	case DecodeFailed:
		return "decode_failed"
	}
	return "none"
}

// MarshalText lets outcomes appear by name in JSON reports.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Decoder reads the text of a single QR symbol from an image.
type Decoder interface {
	Decode(img image.Image) (string, error)
}

// ZXingDecoder decodes with gozxing's hybrid binarizer and QR reader.
type ZXingDecoder struct {
	// TryHarder trades speed for accuracy on damaged symbols.
	TryHarder bool
}

// Decode implements Decoder. Every failure wraps ErrNotFound.
func (d ZXingDecoder) Decode(img image.Image) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	var hints map[gozxing.DecodeHintType]interface{}
	if d.TryHarder {
		hints = map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		}
	}
	result, err := zxqr.NewQRCodeReader().Decode(bmp, hints)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return result.GetText(), nil
}

// Verification is the result of re-reading a canvas.
type Verification struct {
	Outcome Outcome `json:"outcome"`
	Decoded string  `json:"decoded,omitempty"`
	Err     error   `json:"-"`
}

// Verifier decodes a finished canvas and compares it to the text it should
// carry.
type Verifier struct {
	decoder Decoder
}

// NewVerifier returns a Verifier backed by d. A nil d uses a ZXingDecoder
// with TryHarder set.
func NewVerifier(d Decoder) *Verifier {
	if d == nil {
		d = ZXingDecoder{TryHarder: true}
	}
	return &Verifier{decoder: d}
}

// Verify decodes img and compares the text to original byte for byte.
// It never modifies img, so repeated calls on the same image agree.
func (v *Verifier) Verify(original string, img image.Image) Verification {
	text, err := v.decoder.Decode(img)
	if err != nil {
		return Verification{Outcome: DecodeFailed, Err: err}
	}
	if text != original {
		return Verification{Outcome: Mismatch, Decoded: text}
	}
	return Verification{Outcome: Match, Decoded: text}
}
