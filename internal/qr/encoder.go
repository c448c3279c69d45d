package qr

import (
	"fmt"
	"image/color"
	"sort"

	"github.com/boombuler/barcode"
	boomqr "github.com/boombuler/barcode/qr"
	"github.com/makiuchi-d/gozxing"
	zxqr "github.com/makiuchi-d/gozxing/qrcode"
	"github.com/makiuchi-d/gozxing/qrcode/decoder"
	skip2 "github.com/skip2/go-qrcode"
)

// Encoder backend names accepted by NewEncoder.
const (
	BackendZXing     = "zxing"
	BackendSkip2     = "skip2"
	BackendBoombuler = "boombuler"
)

// quietZone is the blank border, in modules, around every symbol.
const quietZone = 4

// Encoder turns text into a module matrix at error-correction level H.
//
// size is the requested side length in pixels. The returned matrix is at
// least size cells wide (it is larger only when the symbol does not fit)
// and includes the quiet zone.
type Encoder interface {
	Encode(text string, size int) (*Matrix, error)
}

var encoders = map[string]func() Encoder{
	BackendZXing:     func() Encoder { return ZXingEncoder{} },
	BackendSkip2:     func() Encoder { return Skip2Encoder{} },
	BackendBoombuler: func() Encoder { return BoombulerEncoder{} },
}

// NewEncoder returns the encoder registered under name. An empty name
// selects the zxing backend.
func NewEncoder(name string) (Encoder, error) {
	if name == "" {
		name = BackendZXing
	}
	mk, ok := encoders[name]
	if !ok {
		return nil, fmt.Errorf("unknown encoder backend %q (want one of %v)", name, Backends())
	}
	return mk(), nil
}

// Backends lists the registered encoder backend names in sorted order.
func Backends() []string {
	names := make([]string, 0, len(encoders))
	for name := range encoders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func checkEncodeInput(text string, size int) error {
	if text == "" {
		return fmt.Errorf("%w: empty text", ErrEncodingFailed)
	}
	if size <= 0 {
		return fmt.Errorf("%w: size must be positive, got %d", ErrEncodingFailed, size)
	}
	return nil
}

// ZXingEncoder encodes with gozxing's QRCodeWriter, which renders the
// symbol straight to the requested pixel size with its default 4-module
// quiet zone.
type ZXingEncoder struct{}

// Encode implements Encoder.
func (ZXingEncoder) Encode(text string, size int) (*Matrix, error) {
	if err := checkEncodeInput(text, size); err != nil {
		return nil, err
	}

	hints := map[gozxing.EncodeHintType]interface{}{
		gozxing.EncodeHintType_ERROR_CORRECTION: decoder.ErrorCorrectionLevel_H,
	}
	bm, err := zxqr.NewQRCodeWriter().Encode(text, gozxing.BarcodeFormat_QR_CODE, size, size, hints)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodingFailed, err)
	}

	side := bm.GetWidth()
	if h := bm.GetHeight(); h > side {
		side = h
	}
	m := newMatrix(side)
	for y := 0; y < bm.GetHeight(); y++ {
		for x := 0; x < bm.GetWidth(); x++ {
			if bm.Get(x, y) {
				m.set(x, y)
			}
		}
	}
	return m, nil
}

// Skip2Encoder encodes with skip2/go-qrcode at its Highest recovery level.
type Skip2Encoder struct{}

// Encode implements Encoder.
func (Skip2Encoder) Encode(text string, size int) (*Matrix, error) {
	if err := checkEncodeInput(text, size); err != nil {
		return nil, err
	}

	code, err := skip2.New(text, skip2.Highest)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodingFailed, err)
	}
	code.DisableBorder = false

	// Bitmap already carries the 4-module border.
	return scaleModules(code.Bitmap(), size), nil
}

// BoombulerEncoder encodes with boombuler/barcode at level H.
type BoombulerEncoder struct{}

// Encode implements Encoder.
func (BoombulerEncoder) Encode(text string, size int) (*Matrix, error) {
	if err := checkEncodeInput(text, size); err != nil {
		return nil, err
	}

	code, err := boomqr.Encode(text, boomqr.H, boomqr.Auto)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodingFailed, err)
	}
	return scaleModules(barcodeModules(code), size), nil
}

// barcodeModules converts an unscaled barcode into a module grid with a
// quiet zone added on every side.
func barcodeModules(code barcode.Barcode) [][]bool {
	b := code.Bounds()
	n := b.Dx() + 2*quietZone
	modules := make([][]bool, n)
	for y := range modules {
		modules[y] = make([]bool, n)
	}
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			g := color.GrayModel.Convert(code.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
			modules[y+quietZone][x+quietZone] = g.Y < 128
		}
	}
	return modules
}
