package qr

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ironsheep/qr-logo/internal/imaging"
)

// minSymbolSide is the side of the smallest symbol (version 1, 21 modules)
// plus its quiet zone, at one pixel per module.
const minSymbolSide = 21 + 2*quietZone

// State is a stage of the generation pipeline.
type State int

// Pipeline states in execution order, followed by the three terminal states.
const (
	StateEncoding State = iota
	StateRendering
	StateCompositing
	StateVerifying
	StateAccepted
	StateRejected
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateEncoding:
		return "encoding"
	case StateRendering:
		return "rendering"
	case StateCompositing:
		return "compositing"
	case StateVerifying:
		return "verifying"
	case StateAccepted:
		return "accepted"
	case StateRejected:
		return "rejected"
	case StateAborted:
		return "aborted"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// MarshalText lets states appear by name in JSON reports.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Request is one validated generation job. Build it once and pass it to
// Generator.Generate; it carries everything the pipeline needs.
type Request struct {
	// Content is the text to encode. Required.
	Content string

	// Size is the canvas side length in pixels.
	Size int

	// Format is the output image format name, e.g. "png" or "jpg".
	Format string

	// Caption is drawn below the symbol when non-empty.
	Caption string

	// Logo supplies the logo image. Required.
	Logo LogoSource
}

// Validate checks r and returns an error wrapping ErrInvalidRequest.
func (r Request) Validate() error {
	if r.Content == "" {
		return fmt.Errorf("%w: content is required", ErrInvalidRequest)
	}
	if r.Size <= 0 {
		return fmt.Errorf("%w: size must be positive, got %d", ErrInvalidRequest, r.Size)
	}
	if r.Size > MaxCanvasSize {
		return fmt.Errorf("%w: %w: size %d exceeds %d", ErrInvalidRequest, ErrAllocationFailed, r.Size, MaxCanvasSize)
	}
	if _, err := imaging.ParseFormat(r.Format); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if r.Logo == nil {
		return fmt.Errorf("%w: logo is required", ErrInvalidRequest)
	}
	return nil
}

// Stats records how long each stage took.
type Stats struct {
	EncodeTime    time.Duration `json:"encode_time"`
	RenderTime    time.Duration `json:"render_time"`
	CompositeTime time.Duration `json:"composite_time"`
	VerifyTime    time.Duration `json:"verify_time"`
	WriteTime     time.Duration `json:"write_time"`
}

// Result reports how a generation ended.
type Result struct {
	State        State     `json:"state"`
	Outcome      Outcome   `json:"outcome"`
	Decoded      string    `json:"decoded,omitempty"`
	MatrixSize   int       `json:"matrix_size,omitempty"`
	CaptionDrawn bool      `json:"caption_drawn"`
	Logo         Placement `json:"logo"`
	BytesWritten int       `json:"bytes_written"`
	Stats        Stats     `json:"stats"`
	Err          error     `json:"-"`
}

// Accepted reports whether an image was written.
func (r *Result) Accepted() bool {
	return r.State == StateAccepted
}

// Generator runs the encode → render → composite → verify pipeline.
// It holds no per-request state and may be shared between goroutines.
type Generator struct {
	encoder    Encoder
	renderer   *Renderer
	compositor Compositor
	verifier   *Verifier
	logger     *log.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithEncoder replaces the default zxing encoder.
func WithEncoder(e Encoder) Option {
	return func(g *Generator) { g.encoder = e }
}

// WithRenderer replaces the default renderer.
func WithRenderer(r *Renderer) Option {
	return func(g *Generator) { g.renderer = r }
}

// WithCompositor replaces the default compositor.
func WithCompositor(c Compositor) Option {
	return func(g *Generator) { g.compositor = c }
}

// WithDecoder sets the decoder used for verification.
func WithDecoder(d Decoder) Option {
	return func(g *Generator) { g.verifier = NewVerifier(d) }
}

// WithLogger sets the logger. Stage progress is logged at debug level.
func WithLogger(l *log.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// New builds a Generator. Unset components get their defaults.
func New(opts ...Option) (*Generator, error) {
	g := &Generator{}
	for _, opt := range opts {
		opt(g)
	}
	if g.encoder == nil {
		g.encoder = ZXingEncoder{}
	}
	if g.renderer == nil {
		r, err := NewRenderer()
		if err != nil {
			return nil, err
		}
		g.renderer = r
	}
	if g.compositor.Background == nil {
		g.compositor.Background = g.renderer.Background()
	}
	if g.verifier == nil {
		g.verifier = NewVerifier(nil)
	}
	if g.logger == nil {
		g.logger = log.Default()
	}
	return g, nil
}

// Generate runs one request. The accepted image is written to sink in a
// single Write; on rejection or abort sink receives nothing. For lossy
// formats the encoded file is decoded and verified again before it is
// written.
//
// A Rejected result is returned with a nil error. An Aborted result is
// returned together with an error wrapping one of the package sentinels.
func (g *Generator) Generate(ctx context.Context, req Request, sink io.Writer) (*Result, error) {
	res := &Result{State: StateEncoding}
	logger := g.logger.With("size", req.Size, "format", req.Format)

	abort := func(err error) (*Result, error) {
		logger.Error("generation aborted", "stage", res.State, "err", err)
		res.State = StateAborted
		res.Err = err
		return res, err
	}
	reject := func(o Outcome) (*Result, error) {
		res.State = StateRejected
		logger.Warn("logo broke the QR code, output withheld", "outcome", o)
		return res, nil
	}

	if err := req.Validate(); err != nil {
		return abort(err)
	}
	if sink == nil {
		return abort(fmt.Errorf("%w: output sink is required", ErrInvalidRequest))
	}

	// Encoding
	caption := req.Caption
	matrixSize := req.Size
	if caption != "" {
		if side := req.Size - 2*g.renderer.CaptionMargin(); side >= minSymbolSide {
			matrixSize = side
		} else {
			logger.Warn("canvas too small for a caption, dropping it", "margin", g.renderer.CaptionMargin())
			caption = ""
		}
	}
	start := time.Now()
	matrix, err := g.encoder.Encode(req.Content, matrixSize)
	if err != nil {
		return abort(err)
	}
	res.Stats.EncodeTime = time.Since(start)
	res.MatrixSize = matrix.Size()
	logger.Debug("encoded symbol", "side", matrix.Size(), "duration", res.Stats.EncodeTime)

	if err := ctx.Err(); err != nil {
		return abort(err)
	}

	// Rendering
	res.State = StateRendering
	start = time.Now()
	canvas, err := g.renderer.Render(matrix, req.Size, caption)
	if err != nil {
		return abort(err)
	}
	res.Stats.RenderTime = time.Since(start)
	res.CaptionDrawn = caption != "" && g.renderer.CaptionFits(matrix.Size(), req.Size)
	logger.Debug("rendered canvas", "caption", res.CaptionDrawn, "duration", res.Stats.RenderTime)

	if err := ctx.Err(); err != nil {
		return abort(err)
	}

	// Compositing
	res.State = StateCompositing
	start = time.Now()
	logo, err := req.Logo.Load()
	if err != nil {
		return abort(fmt.Errorf("%w: %w", ErrLogoLoadFailed, err))
	}
	res.Logo = g.compositor.Composite(canvas, logo)
	res.Stats.CompositeTime = time.Since(start)
	logger.Debug("composited logo",
		"width", res.Logo.Width,
		"height", res.Logo.Height,
		"scaled", res.Logo.Scaled,
		"duration", res.Stats.CompositeTime)

	if err := ctx.Err(); err != nil {
		return abort(err)
	}

	// Verifying
	res.State = StateVerifying
	start = time.Now()
	v := g.verifier.Verify(req.Content, canvas)
	res.Stats.VerifyTime = time.Since(start)
	res.Outcome = v.Outcome
	res.Decoded = v.Decoded
	logger.Debug("verified canvas", "outcome", v.Outcome, "duration", res.Stats.VerifyTime)

	if v.Outcome != Match {
		return reject(v.Outcome)
	}

	// The image is encoded in full before sink sees a byte, so an encoding
	// failure never leaves a partial image behind.
	start = time.Now()
	data, err := imaging.EncodeBytes(canvas, req.Format)
	if err != nil {
		return abort(fmt.Errorf("%w: %w", ErrWriteFailed, err))
	}
	res.Stats.WriteTime = time.Since(start)

	if imaging.Lossy(req.Format) {
		start = time.Now()
		encoded, err := imaging.DecodeBytes(data)
		if err != nil {
			return abort(fmt.Errorf("%w: re-reading encoded %s: %w", ErrWriteFailed, req.Format, err))
		}
		v = g.verifier.Verify(req.Content, encoded)
		res.Stats.VerifyTime += time.Since(start)
		res.Outcome = v.Outcome
		res.Decoded = v.Decoded
		logger.Debug("verified encoded file", "outcome", v.Outcome)
		if v.Outcome != Match {
			return reject(v.Outcome)
		}
	}

	if err := ctx.Err(); err != nil {
		return abort(err)
	}

	start = time.Now()
	n, err := sink.Write(data)
	res.BytesWritten = n
	if err != nil {
		return abort(fmt.Errorf("%w: %w", ErrWriteFailed, err))
	}
	res.Stats.WriteTime += time.Since(start)
	res.State = StateAccepted
	logger.Info("QR code generated", "bytes", n, "logo_scaled", res.Logo.Scaled)
	return res, nil
}
