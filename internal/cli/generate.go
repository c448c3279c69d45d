package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ironsheep/qr-logo/internal/config"
	"github.com/ironsheep/qr-logo/internal/imaging"
	"github.com/ironsheep/qr-logo/internal/qr"
)

type generateOpts struct {
	logo      string
	output    string
	size      int
	format    string
	caption   string
	noCaption bool
	encoder   string
	maxRatio  float64
}

func newGenerateCmd() *cobra.Command {
	var opts generateOpts

	cmd := &cobra.Command{
		Use:   "generate <content>",
		Short: "Generate a QR code with a centred logo",
		Long: `Encode content as a QR code, paste the logo over its centre and verify
that the result still decodes to content. The image is written only when
verification succeeds; otherwise the command fails and nothing is written.

No caption is drawn unless --caption is given or show_caption is set in
the config, in which case the caption is the content itself.`,
		Example: `  qr-logo generate https://example.com --logo logo.png -o code.png
  qr-logo generate "HELLO" --logo logo.png --size 512 --no-caption -o - > code.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFromContext(cmd.Context())
			applyGenerateFlags(cmd, cfg, &opts)
			return runGenerate(cmd, cfg, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.logo, "logo", "l", "", "logo image path (default from config)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output image path, or - for stdout (required)")
	cmd.Flags().IntVarP(&opts.size, "size", "s", 0, "canvas side length in pixels")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: "+strings.Join(imaging.SupportedFormats(), ", ")+" (default from output extension)")
	cmd.Flags().StringVar(&opts.caption, "caption", "", "caption text drawn below the code")
	cmd.Flags().BoolVar(&opts.noCaption, "no-caption", false, "draw no caption")
	cmd.Flags().StringVar(&opts.encoder, "encoder", "", "encoder backend: "+strings.Join(qr.Backends(), ", "))
	cmd.Flags().Float64Var(&opts.maxRatio, "max-logo-ratio", 0, "largest logo width as a fraction of the canvas")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

// applyGenerateFlags copies explicitly set flags over the loaded config.
func applyGenerateFlags(cmd *cobra.Command, cfg *config.Config, opts *generateOpts) {
	flags := cmd.Flags()
	if flags.Changed("logo") {
		cfg.Logo = opts.logo
	}
	if flags.Changed("size") {
		cfg.Size = opts.size
	}
	if flags.Changed("encoder") {
		cfg.Encoder = opts.encoder
	}
	if flags.Changed("max-logo-ratio") {
		cfg.MaxLogoRatio = opts.maxRatio
	}
	switch {
	case flags.Changed("format"):
		cfg.Format = opts.format
	case opts.output != "-":
		if ext := strings.TrimPrefix(filepath.Ext(opts.output), "."); ext != "" {
			cfg.Format = ext
		}
	}
}

func runGenerate(cmd *cobra.Command, cfg *config.Config, content string, opts generateOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	if cfg.Logo == "" {
		return fmt.Errorf("%w: --logo is required", qr.ErrInvalidRequest)
	}
	gen, err := cfg.Generator(logger)
	if err != nil {
		return err
	}

	caption := cfg.Caption(content)
	if cmd.Flags().Changed("caption") {
		caption = opts.caption
	}
	if opts.noCaption {
		caption = ""
	}

	var sink io.Writer = cmd.OutOrStdout()
	if opts.output != "-" {
		sink = &fileSink{path: opts.output}
	}

	res, err := gen.Generate(ctx, qr.Request{
		Content: content,
		Size:    cfg.Size,
		Format:  cfg.Format,
		Caption: caption,
		Logo:    qr.LogoFile(cfg.Logo),
	}, sink)
	if f, ok := sink.(*fileSink); ok {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %w", qr.ErrWriteFailed, cerr)
		}
	}
	if err != nil {
		return err
	}
	if !res.Accepted() {
		return fmt.Errorf("%w: verification %s, try a smaller logo or a larger canvas", ErrRejected, res.Outcome)
	}

	if opts.output != "-" {
		logger.Info("wrote "+opts.output, "bytes", res.BytesWritten, "logo", fmt.Sprintf("%dx%d", res.Logo.Width, res.Logo.Height))
	}
	return nil
}

// fileSink creates its file on the first Write, so a generation that writes
// nothing leaves nothing behind.
type fileSink struct {
	path string
	f    *os.File
}

func (s *fileSink) Write(p []byte) (int, error) {
	if s.f == nil {
		f, err := os.Create(s.path)
		if err != nil {
			return 0, err
		}
		s.f = f
	}
	return s.f.Write(p)
}

func (s *fileSink) Close() error {
	if s.f == nil {
		return nil
	}
	return s.f.Close()
}
