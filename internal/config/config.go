// Package config loads qr-logo settings from a YAML file, an optional .env
// file and QRLOGO_* environment variables, in that order of precedence
// (later sources win). Command-line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"slices"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/qr-logo/internal/imaging"
	"github.com/ironsheep/qr-logo/internal/qr"
)

// DefaultFile is the config file read when no path is given.
const DefaultFile = "qr-logo.yaml"

// EnvPrefix prefixes every environment override, e.g. QRLOGO_SIZE.
const EnvPrefix = "QRLOGO_"

// Config holds all qr-logo settings.
type Config struct {
	Size         int     `yaml:"size" env:"SIZE"`
	Format       string  `yaml:"format" env:"FORMAT"`
	Encoder      string  `yaml:"encoder" env:"ENCODER"`
	MaxLogoRatio float64 `yaml:"max_logo_ratio" env:"MAX_LOGO_RATIO"`
	FontSize     float64 `yaml:"font_size" env:"FONT_SIZE"`
	ShowCaption  bool    `yaml:"show_caption" env:"SHOW_CAPTION"`
	Foreground   string  `yaml:"foreground" env:"FOREGROUND"`
	Background   string  `yaml:"background" env:"BACKGROUND"`
	Accent       string  `yaml:"accent" env:"ACCENT"`
	Logo         string  `yaml:"logo" env:"LOGO"`
	HTTPAddr     string  `yaml:"http_addr" env:"HTTP_ADDR"`
	LogLevel     string  `yaml:"log_level" env:"LOG_LEVEL"`
}

// Default returns a Config populated with default values.
func Default() *Config {
	return &Config{
		Size:         300,
		Format:       "png",
		Encoder:      qr.BackendZXing,
		MaxLogoRatio: qr.DefaultMaxLogoRatio,
		FontSize:     qr.DefaultFontSize,
		Foreground:   imaging.HexString(qr.DefaultForeground),
		Background:   imaging.HexString(qr.DefaultBackground),
		Accent:       imaging.HexString(qr.DefaultAccent),
		HTTPAddr:     ":8080",
		LogLevel:     "info",
	}
}

// Load builds a Config from defaults, the YAML file at path, a .env file in
// the working directory and QRLOGO_* environment variables. A missing file
// at path is not an error unless path was given explicitly.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist) && !explicit:
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}

// loadDotEnv exports the variables in file without overriding ones that are
// already set. A missing file is ignored.
func loadDotEnv(file string) error {
	if _, err := os.Stat(file); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(file); err != nil {
		return fmt.Errorf("loading %s: %w", file, err)
	}
	return nil
}

// Colors holds the parsed colour settings.
type Colors struct {
	Foreground color.RGBA
	Background color.RGBA
	Accent     color.RGBA
}

// Colors parses the hex colour settings.
func (c *Config) Colors() (Colors, error) {
	var out Colors
	var err error
	if out.Foreground, err = imaging.ParseHexColor(c.Foreground); err != nil {
		return out, fmt.Errorf("foreground: %w", err)
	}
	if out.Background, err = imaging.ParseHexColor(c.Background); err != nil {
		return out, fmt.Errorf("background: %w", err)
	}
	if out.Accent, err = imaging.ParseHexColor(c.Accent); err != nil {
		return out, fmt.Errorf("accent: %w", err)
	}
	return out, nil
}

// Validate checks every setting and returns the first problem found.
func (c *Config) Validate() error {
	if c.Size <= 0 || c.Size > qr.MaxCanvasSize {
		return fmt.Errorf("size must be in 1..%d, got %d", qr.MaxCanvasSize, c.Size)
	}
	if _, err := imaging.ParseFormat(c.Format); err != nil {
		return err
	}
	if !slices.Contains(qr.Backends(), c.Encoder) {
		return fmt.Errorf("unknown encoder %q (want one of %v)", c.Encoder, qr.Backends())
	}
	if c.MaxLogoRatio <= 0 || c.MaxLogoRatio > 1 {
		return fmt.Errorf("max_logo_ratio must be in (0, 1], got %v", c.MaxLogoRatio)
	}
	if c.FontSize <= 0 {
		return fmt.Errorf("font_size must be positive, got %v", c.FontSize)
	}
	colors, err := c.Colors()
	if err != nil {
		return err
	}
	if err := imaging.CheckContrast(colors.Foreground, colors.Background); err != nil {
		return fmt.Errorf("foreground/background: %w", err)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// Level returns the configured log level, falling back to info.
func (c *Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// Generator builds a qr.Generator from the validated settings.
func (c *Config) Generator(logger *log.Logger) (*qr.Generator, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	colors, err := c.Colors()
	if err != nil {
		return nil, err
	}
	enc, err := qr.NewEncoder(c.Encoder)
	if err != nil {
		return nil, err
	}
	r, err := qr.NewRenderer(
		qr.WithColors(colors.Foreground, colors.Background, colors.Accent),
		qr.WithFontSize(c.FontSize),
	)
	if err != nil {
		return nil, err
	}
	return qr.New(
		qr.WithEncoder(enc),
		qr.WithRenderer(r),
		qr.WithCompositor(qr.Compositor{MaxRatio: c.MaxLogoRatio}),
		qr.WithLogger(logger),
	)
}

// Caption returns the caption for content: the content itself when
// show_caption is set, otherwise none. The caption band shrinks the symbol
// while the logo cap stays relative to the canvas, so it is opt-in.
func (c *Config) Caption(content string) string {
	if !c.ShowCaption {
		return ""
	}
	return content
}
