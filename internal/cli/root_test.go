package cli

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/qr-logo/internal/imaging"
	"github.com/ironsheep/qr-logo/internal/qr"
)

func TestSetVersion(t *testing.T) {
	defer SetVersion("dev", "", "")

	SetVersion("1.0.0", "abc123", "2024-01-01")
	assert.Equal(t, "1.0.0", version)
	assert.Equal(t, "abc123", commit)
	assert.Equal(t, "2024-01-01", date)

	SetVersion("", "", "")
	assert.Equal(t, "1.0.0", version, "an empty version keeps the current one")
}

func writeLogo(t *testing.T, dir string, size int, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)

	path := filepath.Join(dir, "logo.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

// run executes the root command with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append(args, "--config", writeConfig(t)))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// writeConfig isolates the tests from any qr-logo.yaml in the working
// directory and keeps the logs quiet.
func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "qr-logo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: error\n"), 0o644))
	return path
}

func decodeFile(t *testing.T, path string) string {
	t.Helper()
	img, err := imaging.Open(path)
	require.NoError(t, err)
	text, err := qr.ZXingDecoder{TryHarder: true}.Decode(img)
	require.NoError(t, err)
	return text
}

func TestGenerate_WritesAcceptedImage(t *testing.T) {
	dir := t.TempDir()
	logo := writeLogo(t, dir, 40, color.RGBA{200, 30, 30, 255})
	out := filepath.Join(dir, "code.png")

	_, err := run(t, "generate", "https://example.com", "--logo", logo, "-o", out)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", decodeFile(t, out))
}

func TestGenerate_FormatFromExtension(t *testing.T) {
	dir := t.TempDir()
	logo := writeLogo(t, dir, 30, color.Black)
	out := filepath.Join(dir, "code.jpg")

	_, err := run(t, "generate", "HELLO", "--logo", logo, "-o", out, "--size", "400", "--encoder", "skip2")
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xd8}, data[:2], "expected a JPEG")
	assert.Equal(t, "HELLO", decodeFile(t, out))
}

func TestGenerate_Stdout(t *testing.T) {
	dir := t.TempDir()
	logo := writeLogo(t, dir, 30, color.Black)

	out, err := run(t, "generate", "HELLO", "--logo", logo, "-o", "-", "--no-caption")
	require.NoError(t, err)

	img, err := imaging.DecodeBytes([]byte(out))
	require.NoError(t, err)
	text, err := qr.ZXingDecoder{TryHarder: true}.Decode(img)
	require.NoError(t, err)
	assert.Equal(t, "HELLO", text)
}

func TestGenerate_RejectedWritesNothing(t *testing.T) {
	dir := t.TempDir()
	logo := writeLogo(t, dir, 200, color.Black)
	out := filepath.Join(dir, "code.png")

	_, err := run(t, "generate", "HELLO", "--logo", logo, "-o", out, "--max-logo-ratio", "0.9", "--no-caption")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRejected), "got %v", err)

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "rejected output must not be created")
}

func TestGenerate_MissingLogo(t *testing.T) {
	out := filepath.Join(t.TempDir(), "code.png")

	_, err := run(t, "generate", "HELLO", "--logo", "/nonexistent/logo.png", "-o", out)
	require.Error(t, err)
	assert.ErrorIs(t, err, qr.ErrLogoLoadFailed)

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestGenerate_FlagErrors(t *testing.T) {
	logo := writeLogo(t, t.TempDir(), 10, color.Black)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no output", []string{"generate", "HELLO", "--logo", logo}, "output"},
		{"no logo", []string{"generate", "HELLO", "-o", "x.png"}, "--logo is required"},
		{"no content", []string{"generate", "--logo", logo, "-o", "x.png"}, "arg"},
		{"bad encoder", []string{"generate", "HELLO", "--logo", logo, "-o", "x.png", "--encoder", "zint"}, "unknown encoder"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDecode(t *testing.T) {
	dir := t.TempDir()
	logo := writeLogo(t, dir, 20, color.Black)
	first := filepath.Join(dir, "a.png")
	second := filepath.Join(dir, "b.png")

	_, err := run(t, "generate", "first", "--logo", logo, "-o", first)
	require.NoError(t, err)
	_, err = run(t, "generate", "second", "--logo", logo, "-o", second)
	require.NoError(t, err)

	out, err := run(t, "decode", first, second)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, strings.Fields(out))

	_, err = run(t, "decode", first, logo)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2")
}
