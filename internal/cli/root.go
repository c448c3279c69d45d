// Package cli implements the qr-logo command-line interface.
//
// # Commands
//
//   - generate: Encode text, overlay a logo, verify, and write the image
//   - decode: Print the text of the QR code in one or more images
//   - mcp: Serve the generator as an MCP tool server over stdio
//   - serve: Serve the generator over HTTP
//
// # Configuration
//
// Settings come from qr-logo.yaml (or --config), a .env file and QRLOGO_*
// environment variables; command flags override them. The loaded config
// and a logger are attached to the command context before any command runs.
//
// # Logging
//
// Logs go to stderr at the configured level; --verbose (-v) forces debug.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ironsheep/qr-logo/internal/config"
)

// ErrRejected is returned by generate when the logo made the code
// unreadable and no image was written.
var ErrRejected = errors.New("QR code rejected")

var (
	version = "dev" // semantic version (e.g., "v1.2.3")
	commit  string  // git commit SHA
	date    string  // build timestamp
)

// SetVersion sets the version information displayed by --version. The main
// package calls it with values injected via ldflags at build time.
func SetVersion(v, c, d string) {
	if v != "" {
		version = v
	}
	commit = c
	date = d
}

// Execute builds the command tree and runs it with ctx.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	var (
		verbose    bool
		configPath string
	)

	root := &cobra.Command{
		Use:   "qr-logo",
		Short: "qr-logo makes branded QR codes that still scan",
		Long: `qr-logo encodes text as a QR code at the highest error-correction level,
pastes a logo over its centre, decodes the result again and only writes
the image when it still reads back as the original text.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			level := cfg.Level()
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(withConfig(ctx, cfg))
			return nil
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("qr-logo %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ./"+config.DefaultFile+" if present)")

	root.AddCommand(newGenerateCmd())
	root.AddCommand(newDecodeCmd())
	root.AddCommand(newMCPCmd())
	root.AddCommand(newServeCmd())

	return root
}
