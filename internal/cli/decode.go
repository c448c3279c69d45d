package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/qr-logo/internal/imaging"
	"github.com/ironsheep/qr-logo/internal/qr"
)

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <image>...",
		Short: "Print the text of the QR code in each image",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			dec := qr.ZXingDecoder{TryHarder: true}

			var failed int
			for _, path := range args {
				img, err := imaging.Open(path)
				if err == nil {
					var text string
					if text, err = dec.Decode(img); err == nil {
						fmt.Fprintln(cmd.OutOrStdout(), text)
						continue
					}
				}
				logger.Error("decode failed", "path", path, "err", err)
				failed++
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d images could not be decoded", failed, len(args))
			}
			return nil
		},
	}
}
