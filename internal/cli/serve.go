package cli

import (
	"github.com/spf13/cobra"

	"github.com/ironsheep/qr-logo/internal/httpapi"
	"github.com/ironsheep/qr-logo/internal/server"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve qr_generate, qr_decode and logo_info as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := configFromContext(ctx)
			logger := loggerFromContext(ctx)

			gen, err := cfg.Generator(logger)
			if err != nil {
				return err
			}
			server.Version = version
			return server.New(cfg, gen, logger).Run(ctx)
		},
	}
}

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve QR code generation over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := configFromContext(ctx)
			logger := loggerFromContext(ctx)
			if cmd.Flags().Changed("addr") {
				cfg.HTTPAddr = addr
			}

			gen, err := cfg.Generator(logger)
			if err != nil {
				return err
			}
			h := httpapi.NewRouter(&httpapi.Server{
				Generator: gen,
				Config:    cfg,
				Log:       logger,
				Version:   version,
			})
			return httpapi.ListenAndServe(ctx, cfg.HTTPAddr, h, logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}
