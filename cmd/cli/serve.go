package main

import (
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sanketmuchhala/Project-Green-Lantern-sub000/internal/api"
)

func serveCmd(opts *rootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP proxy",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}

			if !opts.verbose {
				level, err := zerolog.ParseLevel(cfg.LogLevel)
				if err != nil || level == zerolog.NoLevel {
					level = zerolog.InfoLevel
				}
				zerolog.SetGlobalLevel(level)
			}
			if cfg.RedisURL != "" {
				log.Info().Str("redis", maskConnectionString(cfg.RedisURL)).Msg("redis configured")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return api.Serve(ctx, cfg)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "P", 3001, "Port to listen on (overrides config)")

	return cmd
}
