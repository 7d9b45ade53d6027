package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/Sternrassler/pokedex-client/internal/server"
	"github.com/Sternrassler/pokedex-client/pkg/logging"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web UI and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.NewLogger(logging.ComponentCLI)
			if port == "" {
				port = a.cfg.Port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			opts := server.Options{
				Client:         a.client,
				CORSOrigins:    a.cfg.CORSOrigins,
				MaxConcurrency: a.cfg.MaxConcurrency,
				PageSize:       a.cfg.PageSize,
			}

			if a.cfg.RedisURL != "" {
				rdb, err := connectRedis(ctx, a.cfg.RedisURL)
				if err != nil {
					return err
				}
				defer rdb.Close()
				opts.Redis = rdb
				logger.Info().Str("addr", rdb.Options().Addr).Msg("Connected to Redis")
			}

			logger.Info().
				Str("base_url", a.cfg.BaseURL).
				Str("user_agent", a.cfg.UserAgent).
				Msg("Starting Pokédex server")

			return server.New(opts).Run(ctx, ":"+port)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Listen port (default PORT or 8080)")
	return cmd
}

// connectRedis parses a redis:// URL and pings the server.
func connectRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", opt.Addr, err)
	}
	return rdb, nil
}
