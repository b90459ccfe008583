package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ziggurat-io/ziggurat/internal/api"
	"github.com/ziggurat-io/ziggurat/internal/config"
	"github.com/ziggurat-io/ziggurat/pkg/cache"
	"github.com/ziggurat-io/ziggurat/pkg/history"
	"github.com/ziggurat-io/ziggurat/pkg/pipeline"
)

// serveCommand creates the HTTP API server command.
func (c *CLI) serveCommand() *cobra.Command {
	var configPath, addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Run the HTTP API server.

Configuration is read from a TOML file selected by --config or the
ZIGGURAT_CONFIG environment variable; --addr overrides the configured
listen address. Without a config file the server uses an in-memory
store and no cache.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to TOML config file")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg config.Config) error {
	store, err := newStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close(ctx)

	artifactCache, err := newServerCache(ctx, cfg.Cache)
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(artifactCache, nil, c.Logger)
	defer runner.Close()

	srv := api.NewServer(runner, store, c.Logger)
	srv.DefaultDark = cfg.Render.Dark

	c.Logger.Info("starting server",
		"addr", cfg.Server.Addr,
		"store", cfg.Store.Backend,
		"cache", cfg.Cache.Backend)
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}

// newStore builds the history backend selected in the config.
func newStore(ctx context.Context, cfg config.StoreConfig) (history.Store, error) {
	switch cfg.Backend {
	case config.StoreFile:
		return history.NewFileStore(cfg.Dir)
	case config.StoreMongo:
		return history.NewMongoStore(ctx, history.MongoConfig{
			URI:        cfg.URI,
			Database:   cfg.Database,
			Collection: cfg.Collection,
		})
	default:
		return history.NewMemoryStore(), nil
	}
}

// newServerCache builds the artifact cache selected in the config.
func newServerCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case config.CacheFile:
		dir := cfg.Dir
		if dir == "" {
			var err error
			if dir, err = cacheDir(); err != nil {
				return nil, err
			}
		}
		return cache.NewFileCache(dir)
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	default:
		return cache.NewNullCache(), nil
	}
}
