package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/framefit/framefit/internal/server"
	"github.com/framefit/framefit/pkg/cache"
	"github.com/framefit/framefit/pkg/experiment"
	"github.com/framefit/framefit/pkg/resize"
	"github.com/framefit/framefit/pkg/store"
	"github.com/framefit/framefit/pkg/vision"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the resize API server",
		Long: `Run the resize API server.

The server exposes the resize engine over HTTP. Configuration comes from a
TOML file (--config) with environment overrides: REDIS_ADDR and MONGO_URI
replace their file counterparts, and GEMINI_API_KEY enables the vision
model. Without redis the placement cache and variant assignments are held
in process; without mongo, sessions live in memory and vanish on restart.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := server.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to TOML config file")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")

	return cmd
}

// runServe assembles the engine from config and blocks on the listener.
func (c *CLI) runServe(ctx context.Context, cfg server.Config) error {
	var (
		backend      cache.Cache
		selectorOpts []experiment.Option
	)
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		backend = rc

		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		selectorOpts = append(selectorOpts, experiment.WithAssignmentStore(experiment.NewRedisAssignments(client)))
		c.Logger.Info("redis enabled", "addr", cfg.Redis.Addr)
	} else {
		backend = cache.NewNullCache()
		c.Logger.Info("redis not configured, caching disabled")
	}
	defer backend.Close()

	var st store.Store
	if cfg.Mongo.URI != "" {
		ms, err := store.NewMongoStore(ctx, store.MongoConfig{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return fmt.Errorf("connect mongo: %w", err)
		}
		st = ms
		c.Logger.Info("mongo enabled", "database", cfg.Mongo.Database)
	} else {
		st = store.NewMemoryStore()
		c.Logger.Warn("mongo not configured, sessions are in-memory only")
	}
	defer st.Close(context.Background())

	var model vision.Model
	if !cfg.Model.Disabled && os.Getenv("GEMINI_API_KEY") != "" {
		gm, err := vision.NewGeminiModel(ctx, cfg.Model.Name)
		if err != nil {
			return fmt.Errorf("create model: %w", err)
		}
		model = gm
		c.Logger.Info("vision model enabled", "model", cfg.Model.Name)
	} else {
		c.Logger.Warn("vision model disabled, serving planner-only")
	}

	selector := experiment.NewSelector(experiment.DefaultVariants(), selectorOpts...)
	engine := resize.NewEngine(model, selector, st, backend, c.Logger)

	return server.New(engine, cfg.Server.Addr, c.Logger).ListenAndServe(ctx)
}
