package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sankeyflow/pkg/cache"
	"github.com/matzehuels/sankeyflow/pkg/observability/prom"
	"github.com/matzehuels/sankeyflow/pkg/pipeline"
	"github.com/matzehuels/sankeyflow/pkg/server"
)

// serveFlags holds the command-line inputs of the serve command.
type serveFlags struct {
	addr        string
	config      string
	redisAddr   string
	redisDB     int
	cachePrefix string
	noCache     bool
	noMetrics   bool
	maxBody     int64
	opts        pipeline.Options
}

// serveCommand creates the serve command that runs the HTTP layout API.
func (c *CLI) serveCommand() *cobra.Command {
	f := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve layouts over HTTP",
		Long: `Serve layouts over HTTP.

Routes:
  POST /v1/layout   lay out a graph: {"graph": {...}, "options": {...}}
  POST /v1/check    check a stored layout: {"layout": {...}}
  GET  /healthz     health and cache status
  GET  /metrics     Prometheus metrics

Layouts are cached in Redis when --redis is set (password from
SANKEYFLOW_REDIS_PASSWORD), otherwise in the local cache directory.
Layout flags set server-wide defaults beneath each request's options.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), f)
		},
	}

	cmd.Flags().StringVar(&f.addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVarP(&f.config, "config", "c", "", "TOML file with default layout options")
	cmd.Flags().StringVar(&f.redisAddr, "redis", os.Getenv(envPrefix+"REDIS_ADDR"), "Redis address for the layout cache")
	cmd.Flags().IntVar(&f.redisDB, "redis-db", 0, "Redis database number")
	cmd.Flags().StringVar(&f.cachePrefix, "cache-prefix", appName+":", "prefix for Redis cache keys")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.noMetrics, "no-metrics", false, "disable the /metrics endpoint")
	cmd.Flags().Int64Var(&f.maxBody, "max-body", server.DefaultMaxBodyBytes, "maximum request body in bytes")
	addLayoutFlags(cmd, &f.opts)
	registerLayoutCompletions(cmd)
	cmd.ValidArgsFunction = cobra.NoFileCompletions

	return cmd
}

// runServe wires the cache, metrics and server and blocks until ctx ends.
func (c *CLI) runServe(ctx context.Context, f *serveFlags) error {
	defaults, err := c.buildOptions(f.config, f.opts, nil)
	if err != nil {
		return err
	}
	defaults.Logger = nil

	store, keyer, err := c.serveCache(ctx, f)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(store, keyer, c.Logger)
	defer runner.Close()

	cfg := server.Config{
		Addr:         f.addr,
		Defaults:     defaults,
		MaxBodyBytes: f.maxBody,
		Logger:       c.Logger,
	}
	if !f.noMetrics {
		reg := prom.NewRegistry()
		reg.Install()
		cfg.Metrics = reg.Handler()
	}

	printSuccess("Serving on %s", StyleHighlight.Render(f.addr))
	printKeyValue("cache", cacheLabel(f))
	printKeyValue("metrics", fmt.Sprintf("%t", !f.noMetrics))
	printNewline()

	return server.New(runner, cfg).ListenAndServe(ctx)
}

// serveCache picks the server's cache backend: Redis, the local file cache
// or none.
func (c *CLI) serveCache(ctx context.Context, f *serveFlags) (cache.Cache, cache.Keyer, error) {
	if f.noCache || f.redisAddr == "" {
		store, err := c.newCache(f.noCache)
		return store, nil, err
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	store, err := cache.NewRedisCache(connectCtx, cache.RedisOptions{
		Addr:     f.redisAddr,
		Password: os.Getenv(envPrefix + "REDIS_PASSWORD"),
		DB:       f.redisDB,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	c.Logger.Info("connected to redis", "addr", f.redisAddr, "db", f.redisDB)
	return store, cache.NewScopedKeyer(cache.NewDefaultKeyer(), f.cachePrefix), nil
}

func cacheLabel(f *serveFlags) string {
	switch {
	case f.noCache:
		return "disabled"
	case f.redisAddr != "":
		return fmt.Sprintf("redis %s/%d", f.redisAddr, f.redisDB)
	}
	dir, err := cacheDir()
	if err != nil {
		return "disabled"
	}
	return dir
}
