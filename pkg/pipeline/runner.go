package pipeline

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sankeyflow/pkg/cache"
	"github.com/matzehuels/sankeyflow/pkg/errors"
	"github.com/matzehuels/sankeyflow/pkg/graph"
	"github.com/matzehuels/sankeyflow/pkg/observability"
	"github.com/matzehuels/sankeyflow/pkg/sankey"
)

// Cache key types reported to observability hooks.
const (
	keyTypeLayout = "layout"
	keyTypeCheck  = "check"
)

// Runner encapsulates layout execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store layout results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// cachedLayout is the cache entry of a computed layout. The check report is
// stored with it so strict runs can be answered from the cache.
type cachedLayout struct {
	Layout graph.Layout `json:"layout"`
	Check  CheckReport  `json:"check"`
}

// ComputeLayout lays out g with caching. The result's CacheHit reports
// whether the layout came from the cache.
func (r *Runner) ComputeLayout(ctx context.Context, g graph.Graph, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}

	graphData, err := graph.MarshalGraph(graph.LayoutInput(g))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "serialize graph for cache key")
	}
	result := &Result{
		GraphHash: cache.Hash(graphData),
		Stats:     Stats{NodeCount: len(g.Nodes), LinkCount: len(g.Links)},
	}
	cacheKey := r.Keyer.LayoutKey(result.GraphHash, opts.LayoutKeyOpts())

	// Try cache first (unless refresh requested)
	if entry, ok := r.cachedLayout(ctx, cacheKey, opts); ok {
		result.Layout = entry.Layout
		result.Stats.Columns = entry.Layout.Columns
		result.CacheHit = true
		if opts.Strict {
			if err := entry.Check.Err(); err != nil {
				return nil, err
			}
		}
		opts.Logger.Debug("layout cache hit", "key", cacheKey)
		return result, nil
	}

	hooks := observability.Layout()
	hooks.OnLayoutStart(ctx, len(g.Nodes), len(g.Links))
	start := time.Now()
	layout, report, err := generate(g, opts)
	result.Stats.LayoutTime = time.Since(start)
	hooks.OnLayoutComplete(ctx, len(g.Nodes), result.Stats.LayoutTime, err)
	if err != nil {
		return nil, err
	}
	hooks.OnCheckComplete(ctx, len(report.Violations))

	result.Layout = layout
	result.Stats.Columns = layout.Columns
	opts.Logger.Info("computed layout",
		"nodes", result.Stats.NodeCount,
		"links", result.Stats.LinkCount,
		"columns", layout.Columns,
		"duration", result.Stats.LayoutTime)
	if !report.OK() {
		opts.Logger.Warn("layout violates invariants", "violations", len(report.Violations), "first", report.Violations[0])
	}

	// Cache the result, including invariant failures, so repeated strict
	// runs fail fast.
	if data, err := json.Marshal(cachedLayout{Layout: layout, Check: report}); err == nil {
		r.store(ctx, cacheKey, keyTypeLayout, data, cache.TTLLayout)
	}

	if opts.Strict {
		if err := report.Err(); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// GenerateLayout is a convenience wrapper that calls ComputeLayout and
// returns only the layout.
func (r *Runner) GenerateLayout(ctx context.Context, g graph.Graph, opts Options) (graph.Layout, error) {
	res, err := r.ComputeLayout(ctx, g, opts)
	if err != nil {
		return graph.Layout{}, err
	}
	return res.Layout, nil
}

// CheckLayout verifies the invariants of a stored layout. Reports are cached
// by layout content and tolerance.
func (r *Runner) CheckLayout(ctx context.Context, l graph.Layout, tolerance float64) (CheckReport, error) {
	if math.IsNaN(tolerance) || math.IsInf(tolerance, 0) {
		return CheckReport{}, errors.New(errors.ErrCodeInvalidConfig, "tolerance must be finite, got %v", tolerance)
	}
	if tolerance <= 0 {
		tolerance = sankey.DefaultTolerance
	}
	data, err := graph.MarshalLayout(l)
	if err != nil {
		return CheckReport{}, errors.Wrap(errors.ErrCodeInternal, err, "serialize layout for cache key")
	}
	cacheKey := r.Keyer.CheckKey(cache.Hash(data), tolerance)

	if cached, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		var report CheckReport
		if json.Unmarshal(cached, &report) == nil {
			observability.Cache().OnCacheHit(ctx, keyTypeCheck)
			return report, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, keyTypeCheck)

	g, engineOpts := graph.ImportLayout(l)
	cfg := sankey.NewConfig(engineOpts...)
	report := newCheckReport(cfg.Check(g, tolerance), tolerance)
	observability.Layout().OnCheckComplete(ctx, len(report.Violations))
	r.Logger.Debug("checked layout", "nodes", len(l.Nodes), "violations", len(report.Violations))

	if encoded, err := json.Marshal(report); err == nil {
		r.store(ctx, cacheKey, keyTypeCheck, encoded, cache.TTLCheck)
	}
	return report, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) cachedLayout(ctx context.Context, key string, opts Options) (cachedLayout, bool) {
	if opts.Refresh {
		return cachedLayout{}, false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		opts.Logger.Warn("cache read failed", "error", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyTypeLayout)
		return cachedLayout{}, false
	}
	var entry cachedLayout
	if err := json.Unmarshal(data, &entry); err != nil || entry.Check.Tolerance != opts.Tolerance {
		// Stale or foreign entry; fall through to recompute.
		observability.Cache().OnCacheMiss(ctx, keyTypeLayout)
		return cachedLayout{}, false
	}
	observability.Cache().OnCacheHit(ctx, keyTypeLayout)
	return entry, true
}

func (r *Runner) store(ctx context.Context, key, keyType string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "key_type", keyType, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
