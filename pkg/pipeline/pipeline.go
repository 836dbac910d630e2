// Package pipeline runs flow-diagram layouts for the CLI and the HTTP server.
//
// This package wraps the layout engine with the concerns both entry points
// share: option defaults and validation, layout caching, invariant checks,
// logging and observability hooks. Centralizing this logic keeps the CLI and
// the API consistent.
//
// # Usage
//
// Create a Runner and compute a layout:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Width:  1200,
//	    Height: 600,
//	    Align:  pipeline.AlignJustify,
//	}
//	result, err := runner.ComputeLayout(ctx, g, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Layout.Scale)
//
// Options can also be loaded from a TOML file:
//
//	opts, err := pipeline.LoadOptionsFile("layout.toml")
package pipeline

import (
	"fmt"
	"io"
	"maps"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sankeyflow/pkg/cache"
	"github.com/matzehuels/sankeyflow/pkg/errors"
	"github.com/matzehuels/sankeyflow/pkg/graph"
	"github.com/matzehuels/sankeyflow/pkg/sankey"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWidth is the default diagram width in pixels.
	DefaultWidth = sankey.DefaultWidth

	// DefaultHeight is the default diagram height in pixels.
	DefaultHeight = sankey.DefaultHeight

	// DefaultAlign is the default column alignment.
	DefaultAlign = AlignJustify

	// MaxExtent bounds each side of a diagram requested through the API.
	MaxExtent = 100_000.0
)

// Alignment names accepted in options.
const (
	AlignJustify = "justify"
	AlignLeft    = "left"
	AlignRight   = "right"
	AlignCenter  = "center"
)

// alignments maps alignment names to engine strategies.
var alignments = map[string]sankey.AlignmentStrategy{
	AlignJustify: sankey.Justify,
	AlignLeft:    sankey.Left,
	AlignRight:   sankey.Right,
	AlignCenter:  sankey.Center,
}

// Order names accepted for node and link ordering.
const (
	// OrderRelaxed lets the engine order nodes by position and links by the
	// position of the node at their other end.
	OrderRelaxed = ""

	// OrderInput keeps the order in which nodes or links appear in the input.
	OrderInput = "input"
)

// =============================================================================
// Options - Layout Configuration
// =============================================================================

// Options contains all configuration for a layout run.
// This struct supports JSON serialization for API requests and TOML for
// configuration files. Zero values select the defaults.
type Options struct {
	// Extent and node geometry
	Width       float64 `json:"width,omitempty" toml:"width"`
	Height      float64 `json:"height,omitempty" toml:"height"`
	NodeWidth   float64 `json:"node_width,omitempty" toml:"node_width"`
	NodePadding float64 `json:"node_padding,omitempty" toml:"node_padding"`

	// Relaxation. A negative Iterations disables relaxation entirely.
	Iterations int     `json:"iterations,omitempty" toml:"iterations"`
	Decay      float64 `json:"decay,omitempty" toml:"decay"`
	MinValue   float64 `json:"min_value,omitempty" toml:"min_value"`

	// Ordering strategies
	Align     string `json:"align,omitempty" toml:"align"`
	NodeOrder string `json:"node_order,omitempty" toml:"node_order"`
	LinkOrder string `json:"link_order,omitempty" toml:"link_order"`

	// Terminal nodes
	Start                  string  `json:"start,omitempty" toml:"start"`
	End                    string  `json:"end,omitempty" toml:"end"`
	TerminalColumnFraction float64 `json:"terminal_column_fraction,omitempty" toml:"terminal_column_fraction"`
	TerminalOffset         float64 `json:"terminal_offset,omitempty" toml:"terminal_offset"`

	// SpacingTargets lists node ids whose incoming links get an extra gap
	// in the fan-out of their source.
	SpacingTargets []string `json:"spacing_targets,omitempty" toml:"spacing_targets"`

	// FixedValues pins node values by id.
	FixedValues map[string]float64 `json:"fixed_values,omitempty" toml:"fixed_values"`

	// Strict runs the invariant check after layout and fails on violations.
	Strict    bool    `json:"strict,omitempty" toml:"strict"`
	Tolerance float64 `json:"tolerance,omitempty" toml:"tolerance"`

	// Refresh bypasses cached layouts.
	Refresh bool `json:"refresh,omitempty" toml:"-"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-" toml:"-"`
}

// Result contains the outputs of a layout run.
type Result struct {
	// GraphHash is the content hash of the input graph.
	GraphHash string

	// Layout is the computed geometry.
	Layout graph.Layout

	// Stats contains timing and size information.
	Stats Stats

	// CacheHit reports whether the layout came from the cache.
	CacheHit bool
}

// Stats contains layout execution statistics.
type Stats struct {
	NodeCount  int
	LinkCount  int
	Columns    int
	LayoutTime time.Duration
}

// =============================================================================
// Validation Functions
// =============================================================================

// AlignNames returns the accepted alignment names in sorted order.
func AlignNames() []string {
	return slices.Sorted(maps.Keys(alignments))
}

// ValidateAlign checks that an alignment name is valid.
func ValidateAlign(name string) error {
	if _, ok := alignments[name]; !ok {
		return errors.New(errors.ErrCodeInvalidConfig,
			"invalid align: %q (must be one of: %s)", name, strings.Join(AlignNames(), ", "))
	}
	return nil
}

// ValidateOrder checks that a node or link order name is valid.
func ValidateOrder(field, name string) error {
	if name != OrderRelaxed && name != OrderInput {
		return errors.New(errors.ErrCodeInvalidConfig, "invalid %s: %q (must be empty or %q)", field, name, OrderInput)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.NodeWidth == 0 {
		o.NodeWidth = sankey.DefaultNodeWidth
	}
	if o.NodePadding == 0 {
		o.NodePadding = sankey.DefaultNodePadding
	}
	if o.Iterations == 0 {
		o.Iterations = sankey.DefaultIterations
	}
	if o.Decay == 0 {
		o.Decay = sankey.DefaultDecay
	}
	if o.Align == "" {
		o.Align = DefaultAlign
	}
	if o.TerminalOffset == 0 {
		o.TerminalOffset = sankey.DefaultTerminalOffset
	}
	if o.Tolerance == 0 {
		o.Tolerance = sankey.DefaultTolerance
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := errors.ValidateExtent(o.Width, o.Height, MaxExtent); err != nil {
		return err
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"node_width", o.NodeWidth},
		{"node_padding", o.NodePadding},
		{"min_value", o.MinValue},
		{"decay", o.Decay},
		{"terminal_column_fraction", o.TerminalColumnFraction},
		{"terminal_offset", o.TerminalOffset},
		{"tolerance", o.Tolerance},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return errors.New(errors.ErrCodeInvalidConfig, "%s must be finite, got %v", f.name, f.v)
		}
	}
	if o.Tolerance < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "tolerance cannot be negative, got %v", o.Tolerance)
	}
	if err := ValidateAlign(o.Align); err != nil {
		return err
	}
	if err := ValidateOrder("node_order", o.NodeOrder); err != nil {
		return err
	}
	if err := ValidateOrder("link_order", o.LinkOrder); err != nil {
		return err
	}
	if o.NodeWidth < 0 || o.NodePadding < 0 || o.MinValue < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "node_width, node_padding and min_value cannot be negative")
	}
	if o.Decay < 0 || o.Decay > 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "decay must be in (0, 1], got %v", o.Decay)
	}
	if f := o.TerminalColumnFraction; f < 0 || f >= 0.5 {
		return errors.New(errors.ErrCodeInvalidConfig, "terminal_column_fraction must be in [0, 0.5), got %v", f)
	}
	if f := o.TerminalOffset; f < 0 || f > 0.5 {
		return errors.New(errors.ErrCodeInvalidConfig, "terminal_offset must be in [0, 0.5], got %v", f)
	}
	if o.Start != "" && o.Start == o.End {
		return errors.New(errors.ErrCodeInvalidConfig, "start and end terminals must differ (both %q)", o.Start)
	}
	for id, v := range o.FixedValues {
		if err := errors.ValidateLinkValue(v); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "fixed value for %q", id)
		}
	}
	return nil
}

// EngineOptions translates the options into layout engine options.
// Call ValidateForLayout first.
func (o *Options) EngineOptions() []sankey.Option {
	opts := []sankey.Option{
		sankey.WithExtent(o.Width, o.Height),
		sankey.WithNodeWidth(o.NodeWidth),
		sankey.WithNodePadding(o.NodePadding),
		sankey.WithIterations(max(o.Iterations, 0)),
		sankey.WithDecay(o.Decay),
		sankey.WithMinValue(o.MinValue),
		sankey.WithAlign(alignments[o.Align]),
		sankey.WithTerminals(o.Start, o.End),
		sankey.WithTerminalColumnFraction(o.TerminalColumnFraction),
		sankey.WithTerminalOffset(o.TerminalOffset),
	}
	if o.NodeOrder == OrderInput {
		opts = append(opts, sankey.WithNodeSort(func(a, b *sankey.Node) int { return a.Index - b.Index }))
	}
	if o.LinkOrder == OrderInput {
		opts = append(opts, sankey.WithLinkSort(func(a, b *sankey.Link) int { return a.Index - b.Index }))
	}
	if len(o.SpacingTargets) > 0 {
		targets := make(map[string]bool, len(o.SpacingTargets))
		for _, id := range o.SpacingTargets {
			targets[id] = true
		}
		opts = append(opts, sankey.WithSpacingPredicate(func(l *sankey.Link) bool {
			return targets[l.TargetID]
		}))
	}
	if len(o.FixedValues) > 0 {
		opts = append(opts, sankey.WithFixedValues(o.FixedValues))
	}
	return opts
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	var targets []string
	if len(o.SpacingTargets) > 0 {
		targets = slices.Clone(o.SpacingTargets)
		slices.Sort(targets)
		targets = slices.Compact(targets)
	}
	return cache.LayoutKeyOpts{
		Width:                  o.Width,
		Height:                 o.Height,
		NodeWidth:              o.NodeWidth,
		NodePadding:            o.NodePadding,
		Iterations:             max(o.Iterations, 0),
		Decay:                  o.Decay,
		MinValue:               o.MinValue,
		Align:                  o.Align,
		NodeOrder:              o.NodeOrder,
		LinkOrder:              o.LinkOrder,
		Start:                  o.Start,
		End:                    o.End,
		TerminalColumnFraction: o.TerminalColumnFraction,
		TerminalOffset:         o.TerminalOffset,
		SpacingTargets:         targets,
		FixedValues:            o.FixedValues,
	}
}

// String summarizes the options for log output.
func (o Options) String() string {
	return fmt.Sprintf("%gx%g align=%s iterations=%d", o.Width, o.Height, o.Align, o.Iterations)
}
