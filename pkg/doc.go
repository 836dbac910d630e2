// Package pkg provides the core libraries for Sankeyflow flow diagram layout.
//
// # Overview
//
// Sankeyflow turns a weighted directed acyclic graph into Sankey diagram
// geometry: every node becomes a rectangle in a column, every link a band
// whose width is proportional to the flow it carries. Drawing is left to the
// caller. The pkg directory is organized into four main areas:
//
//  1. [sankey] - The layout engine (columns, breadths, relaxation, link offsets)
//  2. [graph] - Serialization types for input graphs and computed layouts
//  3. [pipeline] - Orchestration (validate → layout → check) with caching
//  4. [cache], [observability], [server] - Infrastructure shared by the CLI and API
//
// # Architecture
//
// The typical data flow through Sankeyflow:
//
//	graph.json
//	     ↓
//	[graph] package (decode + validate)
//	     ↓
//	[sankey] package (seven layout passes)
//	     ↓
//	[graph] package (export positioned nodes and links)
//	     ↓
//	layout.json
//
// # Quick Start
//
// Lay out a graph file with the engine directly:
//
//	import (
//	    "github.com/matzehuels/sankeyflow/pkg/graph"
//	    "github.com/matzehuels/sankeyflow/pkg/sankey"
//	)
//
//	g, _ := graph.ReadGraphFile("flows.json")
//	cfg := sankey.NewConfig(
//	    sankey.WithExtent(1200, 600),
//	    sankey.WithAlign(sankey.Left),
//	)
//	laidOut, _ := cfg.Compute(graph.ToSankey(g))
//	_ = graph.WriteLayoutFile(graph.ExportLayout(laidOut, cfg), "flows.layout.json")
//
// Or go through the cache-aware pipeline, which is what the CLI and the HTTP
// API use:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	res, _ := runner.ComputeLayout(ctx, g, pipeline.Options{Align: "left"})
//
// # Main Packages
//
// [sankey] - The layout engine. [sankey.Config.Compute] runs the passes in
// order: link indexing, node values, depths and heights, column assignment,
// vertical breadths with relaxation, and link offsets. [sankey.Config.Check]
// verifies the invariants of a finished layout.
//
// [graph] - JSON node-link input format and the layout output format. Both
// are validated on decode.
//
// [pipeline] - Options with TOML config files, validation, and a [pipeline.Runner]
// that caches layouts and check reports by content hash.
//
// [cache] - Cache backends: file (CLI), Redis (API), null (tests and
// --no-cache), plus key derivation and retry helpers.
//
// [observability] - Hook interfaces for layout, cache and HTTP events, with
// Prometheus collectors in [observability/prom].
//
// [server] - HTTP API exposing layout and check endpoints.
//
// [errors] - Coded errors shared by every package, mapped to exit messages
// and HTTP statuses.
//
// # Testing
//
// Run tests:
//
//	go test ./...                          # All tests
//	go test ./pkg/sankey/...               # Engine only
//	go test -run Example ./pkg/...         # Examples only
//	SANKEYFLOW_TEST_REDIS=localhost:6379 go test ./pkg/cache/...
//
// [sankey]: https://pkg.go.dev/github.com/matzehuels/sankeyflow/pkg/sankey
// [graph]: https://pkg.go.dev/github.com/matzehuels/sankeyflow/pkg/graph
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/sankeyflow/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/sankeyflow/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/sankeyflow/pkg/observability
// [observability/prom]: https://pkg.go.dev/github.com/matzehuels/sankeyflow/pkg/observability/prom
// [server]: https://pkg.go.dev/github.com/matzehuels/sankeyflow/pkg/server
// [errors]: https://pkg.go.dev/github.com/matzehuels/sankeyflow/pkg/errors
package pkg
