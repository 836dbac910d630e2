// Package graph provides the JSON wire format for flow graphs and layouts.
//
// This package defines the serialization types used for input files, API
// requests and responses, and cache entries.
//
// # Architecture
//
// The package sits at the serialization boundary between the layout engine
// and external formats:
//
//   - [Graph], [Layout]: Serialization types (this package)
//   - sankey.Graph: Engine representation, laid out in place
//
// Use [ToSankey] and [ExportLayout] to convert between them.
//
// # Graph Serialization
//
// Graphs use a node-link JSON format. Links name their endpoints by node id:
//
//	{
//	  "nodes": [{"id": "received"}, {"id": "stored"}, {"id": "Dropped"}],
//	  "links": [
//	    {"source": "received", "target": "stored", "value": 70},
//	    {"source": "received", "target": "Dropped", "value": 30}
//	  ]
//	}
//
// A node may carry a fixed "value" that overrides its computed throughput,
// and display hints ("label_position", "hide", "always_visible") that are
// passed through to the layout untouched.
//
// Common operations:
//
//	g, _ := graph.ReadGraphFile("flow.json")   // File → Graph (validated)
//	data, _ := graph.MarshalGraph(g)           // Graph → []byte
//	sg := graph.ToSankey(g)                    // Graph → engine input
//
// # Layout Serialization
//
// A [Layout] holds the computed geometry of every node and link together
// with the diagram extent:
//
//	layout := graph.ExportLayout(sg, cfg)
//	graph.WriteLayoutFile(layout, "flow.layout.json")
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph
