// Package sankey computes flow-diagram (Sankey) layouts.
//
// # Overview
//
// A flow graph is a weighted DAG: nodes are processing stages and links carry
// a quantity of flow from one stage to the next. [Compute] turns such a graph
// into geometry a renderer can draw directly: every node gets a column
// ([Node.Layer]) and a rectangle ([Node.X0], [Node.X1], [Node.Y0], [Node.Y1]),
// every link gets a thickness ([Link.Width]) and the vertical position of its
// centreline at both ends ([Link.Y0], [Link.Y1]).
//
// # Basic Usage
//
//	g := sankey.NewGraph()
//	g.AddNode("received")
//	g.AddNode("verified")
//	g.AddNode("dropped")
//	g.AddLink("received", "verified", 70)
//	g.AddLink("received", "dropped", 30)
//
//	if _, err := sankey.Compute(g, sankey.WithExtent(800, 400)); err != nil {
//	    return err
//	}
//
// # Passes
//
// The layout runs seven passes, each augmenting the same node and link
// objects:
//
//  1. Indexing resolves link endpoints and builds per-node adjacency.
//  2. Value resolution sets each node's throughput to the larger of its
//     incoming and outgoing totals.
//  3. Layering assigns depth and height with two frontier sweeps and
//     rejects cycles.
//  4. Column assignment maps nodes to columns with an [AlignmentStrategy].
//  5. The breadth solver stacks nodes proportionally to their value, then
//     relaxes their positions toward their neighbours for a fixed number of
//     iterations while keeping every column free of overlap.
//  6. Link geometry stacks link ends along each node's edge.
//  7. Terminal normalization stretches the start and end markers over the
//     full height.
//
// # Terminals
//
// A diagram may name a start and an end terminal with [WithTerminals]. While
// relaxing, terminals do not follow their links; they are held at a fixed
// offset from the top or bottom edge ([WithTerminalOffset]). After link
// geometry is final they span the whole diagram height.
//
// # Errors
//
// Only malformed input fails: a link naming an unknown node
// ([MissingNodeError]), two nodes sharing an id ([DuplicateNodeError]) or a
// cycle ([CyclicGraphError]). Numeric degeneracies such as empty columns or a
// zero total value are clamped so the result never contains NaN or Inf.
//
// # Concurrency
//
// Compute is synchronous and keeps all scratch state local to the call.
// Nodes and links are mutated in place, so one [Graph] must not be laid out
// from two goroutines at once; lay out [Graph.Clone] copies instead.
package sankey
