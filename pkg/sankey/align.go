package sankey

import "math"

// Left places every node at its depth.
func Left(node *Node, _ int) float64 { return float64(node.Depth) }

// Right places every node by its distance from the sinks.
func Right(node *Node, n int) float64 { return float64(n - 1 - node.Height) }

// Center places sources just before their nearest target and everything
// else at its depth.
func Center(node *Node, _ int) float64 {
	if !node.IsSource() {
		return float64(node.Depth)
	}
	if node.IsSink() {
		return 0
	}
	m := math.MaxInt
	for _, l := range node.SourceLinks {
		m = min(m, l.Target.Depth)
	}
	return float64(m - 1)
}

// Justify pushes sources to the first column and sinks to the last. Interior
// nodes take either their depth or their distance from the sinks, whichever
// lies further from both edges.
func Justify(node *Node, n int) float64 {
	switch {
	case node.IsSource():
		return 0
	case node.IsSink():
		return float64(n - 1)
	}
	byDepth := node.Depth
	byHeight := n - 1 - node.Height
	if edgeDistance(byHeight, n) > edgeDistance(byDepth, n) {
		return float64(byHeight)
	}
	return float64(byDepth)
}

func edgeDistance(col, n int) int { return min(col, n-1-col) }
