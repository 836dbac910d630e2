package sankey

import (
	"math"
	"slices"
)

// computeNodeLayers maps every node to a column, sets X0/X1 and returns the
// per-column node lists.
func (s *state) computeNodeLayers() [][]*Node {
	nodes := s.graph.Nodes
	n := 0
	for _, node := range nodes {
		n = max(n, node.Depth+1)
	}

	xs := s.columnOffsets(n)
	columns := make([][]*Node, n)
	for _, node := range nodes {
		col := clampColumn(s.cfg.Align(node, n), n)
		node.Layer = col
		node.X0 = xs[col]
		node.X1 = node.X0 + s.cfg.NodeWidth
		columns[col] = append(columns[col], node)
	}

	if cmp := s.cfg.NodeSort; cmp != nil {
		for _, c := range columns {
			slices.SortStableFunc(c, cmp)
		}
	}
	return columns
}

// columnOffsets returns the left edge of each of n columns. With terminals
// configured, the outer columns sit on the diagram edges and the interior
// columns share the span left between the reserved terminal strips.
func (s *state) columnOffsets(n int) []float64 {
	xs := make([]float64, n)
	if n == 0 {
		return xs
	}
	w, dx := s.cfg.Width, s.cfg.NodeWidth
	last := math.Max(0, w-dx)

	f := s.cfg.TerminalColumnFraction
	if !s.cfg.Terminals.any() || f == 0 || n < 3 {
		if n == 1 {
			return xs
		}
		kx := last / float64(n-1)
		for i := range xs {
			xs[i] = float64(i) * kx
		}
		return xs
	}

	xs[n-1] = last
	lo := f * w
	hi := math.Max(lo, w-f*w-dx)
	inner := n - 2
	if inner == 1 {
		xs[1] = (lo + hi) / 2
		return xs
	}
	kx := (hi - lo) / float64(inner-1)
	for i := 1; i <= inner; i++ {
		xs[i] = lo + float64(i-1)*kx
	}
	return xs
}

func clampColumn(x float64, n int) int {
	if math.IsNaN(x) {
		return 0
	}
	f := math.Floor(x)
	switch {
	case f < 0:
		return 0
	case f > float64(n-1):
		return n - 1
	}
	return int(f)
}
