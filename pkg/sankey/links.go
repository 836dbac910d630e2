package sankey

import "math"

// computeLinkBreadths stacks each node's outgoing links from its top edge to
// set Link.Y0, and its incoming links likewise to set Link.Y1. Widths are
// those fixed during breadth initialization.
func (s *state) computeLinkBreadths() {
	for _, n := range s.graph.Nodes {
		y := n.Y0
		for _, l := range n.SourceLinks {
			l.Y0 = clamp(y+l.Width/2, n.Y0, n.Y1)
			y += l.Width
		}
		y = n.Y0
		for _, l := range n.TargetLinks {
			l.Y1 = clamp(y+l.Width/2, n.Y0, n.Y1)
			y += l.Width
		}
	}
}

// computeStartEndNodes stretches the terminal nodes over the full height of
// the diagram. It must run after relaxation and link geometry: both depend
// on where the terminals sat before the stretch.
func (s *state) computeStartEndNodes() {
	t := s.cfg.Terminals
	if !t.any() {
		return
	}
	bottom := 0.0
	for _, n := range s.graph.Nodes {
		bottom = math.Max(bottom, n.Y1)
	}
	for _, n := range s.graph.Nodes {
		if s.cfg.isTerminal(n) {
			n.Y0 = 0
			n.Y1 = bottom
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func nonNegative(v float64) float64 {
	if !finite(v) || v < 0 {
		return 0
	}
	return v
}
