package sankey

import "gonum.org/v1/gonum/floats"

// computeNodeValues sets each node's throughput to the larger of its
// outgoing and incoming totals, unless the value is pinned.
func (s *state) computeNodeValues() {
	for _, n := range s.graph.Nodes {
		if v, ok := s.cfg.fixedValue(n); ok {
			n.Value = v
			continue
		}
		n.Value = max(linkSum(n.SourceLinks), linkSum(n.TargetLinks))
	}
}

func (c Config) fixedValue(n *Node) (float64, bool) {
	if v, ok := c.FixedValues[n.ID]; ok {
		return v, true
	}
	if n.FixedValue != nil {
		return *n.FixedValue, true
	}
	return 0, false
}

func linkSum(links []*Link) float64 {
	if len(links) == 0 {
		return 0
	}
	vals := make([]float64, len(links))
	for i, l := range links {
		vals[i] = l.Value
	}
	return floats.Sum(vals)
}
