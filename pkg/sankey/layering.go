package sankey

// computeNodeDepths assigns Depth with a forward frontier sweep from every
// node. A node reached again in a later round is moved deeper, so Depth ends
// up as the longest path from a source.
func (s *state) computeNodeDepths() error {
	return sweep(s.graph.Nodes, "depth",
		func(n *Node, x int) { n.Depth = x },
		func(n *Node) []*Node { return targetsOf(n) },
	)
}

// computeNodeHeights is the backward counterpart of computeNodeDepths.
func (s *state) computeNodeHeights() error {
	return sweep(s.graph.Nodes, "height",
		func(n *Node, x int) { n.Height = x },
		func(n *Node) []*Node { return sourcesOf(n) },
	)
}

func sweep(nodes []*Node, pass string, set func(*Node, int), next func(*Node) []*Node) error {
	limit := len(nodes)
	current := nodes
	for x := 0; len(current) > 0; x++ {
		if x > limit {
			return &CyclicGraphError{Pass: pass, Iterations: limit}
		}
		frontier := make([]*Node, 0, len(current))
		seen := make(map[*Node]bool, len(current))
		for _, n := range current {
			set(n, x)
			for _, m := range next(n) {
				if !seen[m] {
					seen[m] = true
					frontier = append(frontier, m)
				}
			}
		}
		current = frontier
	}
	return nil
}

func targetsOf(n *Node) []*Node {
	out := make([]*Node, len(n.SourceLinks))
	for i, l := range n.SourceLinks {
		out[i] = l.Target
	}
	return out
}

func sourcesOf(n *Node) []*Node {
	out := make([]*Node, len(n.TargetLinks))
	for i, l := range n.TargetLinks {
		out[i] = l.Source
	}
	return out
}
