package sankey

import "slices"

// computeNodeLinks assigns indices, resolves link endpoints and fills the
// adjacency lists. Link arrival order is kept unless a LinkComparator is
// configured.
func (s *state) computeNodeLinks() error {
	g := s.graph
	byID := make(map[string]*Node, len(g.Nodes))
	for i, n := range g.Nodes {
		if _, dup := byID[n.ID]; dup {
			return &DuplicateNodeError{ID: n.ID}
		}
		byID[n.ID] = n
		n.Index = i
		n.SourceLinks = nil
		n.TargetLinks = nil
	}

	for i, l := range g.Links {
		l.Index = i
		src, err := resolve(byID, l.Source, l.SourceID, i)
		if err != nil {
			return err
		}
		dst, err := resolve(byID, l.Target, l.TargetID, i)
		if err != nil {
			return err
		}
		l.Source, l.Target = src, dst
		l.SourceID, l.TargetID = src.ID, dst.ID
	}

	// Adjacency is filled only once every link resolved, so a failed call
	// leaves no half-built lists behind.
	for _, l := range g.Links {
		l.Source.SourceLinks = append(l.Source.SourceLinks, l)
		l.Target.TargetLinks = append(l.Target.TargetLinks, l)
	}

	if cmp := s.cfg.LinkSort; cmp != nil {
		for _, n := range g.Nodes {
			slices.SortStableFunc(n.SourceLinks, cmp)
			slices.SortStableFunc(n.TargetLinks, cmp)
		}
	}
	return nil
}

func resolve(byID map[string]*Node, ref *Node, id string, link int) (*Node, error) {
	if ref != nil {
		id = ref.ID
	}
	n, ok := byID[id]
	if !ok {
		return nil, &MissingNodeError{ID: id, Link: link}
	}
	return n, nil
}
