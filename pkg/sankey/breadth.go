package sankey

import (
	"cmp"
	"math"
	"slices"
)

// collisionEpsilon is the smallest push applied when separating nodes.
const collisionEpsilon = 1e-6

// computeNodeBreadths places nodes vertically: an initial proportional
// stacking followed by Iterations rounds of relaxation.
func (s *state) computeNodeBreadths() {
	s.initializeNodeBreadths()
	n := s.cfg.Iterations
	for i := 0; i < n; i++ {
		alpha := math.Pow(s.cfg.Decay, float64(i))
		beta := math.Max(1-alpha, float64(i+1)/float64(n))
		s.relaxRightToLeft(alpha, beta)
		s.relaxLeftToRight(alpha, beta)
	}
}

// =============================================================================
// Initialization
// =============================================================================

func (s *state) initializeNodeBreadths() {
	h := s.cfg.Height

	longest := 0
	for _, c := range s.columns {
		longest = max(longest, len(c))
	}
	s.py = s.cfg.NodePadding
	if longest > 1 {
		s.py = math.Min(s.py, h/float64(longest-1))
	}

	s.ky = math.Inf(1)
	for _, c := range s.columns {
		if len(c) == 0 {
			continue
		}
		total := 0.0
		for _, n := range c {
			total += s.sizeValue(n)
		}
		if total <= 0 {
			continue
		}
		s.ky = math.Min(s.ky, (h-float64(len(c)-1)*s.py)/total)
	}
	if !finite(s.ky) || s.ky < 0 {
		s.ky = 0
	}

	for _, c := range s.columns {
		y := 0.0
		for _, n := range c {
			n.Y0 = y
			n.Y1 = y + s.sizeValue(n)*s.ky
			y = n.Y1 + s.py
			for _, l := range n.SourceLinks {
				l.Width = s.linkWidth(l)
			}
		}
		// Spread the leftover space over every gap, ends included, so a
		// lone node is centred and larger columns are evenly spaced.
		gap := math.Max(0, (h-y+s.py)/float64(len(c)+1))
		for i, n := range c {
			n.Y0 += gap * float64(i+1)
			n.Y1 += gap * float64(i+1)
		}
		s.reorderLinks(c)
	}
}

// sizeValue is the value a node is sized by, floored at MinValue.
func (s *state) sizeValue(n *Node) float64 {
	v := n.Value
	if !finite(v) || v < 0 {
		v = 0
	}
	return math.Max(v, s.cfg.MinValue)
}

func (s *state) linkWidth(l *Link) float64 {
	v := math.Abs(l.Value)
	if !finite(v) {
		return 0
	}
	return v * s.ky
}

// =============================================================================
// Relaxation
// =============================================================================

// relaxLeftToRight moves each node toward the weighted centre of its
// incoming links' sources, one column at a time.
func (s *state) relaxLeftToRight(alpha, beta float64) {
	for i := 1; i < len(s.columns); i++ {
		column := s.columns[i]
		for _, target := range column {
			if s.pinTerminal(target) {
				s.reorderNodeLinks(target)
				continue
			}
			var y, w float64
			for _, l := range target.TargetLinks {
				v := relaxWeight(l, l.Source, target)
				y += s.targetTop(l.Source, target) * v
				w += v
			}
			if !(w > 0) {
				continue
			}
			dy := (y/w - target.Y0) * alpha
			target.Y0 += dy
			target.Y1 += dy
			s.reorderNodeLinks(target)
		}
		if s.cfg.NodeSort == nil {
			sortByBreadth(column)
		}
		s.resolveCollisions(column, beta)
	}
}

// relaxRightToLeft is the mirror of relaxLeftToRight using outgoing links.
func (s *state) relaxRightToLeft(alpha, beta float64) {
	for i := len(s.columns) - 2; i >= 0; i-- {
		column := s.columns[i]
		for _, source := range column {
			if s.pinTerminal(source) {
				s.reorderNodeLinks(source)
				continue
			}
			var y, w float64
			for _, l := range source.SourceLinks {
				v := relaxWeight(l, source, l.Target)
				y += s.sourceTop(source, l.Target) * v
				w += v
			}
			if !(w > 0) {
				continue
			}
			dy := (y/w - source.Y0) * alpha
			source.Y0 += dy
			source.Y1 += dy
			s.reorderNodeLinks(source)
		}
		if s.cfg.NodeSort == nil {
			sortByBreadth(column)
		}
		s.resolveCollisions(column, beta)
	}
}

// pinTerminal holds a terminal node at its fixed offset from the top (start)
// or bottom (end) edge, keeping its breadth. It reports whether n is a
// terminal.
func (s *state) pinTerminal(n *Node) bool {
	t := s.cfg.Terminals
	off := s.cfg.Height * s.cfg.TerminalOffset
	switch {
	case t.Start != "" && n.ID == t.Start:
		b := n.Breadth()
		n.Y0 = off
		n.Y1 = off + b
	case t.End != "" && n.ID == t.End:
		b := n.Breadth()
		n.Y1 = s.cfg.Height - off
		n.Y0 = n.Y1 - b
	default:
		return false
	}
	return true
}

// targetTop returns the target.Y0 that would draw the link from source to
// target without bending, given the links already fanning out of source.
func (s *state) targetTop(source, target *Node) float64 {
	y := source.Y0 - float64(len(source.SourceLinks)-1)*s.py/2
	for _, l := range source.SourceLinks {
		if l.Target == target {
			break
		}
		y += l.Width + s.py + s.extraSpacing(l)
	}
	for _, l := range target.TargetLinks {
		if l.Source == source {
			break
		}
		y -= l.Width
	}
	return y
}

// sourceTop returns the source.Y0 that would draw the link from source to
// target without bending, given the links already fanning into target.
func (s *state) sourceTop(source, target *Node) float64 {
	y := target.Y0 - float64(len(target.TargetLinks)-1)*s.py/2
	for _, l := range target.TargetLinks {
		if l.Source == source {
			break
		}
		y += l.Width + s.py + s.extraSpacing(l)
	}
	for _, l := range source.SourceLinks {
		if l.Target == target {
			break
		}
		y -= l.Width
	}
	return y
}

// relaxWeight is the pull of l on its endpoints. Non-finite values carry no
// weight.
func relaxWeight(l *Link, a, b *Node) float64 {
	v := math.Abs(l.Value) * layerDistance(a, b)
	if !finite(v) {
		return 0
	}
	return v
}

// layerDistance weights a link by the columns it spans. Alignment strategies
// may place a target left of its source, so the distance is absolute.
func layerDistance(a, b *Node) float64 {
	return math.Abs(float64(b.Layer - a.Layer))
}

func (s *state) extraSpacing(l *Link) float64 {
	if s.cfg.Spacing != nil && s.cfg.Spacing(l) {
		return s.py
	}
	return 0
}

// =============================================================================
// Collision resolution
// =============================================================================

// resolveCollisions separates overlapping nodes of a column outward from
// the median node, then pulls the column back inside the diagram. beta
// scales each push. Pinned terminals are obstacles: they are never moved
// but the nodes around them are pushed clear.
func (s *state) resolveCollisions(column []*Node, beta float64) {
	if len(column) == 0 {
		return
	}
	i := len(column) >> 1
	pivot := column[i]
	s.resolveBottomToTop(column, pivot.Y0-s.py, i-1, beta)
	s.resolveTopToBottom(column, pivot.Y1+s.py, i+1, beta)
	s.resolveBottomToTop(column, s.cfg.Height, len(column)-1, beta)
	s.resolveTopToBottom(column, 0, 0, beta)
}

// resolveTopToBottom pushes nodes from index i downward so each starts at
// least at y.
func (s *state) resolveTopToBottom(column []*Node, y float64, i int, beta float64) {
	for ; i < len(column); i++ {
		n := column[i]
		if s.cfg.isTerminal(n) {
			y = max(y, n.Y1+s.py)
			continue
		}
		if dy := (y - n.Y0) * beta; dy > collisionEpsilon {
			n.Y0 += dy
			n.Y1 += dy
		}
		y = n.Y1 + s.py
	}
}

// resolveBottomToTop pushes nodes from index i upward so each ends at most
// at y.
func (s *state) resolveBottomToTop(column []*Node, y float64, i int, beta float64) {
	for ; i >= 0; i-- {
		n := column[i]
		if s.cfg.isTerminal(n) {
			y = min(y, n.Y0-s.py)
			continue
		}
		if dy := (n.Y1 - y) * beta; dy > collisionEpsilon {
			n.Y0 -= dy
			n.Y1 -= dy
		}
		y = n.Y0 - s.py
	}
}

// =============================================================================
// Link ordering
// =============================================================================

// reorderNodeLinks re-sorts the link lists of n's neighbours after n moved.
func (s *state) reorderNodeLinks(n *Node) {
	if s.cfg.LinkSort != nil {
		return
	}
	for _, l := range n.TargetLinks {
		slices.SortStableFunc(l.Source.SourceLinks, ascendingTargetBreadth)
	}
	for _, l := range n.SourceLinks {
		slices.SortStableFunc(l.Target.TargetLinks, ascendingSourceBreadth)
	}
}

func (s *state) reorderLinks(column []*Node) {
	if s.cfg.LinkSort != nil {
		return
	}
	for _, n := range column {
		slices.SortStableFunc(n.SourceLinks, ascendingTargetBreadth)
		slices.SortStableFunc(n.TargetLinks, ascendingSourceBreadth)
	}
}

func sortByBreadth(column []*Node) {
	slices.SortStableFunc(column, func(a, b *Node) int { return cmp.Compare(a.Y0, b.Y0) })
}

func ascendingTargetBreadth(a, b *Link) int {
	if c := cmp.Compare(a.Target.Y0, b.Target.Y0); c != 0 {
		return c
	}
	return cmp.Compare(a.Index, b.Index)
}

func ascendingSourceBreadth(a, b *Link) int {
	if c := cmp.Compare(a.Source.Y0, b.Source.Y0); c != 0 {
		return c
	}
	return cmp.Compare(a.Index, b.Index)
}
