package sankey

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvariant matches every violation reported by [Check].
var ErrInvariant = errors.New("layout invariant violated")

// DefaultTolerance is the floating-point slack used by [Check].
const DefaultTolerance = 1e-6

// Check verifies the invariants of a laid-out graph: flow conservation on
// non-fixed nodes, non-negative geometry, disjoint nodes within a column and
// link endpoints inside their nodes. Terminal nodes are exempt from the
// disjointness check since they are stretched over the full height. All
// violations are joined into the returned error.
//
// opts must match the options the graph was laid out with.
func Check(g *Graph, tolerance float64, opts ...Option) error {
	return NewConfig(opts...).Check(g, tolerance)
}

// Check verifies the invariants of g laid out under c. See [Check].
func (c Config) Check(g *Graph, tolerance float64) error {
	if !(tolerance > 0) || math.IsInf(tolerance, 1) {
		tolerance = DefaultTolerance
	}
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvariant}, args...)...))
	}

	for _, n := range g.Nodes {
		if _, fixed := c.fixedValue(n); !fixed {
			want := math.Max(linkSum(n.SourceLinks), linkSum(n.TargetLinks))
			if math.Abs(n.Value-want) > tolerance*math.Max(1, want) {
				fail("node %q value %g, flow %g", n.ID, n.Value, want)
			}
		}
		if !finite(n.X0) || !finite(n.X1) || !finite(n.Y0) || !finite(n.Y1) {
			fail("node %q has non-finite geometry x [%g, %g] y [%g, %g]", n.ID, n.X0, n.X1, n.Y0, n.Y1)
			continue
		}
		if n.Y1 < n.Y0-tolerance {
			fail("node %q has y1 %g < y0 %g", n.ID, n.Y1, n.Y0)
		}
		if n.X1 < n.X0-tolerance {
			fail("node %q has x1 %g < x0 %g", n.ID, n.X1, n.X0)
		}
	}

	for _, l := range g.Links {
		if l.Source == nil || l.Target == nil {
			fail("link %d is not indexed", l.Index)
			continue
		}
		if !finite(l.Width) {
			fail("link %d has non-finite width %g", l.Index, l.Width)
		} else if l.Width < 0 {
			fail("link %d has negative width %g", l.Index, l.Width)
		}
		if !within(l.Y0, l.Source, tolerance) {
			fail("link %d y0 %g outside source %q [%g, %g]", l.Index, l.Y0, l.Source.ID, l.Source.Y0, l.Source.Y1)
		}
		if !within(l.Y1, l.Target, tolerance) {
			fail("link %d y1 %g outside target %q [%g, %g]", l.Index, l.Y1, l.Target.ID, l.Target.Y0, l.Target.Y1)
		}
	}

	for _, col := range g.Columns() {
		var prev *Node
		for _, n := range col {
			if c.isTerminal(n) {
				continue
			}
			if prev != nil {
				if overlap := math.Min(prev.Y1, n.Y1) - math.Max(prev.Y0, n.Y0); overlap > tolerance {
					fail("nodes %q and %q overlap by %g in column %d", prev.ID, n.ID, overlap, n.Layer)
				}
			}
			prev = n
		}
	}
	return errors.Join(errs...)
}

func within(y float64, n *Node, tol float64) bool {
	return y >= n.Y0-tol && y <= n.Y1+tol
}

func (c Config) isTerminal(n *Node) bool {
	t := c.Terminals
	return (t.Start != "" && n.ID == t.Start) || (t.End != "" && n.ID == t.End)
}
