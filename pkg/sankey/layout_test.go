package sankey

import (
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
)

type testLink struct {
	from, to string
	value    float64
}

func buildGraph(nodes []string, links []testLink) *Graph {
	g := NewGraph()
	for _, id := range nodes {
		g.AddNode(id)
	}
	for _, l := range links {
		g.AddLink(l.from, l.to, l.value)
	}
	return g
}

func approx(a, b float64) bool { return math.Abs(a-b) <= 1e-9*math.Max(1, math.Abs(b)) }

func TestLinearChain(t *testing.T) {
	g := buildGraph([]string{"A", "B", "C"}, []testLink{
		{"A", "B", 10},
		{"B", "C", 10},
	})
	if _, err := Compute(g); err != nil {
		t.Fatalf("Compute: %v", err)
	}

	for i, want := range []int{0, 1, 2} {
		n := g.Nodes[i]
		if n.Depth != want {
			t.Errorf("%s.Depth = %d, want %d", n.ID, n.Depth, want)
		}
		if n.Layer != want {
			t.Errorf("%s.Layer = %d, want %d", n.ID, n.Layer, want)
		}
		if n.Value != 10 {
			t.Errorf("%s.Value = %v, want 10", n.ID, n.Value)
		}
	}
	if cols := g.Columns(); len(cols) != 3 {
		t.Fatalf("columns = %d, want 3", len(cols))
	}

	// Every column holds a single node, so ky = height / 10.
	if want := DefaultHeight / 10; g.Scale != want {
		t.Errorf("Scale = %v, want %v", g.Scale, want)
	}
	for _, l := range g.Links {
		if l.Width != 10*g.Scale {
			t.Errorf("link %d width = %v, want %v", l.Index, l.Width, 10*g.Scale)
		}
	}

	wantX := []float64{0, (DefaultWidth - DefaultNodeWidth) / 2, DefaultWidth - DefaultNodeWidth}
	for i, n := range g.Nodes {
		if !approx(n.X0, wantX[i]) {
			t.Errorf("%s.X0 = %v, want %v", n.ID, n.X0, wantX[i])
		}
		if n.X1-n.X0 != DefaultNodeWidth {
			t.Errorf("%s width = %v, want %v", n.ID, n.X1-n.X0, DefaultNodeWidth)
		}
	}
	if err := Check(g, 0); err != nil {
		t.Errorf("Check: %v", err)
	}
}

func TestFanOutWithDroppedFlow(t *testing.T) {
	g := buildGraph([]string{"A", "B", "Dropped"}, []testLink{
		{"A", "B", 4},
		{"A", "Dropped", 6},
	})
	if _, err := Compute(g); err != nil {
		t.Fatalf("Compute: %v", err)
	}

	a, b := g.Node("A"), g.Node("B")
	if a.Value != 10 {
		t.Errorf("A.Value = %v, want 10", a.Value)
	}
	if b.Value != 4 {
		t.Errorf("B.Value = %v, want 4", b.Value)
	}

	var sum float64
	for _, l := range a.SourceLinks {
		sum += l.Width
	}
	if !approx(sum, a.Breadth()) {
		t.Errorf("link widths sum to %v, A is %v tall", sum, a.Breadth())
	}

	// Outgoing links stack without gaps from the top of A.
	first, second := a.SourceLinks[0], a.SourceLinks[1]
	if !approx(first.Y0, a.Y0+first.Width/2) {
		t.Errorf("first link y0 = %v, want %v", first.Y0, a.Y0+first.Width/2)
	}
	if !approx(second.Y0, a.Y0+first.Width+second.Width/2) {
		t.Errorf("second link y0 = %v, want %v", second.Y0, a.Y0+first.Width+second.Width/2)
	}
	if err := Check(g, 0); err != nil {
		t.Errorf("Check: %v", err)
	}
}

func TestMissingNode(t *testing.T) {
	g := buildGraph([]string{"A", "B"}, []testLink{
		{"A", "B", 1},
		{"B", "ghost", 1},
	})
	_, err := Compute(g)

	var missing *MissingNodeError
	if !errors.As(err, &missing) {
		t.Fatalf("err = %v, want *MissingNodeError", err)
	}
	if missing.ID != "ghost" {
		t.Errorf("missing ID = %q, want %q", missing.ID, "ghost")
	}
	if missing.Link != 1 {
		t.Errorf("missing link = %d, want 1", missing.Link)
	}
	if !errors.Is(err, ErrMissingNode) {
		t.Error("errors.Is(err, ErrMissingNode) = false")
	}

	// Nothing past indexing ran.
	for _, n := range g.Nodes {
		if len(n.SourceLinks) != 0 || len(n.TargetLinks) != 0 {
			t.Errorf("%s has adjacency after failed indexing", n.ID)
		}
		if n.Depth != 0 || n.Y1 != 0 {
			t.Errorf("%s has layout fields after failed indexing", n.ID)
		}
	}
}

func TestCyclicGraph(t *testing.T) {
	tests := []struct {
		name  string
		nodes []string
		links []testLink
	}{
		{"two-cycle", []string{"A", "B"}, []testLink{{"A", "B", 1}, {"B", "A", 1}}},
		{"self-loop", []string{"A"}, []testLink{{"A", "A", 1}}},
		{"cycle behind chain", []string{"S", "A", "B", "C"}, []testLink{
			{"S", "A", 1}, {"A", "B", 1}, {"B", "C", 1}, {"C", "A", 1},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := buildGraph(tt.nodes, tt.links)
			out, err := Compute(g)
			if out != nil {
				t.Error("Compute returned a graph for a cyclic input")
			}
			var cyclic *CyclicGraphError
			if !errors.As(err, &cyclic) {
				t.Fatalf("err = %v, want *CyclicGraphError", err)
			}
			if !errors.Is(err, ErrCyclicGraph) {
				t.Error("errors.Is(err, ErrCyclicGraph) = false")
			}
			for _, n := range g.Nodes {
				if n.X1 != 0 || n.Y1 != 0 {
					t.Errorf("%s has geometry after a cycle error", n.ID)
				}
			}
		})
	}
}

func TestDuplicateNode(t *testing.T) {
	g := buildGraph([]string{"A", "A"}, nil)
	_, err := Compute(g)
	if !errors.Is(err, ErrDuplicateNode) {
		t.Fatalf("err = %v, want ErrDuplicateNode", err)
	}
}

func TestEmptyGraph(t *testing.T) {
	for _, g := range []*Graph{nil, NewGraph()} {
		out, err := Compute(g)
		if err != nil {
			t.Fatalf("Compute(empty): %v", err)
		}
		if len(out.Nodes) != 0 || len(out.Links) != 0 {
			t.Errorf("empty graph produced %d nodes, %d links", len(out.Nodes), len(out.Links))
		}
		if out.Columns() != nil {
			t.Error("empty graph has columns")
		}
	}
}

func TestIsolatedNodeAndZeroFlow(t *testing.T) {
	g := buildGraph([]string{"A", "B", "lonely"}, []testLink{{"A", "B", 0}})
	if _, err := Compute(g); err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if g.Scale != 0 {
		t.Errorf("Scale = %v, want 0 when every column is empty of flow", g.Scale)
	}
	for _, n := range g.Nodes {
		if n.Value != 0 {
			t.Errorf("%s.Value = %v, want 0", n.ID, n.Value)
		}
		for _, v := range []float64{n.X0, n.X1, n.Y0, n.Y1} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("%s has non-finite geometry %v", n.ID, v)
			}
		}
	}
	if err := Check(g, 0); err != nil {
		t.Errorf("Check: %v", err)
	}
}

func TestMinValueFloor(t *testing.T) {
	g := buildGraph([]string{"A", "B", "C"}, []testLink{{"A", "B", 10}, {"A", "C", 0}})
	if _, err := Compute(g, WithMinValue(1)); err != nil {
		t.Fatalf("Compute: %v", err)
	}
	c := g.Node("C")
	if c.Value != 0 {
		t.Errorf("C.Value = %v, want 0", c.Value)
	}
	if !approx(c.Breadth(), g.Scale) {
		t.Errorf("C breadth = %v, want one value unit %v", c.Breadth(), g.Scale)
	}
}

func TestFixedValues(t *testing.T) {
	g := buildGraph([]string{"A", "B", "C"}, []testLink{{"A", "B", 3}, {"B", "C", 3}})
	fixed := 20.0
	g.Node("A").FixedValue = &fixed

	if _, err := Compute(g, WithFixedValues(map[string]float64{"C": 7})); err != nil {
		t.Fatalf("Compute: %v", err)
	}
	want := map[string]float64{"A": 20, "B": 3, "C": 7}
	for id, v := range want {
		if got := g.Node(id).Value; got != v {
			t.Errorf("%s.Value = %v, want %v", id, got, v)
		}
	}
	if err := Check(g, 0, WithFixedValues(map[string]float64{"C": 7})); err != nil {
		t.Errorf("Check: %v", err)
	}
}

func TestTerminalNormalization(t *testing.T) {
	g := buildGraph([]string{"start", "A", "B", "C", "end"}, []testLink{
		{"start", "A", 10},
		{"A", "B", 6},
		{"A", "C", 4},
		{"B", "end", 6},
		{"C", "end", 2},
	})
	opts := []Option{WithTerminals("start", "end"), WithTerminalColumnFraction(0.1)}
	if _, err := Compute(g, opts...); err != nil {
		t.Fatalf("Compute: %v", err)
	}

	bottom := 0.0
	for _, n := range g.Nodes {
		bottom = math.Max(bottom, n.Y1)
	}
	for _, id := range []string{"start", "end"} {
		n := g.Node(id)
		if n.Y0 != 0 || n.Y1 != bottom {
			t.Errorf("%s spans [%v, %v], want [0, %v]", id, n.Y0, n.Y1, bottom)
		}
	}

	if x := g.Node("start").X0; x != 0 {
		t.Errorf("start.X0 = %v, want 0", x)
	}
	if x, want := g.Node("end").X0, DefaultWidth-DefaultNodeWidth; x != want {
		t.Errorf("end.X0 = %v, want %v", x, want)
	}
	// Interior columns live inside the reserved strips.
	lo, hi := 0.1*DefaultWidth, DefaultWidth-0.1*DefaultWidth-DefaultNodeWidth
	for _, id := range []string{"A", "B", "C"} {
		if x := g.Node(id).X0; x < lo-1e-9 || x > hi+1e-9 {
			t.Errorf("%s.X0 = %v, want within [%v, %v]", id, x, lo, hi)
		}
	}
	if err := Check(g, 0, opts...); err != nil {
		t.Errorf("Check: %v", err)
	}
}

func TestPinTerminal(t *testing.T) {
	s := &state{cfg: NewConfig(WithTerminals("start", "end"), WithExtent(600, 600))}

	start := &Node{ID: "start", Y0: 10, Y1: 40}
	if !s.pinTerminal(start) {
		t.Fatal("start not recognised as terminal")
	}
	if start.Y0 != 100 || start.Y1 != 130 {
		t.Errorf("start pinned to [%v, %v], want [100, 130]", start.Y0, start.Y1)
	}

	end := &Node{ID: "end", Y0: 10, Y1: 40}
	s.pinTerminal(end)
	if end.Y0 != 470 || end.Y1 != 500 {
		t.Errorf("end pinned to [%v, %v], want [470, 500]", end.Y0, end.Y1)
	}

	other := &Node{ID: "other", Y0: 10, Y1: 40}
	if s.pinTerminal(other) || other.Y0 != 10 {
		t.Error("non-terminal node was pinned")
	}
}

func TestIdempotentRelayout(t *testing.T) {
	build := func() *Graph {
		return buildGraph([]string{"a", "b", "c", "d", "e"}, []testLink{
			{"a", "b", 5}, {"a", "c", 3}, {"b", "d", 2}, {"c", "d", 3}, {"b", "e", 3},
		})
	}
	g1, err := Compute(build())
	if err != nil {
		t.Fatal(err)
	}
	g2, err := Compute(build())
	if err != nil {
		t.Fatal(err)
	}
	assertSameGeometry(t, g1, g2)

	// Re-running on an already laid-out graph resets and recomputes.
	g3, err := Compute(g1.Clone())
	if err != nil {
		t.Fatal(err)
	}
	assertSameGeometry(t, g2, g3)
}

func TestConcurrentClones(t *testing.T) {
	base := buildGraph([]string{"a", "b", "c", "d"}, []testLink{
		{"a", "b", 5}, {"a", "c", 3}, {"b", "d", 5}, {"c", "d", 1},
	})
	want, err := Compute(base.Clone())
	if err != nil {
		t.Fatal(err)
	}

	const workers = 8
	results := make([]*Graph, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = Compute(base.Clone())
		}(i)
	}
	wg.Wait()
	for _, got := range results {
		assertSameGeometry(t, want, got)
	}
}

func TestNodeSortFixesColumnOrder(t *testing.T) {
	g := buildGraph([]string{"src", "z", "y", "x"}, []testLink{
		{"src", "z", 1}, {"src", "y", 5}, {"src", "x", 9},
	})
	byIDDesc := func(a, b *Node) int {
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		}
		return 0
	}
	if _, err := Compute(g, WithNodeSort(byIDDesc)); err != nil {
		t.Fatal(err)
	}
	col := g.Columns()[1]
	for i, want := range []string{"z", "y", "x"} {
		if col[i].ID != want {
			t.Errorf("column[%d] = %s, want %s", i, col[i].ID, want)
		}
	}
}

func TestLinkSortFixesLinkOrder(t *testing.T) {
	g := buildGraph([]string{"src", "a", "b", "c"}, []testLink{
		{"src", "a", 1}, {"src", "b", 2}, {"src", "c", 3},
	})
	byValueDesc := func(a, b *Link) int {
		switch {
		case a.Value > b.Value:
			return -1
		case a.Value < b.Value:
			return 1
		}
		return 0
	}
	if _, err := Compute(g, WithLinkSort(byValueDesc)); err != nil {
		t.Fatal(err)
	}
	links := g.Node("src").SourceLinks
	for i, want := range []float64{3, 2, 1} {
		if links[i].Value != want {
			t.Errorf("SourceLinks[%d].Value = %v, want %v", i, links[i].Value, want)
		}
	}
}

func TestLinksByPointer(t *testing.T) {
	g := NewGraph()
	a, b := g.AddNode("a"), g.AddNode("b")
	g.Links = append(g.Links, &Link{Source: a, Target: b, Value: 2})
	if _, err := Compute(g); err != nil {
		t.Fatal(err)
	}
	if l := g.Links[0]; l.SourceID != "a" || l.TargetID != "b" {
		t.Errorf("link ids = %q→%q, want a→b", l.SourceID, l.TargetID)
	}
	if c := g.Clone(); c.Links[0].SourceID != "a" || c.Links[0].Source != nil {
		t.Error("Clone should carry endpoints as ids only")
	}
}

func TestSpacingPredicate(t *testing.T) {
	src := &Node{ID: "in"}
	kept, dropped := &Node{ID: "kept"}, &Node{ID: "Dropped"}
	first := &Link{Source: src, Target: dropped, Width: 10}
	second := &Link{Source: src, Target: kept, Width: 20}
	src.SourceLinks = []*Link{first, second}
	dropped.TargetLinks = []*Link{first}
	kept.TargetLinks = []*Link{second}

	tests := []struct {
		name   string
		opts   []Option
		wantY0 float64
	}{
		{"no predicate", nil, -4 + 10 + 8},
		{"dropped spaced", []Option{WithSpacingPredicate(func(l *Link) bool {
			return l.Target.ID == "Dropped"
		})}, -4 + 10 + 8 + 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &state{cfg: NewConfig(tt.opts...), py: 8}
			if got := s.targetTop(src, kept); got != tt.wantY0 {
				t.Errorf("targetTop = %v, want %v", got, tt.wantY0)
			}
			// The first link is never preceded by a spaced one.
			if got := s.targetTop(src, dropped); got != -4 {
				t.Errorf("targetTop(first) = %v, want -4", got)
			}
		})
	}
}

func assertSameGeometry(t *testing.T, want, got *Graph) {
	t.Helper()
	if len(want.Nodes) != len(got.Nodes) || len(want.Links) != len(got.Links) {
		t.Fatalf("graph sizes differ")
	}
	for i, w := range want.Nodes {
		g := got.Nodes[i]
		if w.ID != g.ID || w.Layer != g.Layer || !approx(g.X0, w.X0) || !approx(g.Y0, w.Y0) || !approx(g.Y1, w.Y1) {
			t.Errorf("node %s: got layer %d [%v %v], want layer %d [%v %v]",
				w.ID, g.Layer, g.Y0, g.Y1, w.Layer, w.Y0, w.Y1)
		}
	}
	for i, w := range want.Links {
		g := got.Links[i]
		if !approx(g.Width, w.Width) || !approx(g.Y0, w.Y0) || !approx(g.Y1, w.Y1) {
			t.Errorf("link %d: got (%v %v %v), want (%v %v %v)", i, g.Width, g.Y0, g.Y1, w.Width, w.Y0, w.Y1)
		}
	}
}

func TestTerminalHeldWhileRelaxing(t *testing.T) {
	// The start terminal shares column 0 with two other sources.
	g := buildGraph([]string{"start", "x", "y", "A", "end"}, []testLink{
		{"start", "A", 10}, {"x", "A", 5}, {"y", "A", 5}, {"A", "end", 20},
	})
	cfg := NewConfig(WithExtent(600, 600), WithTerminals("start", "end"))
	cfg.sanitize()
	s := &state{cfg: cfg, graph: g}
	if err := s.computeNodeLinks(); err != nil {
		t.Fatal(err)
	}
	s.computeNodeValues()
	if err := s.computeNodeDepths(); err != nil {
		t.Fatal(err)
	}
	if err := s.computeNodeHeights(); err != nil {
		t.Fatal(err)
	}
	s.columns = s.computeNodeLayers()
	if len(s.columns[0]) != 3 {
		t.Fatalf("column 0 has %d nodes, want 3", len(s.columns[0]))
	}
	s.computeNodeBreadths()

	start, end := g.Node("start"), g.Node("end")
	if !approx(start.Y0, 100) {
		t.Errorf("start.Y0 = %v after relaxation, want 100", start.Y0)
	}
	if !approx(end.Y1, 500) {
		t.Errorf("end.Y1 = %v after relaxation, want 500", end.Y1)
	}
	for _, id := range []string{"x", "y"} {
		n := g.Node(id)
		if !finite(n.Y0) || !finite(n.Y1) || n.Y1 < n.Y0 {
			t.Errorf("%s has geometry [%v, %v]", id, n.Y0, n.Y1)
		}
	}

	laidOut, err := Compute(buildGraph([]string{"start", "x", "y", "A", "end"}, []testLink{
		{"start", "A", 10}, {"x", "A", 5}, {"y", "A", 5}, {"A", "end", 20},
	}), WithExtent(600, 600), WithTerminals("start", "end"))
	if err != nil {
		t.Fatal(err)
	}
	if err := Check(laidOut, 0, WithExtent(600, 600), WithTerminals("start", "end")); err != nil {
		t.Errorf("Check: %v", err)
	}
}

func TestInfiniteLinkValueKeepsGeometryFinite(t *testing.T) {
	g := buildGraph([]string{"a", "b", "c"}, []testLink{
		{"a", "c", math.Inf(1)}, {"b", "c", 1},
	})
	if _, err := Compute(g); err != nil {
		t.Fatal(err)
	}
	for _, n := range g.Nodes {
		for _, v := range []float64{n.X0, n.X1, n.Y0, n.Y1} {
			if !finite(v) {
				t.Fatalf("%s has geometry x [%v, %v] y [%v, %v]", n.ID, n.X0, n.X1, n.Y0, n.Y1)
			}
		}
	}
	for _, l := range g.Links {
		if !finite(l.Width) || !finite(l.Y0) || !finite(l.Y1) {
			t.Errorf("link %d has width %v, y0 %v, y1 %v", l.Index, l.Width, l.Y0, l.Y1)
		}
	}
}

func TestCheckReportsNonFiniteGeometry(t *testing.T) {
	g := buildGraph([]string{"lonely"}, nil)
	if _, err := Compute(g); err != nil {
		t.Fatal(err)
	}
	if err := Check(g, 0); err != nil {
		t.Fatalf("Check on a clean layout: %v", err)
	}

	g.Nodes[0].Y0 = math.NaN()
	err := Check(g, 0)
	if !errors.Is(err, ErrInvariant) {
		t.Fatalf("Check = %v, want ErrInvariant", err)
	}
	if !strings.Contains(err.Error(), "non-finite") {
		t.Errorf("error %q should mention non-finite geometry", err)
	}
}
