package sankey

import (
	"math"
	"testing"
)

func TestNewConfigDefaults(t *testing.T) {
	c := NewConfig()
	if c.Width != DefaultWidth || c.Height != DefaultHeight {
		t.Errorf("extent = %vx%v, want %vx%v", c.Width, c.Height, DefaultWidth, DefaultHeight)
	}
	if c.NodeWidth != DefaultNodeWidth || c.NodePadding != DefaultNodePadding {
		t.Errorf("node = %v/%v, want %v/%v", c.NodeWidth, c.NodePadding, DefaultNodeWidth, DefaultNodePadding)
	}
	if c.Iterations != DefaultIterations || c.Decay != DefaultDecay {
		t.Errorf("relaxation = %d/%v, want %d/%v", c.Iterations, c.Decay, DefaultIterations, DefaultDecay)
	}
	if c.Align == nil {
		t.Error("Align is nil")
	}
	if c.MinValue != 0 {
		t.Errorf("MinValue = %v, want 0", c.MinValue)
	}
}

func TestNewConfigClampsDegenerateValues(t *testing.T) {
	c := NewConfig(
		WithExtent(-10, math.NaN()),
		WithNodeWidth(math.Inf(1)),
		WithNodePadding(-1),
		WithIterations(-3),
		WithDecay(2),
		WithMinValue(-5),
		WithAlign(nil),
		WithTerminalColumnFraction(0.7),
		WithTerminalOffset(-1),
	)

	if c.Width != 0 || c.Height != 0 || c.NodeWidth != 0 || c.NodePadding != 0 {
		t.Errorf("geometry not clamped: %+v", c)
	}
	if c.Iterations != 0 {
		t.Errorf("Iterations = %d, want 0", c.Iterations)
	}
	if c.Decay != DefaultDecay {
		t.Errorf("Decay = %v, want %v", c.Decay, DefaultDecay)
	}
	if c.MinValue != 0 {
		t.Errorf("MinValue = %v, want 0", c.MinValue)
	}
	if c.Align == nil {
		t.Error("nil Align not replaced")
	}
	if c.TerminalColumnFraction != 0 {
		t.Errorf("TerminalColumnFraction = %v, want 0", c.TerminalColumnFraction)
	}
	if c.TerminalOffset != DefaultTerminalOffset {
		t.Errorf("TerminalOffset = %v, want %v", c.TerminalOffset, DefaultTerminalOffset)
	}
}

func TestWithFixedValuesMerges(t *testing.T) {
	c := NewConfig(
		WithFixedValues(map[string]float64{"a": 1}),
		WithFixedValues(map[string]float64{"b": 2, "a": 3}),
	)
	if len(c.FixedValues) != 2 || c.FixedValues["a"] != 3 || c.FixedValues["b"] != 2 {
		t.Errorf("FixedValues = %v", c.FixedValues)
	}
}

func TestZeroExtentLayout(t *testing.T) {
	g := buildGraph([]string{"a", "b"}, []testLink{{"a", "b", 3}})
	if _, err := Compute(g, WithExtent(0, 0), WithIterations(0)); err != nil {
		t.Fatal(err)
	}
	for _, n := range g.Nodes {
		if n.Y0 != 0 || n.Y1 != 0 || n.X0 != 0 {
			t.Errorf("%s = [%v %v %v], want all zero", n.ID, n.X0, n.Y0, n.Y1)
		}
	}
}
