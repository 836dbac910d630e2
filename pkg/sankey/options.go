package sankey

// Default configuration values.
const (
	DefaultWidth       = 960.0
	DefaultHeight      = 500.0
	DefaultNodeWidth   = 24.0
	DefaultNodePadding = 8.0
	DefaultIterations  = 6
	DefaultDecay       = 0.99

	// DefaultTerminalOffset is the fraction of the diagram height kept
	// between a terminal node and its edge while relaxing.
	DefaultTerminalOffset = 1.0 / 6.0
)

// AlignmentStrategy returns the fractional column of node in a diagram with
// n columns. The result is floored and clamped into [0, n-1].
type AlignmentStrategy func(node *Node, n int) float64

// NodeComparator orders nodes within a column. When set, column order is
// fixed by the comparator and never changed by relaxation.
type NodeComparator func(a, b *Node) int

// LinkComparator orders the links leaving and entering each node. When set,
// link order is fixed by the comparator.
type LinkComparator func(a, b *Link) int

// SpacingPredicate marks links that get one extra padding unit between
// themselves and their neighbours when relaxation computes ideal node
// positions.
type SpacingPredicate func(l *Link) bool

// Terminals names the start and end marker nodes. Either may be empty.
type Terminals struct {
	Start string
	End   string
}

func (t Terminals) any() bool { return t.Start != "" || t.End != "" }

// Config holds the layout parameters. Build one with [NewConfig] so unset
// fields get their defaults.
type Config struct {
	Width, Height float64
	NodeWidth     float64
	NodePadding   float64
	Iterations    int
	Decay         float64

	// MinValue floors the value used to size nodes. Flow conservation on
	// Node.Value is unaffected.
	MinValue float64

	Align    AlignmentStrategy
	NodeSort NodeComparator
	LinkSort LinkComparator
	Spacing  SpacingPredicate

	Terminals Terminals
	// TerminalColumnFraction is the share of the width reserved on each side
	// for the terminal columns. Zero spaces all columns evenly.
	TerminalColumnFraction float64
	TerminalOffset         float64

	// FixedValues overrides Node.FixedValue by node id.
	FixedValues map[string]float64
}

// Option configures a layout.
type Option func(*Config)

// NewConfig returns the default configuration with opts applied.
func NewConfig(opts ...Option) Config {
	c := Config{
		Width:          DefaultWidth,
		Height:         DefaultHeight,
		NodeWidth:      DefaultNodeWidth,
		NodePadding:    DefaultNodePadding,
		Iterations:     DefaultIterations,
		Decay:          DefaultDecay,
		Align:          Justify,
		TerminalOffset: DefaultTerminalOffset,
	}
	for _, opt := range opts {
		opt(&c)
	}
	c.sanitize()
	return c
}

func (c *Config) sanitize() {
	c.Width = nonNegative(c.Width)
	c.Height = nonNegative(c.Height)
	c.NodeWidth = nonNegative(c.NodeWidth)
	c.NodePadding = nonNegative(c.NodePadding)
	c.MinValue = nonNegative(c.MinValue)
	if c.Iterations < 0 {
		c.Iterations = 0
	}
	if c.Decay <= 0 || c.Decay > 1 || !finite(c.Decay) {
		c.Decay = DefaultDecay
	}
	if c.Align == nil {
		c.Align = Justify
	}
	if f := c.TerminalColumnFraction; !(f >= 0 && f < 0.5) {
		c.TerminalColumnFraction = 0
	}
	if f := c.TerminalOffset; !(f >= 0 && f <= 0.5) {
		c.TerminalOffset = DefaultTerminalOffset
	}
}

// WithExtent sets the diagram width and height.
func WithExtent(width, height float64) Option {
	return func(c *Config) { c.Width, c.Height = width, height }
}

// WithNodeWidth sets the horizontal size of every node.
func WithNodeWidth(w float64) Option { return func(c *Config) { c.NodeWidth = w } }

// WithNodePadding sets the minimum vertical gap between nodes of a column.
func WithNodePadding(p float64) Option { return func(c *Config) { c.NodePadding = p } }

// WithIterations sets the number of relaxation iterations.
func WithIterations(n int) Option { return func(c *Config) { c.Iterations = n } }

// WithDecay sets the per-iteration decay of the relaxation step size.
func WithDecay(d float64) Option { return func(c *Config) { c.Decay = d } }

// WithMinValue floors the value used to size nodes.
func WithMinValue(v float64) Option { return func(c *Config) { c.MinValue = v } }

// WithAlign sets the column alignment strategy.
func WithAlign(a AlignmentStrategy) Option { return func(c *Config) { c.Align = a } }

// WithNodeSort fixes the node order within columns.
func WithNodeSort(cmp NodeComparator) Option { return func(c *Config) { c.NodeSort = cmp } }

// WithLinkSort fixes the link order at every node.
func WithLinkSort(cmp LinkComparator) Option { return func(c *Config) { c.LinkSort = cmp } }

// WithSpacingPredicate adds extra spacing next to matching links.
func WithSpacingPredicate(p SpacingPredicate) Option { return func(c *Config) { c.Spacing = p } }

// WithTerminals designates the start and end terminal nodes.
func WithTerminals(start, end string) Option {
	return func(c *Config) { c.Terminals = Terminals{Start: start, End: end} }
}

// WithTerminalColumnFraction reserves a share of the width for each terminal column.
func WithTerminalColumnFraction(f float64) Option {
	return func(c *Config) { c.TerminalColumnFraction = f }
}

// WithTerminalOffset sets where terminals are held while relaxing, as a
// fraction of the height from their edge.
func WithTerminalOffset(f float64) Option { return func(c *Config) { c.TerminalOffset = f } }

// WithFixedValues pins node values by id.
func WithFixedValues(values map[string]float64) Option {
	return func(c *Config) {
		if c.FixedValues == nil {
			c.FixedValues = make(map[string]float64, len(values))
		}
		for id, v := range values {
			c.FixedValues[id] = v
		}
	}
}
