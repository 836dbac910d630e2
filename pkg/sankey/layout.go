package sankey

// state is the scratch space of one layout computation.
type state struct {
	cfg     Config
	graph   *Graph
	columns [][]*Node
	py      float64 // effective node padding
	ky      float64 // value-to-pixel scale
}

// Compute lays out g in place and returns it.
//
// The passes run in a fixed order: indexing, value resolution, depth and
// height layering, column assignment, breadth solving, link geometry and
// finally terminal normalization. A *MissingNodeError or *DuplicateNodeError
// aborts before layering; a *CyclicGraphError aborts before any geometry is
// written. An empty graph is not an error.
func Compute(g *Graph, opts ...Option) (*Graph, error) {
	return NewConfig(opts...).Compute(g)
}

// Compute lays out g in place using c.
func (c Config) Compute(g *Graph) (*Graph, error) {
	if g == nil {
		g = NewGraph()
	}
	c.sanitize()
	s := &state{cfg: c, graph: g}

	if err := s.computeNodeLinks(); err != nil {
		return nil, err
	}
	s.computeNodeValues()
	if err := s.computeNodeDepths(); err != nil {
		return nil, err
	}
	if err := s.computeNodeHeights(); err != nil {
		return nil, err
	}
	s.columns = s.computeNodeLayers()
	s.computeNodeBreadths()
	s.computeLinkBreadths()
	s.computeStartEndNodes()
	g.Scale = s.ky
	return g, nil
}
