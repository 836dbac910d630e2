package sankey

// Hints carries per-node display hints for the renderer. The layout engine
// never reads or changes them.
type Hints struct {
	LabelPosition string // forced label side ("left", "right"), empty for automatic
	Hide          bool   // do not draw the node
	AlwaysVisible bool   // draw even when the node's value is zero
}

// Node is a stage of the flow graph.
//
// ID, FixedValue and Hints are inputs. Every other field is written by
// [Compute]: adjacency and Index by the indexer, Value by the value resolver,
// Depth and Height by the layering pass, Layer/X0/X1 by column assignment and
// Y0/Y1 by the breadth solver.
type Node struct {
	ID         string
	FixedValue *float64
	Hints      Hints

	Index       int
	SourceLinks []*Link // links leaving this node, in layout order
	TargetLinks []*Link // links entering this node, in layout order

	Value  float64
	Depth  int
	Height int
	Layer  int

	X0, X1 float64
	Y0, Y1 float64
}

// Breadth returns the vertical extent of the node.
func (n *Node) Breadth() float64 { return n.Y1 - n.Y0 }

// IsSource reports whether the node has no incoming links.
func (n *Node) IsSource() bool { return len(n.TargetLinks) == 0 }

// IsSink reports whether the node has no outgoing links.
func (n *Node) IsSink() bool { return len(n.SourceLinks) == 0 }

// Link is a weighted flow between two nodes.
//
// Callers either name the endpoints with SourceID/TargetID or set the
// Source/Target pointers directly; the indexer resolves ids to pointers.
// Y0 and Y1 are the link centreline offsets at the source and target end.
type Link struct {
	ID       string
	SourceID string
	TargetID string
	Value    float64

	Source *Node
	Target *Node
	Index  int

	Width  float64
	Y0, Y1 float64
}

// Graph is the node/link list laid out in place by [Compute].
//
// A Graph is not safe for concurrent layout. Use [Graph.Clone] to give each
// concurrent computation its own node and link objects.
type Graph struct {
	Nodes []*Node
	Links []*Link

	// Scale is the value-to-pixel ratio the last layout used for node and
	// link sizes.
	Scale float64
}

// NewGraph returns an empty graph.
func NewGraph() *Graph { return &Graph{} }

// AddNode appends a node with the given id and returns it.
func (g *Graph) AddNode(id string) *Node {
	n := &Node{ID: id}
	g.Nodes = append(g.Nodes, n)
	return n
}

// AddLink appends a link between two node ids and returns it.
func (g *Graph) AddLink(source, target string, value float64) *Link {
	l := &Link{SourceID: source, TargetID: target, Value: value}
	g.Links = append(g.Links, l)
	return l
}

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id string) *Node {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// Clone copies the layout inputs of g into fresh objects. Computed geometry
// is not copied; link endpoints given only as pointers are carried over as
// ids.
func (g *Graph) Clone() *Graph {
	out := &Graph{
		Nodes: make([]*Node, len(g.Nodes)),
		Links: make([]*Link, len(g.Links)),
	}
	for i, n := range g.Nodes {
		c := &Node{ID: n.ID, Hints: n.Hints}
		if n.FixedValue != nil {
			v := *n.FixedValue
			c.FixedValue = &v
		}
		out.Nodes[i] = c
	}
	for i, l := range g.Links {
		out.Links[i] = &Link{
			ID:       l.ID,
			SourceID: endpointID(l.SourceID, l.Source),
			TargetID: endpointID(l.TargetID, l.Target),
			Value:    l.Value,
		}
	}
	return out
}

func endpointID(id string, n *Node) string {
	if n != nil {
		return n.ID
	}
	return id
}

// Columns groups the laid-out nodes by layer, each column ordered top to
// bottom. It is meaningful only after a successful [Compute].
func (g *Graph) Columns() [][]*Node {
	n := 0
	for _, node := range g.Nodes {
		if node.Layer+1 > n {
			n = node.Layer + 1
		}
	}
	if len(g.Nodes) == 0 {
		return nil
	}
	cols := make([][]*Node, n)
	for _, node := range g.Nodes {
		cols[node.Layer] = append(cols[node.Layer], node)
	}
	for _, c := range cols {
		sortByBreadth(c)
	}
	return cols
}
