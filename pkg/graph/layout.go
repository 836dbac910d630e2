package graph

import (
	"encoding/json"
	"os"

	"github.com/matzehuels/sankeyflow/pkg/errors"
	"github.com/matzehuels/sankeyflow/pkg/sankey"
)

// =============================================================================
// Layout - Computed Diagram Geometry
// =============================================================================

// Layout is the serialization format for a computed flow diagram.
//
// Node rectangles are given by their corners (x0, y0) and (x1, y1). Links
// carry their width and the vertical centreline offset at each end; a
// renderer draws a link from (source.x1, y0) to (target.x0, y1).
type Layout struct {
	Width     float64      `json:"width"`
	Height    float64      `json:"height"`
	NodeWidth float64      `json:"node_width"`
	Scale     float64      `json:"scale"` // Pixels per unit of flow
	Columns   int          `json:"columns"`
	Terminals *Terminals   `json:"terminals,omitempty"`
	Nodes     []LayoutNode `json:"nodes"`
	Links     []LayoutLink `json:"links"`
}

// Terminals names the start and end marker nodes of a layout.
type Terminals struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// LayoutNode is a positioned node.
type LayoutNode struct {
	ID            string  `json:"id"`
	Value         float64 `json:"value"`
	Depth         int     `json:"depth"`
	Height        int     `json:"height"`
	Layer         int     `json:"layer"`
	X0            float64 `json:"x0"`
	X1            float64 `json:"x1"`
	Y0            float64 `json:"y0"`
	Y1            float64 `json:"y1"`
	Fixed         bool    `json:"fixed,omitempty"` // Value was pinned, not derived from flow
	LabelPosition string  `json:"label_position,omitempty"`
	Hide          bool    `json:"hide,omitempty"`
	AlwaysVisible bool    `json:"always_visible,omitempty"`
}

// LayoutLink is a positioned link.
type LayoutLink struct {
	ID     string  `json:"id,omitempty"`
	Index  int     `json:"index"`
	Source string  `json:"source"`
	Target string  `json:"target"`
	Value  float64 `json:"value"`
	Width  float64 `json:"width"`
	Y0     float64 `json:"y0"`
	Y1     float64 `json:"y1"`
}

// ExportLayout converts a laid-out engine graph into its serialization
// format. cfg must be the configuration the graph was laid out with.
func ExportLayout(g *sankey.Graph, cfg sankey.Config) Layout {
	out := Layout{
		Width:     cfg.Width,
		Height:    cfg.Height,
		NodeWidth: cfg.NodeWidth,
		Scale:     g.Scale,
		Nodes:     make([]LayoutNode, len(g.Nodes)),
		Links:     make([]LayoutLink, len(g.Links)),
	}
	if t := cfg.Terminals; t.Start != "" || t.End != "" {
		out.Terminals = &Terminals{Start: t.Start, End: t.End}
	}

	for i, n := range g.Nodes {
		out.Columns = max(out.Columns, n.Layer+1)
		out.Nodes[i] = LayoutNode{
			ID:            n.ID,
			Value:         n.Value,
			Depth:         n.Depth,
			Height:        n.Height,
			Layer:         n.Layer,
			X0:            n.X0,
			X1:            n.X1,
			Y0:            n.Y0,
			Y1:            n.Y1,
			Fixed:         isFixed(n, cfg),
			LabelPosition: n.Hints.LabelPosition,
			Hide:          n.Hints.Hide,
			AlwaysVisible: n.Hints.AlwaysVisible,
		}
	}
	for i, l := range g.Links {
		out.Links[i] = LayoutLink{
			ID:     l.ID,
			Index:  l.Index,
			Source: l.SourceID,
			Target: l.TargetID,
			Value:  l.Value,
			Width:  l.Width,
			Y0:     l.Y0,
			Y1:     l.Y1,
		}
	}
	return out
}

func isFixed(n *sankey.Node, cfg sankey.Config) bool {
	if n.FixedValue != nil {
		return true
	}
	_, ok := cfg.FixedValues[n.ID]
	return ok
}

// ImportLayout rebuilds an engine graph carrying the geometry of l, so a
// stored layout can be checked with [sankey.Config.Check]. The returned
// options restore the terminals and pinned values of l. l must have passed
// [UnmarshalLayout] so that every link names a node.
func ImportLayout(l Layout) (*sankey.Graph, []sankey.Option) {
	g := sankey.NewGraph()
	g.Scale = l.Scale
	byID := make(map[string]*sankey.Node, len(l.Nodes))
	fixed := make(map[string]float64)
	for i, ln := range l.Nodes {
		n := g.AddNode(ln.ID)
		n.Index = i
		n.Value = ln.Value
		n.Depth, n.Height, n.Layer = ln.Depth, ln.Height, ln.Layer
		n.X0, n.X1, n.Y0, n.Y1 = ln.X0, ln.X1, ln.Y0, ln.Y1
		if ln.Fixed {
			fixed[ln.ID] = ln.Value
		}
		byID[ln.ID] = n
	}
	for i, ll := range l.Links {
		link := g.AddLink(ll.Source, ll.Target, ll.Value)
		link.ID = ll.ID
		link.Index = i
		link.Width, link.Y0, link.Y1 = ll.Width, ll.Y0, ll.Y1
		link.Source, link.Target = byID[ll.Source], byID[ll.Target]
		if link.Source != nil {
			link.Source.SourceLinks = append(link.Source.SourceLinks, link)
		}
		if link.Target != nil {
			link.Target.TargetLinks = append(link.Target.TargetLinks, link)
		}
	}

	opts := []sankey.Option{sankey.WithExtent(l.Width, l.Height)}
	if l.Terminals != nil {
		opts = append(opts, sankey.WithTerminals(l.Terminals.Start, l.Terminals.End))
	}
	if len(fixed) > 0 {
		opts = append(opts, sankey.WithFixedValues(fixed))
	}
	return g, opts
}

// Node returns the positioned node with the given id.
func (l *Layout) Node(id string) (LayoutNode, bool) {
	for _, n := range l.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return LayoutNode{}, false
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
// Links must name nodes present in the layout and layers cannot be
// negative.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "unmarshal layout")
	}

	ids := make(map[string]bool, len(l.Nodes))
	for _, n := range l.Nodes {
		if n.Layer < 0 {
			return Layout{}, errors.New(errors.ErrCodeInvalidFormat, "layout node %q has negative layer %d", n.ID, n.Layer)
		}
		ids[n.ID] = true
	}
	for _, link := range l.Links {
		if !ids[link.Source] || !ids[link.Target] {
			return Layout{}, errors.New(errors.ErrCodeInvalidFormat,
				"layout link %d references unknown node (%s → %s)", link.Index, link.Source, link.Target)
		}
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode layout")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
	}
	return nil
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Layout{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "layout file %s not found", path)
		}
		return Layout{}, errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", path)
	}
	return UnmarshalLayout(data)
}
