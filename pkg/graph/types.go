package graph

import (
	"github.com/matzehuels/sankeyflow/pkg/errors"
	"github.com/matzehuels/sankeyflow/pkg/sankey"
)

// Label positions accepted in node hints.
const (
	LabelLeft  = "left"
	LabelRight = "right"
)

// =============================================================================
// Graph - Flow Graph Serialization
// =============================================================================

// Graph is the canonical serialization format for flow graphs.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}

// Node is a stage of the flow graph.
type Node struct {
	ID            string         `json:"id"`
	Label         string         `json:"label,omitempty"` // Display label (defaults to ID)
	Value         *float64       `json:"value,omitempty"` // Fixed throughput, overrides link totals
	LabelPosition string         `json:"label_position,omitempty"`
	Hide          bool           `json:"hide,omitempty"`
	AlwaysVisible bool           `json:"always_visible,omitempty"`
	Meta          map[string]any `json:"meta,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Link is a weighted flow between two nodes.
type Link struct {
	ID     string  `json:"id,omitempty"`
	Source string  `json:"source"`
	Target string  `json:"target"`
	Value  float64 `json:"value"`
}

// Validate checks a decoded graph for values the layout cannot accept.
// Structural problems (unknown endpoints, duplicates, cycles) are left to
// the engine, which reports them with more context.
func (g Graph) Validate() error {
	for i, n := range g.Nodes {
		if err := errors.ValidateNodeID(n.ID); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "node %d", i)
		}
		if n.Value != nil {
			if err := errors.ValidateLinkValue(*n.Value); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "node %q fixed value", n.ID)
			}
		}
		switch n.LabelPosition {
		case "", LabelLeft, LabelRight:
		default:
			return errors.New(errors.ErrCodeInvalidInput, "node %q: unknown label position %q", n.ID, n.LabelPosition)
		}
	}
	for i, l := range g.Links {
		if l.Source == "" || l.Target == "" {
			return errors.New(errors.ErrCodeInvalidInput, "link %d: source and target are required", i)
		}
		if err := errors.ValidateLinkValue(l.Value); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "link %d (%s → %s)", i, l.Source, l.Target)
		}
	}
	return nil
}

// =============================================================================
// Graph ↔ sankey.Graph Conversion
// =============================================================================

// ToSankey converts a Graph to a fresh engine graph, keeping node and link
// order.
func ToSankey(g Graph) *sankey.Graph {
	out := sankey.NewGraph()
	for _, n := range g.Nodes {
		sn := out.AddNode(n.ID)
		if n.Value != nil {
			v := *n.Value
			sn.FixedValue = &v
		}
		sn.Hints = sankey.Hints{
			LabelPosition: n.LabelPosition,
			Hide:          n.Hide,
			AlwaysVisible: n.AlwaysVisible,
		}
	}
	for _, l := range g.Links {
		sl := out.AddLink(l.Source, l.Target, l.Value)
		sl.ID = l.ID
	}
	return out
}

// FromSankey converts an engine graph back to its serialization format.
// Labels and metadata are not part of the engine graph and are lost.
func FromSankey(g *sankey.Graph) Graph {
	out := Graph{
		Nodes: make([]Node, len(g.Nodes)),
		Links: make([]Link, len(g.Links)),
	}
	for i, n := range g.Nodes {
		node := Node{
			ID:            n.ID,
			LabelPosition: n.Hints.LabelPosition,
			Hide:          n.Hints.Hide,
			AlwaysVisible: n.Hints.AlwaysVisible,
		}
		if n.FixedValue != nil {
			v := *n.FixedValue
			node.Value = &v
		}
		out.Nodes[i] = node
	}
	for i, l := range g.Links {
		src, dst := l.SourceID, l.TargetID
		if l.Source != nil {
			src = l.Source.ID
		}
		if l.Target != nil {
			dst = l.Target.ID
		}
		out.Links[i] = Link{ID: l.ID, Source: src, Target: dst, Value: l.Value}
	}
	return out
}
