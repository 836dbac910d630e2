package cache

import "fmt"

// Keyer generates cache keys.
type Keyer interface {
	// LayoutKey returns the key of a layout computed from the graph whose
	// canonical JSON hashes to graphHash.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string

	// CheckKey returns the key of an invariant-check report for a layout.
	CheckKey(layoutHash string, tolerance float64) string
}

// LayoutKeyOpts lists every layout option that changes the result.
type LayoutKeyOpts struct {
	Width                  float64            `json:"width"`
	Height                 float64            `json:"height"`
	NodeWidth              float64            `json:"node_width"`
	NodePadding            float64            `json:"node_padding"`
	Iterations             int                `json:"iterations"`
	Decay                  float64            `json:"decay"`
	MinValue               float64            `json:"min_value"`
	Align                  string             `json:"align"`
	NodeOrder              string             `json:"node_order,omitempty"`
	LinkOrder              string             `json:"link_order,omitempty"`
	Start                  string             `json:"start,omitempty"`
	End                    string             `json:"end,omitempty"`
	TerminalColumnFraction float64            `json:"terminal_column_fraction,omitempty"`
	TerminalOffset         float64            `json:"terminal_offset,omitempty"`
	SpacingTargets         []string           `json:"spacing_targets,omitempty"`
	FixedValues            map[string]float64 `json:"fixed_values,omitempty"`
}

// DefaultKeyer produces "layout:<sha256>" style keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey hashes the graph hash together with the layout options.
func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// CheckKey hashes the layout hash together with the tolerance.
func (DefaultKeyer) CheckKey(layoutHash string, tolerance float64) string {
	return hashKey("check", layoutHash, fmt.Sprintf("%g", tolerance))
}

var _ Keyer = DefaultKeyer{}
