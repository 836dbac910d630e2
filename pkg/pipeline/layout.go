package pipeline

import (
	"github.com/matzehuels/sankeyflow/pkg/errors"
	"github.com/matzehuels/sankeyflow/pkg/graph"
	"github.com/matzehuels/sankeyflow/pkg/sankey"
)

// =============================================================================
// Layout Generation
// =============================================================================

// GenerateLayout computes the layout of g without caching.
// Engine failures are returned as coded errors. With opts.Strict set, a
// layout that violates its invariants is an error.
func GenerateLayout(g graph.Graph, opts Options) (graph.Layout, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return graph.Layout{}, err
	}
	l, report, err := generate(g, opts)
	if err != nil {
		return graph.Layout{}, err
	}
	if opts.Strict {
		if err := report.Err(); err != nil {
			return graph.Layout{}, err
		}
	}
	return l, nil
}

// generate runs the engine on validated options and always checks the
// result.
func generate(g graph.Graph, opts Options) (graph.Layout, CheckReport, error) {
	if err := g.Validate(); err != nil {
		return graph.Layout{}, CheckReport{}, err
	}
	cfg := sankey.NewConfig(opts.EngineOptions()...)
	sg := graph.ToSankey(g)
	if _, err := cfg.Compute(sg); err != nil {
		return graph.Layout{}, CheckReport{}, errors.FromLayoutError(err)
	}
	report := newCheckReport(cfg.Check(sg, opts.Tolerance), opts.Tolerance)
	return graph.ExportLayout(sg, cfg), report, nil
}

// =============================================================================
// Invariant Checks
// =============================================================================

// CheckReport lists the invariant violations of a computed layout.
type CheckReport struct {
	Tolerance  float64  `json:"tolerance"`
	Violations []string `json:"violations,omitempty"`
}

// OK reports whether the layout satisfied every invariant.
func (r CheckReport) OK() bool { return len(r.Violations) == 0 }

// Err returns the violations as a coded error, or nil.
func (r CheckReport) Err() error {
	if r.OK() {
		return nil
	}
	return errors.New(errors.ErrCodeInternal, "layout violates %d invariant(s): %s", len(r.Violations), r.Violations[0])
}

func newCheckReport(err error, tolerance float64) CheckReport {
	report := CheckReport{Tolerance: tolerance}
	if err == nil {
		return report
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			report.Violations = append(report.Violations, e.Error())
		}
		return report
	}
	report.Violations = append(report.Violations, err.Error())
	return report
}
