package graph_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/sankeyflow/pkg/graph"
	"github.com/matzehuels/sankeyflow/pkg/sankey"
)

func ExampleReadGraph() {
	jsonData := `{
		"nodes": [
			{"id": "received"},
			{"id": "stored"},
			{"id": "Dropped"}
		],
		"links": [
			{"source": "received", "target": "stored", "value": 70},
			{"source": "received", "target": "Dropped", "value": 30}
		]
	}`

	g, err := graph.ReadGraph(strings.NewReader(jsonData))
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	fmt.Println("Nodes:", len(g.Nodes))
	fmt.Println("Links:", len(g.Links))
	// Output:
	// Nodes: 3
	// Links: 2
}

func ExampleExportLayout() {
	g := graph.Graph{
		Nodes: []graph.Node{{ID: "in"}, {ID: "out"}},
		Links: []graph.Link{{Source: "in", Target: "out", Value: 5}},
	}

	sg := graph.ToSankey(g)
	cfg := sankey.NewConfig(sankey.WithExtent(200, 100), sankey.WithNodeWidth(10))
	if _, err := cfg.Compute(sg); err != nil {
		fmt.Println("Error:", err)
		return
	}

	layout := graph.ExportLayout(sg, cfg)
	for _, n := range layout.Nodes {
		fmt.Printf("%s: layer %d, x=%g..%g, y=%g..%g\n", n.ID, n.Layer, n.X0, n.X1, n.Y0, n.Y1)
	}
	// Output:
	// in: layer 0, x=0..10, y=0..100
	// out: layer 1, x=190..200, y=0..100
}
