// Package report renders task results for people and for other tools.
package report

import (
	"sort"

	"vuescope/internal/query"
)

// Edge is one component rendering another under Tag.
type Edge struct {
	From string
	To   string
	Tag  string
}

// Graph is the component graph drawn by the diagram formats. Node names
// are display paths.
type Graph struct {
	Nodes    []string
	Edges    []Edge
	external map[string]bool
}

// NewGraph builds a graph from component-graph findings. name maps an
// absolute path to its display form; external marks dependency components.
func NewGraph(findings []query.Finding, name func(string) string, external func(string) bool) *Graph {
	g := &Graph{external: make(map[string]bool)}
	seen := make(map[string]bool)
	addNode := func(path string) string {
		n := name(path)
		if !seen[n] {
			seen[n] = true
			g.Nodes = append(g.Nodes, n)
			if external != nil && external(path) {
				g.external[n] = true
			}
		}
		return n
	}
	for _, f := range findings {
		from := addNode(f.Path)
		to := addNode(f.Value)
		g.Edges = append(g.Edges, Edge{From: from, To: to, Tag: f.Component})
	}
	sort.Strings(g.Nodes)
	sort.Slice(g.Edges, func(i, j int) bool {
		if g.Edges[i].From != g.Edges[j].From {
			return g.Edges[i].From < g.Edges[j].From
		}
		return g.Edges[i].To < g.Edges[j].To
	})
	return g
}

// External reports whether node lives in the dependency directory.
func (g *Graph) External(node string) bool {
	return g.external[node]
}
