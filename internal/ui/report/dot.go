package report

import (
	"fmt"
	"strings"
)

// DOT renders g as a Graphviz digraph. Project components sit in one
// cluster; dependency components and the edges into them are greyed out.
// Edges on a cycle are drawn red.
func DOT(g *Graph) string {
	var buf strings.Builder

	buf.WriteString("digraph components {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, style=rounded, fontname=\"Helvetica\", fontsize=10];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=8, penwidth=1.2];\n")
	buf.WriteString("  overlap=false;\n\n")

	buf.WriteString("  subgraph cluster_project {\n")
	buf.WriteString("    label=\"Project Components\";\n")
	buf.WriteString("    style=filled;\n")
	buf.WriteString("    color=\"whitesmoke\";\n")
	buf.WriteString("    node [fillcolor=\"white\", style=\"rounded,filled\", color=\"darkslategrey\"];\n")
	for _, n := range g.Nodes {
		if !g.External(n) {
			buf.WriteString(fmt.Sprintf("    %q;\n", n))
		}
	}
	buf.WriteString("  }\n\n")

	buf.WriteString("  node [fillcolor=\"gainsboro\", style=\"rounded,filled\", color=\"grey\"];\n")
	for _, n := range g.Nodes {
		if g.External(n) {
			buf.WriteString(fmt.Sprintf("  %q;\n", n))
		}
	}
	buf.WriteString("\n")

	onCycle := cycleEdges(g.Cycles())
	for _, e := range g.Edges {
		if onCycle[e.From+"\x00"+e.To] {
			buf.WriteString(fmt.Sprintf("  %q -> %q [label=%q, color=\"red\", penwidth=2.5];\n", e.From, e.To, e.Tag))
		} else if g.External(e.To) {
			buf.WriteString(fmt.Sprintf("  %q -> %q [label=%q, color=\"grey\", style=dashed];\n", e.From, e.To, e.Tag))
		} else {
			buf.WriteString(fmt.Sprintf("  %q -> %q [label=%q, color=\"forestgreen\"];\n", e.From, e.To, e.Tag))
		}
	}
	buf.WriteString("}\n")
	return buf.String()
}
