package report

import (
	"fmt"
	"strings"
	"unicode"
)

// Mermaid renders g as a left-to-right flowchart.
func Mermaid(g *Graph) string {
	var b strings.Builder
	b.WriteString("flowchart LR\n")

	ids := mermaidIDs(g.Nodes)
	for _, n := range g.Nodes {
		b.WriteString(fmt.Sprintf("  %s[\"%s\"]\n", ids[n], escapeMermaidLabel(n)))
	}
	onCycle := cycleEdges(g.Cycles())
	var red []string
	for i, e := range g.Edges {
		b.WriteString(fmt.Sprintf("  %s -->|%s| %s\n", ids[e.From], escapeMermaidLabel(e.Tag), ids[e.To]))
		if onCycle[e.From+"\x00"+e.To] {
			red = append(red, fmt.Sprint(i))
		}
	}
	if len(red) > 0 {
		b.WriteString(fmt.Sprintf("  linkStyle %s stroke:#dc2626,stroke-width:2px\n", strings.Join(red, ",")))
	}

	var external []string
	for _, n := range g.Nodes {
		if g.External(n) {
			external = append(external, ids[n])
		}
	}
	if len(external) > 0 {
		b.WriteString("  classDef external fill:#e5e7eb,stroke:#9ca3af,color:#374151\n")
		b.WriteString(fmt.Sprintf("  class %s external\n", strings.Join(external, ",")))
	}
	return b.String()
}

func sanitizeMermaidID(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteRune('_')
	}
	out := b.String()
	if out == "" {
		return "c"
	}
	if unicode.IsDigit(rune(out[0])) {
		return "c_" + out
	}
	return out
}

// mermaidIDs gives every name a distinct identifier, suffixing repeats.
func mermaidIDs(names []string) map[string]string {
	ids := make(map[string]string, len(names))
	used := make(map[string]int, len(names))
	for _, name := range names {
		base := sanitizeMermaidID(name)
		idx := used[base]
		used[base] = idx + 1
		if idx == 0 {
			ids[name] = base
			continue
		}
		ids[name] = fmt.Sprintf("%s_%d", base, idx+1)
	}
	return ids
}

func escapeMermaidLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
