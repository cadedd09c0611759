package report

// Cycles lists the component cycles of g, each starting at the node first
// reached by a depth-first search over sorted nodes.
func (g *Graph) Cycles() [][]string {
	next := make(map[string][]string)
	for _, e := range g.Edges {
		next[e.From] = append(next[e.From], e.To)
	}

	var cycles [][]string
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	var visit func(curr string, path []string)
	visit = func(curr string, path []string) {
		visited[curr] = true
		onStack[curr] = true
		path = append(path, curr)
		for _, to := range next[curr] {
			if onStack[to] {
				for i, n := range path {
					if n == to {
						cycles = append(cycles, append([]string(nil), path[i:]...))
						break
					}
				}
			} else if !visited[to] {
				visit(to, path)
			}
		}
		onStack[curr] = false
	}
	for _, n := range g.Nodes {
		if !visited[n] {
			visit(n, nil)
		}
	}
	return cycles
}

// cycleEdges marks every edge lying on one of cycles, keyed by from+"\x00"+to.
func cycleEdges(cycles [][]string) map[string]bool {
	out := make(map[string]bool)
	for _, c := range cycles {
		for i, from := range c {
			out[from+"\x00"+c[(i+1)%len(c)]] = true
		}
	}
	return out
}
