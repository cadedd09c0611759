package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vuescope/internal/core/errors"
	"vuescope/internal/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func base(path string) string {
	return strings.TrimPrefix(path, "/p/")
}

func sampleGraph() *Graph {
	findings := []query.Finding{
		{Path: "/p/src/App.vue", Component: "layout", Value: "/p/src/Layout.vue"},
		{Path: "/p/src/Layout.vue", Component: "vbtn", Value: "/p/node_modules/ui/Btn.vue"},
		{Path: "/p/src/App.vue", Component: "vbtn", Value: "/p/node_modules/ui/Btn.vue"},
	}
	return NewGraph(findings, base, func(p string) bool {
		return strings.Contains(p, "/node_modules/")
	})
}

func TestNewGraph(t *testing.T) {
	g := sampleGraph()
	assert.Equal(t, []string{"node_modules/ui/Btn.vue", "src/App.vue", "src/Layout.vue"}, g.Nodes)
	require.Len(t, g.Edges, 3)
	assert.Equal(t, Edge{From: "src/App.vue", To: "node_modules/ui/Btn.vue", Tag: "vbtn"}, g.Edges[0])
	assert.True(t, g.External("node_modules/ui/Btn.vue"))
	assert.False(t, g.External("src/App.vue"))
}

func TestDOT(t *testing.T) {
	dot := DOT(sampleGraph())
	assert.True(t, strings.HasPrefix(dot, "digraph components {"))
	assert.Contains(t, dot, `"src/App.vue" -> "src/Layout.vue" [label="layout", color="forestgreen"];`)
	assert.Contains(t, dot, `"src/Layout.vue" -> "node_modules/ui/Btn.vue" [label="vbtn", color="grey", style=dashed];`)
	assert.Contains(t, dot, "  \"node_modules/ui/Btn.vue\";\n")
}

func TestMermaid(t *testing.T) {
	out := Mermaid(sampleGraph())
	assert.Contains(t, out, "flowchart LR\n")
	assert.Contains(t, out, `src_App_vue["src/App.vue"]`)
	assert.Contains(t, out, "src_App_vue -->|layout| src_Layout_vue\n")
	assert.Contains(t, out, "class node_modules_ui_Btn_vue external\n")
}

func TestMermaidIDs_Distinct(t *testing.T) {
	ids := mermaidIDs([]string{"a/b.vue", "a_b.vue", "1.vue"})
	assert.Equal(t, "a_b_vue", ids["a/b.vue"])
	assert.Equal(t, "a_b_vue_2", ids["a_b.vue"])
	assert.Equal(t, "c_1_vue", ids["1.vue"])
}

func TestTSV(t *testing.T) {
	res := &query.Result{Task: query.TaskFind, Findings: []query.Finding{
		{Location: "/p/src/App.vue:3:5", Component: "child", Attribute: ":foo", Value: "a\tb"},
	}}
	out := TSV(res, base)
	assert.Equal(t, "Task\tLocation\tComponent\tAttribute\tValue\tMessage\nfind\tsrc/App.vue:3:5\tchild\t:foo\ta b\t\n", out)
}

func TestText(t *testing.T) {
	res := &query.Result{Task: query.TaskClickNative, Fixed: 2, Findings: []query.Finding{
		{Location: "/p/src/App.vue:2:13", Component: "mybutton", Attribute: "@click.native"},
	}}
	var buf bytes.Buffer
	require.NoError(t, Text(&buf, res, base))
	assert.Contains(t, buf.String(), "src/App.vue:2:13")
	assert.Contains(t, buf.String(), "<mybutton> @click.native")
	assert.Contains(t, buf.String(), "fixed 2 edit(s)")

	buf.Reset()
	require.NoError(t, Text(&buf, &query.Result{Task: query.TaskFind}, base))
	assert.Contains(t, buf.String(), "no findings")
}

func TestReplaceBetweenMarkers(t *testing.T) {
	content := "# Docs\n<!-- vuescope:graph:start -->\nold\n<!-- vuescope:graph:end -->\ntail\n"
	out, err := ReplaceBetweenMarkers(content, "graph", "new\n")
	require.NoError(t, err)
	assert.Equal(t, "# Docs\n<!-- vuescope:graph:start -->\nnew\n<!-- vuescope:graph:end -->\ntail\n", out)

	crlf := strings.ReplaceAll(content, "\n", "\r\n")
	out, err = ReplaceBetweenMarkers(crlf, "graph", "a\nb")
	require.NoError(t, err)
	assert.Contains(t, out, "start -->\r\na\r\nb\r\n<!--")

	for name, bad := range map[string]string{
		"missing":  "# Docs\n",
		"reversed": "<!-- vuescope:graph:end -->\n<!-- vuescope:graph:start -->\n",
		"twice":    content + content,
	} {
		_, err := ReplaceBetweenMarkers(bad, "graph", "x")
		assert.True(t, errors.IsCode(err, errors.CodeValidationError), name)
	}
	_, err = ReplaceBetweenMarkers(content, " ", "x")
	assert.Error(t, err)
}

func TestInjectDiagram(t *testing.T) {
	path := filepath.Join(t.TempDir(), "README.md")
	require.NoError(t, os.WriteFile(path, []byte("<!-- vuescope:components:start -->\n<!-- vuescope:components:end -->\n"), 0o600))

	require.NoError(t, InjectDiagram(path, "components", Mermaid(sampleGraph())))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "start -->\n```mermaid\nflowchart LR\n")
	assert.Contains(t, string(data), "```\n<!-- vuescope:components:end -->")

	err = InjectDiagram(filepath.Join(t.TempDir(), "missing.md"), "components", "x")
	assert.True(t, errors.IsCode(err, errors.CodeIO))
}

func TestSARIF(t *testing.T) {
	res := &query.Result{Task: query.TaskMissingEmits, Findings: []query.Finding{
		{Location: "/p/src/A.vue:4:7", Message: `"save" is emitted but not declared`},
		{Location: "/p/src/B.vue"},
	}}
	data, err := SARIF(res, "/p", "1.2.3")
	require.NoError(t, err)

	var doc sarifReport
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc.Runs, 1)
	run := doc.Runs[0]
	assert.Equal(t, "1.2.3", run.Tool.Driver.Version)
	require.Len(t, run.Tool.Driver.Rules, 1)
	assert.Equal(t, "VUE004", run.Tool.Driver.Rules[0].ID)

	require.Len(t, run.Results, 2)
	first := run.Results[0]
	assert.Equal(t, "warning", first.Level)
	assert.Equal(t, "src/A.vue", first.Locations[0].PhysicalLocation.ArtifactLocation.URI)
	assert.Equal(t, &sarifRegion{StartLine: 4, StartColumn: 7}, first.Locations[0].PhysicalLocation.Region)
	assert.Nil(t, run.Results[1].Locations[0].PhysicalLocation.Region)

	_, err = SARIF(&query.Result{Task: query.TaskComponentGraph}, "/p", "1.2.3")
	assert.Error(t, err)
}

func TestGraph_Cycles(t *testing.T) {
	findings := []query.Finding{
		{Path: "/p/A.vue", Component: "b", Value: "/p/B.vue"},
		{Path: "/p/B.vue", Component: "c", Value: "/p/C.vue"},
		{Path: "/p/C.vue", Component: "a", Value: "/p/A.vue"},
		{Path: "/p/C.vue", Component: "d", Value: "/p/D.vue"},
	}
	g := NewGraph(findings, base, nil)
	assert.Equal(t, [][]string{{"A.vue", "B.vue", "C.vue"}}, g.Cycles())
	assert.Empty(t, sampleGraph().Cycles())

	dot := DOT(g)
	assert.Contains(t, dot, `"C.vue" -> "A.vue" [label="a", color="red", penwidth=2.5];`)
	assert.Contains(t, dot, `"C.vue" -> "D.vue" [label="d", color="forestgreen"];`)

	assert.Contains(t, Mermaid(g), "linkStyle 0,1,2 stroke:#dc2626,stroke-width:2px\n")
}
