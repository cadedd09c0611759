package query

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"vuescope/internal/core/app"
	"vuescope/internal/core/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, files map[string]string) (*Service, string) {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	cfg := config.DefaultConfig()
	cfg.Paths.ProjectRoot = root
	cfg.Scan.Concurrency = 2

	a, err := app.New(cfg, root, nil)
	require.NoError(t, err)
	return NewService(a), root
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func attributes(findings []Finding) []string {
	out := make([]string, 0, len(findings))
	for _, f := range findings {
		out = append(out, f.Attribute)
	}
	return out
}

func TestFind(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{
		"src/App.vue": "<template>\n  <div>\n    <child-comp :foo=\"bar\" class=\"x\"/>\n    <ChildComp foo=\"baz\"/>\n  </div>\n</template>\n",
	})

	res, err := svc.Find(context.Background(), FindRequest{Tag: "ChildComp", Key: "foo"})
	require.NoError(t, err)
	require.NoError(t, res.Report.Err())
	require.Len(t, res.Findings, 2)
	assert.Equal(t, "childcomp", res.Findings[0].Component)
	assert.Equal(t, "bar", res.Findings[0].Value)
	assert.Contains(t, res.Findings[0].Location, "App.vue:3:17")

	baz := "baz"
	res, err = svc.Find(context.Background(), FindRequest{Key: "foo", Value: &baz})
	require.NoError(t, err)
	require.Len(t, res.Findings, 1)
	assert.Contains(t, res.Findings[0].Location, "App.vue:4:16")
}

func TestClickNative_Fix(t *testing.T) {
	svc, root := newTestService(t, map[string]string{
		"src/App.vue": "<template>\n  <my-button @click.native=\"go\" @focus.native.once=\"f\"/>\n  <button @click=\"go\"/>\n</template>\n",
	})
	path := filepath.Join(root, "src/App.vue")

	res, err := svc.ClickNative(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, res.Findings, 1)
	assert.Equal(t, "@click.native", res.Findings[0].Attribute)
	assert.Zero(t, res.Fixed)

	res, err = svc.ClickNative(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Fixed)
	assert.Empty(t, res.FixFailures)
	assert.Equal(t, "<template>\n  <my-button @click=\"go\" @focus.once=\"f\"/>\n  <button @click=\"go\"/>\n</template>\n", readFile(t, path))

	res, err = svc.ClickNative(context.Background(), false)
	require.NoError(t, err)
	assert.Empty(t, res.Findings)
}

func TestRouterLinkAttrs(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{
		"src/Nav.vue": "<template>\n  <nav>\n    <router-link to=\"/\" tag=\"li\" exact>Home</router-link>\n    <RouterLink to=\"/a\" append>A</RouterLink>\n    <router-link to=\"/b\">B</router-link>\n  </nav>\n</template>\n",
	})

	res, err := svc.RouterLinkAttrs(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"tag", "append"}, attributes(res.Findings))
}

func TestTemplateVFor(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{
		"src/List.vue": "<template>\n  <ul>\n    <template v-for=\"item in items\"><li>{{ item }}</li></template>\n    <li v-for=\"x in xs\">{{ x }}</li>\n  </ul>\n</template>\n",
	})

	res, err := svc.TemplateVFor(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Findings, 1)
	assert.Equal(t, "item in items", res.Findings[0].Value)
	assert.Contains(t, res.Findings[0].Location, "List.vue:3:15")
}

func TestTeleportTargets_Distinct(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{
		"src/A.vue": "<template><teleport to=\"#modals\"><div/></teleport></template>",
		"src/B.vue": "<template><div><teleport to=\"#modals\"/><teleport to=\"body\"/></div></template>",
	})

	res, err := svc.TeleportTargets(context.Background())
	require.NoError(t, err)
	var values []string
	for _, f := range res.Findings {
		values = append(values, f.Value)
	}
	assert.ElementsMatch(t, []string{"#modals", "body"}, values)
}

const parentComponent = `<template>
  <div>
    <child-comp title="a" :count="1" class="x" extra="y" :other-thing="z" @click="f" v-model="m"/>
    <child-comp title="b" extra="again"/>
    <unknown-thing foo="bar"/>
  </div>
</template>

<script>
import ChildComp from './ChildComp.vue'

export default {
  components: { ChildComp },
}
</script>
`

func TestNonPropBindings(t *testing.T) {
	svc, root := newTestService(t, map[string]string{
		"src/Parent.vue": parentComponent,
		"src/ChildComp.vue": `<template><div/></template>
<script>
export default {
  props: { title: String, count: Number },
}
</script>
`,
	})

	res, err := svc.NonPropBindings(context.Background())
	require.NoError(t, err)
	require.NoError(t, res.Report.Err())
	assert.ElementsMatch(t, []string{"extra", "otherThing"}, attributes(res.Findings))
	for _, f := range res.Findings {
		assert.Equal(t, filepath.Join(root, "src/ChildComp.vue"), f.Path)
		assert.Contains(t, f.Location, "Parent.vue:3:")
	}
}

func TestNonPropBindings_SkipsTargetsWithoutOptions(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{
		"src/Parent.vue":    parentComponent,
		"src/ChildComp.vue": "<template><div/></template>\n<script>\nexport default makeComponent()\n</script>\n",
	})

	res, err := svc.NonPropBindings(context.Background())
	require.NoError(t, err)
	require.NoError(t, res.Report.Err())
	assert.Empty(t, res.Findings)
}

const emittingComponent = `<template>
  <button @click="$emit('save')">Save</button>
</template>

<script>
export default {
  props: ['title', 'count'],
  methods: {
    close() { this.$emit('close') },
  },
}
</script>
`

func TestMissingEmits_InsertsOption(t *testing.T) {
	svc, root := newTestService(t, map[string]string{"src/Dialog.vue": emittingComponent})
	path := filepath.Join(root, "src/Dialog.vue")

	res, err := svc.MissingEmits(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, res.Findings, 2)
	assert.Equal(t, "save", res.Findings[0].Value)
	assert.Contains(t, res.Findings[0].Location, "Dialog.vue:2:")
	assert.Equal(t, "close", res.Findings[1].Value)
	assert.Contains(t, res.Findings[1].Location, "Dialog.vue:9:")

	res, err = svc.MissingEmits(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Fixed)
	assert.Contains(t, readFile(t, path), "  props: ['title', 'count'],\n  emits: ['save', 'close'],\n  methods: {")

	res, err = svc.MissingEmits(context.Background(), false)
	require.NoError(t, err)
	assert.Empty(t, res.Findings)
}

func TestMissingEmits_ExtendsArray(t *testing.T) {
	svc, root := newTestService(t, map[string]string{
		"src/A.vue": "<template><i @click=\"$emit('a'); $emit('b')\"/></template>\n<script>\nexport default {\n  emits: ['a'],\n}\n</script>\n",
		"src/B.vue": "<template><i @click=\"$emit('b')\"/></template>\n<script>\nexport default defineComponent({\n  emits: [],\n})\n</script>\n",
		"src/C.vue": "<template><i @click=\"$emit('c')\"/></template>\n<script>\nexport default {}\n</script>\n",
	})

	res, err := svc.MissingEmits(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Fixed)
	assert.Contains(t, readFile(t, filepath.Join(root, "src/A.vue")), "emits: ['a', 'b'],")
	assert.Contains(t, readFile(t, filepath.Join(root, "src/B.vue")), "emits: ['b'],")
	assert.Contains(t, readFile(t, filepath.Join(root, "src/C.vue")), "export default {\n  emits: ['c'],}")
}

func TestMissingEmits_ReportOnly(t *testing.T) {
	obj := "<template><i @click=\"$emit('x')\"/></template>\n<script>\nexport default {\n  emits: { y: null },\n}\n</script>\n"
	svc, root := newTestService(t, map[string]string{
		"src/Obj.vue":      obj,
		"src/NoScript.vue": "<template><i @click=\"$emit('x')\"/></template>\n",
		"src/Setup.vue":    "<template><i @click=\"$emit('x')\"/></template>\n<script setup>\nconst emit = defineEmits(['y'])\n</script>\n",
	})

	res, err := svc.MissingEmits(context.Background(), true)
	require.NoError(t, err)
	assert.Zero(t, res.Fixed)
	require.Len(t, res.Findings, 2)
	assert.Contains(t, res.Findings[0].Location, "NoScript.vue")
	assert.Contains(t, res.Findings[0].Message, "no options object")
	assert.Contains(t, res.Findings[1].Location, "Obj.vue")
	assert.Equal(t, obj, readFile(t, filepath.Join(root, "src/Obj.vue")))
}

func TestGraph(t *testing.T) {
	svc, root := newTestService(t, map[string]string{
		"src/Parent.vue": parentComponent,
		"src/ChildComp.vue": `<template><grand-child/></template>
<script>
import GrandChild from './GrandChild.vue'
export default { components: { GrandChild } }
</script>
`,
		"src/GrandChild.vue": "<template><span/></template>",
	})

	res, err := svc.Graph(context.Background())
	require.NoError(t, err)

	edges := make(map[string]bool)
	for _, f := range res.Findings {
		from, _ := filepath.Rel(root, f.Path)
		to, _ := filepath.Rel(root, f.Value)
		edges[from+" -> "+to] = true
	}
	assert.Equal(t, map[string]bool{
		"src/Parent.vue -> src/ChildComp.vue":    true,
		"src/ChildComp.vue -> src/GrandChild.vue": true,
	}, edges)
}

func TestClickNative_DryRun(t *testing.T) {
	content := "<template>\n  <my-button @click.native=\"go\"/>\n</template>\n"
	svc, root := newTestService(t, map[string]string{"src/App.vue": content})
	path := filepath.Join(root, "src/App.vue")
	svc = NewService(svc.app, WithDryRun())

	res, err := svc.ClickNative(context.Background(), true)
	require.NoError(t, err)
	assert.Zero(t, res.Fixed)
	require.Contains(t, res.Previews, path)
	assert.Contains(t, res.Previews[path], "-  <my-button @click.native=\"go\"/>\n")
	assert.Contains(t, res.Previews[path], "+  <my-button @click=\"go\"/>\n")
	assert.Equal(t, content, readFile(t, path))
}
