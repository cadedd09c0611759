package script

import (
	"testing"

	"vuescope/internal/engine/component"
	"vuescope/internal/engine/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parsePart(t *testing.T, lang, src string) *component.Part {
	t.Helper()
	loader, err := parser.NewGrammarLoader(lang)
	require.NoError(t, err)
	tree, err := parser.NewParser(loader).Parse(lang, src)
	require.NoError(t, err)
	require.False(t, tree.HasError(), "fixture must parse cleanly")
	return &component.Part{Path: "Comp.vue", Content: src, Program: tree}
}

func TestDefaultExport_Forms(t *testing.T) {
	tests := []struct {
		name string
		lang string
		src  string
	}{
		{"object literal", parser.LangJavaScript, `export default { name: 'A', props: ['x'] }`},
		{"defineComponent", parser.LangJavaScript, `import { defineComponent } from 'vue'
export default defineComponent({ name: 'A', props: ['x'] })`},
		{"Vue.extend", parser.LangJavaScript, `export default Vue.extend({ name: 'A', props: ['x'] })`},
		{"typescript assertion", parser.LangTypeScript, `export default ({ name: 'A', props: ['x'] } as ComponentOptions)`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := DefaultExport(parsePart(t, tt.lang, tt.src))
			require.NotNil(t, def)
			require.NotNil(t, def.Object)

			opt, ok := def.Option("name")
			require.True(t, ok)
			name, ok := StringValue(opt.Value, def.Part.Content)
			require.True(t, ok)
			assert.Equal(t, "A", name)
			assert.Equal(t, []string{"x"}, def.Props())
		})
	}
}

func TestDefaultExport_NonObject(t *testing.T) {
	def := DefaultExport(parsePart(t, parser.LangJavaScript, `export default makeComponent()`))
	require.NotNil(t, def)
	assert.Nil(t, def.Object)
	assert.Empty(t, def.Props())

	assert.Nil(t, DefaultExport(parsePart(t, parser.LangJavaScript, `export const a = 1`)))
}

func TestDefinition_OptionsAndProps(t *testing.T) {
	src := `export default {
  name: 'Card',
  'components': { CardTitle, Other: OtherThing },
  props: { title: String, 'sub-title': { type: String } },
  emits: ['close', "open"],
  data() { return {} },
  ...mixin,
}`
	def := DefaultExport(parsePart(t, parser.LangJavaScript, src))
	require.NotNil(t, def)

	var keys []string
	for _, p := range def.Properties() {
		keys = append(keys, p.Key)
	}
	assert.Equal(t, []string{"name", "components", "props", "emits", "data"}, keys)

	assert.Equal(t, []string{"title", "sub-title"}, def.Props())

	node, events := def.Emits()
	require.NotNil(t, node)
	assert.Equal(t, "array", node.Kind)
	assert.Equal(t, []string{"close", "open"}, events)

	comps := def.Components()
	require.Len(t, comps, 2)
	assert.Equal(t, "CardTitle", comps[0].Key)
	assert.Equal(t, "CardTitle", comps[0].Value.Text(src))
	assert.Equal(t, "Other", comps[1].Key)
	assert.Equal(t, "OtherThing", comps[1].Value.Text(src))

	data, ok := def.Option("data")
	require.True(t, ok)
	assert.Nil(t, data.Value)
	assert.Equal(t, "method_definition", data.Node.Kind)
}

func TestBindings(t *testing.T) {
	src := `import Child from './Child.vue'
import { Named, Other as Aliased } from '@/components/Named.vue'
import * as Everything from 'lib'
import './side-effect.css'
const Async = defineAsyncComponent(() => import('./Async.vue'))
const Loader = defineAsyncComponent({ loader: () => import('./Loaded.vue') })
const Lazy = () => import('./Lazy.vue')
const plain = 42
export default { components: { Child, Async, Lazy } }
import Late from './Late.vue'
`
	part := parsePart(t, parser.LangJavaScript, src)
	bindings := Bindings(part, []string{"defineAsyncComponent"})

	type row struct {
		name, spec string
		kind       BindingKind
	}
	var got []row
	for _, b := range bindings {
		got = append(got, row{b.Name, b.Specifier, b.Kind})
	}
	assert.Equal(t, []row{
		{"Child", "./Child.vue", ImportBinding},
		{"Named", "@/components/Named.vue", ImportBinding},
		{"Aliased", "@/components/Named.vue", ImportBinding},
		{"Everything", "lib", ImportBinding},
		{"Async", "./Async.vue", AsyncBinding},
		{"Loader", "./Loaded.vue", AsyncBinding},
		{"Lazy", "./Lazy.vue", LazyBinding},
	}, got)

	_, ok := Lookup(bindings, "Late")
	assert.False(t, ok, "imports after the default export are ignored")

	b, ok := Lookup(bindings, "Async")
	require.True(t, ok)
	assert.Equal(t, "async", b.Kind.String())
}

func TestBindings_UnknownFactoryIsIgnored(t *testing.T) {
	part := parsePart(t, parser.LangJavaScript, `const A = lazyLoad(() => import('./A.vue'))
export default {}`)

	assert.Empty(t, Bindings(part, []string{"defineAsyncComponent"}))
	assert.Len(t, Bindings(part, []string{"lazyLoad"}), 1)
}

func TestImportSpecifier_InlineValue(t *testing.T) {
	src := `export default { components: { Inline: () => import('./Inline.vue'), Plain: Thing } }`
	def := DefaultExport(parsePart(t, parser.LangJavaScript, src))
	comps := def.Components()
	require.Len(t, comps, 2)

	spec, ok := ImportSpecifier(comps[0].Value, src, nil)
	require.True(t, ok)
	assert.Equal(t, "./Inline.vue", spec)

	_, ok = ImportSpecifier(comps[1].Value, src, nil)
	assert.False(t, ok)
}

func TestEmittedEvents(t *testing.T) {
	src := `export default {
  methods: {
    close() { this.$emit('close', 1) },
    open() { this.$emit(dynamicName) },
  },
  setup(props, { emit }) { emit("ready") },
}`
	part := parsePart(t, parser.LangJavaScript, src)

	var events []string
	for _, e := range EmittedEvents(part) {
		events = append(events, e.Event)
	}
	assert.Equal(t, []string{"close", "ready"}, events)
}
