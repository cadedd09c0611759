package parser

import (
	"testing"

	"vuescope/internal/core/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	loader, err := NewGrammarLoader()
	require.NoError(t, err)
	return NewParser(loader)
}

func TestGrammarLoader(t *testing.T) {
	loader, err := NewGrammarLoader()
	require.NoError(t, err)
	assert.Equal(t, []string{LangCSS, LangHTML, LangJavaScript, LangTSX, LangTypeScript}, loader.Languages())

	loader, err = NewGrammarLoader(LangHTML)
	require.NoError(t, err)
	_, ok := loader.Language(LangJavaScript)
	assert.False(t, ok)

	_, err = NewGrammarLoader("python")
	assert.Error(t, err)
}

func TestLanguageMapping(t *testing.T) {
	cases := []struct {
		got, want string
	}{
		{ScriptLanguage(""), LangJavaScript},
		{ScriptLanguage(" TS "), LangTypeScript},
		{ScriptLanguage("tsx"), LangTSX},
		{ScriptLanguage("coffee"), ""},
		{StyleLanguage(""), LangCSS},
		{StyleLanguage("scss"), ""},
		{LanguageForPath("a/b.ts"), LangTypeScript},
		{LanguageForPath("a/b.MJS"), LangJavaScript},
		{LanguageForPath("a/b.vue"), ""},
	}
	for i, tc := range cases {
		assert.Equal(t, tc.want, tc.got, "case %d", i)
	}
}

func TestParse_ByteOffsetsAndFields(t *testing.T) {
	p := newTestParser(t)
	src := "const é = 1\nexport default { name: 'x' }\n"

	tree, err := p.Parse(LangJavaScript, src)
	require.NoError(t, err)
	require.False(t, tree.HasError())
	assert.False(t, tree.Empty())

	export := tree.Root.Find(func(n *Node) bool { return n.Kind == "export_statement" })
	require.NotNil(t, export)
	assert.Equal(t, len("const é = 1\n"), export.Start, "offsets count bytes")
	assert.Equal(t, 1, export.StartPoint.Row)

	value := export.ChildByField("value")
	require.NotNil(t, value)
	assert.Equal(t, "object", value.Kind)
	assert.Equal(t, "{ name: 'x' }", value.Text(src))
	assert.NotNil(t, export.ChildOfKind("default"))
	assert.Len(t, value.NamedChildren(), 1)
}

func TestParse_ReportsFirstError(t *testing.T) {
	p := newTestParser(t)

	tree, err := p.Parse(LangJavaScript, "const a = 1\nexport default {\n")
	require.NoError(t, err, "grammar errors are reported on the tree")
	require.True(t, tree.HasError())
	assert.GreaterOrEqual(t, tree.FirstError.StartPoint.Row, 1)
}

func TestParse_EmptyAndUnsupported(t *testing.T) {
	p := newTestParser(t)

	tree, err := p.Parse(LangHTML, "  <!-- only a comment -->\n")
	require.NoError(t, err)
	assert.True(t, tree.Empty())

	assert.True(t, p.Supports(LangCSS))
	assert.False(t, p.Supports("scss"))
	_, err = p.Parse("scss", "a { b: c }")
	assert.True(t, errors.IsCode(err, errors.CodeNotSupported))
}

func TestNode_NilSafe(t *testing.T) {
	var n *Node
	assert.Equal(t, "", n.Text("abc"))
	assert.Nil(t, n.NamedChildren())
	assert.Nil(t, n.ChildByField("x"))
	assert.Nil(t, n.Find(func(*Node) bool { return true }))
}
