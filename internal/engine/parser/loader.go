// # internal/engine/parser/loader.go
package parser

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_css "github.com/tree-sitter/tree-sitter-css/bindings/go"
	tree_sitter_html "github.com/tree-sitter/tree-sitter-html/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// Language IDs understood by the loader. A component file mixes up to three
// of them: html for the template, javascript/typescript/tsx for the script and
// css for the style block.
const (
	LangHTML       = "html"
	LangJavaScript = "javascript"
	LangTypeScript = "typescript"
	LangTSX        = "tsx"
	LangCSS        = "css"
)

// GrammarLoader owns the tree-sitter language handles for the run.
type GrammarLoader struct {
	languages map[string]*sitter.Language
}

// NewGrammarLoader loads the requested grammars, or all supported grammars
// when none are named.
func NewGrammarLoader(langs ...string) (*GrammarLoader, error) {
	if len(langs) == 0 {
		langs = []string{LangCSS, LangHTML, LangJavaScript, LangTSX, LangTypeScript}
	}

	gl := &GrammarLoader{languages: make(map[string]*sitter.Language, len(langs))}
	for _, langID := range langs {
		switch langID {
		case LangCSS:
			gl.languages[LangCSS] = sitter.NewLanguage(tree_sitter_css.Language())
		case LangHTML:
			gl.languages[LangHTML] = sitter.NewLanguage(tree_sitter_html.Language())
		case LangJavaScript:
			gl.languages[LangJavaScript] = sitter.NewLanguage(tree_sitter_javascript.Language())
		case LangTSX:
			gl.languages[LangTSX] = sitter.NewLanguage(tree_sitter_typescript.LanguageTSX())
		case LangTypeScript:
			gl.languages[LangTypeScript] = sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
		default:
			return nil, fmt.Errorf("language %q is not supported by the grammar loader", langID)
		}
	}
	return gl, nil
}

// Language returns the loaded grammar for langID.
func (gl *GrammarLoader) Language(langID string) (*sitter.Language, bool) {
	lang, ok := gl.languages[langID]
	return lang, ok
}

// Languages lists the loaded language IDs in sorted order.
func (gl *GrammarLoader) Languages() []string {
	out := make([]string, 0, len(gl.languages))
	for id := range gl.languages {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// ScriptLanguage maps the lang attribute of a script block to a grammar.
// An empty lang means plain JavaScript.
func ScriptLanguage(lang string) string {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "", "js", "javascript", "jsx", "mjs":
		return LangJavaScript
	case "ts", "typescript":
		return LangTypeScript
	case "tsx":
		return LangTSX
	}
	return ""
}

// StyleLanguage maps the lang attribute of a style block to a grammar.
// Preprocessor dialects have no grammar and map to "".
func StyleLanguage(lang string) string {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "", "css":
		return LangCSS
	}
	return ""
}

// LanguageForPath picks the script grammar for an external script file.
func LanguageForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js", ".mjs", ".cjs", ".jsx":
		return LangJavaScript
	case ".ts", ".mts", ".cts":
		return LangTypeScript
	case ".tsx":
		return LangTSX
	case ".css":
		return LangCSS
	case ".html", ".htm":
		return LangHTML
	}
	return ""
}
