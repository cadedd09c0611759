package script

import (
	"vuescope/internal/engine/component"
	"vuescope/internal/engine/parser"
)

type BindingKind int

const (
	// ImportBinding is a static import specifier.
	ImportBinding BindingKind = iota
	// AsyncBinding is a variable initialised by an async component factory
	// wrapping a dynamic import.
	AsyncBinding
	// LazyBinding is a variable initialised by a bare () => import(...).
	LazyBinding
)

func (k BindingKind) String() string {
	switch k {
	case ImportBinding:
		return "import"
	case AsyncBinding:
		return "async"
	case LazyBinding:
		return "lazy"
	}
	return "unknown"
}

// Binding ties a local name to the module it loads.
type Binding struct {
	Name      string
	Specifier string
	Kind      BindingKind
	Node      *parser.Node
}

// Bindings lists the module bindings declared by top-level statements before
// the default export. asyncFactories names the calls that wrap a dynamic
// import, such as defineAsyncComponent.
func Bindings(part *component.Part, asyncFactories []string) []Binding {
	root := part.Root()
	if root == nil {
		return nil
	}
	factories := make(map[string]bool, len(asyncFactories))
	for _, f := range asyncFactories {
		factories[f] = true
	}

	var out []Binding
	for _, stmt := range root.NamedChildren() {
		if isDefaultExport(stmt) {
			break
		}
		switch stmt.Kind {
		case "import_statement":
			out = append(out, importBindings(stmt, part.Content)...)
		case "lexical_declaration", "variable_declaration":
			for _, decl := range stmt.ChildrenOfKind("variable_declarator") {
				name := decl.ChildByField("name")
				if name == nil || name.Kind != "identifier" {
					continue
				}
				spec, kind, ok := lazySpecifier(decl.ChildByField("value"), part.Content, factories)
				if !ok {
					continue
				}
				out = append(out, Binding{Name: name.Text(part.Content), Specifier: spec, Kind: kind, Node: decl})
			}
		}
	}
	return out
}

// Lookup returns the binding for a local name.
func Lookup(bindings []Binding, name string) (Binding, bool) {
	for _, b := range bindings {
		if b.Name == name {
			return b, true
		}
	}
	return Binding{}, false
}

func importBindings(stmt *parser.Node, src string) []Binding {
	spec, ok := StringValue(stmt.ChildByField("source"), src)
	if !ok {
		return nil
	}
	clause := stmt.ChildOfKind("import_clause")
	if clause == nil {
		return nil
	}
	var out []Binding
	add := func(local *parser.Node) {
		if local != nil {
			out = append(out, Binding{Name: local.Text(src), Specifier: spec, Kind: ImportBinding, Node: stmt})
		}
	}
	for _, child := range clause.NamedChildren() {
		switch child.Kind {
		case "identifier":
			add(child)
		case "namespace_import":
			add(child.ChildOfKind("identifier"))
		case "named_imports":
			for _, s := range child.ChildrenOfKind("import_specifier") {
				if alias := s.ChildByField("alias"); alias != nil {
					add(alias)
				} else {
					add(s.ChildByField("name"))
				}
			}
		}
	}
	return out
}

// ImportSpecifier reads the module loaded by an inline component value:
// () => import('...'), or an async factory call wrapping one.
func ImportSpecifier(value *parser.Node, src string, asyncFactories []string) (string, bool) {
	factories := make(map[string]bool, len(asyncFactories))
	for _, f := range asyncFactories {
		factories[f] = true
	}
	spec, _, ok := lazySpecifier(value, src, factories)
	return spec, ok
}

func lazySpecifier(value *parser.Node, src string, factories map[string]bool) (string, BindingKind, bool) {
	value = unwrap(value)
	if value == nil {
		return "", 0, false
	}
	switch value.Kind {
	case "arrow_function", "function_expression", "function":
		if spec, ok := dynamicImport(value, src); ok {
			return spec, LazyBinding, true
		}
	case "call_expression":
		if !factories[value.ChildByField("function").Text(src)] {
			return "", 0, false
		}
		args := value.ChildByField("arguments").NamedChildren()
		if len(args) == 0 {
			return "", 0, false
		}
		loader := unwrap(args[0])
		if loader != nil && loader.Kind == "object" {
			for _, p := range ObjectProperties(loader, src) {
				if p.Key == "loader" {
					loader = unwrap(p.Value)
					break
				}
			}
		}
		if spec, ok := dynamicImport(loader, src); ok {
			return spec, AsyncBinding, true
		}
	}
	return "", 0, false
}

// dynamicImport reads the specifier of a function whose body is, or returns,
// import('...').
func dynamicImport(fn *parser.Node, src string) (string, bool) {
	if fn == nil {
		return "", false
	}
	body := unwrap(fn.ChildByField("body"))
	if body == nil {
		return "", false
	}
	if body.Kind == "statement_block" {
		ret := body.ChildOfKind("return_statement")
		if ret == nil {
			return "", false
		}
		named := ret.NamedChildren()
		if len(named) == 0 {
			return "", false
		}
		body = unwrap(named[0])
	}
	if body == nil || body.Kind != "call_expression" {
		return "", false
	}
	if callee := body.ChildByField("function"); callee == nil || callee.Kind != "import" {
		return "", false
	}
	args := body.ChildByField("arguments").NamedChildren()
	if len(args) == 0 {
		return "", false
	}
	return StringValue(args[0], src)
}
