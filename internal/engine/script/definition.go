// Package script reads component definitions out of parsed script regions.
// It understands the tree-sitter JavaScript and TypeScript grammars.
package script

import (
	"vuescope/internal/engine/component"
	"vuescope/internal/engine/parser"
)

// Property is one member of an object literal.
type Property struct {
	Key string
	// Node is the pair, shorthand_property_identifier or method_definition.
	Node *parser.Node
	// Value is the pair value, or the identifier of a shorthand member. It is
	// nil for methods.
	Value *parser.Node
}

// Definition is the default-exported component definition of a script.
type Definition struct {
	Part *component.Part
	// Export is the export_statement node.
	Export *parser.Node
	// Object is the options object literal, nil when the export is not one.
	Object *parser.Node
}

// wrappers are calls whose first object argument is the definition.
var wrappers = map[string]bool{
	"defineComponent": true,
	"Vue.extend":      true,
}

// DefaultExport finds the default export of part. The options object is
// taken from an object literal or from the first object argument of
// defineComponent(...) and Vue.extend(...).
func DefaultExport(part *component.Part) *Definition {
	root := part.Root()
	if root == nil {
		return nil
	}
	for _, stmt := range root.NamedChildren() {
		if !isDefaultExport(stmt) {
			continue
		}
		return &Definition{
			Part:   part,
			Export: stmt,
			Object: optionsObject(stmt.ChildByField("value"), part.Content),
		}
	}
	return nil
}

func isDefaultExport(n *parser.Node) bool {
	return n.Kind == "export_statement" && n.ChildOfKind("default") != nil
}

func optionsObject(expr *parser.Node, src string) *parser.Node {
	expr = unwrap(expr)
	if expr == nil {
		return nil
	}
	switch expr.Kind {
	case "object":
		return expr
	case "call_expression":
		if !wrappers[expr.ChildByField("function").Text(src)] {
			return nil
		}
		for _, arg := range expr.ChildByField("arguments").NamedChildren() {
			if obj := unwrap(arg); obj != nil && obj.Kind == "object" {
				return obj
			}
		}
	}
	return nil
}

// unwrap strips parentheses and TypeScript type assertions.
func unwrap(n *parser.Node) *parser.Node {
	for n != nil {
		switch n.Kind {
		case "parenthesized_expression", "as_expression", "satisfies_expression", "non_null_expression":
			named := n.NamedChildren()
			if len(named) == 0 {
				return nil
			}
			n = named[0]
		default:
			return n
		}
	}
	return nil
}

// Properties lists the options object members in source order.
func (d *Definition) Properties() []Property {
	if d == nil {
		return nil
	}
	return ObjectProperties(d.Object, d.Part.Content)
}

// Option returns the option called name.
func (d *Definition) Option(name string) (Property, bool) {
	for _, p := range d.Properties() {
		if p.Key == name {
			return p, true
		}
	}
	return Property{}, false
}

// Props lists declared prop names from the object or the array form.
func (d *Definition) Props() []string {
	opt, ok := d.Option("props")
	if !ok {
		return nil
	}
	return d.names(opt.Value)
}

// Emits returns the emits option value node and the declared event names.
// The node is nil when no emits option exists.
func (d *Definition) Emits() (*parser.Node, []string) {
	opt, ok := d.Option("emits")
	if !ok {
		return nil, nil
	}
	value := unwrap(opt.Value)
	return value, d.names(value)
}

// Components lists the members of the components option.
func (d *Definition) Components() []Property {
	opt, ok := d.Option("components")
	if !ok {
		return nil
	}
	return ObjectProperties(unwrap(opt.Value), d.Part.Content)
}

func (d *Definition) names(value *parser.Node) []string {
	value = unwrap(value)
	if value == nil {
		return nil
	}
	var out []string
	switch value.Kind {
	case "object":
		for _, p := range ObjectProperties(value, d.Part.Content) {
			out = append(out, p.Key)
		}
	case "array":
		for _, el := range value.NamedChildren() {
			if s, ok := StringValue(el, d.Part.Content); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

// ObjectProperties lists the named members of an object literal. Spread
// elements and computed keys are skipped.
func ObjectProperties(obj *parser.Node, src string) []Property {
	if obj == nil || obj.Kind != "object" {
		return nil
	}
	var out []Property
	for _, child := range obj.NamedChildren() {
		switch child.Kind {
		case "pair":
			key, ok := propertyKey(child.ChildByField("key"), src)
			if !ok {
				continue
			}
			out = append(out, Property{Key: key, Node: child, Value: child.ChildByField("value")})
		case "shorthand_property_identifier":
			out = append(out, Property{Key: child.Text(src), Node: child, Value: child})
		case "method_definition":
			key, ok := propertyKey(child.ChildByField("name"), src)
			if !ok {
				continue
			}
			out = append(out, Property{Key: key, Node: child})
		}
	}
	return out
}

func propertyKey(n *parser.Node, src string) (string, bool) {
	if n == nil {
		return "", false
	}
	switch n.Kind {
	case "property_identifier", "identifier", "number":
		return n.Text(src), true
	case "string":
		return StringValue(n, src)
	}
	return "", false
}

// StringValue returns the value of a string literal, or of a template
// string without substitutions. Escapes are kept as written.
func StringValue(n *parser.Node, src string) (string, bool) {
	if n == nil {
		return "", false
	}
	switch n.Kind {
	case "string":
	case "template_string":
		if n.ChildOfKind("template_substitution") != nil {
			return "", false
		}
	default:
		return "", false
	}
	text := n.Text(src)
	if len(text) < 2 {
		return "", false
	}
	return text[1 : len(text)-1], true
}
