package template

import (
	"html"
	"strings"

	"vuescope/internal/engine/parser"
	"vuescope/internal/shared/util"
)

// Directive names produced by the shorthand prefixes.
const (
	DirectiveBind = "bind"
	DirectiveOn   = "on"
	DirectiveSlot = "slot"
)

// Value is an attribute value. The zero value is NoValue.
type Value struct {
	Set  bool
	Text string
}

// NoValue stands for an attribute written without a value.
var NoValue = Value{}

// TextValue wraps a present value.
func TextValue(s string) Value {
	return Value{Set: true, Text: s}
}

// Attribute is a markup attribute decoded with Vue's directive syntax:
// v-name:argument.modifier, and the : @ # . shorthands.
type Attribute struct {
	Node *parser.Node
	// Name is the attribute name as written.
	Name      string
	NameStart int
	// Directive is the directive name without "v-"; empty for static
	// attributes.
	Directive string
	// Shorthand is the prefix used instead of v-name, if any.
	Shorthand string
	// Argument is the directive argument; a dynamic argument keeps its
	// brackets.
	Argument  string
	Dynamic   bool
	Modifiers []string
	// Value holds the decoded literal of a static attribute, or the raw
	// expression of a directive.
	Value Value
	// ValueStart and ValueEnd bound the value text, or are -1.
	ValueStart int
	ValueEnd   int

	modifierPos []int
}

// IsDirective reports whether the attribute is a directive.
func (a *Attribute) IsDirective() bool {
	return a.Directive != ""
}

// IsEvent reports whether the attribute is an event listener.
func (a *Attribute) IsEvent() bool {
	return a.Directive == DirectiveOn
}

// IsBinding reports whether the attribute is a v-bind.
func (a *Attribute) IsBinding() bool {
	return a.Directive == DirectiveBind
}

// HasModifier reports whether the directive carries modifier m.
func (a *Attribute) HasModifier(m string) bool {
	for _, mod := range a.Modifiers {
		if mod == m {
			return true
		}
	}
	return false
}

// ModifierRange returns the template offsets of ".m" in the attribute name.
func (a *Attribute) ModifierRange(m string) (int, int, bool) {
	for i, mod := range a.Modifiers {
		if mod == m && i < len(a.modifierPos) && a.modifierPos[i] >= 0 {
			start := a.NameStart + a.modifierPos[i]
			return start, start + 1 + len(m), true
		}
	}
	return 0, 0, false
}

// Key is the argument when there is one, else the directive name, else the
// static attribute name.
func (a *Attribute) Key() string {
	switch {
	case a.Argument != "":
		return a.Argument
	case a.Directive != "":
		return a.Directive
	}
	return a.Name
}

// CamelKey is Key in camelCase, the form attributes are compared in.
func (a *Attribute) CamelKey() string {
	return util.ToCamelCase(a.Key())
}

// End is the offset just past the attribute.
func (a *Attribute) End() int {
	return a.Node.End
}

func decodeAttribute(n *parser.Node, src string) *Attribute {
	nameNode := n.ChildOfKind("attribute_name")
	if nameNode == nil {
		return nil
	}
	a := &Attribute{
		Node:       n,
		Name:       nameNode.Text(src),
		NameStart:  nameNode.Start,
		ValueStart: -1,
		ValueEnd:   -1,
	}
	a.decodeName()

	if quoted := n.ChildOfKind("quoted_attribute_value"); quoted != nil {
		if inner := quoted.ChildOfKind("attribute_value"); inner != nil {
			a.ValueStart, a.ValueEnd = inner.Start, inner.End
		} else {
			a.ValueStart, a.ValueEnd = quoted.Start+1, quoted.Start+1
		}
	} else if bare := n.ChildOfKind("attribute_value"); bare != nil {
		a.ValueStart, a.ValueEnd = bare.Start, bare.End
	}
	if a.ValueStart >= 0 {
		raw := src[a.ValueStart:a.ValueEnd]
		if !a.IsDirective() {
			raw = html.UnescapeString(raw)
		}
		a.Value = TextValue(raw)
	}
	return a
}

func (a *Attribute) decodeName() {
	raw := a.Name
	var rest string
	restAt := 0
	switch {
	case strings.HasPrefix(raw, "v-") && len(raw) > 2:
		body := raw[2:]
		i := strings.IndexAny(body, ":.")
		if i < 0 {
			a.Directive = body
			return
		}
		a.Directive = body[:i]
		if body[i] == ':' {
			rest, restAt = body[i+1:], 2+i+1
		} else {
			a.addModifiers(body[i:], 2+i)
			return
		}
	case strings.HasPrefix(raw, ":"):
		a.Directive, a.Shorthand = DirectiveBind, ":"
		rest, restAt = raw[1:], 1
	case strings.HasPrefix(raw, "@"):
		a.Directive, a.Shorthand = DirectiveOn, "@"
		rest, restAt = raw[1:], 1
	case strings.HasPrefix(raw, "#"):
		a.Directive, a.Shorthand = DirectiveSlot, "#"
		rest, restAt = raw[1:], 1
	case strings.HasPrefix(raw, ".") && len(raw) > 1:
		a.Directive, a.Shorthand = DirectiveBind, "."
		a.Modifiers = append(a.Modifiers, "prop")
		a.modifierPos = append(a.modifierPos, -1)
		rest, restAt = raw[1:], 1
	default:
		return
	}

	var tail string
	tailAt := 0
	if strings.HasPrefix(rest, "[") {
		if j := strings.IndexByte(rest, ']'); j >= 0 {
			a.Argument, a.Dynamic = rest[:j+1], true
			tail, tailAt = rest[j+1:], restAt+j+1
		} else {
			a.Argument, a.Dynamic = rest, true
		}
	} else if j := strings.IndexByte(rest, '.'); j >= 0 {
		a.Argument = rest[:j]
		tail, tailAt = rest[j:], restAt+j
	} else {
		a.Argument = rest
	}
	if strings.HasPrefix(tail, ".") {
		a.addModifiers(tail, tailAt)
	}
}

// addModifiers records ".a.b" modifiers starting at name offset at.
func (a *Attribute) addModifiers(s string, at int) {
	pos := at
	for _, mod := range strings.Split(s[1:], ".") {
		if mod != "" {
			a.Modifiers = append(a.Modifiers, mod)
			a.modifierPos = append(a.modifierPos, pos)
		}
		pos += 1 + len(mod)
	}
}
