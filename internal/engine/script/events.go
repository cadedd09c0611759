package script

import (
	"vuescope/internal/engine/component"
	"vuescope/internal/engine/parser"
)

// Emit is one event emission found in a script.
type Emit struct {
	Event string
	Call  *parser.Node
}

// EmittedEvents lists $emit('name') and emit('name') calls whose first
// argument is a string literal, in source order.
func EmittedEvents(part *component.Part) []Emit {
	root := part.Root()
	if root == nil {
		return nil
	}
	var out []Emit
	root.Walk(func(n *parser.Node) bool {
		if n.Kind != "call_expression" || !isEmitCallee(n.ChildByField("function"), part.Content) {
			return true
		}
		args := n.ChildByField("arguments").NamedChildren()
		if len(args) > 0 {
			if name, ok := StringValue(args[0], part.Content); ok {
				out = append(out, Emit{Event: name, Call: n})
			}
		}
		return true
	})
	return out
}

func isEmitCallee(fn *parser.Node, src string) bool {
	if fn == nil {
		return false
	}
	switch fn.Kind {
	case "identifier":
		name := fn.Text(src)
		return name == "$emit" || name == "emit"
	case "member_expression":
		return fn.ChildByField("property").Text(src) == "$emit"
	}
	return false
}
