// # internal/engine/parser/types.go
package parser

// Point is a zero-based row/column position, as reported by tree-sitter.
type Point struct {
	Row    int
	Column int
}

// Node is the grammar-agnostic tree shape every analysis walks. It is copied
// out of the tree-sitter tree at parse time so nothing holds cgo memory and
// the tree can be shared between goroutines read-only.
//
// Start and End are byte offsets relative to the parsed content.
type Node struct {
	Kind       string
	Field      string // field name in the parent, "" when unnamed
	Named      bool
	Start      int
	End        int
	StartPoint Point
	Children   []*Node
}

// Tree is the result of parsing one region.
type Tree struct {
	Language string
	Root     *Node
	// FirstError is the first ERROR or MISSING node in document order.
	FirstError *Node
}

// HasError reports whether the grammar rejected part of the input.
func (t *Tree) HasError() bool {
	return t != nil && t.FirstError != nil
}

// Empty reports whether the tree has no named content at all.
func (t *Tree) Empty() bool {
	if t == nil || t.Root == nil {
		return true
	}
	for _, child := range t.Root.Children {
		if child.Named && child.Kind != "comment" {
			return false
		}
	}
	return true
}

// Text returns the source slice the node covers.
func (n *Node) Text(source string) string {
	if n == nil || n.Start < 0 || n.End > len(source) || n.Start > n.End {
		return ""
	}
	return source[n.Start:n.End]
}

// ChildByField returns the first child stored under field.
func (n *Node) ChildByField(field string) *Node {
	if n == nil {
		return nil
	}
	for _, child := range n.Children {
		if child.Field == field {
			return child
		}
	}
	return nil
}

// ChildOfKind returns the first direct child whose kind is one of kinds.
func (n *Node) ChildOfKind(kinds ...string) *Node {
	if n == nil {
		return nil
	}
	for _, child := range n.Children {
		for _, kind := range kinds {
			if child.Kind == kind {
				return child
			}
		}
	}
	return nil
}

// ChildrenOfKind returns every direct child of the given kind.
func (n *Node) ChildrenOfKind(kind string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, child := range n.Children {
		if child.Kind == kind {
			out = append(out, child)
		}
	}
	return out
}

// NamedChildren returns the named direct children, skipping comments.
func (n *Node) NamedChildren() []*Node {
	if n == nil {
		return nil
	}
	out := make([]*Node, 0, len(n.Children))
	for _, child := range n.Children {
		if child.Named && child.Kind != "comment" {
			out = append(out, child)
		}
	}
	return out
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// Find returns the first node in pre-order for which match holds.
func (n *Node) Find(match func(*Node) bool) *Node {
	var found *Node
	n.Walk(func(node *Node) bool {
		if found != nil {
			return false
		}
		if match(node) {
			found = node
			return false
		}
		return true
	})
	return found
}
