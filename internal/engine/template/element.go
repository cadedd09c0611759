// Package template models a parsed component template as elements with
// decoded Vue attributes and runs structural queries over it.
package template

import (
	"vuescope/internal/engine/parser"
	"vuescope/internal/shared/util"
)

// Element is one markup element. Offsets are relative to the template
// content.
type Element struct {
	// Tag is the tag name as written.
	Tag string
	// Node is the element node; StartTag is its start_tag or
	// self_closing_tag.
	Node       *parser.Node
	StartTag   *parser.Node
	Attributes []*Attribute
	Children   []*Element
	Parent     *Element
}

// Name returns the normalized tag name used for component matching.
func (e *Element) Name() string {
	return util.NormalizeComponentName(e.Tag)
}

// Attribute returns the first attribute written as name, or else the first
// whose camel-cased key equals name's.
func (e *Element) Attribute(name string) *Attribute {
	for _, a := range e.Attributes {
		if a.Name == name {
			return a
		}
	}
	key := util.ToCamelCase(name)
	for _, a := range e.Attributes {
		if a.CamelKey() == key {
			return a
		}
	}
	return nil
}

// Document is the element forest of one template.
type Document struct {
	Source string
	Roots  []*Element
}

// Build converts a parsed template into elements. A nil or empty tree gives
// an empty document.
func Build(tree *parser.Tree, src string) *Document {
	doc := &Document{Source: src}
	if tree == nil || tree.Root == nil {
		return doc
	}
	doc.Roots = collect(tree.Root, nil, src)
	return doc
}

func collect(n *parser.Node, parent *Element, src string) []*Element {
	var out []*Element
	for _, child := range n.Children {
		if child.Kind != "element" {
			if child.Kind == "ERROR" {
				out = append(out, collect(child, parent, src)...)
			}
			continue
		}
		tag := child.ChildOfKind("start_tag", "self_closing_tag")
		if tag == nil {
			continue
		}
		el := &Element{
			Tag:      tag.ChildOfKind("tag_name").Text(src),
			Node:     child,
			StartTag: tag,
			Parent:   parent,
		}
		for _, attr := range tag.ChildrenOfKind("attribute") {
			if a := decodeAttribute(attr, src); a != nil {
				el.Attributes = append(el.Attributes, a)
			}
		}
		el.Children = collect(child, el, src)
		out = append(out, el)
	}
	return out
}

// Walk visits elements in document order. Returning false skips the
// element's children.
func (d *Document) Walk(fn func(*Element) bool) {
	var visit func([]*Element)
	visit = func(els []*Element) {
		for _, el := range els {
			if fn(el) {
				visit(el.Children)
			}
		}
	}
	visit(d.Roots)
}

// Elements returns every element in document order.
func (d *Document) Elements() []*Element {
	var out []*Element
	d.Walk(func(el *Element) bool {
		out = append(out, el)
		return true
	})
	return out
}
