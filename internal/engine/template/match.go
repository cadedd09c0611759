package template

import "vuescope/internal/engine/parser"

// Query selects elements and one attribute on each.
type Query struct {
	Program *parser.Tree
	Source  string
	// Component is tested against each element's normalized tag name.
	Component NameMatcher
	// Attributes must all hold for the same attribute. With no matchers
	// the first attribute is selected.
	Attributes []AttributeMatcher
	Visit      func(el *Element, attr *Attribute)
}

// MatchComponentWithProp walks the template in document order and calls
// Visit once for each matching element, with the first attribute in source
// order that satisfies every matcher.
func MatchComponentWithProp(q Query) {
	if q.Program.Empty() || q.Visit == nil {
		return
	}
	Build(q.Program, q.Source).Walk(func(el *Element) bool {
		if !q.Component.Matches(el.Name(), el) {
			return true
		}
		if attr := firstMatch(el.Attributes, q.Attributes); attr != nil {
			q.Visit(el, attr)
		}
		return true
	})
}

func firstMatch(attrs []*Attribute, matchers []AttributeMatcher) *Attribute {
	for _, attr := range attrs {
		ok := true
		for _, m := range matchers {
			if !m.Matches(attr) {
				ok = false
				break
			}
		}
		if ok {
			return attr
		}
	}
	return nil
}
