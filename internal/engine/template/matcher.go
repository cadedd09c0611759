package template

import "vuescope/internal/shared/util"

type matcherKind uint8

const (
	matchAny matcherKind = iota
	matchLiteral
	matchPredicate
)

// Matcher is a tagged union of Literal, Predicate and Any. The zero value
// matches everything.
type Matcher[T comparable, C any] struct {
	kind      matcherKind
	literal   T
	predicate func(T, C) bool
}

// Literal matches values equal to v.
func Literal[T comparable, C any](v T) Matcher[T, C] {
	return Matcher[T, C]{kind: matchLiteral, literal: v}
}

// Predicate matches values for which fn holds. A nil fn matches everything.
func Predicate[T comparable, C any](fn func(T, C) bool) Matcher[T, C] {
	if fn == nil {
		return Matcher[T, C]{}
	}
	return Matcher[T, C]{kind: matchPredicate, predicate: fn}
}

// Any matches everything.
func Any[T comparable, C any]() Matcher[T, C] {
	return Matcher[T, C]{}
}

// Matches evaluates the matcher against v; c is the node v was read from.
func (m Matcher[T, C]) Matches(v T, c C) bool {
	switch m.kind {
	case matchLiteral:
		return v == m.literal
	case matchPredicate:
		return m.predicate(v, c)
	}
	return true
}

type (
	// NameMatcher tests a normalized tag name.
	NameMatcher = Matcher[string, *Element]
	// KeyMatcher tests a camel-cased attribute key.
	KeyMatcher = Matcher[string, *Attribute]
	// ValueMatcher tests an attribute value.
	ValueMatcher = Matcher[Value, *Attribute]
)

// Tag matches a component by name in any authoring style.
func Tag(name string) NameMatcher {
	return Literal[string, *Element](util.NormalizeComponentName(name))
}

// TagFunc matches components for which fn holds.
func TagFunc(fn func(name string, el *Element) bool) NameMatcher {
	return Predicate(fn)
}

// Key matches an attribute key, kebab or camel case.
func Key(name string) KeyMatcher {
	return Literal[string, *Attribute](util.ToCamelCase(name))
}

// KeyFunc matches attributes for which fn holds.
func KeyFunc(fn func(key string, attr *Attribute) bool) KeyMatcher {
	return Predicate(fn)
}

// ValueText matches attributes whose value is exactly s.
func ValueText(s string) ValueMatcher {
	return Literal[Value, *Attribute](TextValue(s))
}

// ValueAbsent matches attributes written without a value.
func ValueAbsent() ValueMatcher {
	return Literal[Value, *Attribute](NoValue)
}

// ValueFunc matches attributes for which fn holds.
func ValueFunc(fn func(v Value, attr *Attribute) bool) ValueMatcher {
	return Predicate(fn)
}

// AttributeMatcher describes one attribute condition. Unset sides match
// anything.
type AttributeMatcher struct {
	Key   KeyMatcher
	Value ValueMatcher
}

// Matches tests attr against both sides.
func (m AttributeMatcher) Matches(attr *Attribute) bool {
	return m.Key.Matches(attr.CamelKey(), attr) && m.Value.Matches(attr.Value, attr)
}
