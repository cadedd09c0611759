package query

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"vuescope/internal/data/source"
	"vuescope/internal/engine/component"
	"vuescope/internal/engine/parser"
	"vuescope/internal/engine/patch"
	"vuescope/internal/engine/resolver"
	"vuescope/internal/engine/script"
	"vuescope/internal/engine/template"
	"vuescope/internal/shared/util"
)

// NonPropBindings reports attributes passed to a component that its
// definition does not declare as a prop. Findings are grouped by the
// resolved component, one per attribute.
func (s *Service) NonPropBindings(ctx context.Context) (*Result, error) {
	ignored := make(map[string]bool, len(IgnoredBindings))
	for _, a := range IgnoredBindings {
		ignored[a] = true
	}
	return s.run(ctx, TaskNonPropBindings, func(ctx context.Context, res *Result) error {
		var c collector
		report, err := s.eachComponent(ctx, func(ctx context.Context, file *source.File, st *component.Struct) error {
			if st.Template == nil || st.Template.Program == nil {
				return nil
			}
			targets := make(map[string]*component.Struct)
			for _, el := range template.Build(st.Template.Program, st.Template.Content).Elements() {
				if !isComponentTag(el.Tag) || s.app.References.IsBuiltin(el.Name()) {
					continue
				}
				target, ok := targets[el.Name()]
				if !ok {
					var err error
					target, err = s.app.References.ResolveComponentFromContext(ctx, el.Name(), st)
					if err != nil {
						return err
					}
					targets[el.Name()] = target
				}
				if target == nil || (target.Script != nil && target.Script.Setup) {
					continue
				}
				props, ok := declaredProps(target)
				if !ok {
					continue
				}
				for _, attr := range el.Attributes {
					if attr.Dynamic || (attr.IsDirective() && (!attr.IsBinding() || attr.Argument == "")) {
						continue
					}
					key := attr.Key()
					if key == "" || ignored[key] || props[util.ToCamelCase(key)] {
						continue
					}
					c.addUnique(target.Path+"\x00"+attr.CamelKey(), Finding{
						Location:  locate(file, st.Template, attr.Node.Start),
						Path:      target.Path,
						Component: el.Tag,
						Attribute: attr.CamelKey(),
						Value:     attr.Value.Text,
						Message:   fmt.Sprintf("%s is not a prop of %s", attr.CamelKey(), componentName(target.Path)),
					})
				}
			}
			return nil
		})
		res.Report, res.Findings = report, c.findings
		return err
	})
}

// isComponentTag tells custom components from native elements: components
// are PascalCase or contain a hyphen.
func isComponentTag(tag string) bool {
	if tag == "" {
		return false
	}
	return strings.Contains(tag, "-") || unicode.IsUpper([]rune(tag)[0])
}

// declaredProps returns the camel-cased props of s. It reports false when s
// has no options object to declare props in.
func declaredProps(s *component.Struct) (map[string]bool, bool) {
	if s.Script == nil {
		return nil, false
	}
	def := script.DefaultExport(s.Script)
	if def == nil || def.Object == nil {
		return nil, false
	}
	props := make(map[string]bool)
	for _, p := range def.Props() {
		props[util.ToCamelCase(p)] = true
	}
	return props, true
}

func componentName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

var templateEmit = regexp.MustCompile("\\$emit\\(\\s*(['\"`])([^'\"`]+)['\"`]")

type emitUse struct {
	event string
	part  *component.Part
	at    int
}

// usedEvents lists the events a component emits, template first, each once.
func usedEvents(st *component.Struct) []emitUse {
	seen := make(map[string]bool)
	var out []emitUse
	add := func(u emitUse) {
		if !seen[u.event] {
			seen[u.event] = true
			out = append(out, u)
		}
	}
	if st.Template != nil {
		for _, m := range templateEmit.FindAllStringSubmatchIndex(st.Template.Content, -1) {
			add(emitUse{event: st.Template.Content[m[4]:m[5]], part: st.Template, at: m[0]})
		}
	}
	if st.Script != nil {
		for _, e := range script.EmittedEvents(st.Script) {
			add(emitUse{event: e.Event, part: st.Script, at: e.Call.Start})
		}
	}
	return out
}

// MissingEmits reports events emitted by a component that its emits option
// does not declare. With fix, the option is created or extended. Object
// form emits options are reported but never rewritten.
func (s *Service) MissingEmits(ctx context.Context, fix bool) (*Result, error) {
	return s.run(ctx, TaskMissingEmits, func(ctx context.Context, res *Result) error {
		var c collector
		edits := patch.NewEditSet()
		report, err := s.eachComponent(ctx, func(ctx context.Context, file *source.File, st *component.Struct) error {
			if st.Script != nil && st.Script.Setup {
				return nil
			}
			used := usedEvents(st)
			if len(used) == 0 {
				return nil
			}
			var def *script.Definition
			if st.Script != nil {
				def = script.DefaultExport(st.Script)
			}
			emitsNode, declared := def.Emits()
			known := make(map[string]bool, len(declared))
			for _, d := range declared {
				known[d] = true
			}

			var missing []string
			for _, u := range used {
				if known[u.event] {
					continue
				}
				missing = append(missing, u.event)
				f := Finding{
					Location:  locate(file, u.part, u.at),
					Path:      file.Path,
					Component: componentName(file.Path),
					Value:     u.event,
					Message:   fmt.Sprintf("%q is emitted but not declared", u.event),
				}
				if def == nil || def.Object == nil {
					f.Message = fmt.Sprintf("%q is emitted but the component has no options object", u.event)
				}
				c.add(f)
			}
			if !fix || len(missing) == 0 || def == nil || def.Object == nil {
				return nil
			}
			if edit, ok := emitsEdit(def, emitsNode, missing); ok {
				edits.Add(st.Script.Path, patch.Edit{Start: st.Script.Abs(edit.Start), End: st.Script.Abs(edit.End), Text: edit.Text})
			}
			return nil
		})
		res.Report, res.Findings = report, c.findings
		if err != nil {
			return err
		}
		if fix {
			s.commit(ctx, edits, res)
		}
		return nil
	})
}

// emitsEdit builds the script-relative insertion declaring events.
func emitsEdit(def *script.Definition, emits *parser.Node, events []string) (patch.Edit, bool) {
	quoted := make([]string, len(events))
	for i, e := range events {
		quoted[i] = "'" + e + "'"
	}
	list := strings.Join(quoted, ", ")
	src := def.Part.Content

	if emits != nil {
		if emits.Kind != "array" {
			return patch.Edit{}, false
		}
		elems := emits.NamedChildren()
		if len(elems) == 0 {
			return patch.Insert(emits.Start+1, list), true
		}
		return patch.Insert(elems[len(elems)-1].End, ", "+list), true
	}

	// The new option goes after the last of name, components and props.
	var anchor *parser.Node
	for _, p := range def.Properties() {
		switch p.Key {
		case "name", "components", "props":
			if anchor == nil || p.Node.End > anchor.End {
				anchor = p.Node
			}
		}
	}
	if anchor != nil {
		indent := lineIndent(src, anchor.Start)
		return patch.Insert(anchor.End, ",\n"+indent+"emits: ["+list+"]"), true
	}
	indent := lineIndent(src, def.Object.Start) + "  "
	return patch.Insert(def.Object.Start+1, "\n"+indent+"emits: ["+list+"],"), true
}

// lineIndent returns the leading whitespace of the line holding offset.
func lineIndent(src string, offset int) string {
	start := strings.LastIndexByte(src[:offset], '\n') + 1
	end := start
	for end < len(src) && (src[end] == ' ' || src[end] == '\t') {
		end++
	}
	return src[start:end]
}

// Graph reports every component-to-component edge reachable from the
// project files.
func (s *Service) Graph(ctx context.Context) (*Result, error) {
	return s.run(ctx, TaskComponentGraph, func(ctx context.Context, res *Result) error {
		var c collector
		report, err := s.eachComponent(ctx, func(ctx context.Context, file *source.File, st *component.Struct) error {
			return s.app.References.Walk(ctx, st, func(ref resolver.Reference) error {
				c.addUnique(ref.From.Path+"\x00"+ref.Path, Finding{
					Location:  ref.From.Path,
					Path:      ref.From.Path,
					Component: ref.Tag,
					Value:     ref.Path,
				})
				return nil
			})
		})
		res.Report, res.Findings = report, c.findings
		return err
	})
}
