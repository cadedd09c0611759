package query

import (
	"context"

	"vuescope/internal/data/source"
	"vuescope/internal/engine/component"
	"vuescope/internal/engine/patch"
	"vuescope/internal/engine/template"
	"vuescope/internal/shared/util"
)

func match(s *component.Struct, q template.Query) {
	if s.Template == nil {
		return
	}
	q.Program = s.Template.Program
	q.Source = s.Template.Content
	template.MatchComponentWithProp(q)
}

// Find reports every component usage receiving the requested attribute.
func (s *Service) Find(ctx context.Context, req FindRequest) (*Result, error) {
	q := template.Query{}
	if req.Tag != "" {
		q.Component = template.Tag(req.Tag)
	}
	m := template.AttributeMatcher{}
	if req.Key != "" {
		m.Key = template.Key(req.Key)
	}
	if req.Value != nil {
		m.Value = template.ValueText(*req.Value)
	}
	q.Attributes = []template.AttributeMatcher{m}

	return s.run(ctx, TaskFind, func(ctx context.Context, res *Result) error {
		var c collector
		report, err := s.eachComponent(ctx, func(ctx context.Context, file *source.File, st *component.Struct) error {
			q := q
			q.Visit = func(el *template.Element, attr *template.Attribute) {
				c.add(Finding{
					Location:  locate(file, st.Template, attr.Node.Start),
					Path:      file.Path,
					Component: el.Name(),
					Attribute: attr.Name,
					Value:     attr.Value.Text,
				})
			}
			match(st, q)
			return nil
		})
		res.Report, res.Findings = report, c.findings
		return err
	})
}

// ClickNative reports components receiving directives with the .native
// modifier, which Vue 3 removed. With fix, the modifiers are stripped.
func (s *Service) ClickNative(ctx context.Context, fix bool) (*Result, error) {
	return s.run(ctx, TaskClickNative, func(ctx context.Context, res *Result) error {
		var c collector
		edits := patch.NewEditSet()
		report, err := s.eachComponent(ctx, func(ctx context.Context, file *source.File, st *component.Struct) error {
			match(st, template.Query{
				Attributes: []template.AttributeMatcher{{
					Key: template.KeyFunc(func(_ string, attr *template.Attribute) bool {
						return attr.IsDirective() && attr.HasModifier("native")
					}),
				}},
				Visit: func(el *template.Element, attr *template.Attribute) {
					c.add(Finding{
						Location:  locate(file, st.Template, attr.Node.Start),
						Path:      file.Path,
						Component: el.Name(),
						Attribute: attr.Name,
					})
					if !fix {
						return
					}
					for _, a := range el.Attributes {
						if start, end, ok := a.ModifierRange("native"); ok {
							edits.Add(st.Template.Path, patch.Delete(st.Template.Abs(start), st.Template.Abs(end)))
						}
					}
				},
			})
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

// RouterLinkAttrs reports <router-link> usages passing removed props.
func (s *Service) RouterLinkAttrs(ctx context.Context) (*Result, error) {
	removed := make(map[string]bool, len(RemovedRouterLinkAttrs))
	for _, a := range RemovedRouterLinkAttrs {
		removed[a] = true
	}
	return s.run(ctx, TaskRouterLinkAttrs, func(ctx context.Context, res *Result) error {
		var c collector
		report, err := s.eachComponent(ctx, func(ctx context.Context, file *source.File, st *component.Struct) error {
			match(st, template.Query{
				Component: template.Tag("router-link"),
				Attributes: []template.AttributeMatcher{{
					Key: template.KeyFunc(func(key string, _ *template.Attribute) bool { return removed[key] }),
				}},
				Visit: func(el *template.Element, attr *template.Attribute) {
					c.add(Finding{
						Location:  locate(file, st.Template, attr.Node.Start),
						Path:      file.Path,
						Component: el.Name(),
						Attribute: attr.CamelKey(),
					})
				},
			})
			return nil
		})
		res.Report, res.Findings = report, c.findings
		return err
	})
}

// TemplateVFor reports <template v-for> elements.
func (s *Service) TemplateVFor(ctx context.Context) (*Result, error) {
	return s.run(ctx, TaskTemplateVFor, func(ctx context.Context, res *Result) error {
		var c collector
		report, err := s.eachComponent(ctx, func(ctx context.Context, file *source.File, st *component.Struct) error {
			match(st, template.Query{
				Component: template.Tag("template"),
				Attributes: []template.AttributeMatcher{{
					Key: template.KeyFunc(func(key string, attr *template.Attribute) bool {
						return attr.IsDirective() && key == "for"
					}),
				}},
				Visit: func(el *template.Element, attr *template.Attribute) {
					c.add(Finding{
						Location:  locate(file, st.Template, attr.Node.Start),
						Path:      file.Path,
						Component: el.Name(),
						Attribute: attr.Name,
						Value:     attr.Value.Text,
					})
				},
			})
			return nil
		})
		res.Report, res.Findings = report, c.findings
		return err
	})
}

// TeleportTargets reports each distinct <teleport to> value once.
func (s *Service) TeleportTargets(ctx context.Context) (*Result, error) {
	return s.run(ctx, TaskTeleportTargets, func(ctx context.Context, res *Result) error {
		var c collector
		report, err := s.eachComponent(ctx, func(ctx context.Context, file *source.File, st *component.Struct) error {
			match(st, template.Query{
				Component:  template.Tag("teleport"),
				Attributes: []template.AttributeMatcher{{Key: template.Key("to")}},
				Visit: func(el *template.Element, attr *template.Attribute) {
					c.addUnique(attr.Value.Text, Finding{
						Location:  locate(file, st.Template, attr.Node.Start),
						Path:      file.Path,
						Component: util.NormalizeComponentName(el.Tag),
						Attribute: attr.Name,
						Value:     attr.Value.Text,
					})
				},
			})
			return nil
		})
		res.Report, res.Findings = report, c.findings
		return err
	})
}
