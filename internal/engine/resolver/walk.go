package resolver

import (
	"context"
	"sync"

	"vuescope/internal/engine/component"
	"vuescope/internal/engine/template"

	"golang.org/x/sync/errgroup"
)

// Reference is one resolved edge from a component to a tag it renders.
type Reference struct {
	From   *component.Struct
	Tag    string
	Path   string
	Struct *component.Struct
}

// TemplateTags lists the distinct normalized tag names rendered by s that
// are not built-ins, in document order.
func (r *Resolver) TemplateTags(s *component.Struct) []string {
	if s == nil || s.Template == nil || s.Template.Program == nil {
		return nil
	}
	seen := make(map[string]bool)
	var tags []string
	template.Build(s.Template.Program, s.Template.Content).Walk(func(el *template.Element) bool {
		name := el.Name()
		if !seen[name] && !r.IsBuiltin(name) {
			seen[name] = true
			tags = append(tags, name)
		}
		return true
	})
	return tags
}

// Walk resolves every component reachable from root. visit sees each edge
// once; sibling references resolve concurrently, so visit must be safe for
// concurrent use. The first error from resolution or visit stops the walk.
func (r *Resolver) Walk(ctx context.Context, root *component.Struct, visit func(Reference) error) error {
	w := &walker{r: r, visit: visit, seen: make(map[edge]bool)}
	return w.walk(ctx, root, newChain(root.Path))
}

type edge struct {
	from string
	tag  string
}

type walker struct {
	r     *Resolver
	visit func(Reference) error

	mu   sync.Mutex
	seen map[edge]bool
}

func (w *walker) claim(e edge) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.seen[e] {
		return false
	}
	w.seen[e] = true
	return true
}

func (w *walker) walk(ctx context.Context, from *component.Struct, c chain) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, tag := range w.r.TemplateTags(from) {
		if !w.claim(edge{from: from.Path, tag: tag}) {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			target, err := w.r.resolve(ctx, tag, from, c)
			if err != nil || target == nil {
				return err
			}
			if err := w.visit(Reference{From: from, Tag: tag, Path: target.Path, Struct: target}); err != nil {
				return err
			}
			return w.walk(ctx, target, c.with(target.Path))
		})
	}
	return g.Wait()
}
