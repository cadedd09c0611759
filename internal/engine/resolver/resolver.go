// Package resolver follows component tags to the files that define them.
package resolver

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"vuescope/internal/core/errors"
	"vuescope/internal/engine/component"
	"vuescope/internal/engine/script"
	"vuescope/internal/shared/observability"
	"vuescope/internal/shared/util"

	"go.opentelemetry.io/otel/attribute"
)

// Builtins are tags that never resolve to a project file.
var Builtins = []string{
	"router-link",
	"router-view",
	"slot",
	"template",
	"keep-alive",
	"teleport",
	"component",
	"transition",
	"transition-group",
	"suspense",
}

// Options locate modules on disk.
type Options struct {
	ProjectRoot string
	// SourceRoot replaces the alias prefix.
	SourceRoot string
	// DependencyDir holds bare specifiers; a relative value is taken from
	// ProjectRoot.
	DependencyDir    string
	AliasPrefix      string
	DefaultExtension string
	AsyncFactories   []string
	// GlobalComponents are extra names treated like Builtins.
	GlobalComponents []string
}

// Resolver resolves tag names against a component's imports. It re-enters
// the component resolver, so both share one run cache.
type Resolver struct {
	components *component.Resolver
	opts       Options
	builtins   map[string]struct{}
	logger     *slog.Logger
}

func New(components *component.Resolver, opts Options, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.DependencyDir == "" {
		opts.DependencyDir = "node_modules"
	}
	if !filepath.IsAbs(opts.DependencyDir) {
		opts.DependencyDir = filepath.Join(opts.ProjectRoot, opts.DependencyDir)
	}
	if opts.AliasPrefix == "" {
		opts.AliasPrefix = "@/"
	}
	if opts.DefaultExtension == "" {
		opts.DefaultExtension = ".vue"
	}
	builtins := make(map[string]struct{}, len(Builtins)+len(opts.GlobalComponents))
	for _, name := range append(append([]string{}, Builtins...), opts.GlobalComponents...) {
		builtins[util.NormalizeComponentName(name)] = struct{}{}
	}
	return &Resolver{
		components: components,
		opts:       opts,
		builtins:   builtins,
		logger:     logger,
	}
}

// Components returns the component resolver this resolver re-enters.
func (r *Resolver) Components() *component.Resolver {
	return r.components
}

// IsBuiltin reports whether name is a built-in or configured global tag.
func (r *Resolver) IsBuiltin(name string) bool {
	_, ok := r.builtins[util.NormalizeComponentName(name)]
	return ok
}

// ResolveModulePath maps an import specifier to a file path. Bare
// specifiers live under the dependency directory, aliased ones under the
// source root, and the rest are relative to fromFile.
func (r *Resolver) ResolveModulePath(specifier, fromFile string) string {
	var resolved string
	switch {
	case strings.HasPrefix(specifier, r.opts.AliasPrefix):
		resolved = filepath.Join(r.opts.SourceRoot, strings.TrimPrefix(specifier, r.opts.AliasPrefix))
	case strings.HasPrefix(specifier, "."), filepath.IsAbs(specifier):
		if filepath.IsAbs(specifier) {
			resolved = filepath.Clean(specifier)
		} else {
			resolved = filepath.Join(filepath.Dir(fromFile), specifier)
		}
	default:
		resolved = filepath.Join(r.opts.DependencyDir, specifier)
	}
	if filepath.Ext(resolved) == "" {
		resolved += r.opts.DefaultExtension
	}
	return resolved
}

// ResolveComponentFromContext finds the structure of the component that tag
// name refers to inside from. Every kind of miss returns nil, nil. A
// referenced file that exists but cannot be read or parsed is an error.
func (r *Resolver) ResolveComponentFromContext(ctx context.Context, name string, from *component.Struct) (*component.Struct, error) {
	if from == nil {
		return nil, nil
	}
	return r.resolve(ctx, name, from, newChain(from.Path))
}

func (r *Resolver) resolve(ctx context.Context, name string, from *component.Struct, chain chain) (*component.Struct, error) {
	path, reason := r.locate(name, from)
	if path == "" {
		if reason != "" {
			r.miss(reason, name, from.Path)
		}
		return nil, nil
	}
	if chain.has(path) {
		r.logger.Debug("component reference cycle", "tag", name, "from", from.Path, "path", path)
		r.miss("cycle", name, from.Path)
		return nil, nil
	}

	ctx, span := observability.Tracer.Start(ctx, "resolver.Resolve")
	defer span.End()
	span.SetAttributes(attribute.String("tag", name), attribute.String("path", path))

	s, err := r.components.ResolvePath(ctx, path, true)
	if err != nil {
		if errors.IsNotExist(err) && errors.PathOf(err) == path {
			r.miss("missing_file", name, from.Path)
			return nil, nil
		}
		span.RecordError(err)
		return nil, errors.AddContext(err, "referenced_from", from.Path)
	}
	return s, nil
}

// locate finds the file a tag refers to. An empty path with an empty reason
// is a built-in.
func (r *Resolver) locate(name string, from *component.Struct) (string, string) {
	if r.IsBuiltin(name) {
		return "", ""
	}
	if from.Script == nil || from.Script.Program == nil {
		return "", "no_script"
	}
	def := script.DefaultExport(from.Script)
	if def == nil {
		return "", "no_definition"
	}

	want := util.NormalizeComponentName(name)
	var entry *script.Property
	comps := def.Components()
	for i := range comps {
		if util.NormalizeComponentName(comps[i].Key) == want {
			entry = &comps[i]
			break
		}
	}
	if entry == nil || entry.Value == nil {
		return "", "not_registered"
	}

	src := from.Script.Content
	var specifier string
	switch entry.Value.Kind {
	case "identifier", "shorthand_property_identifier":
		binding, ok := script.Lookup(script.Bindings(from.Script, r.opts.AsyncFactories), entry.Value.Text(src))
		if !ok {
			return "", "unbound"
		}
		specifier = binding.Specifier
	default:
		spec, ok := script.ImportSpecifier(entry.Value, src, r.opts.AsyncFactories)
		if !ok {
			return "", "unsupported_value"
		}
		specifier = spec
	}
	return r.ResolveModulePath(specifier, from.Script.Path), ""
}

func (r *Resolver) miss(reason, name, from string) {
	observability.ResolutionMisses.WithLabelValues(reason).Inc()
	r.logger.Debug("component unresolved", "tag", name, "from", from, "reason", reason)
}

// chain is the set of paths on the current resolution chain.
type chain map[string]struct{}

func newChain(paths ...string) chain {
	c := make(chain, len(paths))
	for _, p := range paths {
		c[p] = struct{}{}
	}
	return c
}

func (c chain) has(path string) bool {
	_, ok := c[path]
	return ok
}

func (c chain) with(path string) chain {
	next := make(chain, len(c)+1)
	for p := range c {
		next[p] = struct{}{}
	}
	next[path] = struct{}{}
	return next
}
