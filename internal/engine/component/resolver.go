package component

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"vuescope/internal/core/errors"
	"vuescope/internal/data/source"
	"vuescope/internal/engine/parser"
	"vuescope/internal/engine/sfc"
	"vuescope/internal/shared/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"
)

// Resolver splits and parses component files. It owns the resolution cache
// for one analysis run; create one per run.
type Resolver struct {
	parser          *parser.Parser
	reader          source.Reader
	strictTemplates bool
	logger          *slog.Logger

	mu    sync.RWMutex
	cache map[string]*Struct
	group singleflight.Group
}

type Option func(*Resolver)

// WithReader sets the reader used for component and external script files.
func WithReader(r source.Reader) Option {
	return func(res *Resolver) {
		if r != nil {
			res.reader = r
		}
	}
}

// WithStrictTemplates controls whether template and style grammar errors
// fail resolution. Script errors always do.
func WithStrictTemplates(strict bool) Option {
	return func(res *Resolver) { res.strictTemplates = strict }
}

func WithLogger(logger *slog.Logger) Option {
	return func(res *Resolver) {
		if logger != nil {
			res.logger = logger
		}
	}
}

func NewResolver(p *parser.Parser, opts ...Option) *Resolver {
	r := &Resolver{
		parser:          p,
		reader:          source.OSReader{},
		strictTemplates: true,
		logger:          slog.Default(),
		cache:           make(map[string]*Struct),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reader returns the reader the resolver loads files through.
func (r *Resolver) Reader() source.Reader {
	return r.reader
}

// Resolve returns the structure of file. With useCache, repeated calls for
// the same path return the same *Struct, and concurrent first calls share
// one build. Without it the cache is neither read nor written.
func (r *Resolver) Resolve(ctx context.Context, file *source.File, useCache bool) (*Struct, error) {
	if !useCache {
		return r.build(ctx, file)
	}
	if s, ok := r.Cached(file.Path); ok {
		observability.ComponentCacheHits.Inc()
		return s, nil
	}

	v, err, _ := r.group.Do(file.Path, func() (interface{}, error) {
		if s, ok := r.Cached(file.Path); ok {
			return s, nil
		}
		observability.ComponentCacheMisses.Inc()
		s, err := r.build(ctx, file)
		if err != nil {
			return nil, err
		}
		return r.store(s), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Struct), nil
}

// ResolvePath loads path and resolves it. A cached entry is returned without
// touching the file system.
func (r *Resolver) ResolvePath(ctx context.Context, path string, useCache bool) (*Struct, error) {
	if useCache {
		if s, ok := r.Cached(path); ok {
			observability.ComponentCacheHits.Inc()
			return s, nil
		}
	}
	file, err := source.Load(r.reader, path)
	if err != nil {
		return nil, err
	}
	return r.Resolve(ctx, file, useCache)
}

// Cached returns the cached structure for path, if any.
func (r *Resolver) Cached(path string) (*Struct, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.cache[path]
	return s, ok
}

// Len returns the number of cached structures.
func (r *Resolver) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}

// Invalidate evicts the entries for paths, including components whose
// external script is one of them.
func (r *Resolver) Invalidate(paths ...string) {
	if len(paths) == 0 {
		return
	}
	drop := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		drop[p] = struct{}{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for key, s := range r.cache {
		_, hit := drop[key]
		if !hit && s.Script != nil && s.Script.External {
			_, hit = drop[s.Script.Path]
		}
		if hit {
			delete(r.cache, key)
			observability.ComponentCacheEvictions.Inc()
			r.logger.Debug("evicted component", "path", key)
		}
	}
}

// store keeps the first structure cached for a path.
func (r *Resolver) store(s *Struct) *Struct {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.cache[s.Path]; ok {
		return existing
	}
	r.cache[s.Path] = s
	return s
}

func (r *Resolver) build(ctx context.Context, file *source.File) (*Struct, error) {
	_, span := observability.Tracer.Start(ctx, "component.Resolve")
	defer span.End()
	span.SetAttributes(attribute.String("path", file.Path))

	s, err := r.buildStruct(file)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return s, nil
}

func (r *Resolver) buildStruct(file *source.File) (*Struct, error) {
	regions, err := sfc.Split(file.Path, file.Content, r.reader)
	if err != nil {
		return nil, err
	}

	s := &Struct{Path: file.Path}
	if regions.Template != nil {
		s.Template, err = r.parsePart(file, regions.Template, RegionTemplate, parser.LangHTML, r.strictTemplates)
		if err != nil {
			return nil, err
		}
	}
	if regions.Script != nil {
		s.Script, err = r.parsePart(file, regions.Script, RegionScript, parser.ScriptLanguage(regions.Script.Lang), true)
		if err != nil {
			return nil, err
		}
		s.Script.Setup = regions.Script.Setup()
		s.Script.External = regions.Script.External
	}
	if regions.Style != nil {
		s.Style, err = r.parsePart(file, regions.Style, RegionStyle, parser.StyleLanguage(regions.Style.Lang), r.strictTemplates)
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

// parsePart parses one region. An empty langID means the region's language
// has no grammar; the part is kept with a nil Program.
func (r *Resolver) parsePart(file *source.File, region *sfc.Region, name, langID string, strict bool) (*Part, error) {
	part := &Part{
		Path:    region.Path,
		Content: region.Content,
		Offset:  region.Offset,
		Lang:    region.Lang,
	}
	if langID == "" || !r.parser.Supports(langID) {
		r.logger.Debug("region left unparsed", "path", region.Path, "region", name, "lang", region.Lang)
		return part, nil
	}

	input := region.Content
	if name == RegionTemplate {
		input = maskInterpolations(input)
	}
	tree, err := r.parser.Parse(langID, input)
	if err != nil {
		return nil, errors.AddContext(errors.AddContext(err, errors.CtxPath, region.Path), errors.CtxRegion, name)
	}
	part.Program = tree

	if tree.HasError() {
		line, column := errorPosition(file, region, tree.FirstError)
		perr := errors.Parse(region.Path, name, line, column)
		if strict {
			return nil, perr
		}
		r.logger.Warn("tolerating malformed region", "path", region.Path, "region", name, "line", line, "column", column)
	}
	return part, nil
}

// maskInterpolations blanks every '<' inside a closed {{ }} interpolation.
// The html grammar reads such a '<' as the start of a tag, while in a
// template it is a JavaScript comparison. Byte offsets are unchanged, so
// nodes still index into the original content.
func maskInterpolations(content string) string {
	if !strings.Contains(content, "{{") {
		return content
	}
	var masked []byte
	for i := 0; ; {
		open := strings.Index(content[i:], "{{")
		if open < 0 {
			break
		}
		open += i + 2
		end := strings.Index(content[open:], "}}")
		if end < 0 {
			break
		}
		end += open
		for j := open; j < end; j++ {
			if content[j] != '<' {
				continue
			}
			if masked == nil {
				masked = []byte(content)
			}
			masked[j] = ' '
		}
		i = end + 2
	}
	if masked == nil {
		return content
	}
	return string(masked)
}

// errorPosition returns the one-based line and column of n in the file the
// region was read from.
func errorPosition(file *source.File, region *sfc.Region, n *parser.Node) (int, int) {
	owner := file
	if region.Path != file.Path {
		owner = source.NewFile(region.Path, region.Content)
	}
	row, col := owner.Position(region.Offset + n.Start)
	return row + 1, col + 1
}
