package patch

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"vuescope/internal/core/errors"
	"vuescope/internal/shared/observability"
	"vuescope/internal/shared/util"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Patcher writes edits to files. Writes to one path are serialized; each
// write re-reads the file so it always starts from current content.
type Patcher struct {
	logger     *slog.Logger
	invalidate func(paths ...string)

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

type Option func(*Patcher)

// WithInvalidation registers a hook called with the path after every
// successful write, typically the run cache's Invalidate.
func WithInvalidation(fn func(paths ...string)) Option {
	return func(p *Patcher) { p.invalidate = fn }
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Patcher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func NewPatcher(opts ...Option) *Patcher {
	p := &Patcher{
		logger: slog.Default(),
		locks:  make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Patcher) lock(path string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.locks[path]
	if !ok {
		l = &sync.Mutex{}
		p.locks[path] = l
	}
	return l
}

// ReplaceContent replaces [start, end) of the file at path with text.
func (p *Patcher) ReplaceContent(ctx context.Context, path string, start, end int, text string) error {
	return p.Apply(ctx, path, []Edit{{Start: start, End: end, Text: text}})
}

// Apply validates edits against the current content of path and writes
// them in a single pass. Overlapping or out-of-range edits fail with
// CONFLICT and nothing is written.
func (p *Patcher) Apply(ctx context.Context, path string, edits []Edit) error {
	if len(edits) == 0 {
		return nil
	}
	_, span := observability.Tracer.Start(ctx, "patch.Apply")
	defer span.End()
	span.SetAttributes(attribute.String("path", path), attribute.Int("edits", len(edits)))

	l := p.lock(path)
	l.Lock()
	defer l.Unlock()

	err := p.apply(path, edits)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errors.IsCode(err, errors.CodeConflict) {
			observability.PatchConflicts.Inc()
		}
		return err
	}
	observability.PatchesApplied.Add(float64(len(edits)))
	p.logger.Debug("patched file", "path", path, "edits", describe(edits), "delta", sizeDelta(edits))

	if p.invalidate != nil {
		p.invalidate(path)
	}
	return nil
}

func (p *Patcher) apply(path string, edits []Edit) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.IO(err, path, "read")
	}
	updated, err := Splice(path, string(data), edits)
	if err != nil {
		return err
	}
	if err := util.WriteFileAtomic(path, []byte(updated), 0o644); err != nil {
		return errors.IO(err, path, "write")
	}
	return nil
}
