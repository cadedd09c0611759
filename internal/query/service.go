// Package query holds the project-wide questions and codemods run over a
// component tree.
package query

import (
	"context"
	"sync"
	"time"

	"vuescope/internal/core/app"
	"vuescope/internal/data/source"
	"vuescope/internal/engine/component"
	"vuescope/internal/engine/patch"
	"vuescope/internal/shared/observability"
)

// Service runs tasks against one analysis run.
type Service struct {
	app    *app.App
	dryRun bool
}

type Option func(*Service)

// WithDryRun makes fixing tasks render diffs into Result.Previews instead
// of writing files.
func WithDryRun() Option {
	return func(s *Service) { s.dryRun = true }
}

func NewService(a *app.App, opts ...Option) *Service {
	s := &Service{app: a}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// componentFunc sees each resolved component with the file it came from.
type componentFunc func(ctx context.Context, file *source.File, s *component.Struct) error

func (s *Service) eachComponent(ctx context.Context, fn componentFunc) (*app.BatchReport, error) {
	return s.app.ForEachFile(ctx, func(ctx context.Context, file *source.File) error {
		st, err := s.app.Components.Resolve(ctx, file, true)
		if err != nil {
			return err
		}
		return fn(ctx, file, st)
	})
}

// run times a task and wraps it in a span.
func (s *Service) run(ctx context.Context, task string, fn func(ctx context.Context, res *Result) error) (*Result, error) {
	ctx, span := observability.Tracer.Start(ctx, "query."+task)
	defer span.End()
	start := time.Now()
	defer func() {
		observability.AnalysisDuration.WithLabelValues(task).Observe(time.Since(start).Seconds())
	}()

	res := &Result{Task: task}
	if err := fn(ctx, res); err != nil {
		span.RecordError(err)
		return res, err
	}
	res.sort()
	s.app.Logger().Info("task finished", "task", task, "findings", len(res.Findings), "duration", time.Since(start))
	return res, nil
}

// collector gathers findings from concurrent visitors.
type collector struct {
	mu       sync.Mutex
	findings []Finding
	seen     map[string]bool
}

func (c *collector) add(f Finding) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.findings = append(c.findings, f)
}

// addUnique keeps only the first finding per key.
func (c *collector) addUnique(key string, f Finding) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seen == nil {
		c.seen = make(map[string]bool)
	}
	if c.seen[key] {
		return
	}
	c.seen[key] = true
	c.findings = append(c.findings, f)
}

func (s *Service) commit(ctx context.Context, edits *patch.EditSet, res *Result) {
	if edits.Len() == 0 {
		return
	}
	if s.dryRun {
		s.preview(ctx, edits, res)
		return
	}
	total := edits.Len()
	failed := edits.Commit(ctx, s.app.Patcher)
	res.Fixed = total - edits.Len()
	if len(failed) > 0 {
		res.FixFailures = failed
	}
}

// locate renders a template-relative offset as a file location.
func locate(file *source.File, part *component.Part, rel int) string {
	if part.Path != file.Path {
		return source.NewFile(part.Path, part.Content).Locate(part.Abs(rel))
	}
	return file.Locate(part.Abs(rel))
}

func (s *Service) preview(ctx context.Context, edits *patch.EditSet, res *Result) {
	res.Previews = make(map[string]string)
	for _, path := range edits.Paths() {
		out, err := s.app.Patcher.Preview(ctx, path, edits.Edits(path))
		if err != nil {
			if res.FixFailures == nil {
				res.FixFailures = make(map[string]error)
			}
			res.FixFailures[path] = err
			continue
		}
		if out != "" {
			res.Previews[path] = out
		}
	}
}
