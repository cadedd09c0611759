package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"vuescope/internal/core/config"
	"vuescope/internal/core/errors"
	"vuescope/internal/data/source"
	"vuescope/internal/engine/component"
	"vuescope/internal/engine/parser"
	"vuescope/internal/engine/patch"
	"vuescope/internal/engine/resolver"
	"vuescope/internal/shared/observability"
	"vuescope/internal/shared/util"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// App is one analysis run: a loader, a fresh component cache and the
// resolvers and patcher that share it.
type App struct {
	Config     *config.Config
	Paths      config.ResolvedPaths
	RunID      string
	Loader     *source.Loader
	Components *component.Resolver
	References *resolver.Resolver
	Patcher    *patch.Patcher

	limiter *util.Limiter
	logger  *slog.Logger
}

// New wires a run for cfg with relative paths taken from cwd.
func New(cfg *config.Config, cwd string, logger *slog.Logger) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	paths, err := config.ResolvePaths(cfg, cwd)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "resolve paths")
	}

	runID := uuid.NewString()
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("run_id", runID)

	loader, err := source.NewLoader(paths.ProjectRoot, cfg.Scan.Include, cfg.Scan.ExcludeDirs, cfg.Scan.ExcludeFiles, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "build loader")
	}
	grammars, err := parser.NewGrammarLoader()
	if err != nil {
		return nil, err
	}

	components := component.NewResolver(parser.NewParser(grammars),
		component.WithReader(loader.Reader()),
		component.WithStrictTemplates(cfg.Parsing.StrictTemplatesEnabled()),
		component.WithLogger(logger),
	)
	references := resolver.New(components, resolver.Options{
		ProjectRoot:      paths.ProjectRoot,
		SourceRoot:       paths.SourceRoot,
		DependencyDir:    paths.DependencyDir,
		AliasPrefix:      cfg.Resolution.AliasPrefix,
		DefaultExtension: cfg.Resolution.DefaultExtension,
		AsyncFactories:   cfg.Resolution.AsyncFactories,
		GlobalComponents: cfg.Resolution.GlobalComponents,
	}, logger)

	return &App{
		Config:     cfg,
		Paths:      paths,
		RunID:      runID,
		Loader:     loader,
		Components: components,
		References: references,
		Patcher:    patch.NewPatcher(patch.WithInvalidation(components.Invalidate), patch.WithLogger(logger)),
		limiter:    util.NewLimiter(cfg.Scan.RateLimit, max(1, cfg.Scan.Concurrency)),
		logger:     logger,
	}, nil
}

// Logger returns the run logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// BatchReport summarises one pass over the project files. One file failing
// never stops the others.
type BatchReport struct {
	RunID     string
	Processed int
	Failed    map[string]error
	Duration  time.Duration
}

// FailedPaths lists the failed paths, sorted.
func (r *BatchReport) FailedPaths() []string {
	return util.SortedStringKeys(r.Failed)
}

// Err summarises the failures, or returns nil.
func (r *BatchReport) Err() error {
	if r == nil || len(r.Failed) == 0 {
		return nil
	}
	paths := r.FailedPaths()
	lines := make([]string, 0, len(paths))
	for _, p := range paths {
		lines = append(lines, fmt.Sprintf("%s: %v", p, r.Failed[p]))
	}
	return fmt.Errorf("%d file(s) failed:\n%s", len(paths), strings.Join(lines, "\n"))
}

// FileFunc processes one loaded file.
type FileFunc func(ctx context.Context, file *source.File) error

// ForEachFile runs fn over every in-scope file, scan.concurrency at a time
// and throttled by scan.rate_limit. Errors are collected per path in the
// report; the returned error is only for enumeration or cancellation.
func (a *App) ForEachFile(ctx context.Context, fn FileFunc) (*BatchReport, error) {
	start := time.Now()
	files, err := a.Loader.Enumerate(ctx)
	if err != nil {
		return nil, errors.IO(err, a.Loader.Root(), "enumerate")
	}
	sort.Strings(files)

	report := &BatchReport{RunID: a.RunID, Failed: make(map[string]error)}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, a.Config.Scan.Concurrency))
	for _, path := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := a.limiter.Wait(gctx, 1); err != nil {
				return err
			}
			err := a.processFile(gctx, path, fn)

			mu.Lock()
			defer mu.Unlock()
			report.Processed++
			if err != nil {
				report.Failed[path] = err
				observability.FilesProcessed.WithLabelValues("failed").Inc()
				a.logger.Warn("file failed", "path", path, "error", err)
			} else {
				observability.FilesProcessed.WithLabelValues("ok").Inc()
			}
			return nil
		})
	}
	err = g.Wait()
	report.Duration = time.Since(start)
	if err != nil {
		return report, err
	}
	return report, ctx.Err()
}

func (a *App) processFile(ctx context.Context, path string, fn FileFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.AddContext(errors.New(errors.CodeInternal, fmt.Sprintf("panic: %v", r)), errors.CtxPath, path)
		}
	}()
	file, err := a.Loader.Load(path)
	if err != nil {
		return err
	}
	return fn(ctx, file)
}

// ComponentFunc processes one resolved component.
type ComponentFunc func(ctx context.Context, s *component.Struct) error

// ForEachComponent resolves every in-scope file through the run cache and
// runs fn on the result.
func (a *App) ForEachComponent(ctx context.Context, fn ComponentFunc) (*BatchReport, error) {
	return a.ForEachFile(ctx, func(ctx context.Context, file *source.File) error {
		s, err := a.Components.Resolve(ctx, file, true)
		if err != nil {
			return err
		}
		return fn(ctx, s)
	})
}

// ProjectRelative renders path relative to the project root when possible.
func (a *App) ProjectRelative(path string) string {
	rel, ok := relativeTo(a.Paths.ProjectRoot, path)
	if !ok {
		return path
	}
	return rel
}

// Cwd returns the working directory, or "." when it cannot be read.
func Cwd() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}
