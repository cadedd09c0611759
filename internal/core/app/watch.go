package app

import (
	"context"

	"vuescope/internal/core/watcher"
)

// Watch keeps the run cache current until ctx ends: changed component files
// are evicted, then onChange sees the batch.
func (a *App) Watch(ctx context.Context, onChange func(paths []string)) error {
	w, err := watcher.NewWatcher(
		a.Config.Watch.Debounce,
		a.Config.Scan.ExcludeDirs,
		a.watchable,
		func(paths []string) {
			a.Components.Invalidate(paths...)
			a.logger.Info("invalidated changed files", "count", len(paths))
			if onChange != nil {
				onChange(paths)
			}
		},
	)
	if err != nil {
		return err
	}
	w.SetLogger(a.logger)
	if err := w.Watch([]string{a.Paths.ProjectRoot}); err != nil {
		_ = w.Close()
		return err
	}

	<-ctx.Done()
	return w.Close()
}

// watchable accepts in-scope components and any script file, since external
// scripts live outside the include patterns.
func (a *App) watchable(path string) bool {
	if a.Loader.Matches(path) {
		return true
	}
	switch scriptExt(path) {
	case ".js", ".ts", ".mjs", ".jsx", ".tsx":
		return true
	}
	return false
}
