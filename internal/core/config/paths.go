package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ResolvedPaths holds the absolute directories module resolution works with.
type ResolvedPaths struct {
	ProjectRoot   string
	SourceRoot    string
	DependencyDir string
}

func ResolvePaths(cfg *Config, cwd string) (ResolvedPaths, error) {
	if strings.TrimSpace(cwd) == "" {
		return ResolvedPaths{}, fmt.Errorf("cwd must not be empty")
	}

	projectRoot := ResolveRelative(cwd, cfg.Paths.ProjectRoot)
	info, err := os.Stat(projectRoot)
	if err != nil {
		return ResolvedPaths{}, fmt.Errorf("project root %s: %w", projectRoot, err)
	}
	if !info.IsDir() {
		return ResolvedPaths{}, fmt.Errorf("project root is not a directory: %s", projectRoot)
	}

	return ResolvedPaths{
		ProjectRoot:   projectRoot,
		SourceRoot:    ResolveRelative(projectRoot, cfg.Paths.SourceRoot),
		DependencyDir: ResolveRelative(projectRoot, cfg.Paths.DependencyDir),
	}, nil
}

// ResolveRelative anchors a possibly relative path at base.
func ResolveRelative(base, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(value) {
		return filepath.Clean(value)
	}
	return filepath.Clean(filepath.Join(base, value))
}
