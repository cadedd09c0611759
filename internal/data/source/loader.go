package source

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"vuescope/internal/shared/util"

	"github.com/gobwas/glob"
)

// Loader enumerates project files matching include patterns (relative to the
// root, '/'-separated) minus excluded directory and file name patterns.
type Loader struct {
	root         string
	include      []glob.Glob
	excludeDirs  []glob.Glob
	excludeFiles []glob.Glob
	reader       Reader
}

func NewLoader(root string, include, excludeDirs, excludeFiles []string, reader Reader) (*Loader, error) {
	if reader == nil {
		reader = OSReader{}
	}
	inc, err := compileAll(include, '/')
	if err != nil {
		return nil, fmt.Errorf("invalid include pattern: %w", err)
	}
	dirs, err := compileAll(excludeDirs)
	if err != nil {
		return nil, fmt.Errorf("invalid exclude dir pattern: %w", err)
	}
	files, err := compileAll(excludeFiles)
	if err != nil {
		return nil, fmt.Errorf("invalid exclude file pattern: %w", err)
	}
	return &Loader{
		root:         root,
		include:      inc,
		excludeDirs:  dirs,
		excludeFiles: files,
		reader:       reader,
	}, nil
}

func compileAll(patterns []string, separators ...rune) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, separators...)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

// Root returns the directory enumeration starts from.
func (l *Loader) Root() string {
	return l.root
}

// Enumerate walks the root and returns matching absolute paths, sorted.
func (l *Loader) Enumerate(ctx context.Context) ([]string, error) {
	var files []string
	err := filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != l.root && l.ExcludedDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if l.Matches(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// Matches reports whether a file path is in scope for the loader.
func (l *Loader) Matches(path string) bool {
	base := filepath.Base(path)
	for _, g := range l.excludeFiles {
		if g.Match(base) {
			return false
		}
	}
	rel, err := filepath.Rel(l.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	rel = util.NormalizePatternPath(filepath.ToSlash(rel))
	for _, dir := range strings.Split(filepath.ToSlash(filepath.Dir(rel)), "/") {
		if dir != "." && dir != "" && l.excludedName(dir) {
			return false
		}
	}
	if len(l.include) == 0 {
		return true
	}
	for _, g := range l.include {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// ExcludedDir reports whether a directory is skipped by name.
func (l *Loader) ExcludedDir(path string) bool {
	return l.excludedName(filepath.Base(path))
}

func (l *Loader) excludedName(name string) bool {
	for _, g := range l.excludeDirs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Load reads one file through the loader's reader.
func (l *Loader) Load(path string) (*File, error) {
	return Load(l.reader, path)
}

// Reader exposes the reader so other stages read through the same source.
func (l *Loader) Reader() Reader {
	return l.reader
}
