package app

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"vuescope/internal/core/config"
	"vuescope/internal/core/errors"
	"vuescope/internal/data/source"
	"vuescope/internal/engine/component"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, files map[string]string) *App {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	cfg := config.DefaultConfig()
	cfg.Paths.ProjectRoot = root
	cfg.Scan.Concurrency = 4

	a, err := New(cfg, root, nil)
	require.NoError(t, err)
	return a
}

func TestNew_FreshCachePerRun(t *testing.T) {
	files := map[string]string{"src/App.vue": "<template><div/></template>"}
	a := newTestApp(t, files)
	b, err := New(a.Config, a.Paths.ProjectRoot, nil)
	require.NoError(t, err)

	assert.NotSame(t, a.Components, b.Components)
	assert.NotEqual(t, a.RunID, b.RunID)

	s, err := a.Components.ResolvePath(context.Background(), filepath.Join(a.Paths.ProjectRoot, "src/App.vue"), true)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, 1, a.Components.Len())
	assert.Equal(t, 0, b.Components.Len())
}

func TestNew_MissingProjectRoot(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Paths.ProjectRoot = filepath.Join(t.TempDir(), "missing")

	_, err := New(cfg, ".", nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))
}

func TestForEachFile_CollectsFailures(t *testing.T) {
	a := newTestApp(t, map[string]string{
		"src/A.vue":            "<template><div/></template>",
		"src/B.vue":            "<template><div/></template>",
		"src/nested/C.vue":     "<template><div/></template>",
		"src/nested/Bad.vue":   "<template><div/></template>",
		"node_modules/x/X.vue": "<template><div/></template>",
		"src/readme.md":        "",
	})

	var seen atomic.Int32
	report, err := a.ForEachFile(context.Background(), func(ctx context.Context, file *source.File) error {
		seen.Add(1)
		if filepath.Base(file.Path) == "Bad.vue" {
			return errors.Parse(file.Path, "template", 1, 1)
		}
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, int32(4), seen.Load())
	assert.Equal(t, 4, report.Processed)
	assert.Equal(t, a.RunID, report.RunID)
	require.Len(t, report.Failed, 1)
	bad := filepath.Join(a.Paths.ProjectRoot, "src/nested/Bad.vue")
	assert.True(t, errors.IsCode(report.Failed[bad], errors.CodeParse))
	assert.Equal(t, []string{bad}, report.FailedPaths())
	assert.Error(t, report.Err())
	assert.Equal(t, "src/nested/Bad.vue", a.ProjectRelative(bad))
}

func TestForEachFile_RecoversPanics(t *testing.T) {
	a := newTestApp(t, map[string]string{"src/A.vue": "<template/>"})

	report, err := a.ForEachFile(context.Background(), func(context.Context, *source.File) error {
		panic("boom")
	})
	require.NoError(t, err)
	require.Len(t, report.Failed, 1)
	for _, ferr := range report.Failed {
		assert.True(t, errors.IsCode(ferr, errors.CodeInternal))
	}
}

func TestForEachComponent_UsesRunCache(t *testing.T) {
	a := newTestApp(t, map[string]string{
		"src/A.vue": "<template><div/></template><script>export default {}</script>",
		"src/B.vue": "<template><div/></template><script>export default {</script>",
	})

	a.Config.Scan.Concurrency = 1

	first := make(map[string]*component.Struct)
	report, err := a.ForEachComponent(context.Background(), func(ctx context.Context, s *component.Struct) error {
		first[s.Path] = s
		return nil
	})
	require.NoError(t, err)
	require.Len(t, report.Failed, 1)
	assert.Len(t, first, 1)

	_, err = a.ForEachComponent(context.Background(), func(ctx context.Context, s *component.Struct) error {
		assert.Same(t, first[s.Path], s)
		return nil
	})
	require.NoError(t, err)
}

func TestForEachFile_Cancelled(t *testing.T) {
	a := newTestApp(t, map[string]string{"src/A.vue": "<template/>"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.ForEachFile(ctx, func(context.Context, *source.File) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWatch_InvalidatesChangedComponents(t *testing.T) {
	a := newTestApp(t, map[string]string{"src/A.vue": "<template><div/></template>"})
	a.Config.Watch.Debounce = 50 * time.Millisecond
	path := filepath.Join(a.Paths.ProjectRoot, "src/A.vue")

	_, err := a.Components.ResolvePath(context.Background(), path, true)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changed := make(chan []string, 4)
	done := make(chan error, 1)
	go func() { done <- a.Watch(ctx, func(paths []string) { changed <- paths }) }()

	// Give the watcher time to register directories.
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("<template><span/></template>"), 0o644))

	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for change batch")
	}
	_, cached := a.Components.Cached(path)
	assert.False(t, cached)

	cancel()
	require.NoError(t, <-done)
}
