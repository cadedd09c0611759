package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"vuescope/internal/core/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFile_Locate(t *testing.T) {
	f := NewFile("src/App.vue", "<template>\n  <div/>\n</template>\n")

	assert.Equal(t, "src/App.vue:1:1", f.Locate(0))
	assert.Equal(t, "src/App.vue:2:3", f.Locate(13))
	assert.Equal(t, "src/App.vue:3:1", f.Locate(20))
	assert.Equal(t, "src/App.vue:2:5", f.Loc(1, 4))
}

func TestFile_PositionClampsOutOfRange(t *testing.T) {
	f := NewFile("a.vue", "ab\ncd")

	row, col := f.Position(-4)
	assert.Equal(t, 0, row)
	assert.Equal(t, 0, col)

	row, col = f.Position(100)
	assert.Equal(t, 1, row)
	assert.Equal(t, 2, col)
}

func TestLoad_MissingFileIsIOFailure(t *testing.T) {
	_, err := Load(OSReader{}, filepath.Join(t.TempDir(), "nope.vue"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeIO))
	assert.Contains(t, errors.PathOf(err), "nope.vue")
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

func TestLoader_Enumerate(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/App.vue":                     "<template/>",
		"src/components/Button.vue":       "<template/>",
		"src/components/deep/Icon.vue":    "<template/>",
		"src/components/Button.spec.vue":  "<template/>",
		"src/main.js":                     "",
		"node_modules/lib/src/Vendor.vue": "<template/>",
		"src/node_modules/Nested.vue":     "<template/>",
		"docs/Readme.vue":                 "<template/>",
	})

	loader, err := NewLoader(root, []string{"src/**.vue"}, []string{"node_modules"}, []string{"*.spec.vue"}, nil)
	require.NoError(t, err)

	files, err := loader.Enumerate(context.Background())
	require.NoError(t, err)

	expected := []string{
		filepath.Join(root, "src/App.vue"),
		filepath.Join(root, "src/components/Button.vue"),
		filepath.Join(root, "src/components/deep/Icon.vue"),
	}
	assert.Equal(t, expected, files)
}

func TestLoader_RejectsInvalidPattern(t *testing.T) {
	_, err := NewLoader(t.TempDir(), []string{"src/[*.vue"}, nil, nil, nil)
	assert.Error(t, err)
}

func TestLoader_LoadReadsContent(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"src/App.vue": "<template><div/></template>"})

	loader, err := NewLoader(root, nil, nil, nil, nil)
	require.NoError(t, err)

	f, err := loader.Load(filepath.Join(root, "src/App.vue"))
	require.NoError(t, err)
	assert.Equal(t, "<template><div/></template>", f.Content)
}
