package files

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolness/getdocs2ts/internal/parser"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func relPaths(found []File) []string {
	out := make([]string, len(found))
	for i, f := range found {
		out[i] = f.RelPath
	}
	return out
}

func TestDetectAutoExcludes_Empty(t *testing.T) {
	result := DetectAutoExcludes(t.TempDir())
	assert.Empty(t, result.Directories)
}

func TestDetectAutoExcludes_Node(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "package.json", "{}")
	writeFile(t, root, "node_modules/x/index.js", "")
	writeFile(t, root, "dist/bundle.js", "")
	writeFile(t, root, "packages/core/package.json", "{}")
	writeFile(t, root, "packages/core/build/index.js", "")

	result := DetectAutoExcludes(root)
	assert.ElementsMatch(t, []string{"node_modules", "dist", "packages/core/build"}, result.Directories)
	assert.NotEmpty(t, result.Reasons["dist"])
}

func TestDetectAutoExcludes_NoPackageJSON(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "dist/bundle.js", "")

	result := DetectAutoExcludes(root)
	assert.Empty(t, result.Directories, "dist is only build output next to package.json")
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "package.json", "{}")
	writeFile(t, root, "index.js", "")
	writeFile(t, root, "src/model.ts", "")
	writeFile(t, root, "src/view.jsx", "")
	writeFile(t, root, "src/vendor.min.js", "")
	writeFile(t, root, "src/types.d.ts", "")
	writeFile(t, root, "src/README.md", "")
	writeFile(t, root, "dist/index.js", "")
	writeFile(t, root, "node_modules/dep/index.js", "")
	writeFile(t, root, ".getdocs/cache.js", "")

	d, err := New(root, Options{
		Include:   []string{"**"},
		Exclude:   []string{"**/*.min.js", "**/*.d.ts"},
		Languages: []parser.Language{parser.JavaScript, parser.TypeScript},
	})
	require.NoError(t, err)

	found, err := d.Discover()
	require.NoError(t, err)
	assert.Equal(t, []string{"index.js", "src/model.ts", "src/view.jsx"}, relPaths(found))
	assert.Equal(t, parser.TypeScript, found[1].Language)
	assert.True(t, filepath.IsAbs(found[0].Path))
}

func TestDiscover_LanguageFilterAndInclude(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "lib/a.js", "")
	writeFile(t, root, "lib/b.ts", "")
	writeFile(t, root, "test/a_test.js", "")

	d, err := New(root, Options{
		Include:   []string{"lib/**"},
		Languages: []parser.Language{parser.JavaScript},
	})
	require.NoError(t, err)

	found, err := d.Discover()
	require.NoError(t, err)
	assert.Equal(t, []string{"lib/a.js"}, relPaths(found))
}

func TestDiscover_ExcludedDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/a.js", "")
	writeFile(t, root, "generated/b.js", "")

	d, err := New(root, Options{Exclude: []string{"generated/**"}})
	require.NoError(t, err)

	found, err := d.Discover(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"src/a.js"}, relPaths(found))
}

func TestDiscover_ExplicitFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.min.js", "")
	writeFile(t, root, "notes.txt", "")

	d, err := New(root, Options{Exclude: []string{"*.min.js"}})
	require.NoError(t, err)

	found, err := d.Discover(filepath.Join(root, "a.min.js"), filepath.Join(root, "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a.min.js"}, relPaths(found), "named files bypass globs but not languages")

	_, err = d.Discover(filepath.Join(root, "missing.js"))
	assert.Error(t, err)
}

func TestMatch(t *testing.T) {
	root := t.TempDir()
	d, err := New(root, Options{Exclude: []string{"**/*.d.ts"}})
	require.NoError(t, err)

	_, ok := d.Match(filepath.Join(root, "src", "a.ts"))
	assert.True(t, ok)
	_, ok = d.Match(filepath.Join(root, "a.d.ts"))
	assert.False(t, ok)
	_, ok = d.Match(filepath.Join(root, "node_modules", "x.js"))
	assert.False(t, ok)
	_, ok = d.Match(filepath.Join(root, "style.css"))
	assert.False(t, ok)
}

func TestNew_InvalidGlob(t *testing.T) {
	_, err := New(t.TempDir(), Options{Include: []string{"[a-"}})
	assert.Error(t, err)
}

func TestWatcher(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/a.js", "")
	writeFile(t, root, "node_modules/dep/index.js", "")

	d, err := New(root, Options{Languages: []parser.Language{parser.JavaScript}})
	require.NoError(t, err)

	w, err := NewWatcher(d, 20*time.Millisecond)
	require.NoError(t, err)
	defer w.Close()

	batches := make(chan []File, 4)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, func(b []File) { batches <- b }) }()

	writeFile(t, root, "notes.txt", "ignored")
	writeFile(t, root, "src/a.js", "let a = 1;")
	writeFile(t, root, "src/b.js", "let b = 2;")

	var got []string
	deadline := time.After(5 * time.Second)
	for len(got) < 2 {
		select {
		case b := <-batches:
			for _, f := range b {
				if !contains(got, f.RelPath) {
					got = append(got, f.RelPath)
				}
			}
		case <-deadline:
			t.Fatalf("timed out waiting for changes, got %v", got)
		}
	}
	assert.ElementsMatch(t, []string{"src/a.js", "src/b.js"}, got)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
