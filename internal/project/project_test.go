package project

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolness/getdocs2ts/internal/config"
)

const widgetSource = `// Widget::
class Widget {
  // size:: number
  // Width in pixels.
  size() { return 1; }
}
`

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func openProject(t *testing.T, root string, opts Options) *Project {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Extract.Workers = 2
	p, err := Open(root, cfg, opts)
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })
	return p
}

func TestRun(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/widget.js", widgetSource)
	writeFile(t, root, "src/broken.ts", "// foo:: (\nlet foo = 1;\n")
	writeFile(t, root, "src/plain.js", "let x = 1;\n")

	p := openProject(t, root, Options{NoCache: true})
	assert.Nil(t, p.Cache())

	report, err := p.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Files, 3)
	assert.Equal(t, "src/broken.ts", report.Files[0].Path)
	assert.Equal(t, "typescript", report.Files[0].Language)
	assert.NotEmpty(t, report.Files[0].Error)
	assert.Empty(t, report.Files[1].Declarations)

	widget := report.Files[2]
	assert.Equal(t, "src/widget.js", widget.Path)
	require.Len(t, widget.Declarations, 1)
	assert.Equal(t, "Widget", widget.Declarations[0].Name)
	assert.Equal(t, "Width in pixels.", widget.Declarations[0].Property("size").Doc)

	assert.Equal(t, 3, report.Summary.Files)
	assert.Equal(t, 1, report.Summary.Failed)
	assert.Equal(t, 2, report.Summary.Declarations)
}

func TestRun_Cache(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "widget.js", widgetSource)

	p := openProject(t, root, Options{})
	require.NotNil(t, p.Cache())
	assert.DirExists(t, filepath.Join(root, config.ConfigDirName))

	first, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, first.Files[0].Cached)

	second, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, second.Files[0].Cached)
	assert.Equal(t, 1, second.Summary.Cached)
	require.Len(t, second.Files[0].Declarations, 1)
	assert.Equal(t, "Width in pixels.", second.Files[0].Declarations[0].Property("size").Doc)

	// Changing the content invalidates the entry.
	writeFile(t, root, "widget.js", "// Gadget::\nclass Gadget {}\n")
	third, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, third.Files[0].Cached)
	assert.Equal(t, "Gadget", third.Files[0].Declarations[0].Name)
}

func TestRun_PrunesDeletedFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.js", widgetSource)
	writeFile(t, root, "b.js", widgetSource)

	p := openProject(t, root, Options{})
	_, err := p.Run(context.Background())
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(root, "b.js")))
	_, err = p.Run(context.Background())
	require.NoError(t, err)

	entries, err := p.Cache().Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.js", entries[0].FilePath)
}

func TestOpen_FindsProjectRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, config.ConfigDirName), 0755))
	writeFile(t, root, "lib/deep/x.js", "")

	p := openProject(t, filepath.Join(root, "lib", "deep"), Options{NoCache: true})
	want, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(p.Root())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestOpen_UnknownLanguage(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Extract.Languages = []string{"cobol"}
	_, err := Open(t.TempDir(), cfg, Options{NoCache: true})
	assert.Error(t, err)
}

func TestExtractAll_Canceled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.js", widgetSource)

	p := openProject(t, root, Options{NoCache: true})
	found, err := p.Discovery().Discover()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.ExtractAll(ctx, found)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractFile_Missing(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.js", widgetSource)

	p := openProject(t, root, Options{NoCache: true})
	found, err := p.Discovery().Discover()
	require.NoError(t, err)
	require.NoError(t, os.Remove(found[0].Path))

	result := p.ExtractFile(context.Background(), found[0])
	assert.Contains(t, result.Error, "failed to read file a.js")
}
