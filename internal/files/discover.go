// Package files finds the JavaScript and TypeScript sources getdocs should
// extract: include/exclude globs, language filtering and automatic exclusion
// of dependency and build output directories.
package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/toolness/getdocs2ts/internal/parser"
)

// alwaysSkipped directories are never walked.
var alwaysSkipped = map[string]bool{
	".git":         true,
	".getdocs":     true,
	"node_modules": true,
}

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
	// root matches paths without a directory when pattern starts with "**/".
	root glob.Glob
}

// File is a discovered source file.
type File struct {
	// Path is the absolute path.
	Path string
	// RelPath is slash-separated and relative to the project root.
	RelPath  string
	Language parser.Language
}

// Options configures discovery.
type Options struct {
	Include   []string
	Exclude   []string
	Languages []parser.Language
}

// Discovery matches files under a project root.
type Discovery struct {
	root      string
	include   []compiledPattern
	exclude   []compiledPattern
	languages map[parser.Language]bool
	auto      *AutoExcludeResult
}

// New compiles the options for the project rooted at root.
func New(root string, opts Options) (*Discovery, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}

	d := &Discovery{
		root:      abs,
		languages: make(map[parser.Language]bool),
		auto:      DetectAutoExcludes(abs),
	}
	if d.include, err = compileAll(opts.Include); err != nil {
		return nil, err
	}
	if d.exclude, err = compileAll(opts.Exclude); err != nil {
		return nil, err
	}
	for _, lang := range opts.Languages {
		d.languages[lang] = true
	}
	return d, nil
}

func compileAll(patterns []string) ([]compiledPattern, error) {
	var out []compiledPattern
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid glob %q: %w", pattern, err)
		}
		cp := compiledPattern{pattern: pattern, glob: g}
		if rest := strings.TrimPrefix(pattern, "**/"); rest != pattern {
			if cp.root, err = glob.Compile(rest, '/'); err != nil {
				return nil, fmt.Errorf("invalid glob %q: %w", pattern, err)
			}
		}
		out = append(out, cp)
	}
	return out, nil
}

// Root returns the absolute project root.
func (d *Discovery) Root() string {
	return d.root
}

// AutoExcluded returns the automatically excluded directories.
func (d *Discovery) AutoExcluded() *AutoExcludeResult {
	return d.auto
}

// Discover returns the source files under paths, sorted by relative path.
// Directories are walked and filtered by globs; files named explicitly are
// kept whenever their language is enabled.
func (d *Discovery) Discover(paths ...string) ([]File, error) {
	if len(paths) == 0 {
		paths = []string{d.root}
	}

	seen := make(map[string]bool)
	var found []File
	add := func(f File) {
		if !seen[f.Path] {
			seen[f.Path] = true
			found = append(found, f)
		}
	}

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", p, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			if f, ok := d.file(abs); ok {
				add(f)
			}
			continue
		}

		err = filepath.WalkDir(abs, func(path string, entry os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if entry.IsDir() {
				if path != abs && d.skipDir(path) {
					return filepath.SkipDir
				}
				return nil
			}
			if f, ok := d.Match(path); ok {
				add(f)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", p, err)
		}
	}

	sort.Slice(found, func(i, j int) bool { return found[i].RelPath < found[j].RelPath })
	return found, nil
}

// Match reports whether the file at path would be discovered by a walk.
func (d *Discovery) Match(path string) (File, bool) {
	f, ok := d.file(path)
	if !ok {
		return File{}, false
	}
	if isExcludedBy(f.RelPath, d.auto.Directories) || hasSkippedDir(f.RelPath) {
		return File{}, false
	}
	if len(d.include) > 0 && !matchesAny(f.RelPath, d.include) {
		return File{}, false
	}
	if matchesAny(f.RelPath, d.exclude) {
		return File{}, false
	}
	return f, true
}

// file resolves path to a File when its language is enabled.
func (d *Discovery) file(path string) (File, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return File{}, false
	}
	lang := parser.LanguageFromExtension(filepath.Ext(abs))
	if lang == "" || (len(d.languages) > 0 && !d.languages[lang]) {
		return File{}, false
	}
	return File{Path: abs, RelPath: d.rel(abs), Language: lang}, true
}

func (d *Discovery) skipDir(path string) bool {
	if alwaysSkipped[filepath.Base(path)] {
		return true
	}
	rel := d.rel(path)
	if isExcludedBy(rel, d.auto.Directories) {
		return true
	}
	// "dir/**" excludes the directory itself
	return matchesAny(rel+"/**", d.exclude)
}

// rel returns path relative to the root, slash-separated. Paths outside the
// root keep their absolute form.
func (d *Discovery) rel(path string) string {
	rel, err := filepath.Rel(d.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func hasSkippedDir(relPath string) bool {
	parts := strings.Split(relPath, "/")
	for _, part := range parts[:len(parts)-1] {
		if alwaysSkipped[part] {
			return true
		}
	}
	return false
}

// matchesAny checks if a path matches any of the given patterns.
func matchesAny(path string, patterns []compiledPattern) bool {
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
		// "**/*.js" also matches "a.js" at the root.
		if cp.root != nil && !strings.Contains(path, "/") && cp.root.Match(path) {
			return true
		}
	}
	return false
}
