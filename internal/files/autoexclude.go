package files

import (
	"os"
	"path/filepath"
	"strings"
)

// AutoExcludeResult contains the directories to exclude and why.
type AutoExcludeResult struct {
	// Directories to exclude (slash-separated, relative to project root)
	Directories []string
	// Reasons maps each directory to why it was excluded
	Reasons map[string]string
}

// buildOutputDirs are generated next to a package.json by common bundlers.
var buildOutputDirs = []string{"dist", "build", "out"}

// DetectAutoExcludes scans the project root for dependency and build output
// directories that should never be extracted. Only file existence checks are
// used. Nested packages (monorepo workspaces) are detected at any depth.
func DetectAutoExcludes(projectRoot string) *AutoExcludeResult {
	result := &AutoExcludeResult{
		Directories: []string{},
		Reasons:     make(map[string]string),
	}

	add := func(dir, reason string) {
		if !contains(result.Directories, dir) {
			result.Directories = append(result.Directories, dir)
			result.Reasons[dir] = reason
		}
	}

	_ = filepath.WalkDir(projectRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // Skip directories we can't read
		}
		if path == projectRoot {
			return nil
		}

		relPath, err := filepath.Rel(projectRoot, path)
		if err != nil {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if isExcludedBy(relPath, result.Directories) {
				return filepath.SkipDir
			}
			// Don't descend into dependency directories even if not yet excluded
			switch d.Name() {
			case "node_modules", ".git":
				return filepath.SkipDir
			}
			return nil
		}

		if d.Name() != "package.json" {
			return nil
		}

		dir := filepath.ToSlash(filepath.Dir(relPath))
		nodeModules := join(dir, "node_modules")
		if dirExists(filepath.Join(projectRoot, nodeModules)) {
			add(nodeModules, "Node.js dependencies (package.json detected)")
		}
		for _, name := range buildOutputDirs {
			out := join(dir, name)
			if dirExists(filepath.Join(projectRoot, out)) {
				add(out, "build output (package.json detected)")
			}
		}
		return nil
	})

	return result
}

// isExcludedBy reports whether relPath is one of dirs or lies inside one.
func isExcludedBy(relPath string, dirs []string) bool {
	for _, excluded := range dirs {
		if relPath == excluded || strings.HasPrefix(relPath, excluded+"/") {
			return true
		}
	}
	return false
}

func join(dir, name string) string {
	if dir == "." {
		return name
	}
	return dir + "/" + name
}

// dirExists checks if a directory exists.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// contains checks if a string is in a slice.
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
