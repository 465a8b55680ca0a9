// Package project runs extraction over the source files of a getdocs
// project: discovery, the extraction cache and a bounded worker pool.
package project

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/toolness/getdocs2ts/internal/cache"
	"github.com/toolness/getdocs2ts/internal/config"
	"github.com/toolness/getdocs2ts/internal/extract"
	"github.com/toolness/getdocs2ts/internal/files"
	"github.com/toolness/getdocs2ts/internal/output"
	"github.com/toolness/getdocs2ts/internal/parser"
)

// Options tunes how a project is opened.
type Options struct {
	// NoCache skips the extraction cache even when the config enables it.
	NoCache bool
	Logger  *slog.Logger
}

// Project is a directory tree of JavaScript and TypeScript sources.
type Project struct {
	root      string
	cfg       *config.Config
	discovery *files.Discovery
	cache     *cache.Cache
	workers   int
	logger    *slog.Logger
}

// Open prepares the project containing workDir. The project root is the
// directory holding .getdocs when one exists above workDir, otherwise
// workDir itself.
func Open(workDir string, cfg *config.Config, opts Options) (*Project, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	abs, err := filepath.Abs(workDir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	root := abs
	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		root = filepath.Dir(abs)
	}
	if dir, err := config.FindConfigDir(root); err == nil {
		root = filepath.Dir(dir)
	}

	langs := make([]parser.Language, 0, len(cfg.Extract.Languages))
	for _, name := range cfg.Extract.Languages {
		lang, err := parser.ParseLanguage(name)
		if err != nil {
			return nil, err
		}
		langs = append(langs, lang)
	}

	discovery, err := files.New(root, files.Options{
		Include:   cfg.Extract.Include,
		Exclude:   cfg.Extract.Exclude,
		Languages: langs,
	})
	if err != nil {
		return nil, err
	}

	p := &Project{
		root:      root,
		cfg:       cfg,
		discovery: discovery,
		workers:   cfg.Extract.Workers,
		logger:    logger,
	}
	if p.workers < 1 {
		p.workers = 1
	}

	if cfg.Extract.CacheEnabled() && !opts.NoCache {
		dir, err := config.EnsureConfigDir(root)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s directory: %w", config.ConfigDirName, err)
		}
		if p.cache, err = cache.Open(dir); err != nil {
			return nil, fmt.Errorf("failed to open cache: %w", err)
		}
	}

	logger.Debug("project opened",
		slog.String("root", root),
		slog.Bool("cache", p.cache != nil),
		slog.Int("workers", p.workers))
	return p, nil
}

// Root returns the absolute project root.
func (p *Project) Root() string {
	return p.root
}

// Config returns the configuration the project was opened with.
func (p *Project) Config() *config.Config {
	return p.cfg
}

// Discovery returns the file matcher of the project.
func (p *Project) Discovery() *files.Discovery {
	return p.discovery
}

// Cache returns the extraction cache, or nil when caching is off.
func (p *Project) Cache() *cache.Cache {
	return p.cache
}

// Close releases the cache.
func (p *Project) Close() error {
	if p.cache != nil {
		return p.cache.Close()
	}
	return nil
}

// Run discovers the files under paths (the whole project when empty) and
// extracts all of them. A full run also drops cache entries of files that
// no longer exist.
func (p *Project) Run(ctx context.Context, paths ...string) (*output.Report, error) {
	found, err := p.discovery.Discover(paths...)
	if err != nil {
		return nil, err
	}

	results, err := p.ExtractAll(ctx, found)
	if err != nil {
		return nil, err
	}

	if p.cache != nil && len(paths) == 0 {
		valid := make(map[string]bool, len(found))
		for _, f := range found {
			valid[f.RelPath] = true
		}
		if pruned, err := p.cache.PruneStaleEntries(valid); err != nil {
			p.logger.Warn("pruning cache failed", slog.Any("err", err))
		} else if pruned > 0 {
			p.logger.Debug("pruned cache entries", slog.Int("count", pruned))
		}
	}

	return output.NewReport(results), nil
}

// ExtractAll extracts every file with at most the configured number of
// files in flight. Results keep the order of fs. Extraction failures are
// recorded per file; only cancellation of ctx fails the whole call.
func (p *Project) ExtractAll(ctx context.Context, fs []files.File) ([]*output.FileResult, error) {
	results := make([]*output.FileResult, len(fs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, f := range fs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = p.ExtractFile(gctx, f)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// ExtractFile extracts a single file, consulting the cache first.
func (p *Project) ExtractFile(ctx context.Context, f files.File) *output.FileResult {
	result := &output.FileResult{Path: f.RelPath, Language: string(f.Language)}

	content, err := os.ReadFile(f.Path)
	if err != nil {
		result.Error = fmt.Sprintf("failed to read file %s: %v", f.RelPath, err)
		return result
	}

	hash := cache.ContentHash(content)
	if p.cache != nil {
		decls, ok, err := p.cache.Get(f.RelPath, hash)
		if err != nil {
			p.logger.Warn("cache read failed", slog.String("file", f.RelPath), slog.Any("err", err))
		} else if ok {
			result.Declarations = decls
			result.Cached = true
			return result
		}
	}

	decls, err := extract.ExtractCtx(ctx, content, f.Language)
	if err != nil {
		p.logger.Debug("extraction failed", slog.String("file", f.RelPath), slog.Any("err", err))
		result.Error = err.Error()
		return result
	}
	result.Declarations = decls

	if p.cache != nil {
		if err := p.cache.Put(f.RelPath, hash, string(f.Language), decls); err != nil {
			p.logger.Warn("cache write failed", slog.String("file", f.RelPath), slog.Any("err", err))
		}
	}
	return result
}
