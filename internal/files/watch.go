package files

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a batch of changes is reported.
const DefaultDebounce = 300 * time.Millisecond

// Watcher reports source files that are written or created under the root
// of a Discovery. Events are batched until no change arrives for the
// debounce period.
type Watcher struct {
	fsw      *fsnotify.Watcher
	disc     *Discovery
	debounce time.Duration
	logger   *slog.Logger
}

// NewWatcher watches every directory of d that discovery would walk.
func NewWatcher(d *Discovery, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w := &Watcher{
		fsw:      fsw,
		disc:     d,
		debounce: debounce,
		logger:   slog.Default().With(slog.String("component", "watch")),
	}
	if err := w.addRecursive(d.Root()); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run delivers batches of changed files to fn until ctx is done. Files in a
// batch are sorted by relative path. fn runs on the watch goroutine.
func (w *Watcher) Run(ctx context.Context, fn func([]File)) error {
	pending := make(map[string]File)
	var timer *time.Timer
	var fire <-chan time.Time

	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if !w.disc.skipDir(event.Name) {
						if err := w.addRecursive(event.Name); err != nil {
							w.logger.Warn("failed to watch new directory",
								slog.String("dir", event.Name), slog.Any("err", err))
						}
					}
					continue
				}
			}

			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			f, ok := w.disc.Match(event.Name)
			if !ok {
				continue
			}
			pending[f.Path] = f

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			batch := make([]File, 0, len(pending))
			for _, f := range pending {
				batch = append(batch, f)
			}
			clear(pending)
			sort.Slice(batch, func(i, j int) bool { return batch[i].RelPath < batch[j].RelPath })
			fn(batch)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", slog.Any("err", err))
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return nil // Skip directories we can't read
		}
		if !entry.IsDir() {
			return nil
		}
		if path != w.disc.Root() && w.disc.skipDir(path) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}
