package autoimport

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long Watch waits after the last event before
// processing a batch.
const DefaultDebounce = 300 * time.Millisecond

// WatchOptions configures Runner.Watch.
type WatchOptions struct {
	// Debounce batches rapid saves. Zero means DefaultDebounce.
	Debounce time.Duration
	// OnStart is called once every directory is being watched. Optional.
	OnStart func()
	// OnBatch is called after each batch with the paths processed and the
	// resulting summary. Optional.
	OnBatch func(paths []string, s Summary)
}

// Watch rewrites matching files under root whenever they are created or
// written, until ctx is done. Directories created while watching are added.
// The runner's own writes trigger one more pass which finds nothing to do.
// Returns nil when ctx is cancelled.
func (r *Runner) Watch(ctx context.Context, root string, opts WatchOptions) error {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("autoimport: watch: %w", err)
	}
	defer w.Close()

	if err := r.addWatchDirs(w, root); err != nil {
		return err
	}
	r.opts.Logger.Debug("watching", zap.String("root", root))
	if opts.OnStart != nil {
		opts.OnStart()
	}

	pending := make(map[string]bool)
	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return fmt.Errorf("autoimport: watch: event channel closed")
			}
			if !r.handleEvent(w, root, event, pending) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(opts.Debounce)
			} else {
				timer.Reset(opts.Debounce)
			}
			timerC = timer.C

		case err, ok := <-w.Errors:
			if !ok {
				return fmt.Errorf("autoimport: watch: error channel closed")
			}
			r.opts.Logger.Warn("watch error", zap.Error(err))

		case <-timerC:
			timerC = nil
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			clear(pending)
			sort.Strings(paths)

			summary, err := r.ProcessFiles(ctx, paths)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			r.opts.Logger.Debug("watch batch",
				zap.Int("files", summary.Files),
				zap.Int("updated", summary.Updated),
			)
			if opts.OnBatch != nil {
				opts.OnBatch(paths, summary)
			}
		}
	}
}

// handleEvent records a file event in pending and reports whether it did.
func (r *Runner) handleEvent(w *fsnotify.Watcher, root string, event fsnotify.Event, pending map[string]bool) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	info, err := os.Stat(event.Name)
	if err != nil {
		return false
	}
	if info.IsDir() {
		if event.Has(fsnotify.Create) && !skipWatchDir(root, event.Name) {
			if err := r.addWatchDirs(w, event.Name); err != nil {
				r.opts.Logger.Warn("watch new directory", zap.String("path", event.Name), zap.Error(err))
			}
		}
		return false
	}
	if _, ok := r.kindOf(event.Name); !ok {
		return false
	}
	pending[event.Name] = true
	return true
}

// addWatchDirs watches dir and every directory below it that the file walk
// would descend into.
func (r *Runner) addWatchDirs(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if skipWatchDir(dir, path) {
			return filepath.SkipDir
		}
		if err := w.Add(path); err != nil {
			return fmt.Errorf("autoimport: watch %s: %w", path, err)
		}
		return nil
	})
}

func skipWatchDir(root, path string) bool {
	if path == root {
		return false
	}
	name := filepath.Base(path)
	return strings.HasPrefix(name, ".") || skipDirs[name]
}
