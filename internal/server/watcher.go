package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/patrickmn/go-cache"
)

// cacheWatcher flushes the dashboard cache whenever a file under the watched
// directories changes. fsnotify is not recursive, so subdirectories are added
// as they appear.
type cacheWatcher struct {
	fs    *fsnotify.Watcher
	cache *cache.Cache
}

func newCacheWatcher(c *cache.Cache, dirs ...string) (*cacheWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &cacheWatcher{fs: fsw, cache: c}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
		if err := w.addTree(dir); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *cacheWatcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fs.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *cacheWatcher) run(ctx context.Context) {
	defer func() { _ = w.close() }()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.addTree(ev.Name); err != nil {
						slog.Default().Warn("watch new directory failed", "error", err, "path", ev.Name)
					}
				}
			}
			if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				w.cache.Flush()
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			slog.Default().Warn("cache watcher error", "error", err)
		}
	}
}

func (w *cacheWatcher) close() error {
	return w.fs.Close()
}
