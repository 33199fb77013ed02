package serve

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// watch evicts cached marker lists of documents changed on disk until ctx is
// cancelled. Directories created later are watched too.
func watch(ctx context.Context, root string, cache *markerCache, ready chan<- struct{}, log *zap.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirs(w, root); err != nil {
		return err
	}
	log.Debug("Watching documents", zap.String("root", root))
	if ready != nil {
		close(ready)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() && ev.Has(fsnotify.Create) {
				if err := addDirs(w, ev.Name); err != nil {
					log.Warn("Unable to watch new directory", zap.String("path", ev.Name), zap.Error(err))
				}
			}
			if ev.Has(fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename) {
				if cache.evict(ev.Name) {
					log.Debug("Document changed, markers evicted", zap.String("file", ev.Name), zap.Stringer("op", ev.Op))
				}
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Error("Watcher error", zap.Error(err))
		}
	}
}

// addDirs watches dir and every directory below it, plain files are ignored.
func addDirs(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return w.Add(path)
	})
}
