package internal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	tt "github.com/gnolang/jmig/internal/types"
)

// debounce is how long to wait after a write before running, so that
// editors saving in several steps produce one run.
const debounce = 100 * time.Millisecond

// ResultHandler receives the outcome of a run triggered by a file change.
type ResultHandler func(filename string, result *tt.FileResult, err error)

// Watch runs the engine on Java files under dirs whenever they are written,
// until ctx is cancelled.
func (e *Engine) Watch(ctx context.Context, dirs []string, handle ResultHandler) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range dirs {
		if err := e.watchTree(watcher, dir, nil); err != nil {
			return fmt.Errorf("error adding directory to watcher: %w", err)
		}
	}

	e.logger.Info("watching for changes", zap.Strings("dirs", dirs))

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if e.isNewDir(event) {
				now := time.Now()
				err := e.watchTree(watcher, event.Name, func(path string) {
					pending[path] = now
				})
				if err != nil {
					e.logger.Error("cannot watch new directory",
						zap.String("dir", event.Name), zap.Error(err))
				}
				continue
			}
			if e.watched(event) {
				pending[event.Name] = time.Now()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			e.logger.Error("watcher error", zap.Error(err))
		case now := <-ticker.C:
			for name, at := range pending {
				if now.Sub(at) < debounce {
					continue
				}
				delete(pending, name)
				result, err := e.Run(name)
				handle(name, result, err)
			}
		}
	}
}

// watchTree adds dir and its subdirectories to watcher, skipping ignored
// ones. found, when set, receives the Java files already in the tree.
func (e *Engine) watchTree(watcher *fsnotify.Watcher, dir string, found func(path string)) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if e.IsIgnored(path) && path != dir {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		if found != nil && strings.HasSuffix(path, ".java") && !e.IsIgnored(path) {
			found(path)
		}
		return nil
	})
}

func (e *Engine) isNewDir(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) || e.IsIgnored(event.Name) {
		return false
	}
	info, err := os.Stat(event.Name)
	return err == nil && info.IsDir()
}

func (e *Engine) watched(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return false
	}
	if !strings.HasSuffix(event.Name, ".java") {
		return false
	}
	return !e.IsIgnored(event.Name)
}
