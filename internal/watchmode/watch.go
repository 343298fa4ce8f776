// Package watchmode re-runs an analysis function whenever a file under a
// root directory changes, debounced to coalesce a burst of edits into
// one re-run: recursive fsnotify watch registration plus a debounce
// timer. The engine has no incremental-update path, so every change
// triggers a full re-analysis callback.
package watchmode

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

var defaultSkipDirs = map[string]bool{
	".git": true, "node_modules": true, "vendor": true,
	"target": true, "dist": true, "build": true, ".cache": true,
}

// Watcher recursively watches root and invokes onChange (debounced) for
// every burst of filesystem events.
type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	onChange func()

	mu    sync.Mutex
	timer *time.Timer
}

// New builds a Watcher rooted at root. Call Run to start processing
// events; call Close to stop.
func New(root string, debounce time.Duration, onChange func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{fsw: fsw, debounce: debounce, onChange: onChange}
	if err := w.addRecursive(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addRecursive(root string) error {
	visited := make(map[string]bool)
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		real, rerr := filepath.EvalSymlinks(path)
		if rerr != nil {
			return nil
		}
		if visited[real] {
			return filepath.SkipDir
		}
		visited[real] = true
		if path != root && defaultSkipDirs[info.Name()] {
			return filepath.SkipDir
		}
		_ = w.fsw.Add(path) // best-effort: a directory we can't watch just misses live updates
		return nil
	})
}

// Run blocks, dispatching debounced onChange calls until stop is closed.
func (w *Watcher) Run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case _, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.scheduleChange()
		case <-w.fsw.Errors:
			// A watch-backend error degrades to a missed event, never a crash.
		}
	}
}

func (w *Watcher) scheduleChange() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.onChange)
}

// Close stops the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
