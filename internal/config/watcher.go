package config

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the config file on change so a long-running server picks
// up provider switches without a restart. The current config is read under
// a lock; callers get a copy and never observe a half-written file (a parse
// failure keeps the previous config).
type Watcher struct {
	path    string
	mu      sync.RWMutex
	current *UserConfig
	onLoad  func(*UserConfig)
}

// NewWatcher loads the file once and prepares a watcher for it.
func NewWatcher(path string, onLoad func(*UserConfig)) (*Watcher, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{path: path, current: cfg, onLoad: onLoad}
	if onLoad != nil {
		onLoad(cfg)
	}
	return w, nil
}

// Current returns the most recently loaded config.
func (w *Watcher) Current() *UserConfig {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Run watches the config file's directory until ctx is cancelled. Watching
// the directory rather than the file survives editors that rename-on-save.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			cfg, err := Load(w.path)
			if err != nil {
				continue // keep the previous config
			}
			w.mu.Lock()
			w.current = cfg
			w.mu.Unlock()
			if w.onLoad != nil {
				w.onLoad(cfg)
			}
		case _, ok := <-fw.Errors:
			if !ok {
				return nil
			}
		}
	}
}
