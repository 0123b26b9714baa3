package config

import (
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/hearthhub/hub/internal/hublog"
)

// Watcher reloads HubConfig from its source file whenever fsnotify
// reports a write, and invokes onReload with the freshly parsed
// config. Only RetentionWindow and BusRingCapacity are meant to be
// acted on by onReload; the rest of the process is wired at start.
type Watcher struct {
	path string
	log  hublog.Logger

	watcher *fsnotify.Watcher

	mu      sync.Mutex
	current HubConfig
}

// NewWatcher builds a Watcher over path, starting from initial.
func NewWatcher(path string, initial HubConfig, log hublog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := fw.Add(path); err != nil {
			fw.Close()
			return nil, err
		}
	}
	return &Watcher{
		path:    path,
		log:     log.With("component", "config-watcher"),
		watcher: fw,
		current: initial,
	}, nil
}

// Current returns the most recently loaded configuration.
func (w *Watcher) Current() HubConfig {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Run watches for file-system events until stop is closed, reloading
// and invoking onReload on every write/create event. It blocks; call
// it from its own goroutine.
func (w *Watcher) Run(stop <-chan struct{}, onReload func(HubConfig)) {
	defer w.watcher.Close()
	for {
		select {
		case <-stop:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := Load(w.path)
			if err != nil {
				w.log.Error("reload config", "path", w.path, "error", err)
				continue
			}
			w.mu.Lock()
			w.current = cfg
			w.mu.Unlock()
			w.log.Info("config reloaded", "path", w.path)
			if onReload != nil {
				onReload(cfg)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error("config watch error", "error", err)
		}
	}
}
