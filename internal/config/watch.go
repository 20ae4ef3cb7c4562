package config

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceDelay = 150 * time.Millisecond

// Watcher reloads the config file when it changes on disk and hands the
// result to onChange. Reload errors are logged and the previous config
// stays in effect.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	debounce *time.Timer
	mu       sync.Mutex
	onChange func(Config)
	log      *slog.Logger
	done     chan struct{}
	stopOnce sync.Once
}

// NewWatcher watches the directory holding path. Editors that replace the
// file instead of writing it in place still trigger a reload.
func NewWatcher(path string, log *slog.Logger, onChange func(Config)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}

	w := &Watcher{
		path:     filepath.Clean(path),
		watcher:  fsw,
		onChange: onChange,
		log:      log,
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.scheduleReload()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watch error", "err", err)

		case <-w.done:
			return
		}
	}
}

// scheduleReload collapses a burst of events into one reload
func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(debounceDelay, w.reload)
}

func (w *Watcher) reload() {
	cfg, err := LoadFile(w.path)
	if err != nil {
		w.log.Warn("config reload failed", "path", w.path, "err", err)
		return
	}
	w.log.Info("config reloaded", "path", w.path)
	if w.onChange != nil {
		w.onChange(cfg)
	}
}

// Stop closes the watcher. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.watcher.Close()

		w.mu.Lock()
		if w.debounce != nil {
			w.debounce.Stop()
		}
		w.mu.Unlock()
	})
}
