package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow coalesces the event bursts editors produce on save.
const debounceWindow = 250 * time.Millisecond

// Watcher reloads a config file when it changes on disk. Editors typically
// replace files via rename, so the watch covers the parent directory and
// filters on the file name.
type Watcher struct {
	path     string
	fsw      *fsnotify.Watcher
	onChange func()
	debugLog func(format string, args ...interface{})

	mu      sync.Mutex
	pending *time.Timer
	done    chan struct{}
}

// WatchFile starts watching path and invokes onChange after each write or
// rename settles. The callback runs on the watcher's goroutine.
func WatchFile(path string, onChange func(), debugLog func(format string, args ...interface{})) (*Watcher, error) {
	if onChange == nil {
		return nil, fmt.Errorf("watch %s: onChange callback is required", path)
	}
	if debugLog == nil {
		debugLog = func(string, ...interface{}) {}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		path:     abs,
		fsw:      fsw,
		onChange: onChange,
		debugLog: debugLog,
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.debugLog("[config] %s changed (%s)", w.path, event.Op)
			w.scheduleReload()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.debugLog("[config] watch error: %v", err)
		case <-w.done:
			return
		}
	}
}

// scheduleReload arms the debounce timer, resetting it if already armed.
func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending != nil {
		w.pending.Stop()
	}
	w.pending = time.AfterFunc(debounceWindow, w.onChange)
}

// Close stops the watcher. Pending callbacks may still fire once.
func (w *Watcher) Close() error {
	close(w.done)
	w.mu.Lock()
	if w.pending != nil {
		w.pending.Stop()
	}
	w.mu.Unlock()
	return w.fsw.Close()
}
