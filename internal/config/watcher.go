// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for
// breachadvisor.
package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// CONFIG WATCHER
// =============================================================================

// Watcher reloads the configuration file when it changes on disk and hands
// the freshly parsed config to a callback. Editor save patterns (rename,
// truncate+write) generate bursts of events, so changes are debounced.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onChange func(*Config)

	mu      sync.Mutex
	pending bool
	closed  bool
	stopc   chan struct{}
}

// NewWatcher creates a watcher for the given config file path. onChange is
// called from the watcher goroutine with each successfully reloaded config;
// parse or validation failures keep the previous config and are ignored.
func NewWatcher(path string, onChange func(*Config)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:     path,
		watcher:  fsw,
		debounce: 250 * time.Millisecond,
		onChange: onChange,
		stopc:    make(chan struct{}),
	}

	// Watch the directory, not the file: atomic saves replace the inode.
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, err
	}

	go w.loop()
	return w, nil
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.stopc)
	w.mu.Unlock()

	return w.watcher.Close()
}

func (w *Watcher) loop() {
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-w.stopc:
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.mu.Lock()
			if !w.pending {
				w.pending = true
				timer.Reset(w.debounce)
			}
			w.mu.Unlock()

		case <-timer.C:
			w.mu.Lock()
			w.pending = false
			w.mu.Unlock()
			w.reload()

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal; keep running.
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := LoadFromPath(w.path)
	if err != nil {
		// Keep the previous config on a bad edit.
		return
	}
	if w.onChange != nil {
		w.onChange(cfg)
	}
}
