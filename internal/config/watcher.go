// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// CONFIG FILE WATCHER
// =============================================================================

// Watcher reloads the global configuration when the config file changes
// on disk. Edits made with `thatbot config set` or a text editor take
// effect in running processes without a restart.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onReload func(*Config)
	mu       sync.Mutex
	pending  time.Time
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewWatcher creates a config file watcher. onReload is called with the
// freshly loaded config after each successful reload; it may be nil.
func NewWatcher(debounce time.Duration, onReload func(*Config)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Watcher{
		watcher:  fsw,
		debounce: debounce,
		onReload: onReload,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Watch starts watching the config directory for changes
func (w *Watcher) Watch() error {
	// Watch the directory, not the file. Editors and atomic writes replace
	// the file, which drops a watch registered on the file itself.
	if err := EnsureConfigDir(); err != nil {
		return err
	}
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := w.watcher.Add(dir); err != nil {
		return err
	}

	go w.processEvents()
	go w.processPending()

	return nil
}

// processEvents filters file system events down to config file changes
func (w *Watcher) processEvents() {
	defer func() {
		if r := recover(); r != nil {
			_ = r
		}
	}()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			name := filepath.Base(event.Name)
			if name != "config.toml" && name != "config.json" {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.mu.Lock()
				w.pending = time.Now()
				w.mu.Unlock()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			_ = err
		}
	}
}

// processPending coalesces bursts of events into a single reload
func (w *Watcher) processPending() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case <-ticker.C:
			w.mu.Lock()
			fire := !w.pending.IsZero() && time.Since(w.pending) >= w.debounce
			if fire {
				w.pending = time.Time{}
			}
			w.mu.Unlock()

			if fire {
				w.reload()
			}
		}
	}
}

// reload re-reads the config from disk and replaces the global
func (w *Watcher) reload() {
	cfg, err := ReloadGlobal()
	if err != nil {
		log.Printf("CONFIG_RELOAD_FAILED | error=%v", err)
		return
	}

	log.Printf("CONFIG_RELOADED | model=%s theme=%s", cfg.Local.OllamaModel, cfg.UI.Theme)

	if w.onReload != nil {
		w.onReload(cfg)
	}
}

// Close stops watching and releases resources
func (w *Watcher) Close() error {
	w.cancel()
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}
