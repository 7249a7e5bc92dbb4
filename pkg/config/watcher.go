// Copyright 2024-2026 Madhukar Beema. All rights reserved.
// Use of this source code is governed by the Business Source License
// included in the LICENSE file of this repository.

package config

import (
	"context"
	"path/filepath"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period after the last change before the
// layers are merged again.
const DefaultDebounce = 500 * time.Millisecond

// Watcher re-merges a config directory when one of its layer files
// changes. Changes arriving within the debounce window are batched into a
// single reload.
type Watcher struct {
	dir      string
	onChange func(cfg *Config, changed []string)
	logger   *zap.Logger
	debounce time.Duration

	fsw      *fsnotify.Watcher
	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

// NewWatcher creates a watcher for dir. onChange receives the merged
// config and the sorted names of the layer files that changed; it is not
// called when the merged config fails to load or validate.
func NewWatcher(dir string, onChange func(cfg *Config, changed []string), logger *zap.Logger) *Watcher {
	return &Watcher{
		dir:      dir,
		onChange: onChange,
		logger:   logger,
		debounce: DefaultDebounce,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Start subscribes to the directory and runs the event loop until ctx is
// done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(w.dir); err != nil {
		fsw.Close()
		return err
	}
	w.fsw = fsw

	go w.run(ctx)
	w.logger.Info("config watcher started",
		zap.String("dir", w.dir),
		zap.Strings("layers", layerFiles),
	)
	return nil
}

// Stop ends the event loop and waits for it to exit. Safe to call more
// than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		if w.fsw == nil {
			return
		}
		w.fsw.Close()
		<-w.stopped
	})
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.stopped)

	// fire is nil while nothing is pending, which disables its case.
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	pending := make(map[string]bool)

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			name, relevant := layerEvent(ev)
			if !relevant {
				continue
			}
			w.logger.Debug("config layer changed", zap.String("file", name), zap.Stringer("op", ev.Op))
			pending[name] = true
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			fire = timer.C

		case <-fire:
			fire = nil
			w.apply(pending)
			pending = make(map[string]bool)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", zap.Error(err))

		case <-ctx.Done():
			return
		case <-w.done:
			return
		}
	}
}

// layerEvent reports whether ev touches a file LoadDir reads. Removing a
// layer counts: the merged config falls back to defaults for it.
func layerEvent(ev fsnotify.Event) (string, bool) {
	name := filepath.Base(ev.Name)
	if !slices.Contains(layerFiles, name) {
		return name, false
	}
	return name, ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0
}

func (w *Watcher) apply(pending map[string]bool) {
	changed := make([]string, 0, len(pending))
	for name := range pending {
		changed = append(changed, name)
	}
	sort.Strings(changed)

	cfg, err := LoadDir(w.dir)
	if err != nil {
		w.logger.Error("config reload failed", zap.Strings("changed", changed), zap.Error(err))
		return
	}
	w.logger.Info("config reloaded", zap.Strings("changed", changed))
	w.onChange(cfg, changed)
}
