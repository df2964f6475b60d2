// Package watcher turns filesystem activity in the corpus directory into
// debounced re-run triggers.
package watcher

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period required after the last document
// event before a trigger fires. Editors and sync tools write documents in
// bursts; one trigger per burst is enough.
const DefaultDebounce = 500 * time.Millisecond

// Watcher monitors a corpus directory and emits one trigger per settled
// burst of *.json changes.
type Watcher struct {
	dir      string
	debounce time.Duration
	logger   *zap.Logger

	fw       *fsnotify.Watcher
	triggers chan struct{}
	done     chan struct{}
}

// New creates a watcher for dir. A debounce of zero or less falls back to
// DefaultDebounce.
func New(dir string, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	return &Watcher{
		dir:      dir,
		debounce: debounce,
		logger:   logger.With(zap.String("component", "corpus_watcher")),
		fw:       fw,
		triggers: make(chan struct{}, 1),
		done:     make(chan struct{}),
	}, nil
}

// Start registers the directory and begins the event loop.
func (w *Watcher) Start() error {
	if err := w.fw.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}
	w.logger.Info("Watching corpus", zap.String("dir", w.dir), zap.Duration("debounce", w.debounce))
	go w.loop()
	return nil
}

// Stop closes the underlying watcher, waits for the loop to drain, and
// closes the trigger channel.
func (w *Watcher) Stop() {
	w.fw.Close()
	<-w.done
	close(w.triggers)
}

// Triggers delivers one value per settled burst of document changes. The
// channel is closed by Stop.
func (w *Watcher) Triggers() <-chan struct{} {
	return w.triggers
}

func (w *Watcher) loop() {
	defer close(w.done)

	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	var last time.Time
	pending := false

	for {
		select {
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if !w.isDocument(event.Name) {
				continue
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				pending = true
				last = time.Now()
				w.logger.Debug("Corpus changed", zap.String("file", event.Name), zap.String("op", event.Op.String()))
			}

		case now := <-ticker.C:
			if pending && now.Sub(last) >= w.debounce {
				pending = false
				w.fire()
			}

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Watch error", zap.Error(err))
		}
	}
}

// fire coalesces: a trigger already waiting in the channel covers this
// burst too.
func (w *Watcher) fire() {
	select {
	case w.triggers <- struct{}{}:
		w.logger.Debug("Re-run triggered")
	default:
	}
}

func (w *Watcher) isDocument(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return strings.EqualFold(filepath.Ext(base), ".json")
}
