package vocab

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/markuplab/playground/errors"
	"github.com/markuplab/playground/logger"
)

// ReloadCallback is called with the freshly loaded table after the
// vocabulary file changes on disk.
type ReloadCallback func(*Table) error

// Watcher watches a vocabulary file for changes and reloads it. Rapid
// successive writes (editors often write twice) are debounced into a
// single reload.
type Watcher struct {
	path           string
	watcher        *fsnotify.Watcher
	callbacks      []ReloadCallback
	mu             sync.RWMutex
	debounceTimer  *time.Timer
	debouncePeriod time.Duration
	closeOnce      sync.Once
}

// NewWatcher creates a watcher for the vocabulary file at path.
func NewWatcher(path string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	if err := fsw.Add(path); err != nil {
		fsw.Close()
		return nil, errors.Wrapf(err, "failed to watch vocabulary file %s", path)
	}

	return &Watcher{
		path:           path,
		watcher:        fsw,
		debouncePeriod: 500 * time.Millisecond,
	}, nil
}

// OnReload registers a callback to be invoked after each successful reload.
func (w *Watcher) OnReload(callback ReloadCallback) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// Start begins watching for vocabulary file changes.
func (w *Watcher) Start() {
	go w.watchLoop()
}

func (w *Watcher) watchLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				logger.Debugw("Vocabulary watcher detected change",
					"file", event.Name,
					"op", event.Op.String())
				w.scheduleReload()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warnw("Vocabulary watcher error", "error", err)
		}
	}
}

// scheduleReload coalesces bursts of file events into one reload.
func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}

	w.debounceTimer = time.AfterFunc(w.debouncePeriod, func() {
		if err := w.reload(); err != nil {
			logger.Errorw("Vocabulary reload failed",
				"path", w.path,
				"error", err)
		}
	})
}

func (w *Watcher) reload() error {
	table, err := LoadFromFile(w.path)
	if err != nil {
		return err
	}

	logger.Infow("Vocabulary reloaded",
		"path", w.path,
		"tags", table.Len())

	w.mu.RLock()
	callbacks := make([]ReloadCallback, len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.RUnlock()

	for _, callback := range callbacks {
		if err := callback(table); err != nil {
			logger.Warnw("Vocabulary reload callback error", "error", err)
		}
	}

	return nil
}

// Close stops watching and cancels any pending reload.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		w.mu.Lock()
		if w.debounceTimer != nil {
			w.debounceTimer.Stop()
			w.debounceTimer = nil
		}
		w.mu.Unlock()
		err = w.watcher.Close()
	})
	return err
}
