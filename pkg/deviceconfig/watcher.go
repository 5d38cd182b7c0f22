package deviceconfig

import (
	"context"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"edgeagent/pkg/logging"
)

// Watcher observes the mounted config directory and reloads the configuration
// when its contents change.
//
// ConfigMap volume updates arrive as a burst of filesystem events (Kubernetes
// swaps a symlinked data directory atomically), so events are debounced and a
// single reload is performed once the burst settles.
type Watcher struct {
	mu sync.Mutex

	// dir is the config directory being watched
	dir string

	// watcher is the fsnotify watcher instance
	watcher *fsnotify.Watcher

	// debounceInterval is how long to wait for additional changes
	debounceInterval time.Duration

	// pending is the timer for the debounced reload, nil when idle
	pending *time.Timer

	// onReload receives the freshly loaded configuration
	onReload func(*Config)

	// stopCh signals shutdown
	stopCh chan struct{}

	// running indicates if the watcher is active
	running bool
}

// NewWatcher creates a watcher for dir. Each settled change burst triggers one
// onReload call with the newly loaded configuration. An empty dir falls back
// to DefaultDir; a zero debounceInterval falls back to 500ms.
func NewWatcher(dir string, debounceInterval time.Duration, onReload func(*Config)) *Watcher {
	if dir == "" {
		dir = DefaultDir
	}
	if debounceInterval == 0 {
		debounceInterval = 500 * time.Millisecond
	}

	return &Watcher{
		dir:              dir,
		debounceInterval: debounceInterval,
		onReload:         onReload,
		stopCh:           make(chan struct{}),
	}
}

// Start begins watching for filesystem changes. It returns once the watch is
// established; event processing continues in the background until the context
// is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}

	if err := watcher.Add(w.dir); err != nil {
		watcher.Close()
		w.mu.Unlock()
		return err
	}

	w.watcher = watcher
	w.running = true
	w.stopCh = make(chan struct{})
	w.mu.Unlock()

	go w.processEvents(ctx)

	logging.Info("deviceconfig", "Started watching %s for configuration changes", w.dir)
	return nil
}

// Stop terminates event processing. Safe to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	w.running = false
	close(w.stopCh)
}

// processEvents handles filesystem events until shutdown.
func (w *Watcher) processEvents(ctx context.Context) {
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			w.cancelPending()
			return

		case <-w.stopCh:
			w.cancelPending()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			// Any operation inside the directory can be part of a
			// ConfigMap remount; the reload reads whatever is current.
			logging.Debug("deviceconfig", "Config change observed: %s %s", event.Op, event.Name)
			w.scheduleReload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("deviceconfig", err, "Filesystem watcher error")
		}
	}
}

// scheduleReload arms the debounce timer, restarting it if a reload is
// already pending.
func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.pending != nil {
		w.pending.Stop()
	}

	w.pending = time.AfterFunc(w.debounceInterval, func() {
		w.mu.Lock()
		w.pending = nil
		w.mu.Unlock()

		cfg := Load(w.dir)
		logging.Debug("deviceconfig", "Reloaded configuration from %s", w.dir)
		if w.onReload != nil {
			w.onReload(cfg)
		}
	})
}

// cancelPending discards a not-yet-fired reload timer.
func (w *Watcher) cancelPending() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.pending != nil {
		w.pending.Stop()
		w.pending = nil
	}
}
