package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const reloadDebounce = 500 * time.Millisecond

// Watcher reloads the configuration when a file in the config directory
// changes. Only settings that can change at runtime are acted upon by
// the callbacks; the rest need a restart.
type Watcher struct {
	mu        sync.RWMutex
	config    *Config
	loader    *Loader
	callbacks []func(*Config)
	logger    *zap.Logger
	watcher   *fsnotify.Watcher
	stopCh    chan struct{}
	stopOnce  sync.Once
}

// NewWatcher watches loader's directory. Hot reload is only enabled in
// development; elsewhere the watcher just holds the initial config.
func NewWatcher(initial *Config, loader *Loader, logger *zap.Logger) (*Watcher, error) {
	w := &Watcher{
		config: initial,
		loader: loader,
		logger: logger,
		stopCh: make(chan struct{}),
	}

	if !initial.IsDevelopment() {
		logger.Info("Configuration hot reloading disabled",
			zap.String("environment", initial.Environment),
		)
		return w, nil
	}

	if _, err := os.Stat(loader.basePath); err != nil {
		logger.Info("No config directory to watch", zap.String("dir", loader.basePath))
		return w, nil
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsWatcher.Add(loader.basePath); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", loader.basePath, err)
	}
	w.watcher = fsWatcher

	go w.watchLoop()

	logger.Info("Configuration hot reloading enabled",
		zap.String("dir", loader.basePath),
	)
	return w, nil
}

func (w *Watcher) watchLoop() {
	defer w.watcher.Close()

	var debounce *time.Timer
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 || !isConfigFile(event.Name) {
				continue
			}
			w.logger.Info("Configuration file changed",
				zap.String("file", filepath.Base(event.Name)),
				zap.String("operation", event.Op.String()),
			)
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(reloadDebounce, w.Reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))

		case <-w.stopCh:
			if debounce != nil {
				debounce.Stop()
			}
			return
		}
	}
}

// Reload reads the configuration again and notifies the callbacks. An
// invalid configuration is logged and ignored.
func (w *Watcher) Reload() {
	next, err := w.loader.Load()
	if err != nil {
		w.logger.Error("Invalid configuration after reload", zap.Error(err))
		return
	}

	w.mu.Lock()
	previous := w.config
	w.config = next
	callbacks := make([]func(*Config), len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()

	w.logger.Info("Configuration reloaded",
		zap.String("log_level", next.LogLevel),
		zap.String("previous_log_level", previous.LogLevel),
		zap.Strings("sources", next.LoadedFrom),
	)

	for i, callback := range callbacks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					w.logger.Error("Config callback panicked",
						zap.Int("callback_index", i),
						zap.Any("panic", r),
					)
				}
			}()
			callback(next)
		}()
	}
}

// OnChange registers a callback run after every successful reload
func (w *Watcher) OnChange(callback func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// Config returns the current configuration
func (w *Watcher) Config() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.config
}

// Stop stops watching
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}
