package config

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/doeshing/exline/internal/domain"
	"github.com/doeshing/exline/internal/ports"
)

// WatchingLoader caches the configuration and reloads it when the file
// changes. A reload that fails keeps the previous configuration.
type WatchingLoader struct {
	loader  *FileLoader
	logger  ports.Logger
	watcher *fsnotify.Watcher
	path    string

	mu  sync.RWMutex
	cfg domain.Config

	done chan struct{}
	wg   sync.WaitGroup
}

// NewWatchingLoader loads once and starts watching the file's directory.
// Watching the directory survives editors that replace the file on save.
func NewWatchingLoader(ctx context.Context, loader *FileLoader, logger ports.Logger) (*WatchingLoader, error) {
	cfg, err := loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	path := filepath.Clean(loader.Path())
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}

	w := &WatchingLoader{
		loader:  loader,
		logger:  logger,
		watcher: watcher,
		path:    path,
		cfg:     cfg,
		done:    make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Load implements ports.ConfigProvider.
func (w *WatchingLoader) Load(context.Context) (domain.Config, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cfg, nil
}

// Path returns the watched file.
func (w *WatchingLoader) Path() string {
	return w.path
}

// Close stops the watcher goroutine.
func (w *WatchingLoader) Close() error {
	select {
	case <-w.done:
		return nil
	default:
	}
	close(w.done)
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

func (w *WatchingLoader) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.reload()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", map[string]interface{}{"error": err.Error()})
		}
	}
}

func (w *WatchingLoader) reload() {
	cfg, err := w.loader.Load(context.Background())
	if err != nil {
		w.logger.Warn("config reload failed, keeping previous configuration", map[string]interface{}{
			"path":  w.path,
			"error": err.Error(),
		})
		return
	}
	w.mu.Lock()
	w.cfg = cfg
	w.mu.Unlock()
	w.logger.Info("configuration reloaded", map[string]interface{}{"path": w.path})
}

var _ ports.ConfigProvider = (*WatchingLoader)(nil)
