package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/san-kum/episim/internal/config"
)

const DefaultDebounce = 200 * time.Millisecond

// Watcher reloads a scenario file whenever it changes on disk.
type Watcher struct {
	path     string
	debounce time.Duration
}

func New(path string, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{path: filepath.Clean(path), debounce: debounce}
}

// Run calls fn with the loaded config once at start and again after every
// change, until ctx is done. A file that fails to load is logged and skipped;
// the previous config stays in effect. Errors from fn are logged, not fatal.
func (w *Watcher) Run(ctx context.Context, fn func(*config.Config) error) error {
	cfg, err := config.Load(w.path)
	if err != nil {
		return err
	}
	w.call(fn, cfg)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace the file instead of writing it, so watch the directory.
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	logrus.Infof("watching %s", w.path)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				logrus.Debugf("%s: %s", event.Op, event.Name)
				timer.Reset(w.debounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logrus.Warnf("watch error: %v", err)

		case <-timer.C:
			cfg, err := config.Load(w.path)
			if err != nil {
				logrus.Warnf("reload %s: %v", w.path, err)
				continue
			}
			logrus.Infof("reloaded %s", w.path)
			w.call(fn, cfg)
		}
	}
}

func (w *Watcher) call(fn func(*config.Config) error, cfg *config.Config) {
	if err := fn(cfg); err != nil {
		logrus.Errorf("%s: %v", w.path, err)
	}
}
