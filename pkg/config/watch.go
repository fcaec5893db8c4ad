package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/fretboard/pkg/errors"
)

// DefaultDebounce groups the burst of events an editor save produces.
const DefaultDebounce = 150 * time.Millisecond

// Watcher reloads a config file whenever it changes on disk.
//
// The parent directory is watched rather than the file itself so that
// editors which save by renaming a temporary file are followed.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func(*Config, error)
	fw       *fsnotify.Watcher

	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// Watch starts watching path and calls onChange with the reloaded and
// validated config, or the load error, after each settled change. Calls
// happen on the watcher's goroutine, one at a time. Watching stops when
// ctx ends or Close is called.
func Watch(ctx context.Context, path string, onChange func(*Config, error)) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "resolve %s", path)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create file watcher")
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "watch %s", filepath.Dir(abs))
	}

	ctx, cancel := context.WithCancel(ctx)
	w := &Watcher{
		path:     abs,
		debounce: DefaultDebounce,
		onChange: onChange,
		fw:       fw,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go w.run(ctx)
	return w, nil
}

// Path returns the watched file.
func (w *Watcher) Path() string { return w.path }

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		w.cancel()
		<-w.done
		err = w.fw.Close()
	})
	return err
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(w.debounce)

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.onChange(nil, errors.Wrap(errors.ErrCodeInternal, err, "watch %s", w.path))

		case <-timer.C:
			cfg, err := Load(w.path)
			w.onChange(cfg, err)
		}
	}
}
