// Copyright 2026 The MediMate Authors.
// Licensed under the LGPLv3, see LICENCE file for details.

package datahub

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo"
)

// ConfigWatcherConfig is the argument struct for NewConfigWatcher.
type ConfigWatcherConfig struct {
	// Path is the configuration file to watch.
	Path string

	// Debounce coalesces bursts of writes, as editors tend to write a
	// file in several steps.
	Debounce time.Duration

	Clock  clock.Clock
	Logger Logger

	// OnChange is called with every configuration read successfully after
	// the file changed. A file that does not parse is logged and skipped.
	OnChange func(Config)
}

// Validate returns an error if the config cannot be used.
func (c ConfigWatcherConfig) Validate() error {
	if c.Path == "" {
		return errors.NotValidf("empty Path")
	}
	if c.Debounce < 0 {
		return errors.NotValidf("negative Debounce")
	}
	if c.OnChange == nil {
		return errors.NotValidf("nil OnChange")
	}
	return nil
}

// ConfigWatcher reads the configuration file again whenever it changes.
type ConfigWatcher struct {
	path      string
	name      string
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	onChange  func(Config)
	logger    Logger

	stopOnce sync.Once
	done     chan struct{}
	stopped  chan struct{}
}

// NewConfigWatcher starts watching the configuration file. The directory
// holding the file is watched, so the file may be replaced or created
// later.
func NewConfigWatcher(config ConfigWatcherConfig) (*ConfigWatcher, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	if config.Logger == nil {
		config.Logger = loggo.GetLogger("datahub.config")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Annotate(err, "creating config watcher")
	}
	path := filepath.Clean(config.Path)
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		_ = fsw.Close()
		return nil, errors.Annotatef(err, "watching %q", filepath.Dir(path))
	}
	w := &ConfigWatcher{
		path:     path,
		name:     filepath.Base(path),
		watcher:  fsw,
		onChange: config.OnChange,
		logger:   config.Logger,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	w.debouncer = NewDebouncer(config.Clock, config.Debounce, w.reload)
	go w.loop()
	return w, nil
}

// Stop stops watching. Calling Stop more than once is fine.
func (w *ConfigWatcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		w.debouncer.Stop()
		err = w.watcher.Close()
		<-w.stopped
	})
	return errors.Trace(err)
}

func (w *ConfigWatcher) loop() {
	defer close(w.stopped)
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.relevant(event) {
				w.debouncer.Trigger()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warningf("watching config %q: %v", w.path, err)
		}
	}
}

func (w *ConfigWatcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	return filepath.Base(event.Name) == w.name
}

func (w *ConfigWatcher) reload() {
	config, err := ReadConfig(w.path)
	if err != nil {
		w.logger.Errorf("keeping previous config: %v", err)
		return
	}
	w.logger.Debugf("config %q changed", w.path)
	w.onChange(config)
}
