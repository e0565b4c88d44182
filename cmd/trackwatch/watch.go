package main

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/snoutly/trackwatch/internal/evaluator"
	"github.com/snoutly/trackwatch/internal/logging"
)

// configWatcher reloads tunable settings when the config file changes.
// Only the suppression window is applied live; address or database
// changes still need a restart.
type configWatcher struct {
	path       string
	watcher    *fsnotify.Watcher
	dispatcher *evaluator.Dispatcher
	log        zerolog.Logger

	timerMu sync.Mutex
	timer   *time.Timer

	done chan struct{}
}

// watchConfig starts watching the config file's directory. Watching the
// directory instead of the file survives editors that replace the file
// on save.
func watchConfig(path string, dispatcher *evaluator.Dispatcher, log zerolog.Logger) (*configWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch config dir: %w", err)
	}

	w := &configWatcher{
		path:       path,
		watcher:    watcher,
		dispatcher: dispatcher,
		log:        logging.Component(log, "config-watcher"),
		done:       make(chan struct{}),
	}
	go w.loop()

	w.log.Info().Str("path", path).Msg("watching config for changes")
	return w, nil
}

// Close stops the watcher.
func (w *configWatcher) Close() {
	close(w.done)
	w.watcher.Close()
}

func (w *configWatcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleReload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("config watch error")
		}
	}
}

// scheduleReload debounces bursts of write events from editors that
// save in multiple steps.
func (w *configWatcher) scheduleReload() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(250*time.Millisecond, w.reload)
}

func (w *configWatcher) reload() {
	cfg, err := LoadConfig(w.path)
	if err != nil {
		w.log.Warn().Err(err).Msg("config reload failed, keeping current settings")
		return
	}

	window, err := cfg.SuppressionWindow()
	if err != nil {
		w.log.Warn().Err(err).Msg("config reload failed, keeping current settings")
		return
	}

	w.dispatcher.SetSuppressionWindow(window)
	w.log.Info().Dur("suppression_window", window).Msg("config reloaded")
}
