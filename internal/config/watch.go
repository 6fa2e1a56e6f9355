package config

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"logbook/internal/logger"

	"github.com/fsnotify/fsnotify"
)

// Watch follows the config file and invokes onChange with a freshly loaded
// configuration whenever the file is rewritten. Invalid intermediate states
// (editors often write in two steps) are logged and skipped. Watch blocks
// until ctx is cancelled.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	if onChange == nil {
		return fmt.Errorf("config watch requires a change callback")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// watch the directory: editors replace the file, which drops a watch
	// registered on the file itself
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return err
	}
	target := filepath.Clean(path)

	var pending *time.Timer
	reload := func() {
		cfg, err := Load(path)
		if err != nil {
			logger.Warnf("config reload skipped: %v", err)
			return
		}
		logger.Infof("config reloaded from %s", path)
		onChange(cfg)
	}

	for {
		select {
		case <-ctx.Done():
			if pending != nil {
				pending.Stop()
			}
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			// debounce bursts of events from a single save
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(200*time.Millisecond, reload)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if err != nil && !strings.Contains(err.Error(), "closed") {
				logger.Warnf("config watcher error: %v", err)
			}
		}
	}
}
