package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadDebounce is how long to wait after the last write before reloading.
var ReloadDebounce = 500 * time.Millisecond

// Watch reloads the dataset at path whenever the file is written or
// recreated and passes the new dataset to onChange. Invalid files are
// logged and ignored so the previous dataset stays in use.
//
// The parent directory is watched rather than the file itself, so editors
// that replace the file on save are handled. Watch returns once the watcher
// is running; it stops when ctx is cancelled.
func Watch(ctx context.Context, path string, onChange func(*Dataset)) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve dataset path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(absPath), err)
	}

	logger := slog.Default().With("dataset", absPath)

	go func() {
		defer watcher.Close()

		var timer *time.Timer
		reload := func() {
			ds, err := Load(absPath)
			if err != nil {
				logger.Warn("dataset reload failed, keeping previous lists", "error", err)
				return
			}
			logger.Info("dataset reloaded")
			onChange(ds)
		}

		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if name, _ := filepath.Abs(event.Name); name != absPath {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(ReloadDebounce, reload)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("dataset watcher error", "error", err)
			}
		}
	}()

	return nil
}
