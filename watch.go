package spindrift

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"

	"github.com/eringen/spindrift/logger"
)

// DefaultDebounce is the quiet period Watch waits for after the last change.
const DefaultDebounce = 300 * time.Millisecond

// Watch calls fn whenever a file in one of dirs is created, written, removed
// or renamed. Bursts of events closer together than debounce trigger a
// single call. fn runs on the calling goroutine, so calls never overlap.
// Watch blocks until ctx is done and then returns nil.
func Watch(ctx context.Context, dirs []string, debounce time.Duration, fn func(context.Context)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create watcher")
	}
	defer watcher.Close()

	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return newPathError(dir, err)
		}
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	timer := time.NewTimer(time.Hour)
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
			if !isWatchEvent(event.Op) {
				continue
			}
			logger.Logger.Debugw("change detected", logger.FieldFile, event.Name, "op", event.Op.String())
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Logger.Warnw("watcher error", logger.FieldError, err)

		case <-timer.C:
			fn(ctx)
		}
	}
}

func isWatchEvent(op fsnotify.Op) bool {
	return op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0
}
