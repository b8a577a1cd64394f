package device

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WaitFor blocks until the node at path exists or ctx is done. Keyboards
// plugged in after startup and nodes recreated by udev show up as a create
// event in their parent directory.
func WaitFor(ctx context.Context, path string) error {
	path = filepath.Clean(path)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("cannot create watcher: %w", err)
	}
	defer w.Close()

	// Watch before checking, so a node created in between is not missed.
	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("cannot watch %s: %w", filepath.Dir(path), err)
	}

	if _, err := os.Stat(path); err == nil {
		return nil
	}

	slog.Info("waiting for device", "path", path)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.Events:
			if !ok {
				return errors.New("watcher closed")
			}
			if filepath.Clean(ev.Name) == path && ev.Has(fsnotify.Create) {
				slog.Info("device appeared", "path", path)
				return nil
			}

		case err, ok := <-w.Errors:
			if !ok {
				return errors.New("watcher closed")
			}
			return fmt.Errorf("watching %s: %w", path, err)
		}
	}
}
