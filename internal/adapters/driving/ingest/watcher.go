package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/crimeradar/crimeradar-cli/internal/core/ports/driving"
	"github.com/crimeradar/crimeradar-cli/internal/logger"
)

// Watcher ingests JSON event files dropped into a directory.
type Watcher struct {
	service driving.EventService
	dir     string
}

// NewWatcher creates a watcher over the given directory.
func NewWatcher(service driving.EventService, dir string) (*Watcher, error) {
	if service == nil {
		return nil, fmt.Errorf("ingest: event service is required")
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("ingest: %s is not a directory", dir)
	}

	return &Watcher{service: service, dir: dir}, nil
}

// Run loads any JSON files already present, then blocks ingesting new
// files as they appear, until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.loadExisting(ctx); err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("ingest: creating watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("ingest: watching %s: %w", w.dir, err)
	}

	logger.Info("Watching %s for event files", w.dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			// Writers that create then write produce both ops; the
			// loader tolerates re-ingesting the same file.
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !isEventFile(event.Name) {
				continue
			}
			w.load(ctx, event.Name)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

// loadExisting ingests JSON files already present in the directory.
func (w *Watcher) loadExisting(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("ingest: reading %s: %w", w.dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !isEventFile(entry.Name()) {
			continue
		}
		w.load(ctx, filepath.Join(w.dir, entry.Name()))
	}
	return nil
}

// load ingests a single file, logging failures rather than aborting
// the watch loop. A malformed file must not take the watcher down.
func (w *Watcher) load(ctx context.Context, path string) {
	n, err := LoadFile(ctx, w.service, path)
	if err != nil {
		logger.Warn("Ingest failed for %s: %v", path, err)
		return
	}
	logger.Info("Ingested %d events from %s", n, path)
}

// isEventFile reports whether the path looks like an event file.
func isEventFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
