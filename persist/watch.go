package persist

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch calls fn for every record in the file at path, then again for each
// record appended later, until ctx is done. The file need not exist yet, but
// its directory must.
func (s *FileStore) Watch(ctx context.Context, fn func(Record)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify.NewWatcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	// Appends may replace the file, so watch the directory.
	dir := filepath.Dir(s.Path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch directory %s: %w", dir, err)
	}

	seen := 0
	emit := func() {
		records, err := s.Records()
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				s.logger().Warn("failed to read failure persistence file", "path", s.Path, "error", err)
			}
			return
		}
		if len(records) < seen {
			// Truncated or rewritten: start over.
			seen = 0
		}
		for _, r := range records[seen:] {
			fn(r)
		}
		seen = len(records)
	}

	emit()

	target := filepath.Base(s.Path)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher channel closed")
			}
			if filepath.Base(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				emit()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			s.logger().Warn("fsnotify watcher error", "error", err)
		}
	}
}
