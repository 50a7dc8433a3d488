package credential

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors the settings file and reloads the admin credential when
// the file is edited while the process runs. The containing directory is
// watched rather than the file itself so that atomic rename-into-place
// writes and files created after startup are both observed.
//
// Updates go through Store.ApplyFileUpdate, which refuses to clobber
// environment or runtime-override credentials.
type Watcher struct {
	watcher *fsnotify.Watcher
	store   *Store
	file    *SettingsFile
	stopCh  chan struct{}
}

// WatchSettings starts watching the settings file for credential edits.
// Callers must Close the returned watcher on shutdown.
func WatchSettings(file *SettingsFile, store *Store) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create settings watcher: %w", err)
	}

	dir := filepath.Dir(file.Path)
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("failed to watch settings directory %q: %w", dir, err)
	}

	w := &Watcher{
		watcher: fsw,
		store:   store,
		file:    file,
		stopCh:  make(chan struct{}),
	}
	go w.watchLoop()

	slog.Debug("watching settings file", "path", file.Path)
	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.stopCh)
	return w.watcher.Close()
}

// watchLoop reloads the token on writes, creates, or renames touching the
// settings file.
func (w *Watcher) watchLoop() {
	base := filepath.Base(w.file.Path)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			token, err := w.file.LoadToken()
			if err != nil {
				slog.Error("failed to reload settings file",
					"path", w.file.Path,
					"error", err,
				)
				continue
			}
			if token == "" {
				continue
			}

			if w.store.ApplyFileUpdate(token) {
				slog.Info("admin credential reloaded from settings file",
					"path", w.file.Path,
				)
			} else {
				slog.Debug("ignoring settings file edit, active credential outranks file",
					"path", w.file.Path,
				)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("settings watcher error", "error", err)

		case <-w.stopCh:
			return
		}
	}
}
