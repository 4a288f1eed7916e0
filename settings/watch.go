package settings

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Watcher reloads a settings file whenever it changes on disk.
type Watcher struct {
	path     string
	log      *logrus.Logger
	onChange func(Settings)

	watcher *fsnotify.Watcher
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// Watch starts watching the settings file at path. onChange is called with the new settings every time
// the file is written, from a goroutine owned by the Watcher. Files that fail to load are logged and
// otherwise ignored, and a missing file is never recreated.
func Watch(path string, log *logrus.Logger, onChange func(Settings)) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Editors often replace files instead of writing them, so the directory is watched instead.
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return nil, err
	}

	watcher := &Watcher{
		path:     filepath.Clean(path),
		log:      log,
		onChange: onChange,
		watcher:  w,
		closeCh:  make(chan struct{}),
		done:     make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

// Close stops watching the settings file.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.done)

	// Writes usually arrive as several events, so the file is only reloaded once it has been quiet for a
	// short while.
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path || event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(100 * time.Millisecond)
		case <-timer.C:
			s, err := Read(w.path)
			if errors.Is(err, os.ErrNotExist) {
				// Moved away or deleted. The next write brings it back.
				continue
			}
			if err != nil {
				w.log.Errorf("settings: unable to reload %s: %v", w.path, err)
				continue
			}
			w.onChange(s)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Errorf("settings: watcher error: %v", err)
		case <-w.closeCh:
			return
		}
	}
}
