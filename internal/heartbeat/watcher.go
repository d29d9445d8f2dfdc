package heartbeat

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/aatumaykin/nexcrew/internal/logger"
)

// Watcher calls onChange once per burst of changes to one file. The parent
// directory is watched so that editors replacing the file by rename are
// still seen.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func()
	logger   *logger.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	timer   *time.Timer
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewWatcher creates a watcher for path.
func NewWatcher(path string, debounce time.Duration, onChange func(), log *logger.Logger) *Watcher {
	if log == nil {
		log = logger.Discard()
	}
	return &Watcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		onChange: onChange,
		logger:   log.With(logger.Field{Key: "file", Value: path}),
	}
}

// Start begins watching. The directory is created if missing so a job file
// written later is picked up.
func (w *Watcher) Start(ctx context.Context) error {
	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	ctx, cancel := context.WithCancel(ctx)

	w.mu.Lock()
	w.watcher = fw
	w.cancel = cancel
	w.mu.Unlock()

	w.wg.Add(1)
	go w.loop(ctx, fw)

	w.logger.Debug("watching job file")
	return nil
}

// Stop ends watching and drops a pending notification.
func (w *Watcher) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	fw := w.watcher
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.cancel = nil
	w.watcher = nil
	w.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	fw.Close()
	w.wg.Wait()
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				w.logger.Debug("job file event", logger.Field{Key: "op", Value: event.Op.String()})
				w.schedule()
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Error("fsnotify error", err)
		}
	}
}

// schedule restarts the trailing debounce timer.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cancel == nil {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

func (w *Watcher) fire() {
	w.mu.Lock()
	active := w.cancel != nil
	w.timer = nil
	w.mu.Unlock()

	if active {
		w.onChange()
	}
}
