// Package watch notices when another process rewrites the stored blob of
// the fs storage driver.
package watch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/folio/internal/checksum"
	"github.com/starford/folio/internal/storage"
)

// DefaultDebounce collapses the create/write/rename burst of one save.
const DefaultDebounce = 200 * time.Millisecond

// Watcher reports external rewrites of one key in an FS provider.
type Watcher struct {
	fs       *storage.FS
	key      string
	logger   *slog.Logger
	onReload func(sum string)

	// Debounce is the quiet period before the blob is re-read.
	Debounce time.Duration

	mu    sync.Mutex
	known string
}

// New returns a watcher for key. onReload receives the checksum of each
// blob that this process did not write itself.
func New(fs *storage.FS, key string, logger *slog.Logger, onReload func(sum string)) *Watcher {
	return &Watcher{
		fs:       fs,
		key:      key,
		logger:   logger,
		onReload: onReload,
		Debounce: DefaultDebounce,
	}
}

// Expect records the checksum of a blob written by this process so the
// resulting file events are not reported as external.
func (w *Watcher) Expect(sum string) {
	w.mu.Lock()
	w.known = sum
	w.mu.Unlock()
}

// Run watches the data directory until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(w.fs.Root()); err != nil {
		return err
	}
	if value, ok, err := w.fs.Get(ctx, w.key); err == nil && ok {
		w.Expect(checksum.Sum(value))
	}

	w.logger.Info("watcher: started", slog.String("root", w.fs.Root()), slog.String("key", w.key))

	var timer *time.Timer
	var timerCh <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(w.Debounce)
			timerCh = timer.C
		} else {
			timer.Reset(w.Debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			w.logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			w.check(ctx)

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			key, isBlob := storage.KeyOf(ev.Name)
			if !isBlob || key != w.key {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				schedule()
			}

		case watchErr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func (w *Watcher) check(ctx context.Context) {
	value, ok, err := w.fs.Get(ctx, w.key)
	if err != nil {
		w.logger.Warn("watcher: read failed", slog.String("key", w.key), slog.String("error", err.Error()))
		return
	}
	if !ok {
		return
	}
	sum := checksum.Sum(value)

	w.mu.Lock()
	seen := sum == w.known
	w.known = sum
	w.mu.Unlock()
	if seen {
		return
	}

	w.logger.Info("watcher: external change", slog.String("key", w.key), slog.String("checksum", sum))
	if w.onReload != nil {
		w.onReload(sum)
	}
}
