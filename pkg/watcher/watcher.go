// Package watcher observes a single file for external edits and invokes a
// callback once per burst of filesystem events.
package watcher

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits after the last event before
// firing, so a save burst (truncate, write, chmod) coalesces into one reload.
const DefaultDebounce = 50 * time.Millisecond

// Watcher watches at most one file at a time. Start on a new path replaces
// the previous watch; Stop is safe to call repeatedly.
type Watcher struct {
	mu       sync.Mutex
	fw       *fsnotify.Watcher
	cancel   context.CancelFunc
	debounce time.Duration
}

// New creates a Watcher with the default debounce interval.
func New() *Watcher {
	return &Watcher{debounce: DefaultDebounce}
}

// NewWithDebounce creates a Watcher with a custom debounce interval.
func NewWithDebounce(d time.Duration) *Watcher {
	if d <= 0 {
		d = DefaultDebounce
	}
	return &Watcher{debounce: d}
}

// Start begins watching path, calling onChange once per event burst. Any
// previous watch is stopped first. The callback runs on the watcher's own
// goroutine.
func (w *Watcher) Start(path string, onChange func()) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.stopLocked()

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(path); err != nil {
		if closeErr := fw.Close(); closeErr != nil {
			log.Printf("[watch] failed to close watcher after add error: %v", closeErr)
		}
		return fmt.Errorf("watch %s: %w", path, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.fw = fw
	w.cancel = cancel

	go w.run(ctx, fw, path, onChange)
	return nil
}

// Stop cancels the current watch and releases the handle. Idempotent.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopLocked()
}

func (w *Watcher) stopLocked() {
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	if w.fw != nil {
		w.fw.Close()
		w.fw = nil
	}
}

func (w *Watcher) run(ctx context.Context, fw *fsnotify.Watcher, path string, onChange func()) {
	var timer *time.Timer
	var timerC <-chan time.Time
	rewatch := false

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			// Editors that save via rename-and-replace drop the inode we
			// watch; re-add the path after the burst settles.
			if ev.Op&(fsnotify.Rename|fsnotify.Remove) != 0 {
				rewatch = true
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			if rewatch {
				rewatch = false
				if err := fw.Add(path); err != nil {
					log.Printf("[watch] cannot re-watch %s: %v", path, err)
				}
			}
			onChange()

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			log.Printf("[watch] error: %v", err)
		}
	}
}
