// Package watch re-runs reconciliation when tracked filter files change on
// disk. Events are debounced so editors that write in bursts (or replace
// the file via rename) trigger one sync per burst, not one per write.
package watch

import (
	"context"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// Handler receives the set of tracked paths that changed within one
// debounce window. It is called from a single goroutine.
type Handler func(paths []string)

// Watcher observes a fixed set of files with debouncing.
type Watcher struct {
	paths    map[string]struct{} // cleaned absolute-ish paths being tracked
	fw       *fsnotify.Watcher
	debounce time.Duration
	handler  Handler
}

// DefaultDebounce is the window used when New is passed zero.
const DefaultDebounce = 500 * time.Millisecond

// New builds a watcher for paths. Parent directories are watched rather
// than the files themselves, so a save that replaces the file (write to
// temp, rename over) is still observed.
func New(paths []string, debounce time.Duration, handler Handler) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		paths:    make(map[string]struct{}, len(paths)),
		fw:       fw,
		debounce: debounce,
		handler:  handler,
	}
	dirs := make(map[string]struct{})
	for _, p := range paths {
		p = filepath.Clean(p)
		w.paths[p] = struct{}{}
		dirs[filepath.Dir(p)] = struct{}{}
	}
	for d := range dirs {
		if err := fw.Add(d); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}
	return w, nil
}

// Run blocks until ctx is done, dispatching debounced change batches to
// the handler.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fw.Close()

	pending := make(map[string]struct{})
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			pending[filepath.Clean(ev.Name)] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("watch error")

		case <-fire:
			batch := make([]string, 0, len(pending))
			for p := range pending {
				batch = append(batch, p)
			}
			sort.Strings(batch)
			pending = make(map[string]struct{})
			fire = nil
			timer = nil
			w.handler(batch)
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	_, ok := w.paths[filepath.Clean(ev.Name)]
	return ok
}
