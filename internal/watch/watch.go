package watch

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow batches bursts of filesystem events into one trigger.
const debounceWindow = 500 * time.Millisecond

// Trigger is invoked after each debounced change burst. The engine has no
// incremental mode, so the expected trigger runs a whole new generation.
type Trigger func(ctx context.Context) error

// Watcher re-runs a trigger whenever files under a root change.
type Watcher struct {
	root    string
	trigger Trigger
}

// New creates a watcher for a root directory.
func New(root string, trigger Trigger) *Watcher {
	return &Watcher{root: root, trigger: trigger}
}

// Start watches recursively and blocks until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := addRecursive(fw, w.root); err != nil {
		return err
	}

	var timer *time.Timer
	fire := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if skipPath(event.Name) {
				continue
			}
			// New directories need watches of their own.
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = addRecursive(fw, event.Name)
				}
			}
			if timer == nil {
				timer = time.AfterFunc(debounceWindow, func() {
					select {
					case fire <- struct{}{}:
					default:
					}
				})
			} else {
				timer.Reset(debounceWindow)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch error: %v", err)

		case <-fire:
			timer = nil
			if err := w.trigger(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Printf("rescan failed: %v", err)
			}
		}
	}
}

func addRecursive(fw *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || !info.IsDir() {
			return nil
		}
		if skipPath(path) {
			return filepath.SkipDir
		}
		return fw.Add(path)
	})
}

func skipPath(path string) bool {
	base := filepath.Base(path)
	return base == ".git" || base == ".atlas" || base == "node_modules" ||
		strings.HasSuffix(base, ".tmp")
}
