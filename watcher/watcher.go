// Package watcher reports changes below a project directory. It watches every
// directory recursively, skips the always-excluded ones and coalesces bursts
// of events (editors often write several times per save) into one callback.
package watcher

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/meysamhadeli/talos/utils"
	"github.com/pterm/pterm"
)

// DefaultDebounce is the quiet period after the last event before a change is reported.
const DefaultDebounce = 300 * time.Millisecond

var ErrWatcherClosed = errors.New("watcher is closed")

// Watcher wraps an fsnotify watcher rooted at one directory.
type Watcher struct {
	fw       *fsnotify.Watcher
	root     string
	skipDirs *utils.GlobSet
	debounce time.Duration
	logger   *pterm.Logger

	mu     sync.Mutex
	closed bool
}

// NewWatcher starts watching root and all of its directories except the
// default-excluded ones. Events are only delivered once Watch is called, but
// changes made after NewWatcher returns are not lost.
func NewWatcher(root string, debounce time.Duration, logger *pterm.Logger) (*Watcher, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	absRoot, err = filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, err
	}
	skipDirs, err := utils.CompileGlobs(utils.DefaultExcludePatterns...)
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = pterm.DefaultLogger.WithLevel(pterm.LogLevelDisabled)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fw:       fw,
		root:     absRoot,
		skipDirs: skipDirs,
		debounce: debounce,
		logger:   logger,
	}
	if err := w.addTree(absRoot); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

// Watch blocks until ctx is done, calling onChange once per burst of
// relevant events. An event is relevant when relevant(relPath) is true for
// the slash-separated path below root, when a .gitignore changes, or when a
// directory is created. onChange runs on the Watch goroutine; events arriving
// meanwhile are coalesced into the next call.
func (w *Watcher) Watch(ctx context.Context, relevant func(relPath string) bool, onChange func()) error {
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fw.Events:
			if !ok {
				return ErrWatcherClosed
			}
			if !w.handleEvent(event, relevant) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.fw.Errors:
			if !ok {
				return ErrWatcherClosed
			}
			w.logger.Warn("watch error", w.logger.Args("error", err))

		case <-fire:
			fire = nil
			onChange()
		}
	}
}

// Close stops watching. Safe to call multiple times.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	return w.fw.Close()
}

// handleEvent reports whether event should schedule a change notification.
func (w *Watcher) handleEvent(event fsnotify.Event, relevant func(relPath string) bool) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}

	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil || rel == "." {
		return false
	}
	rel = filepath.ToSlash(rel)
	if w.insideSkippedDir(rel) {
		return false
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Lstat(event.Name); err == nil && info.IsDir() {
			if w.skipDirs.MatchDir(rel) {
				return false
			}
			if err := w.addTree(event.Name); err != nil {
				w.logger.Warn("failed to watch directory", w.logger.Args("path", rel, "error", err))
			}
			return true
		}
	}

	if utils.IsGitignoreFile(rel) {
		return true
	}
	return relevant(rel)
}

func (w *Watcher) insideSkippedDir(rel string) bool {
	for dir := filepath.ToSlash(filepath.Dir(rel)); dir != "." && dir != "/"; dir = filepath.ToSlash(filepath.Dir(dir)) {
		if w.skipDirs.MatchDir(dir) {
			return true
		}
	}
	return false
}

// addTree watches dir and every directory below it that is not excluded.
// Unreadable directories are skipped.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root {
			rel, relErr := filepath.Rel(w.root, path)
			if relErr == nil && w.skipDirs.MatchDir(filepath.ToSlash(rel)) {
				return filepath.SkipDir
			}
		}
		if err := w.fw.Add(path); err != nil {
			if path == dir {
				return err
			}
			w.logger.Warn("failed to watch directory", w.logger.Args("path", path, "error", err))
		}
		return nil
	})
}
