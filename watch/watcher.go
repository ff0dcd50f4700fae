// Package watch resolves table globs and reports content changes to the
// files an annotation run depends on.
package watch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when Config.Debounce is zero.
const DefaultDebounce = 100 * time.Millisecond

// Config configures a Watcher.
type Config struct {
	// Files are the paths to watch. Relative paths are made absolute.
	Files []string

	// Debounce is how long changes accumulate before a Change is emitted.
	Debounce time.Duration

	Logger *slog.Logger
}

// Change reports files whose content differs from the last observed state.
type Change struct {
	// Paths are absolute and sorted.
	Paths []string

	// Removed lists watched files that no longer exist.
	Removed []string
}

// Watcher watches a fixed set of files and emits a Change per debounced
// batch of edits that actually altered content. Editors that save through
// a rename are handled by watching the parent directories.
type Watcher struct {
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	files    map[string]bool

	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op

	hashMu sync.RWMutex
	hashes map[string]string

	events chan Change
	done   chan struct{}
}

// NewWatcher creates a watcher for config.Files.
func NewWatcher(config Config) (*Watcher, error) {
	if len(config.Files) == 0 {
		return nil, errors.New("no files to watch")
	}

	files := make(map[string]bool, len(config.Files))
	for _, f := range config.Files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", f, err)
		}
		files[abs] = true
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	debounce := config.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &Watcher{
		debounce: debounce,
		watcher:  fsw,
		logger:   logger,
		files:    files,
		pending:  make(map[string]fsnotify.Op),
		hashes:   make(map[string]string),
		events:   make(chan Change, 16),
		done:     make(chan struct{}),
	}, nil
}

// Events returns the channel of changes. It is closed by Stop.
func (w *Watcher) Events() <-chan Change {
	return w.events
}

// Start records the current content of every file and begins watching.
func (w *Watcher) Start(ctx context.Context) error {
	dirs := make(map[string]bool)
	for path := range w.files {
		if hash, err := hashFile(path); err == nil {
			w.SetHash(path, hash)
		}
		dirs[filepath.Dir(path)] = true
	}

	for dir := range dirs {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		w.logger.Debug("Watching directory", "path", dir)
	}

	go func() {
		defer close(w.done)
		w.processEvents(ctx)
	}()

	w.logger.Info("File watcher started",
		"files", len(w.files),
		"debounce", w.debounce)

	return nil
}

// Stop stops the watcher and waits for the event loop to exit. It must be
// called at most once, after Start.
func (w *Watcher) Stop() error {
	err := w.watcher.Close()
	<-w.done
	close(w.events)
	return err
}

// SetHash records the content hash for a file.
func (w *Watcher) SetHash(path, hash string) {
	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	w.hashes[path] = hash
}

// GetHash returns the recorded content hash for a file.
func (w *Watcher) GetHash(path string) (string, bool) {
	w.hashMu.RLock()
	defer w.hashMu.RUnlock()
	hash, ok := w.hashes[path]
	return hash, ok
}

func (w *Watcher) processEvents(ctx context.Context) {
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "error", err)

		case <-ticker.C:
			w.flushPending(ctx)
		}
	}
}

func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	path := filepath.Clean(event.Name)
	if !w.files[path] {
		return
	}

	w.pendingMu.Lock()
	w.pending[path] |= event.Op
	w.pendingMu.Unlock()

	w.logger.Debug("File change detected",
		"path", path,
		"op", event.Op.String())
}

func (w *Watcher) flushPending(ctx context.Context) {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	toProcess := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	var change Change
	for path := range toProcess {
		if ctx.Err() != nil {
			return
		}

		hash, err := hashFile(path)
		if errors.Is(err, os.ErrNotExist) {
			if _, had := w.GetHash(path); had {
				w.hashMu.Lock()
				delete(w.hashes, path)
				w.hashMu.Unlock()
				change.Removed = append(change.Removed, path)
			}
			continue
		}
		if err != nil {
			w.logger.Warn("Failed to read changed file", "path", path, "error", err)
			continue
		}

		if old, had := w.GetHash(path); had && old == hash {
			continue
		}
		w.SetHash(path, hash)
		change.Paths = append(change.Paths, path)
	}

	if len(change.Paths) == 0 && len(change.Removed) == 0 {
		return
	}
	sort.Strings(change.Paths)
	sort.Strings(change.Removed)
	w.sendEvent(change)
}

func (w *Watcher) sendEvent(change Change) {
	select {
	case w.events <- change:
		w.logger.Debug("Sent watch event",
			"changed", len(change.Paths),
			"removed", len(change.Removed))
	default:
		w.logger.Warn("Event channel full, dropping change",
			"changed", len(change.Paths))
	}
}

// hashFile computes a SHA256 hash of a file's content.
func hashFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	h := sha256.Sum256(content)
	return hex.EncodeToString(h[:]), nil
}
