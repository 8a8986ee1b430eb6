// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs a callback when library or target sources change.
//
// Directories are watched recursively and filtered by glob patterns; single
// files are watched through their parent directory. Events within the
// debounce window are coalesced so the callback fires once with every changed
// path.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// defaultDebounce is the quiet period before the callback fires. Editors
// that write a temp file and rename it produce several events per save.
const defaultDebounce = 300 * time.Millisecond

// defaultIgnores are never watched: VCS metadata, cargo build output, and
// editor swap files.
var defaultIgnores = []string{
	"**/.git/**",
	"**/target/**",
	"**/*.swp",
	"**/*.swo",
	"**/*~",
	"**/.DS_Store",
}

// ErrNothingToWatch is returned by New when Config names no directory and no
// file.
var ErrNothingToWatch = errors.New("watch: nothing to watch")

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// Dirs are watched recursively. Events are reported when the path
		// relative to its directory matches Patterns.
		Dirs []string

		// Files are watched individually, through their parent directory.
		Files []string

		// Patterns are doublestar globs (e.g. "**/*.rs") applied to events
		// under Dirs. An empty slice reports every non-ignored file.
		Patterns []string

		// Ignore are additional doublestar globs merged with the defaults.
		Ignore []string

		// Exclude lists files whose changes are never reported, such as the
		// bundle the callback itself writes.
		Exclude []string

		// Debounce is the quiet period after the last event. Zero or
		// negative values fall back to defaultDebounce.
		Debounce time.Duration

		// OnChange receives the sorted, absolute paths that changed. A nil
		// callback is a no-op.
		OnChange func(ctx context.Context, changed []string) error

		// Logger receives watcher diagnostics. nil discards them.
		Logger *log.Logger
	}

	// Watcher monitors filesystem paths and fires a debounced callback when
	// matching files change. Run must be called exactly once.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		dirs     []string
		files    map[string]bool
		exclude  map[string]bool
		ignores  []string
		logger   *log.Logger
		debounce time.Duration
		started  atomic.Bool
	}
)

// New creates a Watcher and registers every directory it needs. Paths are
// made absolute; invalid glob patterns fail here rather than at event time.
func New(cfg Config) (*Watcher, error) {
	if len(cfg.Dirs) == 0 && len(cfg.Files) == 0 {
		return nil, ErrNothingToWatch
	}
	if err := validatePatterns(cfg.Patterns, "watch"); err != nil {
		return nil, err
	}
	if err := validatePatterns(cfg.Ignore, "ignore"); err != nil {
		return nil, err
	}

	dirs, err := absAll(cfg.Dirs)
	if err != nil {
		return nil, err
	}
	files, err := absAll(cfg.Files)
	if err != nil {
		return nil, err
	}
	exclude, err := absAll(cfg.Exclude)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		dirs:     dirs,
		files:    setOf(files),
		exclude:  setOf(exclude),
		ignores:  append(slices.Clone(defaultIgnores), cfg.Ignore...),
		logger:   logger,
		debounce: debounce,
	}

	if err := w.addWatches(); err != nil {
		if closeErr := fsw.Close(); closeErr != nil {
			logger.Warn("close watcher after init failure", "err", closeErr)
		}
		return nil, err
	}
	return w, nil
}

// Run blocks until ctx is canceled, dispatching debounced callbacks. It
// returns nil on cancellation and an error when the watcher breaks. A
// callback error is logged and watching continues.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return errors.New("watch: Run called more than once")
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		running atomic.Bool
	)

	// fire may run after cancellation because it is scheduled by
	// time.AfterFunc. A run still in progress reschedules instead of
	// overlapping.
	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !running.CompareAndSwap(false, true) {
			w.logger.Debug("previous run still in progress, retrying later")
			mu.Lock()
			if timer != nil {
				timer.Reset(w.debounce)
			}
			mu.Unlock()
			return
		}
		defer running.Store(false)

		mu.Lock()
		if len(pending) == 0 {
			mu.Unlock()
			return
		}
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()

		if w.cfg.OnChange == nil {
			return
		}
		if err := w.cfg.OnChange(ctx, changed); err != nil {
			w.logger.Error("rebuild failed", "err", err)
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("close watcher", "err", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}
			if evt.Has(fsnotify.Chmod) && !evt.Has(fsnotify.Write) {
				continue
			}
			if evt.Has(fsnotify.Create) {
				w.maybeAddDir(evt.Name)
			}
			if !w.relevant(evt.Name) {
				continue
			}
			w.logger.Debug("source changed", "path", evt.Name, "op", evt.Op.String())

			mu.Lock()
			pending[evt.Name] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: fsnotify error channel closed unexpectedly")
			}
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			w.logger.Warn("fsnotify error", "err", err)
		}
	}
}

// relevant reports whether an event on the absolute path should trigger a
// rebuild.
func (w *Watcher) relevant(path string) bool {
	path = filepath.Clean(path)
	if w.exclude[path] {
		return false
	}
	if w.files[path] {
		return true
	}
	for _, dir := range w.dirs {
		rel, err := filepath.Rel(dir, path)
		if err != nil || rel == "." || !filepath.IsLocal(rel) {
			continue
		}
		if w.isIgnored(rel) {
			return false
		}
		return w.matchesPatterns(rel)
	}
	return false
}

// addWatches registers every non-ignored directory under Dirs and the parent
// directory of each file in Files.
func (w *Watcher) addWatches() error {
	for _, root := range w.dirs {
		walkErr := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				if path == root {
					return err
				}
				w.logger.Warn("skipping inaccessible path", "path", path, "err", err)
				return nil
			}
			if !d.IsDir() {
				return nil
			}
			if rel, relErr := filepath.Rel(root, path); relErr == nil && rel != "." && w.isIgnored(rel+"/") {
				return filepath.SkipDir
			}
			if addErr := w.fsw.Add(path); addErr != nil {
				return fmt.Errorf("watch: add directory %q: %w", path, addErr)
			}
			return nil
		})
		if walkErr != nil {
			return fmt.Errorf("watch: walk %s: %w", root, walkErr)
		}
	}

	for file := range w.files {
		dir := filepath.Dir(file)
		if slices.Contains(w.fsw.WatchList(), dir) {
			continue
		}
		if err := w.fsw.Add(dir); err != nil {
			return fmt.Errorf("watch: add directory %q: %w", dir, err)
		}
	}
	return nil
}

// maybeAddDir extends recursive watches to directories created under Dirs
// after startup.
func (w *Watcher) maybeAddDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	for _, root := range w.dirs {
		rel, err := filepath.Rel(root, path)
		if err != nil || !filepath.IsLocal(rel) {
			continue
		}
		if w.isIgnored(rel + "/") {
			return
		}
		if addErr := w.fsw.Add(path); addErr != nil {
			w.logger.Warn("add new directory", "path", path, "err", addErr)
		}
		return
	}
}

// isIgnored reports whether rel, relative to a watched directory, matches an
// ignore pattern.
func (w *Watcher) isIgnored(rel string) bool {
	normalized := filepath.ToSlash(rel)
	for _, pat := range w.ignores {
		if matched, err := doublestar.Match(pat, normalized); err == nil && matched {
			return true
		}
	}
	return false
}

// matchesPatterns reports whether rel matches a watch pattern. No patterns
// match everything.
func (w *Watcher) matchesPatterns(rel string) bool {
	if len(w.cfg.Patterns) == 0 {
		return true
	}
	normalized := filepath.ToSlash(rel)
	for _, pat := range w.cfg.Patterns {
		if matched, err := doublestar.Match(pat, normalized); err == nil && matched {
			return true
		}
	}
	return false
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string {
	return slices.Clone(defaultIgnores)
}

func validatePatterns(patterns []string, label string) error {
	for _, pat := range patterns {
		if !doublestar.ValidatePattern(pat) {
			return fmt.Errorf("watch: invalid %s pattern %q", label, pat)
		}
	}
	return nil
}

func absAll(paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("watch: resolve %s: %w", p, err)
		}
		out = append(out, abs)
	}
	return out, nil
}

func setOf(paths []string) map[string]bool {
	set := make(map[string]bool, len(paths))
	for _, p := range paths {
		set[p] = true
	}
	return set
}
