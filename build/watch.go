package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/lixenwraith/mbhelper/internal/fsutil"
)

// WatchOptions configures folder polling.
type WatchOptions struct {
	// PollInterval between folder scans
	PollInterval time.Duration

	// Debounce waits this long after the last change before building
	Debounce time.Duration

	// BuildOnStart runs one build before the first scan
	BuildOnStart bool
}

// DefaultWatchOptions returns one-second polling with a half-second debounce.
func DefaultWatchOptions() WatchOptions {
	return WatchOptions{
		PollInterval: time.Second,
		Debounce:     500 * time.Millisecond,
		BuildOnStart: true,
	}
}

// fileState is what a scan remembers about one file.
type fileState struct {
	modTime time.Time
	size    int64
}

// Watcher rebuilds when source or project files in a folder change.
// Builds run on the Run goroutine, one at a time; changes seen during a build
// trigger one more build after it.
type Watcher struct {
	folder string
	exts   Extensions
	opts   WatchOptions
	build  func() bool
	log    zerolog.Logger

	mu            sync.Mutex
	debounceTimer *time.Timer
	trigger       chan struct{}
	running       atomic.Bool
	builds        atomic.Int64
}

// NewWatcher watches folder and calls build for every batch of changes.
func NewWatcher(folder string, exts Extensions, build func() bool, opts WatchOptions, log zerolog.Logger) *Watcher {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultWatchOptions().PollInterval
	}
	if opts.Debounce < 0 {
		opts.Debounce = 0
	}
	return &Watcher{
		folder:  folder,
		exts:    exts,
		opts:    opts,
		build:   build,
		log:     log,
		trigger: make(chan struct{}, 1),
	}
}

// Run polls until ctx is cancelled. It fails only if the folder cannot be read
// at start or Run is already running.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.running.CompareAndSwap(false, true) {
		return fmt.Errorf("watcher for '%s' is already running", w.folder)
	}
	defer w.running.Store(false)

	last, err := w.scan()
	if err != nil {
		return err
	}
	w.log.Info().Str("folder", w.folder).Int("files", len(last)).Msg("Watching for changes")

	if w.opts.BuildOnStart {
		w.runBuild("start")
	}

	ticker := time.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()
	defer w.stopTimer()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.trigger:
			w.runBuild("change")
		case <-ticker.C:
			current, err := w.scan()
			if err != nil {
				w.log.Warn().Err(err).Msg("Folder scan failed")
				continue
			}
			if changed(last, current) {
				last = current
				w.schedule()
			}
		}
	}
}

// Builds returns how many builds this watcher has run.
func (w *Watcher) Builds() int64 {
	return w.builds.Load()
}

// schedule restarts the debounce timer; when it fires a build is queued.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.opts.Debounce, func() {
		select {
		case w.trigger <- struct{}{}:
		default:
			// Build already queued
		}
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
}

func (w *Watcher) runBuild(reason string) {
	n := w.builds.Add(1)
	w.log.Info().Int64("build", n).Str("reason", reason).Msg("Build started")
	ok := w.build()
	w.log.Info().Int64("build", n).Bool("success", ok).Msg("Build finished")
}

// scan records the state of every source and project file in the folder.
func (w *Watcher) scan() (map[string]fileState, error) {
	entries, err := os.ReadDir(w.folder)
	if err != nil {
		return nil, fmt.Errorf("failed to scan folder '%s': %w", w.folder, err)
	}

	state := make(map[string]fileState)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !fsutil.HasExt(name, w.exts.Source) && !fsutil.HasExt(name, w.exts.Project) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// Removed between ReadDir and Info
			continue
		}
		state[filepath.Join(w.folder, name)] = fileState{modTime: info.ModTime(), size: info.Size()}
	}
	return state, nil
}

// changed reports added, removed or modified files.
func changed(prev, cur map[string]fileState) bool {
	if len(prev) != len(cur) {
		return true
	}
	for path, c := range cur {
		p, ok := prev[path]
		if !ok || !p.modTime.Equal(c.modTime) || p.size != c.size {
			return true
		}
	}
	return false
}
