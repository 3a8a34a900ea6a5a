package audit

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/leapstack-labs/findrules/internal/config"
	"github.com/leapstack-labs/findrules/pkg/core"
)

// DefaultDebounce is how long Watch waits for writes to settle before re-running.
const DefaultDebounce = 150 * time.Millisecond

// Watch runs an audit, then re-runs it whenever a config file in the
// extends chain (or a config file that would be discovered) changes.
// Every outcome, including errors, is handed to onReport; a failing run
// does not stop the watch. Watch returns when ctx is done.
//
// Watching uses OS notifications and therefore requires the auditor to read
// from the OS filesystem.
func (a *Auditor) Watch(ctx context.Context, onReport func(*Report, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	w := &watchSet{watcher: watcher, dirs: map[string]bool{}, files: map[string]bool{}}

	run := func() {
		report, err := a.Run(ctx)
		if ctx.Err() != nil {
			return
		}
		onReport(report, err)

		sources := failedSources(err)
		if report != nil {
			sources = report.ConfigSources
		}
		w.update(a.watchTargets(sources), a)
	}

	run()

	// Debounce timer
	var debounce *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !w.files[filepath.Clean(event.Name)] {
				continue
			}

			a.logger.Debug("config changed", "file", event.Name, "op", event.Op.String())
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.NewTimer(a.debounce)
			fire = debounce.C

		case <-fire:
			fire = nil
			run()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.logger.Warn("watcher error", "error", err)
		}
	}
}

// watchTargets lists the files whose change should trigger a re-run: every
// config the last run visited, every search place in the project
// root, and the explicit config path if one was given.
func (a *Auditor) watchTargets(sources []string) []string {
	targets := make([]string, 0, len(sources)+len(config.SearchPlaces)+1)
	targets = append(targets, sources...)
	for _, name := range config.SearchPlaces {
		targets = append(targets, filepath.Join(a.root, name))
	}
	if a.configPath != "" {
		path := a.configPath
		if !filepath.IsAbs(path) {
			path = filepath.Join(a.root, path)
		}
		targets = append(targets, path)
	}
	return targets
}

// failedSources lists the configs a failed run got to, including the one
// that broke, so that fixing any of them triggers a re-run.
func failedSources(err error) []string {
	var malformed *core.ConfigMalformedError
	if !errors.As(err, &malformed) {
		return nil
	}
	sources := append([]string(nil), malformed.Chain...)
	if filepath.IsAbs(malformed.Path) {
		sources = append(sources, malformed.Path)
	}
	return sources
}

// watchSet tracks watched directories and the files of interest within them.
// Directories are watched rather than files so that editors that replace
// files on save are still seen.
type watchSet struct {
	watcher *fsnotify.Watcher
	dirs    map[string]bool
	files   map[string]bool
}

func (w *watchSet) update(targets []string, a *Auditor) {
	for _, target := range targets {
		target = filepath.Clean(target)
		w.files[target] = true

		dir := filepath.Dir(target)
		if w.dirs[dir] {
			continue
		}
		if err := w.watcher.Add(dir); err != nil {
			a.logger.Debug("cannot watch directory", "dir", dir, "error", err)
			continue
		}
		w.dirs[dir] = true
	}
}
