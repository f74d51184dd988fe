// ============================================================================
// rungc - Ladder Logic Compiler
// ============================================================================
//
// Package:     watch
// Description: Recompiles a source file whenever it changes on disk
// Author:      Mike Stoffels
// Created:     2026-10-14
// License:     MIT
// ============================================================================

package watch

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	mdwlog "github.com/msto63/rungc/foundation/core/log"
)

// DefaultInterval is the debounce and polling interval
const DefaultInterval = time.Second

// Watcher calls OnChange once at start and again after every change of Path
type Watcher struct {
	Path     string
	Interval time.Duration
	OnChange func(ctx context.Context) error
	OnError  func(err error)
	Logger   *mdwlog.Logger
}

// Run blocks until ctx is cancelled. Errors from OnChange are reported to
// OnError and watching continues.
func (w *Watcher) Run(ctx context.Context) error {
	if w.Interval <= 0 {
		w.Interval = DefaultInterval
	}
	if w.Logger == nil {
		w.Logger = mdwlog.GetDefault()
	}
	path, err := filepath.Abs(w.Path)
	if err != nil {
		return err
	}

	w.change(ctx)

	notifier, err := fsnotify.NewWatcher()
	if err != nil {
		w.Logger.WarnWithErr("File events unavailable, polling", err)
		return w.poll(ctx, path)
	}
	defer notifier.Close()

	// Editors often replace the file, so the directory is watched
	if err := notifier.Add(filepath.Dir(path)); err != nil {
		w.Logger.WarnWithErr("File events unavailable, polling", err)
		return w.poll(ctx, path)
	}

	w.Logger.Info("Watching for changes", mdwlog.Fields{"path": path, "interval": w.Interval.String()})

	var (
		debounce *time.Timer
		fire     <-chan time.Time
	)
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-notifier.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path || !relevant(event.Op) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.NewTimer(w.Interval)
			fire = debounce.C
		case <-fire:
			fire = nil
			w.change(ctx)
		case err, ok := <-notifier.Errors:
			if !ok {
				return nil
			}
			w.report(err)
		}
	}
}

func relevant(op fsnotify.Op) bool {
	return op.Has(fsnotify.Write) || op.Has(fsnotify.Create) || op.Has(fsnotify.Rename)
}

// poll compares modification time and size every interval
func (w *Watcher) poll(ctx context.Context, path string) error {
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	last := stamp(path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			current := stamp(path)
			if current == last {
				continue
			}
			last = current
			w.change(ctx)
		}
	}
}

type fileStamp struct {
	modTime time.Time
	size    int64
	exists  bool
}

func stamp(path string) fileStamp {
	info, err := os.Stat(path)
	if err != nil {
		return fileStamp{}
	}
	return fileStamp{modTime: info.ModTime(), size: info.Size(), exists: true}
}

func (w *Watcher) change(ctx context.Context) {
	if w.OnChange == nil || ctx.Err() != nil {
		return
	}
	if err := w.OnChange(ctx); err != nil {
		w.report(err)
	}
}

func (w *Watcher) report(err error) {
	if w.OnError != nil {
		w.OnError(err)
		return
	}
	w.Logger.LogError(err)
}
