// Package watch re-runs a rename job in preview mode whenever the
// input folder changes, so a terminal can show live proposals while
// files arrive. It never applies renames.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/batchrename/internal/pipeline"
	"git.home.luguber.info/inful/batchrename/internal/rename"
)

// Watcher monitors a job's input folder and refreshes its preview.
type Watcher struct {
	cfg       *rename.Config
	processor *pipeline.Processor
	watcher   *fsnotify.Watcher
	debounce  time.Duration

	// OnResult receives each refreshed preview. Defaults to a log line.
	OnResult func(*rename.Result)
}

// New creates a watcher for the given job. The job is always run in
// preview mode regardless of its preview flag.
func New(cfg *rename.Config, processor *pipeline.Processor) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	previewCfg := *cfg
	previewCfg.Preview = true

	return &Watcher{
		cfg:       &previewCfg,
		processor: processor,
		watcher:   fsw,
		debounce:  2 * time.Second,
	}, nil
}

// Run watches until the context is cancelled. An initial preview runs
// before the first filesystem event.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.watcher.Add(w.cfg.InputFolder); err != nil {
		return fmt.Errorf("watch input folder %s: %w", w.cfg.InputFolder, err)
	}
	defer w.watcher.Close()

	slog.Info("watching input folder", "folder", w.cfg.InputFolder)
	w.refresh()

	var timer *time.Timer
	pending := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			// Debounce bursts of events from bulk file drops.
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", "error", err)
		case <-pending:
			w.refresh()
		}
	}
}

func relevant(event fsnotify.Event) bool {
	return event.Op.Has(fsnotify.Create) ||
		event.Op.Has(fsnotify.Rename) ||
		event.Op.Has(fsnotify.Remove) ||
		event.Op.Has(fsnotify.Write)
}

func (w *Watcher) refresh() {
	result, err := w.processor.Process(w.cfg)
	if err != nil {
		slog.Error("preview refresh failed", "error", err)
		return
	}
	if w.OnResult != nil {
		w.OnResult(result)
		return
	}
	slog.Info("preview refreshed",
		"files_found", result.FilesFound,
		"files_to_rename", result.FilesToRename,
		"collisions", result.Collisions)
}
