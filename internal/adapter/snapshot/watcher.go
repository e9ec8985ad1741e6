package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"cmdref/internal/domain"
)

// LoadFunc receives each changed snapshot together with its fingerprint.
type LoadFunc func(snap *domain.IndexSnapshot, fingerprint string) error

// Watcher reloads a snapshot file whenever it changes on disk. Bursts of
// events within the debounce window collapse into one reload, and a reload
// whose contents hash to the last seen fingerprint is skipped.
type Watcher struct {
	path     string
	debounce time.Duration
	onLoad   LoadFunc
	logger   *slog.Logger
	last     string
}

func NewWatcher(path string, debounce time.Duration, onLoad LoadFunc, logger *slog.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		path:     abs,
		debounce: debounce,
		onLoad:   onLoad,
		logger:   logger,
	}, nil
}

// Seed records the fingerprint of the snapshot already being served.
func (w *Watcher) Seed(fingerprint string) {
	w.last = fingerprint
}

// Run watches until ctx is done. The parent directory is watched rather than
// the file so that editors replacing the file by rename are still seen.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	w.logger.Info("watching snapshot", "path", w.path, "debounce", w.debounce)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)

		case <-timer.C:
			if err := w.reload(); err != nil {
				w.logger.Error("snapshot reload failed", "path", w.path, "error", err)
			}
		}
	}
}

func (w *Watcher) reload() error {
	snap, fp, err := DecodeFile(w.path)
	if err != nil {
		return err
	}
	if fp == w.last {
		w.logger.Debug("snapshot unchanged", "fingerprint", fp)
		return nil
	}
	if err := w.onLoad(snap, fp); err != nil {
		return err
	}
	w.last = fp
	w.logger.Info("snapshot reloaded", "fingerprint", fp, "commands", len(snap.Commands))
	return nil
}
