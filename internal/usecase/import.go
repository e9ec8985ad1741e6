package usecase

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cmdref/internal/adapter/snapshot"
	"cmdref/internal/domain"
	"cmdref/internal/port"
)

// ImportUseCase moves snapshot files into the host's store and loads
// stored snapshots back into an engine.
type ImportUseCase struct {
	store    port.SnapshotStore
	walker   port.FileWalker
	engine   port.Loader
	validate bool
	logger   *slog.Logger
}

// NewImportUseCase creates a new import use case. With validate set, every
// snapshot is loaded into engine before it is stored, so a store never
// holds a snapshot the engine would reject.
func NewImportUseCase(
	store port.SnapshotStore,
	walker port.FileWalker,
	engine port.Loader,
	validate bool,
	logger *slog.Logger,
) *ImportUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImportUseCase{
		store:    store,
		walker:   walker,
		engine:   engine,
		validate: validate,
		logger:   logger,
	}
}

// ImportResult contains the results of an import.
type ImportResult struct {
	Source     string
	Meta       domain.SnapshotMeta
	Unchanged  bool
	Candidates int
}

// Progress is told the command count once, then called per stored command.
type Progress interface {
	Start(total int)
	Step()
}

// Import finds the newest snapshot under path and stores it. A snapshot
// whose fingerprint matches the stored one is skipped unless force is set.
func (u *ImportUseCase) Import(path string, force bool, progress Progress) (*ImportResult, error) {
	files, err := u.walker.Walk(path)
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", path, err)
	}
	latest, ok := snapshot.Latest(files)
	if !ok {
		return nil, fmt.Errorf("no snapshot files under %s", path)
	}

	snap, fp, err := snapshot.DecodeFile(latest.Path)
	if err != nil {
		return nil, err
	}
	return u.ImportSnapshot(snap, fp, latest.Path, force, progress, len(files))
}

// ImportSnapshot stores an already decoded snapshot.
func (u *ImportUseCase) ImportSnapshot(snap *domain.IndexSnapshot, fingerprint, source string, force bool, progress Progress, candidates int) (*ImportResult, error) {
	result := &ImportResult{Source: source, Candidates: candidates}

	if !force {
		prev, err := u.store.GetMeta()
		switch {
		case err == nil && prev.Fingerprint == fingerprint:
			u.logger.Info("snapshot unchanged", "source", source, "fingerprint", fingerprint)
			result.Meta = prev
			result.Unchanged = true
			return result, nil
		case err != nil && !errors.Is(err, domain.ErrNotFound):
			return nil, fmt.Errorf("failed to read stored meta: %w", err)
		}
	}

	if u.validate {
		if err := u.engine.Initialize(snap); err != nil {
			return nil, err
		}
	}

	meta := domain.SnapshotMeta{
		Fingerprint: fingerprint,
		Source:      source,
		ImportedAt:  time.Now().UTC(),
	}
	var step func()
	if progress != nil {
		progress.Start(len(snap.Commands))
		step = progress.Step
	}
	if err := u.store.PutSnapshot(snap, meta, step); err != nil {
		return nil, fmt.Errorf("failed to store snapshot: %w", err)
	}

	stored, err := u.store.GetMeta()
	if err != nil {
		return nil, err
	}
	result.Meta = stored
	u.logger.Info("snapshot imported",
		"source", source,
		"fingerprint", fingerprint,
		"commands", stored.Commands)
	return result, nil
}

// Restore loads the stored snapshot into the engine.
func (u *ImportUseCase) Restore() (domain.SnapshotMeta, error) {
	meta, err := u.store.GetMeta()
	if err != nil {
		return domain.SnapshotMeta{}, err
	}
	snap, err := u.store.LoadSnapshot()
	if err != nil {
		return domain.SnapshotMeta{}, err
	}
	if err := u.engine.Initialize(snap); err != nil {
		return domain.SnapshotMeta{}, err
	}
	return meta, nil
}
