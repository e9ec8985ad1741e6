package memstore

import (
	"fmt"
	"sync"

	"cmdref/internal/domain"
)

// MemoryStore keeps the last imported snapshot in memory. It serves hosts
// without a filesystem, such as the wasm build.
type MemoryStore struct {
	mu   sync.RWMutex
	snap *domain.IndexSnapshot
	meta domain.SnapshotMeta
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) PutSnapshot(snap *domain.IndexSnapshot, meta domain.SnapshotMeta, progress func()) error {
	if snap == nil {
		return fmt.Errorf("%w: nil snapshot", domain.ErrInvalidSnapshot)
	}
	meta.Commands = len(snap.Commands)
	meta.Tokens = len(snap.InvertedIndex)

	if progress != nil {
		for range snap.Commands {
			progress()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
	s.meta = meta
	return nil
}

func (s *MemoryStore) LoadSnapshot() (*domain.IndexSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return nil, fmt.Errorf("snapshot: %w", domain.ErrNotFound)
	}
	return s.snap, nil
}

func (s *MemoryStore) GetCommand(id string) (domain.CommandRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap != nil {
		if rec, ok := s.snap.Commands[id]; ok {
			return rec, nil
		}
	}
	return domain.CommandRecord{}, fmt.Errorf("command %q: %w", id, domain.ErrNotFound)
}

func (s *MemoryStore) GetMeta() (domain.SnapshotMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return domain.SnapshotMeta{}, fmt.Errorf("snapshot meta: %w", domain.ErrNotFound)
	}
	return s.meta, nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = nil
	s.meta = domain.SnapshotMeta{}
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
