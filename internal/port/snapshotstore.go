package port

import "cmdref/internal/domain"

// SnapshotStore persists the last imported snapshot for host programs. The
// engine itself never reads from it.
type SnapshotStore interface {
	// PutSnapshot replaces whatever was stored before. progress may be nil.
	PutSnapshot(snap *domain.IndexSnapshot, meta domain.SnapshotMeta, progress func()) error

	LoadSnapshot() (*domain.IndexSnapshot, error)

	GetCommand(id string) (domain.CommandRecord, error)

	GetMeta() (domain.SnapshotMeta, error)

	Clear() error

	Close() error
}
