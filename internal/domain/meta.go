package domain

import "time"

// SnapshotMeta describes a persisted snapshot.
type SnapshotMeta struct {
	Fingerprint   string    `json:"fingerprint"`
	Source        string    `json:"source,omitempty"`
	Commands      int       `json:"commands"`
	Tokens        int       `json:"tokens"`
	ImportedAt    time.Time `json:"importedAt"`
	SchemaVersion int       `json:"schemaVersion"`
}
