package memstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cmdref/internal/domain"
	"cmdref/internal/port"
)

var _ port.SnapshotStore = (*MemoryStore)(nil)

func TestMemoryStore_RoundTrip(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.GetMeta()
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.LoadSnapshot()
	assert.ErrorIs(t, err, domain.ErrNotFound)

	snap := &domain.IndexSnapshot{
		Commands: map[string]domain.CommandRecord{
			"ls.1": {ID: "ls.1", Name: "ls", Section: 1},
		},
		InvertedIndex: map[string][]string{"ls": {"ls.1"}},
	}
	steps := 0
	require.NoError(t, s.PutSnapshot(snap, domain.SnapshotMeta{Fingerprint: "abc"}, func() { steps++ }))
	assert.Equal(t, 1, steps)

	meta, err := s.GetMeta()
	require.NoError(t, err)
	assert.Equal(t, "abc", meta.Fingerprint)
	assert.Equal(t, 1, meta.Commands)
	assert.Equal(t, 1, meta.Tokens)

	rec, err := s.GetCommand("ls.1")
	require.NoError(t, err)
	assert.Equal(t, "ls", rec.Name)
	_, err = s.GetCommand("cat.1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, s.Clear())
	_, err = s.LoadSnapshot()
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryStore_RejectsNil(t *testing.T) {
	err := NewMemoryStore().PutSnapshot(nil, domain.SnapshotMeta{}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidSnapshot)
}
