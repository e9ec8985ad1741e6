package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cmdref/internal/domain"
)

func openStore(t *testing.T) *BoltStore {
	t.Helper()
	st, err := NewBoltStore(filepath.Join(t.TempDir(), "snapshot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func testSnapshot() *domain.IndexSnapshot {
	return &domain.IndexSnapshot{
		Commands: map[string]domain.CommandRecord{
			"ls.1":   {ID: "ls.1", Name: "ls", Section: 1, Title: "list directory contents", IsCommon: true, Keywords: []string{"directory"}},
			"grep.1": {ID: "grep.1", Name: "grep", Section: 1, Complexity: domain.ComplexityIntermediate},
		},
		InvertedIndex:   map[string][]string{"directory": {"ls.1"}, "search": {"grep.1"}},
		CategoryIndex:   map[string][]string{"User Commands": {"ls.1", "grep.1"}},
		ComplexityIndex: map[string][]string{"intermediate": {"grep.1"}},
	}
}

func TestBoltStore_RoundTrip(t *testing.T) {
	st := openStore(t)

	_, err := st.LoadSnapshot()
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = st.GetMeta()
	assert.ErrorIs(t, err, domain.ErrNotFound)

	now := time.Now().UTC().Truncate(time.Second)
	stored := 0
	require.NoError(t, st.PutSnapshot(testSnapshot(), domain.SnapshotMeta{
		Fingerprint: "abc",
		Source:      "index.json",
		ImportedAt:  now,
	}, func() { stored++ }))
	assert.Equal(t, 2, stored)

	got, err := st.LoadSnapshot()
	require.NoError(t, err)
	assert.Equal(t, testSnapshot(), got)

	meta, err := st.GetMeta()
	require.NoError(t, err)
	assert.Equal(t, "abc", meta.Fingerprint)
	assert.Equal(t, 2, meta.Commands)
	assert.Equal(t, 2, meta.Tokens)
	assert.Equal(t, CurrentSchemaVersion, meta.SchemaVersion)
	assert.True(t, now.Equal(meta.ImportedAt))

	rec, err := st.GetCommand("ls.1")
	require.NoError(t, err)
	assert.Equal(t, "ls", rec.Name)
	_, err = st.GetCommand("cat.1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBoltStore_PutReplaces(t *testing.T) {
	st := openStore(t)
	require.NoError(t, st.PutSnapshot(testSnapshot(), domain.SnapshotMeta{Fingerprint: "one"}, nil))

	next := &domain.IndexSnapshot{
		Commands:      map[string]domain.CommandRecord{"tar.1": {ID: "tar.1", Name: "tar", Section: 1}},
		InvertedIndex: map[string][]string{"archive": {"tar.1"}},
	}
	require.NoError(t, st.PutSnapshot(next, domain.SnapshotMeta{Fingerprint: "two"}, nil))

	got, err := st.LoadSnapshot()
	require.NoError(t, err)
	assert.Len(t, got.Commands, 1)
	assert.Equal(t, map[string][]string{"archive": {"tar.1"}}, got.InvertedIndex)
	assert.Empty(t, got.CategoryIndex)
	_, err = st.GetCommand("ls.1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBoltStore_Clear(t *testing.T) {
	st := openStore(t)
	require.NoError(t, st.Migrate())
	require.NoError(t, st.PutSnapshot(testSnapshot(), domain.SnapshotMeta{}, nil))
	require.NoError(t, st.Clear())

	_, err := st.LoadSnapshot()
	assert.ErrorIs(t, err, domain.ErrNotFound)

	v, err := st.GetSchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, v)
}

func TestBoltStore_Migrations(t *testing.T) {
	st := openStore(t)

	res, err := st.CheckMigration()
	require.NoError(t, err)
	assert.True(t, res.NeedsMigration)
	assert.Zero(t, res.OldVersion)

	require.NoError(t, st.Migrate())
	res, err = st.CheckMigration()
	require.NoError(t, err)
	assert.False(t, res.NeedsMigration)
	assert.False(t, res.NeedsRebuild)

	require.NoError(t, st.PutSnapshot(testSnapshot(), domain.SnapshotMeta{}, nil))
	require.NoError(t, st.setSchemaVersion(CurrentSchemaVersion+1))
	res, err = st.CheckMigration()
	require.NoError(t, err)
	assert.True(t, res.NeedsRebuild)

	require.NoError(t, st.Migrate())
	_, err = st.LoadSnapshot()
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
