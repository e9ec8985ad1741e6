package usecase

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cmdref/internal/adapter/fs"
	"cmdref/internal/adapter/snapshot"
	"cmdref/internal/adapter/store"
	"cmdref/internal/domain"
	"cmdref/internal/logging"
)

type countingProgress struct {
	total, steps int
}

func (p *countingProgress) Start(total int) { p.total = total }
func (p *countingProgress) Step()           { p.steps++ }

func writeSnapshot(t *testing.T, path string, snap *domain.IndexSnapshot) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, snapshot.Encode(&buf, snap))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func newImporter(t *testing.T, validate bool) (*ImportUseCase, *Engine, *store.BoltStore) {
	t.Helper()
	st, err := store.NewBoltStore(filepath.Join(t.TempDir(), "snapshot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	engine := newEngine()
	walker := fs.NewWalker([]string{"**/*.json"}, nil)
	return NewImportUseCase(st, walker, engine, validate, logging.Discard()), engine, st
}

func TestImport_NewestFileWins(t *testing.T) {
	dir := t.TempDir()
	oldPath := filepath.Join(dir, "old.json")
	newPath := filepath.Join(dir, "nested", "new.json")
	writeSnapshot(t, oldPath, coreutilsSnapshot())
	writeSnapshot(t, newPath, archiveSnapshot())
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(oldPath, past, past))

	uc, engine, st := newImporter(t, true)
	progress := &countingProgress{}
	res, err := uc.Import(dir, false, progress)
	require.NoError(t, err)

	assert.Equal(t, newPath, res.Source)
	assert.Equal(t, 2, res.Candidates)
	assert.False(t, res.Unchanged)
	assert.Equal(t, 2, res.Meta.Commands)
	assert.Equal(t, 2, progress.total)
	assert.Equal(t, 2, progress.steps)
	assert.True(t, engine.Ready())

	rec, err := st.GetCommand("tar.1")
	require.NoError(t, err)
	assert.Equal(t, "tar", rec.Name)
}

func TestImport_SkipsUnchanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	writeSnapshot(t, path, coreutilsSnapshot())

	uc, _, _ := newImporter(t, false)
	first, err := uc.Import(path, false, nil)
	require.NoError(t, err)

	again, err := uc.Import(path, false, nil)
	require.NoError(t, err)
	assert.True(t, again.Unchanged)
	assert.Equal(t, first.Meta.Fingerprint, again.Meta.Fingerprint)

	forced, err := uc.Import(path, true, nil)
	require.NoError(t, err)
	assert.False(t, forced.Unchanged)
}

func TestImport_RejectsInvalidSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	bad := coreutilsSnapshot()
	bad.InvertedIndex["ghost"] = []string{"ghost.1"}
	writeSnapshot(t, path, bad)

	uc, _, st := newImporter(t, true)
	_, err := uc.Import(path, false, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidSnapshot)

	_, err = st.GetMeta()
	assert.ErrorIs(t, err, domain.ErrNotFound, "rejected snapshot must not be stored")
}

func TestImport_NoFiles(t *testing.T) {
	uc, _, _ := newImporter(t, true)
	_, err := uc.Import(t.TempDir(), false, nil)
	assert.Error(t, err)
}

func TestRestore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	writeSnapshot(t, path, coreutilsSnapshot())

	uc, _, st := newImporter(t, false)
	_, err := uc.Restore()
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.Import(path, false, nil)
	require.NoError(t, err)

	fresh := newEngine()
	restore := NewImportUseCase(st, nil, fresh, false, logging.Discard())
	meta, err := restore.Restore()
	require.NoError(t, err)
	assert.Equal(t, 3, meta.Commands)
	assert.Equal(t, []string{"ls.1"}, ids(fresh.Search(domain.SearchOptions{Query: "ls"})))
}
