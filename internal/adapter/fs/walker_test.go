package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
}

func TestWalker_IncludesAndExcludes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "index.json"))
	writeFile(t, filepath.Join(root, "man", "section1.json"))
	writeFile(t, filepath.Join(root, "man", "notes.txt"))
	writeFile(t, filepath.Join(root, "node_modules", "pkg", "index.json"))
	writeFile(t, filepath.Join(root, ".cmdref", "cache.json"))

	w := NewWalker([]string{"**/*.json"}, []string{"**/node_modules/**", ".cmdref/**"})
	files, err := w.Walk(root)
	require.NoError(t, err)

	var rel []string
	for _, f := range files {
		r, err := filepath.Rel(root, f.Path)
		require.NoError(t, err)
		rel = append(rel, filepath.ToSlash(r))
		assert.Positive(t, f.Size)
		assert.NotZero(t, f.ModTime)
	}
	assert.Equal(t, []string{"index.json", "man/section1.json"}, rel)
}

func TestWalker_SingleFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "snapshot.data")
	writeFile(t, path)

	files, err := NewWalker(nil, nil).Walk(path)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, path, files[0].Path)
}

func TestWalker_MissingRoot(t *testing.T) {
	_, err := NewWalker(nil, nil).Walk(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
