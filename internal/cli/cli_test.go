package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cmdref/internal/domain"
)

const cliSnapshot = `{
  "commands": {
    "ls.1": {"id": "ls.1", "name": "ls", "section": 1, "title": "list directory contents", "category": "files", "isCommon": true, "keywords": ["directory"]},
    "lsblk.8": {"id": "lsblk.8", "name": "lsblk", "section": 8, "title": "list block devices", "category": "system"},
    "dir.1": {"id": "dir.1", "name": "dir", "section": 1, "title": "list directory contents briefly", "category": "files", "keywords": ["directory"]}
  },
  "invertedIndex": {"list": ["ls.1", "lsblk.8", "dir.1"], "directory": ["ls.1", "dir.1"], "block": ["lsblk.8"]}
}`

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestCLI_LoadThenQuery(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.json")
	require.NoError(t, os.WriteFile(path, []byte(cliSnapshot), 0644))

	out := run(t, "load", path, "--dir", dir)
	assert.Contains(t, out, "Commands:    3")

	out = run(t, "load", path, "--dir", dir)
	assert.Contains(t, out, "Snapshot unchanged")

	var results []domain.SearchResult
	out = run(t, "search", "-q", "ls", "--json", "--dir", dir)
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.NotEmpty(t, results)
	assert.Equal(t, "ls.1", results[0].ID)
	assert.True(t, results[0].IsExactMatch)

	var names []string
	out = run(t, "suggest", "ls", "--json", "--dir", dir)
	require.NoError(t, json.Unmarshal([]byte(out), &names))
	assert.Equal(t, []string{"ls", "lsblk"}, names)

	var related []domain.RelatedCommand
	out = run(t, "related", "ls.1", "--json", "--dir", dir)
	require.NoError(t, json.Unmarshal([]byte(out), &related))
	require.NotEmpty(t, related)
	assert.Equal(t, "dir.1", related[0].ID)

	relatedJSON = false
	out = run(t, "related", "ls.1", "--dir", dir)
	assert.Contains(t, out, "Related to ls(1): list directory contents")
	assert.Contains(t, out, "dir(1)")

	out = run(t, "related", "nope.1", "--dir", dir)
	assert.Contains(t, out, "No command nope.1")

	out = run(t, "stats", "--dir", dir)
	assert.Contains(t, out, "Commands:    3")
}

func TestCLI_SearchWithoutStore(t *testing.T) {
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs([]string{"search", "-q", "ls", "--dir", t.TempDir()})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cmdref load")
}
