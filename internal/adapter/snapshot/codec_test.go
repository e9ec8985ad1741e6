package snapshot

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cmdref/internal/domain"
	"cmdref/internal/port"
)

const sampleJSON = `{
  "commands": {
    "ls.1": {"id": "ls.1", "name": "ls", "section": 1, "title": "list directory contents", "isCommon": true, "keywords": ["directory"]},
    "grep.1": {"id": "grep.1", "name": "grep", "section": 1, "complexity": "intermediate", "isCommon": true}
  },
  "invertedIndex": {"directory": ["ls.1"], "search": ["grep.1"]},
  "categoryIndex": {"User Commands": ["ls.1", "grep.1"]}
}`

func TestDecode(t *testing.T) {
	snap, err := Decode(strings.NewReader(sampleJSON))
	require.NoError(t, err)

	require.Len(t, snap.Commands, 2)
	ls := snap.Commands["ls.1"]
	assert.Equal(t, "ls", ls.Name)
	assert.True(t, ls.IsCommon)
	assert.Equal(t, []string{"directory"}, ls.Keywords)
	assert.Equal(t, domain.ComplexityIntermediate, snap.Commands["grep.1"].Complexity)
	assert.Equal(t, []string{"grep.1"}, snap.InvertedIndex["search"])
	assert.NotNil(t, snap.ComplexityIndex)
}

func TestDecode_Invalid(t *testing.T) {
	for _, in := range []string{``, `[]`, `{"commands": 3}`, `{}`, `{"commands": {"ls.1": {"section": "one"}}}`} {
		_, err := Decode(strings.NewReader(in))
		assert.ErrorIs(t, err, domain.ErrInvalidSnapshot, "input %q", in)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	snap, err := Decode(strings.NewReader(sampleJSON))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, snap))

	again, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, snap, again)
}

func TestDecodeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleJSON), 0o644))

	snap, fp, err := DecodeFile(path)
	require.NoError(t, err)
	assert.Len(t, snap.Commands, 2)
	assert.Equal(t, Fingerprint([]byte(sampleJSON)), fp)

	_, _, err = DecodeFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]byte(sampleJSON))
	assert.Len(t, a, 16)
	assert.Equal(t, a, Fingerprint([]byte(sampleJSON)))
	assert.NotEqual(t, a, Fingerprint([]byte(sampleJSON+" ")))
}

func TestLatest(t *testing.T) {
	_, ok := Latest(nil)
	assert.False(t, ok)

	got, ok := Latest([]port.FileInfo{
		{Path: "/b.json", ModTime: 10},
		{Path: "/c.json", ModTime: 30},
		{Path: "/a.json", ModTime: 30},
	})
	require.True(t, ok)
	assert.Equal(t, "/a.json", got.Path)
}
