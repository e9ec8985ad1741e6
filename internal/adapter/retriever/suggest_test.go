package retriever

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggest(t *testing.T) {
	p := newTestPipeline()
	idx := buildIndex(t, p, sampleSnapshot())

	tests := []struct {
		prefix string
		limit  int
		want   []string
	}{
		{"gr", 0, []string{"grep"}},
		{"ls", 0, []string{"ls", "lsblk"}},
		{" LS", 0, []string{"ls", "lsblk"}},
		{"ls", 1, []string{"ls"}},
		{"eg", 0, []string{"egrep"}},
		{"zz", 0, []string{}},
		{"a", 0, []string{}},
		{"", 0, []string{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, p.Suggest(idx, tt.prefix, tt.limit), "prefix %q", tt.prefix)
	}
}

func TestSuggest_Order(t *testing.T) {
	p := newTestPipeline()
	idx := buildIndex(t, p, snapshotOf(
		record("tac", 1, "", false),
		record("tail", 1, "", true),
		record("tar", 1, "", true),
		record("tabs", 1, "", false),
		record("ta", 1, "", false),
	))

	assert.Equal(t, []string{"ta", "tar", "tail", "tac", "tabs"}, p.Suggest(idx, "ta", 0))
	assert.Equal(t, []string{"ta", "tar", "tail"}, p.Suggest(idx, "ta", 3))
}

func TestSuggest_DistinctNames(t *testing.T) {
	p := newTestPipeline()
	idx := buildIndex(t, p, snapshotOf(
		record("printf", 1, "", true),
		record("printf", 3, "", false),
		record("Printenv", 1, "", false),
	))

	assert.Equal(t, []string{"printf", "Printenv"}, p.Suggest(idx, "pri", 0))
}

func TestSuggest_DefaultLimit(t *testing.T) {
	p := newTestPipeline()
	snap := snapshotOf()
	for i := 0; i < 12; i++ {
		r := record(fmt.Sprintf("cmd%02d", i), 1, "", false)
		snap.Commands[r.ID] = r
	}
	idx := buildIndex(t, p, snap)

	got := p.Suggest(idx, "cm", 0)
	assert.Len(t, got, 8)
	assert.Equal(t, "cmd00", got[0])
	assert.Len(t, p.Suggest(idx, "cm", 20), 12)
}

func TestSuggest_NeverOutsidePrefix(t *testing.T) {
	p := newTestPipeline()
	idx := buildIndex(t, p, sampleSnapshot())

	for _, prefix := range []string{"gr", "GR", "ls", "Eg", "fi", "li", "se"} {
		for _, s := range p.Suggest(idx, prefix, 0) {
			assert.True(t, strings.HasPrefix(strings.ToLower(s), strings.ToLower(prefix)), "%q for %q", s, prefix)
		}
	}
}

func TestSuggest_NilIndex(t *testing.T) {
	got := newTestPipeline().Suggest(nil, "gr", 0)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
