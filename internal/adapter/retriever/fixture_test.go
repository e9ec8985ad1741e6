package retriever

import (
	"testing"

	"github.com/stretchr/testify/require"

	"cmdref/config"
	"cmdref/internal/adapter/analyzer"
	"cmdref/internal/domain"
)

func record(name string, section int, title string, common bool, keywords ...string) domain.CommandRecord {
	return domain.CommandRecord{
		ID:       domain.CommandID(name, section),
		Name:     name,
		Section:  section,
		Title:    title,
		IsCommon: common,
		Keywords: keywords,
	}
}

func snapshotOf(recs ...domain.CommandRecord) *domain.IndexSnapshot {
	snap := &domain.IndexSnapshot{
		Commands:        make(map[string]domain.CommandRecord, len(recs)),
		InvertedIndex:   map[string][]string{},
		CategoryIndex:   map[string][]string{},
		ComplexityIndex: map[string][]string{},
	}
	for _, r := range recs {
		snap.Commands[r.ID] = r
	}
	return snap
}

// sampleSnapshot is a small manual-page corpus shared by the retriever tests.
func sampleSnapshot() *domain.IndexSnapshot {
	ls := record("ls", 1, "list directory contents", true, "list", "directory", "files")
	ls.Description = "List information about the FILEs."
	grep := record("grep", 1, "print lines that match patterns", true, "search", "pattern", "text")
	grep.Description = "Search for PATTERNS in each FILE."
	find := record("find", 1, "search for files in a directory hierarchy", true, "search", "files", "directory")
	find.Description = "Walk a file hierarchy."
	lsblk := record("lsblk", 8, "list block devices", false, "block", "devices")
	egrep := record("egrep", 1, "print lines that match patterns", false, "search", "pattern")

	snap := snapshotOf(ls, grep, find, lsblk, egrep)
	snap.InvertedIndex = map[string][]string{
		"search":    {"grep.1", "find.1", "egrep.1"},
		"files":     {"ls.1", "find.1", "grep.1"},
		"directory": {"ls.1", "find.1"},
		"list":      {"ls.1", "lsblk.8"},
		"block":     {"lsblk.8"},
		"pattern":   {"grep.1", "egrep.1"},
		"lines":     {"grep.1", "egrep.1"},
	}
	snap.CategoryIndex = map[string][]string{
		"User Commands":         {"ls.1", "grep.1", "find.1", "egrep.1"},
		"System Administration": {"lsblk.8"},
	}
	snap.ComplexityIndex = map[string][]string{
		"basic":        {"ls.1"},
		"intermediate": {"grep.1", "find.1", "egrep.1"},
		"advanced":     {"lsblk.8"},
	}
	return snap
}

func newTestPipeline() *Pipeline {
	cfg := config.DefaultConfig().Search
	return NewPipeline(cfg, analyzer.NewTokenizer(cfg.Stemming))
}

func buildIndex(t *testing.T, p *Pipeline, snap *domain.IndexSnapshot) *Index {
	t.Helper()
	idx, err := BuildIndex(snap, p.Tokenizer(), 1)
	require.NoError(t, err)
	return idx
}

func resultIDs(results []domain.SearchResult) []string {
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}
	return ids
}

func relatedIDs(results []domain.RelatedCommand) []string {
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}
	return ids
}
