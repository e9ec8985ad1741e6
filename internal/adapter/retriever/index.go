package retriever

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"unicode/utf8"

	"cmdref/internal/adapter/analyzer"
	"cmdref/internal/domain"
)

type field int

const (
	fieldName field = iota
	fieldTitle
	fieldDescription
	fieldKeywords
	fieldContent
)

var fieldNames = [...]string{"name", "title", "description", "keywords", "content"}

func (f field) String() string {
	return fieldNames[f]
}

// entry is a record plus everything derived from it at load time.
type entry struct {
	rec        domain.CommandRecord
	norm       string
	normLen    int
	category   string
	complexity string
	fields     [fieldContent]map[string]struct{}
	keywords   map[string]struct{}
	tokens     []string // inverted-index keys listing this record
}

// Index is an immutable, query-ready view of one snapshot. Records are
// addressed by ordinal; ordinals follow ascending id order.
type Index struct {
	entries      []entry
	byID         map[string]int
	byName       map[string][]int
	names        []string // distinct normalized names, sorted
	postings     map[string][]int
	keywords     map[string][]int
	categories   map[string][]int
	complexities map[string][]int
	generation   uint64
}

// Normalize trims and lowercases s for matching.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// BuildIndex validates snap and derives the lookup structures. Any contract
// violation by the index pipeline is reported as domain.ErrInvalidSnapshot.
func BuildIndex(snap *domain.IndexSnapshot, tok *analyzer.Tokenizer, generation uint64) (*Index, error) {
	if snap == nil {
		return nil, fmt.Errorf("%w: nil snapshot", domain.ErrInvalidSnapshot)
	}

	ids := make([]string, 0, len(snap.Commands))
	for key, rec := range snap.Commands {
		if err := validateRecord(key, rec); err != nil {
			return nil, err
		}
		ids = append(ids, key)
	}
	sort.Strings(ids)

	idx := &Index{
		entries:      make([]entry, len(ids)),
		byID:         make(map[string]int, len(ids)),
		byName:       make(map[string][]int),
		postings:     make(map[string][]int, len(snap.InvertedIndex)),
		keywords:     make(map[string][]int),
		categories:   make(map[string][]int),
		complexities: make(map[string][]int),
		generation:   generation,
	}

	for ord, id := range ids {
		rec := snap.Commands[id]
		rec.Keywords = slices.Clone(rec.Keywords)
		e := entry{
			rec:        rec,
			norm:       Normalize(rec.Name),
			category:   rec.Category,
			complexity: string(rec.Complexity),
			keywords:   make(map[string]struct{}, len(rec.Keywords)),
		}
		e.normLen = utf8.RuneCountInString(e.norm)
		e.fields[fieldName] = tokenSet(tok.Words(rec.Name), e.norm)
		e.fields[fieldTitle] = tokenSet(tok.Words(rec.Title))
		e.fields[fieldDescription] = tokenSet(tok.Words(rec.Description))
		e.fields[fieldKeywords] = make(map[string]struct{})
		for _, kw := range rec.Keywords {
			nk := Normalize(kw)
			if nk == "" {
				continue
			}
			e.keywords[nk] = struct{}{}
			e.fields[fieldKeywords][nk] = struct{}{}
			for _, w := range tok.Words(nk) {
				e.fields[fieldKeywords][w] = struct{}{}
			}
		}

		idx.entries[ord] = e
		idx.byID[id] = ord
		idx.byName[e.norm] = append(idx.byName[e.norm], ord)
		for kw := range e.keywords {
			idx.keywords[kw] = append(idx.keywords[kw], ord)
		}
	}

	idx.names = make([]string, 0, len(idx.byName))
	for name := range idx.byName {
		idx.names = append(idx.names, name)
	}
	sort.Strings(idx.names)

	for token, list := range snap.InvertedIndex {
		key := Normalize(token)
		if key == "" {
			continue
		}
		ords, err := idx.resolve("invertedIndex", token, list)
		if err != nil {
			return nil, err
		}
		idx.postings[key] = mergeOrdinals(idx.postings[key], ords)
	}
	for key, ords := range idx.postings {
		for _, ord := range ords {
			idx.entries[ord].tokens = append(idx.entries[ord].tokens, key)
		}
	}
	for ord := range idx.entries {
		sort.Strings(idx.entries[ord].tokens)
	}

	if err := idx.applyLabels("categoryIndex", snap.CategoryIndex, func(e *entry) *string { return &e.category }); err != nil {
		return nil, err
	}
	if err := validateComplexityLabels(snap.ComplexityIndex); err != nil {
		return nil, err
	}
	if err := idx.applyLabels("complexityIndex", snap.ComplexityIndex, func(e *entry) *string { return &e.complexity }); err != nil {
		return nil, err
	}

	// ordinals ascend, so the label lists come out sorted
	for ord, e := range idx.entries {
		if e.category != "" {
			idx.categories[e.category] = append(idx.categories[e.category], ord)
		}
		if e.complexity != "" {
			idx.complexities[e.complexity] = append(idx.complexities[e.complexity], ord)
		}
	}

	return idx, nil
}

func validateRecord(key string, rec domain.CommandRecord) error {
	if strings.TrimSpace(rec.Name) == "" {
		return fmt.Errorf("%w: command %q has an empty name", domain.ErrInvalidSnapshot, key)
	}
	if rec.Section <= 0 {
		return fmt.Errorf("%w: command %q has section %d", domain.ErrInvalidSnapshot, key, rec.Section)
	}
	if rec.ID != key {
		return fmt.Errorf("%w: command keyed %q carries id %q", domain.ErrInvalidSnapshot, key, rec.ID)
	}
	if want := domain.CommandID(rec.Name, rec.Section); rec.ID != want {
		return fmt.Errorf("%w: command id %q does not match %q", domain.ErrInvalidSnapshot, rec.ID, want)
	}
	if !rec.Complexity.Valid() {
		return fmt.Errorf("%w: command %q has unknown complexity %q", domain.ErrInvalidSnapshot, key, rec.Complexity)
	}
	return nil
}

// resolve maps a set of ids to sorted, deduplicated ordinals.
func (idx *Index) resolve(indexName, key string, ids []string) ([]int, error) {
	ords := make([]int, 0, len(ids))
	for _, id := range ids {
		ord, ok := idx.byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s[%q] references unknown command %q", domain.ErrInvalidSnapshot, indexName, key, id)
		}
		ords = append(ords, ord)
	}
	return mergeOrdinals(nil, ords), nil
}

// applyLabels fills empty record labels from an auxiliary index and rejects
// records the index files under a label that contradicts their own.
func (idx *Index) applyLabels(indexName string, labels map[string][]string, slot func(*entry) *string) error {
	for label, ids := range labels {
		ords, err := idx.resolve(indexName, label, ids)
		if err != nil {
			return err
		}
		for _, ord := range ords {
			cur := slot(&idx.entries[ord])
			switch *cur {
			case "":
				*cur = label
			case label:
			default:
				return fmt.Errorf("%w: %s lists %q under %q but the record says %q",
					domain.ErrInvalidSnapshot, indexName, idx.entries[ord].rec.ID, label, *cur)
			}
		}
	}
	return nil
}

func validateComplexityLabels(labels map[string][]string) error {
	for label := range labels {
		if label == "" || !domain.Complexity(label).Valid() {
			return fmt.Errorf("%w: complexityIndex has unknown level %q", domain.ErrInvalidSnapshot, label)
		}
	}
	return nil
}

// Len returns the number of records.
func (idx *Index) Len() int {
	return len(idx.entries)
}

func (idx *Index) Generation() uint64 {
	return idx.generation
}

// Record returns the record stored under id.
func (idx *Index) Record(id string) (domain.CommandRecord, bool) {
	ord, ok := idx.byID[id]
	if !ok {
		return domain.CommandRecord{}, false
	}
	rec := idx.entries[ord].rec
	rec.Keywords = slices.Clone(rec.Keywords)
	return rec, true
}

// Stats summarizes the index.
func (idx *Index) Stats() domain.Stats {
	return domain.Stats{
		Commands:     len(idx.entries),
		Names:        len(idx.names),
		Tokens:       len(idx.postings),
		Categories:   len(idx.categories),
		ByComplexity: idx.CountByComplexity(),
		Generation:   idx.generation,
	}
}

// Categories returns the category labels in sorted order.
func (idx *Index) Categories() []string {
	out := make([]string, 0, len(idx.categories))
	for c := range idx.categories {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// CountByComplexity reports how many records carry each complexity level.
func (idx *Index) CountByComplexity() map[domain.Complexity]int {
	out := make(map[domain.Complexity]int, len(idx.complexities))
	for c, ords := range idx.complexities {
		out[domain.Complexity(c)] = len(ords)
	}
	return out
}

// namesWithPrefix returns the sorted distinct names starting with prefix.
func (idx *Index) namesWithPrefix(prefix string) []string {
	start := sort.SearchStrings(idx.names, prefix)
	end := start
	for end < len(idx.names) && strings.HasPrefix(idx.names[end], prefix) {
		end++
	}
	return idx.names[start:end]
}

func tokenSet(words []string, extra ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words)+len(extra))
	for _, w := range words {
		set[w] = struct{}{}
	}
	for _, w := range extra {
		set[w] = struct{}{}
	}
	return set
}

// mergeOrdinals returns the sorted union of a and b without duplicates.
func mergeOrdinals(a, b []int) []int {
	out := make([]int, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	sort.Ints(out)
	n := 0
	for i, v := range out {
		if i > 0 && v == out[n-1] {
			continue
		}
		out[n] = v
		n++
	}
	return out[:n]
}
