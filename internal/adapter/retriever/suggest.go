package retriever

import (
	"sort"
	"unicode/utf8"
)

type suggestion struct {
	display string
	norm    string
	length  int
	exact   bool
	common  bool
}

// Suggest returns up to limit distinct command names starting with prefix,
// case-insensitively. A limit of zero or less selects the configured default.
func (p *Pipeline) Suggest(idx *Index, prefix string, limit int) []string {
	out := []string{}
	if idx == nil {
		return out
	}

	q := Normalize(prefix)
	if utf8.RuneCountInString(q) < p.minQueryLength() {
		return out
	}
	if limit <= 0 {
		limit = p.cfg.SuggestionLimit
	}

	names := idx.namesWithPrefix(q)
	cands := make([]suggestion, 0, len(names))
	for _, name := range names {
		ords := idx.byName[name]
		s := suggestion{
			display: idx.entries[ords[0]].rec.Name,
			norm:    name,
			length:  idx.entries[ords[0]].normLen,
			exact:   name == q,
		}
		for _, ord := range ords {
			if idx.entries[ord].rec.IsCommon {
				s.common = true
				break
			}
		}
		cands = append(cands, s)
	}

	sort.Slice(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.exact != b.exact {
			return a.exact
		}
		if a.common != b.common {
			return a.common
		}
		if a.length != b.length {
			return a.length < b.length
		}
		return a.norm < b.norm
	})

	for i := 0; i < len(cands) && i < limit; i++ {
		out = append(out, cands[i].display)
	}
	return out
}
