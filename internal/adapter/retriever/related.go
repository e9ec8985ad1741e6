package retriever

import (
	"sort"

	"cmdref/internal/domain"
)

type relatedScore struct {
	ord   int
	score float64
}

// Related returns up to limit records that share the category, keywords or
// inverted-index tokens of the record stored under id. The source record is
// never part of the result. An unknown id yields an empty result.
func (p *Pipeline) Related(idx *Index, id string, limit int) []domain.RelatedCommand {
	out := []domain.RelatedCommand{}
	if idx == nil {
		return out
	}
	src, ok := idx.byID[id]
	if !ok {
		return out
	}
	if limit <= 0 {
		limit = p.cfg.RelatedLimit
	}

	scores := make(map[int]float64)
	e := &idx.entries[src]

	if e.category != "" {
		for _, ord := range idx.categories[e.category] {
			scores[ord] += p.cfg.CategoryWeight
		}
	}
	for kw := range e.keywords {
		for _, ord := range idx.keywords[kw] {
			scores[ord]++
		}
	}
	for _, token := range e.tokens {
		if p.tok.IsStopword(token) {
			continue
		}
		for _, ord := range idx.postings[token] {
			scores[ord]++
		}
	}
	delete(scores, src)

	ranked := make([]relatedScore, 0, len(scores))
	for ord, score := range scores {
		if score > 0 {
			ranked = append(ranked, relatedScore{ord: ord, score: score})
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		a, b := &idx.entries[ranked[i].ord], &idx.entries[ranked[j].ord]
		if a.norm != b.norm {
			return a.norm < b.norm
		}
		return a.rec.ID < b.rec.ID
	})

	for i := 0; i < len(ranked) && i < limit; i++ {
		r := &idx.entries[ranked[i].ord]
		cmd := domain.NewRelatedCommand(r.rec, ranked[i].score)
		cmd.Category = r.category
		cmd.Complexity = domain.Complexity(r.complexity)
		out = append(out, cmd)
	}
	return out
}
