package retriever

import (
	"sort"

	"cmdref/config"
	"cmdref/internal/domain"
)

const (
	scoreExact  = 1000.0
	scorePrefix = 900.0
	// fuzzy scores fall in (600, 800), full-text scores in [0, 500)
	scoreFuzzyBase    = 600.0
	scoreFuzzySpan    = 200.0
	scoreFullTextSpan = 500.0
)

// filter drops candidates that violate any requested filter. Category and
// complexity compare against the labels resolved at index build time.
func filter(idx *Index, set candidateSet, opts domain.SearchOptions) []*candidate {
	out := make([]*candidate, 0, len(set))
	for _, c := range set {
		e := &idx.entries[c.ord]
		if opts.Section != nil && e.rec.Section != *opts.Section {
			continue
		}
		if opts.Complexity != "" && e.complexity != string(opts.Complexity) {
			continue
		}
		if opts.Category != "" && e.category != opts.Category {
			continue
		}
		if opts.CommonOnly && !e.rec.IsCommon {
			continue
		}
		out = append(out, c)
	}
	return out
}

// rank orders candidates by tier, then by the tier's own measure, then by
// popularity and name. The order is total, so equal inputs rank identically.
func rank(idx *Index, cands []*candidate) []*candidate {
	sort.Slice(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.tier != b.tier {
			return a.tier < b.tier
		}
		switch a.tier {
		case tierFuzzy:
			if a.distance != b.distance {
				return a.distance < b.distance
			}
		case tierFullText:
			if a.hits != b.hits {
				return a.hits > b.hits
			}
			if a.weight != b.weight {
				return a.weight > b.weight
			}
		}
		return idx.less(a.ord, b.ord)
	})
	return cands
}

// less is the shared tie-break: common records first, then normalized name,
// then section, then id.
func (idx *Index) less(i, j int) bool {
	a, b := &idx.entries[i], &idx.entries[j]
	if a.rec.IsCommon != b.rec.IsCommon {
		return a.rec.IsCommon
	}
	if a.norm != b.norm {
		return a.norm < b.norm
	}
	if a.rec.Section != b.rec.Section {
		return a.rec.Section < b.rec.Section
	}
	return a.rec.ID < b.rec.ID
}

// scorer maps a candidate to a higher-is-better score that agrees with the
// tier order: every exact score beats every prefix score, and so on.
type scorer struct {
	maxWeight float64
	tokens    int
}

func newScorer(w config.FieldWeights, tokens int) scorer {
	top := w.Name
	for _, v := range []float64{w.Title, w.Description, w.Keywords, w.Content} {
		top = max(top, v)
	}
	return scorer{maxWeight: top, tokens: tokens}
}

func (s scorer) score(c *candidate) float64 {
	switch c.tier {
	case tierExact:
		return scoreExact
	case tierPrefix:
		return scorePrefix
	case tierFuzzy:
		return scoreFuzzyBase + scoreFuzzySpan/float64(c.distance+1)
	default:
		n := float64(s.tokens)
		frac := c.weight / (s.maxWeight*n + 1)
		return scoreFullTextSpan * (float64(c.hits) + frac) / (n + 1)
	}
}
