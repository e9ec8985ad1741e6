package retriever

import (
	"unicode/utf8"

	"github.com/hbollon/go-edlib"

	"cmdref/config"
	"cmdref/internal/domain"
)

// FuzzyBudget returns the largest Levenshtein distance accepted for a query
// of the given rune length.
func FuzzyBudget(cfg config.FuzzyConfig, queryLen int) int {
	if queryLen <= cfg.ShortQueryLength {
		return cfg.ShortBudget
	}
	return cfg.LongBudget
}

// matchFuzzy claims records whose name is within the edit distance budget
// of the query and that no exact or prefix match already holds.
func matchFuzzy(idx *Index, q string, cfg config.FuzzyConfig, set candidateSet) {
	qLen := utf8.RuneCountInString(q)
	budget := FuzzyBudget(cfg, qLen)
	if budget <= 0 {
		return
	}

	for _, name := range idx.names {
		ords := idx.byName[name]
		nameLen := idx.entries[ords[0]].normLen
		if abs(nameLen-qLen) > budget {
			continue
		}
		if set.claimed(ords[0], tierPrefix) {
			continue
		}

		d := edlib.LevenshteinDistance(q, name)
		if d == 0 || d > budget {
			continue
		}
		for _, ord := range ords {
			set.offer(&candidate{
				ord:      ord,
				tier:     tierFuzzy,
				distance: d,
				matches:  []domain.Match{{Field: fieldName.String(), Token: name}},
			})
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
