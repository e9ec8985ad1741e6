package retriever

import (
	"cmdref/config"
	"cmdref/internal/adapter/analyzer"
	"cmdref/internal/domain"
)

// fullTextHit accumulates the per-record evidence of one full-text pass.
type fullTextHit struct {
	hits    int
	weight  float64
	matches []domain.Match
}

// matchFullText looks every query token up in the inverted index. A record
// scores one hit per distinct query token it carries, weighted by the best
// field the token occurs in.
func matchFullText(idx *Index, tokens []string, tok *analyzer.Tokenizer, weights config.FieldWeights, set candidateSet) {
	if len(tokens) == 0 {
		return
	}

	acc := make(map[int]*fullTextHit)
	for _, qt := range tokens {
		key, ords := lookupPostings(idx, tok, qt)
		if len(ords) == 0 {
			continue
		}
		for _, ord := range ords {
			f := idx.entries[ord].fieldOf(qt, key)
			h, ok := acc[ord]
			if !ok {
				h = &fullTextHit{}
				acc[ord] = h
			}
			h.hits++
			h.weight += fieldWeight(weights, f)
			h.matches = append(h.matches, domain.Match{Field: f.String(), Token: key})
		}
	}

	for ord, h := range acc {
		set.offer(&candidate{
			ord:     ord,
			tier:    tierFullText,
			hits:    h.hits,
			weight:  h.weight,
			matches: h.matches,
		})
	}
}

// lookupPostings returns the index key and postings for a query token,
// falling back to the token's stem when the literal token is absent.
func lookupPostings(idx *Index, tok *analyzer.Tokenizer, token string) (string, []int) {
	if ords, ok := idx.postings[token]; ok {
		return token, ords
	}
	if tok == nil || !tok.Stemming() {
		return token, nil
	}
	stem := tok.Stem(token)
	if stem == token {
		return token, nil
	}
	return stem, idx.postings[stem]
}

// fieldOf reports the highest-weighted field holding any of the given forms
// of a token. Tokens found only in the search blob count as content.
func (e *entry) fieldOf(forms ...string) field {
	for f := fieldName; f < fieldContent; f++ {
		for _, form := range forms {
			if _, ok := e.fields[f][form]; ok {
				return f
			}
		}
	}
	return fieldContent
}

func fieldWeight(w config.FieldWeights, f field) float64 {
	switch f {
	case fieldName:
		return w.Name
	case fieldTitle:
		return w.Title
	case fieldDescription:
		return w.Description
	case fieldKeywords:
		return w.Keywords
	default:
		return w.Content
	}
}
