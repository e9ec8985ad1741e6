package retriever

import "cmdref/internal/domain"

// matchExact claims every record whose normalized name equals the query.
func matchExact(idx *Index, q string, set candidateSet) {
	for _, ord := range idx.byName[q] {
		set.offer(&candidate{
			ord:     ord,
			tier:    tierExact,
			matches: []domain.Match{{Field: fieldName.String(), Token: q}},
		})
	}
}

// matchPrefix claims records whose normalized name starts with the query.
// The sorted name list turns this into a binary search plus a short scan.
func matchPrefix(idx *Index, q string, set candidateSet) {
	for _, name := range idx.namesWithPrefix(q) {
		if name == q {
			continue
		}
		for _, ord := range idx.byName[name] {
			set.offer(&candidate{
				ord:     ord,
				tier:    tierPrefix,
				matches: []domain.Match{{Field: fieldName.String(), Token: q}},
			})
		}
	}
}
