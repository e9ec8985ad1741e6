package retriever

import "cmdref/internal/domain"

// tier orders the strategies; lower is better.
type tier int

const (
	tierExact tier = iota
	tierPrefix
	tierFuzzy
	tierFullText
)

func (t tier) strategy() domain.SearchStrategy {
	switch t {
	case tierExact, tierPrefix:
		return domain.StrategyExact
	case tierFuzzy:
		return domain.StrategyFuzzy
	default:
		return domain.StrategyFullText
	}
}

type candidate struct {
	ord      int
	tier     tier
	distance int     // fuzzy edit distance
	hits     int     // distinct query tokens matched (full-text)
	weight   float64 // summed field weights (full-text)
	matches  []domain.Match
}

// better reports whether c should replace other for the same record.
func (c *candidate) better(other *candidate) bool {
	if c.tier != other.tier {
		return c.tier < other.tier
	}
	switch c.tier {
	case tierFuzzy:
		return c.distance < other.distance
	case tierFullText:
		if c.hits != other.hits {
			return c.hits > other.hits
		}
		return c.weight > other.weight
	}
	return false
}

// candidateSet keeps the best-seen candidate per record. Entries are only
// inserted or upgraded, never downgraded.
type candidateSet map[int]*candidate

func (s candidateSet) offer(c *candidate) {
	if cur, ok := s[c.ord]; ok && !c.better(cur) {
		return
	}
	s[c.ord] = c
}

// claimed reports whether ord already holds a candidate at tier t or better.
func (s candidateSet) claimed(ord int, t tier) bool {
	cur, ok := s[ord]
	return ok && cur.tier <= t
}
