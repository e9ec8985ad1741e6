package retriever

import (
	"unicode/utf8"

	"cmdref/config"
	"cmdref/internal/adapter/analyzer"
	"cmdref/internal/domain"
)

// Pipeline runs the matching strategies and ranks their output. It holds no
// index of its own, so one Pipeline serves every generation of Index.
type Pipeline struct {
	cfg config.SearchConfig
	tok *analyzer.Tokenizer
}

func NewPipeline(cfg config.SearchConfig, tok *analyzer.Tokenizer) *Pipeline {
	if tok == nil {
		tok = analyzer.NewTokenizer(cfg.Stemming)
	}
	return &Pipeline{cfg: cfg, tok: tok}
}

// Tokenizer returns the tokenizer shared with BuildIndex.
func (p *Pipeline) Tokenizer() *analyzer.Tokenizer {
	return p.tok
}

// Search runs exact, prefix, fuzzy and full-text matching for opts.Query,
// filters the merged candidates and returns at most the effective limit.
func (p *Pipeline) Search(idx *Index, opts domain.SearchOptions) []domain.SearchResult {
	results := []domain.SearchResult{}
	if idx == nil {
		return results
	}

	q := Normalize(opts.Query)
	if utf8.RuneCountInString(q) < p.minQueryLength() {
		return results
	}
	limit := p.limit(opts.Limit)
	if limit == 0 {
		return results
	}

	set := make(candidateSet)
	matchExact(idx, q, set)
	matchPrefix(idx, q, set)
	matchFuzzy(idx, q, p.cfg.Fuzzy, set)
	tokens := p.tok.QueryTokens(q)
	matchFullText(idx, tokens, p.tok, p.cfg.Weights, set)

	ranked := rank(idx, filter(idx, set, opts))
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	sc := newScorer(p.cfg.Weights, len(tokens))
	for _, c := range ranked {
		results = append(results, project(idx, c, sc, opts.IncludeMatches))
	}
	return results
}

func (p *Pipeline) minQueryLength() int {
	if p.cfg.MinQueryLength > 0 {
		return p.cfg.MinQueryLength
	}
	return 2
}

// limit resolves the requested result count: nil means the default, and
// anything above MaxLimit is clamped.
func (p *Pipeline) limit(requested *int) int {
	n := p.cfg.DefaultLimit
	if requested != nil {
		n = *requested
	}
	if n < 0 {
		n = 0
	}
	if p.cfg.MaxLimit > 0 && n > p.cfg.MaxLimit {
		n = p.cfg.MaxLimit
	}
	return n
}

func project(idx *Index, c *candidate, sc scorer, includeMatches bool) domain.SearchResult {
	e := &idx.entries[c.ord]
	res := domain.NewSearchResult(e.rec)
	res.Category = e.category
	res.Complexity = domain.Complexity(e.complexity)
	res.Score = sc.score(c)
	res.IsExactMatch = c.tier == tierExact
	res.SearchStrategy = c.tier.strategy()
	if includeMatches {
		res.Matches = append([]domain.Match(nil), c.matches...)
	}
	return res
}
