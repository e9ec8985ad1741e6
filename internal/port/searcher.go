package port

import "cmdref/internal/domain"

// Searcher is the query side of the engine.
type Searcher interface {
	Search(opts domain.SearchOptions) []domain.SearchResult

	GetSuggestions(prefix string, limit int) []string

	GetRelated(id string, limit int) []domain.RelatedCommand

	// Generation changes whenever the served snapshot is replaced.
	Generation() uint64
}

// Loader accepts replacement snapshots.
type Loader interface {
	Initialize(snap *domain.IndexSnapshot) error
}

// Engine is a Searcher that can be reloaded.
type Engine interface {
	Searcher
	Loader
}
