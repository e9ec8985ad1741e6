package usecase

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"cmdref/config"
	"cmdref/internal/adapter/analyzer"
	"cmdref/internal/adapter/retriever"
	"cmdref/internal/domain"
)

// Engine serves search, suggestion and related-command queries over one
// loaded snapshot. All methods are safe for concurrent use. Initialize
// builds the new index off to the side and swaps it in, so a query sees
// either the old snapshot or the new one, never a mix.
type Engine struct {
	pipeline *retriever.Pipeline
	index    atomic.Pointer[retriever.Index]
	gen      atomic.Uint64
	logger   *slog.Logger
}

// NewEngine creates an uninitialized engine.
func NewEngine(cfg config.SearchConfig, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		pipeline: retriever.NewPipeline(cfg, analyzer.NewTokenizer(cfg.Stemming)),
		logger:   logger,
	}
}

// Initialize replaces the loaded snapshot. Nothing is merged with the
// previous one. A snapshot that fails validation leaves the engine serving
// whatever it served before and returns an error wrapping
// domain.ErrInvalidSnapshot.
func (e *Engine) Initialize(snap *domain.IndexSnapshot) error {
	start := time.Now()
	gen := e.gen.Add(1)

	idx, err := retriever.BuildIndex(snap, e.pipeline.Tokenizer(), gen)
	if err != nil {
		e.logger.Error("snapshot rejected", "generation", gen, "error", err)
		return fmt.Errorf("initialize: %w", err)
	}
	e.index.Store(idx)

	stats := idx.Stats()
	e.logger.Info("index loaded",
		"generation", gen,
		"commands", stats.Commands,
		"tokens", stats.Tokens,
		"categories", stats.Categories,
		"duration", time.Since(start))
	return nil
}

// Ready reports whether a snapshot has been loaded.
func (e *Engine) Ready() bool {
	return e.index.Load() != nil
}

// Generation identifies the loaded snapshot; it changes on every successful
// Initialize and is zero before the first one.
func (e *Engine) Generation() uint64 {
	if idx := e.index.Load(); idx != nil {
		return idx.Generation()
	}
	return 0
}

// Search returns ranked matches for opts.Query. Before Initialize it returns
// an empty result.
func (e *Engine) Search(opts domain.SearchOptions) []domain.SearchResult {
	idx := e.index.Load()
	results := e.pipeline.Search(idx, opts)
	e.logger.Debug("search", "query", opts.Query, "results", len(results), "ready", idx != nil)
	return results
}

// GetSuggestions returns command names starting with prefix. A limit of
// zero or less selects the configured default.
func (e *Engine) GetSuggestions(prefix string, limit int) []string {
	return e.pipeline.Suggest(e.index.Load(), prefix, limit)
}

// GetRelated returns commands related to the one stored under id. Unknown
// ids yield an empty result.
func (e *Engine) GetRelated(id string, limit int) []domain.RelatedCommand {
	return e.pipeline.Related(e.index.Load(), id, limit)
}

// Lookup returns the record stored under id.
func (e *Engine) Lookup(id string) (domain.CommandRecord, error) {
	idx := e.index.Load()
	if idx == nil {
		return domain.CommandRecord{}, domain.ErrNotInitialized
	}
	rec, ok := idx.Record(id)
	if !ok {
		return domain.CommandRecord{}, fmt.Errorf("command %q: %w", id, domain.ErrNotFound)
	}
	return rec, nil
}

// Categories lists the category labels of the loaded index.
func (e *Engine) Categories() []string {
	if idx := e.index.Load(); idx != nil {
		return idx.Categories()
	}
	return []string{}
}

// Stats summarizes the loaded index.
func (e *Engine) Stats() (domain.Stats, error) {
	idx := e.index.Load()
	if idx == nil {
		return domain.Stats{}, domain.ErrNotInitialized
	}
	return idx.Stats(), nil
}
