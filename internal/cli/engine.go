package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"cmdref/config"
	"cmdref/internal/adapter/cache"
	"cmdref/internal/adapter/store"
	"cmdref/internal/domain"
	"cmdref/internal/port"
	"cmdref/internal/usecase"
)

// session is an engine restored from the store under the root directory.
type session struct {
	engine   *usecase.Engine
	searcher port.Searcher
	store    *store.BoltStore
	meta     domain.SnapshotMeta
}

func openSession() (*session, error) {
	cfg := GetConfig()

	dbPath := config.StoreDBPath(GetRootDir())
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("no snapshot found. Run 'cmdref load' first")
	}

	st, err := store.NewBoltStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	engine := usecase.NewEngine(cfg.Search, logger)
	meta, err := usecase.NewImportUseCase(st, nil, engine, false, logger).Restore()
	if err != nil {
		st.Close()
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("store is empty. Run 'cmdref load' first")
		}
		return nil, fmt.Errorf("failed to restore snapshot: %w", err)
	}

	var searcher port.Searcher = engine
	if cfg.Cache.Enabled {
		qc := cache.NewQueryCache(cfg.Cache.MaxEntries, time.Duration(cfg.Cache.TTLSeconds)*time.Second)
		searcher = cache.NewCachedSearcher(engine, qc)
	}

	return &session{engine: engine, searcher: searcher, store: st, meta: meta}, nil
}

func (s *session) Close() error {
	return s.store.Close()
}
