package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"cmdref/internal/domain"
	"cmdref/internal/port"
)

// Submit backoff while every worker is busy.
const (
	minBackoff = time.Millisecond
	maxBackoff = 50 * time.Millisecond
)

// Host runs engine queries on a bounded worker pool so callers can wait
// with a context. Cancelling the context abandons the pending reply; the
// query itself runs to completion on its worker and its result is dropped.
type Host struct {
	engine  port.Engine
	pool    *ants.Pool
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Host.
type Option func(*Host) error

// WithPoolSize sets the number of workers. Default is runtime.NumCPU().
func WithPoolSize(size int) Option {
	return func(h *Host) error {
		if size < 1 {
			size = 1
		}
		pool, err := newPool(size)
		if err != nil {
			return err
		}
		if h.pool != nil {
			h.pool.Release()
		}
		h.pool = pool
		return nil
	}
}

// WithTimeout bounds every call in addition to the caller's context.
// Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(h *Host) error {
		h.timeout = d
		return nil
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(h *Host) error {
		if logger == nil {
			logger = slog.Default()
		}
		h.logger = logger
		return nil
	}
}

func NewHost(engine port.Engine, opts ...Option) (*Host, error) {
	pool, err := newPool(runtime.NumCPU())
	if err != nil {
		return nil, err
	}
	h := &Host{
		engine: engine,
		pool:   pool,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(h); err != nil {
			h.Release()
			return nil, err
		}
	}
	return h, nil
}

// newPool creates a pool that rejects work instead of blocking when full,
// so a waiting caller can still observe its context.
func newPool(size int) (*ants.Pool, error) {
	return ants.NewPool(size, ants.WithNonblocking(true))
}

// Initialize loads a snapshot on the caller's goroutine. The engine swaps
// indexes atomically, so queries in flight finish against the old one.
func (h *Host) Initialize(snap *domain.IndexSnapshot) error {
	return h.engine.Initialize(snap)
}

func (h *Host) Search(ctx context.Context, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	return submit(ctx, h, "search", func() []domain.SearchResult {
		return h.engine.Search(opts)
	})
}

func (h *Host) GetSuggestions(ctx context.Context, prefix string, limit int) ([]string, error) {
	return submit(ctx, h, "suggest", func() []string {
		return h.engine.GetSuggestions(prefix, limit)
	})
}

func (h *Host) GetRelated(ctx context.Context, id string, limit int) ([]domain.RelatedCommand, error) {
	return submit(ctx, h, "related", func() []domain.RelatedCommand {
		return h.engine.GetRelated(id, limit)
	})
}

// Running reports the number of busy workers.
func (h *Host) Running() int {
	return h.pool.Running()
}

// Release stops the pool, waiting briefly for busy workers to drain.
func (h *Host) Release() {
	if err := h.pool.ReleaseTimeout(time.Second); err != nil {
		h.logger.Warn("worker pool release timed out", "error", err)
	}
}

func submit[T any](ctx context.Context, h *Host, op string, fn func() T) (T, error) {
	var zero T
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	id := uuid.NewString()
	start := time.Now()
	// buffered so an abandoned worker never blocks on send
	reply := make(chan T, 1)
	if err := h.enqueue(ctx, func() { reply <- fn() }); err != nil {
		if ctx.Err() != nil {
			h.logger.Debug("gave up waiting for a worker", "op", op, "request", id, "error", err)
			return zero, err
		}
		return zero, fmt.Errorf("%s %s: submit: %w", op, id, err)
	}

	select {
	case <-ctx.Done():
		h.logger.Debug("reply discarded", "op", op, "request", id, "error", ctx.Err())
		return zero, ctx.Err()
	case out := <-reply:
		h.logger.Debug("request done", "op", op, "request", id, "duration", time.Since(start))
		return out, nil
	}
}

// enqueue hands task to the pool, retrying with backoff while the pool is
// saturated, until ctx is done.
func (h *Host) enqueue(ctx context.Context, task func()) error {
	backoff := minBackoff
	for {
		err := h.pool.Submit(task)
		if !errors.Is(err, ants.ErrPoolOverload) {
			return err
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		backoff = min(backoff*2, maxBackoff)
	}
}
