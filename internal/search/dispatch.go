package search

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/meili-tools/meilisearch-mcp/internal/meili"
)

// Dispatcher fans one search request out across its target indexes.
// Concurrency is scoped to a single Dispatch call; there is no worker pool.
type Dispatcher struct {
	engine  Engine
	logger  *slog.Logger
	limit   int
	timeout time.Duration
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithConcurrency caps the number of per-index searches in flight at once.
func WithConcurrency(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.limit = n
		}
	}
}

// WithPerIndexTimeout bounds each per-index search. A deadline hit becomes
// a timeout failure outcome for that index only; siblings are unaffected.
func WithPerIndexTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		d.timeout = timeout
	}
}

// NewDispatcher creates a dispatcher bound to one engine connection. Bind
// a fresh snapshot of the connection per call site if credentials can
// change at runtime.
func NewDispatcher(engine Engine, logger *slog.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		engine: engine,
		logger: logger,
		limit:  8,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch validates the request, resolves its target set, searches every
// target concurrently and merges the outcomes. A single index failing is
// carried as data in the result; only pre-flight validation and index
// enumeration abort the dispatch as a whole.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (*Aggregated, error) {
	if err := ValidateHybrid(req.Hybrid); err != nil {
		return nil, err
	}
	if req.Limit <= 0 {
		req.Limit = DefaultLimit
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	targets, err := d.targets(ctx, req.IndexUID)
	if err != nil {
		return nil, fmt.Errorf("failed to list indexes: %w", err)
	}

	outcomes := make([]Outcome, len(targets))

	g := new(errgroup.Group)
	g.SetLimit(d.limit)
	for i, uid := range targets {
		g.Go(func() error {
			outcomes[i] = d.searchOne(ctx, uid, req)
			return nil
		})
	}
	// Tasks never return errors; per-index failures live in their outcome
	// slot, so the join always waits for every sibling.
	_ = g.Wait()

	return aggregate(outcomes), nil
}

// targets resolves the index set: the explicit uid when given, otherwise
// every index the engine reports right now. The listing is never cached;
// a stale set would silently miss or phantom-target indexes.
func (d *Dispatcher) targets(ctx context.Context, indexUID string) ([]string, error) {
	if indexUID != "" {
		return []string{indexUID}, nil
	}
	return d.engine.ListIndexUIDs(ctx)
}

func (d *Dispatcher) searchOne(ctx context.Context, indexUID string, req Request) Outcome {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	res, err := d.engine.Search(ctx, indexUID, req.engineQuery())
	if err != nil {
		d.logger.Warn("index search failed",
			"index", indexUID,
			"kind", string(meili.KindOf(err)),
			"error", err,
		)
		return Outcome{
			IndexUID:  indexUID,
			Failed:    true,
			ErrorKind: string(meili.KindOf(err)),
			Error:     err.Error(),
		}
	}

	hits := res.Hits
	if hits == nil {
		hits = []map[string]any{}
	}
	return Outcome{
		IndexUID:           indexUID,
		Hits:               hits,
		EstimatedTotalHits: res.EstimatedTotalHits,
	}
}
