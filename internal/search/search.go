// Package search implements multi-index search dispatch: a query targets
// either one explicit index or, when no index is named, every index known
// to the engine at call time. Per-index requests run concurrently and fail
// independently; outcomes are merged into one deterministic response.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/meili-tools/meilisearch-mcp/internal/meili"
)

// DefaultLimit is the per-index hit cap applied when the caller gives none.
const DefaultLimit = 20

// ErrInvalidArgument marks request validation failures caught before any
// network call is issued.
var ErrInvalidArgument = errors.New("invalid argument")

// Hybrid holds optional semantic search parameters. Embedder is required
// whenever hybrid search is requested.
type Hybrid struct {
	Embedder      string
	SemanticRatio *float64
}

// Request is a validated-shape search request. IndexUID empty means
// broadcast across all indexes.
type Request struct {
	Query    string
	IndexUID string
	Limit    int
	Offset   int
	Filter   string
	Sort     []string
	Hybrid   *Hybrid
	Vector   []float64
}

// Engine is the slice of the Meilisearch client the dispatcher consumes.
type Engine interface {
	ListIndexUIDs(ctx context.Context) ([]string, error)
	Search(ctx context.Context, indexUID string, q *meili.SearchQuery) (*meili.SearchResult, error)
}

// ValidateHybrid checks hybrid search parameters before a request is
// issued. A raw vector travels independently of hybrid parameters and is
// passed through unchecked; the engine owns its validation.
func ValidateHybrid(h *Hybrid) error {
	if h == nil {
		return nil
	}
	if strings.TrimSpace(h.Embedder) == "" {
		return fmt.Errorf("%w: hybrid search requires an embedder", ErrInvalidArgument)
	}
	if r := h.SemanticRatio; r != nil && (*r < 0 || *r > 1) {
		return fmt.Errorf("%w: semanticRatio must be within [0.0, 1.0], got %g", ErrInvalidArgument, *r)
	}
	return nil
}

func (r Request) engineQuery() *meili.SearchQuery {
	q := &meili.SearchQuery{
		Query:  r.Query,
		Limit:  r.Limit,
		Offset: r.Offset,
		Filter: r.Filter,
		Sort:   r.Sort,
		Vector: r.Vector,
	}
	if r.Hybrid != nil {
		q.Hybrid = &meili.HybridQuery{
			Embedder:      r.Hybrid.Embedder,
			SemanticRatio: r.Hybrid.SemanticRatio,
		}
	}
	return q
}
