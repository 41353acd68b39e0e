package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/meili-tools/meilisearch-mcp/internal/meili"
	"github.com/meili-tools/meilisearch-mcp/internal/search"
)

// searchArgs mirrors the search tool's JSON argument shape.
type searchArgs struct {
	Query    string     `json:"query"`
	IndexUID string     `json:"indexUid,omitempty"`
	Limit    int        `json:"limit,omitempty"`
	Offset   int        `json:"offset,omitempty"`
	Filter   string     `json:"filter,omitempty"`
	Sort     []string   `json:"sort,omitempty"`
	Hybrid   *hybridArg `json:"hybrid,omitempty"`
	Vector   []float64  `json:"vector,omitempty"`
}

type hybridArg struct {
	Embedder      string   `json:"embedder"`
	SemanticRatio *float64 `json:"semanticRatio,omitempty"`
}

// handleSearch handles the search tool: one index when indexUid is given,
// otherwise a concurrent broadcast across every index. The connection is
// snapshotted once up front so a settings update mid-flight cannot split
// the fan-out across two instances.
func (s *Server) handleSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args searchArgs
	if err := bindArgs(request, &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := search.Request{
		Query:    args.Query,
		IndexUID: args.IndexUID,
		Limit:    args.Limit,
		Offset:   args.Offset,
		Filter:   args.Filter,
		Sort:     args.Sort,
		Vector:   args.Vector,
	}
	if args.Hybrid != nil {
		req.Hybrid = &search.Hybrid{
			Embedder:      args.Hybrid.Embedder,
			SemanticRatio: args.Hybrid.SemanticRatio,
		}
	}

	dispatcher := search.NewDispatcher(
		s.conn.Client(),
		s.logger,
		search.WithPerIndexTimeout(s.searchTimeout),
	)

	result, err := dispatcher.Dispatch(ctx, req)
	if err != nil {
		if errors.Is(err, search.ErrInvalidArgument) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if meili.IsUnavailable(err) {
			return mcp.NewToolResultError(fmt.Sprintf("search failed: Meilisearch unreachable: %v", err)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	return jsonResult(result), nil
}
