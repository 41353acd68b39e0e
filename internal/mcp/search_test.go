package mcp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/meili-tools/meilisearch-mcp/internal/meili"
	"github.com/meili-tools/meilisearch-mcp/internal/search"
)

// fakeMeilisearch serves the two endpoints a broadcast search touches:
// index enumeration and per-index search. The "books" index rejects every
// search with a filter error.
func fakeMeilisearch(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/indexes":
			json.NewEncoder(w).Encode(meili.IndexesResponse{
				Results: []meili.Index{{UID: "movies"}, {UID: "books"}, {UID: "albums"}},
				Total:   3,
			})
		case r.URL.Path == "/indexes/books/search":
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{
				"message": "Attribute `genre` is not filterable.",
				"code":    "invalid_search_filter",
			})
		case strings.HasSuffix(r.URL.Path, "/search"):
			var q meili.SearchQuery
			json.NewDecoder(r.Body).Decode(&q)
			json.NewEncoder(w).Encode(meili.SearchResult{
				Hits:               []map[string]any{{"title": "hit for " + q.Query}},
				EstimatedTotalHits: 1,
			})
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
			http.NotFound(w, r)
		}
	}))
}

func TestHandleSearch_Broadcast(t *testing.T) {
	backend := fakeMeilisearch(t)
	defer backend.Close()

	s := newTestServer(backend.URL, "")
	result, err := s.handleSearch(t.Context(), callRequest(map[string]any{
		"query":  "dune",
		"filter": "genre = scifi",
	}))
	if err != nil {
		t.Fatalf("handleSearch() error = %v", err)
	}
	if result.IsError {
		t.Fatalf("broadcast with one failing index must not be an error result: %s", resultText(t, result))
	}

	var agg search.Aggregated
	if err := json.Unmarshal([]byte(resultText(t, result)), &agg); err != nil {
		t.Fatalf("result is not valid JSON: %v", err)
	}

	if agg.QueriedIndexCount != 3 {
		t.Errorf("queriedIndexCount = %d, want 3", agg.QueriedIndexCount)
	}
	if agg.FailedIndexCount != 1 {
		t.Errorf("failedIndexCount = %d, want 1", agg.FailedIndexCount)
	}
	if len(agg.Results) != 3 {
		t.Fatalf("results count = %d, want 3", len(agg.Results))
	}

	// Deterministic uid ordering regardless of completion order
	wantOrder := []string{"albums", "books", "movies"}
	for i, want := range wantOrder {
		if agg.Results[i].IndexUID != want {
			t.Errorf("results[%d] = %s, want %s", i, agg.Results[i].IndexUID, want)
		}
	}

	books := agg.Results[1]
	if !books.Failed {
		t.Error("books should be tagged as failed")
	}
	if books.ErrorKind != string(meili.KindInvalidArgument) {
		t.Errorf("books errorKind = %s, want %s", books.ErrorKind, meili.KindInvalidArgument)
	}
}

func TestHandleSearch_ExplicitIndex(t *testing.T) {
	var listCalls atomic.Int32
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/indexes" {
			listCalls.Add(1)
		}
		if r.URL.Path != "/indexes/movies/search" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(meili.SearchResult{
			Hits:               []map[string]any{{"title": "Dune"}},
			EstimatedTotalHits: 1,
		})
	}))
	defer backend.Close()

	s := newTestServer(backend.URL, "")
	result, err := s.handleSearch(t.Context(), callRequest(map[string]any{
		"query":    "dune",
		"indexUid": "movies",
	}))
	if err != nil {
		t.Fatalf("handleSearch() error = %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, result))
	}
	if listCalls.Load() != 0 {
		t.Error("explicit index search must not enumerate indexes")
	}

	var agg search.Aggregated
	if err := json.Unmarshal([]byte(resultText(t, result)), &agg); err != nil {
		t.Fatalf("result is not valid JSON: %v", err)
	}
	if agg.QueriedIndexCount != 1 || len(agg.Results) != 1 {
		t.Fatalf("aggregated = %+v, want exactly one result", agg)
	}
	if agg.Results[0].IndexUID != "movies" || agg.Results[0].Failed {
		t.Errorf("results[0] = %+v, want successful movies outcome", agg.Results[0])
	}
}

func TestHandleSearch_InvalidHybrid(t *testing.T) {
	var requests atomic.Int32
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		json.NewEncoder(w).Encode(meili.SearchResult{})
	}))
	defer backend.Close()

	s := newTestServer(backend.URL, "")
	result, err := s.handleSearch(t.Context(), callRequest(map[string]any{
		"query": "dune",
		"hybrid": map[string]any{
			"embedder":      "default",
			"semanticRatio": 1.5,
		},
	}))
	if err != nil {
		t.Fatalf("handleSearch() error = %v", err)
	}
	if !result.IsError {
		t.Error("out-of-range semanticRatio should return an error result")
	}
	if !strings.Contains(resultText(t, result), "semanticRatio") {
		t.Errorf("error should name semanticRatio, got %q", resultText(t, result))
	}
	if requests.Load() != 0 {
		t.Errorf("backend requests = %d, want 0 before validation passes", requests.Load())
	}
}

func TestHandleSearch_EngineUnreachable(t *testing.T) {
	s := newTestServer("http://localhost:1", "")

	result, err := s.handleSearch(t.Context(), callRequest(map[string]any{
		"query": "dune",
	}))
	if err != nil {
		t.Fatalf("handleSearch() error = %v", err)
	}
	if !result.IsError {
		t.Fatal("unreachable engine should return an error result")
	}
	if !strings.Contains(resultText(t, result), "unreachable") {
		t.Errorf("error = %q, want to mention unreachable", resultText(t, result))
	}
}

func TestHandleSearch_EmptyInstance(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(meili.IndexesResponse{Results: []meili.Index{}, Total: 0})
	}))
	defer backend.Close()

	s := newTestServer(backend.URL, "")
	result, err := s.handleSearch(t.Context(), callRequest(map[string]any{
		"query": "dune",
	}))
	if err != nil {
		t.Fatalf("handleSearch() error = %v", err)
	}
	if result.IsError {
		t.Fatalf("empty instance is a valid result, got error: %s", resultText(t, result))
	}

	var agg search.Aggregated
	if err := json.Unmarshal([]byte(resultText(t, result)), &agg); err != nil {
		t.Fatalf("result is not valid JSON: %v", err)
	}
	if agg.QueriedIndexCount != 0 || agg.FailedIndexCount != 0 {
		t.Errorf("aggregated = %+v, want zero counts", agg)
	}
}
