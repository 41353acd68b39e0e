package mcp

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/meili-tools/meilisearch-mcp/internal/meili"
)

func newTestServer(url, apiKey string) *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(NewConnection(url, apiKey), "test", logger)
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("handler returned nil result")
	}
	if len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content = %T, want mcp.TextContent", result.Content[0])
	}
	return text.Text
}

func TestHandleGetConnectionSettings(t *testing.T) {
	s := newTestServer("http://localhost:7700", "superSecretKey")

	result, err := s.handleGetConnectionSettings(t.Context(), callRequest(nil))
	if err != nil {
		t.Fatalf("handleGetConnectionSettings() error = %v", err)
	}

	text := resultText(t, result)
	if !strings.Contains(text, "http://localhost:7700") {
		t.Errorf("result should contain the URL, got %q", text)
	}
	if strings.Contains(text, "superSecretKey") {
		t.Error("result must not expose the raw API key")
	}
}

func TestHandleUpdateConnectionSettings(t *testing.T) {
	s := newTestServer("http://localhost:7700", "oldKey")

	result, err := s.handleUpdateConnectionSettings(t.Context(), callRequest(map[string]any{
		"url": "http://remote:7700",
	}))
	if err != nil {
		t.Fatalf("handleUpdateConnectionSettings() error = %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, result))
	}

	if s.conn.Client().BaseURL() != "http://remote:7700" {
		t.Errorf("connection URL = %s, want http://remote:7700", s.conn.Client().BaseURL())
	}
	if !s.conn.Client().HasAPIKey() {
		t.Error("omitted api_key should keep the existing key")
	}
}

func TestHandleUpdateConnectionSettings_NothingToUpdate(t *testing.T) {
	s := newTestServer("http://localhost:7700", "")

	result, err := s.handleUpdateConnectionSettings(t.Context(), callRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("handleUpdateConnectionSettings() error = %v", err)
	}
	if !result.IsError {
		t.Error("empty update should return an error result")
	}
}

func TestHandleHealthCheck(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(meili.Health{Status: "available"})
	}))
	defer backend.Close()

	s := newTestServer(backend.URL, "")
	result, err := s.handleHealthCheck(t.Context(), callRequest(nil))
	if err != nil {
		t.Fatalf("handleHealthCheck() error = %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, result))
	}
	if !strings.Contains(resultText(t, result), "available") {
		t.Errorf("result = %q, want to contain available", resultText(t, result))
	}
}

func TestHandleHealthCheck_Unreachable(t *testing.T) {
	s := newTestServer("http://localhost:1", "")

	result, err := s.handleHealthCheck(t.Context(), callRequest(nil))
	if err != nil {
		t.Fatalf("handleHealthCheck() error = %v", err)
	}
	if !result.IsError {
		t.Error("unreachable engine should return an error result, not crash")
	}
}

func TestHandleGetHealthStatus(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(meili.Health{Status: "available"})
	}))
	defer backend.Close()

	s := newTestServer(backend.URL, "")
	result, err := s.handleGetHealthStatus(t.Context(), callRequest(nil))
	if err != nil {
		t.Fatalf("handleGetHealthStatus() error = %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, result))
	}

	text := resultText(t, result)
	if !strings.Contains(text, "**Available:** true") {
		t.Errorf("result should report availability, got %q", text)
	}
	if !strings.Contains(text, backend.URL) {
		t.Errorf("result should name the checked instance, got %q", text)
	}
}

func TestHandleGetHealthStatus_DownIsAReport(t *testing.T) {
	s := newTestServer("http://localhost:1", "")

	result, err := s.handleGetHealthStatus(t.Context(), callRequest(nil))
	if err != nil {
		t.Fatalf("handleGetHealthStatus() error = %v", err)
	}
	if result.IsError {
		t.Fatal("a down instance is a status report, not an error result")
	}

	text := resultText(t, result)
	if !strings.Contains(text, "**Available:** false") {
		t.Errorf("result should report the instance as down, got %q", text)
	}
	if !strings.Contains(text, "**Error:**") {
		t.Errorf("result should carry the connection error, got %q", text)
	}
}

func TestHandleGetSystemInfo(t *testing.T) {
	s := newTestServer("http://localhost:7700", "")

	result, err := s.handleGetSystemInfo(t.Context(), callRequest(nil))
	if err != nil {
		t.Fatalf("handleGetSystemInfo() error = %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, result))
	}

	var info struct {
		ServerVersion string `json:"serverVersion"`
		GoVersion     string `json:"goVersion"`
		OS            string `json:"os"`
		CPUs          int    `json:"cpus"`
		PID           int    `json:"pid"`
		Memory        struct {
			SysBytes uint64 `json:"sysBytes"`
		} `json:"memory"`
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &info); err != nil {
		t.Fatalf("result is not valid JSON: %v", err)
	}
	if info.ServerVersion != "test" {
		t.Errorf("serverVersion = %s, want test", info.ServerVersion)
	}
	if !strings.HasPrefix(info.GoVersion, "go") {
		t.Errorf("goVersion = %s, want go prefix", info.GoVersion)
	}
	if info.OS == "" || info.CPUs <= 0 || info.PID <= 0 {
		t.Errorf("info = %+v, want populated os/cpus/pid", info)
	}
	if info.Memory.SysBytes == 0 {
		t.Error("memory.sysBytes should be non-zero")
	}
}

func TestHandleCreateIndex_RequiresUID(t *testing.T) {
	s := newTestServer("http://localhost:7700", "")

	result, err := s.handleCreateIndex(t.Context(), callRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("handleCreateIndex() error = %v", err)
	}
	if !result.IsError {
		t.Error("missing uid should return an error result")
	}
}

func TestHandleCreateIndex(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(meili.TaskInfo{
			TaskUID: 12, IndexUID: "movies", Status: "enqueued", Type: "indexCreation",
		})
	}))
	defer backend.Close()

	s := newTestServer(backend.URL, "")
	result, err := s.handleCreateIndex(t.Context(), callRequest(map[string]any{
		"uid":        "movies",
		"primaryKey": "id",
	}))
	if err != nil {
		t.Fatalf("handleCreateIndex() error = %v", err)
	}

	text := resultText(t, result)
	if !strings.Contains(text, "Task UID:** 12") {
		t.Errorf("result should reference task 12, got %q", text)
	}
	if !strings.Contains(text, "get-task") {
		t.Errorf("result should point at get-task, got %q", text)
	}
}

func TestHandleAddDocuments_EmptyPayload(t *testing.T) {
	s := newTestServer("http://localhost:7700", "")

	result, err := s.handleAddDocuments(t.Context(), callRequest(map[string]any{
		"indexUid":  "movies",
		"documents": []any{},
	}))
	if err != nil {
		t.Fatalf("handleAddDocuments() error = %v", err)
	}
	if !result.IsError {
		t.Error("empty documents array should return an error result")
	}
}

func TestHandleUpdateSettings_RequiresObject(t *testing.T) {
	s := newTestServer("http://localhost:7700", "")

	result, err := s.handleUpdateSettings(t.Context(), callRequest(map[string]any{
		"indexUid": "movies",
		"settings": "not an object",
	}))
	if err != nil {
		t.Fatalf("handleUpdateSettings() error = %v", err)
	}
	if !result.IsError {
		t.Error("non-object settings should return an error result")
	}
}

func TestHandleGetTask_RequiresUID(t *testing.T) {
	s := newTestServer("http://localhost:7700", "")

	result, err := s.handleGetTask(t.Context(), callRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("handleGetTask() error = %v", err)
	}
	if !result.IsError {
		t.Error("missing taskUid should return an error result")
	}
}

func TestHandleCancelTasks_RequiresFilter(t *testing.T) {
	s := newTestServer("http://localhost:7700", "")

	result, err := s.handleCancelTasks(t.Context(), callRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("handleCancelTasks() error = %v", err)
	}
	if !result.IsError {
		t.Error("cancel without filters should return an error result")
	}
}

func TestHandleGetStats(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stats" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(meili.Stats{
			DatabaseSize: 4096,
			Indexes: map[string]meili.IndexStats{
				"movies": {NumberOfDocuments: 2},
			},
		})
	}))
	defer backend.Close()

	s := newTestServer(backend.URL, "")
	result, err := s.handleGetStats(t.Context(), callRequest(nil))
	if err != nil {
		t.Fatalf("handleGetStats() error = %v", err)
	}

	var stats meili.Stats
	if err := json.Unmarshal([]byte(resultText(t, result)), &stats); err != nil {
		t.Fatalf("result is not valid JSON: %v", err)
	}
	if stats.Indexes["movies"].NumberOfDocuments != 2 {
		t.Errorf("movies documents = %d, want 2", stats.Indexes["movies"].NumberOfDocuments)
	}
}
