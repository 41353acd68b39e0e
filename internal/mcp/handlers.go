package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/meili-tools/meilisearch-mcp/internal/meili"
)

// jsonResult serializes a payload as indented JSON text content. Engine
// payloads (documents, settings, tasks) are passed through verbatim so the
// caller sees exactly what the engine returned.
func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to serialize result: %v", err))
	}
	return mcp.NewToolResultText(string(data))
}

// bindArgs decodes the raw argument map into a typed struct.
func bindArgs(request mcp.CallToolRequest, target any) error {
	data, err := json.Marshal(request.GetArguments())
	if err != nil {
		return fmt.Errorf("failed to marshal arguments: %w", err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// stringSlice reads an optional array-of-strings argument.
func stringSlice(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// intArg reads an optional number argument with a default.
func intArg(args map[string]any, key string, def int) int {
	if v, ok := args[key].(float64); ok {
		return int(v)
	}
	return def
}

// taskResult formats an enqueued-task confirmation.
func taskResult(action string, task *meili.TaskInfo) *mcp.CallToolResult {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", action))
	sb.WriteString(fmt.Sprintf("- **Task UID:** %d\n", task.TaskUID))
	if task.IndexUID != "" {
		sb.WriteString(fmt.Sprintf("- **Index:** %s\n", task.IndexUID))
	}
	sb.WriteString(fmt.Sprintf("- **Type:** %s\n", task.Type))
	sb.WriteString(fmt.Sprintf("- **Status:** %s\n", task.Status))
	sb.WriteString("\nUse `get-task` to follow progress.\n")
	return mcp.NewToolResultText(sb.String())
}

// ===========================================
// CONNECTION HANDLERS
// ===========================================

func (s *Server) handleGetConnectionSettings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, maskedKey := s.conn.Settings()

	var sb strings.Builder
	sb.WriteString("# Connection Settings\n\n")
	sb.WriteString(fmt.Sprintf("- **URL:** %s\n", url))
	sb.WriteString(fmt.Sprintf("- **API Key:** %s\n", maskedKey))

	return mcp.NewToolResultText(sb.String()), nil
}

func (s *Server) handleUpdateConnectionSettings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	url, _ := args["url"].(string)
	apiKey, _ := args["api_key"].(string)

	if url == "" && apiKey == "" {
		return mcp.NewToolResultError("nothing to update: provide url and/or api_key"), nil
	}

	s.conn.Update(url, apiKey)
	s.logger.Info("connection settings updated", "url_changed", url != "", "key_changed", apiKey != "")

	newURL, maskedKey := s.conn.Settings()
	return mcp.NewToolResultText(fmt.Sprintf("Connection updated.\n\n- **URL:** %s\n- **API Key:** %s\n", newURL, maskedKey)), nil
}

// ===========================================
// MONITORING HANDLERS
// ===========================================

func (s *Server) handleHealthCheck(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	health, err := s.conn.Client().Health(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("health check failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Meilisearch is %s.", health.Status)), nil
}

// handleGetHealthStatus reports instance health as data. Unlike
// health-check, an unreachable engine is a report here, not an error
// result: the caller asked for the status, and "down" is a status.
func (s *Server) handleGetHealthStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, _ := s.conn.Settings()
	checkedAt := time.Now().UTC().Format(time.RFC3339)

	var sb strings.Builder
	sb.WriteString("# Health Status\n\n")
	sb.WriteString(fmt.Sprintf("- **Instance:** %s\n", url))
	sb.WriteString(fmt.Sprintf("- **Checked At:** %s\n", checkedAt))

	health, err := s.conn.Client().Health(ctx)
	if err != nil {
		sb.WriteString("- **Available:** false\n")
		sb.WriteString(fmt.Sprintf("- **Error:** %v\n", err))
	} else {
		sb.WriteString("- **Available:** true\n")
		sb.WriteString(fmt.Sprintf("- **Status:** %s\n", health.Status))
	}

	return mcp.NewToolResultText(sb.String()), nil
}

// handleGetSystemInfo reports on the MCP server process itself; it never
// touches the engine.
func (s *Server) handleGetSystemInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	hostname, _ := os.Hostname()
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	info := struct {
		ServerVersion string `json:"serverVersion"`
		GoVersion     string `json:"goVersion"`
		OS            string `json:"os"`
		Arch          string `json:"arch"`
		CPUs          int    `json:"cpus"`
		Goroutines    int    `json:"goroutines"`
		PID           int    `json:"pid"`
		Hostname      string `json:"hostname,omitempty"`
		Memory        struct {
			AllocBytes uint64 `json:"allocBytes"`
			SysBytes   uint64 `json:"sysBytes"`
			NumGC      uint32 `json:"numGC"`
		} `json:"memory"`
	}{
		ServerVersion: s.version,
		GoVersion:     runtime.Version(),
		OS:            runtime.GOOS,
		Arch:          runtime.GOARCH,
		CPUs:          runtime.NumCPU(),
		Goroutines:    runtime.NumGoroutine(),
		PID:           os.Getpid(),
		Hostname:      hostname,
	}
	info.Memory.AllocBytes = mem.Alloc
	info.Memory.SysBytes = mem.Sys
	info.Memory.NumGC = mem.NumGC

	return jsonResult(info), nil
}

func (s *Server) handleGetVersion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	version, err := s.conn.Client().ServerVersion(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get version: %v", err)), nil
	}

	var sb strings.Builder
	sb.WriteString("# Meilisearch Version\n\n")
	sb.WriteString(fmt.Sprintf("- **Version:** %s\n", version.PkgVersion))
	sb.WriteString(fmt.Sprintf("- **Commit:** %s\n", version.CommitSha))
	sb.WriteString(fmt.Sprintf("- **Commit Date:** %s\n", version.CommitDate))

	return mcp.NewToolResultText(sb.String()), nil
}

func (s *Server) handleGetStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.conn.Client().Stats(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get stats: %v", err)), nil
	}
	return jsonResult(stats), nil
}

func (s *Server) handleGetIndexMetrics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	indexUID, _ := args["indexUid"].(string)

	stats, err := s.conn.Client().IndexStats(ctx, indexUID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get index metrics: %v", err)), nil
	}
	return jsonResult(stats), nil
}

// ===========================================
// INDEX HANDLERS
// ===========================================

func (s *Server) handleListIndexes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	limit := intArg(args, "limit", 0)
	offset := intArg(args, "offset", 0)

	resp, err := s.conn.Client().ListIndexes(ctx, limit, offset)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list indexes: %v", err)), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Showing %d of %d indexes:\n\n", len(resp.Results), resp.Total))
	for _, idx := range resp.Results {
		primaryKey := idx.PrimaryKey
		if primaryKey == "" {
			primaryKey = "(none)"
		}
		sb.WriteString(fmt.Sprintf("- **%s** (primary key: %s)\n", idx.UID, primaryKey))
	}

	return mcp.NewToolResultText(sb.String()), nil
}

func (s *Server) handleCreateIndex(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	uid, _ := args["uid"].(string)
	primaryKey, _ := args["primaryKey"].(string)

	if uid == "" {
		return mcp.NewToolResultError("uid is required"), nil
	}

	task, err := s.conn.Client().CreateIndex(ctx, uid, primaryKey)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create index: %v", err)), nil
	}
	return taskResult("Index Creation Enqueued", task), nil
}

func (s *Server) handleDeleteIndex(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	uid, _ := args["uid"].(string)

	if uid == "" {
		return mcp.NewToolResultError("uid is required"), nil
	}

	task, err := s.conn.Client().DeleteIndex(ctx, uid)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete index: %v", err)), nil
	}
	return taskResult("Index Deletion Enqueued", task), nil
}

// ===========================================
// DOCUMENT HANDLERS
// ===========================================

func (s *Server) handleGetDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	indexUID, _ := args["indexUid"].(string)

	q := &meili.DocumentsQuery{
		Offset: intArg(args, "offset", 0),
		Limit:  intArg(args, "limit", 0),
		Fields: stringSlice(args, "fields"),
	}

	resp, err := s.conn.Client().Documents(ctx, indexUID, q)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get documents: %v", err)), nil
	}
	return jsonResult(resp), nil
}

func (s *Server) handleGetDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	indexUID, _ := args["indexUid"].(string)
	documentID, _ := args["documentId"].(string)

	doc, err := s.conn.Client().Document(ctx, indexUID, documentID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get document: %v", err)), nil
	}
	return jsonResult(doc), nil
}

func (s *Server) handleAddDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		IndexUID   string           `json:"indexUid"`
		Documents  []map[string]any `json:"documents"`
		PrimaryKey string           `json:"primaryKey,omitempty"`
	}
	if err := bindArgs(request, &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(args.Documents) == 0 {
		return mcp.NewToolResultError("documents must be a non-empty array of objects"), nil
	}

	task, err := s.conn.Client().AddDocuments(ctx, args.IndexUID, args.Documents, args.PrimaryKey)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to add documents: %v", err)), nil
	}
	return taskResult(fmt.Sprintf("Addition of %d Documents Enqueued", len(args.Documents)), task), nil
}

func (s *Server) handleUpdateDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		IndexUID  string           `json:"indexUid"`
		Documents []map[string]any `json:"documents"`
	}
	if err := bindArgs(request, &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(args.Documents) == 0 {
		return mcp.NewToolResultError("documents must be a non-empty array of objects"), nil
	}

	task, err := s.conn.Client().UpdateDocuments(ctx, args.IndexUID, args.Documents)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to update documents: %v", err)), nil
	}
	return taskResult(fmt.Sprintf("Update of %d Documents Enqueued", len(args.Documents)), task), nil
}

func (s *Server) handleDeleteDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	indexUID, _ := args["indexUid"].(string)
	documentID, _ := args["documentId"].(string)

	task, err := s.conn.Client().DeleteDocument(ctx, indexUID, documentID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete document: %v", err)), nil
	}
	return taskResult("Document Deletion Enqueued", task), nil
}

func (s *Server) handleDeleteDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	indexUID, _ := args["indexUid"].(string)
	documentIDs := stringSlice(args, "documentIds")

	if len(documentIDs) == 0 {
		return mcp.NewToolResultError("documentIds must be a non-empty array of strings"), nil
	}

	task, err := s.conn.Client().DeleteDocuments(ctx, indexUID, documentIDs)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete documents: %v", err)), nil
	}
	return taskResult(fmt.Sprintf("Deletion of %d Documents Enqueued", len(documentIDs)), task), nil
}

func (s *Server) handleDeleteAllDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	indexUID, _ := args["indexUid"].(string)

	task, err := s.conn.Client().DeleteAllDocuments(ctx, indexUID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete all documents: %v", err)), nil
	}
	return taskResult("Deletion of All Documents Enqueued", task), nil
}

// ===========================================
// SETTINGS HANDLERS
// ===========================================

func (s *Server) handleGetSettings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	indexUID, _ := args["indexUid"].(string)

	settings, err := s.conn.Client().Settings(ctx, indexUID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get settings: %v", err)), nil
	}
	return jsonResult(settings), nil
}

func (s *Server) handleUpdateSettings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	indexUID, _ := args["indexUid"].(string)
	settings, ok := args["settings"].(map[string]any)
	if !ok || len(settings) == 0 {
		return mcp.NewToolResultError("settings must be a non-empty object"), nil
	}

	task, err := s.conn.Client().UpdateSettings(ctx, indexUID, settings)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to update settings: %v", err)), nil
	}
	return taskResult("Settings Update Enqueued", task), nil
}

// ===========================================
// TASK HANDLERS
// ===========================================

func (s *Server) handleGetTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	taskUID, ok := args["taskUid"].(float64)
	if !ok {
		return mcp.NewToolResultError("taskUid is required"), nil
	}

	task, err := s.conn.Client().Task(ctx, int64(taskUID))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get task: %v", err)), nil
	}
	return jsonResult(task), nil
}

func (s *Server) handleGetTasks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	q := &meili.TasksQuery{
		Statuses:  stringSlice(args, "statuses"),
		Types:     stringSlice(args, "types"),
		IndexUIDs: stringSlice(args, "indexUids"),
		Limit:     intArg(args, "limit", 0),
		From:      int64(intArg(args, "from", 0)),
	}

	resp, err := s.conn.Client().Tasks(ctx, q)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get tasks: %v", err)), nil
	}
	return jsonResult(resp), nil
}

func (s *Server) handleCancelTasks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	q := &meili.TasksQuery{
		Statuses:  stringSlice(args, "statuses"),
		Types:     stringSlice(args, "types"),
		IndexUIDs: stringSlice(args, "indexUids"),
	}

	if len(q.Statuses) == 0 && len(q.Types) == 0 && len(q.IndexUIDs) == 0 {
		return mcp.NewToolResultError("at least one filter (statuses, types, indexUids) is required"), nil
	}

	task, err := s.conn.Client().CancelTasks(ctx, q)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to cancel tasks: %v", err)), nil
	}
	return taskResult("Task Cancelation Enqueued", task), nil
}

// ===========================================
// KEY HANDLERS
// ===========================================

func (s *Server) handleGetKeys(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	limit := intArg(args, "limit", 0)
	offset := intArg(args, "offset", 0)

	resp, err := s.conn.Client().Keys(ctx, limit, offset)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get keys: %v", err)), nil
	}
	return jsonResult(resp), nil
}

func (s *Server) handleCreateKey(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		Name        string   `json:"name,omitempty"`
		Description string   `json:"description,omitempty"`
		Actions     []string `json:"actions"`
		Indexes     []string `json:"indexes"`
		ExpiresAt   string   `json:"expiresAt,omitempty"`
	}
	if err := bindArgs(request, &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(args.Actions) == 0 || len(args.Indexes) == 0 {
		return mcp.NewToolResultError("actions and indexes are required"), nil
	}

	key := &meili.Key{
		Name:        args.Name,
		Description: args.Description,
		Actions:     args.Actions,
		Indexes:     args.Indexes,
	}
	if args.ExpiresAt != "" {
		key.ExpiresAt = &args.ExpiresAt
	}

	created, err := s.conn.Client().CreateKey(ctx, key)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create key: %v", err)), nil
	}

	var sb strings.Builder
	sb.WriteString("# API Key Created\n\n")
	sb.WriteString("**IMPORTANT:** the key value is only shown once - save it now.\n\n")
	sb.WriteString(fmt.Sprintf("- **Key:** %s\n", created.Key))
	sb.WriteString(fmt.Sprintf("- **UID:** %s\n", created.UID))
	if created.Name != "" {
		sb.WriteString(fmt.Sprintf("- **Name:** %s\n", created.Name))
	}
	sb.WriteString(fmt.Sprintf("- **Actions:** %s\n", strings.Join(created.Actions, ", ")))
	sb.WriteString(fmt.Sprintf("- **Indexes:** %s\n", strings.Join(created.Indexes, ", ")))

	return mcp.NewToolResultText(sb.String()), nil
}

func (s *Server) handleDeleteKey(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	keyOrUID, _ := args["keyOrUid"].(string)

	if keyOrUID == "" {
		return mcp.NewToolResultError("keyOrUid is required"), nil
	}

	if err := s.conn.Client().DeleteKey(ctx, keyOrUID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete key: %v", err)), nil
	}
	return mcp.NewToolResultText("API key deleted."), nil
}

// ===========================================
// CHAT HANDLERS
// ===========================================

func (s *Server) handleGetChatWorkspaces(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	limit := intArg(args, "limit", 0)
	offset := intArg(args, "offset", 0)

	resp, err := s.conn.Client().ChatWorkspaces(ctx, limit, offset)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get chat workspaces: %v", err)), nil
	}
	return jsonResult(resp), nil
}

func (s *Server) handleGetChatWorkspaceSettings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	workspaceUID, _ := args["workspaceUid"].(string)

	settings, err := s.conn.Client().ChatWorkspaceSettings(ctx, workspaceUID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get chat workspace settings: %v", err)), nil
	}
	return jsonResult(settings), nil
}

func (s *Server) handleUpdateChatWorkspaceSettings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	workspaceUID, _ := args["workspaceUid"].(string)
	settings, ok := args["settings"].(map[string]any)
	if !ok || len(settings) == 0 {
		return mcp.NewToolResultError("settings must be a non-empty object"), nil
	}

	updated, err := s.conn.Client().UpdateChatWorkspaceSettings(ctx, workspaceUID, settings)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to update chat workspace settings: %v", err)), nil
	}
	return jsonResult(updated), nil
}

func (s *Server) handleCreateChatCompletion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		WorkspaceUID string              `json:"workspaceUid"`
		Messages     []meili.ChatMessage `json:"messages"`
		Model        string              `json:"model,omitempty"`
	}
	if err := bindArgs(request, &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(args.Messages) == 0 {
		return mcp.NewToolResultError("messages must be a non-empty array"), nil
	}
	if args.Model == "" {
		args.Model = "gpt-3.5-turbo"
	}

	reply, err := s.conn.Client().ChatCompletion(ctx, args.WorkspaceUID, args.Model, args.Messages)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("chat completion failed: %v", err)), nil
	}
	return mcp.NewToolResultText(reply), nil
}
