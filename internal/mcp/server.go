// Package mcp provides the MCP server implementation.
package mcp

import (
	"context"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server wraps the MCP server with the Meilisearch connection.
type Server struct {
	mcp           *server.MCPServer
	conn          *Connection
	logger        *slog.Logger
	version       string
	searchTimeout time.Duration
}

// NewServer creates a new MCP server instance.
func NewServer(conn *Connection, version string, logger *slog.Logger) *Server {
	s := &Server{
		conn:          conn,
		logger:        logger,
		version:       version,
		searchTimeout: 15 * time.Second,
	}

	s.mcp = server.NewMCPServer(
		"meilisearch-mcp",
		version,
		server.WithToolCapabilities(true),
		server.WithLogging(),
	)

	s.registerTools()

	return s
}

// registerTools registers all MCP tools.
func (s *Server) registerTools() {
	// ===========================================
	// CONNECTION TOOLS
	// ===========================================

	s.mcp.AddTool(mcp.NewTool("get-connection-settings",
		mcp.WithDescription("Get the current Meilisearch connection settings. The API key is masked. Use this to verify which instance the server is talking to."),
	), s.handleGetConnectionSettings)

	s.mcp.AddTool(mcp.NewTool("update-connection-settings",
		mcp.WithDescription("Update the Meilisearch connection settings at runtime. Omitted fields keep their current value. Searches already in flight finish against the previous settings."),
		mcp.WithString("url",
			mcp.Description("New Meilisearch instance URL (e.g., 'http://localhost:7700')"),
		),
		mcp.WithString("api_key",
			mcp.Description("New API key for the instance"),
		),
	), s.handleUpdateConnectionSettings)

	// ===========================================
	// MONITORING TOOLS
	// ===========================================

	s.mcp.AddTool(mcp.NewTool("health-check",
		mcp.WithDescription("Check if the Meilisearch instance is healthy and reachable."),
	), s.handleHealthCheck)

	s.mcp.AddTool(mcp.NewTool("get-health-status",
		mcp.WithDescription("Get a detailed health report for the configured instance: URL, availability, engine status, and check timestamp. An unreachable instance is reported as down rather than failing the call."),
	), s.handleGetHealthStatus)

	s.mcp.AddTool(mcp.NewTool("get-system-info",
		mcp.WithDescription("Get information about the MCP server process itself: version, Go runtime, host, CPU count, and memory usage."),
	), s.handleGetSystemInfo)

	s.mcp.AddTool(mcp.NewTool("get-version",
		mcp.WithDescription("Get the Meilisearch engine version and build information."),
	), s.handleGetVersion)

	s.mcp.AddTool(mcp.NewTool("get-stats",
		mcp.WithDescription("Get instance-wide statistics: database size and per-index document counts."),
	), s.handleGetStats)

	s.mcp.AddTool(mcp.NewTool("get-index-metrics",
		mcp.WithDescription("Get statistics for one index: document count, indexing state, and field distribution."),
		mcp.WithString("indexUid",
			mcp.Description("Unique identifier of the index"),
			mcp.Required(),
		),
	), s.handleGetIndexMetrics)

	// ===========================================
	// INDEX TOOLS
	// ===========================================

	s.mcp.AddTool(mcp.NewTool("list-indexes",
		mcp.WithDescription("List all indexes on the Meilisearch instance with their primary keys."),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of indexes to return (default: 20)"),
		),
		mcp.WithNumber("offset",
			mcp.Description("Number of indexes to skip"),
		),
	), s.handleListIndexes)

	s.mcp.AddTool(mcp.NewTool("create-index",
		mcp.WithDescription("Create a new index. Optionally set its primary key attribute."),
		mcp.WithString("uid",
			mcp.Description("Unique identifier for the new index"),
			mcp.Required(),
		),
		mcp.WithString("primaryKey",
			mcp.Description("Attribute to use as the primary key (optional; inferred from documents when omitted)"),
		),
	), s.handleCreateIndex)

	s.mcp.AddTool(mcp.NewTool("delete-index",
		mcp.WithDescription("Delete an index and all of its documents. This cannot be undone."),
		mcp.WithString("uid",
			mcp.Description("Unique identifier of the index to delete"),
			mcp.Required(),
		),
	), s.handleDeleteIndex)

	// ===========================================
	// DOCUMENT TOOLS
	// ===========================================

	s.mcp.AddTool(mcp.NewTool("get-documents",
		mcp.WithDescription("Browse documents in an index in insertion order (no ranking). Use the search tool for relevance-ordered results."),
		mcp.WithString("indexUid",
			mcp.Description("Unique identifier of the index"),
			mcp.Required(),
		),
		mcp.WithNumber("offset",
			mcp.Description("Number of documents to skip (default: 0)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of documents to return (default: 20)"),
		),
		mcp.WithArray("fields",
			mcp.Description("Document attributes to include in the response. All attributes when omitted."),
		),
	), s.handleGetDocuments)

	s.mcp.AddTool(mcp.NewTool("get-document",
		mcp.WithDescription("Get a single document by its primary key value."),
		mcp.WithString("indexUid",
			mcp.Description("Unique identifier of the index"),
			mcp.Required(),
		),
		mcp.WithString("documentId",
			mcp.Description("Primary key value of the document"),
			mcp.Required(),
		),
	), s.handleGetDocument)

	s.mcp.AddTool(mcp.NewTool("add-documents",
		mcp.WithDescription("Add documents to an index, replacing any document with the same primary key. Returns the enqueued task; use get-task to follow indexing progress."),
		mcp.WithString("indexUid",
			mcp.Description("Unique identifier of the index"),
			mcp.Required(),
		),
		mcp.WithArray("documents",
			mcp.Description("JSON array of document objects to add"),
			mcp.Required(),
		),
		mcp.WithString("primaryKey",
			mcp.Description("Attribute to use as the primary key (optional)"),
		),
	), s.handleAddDocuments)

	s.mcp.AddTool(mcp.NewTool("update-documents",
		mcp.WithDescription("Partially update documents in an index. Existing attributes not present in the payload are kept. Returns the enqueued task."),
		mcp.WithString("indexUid",
			mcp.Description("Unique identifier of the index"),
			mcp.Required(),
		),
		mcp.WithArray("documents",
			mcp.Description("JSON array of partial document objects; each must carry the primary key"),
			mcp.Required(),
		),
	), s.handleUpdateDocuments)

	s.mcp.AddTool(mcp.NewTool("delete-document",
		mcp.WithDescription("Delete a single document by its primary key value. Returns the enqueued task."),
		mcp.WithString("indexUid",
			mcp.Description("Unique identifier of the index"),
			mcp.Required(),
		),
		mcp.WithString("documentId",
			mcp.Description("Primary key value of the document to delete"),
			mcp.Required(),
		),
	), s.handleDeleteDocument)

	s.mcp.AddTool(mcp.NewTool("delete-documents",
		mcp.WithDescription("Delete multiple documents by their primary key values. Returns the enqueued task."),
		mcp.WithString("indexUid",
			mcp.Description("Unique identifier of the index"),
			mcp.Required(),
		),
		mcp.WithArray("documentIds",
			mcp.Description("Primary key values of the documents to delete"),
			mcp.Required(),
		),
	), s.handleDeleteDocuments)

	s.mcp.AddTool(mcp.NewTool("delete-all-documents",
		mcp.WithDescription("Delete every document in an index while keeping its settings. This cannot be undone. Returns the enqueued task."),
		mcp.WithString("indexUid",
			mcp.Description("Unique identifier of the index"),
			mcp.Required(),
		),
	), s.handleDeleteAllDocuments)

	// ===========================================
	// SEARCH TOOL
	// ===========================================

	s.mcp.AddTool(mcp.NewTool("search",
		mcp.WithDescription("Search one index, or every index when indexUid is omitted. A broadcast search queries all indexes concurrently and reports per-index hits plus any per-index failures, ordered by index uid. Supports filtering, sorting, and hybrid semantic search."),
		mcp.WithString("query",
			mcp.Description("Search query text"),
			mcp.Required(),
		),
		mcp.WithString("indexUid",
			mcp.Description("Index to search. Omit to search across all indexes."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum hits per index (default: 20). Applied to each index independently in a broadcast search."),
		),
		mcp.WithNumber("offset",
			mcp.Description("Hits to skip per index (default: 0)"),
		),
		mcp.WithString("filter",
			mcp.Description("Filter expression (e.g., 'genre = horror AND year > 2000'). Attributes must be in the index's filterableAttributes; incompatible indexes report a per-index failure."),
		),
		mcp.WithArray("sort",
			mcp.Description("Sort rules (e.g., ['price:asc']). Attributes must be in the index's sortableAttributes."),
		),
		mcp.WithObject("hybrid",
			mcp.Description("Hybrid search parameters: {\"embedder\": \"name\", \"semanticRatio\": 0.5}. embedder is required; semanticRatio must be within [0.0, 1.0] (0 = pure keyword, 1 = pure semantic)."),
		),
		mcp.WithArray("vector",
			mcp.Description("Raw query vector for vector search (array of numbers)"),
		),
	), s.handleSearch)

	// ===========================================
	// SETTINGS TOOLS
	// ===========================================

	s.mcp.AddTool(mcp.NewTool("get-settings",
		mcp.WithDescription("Get the full settings object of an index (searchable/filterable/sortable attributes, ranking rules, embedders, ...)."),
		mcp.WithString("indexUid",
			mcp.Description("Unique identifier of the index"),
			mcp.Required(),
		),
	), s.handleGetSettings)

	s.mcp.AddTool(mcp.NewTool("update-settings",
		mcp.WithDescription("Partially update the settings of an index. Only the fields present in the payload change. Returns the enqueued task."),
		mcp.WithString("indexUid",
			mcp.Description("Unique identifier of the index"),
			mcp.Required(),
		),
		mcp.WithObject("settings",
			mcp.Description("Settings object with the fields to change (e.g., {\"filterableAttributes\": [\"genre\"]})"),
			mcp.Required(),
		),
	), s.handleUpdateSettings)

	// ===========================================
	// TASK TOOLS
	// ===========================================

	s.mcp.AddTool(mcp.NewTool("get-task",
		mcp.WithDescription("Get the status and details of one asynchronous task by uid."),
		mcp.WithNumber("taskUid",
			mcp.Description("Unique identifier of the task"),
			mcp.Required(),
		),
	), s.handleGetTask)

	s.mcp.AddTool(mcp.NewTool("get-tasks",
		mcp.WithDescription("List asynchronous tasks, optionally filtered by status, type, or index."),
		mcp.WithArray("statuses",
			mcp.Description("Filter by status: 'enqueued', 'processing', 'succeeded', 'failed', 'canceled'"),
		),
		mcp.WithArray("types",
			mcp.Description("Filter by type (e.g., 'documentAdditionOrUpdate', 'indexDeletion', 'settingsUpdate')"),
		),
		mcp.WithArray("indexUids",
			mcp.Description("Filter by index uid"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of tasks to return (default: 20)"),
		),
		mcp.WithNumber("from",
			mcp.Description("Task uid to start listing from, descending"),
		),
	), s.handleGetTasks)

	s.mcp.AddTool(mcp.NewTool("cancel-tasks",
		mcp.WithDescription("Cancel enqueued or processing tasks matching the given filters. At least one filter is required."),
		mcp.WithArray("statuses",
			mcp.Description("Cancel tasks with these statuses"),
		),
		mcp.WithArray("types",
			mcp.Description("Cancel tasks of these types"),
		),
		mcp.WithArray("indexUids",
			mcp.Description("Cancel tasks targeting these indexes"),
		),
	), s.handleCancelTasks)

	// ===========================================
	// KEY TOOLS
	// ===========================================

	s.mcp.AddTool(mcp.NewTool("get-keys",
		mcp.WithDescription("List API keys with their actions and index scopes. Requires the master key or a key with keys.get."),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of keys to return (default: 20)"),
		),
		mcp.WithNumber("offset",
			mcp.Description("Number of keys to skip"),
		),
	), s.handleGetKeys)

	s.mcp.AddTool(mcp.NewTool("create-key",
		mcp.WithDescription("Create a new API key with the given actions and index scope. The generated key is returned once; save it."),
		mcp.WithString("name",
			mcp.Description("Human-readable name for the key"),
		),
		mcp.WithString("description",
			mcp.Description("Description of what the key is for"),
		),
		mcp.WithArray("actions",
			mcp.Description("Allowed actions (e.g., ['search'], ['documents.add'], ['*'])"),
			mcp.Required(),
		),
		mcp.WithArray("indexes",
			mcp.Description("Index uids the key may access; ['*'] for all"),
			mcp.Required(),
		),
		mcp.WithString("expiresAt",
			mcp.Description("RFC 3339 expiry timestamp; omit for a non-expiring key"),
		),
	), s.handleCreateKey)

	s.mcp.AddTool(mcp.NewTool("delete-key",
		mcp.WithDescription("Delete an API key by key or uid. This cannot be undone."),
		mcp.WithString("keyOrUid",
			mcp.Description("The key value or its uid"),
			mcp.Required(),
		),
	), s.handleDeleteKey)

	// ===========================================
	// CHAT TOOLS
	// ===========================================

	s.mcp.AddTool(mcp.NewTool("get-chat-workspaces",
		mcp.WithDescription("List chat workspaces configured on the instance."),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of workspaces to return"),
		),
		mcp.WithNumber("offset",
			mcp.Description("Number of workspaces to skip"),
		),
	), s.handleGetChatWorkspaces)

	s.mcp.AddTool(mcp.NewTool("get-chat-workspace-settings",
		mcp.WithDescription("Get the settings of a chat workspace (model source, prompts, ...)."),
		mcp.WithString("workspaceUid",
			mcp.Description("Unique identifier of the chat workspace"),
			mcp.Required(),
		),
	), s.handleGetChatWorkspaceSettings)

	s.mcp.AddTool(mcp.NewTool("update-chat-workspace-settings",
		mcp.WithDescription("Update the settings of a chat workspace. Only the fields present in the payload change."),
		mcp.WithString("workspaceUid",
			mcp.Description("Unique identifier of the chat workspace"),
			mcp.Required(),
		),
		mcp.WithObject("settings",
			mcp.Description("Settings object with the fields to change"),
			mcp.Required(),
		),
	), s.handleUpdateChatWorkspaceSettings)

	s.mcp.AddTool(mcp.NewTool("create-chat-completion",
		mcp.WithDescription("Run a chat completion in a workspace. The streamed response is collected and returned as one message."),
		mcp.WithString("workspaceUid",
			mcp.Description("Unique identifier of the chat workspace"),
			mcp.Required(),
		),
		mcp.WithArray("messages",
			mcp.Description("Conversation messages: [{\"role\": \"user\", \"content\": \"...\"}, ...]"),
			mcp.Required(),
		),
		mcp.WithString("model",
			mcp.Description("Model to use (default: 'gpt-3.5-turbo')"),
		),
	), s.handleCreateChatCompletion)
}

// Serve starts the MCP server with stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("starting MCP server with stdio transport")
	return server.ServeStdio(s.mcp)
}
