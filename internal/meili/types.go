package meili

// Index describes a single index.
type Index struct {
	UID        string `json:"uid"`
	PrimaryKey string `json:"primaryKey,omitempty"`
	CreatedAt  string `json:"createdAt,omitempty"`
	UpdatedAt  string `json:"updatedAt,omitempty"`
}

// IndexesResponse is the paginated response from the indexes endpoint.
type IndexesResponse struct {
	Results []Index `json:"results"`
	Offset  int     `json:"offset"`
	Limit   int     `json:"limit"`
	Total   int     `json:"total"`
}

// Health is the response from the health endpoint.
type Health struct {
	Status string `json:"status"`
}

// VersionInfo is the response from the version endpoint.
type VersionInfo struct {
	CommitSha  string `json:"commitSha"`
	CommitDate string `json:"commitDate"`
	PkgVersion string `json:"pkgVersion"`
}

// IndexStats holds per-index statistics.
type IndexStats struct {
	NumberOfDocuments int64            `json:"numberOfDocuments"`
	IsIndexing        bool             `json:"isIndexing"`
	FieldDistribution map[string]int64 `json:"fieldDistribution,omitempty"`
}

// Stats holds instance-wide statistics.
type Stats struct {
	DatabaseSize int64                 `json:"databaseSize"`
	LastUpdate   string                `json:"lastUpdate,omitempty"`
	Indexes      map[string]IndexStats `json:"indexes"`
}

// DocumentsQuery holds optional parameters for fetching documents.
type DocumentsQuery struct {
	Offset int
	Limit  int
	Fields []string
}

// DocumentsResponse is the paginated response from the documents endpoint.
type DocumentsResponse struct {
	Results []map[string]any `json:"results"`
	Offset  int              `json:"offset"`
	Limit   int              `json:"limit"`
	Total   int              `json:"total"`
}

// TaskInfo is the summary returned when an asynchronous operation is
// enqueued (document writes, index mutations, settings updates).
type TaskInfo struct {
	TaskUID    int64  `json:"taskUid"`
	IndexUID   string `json:"indexUid,omitempty"`
	Status     string `json:"status"`
	Type       string `json:"type"`
	EnqueuedAt string `json:"enqueuedAt"`
}

// Task is a fully detailed task record.
type Task struct {
	UID        int64          `json:"uid"`
	IndexUID   string         `json:"indexUid,omitempty"`
	Status     string         `json:"status"`
	Type       string         `json:"type"`
	CanceledBy int64          `json:"canceledBy,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	Error      *APIError      `json:"error,omitempty"`
	Duration   string         `json:"duration,omitempty"`
	EnqueuedAt string         `json:"enqueuedAt,omitempty"`
	StartedAt  string         `json:"startedAt,omitempty"`
	FinishedAt string         `json:"finishedAt,omitempty"`
}

// TasksQuery filters the task list and cancelation endpoints.
type TasksQuery struct {
	Statuses  []string
	Types     []string
	IndexUIDs []string
	Limit     int
	From      int64
}

// TasksResponse is the paginated response from the tasks endpoint.
type TasksResponse struct {
	Results []Task `json:"results"`
	Total   int64  `json:"total"`
	Limit   int    `json:"limit"`
	From    int64  `json:"from,omitempty"`
	Next    int64  `json:"next,omitempty"`
}

// Key is an API key.
type Key struct {
	UID         string   `json:"uid,omitempty"`
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Key         string   `json:"key,omitempty"`
	Actions     []string `json:"actions"`
	Indexes     []string `json:"indexes"`
	ExpiresAt   *string  `json:"expiresAt"`
	CreatedAt   string   `json:"createdAt,omitempty"`
	UpdatedAt   string   `json:"updatedAt,omitempty"`
}

// KeysResponse is the paginated response from the keys endpoint.
type KeysResponse struct {
	Results []Key `json:"results"`
	Offset  int   `json:"offset"`
	Limit   int   `json:"limit"`
	Total   int   `json:"total"`
}

// HybridQuery configures hybrid (lexical + semantic) search.
type HybridQuery struct {
	Embedder      string   `json:"embedder"`
	SemanticRatio *float64 `json:"semanticRatio,omitempty"`
}

// SearchQuery is the body of a search request against one index.
type SearchQuery struct {
	Query  string       `json:"q"`
	Limit  int          `json:"limit,omitempty"`
	Offset int          `json:"offset,omitempty"`
	Filter string       `json:"filter,omitempty"`
	Sort   []string     `json:"sort,omitempty"`
	Hybrid *HybridQuery `json:"hybrid,omitempty"`
	Vector []float64    `json:"vector,omitempty"`
}

// SearchResult is the engine response for one index. Hits are opaque
// documents; their shape is owned by the index.
type SearchResult struct {
	Hits               []map[string]any `json:"hits"`
	EstimatedTotalHits int              `json:"estimatedTotalHits"`
	Query              string           `json:"query"`
	ProcessingTimeMs   int              `json:"processingTimeMs"`
	Limit              int              `json:"limit"`
	Offset             int              `json:"offset"`
}

// ChatWorkspace identifies a chat workspace.
type ChatWorkspace struct {
	UID string `json:"uid"`
}

// ChatWorkspacesResponse is the paginated response from the chats endpoint.
type ChatWorkspacesResponse struct {
	Results []ChatWorkspace `json:"results"`
	Offset  int             `json:"offset"`
	Limit   int             `json:"limit"`
	Total   int             `json:"total"`
}

// ChatMessage is one turn of a chat conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
