// Package meili provides an HTTP client for the Meilisearch REST API.
package meili

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Version is stamped into the User-Agent header on every request.
// Overwritten at build time via the main package.
var Version = "dev"

// Client is an HTTP client scoped to a single Meilisearch instance.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a client for the instance at baseURL. An empty apiKey is
// valid for unprotected instances.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// BaseURL returns the configured instance URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// HasAPIKey returns true if an API key is configured.
func (c *Client) HasAPIKey() bool {
	return c.apiKey != ""
}

// Health checks that the engine is up.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var resp Health
	if err := c.get(ctx, "/health", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ServerVersion returns the engine build information.
func (c *Client) ServerVersion(ctx context.Context) (*VersionInfo, error) {
	var resp VersionInfo
	if err := c.get(ctx, "/version", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stats returns instance-wide statistics.
func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var resp Stats
	if err := c.get(ctx, "/stats", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// IndexStats returns statistics for a single index.
func (c *Client) IndexStats(ctx context.Context, indexUID string) (*IndexStats, error) {
	var resp IndexStats
	if err := c.get(ctx, "/indexes/"+url.PathEscape(indexUID)+"/stats", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListIndexes lists indexes with pagination.
func (c *Client) ListIndexes(ctx context.Context, limit, offset int) (*IndexesResponse, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		params.Set("offset", strconv.Itoa(offset))
	}

	path := "/indexes"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var resp IndexesResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListIndexUIDs returns the uid of every index known to the engine,
// following pagination until the full set is collected.
func (c *Client) ListIndexUIDs(ctx context.Context) ([]string, error) {
	const pageSize = 200

	var uids []string
	offset := 0
	for {
		page, err := c.ListIndexes(ctx, pageSize, offset)
		if err != nil {
			return nil, err
		}
		for _, idx := range page.Results {
			uids = append(uids, idx.UID)
		}
		offset += len(page.Results)
		if offset >= page.Total || len(page.Results) == 0 {
			return uids, nil
		}
	}
}

// GetIndex fetches a single index.
func (c *Client) GetIndex(ctx context.Context, indexUID string) (*Index, error) {
	var resp Index
	if err := c.get(ctx, "/indexes/"+url.PathEscape(indexUID), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateIndex enqueues index creation. primaryKey may be empty.
func (c *Client) CreateIndex(ctx context.Context, indexUID, primaryKey string) (*TaskInfo, error) {
	body := map[string]any{"uid": indexUID}
	if primaryKey != "" {
		body["primaryKey"] = primaryKey
	}
	var resp TaskInfo
	if err := c.post(ctx, "/indexes", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteIndex enqueues index deletion.
func (c *Client) DeleteIndex(ctx context.Context, indexUID string) (*TaskInfo, error) {
	var resp TaskInfo
	if err := c.delete(ctx, "/indexes/"+url.PathEscape(indexUID), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Documents fetches documents from an index.
func (c *Client) Documents(ctx context.Context, indexUID string, q *DocumentsQuery) (*DocumentsResponse, error) {
	params := url.Values{}
	if q != nil {
		if q.Offset > 0 {
			params.Set("offset", strconv.Itoa(q.Offset))
		}
		if q.Limit > 0 {
			params.Set("limit", strconv.Itoa(q.Limit))
		}
		if len(q.Fields) > 0 {
			params.Set("fields", strings.Join(q.Fields, ","))
		}
	}

	path := "/indexes/" + url.PathEscape(indexUID) + "/documents"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var resp DocumentsResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Document fetches a single document by its primary key value.
func (c *Client) Document(ctx context.Context, indexUID, documentID string) (map[string]any, error) {
	var resp map[string]any
	path := "/indexes/" + url.PathEscape(indexUID) + "/documents/" + url.PathEscape(documentID)
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// AddDocuments enqueues an add-or-replace of documents. primaryKey may be
// empty when the index already knows its primary key.
func (c *Client) AddDocuments(ctx context.Context, indexUID string, documents []map[string]any, primaryKey string) (*TaskInfo, error) {
	path := "/indexes/" + url.PathEscape(indexUID) + "/documents"
	if primaryKey != "" {
		path += "?primaryKey=" + url.QueryEscape(primaryKey)
	}
	var resp TaskInfo
	if err := c.post(ctx, path, documents, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateDocuments enqueues a partial update of documents.
func (c *Client) UpdateDocuments(ctx context.Context, indexUID string, documents []map[string]any) (*TaskInfo, error) {
	var resp TaskInfo
	if err := c.put(ctx, "/indexes/"+url.PathEscape(indexUID)+"/documents", documents, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteDocument enqueues deletion of one document.
func (c *Client) DeleteDocument(ctx context.Context, indexUID, documentID string) (*TaskInfo, error) {
	var resp TaskInfo
	path := "/indexes/" + url.PathEscape(indexUID) + "/documents/" + url.PathEscape(documentID)
	if err := c.delete(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteDocuments enqueues deletion of the given document ids.
func (c *Client) DeleteDocuments(ctx context.Context, indexUID string, documentIDs []string) (*TaskInfo, error) {
	var resp TaskInfo
	path := "/indexes/" + url.PathEscape(indexUID) + "/documents/delete-batch"
	if err := c.post(ctx, path, documentIDs, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteAllDocuments enqueues deletion of every document in the index.
func (c *Client) DeleteAllDocuments(ctx context.Context, indexUID string) (*TaskInfo, error) {
	var resp TaskInfo
	if err := c.delete(ctx, "/indexes/"+url.PathEscape(indexUID)+"/documents", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Search runs a search against one index.
func (c *Client) Search(ctx context.Context, indexUID string, q *SearchQuery) (*SearchResult, error) {
	var resp SearchResult
	if err := c.post(ctx, "/indexes/"+url.PathEscape(indexUID)+"/search", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Settings fetches the full settings object of an index. The shape is
// owned by the engine and passed through untouched.
func (c *Client) Settings(ctx context.Context, indexUID string) (map[string]any, error) {
	var resp map[string]any
	if err := c.get(ctx, "/indexes/"+url.PathEscape(indexUID)+"/settings", &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// UpdateSettings enqueues a partial settings update.
func (c *Client) UpdateSettings(ctx context.Context, indexUID string, settings map[string]any) (*TaskInfo, error) {
	var resp TaskInfo
	if err := c.patch(ctx, "/indexes/"+url.PathEscape(indexUID)+"/settings", settings, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Tasks lists tasks matching the query filters.
func (c *Client) Tasks(ctx context.Context, q *TasksQuery) (*TasksResponse, error) {
	path := "/tasks"
	if params := tasksParams(q); len(params) > 0 {
		path += "?" + params.Encode()
	}

	var resp TasksResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Task fetches a single task by uid.
func (c *Client) Task(ctx context.Context, taskUID int64) (*Task, error) {
	var resp Task
	if err := c.get(ctx, "/tasks/"+strconv.FormatInt(taskUID, 10), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CancelTasks enqueues cancelation of tasks matching the query filters.
// The engine requires at least one filter.
func (c *Client) CancelTasks(ctx context.Context, q *TasksQuery) (*TaskInfo, error) {
	path := "/tasks/cancel"
	if params := tasksParams(q); len(params) > 0 {
		path += "?" + params.Encode()
	}

	var resp TaskInfo
	if err := c.post(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func tasksParams(q *TasksQuery) url.Values {
	params := url.Values{}
	if q == nil {
		return params
	}
	if len(q.Statuses) > 0 {
		params.Set("statuses", strings.Join(q.Statuses, ","))
	}
	if len(q.Types) > 0 {
		params.Set("types", strings.Join(q.Types, ","))
	}
	if len(q.IndexUIDs) > 0 {
		params.Set("indexUids", strings.Join(q.IndexUIDs, ","))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.From > 0 {
		params.Set("from", strconv.FormatInt(q.From, 10))
	}
	return params
}

// Keys lists API keys with pagination.
func (c *Client) Keys(ctx context.Context, limit, offset int) (*KeysResponse, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		params.Set("offset", strconv.Itoa(offset))
	}

	path := "/keys"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var resp KeysResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateKey creates an API key.
func (c *Client) CreateKey(ctx context.Context, key *Key) (*Key, error) {
	var resp Key
	if err := c.post(ctx, "/keys", key, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteKey deletes an API key by key or uid.
func (c *Client) DeleteKey(ctx context.Context, keyOrUID string) error {
	return c.delete(ctx, "/keys/"+url.PathEscape(keyOrUID), nil)
}

// ChatWorkspaces lists chat workspaces with pagination.
func (c *Client) ChatWorkspaces(ctx context.Context, limit, offset int) (*ChatWorkspacesResponse, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		params.Set("offset", strconv.Itoa(offset))
	}

	path := "/chats"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var resp ChatWorkspacesResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ChatWorkspaceSettings fetches the settings of a chat workspace.
func (c *Client) ChatWorkspaceSettings(ctx context.Context, workspaceUID string) (map[string]any, error) {
	var resp map[string]any
	if err := c.get(ctx, "/chats/"+url.PathEscape(workspaceUID)+"/settings", &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// UpdateChatWorkspaceSettings patches the settings of a chat workspace.
func (c *Client) UpdateChatWorkspaceSettings(ctx context.Context, workspaceUID string, settings map[string]any) (map[string]any, error) {
	var resp map[string]any
	if err := c.patch(ctx, "/chats/"+url.PathEscape(workspaceUID)+"/settings", settings, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// get performs a GET request and decodes the JSON response.
func (c *Client) get(ctx context.Context, path string, result any) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, result)
}

// post performs a POST request and decodes the JSON response.
func (c *Client) post(ctx context.Context, path string, body, result any) error {
	return c.doJSON(ctx, http.MethodPost, path, body, result)
}

// put performs a PUT request and decodes the JSON response.
func (c *Client) put(ctx context.Context, path string, body, result any) error {
	return c.doJSON(ctx, http.MethodPut, path, body, result)
}

// patch performs a PATCH request and decodes the JSON response.
func (c *Client) patch(ctx context.Context, path string, body, result any) error {
	return c.doJSON(ctx, http.MethodPatch, path, body, result)
}

// delete performs a DELETE request and decodes the JSON response.
func (c *Client) delete(ctx context.Context, path string, result any) error {
	return c.doJSON(ctx, http.MethodDelete, path, nil, result)
}

// doJSON performs an HTTP request with an optional JSON body and decodes
// the JSON response. Non-2xx responses decode into an *APIError.
func (c *Client) doJSON(ctx context.Context, method, path string, body, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}

	if result != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "meilisearch-mcp/"+Version)
	// Only send credentials when configured (allows unprotected instances)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return req, nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	data, err := io.ReadAll(resp.Body)
	if err != nil || json.Unmarshal(data, apiErr) != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(data))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
	}
	return apiErr
}
