package mcp

import (
	"strings"
	"sync"

	"github.com/meili-tools/meilisearch-mcp/internal/meili"
)

// Connection owns the live Meilisearch client. Settings can be changed at
// runtime through the update-connection-settings tool, so handlers take a
// snapshot via Client() at the start of a call; Update swaps the whole
// client at once, which keeps an in-flight dispatch on the URL/key pair it
// started with.
type Connection struct {
	mu     sync.RWMutex
	url    string
	apiKey string
	client *meili.Client
}

// NewConnection creates the connection holder for the given instance.
func NewConnection(url, apiKey string) *Connection {
	return &Connection{
		url:    url,
		apiKey: apiKey,
		client: meili.New(url, apiKey),
	}
}

// Client returns the current client snapshot.
func (c *Connection) Client() *meili.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.client
}

// Update replaces the connection settings and rebuilds the client. Empty
// arguments keep their current value.
func (c *Connection) Update(url, apiKey string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if url != "" {
		c.url = url
	}
	if apiKey != "" {
		c.apiKey = apiKey
	}
	c.client = meili.New(c.url, c.apiKey)
}

// Settings returns the URL and a masked API key for display.
func (c *Connection) Settings() (url, maskedKey string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.url, maskKey(c.apiKey)
}

// maskKey hides all but the last four characters of an API key.
func maskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
