// meilisearch-mcp is an MCP server that exposes the Meilisearch API as
// tools over the Model Context Protocol.
package main

import (
	"fmt"
	"os"

	"github.com/meili-tools/meilisearch-mcp/internal/cmd"
	"github.com/meili-tools/meilisearch-mcp/internal/meili"
)

// Build information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildTime = "unknown"
)

func main() {
	// Set version info for commands and the client User-Agent
	cmd.SetVersionInfo(version, gitCommit, buildTime)
	meili.Version = version

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
