package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/meili-tools/meilisearch-mcp/internal/mcp"
)

var (
	httpAddr  string
	masterKey string
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the MCP server and listen for requests via stdio.

The server connects to a Meilisearch instance and exposes its API as MCP tools.

Environment Variables:
  MEILI_HTTP_ADDR   - URL of the Meilisearch instance (default: http://localhost:7700)
  MEILI_MASTER_KEY  - API key for authentication (optional for unprotected instances)
  MEILI_LOG_LEVEL   - Log level (debug, info, warn, error)
  MEILI_LOG_FORMAT  - Log format (json, text)
  MEILI_LOG_OUTPUT  - Log output (stderr, /path/to/file, /path/to/dir/)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.Default()

		addr := viper.GetString("http_addr")
		key := viper.GetString("master_key")
		if addr == "" {
			addr = "http://localhost:7700"
		}

		logger.Info("starting MCP server",
			"version", version,
			"commit", gitCommit,
			"meilisearch_url", addr,
			"authenticated", key != "",
		)

		conn := mcp.NewConnection(addr, key)

		// A dead instance is not fatal at startup: the connection can be
		// repointed at runtime via update-connection-settings.
		if health, err := conn.Client().Health(cmd.Context()); err != nil {
			logger.Warn("Meilisearch not reachable at startup", "url", addr, "error", err)
		} else {
			logger.Info("connected to Meilisearch", "status", health.Status)
		}

		mcpServer := mcp.NewServer(conn, version, logger)

		logger.Info("MCP server ready, listening on stdio")

		// Serve (blocks until shutdown)
		return mcpServer.Serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	// Serve-specific flags
	serveCmd.Flags().StringVar(&httpAddr, "url", "", "URL of the Meilisearch instance")
	serveCmd.Flags().StringVar(&masterKey, "api-key", "", "API key for authentication")

	// Bind flags to viper
	viper.BindPFlag("http_addr", serveCmd.Flags().Lookup("url"))
	viper.BindPFlag("master_key", serveCmd.Flags().Lookup("api-key"))
}
