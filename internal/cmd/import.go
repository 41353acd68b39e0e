package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/meili-tools/meilisearch-mcp/internal/importer"
	"github.com/meili-tools/meilisearch-mcp/internal/meili"
)

var (
	importIndex      string
	importPrimaryKey string
	importBatchSize  int
)

// importCmd represents the import command.
var importCmd = &cobra.Command{
	Use:   "import [paths...]",
	Short: "Import documents from local files into an index",
	Long: `Import documents from local JSON, NDJSON or YAML files into a
Meilisearch index.

Directories are walked recursively for supported files. Documents are
enqueued in batches; use the get-task MCP tool or the Meilisearch task API
to follow indexing progress.

Example:
  meilisearch-mcp import --index movies ./data/movies.ndjson ./extra/`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.Default()

		addr := viper.GetString("http_addr")
		key := viper.GetString("master_key")
		if addr == "" {
			addr = "http://localhost:7700"
		}

		logger.Info("starting document import",
			"meilisearch_url", addr,
			"index", importIndex,
			"paths", args,
		)

		client := meili.New(addr, key)

		opts := importer.Options{
			Paths:      args,
			IndexUID:   importIndex,
			PrimaryKey: importPrimaryKey,
			BatchSize:  importBatchSize,
		}

		result, err := importer.Run(cmd.Context(), client, opts, logger)
		if err != nil {
			logger.Error("import failed", "error", err)
			return fmt.Errorf("import failed: %w", err)
		}

		logger.Info("import completed",
			"total_files", result.TotalFiles,
			"parsed", result.SuccessCount,
			"errors", result.ErrorCount,
			"documents", result.DocumentCount,
			"tasks", len(result.TaskUIDs),
			"duration", result.Duration.String(),
		)

		if result.ErrorCount > 0 {
			logger.Warn("some files failed to parse", "count", result.ErrorCount)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	// Import-specific flags
	importCmd.Flags().StringVar(&importIndex, "index", "", "target index uid (required)")
	importCmd.Flags().StringVar(&importPrimaryKey, "primary-key", "", "primary key attribute (optional)")
	importCmd.Flags().IntVar(&importBatchSize, "batch-size", 1000, "documents per add-documents request")
	importCmd.MarkFlagRequired("index")
}
