// Package importer loads documents from local files and pushes them into a
// Meilisearch index in batches.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/meili-tools/meilisearch-mcp/internal/meili"
)

// Options configures an import run.
type Options struct {
	// Paths are files or directories; directories are walked recursively
	// for supported extensions (.json, .ndjson, .jsonl, .yaml, .yml).
	Paths      []string
	IndexUID   string
	PrimaryKey string
	BatchSize  int
}

// Result holds statistics about the import run.
type Result struct {
	TotalFiles    int
	SuccessCount  int
	ErrorCount    int
	DocumentCount int
	TaskUIDs      []int64
	Duration      time.Duration
}

// Run walks the given paths, parses every supported document file and
// enqueues the documents on the target index. One unreadable file is
// logged and skipped; it does not abort the run.
func Run(ctx context.Context, client *meili.Client, opts Options, logger *slog.Logger) (*Result, error) {
	startTime := time.Now()

	if opts.IndexUID == "" {
		return nil, fmt.Errorf("index uid is required")
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 1000
	}

	files, err := collectFiles(opts.Paths)
	if err != nil {
		return nil, err
	}

	result := &Result{TotalFiles: len(files)}
	var pending []map[string]any

	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		task, err := client.AddDocuments(ctx, opts.IndexUID, pending, opts.PrimaryKey)
		if err != nil {
			return fmt.Errorf("failed to add documents: %w", err)
		}
		logger.Info("batch enqueued", "documents", len(pending), "task_uid", task.TaskUID)
		result.TaskUIDs = append(result.TaskUIDs, task.TaskUID)
		pending = pending[:0]
		return nil
	}

	for _, file := range files {
		docs, err := LoadFile(file)
		if err != nil {
			logger.Warn("skipping file", "file", file, "error", err)
			result.ErrorCount++
			continue
		}

		logger.Debug("parsed file", "file", file, "documents", len(docs))
		result.SuccessCount++
		result.DocumentCount += len(docs)

		for _, doc := range docs {
			pending = append(pending, doc)
			if len(pending) >= opts.BatchSize {
				if err := flush(); err != nil {
					return nil, err
				}
			}
		}
	}

	if err := flush(); err != nil {
		return nil, err
	}

	result.Duration = time.Since(startTime)
	return result, nil
}

// collectFiles expands the given paths into the list of document files.
func collectFiles(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to access path: %w", err)
		}

		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		err = filepath.Walk(path, func(p string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if fi.IsDir() {
				return nil
			}
			if supportedExt(filepath.Ext(p)) {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk directory: %w", err)
		}
	}
	return files, nil
}

func supportedExt(ext string) bool {
	switch ext {
	case ".json", ".ndjson", ".jsonl", ".yaml", ".yml":
		return true
	}
	return false
}
