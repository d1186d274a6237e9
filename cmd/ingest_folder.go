package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Ashfaaq98/signalroot-console/internal/bus"
	"github.com/Ashfaaq98/signalroot-console/internal/ingest"
	"github.com/Ashfaaq98/signalroot-console/internal/store"
)

var (
	folderDir      string
	folderWatch    bool
	folderPatterns string
)

// ingestFolderCmd represents the ingest-folder command
var ingestFolderCmd = &cobra.Command{
	Use:   "ingest-folder",
	Short: "Load incident records from files in a directory (optionally watch for changes)",
	Long: `Load incidents from a directory. Supports JSONL (one incident per line) and
JSON files holding an incident object or an array of them.

Examples:
  # One-shot: ingest existing files and exit
  signalroot ingest-folder --dir ./incoming

  # Watch mode: tail JSONL appends and reprocess JSON changes
  signalroot ingest-folder --dir ./incoming --watch

  # Only JSONL files
  signalroot ingest-folder --pattern "*.jsonl"`,
	RunE: runIngestFolder,
}

func init() {
	rootCmd.AddCommand(ingestFolderCmd)

	ingestFolderCmd.Flags().StringVar(&folderDir, "dir", "", "Directory to read files from (default ingest.dir)")
	ingestFolderCmd.Flags().BoolVar(&folderWatch, "watch", false, "Watch directory for changes and tail JSONL files")
	ingestFolderCmd.Flags().StringVar(&folderPatterns, "pattern", "*.jsonl,*.json", "Comma-separated glob patterns to match (e.g. \"*.jsonl,*.json\")")
}

func runIngestFolder(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := GetConfig()

	logger := newLogger("ingest-folder", cfg.Log, false)

	dir := folderDir
	if dir == "" {
		dir = cfg.Ingest.Dir
	}

	st, err := store.NewStore(resolvePath(cfg.Database.Path))
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	eventBus := bus.NewBus(cfg.Redis.URL, newLogger("bus", cfg.Log, true))
	defer eventBus.Close()

	var patterns []string
	for _, p := range strings.Split(folderPatterns, ",") {
		if s := strings.TrimSpace(p); s != "" {
			patterns = append(patterns, s)
		}
	}

	opts := ingest.FolderOptions{
		Dir:      resolvePath(dir),
		Watch:    folderWatch,
		Patterns: patterns,
		Logger:   logger,
	}
	logger.Printf("Starting ingest-folder dir=%s watch=%v patterns=%v", opts.Dir, opts.Watch, opts.Patterns)

	ingestor := ingest.NewFolderIngestor(st, eventBus, opts)
	if err := ingestor.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("ingest-folder error: %w", err)
	}

	ingested, failed := ingestor.Stats()
	logger.Printf("ingest-folder completed: %d ingested, %d failed", ingested, failed)
	return nil
}
