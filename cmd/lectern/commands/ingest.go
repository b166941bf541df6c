package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/lectern-ai/lectern-go/internal/assistant"
	"github.com/lectern-ai/lectern-go/internal/config"
	"github.com/lectern-ai/lectern-go/internal/embedder"
	"github.com/lectern-ai/lectern-go/internal/logging"
)

// NewIngestCmd constructs the `lectern ingest` command, which indexes course
// documents into the vector store without starting the server.
func NewIngestCmd() *cobra.Command {
	var dir string
	var clear bool

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest course documents into the vector store",
		Long: `Chunk, embed, and index the course documents in a directory.

Each document is a structured course script: a title and link header
followed by lesson markers. Courses whose titles are already indexed are
skipped unless --clear wipes the index first.

Required environment variables:
  QDRANT_HOST       Qdrant server hostname (default: localhost)
  QDRANT_PORT       Qdrant gRPC port (default: 6334)
  QDRANT_API_KEY    Optional API key for authenticated clusters
  MODEL_PROVIDER    Embedding backend: openai, anthropic, azure, gemini, ollama
  EMBEDDING_*       Provider-specific overrides (see README)

Only embedding credentials are needed; no chat model is initialised.

Examples:
  lectern ingest
  lectern ingest --dir ./docs
  lectern ingest --clear`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			if dir == "" {
				dir = getEnvOrDefault("DOCS_DIR", "./docs")
			}

			if err := embedder.Validate(log); err != nil {
				return fmt.Errorf("ingest: %w", err)
			}
			emb, err := embedder.NewFromEnv()
			if err != nil {
				return fmt.Errorf("ingest: failed to initialise embedder: %w", err)
			}

			idx, err := buildIndex(ctx, log)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}
			defer func() { _ = idx.Close() }()

			ing, err := assistant.NewIngestor(&assistant.Config{
				Index:        idx,
				Embedder:     emb,
				ChunkSize:    config.ChunkSize(),
				ChunkOverlap: config.ChunkOverlap(),
				Logger:       log,
			})
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			report, err := ing.IngestDirectory(ctx, dir, clear, func(msg string) {
				fmt.Fprintln(cmd.OutOrStdout(), msg)
			})
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Directory of course documents (default DOCS_DIR or ./docs)")
	cmd.Flags().BoolVar(&clear, "clear", false, "Wipe the index before ingesting")

	return cmd
}

// printReport renders an ingestion report for terminal output.
func printReport(w io.Writer, report *assistant.IngestReport) {
	fmt.Fprintf(w, "Courses added:   %d\n", report.CoursesAdded)
	fmt.Fprintf(w, "Chunks added:    %d\n", report.ChunksAdded)
	fmt.Fprintf(w, "Courses skipped: %d\n", len(report.CoursesSkipped))
	fmt.Fprintf(w, "Files skipped:   %d\n", len(report.FilesSkipped))
	if len(report.Warnings) > 0 {
		fmt.Fprintf(w, "Warnings (%d):\n", len(report.Warnings))
		for _, warn := range report.Warnings {
			fmt.Fprintf(w, "  %s\n", warn)
		}
	}
}
