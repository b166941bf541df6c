package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cloudwego/eino/callbacks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/lectern-ai/lectern-go/internal/assistant"
	"github.com/lectern-ai/lectern-go/internal/config"
	"github.com/lectern-ai/lectern-go/internal/embedder"
	"github.com/lectern-ai/lectern-go/internal/logging"
	"github.com/lectern-ai/lectern-go/internal/provider"
	"github.com/lectern-ai/lectern-go/internal/server"
	"github.com/lectern-ai/lectern-go/internal/tracing"
)

// NewServeCmd constructs the `lectern serve` command, which ingests the
// course corpus and starts the HTTP API.
func NewServeCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Lectern HTTP API",
		Long: `Start the Lectern HTTP API on localhost.

On boot the server ingests any course documents found under DOCS_DIR
(default ./docs), then serves /api/query, /api/courses, /api/health,
/api/ready, and /metrics.

Examples:
  lectern serve
  lectern serve --port 9090
  MODEL_PROVIDER=anthropic lectern serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			// Flag defaults are resolved here rather than at registration so
			// values loaded from the config file into the environment by the
			// persistent pre-run still apply.
			if host == "" {
				host = getEnvOrDefault("SERVER_HOST", "127.0.0.1")
			}
			if port == 0 {
				port = getEnvInt("SERVER_PORT", 8000)
			}

			log.Info("serve starting", slog.String("provider", os.Getenv("MODEL_PROVIDER")))

			// Setup Langfuse tracing — opt-in, no-op if keys are absent.
			handler, flush, ok := tracing.Setup()
			if ok {
				callbacks.AppendGlobalHandlers(handler)
				defer flush()
				log.Info("langfuse tracing enabled")
			} else {
				log.Info("langfuse tracing disabled", slog.String("reason", "LANGFUSE_PUBLIC_KEY not set"))
			}

			providerCfg := provider.ConfigFromEnv()
			chatModel, err := provider.New(ctx, providerCfg)
			if err != nil {
				return fmt.Errorf("serve: failed to initialise model provider: %w", err)
			}
			log.Info("provider initialised", slog.String("provider", string(providerCfg.Backend)))

			if err := embedder.Validate(log); err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			emb, err := embedder.NewFromEnv()
			if err != nil {
				return fmt.Errorf("serve: failed to initialise embedder: %w", err)
			}

			idx, err := buildIndex(ctx, log)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer func() { _ = idx.Close() }()

			sessions, err := buildSessions(log)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer func() { _ = sessions.Close() }()

			reg := prometheus.NewRegistry()

			core, err := assistant.New(&assistant.Config{
				Index:           idx,
				Embedder:        emb,
				ChatModel:       chatModel,
				Sessions:        sessions,
				ChunkSize:       config.ChunkSize(),
				ChunkOverlap:    config.ChunkOverlap(),
				MaxResults:      config.MaxResults(),
				Logger:          log,
				MetricsRegistry: reg,
			})
			if err != nil {
				return fmt.Errorf("serve: failed to initialise assistant: %w", err)
			}

			// Ingest the course corpus on boot so a fresh index is queryable
			// immediately. Documents already indexed are skipped.
			if dir := getEnvOrDefault("DOCS_DIR", "./docs"); dirExists(dir) {
				log.Info("ingesting course documents", slog.String("dir", dir))
				report, err := core.IngestDirectory(ctx, dir, false, nil)
				if err != nil {
					return fmt.Errorf("serve: ingest on boot: %w", err)
				}
				log.Info("ingest complete",
					slog.Int("courses_added", report.CoursesAdded),
					slog.Int("chunks_added", report.ChunksAdded),
					slog.Int("courses_skipped", len(report.CoursesSkipped)))
			} else {
				log.Info("ingest on boot skipped", slog.String("reason", dir+" does not exist"))
			}

			pingers := buildPingers(providerCfg, idx, sessions, log)

			srv, err := server.New(core, &server.Config{
				Host:            host,
				Port:            port,
				Logger:          log,
				Pingers:         pingers,
				MetricsRegistry: reg,
				MetricsGatherer: reg,
			})
			if err != nil {
				return fmt.Errorf("serve: failed to create server: %w", err)
			}

			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Host address to bind to (default SERVER_HOST or 127.0.0.1)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "TCP port to listen on (default SERVER_PORT or 8000)")

	return cmd
}
