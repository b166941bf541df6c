// Package assistant wires the full pipeline behind one facade: document
// ingestion into the vector index, the retrieval tools, the tool-calling
// orchestrator, and session history. The HTTP server and the CLI talk to
// this package only, so swapping a backend (index, embedder, chat model,
// session store) never touches the surfaces above it.
package assistant

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cloudwego/eino/components/model"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lectern-ai/lectern-go/internal/agent"
	"github.com/lectern-ai/lectern-go/internal/embedder"
	"github.com/lectern-ai/lectern-go/internal/index"
	"github.com/lectern-ai/lectern-go/internal/logging"
	"github.com/lectern-ai/lectern-go/internal/retrieval"
	"github.com/lectern-ai/lectern-go/internal/session"
	"github.com/lectern-ai/lectern-go/internal/tools"
)

// Config holds the dependencies and tuning knobs for the assistant.
type Config struct {
	// Index is the vector index holding the course catalog and content.
	Index index.Index

	// Embedder converts course text and queries into vectors.
	Embedder embedder.Embedder

	// ChatModel is the tool-calling model used by the orchestrator.
	ChatModel model.ToolCallingChatModel

	// Sessions persists conversation history across turns.
	Sessions session.Store

	// ChunkSize is the maximum chunk size in characters. Defaults to
	// config.DefaultChunkSize if zero.
	ChunkSize int

	// ChunkOverlap is the trailing overlap window in characters. Defaults
	// to config.DefaultChunkOverlap if zero.
	ChunkOverlap int

	// MaxResults caps the chunks returned per tool search. Defaults to
	// retrieval.DefaultMaxResults if zero.
	MaxResults int

	// SystemPrompt overrides the orchestrator's system prompt when set.
	SystemPrompt string

	// Logger receives operational logs. Defaults to slog.Default().
	Logger *slog.Logger

	// MetricsRegistry receives tool and ingestion metrics. A private
	// registry is used when nil.
	MetricsRegistry prometheus.Registerer
}

// CourseAnalytics summarizes the indexed corpus for the analytics endpoint.
type CourseAnalytics struct {
	TotalCourses int      `json:"total_courses"`
	CourseTitles []string `json:"course_titles"`
}

// Assistant answers questions about indexed course material and ingests new
// material. Safe for concurrent use once ingestion has completed.
type Assistant struct {
	*Ingestor

	sessions session.Store
	agent    *agent.Agent
}

// New validates the configuration and assembles the ingestor, the retrieval
// service, the tool registry, and the orchestrator.
func New(cfg *Config) (*Assistant, error) {
	ing, err := NewIngestor(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.ChatModel == nil {
		return nil, fmt.Errorf("assistant: chat model must not be nil")
	}
	if cfg.Sessions == nil {
		return nil, fmt.Errorf("assistant: session store must not be nil")
	}

	service, err := retrieval.New(cfg.Index, cfg.Embedder, cfg.MaxResults)
	if err != nil {
		return nil, fmt.Errorf("assistant: retrieval service: %w", err)
	}

	registry := tools.NewRegistry(ing.log, cfg.MetricsRegistry)
	registry.Register(tools.NewSearchTool(service))
	registry.Register(tools.NewOutlineTool(service))

	orchestrator, err := agent.New(&agent.Config{
		ChatModel:    cfg.ChatModel,
		Registry:     registry,
		SystemPrompt: cfg.SystemPrompt,
	})
	if err != nil {
		return nil, fmt.Errorf("assistant: orchestrator: %w", err)
	}

	return &Assistant{
		Ingestor: ing,
		sessions: cfg.Sessions,
		agent:    orchestrator,
	}, nil
}

// Query answers one user question. An empty sessionID starts a new session;
// the (possibly new) session id is always returned so the caller can thread
// it through the next turn. The exchange is appended to the session after a
// successful answer; a history persistence failure is logged but does not
// fail the turn.
func (a *Assistant) Query(ctx context.Context, query, sessionID string) (string, []tools.Source, string, error) {
	log := logging.FromContext(ctx)

	if sessionID == "" {
		id, err := a.sessions.Create(ctx)
		if err != nil {
			return "", nil, "", fmt.Errorf("assistant: create session: %w", err)
		}
		sessionID = id
		log.Debug("created session", slog.String("session_id", sessionID))
	}

	history, err := a.sessions.History(ctx, sessionID)
	if err != nil {
		return "", nil, "", fmt.Errorf("assistant: load history: %w", err)
	}

	result, err := a.agent.Answer(ctx, query, history)
	if err != nil {
		return "", nil, "", err
	}

	if err := a.sessions.Append(ctx, sessionID, query, result.Answer); err != nil {
		log.Warn("failed to persist exchange",
			slog.String("session_id", sessionID),
			slog.Any("error", err))
	}

	return result.Answer, result.Sources, sessionID, nil
}

// Analytics returns the indexed course count and titles.
func (a *Assistant) Analytics(ctx context.Context) (*CourseAnalytics, error) {
	titles, err := a.index.CourseTitles(ctx)
	if err != nil {
		return nil, fmt.Errorf("assistant: course titles: %w", err)
	}
	return &CourseAnalytics{
		TotalCourses: len(titles),
		CourseTitles: titles,
	}, nil
}
