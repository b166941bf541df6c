package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lectern-ai/lectern-go/internal/assistant"
	"github.com/lectern-ai/lectern-go/internal/config"
	"github.com/lectern-ai/lectern-go/internal/embedder"
	"github.com/lectern-ai/lectern-go/internal/logging"
	"github.com/lectern-ai/lectern-go/internal/provider"
)

// NewAskCmd constructs the `lectern ask` command, which answers a single
// question about the indexed course materials and prints the answer with its
// sources.
func NewAskCmd() *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a question about the indexed course materials",
		Long: `Ask the assistant a natural language question about the course corpus.

The assistant searches the vector index for relevant lesson content and
answers from what it finds. Pass --session to continue a previous
conversation; the session id is printed after every answer.

Examples:
  lectern ask "what is covered in lesson 5 of the MCP course?"
  lectern ask "are there courses that teach prompt caching?"
  lectern ask --session 2f1f4ad0 "what about lesson 6?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			chatModel, err := provider.NewFromEnv(ctx)
			if err != nil {
				return fmt.Errorf("ask: failed to initialise model provider: %w", err)
			}

			if err := embedder.Validate(log); err != nil {
				return fmt.Errorf("ask: %w", err)
			}
			emb, err := embedder.NewFromEnv()
			if err != nil {
				return fmt.Errorf("ask: failed to initialise embedder: %w", err)
			}

			idx, err := buildIndex(ctx, log)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}
			defer func() { _ = idx.Close() }()

			sessions, err := buildSessions(log)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}
			defer func() { _ = sessions.Close() }()

			core, err := assistant.New(&assistant.Config{
				Index:        idx,
				Embedder:     emb,
				ChatModel:    chatModel,
				Sessions:     sessions,
				ChunkSize:    config.ChunkSize(),
				ChunkOverlap: config.ChunkOverlap(),
				MaxResults:   config.MaxResults(),
				Logger:       log,
			})
			if err != nil {
				return fmt.Errorf("ask: failed to initialise assistant: %w", err)
			}

			question := strings.Join(args, " ")

			answer, sources, sid, err := core.Query(ctx, question, sessionID)
			if err != nil {
				return err //nolint:wrapcheck // CLI entry point — error goes directly to cobra
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, answer)
			if len(sources) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, "Sources:")
				for _, src := range sources {
					if src.Link != "" {
						fmt.Fprintf(out, "  - %s (%s)\n", src.Text, src.Link)
					} else {
						fmt.Fprintf(out, "  - %s\n", src.Text)
					}
				}
			}
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Session: %s\n", sid)
			return nil
		},
	}

	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "Session id to continue a previous conversation")

	return cmd
}
