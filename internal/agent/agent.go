// Package agent implements the answer orchestrator: a bounded state machine
// that sends a user query to a tool-calling chat model, executes at most one
// round of requested tool calls, and forces a final answer. The bound keeps
// a misbehaving model from looping on tool requests.
package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/lectern-ai/lectern-go/internal/logging"
	"github.com/lectern-ai/lectern-go/internal/tools"
)

// Config holds the dependencies required to construct an Agent.
type Config struct {
	// ChatModel is the LLM backend constructed by the provider factory.
	ChatModel model.ToolCallingChatModel

	// Registry routes the model's tool calls to their implementations.
	Registry *tools.Registry

	// SystemPrompt overrides the built-in system prompt when non-empty.
	SystemPrompt string
}

// Agent turns one user query into a final answer plus the sources the tools
// touched along the way. It holds no per-conversation state; history is
// supplied by the caller on every turn.
type Agent struct {
	chatModel    model.ToolCallingChatModel
	registry     *tools.Registry
	systemPrompt string
}

// Result carries the final answer text and the sources recorded during the
// turn's tool executions, in execution order.
type Result struct {
	Answer  string
	Sources []tools.Source
}

// New constructs an Agent from the provided Config.
func New(cfg *Config) (*Agent, error) {
	if cfg.ChatModel == nil {
		return nil, fmt.Errorf("agent: ChatModel must not be nil")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("agent: Registry must not be nil")
	}
	prompt := cfg.SystemPrompt
	if prompt == "" {
		prompt = systemPrompt
	}
	return &Agent{
		chatModel:    cfg.ChatModel,
		registry:     cfg.Registry,
		systemPrompt: prompt,
	}, nil
}

// Answer runs one conversation turn. history is the formatted prior
// conversation ("" for a fresh session); the caller owns persisting the new
// exchange. Model failures surface as hard errors and discard the turn's
// sources.
func (a *Agent) Answer(ctx context.Context, query, history string) (*Result, error) {
	messages := a.composeMessages(query, history)

	infos, err := a.registry.Infos(ctx)
	if err != nil {
		return nil, fmt.Errorf("agent: tool infos: %w", err)
	}
	toolModel, err := a.chatModel.WithTools(infos)
	if err != nil {
		return nil, fmt.Errorf("agent: bind tools: %w", err)
	}

	first, err := toolModel.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("agent: model call: %w", err)
	}
	if len(first.ToolCalls) == 0 {
		return &Result{Answer: first.Content}, nil
	}

	turn := tools.NewTurn()
	messages = append(messages, first)
	for _, call := range first.ToolCalls {
		logging.FromContext(ctx).Debug("executing tool call",
			slog.String("tool", call.Function.Name),
			slog.String("call_id", call.ID),
		)
		content, err := a.registry.Execute(ctx, turn, call.Function.Name, call.Function.Arguments)
		if err != nil {
			return nil, fmt.Errorf("agent: execute tool %s: %w", call.Function.Name, err)
		}
		messages = append(messages, schema.ToolMessage(content, call.ID))
	}

	// The follow-up call goes to the unbound model: a second tool request
	// cannot be executed, so one tool round per turn is a hard limit.
	final, err := a.chatModel.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("agent: final model call: %w", err)
	}

	return &Result{Answer: final.Content, Sources: turn.Sources()}, nil
}

// composeMessages builds the prompt for the first model call: system
// instructions (with prior conversation appended when present) followed by
// the user's query.
func (a *Agent) composeMessages(query, history string) []*schema.Message {
	system := a.systemPrompt
	if history != "" {
		system += "\n\nPrevious conversation:\n" + history
	}
	return []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(query),
	}
}
