package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/prometheus/client_golang/prometheus"
)

// ErrNotRegistered is returned by Execute when the requested tool name has
// no registration. Unknown names fail loudly rather than silently no-op.
var ErrNotRegistered = errors.New("tools: tool not registered")

// Tool is the contract every lectern tool satisfies. It extends the Eino
// invokable-tool contract with stable accessors so the registry can route
// and log calls by name without type assertions.
type Tool interface {
	tool.InvokableTool

	// Name returns the unique tool name the model invokes.
	Name() string

	// Description returns the model-facing description of what the tool does.
	Description() string
}

// Registry routes tool calls by name, installs the turn accumulator on the
// invocation context, and records execution metrics.
type Registry struct {
	tools   map[string]Tool
	order   []string
	metrics *toolMetrics
	log     *slog.Logger
}

// NewRegistry constructs an empty Registry. A nil logger falls back to
// slog.Default; a nil registerer gets a private registry so metrics calls
// stay valid without exporting anything.
func NewRegistry(log *slog.Logger, reg prometheus.Registerer) *Registry {
	if log == nil {
		log = slog.Default()
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	return &Registry{
		tools:   make(map[string]Tool),
		metrics: newToolMetrics(reg),
		log:     log,
	}
}

// Register adds a tool under its own name. Registering the same name again
// replaces the earlier tool; registration order is preserved for Infos.
func (r *Registry) Register(t Tool) {
	if _, ok := r.tools[t.Name()]; !ok {
		r.order = append(r.order, t.Name())
	}
	r.tools[t.Name()] = t
}

// Infos returns the Eino tool schemas in registration order, ready to bind
// to a tool-calling chat model.
func (r *Registry) Infos(ctx context.Context) ([]*schema.ToolInfo, error) {
	infos := make([]*schema.ToolInfo, 0, len(r.order))
	for _, name := range r.order {
		info, err := r.tools[name].Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("tools: info for %s: %w", name, err)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Execute runs the named tool with the given JSON arguments, recording any
// sources it reports into turn. A tool that fails is folded into the
// returned content as an error message so the model can still produce a
// degraded answer; only an unknown tool name returns a Go error.
func (r *Registry) Execute(ctx context.Context, turn *Turn, name, argsJSON string) (string, error) {
	t, ok := r.tools[name]
	if !ok {
		r.metrics.executionsTotal.WithLabelValues(name, "unknown").Inc()
		return "", fmt.Errorf("%w: %q", ErrNotRegistered, name)
	}

	start := time.Now()
	content, err := t.InvokableRun(WithTurn(ctx, turn), argsJSON)
	r.metrics.durationSeconds.WithLabelValues(name).Observe(time.Since(start).Seconds())

	if err != nil {
		r.metrics.executionsTotal.WithLabelValues(name, "error").Inc()
		r.log.Warn("tool execution failed",
			slog.String("tool", name),
			slog.Any("error", err),
		)
		return fmt.Sprintf("Tool execution failed: %v", err), nil
	}

	r.metrics.executionsTotal.WithLabelValues(name, "ok").Inc()
	return content, nil
}
