package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/lectern-ai/lectern-go/internal/retrieval"
)

// OutlineTool returns a course's structure: title, link, and the complete
// numbered lesson list. The course itself is recorded as the turn source.
type OutlineTool struct {
	service *retrieval.Service
}

// outlineInput is the JSON-serialisable input schema for OutlineTool.
type outlineInput struct {
	// CourseName is the course to outline (fuzzy match).
	CourseName string `json:"course_name"`
}

// NewOutlineTool constructs an OutlineTool over the given retrieval service.
func NewOutlineTool(svc *retrieval.Service) *OutlineTool {
	return &OutlineTool{service: svc}
}

// Name returns the tool name registered with the model.
func (t *OutlineTool) Name() string { return "get_course_outline" }

// Description returns the model-facing description of this tool.
func (t *OutlineTool) Description() string {
	return "Get the complete outline of a course: its title, link, and every lesson number and title"
}

// Info returns the Eino tool metadata including the JSON input schema.
func (t *OutlineTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: t.Name(),
		Desc: t.Description(),
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"course_name": {
				Type:     schema.String,
				Desc:     "Course title to outline (partial matches work, e.g. 'MCP', 'Introduction')",
				Required: true,
			},
		}),
	}, nil
}

// InvokableRun resolves the course and renders its outline. A resolution
// failure comes back as plain content so the model can report it.
func (t *OutlineTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	var input outlineInput
	if err := json.Unmarshal([]byte(argumentsInJSON), &input); err != nil {
		return "", fmt.Errorf("get_course_outline: invalid input: %w", err)
	}
	if strings.TrimSpace(input.CourseName) == "" {
		return "", fmt.Errorf("get_course_outline: course_name is required")
	}

	meta, err := t.service.Outline(ctx, input.CourseName)
	var resErr *retrieval.ResolutionError
	if errors.As(err, &resErr) {
		return resErr.Error(), nil
	}
	if err != nil {
		return "", fmt.Errorf("get_course_outline: %w", err)
	}

	TurnFromContext(ctx).AddSource(Source{Text: meta.Title, Link: meta.Link})

	var b strings.Builder
	fmt.Fprintf(&b, "Course: %s\n", meta.Title)
	if meta.Link != "" {
		fmt.Fprintf(&b, "Course Link: %s\n", meta.Link)
	}
	fmt.Fprintf(&b, "Lessons (%d total):", len(meta.Lessons))
	for _, lesson := range meta.Lessons {
		fmt.Fprintf(&b, "\nLesson %d: %s", lesson.Number, lesson.Title)
	}
	return b.String(), nil
}
